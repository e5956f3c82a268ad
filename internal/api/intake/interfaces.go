package intake

import (
	"context"

	"github.com/somnihealth/intake-backend/internal/entity"
)

type IntakeUsecase interface {
	StartSession(ctx context.Context) (*entity.IntakeSession, string, error)
	SubmitMessage(ctx context.Context, sessionID, message string) (*entity.TurnDTO, error)
	SubmitRecord(ctx context.Context, sessionID string, record entity.PatientRecord) (*entity.IntakeSession, error)
	GetSession(ctx context.Context, sessionID string) (*entity.IntakeSession, error)
	GetSessionResult(ctx context.Context, sessionID string) (string, error)
	CancelSession(ctx context.Context, sessionID string) error
}
