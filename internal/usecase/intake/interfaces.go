package intake

import (
	"context"

	"github.com/somnihealth/intake-backend/internal/entity"
)

type LLMConnector interface {
	ExtractTurn(ctx context.Context, req *entity.ExtractTurnRequest) (*entity.ExtractTurnResponse, error)
	GenerateReport(ctx context.Context, req *entity.GenerateReportRequest) (string, error)
}

type ClassifierConnector interface {
	Classify(ctx context.Context, req *entity.ClassifyRequest) (string, error)
}
