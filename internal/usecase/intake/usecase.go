package intake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/somnihealth/intake-backend/internal/config"
	"github.com/somnihealth/intake-backend/internal/entity"
	"github.com/somnihealth/intake-backend/internal/pkg/validator"
	"github.com/somnihealth/intake-backend/internal/repository"
	"github.com/somnihealth/intake-backend/internal/tracker"
	"go.uber.org/zap"
)

// IntakeUsecase implements the intake session business logic
type IntakeUsecase struct {
	sessionRepo         repository.SessionRepository
	messageRepo         repository.MessageRepository
	validator           *validator.Validator
	llmConnector        LLMConnector
	classifierConnector ClassifierConnector
	prompts             config.IntakePrompts
	logger              *zap.Logger

	// Turn processing is strictly sequential per session: overlapping
	// submits to the same session serialize on its mutex.
	sessionLocks sync.Map
}

// NewUsecase creates a new intake use case
func NewUsecase(
	sessionRepo repository.SessionRepository,
	messageRepo repository.MessageRepository,
	validator *validator.Validator,
	llmConnector LLMConnector,
	classifierConnector ClassifierConnector,
	prompts config.IntakePrompts,
	logger *zap.Logger,
) *IntakeUsecase {
	return &IntakeUsecase{
		sessionRepo:         sessionRepo,
		messageRepo:         messageRepo,
		validator:           validator,
		llmConnector:        llmConnector,
		classifierConnector: classifierConnector,
		prompts:             prompts,
		logger:              logger,
	}
}

// StartSession creates an empty session with an all-nil record and the
// greeting as the opening assistant turn.
func (uc *IntakeUsecase) StartSession(ctx context.Context) (*entity.IntakeSession, string, error) {
	session := entity.IntakeSession{
		ID:     uuid.New().String(),
		Status: entity.SessionStatusCollecting,
	}

	createdSession, err := uc.sessionRepo.CreateSession(ctx, session)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	greeting := entity.ChatMessage{
		ID:          uuid.New().String(),
		SessionID:   createdSession.ID,
		Role:        entity.RoleAssistant,
		MessageText: uc.prompts.Greeting,
		CreatedAt:   time.Now(),
	}
	if err := uc.messageRepo.CreateMessages(ctx, []entity.ChatMessage{greeting}); err != nil {
		return nil, "", fmt.Errorf("save greeting: %w", err)
	}

	return createdSession, uc.prompts.Greeting, nil
}

// SubmitMessage processes one user turn through the dialogue tracker and,
// when the record becomes complete, runs classification and report
// generation before returning.
func (uc *IntakeUsecase) SubmitMessage(ctx context.Context, sessionID, message string) (*entity.TurnDTO, error) {
	unlock := uc.lockSession(sessionID)
	defer unlock()

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := checkSessionActive(session); err != nil {
		return nil, err
	}

	turns, err := uc.loadTranscript(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tr := tracker.Restore(
		uc.llmConnector,
		session.Record,
		turns,
		session.Status == entity.SessionStatusReady,
		tracker.WithFallbackMessage(uc.prompts.FallbackApology),
	)

	result, err := tr.Submit(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("submit turn: %w", err)
	}

	now := time.Now()
	messages := []entity.ChatMessage{
		{
			ID:          uuid.New().String(),
			SessionID:   sessionID,
			Role:        entity.RoleUser,
			MessageText: message,
			CreatedAt:   now,
		},
		{
			ID:          uuid.New().String(),
			SessionID:   sessionID,
			Role:        entity.RoleAssistant,
			MessageText: result.AssistantText,
			// Strictly after the user turn so transcript replay keeps order
			CreatedAt: now.Add(time.Millisecond),
		},
	}
	if err := uc.messageRepo.CreateMessages(ctx, messages); err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}

	status := entity.SessionStatusCollecting
	if tr.Ready() {
		status = entity.SessionStatusReady
	}

	session, err = uc.sessionRepo.UpdateSessionRecord(ctx, sessionID, tr.Snapshot(), status)
	if err != nil {
		return nil, fmt.Errorf("update session record: %w", err)
	}

	if result.OracleFailed {
		ctxzap.Warn(ctx, "turn handled with fallback reply", zap.String("session_id", sessionID))
	}

	if result.BecameReady {
		ctxzap.Info(ctx, "record complete, running classification", zap.String("session_id", sessionID))

		session, err = uc.finalizeSession(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("finalize session: %w", err)
		}
	}

	return &entity.TurnDTO{
		SessionID:     sessionID,
		AssistantText: result.AssistantText,
		MissingFields: result.MissingFields,
		Ready:         result.Ready,
		Status:        session.Status,
		DisorderLabel: session.DisorderLabel,
		Report:        session.Report,
	}, nil
}

// SubmitRecord takes a complete record from the direct entry form, skipping
// the dialogue, and runs the same downstream flow.
func (uc *IntakeUsecase) SubmitRecord(ctx context.Context, sessionID string, record entity.PatientRecord) (*entity.IntakeSession, error) {
	unlock := uc.lockSession(sessionID)
	defer unlock()

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := checkSessionActive(session); err != nil {
		return nil, err
	}

	if err := uc.validator.ValidateCompleteRecord(&record); err != nil {
		return nil, err
	}

	session, err = uc.sessionRepo.UpdateSessionRecord(ctx, sessionID, record, entity.SessionStatusReady)
	if err != nil {
		return nil, fmt.Errorf("update session record: %w", err)
	}

	session, err = uc.finalizeSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	return session, nil
}

// GetSession returns the current session state
func (uc *IntakeUsecase) GetSession(ctx context.Context, sessionID string) (*entity.IntakeSession, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

// GetSessionResult returns the finished report text
func (uc *IntakeUsecase) GetSessionResult(ctx context.Context, sessionID string) (string, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}

	if session.Status != entity.SessionStatusDone || session.Report == nil {
		return "", entity.ErrNoResult
	}

	return *session.Report, nil
}

// CancelSession marks the session canceled; its record is never consumed after that
func (uc *IntakeUsecase) CancelSession(ctx context.Context, sessionID string) error {
	unlock := uc.lockSession(sessionID)
	defer unlock()

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	if session.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", entity.ErrInvalidSessionStatus, session.Status)
	}

	if _, err := uc.sessionRepo.UpdateSessionStatus(ctx, sessionID, entity.SessionStatusCanceled); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}

	return nil
}

func checkSessionActive(session *entity.IntakeSession) error {
	switch session.Status {
	case entity.SessionStatusCanceled:
		return entity.ErrSessionCancelled
	case entity.SessionStatusDone:
		return entity.ErrSessionCompleted
	case entity.SessionStatusCollecting, entity.SessionStatusReady:
		return nil
	default:
		return fmt.Errorf("%w: %s", entity.ErrInvalidSessionStatus, session.Status)
	}
}

func (uc *IntakeUsecase) lockSession(sessionID string) func() {
	value, _ := uc.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
