package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/somnihealth/intake-backend/internal/entity"
	"github.com/somnihealth/intake-backend/internal/pkg/formatter"
	"github.com/somnihealth/intake-backend/internal/pkg/logger"
	"github.com/somnihealth/intake-backend/internal/pkg/response"
	"github.com/somnihealth/intake-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

type Handler struct {
	usecase    IntakeUsecase
	validator  *validator.Validator
	formatters *formatter.Factory
}

func NewHandler(
	usecase IntakeUsecase,
	validator *validator.Validator,
	formatters *formatter.Factory,
) *Handler {
	return &Handler{
		usecase:    usecase,
		validator:  validator,
		formatters: formatters,
	}
}

// StartSession handles POST /intake-session - Start new session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	session, greeting, err := h.usecase.StartSession(ctx)
	if err != nil {
		ctxzap.Error(ctx, "failed to start session", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	ctxzap.Info(ctx, "intake session started", zap.String("session_id", session.ID))

	response.Created(w, toStartSessionResponse(session, greeting))
}

// GetSession handles GET /intake-session/{id} - Get session status
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetSession"),
	)

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session))
}

// SubmitMessage handles POST /intake-session/{id}/message - Submit one user turn
func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "SubmitMessage"),
	)

	var req entity.SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateSubmitMessage(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	turn, err := h.usecase.SubmitMessage(ctx, sessionID, req.Message)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "turn processed",
		zap.Bool("ready", turn.Ready),
		zap.Int("missing_fields", len(turn.MissingFields)),
	)

	response.Success(w, turn)
}

// SubmitRecord handles POST /intake-session/{id}/record - Direct form entry
func (h *Handler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "SubmitRecord"),
	)

	var req entity.SubmitRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.usecase.SubmitRecord(ctx, sessionID, req.Record)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "record submitted directly", zap.String("status", string(session.Status)))

	response.Success(w, toSessionDTO(session))
}

// GetSessionResult handles GET /intake-session/{id}/result - Download report
func (h *Handler) GetSessionResult(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetSessionResult"),
	)

	format, err := h.validator.ValidateResultFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.usecase.GetSessionResult(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	fmtr, err := h.formatters.Create(format)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := fmtr.Format(report)
	if err != nil {
		ctxzap.Error(ctx, "failed to format report", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to format report")
		return
	}

	response.Attachment(w, fmtr.ContentType(), "sleep-health-report"+fmtr.FileExtension(), data)
}

// CancelSession handles POST /intake-session/{id}/cancel
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "CancelSession"),
	)

	if err := h.usecase.CancelSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session canceled")

	response.Success(w, map[string]string{"status": "canceled"})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "usecase error", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrNoResult):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrSessionCancelled),
		errors.Is(err, entity.ErrSessionCompleted),
		errors.Is(err, entity.ErrInvalidSessionStatus):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrEmptyUserMessage):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal error")
	}
}
