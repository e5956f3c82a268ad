package intake

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/somnihealth/intake-backend/internal/entity"
	"go.uber.org/zap"
)

// finalizeSession runs the downstream flow once the record is complete:
// classification, then report generation. Neither failure aborts the
// session; both degrade to user-visible error strings.
func (uc *IntakeUsecase) finalizeSession(ctx context.Context, session *entity.IntakeSession) (*entity.IntakeSession, error) {
	session, err := uc.sessionRepo.UpdateSessionStatus(ctx, session.ID, entity.SessionStatusGeneratingReport)
	if err != nil {
		return nil, fmt.Errorf("update session status: %w", err)
	}

	label, reportLabel := uc.classifyRecord(ctx, &session.Record)

	report, err := uc.llmConnector.GenerateReport(ctx, &entity.GenerateReportRequest{
		Record:        session.Record,
		DisorderLabel: reportLabel,
	})
	if err != nil {
		ctxzap.Error(ctx, "report generation failed", zap.Error(err))
		report = fmt.Sprintf("Report generation failed: %v", err)
	}

	session, err = uc.sessionRepo.UpdateSessionResult(ctx, session.ID, entity.SessionStatusDone, &label, &report)
	if err != nil {
		return nil, fmt.Errorf("update session result: %w", err)
	}

	return session, nil
}

// classifyRecord invokes the classifier once. On any failure the first
// return value is the error string shown to the user as-is, and the second
// is the note the report generator receives instead of a label.
func (uc *IntakeUsecase) classifyRecord(ctx context.Context, record *entity.PatientRecord) (label, reportLabel string) {
	req, err := buildClassifyRequest(record)
	if err != nil {
		ctxzap.Error(ctx, "record not classifiable", zap.Error(err))
		return fmt.Sprintf("Prediction unavailable: %v", err), uc.prompts.NoPredictionNote
	}

	label, err = uc.classifierConnector.Classify(ctx, req)
	if err != nil {
		ctxzap.Error(ctx, "classification failed", zap.Error(err))
		return fmt.Sprintf("Prediction unavailable: %v", err), uc.prompts.NoPredictionNote
	}

	return label, label
}

// buildClassifyRequest flattens a complete record into the classifier's
// feature row. Blood pressure decomposition happens here, on the caller's
// side of the classifier contract.
func buildClassifyRequest(record *entity.PatientRecord) (*entity.ClassifyRequest, error) {
	if missing := record.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", entity.ErrMissingField, missing)
	}

	systolic, diastolic, err := entity.SplitBloodPressure(*record.BloodPressure)
	if err != nil {
		return nil, err
	}

	return &entity.ClassifyRequest{
		Gender:                *record.Gender,
		Age:                   *record.Age,
		Occupation:            *record.Occupation,
		SleepDuration:         *record.SleepDuration,
		SleepQuality:          *record.SleepQuality,
		PhysicalActivityLevel: *record.PhysicalActivityLevel,
		StressLevel:           *record.StressLevel,
		BMICategory:           *record.BMICategory,
		SystolicBP:            systolic,
		DiastolicBP:           diastolic,
		HeartRate:             *record.HeartRate,
		DailySteps:            *record.DailySteps,
	}, nil
}

// loadTranscript rebuilds the in-order dialogue turns of a session.
func (uc *IntakeUsecase) loadTranscript(ctx context.Context, sessionID string) ([]entity.ChatTurn, error) {
	messages, err := uc.messageRepo.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	turns := make([]entity.ChatTurn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, entity.ChatTurn{
			Role: msg.Role,
			Text: msg.MessageText,
		})
	}

	return turns, nil
}
