package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/somnihealth/intake-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is an offline stand-in for the LLM service. It re-derives
// the extraction from the full dialogue with keyword heuristics, so the
// whole intake flow is demoable without the real service.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

var (
	ageRe       = regexp.MustCompile(`(?i)(\d+)\s*[- ]?\s*year`)
	durationRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*hours?`)
	qualityRe   = regexp.MustCompile(`(?i)quality\D*(\d+)`)
	activityRe  = regexp.MustCompile(`(?i)activity\D*(\d+)`)
	stressRe    = regexp.MustCompile(`(?i)stress\D*(\d+)`)
	bpRe        = regexp.MustCompile(`(\d{2,3})\s*/\s*(\d{2,3})`)
	heartRateRe = regexp.MustCompile(`(?i)(\d+)\s*bpm`)
	stepsRe     = regexp.MustCompile(`(?i)(\d+)\s*steps`)
)

// demographic fields are requested before lifestyle and physiological ones
var fieldQuestions = []struct {
	field    string
	question string
}{
	{entity.FieldGender, "Are you male or female?"},
	{entity.FieldAge, "How old are you?"},
	{entity.FieldOccupation, "What is your occupation?"},
	{entity.FieldSleepDuration, "How many hours do you usually sleep per night?"},
	{entity.FieldSleepQuality, "How would you rate your sleep quality from 1 to 10?"},
	{entity.FieldPhysicalActivityLevel, "How would you rate your physical activity level from 1 to 5?"},
	{entity.FieldStressLevel, "How would you rate your stress level from 1 to 5?"},
	{entity.FieldBMICategory, "What is your BMI category (Normal, Overweight, Obese)?"},
	{entity.FieldBloodPressure, "What is your blood pressure (for example 120/80)?"},
	{entity.FieldHeartRate, "What is your resting heart rate in bpm?"},
	{entity.FieldDailySteps, "Roughly how many steps do you walk per day?"},
}

// ExtractTurn mock: keyword extraction over the whole dialogue
func (m *MockConnector) ExtractTurn(ctx context.Context, req *entity.ExtractTurnRequest) (
	*entity.ExtractTurnResponse, error,
) {
	ctxzap.Info(ctx, "[MOCK] extracting record fields")

	if req.UserMessage == "" {
		return nil, entity.ErrEmptyUserMessage
	}

	var sb strings.Builder
	for _, turn := range req.History {
		if turn.Role == entity.RoleUser {
			sb.WriteString(turn.Text)
			sb.WriteString("\n")
		}
	}
	sb.WriteString(req.UserMessage)

	record := extractFromText(sb.String())
	missing := record.MissingFields()

	resp := &entity.ExtractTurnResponse{
		MissingFields:   missing,
		DataExtraction:  record,
		ConfidenceScore: 0.95,
		IsReady:         len(missing) == 0,
	}

	if len(missing) == 0 {
		resp.MessageToUser = "Thank you, I have everything I need. Let me analyze your sleep data."
	} else {
		resp.MessageToUser = nextQuestion(missing[0])
	}

	ctxzap.Info(ctx, "[MOCK] extraction completed",
		zap.Int("missing_fields", len(missing)),
		zap.Bool("is_ready", resp.IsReady),
	)

	return resp, nil
}

// GenerateReport mock
func (m *MockConnector) GenerateReport(ctx context.Context, req *entity.GenerateReportRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating report")

	var sb strings.Builder
	sb.WriteString("## Sleep Health Summary (MOCK)\n\n")
	sb.WriteString(fmt.Sprintf("Predicted condition: **%s**\n\n", req.DisorderLabel))
	if req.Record.SleepDuration != nil {
		sb.WriteString(fmt.Sprintf("You reported sleeping %.1f hours per night. ", *req.Record.SleepDuration))
	}
	if req.Record.SleepQuality != nil {
		sb.WriteString(fmt.Sprintf("Your self-rated sleep quality is %d/10. ", *req.Record.SleepQuality))
	}
	sb.WriteString("\n\nKeep a consistent sleep schedule and moderate evening screen time.\n\n")
	sb.WriteString("---\n*Report generated automatically (MOCK)*")

	report := sb.String()
	ctxzap.Info(ctx, "[MOCK] report generated", zap.Int("result_length", len(report)))
	return report, nil
}

func nextQuestion(field string) string {
	for _, fq := range fieldQuestions {
		if fq.field == field {
			return fq.question
		}
	}
	return "Could you tell me more about your sleep habits?"
}

func extractFromText(text string) entity.PatientRecord {
	var record entity.PatientRecord
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "female") || strings.Contains(lower, "woman"):
		record.Gender = strPtr("Female")
	case strings.Contains(lower, "male") || strings.Contains(lower, " man"):
		record.Gender = strPtr("Male")
	}

	if m := ageRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			record.Age = &v
		}
	}

	for _, occ := range entity.KnownOccupations {
		if strings.Contains(lower, strings.ToLower(occ)) {
			record.Occupation = strPtr(occ)
		}
	}

	if m := durationRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			record.SleepDuration = &v
		}
	}

	if m := qualityRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			record.SleepQuality = &v
		}
	}

	if m := activityRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			record.PhysicalActivityLevel = &v
		}
	}

	if m := stressRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			record.StressLevel = &v
		}
	}

	// Longer category names first so "Normal Weight" wins over "Normal"
	for _, cat := range []string{"Normal Weight", "Overweight", "Obese", "Normal"} {
		if strings.Contains(lower, strings.ToLower(cat)) {
			record.BMICategory = strPtr(cat)
			break
		}
	}

	if m := bpRe.FindStringSubmatch(text); m != nil {
		record.BloodPressure = strPtr(m[1] + "/" + m[2])
	}

	if m := heartRateRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			record.HeartRate = &v
		}
	}

	if m := stepsRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			record.DailySteps = &v
		}
	}

	record.Sanitize()
	return record
}

func strPtr(s string) *string {
	return &s
}
