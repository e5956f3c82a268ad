package intake

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/somnihealth/intake-backend/internal/config"
	"github.com/somnihealth/intake-backend/internal/entity"
	"github.com/somnihealth/intake-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

func strPtr(s string) *string   { return &s }
func intPtr(v int) *int         { return &v }
func f64Ptr(v float64) *float64 { return &v }

// ---- in-memory fakes ----

type fakeSessionRepo struct {
	sessions map[string]*entity.IntakeSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.IntakeSession)}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, session entity.IntakeSession) (*entity.IntakeSession, error) {
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	r.sessions[session.ID] = &session
	copied := session
	return &copied, nil
}

func (r *fakeSessionRepo) GetSessionByID(_ context.Context, id string) (*entity.IntakeSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) UpdateSessionRecord(
	_ context.Context, id string, record entity.PatientRecord, status entity.SessionStatus,
) (*entity.IntakeSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	session.Record = record
	session.Status = status
	session.UpdatedAt = time.Now()
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) UpdateSessionStatus(
	_ context.Context, id string, status entity.SessionStatus,
) (*entity.IntakeSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	session.Status = status
	session.UpdatedAt = time.Now()
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) UpdateSessionResult(
	_ context.Context, id string, status entity.SessionStatus, label, report *string,
) (*entity.IntakeSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	session.Status = status
	session.DisorderLabel = label
	session.Report = report
	session.UpdatedAt = time.Now()
	copied := *session
	return &copied, nil
}

type fakeMessageRepo struct {
	messages []entity.ChatMessage
}

func (r *fakeMessageRepo) CreateMessages(_ context.Context, messages []entity.ChatMessage) error {
	r.messages = append(r.messages, messages...)
	return nil
}

func (r *fakeMessageRepo) ListMessagesBySession(_ context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	out := make([]*entity.ChatMessage, 0)
	for i := range r.messages {
		if r.messages[i].SessionID == sessionID {
			out = append(out, &r.messages[i])
		}
	}
	return out, nil
}

type fakeLLM struct {
	extractResp *entity.ExtractTurnResponse
	extractErr  error
	report      string
	reportErr   error

	reportRequests []*entity.GenerateReportRequest
}

func (f *fakeLLM) ExtractTurn(_ context.Context, _ *entity.ExtractTurnRequest) (*entity.ExtractTurnResponse, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.extractResp, nil
}

func (f *fakeLLM) GenerateReport(_ context.Context, req *entity.GenerateReportRequest) (string, error) {
	f.reportRequests = append(f.reportRequests, req)
	if f.reportErr != nil {
		return "", f.reportErr
	}
	return f.report, nil
}

type fakeClassifier struct {
	label string
	err   error
	calls int
}

func (f *fakeClassifier) Classify(_ context.Context, _ *entity.ClassifyRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.label, nil
}

// ---- fixtures ----

var testPrompts = config.IntakePrompts{
	Greeting:         "Hi! Tell me about your sleep.",
	FallbackApology:  "Sorry, could you say that again?",
	NoPredictionNote: "no automated prediction is available for this session",
}

type fixture struct {
	uc         *IntakeUsecase
	sessions   *fakeSessionRepo
	messages   *fakeMessageRepo
	llm        *fakeLLM
	classifier *fakeClassifier
}

func newFixture(llm *fakeLLM, classifier *fakeClassifier) *fixture {
	sessions := newFakeSessionRepo()
	messages := &fakeMessageRepo{}
	uc := NewUsecase(sessions, messages, validator.NewValidator(), llm, classifier, testPrompts, zap.NewNop())
	return &fixture{uc: uc, sessions: sessions, messages: messages, llm: llm, classifier: classifier}
}

func completeRecord() entity.PatientRecord {
	return entity.PatientRecord{
		Gender:                strPtr("Male"),
		Age:                   intPtr(43),
		Occupation:            strPtr("Teacher"),
		SleepDuration:         f64Ptr(6.5),
		SleepQuality:          intPtr(7),
		PhysicalActivityLevel: intPtr(3),
		StressLevel:           intPtr(4),
		BMICategory:           strPtr("Overweight"),
		BloodPressure:         strPtr("130/85"),
		HeartRate:             intPtr(72),
		DailySteps:            intPtr(6000),
	}
}

func (f *fixture) startSession(t *testing.T) string {
	t.Helper()
	session, greeting, err := f.uc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if greeting != testPrompts.Greeting {
		t.Fatalf("unexpected greeting: %q", greeting)
	}
	return session.ID
}

// ---- tests ----

func TestStartSession(t *testing.T) {
	f := newFixture(&fakeLLM{}, &fakeClassifier{})

	session, greeting, err := f.uc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Status != entity.SessionStatusCollecting {
		t.Errorf("expected COLLECTING, got %s", session.Status)
	}
	if len(session.Record.MissingFields()) != 11 {
		t.Error("new session record must be empty")
	}
	if greeting != testPrompts.Greeting {
		t.Errorf("unexpected greeting: %q", greeting)
	}

	if len(f.messages.messages) != 1 {
		t.Fatalf("expected greeting persisted, got %d messages", len(f.messages.messages))
	}
	if f.messages.messages[0].Role != entity.RoleAssistant || f.messages.messages[0].MessageText != testPrompts.Greeting {
		t.Errorf("persisted greeting wrong: %+v", f.messages.messages[0])
	}
}

func TestSubmitMessagePartialTurn(t *testing.T) {
	llm := &fakeLLM{
		extractResp: &entity.ExtractTurnResponse{
			MessageToUser: "What is your occupation?",
			DataExtraction: entity.PatientRecord{
				Gender: strPtr("Male"),
				Age:    intPtr(43),
			},
			ConfidenceScore: 0.9,
		},
	}
	f := newFixture(llm, &fakeClassifier{})
	sessionID := f.startSession(t)

	turn, err := f.uc.SubmitMessage(context.Background(), sessionID, "I'm a 43-year-old man")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if turn.AssistantText != "What is your occupation?" {
		t.Errorf("unexpected assistant text: %q", turn.AssistantText)
	}
	if turn.Ready {
		t.Error("partial record reported ready")
	}
	if turn.Status != entity.SessionStatusCollecting {
		t.Errorf("expected COLLECTING, got %s", turn.Status)
	}

	session, _ := f.sessions.GetSessionByID(context.Background(), sessionID)
	if session.Record.Age == nil || *session.Record.Age != 43 {
		t.Errorf("record not persisted: %+v", session.Record)
	}
	if f.classifier.calls != 0 {
		t.Error("classifier called before readiness")
	}

	// greeting + user turn + assistant turn
	if len(f.messages.messages) != 3 {
		t.Errorf("expected 3 persisted messages, got %d", len(f.messages.messages))
	}
}

func TestSubmitMessageCompletingTurnFinalizes(t *testing.T) {
	llm := &fakeLLM{
		extractResp: &entity.ExtractTurnResponse{
			MessageToUser:   "Thank you, analyzing now.",
			DataExtraction:  completeRecord(),
			ConfidenceScore: 0.95,
			IsReady:         true,
		},
		report: "## Summary\nYou likely have insomnia.",
	}
	classifier := &fakeClassifier{label: entity.DisorderLabelInsomnia}
	f := newFixture(llm, classifier)
	sessionID := f.startSession(t)

	turn, err := f.uc.SubmitMessage(context.Background(), sessionID, "here is everything at once")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !turn.Ready {
		t.Error("complete record not reported ready")
	}
	if turn.Status != entity.SessionStatusDone {
		t.Errorf("expected DONE after finalize, got %s", turn.Status)
	}
	if turn.DisorderLabel == nil || *turn.DisorderLabel != entity.DisorderLabelInsomnia {
		t.Errorf("unexpected label: %v", turn.DisorderLabel)
	}
	if turn.Report == nil || *turn.Report != llm.report {
		t.Errorf("unexpected report: %v", turn.Report)
	}
	if classifier.calls != 1 {
		t.Errorf("expected exactly one classifier call, got %d", classifier.calls)
	}

	// The generator receives the predicted label.
	if len(llm.reportRequests) != 1 || llm.reportRequests[0].DisorderLabel != entity.DisorderLabelInsomnia {
		t.Errorf("report request wrong: %+v", llm.reportRequests)
	}

	result, err := f.uc.GetSessionResult(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("result unavailable after finalize: %v", err)
	}
	if result != llm.report {
		t.Errorf("unexpected result text: %q", result)
	}
}

func TestSubmitMessageOracleFailure(t *testing.T) {
	llm := &fakeLLM{extractErr: errors.New("connection refused")}
	f := newFixture(llm, &fakeClassifier{})
	sessionID := f.startSession(t)

	turn, err := f.uc.SubmitMessage(context.Background(), sessionID, "I sleep 7 hours")
	if err != nil {
		t.Fatalf("oracle failure must not fail the turn: %v", err)
	}

	if turn.AssistantText != testPrompts.FallbackApology {
		t.Errorf("expected configured apology, got %q", turn.AssistantText)
	}
	if turn.Ready || turn.Status != entity.SessionStatusCollecting {
		t.Errorf("state advanced on failed turn: ready=%v status=%s", turn.Ready, turn.Status)
	}

	session, _ := f.sessions.GetSessionByID(context.Background(), sessionID)
	if session.Record.IsComplete() || len(session.Record.MissingFields()) != 11 {
		t.Error("record mutated on failed turn")
	}
}

func TestSubmitMessageClassifierFailure(t *testing.T) {
	llm := &fakeLLM{
		extractResp: &entity.ExtractTurnResponse{
			MessageToUser:   "Thanks!",
			DataExtraction:  completeRecord(),
			ConfidenceScore: 0.95,
			IsReady:         true,
		},
		report: "## Summary\nGeneral sleep advice.",
	}
	classifier := &fakeClassifier{err: errors.New("model serving unavailable")}
	f := newFixture(llm, classifier)
	sessionID := f.startSession(t)

	turn, err := f.uc.SubmitMessage(context.Background(), sessionID, "everything at once")
	if err != nil {
		t.Fatalf("classifier failure must not fail the session: %v", err)
	}

	if turn.Status != entity.SessionStatusDone {
		t.Errorf("expected DONE despite classifier failure, got %s", turn.Status)
	}
	if turn.DisorderLabel == nil || !strings.HasPrefix(*turn.DisorderLabel, "Prediction unavailable:") {
		t.Errorf("expected 'Prediction unavailable' label, got %v", turn.DisorderLabel)
	}
	if turn.Report == nil || *turn.Report != llm.report {
		t.Errorf("report still expected, got %v", turn.Report)
	}

	// The generator is told there is no prediction, not the error string.
	if len(llm.reportRequests) != 1 || llm.reportRequests[0].DisorderLabel != testPrompts.NoPredictionNote {
		t.Errorf("report request should carry the no-prediction note: %+v", llm.reportRequests)
	}
}

func TestSubmitMessageReportGenerationFailure(t *testing.T) {
	llm := &fakeLLM{
		extractResp: &entity.ExtractTurnResponse{
			MessageToUser:   "Thanks!",
			DataExtraction:  completeRecord(),
			ConfidenceScore: 0.95,
			IsReady:         true,
		},
		reportErr: errors.New("generation timeout"),
	}
	f := newFixture(llm, &fakeClassifier{label: entity.DisorderLabelHealthy})
	sessionID := f.startSession(t)

	turn, err := f.uc.SubmitMessage(context.Background(), sessionID, "everything at once")
	if err != nil {
		t.Fatalf("generation failure must not fail the session: %v", err)
	}

	if turn.Status != entity.SessionStatusDone {
		t.Errorf("expected DONE, got %s", turn.Status)
	}
	if turn.Report == nil || !strings.HasPrefix(*turn.Report, "Report generation failed:") {
		t.Errorf("expected failure note as report, got %v", turn.Report)
	}
	if turn.DisorderLabel == nil || *turn.DisorderLabel != entity.DisorderLabelHealthy {
		t.Errorf("label lost on generation failure: %v", turn.DisorderLabel)
	}
}

func TestSubmitMessageTerminalSessions(t *testing.T) {
	f := newFixture(&fakeLLM{}, &fakeClassifier{})

	canceledID := f.startSession(t)
	if err := f.uc.CancelSession(context.Background(), canceledID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.uc.SubmitMessage(context.Background(), canceledID, "hello"); !errors.Is(err, entity.ErrSessionCancelled) {
		t.Errorf("expected ErrSessionCancelled, got %v", err)
	}

	doneID := f.startSession(t)
	report := "done"
	label := entity.DisorderLabelHealthy
	if _, err := f.sessions.UpdateSessionResult(context.Background(), doneID, entity.SessionStatusDone, &label, &report); err != nil {
		t.Fatalf("seed done session: %v", err)
	}
	if _, err := f.uc.SubmitMessage(context.Background(), doneID, "hello"); !errors.Is(err, entity.ErrSessionCompleted) {
		t.Errorf("expected ErrSessionCompleted, got %v", err)
	}
}

func TestSubmitMessageUnknownSession(t *testing.T) {
	f := newFixture(&fakeLLM{}, &fakeClassifier{})

	_, err := f.uc.SubmitMessage(context.Background(), "11111111-2222-3333-4444-555555555555", "hi")
	if !errors.Is(err, entity.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSubmitRecordDirectEntry(t *testing.T) {
	llm := &fakeLLM{report: "## Summary\nAll good."}
	classifier := &fakeClassifier{label: entity.DisorderLabelSleepApnea}
	f := newFixture(llm, classifier)
	sessionID := f.startSession(t)

	session, err := f.uc.SubmitRecord(context.Background(), sessionID, completeRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Status != entity.SessionStatusDone {
		t.Errorf("expected DONE, got %s", session.Status)
	}
	if session.DisorderLabel == nil || *session.DisorderLabel != entity.DisorderLabelSleepApnea {
		t.Errorf("unexpected label: %v", session.DisorderLabel)
	}
	if classifier.calls != 1 {
		t.Errorf("expected one classifier call, got %d", classifier.calls)
	}
}

func TestSubmitRecordIncomplete(t *testing.T) {
	f := newFixture(&fakeLLM{}, &fakeClassifier{})
	sessionID := f.startSession(t)

	record := completeRecord()
	record.BloodPressure = nil

	_, err := f.uc.SubmitRecord(context.Background(), sessionID, record)
	if !errors.Is(err, entity.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
	if f.classifier.calls != 0 {
		t.Error("classifier called with incomplete record")
	}
}

func TestGetSessionResultNotReady(t *testing.T) {
	f := newFixture(&fakeLLM{}, &fakeClassifier{})
	sessionID := f.startSession(t)

	if _, err := f.uc.GetSessionResult(context.Background(), sessionID); !errors.Is(err, entity.ErrNoResult) {
		t.Errorf("expected ErrNoResult, got %v", err)
	}
}

func TestCancelSessionTerminal(t *testing.T) {
	f := newFixture(&fakeLLM{}, &fakeClassifier{})
	sessionID := f.startSession(t)

	if err := f.uc.CancelSession(context.Background(), sessionID); err != nil {
		t.Fatalf("cancel active session: %v", err)
	}

	if err := f.uc.CancelSession(context.Background(), sessionID); !errors.Is(err, entity.ErrInvalidSessionStatus) {
		t.Errorf("expected ErrInvalidSessionStatus on double cancel, got %v", err)
	}
}
