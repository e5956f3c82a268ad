// Package tracker implements the slot-filling dialogue tracker: it owns the
// evolving patient record of one intake session, merges each turn's
// extraction into it, and decides when the record is complete enough to
// hand to the classifier.
package tracker

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/somnihealth/intake-backend/internal/entity"
	"go.uber.org/zap"
)

// Oracle converts the dialogue plus the newest user message into a partial
// record and the next assistant prompt. Implemented by the LLM connector;
// injected so the tracker stays independently testable.
type Oracle interface {
	ExtractTurn(ctx context.Context, req *entity.ExtractTurnRequest) (*entity.ExtractTurnResponse, error)
}

// FallbackApology is the canned assistant reply used when the oracle call
// fails or returns an unparsable payload. Overridable via Option.
const FallbackApology = "Sorry, I had trouble understanding that. Could you say it again?"

// Tracker tracks one session's record, transcript and readiness.
// It is not safe for concurrent use; turn processing is strictly
// sequential by design, so the caller serializes submits per session.
type Tracker struct {
	oracle   Oracle
	record   entity.PatientRecord
	turns    []entity.ChatTurn
	ready    bool
	fallback string
}

type Option func(*Tracker)

// WithFallbackMessage overrides the canned apology returned on oracle failure.
func WithFallbackMessage(msg string) Option {
	return func(t *Tracker) {
		if msg != "" {
			t.fallback = msg
		}
	}
}

// New creates an empty tracker: all record fields nil, no turns, not ready.
func New(oracle Oracle, opts ...Option) *Tracker {
	t := &Tracker{
		oracle:   oracle,
		fallback: FallbackApology,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Restore rebuilds a tracker from persisted session state so a session can
// continue across requests.
func Restore(oracle Oracle, record entity.PatientRecord, turns []entity.ChatTurn, ready bool, opts ...Option) *Tracker {
	t := New(oracle, opts...)
	t.record = record
	t.turns = append(t.turns, turns...)
	t.ready = ready
	return t
}

// SubmitResult is the per-turn outcome handed back to the caller.
type SubmitResult struct {
	AssistantText string
	Ready         bool
	BecameReady   bool
	MissingFields []string
	Confidence    float64
	// OracleFailed marks a recoverable per-turn failure: AssistantText is
	// the fallback apology and the record and readiness were not touched.
	OracleFailed bool
}

// Submit processes one user turn: appends it to the transcript, asks the
// oracle for an extraction, merges it into the record and re-derives
// readiness. Oracle failures are recoverable per turn and never mutate the
// record. The only error returned is an empty user message.
func (t *Tracker) Submit(ctx context.Context, userText string) (*SubmitResult, error) {
	if userText == "" {
		return nil, entity.ErrEmptyUserMessage
	}

	history := t.Turns()
	t.turns = append(t.turns, entity.ChatTurn{Role: entity.RoleUser, Text: userText})

	resp, err := t.oracle.ExtractTurn(ctx, &entity.ExtractTurnRequest{
		History:     history,
		UserMessage: userText,
	})
	if err == nil {
		err = resp.Validate()
	}
	if err != nil {
		ctxzap.Warn(ctx, "extraction failed, answering with fallback", zap.Error(err))
		t.turns = append(t.turns, entity.ChatTurn{Role: entity.RoleAssistant, Text: t.fallback})
		return &SubmitResult{
			AssistantText: t.fallback,
			Ready:         t.ready,
			MissingFields: t.record.MissingFields(),
			OracleFailed:  true,
		}, nil
	}

	extracted := resp.DataExtraction
	extracted.Sanitize()
	t.record.Merge(extracted)

	// The literal assistant payload goes into the transcript so future
	// turns see exactly what the user saw.
	t.turns = append(t.turns, entity.ChatTurn{Role: entity.RoleAssistant, Text: resp.MessageToUser})

	// The oracle's readiness flag is advisory: it is re-validated against
	// the merged record, never trusted alone.
	wasReady := t.ready
	t.ready = resp.IsReady && t.record.IsComplete()

	return &SubmitResult{
		AssistantText: resp.MessageToUser,
		Ready:         t.ready,
		BecameReady:   t.ready && !wasReady,
		MissingFields: t.record.MissingFields(),
		Confidence:    resp.ConfidenceScore,
	}, nil
}

// RequiredFields returns the fixed set of fields that must be non-nil
// before the session is ready. Pure, no side effects.
func (t *Tracker) RequiredFields() []string {
	return entity.RecordFieldNames()
}

// Snapshot returns a copy of the merged record for downstream use.
func (t *Tracker) Snapshot() entity.PatientRecord {
	return t.record
}

// Turns returns a copy of the transcript in order.
func (t *Tracker) Turns() []entity.ChatTurn {
	turns := make([]entity.ChatTurn, len(t.turns))
	copy(turns, t.turns)
	return turns
}

// Ready reports whether the record was complete as of the last turn.
func (t *Tracker) Ready() bool {
	return t.ready
}
