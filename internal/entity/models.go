package entity

import (
	"fmt"
	"time"
)

type SessionStatus string

// Session status represents the current state of the intake workflow
const (
	SessionStatusCollecting       SessionStatus = "COLLECTING"        // Dialogue in progress, record incomplete
	SessionStatusReady            SessionStatus = "READY"             // Record complete, classification pending
	SessionStatusGeneratingReport SessionStatus = "GENERATING_REPORT" // Classifier done, report being generated
	SessionStatusDone             SessionStatus = "DONE"              // Report available
	SessionStatusCanceled         SessionStatus = "CANCELED"          // Session cancelled by user
)

// IsTerminal reports whether no further turns are accepted on the session.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusDone || s == SessionStatusCanceled
}

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

func (r ChatRole) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("unknown chat role: %s", r)
	}
}

// ChatTurn is one (role, text) pair of the dialogue transcript.
type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// IntakeSession holds the full per-session state: the transcript lives in
// chat messages, the merged record and readiness live here.
type IntakeSession struct {
	ID            string        `json:"session_id"`
	Status        SessionStatus `json:"session_status"`
	Record        PatientRecord `json:"record"`
	DisorderLabel *string       `json:"disorder_label,omitempty"`
	Report        *string       `json:"report,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ChatMessage is one persisted transcript entry of a session.
type ChatMessage struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Role        ChatRole  `json:"role"`
	MessageText string    `json:"message_text"`
	CreatedAt   time.Time `json:"created_at"`
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)
