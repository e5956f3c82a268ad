package entity

import "time"

type SubmitMessageRequest struct {
	Message string `json:"message"`
}

type SubmitRecordRequest struct {
	Record PatientRecord `json:"record"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TurnDTO is the synchronous answer to a submitted user message.
type TurnDTO struct {
	SessionID     string        `json:"session_id"`
	AssistantText string        `json:"assistant_text"`
	MissingFields []string      `json:"missing_fields"`
	Ready         bool          `json:"ready"`
	Status        SessionStatus `json:"session_status"`
	DisorderLabel *string       `json:"disorder_label,omitempty"`
	Report        *string       `json:"report,omitempty"`
}

type SessionDTO struct {
	ID            string        `json:"session_id"`
	Status        SessionStatus `json:"session_status"`
	Record        PatientRecord `json:"record"`
	MissingFields []string      `json:"missing_fields"`
	DisorderLabel *string       `json:"disorder_label,omitempty"`
	Report        *string       `json:"report,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type StartSessionResponse struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"session_status"`
	Greeting  string        `json:"greeting"`
	CreatedAt time.Time     `json:"created_at"`
}
