package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionCancelled     = errors.New("session is cancelled")
	ErrSessionCompleted     = errors.New("session is already completed")
	ErrInvalidSessionStatus = errors.New("invalid session status")
	ErrNoResult             = errors.New("session report not available")

	// Extraction errors
	ErrMalformedExtraction = errors.New("malformed extraction response")
	ErrEmptyUserMessage    = errors.New("user message must not be empty")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
