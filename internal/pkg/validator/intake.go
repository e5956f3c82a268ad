package validator

import (
	"fmt"
	"strings"

	"github.com/somnihealth/intake-backend/internal/entity"
)

// maxMessageLength bounds a single user turn; anything longer is junk input
const maxMessageLength = 4096

// ValidateSubmitMessage validates a user turn submission
func (v *Validator) ValidateSubmitMessage(req *entity.SubmitMessageRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message", entity.ErrMissingField)
	}

	if len(req.Message) > maxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", entity.ErrInvalidParameter, maxMessageLength)
	}

	return nil
}

// ValidateResultFormat parses the requested report format, defaulting to markdown
func (v *Validator) ValidateResultFormat(format string) (entity.ResultFormat, error) {
	switch entity.ResultFormat(format) {
	case "":
		return entity.FormatMarkdown, nil
	case entity.FormatMarkdown, entity.FormatPDF, entity.FormatDOCX:
		return entity.ResultFormat(format), nil
	default:
		return "", fmt.Errorf("%w: format %q", entity.ErrInvalidParameter, format)
	}
}
