package entity

// ExtractTurnRequest carries the dialogue so far plus the newest user
// message to the extraction service. Each turn is a function of the full
// exchange history, not just of the accumulated record.
type ExtractTurnRequest struct {
	History     []ChatTurn `json:"history"`
	UserMessage string     `json:"user_message"`
}

// ExtractTurnResponse is the extraction service's per-turn output.
type ExtractTurnResponse struct {
	MessageToUser   string        `json:"message_to_user"`
	MissingFields   []string      `json:"missing_fields"`
	DataExtraction  PatientRecord `json:"data_extraction"`
	ConfidenceScore float64       `json:"confidence_score"`
	IsReady         bool          `json:"is_ready"`
}

// Validate checks the structural contract of an extraction response.
// A response failing it is treated the same as a transport failure.
func (r *ExtractTurnResponse) Validate() error {
	if r.MessageToUser == "" {
		return ErrMalformedExtraction
	}
	if r.ConfidenceScore < 0.0 || r.ConfidenceScore > 1.0 {
		return ErrMalformedExtraction
	}
	return nil
}

type GenerateReportRequest struct {
	Record        PatientRecord `json:"record"`
	DisorderLabel string        `json:"disorder_label"`
}

type GenerateReportResponse struct {
	Result string `json:"result"`
}
