package intake

import "github.com/somnihealth/intake-backend/internal/entity"

func toSessionDTO(session *entity.IntakeSession) *entity.SessionDTO {
	return &entity.SessionDTO{
		ID:            session.ID,
		Status:        session.Status,
		Record:        session.Record,
		MissingFields: session.Record.MissingFields(),
		DisorderLabel: session.DisorderLabel,
		Report:        session.Report,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
}

func toStartSessionResponse(session *entity.IntakeSession, greeting string) *entity.StartSessionResponse {
	return &entity.StartSessionResponse{
		SessionID: session.ID,
		Status:    session.Status,
		Greeting:  greeting,
		CreatedAt: session.CreatedAt,
	}
}
