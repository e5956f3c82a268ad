package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somnihealth/intake-backend/internal/entity"
)

// SessionRepository defines the interface for session persistence
type SessionRepository interface {
	CreateSession(ctx context.Context, session entity.IntakeSession) (*entity.IntakeSession, error)
	GetSessionByID(ctx context.Context, id string) (*entity.IntakeSession, error)
	UpdateSessionRecord(ctx context.Context, id string, record entity.PatientRecord, status entity.SessionStatus) (*entity.IntakeSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status entity.SessionStatus) (*entity.IntakeSession, error)
	UpdateSessionResult(ctx context.Context, id string, status entity.SessionStatus, label, report *string) (*entity.IntakeSession, error)
}

var _ SessionRepository = &SessionPostgres{}

// SessionPostgres implements SessionRepository using PostgreSQL
type SessionPostgres struct {
	db *pgxpool.Pool
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{db: db}
}

const sessionColumns = "id, status, record, disorder_label, report, created_at, updated_at"

func (r *SessionPostgres) CreateSession(ctx context.Context, session entity.IntakeSession) (*entity.IntakeSession, error) {
	sessionID, err := parseUUID(session.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	recordJSON, err := json.Marshal(session.Record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO intake_sessions (id, status, record)
		 VALUES ($1, $2, $3)
		 RETURNING `+sessionColumns,
		sessionID, string(session.Status), recordJSON,
	)

	return scanSession(row)
}

func (r *SessionPostgres) GetSessionByID(ctx context.Context, id string) (*entity.IntakeSession, error) {
	sessionID, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM intake_sessions WHERE id = $1`,
		sessionID,
	)

	return scanSession(row)
}

func (r *SessionPostgres) UpdateSessionRecord(
	ctx context.Context, id string, record entity.PatientRecord, status entity.SessionStatus,
) (*entity.IntakeSession, error) {
	sessionID, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`UPDATE intake_sessions
		 SET record = $2, status = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		sessionID, recordJSON, string(status),
	)

	return scanSession(row)
}

func (r *SessionPostgres) UpdateSessionStatus(
	ctx context.Context, id string, status entity.SessionStatus,
) (*entity.IntakeSession, error) {
	sessionID, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`UPDATE intake_sessions
		 SET status = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		sessionID, string(status),
	)

	return scanSession(row)
}

func (r *SessionPostgres) UpdateSessionResult(
	ctx context.Context, id string, status entity.SessionStatus, label, report *string,
) (*entity.IntakeSession, error) {
	sessionID, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`UPDATE intake_sessions
		 SET status = $2, disorder_label = $3, report = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		sessionID, string(status), toPgText(label), toPgText(report),
	)

	return scanSession(row)
}

func scanSession(row pgx.Row) (*entity.IntakeSession, error) {
	var (
		id            pgtype.UUID
		status        string
		recordJSON    []byte
		disorderLabel pgtype.Text
		report        pgtype.Text
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(&id, &status, &recordJSON, &disorderLabel, &report, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session := &entity.IntakeSession{
		ID:        uuid.UUID(id.Bytes).String(),
		Status:    entity.SessionStatus(status),
		CreatedAt: createdAt.Time,
		UpdatedAt: updatedAt.Time,
	}

	if err := json.Unmarshal(recordJSON, &session.Record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}

	if disorderLabel.Valid {
		session.DisorderLabel = &disorderLabel.String
	}
	if report.Valid {
		session.Report = &report.String
	}

	return session, nil
}

func parseUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
