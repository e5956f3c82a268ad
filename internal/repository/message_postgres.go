package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/somnihealth/intake-backend/internal/entity"
)

// MessageRepository defines the interface for transcript persistence
type MessageRepository interface {
	CreateMessages(ctx context.Context, messages []entity.ChatMessage) error
	ListMessagesBySession(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error)
}

var _ MessageRepository = &MessagePostgres{}

// MessagePostgres implements MessageRepository using PostgreSQL
type MessagePostgres struct {
	db *pgxpool.Pool
}

func NewMessagePostgres(db *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{db: db}
}

// CreateMessages appends transcript entries in order within one batch.
func (r *MessagePostgres) CreateMessages(ctx context.Context, messages []entity.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, msg := range messages {
		msgID, err := parseUUID(msg.ID)
		if err != nil {
			return fmt.Errorf("invalid message ID: %w", err)
		}
		sessionID, err := parseUUID(msg.SessionID)
		if err != nil {
			return fmt.Errorf("invalid session ID: %w", err)
		}

		batch.Queue(
			`INSERT INTO chat_messages (id, session_id, role, message_text, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			msgID, sessionID, string(msg.Role), msg.MessageText, msg.CreatedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range messages {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	return nil
}

func (r *MessagePostgres) ListMessagesBySession(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	sid, err := parseUUID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, role, message_text, created_at
		 FROM chat_messages
		 WHERE session_id = $1
		 ORDER BY created_at, id`,
		sid,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*entity.ChatMessage, 0)
	for rows.Next() {
		var (
			id        pgtype.UUID
			sessID    pgtype.UUID
			role      string
			text      string
			createdAt pgtype.Timestamptz
		)

		if err := rows.Scan(&id, &sessID, &role, &text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		messages = append(messages, &entity.ChatMessage{
			ID:          uuid.UUID(id.Bytes).String(),
			SessionID:   uuid.UUID(sessID.Bytes).String(),
			Role:        entity.ChatRole(role),
			MessageText: text,
			CreatedAt:   createdAt.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
