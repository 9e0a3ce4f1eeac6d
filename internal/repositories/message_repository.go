package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"forum-chat/internal/models"
)

// foreignKeyViolation is the Postgres error code raised when a message
// references a room that does not exist.
const foreignKeyViolation = "23503"

// MessageRepository is the append-only per-room message log.
type MessageRepository interface {
	Append(ctx context.Context, roomID int, authorID int, authorName string, body string) (models.Message, error)
	List(ctx context.Context, roomID int) ([]models.Message, error)
}

// MessageRepo is the sqlx implementation of MessageRepository.
type MessageRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewMessageRepo constructs a MessageRepo. Calls are bounded by timeout.
func NewMessageRepo(db *sqlx.DB, timeout time.Duration) *MessageRepo {
	return &MessageRepo{db: db, timeout: timeout}
}

// Append stores a message at the tail of the room's log. The serial id gives
// messages a total order per room that matches chronological order.
func (r *MessageRepo) Append(ctx context.Context, roomID int, authorID int, authorName string, body string) (models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return models.Message{}, ErrEmptyBody
	}

	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (room_id, author_id, author_name, body) VALUES ($1, $2, $3, $4)
         RETURNING id, room_id, author_id, author_name, body, created_at`,
		roomID, authorID, authorName, body).StructScan(&msg)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return models.Message{}, ErrRoomNotFound
		}
		return models.Message{}, mapStoreErr(err)
	}
	return msg, nil
}

// List returns the full room history in append order. Repeated calls return
// the same sequence until further appends.
func (r *MessageRepo) List(ctx context.Context, roomID int) ([]models.Message, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, room_id, author_id, author_name, body, created_at
         FROM messages WHERE room_id=$1 ORDER BY id ASC`, roomID)
	return msgs, mapStoreErr(err)
}
