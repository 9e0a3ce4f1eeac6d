package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"forum-chat/internal/models"
)

// RoomRepository abstracts room directory persistence.
type RoomRepository interface {
	ResolveOrCreate(ctx context.Context, userID int, otherID int) (models.Room, bool, error)
	GetRoom(ctx context.Context, roomID int) (models.Room, error)
	ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error)
}

// RoomRepo is the sqlx implementation of RoomRepository.
type RoomRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewRoomRepo constructs a RoomRepo. Calls are bounded by timeout.
func NewRoomRepo(db *sqlx.DB, timeout time.Duration) *RoomRepo {
	return &RoomRepo{db: db, timeout: timeout}
}

// ResolveOrCreate returns the unique room for the unordered user pair,
// creating it when absent. The second return value reports whether a new
// room was created. First contact races resolve first-writer-wins: the
// insert is atomic (ON CONFLICT DO NOTHING) and losing writers re-read the
// canonical row.
func (r *RoomRepo) ResolveOrCreate(ctx context.Context, userID int, otherID int) (models.Room, bool, error) {
	if userID <= 0 || otherID <= 0 {
		return models.Room{}, false, ErrInvalidUserID
	}
	if userID == otherID {
		return models.Room{}, false, ErrSelfPair
	}

	pair := []int{userID, otherID}
	sort.Ints(pair)
	user1, user2 := pair[0], pair[1]

	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	const selectRoom = `SELECT id, user1_id, user2_id, created_at FROM rooms WHERE user1_id=$1 AND user2_id=$2`

	var room models.Room
	err := r.db.GetContext(ctx, &room, selectRoom, user1, user2)
	if err == nil {
		return room, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, false, mapStoreErr(err)
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO rooms (user1_id, user2_id) VALUES ($1, $2)
         ON CONFLICT (user1_id, user2_id) DO NOTHING
         RETURNING id, user1_id, user2_id, created_at`,
		user1, user2).StructScan(&room)
	if err == nil {
		return room, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, false, mapStoreErr(err)
	}

	// RETURNING produced no row: a concurrent first contact won the insert.
	log.Printf("room creation race reconciled for pair (%d,%d)", user1, user2)
	if err := r.db.GetContext(ctx, &room, selectRoom, user1, user2); err != nil {
		return models.Room{}, false, mapStoreErr(err)
	}
	return room, false, nil
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT id, user1_id, user2_id, created_at FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, mapStoreErr(err)
}

// ListRooms returns every room the user is a member of, newest first.
func (r *RoomRepo) ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, user1_id, user2_id, created_at FROM rooms
         WHERE user1_id=$1 OR user2_id=$1
         ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	var result []models.RoomSummary
	for rows.Next() {
		var room models.Room
		if err := rows.StructScan(&room); err != nil {
			return nil, err
		}
		result = append(result, models.RoomSummary{
			RoomID:    room.ID,
			PeerID:    room.Peer(userID),
			CreatedAt: room.CreatedAt,
		})
	}
	return result, mapStoreErr(rows.Err())
}
