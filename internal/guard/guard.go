// Package guard decides whether a user may read or write a room. The same
// check runs on the HTTP history path and the websocket join/publish path;
// the two transports share one trust boundary.
package guard

import (
	"context"
	"errors"

	"forum-chat/internal/models"
	"forum-chat/internal/repositories"
)

// ErrNotMember signals an access attempt by a user outside the room.
var ErrNotMember = errors.New("not a room member")

// Guard answers membership questions against the room directory.
type Guard struct {
	rooms repositories.RoomRepository
}

// New constructs a Guard.
func New(rooms repositories.RoomRepository) *Guard {
	return &Guard{rooms: rooms}
}

// Room fetches roomID and enforces membership in a single directory lookup.
// It returns repositories.ErrRoomNotFound when the room does not exist and
// ErrNotMember when userID is outside it.
func (g *Guard) Room(ctx context.Context, userID int, roomID int) (models.Room, error) {
	room, err := g.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}
	if !room.HasMember(userID) {
		return models.Room{}, ErrNotMember
	}
	return room, nil
}

// Authorize reports whether userID is a member of roomID. It returns
// repositories.ErrRoomNotFound when the room does not exist.
func (g *Guard) Authorize(ctx context.Context, userID int, roomID int) (bool, error) {
	_, err := g.Room(ctx, userID, roomID)
	if errors.Is(err, ErrNotMember) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Require is Authorize with a hard failure: non-members get ErrNotMember.
func (g *Guard) Require(ctx context.Context, userID int, roomID int) error {
	_, err := g.Room(ctx, userID, roomID)
	return err
}
