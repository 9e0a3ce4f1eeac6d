package repositories

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRoomNotFound signals the requested room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidUserID signals a malformed user id.
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrSelfPair signals an attempt to open a room with oneself.
	ErrSelfPair = errors.New("cannot open a chat with yourself")
	// ErrEmptyBody signals an empty or whitespace-only message body.
	ErrEmptyBody = errors.New("message body is empty")
	// ErrStoreTimeout signals a store call that exceeded its deadline.
	ErrStoreTimeout = errors.New("store operation timed out")
)

// boundCtx derives a context that bounds a single store call. A timeout of
// zero keeps the caller's context untouched.
func boundCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// mapStoreErr converts a deadline expiry into ErrStoreTimeout so callers
// never surface raw context errors to clients.
func mapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStoreTimeout
	}
	return err
}
