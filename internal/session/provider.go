// Package session resolves caller-supplied credentials to a stable user
// identity. Authentication itself lives in the forum's auth service; this
// package only verifies and looks up.
package session

import (
	"context"
	"errors"
)

var (
	// ErrInvalidSession signals a missing, malformed or expired credential.
	ErrInvalidSession = errors.New("invalid session")
	// ErrUnknownUser signals a directory miss for a user id.
	ErrUnknownUser = errors.New("unknown user")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// Provider maps sessions to identities and user ids to display names.
//
// Caching policy: positive Resolve results are cached for a fixed TTL and
// never invalidated early; tokens are self-expiring and the TTL stays well
// below token lifetime. Negative results are not cached. Resolve also feeds
// the user directory consulted by Lookup.
type Provider interface {
	Resolve(ctx context.Context, token string) (Identity, error)
	Lookup(ctx context.Context, userID int) (Identity, error)
}
