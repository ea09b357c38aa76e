package session

import (
	"context"
	"time"
)

// Store persists sessions keyed by token.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, s *Session) error
	// Get returns ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (*Session, error)
	// Touch records activity without extending the expiry.
	Touch(ctx context.Context, token string, at time.Time) error
	// Delete removes a session. Unknown tokens are ignored.
	Delete(ctx context.Context, token string) error
}
