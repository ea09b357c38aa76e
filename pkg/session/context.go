package session

import "context"

type (
	sessionContextKey struct{}
	errorContextKey   struct{}
)

// WithSession adds a session to the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext retrieves a session from the context.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}

// AccountIDFromContext returns the account id of the session in ctx.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return s.AccountID, s.AccountID != ""
}

// WithError records a failure to load the session of the request.
func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorContextKey{}, err)
}

// ErrorFromContext returns the session loading failure recorded by the
// middleware, or nil.
func ErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(errorContextKey{}).(error)
	return err
}
