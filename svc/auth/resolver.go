package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/session"
	"github.com/dmitrymomot/filevault/svc/users"
)

// Resolver maps the session in a request context to its user.
type Resolver struct {
	users  users.Store
	logger *slog.Logger
}

func NewResolver(store users.Store, log *slog.Logger) *Resolver {
	if log == nil {
		log = logger.Noop()
	}
	return &Resolver{users: store, logger: log}
}

// ResolveCurrentUser returns the signed-in user, or nil when there is no
// valid session or no user carries its account id. An error means the
// session or user store is unavailable.
func (r *Resolver) ResolveCurrentUser(ctx context.Context) (*users.User, error) {
	if u := GetUserFromContext(ctx); u != nil {
		return u, nil
	}
	if err := session.ErrorFromContext(ctx); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	accountID, ok := session.AccountIDFromContext(ctx)
	if !ok || accountID == "" {
		return nil, nil
	}

	u, err := r.users.GetByAccountID(ctx, accountID)
	if errors.Is(err, users.ErrUserNotFound) {
		r.logger.WarnContext(ctx, "session without user", logger.AccountID(accountID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

const unavailableBody = `{"error":{"code":"service_unavailable","message":"Service temporarily unavailable. Please try again later."}}` + "\n"

// Middleware resolves the current user once per request and stores it in
// the context. It must run after the session middleware. When the session
// or user store fails the request is answered with 503 instead of being
// treated as anonymous.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		u, err := r.ResolveCurrentUser(req.Context())
		if err != nil {
			r.logger.ErrorContext(req.Context(), "resolve current user", logger.Error(err))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(unavailableBody))
			return
		}
		if u != nil {
			req = req.WithContext(SetUserToContext(req.Context(), u))
		}
		next.ServeHTTP(w, req)
	})
}
