package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/filevault/pkg/logger"
)

// Manager creates, loads and destroys sessions.
type Manager struct {
	store     Store
	transport Transport
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager builds a Manager. It panics when no transport is configured.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		logger: logger.Noop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.transport == nil {
		panic("session: transport is required")
	}
	return m
}

// Create starts a new session for accountID and writes its token to w.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, accountID string) (*Session, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrInvalidAccount
	}

	s, err := New(accountID, m.config.TTL, m.now())
	if err != nil {
		return nil, err
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}

	m.transport.SetToken(w, s.Token, m.config.TTL)
	return s, nil
}

// Get loads the session carried by r.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.IsExpired(m.now()) {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Destroy deletes the session carried by r and clears the token.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.transport.ClearToken(w)

	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// Middleware loads the session, if any, into the request context.
// Requests without a token or with an unknown or expired session pass
// through untouched. Any other store failure is logged and recorded in the
// context, see ErrorFromContext.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s, err := m.Get(ctx, r)
		switch {
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
			next.ServeHTTP(w, r)
			return
		case err != nil:
			m.logger.ErrorContext(ctx, "failed to load session", logger.Error(err))
			next.ServeHTTP(w, r.WithContext(WithError(ctx, err)))
			return
		}

		if now := m.now(); now.Sub(s.LastActivityAt) >= m.config.ActivityUpdateThreshold {
			if err := m.store.Touch(ctx, s.Token, now); err != nil {
				m.logger.WarnContext(ctx, "failed to update session activity", logger.Error(err))
			}
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
	})
}
