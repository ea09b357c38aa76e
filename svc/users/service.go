package users

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/sanitizer"
	"github.com/dmitrymomot/filevault/pkg/validator"
)

// Service owns account records.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: logger.Noop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying store for read paths that only need lookups.
func (s *Service) Store() Store {
	return s.store
}

// ValidateProfile checks a sign-up name and email.
func ValidateProfile(fullName, email string) error {
	fullName = strings.TrimSpace(fullName)
	return validator.Apply(
		validator.RequiredString("fullName", fullName),
		validator.MinLenString("fullName", fullName, 2),
		validator.MaxLenString("fullName", fullName, 50),
		validator.ValidEmail("email", sanitizer.NormalizeEmail(email)),
	)
}

// Register creates a user with a fresh account id.
func (s *Service) Register(ctx context.Context, fullName, email string) (*User, error) {
	if err := ValidateProfile(fullName, email); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &User{
		ID:        uuid.NewString(),
		Email:     sanitizer.NormalizeEmail(email),
		FullName:  strings.TrimSpace(fullName),
		AccountID: uuid.NewString(),
		Avatar:    DefaultAvatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(u.ID),
		logger.AccountID(u.AccountID))
	return u, nil
}

func (s *Service) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.GetByEmail(ctx, email)
}

func (s *Service) ByAccountID(ctx context.Context, accountID string) (*User, error) {
	return s.store.GetByAccountID(ctx, accountID)
}
