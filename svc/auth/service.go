package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/filevault/pkg/email"
	"github.com/dmitrymomot/filevault/pkg/email/templates"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/ratelimiter"
	"github.com/dmitrymomot/filevault/pkg/sanitizer"
	"github.com/dmitrymomot/filevault/pkg/session"
	"github.com/dmitrymomot/filevault/pkg/validator"
	"github.com/dmitrymomot/filevault/svc/users"
)

// Sessions issues and destroys browser sessions. *session.Manager implements it.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, accountID string) (*session.Session, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Service implements passwordless sign-up and sign-in with emailed codes.
type Service struct {
	users    users.Store
	codes    CodeStore
	mailer   email.EmailSender
	limiter  ratelimiter.RateLimiter
	sessions Sessions
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithConfig(cfg Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRateLimiter limits code requests per email.
func WithRateLimiter(l ratelimiter.RateLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store users.Store, codes CodeStore, mailer email.EmailSender, sessions Sessions, opts ...Option) *Service {
	s := &Service{
		users:    store,
		codes:    codes,
		mailer:   mailer,
		sessions: sessions,
		cfg:      DefaultConfig(),
		logger:   logger.Noop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AccountRef is returned by the code-sending operations.
type AccountRef struct {
	AccountID string `json:"accountId"`
}

// SendEmailOTP sends a fresh code to an existing user.
func (s *Service) SendEmailOTP(ctx context.Context, addr string) (*AccountRef, error) {
	addr = sanitizer.NormalizeEmail(addr)
	if err := validator.Apply(validator.ValidEmail("email", addr)); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := s.sendCode(ctx, u.AccountID, u.FullName, u.Email); err != nil {
		return nil, err
	}
	return &AccountRef{AccountID: u.AccountID}, nil
}

// CreateAccount registers a new user and sends the first code.
func (s *Service) CreateAccount(ctx context.Context, fullName, addr string) (*AccountRef, error) {
	if err := users.ValidateProfile(fullName, addr); err != nil {
		return nil, err
	}
	addr = sanitizer.NormalizeEmail(addr)

	if _, err := s.users.GetByEmail(ctx, addr); err == nil {
		return nil, users.ErrUserExists
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return nil, err
	}

	svc := users.NewService(s.users, users.WithLogger(s.logger), users.WithClock(s.now))
	u, err := svc.Register(ctx, fullName, addr)
	if err != nil {
		return nil, err
	}
	if err := s.sendCode(ctx, u.AccountID, u.FullName, u.Email); err != nil {
		return nil, err
	}
	return &AccountRef{AccountID: u.AccountID}, nil
}

// SignIn sends a code to a registered email.
func (s *Service) SignIn(ctx context.Context, addr string) (*AccountRef, error) {
	return s.SendEmailOTP(ctx, addr)
}

// VerifySecret checks code for accountID and starts a session on success.
// A code is single use; after MaxAttempts wrong guesses it is discarded.
func (s *Service) VerifySecret(ctx context.Context, w http.ResponseWriter, accountID, code string) (*users.User, error) {
	if err := validator.Apply(
		validator.RequiredString("accountId", accountID),
		validator.Digits("code", code, s.cfg.CodeLength),
	); err != nil {
		return nil, err
	}

	pending, err := s.codes.Get(ctx, accountID)
	if errors.Is(err, ErrCodeNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, errors.Join(ErrCodeStoreFailure, err)
	}

	now := s.now()
	if pending.expired(now) {
		_ = s.codes.Delete(ctx, accountID)
		return nil, ErrCodeExpired
	}
	// Each guess claims an attempt before the hash is compared.
	attempts, err := s.codes.IncrementAttempts(ctx, accountID)
	if errors.Is(err, ErrCodeNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, errors.Join(ErrCodeStoreFailure, err)
	}
	if attempts > s.cfg.MaxAttempts {
		_ = s.codes.Delete(ctx, accountID)
		return nil, ErrTooManyAttempts
	}

	if !matchCode(pending.Hash, code) {
		if attempts >= s.cfg.MaxAttempts {
			_ = s.codes.Delete(ctx, accountID)
		}
		s.logger.WarnContext(ctx, "invalid verification code",
			logger.AccountID(accountID),
			slog.Int("attempts", attempts))
		return nil, ErrInvalidCode
	}

	consumed, err := s.codes.Consume(ctx, accountID)
	if err != nil {
		return nil, errors.Join(ErrCodeStoreFailure, err)
	}
	if !consumed {
		return nil, ErrInvalidCode
	}

	u, err := s.users.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Create(ctx, w, accountID); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in", logger.UserID(u.ID), logger.AccountID(accountID))
	return u, nil
}

// SignOut destroys the current session and clears its cookie.
func (s *Service) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return s.sessions.Destroy(ctx, w, r)
}

func (s *Service) sendCode(ctx context.Context, accountID, name, addr string) error {
	if s.limiter != nil {
		res, err := s.limiter.Allow(ctx, "otp:"+addr)
		if err != nil {
			return err
		}
		if !res.Allowed() {
			s.logger.WarnContext(ctx, "code request rate limited", logger.Email(addr))
			return ErrTooManyRequests
		}
	}

	code, err := generateDigits(s.cfg.CodeLength)
	if err != nil {
		return err
	}
	hash, err := hashCode(code, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.codes.Save(ctx, &Code{
		AccountID: accountID,
		Email:     addr,
		Hash:      hash,
		ExpiresAt: now.Add(s.cfg.CodeTTL),
		CreatedAt: now,
	}, s.cfg.CodeTTL); err != nil {
		return errors.Join(ErrCodeStoreFailure, err)
	}

	body, err := templates.Render(ctx, templates.LoginCode(name, code, s.cfg.CodeTTL))
	if err != nil {
		return errors.Join(ErrSendCodeFailed, err)
	}
	if err := s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   addr,
		Subject:  templates.LoginCodeSubject,
		BodyHTML: body,
		Tag:      "login-code",
	}); err != nil {
		return errors.Join(ErrSendCodeFailed, err)
	}

	s.logger.DebugContext(ctx, "verification code sent", logger.AccountID(accountID))
	return nil
}
