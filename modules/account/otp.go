package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/filevault/binder"
	"github.com/dmitrymomot/filevault/handler"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/svc/auth"
	"github.com/dmitrymomot/filevault/svc/users"
)

// Authenticator is the passwordless flow the OTP endpoints drive.
// *auth.Service implements it.
type Authenticator interface {
	SendEmailOTP(ctx context.Context, addr string) (*auth.AccountRef, error)
	CreateAccount(ctx context.Context, fullName, addr string) (*auth.AccountRef, error)
	SignIn(ctx context.Context, addr string) (*auth.AccountRef, error)
	VerifySecret(ctx context.Context, w http.ResponseWriter, accountID, code string) (*users.User, error)
	SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// OTPService serves email one-time code authentication.
type OTPService struct {
	auth         Authenticator
	logger       *slog.Logger
	errorHandler handler.ErrorHandler
}

type Option func(*OTPService)

func WithLogger(l *slog.Logger) Option {
	return func(s *OTPService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewOTPService(a Authenticator, opts ...Option) *OTPService {
	s := &OTPService{auth: a, logger: logger.Noop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("account"))
	s.errorHandler = handler.NewErrorHandler(s.logger)
	return s
}

func (s *OTPService) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/otp", handler.Wrap(s.sendOTP,
		handler.WithBinders[EmailRequest](binder.JSON()),
		handler.WithErrorHandler[EmailRequest](s.errorHandler),
	))
	r.Post("/sign-up", handler.Wrap(s.signUp,
		handler.WithBinders[SignUpRequest](binder.JSON()),
		handler.WithErrorHandler[SignUpRequest](s.errorHandler),
	))
	r.Post("/sign-in", handler.Wrap(s.signIn,
		handler.WithBinders[EmailRequest](binder.JSON()),
		handler.WithErrorHandler[EmailRequest](s.errorHandler),
	))
	r.Post("/verify", handler.Wrap(s.verify,
		handler.WithBinders[VerifyRequest](binder.JSON()),
		handler.WithErrorHandler[VerifyRequest](s.errorHandler),
	))
	r.Post("/sign-out", handler.Wrap(s.signOut,
		handler.WithErrorHandler[struct{}](s.errorHandler),
	))
	r.Get("/me", handler.Wrap(s.me,
		handler.WithErrorHandler[struct{}](s.errorHandler),
	))

	return r
}

type EmailRequest struct {
	Email string `json:"email"`
}

type SignUpRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type VerifyRequest struct {
	AccountID string `json:"accountId"`
	Code      string `json:"code"`
}

func (s *OTPService) sendOTP(ctx handler.Context, req EmailRequest) handler.Response {
	ref, err := s.auth.SendEmailOTP(ctx, req.Email)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(ref, handler.WithJSONStatus(http.StatusAccepted))
}

func (s *OTPService) signUp(ctx handler.Context, req SignUpRequest) handler.Response {
	ref, err := s.auth.CreateAccount(ctx, req.FullName, req.Email)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(ref, handler.WithJSONStatus(http.StatusCreated))
}

func (s *OTPService) signIn(ctx handler.Context, req EmailRequest) handler.Response {
	ref, err := s.auth.SignIn(ctx, req.Email)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(ref, handler.WithJSONStatus(http.StatusAccepted))
}

func (s *OTPService) verify(ctx handler.Context, req VerifyRequest) handler.Response {
	u, err := s.auth.VerifySecret(ctx, ctx.ResponseWriter(), req.AccountID, req.Code)
	if err != nil {
		return s.fail(err)
	}
	return handler.JSON(u)
}

func (s *OTPService) signOut(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.auth.SignOut(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
		return s.fail(err)
	}
	return handler.Empty()
}

// me relies on auth.Resolver.Middleware having run earlier in the chain.
func (s *OTPService) me(ctx handler.Context, _ struct{}) handler.Response {
	u := auth.GetUserFromContext(ctx)
	if u == nil {
		return s.fail(handler.ErrUnauthorized)
	}
	return handler.JSON(u)
}

func (s *OTPService) fail(err error) handler.Response {
	return handler.Fail(httpError(err), s.errorHandler)
}
