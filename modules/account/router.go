package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount in the account module.
// Each service is optional and will only be mounted if provided.
type RouterOptions struct {
	// Email one-time code sign-up, sign-in and session endpoints.
	OTP Mountable

	// Middlewares wrap every /auth route, e.g. a per-IP rate limiter.
	Middlewares []func(http.Handler) http.Handler
}

// Router creates the account module router.
//
// Example:
//
//	otp := account.NewOTPService(authSvc, account.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Mount("/", account.Router(account.RouterOptions{OTP: otp}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(auth chi.Router) {
		auth.Use(opts.Middlewares...)
		if opts.OTP != nil {
			auth.Mount("/", opts.OTP.Handle())
		}
	})

	return r
}
