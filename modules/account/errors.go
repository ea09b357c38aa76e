package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/filevault/handler"
	"github.com/dmitrymomot/filevault/svc/auth"
	"github.com/dmitrymomot/filevault/svc/users"
)

var (
	ErrInvalidCode     = handler.NewHTTPError(http.StatusUnauthorized, "invalid_code")
	ErrCodeExpired     = handler.NewHTTPError(http.StatusUnauthorized, "code_expired")
	ErrUserExists      = handler.NewHTTPError(http.StatusConflict, "user_exists")
	ErrUserNotFound    = handler.NewHTTPError(http.StatusNotFound, "user_not_found")
	ErrSendCodeFailed  = handler.NewHTTPError(http.StatusServiceUnavailable, "send_code_failed")
	ErrTooManyRequests = handler.ErrTooManyRequests
)

// httpError maps auth and user errors to their HTTP form. Anything it does
// not recognize is returned unchanged for the default classifier.
func httpError(err error) error {
	var target handler.HTTPError
	switch {
	case errors.Is(err, auth.ErrInvalidCode):
		target = ErrInvalidCode
	case errors.Is(err, auth.ErrCodeExpired), errors.Is(err, auth.ErrTooManyAttempts):
		target = ErrCodeExpired
	case errors.Is(err, auth.ErrTooManyRequests):
		target = ErrTooManyRequests
	case errors.Is(err, auth.ErrSendCodeFailed):
		target = ErrSendCodeFailed
	case errors.Is(err, auth.ErrNotAuthenticated):
		target = handler.ErrUnauthorized
	case errors.Is(err, users.ErrUserExists):
		target = ErrUserExists
	case errors.Is(err, users.ErrUserNotFound):
		target = ErrUserNotFound
	default:
		return err
	}
	return target.WithMessage(err.Error())
}
