package auth

import "errors"

var (
	ErrInvalidCode      = errors.New("invalid verification code")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrTooManyAttempts  = errors.New("too many verification attempts")
	ErrTooManyRequests  = errors.New("too many code requests, try again later")
	ErrSendCodeFailed   = errors.New("failed to send verification code")
	ErrCodeGeneration   = errors.New("failed to generate verification code")
	ErrCodeStoreFailure = errors.New("verification code store unavailable")
	ErrNotAuthenticated = errors.New("not authenticated")
)
