package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidTokenCount = errors.New("invalid token count")
	ErrStoreUnavailable  = errors.New("store unavailable")
	// ErrLimitExceeded is returned by Bucket.Take when the bucket is empty.
	ErrLimitExceeded = errors.New("rate limit exceeded")
)
