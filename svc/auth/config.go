package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds the one-time code settings.
type Config struct {
	CodeLength      int           `env:"OTP_LENGTH" envDefault:"6"`
	CodeTTL         time.Duration `env:"OTP_TTL" envDefault:"15m"`
	MaxAttempts     int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
	RateLimit       int           `env:"OTP_RATE_LIMIT" envDefault:"5"`
	RateLimitWindow time.Duration `env:"OTP_RATE_WINDOW" envDefault:"10m"`
	BcryptCost      int           `env:"OTP_BCRYPT_COST" envDefault:"10"`
}

func DefaultConfig() Config {
	return Config{
		CodeLength:      6,
		CodeTTL:         15 * time.Minute,
		MaxAttempts:     5,
		RateLimit:       5,
		RateLimitWindow: 10 * time.Minute,
		BcryptCost:      bcrypt.DefaultCost,
	}
}
