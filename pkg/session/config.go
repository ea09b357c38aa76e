package session

import "time"

// Config holds session configuration.
type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"filevault_session"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	// ActivityUpdateThreshold is the minimum time between LastActivityAt writes.
	ActivityUpdateThreshold time.Duration `env:"SESSION_ACTIVITY_UPDATE_THRESHOLD" envDefault:"5m"`
}

// DefaultConfig returns the 30 day session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:              "filevault_session",
		TTL:                     30 * 24 * time.Hour,
		ActivityUpdateThreshold: 5 * time.Minute,
	}
}
