package files

import (
	"time"

	"github.com/dmitrymomot/filevault/pkg/file"
)

// Config tunes the file service.
type Config struct {
	MaxUploadSize  int64         `env:"FILES_MAX_UPLOAD_SIZE" envDefault:"52428800"`
	MaxListLimit   int           `env:"FILES_MAX_LIST_LIMIT" envDefault:"1000"`
	PurgeGrace     time.Duration `env:"FILES_PURGE_GRACE" envDefault:"10m"`
	SweepInterval  time.Duration `env:"FILES_SWEEP_INTERVAL" envDefault:"15m"`
	OwnerCacheSize int           `env:"FILES_OWNER_CACHE_SIZE" envDefault:"1024"`
	OwnerCacheTTL  time.Duration `env:"FILES_OWNER_CACHE_TTL" envDefault:"5m"`
	UpdateAttempts int           `env:"FILES_UPDATE_ATTEMPTS" envDefault:"3"`
}

// DefaultConfig matches the env defaults.
func DefaultConfig() Config {
	return Config{
		MaxUploadSize:  file.MaxUploadSize,
		MaxListLimit:   1000,
		PurgeGrace:     10 * time.Minute,
		SweepInterval:  15 * time.Minute,
		OwnerCacheSize: 1024,
		OwnerCacheTTL:  5 * time.Minute,
		UpdateAttempts: 3,
	}
}
