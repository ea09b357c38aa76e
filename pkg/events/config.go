package events

import "time"

// Config configures the NATS connection.
type Config struct {
	URL            string        `env:"NATS_URL" envDefault:""`
	Name           string        `env:"NATS_CLIENT_NAME" envDefault:"filevault"`
	SubjectPrefix  string        `env:"NATS_SUBJECT_PREFIX" envDefault:""`
	ConnectTimeout time.Duration `env:"NATS_CONNECT_TIMEOUT" envDefault:"5s"`
	MaxReconnects  int           `env:"NATS_MAX_RECONNECTS" envDefault:"60"`
	ReconnectWait  time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`
}

// Enabled reports whether a NATS URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}
