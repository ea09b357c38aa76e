package cookie

import "strings"

// Config holds cookie signing configuration.
type Config struct {
	// Secrets is a comma separated list. The first one signs; all of them verify.
	Secrets string `env:"COOKIE_SECRETS" envDefault:"dev-only-cookie-secret-change-me-please"`
	Domain  string `env:"COOKIE_DOMAIN"`
	Secure  bool   `env:"COOKIE_SECURE" envDefault:"false"`
}

// SecretList splits Secrets on commas, dropping blanks.
func (c Config) SecretList() []string {
	var out []string
	for _, s := range strings.Split(c.Secrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewFromConfig creates a Manager from cfg. Additional opts override cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	base := []Option{WithSecure(cfg.Secure)}
	if cfg.Domain != "" {
		base = append(base, WithDomain(cfg.Domain))
	}
	return New(cfg.SecretList(), append(base, opts...)...)
}
