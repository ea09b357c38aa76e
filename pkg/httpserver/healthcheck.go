package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/filevault/pkg/logger"
)

// Check is a named readiness check of a dependency.
type Check struct {
	Name string
	Ping func(context.Context) error
}

// HealthCheckHandler serves liveness (no checks) and readiness (all checks
// must pass within timeout). The body reports the status of every check.
func HealthCheckHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Noop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		status := http.StatusOK
		report := map[string]string{}
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					slog.String("check", c.Name),
					logger.Error(err),
				)
				report[c.Name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			report[c.Name] = "up"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": state,
			"checks": report,
		})
	}
}
