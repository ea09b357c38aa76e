package events

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"
)

var ErrNotConnected = errors.New("nats connection is not established")

// Healthcheck reports whether nc is connected and the server answers a flush.
func Healthcheck(nc *nats.Conn) func(context.Context) error {
	return func(ctx context.Context) error {
		if nc == nil || !nc.IsConnected() {
			return ErrNotConnected
		}
		return nc.FlushWithContext(ctx)
	}
}
