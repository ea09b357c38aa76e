package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/requestid"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID         string          `json:"id"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher emits domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Connect dials NATS. The returned connection is drained by Close.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (*nats.Conn, error) {
	if log == nil {
		log = slog.Default()
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WarnContext(ctx, "nats disconnected", logger.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.InfoContext(ctx, "nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}
	return nc, nil
}

// Close drains nc, flushing pending publishes.
func Close(nc *nats.Conn) error {
	if nc == nil || nc.IsClosed() {
		return nil
	}
	return nc.Drain()
}

// NATSPublisher publishes JSON envelopes on core NATS subjects.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	now    func() time.Time
}

// NewNATSPublisher creates a publisher. A non-empty prefix is joined to
// every subject with a dot.
func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, now: time.Now}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if subject == "" {
		return ErrEmptySubject
	}
	if p.prefix != "" {
		subject = p.prefix + "." + subject
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Join(ErrMarshalFailed, err)
	}
	data, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Subject:    subject,
		OccurredAt: p.now().UTC(),
		Payload:    raw,
	})
	if err != nil {
		return errors.Join(ErrMarshalFailed, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	if id := requestid.FromContext(ctx); id != "" {
		msg.Header.Set("X-Request-ID", id)
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Subscribe decodes envelopes on subject and passes them to fn.
func Subscribe(conn *nats.Conn, subject string, fn func(Envelope)) (*nats.Subscription, error) {
	sub, err := conn.Subscribe(subject, func(m *nats.Msg) {
		var env Envelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			return
		}
		fn(env)
	})
	if err != nil {
		return nil, errors.Join(ErrSubscribeFailed, err)
	}
	return sub, nil
}

// NoopPublisher drops every event. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// LoggingPublisher wraps a Publisher and logs failures instead of returning them.
// Event delivery is best effort: callers never fail because of it.
type LoggingPublisher struct {
	next   Publisher
	logger *slog.Logger
}

func NewLoggingPublisher(next Publisher, log *slog.Logger) *LoggingPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingPublisher{next: next, logger: log}
}

func (p *LoggingPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := p.next.Publish(ctx, subject, payload); err != nil {
		p.logger.WarnContext(ctx, "event publish failed",
			logger.Event(subject),
			logger.Error(err))
	}
	return nil
}
