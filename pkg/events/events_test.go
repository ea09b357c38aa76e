package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/events"
	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/requestid"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: server.RANDOM_PORT, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second), "nats server not ready")
	t.Cleanup(ns.Shutdown)
	return ns
}

type fileRenamed struct {
	FileID string `json:"file_id"`
	Name   string `json:"name"`
}

func TestNATSPublisher(t *testing.T) {
	t.Parallel()

	ns := runServer(t)
	nc, err := events.Connect(context.Background(), events.Config{
		URL:            ns.ClientURL(),
		Name:           "test",
		ConnectTimeout: time.Second,
	}, logger.Noop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = events.Close(nc) })

	t.Run("publishes envelope with prefix", func(t *testing.T) {
		received := make(chan *nats.Msg, 1)
		sub, err := nc.ChanSubscribe("vault.files.renamed", received)
		require.NoError(t, err)
		defer func() { _ = sub.Unsubscribe() }()
		require.NoError(t, nc.Flush())

		pub := events.NewNATSPublisher(nc, "vault")
		ctx := requestid.WithContext(context.Background(), "req-1")
		require.NoError(t, pub.Publish(ctx, "files.renamed", fileRenamed{FileID: "f1", Name: "a.txt"}))

		select {
		case msg := <-received:
			var env events.Envelope
			require.NoError(t, json.Unmarshal(msg.Data, &env))
			assert.Equal(t, "vault.files.renamed", env.Subject)
			assert.NotEmpty(t, env.ID)
			assert.Equal(t, "req-1", msg.Header.Get("X-Request-ID"))

			var p fileRenamed
			require.NoError(t, json.Unmarshal(env.Payload, &p))
			assert.Equal(t, fileRenamed{FileID: "f1", Name: "a.txt"}, p)
		case <-time.After(2 * time.Second):
			t.Fatal("no message received")
		}
	})

	t.Run("subscribe decodes envelopes", func(t *testing.T) {
		got := make(chan events.Envelope, 1)
		sub, err := events.Subscribe(nc, "files.deleted", func(env events.Envelope) { got <- env })
		require.NoError(t, err)
		defer func() { _ = sub.Unsubscribe() }()
		require.NoError(t, nc.Flush())

		require.NoError(t, events.NewNATSPublisher(nc, "").Publish(context.Background(), "files.deleted", map[string]string{"file_id": "f2"}))

		select {
		case env := <-got:
			assert.Equal(t, "files.deleted", env.Subject)
			assert.JSONEq(t, `{"file_id":"f2"}`, string(env.Payload))
		case <-time.After(2 * time.Second):
			t.Fatal("no envelope received")
		}
	})

	t.Run("empty subject", func(t *testing.T) {
		err := events.NewNATSPublisher(nc, "").Publish(context.Background(), "", nil)
		assert.ErrorIs(t, err, events.ErrEmptySubject)
	})

	t.Run("unencodable payload", func(t *testing.T) {
		err := events.NewNATSPublisher(nc, "").Publish(context.Background(), "x", make(chan int))
		assert.ErrorIs(t, err, events.ErrMarshalFailed)
	})
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := events.Connect(context.Background(), events.Config{
		URL:            "nats://127.0.0.1:1",
		ConnectTimeout: 100 * time.Millisecond,
	}, logger.Noop())
	assert.ErrorIs(t, err, events.ErrConnectFailed)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, payload any) error {
	args := m.Called(ctx, subject, payload)
	return args.Error(0)
}

func TestLoggingPublisher(t *testing.T) {
	t.Parallel()

	next := &MockPublisher{}
	next.On("Publish", mock.Anything, "files.shared", mock.Anything).Return(errors.New("down"))

	pub := events.NewLoggingPublisher(next, logger.Noop())
	assert.NoError(t, pub.Publish(context.Background(), "files.shared", struct{}{}))
	next.AssertExpectations(t)

	assert.NoError(t, events.NoopPublisher{}.Publish(context.Background(), "x", nil))
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ns := runServer(t)
	nc, err := events.Connect(context.Background(), events.Config{URL: ns.ClientURL(), ConnectTimeout: time.Second}, logger.Noop())
	require.NoError(t, err)

	check := events.Healthcheck(nc)
	require.NoError(t, check(context.Background()))

	nc.Close()
	assert.ErrorIs(t, check(context.Background()), events.ErrNotConnected)
	assert.ErrorIs(t, events.Healthcheck(nil)(context.Background()), events.ErrNotConnected)
}
