// Package mongotest starts a throwaway MongoDB container for integration tests.
package mongotest

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"

	mongox "github.com/dmitrymomot/filevault/pkg/mongo"
)

// Image is the MongoDB image used for tests.
const Image = "mongo:8"

// Container is a running MongoDB test container.
type Container struct {
	container testcontainers.Container
	URL       string
}

// Start launches a container and waits until it accepts connections.
func Start(ctx context.Context) (*Container, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        Image,
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start mongo container: %w", err)
	}

	endpoint, err := c.Endpoint(ctx, "")
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("mongo container endpoint: %w", err)
	}

	return &Container{container: c, URL: fmt.Sprintf("mongodb://%s/", endpoint)}, nil
}

// Database connects to a fresh database named name.
func (c *Container) Database(ctx context.Context, name string) (*mongo.Database, error) {
	return mongox.NewWithDatabase(ctx, mongox.Config{
		ConnectionURL:  c.URL,
		Database:       name,
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
		RetryAttempts:  3,
		RetryInterval:  time.Second,
		RetryWrites:    true,
		RetryReads:     true,
	})
}

// Terminate stops and removes the container.
func (c *Container) Terminate() error {
	if c == nil || c.container == nil {
		return nil
	}
	return testcontainers.TerminateContainer(c.container)
}
