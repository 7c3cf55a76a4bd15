package rabbitmq

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const amqpPort = nat.Port("5672/tcp")

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// amqpURIForTest возвращает адрес брокера: внешний из TEST_RABBITMQ_URL или контейнер.
func amqpURIForTest(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping rabbitmq container test in short mode")
	}
	if uri := os.Getenv("TEST_RABBITMQ_URL"); uri != "" {
		t.Logf("Using external RabbitMQ service: %s", uri)
		return uri
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{string(amqpPort), "15672/tcp"},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER":  "guest",
			"RABBITMQ_DEFAULT_PASS":  "guest",
			"RABBITMQ_DEFAULT_VHOST": "/",
		},
		WaitingFor: wait.ForListeningPort(amqpPort).
			WithStartupTimeout(2 * time.Minute),
	}

	rmqContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := rmqContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate rabbitmq container: %v", err)
		}
	})

	host, err := rmqContainer.Host(ctx)
	require.NoError(t, err)
	port, err := rmqContainer.MappedPort(ctx, amqpPort)
	require.NoError(t, err)

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}
