package stream_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportlabs/triagedesk/internal/stream"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis spins up a Redis container and returns a connected client.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	return client
}

func TestPublishAnalysisCompleted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := setupRedis(t)
	ctx := context.Background()

	producer := stream.NewProducer(client)
	payload := stream.AnalysisCompleted{
		IssueID:    uuid.New(),
		CustomerID: uuid.New(),
		Severity:   "HIGH",
		Flags:      []string{"Multiple issues in short time period"},
	}
	require.NoError(t, producer.PublishAnalysisCompleted(ctx, payload))

	entries, err := client.XRange(ctx, stream.AnalysisStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, ok := entries[0].Values["data"].(string)
	require.True(t, ok)

	var msg struct {
		ID        string                   `json:"id"`
		Type      string                   `json:"type"`
		Payload   stream.AnalysisCompleted `json:"payload"`
		CreatedAt time.Time                `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, stream.EventAnalysisCompleted, msg.Type)
	assert.Equal(t, payload.IssueID, msg.Payload.IssueID)
	assert.Equal(t, payload.Flags, msg.Payload.Flags)
	assert.False(t, msg.CreatedAt.IsZero())
}
