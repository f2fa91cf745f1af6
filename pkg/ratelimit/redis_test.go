package ratelimit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"usersvc/pkg/ratelimit"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%d", host, port.Int())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	return client
}

func TestRedis_Allow(t *testing.T) {
	client := setupRedis(t)
	l := ratelimit.NewRedis(client, 3, time.Hour)
	ctx := context.Background()

	for range 3 {
		ok, _, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, retry, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)
	require.Greater(t, retry, time.Duration(0))
	require.LessOrEqual(t, retry, time.Hour)

	ok, _, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedis_Allow_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	_, _, err := ratelimit.NewRedis(client, 1, time.Second).Allow(context.Background(), "k")
	require.Error(t, err)
}
