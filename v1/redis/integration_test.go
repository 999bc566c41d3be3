package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

func TestRedisCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	host, port, containerInstance := initializeRedis(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	var cache Cache
	app := fx.New(
		FXModule,
		fx.Provide(func() Config {
			return Config{Enabled: true, Host: host, Port: port, TTL: time.Minute, KeyPrefix: "it:"}
		}),
		fx.Populate(&cache),
	)
	require.NoError(t, app.Start(ctx))
	defer app.Stop(ctx)

	client, ok := cache.(*RedisClient)
	require.True(t, ok)

	t.Run("miss then hit", func(t *testing.T) {
		var got []string
		assert.True(t, IsCacheMiss(cache.GetJSON(ctx, "platforms", &got)))

		require.NoError(t, cache.SetJSON(ctx, "platforms", []string{"NOAA-20"}))
		require.NoError(t, cache.GetJSON(ctx, "platforms", &got))
		assert.Equal(t, []string{"NOAA-20"}, got)

		ttl, err := client.Client().TTL(ctx, "it:platforms").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("invalidate", func(t *testing.T) {
		require.NoError(t, cache.SetJSON(ctx, "sensors", []string{"viirs"}))
		require.NoError(t, cache.Invalidate(ctx, "sensors", "platforms"))

		var got []string
		assert.True(t, IsCacheMiss(cache.GetJSON(ctx, "sensors", &got)))
	})

	t.Run("remember", func(t *testing.T) {
		calls := 0
		load := func(context.Context) ([]string, error) {
			calls++
			return []string{"avhrr", "viirs"}, nil
		}
		for i := 0; i < 3; i++ {
			got, err := Remember(ctx, cache, "remember", load)
			require.NoError(t, err)
			assert.Equal(t, []string{"avhrr", "viirs"}, got)
		}
		assert.Equal(t, 1, calls)
	})
}

func TestDisabledCacheIntegration(t *testing.T) {
	var cache Cache
	app := fx.New(
		FXModule,
		fx.Provide(func() Config { return Config{Enabled: false} }),
		fx.Populate(&cache),
	)
	require.NoError(t, app.Start(context.Background()))
	defer app.Stop(context.Background())

	assert.IsType(t, NoopCache{}, cache)
}

func initializeRedis(ctx context.Context, t *testing.T) (string, int, testcontainers.Container) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(30*time.Second),
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	}

	var containerInstance testcontainers.Container
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		containerInstance, lastErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if lastErr == nil {
			break
		}
		if strings.Contains(lastErr.Error(), "docker.sock") {
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}
		break
	}
	require.NoError(t, lastErr, "failed to start Redis container")

	port, err := containerInstance.MappedPort(ctx, "6379")
	require.NoError(t, err)
	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)

	return host, port.Int(), containerInstance
}
