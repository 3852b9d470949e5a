package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/ruthgard/18TUI/internal/repository/storage"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite carries the shared fixtures of repository tests.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Redis   *redis.Client
	storage *storage.RedisStorage
}

// NewLogger is the logger used by tests that need no containers.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// New starts a throwaway save database in a Redis container. The test is
// skipped when no docker daemon is reachable.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start save database: %v", err)
	}

	_ = resource.Expire(expireDuration)

	pool.MaxWait = maxWaitDuration

	// the container accepts connections a moment after it starts
	var saves *storage.RedisStorage
	if err = pool.Retry(func() error {
		saves, err = storage.NewRedisStorage(ctx, resource.GetHostPort(redisPort), 0)
		return err
	}); err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("could not connect to save database: %v", err)
	}

	st := &Suite{
		T:       t,
		Logger:  NewLogger(),
		Redis:   saves.Connection,
		storage: saves,
	}
	st.ResetSaves(ctx, t)

	t.Cleanup(func() {
		_ = saves.Close()

		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge save database: %v", err)
		}
	})

	return ctx, st
}

// ResetSaves empties the save database, index included, so each subtest
// starts from no saves.
func (that *Suite) ResetSaves(ctx context.Context, t *testing.T) {
	t.Helper()

	if err := that.storage.Reset(ctx); err != nil {
		t.Fatalf("could not reset saves: %v", err)
	}
}
