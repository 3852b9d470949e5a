package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruthgard/18TUI/internal/apperror"
)

const redisPingTimeout = 5 * time.Second

// RedisStorage holds the client the save repository writes through.
type RedisStorage struct {
	Connection *redis.Client
}

// NewRedisStorage connects to the save database and checks it answers.
func NewRedisStorage(ctx context.Context, addr string, db int) (*RedisStorage, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := conn.Ping(pingCtx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't reach save database at %s: %w: %w", addr, apperror.ErrIOFailure, err)
	}

	return &RedisStorage{Connection: conn}, nil
}

// Reset drops every save in the selected database.
func (that *RedisStorage) Reset(ctx context.Context) error {
	if err := that.Connection.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("can't reset save database: %w: %w", apperror.ErrIOFailure, err)
	}

	return nil
}

func (that *RedisStorage) Close() error {
	return that.Connection.Close()
}
