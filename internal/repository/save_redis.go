package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/save"
)

const (
	saveKeyPrefix = "save:"
	saveIndexKey  = "saves"
)

type redisSaves struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisSaveRepository stores each payload under save:<uuid> and indexes
// the keys in a sorted set scored by save time.
func NewRedisSaveRepository(logger *slog.Logger, client *redis.Client) SaveRepository {
	return &redisSaves{
		client: client,
		logger: logger.With("component", "redis_saves"),
	}
}

func (that *redisSaves) Create(ctx context.Context, payload *save.Payload) (save.Entry, error) {
	location := saveKeyPrefix + uuid.NewString()

	if err := that.Write(ctx, location, payload); err != nil {
		return save.Entry{}, err
	}

	return payload.Entry(location), nil
}

func (that *redisSaves) Read(ctx context.Context, location string) (*save.Payload, error) {
	if !strings.HasPrefix(location, saveKeyPrefix) {
		return nil, fmt.Errorf("%s: %w", location, ErrSaveNotFound)
	}

	response, err := that.client.Get(ctx, location).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", location, ErrSaveNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get save: %w: %w", apperror.ErrIOFailure, err)
	}

	payload, err := save.Decode(response)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	return payload, nil
}

func (that *redisSaves) Write(ctx context.Context, location string, payload *save.Payload) error {
	data, err := payload.Encode()
	if err != nil {
		return err
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, location, data, 0)
		pipe.ZAdd(ctx, saveIndexKey, redis.Z{
			Score:  float64(payload.SavedAt.UnixNano()),
			Member: location,
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set save: %w: %w", apperror.ErrIOFailure, err)
	}

	return nil
}

// List walks the index newest first. Keys that vanished or hold corrupt
// payloads are skipped.
func (that *redisSaves) List(ctx context.Context) ([]save.Entry, error) {
	log := that.logger.With("method", "List")

	locations, err := that.client.ZRevRange(ctx, saveIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w: %w", apperror.ErrIOFailure, err)
	}

	entries := make([]save.Entry, 0, len(locations))
	for _, location := range locations {
		payload, err := that.Read(ctx, location)
		if err != nil {
			log.Warn("skipping unreadable save", "key", location, "error", err)
			continue
		}

		entries = append(entries, payload.Entry(location))
	}

	save.SortNewestFirst(entries)

	return entries, nil
}
