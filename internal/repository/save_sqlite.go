package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/save"
)

type sqliteSaves struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSaveRepository keeps saves in the saves table created by
// storage.Storage.Init.
func NewSQLiteSaveRepository(logger *slog.Logger, db *sql.DB) SaveRepository {
	return &sqliteSaves{
		db:     db,
		logger: logger.With("component", "sqlite_saves"),
	}
}

func (that *sqliteSaves) Create(ctx context.Context, payload *save.Payload) (save.Entry, error) {
	location := uuid.NewString()

	if err := that.Write(ctx, location, payload); err != nil {
		return save.Entry{}, err
	}

	return payload.Entry(location), nil
}

func (that *sqliteSaves) Read(ctx context.Context, location string) (*save.Payload, error) {
	var data []byte

	err := that.db.QueryRowContext(ctx, `SELECT payload FROM saves WHERE location = ?`, location).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", location, ErrSaveNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("can't read save: %w: %w", apperror.ErrIOFailure, err)
	}

	payload, err := save.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	return payload, nil
}

func (that *sqliteSaves) Write(ctx context.Context, location string, payload *save.Payload) error {
	data, err := payload.Encode()
	if err != nil {
		return err
	}

	query := `INSERT INTO saves (location, game_id, name, saved_at, payload) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(location) DO UPDATE SET
			game_id = excluded.game_id,
			name = excluded.name,
			saved_at = excluded.saved_at,
			payload = excluded.payload`

	_, err = that.db.ExecContext(ctx, query,
		location, payload.GameID, payload.Name, payload.SavedAt.UTC().UnixNano(), data)
	if err != nil {
		return fmt.Errorf("can't write save: %w: %w", apperror.ErrIOFailure, err)
	}

	return nil
}

// List returns the saves newest first. Each payload is decoded as well so
// rows that no longer decode are skipped with a warning instead of failing
// later on Read.
func (that *sqliteSaves) List(ctx context.Context) ([]save.Entry, error) {
	log := that.logger.With("method", "List")

	rows, err := that.db.QueryContext(ctx, `SELECT location, game_id, name, saved_at, payload FROM saves ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("can't list saves: %w: %w", apperror.ErrIOFailure, err)
	}
	defer rows.Close()

	entries := []save.Entry{}
	for rows.Next() {
		var (
			entry   save.Entry
			savedAt int64
			data    []byte
		)

		if err = rows.Scan(&entry.Location, &entry.GameID, &entry.Name, &savedAt, &data); err != nil {
			return nil, fmt.Errorf("can't scan save: %w: %w", apperror.ErrIOFailure, err)
		}

		if _, err = save.Decode(data); err != nil {
			log.Warn("skipping unreadable save", "location", entry.Location, "error", err)
			continue
		}

		entry.UpdatedAt = time.Unix(0, savedAt).UTC()
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list saves: %w: %w", apperror.ErrIOFailure, err)
	}

	return entries, nil
}
