package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/save"
)

const saveExtension = ".json"

type fileSaves struct {
	dir    string
	logger *slog.Logger
}

// NewFileSaveRepository keeps one JSON document per save under dir.
func NewFileSaveRepository(logger *slog.Logger, dir string) SaveRepository {
	return &fileSaves{
		dir:    dir,
		logger: logger.With("component", "file_saves"),
	}
}

func (that *fileSaves) Create(ctx context.Context, payload *save.Payload) (save.Entry, error) {
	if err := os.MkdirAll(that.dir, 0o755); err != nil {
		return save.Entry{}, fmt.Errorf("could not create save dir: %w: %w", apperror.ErrIOFailure, err)
	}

	location := that.freeLocation(payload)
	if err := that.Write(ctx, location, payload); err != nil {
		return save.Entry{}, err
	}

	return payload.Entry(location), nil
}

// freeLocation names the file after the game and the save time, appending
// a counter when the name is taken.
func (that *fileSaves) freeLocation(payload *save.Payload) string {
	base := save.SanitizeComponent(payload.GameID) + "_" + payload.SavedAt.UTC().Format("20060102150405")

	location := filepath.Join(that.dir, base+saveExtension)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(location); errors.Is(err, fs.ErrNotExist) {
			return location
		}

		location = filepath.Join(that.dir, base+"_"+strconv.Itoa(counter)+saveExtension)
	}
}

func (that *fileSaves) Read(_ context.Context, location string) (*save.Payload, error) {
	data, err := os.ReadFile(location)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", location, ErrSaveNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("could not read save %s: %w: %w", location, apperror.ErrIOFailure, err)
	}

	payload, err := save.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	return payload, nil
}

func (that *fileSaves) Write(_ context.Context, location string, payload *save.Payload) error {
	data, err := payload.Encode()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return fmt.Errorf("could not create save dir: %w: %w", apperror.ErrIOFailure, err)
	}

	if err = os.WriteFile(location, data, 0o644); err != nil {
		return fmt.Errorf("could not write save %s: %w: %w", location, apperror.ErrIOFailure, err)
	}

	return nil
}

// List returns the saves in the directory, newest first. A missing directory
// is an empty list and unreadable documents are skipped.
func (that *fileSaves) List(ctx context.Context) ([]save.Entry, error) {
	log := that.logger.With("method", "List")

	files, err := os.ReadDir(that.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []save.Entry{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("could not list saves: %w: %w", apperror.ErrIOFailure, err)
	}

	entries := make([]save.Entry, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), saveExtension) {
			continue
		}

		location := filepath.Join(that.dir, file.Name())

		payload, err := that.Read(ctx, location)
		if err != nil {
			log.Warn("skipping unreadable save", "path", location, "error", err)
			continue
		}

		entries = append(entries, payload.Entry(location))
	}

	save.SortNewestFirst(entries)

	return entries, nil
}
