package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ruthgard/18TUI/internal/apperror"
)

var ErrNoSnapshots = fmt.Errorf("no game snapshots found: %w", apperror.ErrNotFound)

// Event is the outcome of one sync attempt.
type Event interface {
	isEvent()
}

type Success struct {
	Path     string
	Metadata Metadata
}

type Error struct {
	Err error
}

func (Success) isEvent() {}
func (Error) isEvent()   {}

// Syncer refreshes the game resources and reports where they now live.
type Syncer interface {
	Sync(ctx context.Context) (path string, metadata Metadata, err error)
}

// Run performs one sync attempt and delivers exactly one event for it. The
// event is dropped if ctx ends before anyone receives it.
func Run(ctx context.Context, syncer Syncer, events chan<- Event) {
	var event Event

	path, metadata, err := syncer.Sync(ctx)
	if err != nil {
		event = Error{Err: err}
	} else {
		event = Success{Path: path, Metadata: metadata}
	}

	select {
	case events <- event:
	case <-ctx.Done():
	}
}

// LocalSync refreshes a directory of pre-extracted game snapshots. It trusts
// an existing manifest and otherwise stamps the directory with the time of
// its newest snapshot.
type LocalSync struct {
	logger       *slog.Logger
	dir          string
	manifestPath string
}

func NewLocalSync(logger *slog.Logger, dir, manifestPath string) *LocalSync {
	if manifestPath == "" {
		manifestPath = ManifestPath(dir)
	}

	return &LocalSync{
		logger:       logger.With("component", "resource_sync"),
		dir:          dir,
		manifestPath: manifestPath,
	}
}

func (that *LocalSync) Dir() string {
	return that.dir
}

func (that *LocalSync) Sync(ctx context.Context) (string, Metadata, error) {
	log := that.logger.With("method", "Sync", "dir", that.dir)

	if err := ctx.Err(); err != nil {
		return "", Metadata{}, err
	}

	metadata, ok, err := LoadMetadata(that.manifestPath)
	if err != nil {
		log.Warn("ignoring unreadable manifest", "error", err)
	}

	if !ok || metadata.UpdatedAt == nil {
		newest, err := newestSnapshot(that.dir)
		if err != nil {
			return "", Metadata{}, err
		}

		updatedAt := newest.UTC()
		metadata.UpdatedAt = &updatedAt
	}

	if err = metadata.Persist(that.manifestPath); err != nil {
		return "", Metadata{}, err
	}

	log.Info("resources synced", "commit", metadata.Commit, "updated_at", metadata.UpdatedAt)

	return that.dir, metadata, nil
}

// IsSnapshotFile reports whether name looks like a game snapshot.
func IsSnapshotFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func newestSnapshot(dir string) (time.Time, error) {
	var newest time.Time

	files, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return newest, fmt.Errorf("%s: %w", dir, ErrNoSnapshots)
	}

	if err != nil {
		return newest, fmt.Errorf("failed to read %s: %w: %w", dir, apperror.ErrIOFailure, err)
	}

	found := false
	for _, file := range files {
		if file.IsDir() || !IsSnapshotFile(file.Name()) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if !found || info.ModTime().After(newest) {
			newest = info.ModTime()
			found = true
		}
	}

	if !found {
		return newest, fmt.Errorf("%s: %w", dir, ErrNoSnapshots)
	}

	return newest, nil
}
