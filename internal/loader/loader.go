package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/resource"
)

var ErrGameNotFound = fmt.Errorf("game not found: %w", apperror.ErrNotFound)

// Loader lists and loads the game snapshots of a directory. The game list
// is cached until Refresh points the loader somewhere else.
type Loader struct {
	logger *slog.Logger

	mu       sync.RWMutex
	dir      string
	metadata resource.Metadata
	cache    []entity.GameInfo
}

func New(logger *slog.Logger, dir string, metadata resource.Metadata) *Loader {
	return &Loader{
		logger:   logger.With("component", "loader"),
		dir:      dir,
		metadata: metadata,
	}
}

func (that *Loader) Dir() string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.dir
}

func (that *Loader) Metadata() resource.Metadata {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.metadata
}

// Refresh switches to a synced directory and drops the cached list.
func (that *Loader) Refresh(dir string, metadata resource.Metadata) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.dir = dir
	that.metadata = metadata
	that.cache = nil
}

// Games lists every readable snapshot ordered by file name. Unreadable
// files are skipped.
func (that *Loader) Games() ([]entity.GameInfo, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.cache != nil {
		return append([]entity.GameInfo(nil), that.cache...), nil
	}

	games, err := that.discover()
	if err != nil {
		return nil, err
	}

	that.cache = games

	return append([]entity.GameInfo(nil), games...), nil
}

// Matching filters Games by a case-insensitive substring. A blank query
// matches everything.
func (that *Loader) Matching(query string) ([]entity.GameInfo, error) {
	games, err := that.Games()
	if err != nil {
		return nil, err
	}

	matched := make([]entity.GameInfo, 0, len(games))
	for _, game := range games {
		if game.Matches(query) {
			matched = append(matched, game)
		}
	}

	return matched, nil
}

// Find returns the listed game with the given id.
func (that *Loader) Find(id string) (entity.GameInfo, error) {
	games, err := that.Games()
	if err != nil {
		return entity.GameInfo{}, err
	}

	for _, game := range games {
		if strings.EqualFold(game.ID, id) {
			return game, nil
		}
	}

	return entity.GameInfo{}, fmt.Errorf("%s: %w", id, ErrGameNotFound)
}

// Load builds a fresh session for game from its snapshot file.
func (that *Loader) Load(ctx context.Context, game entity.GameInfo) (*entity.GameSession, error) {
	log := that.logger.With("method", "Load", "game_id", game.ID)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	that.mu.RLock()
	dir := that.dir
	that.mu.RUnlock()

	path := filepath.Join(dir, game.Folder)

	raw, err := readSnapshot(path)
	if err != nil {
		return nil, err
	}

	session := raw.session(game, time.Now().UTC())
	log.Info("session loaded",
		"corporations", len(session.Corporations),
		"market_rows", len(session.Market),
		"train_types", len(session.TrainTypes),
	)

	return session, nil
}

func (that *Loader) discover() ([]entity.GameInfo, error) {
	log := that.logger.With("method", "discover", "dir", that.dir)

	files, err := os.ReadDir(that.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []entity.GameInfo{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w: %w", apperror.ErrIOFailure, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	games := make([]entity.GameInfo, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !resource.IsSnapshotFile(file.Name()) {
			continue
		}

		raw, err := readSnapshot(filepath.Join(that.dir, file.Name()))
		if err != nil {
			log.Warn("skipping game snapshot", "file", file.Name(), "error", err)
			continue
		}

		id := strings.TrimPrefix(strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())), "g_")
		game := raw.gameInfo(id, file.Name())
		game.Commit = that.metadata.Commit
		game.UpdatedAt = that.metadata.UpdatedAt

		games = append(games, game)
	}

	return games, nil
}

func readSnapshot(path string) (snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot{}, fmt.Errorf("%s: %w", path, ErrGameNotFound)
	}

	if err != nil {
		return snapshot{}, fmt.Errorf("failed to read %s: %w: %w", path, apperror.ErrIOFailure, err)
	}

	var raw snapshot
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return snapshot{}, fmt.Errorf("failed to parse %s: %w: %w", path, apperror.ErrSerialization, err)
	}

	return raw, nil
}
