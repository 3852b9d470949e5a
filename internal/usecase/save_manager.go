package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/save"
)

type saveRepo interface {
	Create(ctx context.Context, payload *save.Payload) (save.Entry, error)
	Read(ctx context.Context, location string) (*save.Payload, error)
	Write(ctx context.Context, location string, payload *save.Payload) error
	List(ctx context.Context) ([]save.Entry, error)
}

// SaveManager owns the save documents and their undo history.
type SaveManager struct {
	logger   *slog.Logger
	saveRepo saveRepo
}

func NewSaveManager(logger *slog.Logger, saveRepo saveRepo) *SaveManager {
	return &SaveManager{
		logger: logger.With("component", "save_manager"),

		saveRepo: saveRepo,
	}
}

// Entries lists every readable save, newest first.
func (that *SaveManager) Entries(ctx context.Context) ([]save.Entry, error) {
	entries, err := that.saveRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	save.SortNewestFirst(entries)

	return entries, nil
}

// Latest returns the most recently written save. ok is false when there are
// none.
func (that *SaveManager) Latest(ctx context.Context) (entry save.Entry, ok bool, err error) {
	entries, err := that.Entries(ctx)
	if err != nil {
		return save.Entry{}, false, err
	}

	if len(entries) == 0 {
		return save.Entry{}, false, nil
	}

	return entries[0], true, nil
}

// CreateSave starts a new save of game with state as its first snapshot.
func (that *SaveManager) CreateSave(ctx context.Context, game entity.GameInfo, name string, state json.RawMessage) (save.Entry, error) {
	log := that.logger.With("method", "CreateSave", "game_id", game.ID)

	entry, err := that.saveRepo.Create(ctx, save.NewPayload(game, name, state))
	if err != nil {
		return save.Entry{}, fmt.Errorf("failed to create save: %w", err)
	}

	log.Info("save created", "location", entry.Location, "name", entry.Name)

	return entry, nil
}

// SaveSelection records a chosen game before any session state exists.
func (that *SaveManager) SaveSelection(ctx context.Context, game entity.GameInfo, name string) (save.Entry, error) {
	return that.CreateSave(ctx, game, name, nil)
}

// UpdateSave pushes state onto the save's history.
func (that *SaveManager) UpdateSave(ctx context.Context, entry save.Entry, state json.RawMessage) (save.Entry, error) {
	payload, err := that.Load(ctx, entry)
	if err != nil {
		return save.Entry{}, err
	}

	payload.Push(state)

	return that.Persist(ctx, entry, payload)
}

// Load reads a save with its history repaired.
func (that *SaveManager) Load(ctx context.Context, entry save.Entry) (*save.Payload, error) {
	payload, err := that.saveRepo.Read(ctx, entry.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load save: %w", err)
	}

	return payload, nil
}

// SetHistoryIndex moves the save's history cursor and stores the result.
func (that *SaveManager) SetHistoryIndex(ctx context.Context, entry save.Entry, index int) (save.Entry, *save.Payload, error) {
	payload, err := that.Load(ctx, entry)
	if err != nil {
		return save.Entry{}, nil, err
	}

	if err = payload.SetIndex(index); err != nil {
		return save.Entry{}, nil, fmt.Errorf("failed to move history: %w", err)
	}

	updated, err := that.Persist(ctx, entry, payload)
	if err != nil {
		return save.Entry{}, nil, err
	}

	that.logger.Debug("history moved", "location", entry.Location, "index", index, "total", payload.HistoryLen())

	return updated, payload, nil
}

// Persist writes payload back to the entry's location.
func (that *SaveManager) Persist(ctx context.Context, entry save.Entry, payload *save.Payload) (save.Entry, error) {
	payload.Normalize()

	if err := that.saveRepo.Write(ctx, entry.Location, payload); err != nil {
		return save.Entry{}, fmt.Errorf("failed to write save: %w", err)
	}

	return payload.Entry(entry.Location), nil
}
