package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/save"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayload(gameID string, savedAt time.Time) *save.Payload {
	payload := save.NewPayload(entity.GameInfo{ID: gameID, Title: "Shikoku " + gameID}, "", json.RawMessage(`{"turn":1}`))
	payload.SavedAt = savedAt

	return payload
}

// testSaveRepository runs the behaviour every backend shares.
func testSaveRepository(ctx context.Context, t *testing.T, newRepo func(t *testing.T) SaveRepository) {
	t.Helper()

	t.Run("created save can be read back", func(t *testing.T) {
		repo := newRepo(t)

		// Given: a fresh payload
		payload := newPayload("1889", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

		// When: it is created
		entry, err := repo.Create(ctx, payload)
		require.NoError(t, err)

		// Then: the entry describes it and Read returns it
		assert.Equal(t, "1889", entry.GameID)
		assert.Equal(t, "Shikoku 1889", entry.Name)
		assert.True(t, payload.SavedAt.Equal(entry.UpdatedAt))

		loaded, err := repo.Read(ctx, entry.Location)
		require.NoError(t, err)
		assert.Equal(t, payload.GameID, loaded.GameID)
		assert.JSONEq(t, `{"turn":1}`, string(loaded.State))
		assert.Equal(t, 1, loaded.HistoryLen())
	})

	t.Run("write replaces the payload", func(t *testing.T) {
		repo := newRepo(t)
		payload := newPayload("1830", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
		entry, err := repo.Create(ctx, payload)
		require.NoError(t, err)

		payload.Push(json.RawMessage(`{"turn":2}`))
		require.NoError(t, repo.Write(ctx, entry.Location, payload))

		loaded, err := repo.Read(ctx, entry.Location)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.HistoryLen())
		assert.Equal(t, 1, loaded.HistoryIndex)
		assert.JSONEq(t, `{"turn":2}`, string(loaded.State))

		entries, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("list is newest first", func(t *testing.T) {
		repo := newRepo(t)
		base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

		_, err := repo.Create(ctx, newPayload("1889", base))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newPayload("1846", base.Add(2*time.Hour)))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newPayload("1830", base.Add(time.Hour)))
		require.NoError(t, err)

		entries, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "1846", entries[0].GameID)
		assert.Equal(t, "1830", entries[1].GameID)
		assert.Equal(t, "1889", entries[2].GameID)
	})

	t.Run("missing save is not found", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Read(ctx, "save:missing")

		require.ErrorIs(t, err, ErrSaveNotFound)
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
