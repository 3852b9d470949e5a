package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/resource"
	"github.com/ruthgard/18TUI/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shikokuYAML = `
info:
  title: Shikoku 1889
  subtitle: History of Shikoku Railways
  designer: Yasutaka Ikeda
  location: Shikoku, Japan
corporations:
  - sym: AR
    name: Awa Railroad
    color: ":black"
    text_color: " white "
  - sym: IR
market:
  - [75, 80p, 90p, null, {type: close}]
  - [65, [70, 75], "100"]
trains:
  - name: "2"
    distance: 2
    price: 80
    num: 6
    rusts_on: "4"
  - name: D
    distance: 999
    price: 1100
phases:
  - "2"
  - name: "3"
    operating_rounds: 2
`

const chesapeakeJSON = `{
  "info": {"id": "18Chesapeake", "title": "18Chesapeake"},
  "corporations": [{"sym": "PRR", "name": "Pennsylvania Railroad"}],
  "market": [["80", "85", "90"]],
  "trains": [{"name": "3", "distance": [{"nodes": ["city"], "pay": 3}], "num": 2}]
}`

func writeGames(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"g_1889.yaml":       shikokuYAML,
		"18chesapeake.json": chesapeakeJSON,
		"broken.yml":        "info: [unclosed",
		"README.md":         "not a game",
	}

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	return dir
}

func TestLoader_Games(t *testing.T) {
	t.Run("lists readable snapshots with manifest metadata", func(t *testing.T) {
		// Given: two good snapshots, a broken one and a foreign file
		updatedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		loader := New(suite.NewLogger(), writeGames(t), resource.Metadata{Commit: "abc", UpdatedAt: &updatedAt})

		// When
		games, err := loader.Games()

		// Then
		require.NoError(t, err)
		require.Len(t, games, 2)
		assert.Equal(t, "18Chesapeake", games[0].ID)
		assert.Equal(t, "18chesapeake.json", games[0].Folder)
		assert.Equal(t, "1889", games[1].ID)
		assert.Equal(t, "Shikoku 1889", games[1].Title)
		assert.Equal(t, "Shikoku 1889 · History of Shikoku Railways", games[1].DisplayName())
		assert.Equal(t, "abc", games[1].Commit)
		assert.Equal(t, &updatedAt, games[1].UpdatedAt)
	})

	t.Run("matching searches designer and location", func(t *testing.T) {
		loader := New(suite.NewLogger(), writeGames(t), resource.Metadata{})

		byDesigner, err := loader.Matching("ikeda")
		require.NoError(t, err)
		require.Len(t, byDesigner, 1)
		assert.Equal(t, "1889", byDesigner[0].ID)

		all, err := loader.Matching("  ")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("missing directory has no games", func(t *testing.T) {
		loader := New(suite.NewLogger(), filepath.Join(t.TempDir(), "absent"), resource.Metadata{})

		games, err := loader.Games()

		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("refresh drops the cached list", func(t *testing.T) {
		loader := New(suite.NewLogger(), filepath.Join(t.TempDir(), "absent"), resource.Metadata{})
		games, err := loader.Games()
		require.NoError(t, err)
		require.Empty(t, games)

		loader.Refresh(writeGames(t), resource.Metadata{Commit: "new"})

		games, err = loader.Games()
		require.NoError(t, err)
		assert.Len(t, games, 2)
		assert.Equal(t, "new", loader.Metadata().Commit)
	})

	t.Run("find is case insensitive", func(t *testing.T) {
		loader := New(suite.NewLogger(), writeGames(t), resource.Metadata{})

		game, err := loader.Find("18chesapeake")
		require.NoError(t, err)
		assert.Equal(t, "18Chesapeake", game.ID)

		_, err = loader.Find("1830")
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	loader := New(suite.NewLogger(), writeGames(t), resource.Metadata{})

	t.Run("builds the session from a yaml snapshot", func(t *testing.T) {
		game, err := loader.Find("1889")
		require.NoError(t, err)

		// When
		session, err := loader.Load(ctx, game)

		// Then: market entries are stringified and indexed
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"75", "80p", "90p", "", "*"},
			{"65", "70,75", "100"},
		}, session.Market)

		_, hole := session.Cell(0, 3)
		assert.False(t, hole)
		assert.True(t, session.IsPar(0, 1))
		assert.False(t, session.IsPar(0, 0))
		require.Len(t, session.ParCells, 2)

		cell, ok := session.Cell(1, 1)
		require.True(t, ok)
		assert.Equal(t, 70, cell.NumericValue())

		// And: corporations carry cleaned colors and fallbacks
		require.Len(t, session.Corporations, 2)
		assert.Equal(t, "black", session.Corporations[0].Color)
		assert.Equal(t, "white", session.Corporations[0].TextColor)
		assert.Equal(t, "IR", session.Corporations[1].Name)

		// And: the pool starts at the full supply
		require.Len(t, session.TrainPool, 2)
		assert.Equal(t, 6, session.TrainPool[0].Remaining)
		assert.Equal(t, 0, session.TrainPool[1].Remaining)
		limit, limited := session.TrainTypes[0].StopLimit()
		assert.True(t, limited)
		assert.Equal(t, 2, limit)

		phases := session.PhaseInfos()
		require.Len(t, phases, 2)
		assert.Equal(t, "3", phases[1].Name)
		assert.False(t, session.LoadedAt.IsZero())
	})

	t.Run("json snapshot without flagged par cells makes every cell par", func(t *testing.T) {
		game, err := loader.Find("18Chesapeake")
		require.NoError(t, err)

		session, err := loader.Load(ctx, game)

		require.NoError(t, err)
		assert.Len(t, session.ParCells, 3)
		assert.Empty(t, session.Phases)
		limit, limited := session.TrainTypes[0].StopLimit()
		assert.True(t, limited)
		assert.Equal(t, 1, limit)
	})

	t.Run("snapshot removed after listing is not found", func(t *testing.T) {
		game, err := loader.Find("1889")
		require.NoError(t, err)
		game.Folder = "gone.yaml"

		_, err = loader.Load(ctx, game)

		require.ErrorIs(t, err, ErrGameNotFound)
	})
}
