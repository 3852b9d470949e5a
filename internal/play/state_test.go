package play

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("starts idle on the first par cell", func(t *testing.T) {
		state := New(newSession())

		assert.Equal(t, KindIdle, state.Kind())
		assert.Equal(t, market.Cursor{Row: 0, Col: 1}, state.MarketCursor())
		assert.True(t, state.TitleBannerVisible())
	})

	t.Run("builds the round matrix per phase", func(t *testing.T) {
		state := New(newSession())

		require.Len(t, state.Phases(), 2)
		assert.Equal(t, "2", state.PhaseLabel())
		rounds := state.CurrentPhaseRounds()
		require.Len(t, rounds, 2)
		assert.Equal(t, []int{0, 0}, rounds[0].Revenues)
	})

	t.Run("seeds the first round from last revenue", func(t *testing.T) {
		session := newSession()
		session.Corporations[1].LastRevenue = 70

		state := New(session)

		assert.Equal(t, []int{0, 70}, state.CurrentPhaseRounds()[0].Revenues)
	})

	t.Run("game without phases gets one default phase", func(t *testing.T) {
		session := newSession()
		session.Phases = nil

		state := New(session)

		assert.Equal(t, "Phase", state.PhaseLabel())
		assert.Len(t, state.CurrentPhaseRounds(), 2)
	})
}

func TestState_MoveCorporation(t *testing.T) {
	state := New(newSession())

	state.MoveCorporation(5)
	assert.Equal(t, 1, state.CorporationIndex())

	state.MoveCorporation(-3)
	assert.Equal(t, 0, state.CorporationIndex())

	corp, err := state.CurrentCorporation()
	require.NoError(t, err)
	assert.Equal(t, "AR", corp.Sym)
}

func TestState_SnapshotRestore(t *testing.T) {
	t.Run("round trips a train run in progress", func(t *testing.T) {
		// Given: a state editing a run for a purchased train
		state := New(newSession())
		require.NoError(t, state.EnterTrainManage())
		_, err := state.BuyTrain(0)
		require.NoError(t, err)
		require.NoError(t, state.StartTrainRun())
		editor, _ := state.RunEditor()
		editor.AppendDigit('4')

		// When: it is snapshotted and restored
		data, err := state.Snapshot()
		require.NoError(t, err)
		restored, err := Restore(data, nil)
		require.NoError(t, err)

		// Then: mode and editor survive
		assert.Equal(t, KindTrainRun, restored.Kind())
		restoredEditor, ok := restored.RunEditor()
		require.True(t, ok)
		assert.Equal(t, "4", restoredEditor.Input)
		assert.Equal(t, "2", restoredEditor.TrainName)
		assert.Equal(t, 2, restored.Session().TrainPool[0].Remaining)

		cell, ok := restored.Session().Cell(0, 1)
		require.True(t, ok)
		assert.True(t, cell.IsPar)
	})

	t.Run("identity fields come from the live session", func(t *testing.T) {
		state := New(newSession())
		data, err := state.Snapshot()
		require.NoError(t, err)

		live := newSession()
		live.Info.Title = "Shikoku 1889 (refreshed)"
		live.LoadedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		restored, err := Restore(data, live)

		require.NoError(t, err)
		assert.Equal(t, "Shikoku 1889 (refreshed)", restored.Session().Info.Title)
		assert.Equal(t, live.LoadedAt, restored.Session().LoadedAt)
	})

	t.Run("snapshots of the same state are equal", func(t *testing.T) {
		state := New(newSession())

		first, err := state.Snapshot()
		require.NoError(t, err)
		second, err := state.Snapshot()
		require.NoError(t, err)

		assert.JSONEq(t, string(first), string(second))
	})

	t.Run("corrupt snapshot is a serialization error", func(t *testing.T) {
		_, err := Restore(json.RawMessage(`{"session":`), nil)

		require.ErrorIs(t, err, apperror.ErrSerialization)
	})

	t.Run("run cursor past the stops is pulled back", func(t *testing.T) {
		// Given: a run snapshot whose cursor points past its two stops
		data := runSnapshot(t, func(run map[string]any) {
			run["values"] = []int{30, 40}
			run["cursor"] = 5
		})

		// When
		restored, err := Restore(data, nil)

		// Then: the cursor sits on the last stop and removing it is safe
		require.NoError(t, err)
		editor, ok := restored.RunEditor()
		require.True(t, ok)
		assert.Equal(t, 1, editor.Cursor)

		editor.RemoveStop()
		assert.Equal(t, []int{30}, editor.Values)
	})

	t.Run("run without stops gets an empty stop", func(t *testing.T) {
		data := runSnapshot(t, func(run map[string]any) {
			run["values"] = []int{}
			run["cursor"] = -3
		})

		restored, err := Restore(data, nil)

		require.NoError(t, err)
		editor, _ := restored.RunEditor()
		assert.Equal(t, []int{0}, editor.Values)
		assert.Equal(t, 0, editor.Cursor)
	})

	t.Run("run for a train the corporation does not own is rejected", func(t *testing.T) {
		data := runSnapshot(t, func(run map[string]any) {
			run["train_index"] = 7
		})

		_, err := Restore(data, nil)

		require.ErrorIs(t, err, apperror.ErrSerialization)
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		_, err := Restore(json.RawMessage(`{"session":{},"mode":{"kind":"auction"}}`), nil)

		require.ErrorIs(t, err, apperror.ErrSerialization)
	})
}

func TestState_SetMarketView(t *testing.T) {
	// Given: a view one row and two columns wide
	state := New(newSession())
	state.SetMarketView(1, 2)
	require.NoError(t, state.EnterPriceSelect())

	// When: the cursor moves right and down
	state.MoveMarketCursor(0, 1)
	state.MoveMarketCursor(1, 0)

	// Then: the viewport follows it
	view := state.MarketViewport()
	assert.Equal(t, market.Cursor{Row: 1, Col: 2}, state.MarketCursor())
	assert.Equal(t, 1, view.RowOffset)
	assert.Equal(t, 1, view.ColOffset)

	// When: the whole market fits
	state.SetMarketView(10, 10)

	// Then: nothing is scrolled
	assert.Equal(t, Viewport{Rows: 3, Cols: 4}, state.MarketViewport())
}

func TestEntityRoundTripKeepsPar(t *testing.T) {
	session := newSession()
	session.Corporations[0].ParValue = intPtr(100)
	position := entity.MarketPosition{Row: 1, Col: 1, Value: intPtr(100), Raw: "100p"}
	session.Corporations[0].MarketPosition = &position

	data, err := New(session).Snapshot()
	require.NoError(t, err)
	restored, err := Restore(data, nil)
	require.NoError(t, err)

	corp, err := restored.CurrentCorporation()
	require.NoError(t, err)
	require.NotNil(t, corp.ParValue)
	assert.Equal(t, 100, *corp.ParValue)
	assert.Equal(t, position, *corp.MarketPosition)
}

// runSnapshot snapshots a state editing the run of one owned train and lets
// edit rewrite the editor before the document is encoded again.
func runSnapshot(t *testing.T, edit func(run map[string]any)) json.RawMessage {
	t.Helper()

	state := New(newSession())
	require.NoError(t, state.EnterTrainManage())
	_, err := state.BuyTrain(0)
	require.NoError(t, err)
	require.NoError(t, state.StartTrainRun())

	data, err := state.Snapshot()
	require.NoError(t, err)

	var document map[string]any
	require.NoError(t, json.Unmarshal(data, &document))

	mode := document["mode"].(map[string]any)
	run := mode["run"].(map[string]any)["run"].(map[string]any)
	edit(run)

	data, err = json.Marshal(document)
	require.NoError(t, err)

	return data
}
