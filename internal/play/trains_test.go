package play

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Purchase(t *testing.T) {
	t.Run("supply of three allows exactly three purchases", func(t *testing.T) {
		// Given: one train type with a supply of three
		state := New(singleTypeSession())

		// When: three trains are bought
		for range 3 {
			train, err := state.Purchase(0)
			require.NoError(t, err)
			assert.Equal(t, "2", train.Name)
			assert.Empty(t, train.RevenueStops)
		}

		// Then: the fourth attempt fails and changes nothing
		_, err := state.Purchase(0)
		require.ErrorIs(t, err, ErrNoTrainForSale)
		assert.Equal(t, 0, state.Session().TrainPool[0].Remaining)
		assert.Empty(t, state.AvailableTrains())
	})

	t.Run("types without supply are not offered", func(t *testing.T) {
		state := New(newSession())

		available := state.AvailableTrains()

		require.Len(t, available, 2)
		assert.Equal(t, "2", available[0].Type.Name)
		assert.Equal(t, 3, available[0].Remaining)
		assert.Equal(t, "3", available[1].Type.Name)
		assert.Equal(t, 1, available[1].Index)
	})

	t.Run("invalid selection is rejected", func(t *testing.T) {
		state := New(newSession())

		_, err := state.Purchase(5)

		require.ErrorIs(t, err, ErrNoTrainForSale)
		assert.Equal(t, 3, state.Session().TrainPool[0].Remaining)
	})
}

func TestState_TrainManage(t *testing.T) {
	t.Run("opens on the pool when the corporation owns nothing", func(t *testing.T) {
		state := New(newSession())

		require.NoError(t, state.EnterTrainManage())

		manage, ok := state.TrainManage()
		require.True(t, ok)
		assert.Equal(t, FocusPool, manage.Focus)
	})

	t.Run("reports when there is nothing to manage", func(t *testing.T) {
		session := newSession()
		for i := range session.TrainPool {
			session.TrainPool[i].Remaining = 0
		}

		state := New(session)

		require.ErrorIs(t, state.EnterTrainManage(), ErrNoTrains)
		assert.Equal(t, KindIdle, state.Kind())
	})

	t.Run("buying focuses the new owned train", func(t *testing.T) {
		// Given: the panel on the pool with the 3-train selected
		state := New(newSession())
		require.NoError(t, state.EnterTrainManage())
		state.MoveTrainSelection(1)
		require.NoError(t, state.OpenPurchaseModal())
		modal, ok := state.PurchaseModal()
		require.True(t, ok)
		assert.Equal(t, 1, modal.Cursor)

		// When: the purchase is confirmed
		train, err := state.BuyTrain(modal.Cursor)

		// Then: the corporation owns it and focus moves to owned trains
		require.NoError(t, err)
		assert.Equal(t, "3", train.Name)
		corp, _ := state.CurrentCorporation()
		require.Len(t, corp.Trains, 1)

		manage, _ := state.TrainManage()
		assert.Equal(t, FocusOwned, manage.Focus)
		assert.Equal(t, 0, manage.OwnedCursor)
		assert.Nil(t, manage.Purchase)
		assert.Len(t, state.AvailableTrains(), 1)
		assert.Equal(t, 0, manage.PoolCursor)
	})

	t.Run("purchase without a corporation returns the train to the pool", func(t *testing.T) {
		// Given: a game without corporations and an open train panel
		session := newSession()
		session.Corporations = nil
		state := New(session)
		state.mode = &TrainManage{Focus: FocusPool}

		// When
		_, err := state.BuyTrain(0)

		// Then
		require.ErrorIs(t, err, ErrNoCorporation)
		assert.Equal(t, 3, state.Session().TrainPool[0].Remaining)
	})

	t.Run("purchase and retire conserve trains", func(t *testing.T) {
		// Given: supply of three
		state := New(singleTypeSession())
		require.NoError(t, state.EnterTrainManage())

		// When: two are bought and one retired
		_, err := state.BuyTrain(0)
		require.NoError(t, err)
		_, err = state.BuyTrain(0)
		require.NoError(t, err)
		removed, err := state.RetireSelectedTrain()
		require.NoError(t, err)

		// Then: pool plus owned plus retired equals the supply
		assert.Equal(t, "2", removed.Name)
		owned := ownedCount(state.Session(), "2")
		remaining := state.Session().TrainPool[0].Remaining
		assert.Equal(t, 1, owned)
		assert.Equal(t, 1, remaining)
		assert.Equal(t, 3, owned+remaining+1)
	})

	t.Run("retiring the last owned train focuses the pool", func(t *testing.T) {
		state := New(newSession())
		require.NoError(t, state.EnterTrainManage())
		_, err := state.BuyTrain(0)
		require.NoError(t, err)

		_, err = state.RetireSelectedTrain()

		require.NoError(t, err)
		manage, _ := state.TrainManage()
		assert.Equal(t, FocusPool, manage.Focus)
		assert.Equal(t, 0, manage.OwnedCursor)
	})

	t.Run("retire needs owned focus", func(t *testing.T) {
		state := New(newSession())
		require.NoError(t, state.EnterTrainManage())

		_, err := state.RetireSelectedTrain()

		require.ErrorIs(t, err, ErrNoOwnedTrain)
	})

	t.Run("toggle focus switches only when the other side has entries", func(t *testing.T) {
		state := New(newSession())
		require.NoError(t, state.EnterTrainManage())

		state.ToggleTrainFocus()
		manage, _ := state.TrainManage()
		assert.Equal(t, FocusPool, manage.Focus)

		_, err := state.BuyTrain(0)
		require.NoError(t, err)
		state.ToggleTrainFocus()
		manage, _ = state.TrainManage()
		assert.Equal(t, FocusPool, manage.Focus)

		state.ToggleTrainFocus()
		manage, _ = state.TrainManage()
		assert.Equal(t, FocusOwned, manage.Focus)
	})

	t.Run("exit returns to idle", func(t *testing.T) {
		state := New(newSession())
		require.NoError(t, state.EnterTrainManage())

		state.ExitTrainManage()

		assert.Equal(t, KindIdle, state.Kind())
	})
}

func TestState_TrainRun(t *testing.T) {
	ownedTwoTrain := func(t *testing.T) *State {
		t.Helper()

		state := New(newSession())
		require.NoError(t, state.EnterTrainManage())
		_, err := state.BuyTrain(0)
		require.NoError(t, err)
		require.NoError(t, state.StartTrainRun())

		return state
	}

	t.Run("stop limit follows the train distance", func(t *testing.T) {
		// Given: a 2-train run with one stop
		state := ownedTwoTrain(t)

		// When / Then: a second stop fits, a third does not
		require.NoError(t, state.AddRunStop())
		require.ErrorIs(t, state.AddRunStop(), ErrStopLimit)

		editor, ok := state.RunEditor()
		require.True(t, ok)
		assert.Len(t, editor.Values, 2)
	})

	t.Run("applying a run updates the train, revenue and round", func(t *testing.T) {
		// Given: stops 30 and 40 entered
		state := ownedTwoTrain(t)
		editor, _ := state.RunEditor()
		editor.AppendDigit('3')
		editor.AppendDigit('0')
		require.NoError(t, state.AddRunStop())
		editor, _ = state.RunEditor()
		editor.AppendDigit('4')
		editor.AppendDigit('0')

		// When
		result, err := state.ApplyTrainRun()

		// Then
		require.NoError(t, err)
		assert.Equal(t, RunResult{CorporationSym: "AR", TrainName: "2", Total: 70}, result)

		corp, _ := state.CurrentCorporation()
		assert.Equal(t, []int{30, 40}, corp.Trains[0].RevenueStops)
		assert.Equal(t, 70, corp.Trains[0].LastRevenue)
		assert.Equal(t, 70, corp.LastRevenue)

		value, ok := state.RevenueValue()
		require.True(t, ok)
		assert.Equal(t, 70, value)
		assert.Equal(t, KindTrainManage, state.Kind())
	})

	t.Run("cancel discards edits", func(t *testing.T) {
		state := ownedTwoTrain(t)
		editor, _ := state.RunEditor()
		editor.AppendDigit('9')
		editor.CommitInput()

		state.CancelTrainRun()

		corp, _ := state.CurrentCorporation()
		assert.Empty(t, corp.Trains[0].RevenueStops)
		assert.Equal(t, 0, corp.LastRevenue)
		assert.Equal(t, KindTrainManage, state.Kind())
	})

	t.Run("run needs an owned train", func(t *testing.T) {
		state := New(newSession())
		require.NoError(t, state.EnterTrainManage())

		require.ErrorIs(t, state.StartTrainRun(), ErrNoOwnedTrain)
	})
}

func TestRunEditor(t *testing.T) {
	t.Run("starts with one empty stop", func(t *testing.T) {
		editor := NewRunEditor(0, "2", nil)

		assert.Equal(t, []int{0}, editor.Values)
		assert.Equal(t, 0, editor.Total())
	})

	t.Run("copies the existing stops", func(t *testing.T) {
		stops := []int{20, 30}
		editor := NewRunEditor(1, "3", stops)
		editor.ClearCurrent()

		assert.Equal(t, []int{20, 30}, stops)
		assert.Equal(t, []int{0, 30}, editor.Values)
	})

	t.Run("digits collect until committed", func(t *testing.T) {
		editor := NewRunEditor(0, "2", []int{10})
		editor.AppendDigit('4')
		editor.AppendDigit('x')
		editor.AppendDigit('5')
		editor.Backspace()
		editor.AppendDigit('0')

		assert.Equal(t, "40", editor.Input)
		assert.Equal(t, 10, editor.CurrentValue())

		editor.CommitInput()

		assert.Equal(t, 40, editor.CurrentValue())
		assert.Empty(t, editor.Input)
	})

	t.Run("moving the cursor commits and clamps", func(t *testing.T) {
		editor := NewRunEditor(0, "2", []int{10, 20})
		editor.AppendDigit('5')

		editor.MoveCursor(5)

		assert.Equal(t, []int{5, 20}, editor.Values)
		assert.Equal(t, 1, editor.Cursor)
	})

	t.Run("removing keeps at least one stop", func(t *testing.T) {
		editor := NewRunEditor(0, "2", []int{10, 20})
		editor.MoveCursor(1)

		editor.RemoveStop()
		assert.Equal(t, []int{10}, editor.Values)
		assert.Equal(t, 0, editor.Cursor)

		editor.RemoveStop()
		assert.Equal(t, []int{0}, editor.Values)
	})

	t.Run("overlong input keeps the stop", func(t *testing.T) {
		editor := NewRunEditor(0, "2", []int{10})
		for range 30 {
			editor.AppendDigit('9')
		}

		editor.CommitInput()

		assert.Equal(t, 10, editor.CurrentValue())
	})
}
