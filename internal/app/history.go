package app

import (
	"context"

	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/play"
	"github.com/ruthgard/18TUI/internal/transport/console"
)

// handleHistoryShortcut steps through the active save's history: 'u' goes
// back, ctrl+r goes forward. It reports whether the key was consumed.
func (that *App) handleHistoryShortcut(ctx context.Context, key console.Key) bool {
	var delta int

	switch {
	case key.IsChar() && key.Rune == 'u':
		delta = -1
	case key.Name == console.KeyCtrlR:
		delta = 1
	default:
		return false
	}

	if err := that.applyHistoryStep(ctx, delta); err != nil {
		that.logger.Error("history step failed", "delta", delta, "error", err)
		that.setStatus("History step failed: %v", err)
	}

	return true
}

func (that *App) applyHistoryStep(ctx context.Context, delta int) error {
	if that.activeSave == nil {
		that.setStatus("History unavailable: no save loaded")
		return nil
	}

	payload, err := that.saves.Load(ctx, *that.activeSave)
	if err != nil {
		return err
	}

	total := payload.HistoryLen()
	if total <= 1 {
		that.setStatus("History unavailable for this save")
		return nil
	}

	target := payload.HistoryIndex + delta
	if target < 0 || target >= total {
		if delta < 0 {
			that.setStatus("Already at oldest history entry")
		} else {
			that.setStatus("Already at newest history entry")
		}

		return nil
	}

	entry, updated, err := that.saves.SetHistoryIndex(ctx, *that.activeSave, target)
	if err != nil {
		return err
	}

	if !updated.HasState() {
		that.setStatus("History entry has no recorded session state")
		return nil
	}

	var live *entity.GameSession
	if that.play != nil {
		live = that.play.Session()
	}

	state, err := play.Restore(updated.State, live)
	if err != nil {
		return err
	}

	state.SetMarketView(marketViewRows, marketViewCols)
	state.SetRevenueViewDims(revenueViewRows, revenueViewCols)

	that.activeSave = &entry
	that.replaceEntry(entry)
	that.play = state
	that.markSaved()

	verb := "Redo"
	if delta < 0 {
		verb = "Undo"
	}

	that.setStatus("%s applied (%d/%d)", verb, updated.HistoryIndex+1, total)

	return nil
}
