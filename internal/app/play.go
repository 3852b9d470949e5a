package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/play"
	"github.com/ruthgard/18TUI/internal/save"
	"github.com/ruthgard/18TUI/internal/transport/console"
)

const corporationPage = 5

func (that *App) handlePlayKey(ctx context.Context, key console.Key) {
	state := that.play
	if state == nil {
		if key.Name == console.KeyEsc {
			that.screen = ScreenBrowse
			that.pendingSession = false
		}

		return
	}

	switch state.Mode().(type) {
	case *play.ParSelect:
		that.handleParSelectKey(state, key)
	case *play.PriceSelect:
		that.handlePriceSelectKey(state, key)
	case *play.TrainManage:
		if _, ok := state.PurchaseModal(); ok {
			that.handlePurchaseModalKey(state, key)
		} else {
			that.handleTrainManageKey(state, key)
		}
	case *play.TrainRun:
		that.handleTrainRunKey(state, key)
	default:
		that.handleIdleKey(ctx, state, key)
	}

	if that.screen != ScreenPlay {
		return
	}

	if err := that.persistActiveSession(ctx); err != nil {
		that.logger.Error("auto-save failed", "error", err)
		that.setStatus("Auto-save failed: %v", err)
	}
}

// persistActiveSession pushes the current state onto the active save. A
// state equal to the saved one is not pushed, so keys that change nothing
// leave the redo branch alone.
func (that *App) persistActiveSession(ctx context.Context) error {
	if that.activeSave == nil || that.play == nil {
		return nil
	}

	snapshot, err := that.play.Snapshot()
	if err != nil {
		return err
	}

	if that.savedState != nil && save.SameJSON(that.savedState, snapshot) {
		return nil
	}

	updated, err := that.saves.UpdateSave(ctx, *that.activeSave, snapshot)
	if err != nil {
		return fmt.Errorf("update save %s: %w", that.activeSave.Location, err)
	}

	that.activeSave = &updated
	that.savedState = snapshot
	that.replaceEntry(updated)

	return nil
}

func (that *App) closePlay(ctx context.Context) {
	if err := that.persistActiveSession(ctx); err != nil {
		that.logger.Error("auto-save failed on exit", "error", err)
		that.setStatus("Auto-save failed: %v", err)
	} else {
		that.setStatus("Returned to game list")
	}

	that.screen = ScreenBrowse
	that.play = nil
	that.pendingSession = false
	that.logger.Info("play session closed")
}

func (that *App) handleIdleKey(ctx context.Context, state *play.State, key console.Key) {
	hideBanner := true

	switch key.String() {
	case console.KeyEsc:
		that.closePlay(ctx)
		return
	case "q":
		that.quit = true
	case "j", "J", console.KeyDown:
		if state.RevenueViewEnabled() {
			state.MoveRevenueCursor(1, 0)
		} else {
			state.MoveCorporation(1)
			hideBanner = false
		}
	case "k", "K", console.KeyUp:
		if state.RevenueViewEnabled() {
			state.MoveRevenueCursor(-1, 0)
		} else {
			state.MoveCorporation(-1)
			hideBanner = false
		}
	case "h", "H", console.KeyLeft:
		if hideBanner = state.RevenueViewEnabled(); hideBanner {
			state.MoveRevenueCursor(0, -1)
		}
	case "l", "L", console.KeyRight:
		if hideBanner = state.RevenueViewEnabled(); hideBanner {
			state.MoveRevenueCursor(0, 1)
		}
	case "n", "N", console.KeyPgDn:
		state.MoveCorporation(corporationPage)
		hideBanner = false
	case console.KeyPgUp:
		state.MoveCorporation(-corporationPage)
		hideBanner = false
	case "/":
		that.setStatus("Filtering not available in play screen")
	case "m", "M":
		if state.ToggleRevenueView() {
			that.setStatus("Revenue view enabled")
		} else {
			that.setStatus("Stock market view enabled")
		}
	case ".", ">":
		if state.AdvanceOperatingRound() {
			that.setStatus("Switched to %s", state.OperatingRoundSummary())
		} else {
			that.setStatus("Already at final operating round")
		}
	case ",", "<":
		if state.RetreatOperatingRound() {
			that.setStatus("Switched to %s", state.OperatingRoundSummary())
		} else {
			that.setStatus("Already at first operating round")
		}
	case "[":
		that.movePhase(state, -1)
	case "]":
		that.movePhase(state, 1)
	case "a", "A":
		if err := state.AddOperatingRound(); err != nil {
			that.setStatus("No corporations available for operating round")
			break
		}

		_, round := state.RevenueCursor()
		that.setStatus("Added operating round OR%d", round+1)
	case "+", "=":
		hideBanner = that.adjustRevenue(state, 10, "increased to")
	case "-":
		hideBanner = that.adjustRevenue(state, -10, "reduced to")
	case "0":
		if !state.RevenueViewEnabled() {
			hideBanner = false
			break
		}

		state.SetCurrentRevenue(0)
		sym, round := revenueContext(state)
		that.setStatus("%s OR%d payout cleared", sym, round)
	case "1", "2", "3", "4", "5", "6":
		if !state.RevenueViewEnabled() {
			hideBanner = false
			break
		}

		percent := int(key.Rune-'0') * 10
		value, err := state.SetRevenuePercent(percent)
		if err != nil {
			that.setStatus("No corporation selected")
			break
		}

		sym, round := revenueContext(state)
		that.setStatus("%s OR%d payout set to $%d (%d%%)", sym, round, value, percent)
	case "p", "P":
		that.beginParSelection(state)
	case "t", "T":
		that.beginTrainManage(state)
	case console.KeyEnter:
		corp, err := state.CurrentCorporation()
		if err != nil {
			that.setStatus("No corporation selected")
			break
		}

		if corp.ParValue != nil {
			that.beginPriceSelection(state)
		} else {
			that.beginParSelection(state)
		}
	default:
		hideBanner = false
	}

	if hideBanner {
		state.ConsumeTitleBanner()
	}
}

func (that *App) movePhase(state *play.State, delta int) {
	if len(state.Phases()) == 0 {
		that.setStatus("No phase data available")
		return
	}

	if state.MovePhase(delta) {
		that.setStatus("Phase changed to %s", state.PhaseLabel())
		return
	}

	if delta < 0 {
		that.setStatus("Already at first phase")
	} else {
		that.setStatus("Already at final phase")
	}
}

func (that *App) adjustRevenue(state *play.State, delta int, verb string) bool {
	if !state.RevenueViewEnabled() {
		return false
	}

	value := state.AdjustCurrentRevenue(delta)
	sym, round := revenueContext(state)
	that.setStatus("%s OR%d payout %s $%d", sym, round, verb, value)

	return true
}

// revenueContext names the cell under the revenue cursor.
func revenueContext(state *play.State) (string, int) {
	corp, round := state.RevenueCursor()

	sym := ""
	if corporations := state.Session().Corporations; corp >= 0 && corp < len(corporations) {
		sym = corporations[corp].Sym
	}

	return sym, round + 1
}

func (that *App) beginParSelection(state *play.State) {
	if err := state.EnterParSelect(); err != nil {
		that.logger.Debug("par selection unavailable", "error", err)
		state.ExitMarket()
		that.setStatus("No par spaces available for this market")

		return
	}

	corp, err := state.CurrentCorporation()
	if err != nil {
		that.setStatus("No corporation selected")
		return
	}

	that.logger.Info("entering par selection", "sym", corp.Sym)
	that.setStatus("Select par price for %s", corp.Sym)
}

func (that *App) beginPriceSelection(state *play.State) {
	if err := state.EnterPriceSelect(); err != nil {
		that.setStatus("%v", err)
		return
	}

	corp, err := state.CurrentCorporation()
	if err != nil {
		that.setStatus("No corporation selected")
		return
	}

	that.logger.Info("entering stock price selection", "sym", corp.Sym)
	that.setStatus("Select stock price for %s", corp.Sym)
}

func (that *App) beginTrainManage(state *play.State) {
	corp, err := state.CurrentCorporation()
	if err != nil {
		that.setStatus("No corporation selected")
		return
	}

	if err = state.EnterTrainManage(); err != nil {
		that.setStatus("No trains available to manage")
		return
	}

	that.logger.Info("entering train management", "sym", corp.Sym)
	that.setStatus("Manage trains for %s", corp.Sym)
}

// moveMarketCursor handles the direction keys shared by par and price
// selection.
func moveMarketCursor(state *play.State, key console.Key) bool {
	switch key.String() {
	case "j", "J", console.KeyDown:
		state.MoveMarketCursor(1, 0)
	case "k", "K", console.KeyUp:
		state.MoveMarketCursor(-1, 0)
	case "h", "H", console.KeyLeft:
		state.MoveMarketCursor(0, -1)
	case "l", "L", console.KeyRight:
		state.MoveMarketCursor(0, 1)
	default:
		return false
	}

	return true
}

func (that *App) handleParSelectKey(state *play.State, key console.Key) {
	if moveMarketCursor(state, key) {
		return
	}

	switch key.String() {
	case console.KeyEsc:
		state.ExitMarket()
		that.setStatus("Par selection cancelled")
	case "q", "Q":
		that.quit = true
	case "p", "P":
		that.applyParSelection(state)
	case console.KeyEnter:
		if corp, err := state.CurrentCorporation(); err == nil && corp.ParValue != nil {
			that.setStatus("Par already set; press 'p' to update")
			return
		}

		that.applyParSelection(state)
	}
}

func (that *App) applyParSelection(state *play.State) {
	value, err := state.ApplyParSelection()
	if err != nil {
		that.logger.Debug("par selection failed", "cursor", state.MarketCursor(), "error", err)
		that.setStatus("Unable to set par price at current cell")

		return
	}

	corp, _ := state.CurrentCorporation()
	that.logger.Info("par price updated", "sym", corp.Sym, "value", value)
	that.setStatus("Par for %s set to $%d", corp.Sym, value)
}

func (that *App) handlePriceSelectKey(state *play.State, key console.Key) {
	if moveMarketCursor(state, key) {
		return
	}

	switch key.String() {
	case console.KeyEsc:
		state.ExitMarket()
		that.setStatus("Stock price selection cancelled")
	case "q", "Q":
		that.quit = true
	case "p", "P":
		that.beginParSelection(state)
	case console.KeyEnter:
		position, err := state.ApplyPriceSelection()
		if err != nil {
			that.setStatus("Unable to set stock price at current cell")
			return
		}

		price := entity.PriceLabel(position.Raw)
		if price == "" {
			price = position.Raw
		}

		corp, _ := state.CurrentCorporation()
		that.logger.Info("stock price updated", "sym", corp.Sym, "price", price)
		that.setStatus("Stock price for %s set to %s", corp.Sym, price)
	}
}

func (that *App) handleTrainManageKey(state *play.State, key console.Key) {
	switch key.String() {
	case console.KeyEsc, "t", "T":
		state.ExitTrainManage()
		that.setStatus("Train management closed")
	case "q", "Q":
		that.quit = true
	case "j", "J", console.KeyDown:
		state.MoveTrainSelection(1)
	case "k", "K", console.KeyUp:
		state.MoveTrainSelection(-1)
	case "h", "H", console.KeyLeft:
		state.FocusOwned()
	case "l", "L", console.KeyRight:
		state.FocusPool()
	case console.KeyTab:
		state.ToggleTrainFocus()
	case "r", "R":
		train, err := state.RetireSelectedTrain()
		if err != nil {
			that.setStatus("No owned train selected to rust")
			return
		}

		corp, _ := state.CurrentCorporation()
		that.setStatus("%s rusts %s train", corp.Sym, train.Name)
	case "d", "D":
		that.applyRevenueAction(state, play.Dividend)
	case "w", "W":
		that.applyRevenueAction(state, play.Withhold)
	case "b", "B":
		that.openPurchaseModal(state)
	case console.KeyEnter:
		manage, _ := state.TrainManage()
		if manage.Focus == play.FocusOwned {
			if err := state.StartTrainRun(); err == nil {
				corp, _ := state.CurrentCorporation()
				editor, _ := state.RunEditor()
				that.setStatus("Editing run for %s %s", corp.Sym, editor.TrainName)

				return
			}
		}

		that.openPurchaseModal(state)
	}
}

func (that *App) applyRevenueAction(state *play.State, action play.RevenueAction) {
	outcome, err := state.ApplyRevenueAction(action)
	if err != nil {
		that.setStatus("%v", err)
		return
	}

	movement := "price unchanged"
	if outcome.Moved {
		movement = "price moved"
	}

	if action == play.Withhold {
		that.setStatus("%s withholds $%d - price %s (%s)",
			outcome.CorporationSym, outcome.Total, outcome.PriceLabel, movement)

		return
	}

	that.setStatus("%s pays $%d dividend - price %s (%s) | %s",
		outcome.CorporationSym, outcome.Total, outcome.PriceLabel, movement, play.SharePayoutLine(outcome.Total))
}

func (that *App) openPurchaseModal(state *play.State) {
	if err := state.OpenPurchaseModal(); err != nil {
		that.setStatus("No train available for purchase")
		return
	}

	that.setStatus("Select train to purchase (Enter confirm, Esc cancel)")
}

func (that *App) handlePurchaseModalKey(state *play.State, key console.Key) {
	switch key.String() {
	case console.KeyEsc, "q", "t", "T":
		state.ClosePurchaseModal()
		that.setStatus("Train purchase cancelled")
	case "j", "J", console.KeyDown:
		state.MovePurchaseCursor(1)
	case "k", "K", console.KeyUp:
		state.MovePurchaseCursor(-1)
	case console.KeyEnter:
		modal, _ := state.PurchaseModal()

		train, err := state.BuyTrain(modal.Cursor)
		switch {
		case errors.Is(err, play.ErrNoCorporation):
			that.setStatus("No corporation selected")
		case err != nil:
			that.setStatus("No train available for purchase")
		default:
			price := 0
			if train.Price != nil {
				price = *train.Price
			}

			corp, _ := state.CurrentCorporation()
			that.logger.Info("train purchased", "sym", corp.Sym, "train", train.Name, "price", price)
			that.setStatus("%s buys %s train for $%d", corp.Sym, train.Name, price)
		}
	}
}

func (that *App) handleTrainRunKey(state *play.State, key console.Key) {
	editor, _ := state.RunEditor()

	switch {
	case key.Name == console.KeyEsc, key.String() == "t", key.String() == "T":
		state.CancelTrainRun()
		that.setStatus("Train run cancelled")
	case key.String() == "=":
		state.CancelTrainRun()
		that.setStatus("Run editing cancelled")
	case key.String() == "q", key.String() == "Q":
		that.quit = true
	case key.String() == "j", key.String() == "J", key.Name == console.KeyDown, key.Name == console.KeyTab:
		editor.MoveCursor(1)
	case key.String() == "k", key.String() == "K", key.Name == console.KeyUp:
		editor.MoveCursor(-1)
	case key.String() == "+":
		if err := state.AddRunStop(); err != nil {
			that.setStatus("Stop limit reached for this train")
			return
		}

		that.setStatus("Added stop; %d total stops", len(editor.Values))
	case key.String() == "-", key.String() == "_":
		editor.RemoveStop()
		that.setStatus("Removed stop; %d total stops", len(editor.Values))
	case key.Name == console.KeyBackspace:
		editor.Backspace()
	case key.Name == console.KeySpace:
		editor.CommitInput()
		editor.MoveCursor(1)
	case key.String() == "c", key.String() == "C":
		editor.ClearCurrent()
	case key.Name == console.KeyEnter:
		result, err := state.ApplyTrainRun()
		if err != nil {
			that.setStatus("Unable to save train run")
			return
		}

		that.setStatus("Run saved for %s %s: $%d (%s)",
			result.CorporationSym, result.TrainName, result.Total, state.OperatingRoundSummary())
	case key.IsChar() && key.Rune >= '0' && key.Rune <= '9':
		editor.AppendDigit(key.Rune)
	}
}
