package app

import (
	"context"
	"strings"

	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/save"
	"github.com/ruthgard/18TUI/internal/transport/console"
)

const pageSize = 10

// browseState is the filtered game list.
type browseState struct {
	all       []entity.GameInfo
	filtered  []entity.GameInfo
	cursor    int
	filter    string
	filtering bool
}

func (that *browseState) setGames(games []entity.GameInfo) {
	that.all = games
	that.applyFilter()
}

func (that *browseState) applyFilter() {
	that.filtered = that.filtered[:0]
	for _, game := range that.all {
		if game.Matches(that.filter) {
			that.filtered = append(that.filtered, game)
		}
	}

	that.cursor = clampIndex(that.cursor, len(that.filtered))
}

func (that *browseState) move(delta int) {
	that.cursor = clampIndex(that.cursor+delta, len(that.filtered))
}

func (that *browseState) current() (entity.GameInfo, bool) {
	if that.cursor < 0 || that.cursor >= len(that.filtered) {
		return entity.GameInfo{}, false
	}

	return that.filtered[that.cursor], true
}

// selectGame clears the filter and moves the cursor onto the game.
func (that *browseState) selectGame(id string) bool {
	that.filter = ""
	that.applyFilter()

	for i, game := range that.filtered {
		if game.ID == id {
			that.cursor = i
			return true
		}
	}

	return false
}

// namePrompt asks for the name of a new save.
type namePrompt struct {
	game  entity.GameInfo
	value []rune
}

func (that *App) reloadGames() error {
	games, err := that.catalog.Games()
	if err != nil {
		return err
	}

	that.browse.setGames(games)
	that.logger.Info("games reloaded", "total", len(games))

	return nil
}

func (that *App) CurrentGame() (entity.GameInfo, bool) {
	return that.browse.current()
}

func (that *App) Games() []entity.GameInfo {
	return that.browse.filtered
}

func (that *App) Entries() []save.Entry {
	return that.entries
}

func (that *App) handleBrowseKey(ctx context.Context, key console.Key) {
	switch key.String() {
	case "q":
		that.quit = true
	case "j", console.KeyDown:
		that.browse.move(1)
	case "k", console.KeyUp:
		that.browse.move(-1)
	case "g":
		that.browse.cursor = 0
	case "G":
		that.browse.move(len(that.browse.filtered))
	case console.KeyPgDn:
		that.browse.move(pageSize)
	case console.KeyPgUp:
		that.browse.move(-pageSize)
	case "/":
		that.browse.filtering = true
		that.setStatus("Enter filter text")
	case "c":
		that.openContinue(ctx)
	case console.KeyCtrlR:
		if err := that.reloadGames(); err != nil {
			that.setStatus("Reload failed: %v", err)
			return
		}

		if err := that.refreshSaves(ctx); err != nil {
			that.setStatus("Reloaded but failed to read saves: %v", err)
			return
		}

		that.setStatus("Reloaded %d games", len(that.browse.filtered))
	case console.KeyEnter:
		that.promptNewGame()
	}
}

func (that *App) handleFilterKey(key console.Key) {
	switch {
	case key.Name == console.KeyEsc:
		that.browse.filtering = false
		that.browse.filter = ""
		that.browse.applyFilter()
		that.setStatus("Filter cleared")
	case key.Name == console.KeyEnter:
		that.browse.filtering = false
		that.setStatus("Filter applied: %d games", len(that.browse.filtered))
	case key.Name == console.KeyBackspace:
		if runes := []rune(that.browse.filter); len(runes) > 0 {
			that.browse.filter = string(runes[:len(runes)-1])
			that.browse.applyFilter()
		}
	case key.Name == console.KeySpace:
		that.browse.filter += " "
		that.browse.applyFilter()
	case key.IsChar():
		that.browse.filter += string(key.Rune)
		that.browse.applyFilter()
	}
}

func (that *App) promptNewGame() {
	if that.pendingSession {
		that.setStatus("A session is already loading")
		return
	}

	game, ok := that.browse.current()
	if !ok {
		that.setStatus("No game selected")
		return
	}

	that.activeSave = nil
	that.prompt = &namePrompt{
		game:  game,
		value: []rune(save.DefaultName(game.ID, game.Title, that.now())),
	}
	that.setStatus("Enter save name for %s", game.Title)
}

func (that *App) handleNamePromptKey(ctx context.Context, key console.Key) {
	prompt := that.prompt

	switch {
	case key.Name == console.KeyEsc:
		that.prompt = nil
		that.setStatus("New game cancelled")
	case key.Name == console.KeyEnter:
		that.prompt = nil

		name := strings.TrimSpace(string(prompt.value))
		that.pendingSaveName = &name
		that.pendingSaveState = nil
		that.startSessionLoad(ctx, prompt.game)
	case key.Name == console.KeyBackspace:
		if len(prompt.value) > 0 {
			prompt.value = prompt.value[:len(prompt.value)-1]
		}
	case key.Name == console.KeySpace:
		prompt.value = append(prompt.value, ' ')
	case key.IsChar():
		prompt.value = append(prompt.value, key.Rune)
	}
}

func (that *App) openContinue(ctx context.Context) {
	if err := that.refreshSaves(ctx); err != nil {
		that.setStatus("Failed to read saves: %v", err)
		return
	}

	if len(that.entries) == 0 {
		that.setStatus("No saved games")
		return
	}

	that.screen = ScreenContinue
	that.setStatus("Select a save to continue")
}

func (that *App) handleContinueKey(ctx context.Context, key console.Key) {
	switch key.String() {
	case "q":
		that.quit = true
	case console.KeyEsc:
		that.screen = ScreenBrowse
		that.setStatus("Returned to game list")
	case "j", console.KeyDown:
		that.cursor = clampIndex(that.cursor+1, len(that.entries))
	case "k", console.KeyUp:
		that.cursor = clampIndex(that.cursor-1, len(that.entries))
	case console.KeyEnter:
		if that.cursor >= len(that.entries) {
			that.setStatus("No saved games")
			return
		}

		if err := that.loadSaveEntry(ctx, that.entries[that.cursor]); err != nil {
			that.logger.Error("failed to load save", "error", err)
			that.setStatus("Failed to load save: %v", err)
		}
	}
}

// loadSaveEntry resumes a save: its game is loaded fresh and the recorded
// state is restored on top once the session arrives.
func (that *App) loadSaveEntry(ctx context.Context, entry save.Entry) error {
	if that.pendingSession {
		that.setStatus("A session is already loading")
		return nil
	}

	if !that.browse.selectGame(entry.GameID) {
		return &unavailableGameError{gameID: entry.GameID}
	}

	payload, err := that.saves.Load(ctx, entry)
	if err != nil {
		return err
	}

	that.pendingSaveState = nil
	if payload.HasState() {
		that.pendingSaveState = payload.State
	}

	that.pendingSaveName = nil
	that.activeSave = &entry
	that.screen = ScreenBrowse

	game, _ := that.browse.current()
	that.startSessionLoad(ctx, game)

	return nil
}

type unavailableGameError struct {
	gameID string
}

func (that *unavailableGameError) Error() string {
	return "saved game " + that.gameID + " not available"
}
