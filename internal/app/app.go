package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/play"
	"github.com/ruthgard/18TUI/internal/resource"
	"github.com/ruthgard/18TUI/internal/save"
	"github.com/ruthgard/18TUI/internal/transport/console"
)

// Visible window sizes handed to the play state for scrolling.
const (
	marketViewRows  = 12
	marketViewCols  = 16
	revenueViewRows = 10
	revenueViewCols = 8
)

type gameCatalog interface {
	Games() ([]entity.GameInfo, error)
	Refresh(dir string, metadata resource.Metadata)
	Load(ctx context.Context, game entity.GameInfo) (*entity.GameSession, error)
}

type saveManager interface {
	Entries(ctx context.Context) ([]save.Entry, error)
	CreateSave(ctx context.Context, game entity.GameInfo, name string, state json.RawMessage) (save.Entry, error)
	UpdateSave(ctx context.Context, entry save.Entry, state json.RawMessage) (save.Entry, error)
	Load(ctx context.Context, entry save.Entry) (*save.Payload, error)
	SetHistoryIndex(ctx context.Context, entry save.Entry, index int) (save.Entry, *save.Payload, error)
}

type Screen int

const (
	ScreenBrowse Screen = iota
	ScreenContinue
	ScreenPlay
)

type sessionResult struct {
	session *entity.GameSession
	err     error
}

// App is the event loop. It is the only writer of the play state and the
// active save; background work reports back through channels.
type App struct {
	logger  *slog.Logger
	catalog gameCatalog
	saves   saveManager
	out     io.Writer
	now     func() time.Time

	screen  Screen
	browse  browseState
	entries []save.Entry
	cursor  int
	prompt  *namePrompt

	play       *play.State
	activeSave *save.Entry
	savedState json.RawMessage

	pendingSession   bool
	pendingGame      *entity.GameInfo
	pendingSaveName  *string
	pendingSaveState json.RawMessage
	loaded           chan sessionResult

	status   string
	rendered string
	quit     bool
}

func New(logger *slog.Logger, catalog gameCatalog, saves saveManager, out io.Writer) *App {
	return &App{
		logger:  logger.With("component", "app"),
		catalog: catalog,
		saves:   saves,
		out:     out,
		now:     time.Now,
		loaded:  make(chan sessionResult, 1),
	}
}

func (that *App) Screen() Screen {
	return that.screen
}

func (that *App) Status() string {
	return that.status
}

func (that *App) PlayState() *play.State {
	return that.play
}

func (that *App) ActiveSave() (save.Entry, bool) {
	if that.activeSave == nil {
		return save.Entry{}, false
	}

	return *that.activeSave, true
}

func (that *App) Quit() bool {
	return that.quit
}

func (that *App) setStatus(format string, args ...any) {
	that.status = fmt.Sprintf(format, args...)
}

// Init lists the games and saves available at start.
func (that *App) Init(ctx context.Context) {
	if err := that.reloadGames(); err != nil {
		that.setStatus("Failed to load games: %v", err)
		return
	}

	if err := that.refreshSaves(ctx); err != nil {
		that.setStatus("Failed to read saves: %v", err)
		return
	}

	that.setStatus("%d games available", len(that.browse.all))
}

// Run multiplexes input, sync results and session loads until the user
// quits, the input ends or ctx is cancelled.
func (that *App) Run(ctx context.Context, input <-chan console.Event, syncs <-chan resource.Event) error {
	log := that.logger.With("method", "Run")

	that.render()

	for !that.quit {
		select {
		case <-ctx.Done():
			log.Info("context cancelled, leaving event loop")
			return nil
		case event, ok := <-input:
			if !ok {
				return nil
			}

			that.HandleInput(ctx, event)
		case event := <-syncs:
			that.HandleSync(event)
		case result := <-that.loaded:
			that.handleSessionLoaded(ctx, result)
		}

		that.render()
	}

	log.Info("quit requested")

	return nil
}

// render writes the status line whenever it changes.
func (that *App) render() {
	if that.out == nil || that.status == that.rendered {
		return
	}

	that.rendered = that.status
	_, _ = fmt.Fprintln(that.out, that.status)
}

func (that *App) HandleInput(ctx context.Context, event console.Event) {
	switch typed := event.(type) {
	case console.TickEvent:
		if that.browse.filtering {
			that.setStatus("Filter: %s", that.browse.filter)
		}
	case console.ClosedEvent:
		that.quit = true
	case console.KeyEvent:
		that.handleKey(ctx, typed.Key)
	}
}

func (that *App) handleKey(ctx context.Context, key console.Key) {
	if that.prompt != nil {
		that.handleNamePromptKey(ctx, key)
		return
	}

	if that.screen == ScreenPlay && that.handleHistoryShortcut(ctx, key) {
		return
	}

	switch that.screen {
	case ScreenBrowse:
		if that.browse.filtering {
			that.handleFilterKey(key)
		} else {
			that.handleBrowseKey(ctx, key)
		}
	case ScreenContinue:
		that.handleContinueKey(ctx, key)
	case ScreenPlay:
		that.handlePlayKey(ctx, key)
	}
}

// HandleSync applies the outcome of a resource sync.
func (that *App) HandleSync(event resource.Event) {
	log := that.logger.With("method", "HandleSync")

	switch typed := event.(type) {
	case resource.Success:
		log.Info("sync succeeded", "path", typed.Path, "commit", typed.Metadata.Commit)
		that.catalog.Refresh(typed.Path, typed.Metadata)

		if err := that.reloadGames(); err != nil {
			log.Error("reload after sync failed", "error", err)
			that.setStatus("Reload failed: %v", err)
			return
		}

		that.setStatus("Resources refreshed")
	case resource.Error:
		log.Error("background sync failed", "error", typed.Err)
		that.setStatus("Sync failed: %v", typed.Err)
	}
}

// startSessionLoad loads the selected game in the background. While a load
// is in flight further requests are rejected.
func (that *App) startSessionLoad(ctx context.Context, game entity.GameInfo) {
	if that.pendingSession {
		that.setStatus("A session is already loading")
		return
	}

	that.pendingSession = true
	that.pendingGame = &game

	that.logger.Info("loading session", "game_id", game.ID, "title", game.DisplayName())
	that.setStatus("Loading %s…", game.DisplayName())

	go func() {
		session, err := that.catalog.Load(ctx, game)

		select {
		case that.loaded <- sessionResult{session: session, err: err}:
		case <-ctx.Done():
		}
	}()
}

// WaitSessionLoaded blocks for the outstanding session load and applies
// it. It reports false when no load is pending.
func (that *App) WaitSessionLoaded(ctx context.Context) bool {
	if !that.pendingSession {
		return false
	}

	select {
	case result := <-that.loaded:
		that.handleSessionLoaded(ctx, result)
		return true
	case <-ctx.Done():
		return false
	}
}

func (that *App) handleSessionLoaded(ctx context.Context, result sessionResult) {
	log := that.logger.With("method", "handleSessionLoaded")

	that.pendingSession = false

	if result.err != nil {
		log.Error("session load failed", "error", result.err)
		that.screen = ScreenBrowse
		that.pendingSaveState = nil
		that.pendingSaveName = nil
		that.pendingGame = nil
		that.setStatus("Failed to load session: %v", result.err)

		return
	}

	session := result.session
	log.Info("session loaded", "game_id", session.Info.ID, "title", session.Info.Title)

	state := play.New(session)
	if that.pendingSaveState != nil {
		restored, err := play.Restore(that.pendingSaveState, session)
		if err != nil {
			log.Error("failed to restore saved play state, using fresh session", "error", err)
		} else {
			state = restored
		}
	}

	state.SetMarketView(marketViewRows, marketViewCols)
	state.SetRevenueViewDims(revenueViewRows, revenueViewCols)

	that.pendingSaveState = nil
	that.screen = ScreenPlay
	that.play = state

	message, err := that.initializeNewSessionSave(ctx, state)
	switch {
	case err != nil:
		log.Error("failed to prepare save for new session", "error", err)
		that.setStatus("Session started but save failed: %v", err)
	case message != "":
		that.setStatus("%s", message)
	default:
		that.setStatus("Session loaded")
	}

	that.markSaved()
}

// markSaved records the current play state as the one the active save
// points at, so auto-save can tell whether a key changed anything.
func (that *App) markSaved() {
	that.savedState = nil

	if that.play == nil || that.activeSave == nil {
		return
	}

	snapshot, err := that.play.Snapshot()
	if err != nil {
		that.logger.Error("failed to snapshot play state", "error", err)
		return
	}

	that.savedState = snapshot
}

// initializeNewSessionSave creates the save for a new game once its session
// exists. Loaded saves already have one.
func (that *App) initializeNewSessionSave(ctx context.Context, state *play.State) (string, error) {
	name := that.pendingSaveName
	game := that.pendingGame
	that.pendingSaveName = nil
	that.pendingGame = nil

	if name == nil {
		return "", nil
	}

	info := state.Session().Info
	if game != nil {
		info = *game
	}

	snapshot, err := state.Snapshot()
	if err != nil {
		return "", err
	}

	entry, err := that.saves.CreateSave(ctx, info, *name, snapshot)
	if err != nil {
		return "", fmt.Errorf("create save entry for %s: %w", info.ID, err)
	}

	that.logger.Info("new game save created", "game_id", info.ID, "save_name", entry.Name)
	that.activeSave = &entry

	if err = that.refreshSaves(ctx); err != nil {
		return "", fmt.Errorf("refresh saves after creating new game: %w", err)
	}

	return fmt.Sprintf("Started %s as %s", state.Session().Info.Title, entry.Name), nil
}

func (that *App) refreshSaves(ctx context.Context) error {
	entries, err := that.saves.Entries(ctx)
	if err != nil {
		return err
	}

	that.entries = entries
	that.cursor = clampIndex(that.cursor, len(entries))

	return nil
}

// replaceEntry keeps the save list in step with the active save.
func (that *App) replaceEntry(updated save.Entry) {
	for i := range that.entries {
		if that.entries[i].Location == updated.Location {
			that.entries[i] = updated
			save.SortNewestFirst(that.entries)

			return
		}
	}
}

func clampIndex(index, length int) int {
	if length == 0 {
		return 0
	}

	return min(max(index, 0), length-1)
}
