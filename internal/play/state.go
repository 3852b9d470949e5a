package play

import (
	"encoding/json"
	"fmt"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/market"
)

var (
	ErrNoCorporation    = fmt.Errorf("no corporation selected: %w", apperror.ErrNotFound)
	ErrNoMarketPosition = fmt.Errorf("set par price before adjusting stock price: %w", apperror.ErrStateConflict)
	ErrNoParCells       = fmt.Errorf("no par spaces available for this market: %w", apperror.ErrStateConflict)
	ErrNoMarketCell     = fmt.Errorf("no market cell at cursor: %w", apperror.ErrNotFound)
	ErrNoTrains         = fmt.Errorf("no trains available to manage: %w", apperror.ErrStateConflict)
	ErrNoTrainForSale   = fmt.Errorf("no train available for purchase: %w", apperror.ErrNotFound)
	ErrNoOwnedTrain     = fmt.Errorf("no owned train selected: %w", apperror.ErrNotFound)
	ErrStopLimit        = fmt.Errorf("stop limit reached for this train: %w", apperror.ErrOutOfRange)
	ErrWrongMode        = fmt.Errorf("not available in the current mode: %w", apperror.ErrStateConflict)
)

// State is the mutable play session of one game. It is owned by a single
// event loop and needs no locking.
type State struct {
	session          *entity.GameSession
	corporationIndex int
	marketCursor     market.Cursor
	mode             Mode
	titleBanner      bool
	marketView       Viewport
	phases           []entity.PhaseInfo
	phaseIndex       int
	phaseRounds      [][]entity.OperatingRound
	revenue          RevenueView
}

// New starts play on a freshly loaded session. The first operating round of
// the first phase is seeded with the corporations' last revenue.
func New(session *entity.GameSession) *State {
	session.Reindex()

	state := &State{
		session:      session,
		marketCursor: defaultMarketCursor(session),
		mode:         &Idle{},
		titleBanner:  true,
		phases:       session.PhaseInfos(),
		revenue:      RevenueView{View: Viewport{Rows: 1, Cols: 1}},
	}

	corporations := len(session.Corporations)
	state.phaseRounds = make([][]entity.OperatingRound, len(state.phases))
	for i, phase := range state.phases {
		rounds := make([]entity.OperatingRound, max(phase.OperatingRounds, 1))
		for j := range rounds {
			rounds[j] = entity.NewOperatingRound(corporations)
		}

		state.phaseRounds[i] = rounds
	}

	state.bootstrapRevenue()

	return state
}

func defaultMarketCursor(session *entity.GameSession) market.Cursor {
	if cursor, ok := market.First(session.ParCells, nil); ok {
		return cursor
	}

	if cursor, ok := market.First(session.MarketCells, nil); ok {
		return cursor
	}

	return market.Cursor{}
}

func (that *State) Session() *entity.GameSession {
	return that.session
}

func (that *State) Mode() Mode {
	return that.mode
}

func (that *State) Kind() Kind {
	return that.mode.Kind()
}

func (that *State) CorporationIndex() int {
	return that.corporationIndex
}

// CurrentCorporation returns the focused corporation.
func (that *State) CurrentCorporation() (*entity.Corporation, error) {
	if that.corporationIndex < 0 || that.corporationIndex >= len(that.session.Corporations) {
		return nil, ErrNoCorporation
	}

	return that.session.Corporations[that.corporationIndex], nil
}

// MoveCorporation shifts the focus by delta, clamped to the list, and keeps
// the revenue cursor on the same corporation.
func (that *State) MoveCorporation(delta int) {
	count := len(that.session.Corporations)
	if count == 0 {
		return
	}

	that.corporationIndex = clamp(that.corporationIndex+delta, 0, count-1)
	that.syncRevenueCursorWithCorporation()
	that.ensureRevenueCursorVisible()
}

func (that *State) TitleBannerVisible() bool {
	return that.titleBanner && !that.revenue.Enabled
}

func (that *State) ConsumeTitleBanner() {
	that.titleBanner = false
}

type snapshot struct {
	Session          *entity.GameSession       `json:"session"`
	CorporationIndex int                       `json:"corporation_index"`
	MarketCursor     market.Cursor             `json:"market_cursor"`
	Mode             modeEnvelope              `json:"mode"`
	TitleBanner      bool                      `json:"title_banner_visible"`
	MarketView       Viewport                  `json:"market_view"`
	Phases           []entity.PhaseInfo        `json:"phases"`
	PhaseIndex       int                       `json:"phase_index"`
	PhaseRounds      [][]entity.OperatingRound `json:"phase_rounds"`
	Revenue          RevenueView               `json:"revenue"`
}

func (that *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		Session:          that.session,
		CorporationIndex: that.corporationIndex,
		MarketCursor:     that.marketCursor,
		Mode:             encodeMode(that.mode),
		TitleBanner:      that.titleBanner,
		MarketView:       that.marketView,
		Phases:           that.phases,
		PhaseIndex:       that.phaseIndex,
		PhaseRounds:      that.phaseRounds,
		Revenue:          that.revenue,
	})
}

func (that *State) UnmarshalJSON(data []byte) error {
	var decoded snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("could not decode play state: %w: %w", apperror.ErrSerialization, err)
	}

	if decoded.Session == nil {
		return fmt.Errorf("play state without session: %w", apperror.ErrSerialization)
	}

	mode, err := decoded.Mode.decode()
	if err != nil {
		return err
	}

	decoded.Session.Reindex()

	*that = State{
		session:          decoded.Session,
		corporationIndex: decoded.CorporationIndex,
		marketCursor:     decoded.MarketCursor,
		mode:             mode,
		titleBanner:      decoded.TitleBanner,
		marketView:       decoded.MarketView,
		phases:           decoded.Phases,
		phaseIndex:       decoded.PhaseIndex,
		phaseRounds:      decoded.PhaseRounds,
		revenue:          decoded.Revenue,
	}

	if len(that.phases) == 0 {
		that.phases = that.session.PhaseInfos()
	}

	that.ensurePhaseCapacity(that.currentPhaseIndex())

	if run, ok := that.mode.(*TrainRun); ok {
		return that.checkRun(run)
	}

	return nil
}

// checkRun ties a decoded run editor to an owned train of the focused
// corporation and pulls its cursor back inside the stops.
func (that *State) checkRun(run *TrainRun) error {
	corp, err := that.CurrentCorporation()
	if err != nil {
		return fmt.Errorf("train run without corporation: %w", apperror.ErrSerialization)
	}

	if run.Run.TrainIndex < 0 || run.Run.TrainIndex >= len(corp.Trains) {
		return fmt.Errorf("train run for train %d of %d: %w", run.Run.TrainIndex, len(corp.Trains), apperror.ErrSerialization)
	}

	if len(run.Run.Values) == 0 {
		run.Run.Values = []int{0}
	}

	run.Run.Cursor = clamp(run.Run.Cursor, 0, len(run.Run.Values)-1)

	return nil
}

// Snapshot serializes the state for the history log.
func (that *State) Snapshot() (json.RawMessage, error) {
	data, err := json.Marshal(that)
	if err != nil {
		return nil, fmt.Errorf("could not snapshot play state: %w", err)
	}

	return data, nil
}

// Restore rebuilds a state from a history snapshot. Identity fields of the
// session (game info and load time) come from the live session, not from
// the snapshot.
func Restore(data json.RawMessage, live *entity.GameSession) (*State, error) {
	state := &State{}
	if err := state.UnmarshalJSON(data); err != nil {
		return nil, err
	}

	if live != nil {
		state.session.Info = live.Info
		state.session.LoadedAt = live.LoadedAt
	}

	return state, nil
}

func clamp(value, low, high int) int {
	return min(max(value, low), high)
}
