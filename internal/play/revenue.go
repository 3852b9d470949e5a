package play

import (
	"fmt"
	"math"
	"strings"

	"github.com/ruthgard/18TUI/internal/entity"
)

// RevenueView is the cursor over the corporation x operating round matrix
// of the current phase.
type RevenueView struct {
	Enabled bool     `json:"enabled"`
	Corp    int      `json:"corp"`
	OR      int      `json:"or"`
	View    Viewport `json:"view"`
}

type RevenueAction string

const (
	Dividend RevenueAction = "dividend"
	Withhold RevenueAction = "withhold"
)

// RevenueOutcome reports a dividend or withhold decision.
type RevenueOutcome struct {
	CorporationSym string
	Total          int
	PriceLabel     string
	Moved          bool
	Action         RevenueAction
}

func (that *State) Phases() []entity.PhaseInfo {
	return that.phases
}

func (that *State) currentPhaseIndex() int {
	return clamp(that.phaseIndex, 0, max(len(that.phases)-1, 0))
}

func (that *State) PhaseIndex() int {
	return that.currentPhaseIndex()
}

func (that *State) PhaseLabel() string {
	if len(that.phases) == 0 {
		return entity.DefaultPhaseName
	}

	return that.phases[that.currentPhaseIndex()].Name
}

// SetPhaseIndex selects a phase, clamped to the phase list, and makes sure
// its round matrix exists.
func (that *State) SetPhaseIndex(index int) {
	if len(that.phases) == 0 {
		that.phaseIndex = 0
		return
	}

	index = clamp(index, 0, len(that.phases)-1)
	if index == that.phaseIndex {
		return
	}

	that.phaseIndex = index
	that.ensurePhaseCapacity(index)
	that.revenue.OR = clamp(that.revenue.OR, 0, max(len(that.CurrentPhaseRounds())-1, 0))
	that.revenue.View.RowOffset = 0
	that.revenue.View.ColOffset = 0
	that.ensureRevenueCursorVisible()
}

// MovePhase steps the phase and reports whether it changed.
func (that *State) MovePhase(delta int) bool {
	before := that.currentPhaseIndex()
	that.SetPhaseIndex(before + delta)

	return that.currentPhaseIndex() != before
}

// ensurePhaseCapacity grows the rounds of a phase to its configured count
// and every revenue vector to the corporation count. Existing values are
// kept and new slots are zero.
func (that *State) ensurePhaseCapacity(phase int) {
	for len(that.phaseRounds) <= phase {
		that.phaseRounds = append(that.phaseRounds, nil)
	}

	corporations := len(that.session.Corporations)
	desired := 1
	if phase < len(that.phases) {
		desired = max(that.phases[phase].OperatingRounds, 1)
	}

	rounds := that.phaseRounds[phase]
	for len(rounds) < desired {
		rounds = append(rounds, entity.NewOperatingRound(corporations))
	}

	for i := range rounds {
		if missing := corporations - len(rounds[i].Revenues); missing > 0 {
			rounds[i].Revenues = append(rounds[i].Revenues, make([]int, missing)...)
		}
	}

	that.phaseRounds[phase] = rounds
}

func (that *State) bootstrapRevenue() {
	if len(that.session.Corporations) == 0 {
		return
	}

	phase := that.currentPhaseIndex()
	that.ensurePhaseCapacity(phase)

	that.revenue.OR = clamp(that.revenue.OR, 0, len(that.phaseRounds[phase])-1)
	for i, corp := range that.session.Corporations {
		that.SetRevenueValue(i, that.revenue.OR, corp.LastRevenue)
	}

	that.ensureRevenueCursorVisible()
}

// CurrentPhaseRounds returns the operating rounds of the selected phase.
func (that *State) CurrentPhaseRounds() []entity.OperatingRound {
	phase := that.currentPhaseIndex()
	if phase >= len(that.phaseRounds) {
		return nil
	}

	return that.phaseRounds[phase]
}

// AddOperatingRound appends a zeroed round to the current phase and moves
// the cursor onto it.
func (that *State) AddOperatingRound() error {
	corporations := len(that.session.Corporations)
	if corporations == 0 {
		return ErrNoCorporation
	}

	phase := that.currentPhaseIndex()
	that.ensurePhaseCapacity(phase)
	that.phaseRounds[phase] = append(that.phaseRounds[phase], entity.NewOperatingRound(corporations))
	that.revenue.OR = len(that.phaseRounds[phase]) - 1
	that.ensureRevenueCursorVisible()

	return nil
}

// AdvanceOperatingRound moves to the next round of the phase if there is one.
func (that *State) AdvanceOperatingRound() bool {
	that.ensurePhaseCapacity(that.currentPhaseIndex())

	total := len(that.CurrentPhaseRounds())
	if total == 0 || that.revenue.OR+1 >= total {
		return false
	}

	that.revenue.OR++
	that.ensureRevenueCursorVisible()

	return true
}

func (that *State) RetreatOperatingRound() bool {
	that.ensurePhaseCapacity(that.currentPhaseIndex())

	if that.revenue.OR == 0 {
		return false
	}

	that.revenue.OR--
	that.ensureRevenueCursorVisible()

	return true
}

// OperatingRoundSummary renders "OR <current> of <total>".
func (that *State) OperatingRoundSummary() string {
	total := len(that.CurrentPhaseRounds())
	if total == 0 {
		return "OR 0 of 0"
	}

	return fmt.Sprintf("OR %d of %d", min(that.revenue.OR, total-1)+1, total)
}

// SetRevenueValue writes the revenue of a corporation in a round of the
// current phase, adding rounds when col is past the end.
func (that *State) SetRevenueValue(row, col, value int) {
	corporations := len(that.session.Corporations)
	if row < 0 || row >= corporations || col < 0 {
		return
	}

	phase := that.currentPhaseIndex()
	that.ensurePhaseCapacity(phase)

	for len(that.phaseRounds[phase]) <= col {
		that.phaseRounds[phase] = append(that.phaseRounds[phase], entity.NewOperatingRound(corporations))
	}

	that.phaseRounds[phase][col].Revenues[row] = value
}

// RevenueValue reads the cell under the revenue cursor.
func (that *State) RevenueValue() (int, bool) {
	rounds := that.CurrentPhaseRounds()
	if that.revenue.OR < 0 || that.revenue.OR >= len(rounds) {
		return 0, false
	}

	revenues := rounds[that.revenue.OR].Revenues
	if that.revenue.Corp < 0 || that.revenue.Corp >= len(revenues) {
		return 0, false
	}

	return revenues[that.revenue.Corp], true
}

// SetCurrentRevenue writes the cell under the revenue cursor, clamped at
// zero.
func (that *State) SetCurrentRevenue(value int) {
	that.SetRevenueValue(that.revenue.Corp, that.revenue.OR, max(value, 0))
}

// AdjustCurrentRevenue adds delta to the cell under the revenue cursor.
func (that *State) AdjustCurrentRevenue(delta int) int {
	current, _ := that.RevenueValue()
	updated := max(current+delta, 0)
	that.SetCurrentRevenue(updated)

	return updated
}

// SetRevenuePercent sets the cell under the cursor to percent of the focused
// corporation's last revenue.
func (that *State) SetRevenuePercent(percent int) (int, error) {
	corp, err := that.CurrentCorporation()
	if err != nil {
		return 0, err
	}

	value := corp.LastRevenue * percent / 100
	that.SetCurrentRevenue(value)

	return max(value, 0), nil
}

func (that *State) RevenueViewEnabled() bool {
	return that.revenue.Enabled
}

func (that *State) RevenueCursor() (corp, round int) {
	return that.revenue.Corp, that.revenue.OR
}

func (that *State) RevenueViewport() Viewport {
	return that.revenue.View
}

// ToggleRevenueView switches between the market and the revenue matrix and
// reports whether the matrix is now shown.
func (that *State) ToggleRevenueView() bool {
	that.titleBanner = false
	that.revenue.Enabled = !that.revenue.Enabled

	if that.revenue.Enabled {
		that.ensurePhaseCapacity(that.currentPhaseIndex())
		that.syncRevenueCursorWithCorporation()
		that.revenue.View.RowOffset = 0
		that.revenue.View.ColOffset = 0
		that.revenue.OR = clamp(that.revenue.OR, 0, max(len(that.CurrentPhaseRounds())-1, 0))
		that.revenue.View.Rows = max(that.revenue.View.Rows, 1)
		that.revenue.View.Cols = max(that.revenue.View.Cols, 1)
		that.ensureRevenueCursorVisible()
	}

	return that.revenue.Enabled
}

// SetRevenueViewDims records how many corporations and rounds fit on screen.
func (that *State) SetRevenueViewDims(rows, cols int) {
	that.revenue.View.Rows = max(rows, 1)
	that.revenue.View.Cols = max(cols, 1)
	that.ensureRevenueCursorVisible()
}

// MoveRevenueCursor moves inside the matrix. The corporation focus follows
// the cursor row.
func (that *State) MoveRevenueCursor(dRow, dCol int) {
	that.ensurePhaseCapacity(that.currentPhaseIndex())

	rows, cols := len(that.session.Corporations), len(that.CurrentPhaseRounds())
	if rows == 0 || cols == 0 {
		return
	}

	that.revenue.Corp = clamp(that.revenue.Corp+dRow, 0, rows-1)
	that.revenue.OR = clamp(that.revenue.OR+dCol, 0, cols-1)
	that.corporationIndex = that.revenue.Corp
	that.ensureRevenueCursorVisible()
}

func (that *State) syncRevenueCursorWithCorporation() {
	that.revenue.Corp = clamp(that.corporationIndex, 0, max(len(that.session.Corporations)-1, 0))
}

func (that *State) ensureRevenueCursorVisible() {
	rows, cols := len(that.session.Corporations), len(that.CurrentPhaseRounds())
	if rows == 0 || cols == 0 {
		that.revenue.Corp, that.revenue.OR = 0, 0
		that.revenue.View.RowOffset, that.revenue.View.ColOffset = 0, 0

		return
	}

	that.revenue.Corp = min(that.revenue.Corp, rows-1)
	that.revenue.OR = min(that.revenue.OR, cols-1)
	that.revenue.View.RowOffset = scrollIntoView(that.revenue.View.RowOffset, that.revenue.Corp, that.revenue.View.Rows, rows)
	that.revenue.View.ColOffset = scrollIntoView(that.revenue.View.ColOffset, that.revenue.OR, that.revenue.View.Cols, cols)
}

// ApplyRevenueAction pays or withholds the focused corporation's revenue and
// moves its token. A dividend moves one column right, or one row down when
// there is no cell to the right. A withhold moves one column left, or one
// row up. With no neighbour the token stays put.
func (that *State) ApplyRevenueAction(action RevenueAction) (RevenueOutcome, error) {
	corp, err := that.CurrentCorporation()
	if err != nil {
		return RevenueOutcome{}, err
	}

	if corp.MarketPosition == nil {
		return RevenueOutcome{}, ErrNoMarketPosition
	}

	primary, fallback := [2]int{0, 1}, [2]int{1, 0}
	if action == Withhold {
		primary, fallback = [2]int{0, -1}, [2]int{-1, 0}
	}

	current := *corp.MarketPosition
	target, moved := that.neighbour(current, primary)
	if !moved {
		target, moved = that.neighbour(current, fallback)
	}

	if moved {
		corp.MarketPosition = &target
	}

	return RevenueOutcome{
		CorporationSym: corp.Sym,
		Total:          corp.LastRevenue,
		PriceLabel:     entity.PriceLabel(corp.MarketPosition.Raw),
		Moved:          moved,
		Action:         action,
	}, nil
}

func (that *State) neighbour(position entity.MarketPosition, delta [2]int) (entity.MarketPosition, bool) {
	row, col := position.Row+delta[0], position.Col+delta[1]
	if row < 0 || col < 0 {
		return entity.MarketPosition{}, false
	}

	cell, ok := that.session.Cell(row, col)
	if !ok {
		return entity.MarketPosition{}, false
	}

	return cell.Position(), true
}

// SharePayoutLine lists the per-share payout of total for 10% to 60%
// holdings.
func SharePayoutLine(total int) string {
	if total <= 0 {
		return "Dividends: $0"
	}

	parts := make([]string, 0, 6)
	for percent := 10; percent <= 60; percent += 10 {
		amount := int(math.Round(float64(total) * float64(percent) / 100))
		parts = append(parts, fmt.Sprintf("%d%% $%d", percent, amount))
	}

	return "Dividends: " + strings.Join(parts, " | ")
}
