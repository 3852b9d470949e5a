package play

import (
	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/ruthgard/18TUI/internal/market"
)

func (that *State) MarketCursor() market.Cursor {
	return that.marketCursor
}

func (that *State) CurrentMarketCell() (entity.MarketCell, bool) {
	return that.session.Cell(that.marketCursor.Row, that.marketCursor.Col)
}

// isPar treats every cell as par-eligible when the game flags none.
func (that *State) isPar(row, col int) bool {
	if len(that.session.ParCells) == 0 {
		_, ok := that.session.Cell(row, col)
		return ok
	}

	return that.session.IsPar(row, col)
}

func (that *State) marketFilter() market.Filter {
	if that.mode.Kind() == KindParSelect {
		return market.ParOnly(that.isPar)
	}

	return market.Any
}

// MoveMarketCursor moves the market cursor. In par selection only par cells
// are reachable.
func (that *State) MoveMarketCursor(dRow, dCol int) {
	that.marketCursor = market.Move(that.session, that.marketCursor, dRow, dCol, that.marketFilter())
	that.ensureMarketCursorVisible()
}

func (that *State) inMarketOrIdle() bool {
	switch that.mode.(type) {
	case *Idle, *ParSelect, *PriceSelect:
		return true
	default:
		return false
	}
}

// EnterParSelect switches to par selection. The cursor snaps to the
// corporation's current cell when it is a par cell, otherwise to the first
// par-eligible cell.
func (that *State) EnterParSelect() error {
	if !that.inMarketOrIdle() {
		return ErrWrongMode
	}

	if corp, err := that.CurrentCorporation(); err == nil && corp.MarketPosition != nil {
		if that.isPar(corp.MarketPosition.Row, corp.MarketPosition.Col) {
			that.marketCursor = market.Cursor{Row: corp.MarketPosition.Row, Col: corp.MarketPosition.Col}
		}
	}

	if !that.isPar(that.marketCursor.Row, that.marketCursor.Col) {
		cursor, ok := market.First(that.session.ParCells, nil)
		if !ok {
			cursor, ok = market.First(that.session.MarketCells, nil)
		}

		if !ok {
			that.mode = &Idle{}
			return ErrNoParCells
		}

		that.marketCursor = cursor
	}

	that.mode = &ParSelect{}
	that.ensureMarketCursorVisible()

	return nil
}

// EnterPriceSelect switches to stock price selection with the cursor on the
// corporation's token, if it has one.
func (that *State) EnterPriceSelect() error {
	if !that.inMarketOrIdle() {
		return ErrWrongMode
	}

	if corp, err := that.CurrentCorporation(); err == nil && corp.MarketPosition != nil {
		that.marketCursor = market.Cursor{Row: corp.MarketPosition.Row, Col: corp.MarketPosition.Col}
	}

	that.mode = &PriceSelect{}
	that.ensureMarketCursorVisible()

	return nil
}

// ExitMarket cancels par or price selection without changing anything.
func (that *State) ExitMarket() {
	if that.inMarketOrIdle() {
		that.mode = &Idle{}
	}
}

// ApplyParSelection sets par and token position from the cell under the
// cursor and returns to idle. Cells without a number give a par of 0.
func (that *State) ApplyParSelection() (int, error) {
	if that.mode.Kind() != KindParSelect {
		return 0, ErrWrongMode
	}

	cell, ok := that.CurrentMarketCell()
	if !ok {
		return 0, ErrNoMarketCell
	}

	corp, err := that.CurrentCorporation()
	if err != nil {
		return 0, err
	}

	value := cell.NumericValue()
	position := cell.Position()
	corp.ParValue = &value
	corp.MarketPosition = &position

	that.mode = &Idle{}
	that.ensureMarketCursorVisible()

	return value, nil
}

// ApplyPriceSelection moves the token to the cell under the cursor. Par is
// left unchanged.
func (that *State) ApplyPriceSelection() (entity.MarketPosition, error) {
	if that.mode.Kind() != KindPriceSelect {
		return entity.MarketPosition{}, ErrWrongMode
	}

	cell, ok := that.CurrentMarketCell()
	if !ok {
		return entity.MarketPosition{}, ErrNoMarketCell
	}

	corp, err := that.CurrentCorporation()
	if err != nil {
		return entity.MarketPosition{}, err
	}

	position := cell.Position()
	corp.MarketPosition = &position

	that.mode = &Idle{}
	that.ensureMarketCursorVisible()

	return position, nil
}
