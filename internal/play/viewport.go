package play

// Viewport is the visible window of a scrollable grid.
type Viewport struct {
	RowOffset int `json:"row_offset"`
	ColOffset int `json:"col_offset"`
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
}

// scrollIntoView returns the offset that keeps cursor inside a window of
// size view over total items.
func scrollIntoView(offset, cursor, view, total int) int {
	view = max(view, 1)

	if cursor < offset {
		offset = cursor
	} else if cursor >= offset+view {
		offset = cursor + 1 - view
	}

	return clamp(offset, 0, max(total-view, 0))
}

func (that *State) MarketViewport() Viewport {
	return that.marketView
}

// SetMarketView records how many market rows and columns fit on screen. A
// market that fits completely is never scrolled.
func (that *State) SetMarketView(rows, cols int) {
	totalRows := that.session.Rows()
	if totalRows > 0 && totalRows <= rows {
		that.marketView.Rows = totalRows
		that.marketView.RowOffset = 0
	} else {
		that.marketView.Rows = max(rows, 1)
	}

	totalCols := that.session.MaxRowLen()
	if totalCols > 0 && totalCols <= cols {
		that.marketView.Cols = totalCols
		that.marketView.ColOffset = 0
	} else {
		that.marketView.Cols = max(cols, 1)
	}

	that.ensureMarketCursorVisible()
}

func (that *State) ensureMarketCursorVisible() {
	totalRows := that.session.Rows()
	if totalRows == 0 {
		that.marketView.RowOffset = 0
		that.marketView.ColOffset = 0

		return
	}

	switch {
	case totalRows == 1:
		that.marketView.RowOffset = 0
	case that.marketView.Rows > 0:
		that.marketView.RowOffset = scrollIntoView(that.marketView.RowOffset, that.marketCursor.Row, that.marketView.Rows, totalRows)
	}

	totalCols := that.session.MaxRowLen()
	switch {
	case totalCols == 0:
		that.marketView.ColOffset = 0
	case that.marketView.Cols > 0:
		that.marketView.ColOffset = scrollIntoView(that.marketView.ColOffset, that.marketCursor.Col, that.marketView.Cols, totalCols)
	}
}
