package market

import "github.com/ruthgard/18TUI/internal/entity"

// Grid is a ragged stock-market grid. Rows may differ in length and empty
// entries are holes that Cell does not return.
type Grid interface {
	Rows() int
	RowLen(row int) int
	MaxRowLen() int
	Cell(row, col int) (entity.MarketCell, bool)
}

type Cursor struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Filter decides whether the cursor may rest on a cell.
type Filter func(cell entity.MarketCell) bool

// Any accepts every cell.
func Any(entity.MarketCell) bool { return true }

// ParOnly accepts the cells the par lookup reports as eligible.
func ParOnly(isPar func(row, col int) bool) Filter {
	return func(cell entity.MarketCell) bool {
		return isPar(cell.Row, cell.Col)
	}
}

// Move steps the cursor by (dRow, dCol) until it lands on an existing cell
// accepted by the filter. Rows without entries are skipped and, when the
// row changes, the column is clamped to the new row's edge. A market with a
// single row wraps horizontally. The scan is bounded by rows * widest row;
// when nothing qualifies the cursor is returned unchanged.
func Move(grid Grid, from Cursor, dRow, dCol int, accept Filter) Cursor {
	if dRow == 0 && dCol == 0 {
		return from
	}

	if accept == nil {
		accept = Any
	}

	rows := grid.Rows()
	if rows == 0 {
		return from
	}

	if rows == 1 {
		return wrapRow(grid, from, dCol, accept)
	}

	limit := max(rows*max(grid.MaxRowLen(), 1), 1)
	row, col := from.Row, from.Col

	for attempt := 0; attempt < limit; attempt++ {
		row += dRow
		col += dCol

		if row < 0 || row >= rows {
			return from
		}

		rowLen := grid.RowLen(row)
		if rowLen == 0 {
			continue
		}

		if col < 0 || col >= rowLen {
			if dRow == 0 {
				return from
			}

			col = min(max(col, 0), rowLen-1)
		}

		cell, ok := grid.Cell(row, col)
		if ok && accept(cell) {
			return Cursor{Row: cell.Row, Col: cell.Col}
		}
	}

	return from
}

// wrapRow moves circularly along the only row, passing over holes and
// rejected cells. It gives up after one full lap.
func wrapRow(grid Grid, from Cursor, dCol int, accept Filter) Cursor {
	rowLen := grid.RowLen(0)
	if rowLen == 0 || dCol == 0 {
		return from
	}

	col := from.Col
	for range rowLen {
		col = ((col+dCol)%rowLen + rowLen) % rowLen

		cell, ok := grid.Cell(0, col)
		if ok && accept(cell) {
			return Cursor{Row: 0, Col: col}
		}
	}

	return from
}

// First returns the first cell in row-major order accepted by the filter.
func First(cells []entity.MarketCell, accept Filter) (Cursor, bool) {
	if accept == nil {
		accept = Any
	}

	for _, cell := range cells {
		if accept(cell) {
			return Cursor{Row: cell.Row, Col: cell.Col}, true
		}
	}

	return Cursor{}, false
}
