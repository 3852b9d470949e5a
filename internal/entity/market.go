package entity

import (
	"regexp"
	"strconv"
	"strings"
)

var rawNumber = regexp.MustCompile(`\d+`)

type MarketCell struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value *int   `json:"value,omitempty"`
	Raw   string `json:"raw"`
	IsPar bool   `json:"is_par"`
}

// NumericValue returns the cell price, or 0 when the cell carries no number.
func (that MarketCell) NumericValue() int {
	if that.Value == nil {
		return 0
	}

	return *that.Value
}

func (that MarketCell) Position() MarketPosition {
	return MarketPosition{Row: that.Row, Col: that.Col, Value: that.Value, Raw: that.Raw}
}

// NewMarketCell parses a raw market entry. The numeric value is the first run
// of digits and a 'p' anywhere marks the cell as a par entry point.
func NewMarketCell(row, col int, raw string) MarketCell {
	cell := MarketCell{
		Row:   row,
		Col:   col,
		Raw:   raw,
		IsPar: strings.ContainsAny(raw, "pP"),
	}

	if digits := rawNumber.FindString(raw); digits != "" {
		if value, err := strconv.Atoi(digits); err == nil {
			cell.Value = &value
		}
	}

	return cell
}

// CollectMarketCells returns every non-blank entry of the grid in row-major
// order.
func CollectMarketCells(rows [][]string) []MarketCell {
	var cells []MarketCell
	for row, entries := range rows {
		for col, raw := range entries {
			if strings.TrimSpace(raw) == "" {
				continue
			}

			cells = append(cells, NewMarketCell(row, col, raw))
		}
	}

	return cells
}

// ParCellsFrom keeps the cells flagged as par. When nothing is flagged every
// cell is eligible.
func ParCellsFrom(cells []MarketCell) []MarketCell {
	var par []MarketCell
	for _, cell := range cells {
		if cell.IsPar {
			par = append(par, cell)
		}
	}

	if len(par) == 0 {
		return append([]MarketCell(nil), cells...)
	}

	return par
}

// PriceLabel strips the letter codes from a market entry, keeping the raw
// text when nothing else is left.
func PriceLabel(raw string) string {
	label := strings.TrimSpace(strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return -1
		}

		return r
	}, raw))

	if label == "" {
		return strings.TrimSpace(raw)
	}

	return label
}
