package entity

import (
	"strings"
	"time"
)

// GameInfo describes one playable title as listed by the session loader.
type GameInfo struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Subtitle  string     `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Folder    string     `json:"folder" yaml:"folder"`
	Designer  string     `json:"designer,omitempty" yaml:"designer,omitempty"`
	Location  string     `json:"location,omitempty" yaml:"location,omitempty"`
	RulesURL  string     `json:"rules_url,omitempty" yaml:"rules_url,omitempty"`
	Commit    string     `json:"commit,omitempty" yaml:"commit,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (that GameInfo) DisplayName() string {
	if that.Subtitle == "" {
		return that.Title
	}

	return that.Title + " · " + that.Subtitle
}

// Matches reports whether the needle occurs in the id, title, subtitle,
// designer or location, ignoring case.
func (that GameInfo) Matches(needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}

	for _, field := range []string{that.ID, that.Title, that.Subtitle, that.Designer, that.Location} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	return false
}

// GameSession is the rule data of one game as produced by the loader. Apart
// from corporation runtime fields and the train pool it is never changed
// after load.
type GameSession struct {
	Info         GameInfo         `json:"info"`
	Corporations []*Corporation   `json:"corporations"`
	Market       [][]string       `json:"market"`
	MarketCells  []MarketCell     `json:"market_cells"`
	ParCells     []MarketCell     `json:"par_cells"`
	TrainTypes   []TrainType      `json:"train_types"`
	TrainPool    []TrainPoolEntry `json:"train_pool"`
	Phases       []any            `json:"phases"`
	LoadedAt     time.Time        `json:"loaded_at"`

	index map[cellKey]MarketCell
}

type cellKey struct {
	row int
	col int
}

// Reindex rebuilds the (row, col) lookup from MarketCells. Holes never enter
// the index.
func (that *GameSession) Reindex() {
	that.index = make(map[cellKey]MarketCell, len(that.MarketCells))
	for _, cell := range that.MarketCells {
		that.index[cellKey{row: cell.Row, col: cell.Col}] = cell
	}
}

func (that *GameSession) Rows() int {
	return len(that.Market)
}

func (that *GameSession) RowLen(row int) int {
	if row < 0 || row >= len(that.Market) {
		return 0
	}

	return len(that.Market[row])
}

// MaxRowLen returns the length of the widest market row.
func (that *GameSession) MaxRowLen() int {
	widest := 0
	for _, row := range that.Market {
		widest = max(widest, len(row))
	}

	return widest
}

func (that *GameSession) Cell(row, col int) (MarketCell, bool) {
	if that.index == nil {
		that.Reindex()
	}

	cell, ok := that.index[cellKey{row: row, col: col}]

	return cell, ok
}

// IsPar reports whether (row, col) is a par-eligible cell.
func (that *GameSession) IsPar(row, col int) bool {
	for _, cell := range that.ParCells {
		if cell.Row == row && cell.Col == col {
			return true
		}
	}

	return false
}

func (that *GameSession) CorporationBySym(sym string) (*Corporation, bool) {
	for _, corp := range that.Corporations {
		if corp.Sym == sym {
			return corp, true
		}
	}

	return nil, false
}

func (that *GameSession) TrainType(name string) (TrainType, bool) {
	for _, trainType := range that.TrainTypes {
		if trainType.Name == name {
			return trainType, true
		}
	}

	return TrainType{}, false
}

// PhaseInfos returns the phase list, with a single two-round "Phase" when the
// game defines none.
func (that *GameSession) PhaseInfos() []PhaseInfo {
	if len(that.Phases) == 0 {
		return []PhaseInfo{{Name: DefaultPhaseName, OperatingRounds: DefaultOperatingRounds}}
	}

	phases := make([]PhaseInfo, 0, len(that.Phases))
	for _, raw := range that.Phases {
		phases = append(phases, PhaseFromValue(raw))
	}

	return phases
}
