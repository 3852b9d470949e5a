package play

import (
	"time"

	"github.com/ruthgard/18TUI/internal/entity"
)

func intPtr(value int) *int {
	return &value
}

// newSession builds a small 1889-like game:
//
//	100  110p 125p 140
//	 90  100p 110  --
//	 80   90  100
func newSession() *entity.GameSession {
	rows := [][]string{
		{"100", "110p", "125p", "140"},
		{"90", "100p", "110", ""},
		{"80", "90", "100"},
	}
	cells := entity.CollectMarketCells(rows)
	types := []entity.TrainType{
		{Name: "2", Distance: 2, Price: intPtr(80), Total: 3, RustsOn: "4"},
		{Name: "3", Distance: 3, Price: intPtr(180), Total: 1},
		{Name: "D", Distance: "D", Price: intPtr(1100), Total: 0},
	}

	return &entity.GameSession{
		Info: entity.GameInfo{ID: "1889", Title: "Shikoku 1889", Folder: "g_1889"},
		Corporations: []*entity.Corporation{
			entity.NewCorporation("AR", "Awa Railroad", "#37383a", "#ffffff"),
			entity.NewCorporation("IR", "Iyo Railway", "#f48221", "#ffffff"),
		},
		Market:      rows,
		MarketCells: cells,
		ParCells:    entity.ParCellsFrom(cells),
		TrainTypes:  types,
		TrainPool:   entity.PoolFor(types),
		Phases:      []any{"2", map[string]any{"name": "3", "operating_rounds": float64(2)}},
		LoadedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// singleTypeSession has one train type with a supply of three.
func singleTypeSession() *entity.GameSession {
	session := newSession()
	session.TrainTypes = []entity.TrainType{{Name: "2", Distance: 2, Price: intPtr(80), Total: 3}}
	session.TrainPool = entity.PoolFor(session.TrainTypes)

	return session
}

func ownedCount(session *entity.GameSession, name string) int {
	count := 0
	for _, corp := range session.Corporations {
		for _, train := range corp.Trains {
			if train.Name == name {
				count++
			}
		}
	}

	return count
}
