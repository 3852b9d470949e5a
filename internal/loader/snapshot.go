package loader

import (
	"strconv"
	"strings"
	"time"

	"github.com/ruthgard/18TUI/internal/entity"
)

// snapshot is the on-disk shape of one extracted game. JSON files decode
// through the same YAML decoder.
type snapshot struct {
	Info         snapshotInfo          `yaml:"info"`
	Corporations []snapshotCorporation `yaml:"corporations"`
	Market       [][]any               `yaml:"market"`
	Trains       []snapshotTrain       `yaml:"trains"`
	Phases       []any                 `yaml:"phases"`
}

type snapshotInfo struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Designer string `yaml:"designer"`
	Location string `yaml:"location"`
	RulesURL string `yaml:"rules_url"`
}

type snapshotCorporation struct {
	Sym       string `yaml:"sym"`
	Name      string `yaml:"name"`
	Color     string `yaml:"color"`
	TextColor string `yaml:"text_color"`
}

type snapshotTrain struct {
	Name       string `yaml:"name"`
	Distance   any    `yaml:"distance"`
	Price      *int   `yaml:"price"`
	Num        *int   `yaml:"num"`
	RustsOn    any    `yaml:"rusts_on"`
	ObsoleteOn any    `yaml:"obsolete_on"`
}

func (that snapshot) gameInfo(id, file string) entity.GameInfo {
	if strings.TrimSpace(that.Info.ID) != "" {
		id = strings.TrimSpace(that.Info.ID)
	}

	title := strings.TrimSpace(that.Info.Title)
	if title == "" {
		title = strings.ToUpper(id)
	}

	return entity.GameInfo{
		ID:       id,
		Title:    title,
		Subtitle: strings.TrimSpace(that.Info.Subtitle),
		Folder:   file,
		Designer: strings.TrimSpace(that.Info.Designer),
		Location: strings.TrimSpace(that.Info.Location),
		RulesURL: strings.TrimSpace(that.Info.RulesURL),
	}
}

func (that snapshot) session(info entity.GameInfo, now time.Time) *entity.GameSession {
	corporations := make([]*entity.Corporation, 0, len(that.Corporations))
	for _, raw := range that.Corporations {
		sym := orUnknown(raw.Sym)
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			name = sym
		}

		corporations = append(corporations,
			entity.NewCorporation(sym, name, normalizeColor(raw.Color), normalizeColor(raw.TextColor)))
	}

	market := normalizeMarket(that.Market)
	cells := entity.CollectMarketCells(market)

	types := make([]entity.TrainType, 0, len(that.Trains))
	for _, raw := range that.Trains {
		total := 0
		if raw.Num != nil {
			total = max(*raw.Num, 0)
		}

		types = append(types, entity.TrainType{
			Name:       orUnknown(raw.Name),
			Distance:   raw.Distance,
			Price:      raw.Price,
			Total:      total,
			RustsOn:    raw.RustsOn,
			ObsoleteOn: raw.ObsoleteOn,
		})
	}

	session := &entity.GameSession{
		Info:         info,
		Corporations: corporations,
		Market:       market,
		MarketCells:  cells,
		ParCells:     entity.ParCellsFrom(cells),
		TrainTypes:   types,
		TrainPool:    entity.PoolFor(types),
		Phases:       that.Phases,
		LoadedAt:     now,
	}
	session.Reindex()

	return session
}

func orUnknown(value string) string {
	if value = strings.TrimSpace(value); value == "" {
		return "?"
	}

	return value
}

// normalizeColor strips whitespace and the symbol marker some games put in
// front of color names.
func normalizeColor(color string) string {
	return strings.TrimPrefix(strings.TrimSpace(color), ":")
}

func normalizeMarket(rows [][]any) [][]string {
	market := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, value := range row {
			cells = append(cells, marketText(value))
		}

		market = append(market, cells)
	}

	return market
}

// marketText renders a raw market entry: null is a hole, lists are joined
// with commas and maps are shown as "*".
func marketText(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case uint64:
		return strconv.FormatUint(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, nested := range typed {
			parts = append(parts, marketText(nested))
		}

		return strings.Join(parts, ",")
	case map[string]any:
		return "*"
	default:
		return ""
	}
}
