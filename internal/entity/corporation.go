package entity

type MarketPosition struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value *int   `json:"value,omitempty"`
	Raw   string `json:"raw"`
}

type Corporation struct {
	Sym            string             `json:"sym"`
	Name           string             `json:"name"`
	Color          string             `json:"color,omitempty"`
	TextColor      string             `json:"text_color,omitempty"`
	ParValue       *int               `json:"par_value,omitempty"`
	MarketPosition *MarketPosition    `json:"market_position,omitempty"`
	Trains         []CorporationTrain `json:"trains"`
	LastRevenue    int                `json:"last_revenue"`
}

func NewCorporation(sym, name, color, textColor string) *Corporation {
	return &Corporation{
		Sym:       sym,
		Name:      name,
		Color:     color,
		TextColor: textColor,
		Trains:    []CorporationTrain{},
	}
}

func (that *Corporation) HasTrains() bool {
	return len(that.Trains) > 0
}

// RecalculateRevenue sets LastRevenue to the sum of the trains' last runs.
func (that *Corporation) RecalculateRevenue() {
	total := 0
	for _, train := range that.Trains {
		total += train.LastRevenue
	}

	that.LastRevenue = total
}

type CorporationTrain struct {
	Name         string `json:"name"`
	Distance     any    `json:"distance"`
	Price        *int   `json:"price,omitempty"`
	RevenueStops []int  `json:"revenue_stops"`
	LastRevenue  int    `json:"last_revenue"`
}

// SetStops replaces the run and keeps LastRevenue equal to its sum.
func (that *CorporationTrain) SetStops(stops []int) {
	that.RevenueStops = append([]int(nil), stops...)
	that.LastRevenue = 0
	for _, stop := range stops {
		that.LastRevenue += stop
	}
}
