package entity

import (
	"strconv"
	"strings"
)

type TrainType struct {
	Name       string `json:"name"`
	Distance   any    `json:"distance"`
	Price      *int   `json:"price,omitempty"`
	Total      int    `json:"total"`
	RustsOn    any    `json:"rusts_on,omitempty"`
	ObsoleteOn any    `json:"obsolete_on,omitempty"`
}

// NewTrain builds an owned train of this type with an empty run.
func (that TrainType) NewTrain() CorporationTrain {
	return CorporationTrain{
		Name:         that.Name,
		Distance:     that.Distance,
		Price:        that.Price,
		RevenueStops: []int{},
	}
}

// StopLimit derives the maximum number of revenue stops from the distance
// value. ok is false when the distance sets no limit.
func (that TrainType) StopLimit() (limit int, ok bool) {
	return StopLimit(that.Distance)
}

type TrainPoolEntry struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

// PoolFor seeds one pool entry per type with the full supply.
func PoolFor(types []TrainType) []TrainPoolEntry {
	pool := make([]TrainPoolEntry, 0, len(types))
	for _, trainType := range types {
		pool = append(pool, TrainPoolEntry{Name: trainType.Name, Remaining: trainType.Total})
	}

	return pool
}

// StopLimit interprets a distance value: a number is the limit itself, a
// string is parsed, a list counts its entries and a map takes the largest
// limit among its values.
func StopLimit(distance any) (int, bool) {
	switch value := distance.(type) {
	case string:
		limit, err := strconv.Atoi(strings.TrimSpace(value))
		return limit, err == nil && limit >= 0
	case []any:
		return len(value), true
	case map[string]any:
		best, found := 0, false
		for _, nested := range value {
			if limit, ok := StopLimit(nested); ok && (!found || limit > best) {
				best, found = limit, true
			}
		}

		return best, found
	default:
		number, ok := toInt(value)
		return number, ok && number >= 0
	}
}

// FormatDistance renders a distance value for display.
func FormatDistance(distance any) string {
	switch value := distance.(type) {
	case nil:
		return "?"
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case []any:
		parts := make([]string, 0, len(value))
		for _, nested := range value {
			parts = append(parts, FormatDistance(nested))
		}

		return strings.Join(parts, "/")
	case map[string]any:
		return "map"
	default:
		if number, ok := toInt(value); ok {
			return strconv.Itoa(number)
		}

		return "?"
	}
}

// toInt accepts the numeric types produced by the JSON and YAML decoders.
func toInt(value any) (int, bool) {
	switch number := value.(type) {
	case int:
		return number, true
	case int64:
		return int(number), true
	case uint64:
		return int(number), true
	case float64:
		if number != float64(int(number)) {
			return 0, false
		}

		return int(number), true
	default:
		return 0, false
	}
}
