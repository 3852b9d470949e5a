package save

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// Entry is the listing record of a save. Location is whatever the backing
// store uses to find the payload again: a file path or a key.
type Entry struct {
	Location  string    `json:"path"`
	GameID    string    `json:"game_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SortNewestFirst orders entries by UpdatedAt, most recent first.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
}

// SanitizeComponent keeps ASCII letters, digits, '-' and '_' so the result is
// safe inside a file name.
func SanitizeComponent(input string) string {
	var builder strings.Builder
	for _, r := range input {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			builder.WriteRune(r)
		}
	}

	if builder.Len() == 0 {
		return "save"
	}

	return builder.String()
}

// DefaultName is the suggested name for a new save of game.
func DefaultName(gameID, title string, now time.Time) string {
	base := strings.TrimSpace(gameID)
	if base == "" {
		base = strings.TrimSpace(title)
	}

	return base + " " + now.Format("2006-01-02 15:04")
}
