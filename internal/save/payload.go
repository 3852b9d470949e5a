package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/entity"
)

var nullState = json.RawMessage("null")

// Payload is one save document. History is a linear log of state snapshots,
// HistoryIndex points at the active one and State mirrors it.
type Payload struct {
	GameID       string            `json:"game_id"`
	Name         string            `json:"name"`
	SavedAt      time.Time         `json:"saved_at"`
	State        json.RawMessage   `json:"state"`
	History      []json.RawMessage `json:"history"`
	HistoryIndex int               `json:"history_index"`
}

// NewPayload starts a save for the game with state as its only snapshot. A
// blank name falls back to the game title.
func NewPayload(game entity.GameInfo, name string, state json.RawMessage) *Payload {
	name = strings.TrimSpace(name)
	if name == "" {
		name = game.Title
	}

	payload := &Payload{
		GameID:  game.ID,
		Name:    name,
		SavedAt: time.Now().UTC(),
		State:   state,
	}
	payload.Normalize()

	return payload
}

// Decode parses a save document and repairs its history.
func Decode(data []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("could not decode save: %w: %w", apperror.ErrSerialization, err)
	}

	payload.Normalize()

	return &payload, nil
}

// Encode renders the payload as indented JSON.
func (that *Payload) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(that, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode save: %w: %w", apperror.ErrSerialization, err)
	}

	return data, nil
}

// Normalize restores the history invariants: the log is never empty, the
// index is inside it and State equals the indexed snapshot.
func (that *Payload) Normalize() {
	if len(that.State) == 0 {
		that.State = nullState
	}

	if len(that.History) == 0 {
		that.History = []json.RawMessage{that.State}
		that.HistoryIndex = 0
	}

	if that.HistoryIndex >= len(that.History) {
		that.HistoryIndex = len(that.History) - 1
	}

	if that.HistoryIndex < 0 {
		that.HistoryIndex = 0
	}

	that.State = that.History[that.HistoryIndex]
}

// Push records state as the newest snapshot. Snapshots after the cursor are
// discarded first. Pushing a state equal to the tail changes nothing.
func (that *Payload) Push(state json.RawMessage) {
	that.Normalize()

	if len(state) == 0 {
		state = nullState
	}

	that.History = that.History[:that.HistoryIndex+1]

	if SameJSON(that.History[len(that.History)-1], state) {
		return
	}

	that.History = append(that.History, state)
	that.HistoryIndex = len(that.History) - 1
	that.State = state
	that.SavedAt = time.Now().UTC()
}

// SetIndex moves the cursor to an existing snapshot.
func (that *Payload) SetIndex(index int) error {
	that.Normalize()

	if index < 0 || index >= len(that.History) {
		return fmt.Errorf("history index %d of %d: %w", index, len(that.History), apperror.ErrOutOfRange)
	}

	that.HistoryIndex = index
	that.State = that.History[index]
	that.SavedAt = time.Now().UTC()

	return nil
}

func (that *Payload) HistoryLen() int {
	return len(that.History)
}

// HasState reports whether the active snapshot carries a session state.
func (that *Payload) HasState() bool {
	trimmed := bytes.TrimSpace(that.State)

	return len(trimmed) > 0 && !bytes.Equal(trimmed, nullState)
}

func (that *Payload) Entry(location string) Entry {
	return Entry{
		Location:  location,
		GameID:    that.GameID,
		Name:      that.Name,
		UpdatedAt: that.SavedAt,
	}
}

// SameJSON compares two documents by value so key order and whitespace do
// not matter.
func SameJSON(left, right json.RawMessage) bool {
	var leftValue, rightValue any
	if err := json.Unmarshal(left, &leftValue); err != nil {
		return bytes.Equal(left, right)
	}

	if err := json.Unmarshal(right, &rightValue); err != nil {
		return false
	}

	return reflect.DeepEqual(leftValue, rightValue)
}
