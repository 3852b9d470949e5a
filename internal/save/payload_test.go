package save

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ruthgard/18TUI/internal/apperror"
	"github.com/ruthgard/18TUI/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(value string) json.RawMessage {
	return json.RawMessage(value)
}

func samplePayload() *Payload {
	return NewPayload(entity.GameInfo{ID: "1889", Title: "Shikoku 1889"}, "First Save", raw(`{"step":"initial"}`))
}

func TestNewPayload(t *testing.T) {
	t.Run("seeds history with the initial state", func(t *testing.T) {
		payload := samplePayload()

		assert.Equal(t, "1889", payload.GameID)
		assert.Equal(t, "First Save", payload.Name)
		require.Equal(t, 1, payload.HistoryLen())
		assert.Equal(t, 0, payload.HistoryIndex)
		assert.JSONEq(t, `{"step":"initial"}`, string(payload.State))
	})

	t.Run("blank name falls back to the title", func(t *testing.T) {
		payload := NewPayload(entity.GameInfo{ID: "1889", Title: "Shikoku 1889"}, "   ", nil)

		assert.Equal(t, "Shikoku 1889", payload.Name)
		assert.False(t, payload.HasState())
		assert.Equal(t, 1, payload.HistoryLen())
	})
}

func TestPayload_Normalize(t *testing.T) {
	t.Run("empty history is seeded from state", func(t *testing.T) {
		payload := &Payload{State: raw(`{"a":1}`), HistoryIndex: 4}

		payload.Normalize()

		require.Len(t, payload.History, 1)
		assert.Equal(t, 0, payload.HistoryIndex)
		assert.JSONEq(t, `{"a":1}`, string(payload.History[0]))
	})

	t.Run("index past the tail is clamped and state resynced", func(t *testing.T) {
		payload := &Payload{
			State:        raw(`{"stale":true}`),
			History:      []json.RawMessage{raw(`{"a":1}`), raw(`{"a":2}`)},
			HistoryIndex: 9,
		}

		payload.Normalize()

		assert.Equal(t, 1, payload.HistoryIndex)
		assert.JSONEq(t, `{"a":2}`, string(payload.State))
	})
}

func TestPayload_Push(t *testing.T) {
	t.Run("appends and moves the cursor to the tail", func(t *testing.T) {
		payload := samplePayload()
		before := payload.SavedAt

		time.Sleep(time.Millisecond)
		payload.Push(raw(`{"step":"a"}`))

		assert.Equal(t, 2, payload.HistoryLen())
		assert.Equal(t, 1, payload.HistoryIndex)
		assert.JSONEq(t, `{"step":"a"}`, string(payload.State))
		assert.True(t, payload.SavedAt.After(before))
	})

	t.Run("pushing the same state twice is a no-op", func(t *testing.T) {
		// Given: a payload with one pushed state
		payload := samplePayload()
		payload.Push(raw(`{"step":"a","n":[1,2]}`))
		length := payload.HistoryLen()

		// When: a structurally equal state is pushed again
		payload.Push(raw(`{ "n": [1, 2], "step": "a" }`))

		// Then: history does not grow
		assert.Equal(t, length, payload.HistoryLen())
	})

	t.Run("pushing after an undo truncates the redo branch", func(t *testing.T) {
		// Given: push(a); push(b); set_index(a)
		payload := samplePayload()
		payload.Push(raw(`"a"`))
		payload.Push(raw(`"b"`))
		require.NoError(t, payload.SetIndex(1))

		// When: c is pushed
		payload.Push(raw(`"c"`))

		// Then: b is discarded
		require.Equal(t, 3, payload.HistoryLen())
		assert.JSONEq(t, `{"step":"initial"}`, string(payload.History[0]))
		assert.JSONEq(t, `"a"`, string(payload.History[1]))
		assert.JSONEq(t, `"c"`, string(payload.History[2]))
		assert.Equal(t, 2, payload.HistoryIndex)
	})
}

func TestPayload_SetIndex(t *testing.T) {
	t.Run("moves the cursor and state", func(t *testing.T) {
		payload := samplePayload()
		payload.Push(raw(`"a"`))

		require.NoError(t, payload.SetIndex(0))

		assert.Equal(t, 0, payload.HistoryIndex)
		assert.JSONEq(t, `{"step":"initial"}`, string(payload.State))
		assert.Equal(t, 2, payload.HistoryLen())
	})

	t.Run("index outside history fails", func(t *testing.T) {
		payload := samplePayload()

		err := payload.SetIndex(1)

		require.ErrorIs(t, err, apperror.ErrOutOfRange)
		assert.Equal(t, 0, payload.HistoryIndex)
	})
}

func TestPayload_RoundTrip(t *testing.T) {
	// Given: a payload with history and a moved cursor
	payload := samplePayload()
	payload.Push(raw(`{"step":"a"}`))
	payload.Push(raw(`{"step":"b"}`))
	require.NoError(t, payload.SetIndex(1))

	// When: it is encoded and decoded
	data, err := payload.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	// Then: history and cursor survive
	require.Equal(t, payload.HistoryLen(), decoded.HistoryLen())
	for i := range payload.History {
		assert.JSONEq(t, string(payload.History[i]), string(decoded.History[i]))
	}
	assert.Equal(t, payload.HistoryIndex, decoded.HistoryIndex)
	assert.JSONEq(t, `{"step":"a"}`, string(decoded.State))
}

func TestSameJSON(t *testing.T) {
	t.Run("key order and whitespace do not matter", func(t *testing.T) {
		assert.True(t, SameJSON(raw(`{"a":1,"b":[1,2]}`), raw(`{ "b": [1, 2], "a": 1 }`)))
	})

	t.Run("different values differ", func(t *testing.T) {
		assert.False(t, SameJSON(raw(`{"a":1}`), raw(`{"a":2}`)))
	})

	t.Run("unparsable documents compare by bytes", func(t *testing.T) {
		assert.True(t, SameJSON(raw(`{`), raw(`{`)))
		assert.False(t, SameJSON(raw(`{"a":1}`), raw(`{`)))
	})
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode([]byte(`{"game_id": 12`))

	require.ErrorIs(t, err, apperror.ErrSerialization)
}

func TestSanitizeComponent(t *testing.T) {
	assert.Equal(t, "HelloWorld18", SanitizeComponent("Hello World!* 18??"))
	assert.Equal(t, "save", SanitizeComponent("¿?"))
	assert.Equal(t, "18_chesapeake-x", SanitizeComponent("18_chesapeake-x"))
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		{Name: "old", UpdatedAt: now.Add(-time.Hour)},
		{Name: "new", UpdatedAt: now},
		{Name: "middle", UpdatedAt: now.Add(-time.Minute)},
	}

	SortNewestFirst(entries)

	assert.Equal(t, []string{"new", "middle", "old"}, []string{entries[0].Name, entries[1].Name, entries[2].Name})
}

func TestDefaultName(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	assert.Equal(t, "1889 2024-03-09 14:05", DefaultName("1889", "Shikoku", at))
	assert.Equal(t, "Shikoku 2024-03-09 14:05", DefaultName(" ", "Shikoku", at))
}
