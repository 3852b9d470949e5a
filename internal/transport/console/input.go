package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Named keys understood by the poller.
const (
	KeyEnter     = "enter"
	KeyEsc       = "esc"
	KeyTab       = "tab"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyBackspace = "backspace"
	KeySpace     = "space"
	KeyPgUp      = "pgup"
	KeyPgDn      = "pgdn"
	KeyCtrlR     = "ctrl+r"
)

var namedKeys = map[string]struct{}{
	KeyEnter: {}, KeyEsc: {}, KeyTab: {}, KeyUp: {}, KeyDown: {}, KeyLeft: {},
	KeyRight: {}, KeyBackspace: {}, KeySpace: {}, KeyPgUp: {}, KeyPgDn: {}, KeyCtrlR: {},
}

// Key is either a named key or a single character.
type Key struct {
	Name string
	Rune rune
}

func Named(name string) Key {
	return Key{Name: name}
}

func Char(r rune) Key {
	return Key{Rune: r}
}

func (that Key) IsChar() bool {
	return that.Name == ""
}

func (that Key) String() string {
	if that.IsChar() {
		return string(that.Rune)
	}

	return that.Name
}

type Event interface {
	isEvent()
}

type KeyEvent struct {
	Key Key
}

type TickEvent struct {
	At time.Time
}

// ClosedEvent is sent once when the input stream ends.
type ClosedEvent struct{}

func (KeyEvent) isEvent()    {}
func (TickEvent) isEvent()   {}
func (ClosedEvent) isEvent() {}

// ParseLine splits one input line into keys. Tokens are separated by
// spaces; a token naming a key is that key and any other token is typed
// rune by rune. An empty line is a bare enter.
func ParseLine(line string) []Key {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return []Key{Named(KeyEnter)}
	}

	keys := make([]Key, 0, len(tokens))
	for _, token := range tokens {
		lower := strings.ToLower(token)
		if _, ok := namedKeys[lower]; ok {
			keys = append(keys, Named(lower))
			continue
		}

		for _, r := range token {
			keys = append(keys, Char(r))
		}
	}

	return keys
}

// Poller forwards keys read from a line-oriented stream and emits a tick at
// a fixed rate.
type Poller struct {
	logger   *slog.Logger
	reader   io.Reader
	tickRate time.Duration
}

func NewPoller(logger *slog.Logger, reader io.Reader, tickRate time.Duration) *Poller {
	return &Poller{
		logger:   logger.With("component", "input"),
		reader:   reader,
		tickRate: tickRate,
	}
}

// Run blocks until ctx ends or the stream is exhausted. At end of stream a
// ClosedEvent is delivered before returning.
func (that *Poller) Run(ctx context.Context, events chan<- Event) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(that.reader)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	ticker := time.NewTicker(that.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			select {
			case events <- TickEvent{At: now}:
			default:
			}
		case line, ok := <-lines:
			if !ok {
				return that.closed(ctx, events, readErr)
			}

			for _, key := range ParseLine(line) {
				select {
				case events <- KeyEvent{Key: key}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func (that *Poller) closed(ctx context.Context, events chan<- Event, readErr <-chan error) error {
	var err error
	select {
	case err = <-readErr:
	default:
	}

	select {
	case events <- ClosedEvent{}:
	case <-ctx.Done():
	}

	if err != nil {
		that.logger.Error("input stream failed", "error", err)
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}
