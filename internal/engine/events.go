package engine

import "github.com/pkg/errors"

// EventKind identifies a gameplay event.
type EventKind int

const (
	EventStarted        EventKind = iota // A run began
	EventFired                           // A bullet was created
	EventEnemyDestroyed                  // A bullet hit an enemy
	EventLifeLost                        // An enemy reached the floor
	EventGameOver                        // Lives ran out
	EventPaused
	EventResumed
)

var eventNames = [...]string{
	EventStarted:        "started",
	EventFired:          "fired",
	EventEnemyDestroyed: "enemy_destroyed",
	EventLifeLost:       "life_lost",
	EventGameOver:       "game_over",
	EventPaused:         "paused",
	EventResumed:        "resumed",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name for JSON frames.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *EventKind) UnmarshalText(b []byte) error {
	for i, name := range eventNames {
		if name == string(b) {
			*k = EventKind(i)
			return nil
		}
	}
	return errors.Errorf("unknown event kind %q", b)
}

// maxPendingEvents bounds the event buffer for frontends that never drain it.
const maxPendingEvents = 64

// Event is something that happened during a command or tick.
// X and Y locate the event on the playfield where that makes sense.
type Event struct {
	Kind  EventKind
	X, Y  float64
	Score int // Score after the event
}

func (e *Engine) emit(ev Event) {
	ev.Score = e.score
	if len(e.events) >= maxPendingEvents {
		copy(e.events, e.events[1:])
		e.events = e.events[:len(e.events)-1]
	}
	e.events = append(e.events, ev)
}

// Events returns the events recorded since the last call, oldest first,
// and clears the buffer. The returned slice is only valid until the next
// command or tick.
func (e *Engine) Events() []Event {
	out := e.events
	e.events = e.events[:0]
	return out
}
