package engine

import "github.com/pkg/errors"

// Command operations.
const (
	OpStart   = "start"
	OpLeft    = "left"
	OpRight   = "right"
	OpFire    = "fire"
	OpPause   = "pause"
	OpPointer = "pointer" // Pointer moved
	OpPress   = "press"   // Pointer pressed; moves then fires
)

// Command is one player input in data form, for frontends that queue or
// transmit input. For pointer operations X is the position on the displayed
// playfield and Width its displayed width; Width 0 means X is already in
// playfield units.
type Command struct {
	Op    string  `json:"op"`
	X     float64 `json:"x,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Apply performs c. Only an unknown operation is an error; commands that do
// not fit the current phase are ignored like their method counterparts.
func (e *Engine) Apply(c Command) error {
	switch c.Op {
	case OpStart:
		e.Start()
	case OpLeft:
		e.MoveLeft()
	case OpRight:
		e.MoveRight()
	case OpFire:
		e.Fire()
	case OpPause:
		e.TogglePause()
	case OpPointer:
		e.PointerMove(e.ToLogicalX(c.X, c.Width))
	case OpPress:
		e.PointerPress(e.ToLogicalX(c.X, c.Width))
	default:
		return errors.Errorf("unknown op %q", c.Op)
	}
	return nil
}
