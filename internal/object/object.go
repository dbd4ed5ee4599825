// Package object defines the entities that live on the playfield.
package object

import "github.com/tomz197/shooter/internal/physics"

// Ship is the player-controlled cannon at the bottom of the playfield.
// Only X changes during play.
type Ship struct {
	X, Y float64 // Top-left corner
	W, H float64
}

// Bounds returns the ship's bounding box.
func (s Ship) Bounds() physics.Rect {
	return physics.Rect{X: s.X, Y: s.Y, W: s.W, H: s.H}
}

// CenterX returns the horizontal center of the ship.
func (s Ship) CenterX() float64 {
	return s.X + s.W/2
}

// MoveTo places the ship's left edge at x, clamped so it stays inside [0, fieldWidth].
func (s *Ship) MoveTo(x, fieldWidth float64) {
	s.X = physics.Clamp(x, 0, fieldWidth-s.W)
}

// CenterOn places the ship's center under x, clamped to the playfield.
func (s *Ship) CenterOn(x, fieldWidth float64) {
	s.MoveTo(x-s.W/2, fieldWidth)
}

// Enemy is a descending target.
type Enemy struct {
	X, Y float64 // Top-left corner
	VY   float64 // Descent speed applied on the last tick
	W, H float64
}

// Bounds returns the enemy's bounding box.
func (e Enemy) Bounds() physics.Rect {
	return physics.Rect{X: e.X, Y: e.Y, W: e.W, H: e.H}
}

// Advance moves the enemy down at speed for dt seconds.
func (e *Enemy) Advance(speed, dt float64) {
	e.VY = speed
	e.Y += speed * dt
}

// ReachedFloor reports whether the enemy's bottom edge touched floorY.
func (e Enemy) ReachedFloor(floorY float64) bool {
	return e.Y+e.H >= floorY
}
