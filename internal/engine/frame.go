package engine

import "github.com/tomz197/shooter/internal/physics"

// Spark is a particle as drawn: a small square with an opacity.
type Spark struct {
	Rect  physics.Rect `json:"rect"`
	Alpha float64      `json:"alpha"`
}

// sparkSize is the side of a drawn particle.
const sparkSize = 2

// Frame is everything a renderer needs for one picture. All rectangles are
// clipped to the playfield; entities entirely outside it are omitted.
type Frame struct {
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	GroundY   float64        `json:"groundY"`
	Phase     Phase          `json:"phase"`
	Paused    bool           `json:"paused"`
	Score     int            `json:"score"`
	HighScore int            `json:"highScore"`
	Lives     int            `json:"lives"`
	Ship      physics.Rect   `json:"ship"`
	Bullets   []physics.Rect `json:"bullets"`
	Enemies   []physics.Rect `json:"enemies"`
	Sparks    []Spark        `json:"sparks"`
}

// Frame returns a snapshot of the current state for drawing.
func (e *Engine) Frame() Frame {
	var f Frame
	e.FrameInto(&f)
	return f
}

// FrameInto fills f, reusing its slices. It only reads engine state.
func (e *Engine) FrameInto(f *Frame) {
	bounds := e.Bounds()

	f.Width = e.tuning.Width
	f.Height = e.tuning.Height
	f.GroundY = e.tuning.Height - e.tuning.ShipHeight
	f.Phase = e.phase
	f.Paused = e.phase == PhasePaused
	f.Score = e.score
	f.HighScore = e.highScore
	f.Lives = e.lives
	f.Ship, _ = e.ship.Bounds().Clip(bounds)

	f.Bullets = f.Bullets[:0]
	for _, b := range e.bullets {
		if r, ok := b.Bounds().Clip(bounds); ok {
			f.Bullets = append(f.Bullets, r)
		}
	}

	f.Enemies = f.Enemies[:0]
	for _, en := range e.enemies {
		if r, ok := en.Bounds().Clip(bounds); ok {
			f.Enemies = append(f.Enemies, r)
		}
	}

	f.Sparks = f.Sparks[:0]
	for _, p := range e.particles {
		box := physics.Rect{X: p.X, Y: p.Y, W: sparkSize, H: sparkSize}
		if r, ok := box.Clip(bounds); ok {
			f.Sparks = append(f.Sparks, Spark{Rect: r, Alpha: p.Alpha()})
		}
	}
}
