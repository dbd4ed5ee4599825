// Package engine implements the arcade loop: a fixed-playfield shooter where
// enemies descend, the ship fires upward, and the session ends when enough
// enemies reach the floor.
//
// An Engine is not safe for concurrent use. Exactly one goroutine owns it,
// applies input commands, advances the clock, and reads frames.
package engine

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/tomz197/shooter/internal/config"
	"github.com/tomz197/shooter/internal/object"
	"github.com/tomz197/shooter/internal/physics"
)

// Phase is the session's position in the state machine.
type Phase int

const (
	PhaseIdle     Phase = iota // Before the first start
	PhaseRunning               // Simulation advancing
	PhasePaused                // Simulation frozen, input still live
	PhaseGameOver              // Out of lives, waiting for restart
)

var phaseNames = [...]string{"idle", "running", "paused", "game_over"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase written by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return errors.Errorf("unknown phase %q", b)
}

// ScoreStore persists the best score between sessions.
type ScoreStore interface {
	LoadHighScore() (int, error)
	SaveHighScore(score int) error
}

// Engine owns one play session's state.
type Engine struct {
	tuning config.Tuning
	store  ScoreStore
	rng    *rand.Rand
	logger *log.Logger

	phase     Phase
	ship      object.Ship
	bullets   []object.Bullet
	enemies   []object.Enemy
	particles []object.Particle

	score     int
	lives     int
	highScore int

	cooldown   float64 // Seconds until the next shot is allowed
	spawnAcc   float64 // Seconds accumulated toward the next spawn
	difficulty Difficulty
	lastTick   time.Time

	events []Event
}

// Option configures an Engine.
type Option func(*Engine)

// WithTuning replaces the default gameplay constants.
func WithTuning(t config.Tuning) Option {
	return func(e *Engine) {
		e.tuning = t
	}
}

// WithLogger sets the logger used for best-effort persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an idle engine. The best score is read from store once, here.
// store may be nil, in which case the best score lives only in memory.
// rng drives enemy placement and particle bursts; nil seeds one from the clock.
func New(store ScoreStore, rng *rand.Rand, opts ...Option) *Engine {
	e := &Engine{
		tuning: config.DefaultTuning(),
		store:  store,
		rng:    rng,
		logger: log.Default(),
		phase:  PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e.ship = object.Ship{
		X: e.tuning.ShipStartX,
		Y: e.tuning.ShipY(),
		W: e.tuning.ShipWidth,
		H: e.tuning.ShipHeight,
	}
	e.ship.MoveTo(e.ship.X, e.tuning.Width)
	e.lives = e.tuning.InitialLives
	e.difficulty = DifficultyAt(0, e.tuning)

	if e.store != nil {
		best, err := e.store.LoadHighScore()
		if err != nil {
			e.logger.Warn("high score unavailable", "err", err)
		} else if best > 0 {
			e.highScore = best
		}
	}
	return e
}

// Tuning returns the engine's gameplay constants.
func (e *Engine) Tuning() config.Tuning { return e.tuning }

// Phase returns the current state.
func (e *Engine) Phase() Phase { return e.phase }

// Score returns the current run's score.
func (e *Engine) Score() int { return e.score }

// Lives returns the remaining lives.
func (e *Engine) Lives() int { return e.lives }

// HighScore returns the best score known to this engine.
func (e *Engine) HighScore() int { return e.highScore }

// Ship returns the ship.
func (e *Engine) Ship() object.Ship { return e.ship }

// BulletCount returns the number of live bullets.
func (e *Engine) BulletCount() int { return len(e.bullets) }

// EnemyCount returns the number of live enemies.
func (e *Engine) EnemyCount() int { return len(e.enemies) }

// ParticleCount returns the number of live particles.
func (e *Engine) ParticleCount() int { return len(e.particles) }

// Difficulty returns the scalars derived on the last tick.
func (e *Engine) Difficulty() Difficulty { return e.difficulty }

// Bounds returns the playfield rectangle.
func (e *Engine) Bounds() physics.Rect {
	return physics.Rect{W: e.tuning.Width, H: e.tuning.Height}
}

// ToLogicalX maps a horizontal display coordinate into playfield units,
// for a display displayWidth wide showing the whole playfield.
func (e *Engine) ToLogicalX(displayX, displayWidth float64) float64 {
	if displayWidth <= 0 {
		return displayX
	}
	return displayX * e.tuning.Width / displayWidth
}

// reset clears the session for a new run. The ship keeps its position.
func (e *Engine) reset() {
	e.bullets = e.bullets[:0]
	e.enemies = e.enemies[:0]
	e.particles = e.particles[:0]
	e.score = 0
	e.lives = e.tuning.InitialLives
	e.cooldown = 0
	e.spawnAcc = 0
	e.difficulty = DifficultyAt(0, e.tuning)
	e.lastTick = time.Time{}
}

// Start begins a run from Idle or restarts from GameOver.
// Returns false, changing nothing, in any other phase.
func (e *Engine) Start() bool {
	if e.phase != PhaseIdle && e.phase != PhaseGameOver {
		return false
	}
	e.reset()
	e.phase = PhaseRunning
	e.emit(Event{Kind: EventStarted})
	return true
}

// Pause freezes a running simulation. Pausing while paused changes nothing.
func (e *Engine) Pause() {
	if e.phase != PhaseRunning {
		return
	}
	e.phase = PhasePaused
	e.emit(Event{Kind: EventPaused})
}

// Resume continues a paused simulation.
func (e *Engine) Resume() {
	if e.phase != PhasePaused {
		return
	}
	e.phase = PhaseRunning
	e.emit(Event{Kind: EventResumed})
}

// TogglePause flips between Running and Paused. No-op in other phases.
func (e *Engine) TogglePause() {
	switch e.phase {
	case PhaseRunning:
		e.Pause()
	case PhasePaused:
		e.Resume()
	}
}

// MoveLeft shifts the ship one step left.
func (e *Engine) MoveLeft() {
	if e.phase != PhaseRunning {
		return
	}
	e.ship.MoveTo(e.ship.X-e.tuning.ShipStep, e.tuning.Width)
}

// MoveRight shifts the ship one step right.
func (e *Engine) MoveRight() {
	if e.phase != PhaseRunning {
		return
	}
	e.ship.MoveTo(e.ship.X+e.tuning.ShipStep, e.tuning.Width)
}

// PointerMove centers the ship under a pointer at logical x.
func (e *Engine) PointerMove(x float64) {
	if e.phase != PhaseRunning {
		return
	}
	e.ship.CenterOn(x, e.tuning.Width)
}

// PointerPress centers the ship under the pointer and fires.
func (e *Engine) PointerPress(x float64) {
	if e.phase != PhaseRunning {
		return
	}
	e.ship.CenterOn(x, e.tuning.Width)
	e.Fire()
}

// Fire launches a bullet from the ship's center if the cooldown has elapsed.
// Returns whether a bullet was created.
func (e *Engine) Fire() bool {
	if e.phase != PhaseRunning || e.cooldown > 0 {
		return false
	}
	b := object.NewBullet(e.ship.CenterX(), e.ship.Y,
		e.tuning.BulletWidth, e.tuning.BulletHeight, e.tuning.BulletSpeed)
	e.bullets = append(e.bullets, b)
	e.cooldown = e.tuning.FireCooldown.Seconds()
	e.emit(Event{Kind: EventFired, X: b.CenterX(), Y: b.Y})
	return true
}
