package engine

import (
	"time"

	"github.com/tomz197/shooter/internal/object"
)

// Advance runs one tick using wall-clock time. The elapsed time is measured
// from the previous Advance; the first call after a start measures zero.
func (e *Engine) Advance(now time.Time) {
	var dt time.Duration
	if !e.lastTick.IsZero() {
		dt = now.Sub(e.lastTick)
	}
	e.lastTick = now
	e.Step(dt)
}

// Step runs one tick of dt. It does nothing unless the phase is Running.
// dt is clamped to [0, MaxStep] so a stalled frame cannot teleport objects.
func (e *Engine) Step(dt time.Duration) {
	if e.phase != PhaseRunning {
		return
	}
	if dt < 0 {
		dt = 0
	}
	if dt > e.tuning.MaxStep {
		dt = e.tuning.MaxStep
	}
	sec := dt.Seconds()

	e.cooldown -= sec
	if e.cooldown < 0 {
		e.cooldown = 0
	}

	e.difficulty = DifficultyAt(e.score, e.tuning)

	e.moveBullets(sec)
	e.moveEnemies(sec)
	e.resolveHits()
	e.resolveBreaches()
	e.spawnEnemies(sec)
	e.updateParticles(sec)

	if e.lives <= 0 {
		e.gameOver()
	}
}

// moveBullets advances bullets and drops those past the top edge.
func (e *Engine) moveBullets(dt float64) {
	kept := e.bullets[:0] // reuse backing array
	for _, b := range e.bullets {
		if !b.Update(dt) {
			kept = append(kept, b)
		}
	}
	e.bullets = kept
}

func (e *Engine) moveEnemies(dt float64) {
	for i := range e.enemies {
		e.enemies[i].Advance(e.difficulty.EnemySpeed, dt)
	}
}

// resolveHits pairs each enemy with the first unconsumed bullet overlapping
// it. Enemies are visited in list order and bullets are scanned in list
// order, so the outcome is reproducible.
func (e *Engine) resolveHits() {
	if len(e.enemies) == 0 || len(e.bullets) == 0 {
		return
	}

	consumed := make([]bool, len(e.bullets))
	burst := object.Burst{
		Count:    e.tuning.ParticleCount,
		MinSpeed: e.tuning.ParticleMinSpeed,
		MaxSpeed: e.tuning.ParticleMaxSpeed,
		MinLife:  e.tuning.ParticleMinLife,
		MaxLife:  e.tuning.ParticleMaxLife,
	}

	keptEnemies := e.enemies[:0]
	for _, en := range e.enemies {
		box := en.Bounds()
		hit := -1
		for bi, b := range e.bullets {
			if consumed[bi] {
				continue
			}
			if b.Bounds().Overlaps(box) {
				hit = bi
				break
			}
		}
		if hit < 0 {
			keptEnemies = append(keptEnemies, en)
			continue
		}

		consumed[hit] = true
		e.score += e.tuning.KillReward
		cx, cy := box.Center()
		e.particles = object.AppendExplosion(e.particles, cx, cy, burst, e.rng)
		e.emit(Event{Kind: EventEnemyDestroyed, X: cx, Y: cy})
	}
	e.enemies = keptEnemies

	keptBullets := e.bullets[:0]
	for bi, b := range e.bullets {
		if !consumed[bi] {
			keptBullets = append(keptBullets, b)
		}
	}
	e.bullets = keptBullets
}

// resolveBreaches removes enemies that reached the floor, one life each.
func (e *Engine) resolveBreaches() {
	floor := e.tuning.FloorY()
	kept := e.enemies[:0]
	for _, en := range e.enemies {
		if !en.ReachedFloor(floor) {
			kept = append(kept, en)
			continue
		}
		if e.lives > 0 {
			e.lives--
		}
		cx, _ := en.Bounds().Center()
		e.emit(Event{Kind: EventLifeLost, X: cx, Y: floor})
	}
	e.enemies = kept
}

// spawnEnemies drops one enemy for each full spawn interval accumulated.
// New enemies start above the visible area at a random column.
func (e *Engine) spawnEnemies(dt float64) {
	interval := e.difficulty.SpawnInterval.Seconds()
	if interval <= 0 {
		return
	}
	e.spawnAcc += dt
	for e.spawnAcc >= interval {
		e.spawnAcc -= interval
		w, h := e.tuning.EnemyWidth, e.tuning.EnemyHeight
		e.enemies = append(e.enemies, object.Enemy{
			X:  e.rng.Float64() * (e.tuning.Width - w),
			Y:  -h - e.rng.Float64()*e.tuning.EnemySpawnJitter,
			VY: e.difficulty.EnemySpeed,
			W:  w,
			H:  h,
		})
	}
}

func (e *Engine) updateParticles(dt float64) {
	kept := e.particles[:0]
	for _, p := range e.particles {
		if !p.Update(dt) {
			kept = append(kept, p)
		}
	}
	e.particles = kept
}

// gameOver ends the run and records the best score. A failed save is logged
// and otherwise ignored.
func (e *Engine) gameOver() {
	e.lives = 0
	e.phase = PhaseGameOver
	if e.score > e.highScore {
		e.highScore = e.score
	}
	if e.store != nil {
		if err := e.store.SaveHighScore(e.highScore); err != nil {
			e.logger.Warn("high score not saved", "score", e.highScore, "err", err)
		}
	}
	e.emit(Event{Kind: EventGameOver})
}
