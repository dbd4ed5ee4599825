package engine

import (
	"math"
	"time"

	"github.com/tomz197/shooter/internal/config"
)

// Difficulty is derived from the score on every tick.
type Difficulty struct {
	Level         float64       // 0 at score 0, saturating at 1
	EnemySpeed    float64       // Units per second
	SpawnInterval time.Duration // Time between spawns
}

// DifficultyAt returns the difficulty for score. Speed rises and the spawn
// interval shrinks linearly until the saturation score, then both hold.
func DifficultyAt(score int, t config.Tuning) Difficulty {
	level := 0.0
	if score > 0 && t.SaturationScore > 0 {
		level = math.Min(1, float64(score)/float64(t.SaturationScore))
	}

	speed := t.EnemyMinSpeed + (t.EnemyMaxSpeed-t.EnemyMinSpeed)*level

	span := float64(t.SpawnIntervalMax - t.SpawnIntervalMin)
	interval := t.SpawnIntervalMax - time.Duration(span*level)
	if interval < t.SpawnIntervalFloor {
		interval = t.SpawnIntervalFloor
	}

	return Difficulty{
		Level:         level,
		EnemySpeed:    speed,
		SpawnInterval: interval,
	}
}
