package object

import (
	"math"
	"math/rand"
)

// Particle is a short-lived visual effect. It never collides.
type Particle struct {
	X, Y    float64 // Position
	VX, VY  float64 // Velocity
	Life    float64 // Seconds remaining
	MaxLife float64 // Initial lifetime (for fade calculation)
}

// Burst describes an explosion: how many particles and the ranges their
// speed and lifetime are drawn from.
type Burst struct {
	Count    int
	MinSpeed float64
	MaxSpeed float64
	MinLife  float64
	MaxLife  float64
}

// AppendExplosion appends a radial burst centered on (x, y) to dst.
// All randomness comes from rng so bursts are reproducible under a fixed seed.
func AppendExplosion(dst []Particle, x, y float64, b Burst, rng *rand.Rand) []Particle {
	for i := 0; i < b.Count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		speed := b.MinSpeed + rng.Float64()*(b.MaxSpeed-b.MinSpeed)
		life := b.MinLife + rng.Float64()*(b.MaxLife-b.MinLife)

		dst = append(dst, Particle{
			X:       x,
			Y:       y,
			VX:      math.Cos(angle) * speed,
			VY:      math.Sin(angle) * speed,
			Life:    life,
			MaxLife: life,
		})
	}
	return dst
}

// Update moves the particle and ages it. Returns true once its life has run out.
func (p *Particle) Update(dt float64) (remove bool) {
	p.Life -= dt
	if p.Life <= 0 {
		return true
	}
	p.X += p.VX * dt
	p.Y += p.VY * dt
	return false
}

// Alpha returns the particle's opacity in [0, 1]: its remaining life in seconds, capped at 1.
func (p Particle) Alpha() float64 {
	return math.Max(0, math.Min(1, p.Life))
}
