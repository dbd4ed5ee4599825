package object

import (
	"math/rand"
	"testing"
)

func TestShipMoveClamps(t *testing.T) {
	s := Ship{X: 230, Y: 360, W: 40, H: 20}
	s.MoveTo(-50, 500)
	if s.X != 0 {
		t.Fatalf("x = %v, want 0", s.X)
	}
	s.CenterOn(495, 500)
	if s.X != 460 {
		t.Fatalf("x = %v, want 460", s.X)
	}
	s.CenterOn(100, 500)
	if s.X != 80 || s.CenterX() != 100 {
		t.Fatalf("x = %v center = %v, want 80 and 100", s.X, s.CenterX())
	}
}

func TestBulletUpdate(t *testing.T) {
	b := NewBullet(250, 360, 4, 10, 360)
	if b.X != 248 || b.Y != 350 || b.VY != -360 {
		t.Fatalf("bullet = %+v, want x=248 y=350 vy=-360", b)
	}
	if b.Update(0.5) {
		t.Fatal("bullet removed while still on screen")
	}
	if b.Y != 170 {
		t.Fatalf("y = %v, want 170", b.Y)
	}
	if !b.Update(0.5) {
		t.Fatalf("bullet kept at y = %v past the top", b.Y)
	}
}

func TestEnemyReachedFloor(t *testing.T) {
	e := Enemy{X: 0, Y: 326, W: 30, H: 20}
	if e.ReachedFloor(376) {
		t.Fatal("enemy reported at floor too early")
	}
	e.Advance(60, 0.5)
	if e.Y != 356 || e.VY != 60 {
		t.Fatalf("enemy = %+v, want y=356 vy=60", e)
	}
	if !e.ReachedFloor(376) {
		t.Fatal("enemy touching the floor not reported")
	}
}

func TestAppendExplosionIsReproducible(t *testing.T) {
	burst := Burst{Count: 8, MinSpeed: 50, MaxSpeed: 170, MinLife: 0.4, MaxLife: 0.8}
	a := AppendExplosion(nil, 10, 20, burst, rand.New(rand.NewSource(3)))
	b := AppendExplosion(nil, 10, 20, burst, rand.New(rand.NewSource(3)))
	if len(a) != 8 {
		t.Fatalf("particles = %d, want 8", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("particle %d differs under the same seed: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestParticleExpires(t *testing.T) {
	p := Particle{X: 0, Y: 0, VX: 10, VY: -10, Life: 0.5, MaxLife: 0.5}
	if p.Update(0.25) {
		t.Fatal("particle removed early")
	}
	if p.X != 2.5 || p.Y != -2.5 {
		t.Fatalf("particle at (%v,%v), want (2.5,-2.5)", p.X, p.Y)
	}
	if p.Alpha() != 0.25 {
		t.Fatalf("alpha = %v, want 0.25", p.Alpha())
	}
	if !p.Update(0.25) {
		t.Fatal("particle kept after its life ran out")
	}
}
