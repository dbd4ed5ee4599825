package object

import "github.com/tomz197/shooter/internal/physics"

// Bullet is a shot fired by the ship. VY is negative (upward).
type Bullet struct {
	X, Y float64 // Top-left corner
	VY   float64
	W, H float64
}

// NewBullet creates a bullet whose horizontal center is centerX and whose
// bottom edge sits on top.
func NewBullet(centerX, top, w, h, speed float64) Bullet {
	return Bullet{
		X:  centerX - w/2,
		Y:  top - h,
		VY: -speed,
		W:  w,
		H:  h,
	}
}

// Bounds returns the bullet's bounding box.
func (b Bullet) Bounds() physics.Rect {
	return physics.Rect{X: b.X, Y: b.Y, W: b.W, H: b.H}
}

// CenterX returns the horizontal center of the bullet.
func (b Bullet) CenterX() float64 {
	return b.X + b.W/2
}

// Update moves the bullet. Returns true once it has left the top of the playfield.
func (b *Bullet) Update(dt float64) (remove bool) {
	b.Y += b.VY * dt
	return b.Y+b.H <= 0
}
