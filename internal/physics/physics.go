// Package physics provides axis-aligned collision and clamping utilities.
package physics

// Rect is an axis-aligned box. X and Y are the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Center returns the center point of the box.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Overlaps reports whether two boxes intersect. Touching edges do not count.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.Right() &&
		other.X < r.Right() &&
		r.Y < other.Bottom() &&
		other.Y < r.Bottom()
}

// Clip returns the part of r that lies inside bounds.
// ok is false when nothing of r is visible.
func (r Rect) Clip(bounds Rect) (clipped Rect, ok bool) {
	x0 := max(r.X, bounds.X)
	y0 := max(r.Y, bounds.Y)
	x1 := min(r.Right(), bounds.Right())
	y1 := min(r.Bottom(), bounds.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.Right() <= r.Right() &&
		other.Y >= r.Y && other.Bottom() <= r.Bottom()
}

// ContainsPoint reports whether the point lies inside r (edges inclusive).
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
