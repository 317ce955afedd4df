package coord

import (
	"math"
)

// Sweep returns the angle travelled from the start angle to the end angle
// when moving in the given direction. The result is in [0, 2π).
func Sweep(start, end float64, clockwise bool) float64 {
	d := end - start
	if clockwise {
		d = -d
	}
	d = math.Mod(d, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d
}

// ArcLength returns the length of the arc of the given radius travelled
// from the start angle to the end angle in the given direction.
func ArcLength(radius, start, end float64, clockwise bool) float64 {
	return radius * Sweep(start, end, clockwise)
}

// Turn returns the z component of (b-a)x(c-b). It is positive when
// a->b->c turns counter-clockwise and negative when it turns clockwise.
func Turn(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
}

// CenterFromRadius returns the offset from start to the center of an arc
// ending at end with radius r. A negative radius selects the longer of the
// two possible arcs. When |r| is shorter than half the chord the midpoint
// is returned. It returns false when start and end coincide.
func CenterFromRadius(start, end Point, r float64, clockwise bool) (Point, bool) {
	if start.X == end.X && start.Y == end.Y {
		return Point{}, false
	}

	d := Point{X: (end.X - start.X) / 2, Y: (end.Y - start.Y) / 2}
	e := 1.0
	if clockwise != (r < 0) {
		e = -1
	}
	l := math.Hypot(d.X, d.Y)
	h2 := (r - l) * (r + l)
	h := 0.0
	if h2 > 0 {
		h = math.Sqrt(h2)
	}
	s := Point{X: -d.Y, Y: d.X}

	return Point{
		X: d.X + s.X/l*e*h,
		Y: d.Y + s.Y/l*e*h,
	}, true
}
