package coord

import (
	"math"
)

// Epsilon is the smallest determinant accepted when fitting a circle.
// Anything below it is treated as collinear input.
const Epsilon = 1e-9

// Circle is a circle in the XY plane of a local frame (see Plane.Project).
// Z is ignored.
type Circle struct {
	Center Point
	Radius float64
}

// CircleFrom3 returns the unique circle passing through p1, p2 and p3.
// It returns false when the points are coincident or collinear.
func CircleFrom3(p1, p2, p3 Point) (Circle, bool) {
	ax, ay := p1.X, p1.Y
	bx, by := p2.X-ax, p2.Y-ay
	cx, cy := p3.X-ax, p3.Y-ay

	d := 2 * (bx*cy - by*cx)
	scale := math.Max(bx*bx+by*by, cx*cx+cy*cy)
	if scale == 0 || math.Abs(d) <= Epsilon*scale {
		return Circle{}, false
	}

	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d

	return Circle{
		Center: Point{X: ax + ux, Y: ay + uy},
		Radius: math.Hypot(ux, uy),
	}, true
}

// Deviation returns how far p lies from the circumference.
func (c Circle) Deviation(p Point) float64 {
	return math.Abs(c.Center.DistanceXY(p.X, p.Y) - c.Radius)
}

// ChordDeviation returns the largest perpendicular distance between the
// straight chord a-b and the circumference, checking both endpoints and
// the chord midpoint (where the sagitta is greatest).
func (c Circle) ChordDeviation(a, b Point) float64 {
	dev := c.Deviation(a)
	dev = math.Max(dev, c.Deviation(b))
	return math.Max(dev, c.Deviation(a.Mid(b)))
}

// Angle returns the angle of p around the center, in (-π, π].
func (c Circle) Angle(p Point) float64 {
	return math.Atan2(p.Y-c.Center.Y, p.X-c.Center.X)
}
