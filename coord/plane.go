package coord

import "fmt"

// Plane is one of the three principal planes an arc can be drawn in.
type Plane byte

const (
	PlaneXY Plane = iota // G17
	PlaneZX              // G18
	PlaneYZ              // G19
)

// PlaneFromG returns the plane selected by a G17, G18 or G19 code.
func PlaneFromG(g float64) (Plane, bool) {
	switch g {
	case 17:
		return PlaneXY, true
	case 18:
		return PlaneZX, true
	case 19:
		return PlaneYZ, true
	}
	return PlaneXY, false
}

// G returns the G code that selects p.
func (p Plane) G() float64 {
	return 17 + float64(p)
}

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneZX:
		return "ZX"
	case PlaneYZ:
		return "YZ"
	}
	return fmt.Sprintf("Plane(%d)", byte(p))
}

// Project maps pt into the local frame of the plane. The in-plane axes
// become X and Y and the axis of rotation (the helical axis) becomes Z.
func (p Plane) Project(pt Point) Point {
	switch p {
	case PlaneZX:
		return Point{X: pt.Z, Y: pt.X, Z: pt.Y}
	case PlaneYZ:
		return Point{X: pt.Y, Y: pt.Z, Z: pt.X}
	}
	return pt
}

// Unproject is the inverse of Project.
func (p Plane) Unproject(pt Point) Point {
	switch p {
	case PlaneZX:
		return Point{X: pt.Y, Y: pt.Z, Z: pt.X}
	case PlaneYZ:
		return Point{X: pt.Z, Y: pt.X, Z: pt.Y}
	}
	return pt
}

// Axes returns the word letters of the two in-plane axes followed by the
// helical axis, in local frame order.
func (p Plane) Axes() (a, b, helical byte) {
	switch p {
	case PlaneZX:
		return 'Z', 'X', 'Y'
	case PlaneYZ:
		return 'Y', 'Z', 'X'
	}
	return 'X', 'Y', 'Z'
}

// OffsetWords returns the center offset word letters matching Axes.
func (p Plane) OffsetWords() (a, b byte) {
	switch p {
	case PlaneZX:
		return 'K', 'I'
	case PlaneYZ:
		return 'J', 'K'
	}
	return 'I', 'J'
}
