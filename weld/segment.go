package weld

import (
	"math"

	"github.com/fieldOfView/ArcWelderLib/coord"
	"github.com/fieldOfView/ArcWelderLib/gcode"
)

// Segment is a single linear move read from the source.
type Segment struct {
	Start, End gcode.Position
	Motion     float64
	// Length is the straight distance travelled, helical component included.
	Length    float64
	Extrusion float64
	Line      gcode.Line
}

func newSegment(l gcode.Line, m gcode.Move) Segment {
	return Segment{
		Start:     m.From,
		End:       m.To,
		Motion:    m.Motion,
		Length:    m.From.Point().Distance(m.To.Point()),
		Extrusion: m.Extrusion(),
		Line:      l,
	}
}

// PlanarLength is the length of the segment projected onto p.
func (s Segment) PlanarLength(p coord.Plane) float64 {
	a, b := p.Project(s.Start.Point()), p.Project(s.End.Point())
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func (s Segment) move() gcode.Move {
	return gcode.Move{Motion: s.Motion, From: s.Start, To: s.End}
}

func axis(p gcode.Position, w byte) float64 {
	switch w {
	case 'X':
		return p.X
	case 'Y':
		return p.Y
	case 'Z':
		return p.Z
	case 'E':
		return p.E
	}
	return 0
}

func setAxis(p *gcode.Position, w byte, v float64) {
	switch w {
	case 'X':
		p.X = v
	case 'Y':
		p.Y = v
	case 'Z':
		p.Z = v
	case 'E':
		p.E = v
	}
}
