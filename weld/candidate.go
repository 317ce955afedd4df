package weld

import (
	"math"

	"github.com/fieldOfView/ArcWelderLib/coord"
	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/fieldOfView/ArcWelderLib/precision"
)

// candidate is an arc being grown from consecutive segments. Every
// extension builds a new candidate and fits it from scratch.
type candidate struct {
	plane    coord.Plane
	state    gcode.MotionState
	scale    float64
	segments []Segment

	circle    coord.Circle
	clockwise bool
	sweep     float64
}

func newCandidate(s Segment, plane coord.Plane, state gcode.MotionState, scale float64) *candidate {
	return &candidate{plane: plane, state: state, scale: scale, segments: []Segment{s}}
}

func (c *candidate) travel() bool { return c.segments[0].Extrusion == 0 }

func (c *candidate) extrusion() float64 {
	var e float64
	for _, s := range c.segments {
		e += s.Extrusion
	}
	return e
}

func (c *candidate) length() float64 {
	var l float64
	for _, s := range c.segments {
		l += s.Length
	}
	return l
}

// arcLength is the length of the fitted arc, helical component included.
func (c *candidate) arcLength() float64 {
	pts := c.points()
	dz := pts[len(pts)-1].Z - pts[0].Z
	return math.Hypot(c.circle.Radius*c.sweep, dz)
}

// points returns the start point followed by every absorbed end point, in
// the local frame of the plane.
func (c *candidate) points() []coord.Point {
	pts := make([]coord.Point, len(c.segments)+1)
	pts[0] = c.plane.Project(c.segments[0].Start.Point())
	for i, s := range c.segments {
		pts[i+1] = c.plane.Project(s.End.Point())
	}
	return pts
}

// extend returns the candidate with s appended, or the reason s cannot be
// absorbed.
func (c *candidate) extend(s Segment, t Tolerance, prec *precision.Controller) (*candidate, RejectReason) {
	first := c.segments[0]
	if s.Motion != first.Motion || (s.Extrusion == 0) != c.travel() {
		return nil, ReasonMotionKind
	}
	if s.End.F != first.End.F {
		return nil, ReasonFeedrate
	}
	if t.ExtrusionRateVariancePercent > 0 && !c.travel() {
		avg := c.extrusion() / c.length()
		rate := s.Extrusion / s.Length
		if math.Abs(rate-avg) > t.ExtrusionRateVariancePercent*avg {
			return nil, ReasonExtrusionRate
		}
	}

	segs := make([]Segment, len(c.segments), len(c.segments)+1)
	copy(segs, c.segments)
	next := &candidate{plane: c.plane, state: c.state, scale: c.scale, segments: append(segs, s)}
	if r := next.fit(t); r != ReasonNone {
		return nil, r
	}
	if t.MaxGcodeLength > 0 && len(next.line(prec).Raw) > t.MaxGcodeLength {
		return nil, ReasonGcodeLength
	}
	return next, ReasonNone
}

// fit computes the circle through the start, middle and last points and
// checks every bound against it.
func (c *candidate) fit(t Tolerance) RejectReason {
	pts := c.points()
	n := len(pts)
	first, mid, last := pts[0], pts[n/2], pts[n-1]

	circle, ok := coord.CircleFrom3(first, mid, last)
	if !ok {
		return ReasonNoFit
	}
	if circle.Radius > t.MaxRadiusMM {
		return ReasonRadius
	}
	if t.MMPerArcSegment > 0 && t.MinArcSegments > 0 &&
		2*math.Pi*circle.Radius/t.MMPerArcSegment < float64(t.MinArcSegments) {
		return ReasonFirmwareCompensation
	}
	cw := coord.Turn(first, mid, last) < 0

	dz := last.Z - first.Z
	if !t.Allow3DArcs {
		for _, p := range pts {
			if math.Abs(p.Z-first.Z) > coord.Epsilon {
				return ReasonPlane
			}
		}
	}

	sweeps := make([]float64, n)
	for i := 1; i < n; i++ {
		a, b := pts[i-1], pts[i]
		step := coord.Sweep(circle.Angle(a), circle.Angle(b), cw)
		if step >= math.Pi {
			return ReasonDirection
		}
		sweeps[i] = sweeps[i-1] + step
		if circle.ChordDeviation(a, b) > t.bound(math.Hypot(b.X-a.X, b.Y-a.Y)) {
			return ReasonDeviation
		}
		if t.Allow3DArcs && (b.Z-a.Z)*dz < 0 {
			return ReasonHelical
		}
	}
	sweep := sweeps[n-1]
	if sweep >= 2*math.Pi {
		return ReasonSweep
	}
	if t.Allow3DArcs && dz != 0 {
		// firmware moves the helical axis linearly with the angle
		for i, p := range pts {
			if math.Abs(first.Z+dz*sweeps[i]/sweep-p.Z) > t.ResolutionMM {
				return ReasonHelical
			}
		}
	}

	c.circle, c.clockwise, c.sweep = circle, cw, sweep
	return ReasonNone
}

// line formats the arc command for the fitted candidate.
func (c *candidate) line(prec *precision.Controller) gcode.Line {
	first, last := c.segments[0], c.segments[len(c.segments)-1]
	start, end := first.Start, last.End

	g := 3.0
	if c.clockwise {
		g = 2
	}
	b := gcode.Block{{W: 'G', Arg: g}}

	_, _, helical := c.plane.Axes()
	for _, w := range []byte("XYZ") {
		if w == helical && axis(end, w) == axis(start, w) {
			continue
		}
		v := axis(end, w)
		if c.state.Relative {
			v -= axis(start, w)
		}
		b = append(b, gcode.Word{W: w, Arg: v / c.scale})
	}

	ls := c.plane.Project(start.Point())
	oa, ob := c.plane.OffsetWords()
	offsets := []gcode.Word{
		{W: oa, Arg: (c.circle.Center.X - ls.X) / c.scale},
		{W: ob, Arg: (c.circle.Center.Y - ls.Y) / c.scale},
	}
	if offsets[0].W > offsets[1].W {
		offsets[0], offsets[1] = offsets[1], offsets[0]
	}
	b = append(b, offsets...)

	if e := c.extrusion(); e != 0 {
		v := end.E
		if c.state.ExtruderRelative {
			v = e
		}
		b = append(b, gcode.Word{W: 'E', Arg: v / c.scale})
	}
	if first.Line.Block.Has('F') {
		b = append(b, gcode.Word{W: 'F', Arg: first.End.F})
	}

	l := gcode.NewLine(b, prec.Digits)
	l.EOL = last.Line.EOL
	return l
}

// verify re-checks the arc exactly as written in l against the absorbed
// segments.
func (c *candidate) verify(l gcode.Line, t Tolerance) bool {
	b := gcode.ParseLine(l.Raw).Block
	start := c.segments[0].Start

	end := start
	for _, w := range []byte("XYZ") {
		ok, v := b.Arg(w)
		if !ok {
			continue
		}
		v *= c.scale
		if c.state.Relative {
			v += axis(start, w)
		}
		setAxis(&end, w, v)
	}

	ls := c.plane.Project(start.Point())
	oa, ob := c.plane.OffsetWords()
	_, ca := b.Arg(oa)
	_, cb := b.Arg(ob)
	center := coord.Point{X: ls.X + ca*c.scale, Y: ls.Y + cb*c.scale}
	circle := coord.Circle{Center: center, Radius: math.Hypot(ls.X-center.X, ls.Y-center.Y)}
	if circle.Radius == 0 {
		return false
	}

	if circle.Deviation(c.plane.Project(end.Point())) > t.ResolutionMM {
		return false
	}

	pts := c.points()
	for i := 1; i < len(pts); i++ {
		a, p := pts[i-1], pts[i]
		if coord.Sweep(circle.Angle(a), circle.Angle(p), c.clockwise) >= math.Pi {
			return false
		}
		if circle.ChordDeviation(a, p) > t.bound(math.Hypot(p.X-a.X, p.Y-a.Y)) {
			return false
		}
	}
	return true
}
