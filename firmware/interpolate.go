package firmware

import (
	"math"

	"github.com/fieldOfView/ArcWelderLib/coord"
	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/fieldOfView/ArcWelderLib/precision"
)

// Interpolator expands arcs into the line segments a firmware executes.
type Interpolator interface {
	// InterpolateArc returns the G1 lines for an arc from the current
	// position to target. i and j are the center offsets in the active
	// plane; a non-zero r takes their place. All values are in mm.
	InterpolateArc(target gcode.Position, i, j, r float64, clockwise bool) []gcode.Line
	SetPosition(p gcode.Position)
	SetState(s gcode.MotionState)
	Arguments() Arguments
	SegmentsGenerated() int
}

// Firmware is the Interpolator of every firmware type. Types differ in
// their Arguments and in the small angle approximation they use.
type Firmware struct {
	args   Arguments
	approx func(theta float64) (sin, cos float64)

	pos   gcode.Position
	state gcode.MotionState
	plane coord.Plane
	scale float64
	prec  *precision.Controller

	path      []gcode.Position
	generated int
}

var _ Interpolator = &Firmware{}

func NewFirmware(a Arguments) *Firmware {
	approx := firstOrder
	if v, ok := variants[a.Type]; ok {
		approx = v.approx
	}
	return &Firmware{
		args:   a,
		approx: approx,
		scale:  1,
		prec:   precision.NewController(precision.DefaultConfig()),
	}
}

func (f *Firmware) SetPosition(p gcode.Position) { f.pos = p }
func (f *Firmware) Position() gcode.Position     { return f.pos }
func (f *Firmware) SetState(s gcode.MotionState) { f.state = s }
func (f *Firmware) SetPlane(p coord.Plane)       { f.plane = p }

// SetScale sets the mm per unit of the written words, 25.4 for inches.
func (f *Firmware) SetScale(s float64) { f.scale = s }

// SetPrecision sets the digits the lines are written with.
func (f *Firmware) SetPrecision(c *precision.Controller) { f.prec = c }

func (f *Firmware) Arguments() Arguments   { return f.args }
func (f *Firmware) SegmentsGenerated() int { return f.generated }

// Path returns the unrounded end points of the lines produced by the last
// InterpolateArc call.
func (f *Firmware) Path() []gcode.Position { return f.path }

func (f *Firmware) InterpolateArc(target gcode.Position, i, j, r float64, clockwise bool) []gcode.Line {
	from := f.pos
	start := f.plane.Project(from.Point())
	end := f.plane.Project(target.Point())

	off := coord.Point{X: i, Y: j}
	if r != 0 {
		var ok bool
		off, ok = coord.CenterFromRadius(start, end, r, clockwise)
		if !ok {
			f.path = []gcode.Position{target}
			f.pos = target
			f.generated++
			return []gcode.Line{f.g1(from, target, true, true, target.E != from.E)}
		}
	}

	center := coord.Point{X: start.X + off.X, Y: start.Y + off.Y}
	rv := coord.Point{X: -off.X, Y: -off.Y}
	rt := coord.Point{X: end.X - center.X, Y: end.Y - center.Y}

	theta := math.Atan2(rv.X*rt.Y-rv.Y*rt.X, rv.X*rt.X+rv.Y*rt.Y)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	if clockwise {
		theta -= 2 * math.Pi
	}
	if theta == 0 && start.X == end.X && start.Y == end.Y {
		theta = 2 * math.Pi
	}

	radius := math.Hypot(rv.X, rv.Y)
	linear := end.Z - start.Z
	length := math.Hypot(radius*theta, linear)
	n := f.args.Segments(radius, theta, length, from.F*f.scale)

	thetaPer := theta / float64(n)
	linearPer := linear / float64(n)
	sinT, cosT := f.approx(thetaPer)
	helical := linear != 0
	extrude := target.E != from.E

	f.path = f.path[:0]
	lines := make([]gcode.Line, 0, n)
	prev := from
	count := 0
	for k := 1; k < n; k++ {
		if f.args.NArcCorrection > 1 && count < f.args.NArcCorrection-1 {
			rv = coord.Point{
				X: rv.X*cosT - rv.Y*sinT,
				Y: rv.X*sinT + rv.Y*cosT,
			}
			count++
		} else {
			// exact position, relative to the start
			ct := math.Cos(float64(k) * thetaPer)
			st := math.Sin(float64(k) * thetaPer)
			rv = coord.Point{
				X: -off.X*ct + off.Y*st,
				Y: -off.X*st - off.Y*ct,
			}
			count = 0
		}

		pt := f.plane.Unproject(coord.Point{
			X: center.X + rv.X,
			Y: center.Y + rv.Y,
			Z: start.Z + float64(k)*linearPer,
		})
		next := target
		next.X, next.Y, next.Z = pt.X, pt.Y, pt.Z
		next.E = from.E + (target.E-from.E)*float64(k)/float64(n)

		lines = append(lines, f.g1(prev, next, k == 1, helical, extrude))
		f.path = append(f.path, next)
		prev = next
	}
	lines = append(lines, f.g1(prev, target, n == 1, helical, extrude))
	f.path = append(f.path, target)

	f.pos = target
	f.generated += n
	return lines
}

// g1 writes the move from prev to next. In relative mode the deltas are
// taken between rounded positions so they add up to the rounded target.
func (f *Firmware) g1(prev, next gcode.Position, first, helical, extrude bool) gcode.Line {
	b := gcode.Block{{W: 'G', Arg: 1}}

	_, _, h := f.plane.Axes()
	for _, w := range []byte("XYZ") {
		if w == h && !helical {
			continue
		}
		b = append(b, gcode.Word{W: w, Arg: f.value(prev, next, w, f.state.Relative)})
	}
	if extrude {
		b = append(b, gcode.Word{W: 'E', Arg: f.value(prev, next, 'E', f.state.ExtruderRelative)})
	}
	if first && next.F != 0 && next.F != f.pos.F {
		b = append(b, gcode.Word{W: 'F', Arg: next.F})
	}
	return gcode.NewLine(b, f.prec.Digits)
}

func (f *Firmware) value(prev, next gcode.Position, w byte, relative bool) float64 {
	v := f.prec.Round(axis(next, w)/f.scale, w)
	if relative {
		v -= f.prec.Round(axis(prev, w)/f.scale, w)
	}
	return v
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

// Segments returns the number of lines an arc is split into. Every
// enabled policy proposes a count and the largest wins. The result is
// then limited so no segment is shorter than the minimum segment length.
func (a Arguments) Segments(radius, theta, length, feed float64) int {
	n := 0
	if seg := a.segmentLength(radius); seg > 0 {
		n = max(n, ceil(length/seg))
	}
	if a.usesAny(ArgMinArcSegments, ArgMinCircleSegments) && a.MinArcSegments > 0 {
		n = max(n, ceil(float64(a.MinArcSegments)*math.Abs(theta)/(2*math.Pi)))
	}
	if a.Uses(ArgArcSegmentsPerSec) && a.ArcSegmentsPerSec > 0 && feed > 0 {
		n = max(n, ceil(length/(feed/60)*a.ArcSegmentsPerSec))
	}
	if a.Uses(ArgMMMaxArcError) && a.MMMaxArcError > 0 && a.MMMaxArcError < radius {
		chord := 2 * math.Sqrt(a.MMMaxArcError*(2*radius-a.MMMaxArcError))
		n = max(n, ceil(length/chord))
	}
	if a.usesAny(ArgMinMMPerArcSegment, ArgMinArcSegmentMM) && a.MinMMPerArcSegment > 0 {
		n = min(n, int(math.Floor(length/a.MinMMPerArcSegment)))
	}
	return max(n, 1)
}

// segmentLength is the fixed segment length, 0 when disabled. With
// arc_segments_per_r it grows with the radius, from mm_per_arc_segment up
// to arc_segments_per_r times that.
func (a Arguments) segmentLength(radius float64) float64 {
	if !a.usesAny(ArgMMPerArcSegment, ArgMaxArcSegmentMM) || a.MMPerArcSegment <= 0 {
		return 0
	}
	seg := a.MMPerArcSegment
	if a.Uses(ArgArcSegmentsPerR) && a.ArcSegmentsPerR > 0 {
		seg = min(max(seg*radius, seg), a.ArcSegmentsPerR*seg)
	}
	return seg
}

// ceil ignores float noise just above a whole number.
func ceil(v float64) int {
	return int(math.Ceil(v - 1e-9))
}

// firstOrder approximates sin and cos to the first and second order.
func firstOrder(theta float64) (sin, cos float64) {
	return theta, 1 - theta*theta/2
}

// thirdOrder adds the cubic term to sin.
func thirdOrder(theta float64) (sin, cos float64) {
	sq := theta * theta
	return theta - sq*theta/6, 1 - sq/2
}
