// Package weld replaces runs of linear moves with G2/G3 arcs that stay
// within a configured tolerance of the original path.
package weld

import (
	"io"

	"go.uber.org/zap"

	"github.com/fieldOfView/ArcWelderLib/coord"
	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/fieldOfView/ArcWelderLib/precision"
	"github.com/fieldOfView/ArcWelderLib/stats"
)

type Options struct {
	Tolerance             Tolerance
	Precision             precision.Config
	G90InfluencesExtruder bool
	Logger                *zap.Logger
}

func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance(), Precision: precision.DefaultConfig()}
}

// Welder reads lines from a source Reader and returns them with runs of
// linear moves replaced by arcs. Lines that are not replaced are returned
// unchanged.
type Welder struct {
	r    gcode.Reader
	vm   *gcode.VM
	tol  Tolerance
	prec *precision.Controller
	log  *zap.Logger

	cand  *candidate
	out   []gcode.Line
	stats stats.RunStatistics
	done  bool
}

var _ gcode.Reader = &Welder{}

// NewWelder validates the options and returns a Welder reading from r.
func NewWelder(r gcode.Reader, opts Options) (*Welder, error) {
	tol, _, err := opts.Tolerance.Validate()
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	vm := gcode.NewVM()
	vm.G90InfluencesExtruder = opts.G90InfluencesExtruder

	return &Welder{
		r:     r,
		vm:    vm,
		tol:   tol,
		prec:  precision.NewController(opts.Precision),
		log:   log,
		stats: stats.NewRunStatistics(),
	}, nil
}

func (w *Welder) Read() (gcode.Line, error) {
	for len(w.out) == 0 {
		if w.done {
			return gcode.Line{}, io.EOF
		}
		l, err := w.r.Read()
		if err == io.EOF {
			w.Stop()
			continue
		}
		if err != nil {
			return gcode.Line{}, err
		}
		w.process(l)
	}

	l := w.out[0]
	w.out = w.out[1:]
	return l, nil
}

// Stop closes the open arc, if any, and ends the stream. Lines already
// produced are still returned by Read before io.EOF.
func (w *Welder) Stop() {
	w.flush()
	w.done = true
}

func (w *Welder) Statistics() stats.RunStatistics { return w.stats }

func (w *Welder) process(l gcode.Line) {
	w.stats.LinesProcessed++
	if !l.Valid() || len(l.Block) == 0 {
		w.flush()
		w.emit(l, nil)
		return
	}

	w.prec.Observe(l.Block)
	if err := w.vm.Run(l.Block); err != nil {
		w.log.Debug("skipping line", zap.String("line", l.Raw), zap.Error(err))
		w.flush()
		w.emit(l, nil)
		return
	}

	m, moved := w.vm.LastMove()
	if !moved {
		w.flush()
		w.emit(l, nil)
		return
	}
	w.countSource(m)

	s := newSegment(l, m)
	if !w.absorbable(l, s) {
		w.flush()
		w.emit(l, &m)
		return
	}
	w.add(s)
}

// absorbable reports whether the line may become part of an arc.
func (w *Welder) absorbable(l gcode.Line, s Segment) bool {
	if l.HasComment() || l.Text != "" {
		return false
	}
	cmd, ok := l.Block.Command()
	if !ok || !(cmd.Is('G', 0) || cmd.Is('G', 1)) {
		return false
	}
	for _, wd := range l.Block {
		switch wd.W {
		case 'G':
			if wd != cmd {
				return false
			}
		case 'X', 'Y', 'Z', 'E', 'F':
			if wd.Digits < 0 {
				return false
			}
		default:
			return false
		}
	}

	switch {
	case s.PlanarLength(w.vm.Plane()) <= coord.Epsilon:
		return false
	case s.Extrusion < 0:
		return false
	case s.Extrusion == 0 && !w.tol.AllowTravelArcs:
		return false
	}
	return true
}

func (w *Welder) add(s Segment) {
	if w.cand == nil {
		w.cand = newCandidate(s, w.vm.Plane(), w.vm.State(), w.vm.Scale())
		return
	}

	next, reason := w.cand.extend(s, w.tol, w.prec)
	if reason == ReasonNone {
		w.cand = next
		return
	}

	if len(w.cand.segments) > 1 {
		w.stats.Reject(reason.String())
		w.log.Debug("arc ended", zap.Stringer("reason", reason), zap.Int("segments", len(w.cand.segments)))
	}
	w.flush()
	w.cand = newCandidate(s, w.vm.Plane(), w.vm.State(), w.vm.Scale())
}

// flush commits the open candidate if it is worth an arc, otherwise its
// lines are emitted as they were read.
func (w *Welder) flush() {
	c := w.cand
	w.cand = nil
	if c == nil {
		return
	}
	if len(c.segments) < 2 {
		w.replay(c)
		return
	}

	l := c.line(w.prec)
	if !c.verify(l, w.tol) {
		w.stats.Reject(ReasonClosingCheck.String())
		w.log.Debug("arc failed closing check", zap.String("arc", l.Raw))
		w.replay(c)
		return
	}

	w.stats.ArcsCreated++
	w.stats.PointsCompressed += len(c.segments) - 1
	length := c.arcLength()
	if c.travel() {
		w.stats.Travel.AddTarget(length)
	} else {
		w.stats.Extrusion.AddTarget(length)
	}
	w.stats.TargetExtrusion += c.extrusion()
	w.log.Debug("arc committed",
		zap.Int("segments", len(c.segments)),
		zap.Float64("radius", c.circle.Radius),
		zap.String("arc", l.Raw))
	w.out = append(w.out, l)
}

func (w *Welder) replay(c *candidate) {
	for _, s := range c.segments {
		m := s.move()
		w.emit(s.Line, &m)
	}
}

// emit queues a line unchanged. Moves are counted in the target
// statistics.
func (w *Welder) emit(l gcode.Line, m *gcode.Move) {
	if m != nil {
		e := m.Extrusion()
		w.stats.TargetExtrusion += e
		if length := m.From.Point().Distance(m.To.Point()); length > 0 {
			w.histogram(e).AddTarget(length)
		}
	}
	w.out = append(w.out, l)
}

func (w *Welder) countSource(m gcode.Move) {
	e := m.Extrusion()
	w.stats.SourceExtrusion += e
	if length := m.From.Point().Distance(m.To.Point()); length > 0 {
		w.histogram(e).AddSource(length)
	}
}

func (w *Welder) histogram(e float64) *stats.SegmentStatistics {
	switch {
	case e > 0:
		return &w.stats.Extrusion
	case e < 0:
		return &w.stats.Retraction
	}
	return &w.stats.Travel
}
