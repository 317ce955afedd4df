package firmware

import (
	"io"

	"go.uber.org/zap"

	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/fieldOfView/ArcWelderLib/precision"
	"github.com/fieldOfView/ArcWelderLib/stats"
)

type Options struct {
	Arguments Arguments
	Precision precision.Config
	Logger    *zap.Logger
}

// Straightener reads lines from a source Reader and replaces every G2/G3
// with the G1 moves the configured firmware would execute. All other lines
// are returned unchanged.
type Straightener struct {
	r    gcode.Reader
	vm   *gcode.VM
	fw   *Firmware
	prec *precision.Controller
	log  *zap.Logger

	buf   []gcode.Line
	stats stats.RunStatistics
	done  bool
}

var _ gcode.Reader = &Straightener{}

// NewStraightener validates the firmware arguments and returns a
// Straightener reading from r.
func NewStraightener(r gcode.Reader, opts Options) (*Straightener, error) {
	if err := opts.Arguments.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	vm := gcode.NewVM()
	vm.G90InfluencesExtruder = opts.Arguments.G90InfluencesExtruder

	prec := precision.NewController(opts.Precision)
	fw := NewFirmware(opts.Arguments)
	fw.SetPrecision(prec)

	return &Straightener{
		r:     r,
		vm:    vm,
		fw:    fw,
		prec:  prec,
		log:   log,
		stats: stats.NewRunStatistics(),
	}, nil
}

func (s *Straightener) Read() (gcode.Line, error) {
	for len(s.buf) == 0 {
		if s.done {
			return gcode.Line{}, io.EOF
		}
		l, err := s.r.Read()
		if err == io.EOF {
			s.done = true
			continue
		}
		if err != nil {
			return gcode.Line{}, err
		}
		s.process(l)
	}

	l := s.buf[0]
	s.buf = s.buf[1:]
	return l, nil
}

// Stop ends the stream after the lines already produced.
func (s *Straightener) Stop() { s.done = true }

func (s *Straightener) Statistics() stats.RunStatistics { return s.stats }

func (s *Straightener) Firmware() *Firmware { return s.fw }

func (s *Straightener) process(l gcode.Line) {
	s.stats.LinesProcessed++
	if !l.Valid() || len(l.Block) == 0 {
		s.buf = append(s.buf, l)
		return
	}

	s.prec.Observe(l.Block)
	if err := s.vm.Run(l.Block); err != nil {
		s.log.Debug("skipping line", zap.String("line", l.Raw), zap.Error(err))
		s.buf = append(s.buf, l)
		return
	}
	m, moved := s.vm.LastMove()
	if !moved {
		s.buf = append(s.buf, l)
		return
	}
	if m.Motion != 2 && m.Motion != 3 {
		s.count(m.From, m.To)
		s.buf = append(s.buf, l)
		return
	}

	plane := s.vm.Plane()
	scale := s.vm.Scale()
	oa, ob := plane.OffsetWords()
	hasA, i := l.Block.Arg(oa)
	hasB, j := l.Block.Arg(ob)
	_, r := l.Block.Arg('R')
	if !hasA && !hasB && r == 0 {
		s.log.Debug("arc without center", zap.String("line", l.Raw))
		s.count(m.From, m.To)
		s.buf = append(s.buf, l)
		return
	}

	s.fw.SetPosition(m.From)
	s.fw.SetState(s.vm.State())
	s.fw.SetPlane(plane)
	s.fw.SetScale(scale)
	lines := s.fw.InterpolateArc(m.To, i*scale, j*scale, r*scale, m.Motion == 2)

	var length float64
	prev := m.From
	for _, p := range s.fw.Path() {
		d := prev.Point().Distance(p.Point())
		length += d
		if d > 0 {
			s.histogram(p.E - prev.E).AddTarget(d)
		}
		prev = p
	}
	if length > 0 {
		s.histogram(m.Extrusion()).AddSource(length)
	}
	e := m.Extrusion()
	s.stats.SourceExtrusion += e
	s.stats.TargetExtrusion += e
	s.stats.ArcsInterpolated++
	s.stats.SegmentsGenerated += len(lines)

	for k := range lines {
		lines[k].EOL = l.EOL
	}
	if l.HasComment() {
		lines[0].Comment = l.Comment
		lines[0].Raw += " ;" + l.Comment
	}
	s.log.Debug("arc interpolated", zap.String("arc", l.Raw), zap.Int("segments", len(lines)))
	s.buf = append(s.buf, lines...)
}

// count adds a move that is written unchanged.
func (s *Straightener) count(from, to gcode.Position) {
	e := to.E - from.E
	s.stats.SourceExtrusion += e
	s.stats.TargetExtrusion += e
	if d := from.Point().Distance(to.Point()); d > 0 {
		h := s.histogram(e)
		h.AddSource(d)
		h.AddTarget(d)
	}
}

func (s *Straightener) histogram(e float64) *stats.SegmentStatistics {
	switch {
	case e > 0:
		return &s.stats.Extrusion
	case e < 0:
		return &s.stats.Retraction
	}
	return &s.stats.Travel
}
