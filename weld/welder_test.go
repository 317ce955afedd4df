package weld

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldOfView/ArcWelderLib/coord"
	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/fieldOfView/ArcWelderLib/precision"
	"github.com/fieldOfView/ArcWelderLib/stats"
)

func TestRun_SingleArc(t *testing.T) {
	src := polyline(arcPoints(50, 50, 20, 0, 1.5*math.Pi, 36), polyOpts{ePerMM: 0.05})
	out, res := weld(t, src, DefaultOptions())

	require.Len(t, out, 2)
	assert.Equal(t, "G0 X70.000 Y50.000 F3000", out[0].Raw)

	arc := out[1]
	cmd, _ := arc.Block.Command()
	assert.Equal(t, 3.0, cmd.Arg)
	_, x := arc.Block.Arg('X')
	_, y := arc.Block.Arg('Y')
	_, i := arc.Block.Arg('I')
	_, j := arc.Block.Arg('J')
	_, f := arc.Block.Arg('F')
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 30, y, 1e-9)
	assert.InDelta(t, -20, i, 0.002)
	assert.InDelta(t, 0, j, 0.002)
	assert.Equal(t, 1800.0, f)
	assert.True(t, arc.Block.Has('E'))

	assert.Equal(t, 1, res.Statistics.ArcsCreated)
	assert.Equal(t, 35, res.Statistics.PointsCompressed)
	assert.Equal(t, 36, res.Statistics.Extrusion.SourceCount)
	assert.Equal(t, 1, res.Statistics.Extrusion.TargetCount)
	assert.InDelta(t, res.Statistics.SourceExtrusion, res.Statistics.TargetExtrusion, 1e-9)
	assert.Less(t, res.Statistics.TargetBytes, res.Statistics.SourceBytes)
}

func TestRun_Clockwise(t *testing.T) {
	src := polyline(arcPoints(0, 0, 10, math.Pi/2, 0, 20), polyOpts{ePerMM: 0.05})
	out, _ := weld(t, src, DefaultOptions())

	a := arcs(out)
	require.Len(t, a, 1)
	assert.True(t, strings.HasPrefix(a[0].Raw, "G2 X10 Y0 I"))
	_, i := a[0].Block.Arg('I')
	_, j := a[0].Block.Arg('J')
	assert.InDelta(t, 0, i, 0.002)
	assert.InDelta(t, -10, j, 0.002)
}

func TestRun_CompressionFloor(t *testing.T) {
	for _, res := range []float64{0.01, 0.05, 0.5} {
		for _, r := range []float64{5, 25, 100} {
			opts := DefaultOptions()
			opts.Tolerance.ResolutionMM = res
			opts.Tolerance.MinArcSegments = 24
			src := polyline(arcPoints(120, 120, r, 0.3, 0.3+math.Pi, 48), polyOpts{ePerMM: 0.04})
			out, _ := weld(t, src, opts)
			assert.Len(t, arcs(out), 1, "resolution %v radius %v", res, r)
			assert.Len(t, out, 2, "resolution %v radius %v", res, r)
		}
	}
}

// emitted arcs must stay within tolerance of every point they replace
func TestRun_ToleranceInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tol := DefaultTolerance()
	created := 0

	for trial := 0; trial < 40; trial++ {
		r := 5 + rng.Float64()*60
		a0 := rng.Float64() * 2 * math.Pi
		sweep := (0.2 + rng.Float64()*1.4) * math.Pi
		if rng.Intn(2) == 0 {
			sweep = -sweep
		}
		pts := arcPoints(100, 100, r, a0, a0+sweep, 10+rng.Intn(50))
		for i := range pts {
			pts[i].x += (rng.Float64()*2 - 1) * 0.02
			pts[i].y += (rng.Float64()*2 - 1) * 0.02
		}
		src := gcode.MustParse(polyline(pts, polyOpts{ePerMM: 0.03}))
		var sb strings.Builder
		for _, l := range src {
			sb.WriteString(l.Raw + "\n")
		}
		out, res := weld(t, sb.String(), Options{Tolerance: tol, Precision: precision.DefaultConfig()})
		created += res.Statistics.ArcsCreated
		assert.LessOrEqual(t, len(out), len(src))

		vm := gcode.NewVM()
		si := 0
		for _, l := range out {
			if !l.IsArc() {
				require.Less(t, si, len(src))
				assert.Equal(t, src[si].Raw, l.Raw)
				require.NoError(t, vm.Run(src[si].Block))
				si++
				continue
			}

			start := vm.Position().Point()
			_, x := l.Block.Arg('X')
			_, y := l.Block.Arg('Y')
			_, i := l.Block.Arg('I')
			_, j := l.Block.Arg('J')
			cmd, _ := l.Block.Command()
			circle := coord.Circle{Center: coord.Point{X: start.X + i, Y: start.Y + j}, Radius: math.Hypot(i, j)}

			prev := start
			for {
				require.Less(t, si, len(src), "arc end not found in source")
				require.NoError(t, vm.Run(src[si].Block))
				si++
				p := vm.Position().Point()
				chord := math.Hypot(p.X-prev.X, p.Y-prev.Y)
				assert.LessOrEqual(t, circle.ChordDeviation(prev, p), tol.bound(chord)+1e-9)
				step := coord.Sweep(circle.Angle(prev), circle.Angle(p), cmd.Arg == 2)
				assert.Less(t, step, math.Pi)
				prev = p
				if math.Abs(p.X-x) < 1e-9 && math.Abs(p.Y-y) < 1e-9 {
					break
				}
			}
		}
		assert.Equal(t, len(src), si)
	}
	assert.Greater(t, created, 20)
}

func TestRun_ExtrusionConservation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("G90\nM82\nG92 E0\n")
	sb.WriteString(polyline(arcPoints(50, 50, 15, 0, math.Pi, 30), polyOpts{ePerMM: 0.05}))
	sb.WriteString("G1 E-0.8 F2400 ; retract\nG92 E0\n")
	sb.WriteString("G1 X80 Y80 E2 F1200\nG1 X90 Y80 E3\nG92 E0\n")
	sb.WriteString(polyline(arcPoints(20, 20, 8, math.Pi, 0, 24), polyOpts{ePerMM: 0.05}))
	src := gcode.MustParse(sb.String())

	out, res := weld(t, sb.String(), DefaultOptions())
	assert.Len(t, arcs(out), 2)
	assert.LessOrEqual(t, len(out), len(src))

	srcPos, srcE := totals(t, src)
	outPos, outE := totals(t, out)
	assert.InDelta(t, srcE, outE, 1e-5)
	assert.InDelta(t, srcPos.X, outPos.X, 1e-9)
	assert.InDelta(t, srcPos.Y, outPos.Y, 1e-9)
	assert.InDelta(t, res.Statistics.SourceExtrusion, res.Statistics.TargetExtrusion, 1e-5)
	assert.Contains(t, out[len(out)-7].Raw, "; retract")
}

func TestRun_Relative(t *testing.T) {
	src := polyline(arcPoints(30, 30, 12, 0, math.Pi, 30), polyOpts{ePerMM: 0.05, relative: true})
	out, _ := weld(t, src, DefaultOptions())

	a := arcs(out)
	require.Len(t, a, 1)
	_, x := a[0].Block.Arg('X')
	assert.InDelta(t, -24, x, 0.002)

	srcPos, srcE := totals(t, gcode.MustParse(src))
	outPos, outE := totals(t, out)
	assert.InDelta(t, srcE, outE, 1e-4)
	assert.InDelta(t, srcPos.X, outPos.X, 1e-6)
	assert.InDelta(t, srcPos.Y, outPos.Y, 1e-6)
}

func TestRun_DeviatingPoint(t *testing.T) {
	// near-straight run along a circle of radius 200
	var pts []pt
	for i := -10; i <= 10; i++ {
		x := float64(i) * 0.3
		pts = append(pts, pt{x: x, y: math.Sqrt(200*200-x*x) - 200})
	}
	pts[10].y += 0.2

	src := polyline(pts, polyOpts{ePerMM: 0.05})
	out, _ := weld(t, src, DefaultOptions())

	devLine := gcode.MustParse(src)[10].Raw
	assert.True(t, strings.HasPrefix(devLine, "G1 X0.000 Y0.200"))

	var raws []string
	for _, l := range out {
		raws = append(raws, l.Raw)
	}
	assert.Contains(t, raws, devLine)

	a := arcs(out)
	require.NotEmpty(t, a)
	_, x := a[0].Block.Arg('X')
	assert.InDelta(t, -0.3, x, 1e-9)
}

func TestCandidate_ExtendDeviation(t *testing.T) {
	vm := gcode.NewVM()
	var segs []Segment
	for _, l := range gcode.MustParse("G1 X-2 Y-0.01\nG1 X-1.5 Y-0.006 E1\nG1 X-1 Y-0.003 E2\nG1 X-0.5 Y-0.001 E3\nG1 X0 Y0.2 E4\n") {
		require.NoError(t, vm.Run(l.Block))
		m, _ := vm.LastMove()
		segs = append(segs, newSegment(l, m))
	}
	prec := precision.NewController(precision.DefaultConfig())
	tol := DefaultTolerance()
	tol.ExtrusionRateVariancePercent = 0

	c := newCandidate(segs[1], coord.PlaneXY, gcode.MotionState{}, 1)
	var reason RejectReason
	for _, s := range segs[2:4] {
		c, reason = c.extend(s, tol, prec)
		require.Equal(t, ReasonNone, reason)
	}
	_, reason = c.extend(segs[4], tol, prec)
	assert.Equal(t, ReasonDeviation, reason)
}

func TestRun_TravelArcs(t *testing.T) {
	src := polyline(arcPoints(0, 0, 10, 0, math.Pi, 20), polyOpts{})
	out, _ := weld(t, src, DefaultOptions())
	assert.Empty(t, arcs(out))

	opts := DefaultOptions()
	opts.Tolerance.AllowTravelArcs = true
	out, res := weld(t, src, opts)
	a := arcs(out)
	require.Len(t, a, 1)
	assert.False(t, a[0].Block.Has('E'))
	assert.Equal(t, 2, res.Statistics.Travel.TargetCount)
}

func TestRun_Comment(t *testing.T) {
	lines := strings.Split(polyline(arcPoints(0, 0, 10, 0, math.Pi, 20), polyOpts{ePerMM: 0.05}), "\n")
	lines[10] += " ; keep me"
	src := strings.Join(lines, "\n")

	out, _ := weld(t, src, DefaultOptions())
	assert.Len(t, arcs(out), 2)
	var found bool
	for _, l := range out {
		if l.Raw == lines[10] {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRun_Helical(t *testing.T) {
	pts := arcPoints(0, 0, 10, 0, math.Pi, 30)
	for i := range pts {
		pts[i].z = 0.2 + float64(i)*0.01
	}
	src := polyline(pts, polyOpts{ePerMM: 0.05, withZ: true})

	out, _ := weld(t, src, DefaultOptions())
	assert.Empty(t, arcs(out))

	opts := DefaultOptions()
	opts.Tolerance.Allow3DArcs = true
	out, _ = weld(t, src, opts)
	a := arcs(out)
	require.Len(t, a, 1)
	_, z := a[0].Block.Arg('Z')
	assert.InDelta(t, 0.5, z, 1e-9)
}

func TestRun_MaxGcodeLength(t *testing.T) {
	src := polyline(arcPoints(0, 0, 10, 0, math.Pi, 20), polyOpts{ePerMM: 0.05})
	opts := DefaultOptions()
	opts.Tolerance.MaxGcodeLength = 20
	out, res := weld(t, src, opts)
	assert.Empty(t, arcs(out))
	assert.Len(t, out, 21)
	assert.Equal(t, 0, res.Statistics.ArcsCreated)
}

func TestRun_FirmwareCompensation(t *testing.T) {
	opts := DefaultOptions()
	opts.Tolerance.MMPerArcSegment = 1
	opts.Tolerance.MinArcSegments = 24

	out, _ := weld(t, polyline(arcPoints(0, 0, 2, 0, math.Pi, 12), polyOpts{ePerMM: 0.05}), opts)
	assert.Empty(t, arcs(out))

	out, _ = weld(t, polyline(arcPoints(0, 0, 20, 0, math.Pi, 40), polyOpts{ePerMM: 0.05}), opts)
	assert.Len(t, arcs(out), 1)
}

func TestRun_ExtrusionRate(t *testing.T) {
	pts := arcPoints(0, 0, 10, 0, math.Pi, 20)
	var sb strings.Builder
	fmt.Fprintf(&sb, "G0 X%.3f Y%.3f\n", round3(pts[0].x), round3(pts[0].y))
	e := 0.0
	for i := 1; i < len(pts); i++ {
		rate := 0.05
		if i > 10 {
			rate = 0.1
		}
		e += math.Hypot(round3(pts[i].x)-round3(pts[i-1].x), round3(pts[i].y)-round3(pts[i-1].y)) * rate
		fmt.Fprintf(&sb, "G1 X%.3f Y%.3f E%.5f\n", round3(pts[i].x), round3(pts[i].y), e)
	}

	out, res := weld(t, sb.String(), DefaultOptions())
	assert.Len(t, arcs(out), 2)
	assert.Equal(t, 1, res.Statistics.ArcsRejected[ReasonExtrusionRate.String()])

	opts := DefaultOptions()
	opts.Tolerance.ExtrusionRateVariancePercent = 0
	out, _ = weld(t, sb.String(), opts)
	assert.Len(t, arcs(out), 1)
}

func TestRun_Cancel(t *testing.T) {
	src := polyline(arcPoints(50, 50, 20, 0, 1.5*math.Pi, 36), polyOpts{ePerMM: 0.05})
	var out bytes.Buffer
	calls := 0
	res, err := Run(context.Background(), strings.NewReader(src), &out, RunOptions{
		Options: DefaultOptions(),
		Callback: func(p stats.Progress) bool {
			calls++
			return false
		},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, calls)
	assert.Less(t, res.Statistics.LinesProcessed, 37)
	assert.NotEmpty(t, out.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out.Reset()
	res, err = Run(ctx, strings.NewReader(src), &out, RunOptions{Options: DefaultOptions()})
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
}

func TestRun_Progress(t *testing.T) {
	src := polyline(arcPoints(50, 50, 20, 0, 1.5*math.Pi, 36), polyOpts{ePerMM: 0.05})
	var last stats.Progress
	_, err := Run(context.Background(), strings.NewReader(src), &bytes.Buffer{}, RunOptions{
		Options:    DefaultOptions(),
		TotalBytes: int64(len(src)),
		Callback: func(p stats.Progress) bool {
			assert.GreaterOrEqual(t, p.Percent, last.Percent)
			last = p
			return true
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, last.Percent)
	assert.Equal(t, 1, last.Statistics.ArcsCreated)
}

func TestRun_InvalidTolerance(t *testing.T) {
	opts := DefaultOptions()
	opts.Tolerance.ResolutionMM = 0
	res, err := Run(context.Background(), strings.NewReader("G1 X1\n"), &bytes.Buffer{}, RunOptions{Options: opts})
	assert.Error(t, err)
	assert.False(t, res.Success)
}

func TestRun_PassThrough(t *testing.T) {
	src := "; header\r\nM104 S200\r\nG28\r\nG1 X1 Y1\r\nM117 Printing...\r\n\r\nG1 X1 Y1 #garbage\r\n"
	var out bytes.Buffer
	_, err := Run(context.Background(), strings.NewReader(src), &out, RunOptions{Options: DefaultOptions()})
	require.NoError(t, err)
	assert.Equal(t, src, out.String())
}

func TestWelder_Read(t *testing.T) {
	src := polyline(arcPoints(0, 0, 20, 0, math.Pi/2, 12), polyOpts{ePerMM: 0.05}) + "M106 S255\n"
	w, err := NewWelder(&gcode.LinesReader{Lines: gcode.MustParse(src)}, DefaultOptions())
	require.NoError(t, err)

	var out []gcode.Line
	for {
		l, err := w.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, l)
	}

	require.Len(t, out, 3)
	assert.Equal(t, "G0 X20.000 Y0.000 F3000", out[0].Raw)
	assert.True(t, out[1].IsArc())
	assert.Equal(t, "M106 S255", out[2].Raw)

	st := w.Statistics()
	assert.Equal(t, 14, st.LinesProcessed)
	assert.Equal(t, 1, st.ArcsCreated)
	assert.Equal(t, 11, st.PointsCompressed)
	assert.Equal(t, 12, st.Extrusion.SourceCount)
	assert.InDelta(t, st.SourceExtrusion, st.TargetExtrusion, 1e-9)
}
