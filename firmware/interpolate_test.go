package firmware

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldOfView/ArcWelderLib/gcode"
)

func marlin(t *testing.T, overrides map[string]string) *Firmware {
	t.Helper()
	f, err := New(Marlin2, "2.0.0", overrides)
	require.NoError(t, err)
	return f
}

// points parses the absolute end points of generated lines.
func points(t *testing.T, lines []gcode.Line) [][2]float64 {
	t.Helper()
	res := make([][2]float64, len(lines))
	for i, l := range lines {
		b := gcode.ParseLine(l.Raw).Block
		cmd, ok := b.Command()
		require.True(t, ok)
		require.True(t, cmd.Is('G', 1), l.Raw)
		_, x := b.Arg('X')
		_, y := b.Arg('Y')
		res[i] = [2]float64{x, y}
	}
	return res
}

func TestFirmware_InterpolateArc_QuarterCircle(t *testing.T) {
	f := marlin(t, map[string]string{"mm_per_arc_segment": "1.0", "min_arc_segments": "24"})
	f.SetPosition(gcode.Position{X: 10})
	lines := f.InterpolateArc(gcode.Position{Y: 10}, -10, 0, 0, false)

	require.Len(t, lines, 16)
	assert.Equal(t, "G1 X0 Y10", lines[15].Raw)
	assert.Equal(t, 16, f.SegmentsGenerated())
	assert.Equal(t, gcode.Position{Y: 10}, f.Position())

	prevAngle := 0.0
	for _, p := range points(t, lines) {
		assert.InDelta(t, 10, math.Hypot(p[0], p[1]), 0.002)
		a := math.Atan2(p[1], p[0])
		assert.Greater(t, a, prevAngle)
		prevAngle = a
	}
}

func TestFirmware_InterpolateArc_Deterministic(t *testing.T) {
	run := func() []string {
		f := marlin(t, nil)
		f.SetPosition(gcode.Position{X: 12.5, Y: 3, E: 4})
		var res []string
		for _, l := range f.InterpolateArc(gcode.Position{X: 2.5, Y: 3, E: 5.2}, -5, 0, 0, true) {
			res = append(res, l.Raw)
		}
		return res
	}
	a := run()
	assert.NotEmpty(t, a)
	assert.Equal(t, a, run())
}

func TestFirmware_InterpolateArc_Clockwise(t *testing.T) {
	f := marlin(t, nil)
	f.SetPosition(gcode.Position{X: 10})
	lines := f.InterpolateArc(gcode.Position{Y: 10}, -10, 0, 0, true)

	require.Len(t, lines, 48)
	pts := points(t, lines)
	assert.Less(t, pts[0][1], 0.0)
	assert.Equal(t, "G1 X0 Y10", lines[47].Raw)
}

func TestFirmware_InterpolateArc_FullCircle(t *testing.T) {
	f := marlin(t, nil)
	f.SetPosition(gcode.Position{X: 10})
	lines := f.InterpolateArc(gcode.Position{X: 10}, -10, 0, 0, false)

	require.Len(t, lines, 63)
	assert.Equal(t, "G1 X10 Y0", lines[62].Raw)
	pts := points(t, lines)
	assert.InDelta(t, -10, pts[31][0], 0.05)
}

func TestFirmware_InterpolateArc_Radius(t *testing.T) {
	f := marlin(t, nil)
	f.SetPosition(gcode.Position{X: 10})
	lines := f.InterpolateArc(gcode.Position{Y: 10}, 0, 0, 10, false)

	require.Len(t, lines, 16)
	assert.Equal(t, "G1 X0 Y10", lines[15].Raw)
	for _, p := range points(t, lines) {
		assert.InDelta(t, 10, math.Hypot(p[0], p[1]), 0.002)
	}
}

func TestFirmware_InterpolateArc_ExactCorrection(t *testing.T) {
	f := marlin(t, map[string]string{"n_arc_correction": "1"})
	f.SetPosition(gcode.Position{X: 10})
	lines := f.InterpolateArc(gcode.Position{X: 10}, -10, 0, 0, false)

	for _, p := range points(t, lines) {
		assert.InDelta(t, 10, math.Hypot(p[0], p[1]), 0.0008)
	}
}

func TestFirmware_InterpolateArc_Relative(t *testing.T) {
	f := marlin(t, nil)
	f.SetState(gcode.MotionState{Relative: true, ExtruderRelative: true})
	f.SetPosition(gcode.Position{X: 10, E: 5})
	lines := f.InterpolateArc(gcode.Position{Y: 10, E: 6.6}, -10, 0, 0, false)
	require.Len(t, lines, 16)

	var x, y, e float64
	for _, l := range lines {
		b := gcode.ParseLine(l.Raw).Block
		_, dx := b.Arg('X')
		_, dy := b.Arg('Y')
		_, de := b.Arg('E')
		x += dx
		y += dy
		e += de
	}
	assert.InDelta(t, -10, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)
	assert.InDelta(t, 1.6, e, 1e-9)
	assert.Equal(t, "G1 X-0.048 Y0.98 E0.1", lines[0].Raw)
}

func TestFirmware_InterpolateArc_Helical(t *testing.T) {
	f := marlin(t, nil)
	f.SetPosition(gcode.Position{X: 10, F: 600})
	lines := f.InterpolateArc(gcode.Position{Y: 10, Z: 2, F: 1200}, -10, 0, 0, false)
	require.Len(t, lines, 16)

	assert.Equal(t, "G1 X9.952 Y0.98 Z0.125 F1200", lines[0].Raw)
	assert.Equal(t, "G1 X0 Y10 Z2", lines[15].Raw)
}

func TestArguments_Segments(t *testing.T) {
	quarter := math.Pi / 2

	a, err := DefaultArguments(Marlin2, LatestRelease)
	require.NoError(t, err)
	// 72 per circle, limited by the 0.1mm minimum length
	assert.Equal(t, 15, a.Segments(1, quarter, quarter, 0))
	assert.Equal(t, 158, a.Segments(100, quarter, 100*quarter, 0))

	a, err = DefaultArguments(Smoothieware, LatestRelease)
	require.NoError(t, err)
	assert.Equal(t, 18, a.Segments(10, quarter, 10*quarter, 0))

	a, err = Configure(Prusa, "3.10.0", map[string]string{"arc_segments_per_sec": "20"})
	require.NoError(t, err)
	assert.Equal(t, 16, a.Segments(10, quarter, 10*quarter, 0))
	// 32 per second at 10mm/s, limited by the 0.5mm minimum length
	assert.Equal(t, 31, a.Segments(10, quarter, 10*quarter, 600))

	a, err = Configure(Marlin2, "2.0.0", map[string]string{"arc_segments_per_r": "4"})
	require.NoError(t, err)
	// 4mm segments at r=100
	assert.Equal(t, 158, a.Segments(100, 2*math.Pi, 200*math.Pi, 0))
	assert.Equal(t, 24, a.Segments(2, 2*math.Pi, 4*math.Pi, 0))

	assert.Equal(t, 1, Arguments{}.Segments(10, quarter, 10*quarter, 0))
}
