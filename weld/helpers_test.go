package weld

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldOfView/ArcWelderLib/gcode"
)

type pt struct{ x, y, z float64 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// arcPoints samples n+1 points of a circle from angle a0 to a1.
func arcPoints(cx, cy, r, a0, a1 float64, n int) []pt {
	pts := make([]pt, n+1)
	for i := range pts {
		a := a0 + (a1-a0)*float64(i)/float64(n)
		pts[i] = pt{x: cx + r*math.Cos(a), y: cy + r*math.Sin(a)}
	}
	return pts
}

type polyOpts struct {
	ePerMM   float64
	relative bool
	withZ    bool
}

// polyline writes a travel move to the first point followed by G1 moves
// through the rest.
func polyline(pts []pt, o polyOpts) string {
	var sb strings.Builder
	if o.relative {
		sb.WriteString("G91\nM83\n")
	}
	p0 := pt{round3(pts[0].x), round3(pts[0].y), round3(pts[0].z)}
	if o.withZ {
		fmt.Fprintf(&sb, "G0 X%.3f Y%.3f Z%.3f F3000\n", p0.x, p0.y, p0.z)
	} else {
		fmt.Fprintf(&sb, "G0 X%.3f Y%.3f F3000\n", p0.x, p0.y)
	}

	prev := p0
	e := 0.0
	for i, p := range pts[1:] {
		cur := pt{round3(p.x), round3(p.y), round3(p.z)}
		x, y, z := cur.x, cur.y, cur.z
		if o.relative {
			x, y, z = cur.x-prev.x, cur.y-prev.y, cur.z-prev.z
		}
		fmt.Fprintf(&sb, "G1 X%.3f Y%.3f", x, y)
		if o.withZ {
			fmt.Fprintf(&sb, " Z%.3f", z)
		}
		if o.ePerMM > 0 {
			d := math.Hypot(cur.x-prev.x, cur.y-prev.y) * o.ePerMM
			e += d
			if o.relative {
				fmt.Fprintf(&sb, " E%.5f", d)
			} else {
				fmt.Fprintf(&sb, " E%.5f", e)
			}
		}
		if i == 0 {
			sb.WriteString(" F1800")
		}
		sb.WriteByte('\n')
		prev = cur
	}
	return sb.String()
}

func weld(t *testing.T, src string, opts Options) ([]gcode.Line, Result) {
	t.Helper()
	var out bytes.Buffer
	res, err := Run(context.Background(), strings.NewReader(src), &out, RunOptions{Options: opts})
	require.NoError(t, err)
	require.True(t, res.Success)
	return gcode.MustParse(out.String()), res
}

func arcs(lines []gcode.Line) []gcode.Line {
	var res []gcode.Line
	for _, l := range lines {
		if l.IsArc() {
			res = append(res, l)
		}
	}
	return res
}

// totals runs lines through a VM and returns the final position and the
// summed extruder movement.
func totals(t *testing.T, lines []gcode.Line) (gcode.Position, float64) {
	t.Helper()
	vm := gcode.NewVM()
	var e float64
	for _, l := range lines {
		require.NoError(t, vm.Run(l.Block), l.Raw)
		if m, ok := vm.LastMove(); ok {
			e += m.Extrusion()
		}
	}
	return vm.Position(), e
}
