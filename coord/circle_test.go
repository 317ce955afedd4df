package coord

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleFrom3(t *testing.T) {
	c, ok := CircleFrom3(Point{X: 10}, Point{Y: 10}, Point{X: -10})
	require.True(t, ok)
	assert.InDelta(t, 0, c.Center.X, 1e-12)
	assert.InDelta(t, 0, c.Center.Y, 1e-12)
	assert.InDelta(t, 10, c.Radius, 1e-12)

	c, ok = CircleFrom3(Point{X: 6, Y: 1}, Point{X: 1, Y: 6}, Point{X: -4, Y: 1})
	require.True(t, ok)
	assert.InDelta(t, 1, c.Center.X, 1e-12)
	assert.InDelta(t, 1, c.Center.Y, 1e-12)
	assert.InDelta(t, 5, c.Radius, 1e-12)
}

func TestCircleFrom3_Degenerate(t *testing.T) {
	_, ok := CircleFrom3(Point{X: 0}, Point{X: 1}, Point{X: 2})
	assert.False(t, ok, "collinear")

	_, ok = CircleFrom3(Point{X: 1, Y: 1}, Point{X: 1, Y: 1}, Point{X: 2, Y: 3})
	assert.False(t, ok, "coincident")

	_, ok = CircleFrom3(Point{}, Point{}, Point{})
	assert.False(t, ok, "all zero")
}

func TestCircle_ChordDeviation(t *testing.T) {
	c := Circle{Radius: 10}

	// quarter circle chord: sagitta = r - r*cos(45deg)
	dev := c.ChordDeviation(Point{X: 10}, Point{Y: 10})
	assert.InDelta(t, 10-10*math.Cos(math.Pi/4), dev, 1e-12)

	dev = c.ChordDeviation(Point{X: 10.5}, Point{X: 10.5, Y: 0.001})
	assert.InDelta(t, 0.5, dev, 1e-6)
}

func TestCircle_Angle(t *testing.T) {
	c := Circle{Center: Point{X: 1, Y: 1}, Radius: 1}
	assert.InDelta(t, math.Pi/2, c.Angle(Point{X: 1, Y: 2}), 1e-12)
}
