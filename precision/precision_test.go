package precision

import (
	"testing"

	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Clamp(t *testing.T) {
	c, adj := Config{XYZ: 2, E: 9}.Clamp()
	assert.Equal(t, Config{XYZ: 3, E: 6}, c)
	assert.Equal(t, []Adjustment{{Field: "xyz", From: 2, To: 3}, {Field: "e", From: 9, To: 6}}, adj)

	c, adj = DefaultConfig().Clamp()
	assert.Equal(t, DefaultConfig(), c)
	assert.Empty(t, adj)
}

func TestDigits(t *testing.T) {
	assert.Equal(t, 0, Digits("10"))
	assert.Equal(t, 2, Digits("10.50"))
	assert.Equal(t, 5, Digits("-.01234"))
}

func TestSelect(t *testing.T) {
	cfg := Config{XYZ: 3, E: 5}
	assert.Equal(t, 3, Select("1.23456", KindXYZ, cfg))
	assert.Equal(t, 5, Select("1.2", KindE, cfg))

	cfg.Dynamic = true
	assert.Equal(t, 5, Select("1.23456", KindXYZ, cfg))
	assert.Equal(t, 3, Select("1.2", KindXYZ, cfg))
	assert.Equal(t, 6, Select("1.23456789", KindE, cfg))
}

func TestController(t *testing.T) {
	c := NewController(Config{XYZ: 3, E: 5})
	c.Observe(gcode.ParseLine("G1 X1.23456 E0.1234567").Block)
	assert.Equal(t, 3, c.Digits('X'))
	assert.Equal(t, 5, c.Digits('E'))

	c = NewController(Config{XYZ: 3, E: 5, Dynamic: true})
	c.Observe(gcode.ParseLine("G1 X1.2345 E0.1234567").Block)
	assert.Equal(t, 4, c.Digits('I'))
	assert.Equal(t, 6, c.Digits('E'))
	c.Observe(gcode.ParseLine("G1 X1.2").Block)
	assert.Equal(t, 4, c.Digits('X'))

	assert.Equal(t, 1.2346, c.Round(1.23456, 'Y'))
}

func TestNewController_ZeroConfig(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, DefaultConfig(), c.Config())
	assert.Equal(t, DefaultE, c.Digits('E'))
}

func TestController_Observe(t *testing.T) {
	cfg := Config{XYZ: 3, E: 5, Dynamic: true}
	c := NewController(cfg)
	c.Observe(gcode.ParseLine("G1 X1.23450 F1200.1234567").Block)
	assert.Equal(t, Select("1.23450", KindXYZ, cfg), c.Digits('X'))
	assert.Equal(t, 5, c.Digits('Z'))
	assert.Equal(t, 5, c.Digits('E'))

	c.Observe(gcode.ParseLine("G2 X1 Y2 I-0.0000001 J0 E0.1").Block)
	assert.Equal(t, Max, c.Digits('J'))
	assert.Equal(t, 5, c.Digits('E'))
}
