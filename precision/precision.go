// Package precision selects how many fractional digits generated
// coordinates and extrusion values are written with.
package precision

import (
	"strconv"
	"strings"

	"github.com/fieldOfView/ArcWelderLib/gcode"
)

type Kind int

const (
	KindXYZ Kind = iota
	KindE
)

const (
	Min        = 3
	Max        = 6
	DefaultXYZ = 3
	DefaultE   = 5
)

type Config struct {
	XYZ     int  `json:"xyz" yaml:"xyz" msgpack:"xyz"`
	E       int  `json:"e" yaml:"e" msgpack:"e"`
	Dynamic bool `json:"dynamic" yaml:"dynamic" msgpack:"dynamic"`
}

func DefaultConfig() Config { return Config{XYZ: DefaultXYZ, E: DefaultE} }

// Adjustment records a configuration value moved into range by Clamp.
type Adjustment struct {
	Field    string
	From, To int
}

func clamp(v int) int {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// Clamp brings both digit counts into [Min, Max].
func (c Config) Clamp() (Config, []Adjustment) {
	var adj []Adjustment
	if v := clamp(c.XYZ); v != c.XYZ {
		adj = append(adj, Adjustment{Field: "xyz", From: c.XYZ, To: v})
		c.XYZ = v
	}
	if v := clamp(c.E); v != c.E {
		adj = append(adj, Adjustment{Field: "e", From: c.E, To: v})
		c.E = v
	}
	return c, adj
}

// Digits returns the number of fractional digits in a written number.
func Digits(raw string) int {
	i := strings.IndexByte(raw, '.')
	if i < 0 {
		return 0
	}
	n := 0
	for _, c := range raw[i+1:] {
		if c < '0' || c > '9' {
			break
		}
		n++
	}
	return n
}

// Select returns the digits to use for a value of the given kind. In
// dynamic mode the source digits widen the configured value up to Max.
func Select(raw string, kind Kind, cfg Config) int {
	d := cfg.XYZ
	if kind == KindE {
		d = cfg.E
	}
	if !cfg.Dynamic {
		return d
	}
	if n := Digits(raw); n > d {
		d = n
	}
	if d > Max {
		d = Max
	}
	return d
}

func KindOf(letter byte) Kind {
	if letter == 'E' {
		return KindE
	}
	return KindXYZ
}

// Controller tracks the widest precision seen in the source over a run.
type Controller struct {
	cfg Config
	xyz int
	e   int
}

// NewController returns a Controller for cfg. The zero Config selects the
// defaults.
func NewController(cfg Config) *Controller {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	cfg, _ = cfg.Clamp()
	return &Controller{cfg: cfg, xyz: cfg.XYZ, e: cfg.E}
}

func (c *Controller) Config() Config { return c.cfg }

// Observe widens the tracked precision with the words of a source block.
// It has no effect unless the configuration is dynamic.
func (c *Controller) Observe(b gcode.Block) {
	for _, w := range b {
		if w.Digits <= 0 {
			continue
		}
		switch w.W {
		case 'X', 'Y', 'Z', 'I', 'J', 'K', 'R', 'E':
		default:
			continue
		}
		kind := KindOf(w.W)
		d := Select(strconv.FormatFloat(w.Arg, 'f', w.Digits, 64), kind, c.cfg)
		if kind == KindE {
			c.e = max(c.e, d)
		} else {
			c.xyz = max(c.xyz, d)
		}
	}
}

// Digits returns the digits to write a word with the given letter.
func (c *Controller) Digits(letter byte) int {
	if KindOf(letter) == KindE {
		return c.e
	}
	return c.xyz
}

// Round rounds v to the value that is written for the given letter.
func (c *Controller) Round(v float64, letter byte) float64 {
	return Round(v, c.Digits(letter))
}

// Round returns the value of v as written with the given number of digits.
func Round(v float64, digits int) float64 {
	r, err := strconv.ParseFloat(gcode.FormatFloat(v, digits), 64)
	if err != nil {
		return v
	}
	return r
}
