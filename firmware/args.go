package firmware

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fieldOfView/ArcWelderLib/config"
)

// Argument names. Newer Marlin releases renamed three of them, the
// aliases set the same values.
const (
	ArgMMPerArcSegment       = "mm_per_arc_segment"
	ArgArcSegmentsPerR       = "arc_segments_per_r"
	ArgMinMMPerArcSegment    = "min_mm_per_arc_segment"
	ArgMinArcSegments        = "min_arc_segments"
	ArgArcSegmentsPerSec     = "arc_segments_per_sec"
	ArgNArcCorrection        = "n_arc_correction"
	ArgG90InfluencesExtruder = "g90_g91_influences_extruder"
	ArgMMMaxArcError         = "mm_max_arc_error"
	ArgMinCircleSegments     = "min_circle_segments" // min_arc_segments
	ArgMinArcSegmentMM       = "min_arc_segment_mm"  // min_mm_per_arc_segment
	ArgMaxArcSegmentMM       = "max_arc_segment_mm"  // mm_per_arc_segment
)

// AllArguments lists every argument name, aliases included.
var AllArguments = []string{
	ArgMMPerArcSegment,
	ArgArcSegmentsPerR,
	ArgMinMMPerArcSegment,
	ArgMinArcSegments,
	ArgArcSegmentsPerSec,
	ArgNArcCorrection,
	ArgG90InfluencesExtruder,
	ArgMMMaxArcError,
	ArgMinCircleSegments,
	ArgMinArcSegmentMM,
	ArgMaxArcSegmentMM,
}

// order of the argument listing in Description
var describeOrder = []string{
	ArgG90InfluencesExtruder,
	ArgMinArcSegments,
	ArgMinCircleSegments,
	ArgNArcCorrection,
	ArgMMPerArcSegment,
	ArgArcSegmentsPerR,
	ArgMinMMPerArcSegment,
	ArgArcSegmentsPerSec,
	ArgMMMaxArcError,
	ArgMinArcSegmentMM,
	ArgMaxArcSegmentMM,
}

// Arguments are the arc settings of one firmware version. Used holds the
// argument names the version honors; only those can be overridden and
// only those take part in interpolation.
type Arguments struct {
	Type    Type   `json:"firmware_type" yaml:"firmware_type" msgpack:"firmware_type"`
	Version string `json:"version" yaml:"version" msgpack:"version"`

	MMPerArcSegment       float64 `json:"mm_per_arc_segment" yaml:"mm_per_arc_segment" msgpack:"mm_per_arc_segment"`
	ArcSegmentsPerR       float64 `json:"arc_segments_per_r" yaml:"arc_segments_per_r" msgpack:"arc_segments_per_r"`
	MinMMPerArcSegment    float64 `json:"min_mm_per_arc_segment" yaml:"min_mm_per_arc_segment" msgpack:"min_mm_per_arc_segment"`
	MinArcSegments        int     `json:"min_arc_segments" yaml:"min_arc_segments" msgpack:"min_arc_segments"`
	ArcSegmentsPerSec     float64 `json:"arc_segments_per_sec" yaml:"arc_segments_per_sec" msgpack:"arc_segments_per_sec"`
	NArcCorrection        int     `json:"n_arc_correction" yaml:"n_arc_correction" msgpack:"n_arc_correction"`
	MMMaxArcError         float64 `json:"mm_max_arc_error" yaml:"mm_max_arc_error" msgpack:"mm_max_arc_error"`
	G90InfluencesExtruder bool    `json:"g90_g91_influences_extruder" yaml:"g90_g91_influences_extruder" msgpack:"g90_g91_influences_extruder"`

	Used []string `json:"available_arguments" yaml:"available_arguments" msgpack:"available_arguments"`
}

func (a Arguments) Uses(name string) bool { return slices.Contains(a.Used, name) }

func (a Arguments) usesAny(names ...string) bool {
	for _, n := range names {
		if a.Uses(n) {
			return true
		}
	}
	return false
}

// Unused returns the argument names the version ignores.
func (a Arguments) Unused() []string {
	var res []string
	for _, n := range AllArguments {
		if !a.Uses(n) {
			res = append(res, n)
		}
	}
	return res
}

func (a Arguments) Clone() Arguments {
	a.Used = slices.Clone(a.Used)
	return a
}

// NormalizeName turns a flag style name like --max-arc-segment-mm into
// the argument name.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimLeft(strings.TrimSpace(name), "-"))
	return strings.ReplaceAll(name, "-", "_")
}

// FlagName returns the command line flag of an argument.
func FlagName(name string) string {
	return "--" + strings.ReplaceAll(name, "_", "-")
}

// FlagNames maps FlagName over names.
func FlagNames(names []string) []string {
	res := make([]string, len(names))
	for i, n := range names {
		res[i] = FlagName(n)
	}
	return res
}

// Set overrides one argument from its text value. Arguments the version
// does not use are rejected with config.ErrInapplicable.
func (a *Arguments) Set(name, value string) error {
	name = NormalizeName(name)
	if !slices.Contains(AllArguments, name) {
		return config.NewError(config.ErrInvalid, name, value, "unknown firmware argument")
	}
	if !a.Uses(name) {
		return config.NewError(config.ErrInapplicable, name, value,
			fmt.Sprintf("the %s %s firmware only supports %s", a.Type, a.Version, strings.Join(FlagNames(a.Used), ", ")))
	}

	switch name {
	case ArgG90InfluencesExtruder:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return config.NewError(config.ErrInvalid, name, value, "expected TRUE or FALSE")
		}
		a.G90InfluencesExtruder = v
		return nil
	case ArgMinArcSegments, ArgMinCircleSegments, ArgNArcCorrection:
		v, err := strconv.Atoi(value)
		if err != nil {
			return config.NewError(config.ErrInvalid, name, value, "expected an integer")
		}
		if name == ArgNArcCorrection {
			a.NArcCorrection = v
		} else {
			a.MinArcSegments = v
		}
		return nil
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return config.NewError(config.ErrInvalid, name, value, "expected a number")
	}
	*a.float(name) = v
	return nil
}

func (a *Arguments) float(name string) *float64 {
	switch name {
	case ArgMMPerArcSegment, ArgMaxArcSegmentMM:
		return &a.MMPerArcSegment
	case ArgArcSegmentsPerR:
		return &a.ArcSegmentsPerR
	case ArgMinMMPerArcSegment, ArgMinArcSegmentMM:
		return &a.MinMMPerArcSegment
	case ArgArcSegmentsPerSec:
		return &a.ArcSegmentsPerSec
	case ArgMMMaxArcError:
		return &a.MMMaxArcError
	}
	return nil
}

// Value returns an argument formatted for display.
func (a Arguments) Value(name string) string {
	switch name {
	case ArgG90InfluencesExtruder:
		if a.G90InfluencesExtruder {
			return "True"
		}
		return "False"
	case ArgMinArcSegments, ArgMinCircleSegments:
		return strconv.Itoa(a.MinArcSegments)
	case ArgNArcCorrection:
		return strconv.Itoa(a.NArcCorrection)
	}
	if p := a.float(name); p != nil {
		return strconv.FormatFloat(*p, 'f', 2, 64)
	}
	return ""
}

// Validate rejects negative lengths and counts.
func (a Arguments) Validate() error {
	for _, n := range a.Used {
		var neg bool
		switch n {
		case ArgG90InfluencesExtruder:
			continue
		case ArgMinArcSegments, ArgMinCircleSegments:
			neg = a.MinArcSegments < 0
		case ArgNArcCorrection:
			neg = a.NArcCorrection < 0
		default:
			neg = *a.float(n) < 0
		}
		if neg {
			return config.NewError(config.ErrInvalid, n, a.Value(n), "must not be negative")
		}
	}
	return nil
}

// Description lists the arguments the way --print-firmware-defaults
// shows them.
func (a Arguments) Description() string {
	var sb strings.Builder
	sb.WriteString("Firmware Arguments:\n")
	fmt.Fprintf(&sb, "\t%-28s: %s\n", "Firmware Type", a.Type)
	version := a.Version
	if version == Latest(a.Type) {
		version += " (" + LatestRelease + ")"
	}
	fmt.Fprintf(&sb, "\t%-28s: %s\n", "Firmware Version", version)
	for _, n := range describeOrder {
		if a.Uses(n) {
			fmt.Fprintf(&sb, "\t%-28s: %s\n", n, a.Value(n))
		}
	}
	if unused := a.Unused(); len(unused) > 0 {
		fmt.Fprintf(&sb, "The following parameters do not apply to this firmware version: %s\n", strings.Join(unused, ", "))
	}
	return sb.String()
}

func (a Arguments) Table() string { return a.Description() }
