package weld

import (
	"math"

	"github.com/fieldOfView/ArcWelderLib/config"
)

const (
	DefaultResolutionMM                 = 0.05
	DefaultPathTolerancePercent         = 0.05
	DefaultMaxRadiusMM                  = 9999
	DefaultExtrusionRateVariancePercent = 0.05
)

// Tolerance bounds every arc the welder emits. It does not change during a
// run.
type Tolerance struct {
	ResolutionMM                 float64 `json:"resolution_mm" yaml:"resolution_mm" msgpack:"resolution_mm"`
	PathTolerancePercent         float64 `json:"path_tolerance_percent" yaml:"path_tolerance_percent" msgpack:"path_tolerance_percent"`
	MaxRadiusMM                  float64 `json:"max_radius_mm" yaml:"max_radius_mm" msgpack:"max_radius_mm"`
	Allow3DArcs                  bool    `json:"allow_3d_arcs" yaml:"allow_3d_arcs" msgpack:"allow_3d_arcs"`
	AllowTravelArcs              bool    `json:"allow_travel_arcs" yaml:"allow_travel_arcs" msgpack:"allow_travel_arcs"`
	ExtrusionRateVariancePercent float64 `json:"extrusion_rate_variance_percent" yaml:"extrusion_rate_variance_percent" msgpack:"extrusion_rate_variance_percent"`
	MaxGcodeLength               int     `json:"max_gcode_length" yaml:"max_gcode_length" msgpack:"max_gcode_length"`

	// Firmware compensation: when both are set, arcs whose radius is too
	// small for the firmware to draw min_arc_segments per circle are not
	// generated.
	MinArcSegments  int     `json:"min_arc_segments" yaml:"min_arc_segments" msgpack:"min_arc_segments"`
	MMPerArcSegment float64 `json:"mm_per_arc_segment" yaml:"mm_per_arc_segment" msgpack:"mm_per_arc_segment"`
}

func DefaultTolerance() Tolerance {
	return Tolerance{
		ResolutionMM:                 DefaultResolutionMM,
		PathTolerancePercent:         DefaultPathTolerancePercent,
		MaxRadiusMM:                  DefaultMaxRadiusMM,
		ExtrusionRateVariancePercent: DefaultExtrusionRateVariancePercent,
	}
}

// Validate checks t before a run. Out of range values that can be repaired
// are replaced and reported as warnings; the rest are returned as a
// *config.Error.
func (t Tolerance) Validate() (Tolerance, []config.Warning, error) {
	var warn []config.Warning
	if !(t.ResolutionMM > 0) {
		return t, nil, config.NewError(config.ErrInvalid, "resolution_mm", t.ResolutionMM, "must be greater than 0")
	}
	if t.PathTolerancePercent < 0 || math.IsNaN(t.PathTolerancePercent) {
		return t, nil, config.NewError(config.ErrInvalid, "path_tolerance_percent", t.PathTolerancePercent, "must not be negative")
	}
	if !(t.MaxRadiusMM > 0) {
		return t, nil, config.NewError(config.ErrInvalid, "max_radius_mm", t.MaxRadiusMM, "must be greater than 0")
	}

	if t.MaxRadiusMM > 1000000 {
		warn = append(warn, config.Warning{Param: "max_radius_mm", Value: t.MaxRadiusMM, Message: "greater than 1000000 (1km), which is not recommended"})
	}
	if t.MinArcSegments < 0 {
		warn = append(warn, config.Warning{Param: "min_arc_segments", Value: t.MinArcSegments, Message: "less than zero, setting to 0"})
		t.MinArcSegments = 0
	}
	if t.MMPerArcSegment < 0 {
		warn = append(warn, config.Warning{Param: "mm_per_arc_segment", Value: t.MMPerArcSegment, Message: "less than zero, setting to 0"})
		t.MMPerArcSegment = 0
	}
	if t.PathTolerancePercent > 0.25 {
		warn = append(warn, config.Warning{Param: "path_tolerance_percent", Value: t.PathTolerancePercent, Message: "greater than 0.25 (25%), which is not recommended"})
	} else if t.PathTolerancePercent > 0 && t.PathTolerancePercent < 0.001 {
		warn = append(warn, config.Warning{Param: "path_tolerance_percent", Value: t.PathTolerancePercent, Message: "less than 0.001 (0.1%), very few arcs will be generated"})
	}
	if t.ExtrusionRateVariancePercent < 0 {
		warn = append(warn, config.Warning{Param: "extrusion_rate_variance_percent", Value: t.ExtrusionRateVariancePercent, Message: "less than 0, using the default"})
		t.ExtrusionRateVariancePercent = DefaultExtrusionRateVariancePercent
	}
	if t.MaxGcodeLength < 0 {
		warn = append(warn, config.Warning{Param: "max_gcode_length", Value: t.MaxGcodeLength, Message: "less than 0, using no limit"})
		t.MaxGcodeLength = 0
	}
	return t, warn, nil
}

// bound is the largest deviation allowed for a chord of the given length.
func (t Tolerance) bound(chord float64) float64 {
	return math.Max(t.ResolutionMM, t.PathTolerancePercent*chord)
}
