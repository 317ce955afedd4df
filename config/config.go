// Package config handles the optional arcwelder.yaml file and the typed
// errors reported for bad parameters.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is an arcwelder.yaml configuration file. All values are optional
// and act as defaults for command flags. Flags always override file values.
type File struct {
	Log        LogConfig        `yaml:"log"`
	Weld       WeldConfig       `yaml:"weld"`
	Straighten StraightenConfig `yaml:"straighten"`
}

type LogConfig struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type WeldConfig struct {
	ResolutionMM                 *float64 `yaml:"resolution_mm"`
	PathTolerancePercent         *float64 `yaml:"path_tolerance_percent"`
	MaxRadiusMM                  *float64 `yaml:"max_radius_mm"`
	Allow3DArcs                  *bool    `yaml:"allow_3d_arcs"`
	AllowTravelArcs              *bool    `yaml:"allow_travel_arcs"`
	AllowDynamicPrecision        *bool    `yaml:"allow_dynamic_precision"`
	DefaultXYZPrecision          *int     `yaml:"default_xyz_precision"`
	DefaultEPrecision            *int     `yaml:"default_e_precision"`
	MMPerArcSegment              *float64 `yaml:"mm_per_arc_segment"`
	MinArcSegments               *int     `yaml:"min_arc_segments"`
	ExtrusionRateVariancePercent *float64 `yaml:"extrusion_rate_variance_percent"`
	MaxGcodeLength               *int     `yaml:"max_gcode_length"`
	G90InfluencesExtruder        *bool    `yaml:"g90_influences_extruder"`
	ProgressType                 *string  `yaml:"progress_type"`
}

type StraightenConfig struct {
	FirmwareType    *string `yaml:"firmware_type"`
	FirmwareVersion *string `yaml:"firmware_version"`
	ProgressType    *string `yaml:"progress_type"`

	// Arguments holds firmware argument overrides by argument name
	// (mm_per_arc_segment, min_circle_segments, ...).
	Arguments map[string]string `yaml:"arguments"`
}

// Load reads a YAML config file, expands environment variables, and
// unmarshals it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return &f, nil
}

func putFloat(m map[string]string, name string, v *float64) {
	if v != nil {
		m[name] = strconv.FormatFloat(*v, 'f', -1, 64)
	}
}

func putInt(m map[string]string, name string, v *int) {
	if v != nil {
		m[name] = strconv.Itoa(*v)
	}
}

func putBool(m map[string]string, name string, v *bool) {
	if v != nil {
		m[name] = strconv.FormatBool(*v)
	}
}

func putString(m map[string]string, name string, v *string) {
	if v != nil {
		m[name] = *v
	}
}

// Flags returns the values that are set, keyed by command flag name.
func (w WeldConfig) Flags() map[string]string {
	m := make(map[string]string)
	putFloat(m, "resolution-mm", w.ResolutionMM)
	putFloat(m, "path-tolerance-percent", w.PathTolerancePercent)
	putFloat(m, "max-radius-mm", w.MaxRadiusMM)
	putBool(m, "allow-3d-arcs", w.Allow3DArcs)
	putBool(m, "allow-travel-arcs", w.AllowTravelArcs)
	putBool(m, "allow-dynamic-precision", w.AllowDynamicPrecision)
	putInt(m, "default-xyz-precision", w.DefaultXYZPrecision)
	putInt(m, "default-e-precision", w.DefaultEPrecision)
	putFloat(m, "mm-per-arc-segment", w.MMPerArcSegment)
	putInt(m, "min-arc-segments", w.MinArcSegments)
	putFloat(m, "extrusion-rate-variance-percent", w.ExtrusionRateVariancePercent)
	putInt(m, "max-gcode-length", w.MaxGcodeLength)
	putBool(m, "g90-influences-extruder", w.G90InfluencesExtruder)
	putString(m, "progress-type", w.ProgressType)
	return m
}

// Flags returns the values that are set, keyed by command flag name.
// Firmware argument names map to flags by replacing '_' with '-'.
func (s StraightenConfig) Flags() map[string]string {
	m := make(map[string]string)
	putString(m, "firmware-type", s.FirmwareType)
	putString(m, "firmware-version", s.FirmwareVersion)
	putString(m, "progress-type", s.ProgressType)
	for k, v := range s.Arguments {
		m[strings.ReplaceAll(k, "_", "-")] = v
	}
	return m
}
