// Package firmware simulates how printer firmwares break G2/G3 arcs into
// straight line segments.
package firmware

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fieldOfView/ArcWelderLib/config"
)

// Type names a firmware family.
type Type string

const (
	Marlin1      Type = "MARLIN_1"
	Marlin2      Type = "MARLIN_2"
	Repetier     Type = "REPETIER"
	Prusa        Type = "PRUSA"
	Smoothieware Type = "SMOOTHIEWARE"
)

const DefaultType = Marlin2

// LatestRelease selects the newest version of a firmware.
const LatestRelease = "LATEST_RELEASE"

// variant is what sets one firmware family apart: its version tables and
// the small angle approximation used between exact corrections.
type variant struct {
	// oldest first
	versions []Arguments
	approx   func(theta float64) (sin, cos float64)
}

var variants = map[Type]variant{
	Marlin1:      marlin1,
	Marlin2:      marlin2,
	Repetier:     repetier,
	Prusa:        prusa,
	Smoothieware: smoothieware,
}

// Types returns the supported firmware types.
func Types() []Type {
	return []Type{Marlin1, Marlin2, Repetier, Prusa, Smoothieware}
}

// ParseType accepts a type name in any case, with '-' or '_'.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if _, ok := variants[t]; !ok {
		names := make([]string, 0, len(variants))
		for _, ft := range Types() {
			names = append(names, string(ft))
		}
		return "", config.NewError(config.ErrUnknownFirmware, "firmware-type", s, "expected one of "+strings.Join(names, ", "))
	}
	return t, nil
}

// ListVersionNames returns the known versions of t, oldest first.
func ListVersionNames(t Type) []string {
	v := variants[t]
	names := make([]string, len(v.versions))
	for i, a := range v.versions {
		names[i] = a.Version
	}
	return names
}

// Latest returns the newest version of t.
func Latest(t Type) string {
	v, ok := variants[t]
	if !ok || len(v.versions) == 0 {
		return ""
	}
	return v.versions[len(v.versions)-1].Version
}

func lookup(t Type, version string) (Arguments, error) {
	v, ok := variants[t]
	if !ok {
		return Arguments{}, config.NewError(config.ErrUnknownFirmware, "firmware-type", string(t), "")
	}
	if version == "" || strings.EqualFold(version, LatestRelease) {
		return v.versions[len(v.versions)-1].Clone(), nil
	}
	for _, a := range v.versions {
		if a.Version == version {
			return a.Clone(), nil
		}
	}
	return Arguments{}, config.NewError(config.ErrUnknownVersion, "firmware-version", version,
		fmt.Sprintf("'%s' is not a valid version for %s firmware type, expected one of %s",
			version, t, strings.Join(ListVersionNames(t), ", ")))
}

// DefaultArguments returns the defaults of a firmware version. The
// version may be LatestRelease.
func DefaultArguments(t Type, version string) (Arguments, error) {
	return lookup(t, version)
}

// AvailableArguments returns the argument names a firmware version uses.
func AvailableArguments(t Type, version string) ([]string, error) {
	a, err := lookup(t, version)
	if err != nil {
		return nil, err
	}
	return a.Used, nil
}

// Configure returns the defaults of a firmware version with overrides
// applied. Override keys are argument or flag names. An override the
// version does not use fails with config.ErrInapplicable.
func Configure(t Type, version string, overrides map[string]string) (Arguments, error) {
	a, err := lookup(t, version)
	if err != nil {
		return Arguments{}, err
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := a.Set(k, overrides[k]); err != nil {
			return Arguments{}, err
		}
	}
	if err := a.Validate(); err != nil {
		return Arguments{}, err
	}
	return a, nil
}

// New returns a Firmware for the given version and overrides.
func New(t Type, version string, overrides map[string]string) (*Firmware, error) {
	a, err := Configure(t, version, overrides)
	if err != nil {
		return nil, err
	}
	return NewFirmware(a), nil
}
