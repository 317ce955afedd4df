package firmware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldOfView/ArcWelderLib/config"
)

func TestParseType(t *testing.T) {
	ft, err := ParseType("marlin-2")
	require.NoError(t, err)
	assert.Equal(t, Marlin2, ft)

	_, err = ParseType("klipper")
	assert.True(t, errors.Is(err, config.ErrUnknownFirmware))
}

func TestListVersionNames(t *testing.T) {
	assert.Equal(t, []string{"2.0.0", "2.0.9.1"}, ListVersionNames(Marlin2))
	assert.Equal(t, []string{"3.9.3", "3.10.0", "3.11.0"}, ListVersionNames(Prusa))
	for _, ft := range Types() {
		assert.NotEmpty(t, ListVersionNames(ft), ft)
	}
	assert.Empty(t, ListVersionNames("NONE"))
}

func TestDefaultArguments(t *testing.T) {
	a, err := DefaultArguments(Marlin2, LatestRelease)
	require.NoError(t, err)
	assert.Equal(t, "2.0.9.1", a.Version)
	assert.Equal(t, 72, a.MinArcSegments)
	assert.Equal(t, 0.1, a.MinMMPerArcSegment)

	b, err := DefaultArguments(Marlin2, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	a, err = DefaultArguments(Smoothieware, "2016-12-01")
	require.NoError(t, err)
	assert.Equal(t, 5, a.NArcCorrection)
	assert.Equal(t, 0.01, a.MMMaxArcError)
	assert.True(t, a.G90InfluencesExtruder)

	_, err = DefaultArguments(Marlin1, "9.9.9")
	assert.True(t, errors.Is(err, config.ErrUnknownVersion))
}

func TestDefaultArguments_Immutable(t *testing.T) {
	a, err := DefaultArguments(Repetier, LatestRelease)
	require.NoError(t, err)
	a.Used[0] = "changed"
	a.MMPerArcSegment = 5

	b, err := DefaultArguments(Repetier, LatestRelease)
	require.NoError(t, err)
	assert.Equal(t, ArgMMPerArcSegment, b.Used[0])
	assert.Equal(t, 1.0, b.MMPerArcSegment)
}

func TestAvailableArguments(t *testing.T) {
	used, err := AvailableArguments(Marlin2, "2.0.9.1")
	require.NoError(t, err)
	assert.Contains(t, used, ArgMaxArcSegmentMM)
	assert.NotContains(t, used, ArgMMPerArcSegment)

	_, err = AvailableArguments("NONE", LatestRelease)
	assert.True(t, errors.Is(err, config.ErrUnknownFirmware))
}

func TestConfigure(t *testing.T) {
	a, err := Configure(Marlin2, LatestRelease, map[string]string{
		"max-arc-segment-mm":  "2",
		"min_circle_segments": "36",
		"--n-arc-correction":  "10",
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, a.MMPerArcSegment)
	assert.Equal(t, 36, a.MinArcSegments)
	assert.Equal(t, 10, a.NArcCorrection)

	a, err = Configure(Prusa, "3.10.0", map[string]string{"g90_g91_influences_extruder": "FALSE"})
	require.NoError(t, err)
	assert.False(t, a.G90InfluencesExtruder)
}

func TestConfigure_Inapplicable(t *testing.T) {
	_, err := Configure(Marlin2, LatestRelease, map[string]string{"mm_per_arc_segment": "2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInapplicable))

	var cerr *config.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, ArgMMPerArcSegment, cerr.Param)
	assert.Contains(t, cerr.Reason, "--max-arc-segment-mm")

	_, err = Configure(Marlin1, LatestRelease, map[string]string{"mm_max_arc_error": "0.1"})
	assert.True(t, errors.Is(err, config.ErrInapplicable))

	_, err = Configure(Smoothieware, LatestRelease, map[string]string{"mm_max_arc_error": "0.1"})
	assert.NoError(t, err)
}

func TestConfigure_Invalid(t *testing.T) {
	_, err := Configure(Marlin2, "2.0.0", map[string]string{"min_arc_segments": "many"})
	assert.True(t, errors.Is(err, config.ErrInvalid))

	_, err = Configure(Marlin2, "2.0.0", map[string]string{"mm_per_arc_segment": "-1"})
	assert.True(t, errors.Is(err, config.ErrInvalid))

	_, err = Configure(Marlin2, "2.0.0", map[string]string{"arc_speed": "1"})
	assert.True(t, errors.Is(err, config.ErrInvalid))
}

func TestNew(t *testing.T) {
	f, err := New(Smoothieware, LatestRelease, nil)
	require.NoError(t, err)
	assert.Equal(t, "2021-06-19", f.Arguments().Version)

	_, err = New(Marlin1, LatestRelease, map[string]string{"min_arc_segments": "10"})
	assert.True(t, errors.Is(err, config.ErrInapplicable))
}

func TestArguments_Description(t *testing.T) {
	a, err := DefaultArguments(Marlin2, LatestRelease)
	require.NoError(t, err)
	d := a.Description()
	assert.Contains(t, d, "Firmware Arguments:\n")
	assert.Contains(t, d, "\tFirmware Type               : MARLIN_2\n")
	assert.Contains(t, d, "\tFirmware Version            : 2.0.9.1 (LATEST_RELEASE)\n")
	assert.Contains(t, d, "\tg90_g91_influences_extruder : False\n")
	assert.Contains(t, d, "\tmin_circle_segments         : 72\n")
	assert.Contains(t, d, "\tmax_arc_segment_mm          : 1.00\n")
	assert.Contains(t, d, "The following parameters do not apply to this firmware version: "+
		"mm_per_arc_segment, arc_segments_per_r, min_mm_per_arc_segment, min_arc_segments, mm_max_arc_error\n")

	a, err = DefaultArguments(Marlin2, "2.0.0")
	require.NoError(t, err)
	assert.Contains(t, a.Description(), "\tFirmware Version            : 2.0.0\n")
}
