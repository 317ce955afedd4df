package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldOfView/ArcWelderLib/stats"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"none", None},
		{"SIMPLE", Simple},
		{" full ", Full},
		{"tui", TUI},
		{"", Simple},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseType("fancy")
	assert.ErrorContains(t, err, "NONE, SIMPLE, FULL, or TUI")
}

func sample() stats.Progress {
	st := stats.NewRunStatistics()
	st.ArcsCreated = 7
	st.PointsCompressed = 120
	st.SourceBytes, st.TargetBytes = 2000, 1000
	st.Extrusion.AddSource(0.3)
	return stats.Progress{
		LinesProcessed: 42,
		Percent:        50,
		Elapsed:        2 * time.Second,
		Remaining:      2 * time.Second,
		Statistics:     st,
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, Printer(&buf, None, nil)(sample()))
	assert.Empty(t, buf.String())

	assert.True(t, Printer(&buf, Simple, nil)(sample()))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "50.00% complete")
	assert.Contains(t, buf.String(), "ArcsCreated: 7")

	buf.Reset()
	assert.True(t, Printer(&buf, Full, nil)(sample()))
	assert.Contains(t, buf.String(), "Extrusion Statistics")
}

func TestPrinter_Stop(t *testing.T) {
	var stop atomic.Bool
	cb := Printer(&bytes.Buffer{}, None, &stop)
	assert.True(t, cb(sample()))
	stop.Store(true)
	assert.False(t, cb(sample()))
}

func TestModel_Update(t *testing.T) {
	var stop atomic.Bool
	var m tea.Model = NewModel("Arc Welder", false, &stop)

	m, cmd := m.Update(progressMsg(sample()))
	assert.Nil(t, cmd)
	view := m.View()
	assert.Contains(t, view, "Arc Welder")
	assert.Contains(t, view, "120")
	assert.Contains(t, view, "50.00%")
	assert.Contains(t, view, "Press q")

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Nil(t, cmd)
	assert.True(t, stop.Load())
	assert.Contains(t, m.View(), "Stopping...")

	m, cmd = m.Update(doneMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Contains(t, m.View(), "Done")
}

func TestModel_Straighten(t *testing.T) {
	var stop atomic.Bool
	var m tea.Model = NewModel("Arc Straightener", true, &stop)
	p := sample()
	p.Statistics.ArcsInterpolated = 3
	p.Statistics.SegmentsGenerated = 77

	m, _ = m.Update(progressMsg(p))
	assert.Contains(t, m.View(), "77")
	assert.NotContains(t, m.View(), "Compressed")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, stop.Load())

	m, _ = m.Update(doneMsg{err: errors.New("disk full")})
	assert.Contains(t, m.View(), "Failed: disk full")
}

func TestRunTUI(t *testing.T) {
	var calls int
	err := RunTUI("Arc Welder", false, func(cb stats.Callback) error {
		for i := 0; i < 3; i++ {
			calls++
			if !cb(sample()) {
				break
			}
		}
		return nil
	}, tea.WithInput(nil), tea.WithOutput(&bytes.Buffer{}), tea.WithoutRenderer(), tea.WithoutSignalHandler())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	err = RunTUI("Arc Welder", false, func(cb stats.Callback) error {
		return errors.New("read source: boom")
	}, tea.WithInput(nil), tea.WithOutput(&bytes.Buffer{}), tea.WithoutRenderer(), tea.WithoutSignalHandler())
	assert.EqualError(t, err, "read source: boom")
}
