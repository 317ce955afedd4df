package progress

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	bar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fieldOfView/ArcWelderLib/stats"
)

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "stop"),
	),
}

type progressMsg stats.Progress

type doneMsg struct {
	err error
}

// Model is a Bubble Tea model showing a running job. Pressing q sets the
// stop flag; the view stays up until the job reports it is done.
type Model struct {
	title      string
	straighten bool
	stop       *atomic.Bool

	bar      bar.Model
	last     stats.Progress
	stopping bool
	done     bool
	err      error
}

func NewModel(title string, straighten bool, stop *atomic.Bool) Model {
	return Model{
		title:      title,
		straighten: straighten,
		stop:       stop,
		bar:        bar.New(bar.WithDefaultGradient(), bar.WithWidth(60)),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), 80)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.stopping = true
			m.stop.Store(true)
		}
		return m, nil

	case progressMsg:
		m.last = stats.Progress(msg)
		return m, nil

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.last.Percent / 100))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Elapsed:"), ValueStyle.Render(fmt.Sprintf("%.1fs", m.last.Elapsed.Seconds())))
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Remaining:"), ValueStyle.Render(fmt.Sprintf("%.1fs", m.last.Remaining.Seconds())))
	b.WriteString("\n")

	s := m.last.Statistics
	var boxes []string
	if m.straighten {
		boxes = []string{
			renderStatBox("Lines", fmt.Sprintf("%d", m.last.LinesProcessed), highlightColor),
			renderStatBox("Arcs", fmt.Sprintf("%d", s.ArcsInterpolated), successColor),
			renderStatBox("Segments", fmt.Sprintf("%d", s.SegmentsGenerated), warningColor),
		}
	} else {
		boxes = []string{
			renderStatBox("Lines", fmt.Sprintf("%d", m.last.LinesProcessed), highlightColor),
			renderStatBox("Arcs", fmt.Sprintf("%d", s.ArcsCreated), successColor),
			renderStatBox("Compressed", fmt.Sprintf("%d", s.PointsCompressed), warningColor),
			renderStatBox("Size Reduction", fmt.Sprintf("%.2f%%", s.SizeReduction()), primaryColor),
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render("Failed: " + m.err.Error()))
	case m.done:
		b.WriteString(SuccessStyle.Render("Done"))
	case m.stopping:
		b.WriteString(WarningStyle.Render("Stopping..."))
	default:
		b.WriteString(HelpStyle.Render("Press q or Ctrl+C to stop"))
	}
	return b.String() + "\n"
}

func renderStatBox(label, value string, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)
	valueStr := StatValueStyle.Foreground(color).Render(value)
	labelStr := StatLabelStyle.Render(label)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr))
}

// Job is a run reporting progress through the callback it is given.
type Job func(cb stats.Callback) error

// RunTUI runs job in the background while showing its progress. When the
// view is closed early the job is asked to stop and RunTUI waits for it.
func RunTUI(title string, straighten bool, job Job, opts ...tea.ProgramOption) error {
	stop := &atomic.Bool{}
	p := tea.NewProgram(NewModel(title, straighten, stop), opts...)

	finished := make(chan error, 1)
	go func() {
		err := job(func(pr stats.Progress) bool {
			p.Send(progressMsg(pr))
			return !stop.Load()
		})
		finished <- err
		p.Send(doneMsg{err: err})
	}()

	_, err := p.Run()
	stop.Store(true)
	jobErr := <-finished
	if err != nil {
		return fmt.Errorf("progress view: %w", err)
	}
	return jobErr
}
