package progress

import (
	"fmt"
	"strings"

	pbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	dashTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dashMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dashErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dashOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dashPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const dashEventLog = 6

// Dashboard is the batch-mode Observer: a bubbletea program showing one
// progress bar per job plus a rolling event log.
type Dashboard struct {
	prog   *tea.Program
	cancel func()
}

// NewDashboard builds the dashboard. cancel, when non-nil, is invoked once
// if the user quits the UI before the batch finishes, so in-flight jobs can
// be aborted.
func NewDashboard(cancel func()) *Dashboard {
	m := dashModel{byID: make(map[string]*dashRow)}
	return &Dashboard{
		prog:   tea.NewProgram(m),
		cancel: cancel,
	}
}

// Run blocks until Finish is called or the user quits.
func (d *Dashboard) Run() error {
	final, err := d.prog.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(dashModel); ok && m.quitByUser && d.cancel != nil {
		d.cancel()
	}
	return nil
}

// Finish tells the UI the batch is complete and shuts it down.
func (d *Dashboard) Finish() {
	d.prog.Send(dashFinishMsg{})
}

func (d *Dashboard) JobStarted(ev JobStart)           { d.prog.Send(ev) }
func (d *Dashboard) SegmentCompleted(ev SegmentEvent) { d.prog.Send(ev) }
func (d *Dashboard) JobCompleted(ev JobEnd)           { d.prog.Send(ev) }

type dashFinishMsg struct{}

type dashRow struct {
	start   JobStart
	done    int
	failed  int
	status  string
	message string
	bar     pbar.Model
}

type dashModel struct {
	rows       []*dashRow
	byID       map[string]*dashRow
	events     []string
	width      int
	quitByUser bool
}

func (m dashModel) Init() tea.Cmd {
	return nil
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitByUser = true
			return m, tea.Quit
		}
		return m, nil

	case JobStart:
		row := &dashRow{
			start:  msg,
			status: "downloading",
			bar:    pbar.New(pbar.WithDefaultGradient()),
		}
		row.bar.Width = 30
		m.rows = append(m.rows, row)
		m.byID[msg.JobID] = row
		m.pushEvent(fmt.Sprintf("start %s (%d segments)", msg.Slug, msg.Segments))
		return m, nil

	case SegmentEvent:
		row := m.byID[msg.JobID]
		if row == nil {
			return m, nil
		}
		row.done++
		if !msg.OK {
			row.failed++
			m.pushEvent(fmt.Sprintf("%s: segment %d failed", row.start.Slug, msg.Index))
		}
		return m, nil

	case JobEnd:
		row := m.byID[msg.JobID]
		if row == nil {
			return m, nil
		}
		row.status = msg.Status
		row.message = msg.Message
		if msg.Message != "" {
			m.pushEvent(fmt.Sprintf("%s: %s (%s)", row.start.Slug, msg.Status, msg.Message))
		} else {
			m.pushEvent(fmt.Sprintf("%s: %s", row.start.Slug, msg.Status))
		}
		return m, nil

	case dashFinishMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *dashModel) pushEvent(line string) {
	m.events = append(m.events, line)
	if len(m.events) > dashEventLog {
		m.events = m.events[len(m.events)-dashEventLog:]
	}
}

func (m dashModel) View() string {
	var b strings.Builder
	b.WriteString(dashTitleStyle.Render("hanime-downloader"))
	b.WriteString("\n\n")

	for _, row := range m.rows {
		ratio := 0.0
		if row.start.Segments > 0 {
			ratio = float64(row.done) / float64(row.start.Segments)
		}

		label := fmt.Sprintf("[%d/%d] %-24s", row.start.Index, row.start.Total, truncate(row.start.Slug, 24))
		counts := fmt.Sprintf(" %d/%d", row.done, row.start.Segments)
		if row.failed > 0 {
			counts += dashErrStyle.Render(fmt.Sprintf(" !%d", row.failed))
		}

		var status string
		switch row.status {
		case "completed":
			status = dashOKStyle.Render(" done")
		case "failed":
			status = dashErrStyle.Render(" failed")
		default:
			status = dashMutedStyle.Render(" " + row.status)
		}

		b.WriteString(label)
		b.WriteString(" ")
		b.WriteString(row.bar.ViewAs(ratio))
		b.WriteString(counts)
		b.WriteString(status)
		b.WriteString("\n")
	}

	if len(m.events) > 0 {
		b.WriteString("\n")
		b.WriteString(dashPanelStyle.Render(dashMutedStyle.Render(strings.Join(m.events, "\n"))))
		b.WriteString("\n")
	}
	b.WriteString(dashMutedStyle.Render("\npress q to abort\n"))
	return b.String()
}

// truncate limits s to n runes, never splitting a multibyte character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
