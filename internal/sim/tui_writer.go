package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"lorastat-sim/internal/config"
	"lorastat-sim/internal/stats"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// eventMsg carries one packet event log line.
type eventMsg struct{ line string }

// snapshotMsg carries a live counter update.
type snapshotMsg struct{ stats.Snapshot }

// summaryMsg carries the final run summary.
type summaryMsg struct{ stats.RunSummary }

const maxEventLines = 500

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	deliveredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lostStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	expiredStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TUIWriter renders a live run monitor using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.Study) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_ = p.Start()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e stats.Event) error {
	var style lipgloss.Style
	switch e.Type {
	case stats.EventDelivered:
		style = deliveredStyle
	case stats.EventSent, stats.EventAcknowledgment:
		style = dimStyle
	default:
		style = lostStyle
	}
	line := fmt.Sprintf("%s %s pkt=%d dev=%d class=%s rate=%d",
		dimStyle.Render(fmt.Sprintf("%10.0fms", e.TimeMs)),
		style.Render(fmt.Sprintf("%-22s", string(e.Type))),
		e.PacketID, e.DeviceID, e.Class, e.RateIdx)
	w.program.Send(eventMsg{line: line})
	return nil
}

// WriteSnapshot pushes live counters into the header.
func (w *TUIWriter) WriteSnapshot(s stats.Snapshot) {
	w.program.Send(snapshotMsg{Snapshot: s})
}

// WriteSummary implements SummaryWriter.
func (w *TUIWriter) WriteSummary(s stats.RunSummary) error {
	w.program.Send(summaryMsg{RunSummary: s})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg        *config.Study
	table      table.Model
	vp         viewport.Model
	logs       []string
	snap       stats.Snapshot
	summary    *stats.RunSummary
	wrap       bool
	autoscroll bool
	width      int
	height     int
}

func newTUIModel(cfg *config.Study) tuiModel {
	cols := []table.Column{
		{Title: "Config", Width: 16},
		{Title: "Value", Width: 10},
		{Title: "Config", Width: 16},
		{Title: "Value", Width: 10},
	}
	rows := []table.Row{
		{"Devices", strconv.Itoa(cfg.Devices), "Gateways", strconv.Itoa(cfg.Gateways)},
		{"Radius (m)", fmt.Sprintf("%.0f", cfg.RadiusMeters), "Duration (s)", strconv.Itoa(cfg.DurationS)},
		{"TX Mode", cfg.TxMode, "Payload (B)", strconv.Itoa(cfg.PayloadBytes)},
		{"IMR Period (s)", strconv.Itoa(cfg.IMRPeriodS), "PCC Period (s)", strconv.Itoa(cfg.PCCPeriodS)},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		cfg:        cfg,
		table:      t,
		vp:         viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.vp.Height = m.viewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		case "a":
			m.autoscroll = !m.autoscroll
		case "up", "k":
			m.vp.LineUp(1)
		case "down", "j":
			m.vp.LineDown(1)
		}
	case eventMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxEventLines {
			m.logs = m.logs[len(m.logs)-maxEventLines:]
		}
		m.refreshViewport()
	case snapshotMsg:
		m.snap = msg.Snapshot
	case summaryMsg:
		s := msg.RunSummary
		m.summary = &s
		m.vp.Height = m.viewportHeight()
		m.refreshViewport()
	}
	return m, nil
}

func (m *tuiModel) viewportHeight() int {
	h := m.height - lipgloss.Height(m.headerView()) - 1
	if m.summary != nil {
		h -= lipgloss.Height(m.summaryView())
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m *tuiModel) refreshViewport() {
	lines := m.logs
	if m.wrap && m.vp.Width > 0 {
		wrapped := make([]string, 0, len(lines))
		for _, l := range lines {
			wrapped = append(wrapped, wordwrap.String(l, m.vp.Width))
		}
		lines = wrapped
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) headerView() string {
	status := fmt.Sprintf("run=%d sent=%d %s %s %s retx=%d pdr=%.2f%%",
		m.snap.Run,
		m.snap.Sent,
		deliveredStyle.Render(fmt.Sprintf("received=%d", m.snap.Received)),
		lostStyle.Render(fmt.Sprintf("lost=%d", m.snap.Lost)),
		expiredStyle.Render(fmt.Sprintf("expired=%d", m.snap.Expired)),
		m.snap.Retransmissions,
		m.snap.PDR)
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("lorastat-sim"),
		m.table.View(),
		status)
}

func (m *tuiModel) summaryView() string {
	s := m.summary
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("summary"),
		fmt.Sprintf("pdr=%.2f%% imr=%.2f%% pcc=%.2f%% avg_delay=%.2fms energy=%.2fJ throughput=%.2fbps",
			s.PDR, s.IMRPDR, s.PCCPDR, s.AvgDelayMs, s.TotalEnergyJ, s.ThroughputBps))
}

func (m tuiModel) View() string {
	parts := []string{m.headerView(), m.vp.View()}
	if m.summary != nil {
		parts = append(parts, m.summaryView())
	}
	parts = append(parts, dimStyle.Render("q quit  w wrap  a autoscroll  j/k scroll"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
