package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/robosemantics/episode-segmenter/core/annotation"
	"github.com/robosemantics/episode-segmenter/core/events"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	stampStyle  = lipgloss.NewStyle().Faint(true)
	footerStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	kindStyles = map[string]lipgloss.Style{
		string(events.KindContact):       lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		string(events.KindLossOfContact): lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		string(events.KindPickUp):        lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
	}
)

type (
	envelopeMsg   annotation.Envelope
	feedClosedMsg struct{}
	runDoneMsg    struct{ err error }
)

// timelineModel renders the live event feed of a segmentation run: a
// scrolling viewport of annotated events above a status line.
type timelineModel struct {
	feed   <-chan annotation.Envelope
	result <-chan error

	viewport viewport.Model
	spinner  spinner.Model

	envelopes []annotation.Envelope
	replaying bool
	err       error
	ready     bool
}

func newTimelineModel(feed <-chan annotation.Envelope, result <-chan error) timelineModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))),
	)
	return timelineModel{
		feed:      feed,
		result:    result,
		spinner:   sp,
		replaying: true,
	}
}

func (m timelineModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.awaitEnvelope(), m.awaitResult())
}

func (m timelineModel) awaitEnvelope() tea.Cmd {
	return func() tea.Msg {
		envelope, ok := <-m.feed
		if !ok {
			return feedClosedMsg{}
		}
		return envelopeMsg(envelope)
	}
}

func (m timelineModel) awaitResult() tea.Cmd {
	return func() tea.Msg {
		return runDoneMsg{err: <-m.result}
	}
}

func (m timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.renderTimeline())

	case envelopeMsg:
		m.envelopes = append(m.envelopes, annotation.Envelope(msg))
		atBottom := m.viewport.AtBottom()
		m.viewport.SetContent(m.renderTimeline())
		if atBottom {
			m.viewport.GotoBottom()
		}
		return m, m.awaitEnvelope()

	case feedClosedMsg:
		m.replaying = false
		return m, nil

	case runDoneMsg:
		m.replaying = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.replaying {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m timelineModel) renderTimeline() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for _, envelope := range m.envelopes {
		style, ok := kindStyles[envelope.Kind]
		if !ok {
			style = lipgloss.NewStyle()
		}
		line := fmt.Sprintf("%s %s %s",
			stampStyle.Render(envelope.Timestamp.Format("15:04:05.000")),
			style.Render(fmt.Sprintf("%-22s", envelope.Kind)),
			envelope.Summary,
		)
		b.WriteString(wordwrap.String(line, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m timelineModel) View() string {
	if !m.ready {
		return "initializing..."
	}

	header := titleStyle.Render("episode timeline")

	var footer string
	switch {
	case m.err != nil:
		footer = errorStyle.Render(fmt.Sprintf("run failed: %v (q to quit)", m.err))
	case m.replaying:
		footer = fmt.Sprintf("%s replaying, %d events", m.spinner.View(), len(m.envelopes))
	default:
		footer = footerStyle.Render(fmt.Sprintf("done, %d events (q to quit)", len(m.envelopes)))
	}

	return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), footer)
}
