package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render
)

const (
	padding  = 2
	maxWidth = 80
	// finished subjects kept on screen
	maxLines = 8
)

type tickMsg time.Time

// doneMsg is sent when the event stream is closed.
type doneMsg struct{}

type mode int

const (
	spin mode = iota
	bar
	text
)

type Widget struct {
	mode     mode
	title    string
	spinner  spinner.Model
	progress progress.Model
	percent  float64
	lines    []string
	quitting bool
	// set when the user asked to stop
	Aborted bool
}

func NewWidget() *Widget {
	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Widget{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		percent:  0,
	}
}

func (w *Widget) apply(e Event) {
	switch e.Type() {
	case EventTypeSpin:
		w.mode = spin
		w.title = e.Text()
	case EventTypeBar:
		w.mode = bar
		w.title = e.Text()
		w.percent = e.Percent()
	case EventTypeText:
		w.lines = append(w.lines, e.Text())
		if len(w.lines) > maxLines {
			w.lines = w.lines[len(w.lines)-maxLines:]
		}
	}
}

func (w *Widget) Init() tea.Cmd {
	return tea.Batch(tickCmd(), w.spinner.Tick)
}

func (w *Widget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			w.Aborted = true
			w.quitting = true
			return w, tea.Quit
		}
		return w, nil

	case Event:
		w.apply(msg)
		return w, nil

	case doneMsg:
		w.quitting = true
		w.mode = text
		return w, tea.Quit

	case tea.WindowSizeMsg:
		w.progress.Width = msg.Width - padding*2 - 4
		if w.progress.Width > maxWidth {
			w.progress.Width = maxWidth
		}
		return w, nil

	case tickMsg:
		cmd := w.progress.SetPercent(w.percent)
		return w, tea.Batch(tickCmd(), cmd)

	// FrameMsg is sent when the progress bar wants to animate itself
	case progress.FrameMsg:
		progressModel, cmd := w.progress.Update(msg)
		w.progress = progressModel.(progress.Model)
		return w, cmd

	default:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd
	}
}

func (w *Widget) View() string {
	pad := strings.Repeat(" ", padding)

	var sb strings.Builder
	sb.WriteString("\n")
	for _, l := range w.lines {
		sb.WriteString(pad + doneStyle(l) + "\n")
	}

	switch w.mode {
	case spin:
		sb.WriteString(fmt.Sprintf("\n%s%s %s\n", pad, w.spinner.View(), w.title))
	case bar:
		sb.WriteString("\n" + pad + w.title + "\n\n" + pad + w.progress.View() + "\n")
	}

	if !w.quitting {
		sb.WriteString("\n" + pad + helpStyle("Press q to stop") + "\n")
	}
	return sb.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
