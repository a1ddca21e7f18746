package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sevigo/review-pilot/internal/core"
)

type model struct {
	prURL   string
	styles  styles
	spinner spinner.Model
	started time.Time
	elapsed time.Duration

	done  bool
	state *core.RunState

	rendered string
	width    int
}

func initialModel(prURL string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{
		prURL:   prURL,
		styles:  newStyles(),
		spinner: s,
		started: time.Now(),
		width:   80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Since(m.started)
		return m, tick()

	case runFinishedMsg:
		m.done = true
		m.state = msg.state
		m.elapsed = time.Since(m.started)
		m.rendered = m.renderVerdict()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.header.Render("Review Pilot"))
	b.WriteString("\n")
	b.WriteString(m.styles.inactive.Render(m.prURL))
	b.WriteString("\n\n")

	if !m.done {
		fmt.Fprintf(&b, "%s reviewing... %s\n",
			m.spinner.View(),
			m.styles.inactive.Render(m.elapsed.Round(time.Second).String()))
		b.WriteString("\n")
		b.WriteString(m.styles.inactive.Render("press q to abort"))
		return m.styles.app.Render(b.String())
	}

	b.WriteString(m.renderTimings())
	b.WriteString("\n")

	if m.state.Err != nil {
		b.WriteString(m.styles.error.Render(fmt.Sprintf("Run failed: %v", m.state.Err)))
	} else {
		b.WriteString(m.rendered)
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.inactive.Render("press q to quit"))
	return m.styles.app.Render(b.String())
}

func (m model) renderTimings() string {
	var b strings.Builder
	for _, t := range m.state.Timings {
		b.WriteString(m.styles.label.Render(fmt.Sprintf("  %-20s", t.State)))
		b.WriteString(m.styles.inactive.Render(t.Duration.Round(time.Millisecond).String()))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.inactive.Render(fmt.Sprintf("  total %s", m.elapsed.Round(time.Millisecond))))
	b.WriteString("\n")
	return b.String()
}

// renderVerdict turns the verdict into markdown and lets glamour lay it out.
func (m model) renderVerdict() string {
	if m.state == nil || m.state.Verdict == nil {
		return ""
	}
	verdict := m.state.Verdict

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n%s\n", verdict.Decision, verdict.Summary)
	for _, c := range verdict.Comments {
		fmt.Fprintf(&md, "\n---\n**%s** `%s", c.Severity, c.FilePath)
		if c.Line > 0 {
			fmt.Fprintf(&md, ":%d", c.Line)
		}
		fmt.Fprintf(&md, "`\n\n%s\n", c.Body)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(m.width-4, 100)),
	)
	if err != nil {
		return md.String()
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return md.String()
	}

	header := m.decisionBadge(verdict.Decision)
	return header + "\n" + out
}

func (m model) decisionBadge(d core.Decision) string {
	switch d {
	case core.DecisionApprove:
		return m.styles.success.Render("APPROVED")
	case core.DecisionRequestChanges:
		return m.styles.error.Render("CHANGES REQUESTED")
	default:
		return m.styles.warning.Render("COMMENTED")
	}
}
