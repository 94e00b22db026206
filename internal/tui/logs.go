package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/fleetwatch/internal/api"
)

// logsModel fetches and displays the newline-delimited job log for one
// account, newest lines first.
type logsModel struct {
	client  *api.Client
	timeout time.Duration

	width  int
	height int

	phone    string
	loading  bool
	notFound bool
	errText  string

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
}

func newLogsModel(client *api.Client, timeout time.Duration) logsModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)
	return logsModel{client: client, timeout: timeout, spinner: sp}
}

func (m *logsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	vh := h - 6
	if vh < 3 {
		vh = 3
	}
	if !m.ready {
		m.viewport = viewport.New(w-6, vh)
		m.ready = true
	} else {
		m.viewport.Width = w - 6
		m.viewport.Height = vh
	}
}

// load fetches the log for the given account.
func (m *logsModel) load(phone string) tea.Cmd {
	m.phone = phone
	m.loading = true
	m.notFound = false
	m.errText = ""
	client, timeout := m.client, m.timeout
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		text, err := client.FetchLogs(ctx, phone)
		return logsMsg{phone: phone, text: text, err: err}
	})
}

func (m logsModel) update(msg tea.Msg) (logsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case logsMsg:
		if msg.phone != m.phone {
			return m, nil
		}
		m.loading = false
		switch {
		case errors.Is(msg.err, api.ErrNotFound):
			m.notFound = true
		case msg.err != nil:
			m.errText = msg.err.Error()
		default:
			m.viewport.SetContent(formatLogLines(msg.text))
			m.viewport.GotoTop()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) && m.phone != "" {
			return m, m.load(m.phone)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// formatLogLines parses "date time LEVEL message" lines and renders them
// newest first, mirroring the server's own log page ordering.
func formatLogLines(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	var out []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			out = append(out, mutedStyle.Render(line))
			continue
		}
		ts := mutedStyle.Render(parts[0] + " " + parts[1])
		level := parts[2]
		var levelStr string
		switch level {
		case "ERROR":
			levelStr = errorStyle.Render(level)
		case "WARNING", "WARN":
			levelStr = warningStyle.Render(level)
		case "INFO":
			levelStr = successStyle.Render(level)
		default:
			levelStr = mutedStyle.Render(level)
		}
		out = append(out, fmt.Sprintf("%s %s %s", ts, levelStr, parts[3]))
	}
	return strings.Join(out, "\n")
}

func (m logsModel) view() string {
	w := m.width - 4

	title := titleStyle.Render("Logs")
	if m.phone != "" {
		title += mutedStyle.Render("  +62 " + m.phone)
	}

	var body string
	switch {
	case m.phone == "":
		body = mutedStyle.Render("Select an account and press l to view its log")
	case m.loading:
		body = m.spinner.View() + " fetching…"
	case m.notFound:
		body = mutedStyle.Render("No log recorded for this account yet")
	case m.errText != "":
		body = errorStyle.Render("Error: " + m.errText)
	default:
		body = m.viewport.View()
	}

	hint := mutedStyle.Render("↑/↓: scroll  R: reload  esc: back")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint),
	)
}
