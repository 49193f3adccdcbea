package ui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/subhaanfazeel/solo/internal/logtail"
)

// renderLogs renders the client log tail.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	switch {
	case m.logFile == "":
		return styles.MutedText.Render("Logging to a file is disabled.")
	case m.logErr != nil:
		return styles.DangerText.Render("Could not read log: ") + styles.MutedText.Render(m.logErr.Error())
	case len(m.logEntries) == 0:
		return styles.MutedText.Render("No log entries yet in " + m.logFile)
	}
	return m.logViewport.View()
}

func (m *Model) updateLogViewport() {
	atBottom := m.logViewport.AtBottom()
	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.formatLogEntry(e))
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	if atBottom || m.logViewport.YOffset == 0 {
		m.logViewport.GotoBottom()
	}
}

func (m Model) formatLogEntry(e logtail.Entry) string {
	styles := m.theme.Styles()
	if e.Time == "" && len(e.Attrs) == 0 {
		return styles.Text.Render(e.Msg)
	}

	var level lipgloss.Style
	switch {
	case e.Level >= slog.LevelError:
		level = styles.DangerText
	case e.Level >= slog.LevelWarn:
		level = styles.WarningText.Bold(true)
	case e.Level >= slog.LevelInfo:
		level = styles.SuccessText
	default:
		level = styles.InfoText
	}

	ts := e.Time
	if len(ts) >= 19 {
		ts = strings.Replace(ts[:19], "T", " ", 1)
	}

	var b strings.Builder
	b.WriteString(styles.FaintText.Render(ts))
	b.WriteString(" ")
	b.WriteString(level.Render(padLevel(e.Level)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Msg))
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(styles.AccentText.Render(a.Key + "="))
		b.WriteString(styles.MutedText.Render(a.Value))
	}
	return b.String()
}

func padLevel(l slog.Level) string {
	s := l.String()
	for len(s) < 5 {
		s += " "
	}
	return s
}
