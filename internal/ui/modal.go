package ui

import (
	"strings"

	"github.com/subhaanfazeel/solo/internal/deadline"
	"github.com/subhaanfazeel/solo/internal/notify"
)

// renderModal draws the presenter's current event over the screen.
func (m Model) renderModal(ev notify.Event) string {
	styles := m.theme.Styles()

	titleStyle := styles.AccentText.Bold(true)
	if ev.Title == deadline.Title || ev.Title == "Error" {
		titleStyle = styles.DangerText
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(ev.Title))
	if ev.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Text.Render(ev.Body))
	}
	b.WriteString("\n\n")
	if ev.RequiresAck {
		b.WriteString(styles.Selected.Render(" OK ") + " " + styles.FaintText.Render("enter"))
	} else {
		b.WriteString(styles.FaintText.Render("press any key"))
	}

	box := styles.Modal
	if m.width > 0 {
		box = box.MaxWidth(max(m.width-4, 20))
	}
	return m.place(box.Render(b.String()))
}
