package ui

import (
	"fmt"
	"strings"
)

type helpItem struct {
	key  string
	desc string
}

type helpSection struct {
	title string
	items []helpItem
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"tab/shift+tab", "Next/previous view"},
				{"1-8", "Jump to view"},
				{"j/k", "Move down/up"},
				{"g/G", "Go to top/bottom"},
			},
		},
		{
			title: "Quests",
			items: []helpItem{
				{"a", "Add quest"},
				{"space", "Toggle done"},
				{"e", "Edit"},
				{"d", "Delete"},
			},
		},
		{
			title: "Non-negotiables & Shop",
			items: []helpItem{
				{"a", "Add rule / reward"},
				{"p", "Add punishment"},
				{"b", "Buy reward"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"r", "Refresh from server"},
				{"n", "Set name (status view)"},
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, section := range sections {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(styles.WarningText.Render(fmt.Sprintf("  %-14s", item.key)))
			b.WriteString(styles.MutedText.Render(item.desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	return m.place(styles.Panel.Render(b.String()))
}
