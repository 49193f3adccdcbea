package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/subhaanfazeel/solo/internal/deadline"
	"github.com/subhaanfazeel/solo/internal/solo"
	"github.com/subhaanfazeel/solo/internal/state"
)

var viewTitles = map[state.View]string{
	state.ViewMain:     "Status",
	state.ViewTasks:    "Quests",
	state.ViewNonNeg:   "Non-negotiables",
	state.ViewShop:     "Shop",
	state.ViewDiary:    "Diary",
	state.ViewStats:    "Stats",
	state.ViewSettings: "Settings",
	state.ViewLogs:     "Logs",
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderDock())
	b.WriteString("\n\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{styles.Logo.Render("SOLO")}

	if m.hasFrame {
		data := m.frame.State.Data
		greeting := m.frame.Greeting.Text
		if m.frame.Greeting.NeedsName {
			parts = append(parts, styles.MutedText.Render(greeting+" (n)"))
		} else {
			parts = append(parts, styles.Text.Bold(true).Render(greeting))
		}
		parts = append(parts,
			styles.WarningText.Render(fmt.Sprintf("◆ %d", data.Shop.Coins)),
			styles.AccentText.Render(fmt.Sprintf("streak %d", data.Streak)),
		)
	}

	switch {
	case m.offline != nil || m.frame.State.IsOffline():
		parts = append(parts, styles.DangerText.Render("OFFLINE"))
	case !m.frame.State.LastUpdated.IsZero():
		parts = append(parts, styles.FaintText.Render(m.frame.State.LastUpdated.Format("15:04:05")))
	}
	if m.busy {
		parts = append(parts, styles.InfoText.Render("syncing..."))
	}

	return styles.Header.Width(max(m.width, 1)).Render(strings.Join(parts, "  "))
}

func (m Model) renderDock() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, len(state.Views))
	for i, v := range state.Views {
		label := fmt.Sprintf("%d %s", i+1, viewTitles[v])
		if v == m.view {
			tabs = append(tabs, styles.DockActive.Render(label))
		} else {
			tabs = append(tabs, styles.DockIdle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderContent() string {
	if m.view == state.ViewLogs {
		return m.renderLogs()
	}
	if !m.hasFrame {
		styles := m.theme.Styles()
		if m.offline != nil {
			return styles.DangerText.Render("Offline.") + " " +
				styles.MutedText.Render("Cannot reach the server; press r to retry.")
		}
		return styles.MutedText.Render("Loading...")
	}

	switch m.view {
	case state.ViewTasks:
		return m.renderTasks()
	case state.ViewNonNeg:
		return m.renderNonNeg()
	case state.ViewShop:
		return m.renderShop()
	case state.ViewDiary:
		return m.renderDiary()
	case state.ViewStats:
		return m.renderStats()
	case state.ViewSettings:
		return m.renderSettings()
	default:
		return m.renderStatus()
	}
}

func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	data := m.frame.State.Data
	var b strings.Builder

	if m.frame.Greeting.NeedsName {
		b.WriteString(styles.MutedText.Render(m.frame.Greeting.Text + ": press n"))
	} else {
		b.WriteString(styles.Text.Bold(true).Render(m.frame.Greeting.Text))
	}
	b.WriteString("\n\n")

	done := 0
	for _, t := range data.Tasks {
		if t.Done {
			done++
		}
	}
	rows := [][2]string{
		{"Quests", fmt.Sprintf("%d/%d done", done, len(data.Tasks))},
		{"Coins", fmt.Sprintf("%d", data.Shop.Coins)},
		{"Streak", fmt.Sprintf("%d (best %d)", data.Streak, data.BestStreak)},
		{"Completed", fmt.Sprintf("%d all time", data.Stats.TasksCompleted)},
	}
	if data.Shop.SkipTokens > 0 {
		rows = append(rows, [2]string{"Skip tokens", fmt.Sprintf("%d", data.Shop.SkipTokens)})
	}
	if data.Shop.XPBoostActive {
		rows = append(rows, [2]string{"XP boost", "active"})
	}
	for _, r := range rows {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%-12s", r[0])))
		b.WriteString(styles.Text.Render(r[1]))
		b.WriteString("\n")
	}

	if len(data.OngoingPunishments) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("Penalties"))
		b.WriteString("\n")
		for _, p := range data.OngoingPunishments {
			b.WriteString("  " + styles.Text.Render(p.Text))
			if p.Timestamp != "" {
				b.WriteString(" " + styles.FaintText.Render(p.Timestamp))
			}
			b.WriteString("\n")
		}
	}
	return styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderTasks() string {
	styles := m.theme.Styles()
	data := m.frame.State.Data
	if len(data.Tasks) == 0 {
		return styles.MutedText.Render("No quests yet. Press a to add one.")
	}

	now := m.now()
	lines := make([]string, 0, len(data.Tasks))
	for i, t := range data.Tasks {
		lines = append(lines, m.selectable(i, m.taskLine(t, now)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) taskLine(t solo.Task, now time.Time) string {
	styles := m.theme.Styles()
	check := "[ ]"
	text := styles.Text.Render(t.Text)
	if t.Done {
		check = "[x]"
		text = styles.FaintText.Strikethrough(true).Render(t.Text)
	}

	parts := []string{check, text}
	if t.HasDeadline() {
		cd := deadline.Countdown(t.Deadline, now, time.Local)
		style := styles.MutedText
		switch {
		case cd.Failed:
			style = styles.DangerText
		case cd.Bad:
			style = styles.FaintText
		case cd.Soon:
			style = styles.WarningText
		}
		parts = append(parts, style.Render(cd.Label))
	}

	reward := fmt.Sprintf("+%dc", t.Coins)
	if t.XP > 0 {
		reward += fmt.Sprintf(" +%dxp", t.XP)
	}
	stat := string(solo.ParseStat(t.Stat))
	parts = append(parts, styles.WarningText.Render(reward), styles.StatStyle(stat).Render(stat))
	return strings.Join(parts, " ")
}

func (m Model) renderNonNeg() string {
	styles := m.theme.Styles()
	data := m.frame.State.Data
	var lines []string

	lines = append(lines, styles.AccentText.Bold(true).Render("Rules"))
	if len(data.NonNegotiables) == 0 {
		lines = append(lines, styles.MutedText.Render("  none (a to add)"))
	}
	for i, r := range data.NonNegotiables {
		lines = append(lines, m.selectable(i, "• "+r.Text))
	}

	lines = append(lines, "", styles.DangerText.Render("Punishments"))
	if len(data.Punishments) == 0 {
		lines = append(lines, styles.MutedText.Render("  none (p to add)"))
	}
	offset := len(data.NonNegotiables)
	for i, p := range data.Punishments {
		lines = append(lines, m.selectable(offset+i, "• "+p))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderShop() string {
	styles := m.theme.Styles()
	var lines []string
	lines = append(lines, styles.WarningText.Render(fmt.Sprintf("Balance: %d coins", m.frame.State.Data.Shop.Coins)), "")

	switch {
	case m.shopErr != nil:
		lines = append(lines, styles.DangerText.Render("Could not load the shop: ")+styles.MutedText.Render(m.shopErr.Error()))
	case m.shopLoading && len(m.shopItems) == 0:
		lines = append(lines, styles.MutedText.Render("Loading shop..."))
	case len(m.shopItems) == 0:
		lines = append(lines, styles.MutedText.Render("The shop is empty. Press a to add a reward."))
	}
	for i, item := range m.shopItems {
		line := fmt.Sprintf("%-24s %5d", item.Name, item.Price)
		if item.Effect != "" {
			line += styles.InfoText.Render(fmt.Sprintf("  %s %d", item.Effect, item.Value))
		}
		lines = append(lines, m.selectable(i, line))
	}
	if items := m.frame.State.Data.Shop.Items; len(items) > 0 {
		lines = append(lines, "", styles.MutedText.Render("Owned: "+strings.Join(items, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDiary() string {
	styles := m.theme.Styles()
	data := m.frame.State.Data
	if len(data.Diary) == 0 {
		return styles.MutedText.Render("Nothing written yet. Press a to add an entry.")
	}
	lines := make([]string, 0, len(data.Diary))
	for i, d := range data.Diary {
		ts := styles.FaintText.Render(d.Timestamp)
		lines = append(lines, m.selectable(i, ts+" "+d.Text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStats() string {
	styles := m.theme.Styles()
	data := m.frame.State.Data
	width := min(max(m.width-40, 10), 40)

	var lines []string
	for _, stat := range solo.Stats {
		lvl := data.Progress(stat)
		bar := progress.New(
			progress.WithSolidFill(styles.StatColor(string(stat))),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		)
		label := styles.StatStyle(string(stat)).Render(fmt.Sprintf("%-13s", stat))
		level := styles.Text.Render(fmt.Sprintf("Lv %-3d", lvl.Level))
		xp := styles.MutedText.Render(fmt.Sprintf("%d/%d xp", lvl.XP, lvl.Threshold()))
		lines = append(lines, label+" "+level+" "+bar.ViewAs(float64(lvl.Percent())/100)+" "+xp)
	}
	lines = append(lines, "",
		styles.MutedText.Render(fmt.Sprintf("Best streak %d · %d quests completed", data.BestStreak, data.Stats.TasksCompleted)))
	return strings.Join(lines, "\n")
}

func (m Model) renderSettings() string {
	styles := m.theme.Styles()
	box := "[ ]"
	if m.sounds {
		box = "[x]"
	}
	lines := []string{
		styles.Text.Render(box + " Sounds"),
		"",
		styles.MutedText.Render("space toggle · s save · R reset all data"),
	}
	if m.confirm {
		lines = append(lines, "", styles.DangerText.Render("Reset ALL data? This cannot be undone. (y/N)"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) selectable(i int, line string) string {
	if i == m.cursor[m.view] {
		return m.theme.Styles().Selected.Render("> " + line)
	}
	return "  " + line
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	hints := map[state.View]string{
		state.ViewMain:     "n name",
		state.ViewTasks:    "a add · space toggle · e edit · d delete",
		state.ViewNonNeg:   "a rule · p punishment · e edit · d delete",
		state.ViewShop:     "b buy · a add · d delete",
		state.ViewDiary:    "a write",
		state.ViewSettings: "space toggle · s save · R reset",
		state.ViewLogs:     "j/k scroll · r reload",
	}
	parts := []string{}
	if m.status != "" {
		parts = append(parts, styles.WarningText.Render(m.status))
	}
	if h := hints[m.view]; h != "" {
		parts = append(parts, styles.MutedText.Render(h))
	}
	parts = append(parts, styles.FaintText.Render("tab views · r refresh · ? help · q quit"))
	return styles.Footer.Render(strings.Join(parts, "  "))
}

func (m Model) renderForm() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(m.form.title))
	b.WriteString("\n\n")
	for i, f := range m.form.fields {
		label := styles.MutedText.Render(fmt.Sprintf("%-11s", f.label))
		if i == m.form.focus {
			label = styles.AccentText.Render(fmt.Sprintf("%-11s", f.label))
		}
		b.WriteString(label + " " + f.input.View() + "\n")
	}
	if m.form.err != "" {
		b.WriteString("\n" + styles.DangerText.Render(m.form.err) + "\n")
	}
	b.WriteString("\n" + styles.FaintText.Render("enter next/submit · tab move · esc cancel"))
	return m.place(styles.Panel.Render(b.String()))
}

func (m Model) place(content string) string {
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
