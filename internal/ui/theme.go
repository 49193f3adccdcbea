package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatColors tints each attribute in the stats view.
	StatColors map[string]string
}

// Styles builds the lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	on := func(bg, text string) lipgloss.Style { return fg(text).Background(lipgloss.Color(bg)) }
	boxed := func(b lipgloss.Border, color string) lipgloss.Style {
		return lipgloss.NewStyle().Border(b).BorderForeground(lipgloss.Color(color))
	}

	return Styles{
		Surface:     on(t.Surface, t.Text),
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:     on(t.Surface, t.Text).Padding(0, 1),
		Footer:     fg(t.Muted).Padding(0, 1),
		Logo:       fg(t.Accent).Bold(true),
		Selected:   on(t.SelectionBg, t.SelectionText),
		DockActive: on(t.Accent, t.Background).Bold(true).Padding(0, 1),
		DockIdle:   fg(t.Muted).Padding(0, 1),
		Panel:      boxed(lipgloss.RoundedBorder(), t.Border).Padding(0, 1),
		Modal: boxed(lipgloss.DoubleBorder(), t.BorderFocus).
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(1, 3),

		statColors: t.StatColors,
		fallback:   t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Surface lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header     lipgloss.Style
	Footer     lipgloss.Style
	Logo       lipgloss.Style
	Selected   lipgloss.Style
	DockActive lipgloss.Style
	DockIdle   lipgloss.Style
	Panel      lipgloss.Style
	Modal      lipgloss.Style

	statColors map[string]string
	fallback   string
}

// StatStyle returns the foreground style for a stat name.
func (s Styles) StatStyle(stat string) lipgloss.Style {
	color := s.statColors[stat]
	if color == "" {
		color = s.fallback
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// StatColor returns the raw hex color for a stat.
func (s Styles) StatColor(stat string) string {
	if c := s.statColors[stat]; c != "" {
		return c
	}
	return s.fallback
}

var themes = map[string]Theme{
	"Monarch": monarchTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Monarch", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return monarchTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func monarchTheme() Theme {
	// System-window blues over near-black.
	return Theme{
		Name: "Monarch",

		Background: "#05070F",
		Surface:    "#0B1226",
		SurfaceAlt: "#101A36",

		SelectionBg:   "#1E3A8A",
		SelectionText: "#E0F2FE",

		Border:      "#1E293B",
		BorderFocus: "#38BDF8",

		Text:    "#E2E8F0",
		Muted:   "#7C8DB5",
		Faint:   "#3B4A6B",
		Accent:  "#38BDF8",
		Success: "#34D399",
		Warning: "#FBBF24",
		Danger:  "#F43F5E",
		Info:    "#A78BFA",

		StatColors: map[string]string{
			"discipline":   "#38BDF8",
			"strength":     "#F43F5E",
			"intelligence": "#A78BFA",
			"spirituality": "#34D399",
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		StatColors: map[string]string{
			"discipline":   "#0284c7", // sky-600
			"strength":     "#dc2626", // red-600
			"intelligence": "#8b5cf6", // violet-500
			"spirituality": "#14b8a6", // teal-500
		},
	}
}
