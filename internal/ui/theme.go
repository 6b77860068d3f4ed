package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/chronomap/internal/theme"
)

// Theme defines the chrome colours for one colour mode.
type Theme struct {
	Mode theme.Mode

	Background string
	Surface    string

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

	// MapBase is the canvas colour fills blend against; MapInk colours
	// labels drawn on the map.
	MapBase string
	MapInk  string
}

// Styles contains pre-built lipgloss styles for a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style
	Badge    lipgloss.Style
	Panel    lipgloss.Style

	PeriodActive   lipgloss.Style
	PeriodIdle     lipgloss.Style
	PeriodDisabled lipgloss.Style
}

// Styles returns lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),
		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)),
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Badge: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Warning)).
			Foreground(lipgloss.Color(t.Background)).
			Bold(true).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		PeriodActive: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)).
			Padding(0, 1),
		PeriodIdle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		PeriodDisabled: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)).
			Padding(0, 1),
	}
}

// ThemeFor returns the chrome theme of a colour mode.
func ThemeFor(mode theme.Mode) Theme {
	if mode.IsDark() {
		return darkTheme()
	}
	return lightTheme()
}

func lightTheme() Theme {
	// Tailwind stone/slate, matching the light basemap.
	return Theme{
		Mode:          theme.Light,
		Background:    "#ffffff",
		Surface:       "#f1f5f9", // slate-100
		SelectionBg:   "#0f172a", // slate-900
		SelectionText: "#ffffff",
		Border:        "#cbd5e1", // slate-300
		BorderFocus:   "#2563eb", // blue-600
		Text:          "#0f172a",
		Muted:         "#475569", // slate-600
		Faint:         "#94a3b8", // slate-400
		Accent:        "#2563eb",
		Success:       "#16a34a",
		Warning:       "#d97706",
		Danger:        "#dc2626",
		MapBase:       "#f5f5f4", // stone-100
		MapInk:        "#1c1917", // stone-900
	}
}

func darkTheme() Theme {
	return Theme{
		Mode:          theme.Dark,
		Background:    "#020617", // slate-950
		Surface:       "#0f172a", // slate-900
		SelectionBg:   "#e2e8f0", // slate-200
		SelectionText: "#0f172a",
		Border:        "#334155", // slate-700
		BorderFocus:   "#38bdf8", // sky-400
		Text:          "#e2e8f0",
		Muted:         "#94a3b8", // slate-400
		Faint:         "#475569", // slate-600
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#ef4444",
		MapBase:       "#1e293b", // slate-800
		MapInk:        "#f1f5f9",
	}
}
