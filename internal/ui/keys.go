package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit        key.Binding
	Help        key.Binding
	ToggleTheme key.Binding
	Escape      key.Binding
	Confirm     key.Binding

	// Map
	NextPeriod key.Binding
	PrevPeriod key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	PanLeft    key.Binding
	PanRight   key.Binding
	PanUp      key.Binding
	PanDown    key.Binding
	ResetView  key.Binding
	Search     key.Binding
	Editor     key.Binding
	Export     key.Binding

	// Lists
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Editor
	NextLayer key.Binding
	Revert    key.Binding
	RevertAll key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Light/dark theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),

		NextPeriod: key.NewBinding(
			key.WithKeys("]", "tab"),
			key.WithHelp("]", "Next period"),
		),
		PrevPeriod: key.NewBinding(
			key.WithKeys("[", "shift+tab"),
			key.WithHelp("[", "Previous period"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Zoom out"),
		),
		PanLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("h/left", "Pan left"),
		),
		PanRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("l/right", "Pan right"),
		),
		PanUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("k/up", "Pan up"),
		),
		PanDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/down", "Pan down"),
		),
		ResetView: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "Reset view"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search places"),
		),
		Editor: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit features"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export overrides"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),

		NextLayer: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next layer"),
		),
		Revert: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Revert field"),
		),
		RevertAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Revert feature"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevPeriod, k.NextPeriod, k.Search, k.Editor, k.ToggleTheme, k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevPeriod, k.NextPeriod, k.ZoomIn, k.ZoomOut, k.PanLeft, k.PanRight, k.PanUp, k.PanDown, k.ResetView},
		{k.Search, k.Editor, k.Export},
		{k.NextLayer, k.Confirm, k.Revert, k.RevertAll, k.Escape},
		{k.ToggleTheme, k.Help, k.Quit},
	}
}
