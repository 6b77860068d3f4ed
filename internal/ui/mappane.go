package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/chronomap/internal/geodata"
)

const mapTitle = "Українські землі у XVII-XVIII ст."

func (m Model) handleMapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.ToggleTheme):
		m.setTheme(m.theme.Mode.Toggle())
	case key.Matches(msg, m.keys.NextPeriod):
		m.selectPeriod(m.catalog.Neighbor(m.orch.Period(), 1).ID)
	case key.Matches(msg, m.keys.PrevPeriod):
		m.selectPeriod(m.catalog.Neighbor(m.orch.Period(), -1).ID)
	case key.Matches(msg, m.keys.ZoomIn):
		m.surface.ZoomBy(ZoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.surface.ZoomBy(-ZoomStep)
	case key.Matches(msg, m.keys.PanLeft):
		m.surface.Pan(-PanCols, 0)
	case key.Matches(msg, m.keys.PanRight):
		m.surface.Pan(PanCols, 0)
	case key.Matches(msg, m.keys.PanUp):
		m.surface.Pan(0, -PanRows)
	case key.Matches(msg, m.keys.PanDown):
		m.surface.Pan(0, PanRows)
	case key.Matches(msg, m.keys.ResetView):
		m.surface.SetMarker(nil)
		m.surface.FlyTo(m.home, m.homeZoom)
	case key.Matches(msg, m.keys.Search):
		return m.openSearch()
	case key.Matches(msg, m.keys.Editor):
		m.openEditor()
	case key.Matches(msg, m.keys.Export):
		m.exportOverrides()
	case key.Matches(msg, m.keys.Escape):
		m.surface.SetMarker(nil)
		m.status = ""
	default:
		// Digits pick a timeline entry directly.
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			all := m.catalog.All()
			if n := int(s[0] - '1'); n < len(all) {
				m.selectPeriod(all[n].ID)
			}
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.currentView != ViewMap || m.showHelp {
		return m, nil
	}
	col, row := msg.X, msg.Y-1
	mapW, mapH := m.mapSize()
	if col < 0 || row < 0 || col >= mapW || row >= mapH {
		col, row = -1, -1
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.surface.ZoomBy(ZoomStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.surface.ZoomBy(-ZoomStep)
	case msg.Action == tea.MouseActionMotion:
		m.surface.PointerAt(col, row)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.surface.PointerAt(col, row)
		m.surface.Click(col, row)
	}
	return m, nil
}

// renderMap renders the header, the map pane with its side panel and the
// footer.
func (m Model) renderMap() string {
	styles := m.theme.Styles()
	mapW, mapH := m.mapSize()

	body := m.surface.Render()
	if m.showInfoPanel() {
		var content string
		if m.search.active {
			content = m.renderSearch(styles, InfoPanelWidth-3)
		} else {
			content = renderInfo(m.orch.Hovered(), styles, InfoPanelWidth-3)
		}
		panel := styles.Panel.
			Width(InfoPanelWidth - 1).
			Height(mapH).
			MaxHeight(mapH).
			Render(content)
		body = lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(mapW).Render(body), panel)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderFooter(styles))
	return b.String()
}

// renderHeader renders the title, the timeline and the override badge.
func (m Model) renderHeader(styles Styles) string {
	left := styles.Title.Render(mapTitle)

	loading := m.orch.Loading()
	current := m.orch.Period()
	var buttons []string
	for _, p := range m.catalog.All() {
		style := styles.PeriodIdle
		switch {
		case p.ID == current:
			style = styles.PeriodActive
		case loading:
			style = styles.PeriodDisabled
		}
		buttons = append(buttons, style.Render(p.Label))
	}
	right := strings.Join(buttons, " ")
	if n := m.store.Count(); n > 0 {
		right += " " + styles.Badge.Render(fmt.Sprintf("✎ %d", n))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Header.Width(m.width).MaxWidth(m.width).Render(right)
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderFooter renders the status line: a pending message, the load state,
// or the key hints.
func (m Model) renderFooter(styles Styles) string {
	var line string
	switch {
	case m.status != "":
		line = styles.WarningText.Render(m.status)
	case m.orch.Loading():
		line = styles.AccentText.Render(fmt.Sprintf("Завантаження %s...", m.orch.Period()))
	case m.loadFailed():
		line = styles.DangerText.Render("Не вдалося завантажити дані: " + m.orch.Err().Error())
	default:
		var hints []string
		for _, b := range m.keys.ShortHelp() {
			h := b.Help()
			hints = append(hints, h.Key+" "+h.Desc)
		}
		line = strings.Join(hints, " · ")
	}
	if !m.showInfoPanel() {
		if name := geodata.String(m.orch.Hovered(), "name"); name != "" {
			line = styles.Title.Render(name) + "  " + line
		}
	}
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(line)
}

// loadFailed reports a load error other than a cancellation.
func (m Model) loadFailed() bool {
	err := m.orch.Err()
	return err != nil && !errors.Is(err, context.Canceled)
}
