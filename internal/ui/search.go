package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/chronomap/internal/search"
)

// searchState holds the place search overlay.
type searchState struct {
	active   bool
	input    textinput.Model
	results  []search.Result
	selected int
	err      error
}

func (m Model) openSearch() (tea.Model, tea.Cmd) {
	if m.searcher == nil {
		m.status = "Search is not configured"
		return m, nil
	}
	m.search.active = true
	m.search.input.SetValue("")
	m.search.results = nil
	m.search.selected = 0
	m.search.err = nil
	m.resize()
	return m, m.search.input.Focus()
}

func (m *Model) closeSearch() {
	m.search.active = false
	m.search.input.Blur()
	m.searcher.Query("")
	m.resize()
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeSearch()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if len(m.search.results) == 0 {
			return m, nil
		}
		r := m.search.results[m.search.selected]
		p := r.Point
		m.surface.FlyTo(p, SearchZoom)
		m.surface.SetMarker(&p)
		m.status = r.Name
		m.closeSearch()
		return m, nil
	case msg.Type == tea.KeyUp:
		if m.search.selected > 0 {
			m.search.selected--
		}
		return m, nil
	case msg.Type == tea.KeyDown:
		if m.search.selected < len(m.search.results)-1 {
			m.search.selected++
		}
		return m, nil
	}

	before := m.search.input.Value()
	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	if q := m.search.input.Value(); q != before {
		m.search.err = nil
		if !m.searcher.Query(q) {
			m.search.results = nil
			m.search.selected = 0
		}
	}
	return m, cmd
}

// handleSearchResponse applies a search response if it answers the query
// currently typed.
func (m *Model) handleSearchResponse(resp search.Response) {
	if !m.search.active || strings.TrimSpace(resp.Query) != strings.TrimSpace(m.search.input.Value()) {
		return
	}
	if resp.Err != nil {
		m.logger.Warn("place search failed", "query", resp.Query, "error", resp.Err)
		m.search.err = resp.Err
		m.search.results = nil
		m.search.selected = 0
		return
	}
	m.search.err = nil
	m.search.results = resp.Results
	m.search.selected = 0
}

func (m Model) renderSearch(styles Styles, width int) string {
	var b strings.Builder
	b.WriteString(m.search.input.View())
	b.WriteString("\n\n")

	switch {
	case m.search.err != nil:
		b.WriteString(styles.DangerText.Render("Помилка пошуку"))
	case len(m.search.results) == 0:
		if len([]rune(strings.TrimSpace(m.search.input.Value()))) >= search.MinQueryLength {
			b.WriteString(styles.MutedText.Render("Нічого не знайдено"))
		} else {
			b.WriteString(styles.FaintText.Render(fmt.Sprintf("Введіть щонайменше %d символи", search.MinQueryLength)))
		}
	}
	for i, r := range m.search.results {
		name := truncate(r.Name, width)
		line := styles.Text.Render(name)
		if i == m.search.selected {
			line = styles.Selected.Render(name)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if r.Division != "" {
			b.WriteString(styles.MutedText.Render(truncate(r.Division, width)))
			b.WriteString("\n")
		}
	}
	return b.String()
}
