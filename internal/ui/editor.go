package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/chronomap/internal/editor"
	"github.com/five82/chronomap/internal/geodata"
)

type editorFocus int

const (
	focusRows editorFocus = iota
	focusFields
)

// editorState holds the feature editor view.
type editorState struct {
	layer   int // index into geodata.LayerTypes
	session *editor.Session
	rows    []editor.Row
	row     int
	fields  []editor.Field
	field   int
	focus   editorFocus
	editing bool
	input   textinput.Model
	list    viewport.Model
	err     string
}

// openEditor starts an editor session over the raw data of the loaded
// period.
func (m *Model) openEditor() {
	raw := m.orch.Raw()
	if raw.PeriodID == "" {
		m.status = "Немає завантажених даних для редагування"
		return
	}
	lt := geodata.LayerTypes[m.editor.layer]
	m.editor.session = editor.New(m.store, raw.PeriodID, lt, raw.Layer(lt))
	m.editor.row = 0
	m.editor.field = 0
	m.editor.focus = focusRows
	m.editor.editing = false
	m.editor.err = ""
	m.editor.list.SetYOffset(0)
	m.currentView = ViewEditor
	m.surface.PointerAt(-1, -1)
	m.refreshEditor()
}

func (m *Model) switchLayer(step int) {
	n := len(geodata.LayerTypes)
	m.editor.layer = ((m.editor.layer+step)%n + n) % n
	m.openEditor()
}

// refreshEditor re-reads rows and fields from the session.
func (m *Model) refreshEditor() {
	s := m.editor.session
	if s == nil {
		return
	}
	m.editor.rows = s.Rows()
	m.editor.row = clamp(m.editor.row, 0, len(m.editor.rows)-1)
	m.editor.fields = nil
	if len(m.editor.rows) > 0 {
		fields, err := s.Fields(m.editor.row)
		if err != nil {
			m.editor.err = err.Error()
		}
		m.editor.fields = fields
	}
	m.editor.field = clamp(m.editor.field, 0, len(m.editor.fields)-1)
	m.syncList()
}

// syncList renders the row list into the viewport and scrolls the selection
// into view.
func (m *Model) syncList() {
	styles := m.theme.Styles()
	width := max(m.editor.list.Width, 1)
	lines := make([]string, len(m.editor.rows))
	for i, r := range m.editor.rows {
		mark := "  "
		if r.Modified {
			mark = "● "
		}
		text := padRight(truncate(fmt.Sprintf("%s%4d  %s", mark, r.Index, r.Label), width), width)
		switch {
		case i == m.editor.row && m.editor.focus == focusRows:
			lines[i] = styles.Selected.Render(text)
		case i == m.editor.row:
			lines[i] = styles.AccentText.Render(text)
		case r.Modified:
			lines[i] = styles.WarningText.Render(text)
		default:
			lines[i] = styles.Text.Render(text)
		}
	}
	list := &m.editor.list
	list.SetContent(strings.Join(lines, "\n"))
	if m.editor.row < list.YOffset {
		list.SetYOffset(m.editor.row)
	} else if m.editor.row >= list.YOffset+list.Height {
		list.SetYOffset(m.editor.row - list.Height + 1)
	}
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editor.editing {
		return m.handleFieldInput(msg)
	}
	m.editor.err = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.NextLayer):
		m.switchLayer(1)
		return m, nil
	case msg.String() == "shift+tab":
		m.switchLayer(-1)
		return m, nil
	}

	if m.editor.focus == focusFields {
		return m.handleFieldsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewMap
		m.editor.session = nil
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveRow(-max(m.editor.list.Height-1, 1))
	case key.Matches(msg, m.keys.PageDown):
		m.moveRow(max(m.editor.list.Height-1, 1))
	case key.Matches(msg, m.keys.Confirm), msg.String() == "right":
		if len(m.editor.fields) > 0 {
			m.editor.focus = focusFields
			m.syncList()
		}
	case key.Matches(msg, m.keys.RevertAll):
		m.revertAll()
	}
	return m, nil
}

func (m Model) handleFieldsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), msg.String() == "left":
		m.editor.focus = focusRows
		m.syncList()
	case key.Matches(msg, m.keys.Up):
		m.editor.field = clamp(m.editor.field-1, 0, len(m.editor.fields)-1)
	case key.Matches(msg, m.keys.Down):
		m.editor.field = clamp(m.editor.field+1, 0, len(m.editor.fields)-1)
	case key.Matches(msg, m.keys.Confirm):
		if len(m.editor.fields) == 0 {
			return m, nil
		}
		m.editor.editing = true
		m.editor.input.SetValue(m.editor.fields[m.editor.field].Display)
		m.editor.input.CursorEnd()
		return m, m.editor.input.Focus()
	case key.Matches(msg, m.keys.Revert):
		if len(m.editor.fields) == 0 {
			return m, nil
		}
		f := m.editor.fields[m.editor.field]
		if !f.Modified {
			return m, nil
		}
		if err := m.editor.session.Revert(m.editor.rows[m.editor.row].Index, f.Key); err != nil {
			m.editor.err = err.Error()
		}
		m.refreshEditor()
	case key.Matches(msg, m.keys.RevertAll):
		m.revertAll()
	}
	return m, nil
}

func (m Model) handleFieldInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.editor.editing = false
		m.editor.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.editor.editing = false
		m.editor.input.Blur()
		if len(m.editor.fields) == 0 {
			return m, nil
		}
		f := m.editor.fields[m.editor.field]
		if err := m.editor.session.Edit(m.editor.rows[m.editor.row].Index, f.Key, m.editor.input.Value()); err != nil {
			m.editor.err = err.Error()
		}
		m.refreshEditor()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor.input, cmd = m.editor.input.Update(msg)
	return m, cmd
}

func (m *Model) moveRow(delta int) {
	if len(m.editor.rows) == 0 {
		return
	}
	m.editor.row = clamp(m.editor.row+delta, 0, len(m.editor.rows)-1)
	m.editor.field = 0
	m.refreshEditor()
}

func (m *Model) revertAll() {
	if len(m.editor.rows) == 0 {
		return
	}
	if err := m.editor.session.RevertAll(m.editor.rows[m.editor.row].Index); err != nil {
		m.editor.err = err.Error()
	}
	m.refreshEditor()
}

// renderEditor renders the layer tabs, the feature list and the fields of
// the selected feature.
func (m Model) renderEditor() string {
	styles := m.theme.Styles()
	s := m.editor.session

	var tabs []string
	for i, lt := range geodata.LayerTypes {
		style := styles.PeriodIdle
		if i == m.editor.layer {
			style = styles.PeriodActive
		}
		tabs = append(tabs, style.Render(string(lt)))
	}
	title := styles.Title.Render("Редактор · " + s.Period())
	header := title + "  " + strings.Join(tabs, " ")
	if n := m.store.Count(); n > 0 {
		header += "  " + styles.Badge.Render(fmt.Sprintf("✎ %d", n))
	}

	bodyHeight := m.editor.list.Height
	fieldsWidth := max(m.width-m.editor.list.Width-3, 10)
	fields := styles.Panel.
		Width(fieldsWidth).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(m.renderFields(styles, fieldsWidth-2))

	var list string
	if len(m.editor.rows) == 0 {
		list = lipgloss.NewStyle().Width(m.editor.list.Width).Height(bodyHeight).Render(styles.MutedText.Render("Немає об'єктів"))
	} else {
		list = m.editor.list.View()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", fields)

	var footer string
	switch {
	case m.editor.err != "":
		footer = styles.DangerText.Render(m.editor.err)
	case m.editor.editing:
		footer = "enter save · esc cancel"
	case m.editor.focus == focusFields:
		footer = "enter edit · r revert field · R revert feature · esc back"
	default:
		footer = "tab layer · enter fields · R revert feature · esc map"
	}

	var b strings.Builder
	b.WriteString(styles.Header.Width(m.width).MaxWidth(m.width).Render(header))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(styles.Footer.Width(m.width).MaxWidth(m.width).Render(footer))
	return b.String()
}

func (m Model) renderFields(styles Styles, width int) string {
	if len(m.editor.fields) == 0 {
		return ""
	}
	keyWidth := 0
	for _, f := range m.editor.fields {
		keyWidth = max(keyWidth, lipgloss.Width(f.Key))
	}
	keyWidth = min(keyWidth, width/3)

	row := m.editor.rows[m.editor.row]
	var b strings.Builder
	b.WriteString(styles.Title.Render(truncate(row.Label, width)))
	b.WriteString("\n\n")
	for i, f := range m.editor.fields {
		value := f.Display
		if f.Value == nil {
			value = "null"
		}
		text := padRight(truncate(f.Key, keyWidth), keyWidth) + "  " + truncate(value, max(width-keyWidth-2, 1))
		switch {
		case i == m.editor.field && m.editor.focus == focusFields:
			b.WriteString(styles.Selected.Render(text))
		case f.Modified:
			b.WriteString(styles.WarningText.Render(text))
		default:
			b.WriteString(styles.Text.Render(text))
		}
		b.WriteString("\n")
		if i == m.editor.field && m.editor.editing {
			b.WriteString(m.editor.input.View())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
