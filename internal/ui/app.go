package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"github.com/five82/chronomap/internal/mapview"
	"github.com/five82/chronomap/internal/overrides"
	"github.com/five82/chronomap/internal/period"
	"github.com/five82/chronomap/internal/prefs"
	"github.com/five82/chronomap/internal/savefile"
	"github.com/five82/chronomap/internal/search"
	"github.com/five82/chronomap/internal/termmap"
	"github.com/five82/chronomap/internal/theme"
)

// View represents the current active view.
type View int

const (
	ViewMap View = iota
	ViewEditor
)

// Searcher runs debounced place searches. Query reports false when the
// query is too short to be sent, in which case results should be cleared.
type Searcher interface {
	Query(q string) bool
	Stop()
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Orchestrator *mapview.Orchestrator
	Surface      *termmap.Surface
	Store        *overrides.Store
	Catalog      period.Catalog
	Searcher     Searcher
	// Changes signals that map state changed outside the UI loop.
	Changes <-chan struct{}
	// SearchResults carries responses delivered by the Searcher.
	SearchResults <-chan search.Response
	Theme         theme.Mode
	// Home is the initial map centre and zoom, restored by the reset key.
	Home       orb.Point
	HomeZoom   float64
	PrefsPath  string
	ExportPath string
	Logger     *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	orch       *mapview.Orchestrator
	surface    *termmap.Surface
	store      *overrides.Store
	catalog    period.Catalog
	searcher   Searcher
	changes    <-chan struct{}
	results    <-chan search.Response
	home       orb.Point
	homeZoom   float64
	prefsPath  string
	exportPath string
	logger     *slog.Logger

	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	status      string

	search searchState
	editor editorState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	exportPath := opts.ExportPath
	if exportPath == "" {
		exportPath = "overrides.json"
	}

	input := textinput.New()
	input.Placeholder = "Пошук місця..."
	input.Prompt = "/ "
	input.CharLimit = 120

	fieldInput := textinput.New()
	fieldInput.Prompt = "> "

	m := Model{
		ctx:         ctx,
		orch:        opts.Orchestrator,
		surface:     opts.Surface,
		store:       opts.Store,
		catalog:     opts.Catalog,
		searcher:    opts.Searcher,
		changes:     opts.Changes,
		results:     opts.SearchResults,
		home:        opts.Home,
		homeZoom:    opts.HomeZoom,
		prefsPath:   prefsPath,
		exportPath:  exportPath,
		logger:      logger.With("component", "ui"),
		keys:        DefaultKeyMap(),
		theme:       ThemeFor(opts.Theme),
		currentView: ViewMap,
		search:      searchState{input: input},
		editor:      editorState{input: fieldInput, list: viewport.New(0, 0)},
	}
	m.surface.SetPalette(m.theme.MapBase, m.theme.MapInk)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), waitForSearch(m.results))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case changeMsg:
		if m.currentView == ViewEditor {
			m.refreshEditor()
		}
		return m, waitForChange(m.changes)

	case searchMsg:
		m.handleSearchResponse(search.Response(msg))
		return m, waitForSearch(m.results)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.currentView == ViewEditor {
		return m.renderEditor()
	}
	return m.renderMap()
}

// handleKey dispatches keyboard input to the active overlay or view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.search.active {
		return m.handleSearchKey(msg)
	}
	if m.currentView == ViewEditor {
		return m.handleEditorKey(msg)
	}
	return m.handleMapKey(msg)
}

func (m *Model) resize() {
	mapW, mapH := m.mapSize()
	m.surface.SetSize(mapW, mapH)
	m.editor.list.Width = m.width / 2
	m.editor.list.Height = max(m.height-chromeRows-1, 1)
}

// mapSize returns the map pane size in cells.
func (m Model) mapSize() (int, int) {
	w := m.width
	if m.showInfoPanel() {
		w -= InfoPanelWidth
	}
	return max(w, 0), max(m.height-chromeRows, 0)
}

func (m Model) showInfoPanel() bool {
	return m.width >= LayoutCompactWidth || m.search.active
}

func (m *Model) setTheme(mode theme.Mode) {
	m.theme = ThemeFor(mode)
	m.surface.SetPalette(m.theme.MapBase, m.theme.MapInk)
	m.orch.SetTheme(mode)
	m.savePrefs()
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Mode, Period: m.orch.Period()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save preferences failed", slog.String("error", err.Error()))
	}
}

// selectPeriod switches periods. The timeline is disabled while a period is
// loading.
func (m *Model) selectPeriod(id string) {
	if m.orch.Loading() {
		m.status = "Зачекайте, дані завантажуються"
		return
	}
	if err := m.orch.SelectPeriod(m.ctx, id); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.savePrefs()
}

// exportOverrides writes every pending override to the export path in the
// format the save command reads.
func (m *Model) exportOverrides() {
	entries := m.store.Entries()
	if len(entries) == 0 {
		m.status = "No overrides to export"
		return
	}
	if err := writeExport(m.exportPath, entries); err != nil {
		m.logger.Error("export overrides failed", slog.String("path", m.exportPath), slog.String("error", err.Error()))
		m.status = "Export failed: " + err.Error()
		return
	}
	m.logger.Info("overrides exported",
		slog.String("path", m.exportPath),
		slog.Int("count", len(entries)),
		slog.String("session", m.store.SessionID()),
	)
	m.status = fmt.Sprintf("Exported %d overrides to %s", len(entries), m.exportPath)
}

func writeExport(path string, entries []overrides.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := savefile.WriteEntries(f, entries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Messages

type changeMsg struct{}

type searchMsg search.Response

// Commands

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changeMsg{}
	}
}

func waitForSearch(ch <-chan search.Response) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		resp, ok := <-ch
		if !ok {
			return nil
		}
		return searchMsg(resp)
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	if m.searcher != nil {
		m.searcher.Stop()
	}
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
