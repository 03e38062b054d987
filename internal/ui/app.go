package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"cellar/internal/cellar"
	"cellar/internal/enrich"
	"cellar/internal/model"
	"cellar/internal/transfer"
	"cellar/internal/util"
)

// Options wires the root model to the rest of the application.
type Options struct {
	Context   context.Context
	Engine    *cellar.Engine
	Pipeline  *enrich.Pipeline
	Logger    zerolog.Logger
	ConfigDir string
	TermCaps  TerminalCapabilities
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx              context.Context
	engine           *cellar.Engine
	pipeline         *enrich.Pipeline
	log              zerolog.Logger
	configDir        string
	termCapabilities TerminalCapabilities

	screen model.Screen
	tab    model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	error         string
	warning       string
	info          string
	showingHelp   bool
	columnJump    bool
	pendingDelete string
	search        string

	cellarTable   *tableModel[model.CellarEntry]
	drinkNowTable *tableModel[model.CellarEntry]
	historyTable  *tableModel[model.HistoryEntry]
	cellarDetail  *CellarDetailModel
	historyDetail *HistoryDetailModel
	form          *EntryFormModel
	prompt        *PromptModel

	keys     KeyMap
	formKeys FormKeyMap
	prefs    UIPreferences
}

var tabs = []struct {
	name   string
	screen model.Screen
}{
	{"Cellar", model.ScreenCellar},
	{"Drink Now", model.ScreenDrinkNow},
	{"History", model.ScreenHistory},
}

// New creates a new root model and loads the current collections.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		ctx:              ctx,
		engine:           opts.Engine,
		pipeline:         opts.Pipeline,
		log:              opts.Logger,
		configDir:        opts.ConfigDir,
		termCapabilities: opts.TermCaps,
		screen:           model.ScreenCellar,
		tab:              model.ScreenCellar,
		mode:             model.ModeNav,
		gState:           GStateIdle,
		keys:             DefaultKeyMap(),
		formKeys:         DefaultFormKeyMap(),
		prefs:            loadUIPreferences(opts.ConfigDir),
	}
	m.cellarTable = newCellarTable(m.engine.CurrentYear)
	m.cellarTable.ApplyPrefs(m.prefs.Cellar)
	m.drinkNowTable = newDrinkNowTable(m.engine.CurrentYear)
	m.drinkNowTable.ApplyPrefs(m.prefs.DrinkNow)
	m.historyTable = newHistoryTable(m.engine.Now)
	m.historyTable.ApplyPrefs(m.prefs.History)
	m.reload()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("cellar")
}

// reload refreshes every view from the engine.
func (m *Model) reload() {
	m.cellarTable.SetRows(m.engine.Search(cellar.Filter{Query: m.search}))
	m.drinkNowTable.SetRows(m.engine.Recommendations())
	m.historyTable.SetRows(m.engine.History())

	if m.cellarDetail != nil {
		entry, ok := m.engine.CellarEntry(m.cellarDetail.entry.ID)
		if ok {
			m.cellarDetail = NewCellarDetailModel(entry, m.engine.CurrentYear())
		} else {
			m.cellarDetail = nil
			if m.screen == model.ScreenCellarDetail {
				m.screen = m.tab
			}
		}
	}
	if m.historyDetail != nil {
		entry, ok := m.engine.HistoryEntry(m.historyDetail.entry.ID)
		if ok {
			m.historyDetail = NewHistoryDetailModel(entry, m.engine.Now())
		} else {
			m.historyDetail = nil
			if m.screen == model.ScreenHistoryDetail {
				m.screen = m.tab
			}
		}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeNav && m.columnJump {
			return m.handleColumnJump(msg)
		}

		if key.Matches(msg, m.keys.Help) && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeNav {
			return m.handleNavMode(msg)
		}
		return m.handleInsertMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		m.info = ""
		return m, nil

	case model.InfoMsg:
		m.info = msg.Text
		return m, nil

	case entrySubmittedMsg:
		if m.form != nil && m.form.scanning {
			m.pipeline.Cancel()
		}
		return m, dispatchCmd(m.ctx, m.engine, commandForForm(msg))

	case mutationDoneMsg:
		m.closeOverlay()
		m.reload()
		m.error = ""
		m.warning = msg.warning
		m.info = describeMutation(msg)
		return m, nil

	case promptSubmittedMsg:
		return m.handlePromptSubmitted(msg)

	case model.FormCancelledMsg:
		if m.form != nil && m.form.scanning {
			m.pipeline.Cancel()
		}
		m.closeOverlay()
		return m, nil

	case labelReadMsg:
		gen := msg.result.Gen
		if !m.scanTarget(gen, msg.result.Stale) {
			m.log.Debug().Uint64("gen", gen).Msg("dropping stale label result")
			return m, nil
		}
		if msg.preview != "" {
			m.form.preview = msg.preview
		}
		if msg.err != nil {
			m.form.scanning = false
			m.form.error = msg.err.Error()
			return m, nil
		}
		if m.form.applyLabel(msg.result) {
			return m, lookupWindowCmd(m.ctx, m.pipeline, gen, msg.result.Draft)
		}
		return m, nil

	case windowFoundMsg:
		gen := msg.result.Gen
		if !m.scanTarget(gen, msg.result.Stale) {
			m.log.Debug().Uint64("gen", gen).Msg("dropping stale drink window")
			return m, nil
		}
		m.form.applyWindow(msg.result)
		return m, nil

	case exportDoneMsg:
		m.error = ""
		m.info = "Exported to " + msg.path
		return m, nil

	default:
		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}
	}

	return m, nil
}

// scanTarget reports whether a result for gen should still reach the open form.
func (m *Model) scanTarget(gen uint64, stale bool) bool {
	return m.form != nil && m.form.Scanning(gen) && !stale && m.pipeline.IsCurrent(gen)
}

// closeOverlay leaves a form or prompt and returns to the screen it was opened from.
func (m *Model) closeOverlay() {
	if m.form == nil && m.prompt == nil {
		return
	}
	m.form = nil
	m.prompt = nil
	m.mode = model.ModeNav
	switch {
	case m.cellarDetail != nil:
		m.screen = model.ScreenCellarDetail
	case m.historyDetail != nil:
		m.screen = model.ScreenHistoryDetail
	default:
		m.screen = m.tab
	}
}

func commandForForm(msg entrySubmittedMsg) cellar.Command {
	c := cellar.Command{ID: msg.id, Fields: msg.fields}
	switch msg.kind {
	case formEditCellar:
		c.Kind = cellar.CmdEditCellar
	case formAddHistory:
		c.Kind = cellar.CmdAddHistory
	case formEditHistory:
		c.Kind = cellar.CmdEditHistory
	case formLogTasting:
		c.Kind = cellar.CmdLogFromCellar
	default:
		c.Kind = cellar.CmdAddCellar
	}
	return c
}

func describeMutation(msg mutationDoneMsg) string {
	res := msg.result
	if !res.Applied {
		return "Nothing changed"
	}
	switch msg.kind {
	case cellar.CmdAddCellar:
		return "Added " + wineTitle(res.Cellar.Producer, res.Cellar.Name)
	case cellar.CmdEditCellar:
		if res.Removed {
			return "Quantity is zero; wine removed from the cellar"
		}
		return "Wine saved"
	case cellar.CmdDeleteCellar:
		return "Wine deleted"
	case cellar.CmdAdjustQuantity:
		if res.Removed {
			return "Last bottle removed"
		}
		return bottlesLeft(res.Cellar.Quantity)
	case cellar.CmdConsume, cellar.CmdLogFromCellar:
		if res.Removed {
			return "Tasting logged; that was the last bottle"
		}
		if res.Cellar != nil {
			return "Tasting logged; " + bottlesLeft(res.Cellar.Quantity)
		}
		return "Tasting logged"
	case cellar.CmdAddHistory:
		return "Tasting logged"
	case cellar.CmdEditHistory:
		return "Tasting saved"
	case cellar.CmdDeleteHistory:
		return "Tasting deleted"
	case cellar.CmdImport:
		n := len(res.Imported)
		if n == 1 {
			return "Imported 1 wine"
		}
		return fmt.Sprintf("Imported %d wines", n)
	default:
		return ""
	}
}

func bottlesLeft(n int) string {
	if n == 1 {
		return "1 bottle left"
	}
	return fmt.Sprintf("%d bottles left", n)
}

func (m Model) handlePromptSubmitted(msg promptSubmittedMsg) (tea.Model, tea.Cmd) {
	m.prompt = nil
	m.mode = model.ModeNav
	m.screen = m.tab

	switch msg.kind {
	case promptSearch:
		m.search = msg.value
		m.reload()
		if m.search == "" {
			m.info = "Search cleared"
		} else {
			m.info = fmt.Sprintf("Search %q: %d match(es)  ·  esc to clear", m.search, m.cellarTable.Len())
		}
		return m, nil

	case promptImport:
		if msg.value == "" {
			return m, nil
		}
		return m, importCmd(m.ctx, m.engine, msg.value)

	case promptExport:
		path := msg.value
		if path == "" {
			path = transfer.DefaultFilename(model.Both, m.engine.Now())
		}
		return m, exportCmd(m.engine, path)

	case promptScan:
		if msg.value == "" {
			return m, nil
		}
		kind := formAddCellar
		if msg.history {
			kind = formAddHistory
		}
		values := model.EntryFields{}
		if msg.history {
			values.DrinkDate = util.TodayISO(m.engine.Now())
		}
		m.openForm(kind, "", values)
		gen := m.pipeline.Begin()
		m.log.Debug().Uint64("gen", gen).Str("path", msg.value).Msg("label scan started")
		pw, ph := m.previewSize()
		return m, tea.Batch(
			m.form.BeginScan(gen, ""),
			readLabelCmd(m.ctx, m.pipeline, gen, msg.value, m.termCapabilities, pw, ph),
		)
	}
	return m, nil
}

// previewSize is the ASCII preview box, or zero when the terminal is too narrow.
func (m *Model) previewSize() (int, int) {
	if m.width < 110 {
		return 0, 0
	}
	return min(48, m.width/3), min(24, max(8, m.height-14))
}

func (m *Model) openForm(kind formKind, id string, values model.EntryFields) {
	m.form = NewEntryFormModel(kind, id, values, m.formKeys)
	m.mode = model.ModeInsert
	m.screen = model.ScreenForm
	m.error = ""
	m.warning = ""
	m.info = ""
}

func (m *Model) openPrompt(kind promptKind, title, placeholder, value string) {
	m.prompt = NewPromptModel(kind, title, placeholder, value, m.formKeys)
	m.mode = model.ModeInsert
	m.screen = model.ScreenPrompt
	m.error = ""
	m.info = ""
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	showTabs := m.isListScreen()

	contentHeight := m.height - 4
	if showTabs {
		contentHeight -= 2
	}
	for _, banner := range []string{m.error, m.warning, m.info} {
		if banner != "" {
			contentHeight--
		}
	}

	switch m.screen {
	case model.ScreenCellar:
		breadcrumbParts = []string{"Cellar"}
		content = m.cellarTable.View(m.width, contentHeight)
	case model.ScreenDrinkNow:
		breadcrumbParts = []string{"Drink Now"}
		content = m.drinkNowTable.View(m.width, contentHeight)
	case model.ScreenHistory:
		breadcrumbParts = []string{"History"}
		content = m.historyTable.View(m.width, contentHeight)
	case model.ScreenCellarDetail:
		breadcrumbParts = []string{m.tabName(), "Detail"}
		if m.cellarDetail != nil {
			breadcrumbParts[1] = wineTitle(m.cellarDetail.entry.Producer, m.cellarDetail.entry.Name)
			content = m.cellarDetail.View(m.width, contentHeight)
		}
	case model.ScreenHistoryDetail:
		breadcrumbParts = []string{"History", "Detail"}
		if m.historyDetail != nil {
			breadcrumbParts[1] = wineTitle(m.historyDetail.entry.Producer, m.historyDetail.entry.Name)
			content = m.historyDetail.View(m.width, contentHeight)
		}
	case model.ScreenForm:
		breadcrumbParts = []string{m.tabName(), "Form"}
		if m.form != nil {
			breadcrumbParts[1] = m.form.kind.title()
			content = m.form.View(m.width, contentHeight)
		}
	case model.ScreenPrompt:
		breadcrumbParts = []string{m.tabName()}
		if m.prompt != nil {
			content = m.prompt.View(m.width, contentHeight)
		}
	}

	header := m.renderHeader(breadcrumbParts)
	footer := RenderHelp(m.screen, m.mode, m.keys, m.formKeys, m.width)

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(max(0, contentHeight)).
		Render(content)

	parts := []string{header}
	if showTabs {
		parts = append(parts, renderTabs(m.screen, m.width))
	}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.warning != "" {
		parts = append(parts, WarnStyle.Width(m.width).Render(m.warning))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) isListScreen() bool {
	return m.screen == model.ScreenCellar ||
		m.screen == model.ScreenDrinkNow ||
		m.screen == model.ScreenHistory
}

func (m *Model) tabName() string {
	for _, t := range tabs {
		if t.screen == m.tab {
			return t.name
		}
	}
	return ""
}

func renderTabs(screen model.Screen, width int) string {
	var tabStrings []string
	for _, tab := range tabs {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if screen == tab.screen {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(tab.name))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func (m *Model) renderHeader(breadcrumbParts []string) string {
	title := HeaderStyle.Render("cellar")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	stats := m.engine.Stats()
	summary := fmt.Sprintf("%d bottles  ·  %s  ·  %s", stats.Bottles, util.FormatPrice(stats.TotalValue), m.engine.Now().Format("Mon 02 Jan"))
	if !m.pipeline.Enabled() {
		summary = "scan off  ·  " + summary
	}
	right := BreadcrumbStyle.Render(summary) + "  "

	padding := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m Model) handleColumnJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.columnJump = false
		m.info = ""
		return m, nil
	}
	n, err := strconv.Atoi(msg.String())
	if err != nil {
		return m, nil
	}
	table := m.currentTable()
	if table != nil && table.JumpToColumn(n) {
		m.columnJump = false
		m.info = fmt.Sprintf("Jumped to column %d", n)
		m.persistCurrentTablePrefs()
		return m, nil
	}
	m.info = fmt.Sprintf("Column %d unavailable", n)
	return m, nil
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Delete) {
		m.pendingDelete = ""
	}

	if t := m.currentTable(); t != nil {
		if handled := m.handleTableKeys(t, msg); handled {
			return m, nil
		}
	}

	if msg.String() == "g" {
		if m.gState == GStateFirstG {
			m.gState = GStateIdle
			m.withList(func(l listNavigator) { l.JumpToTop() })
			return m, nil
		}
		m.gState = GStateFirstG
		return m, nil
	}
	m.gState = GStateIdle

	if m.isListScreen() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextTab):
			m.switchTab(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.switchTab(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.withList(func(l listNavigator) { l.MoveDown() })
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.withList(func(l listNavigator) { l.MoveUp() })
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.withList(func(l listNavigator) { l.JumpToBottom() })
			return m, nil
		case key.Matches(msg, m.keys.HalfPageDown):
			m.withList(func(l listNavigator) { l.HalfPageDown(m.height / 2) })
			return m, nil
		case key.Matches(msg, m.keys.HalfPageUp):
			m.withList(func(l listNavigator) { l.HalfPageUp(m.height / 2) })
			return m, nil
		case key.Matches(msg, m.keys.Import):
			m.openPrompt(promptImport, "Import wines from JSON file", "path/to/wines.json", "")
			return m, nil
		case key.Matches(msg, m.keys.Export):
			m.openPrompt(promptExport, "Export inventory and history to", "", transfer.DefaultFilename(model.Both, m.engine.Now()))
			return m, nil
		}
	}

	switch m.screen {
	case model.ScreenCellar, model.ScreenDrinkNow, model.ScreenCellarDetail:
		return m.handleCellarNav(msg)
	case model.ScreenHistory, model.ScreenHistoryDetail:
		return m.handleHistoryNav(msg)
	}
	return m, nil
}

func (m *Model) handleTableKeys(t tableController, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.NextColumn):
		t.NextColumn()
	case key.Matches(msg, m.keys.PrevColumn):
		t.PrevColumn()
	case key.Matches(msg, m.keys.ColumnJump):
		m.columnJump = true
		m.info = "Jump to column: press 1-9 (esc to cancel)"
		return true
	case key.Matches(msg, m.keys.SortAsc):
		t.SortActiveColumn(false)
		m.info = "Sorted ascending"
	case key.Matches(msg, m.keys.SortDesc):
		t.SortActiveColumn(true)
		m.info = "Sorted descending"
	case key.Matches(msg, m.keys.HideColumn):
		if !t.HideActiveColumn() {
			m.info = "Cannot hide last visible column"
			return true
		}
		m.info = "Column hidden"
	case key.Matches(msg, m.keys.ShowColumns):
		t.ShowAllColumns()
		m.info = "All columns shown"
	case key.Matches(msg, m.keys.FilterValue):
		if !t.FilterBySelectedValue() {
			m.info = "No filterable value in selected cell"
			return true
		}
		m.info = "Filter applied from selected value"
	case key.Matches(msg, m.keys.ClearFilter):
		if !t.ClearFilter() {
			return true
		}
		m.info = "Filter cleared"
	default:
		return false
	}
	m.persistCurrentTablePrefs()
	return true
}

func (m *Model) withList(fn func(listNavigator)) {
	switch m.screen {
	case model.ScreenCellar:
		fn(m.cellarTable)
	case model.ScreenDrinkNow:
		fn(m.drinkNowTable)
	case model.ScreenHistory:
		fn(m.historyTable)
	}
}

func (m *Model) currentTable() tableController {
	switch m.screen {
	case model.ScreenCellar:
		return m.cellarTable
	case model.ScreenDrinkNow:
		return m.drinkNowTable
	case model.ScreenHistory:
		return m.historyTable
	}
	return nil
}

func (m *Model) persistCurrentTablePrefs() {
	switch m.screen {
	case model.ScreenCellar:
		m.prefs.Cellar = m.cellarTable.Prefs()
	case model.ScreenDrinkNow:
		m.prefs.DrinkNow = m.drinkNowTable.Prefs()
	case model.ScreenHistory:
		m.prefs.History = m.historyTable.Prefs()
	}
	if err := saveUIPreferences(m.configDir, m.prefs); err != nil {
		m.log.Warn().Err(err).Msg("save ui preferences failed")
	}
}

func (m *Model) switchTab(delta int) {
	idx := 0
	for i, t := range tabs {
		if t.screen == m.tab {
			idx = i
		}
	}
	idx = (idx + delta + len(tabs)) % len(tabs)
	m.tab = tabs[idx].screen
	m.screen = m.tab
	m.info = ""
}

// selectedCellar is the inventory entry the cellar keys act on.
func (m *Model) selectedCellar() (model.CellarEntry, bool) {
	switch m.screen {
	case model.ScreenCellar:
		return m.cellarTable.Selected()
	case model.ScreenDrinkNow:
		return m.drinkNowTable.Selected()
	case model.ScreenCellarDetail:
		if m.cellarDetail != nil {
			return m.cellarDetail.entry, true
		}
	}
	return model.CellarEntry{}, false
}

func (m *Model) selectedHistory() (model.HistoryEntry, bool) {
	switch m.screen {
	case model.ScreenHistory:
		return m.historyTable.Selected()
	case model.ScreenHistoryDetail:
		if m.historyDetail != nil {
			return m.historyDetail.entry, true
		}
	}
	return model.HistoryEntry{}, false
}

func (m *Model) startScan(history bool) {
	if !m.pipeline.Enabled() {
		m.info = "Label scanning is off: set ANTHROPIC_API_KEY or OPENAI_API_KEY"
		return
	}
	m.openPrompt(promptScan, "Scan a label photo", "path/to/label.jpg", "")
	m.prompt.history = history
}

func (m Model) handleCellarNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == model.ScreenCellarDetail && key.Matches(msg, m.keys.Back) {
		m.cellarDetail = nil
		m.screen = m.tab
		return m, nil
	}

	if m.screen == model.ScreenCellar {
		switch {
		case key.Matches(msg, m.keys.Add):
			m.openForm(formAddCellar, "", model.EntryFields{})
			return m, nil
		case key.Matches(msg, m.keys.Scan):
			m.startScan(false)
			return m, nil
		case key.Matches(msg, m.keys.Search):
			m.openPrompt(promptSearch, "Search name, producer or region", "", m.search)
			return m, nil
		case msg.String() == "esc" && m.search != "":
			m.search = ""
			m.reload()
			m.info = "Search cleared"
			return m, nil
		}
	}

	entry, ok := m.selectedCellar()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select) && m.screen != model.ScreenCellarDetail:
		m.cellarDetail = NewCellarDetailModel(entry, m.engine.CurrentYear())
		m.screen = model.ScreenCellarDetail
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		m.openForm(formEditCellar, entry.ID, cellar.FieldsFromCellar(entry))
		return m, nil
	case key.Matches(msg, m.keys.LogTasting):
		m.openForm(formLogTasting, entry.ID, cellar.TastingFieldsFromCellar(entry, util.TodayISO(m.engine.Now())))
		return m, nil
	case key.Matches(msg, m.keys.Increment):
		return m, dispatchCmd(m.ctx, m.engine, cellar.Command{Kind: cellar.CmdAdjustQuantity, ID: entry.ID, Delta: 1})
	case key.Matches(msg, m.keys.Decrement):
		return m, dispatchCmd(m.ctx, m.engine, cellar.Command{Kind: cellar.CmdAdjustQuantity, ID: entry.ID, Delta: -1})
	case key.Matches(msg, m.keys.Drink):
		return m, dispatchCmd(m.ctx, m.engine, cellar.Command{Kind: cellar.CmdConsume, ID: entry.ID})
	case key.Matches(msg, m.keys.Delete):
		if m.pendingDelete != entry.ID {
			m.pendingDelete = entry.ID
			m.info = fmt.Sprintf("Press x again to delete %s", wineTitle(entry.Producer, entry.Name))
			return m, nil
		}
		m.pendingDelete = ""
		return m, dispatchCmd(m.ctx, m.engine, cellar.Command{Kind: cellar.CmdDeleteCellar, ID: entry.ID})
	}
	return m, nil
}

func (m Model) handleHistoryNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == model.ScreenHistoryDetail && key.Matches(msg, m.keys.Back) {
		m.historyDetail = nil
		m.screen = m.tab
		return m, nil
	}

	if m.screen == model.ScreenHistory {
		switch {
		case key.Matches(msg, m.keys.Add):
			m.openForm(formAddHistory, "", model.EntryFields{DrinkDate: util.TodayISO(m.engine.Now())})
			return m, nil
		case key.Matches(msg, m.keys.Scan):
			m.startScan(true)
			return m, nil
		}
	}

	entry, ok := m.selectedHistory()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select) && m.screen != model.ScreenHistoryDetail:
		m.historyDetail = NewHistoryDetailModel(entry, m.engine.Now())
		m.screen = model.ScreenHistoryDetail
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		m.openForm(formEditHistory, entry.ID, cellar.FieldsFromHistory(entry))
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if m.pendingDelete != entry.ID {
			m.pendingDelete = entry.ID
			m.info = fmt.Sprintf("Press x again to delete the tasting of %s", wineTitle(entry.Producer, entry.Name))
			return m, nil
		}
		m.pendingDelete = ""
		return m, dispatchCmd(m.ctx, m.engine, cellar.Command{Kind: cellar.CmdDeleteHistory, ID: entry.ID})
	}
	return m, nil
}

// handleInsertMode routes input to the open form or prompt.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenForm:
		if m.form != nil {
			newForm, cmd := m.form.Update(msg)
			m.form = &newForm
			return m, cmd
		}
	case model.ScreenPrompt:
		if m.prompt != nil {
			newPrompt, cmd := m.prompt.Update(msg)
			m.prompt = &newPrompt
			return m, cmd
		}
	}
	return m, nil
}
