package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cellar/internal/util"
)

// tableColumn describes one column. value is used for sorting and
// filtering; cell renders the visible text and falls back to value.
type tableColumn[T any] struct {
	key    string
	label  string
	width  int
	hidden bool
	value  func(T) string
	cell   func(T) string
	style  func(T) lipgloss.Style
}

// tableModel is a scrollable list with sortable, hideable and filterable
// columns.
type tableModel[T any] struct {
	allRows []T
	rows    []T
	id      func(T) string
	cursor  int
	offset  int
	empty   string
	noun    string

	columns      []tableColumn[T]
	activeColumn int
	sortKey      string
	sortDesc     bool
	filterKey    string
	filterValue  string
}

func newTableModel[T any](columns []tableColumn[T], id func(T) string, noun, empty string) *tableModel[T] {
	return &tableModel[T]{
		columns: columns,
		id:      id,
		noun:    noun,
		empty:   empty,
	}
}

// SetRows replaces the data and keeps the cursor on the same row when it
// still exists.
func (m *tableModel[T]) SetRows(rows []T) {
	var selected string
	if row, ok := m.Selected(); ok {
		selected = m.id(row)
	}
	m.allRows = append([]T(nil), rows...)
	m.rebuild()
	if selected == "" {
		return
	}
	for i, r := range m.rows {
		if m.id(r) == selected {
			m.cursor = i
			return
		}
	}
}

// Selected returns the row under the cursor.
func (m *tableModel[T]) Selected() (T, bool) {
	var zero T
	if len(m.rows) == 0 || m.cursor < 0 || m.cursor >= len(m.rows) {
		return zero, false
	}
	return m.rows[m.cursor], true
}

// Len returns the number of visible rows.
func (m *tableModel[T]) Len() int {
	return len(m.rows)
}

func (m *tableModel[T]) ApplyPrefs(prefs TablePrefs) {
	if prefs.SortKey != "" && m.columnIndex(prefs.SortKey) >= 0 {
		m.sortKey = prefs.SortKey
		m.sortDesc = prefs.SortDesc
	}
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if i := m.columnIndex(prefs.ActiveColumn); i >= 0 {
		m.activeColumn = i
	}
	m.ensureVisibleActiveColumn()
	m.rebuild()
}

func (m *tableModel[T]) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.key)
		}
	}
	return TablePrefs{
		SortKey:       m.sortKey,
		SortDesc:      m.sortDesc,
		HiddenColumns: hidden,
		ActiveColumn:  m.columns[m.activeColumn].key,
	}
}

func (m *tableModel[T]) columnIndex(key string) int {
	for i, c := range m.columns {
		if c.key == key {
			return i
		}
	}
	return -1
}

func (m *tableModel[T]) rebuild() {
	rows := append([]T(nil), m.allRows...)

	if m.filterKey != "" && m.filterValue != "" {
		filtered := make([]T, 0, len(rows))
		target := strings.TrimSpace(m.filterValue)
		for _, r := range rows {
			if strings.EqualFold(strings.TrimSpace(m.value(r, m.filterKey)), target) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if m.sortKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			left := strings.ToLower(m.value(rows[i], m.sortKey))
			right := strings.ToLower(m.value(rows[j], m.sortKey))
			if left == right {
				return false
			}
			if m.sortDesc {
				return left > right
			}
			return left < right
		})
	}

	m.rows = rows
	m.clampCursor()
}

func (m *tableModel[T]) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m *tableModel[T]) value(row T, key string) string {
	i := m.columnIndex(key)
	if i < 0 {
		return ""
	}
	return m.columns[i].value(row)
}

func (m *tableModel[T]) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *tableModel[T]) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *tableModel[T]) JumpToColumn(number int) bool {
	if number < 1 || number > len(m.columns) {
		return false
	}
	idx := number - 1
	if m.columns[idx].hidden {
		return false
	}
	m.activeColumn = idx
	return true
}

func (m *tableModel[T]) SortActiveColumn(desc bool) {
	m.sortKey = m.columns[m.activeColumn].key
	m.sortDesc = desc
	m.rebuild()
}

func (m *tableModel[T]) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *tableModel[T]) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

func (m *tableModel[T]) FilterBySelectedValue() bool {
	row, ok := m.Selected()
	if !ok {
		return false
	}
	key := m.columns[m.activeColumn].key
	value := strings.TrimSpace(m.value(row, key))
	if value == "" {
		return false
	}
	m.filterKey = key
	m.filterValue = value
	m.rebuild()
	return true
}

func (m *tableModel[T]) ClearFilter() bool {
	if m.filterKey == "" {
		return false
	}
	m.filterKey = ""
	m.filterValue = ""
	m.rebuild()
	return true
}

func (m *tableModel[T]) TableMeta() string {
	col := strings.ToUpper(m.columns[m.activeColumn].label)
	parts := []string{fmt.Sprintf("col %s", col)}
	if m.sortKey != "" {
		order := "asc"
		if m.sortDesc {
			order = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.sortKey), order))
	}
	if m.filterKey != "" {
		parts = append(parts, fmt.Sprintf("filter %s=%q", strings.ToUpper(m.filterKey), m.filterValue))
	}
	return strings.Join(parts, "  ·  ")
}

func (m *tableModel[T]) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *tableModel[T]) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

// View renders the table.
func (m *tableModel[T]) View(width, height int) string {
	if len(m.rows) == 0 && m.filterKey == "" {
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render(m.empty)
	}

	visible := m.visibleColumnIndexes()
	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := strings.ToUpper(col.label)
		if idx == m.activeColumn {
			label = "❋ " + label
		}
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		cellWidth := max(col.width, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}

	if len(widths) > 0 {
		extra := width - totalFixed - 4
		if extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)

	visibleHeight := max(1, height-3)
	m.scrollIntoView(visibleHeight)

	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		row := m.rows[i]
		style := NormalRowStyle
		if i%2 == 1 {
			style = style.Background(ColorStripe)
		}
		if i == m.cursor {
			style = SelectedRowStyle
		}

		cells := make([]string, 0, len(visible))
		for n, idx := range visible {
			col := m.columns[idx]
			text := ""
			if col.cell != nil {
				text = col.cell(row)
			} else {
				text = col.value(row)
			}
			if text == "" {
				text = "—"
			}
			text = util.TruncateString(text, max(1, widths[n]-2))
			if col.style != nil && i != m.cursor {
				text = col.style(row).Render(text)
			}
			cells = append(cells, text)
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	filterInfo := ""
	if m.filterKey != "" {
		filterInfo = fmt.Sprintf("  ·  filtered: %d/%d", len(m.rows), len(m.allRows))
	}
	status := StatusBarStyle.Render(fmt.Sprintf("Total %s: %d%s  ·  %s", m.noun, len(m.rows), filterInfo, m.TableMeta()))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		strings.Join(rows, "\n"),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		"",
		status,
	)
}

func (m *tableModel[T]) scrollIntoView(visibleHeight int) {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visibleHeight {
		m.offset = m.cursor - visibleHeight + 1
	}
}

// MoveDown moves the cursor down.
func (m *tableModel[T]) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
	}
}

// MoveUp moves the cursor up.
func (m *tableModel[T]) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// JumpToTop jumps to the first item.
func (m *tableModel[T]) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *tableModel[T]) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
	}
}

// HalfPageDown moves down half a page.
func (m *tableModel[T]) HalfPageDown(pageSize int) {
	m.cursor = min(m.cursor+max(1, pageSize/2), max(0, len(m.rows)-1))
}

// HalfPageUp moves up half a page.
func (m *tableModel[T]) HalfPageUp(pageSize int) {
	m.cursor = max(0, m.cursor-max(1, pageSize/2))
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}
