package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cellar/internal/enrich"
	"cellar/internal/model"
	"cellar/internal/util"
)

type formKind int

const (
	formAddCellar formKind = iota
	formEditCellar
	formAddHistory
	formEditHistory
	formLogTasting
)

func (k formKind) title() string {
	switch k {
	case formEditCellar:
		return "Edit Wine"
	case formAddHistory:
		return "Log Tasting"
	case formEditHistory:
		return "Edit Tasting"
	case formLogTasting:
		return "Log From Cellar"
	default:
		return "Add Wine"
	}
}

func (k formKind) history() bool {
	return k == formAddHistory || k == formEditHistory || k == formLogTasting
}

type formField struct {
	label       string
	placeholder string
	limit       int
	suggestions []string
	target      func(*model.EntryFields) *string
}

var cellarFormFields = []formField{
	{label: "Name *", placeholder: "Cuvée or wine name", limit: 100, target: func(f *model.EntryFields) *string { return &f.Name }},
	{label: "Producer", placeholder: "Winery or domaine", limit: 100, target: func(f *model.EntryFields) *string { return &f.Producer }},
	{label: "Vintage", placeholder: "2019 (blank for NV)", limit: 4, target: func(f *model.EntryFields) *string { return &f.Vintage }},
	{label: "Varietal", placeholder: "Pinot Noir", limit: 60, suggestions: model.Varietals, target: func(f *model.EntryFields) *string { return &f.Varietal }},
	{label: "Region", placeholder: "Burgundy", limit: 60, suggestions: model.Regions, target: func(f *model.EntryFields) *string { return &f.Region }},
	{label: "Quantity", placeholder: "1", limit: 4, target: func(f *model.EntryFields) *string { return &f.Quantity }},
	{label: "Drink From", placeholder: "year", limit: 4, target: func(f *model.EntryFields) *string { return &f.DrinkFrom }},
	{label: "Drink To", placeholder: "year", limit: 4, target: func(f *model.EntryFields) *string { return &f.DrinkTo }},
	{label: "Location", placeholder: "Rack A, shelf 2", limit: 60, target: func(f *model.EntryFields) *string { return &f.Location }},
	{label: "Price", placeholder: "45.00", limit: 12, target: func(f *model.EntryFields) *string { return &f.Price }},
	{label: "Notes", placeholder: "Anything worth remembering...", limit: 500, target: func(f *model.EntryFields) *string { return &f.Notes }},
}

var historyFormFields = []formField{
	{label: "Name *", placeholder: "Cuvée or wine name", limit: 100, target: func(f *model.EntryFields) *string { return &f.Name }},
	{label: "Producer", placeholder: "Winery or domaine", limit: 100, target: func(f *model.EntryFields) *string { return &f.Producer }},
	{label: "Vintage", placeholder: "2019 (blank for NV)", limit: 4, target: func(f *model.EntryFields) *string { return &f.Vintage }},
	{label: "Varietal", placeholder: "Pinot Noir", limit: 60, suggestions: model.Varietals, target: func(f *model.EntryFields) *string { return &f.Varietal }},
	{label: "Region", placeholder: "Burgundy", limit: 60, suggestions: model.Regions, target: func(f *model.EntryFields) *string { return &f.Region }},
	{label: "Opened On", placeholder: "2025-06-20 or June 20, 2025", limit: 32, target: func(f *model.EntryFields) *string { return &f.DrinkDate }},
	{label: "Rating (1-5)", placeholder: "4", limit: 1, target: func(f *model.EntryFields) *string { return &f.Rating }},
	{label: "Tasting Notes", placeholder: "How was it?", limit: 500, target: func(f *model.EntryFields) *string { return &f.TastingNotes }},
}

// EntryFormModel edits one cellar entry or tasting. It also receives the
// results of a label scan started for it.
type EntryFormModel struct {
	kind         formKind
	id           string
	fields       []formField
	inputs       []textinput.Model
	focusedField int
	error        string
	keys         FormKeyMap

	scanGen     uint64
	scanning    bool
	scanStatus  string
	scanNote    string
	scanSpinner spinner.Model
	preview     string
}

// NewEntryFormModel creates a form prefilled with values. id names the
// entry being edited, or the cellar entry a tasting is logged from.
func NewEntryFormModel(kind formKind, id string, values model.EntryFields, keys FormKeyMap) *EntryFormModel {
	fields := cellarFormFields
	if kind.history() {
		fields = historyFormFields
	}

	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f.placeholder
		in.CharLimit = f.limit
		if len(f.suggestions) > 0 {
			in.ShowSuggestions = true
			in.SetSuggestions(f.suggestions)
			in.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
		}
		in.SetValue(*f.target(&values))
		inputs[i] = in
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &EntryFormModel{
		kind:        kind,
		id:          id,
		fields:      fields,
		inputs:      inputs,
		keys:        keys,
		scanSpinner: sp,
	}
	m.focusedField = 0
	if kind == formLogTasting {
		// descriptive fields come from the bottle; start at the rating
		m.focusedField = m.fieldIndex("Rating (1-5)")
	}
	m.inputs[m.focusedField].Focus()
	return m
}

func (m *EntryFormModel) fieldIndex(label string) int {
	for i, f := range m.fields {
		if f.label == label {
			return i
		}
	}
	return 0
}

// Values returns the raw input of every field.
func (m *EntryFormModel) Values() model.EntryFields {
	var f model.EntryFields
	for i, field := range m.fields {
		*field.target(&f) = strings.TrimSpace(m.inputs[i].Value())
	}
	return f
}

// setValues overwrites fields that are non-empty in f.
func (m *EntryFormModel) setValues(f model.EntryFields) {
	for i, field := range m.fields {
		if v := *field.target(&f); v != "" {
			m.inputs[i].SetValue(v)
		}
	}
}

// BeginScan ties the form to scan generation gen.
func (m *EntryFormModel) BeginScan(gen uint64, preview string) tea.Cmd {
	m.scanGen = gen
	m.scanning = true
	m.scanStatus = "Reading label..."
	m.scanNote = ""
	m.preview = preview
	m.error = ""
	return m.scanSpinner.Tick
}

// Scanning reports whether the form is waiting on generation gen.
func (m *EntryFormModel) Scanning(gen uint64) bool {
	return m.scanning && m.scanGen == gen
}

// applyLabel fills the form from a stage-one result and reports whether a
// drink-window lookup should follow.
func (m *EntryFormModel) applyLabel(res enrich.LabelResult) bool {
	if res.Warning != "" {
		m.scanning = false
		m.error = res.Warning
		return false
	}
	m.setValues(enrich.DraftFields(res.Draft, ""))
	if !res.Draft.Identified() {
		m.scanning = false
		m.scanNote = "Label read, but the wine could not be identified."
		return false
	}
	if m.kind.history() {
		m.scanning = false
		m.scanNote = "Label read."
		return false
	}
	m.scanStatus = "Looking up drink window..."
	return true
}

// applyWindow merges a stage-two result into the current values.
func (m *EntryFormModel) applyWindow(res enrich.WindowResult) {
	m.scanning = false
	if !res.OK {
		m.scanNote = "No drink window found; defaults will apply."
		return
	}
	values := m.Values()
	enrich.ApplyWindow(&values, res.Window)
	m.setValues(values)
	m.scanNote = "Drink window filled in."
	if res.Window.Confidence != "" {
		m.scanNote = "Drink window filled in (" + res.Window.Confidence + " confidence)."
	}
}

// Update handles all messages.
func (m EntryFormModel) Update(msg tea.Msg) (EntryFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.scanSpinner, cmd = m.scanSpinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m, func() tea.Msg {
				return model.FormCancelledMsg{}
			}
		case key.Matches(msg, m.keys.Save):
			cmd := m.save()
			return m, cmd
		case key.Matches(msg, m.keys.NextField):
			m.nextField()
			return m, nil
		case key.Matches(msg, m.keys.PrevField):
			m.prevField()
			return m, nil
		}
		var cmd tea.Cmd
		m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *EntryFormModel) nextField() {
	m.inputs[m.focusedField].Blur()
	m.focusedField = (m.focusedField + 1) % len(m.inputs)
	m.inputs[m.focusedField].Focus()
}

func (m *EntryFormModel) prevField() {
	m.inputs[m.focusedField].Blur()
	m.focusedField--
	if m.focusedField < 0 {
		m.focusedField = len(m.inputs) - 1
	}
	m.inputs[m.focusedField].Focus()
}

// submission returns the form values with recognizable dates normalized.
// Anything else unparseable goes through as typed and the engine falls back
// to its defaults.
func (m *EntryFormModel) submission() model.EntryFields {
	values := m.Values()
	if m.kind.history() {
		if date, err := util.ParseDateInput(values.DrinkDate); err == nil && date != "" {
			values.DrinkDate = date
		}
	}
	return values
}

func (m *EntryFormModel) save() tea.Cmd {
	values := m.submission()
	m.error = ""
	kind, id := m.kind, m.id
	return func() tea.Msg {
		return entrySubmittedMsg{kind: kind, id: id, fields: values}
	}
}

// View renders the form.
func (m *EntryFormModel) View(width, height int) string {
	var fields []string
	for i, f := range m.fields {
		fields = append(fields, renderFormField(f.label, m.inputs[i], m.focusedField == i))
	}

	var status []string
	if m.scanning {
		status = append(status, HelpDescStyle.Render(m.scanSpinner.View()+" "+m.scanStatus))
	}
	if m.scanNote != "" {
		status = append(status, SuccessStyle.Render(m.scanNote))
	}
	if m.error != "" {
		status = append(status, ErrorStyle.Render(m.error))
	}

	left := lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render(m.kind.title()), "", m.renderGrid(fields, width))
	if len(status) > 0 {
		left = lipgloss.JoinVertical(lipgloss.Left, left, "", strings.Join(status, "\n"))
	}

	formContent := left
	if m.preview != "" && width >= 110 {
		right := BorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render("Label"), m.preview))
		formContent = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	}

	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(formContent)
}

// renderGrid lays fields out in two columns when there is room.
func (m *EntryFormModel) renderGrid(fields []string, width int) string {
	if width < 90 || m.preview != "" {
		return strings.Join(fields, "\n")
	}
	var rows []string
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, fields[i], "  ", fields[i+1]))
		} else {
			rows = append(rows, fields[i])
		}
	}
	return strings.Join(rows, "\n")
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle.Width(40)
	if focused {
		style = ActiveBorderStyle.Width(40)
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}
