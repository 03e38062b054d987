package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cellar/internal/model"
)

type promptKind int

const (
	promptScan promptKind = iota
	promptSearch
	promptImport
	promptExport
)

// PromptModel asks for a single line: a file path or a search query.
type PromptModel struct {
	kind   promptKind
	title  string
	input  textinput.Model
	cancel key.Binding
	// history reports whether a scan should fill a tasting form.
	history bool
}

// NewPromptModel creates a focused prompt.
func NewPromptModel(kind promptKind, title, placeholder, value string, keys FormKeyMap) *PromptModel {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 1024
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return &PromptModel{
		kind:   kind,
		title:  title,
		input:  in,
		cancel: keys.Cancel,
	}
}

// Update handles key input.
func (m PromptModel) Update(msg tea.Msg) (PromptModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.cancel):
		return m, func() tea.Msg { return model.FormCancelledMsg{} }
	case keyMsg.Type == tea.KeyEnter:
		submitted := promptSubmittedMsg{
			kind:    m.kind,
			value:   strings.TrimSpace(m.input.Value()),
			history: m.history,
		}
		return m, func() tea.Msg { return submitted }
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

// View renders the prompt.
func (m *PromptModel) View(width, height int) string {
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(m.title),
		"",
		ActiveBorderStyle.Width(min(80, max(20, width-12))).Render(m.input.View()),
	)
	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(body)
}
