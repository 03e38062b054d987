package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"cellar/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, keys KeyMap, formKeys FormKeyMap, width int) string {
	if mode == model.ModeInsert {
		if screen == model.ScreenPrompt {
			return renderHelpLine([]string{helpKey("enter", "confirm"), helpBinding(formKeys.Cancel)}, width)
		}
		return renderHelpLine([]string{
			helpBinding(formKeys.NextField),
			helpBinding(formKeys.PrevField),
			helpBinding(formKeys.Save),
			helpBinding(formKeys.Cancel),
		}, width)
	}

	switch screen {
	case model.ScreenCellar:
		return renderHelpLine([]string{
			helpKey("j/k", "navigate"),
			helpBinding(keys.Add),
			helpBinding(keys.Scan),
			helpKey("+/-", "qty"),
			helpBinding(keys.Drink),
			helpBinding(keys.LogTasting),
			helpBinding(keys.Delete),
			helpBinding(keys.Search),
			helpKey("tab", "switch"),
			helpBinding(keys.Help),
		}, width)
	case model.ScreenDrinkNow:
		return renderHelpLine([]string{
			helpKey("j/k", "navigate"),
			helpBinding(keys.Drink),
			helpBinding(keys.LogTasting),
			helpBinding(keys.Select),
			helpKey("tab", "switch"),
			helpBinding(keys.Quit),
		}, width)
	case model.ScreenHistory:
		return renderHelpLine([]string{
			helpKey("j/k", "navigate"),
			helpBinding(keys.Add),
			helpBinding(keys.Edit),
			helpBinding(keys.Delete),
			helpKey("o/O", "sort"),
			helpKey("n/N", "filter"),
			helpKey("tab", "switch"),
			helpBinding(keys.Quit),
		}, width)
	case model.ScreenCellarDetail:
		return renderHelpLine([]string{
			helpBinding(keys.Back),
			helpBinding(keys.Edit),
			helpKey("+/-", "qty"),
			helpBinding(keys.Drink),
			helpBinding(keys.LogTasting),
			helpBinding(keys.Delete),
		}, width)
	case model.ScreenHistoryDetail:
		return renderHelpLine([]string{
			helpBinding(keys.Back),
			helpBinding(keys.Edit),
			helpBinding(keys.Delete),
		}, width)
	default:
		return renderHelpLine([]string{
			helpKey("j/k", "navigate"),
			helpBinding(keys.Quit),
		}, width)
	}
}

func helpBinding(b key.Binding) string {
	h := b.Help()
	return helpKey(h.Key, h.Desc)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"tab / shift+tab", "Next / previous tab"},
			{"enter", "Open detail"},
			{"esc / h", "Back"},
			{"gg / G", "Jump to top / bottom"},
			{"ctrl+d / ctrl+u", "Half page down / up"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}),
		titleSection("Table"),
		helpSection([]helpItem{
			{"[ / ]", "Previous / next column"},
			{": then 1-9", "Jump to column"},
			{"o / O", "Sort active column asc/desc"},
			{"c / C", "Hide active column / show all"},
			{"n / N", "Filter by selected value / clear"},
		}),
		titleSection("Cellar"),
		helpSection([]helpItem{
			{"a", "Add a wine"},
			{"s", "Scan a label photo"},
			{"e", "Edit selected wine"},
			{"+ / -", "Add / remove one bottle"},
			{"d", "Drink one bottle (logs a tasting)"},
			{"l", "Log a tasting with notes and rating"},
			{"x x", "Delete selected wine"},
			{"/", "Search name, producer or region"},
			{"I / X", "Import / export JSON"},
		}),
		titleSection("History"),
		helpSection([]helpItem{
			{"a", "Log a tasting"},
			{"e", "Edit selected tasting"},
			{"x x", "Delete selected tasting"},
		}),
		titleSection("Forms"),
		helpSection([]helpItem{
			{"tab / enter", "Next field"},
			{"shift+tab", "Previous field"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
