package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"cellar/internal/cellar"
	"cellar/internal/model"
	"cellar/internal/util"
)

// CellarDetailModel shows one inventory entry.
type CellarDetailModel struct {
	entry model.CellarEntry
	year  int
}

// NewCellarDetailModel creates a cellar detail model.
func NewCellarDetailModel(entry model.CellarEntry, year int) *CellarDetailModel {
	return &CellarDetailModel{entry: entry, year: year}
}

// View renders the cellar detail.
func (m *CellarDetailModel) View(width, height int) string {
	e := m.entry
	status := cellar.DrinkWindowStatus(e, m.year)

	var fields []string
	fields = append(fields, renderField("Name", e.Name))
	fields = append(fields, renderField("Producer", e.Producer))
	fields = append(fields, renderField("Vintage", util.FormatVintage(e.Vintage)))
	fields = append(fields, renderField("Varietal", e.Varietal))
	fields = append(fields, renderField("Region", e.Region))
	fields = append(fields, renderField("Bottles", strconv.Itoa(e.Quantity)))

	window := util.FormatWindow(e.DrinkFrom, e.DrinkTo) + "  " + statusStyle(status.Label()).Render(status.Label())
	if cellar.InWindow(e, m.year) {
		window += HelpDescStyle.Render(fmt.Sprintf("  (%s left)", yearsLeftText(cellar.YearsLeft(e, m.year))))
	}
	fields = append(fields, LabelStyle.Render("Drink Window:")+" "+window)
	fields = append(fields, renderField("Location", e.Location))
	price := ""
	if e.Price != "" {
		price = util.FormatPrice(e.Price)
	}
	fields = append(fields, renderField("Price", price))

	return renderDetailPanel(fields, e.Notes, "No notes for this wine", "e edit  d drink  l log  h back", width)
}

// HistoryDetailModel shows one tasting.
type HistoryDetailModel struct {
	entry model.HistoryEntry
	now   time.Time
}

// NewHistoryDetailModel creates a history detail model.
func NewHistoryDetailModel(entry model.HistoryEntry, now time.Time) *HistoryDetailModel {
	return &HistoryDetailModel{entry: entry, now: now}
}

// View renders the tasting detail.
func (m *HistoryDetailModel) View(width, height int) string {
	h := m.entry

	var fields []string
	fields = append(fields, renderField("Name", h.Name))
	fields = append(fields, renderField("Producer", h.Producer))
	fields = append(fields, renderField("Vintage", util.FormatVintage(h.Vintage)))
	fields = append(fields, renderField("Varietal", h.Varietal))
	fields = append(fields, renderField("Region", h.Region))
	fields = append(fields, renderField("Opened", util.FormatDate(h.DrinkDate)+"  "+HelpDescStyle.Render(util.FormatDateHuman(h.DrinkDate, m.now))))

	rating := util.FormatRatingStars(h.Rating)
	if h.Rating != nil {
		rating = lipgloss.NewStyle().Foreground(ColorYellow).Render(rating)
	}
	fields = append(fields, LabelStyle.Render("Rating:")+" "+rating)

	return renderDetailPanel(fields, h.TastingNotes, "No tasting notes", "e edit  h back", width)
}

func renderDetailPanel(fields []string, notes, noNotes, shortcuts string, width int) string {
	var sections []string
	sections = append(sections, strings.Join(fields, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))
	sections = append(sections, divider)

	if notes != "" {
		sections = append(sections, LabelStyle.Render("Notes:"))
		sections = append(sections, NormalRowStyle.Render(notes))
	} else {
		sections = append(sections, HelpDescStyle.Render(noNotes))
	}

	content := PanelStyle.
		Width(width - 4).
		Render(strings.Join(sections, "\n\n"))

	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(HelpDescStyle.Render(shortcuts))

	return lipgloss.JoinVertical(lipgloss.Left, header, content)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
