package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"cellar/internal/cellar"
	"cellar/internal/model"
	"cellar/internal/util"
)

func padInt(n int) string {
	return fmt.Sprintf("%06d", n)
}

func vintageKey(v *int) string {
	if v == nil {
		return ""
	}
	return padInt(*v)
}

func wineTitle(producer, name string) string {
	switch {
	case producer == "":
		return name
	case name == "":
		return producer
	default:
		return producer + " " + name
	}
}

func cellarID(e model.CellarEntry) string   { return e.ID }
func historyID(h model.HistoryEntry) string { return h.ID }

// newCellarTable lists the inventory. year supplies the current year for the
// status column.
func newCellarTable(year func() int) *tableModel[model.CellarEntry] {
	columns := []tableColumn[model.CellarEntry]{
		{key: "wine", label: "wine", width: 28, value: func(e model.CellarEntry) string { return wineTitle(e.Producer, e.Name) }},
		{key: "vintage", label: "vintage", width: 9,
			value: func(e model.CellarEntry) string { return vintageKey(e.Vintage) },
			cell:  func(e model.CellarEntry) string { return util.FormatVintage(e.Vintage) }},
		{key: "varietal", label: "varietal", width: 18, value: func(e model.CellarEntry) string { return e.Varietal }},
		{key: "region", label: "region", width: 16, value: func(e model.CellarEntry) string { return e.Region }},
		{key: "qty", label: "qty", width: 6,
			value: func(e model.CellarEntry) string { return padInt(e.Quantity) },
			cell:  func(e model.CellarEntry) string { return strconv.Itoa(e.Quantity) }},
		{key: "window", label: "window", width: 12,
			value: func(e model.CellarEntry) string { return padInt(e.DrinkFrom) + padInt(e.DrinkTo) },
			cell:  func(e model.CellarEntry) string { return util.FormatWindow(e.DrinkFrom, e.DrinkTo) }},
		{key: "status", label: "status", width: 13,
			value: func(e model.CellarEntry) string { return cellar.DrinkWindowStatus(e, year()).Label() },
			style: func(e model.CellarEntry) lipgloss.Style { return statusStyle(cellar.DrinkWindowStatus(e, year()).Label()) }},
		{key: "location", label: "location", width: 14, value: func(e model.CellarEntry) string { return e.Location }},
		{key: "price", label: "price", width: 10,
			value: func(e model.CellarEntry) string {
				d, ok := util.ParsePrice(e.Price)
				if !ok {
					return ""
				}
				return fmt.Sprintf("%012s", d.StringFixed(2))
			},
			cell: func(e model.CellarEntry) string {
				if e.Price == "" {
					return ""
				}
				return util.FormatPrice(e.Price)
			}},
	}
	return newTableModel(columns, cellarID, "wines", `    Your cellar is empty.
    Press  a  to add a bottle or  s  to scan a label.`)
}

// newDrinkNowTable lists recommendations in urgency order; it starts
// unsorted so the ranking is preserved.
func newDrinkNowTable(year func() int) *tableModel[model.CellarEntry] {
	columns := []tableColumn[model.CellarEntry]{
		{key: "wine", label: "wine", width: 28, value: func(e model.CellarEntry) string { return wineTitle(e.Producer, e.Name) }},
		{key: "vintage", label: "vintage", width: 9,
			value: func(e model.CellarEntry) string { return vintageKey(e.Vintage) },
			cell:  func(e model.CellarEntry) string { return util.FormatVintage(e.Vintage) }},
		{key: "window", label: "window", width: 12,
			value: func(e model.CellarEntry) string { return padInt(e.DrinkTo) },
			cell:  func(e model.CellarEntry) string { return util.FormatWindow(e.DrinkFrom, e.DrinkTo) }},
		{key: "left", label: "years left", width: 12,
			value: func(e model.CellarEntry) string { return padInt(cellar.YearsLeft(e, year())) },
			cell:  func(e model.CellarEntry) string { return yearsLeftText(cellar.YearsLeft(e, year())) },
			style: func(e model.CellarEntry) lipgloss.Style { return yearsLeftStyle(cellar.YearsLeft(e, year())) }},
		{key: "qty", label: "qty", width: 6,
			value: func(e model.CellarEntry) string { return padInt(e.Quantity) },
			cell:  func(e model.CellarEntry) string { return strconv.Itoa(e.Quantity) }},
		{key: "location", label: "location", width: 14, value: func(e model.CellarEntry) string { return e.Location }},
	}
	return newTableModel(columns, cellarID, "ready", `    Nothing is in its drink window right now.
    Wines show up here once the current year falls inside their window.`)
}

func yearsLeftText(n int) string {
	switch n {
	case 0:
		return "last year"
	case 1:
		return "1 year"
	default:
		return fmt.Sprintf("%d years", n)
	}
}

func yearsLeftStyle(n int) lipgloss.Style {
	switch {
	case n == 0:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case n <= 2:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	default:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	}
}

// newHistoryTable lists tastings. now supplies the clock for relative dates.
func newHistoryTable(now func() time.Time) *tableModel[model.HistoryEntry] {
	columns := []tableColumn[model.HistoryEntry]{
		{key: "date", label: "opened", width: 12,
			value: func(h model.HistoryEntry) string { return h.DrinkDate },
			cell:  func(h model.HistoryEntry) string { return util.FormatDateHuman(h.DrinkDate, now()) }},
		{key: "wine", label: "wine", width: 28, value: func(h model.HistoryEntry) string { return wineTitle(h.Producer, h.Name) }},
		{key: "vintage", label: "vintage", width: 9,
			value: func(h model.HistoryEntry) string { return vintageKey(h.Vintage) },
			cell:  func(h model.HistoryEntry) string { return util.FormatVintage(h.Vintage) }},
		{key: "varietal", label: "varietal", width: 18, value: func(h model.HistoryEntry) string { return h.Varietal }},
		{key: "rating", label: "rating", width: 8,
			value: func(h model.HistoryEntry) string {
				if h.Rating == nil {
					return ""
				}
				return strconv.Itoa(*h.Rating)
			},
			cell: func(h model.HistoryEntry) string {
				if h.Rating == nil {
					return ""
				}
				return util.FormatRatingStars(h.Rating)
			},
			style: func(model.HistoryEntry) lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorYellow) }},
		{key: "notes", label: "notes", width: 24, value: func(h model.HistoryEntry) string { return h.TastingNotes }},
	}
	return newTableModel(columns, historyID, "tastings", `    No tastings logged yet.
    Press  l  on a cellar wine or  a  here to log one.`)
}
