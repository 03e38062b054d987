package cellar

import (
	"strconv"
	"strings"

	"cellar/internal/model"
	"cellar/internal/util"
)

// Default drink-window lengths, in years after the current year.
const (
	DefaultWindowYears       = 5
	DefaultImportWindowYears = 10
)

// cellarFromFields parses raw input into an entry without an id. quantity is
// returned separately: explicit reports whether the input held a number at all.
func cellarFromFields(f model.EntryFields, year, windowYears int) (entry model.CellarEntry, quantity int, explicit bool) {
	entry = model.CellarEntry{
		Name:     strings.TrimSpace(f.Name),
		Producer: strings.TrimSpace(f.Producer),
		Varietal: model.NormalizeVarietal(f.Varietal),
		Region:   model.NormalizeRegion(f.Region),
		Location: strings.TrimSpace(f.Location),
		Price:    util.NormalizePrice(f.Price),
		Notes:    strings.TrimSpace(f.Notes),
	}
	if v, ok := util.ParseYear(f.Vintage); ok {
		entry.Vintage = &v
	}

	entry.DrinkFrom = year
	if v, ok := util.ParseYear(f.DrinkFrom); ok {
		entry.DrinkFrom = v
	}
	entry.DrinkTo = year + windowYears
	if v, ok := util.ParseYear(f.DrinkTo); ok {
		entry.DrinkTo = v
	}

	quantity, explicit = util.ParseInt(f.Quantity)
	entry.Quantity = 1
	if explicit && quantity > 0 {
		entry.Quantity = quantity
	}
	return entry, quantity, explicit
}

// historyFromFields parses raw input into a tasting without an id.
func historyFromFields(f model.EntryFields, today string) model.HistoryEntry {
	h := model.HistoryEntry{
		Name:         strings.TrimSpace(f.Name),
		Producer:     strings.TrimSpace(f.Producer),
		Varietal:     model.NormalizeVarietal(f.Varietal),
		Region:       model.NormalizeRegion(f.Region),
		TastingNotes: strings.TrimSpace(f.TastingNotes),
		DrinkDate:    today,
	}
	if v, ok := util.ParseYear(f.Vintage); ok {
		h.Vintage = &v
	}
	if d, err := util.ParseDateInput(f.DrinkDate); err == nil && d != "" {
		h.DrinkDate = d
	}
	if r, ok := util.ParseRating(f.Rating); ok {
		h.Rating = &r
	}
	return h
}

// historyFromCellar copies the descriptive fields of a cellar entry into a
// fresh tasting dated date, with no notes or rating.
func historyFromCellar(c model.CellarEntry, date string) model.HistoryEntry {
	return model.HistoryEntry{
		Name:      c.Name,
		Producer:  c.Producer,
		Vintage:   cloneYear(c.Vintage),
		Varietal:  c.Varietal,
		Region:    c.Region,
		DrinkDate: date,
	}
}

// FieldsFromCellar renders an entry back into editable raw fields.
func FieldsFromCellar(c model.CellarEntry) model.EntryFields {
	return model.EntryFields{
		Name:      c.Name,
		Producer:  c.Producer,
		Vintage:   yearString(c.Vintage),
		Varietal:  c.Varietal,
		Region:    c.Region,
		Quantity:  strconv.Itoa(c.Quantity),
		DrinkFrom: strconv.Itoa(c.DrinkFrom),
		DrinkTo:   strconv.Itoa(c.DrinkTo),
		Location:  c.Location,
		Price:     c.Price,
		Notes:     c.Notes,
	}
}

// FieldsFromHistory renders a tasting back into editable raw fields.
func FieldsFromHistory(h model.HistoryEntry) model.EntryFields {
	f := model.EntryFields{
		Name:         h.Name,
		Producer:     h.Producer,
		Vintage:      yearString(h.Vintage),
		Varietal:     h.Varietal,
		Region:       h.Region,
		DrinkDate:    h.DrinkDate,
		TastingNotes: h.TastingNotes,
	}
	if h.Rating != nil {
		f.Rating = strconv.Itoa(*h.Rating)
	}
	return f
}

// TastingFieldsFromCellar pre-fills a tasting form from a cellar entry.
func TastingFieldsFromCellar(c model.CellarEntry, today string) model.EntryFields {
	return FieldsFromHistory(historyFromCellar(c, today))
}

func yearString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func cloneYear(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
