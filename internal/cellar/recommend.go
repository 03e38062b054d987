package cellar

import (
	"sort"

	"cellar/internal/model"
)

// MaxRecommendations caps the "drink now" list.
const MaxRecommendations = 5

// DrinkStatus classifies a wine against its drink window.
type DrinkStatus string

const (
	StatusTooEarly  DrinkStatus = "too early"
	StatusPastPrime DrinkStatus = "past prime"
	StatusDrinkSoon DrinkStatus = "drink soon"
	StatusReady     DrinkStatus = "ready"
)

// Label returns the display label.
func (s DrinkStatus) Label() string {
	switch s {
	case StatusTooEarly:
		return "Too Early"
	case StatusPastPrime:
		return "Past Prime"
	case StatusDrinkSoon:
		return "Drink Soon"
	case StatusReady:
		return "Ready"
	default:
		return string(s)
	}
}

// DrinkWindowStatus reports where year falls in the entry's window.
// An inverted window (drinkFrom > drinkTo) is always "too early" or
// "past prime".
func DrinkWindowStatus(entry model.CellarEntry, year int) DrinkStatus {
	switch {
	case year < entry.DrinkFrom:
		return StatusTooEarly
	case year > entry.DrinkTo:
		return StatusPastPrime
	case entry.DrinkTo-year <= 1:
		return StatusDrinkSoon
	default:
		return StatusReady
	}
}

// InWindow reports whether year is inside the entry's inclusive drink window.
func InWindow(entry model.CellarEntry, year int) bool {
	return entry.DrinkFrom <= year && year <= entry.DrinkTo
}

// YearsLeft is the number of years until the window closes.
func YearsLeft(entry model.CellarEntry, year int) int {
	return entry.DrinkTo - year
}

// Recommendations returns up to MaxRecommendations in-window entries with
// bottles left, the ones closest to leaving their window first. Ties keep
// their input order.
func Recommendations(entries []model.CellarEntry, year int) []model.CellarEntry {
	var out []model.CellarEntry
	for _, e := range entries {
		if e.Quantity > 0 && InWindow(e, year) {
			out = append(out, e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return YearsLeft(out[i], year) < YearsLeft(out[j], year)
	})
	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}

// Recommendations returns what to open now from the current inventory.
func (e *Engine) Recommendations() []model.CellarEntry {
	return Recommendations(e.Inventory(), e.CurrentYear())
}

// Status returns the drink-window status of entry for the engine's current year.
func (e *Engine) Status(entry model.CellarEntry) DrinkStatus {
	return DrinkWindowStatus(entry, e.CurrentYear())
}
