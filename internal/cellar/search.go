package cellar

import (
	"strings"

	"github.com/shopspring/decimal"

	"cellar/internal/model"
	"cellar/internal/util"
)

// Filter narrows an inventory listing.
type Filter struct {
	// Query matches name, producer or region, case-insensitively.
	Query string
	// Varietal, when set, must equal the entry's varietal.
	Varietal string
}

// Match reports whether entry passes the filter.
func (f Filter) Match(entry model.CellarEntry) bool {
	if f.Varietal != "" && model.Fold(f.Varietal) != model.Fold(entry.Varietal) {
		return false
	}
	q := model.Fold(f.Query)
	if q == "" {
		return true
	}
	for _, field := range []string{entry.Name, entry.Producer, entry.Region} {
		if strings.Contains(model.Fold(field), q) {
			return true
		}
	}
	return false
}

// FilterEntries returns the entries that pass f, in input order.
func FilterEntries(entries []model.CellarEntry, f Filter) []model.CellarEntry {
	out := make([]model.CellarEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Search filters the current inventory.
func (e *Engine) Search(f Filter) []model.CellarEntry {
	return FilterEntries(e.Inventory(), f)
}

// ComputeStats totals bottles and value. Unparseable prices count as zero.
func ComputeStats(snap model.Snapshot) model.Stats {
	total := decimal.Zero
	stats := model.Stats{
		Wines:    len(snap.Inventory),
		Tastings: len(snap.History),
	}
	for _, e := range snap.Inventory {
		stats.Bottles += e.Quantity
		if price, ok := util.ParsePrice(e.Price); ok {
			total = total.Add(price.Mul(decimal.NewFromInt(int64(e.Quantity))))
		}
	}
	stats.TotalValue = total.StringFixed(2)
	return stats
}

// Stats summarizes the current collections.
func (e *Engine) Stats() model.Stats {
	return ComputeStats(e.Snapshot())
}
