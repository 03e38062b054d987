package cellar

import (
	"context"
	"math"

	"cellar/internal/model"
	"cellar/internal/util"
)

// Result describes what an operation did.
type Result struct {
	// Applied is false when the operation was a no-op (for example an unknown id).
	Applied bool
	// Cellar is the inventory entry after the operation, when it still exists.
	Cellar *model.CellarEntry
	// History is the tasting created or edited by the operation.
	History *model.HistoryEntry
	// Removed reports that the inventory entry left the cellar.
	Removed bool
	// Imported holds the entries added by an import.
	Imported []model.CellarEntry
}

func (e *Engine) today() string {
	return util.TodayISO(e.now())
}

// AddCellarEntry adds a wine to the cellar with a fresh id.
func (e *Engine) AddCellarEntry(ctx context.Context, f model.EntryFields) (Result, error) {
	year := e.CurrentYear()
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		entry, _, _ := cellarFromFields(f, year, DefaultWindowYears)
		entry.ID = e.mintCellarID(s)
		s.inventory = append(s.inventory, entry)
		out := entry.Clone()
		return Result{Cellar: &out}, model.Inventory
	})
}

// EditCellarEntry replaces every field of the entry except its id. An explicit
// quantity of zero or less removes the entry.
func (e *Engine) EditCellarEntry(ctx context.Context, id string, f model.EntryFields) (Result, error) {
	year := e.CurrentYear()
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		i := s.cellarIndex(id)
		if i < 0 {
			return Result{}, 0
		}
		entry, quantity, explicit := cellarFromFields(f, year, DefaultWindowYears)
		entry.ID = id
		if explicit && quantity <= 0 {
			s.removeCellar(i)
			return Result{Removed: true}, model.Inventory
		}
		s.inventory[i] = entry
		out := entry.Clone()
		return Result{Cellar: &out}, model.Inventory
	})
}

// DeleteCellarEntry removes the entry. Deleting an unknown id is a no-op.
func (e *Engine) DeleteCellarEntry(ctx context.Context, id string) (Result, error) {
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		i := s.cellarIndex(id)
		if i < 0 {
			return Result{}, 0
		}
		s.removeCellar(i)
		return Result{Removed: true}, model.Inventory
	})
}

// AdjustQuantity adds delta bottles, flooring at zero. An entry that reaches
// zero is removed.
func (e *Engine) AdjustQuantity(ctx context.Context, id string, delta int) (Result, error) {
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		if s.cellarIndex(id) < 0 || delta == 0 {
			return Result{}, 0
		}
		return adjust(s, id, delta), model.Inventory
	})
}

func adjust(s *Store, id string, delta int) Result {
	i := s.cellarIndex(id)
	if i < 0 {
		return Result{}
	}
	current := s.inventory[i].Quantity
	q := current + delta
	switch {
	case delta > 0 && q < current:
		q = math.MaxInt
	case delta < 0 && q > current:
		q = 0
	}
	if q <= 0 {
		s.removeCellar(i)
		return Result{Removed: true}
	}
	s.inventory[i].Quantity = q
	out := s.inventory[i].Clone()
	return Result{Cellar: &out}
}

// ConsumeEntry opens one bottle: it logs a tasting dated today with the
// entry's descriptive fields and decrements the quantity, as one commit.
func (e *Engine) ConsumeEntry(ctx context.Context, id string) (Result, error) {
	today := e.today()
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		i := s.cellarIndex(id)
		if i < 0 {
			return Result{}, 0
		}
		h := historyFromCellar(s.inventory[i], today)
		h.ID = e.mintHistoryID(s)
		s.history = append(s.history, h)

		res := adjust(s, id, -1)
		out := h.Clone()
		res.History = &out
		return res, model.Both
	})
}

// LogFromCellar records a tasting from user-edited fields and decrements the
// source entry by one bottle in the same commit. The tasting is kept even if
// the source entry no longer exists.
func (e *Engine) LogFromCellar(ctx context.Context, id string, f model.EntryFields) (Result, error) {
	today := e.today()
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		h := historyFromFields(f, today)
		h.ID = e.mintHistoryID(s)
		s.history = append(s.history, h)

		res := adjust(s, id, -1)
		out := h.Clone()
		res.History = &out
		return res, model.Both
	})
}

// AddHistoryEntry logs a tasting directly. The drink date defaults to today.
func (e *Engine) AddHistoryEntry(ctx context.Context, f model.EntryFields) (Result, error) {
	today := e.today()
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		h := historyFromFields(f, today)
		h.ID = e.mintHistoryID(s)
		s.history = append(s.history, h)
		out := h.Clone()
		return Result{History: &out}, model.History
	})
}

// EditHistoryEntry replaces every field of the tasting except its id.
func (e *Engine) EditHistoryEntry(ctx context.Context, id string, f model.EntryFields) (Result, error) {
	today := e.today()
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		i := s.historyIndex(id)
		if i < 0 {
			return Result{}, 0
		}
		h := historyFromFields(f, today)
		h.ID = id
		s.history[i] = h
		out := h.Clone()
		return Result{History: &out}, model.History
	})
}

// DeleteHistoryEntry removes a tasting. Deleting an unknown id is a no-op.
func (e *Engine) DeleteHistoryEntry(ctx context.Context, id string) (Result, error) {
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		i := s.historyIndex(id)
		if i < 0 {
			return Result{}, 0
		}
		s.removeHistory(i)
		return Result{}, model.History
	})
}

// ImportBatch appends records to the inventory in one commit. Every record
// gets a fresh id and import defaults for anything unset.
func (e *Engine) ImportBatch(ctx context.Context, records []model.EntryFields) (Result, error) {
	year := e.CurrentYear()
	return e.mutate(ctx, func(s *Store) (Result, model.Collection) {
		if len(records) == 0 {
			return Result{}, 0
		}
		imported := make([]model.CellarEntry, 0, len(records))
		for _, f := range records {
			entry, _, _ := cellarFromFields(f, year, DefaultImportWindowYears)
			entry.ID = e.mintCellarID(s)
			s.inventory = append(s.inventory, entry)
			imported = append(imported, entry.Clone())
		}
		return Result{Imported: imported}, model.Inventory
	})
}
