package cellar

import (
	"sort"

	"cellar/internal/model"
)

// Store holds the cellar inventory and the tasting history.
//
// A Store value is never shared between goroutines; the Engine copies it before
// mutating and swaps the copy in on commit. The invariants it maintains are:
// ids are unique within each collection, and no inventory entry has a
// quantity below one once an operation finishes.
type Store struct {
	inventory []model.CellarEntry
	history   []model.HistoryEntry
}

// NewStore builds a store from a snapshot, dropping rows that violate the
// store invariants (non-positive quantity, duplicate or empty ids).
func NewStore(snap model.Snapshot) Store {
	var s Store
	seen := make(map[string]bool, len(snap.Inventory))
	for _, e := range snap.Inventory {
		if e.ID == "" || seen[e.ID] || e.Quantity <= 0 {
			continue
		}
		seen[e.ID] = true
		s.inventory = append(s.inventory, e.Clone())
	}
	seen = make(map[string]bool, len(snap.History))
	for _, h := range snap.History {
		if h.ID == "" || seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		s.history = append(s.history, h.Clone())
	}
	return s
}

func (s Store) clone() Store {
	out := Store{
		inventory: make([]model.CellarEntry, len(s.inventory)),
		history:   make([]model.HistoryEntry, len(s.history)),
	}
	for i, e := range s.inventory {
		out.inventory[i] = e.Clone()
	}
	for i, h := range s.history {
		out.history[i] = h.Clone()
	}
	return out
}

// Snapshot returns a deep copy of both collections in storage order.
func (s Store) Snapshot() model.Snapshot {
	c := s.clone()
	return model.Snapshot{Inventory: c.inventory, History: c.history}
}

func (s Store) cellarIndex(id string) int {
	for i, e := range s.inventory {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s Store) historyIndex(id string) int {
	for i, h := range s.history {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeCellar(i int) {
	s.inventory = append(s.inventory[:i], s.inventory[i+1:]...)
}

func (s *Store) removeHistory(i int) {
	s.history = append(s.history[:i], s.history[i+1:]...)
}

// sweep removes inventory rows whose quantity dropped to zero or below.
func (s *Store) sweep() {
	kept := s.inventory[:0]
	for _, e := range s.inventory {
		if e.Quantity > 0 {
			kept = append(kept, e)
		}
	}
	s.inventory = kept
}

// historyForDisplay returns tastings ordered by drink date, newest first.
// Same-day tastings show the most recently logged first.
func historyForDisplay(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DrinkDate > out[j].DrinkDate
	})
	return out
}
