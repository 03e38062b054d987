package cellar

import (
	"context"
	"sync"

	"cellar/internal/model"
)

// MemoryPersister keeps the last saved snapshot in memory.
type MemoryPersister struct {
	mu    sync.Mutex
	snap  model.Snapshot
	saves []model.Collection
	err   error
}

// NewMemoryPersister returns a persister seeded with snap.
func NewMemoryPersister(snap model.Snapshot) *MemoryPersister {
	return &MemoryPersister{snap: NewStore(snap).Snapshot()}
}

// Load returns the saved snapshot.
func (m *MemoryPersister) Load(context.Context) (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return NewStore(m.snap).Snapshot(), nil
}

// Save stores the dirty collections of snap.
func (m *MemoryPersister) Save(_ context.Context, snap model.Snapshot, dirty model.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := NewStore(snap).Snapshot()
	if dirty.Has(model.Inventory) {
		m.snap.Inventory = copied.Inventory
	}
	if dirty.Has(model.History) {
		m.snap.History = copied.History
	}
	m.saves = append(m.saves, dirty)
	return nil
}

// FailWith makes subsequent saves return err. A nil err clears it.
func (m *MemoryPersister) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Saves returns the dirty set of each successful save, in order.
func (m *MemoryPersister) Saves() []model.Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Collection(nil), m.saves...)
}
