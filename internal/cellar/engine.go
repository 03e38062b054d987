package cellar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cellar/internal/model"
)

// ErrPersist marks a persistence failure. The in-memory change it accompanies
// has already been applied; callers should surface it as a warning.
var ErrPersist = errors.New("persist collections")

// Persister is the durable key-value collaborator for both collections.
type Persister interface {
	Save(ctx context.Context, snap model.Snapshot, dirty model.Collection) error
}

// IDFunc mints a new entry id.
type IDFunc func() string

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for the current year and today's date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDFunc overrides the id allocator (defaults to uuid.NewString).
func WithIDFunc(fn IDFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// Engine is the sole mutator of a Store. Every operation is applied to a copy
// of the store and committed as a whole, then flushed to the persister.
type Engine struct {
	mu        sync.Mutex
	store     Store
	persister Persister
	log       zerolog.Logger
	now       func() time.Time
	newID     IDFunc
}

// NewEngine creates an engine over snap. A nil persister keeps state in memory only.
func NewEngine(snap model.Snapshot, persister Persister, opts ...Option) *Engine {
	e := &Engine{
		store:     NewStore(snap),
		persister: persister,
		log:       zerolog.Nop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// CurrentYear returns the year used for drink-window decisions.
func (e *Engine) CurrentYear() int {
	return e.now().Year()
}

// Snapshot returns a copy of both collections in storage order.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// Inventory returns a copy of the cellar inventory.
func (e *Engine) Inventory() []model.CellarEntry {
	return e.Snapshot().Inventory
}

// History returns the tasting history ordered by drink date, newest first.
func (e *Engine) History() []model.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return historyForDisplay(e.store.history)
}

// CellarEntry returns the inventory entry with id.
func (e *Engine) CellarEntry(id string) (model.CellarEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.store.cellarIndex(id)
	if i < 0 {
		return model.CellarEntry{}, false
	}
	return e.store.inventory[i].Clone(), true
}

// HistoryEntry returns the tasting with id.
func (e *Engine) HistoryEntry(id string) (model.HistoryEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.store.historyIndex(id)
	if i < 0 {
		return model.HistoryEntry{}, false
	}
	return e.store.history[i].Clone(), true
}

// Flush writes both collections to the persister.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist(ctx, model.Both)
}

// mutate runs fn against a copy of the store and commits the copy when fn
// reports dirty collections. Callers must not hold e.mu.
func (e *Engine) mutate(ctx context.Context, fn func(s *Store) (Result, model.Collection)) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.store.clone()
	res, dirty := fn(&next)
	if dirty == 0 {
		return res, nil
	}
	next.sweep()
	e.store = next
	res.Applied = true
	return res, e.persist(ctx, dirty)
}

func (e *Engine) persist(ctx context.Context, dirty model.Collection) error {
	if e.persister == nil {
		return nil
	}
	if err := e.persister.Save(ctx, e.store.Snapshot(), dirty); err != nil {
		e.log.Error().Err(err).Int("dirty", int(dirty)).Msg("persist collections failed; continuing in memory")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (e *Engine) mintCellarID(s *Store) string {
	for {
		id := e.newID()
		if id != "" && s.cellarIndex(id) < 0 {
			return id
		}
	}
}

func (e *Engine) mintHistoryID(s *Store) string {
	for {
		id := e.newID()
		if id != "" && s.historyIndex(id) < 0 {
			return id
		}
	}
}
