package cellar

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
}

func counterIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestEngine(t *testing.T, snap model.Snapshot) (*Engine, *MemoryPersister) {
	t.Helper()
	p := NewMemoryPersister(snap)
	e := NewEngine(snap, p, WithClock(fixedClock), WithIDFunc(counterIDs()))
	return e, p
}

func intPtr(n int) *int { return &n }

func TestAddCellarEntryDefaults(t *testing.T) {
	e, _ := newTestEngine(t, model.Snapshot{})
	res, err := e.AddCellarEntry(context.Background(), model.EntryFields{
		Name:     "  Insignia ",
		Vintage:  "not a year",
		Quantity: "-3",
		Region:   "atlantis",
		Varietal: "pinot noir",
		Price:    "oops",
	})
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.NotNil(t, res.Cellar)

	got := res.Cellar
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "Insignia", got.Name)
	assert.Nil(t, got.Vintage)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, 2025, got.DrinkFrom)
	assert.Equal(t, 2030, got.DrinkTo)
	assert.Equal(t, model.RegionOther, got.Region)
	assert.Equal(t, "Pinot Noir", got.Varietal)
	assert.Equal(t, "", got.Price)
}

func TestAddCellarEntryParsesFields(t *testing.T) {
	e, _ := newTestEngine(t, model.Snapshot{})
	res, err := e.AddCellarEntry(context.Background(), model.EntryFields{
		Name:      "Barolo",
		Producer:  "Vietti",
		Vintage:   "2016",
		Varietal:  "Nebbiolo",
		Region:    "PIEDMONT",
		Quantity:  "3",
		DrinkFrom: "2024",
		DrinkTo:   "2040",
		Location:  "Rack B",
		Price:     "$42.50",
	})
	require.NoError(t, err)

	got := res.Cellar
	require.NotNil(t, got.Vintage)
	assert.Equal(t, 2016, *got.Vintage)
	assert.Equal(t, "Nebbiolo", got.Varietal)
	assert.Equal(t, "Piedmont", got.Region)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, 2024, got.DrinkFrom)
	assert.Equal(t, 2040, got.DrinkTo)
	assert.Equal(t, "42.5", got.Price)
	assert.Len(t, e.Inventory(), 1)
}

func TestEditCellarEntry(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	added, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "A", Quantity: "2"})
	require.NoError(t, err)
	id := added.Cellar.ID

	t.Run("replaces fields but keeps id", func(t *testing.T) {
		res, err := e.EditCellarEntry(ctx, id, model.EntryFields{Name: "B", Quantity: "4"})
		require.NoError(t, err)
		require.True(t, res.Applied)
		assert.Equal(t, id, res.Cellar.ID)
		assert.Equal(t, "B", res.Cellar.Name)
		assert.Equal(t, 4, res.Cellar.Quantity)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		res, err := e.EditCellarEntry(ctx, "missing", model.EntryFields{Name: "C"})
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Len(t, e.Inventory(), 1)
	})

	t.Run("empty quantity defaults to one", func(t *testing.T) {
		res, err := e.EditCellarEntry(ctx, id, model.EntryFields{Name: "B"})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Cellar.Quantity)
	})

	t.Run("explicit zero quantity removes", func(t *testing.T) {
		res, err := e.EditCellarEntry(ctx, id, model.EntryFields{Name: "B", Quantity: "0"})
		require.NoError(t, err)
		assert.True(t, res.Removed)
		assert.Empty(t, e.Inventory())
	})
}

func TestDeleteCellarEntryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	added, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "A"})
	require.NoError(t, err)

	res, err := e.DeleteCellarEntry(ctx, added.Cellar.ID)
	require.NoError(t, err)
	assert.True(t, res.Removed)

	res, err = e.DeleteCellarEntry(ctx, added.Cellar.ID)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Empty(t, e.Inventory())
}

func TestAdjustQuantityNeverLeavesEmptyRows(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	for i := 0; i < 4; i++ {
		_, err := e.AddCellarEntry(ctx, model.EntryFields{Name: fmt.Sprintf("w%d", i), Quantity: "2"})
		require.NoError(t, err)
	}

	deltas := []int{1, -1, -3, 2, -1, -1, 5, -10, 1, -2}
	for step, delta := range deltas {
		for i := 1; i <= 4; i++ {
			_, err := e.AdjustQuantity(ctx, fmt.Sprintf("id-%d", i), delta*(i%2*2-1))
			require.NoError(t, err)
		}
		for _, entry := range e.Inventory() {
			assert.Positive(t, entry.Quantity, "step %d entry %s", step, entry.ID)
		}
	}
}

func TestAdjustQuantity(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	added, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "A", Quantity: "2"})
	require.NoError(t, err)
	id := added.Cellar.ID

	res, err := e.AdjustQuantity(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cellar.Quantity)

	res, err = e.AdjustQuantity(ctx, id, math.MaxInt)
	require.NoError(t, err)
	require.False(t, res.Removed)
	assert.Equal(t, math.MaxInt, res.Cellar.Quantity)

	res, err = e.AdjustQuantity(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, res.Cellar.Quantity)

	res, err = e.AdjustQuantity(ctx, id, -(math.MaxInt - 3))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cellar.Quantity)

	res, err = e.AdjustQuantity(ctx, "missing", -1)
	require.NoError(t, err)
	assert.False(t, res.Applied)

	res, err = e.AdjustQuantity(ctx, id, -7)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	_, ok := e.CellarEntry(id)
	assert.False(t, ok)
}

func TestConsumeEntry(t *testing.T) {
	ctx := context.Background()
	e, p := newTestEngine(t, model.Snapshot{})
	added, err := e.AddCellarEntry(ctx, model.EntryFields{
		Name: "Chablis", Producer: "Raveneau", Vintage: "2019",
		Varietal: "Chardonnay", Region: "Burgundy", Quantity: "2", Notes: "gift",
	})
	require.NoError(t, err)
	id := added.Cellar.ID

	res, err := e.ConsumeEntry(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, res.History)
	assert.Equal(t, 1, res.Cellar.Quantity)

	history := e.History()
	require.Len(t, history, 1)
	h := history[0]
	assert.Equal(t, "2025-06-15", h.DrinkDate)
	assert.Equal(t, "Chablis", h.Name)
	assert.Equal(t, "Raveneau", h.Producer)
	assert.Equal(t, intPtr(2019), h.Vintage)
	assert.Equal(t, "Chardonnay", h.Varietal)
	assert.Equal(t, "Burgundy", h.Region)
	assert.Empty(t, h.TastingNotes)
	assert.Nil(t, h.Rating)

	saves := p.Saves()
	assert.Equal(t, model.Both, saves[len(saves)-1])

	res, err = e.ConsumeEntry(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Empty(t, e.Inventory())
	assert.Len(t, e.History(), 2)

	res, err = e.ConsumeEntry(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Len(t, e.History(), 2)
}

func TestLogFromCellar(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	added, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "Rioja", Quantity: "1"})
	require.NoError(t, err)
	id := added.Cellar.ID

	fields := TastingFieldsFromCellar(*added.Cellar, "2025-06-15")
	fields.TastingNotes = "leather, cherry"
	fields.Rating = "4"
	fields.DrinkDate = "2025-06-01"

	res, err := e.LogFromCellar(ctx, id, fields)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	require.NotNil(t, res.History)
	assert.Equal(t, "leather, cherry", res.History.TastingNotes)
	assert.Equal(t, intPtr(4), res.History.Rating)
	assert.Equal(t, "2025-06-01", res.History.DrinkDate)
	assert.Empty(t, e.Inventory())

	t.Run("source already gone keeps the tasting", func(t *testing.T) {
		res, err := e.LogFromCellar(ctx, id, model.EntryFields{Name: "Rioja"})
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.False(t, res.Removed)
		assert.Len(t, e.History(), 2)
	})
}

func TestHistoryCRUD(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})

	res, err := e.AddHistoryEntry(ctx, model.EntryFields{Name: "A", DrinkDate: "garbage", Rating: "9"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", res.History.DrinkDate)
	assert.Nil(t, res.History.Rating)
	id := res.History.ID

	res, err = e.EditHistoryEntry(ctx, id, model.EntryFields{Name: "B", DrinkDate: "2024-12-31", Rating: "5"})
	require.NoError(t, err)
	assert.Equal(t, id, res.History.ID)
	assert.Equal(t, "B", res.History.Name)
	assert.Equal(t, intPtr(5), res.History.Rating)

	res, err = e.EditHistoryEntry(ctx, "missing", model.EntryFields{Name: "C"})
	require.NoError(t, err)
	assert.False(t, res.Applied)

	res, err = e.DeleteHistoryEntry(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Empty(t, e.History())

	res, err = e.DeleteHistoryEntry(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestHistoryDisplayOrder(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	for _, f := range []model.EntryFields{
		{Name: "old", DrinkDate: "2024-01-01"},
		{Name: "first", DrinkDate: "2025-01-01"},
		{Name: "second", DrinkDate: "2025-01-01"},
	} {
		_, err := e.AddHistoryEntry(ctx, f)
		require.NoError(t, err)
	}

	var names []string
	for _, h := range e.History() {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"second", "first", "old"}, names)
}

func TestCollectionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	added, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "Shared", Producer: "P", Quantity: "3"})
	require.NoError(t, err)
	consumed, err := e.ConsumeEntry(ctx, added.Cellar.ID)
	require.NoError(t, err)

	cellarBefore, _ := e.CellarEntry(added.Cellar.ID)
	_, err = e.EditHistoryEntry(ctx, consumed.History.ID, model.EntryFields{Name: "Renamed", Producer: "Q"})
	require.NoError(t, err)
	cellarAfter, _ := e.CellarEntry(added.Cellar.ID)
	assert.Equal(t, cellarBefore, cellarAfter)

	historyBefore, _ := e.HistoryEntry(consumed.History.ID)
	_, err = e.EditCellarEntry(ctx, added.Cellar.ID, model.EntryFields{Name: "Other", Quantity: "2"})
	require.NoError(t, err)
	historyAfter, _ := e.HistoryEntry(consumed.History.ID)
	assert.Equal(t, historyBefore, historyAfter)
}

func TestReturnedEntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	added, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "A", Vintage: "2010"})
	require.NoError(t, err)

	*added.Cellar.Vintage = 1999
	inv := e.Inventory()
	inv[0].Name = "changed"

	got, ok := e.CellarEntry(added.Cellar.ID)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, intPtr(2010), got.Vintage)
}

func TestImportBatchMintsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})
	res, err := e.ImportBatch(ctx, []model.EntryFields{
		{Name: "one"},
		{Name: "two", Quantity: "6"},
		{Name: "three", DrinkFrom: "2030"},
	})
	require.NoError(t, err)
	require.Len(t, res.Imported, 3)

	ids := map[string]bool{}
	for _, entry := range e.Inventory() {
		ids[entry.ID] = true
	}
	assert.Len(t, ids, 3)

	assert.Equal(t, 1, res.Imported[0].Quantity)
	assert.Equal(t, 2025, res.Imported[0].DrinkFrom)
	assert.Equal(t, 2035, res.Imported[0].DrinkTo)
	assert.Equal(t, 6, res.Imported[1].Quantity)
	assert.Equal(t, 2030, res.Imported[2].DrinkFrom)

	res, err = e.ImportBatch(ctx, nil)
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestIDCollisionsAreReminted(t *testing.T) {
	ids := []string{"dup", "dup", "", "fresh"}
	i := 0
	next := func() string {
		id := ids[i]
		i++
		return id
	}
	e := NewEngine(model.Snapshot{}, nil, WithClock(fixedClock), WithIDFunc(next))
	ctx := context.Background()

	first, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "a"})
	require.NoError(t, err)
	second, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "b"})
	require.NoError(t, err)

	assert.Equal(t, "dup", first.Cellar.ID)
	assert.Equal(t, "fresh", second.Cellar.ID)
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	e, p := newTestEngine(t, model.Snapshot{})
	p.FailWith(errors.New("disk full"))

	res, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.True(t, res.Applied)
	assert.Len(t, e.Inventory(), 1)

	p.FailWith(nil)
	require.NoError(t, e.Flush(ctx))
	snap, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Inventory, 1)
}

func TestPersistWritesOnlyDirtyCollections(t *testing.T) {
	ctx := context.Background()
	e, p := newTestEngine(t, model.Snapshot{})

	_, err := e.AddCellarEntry(ctx, model.EntryFields{Name: "A"})
	require.NoError(t, err)
	_, err = e.AddHistoryEntry(ctx, model.EntryFields{Name: "B"})
	require.NoError(t, err)
	_, err = e.DeleteCellarEntry(ctx, "missing")
	require.NoError(t, err)

	assert.Equal(t, []model.Collection{model.Inventory, model.History}, p.Saves())
}

func TestNewStoreDropsInvalidRows(t *testing.T) {
	e := NewEngine(model.Snapshot{
		Inventory: []model.CellarEntry{
			{ID: "a", Name: "ok", Quantity: 1},
			{ID: "a", Name: "dup", Quantity: 1},
			{ID: "", Name: "no id", Quantity: 1},
			{ID: "b", Name: "empty", Quantity: 0},
		},
		History: []model.HistoryEntry{
			{ID: "h", Name: "ok"},
			{ID: "h", Name: "dup"},
		},
	}, nil)

	inv := e.Inventory()
	require.Len(t, inv, 1)
	assert.Equal(t, "ok", inv[0].Name)
	require.Len(t, e.History(), 1)
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, model.Snapshot{})

	res, err := e.Dispatch(ctx, Command{Kind: CmdAddCellar, Fields: model.EntryFields{Name: "A", Quantity: "2"}})
	require.NoError(t, err)
	id := res.Cellar.ID

	res, err = e.Dispatch(ctx, Command{Kind: CmdAdjustQuantity, ID: id, Delta: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cellar.Quantity)

	res, err = e.Dispatch(ctx, Command{Kind: CmdConsume, ID: id})
	require.NoError(t, err)
	assert.NotNil(t, res.History)

	res, err = e.Dispatch(ctx, Command{Kind: CmdImport, Records: []model.EntryFields{{Name: "B"}}})
	require.NoError(t, err)
	assert.Len(t, res.Imported, 1)

	_, err = e.Dispatch(ctx, Command{Kind: CommandKind(99)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command(99)")
}
