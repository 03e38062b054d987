package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/model"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "cellar.db")
	s, err := Open(path, WithClock(func() time.Time {
		return time.Date(2025, time.June, 15, 8, 30, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestLoadEmptyDatabase(t *testing.T) {
	s, _ := openTestStore(t)
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Inventory)
	assert.Empty(t, snap.History)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	vintage := 2018
	rating := 4
	snap := model.Snapshot{
		Inventory: []model.CellarEntry{{
			ID: "c1", Name: "Tignanello", Producer: "Antinori", Vintage: &vintage,
			Varietal: "Other Red", Region: "Tuscany", Quantity: 2,
			DrinkFrom: 2024, DrinkTo: 2035, Price: "120",
		}},
		History: []model.HistoryEntry{{
			ID: "h1", Name: "Sancerre", DrinkDate: "2025-05-01", Rating: &rating,
		}},
	}
	require.NoError(t, s.Save(ctx, snap, model.Both))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	stamp, err := s.UpdatedAt(ctx, InventoryKey)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15T08:30:00.000Z", stamp)

	require.NoError(t, s.Close())
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestSaveWritesOnlyDirtyKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	first := model.Snapshot{
		Inventory: []model.CellarEntry{{ID: "c1", Name: "A", Quantity: 1}},
		History:   []model.HistoryEntry{{ID: "h1", Name: "B"}},
	}
	require.NoError(t, s.Save(ctx, first, model.Both))

	second := model.Snapshot{
		Inventory: []model.CellarEntry{{ID: "c2", Name: "C", Quantity: 1}},
	}
	require.NoError(t, s.Save(ctx, second, model.Inventory))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Inventory, 1)
	assert.Equal(t, "c2", got.Inventory[0].ID)
	require.Len(t, got.History, 1)
	assert.Equal(t, "h1", got.History[0].ID)
}

func TestSaveEmptyCollection(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	require.NoError(t, s.Save(ctx, model.Snapshot{
		Inventory: []model.CellarEntry{{ID: "c1", Quantity: 1}},
	}, model.Inventory))
	require.NoError(t, s.Save(ctx, model.Snapshot{}, model.Inventory))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Inventory)
}

func TestLoadDiscardsUndecodableValue(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	require.NoError(t, s.Save(ctx, model.Snapshot{
		History: []model.HistoryEntry{{ID: "h1"}},
	}, model.History))
	require.NoError(t, s.putRaw(ctx, InventoryKey, "{not json"))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Inventory)
	assert.Len(t, got.History, 1)
}

func TestOpenIsExclusive(t *testing.T) {
	_, path := openTestStore(t)

	_, err := Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)
}

// putRaw stores value verbatim under key.
func (s *Store) putRaw(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
