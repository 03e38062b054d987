package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/model"
)

func intPtr(n int) *int { return &n }

func sampleInventory() []model.CellarEntry {
	return []model.CellarEntry{
		{ID: "a", Name: "Barolo", Producer: "Vietti", Vintage: intPtr(2016), Varietal: "Other Red", Region: "Piedmont", Quantity: 3, DrinkFrom: 2024, DrinkTo: 2040},
		{ID: "b", Name: "Chablis", Producer: "Raveneau", Vintage: intPtr(2020), Varietal: "Chardonnay", Region: "Burgundy", Quantity: 12, DrinkFrom: 2026, DrinkTo: 2035},
		{ID: "c", Name: "Meursault", Producer: "Roulot", Varietal: "Chardonnay", Region: "Burgundy", Quantity: 1, DrinkFrom: 2022, DrinkTo: 2028},
	}
}

func rowIDs(m *tableModel[model.CellarEntry]) []string {
	ids := make([]string, 0, m.Len())
	for _, r := range m.rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestTableSortsByActiveColumn(t *testing.T) {
	table := newCellarTable(func() int { return 2025 })
	table.SetRows(sampleInventory())

	require.True(t, table.JumpToColumn(5))
	table.SortActiveColumn(false)
	assert.Equal(t, []string{"c", "a", "b"}, rowIDs(table))

	table.SortActiveColumn(true)
	assert.Equal(t, []string{"b", "a", "c"}, rowIDs(table))
	assert.Contains(t, table.TableMeta(), "sort QTY desc")
}

func TestTableVintageSortPutsNonVintageFirst(t *testing.T) {
	table := newCellarTable(func() int { return 2025 })
	table.SetRows(sampleInventory())

	require.True(t, table.JumpToColumn(2))
	table.SortActiveColumn(false)
	assert.Equal(t, []string{"c", "a", "b"}, rowIDs(table))
}

func TestTableFilterBySelectedValue(t *testing.T) {
	table := newCellarTable(func() int { return 2025 })
	table.SetRows(sampleInventory())

	table.MoveDown()
	require.True(t, table.JumpToColumn(3))
	require.True(t, table.FilterBySelectedValue())
	assert.Equal(t, []string{"b", "c"}, rowIDs(table))
	assert.Contains(t, table.TableMeta(), `filter VARIETAL="Chardonnay"`)

	require.True(t, table.ClearFilter())
	assert.Equal(t, 3, table.Len())
	assert.False(t, table.ClearFilter())
}

func TestTableKeepsSelectionAcrossReload(t *testing.T) {
	table := newCellarTable(func() int { return 2025 })
	table.SetRows(sampleInventory())
	table.JumpToBottom()

	rows := sampleInventory()
	rows = append([]model.CellarEntry{{ID: "d", Name: "Rioja"}}, rows...)
	table.SetRows(rows)

	selected, ok := table.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", selected.ID)
}

func TestTableHideColumnKeepsOneVisible(t *testing.T) {
	table := newHistoryTable(fixedNow)
	for range len(table.columns) - 1 {
		require.True(t, table.HideActiveColumn())
	}
	assert.False(t, table.HideActiveColumn())
	assert.Len(t, table.visibleColumnIndexes(), 1)

	table.ShowAllColumns()
	assert.Len(t, table.visibleColumnIndexes(), len(table.columns))
}

func TestTablePrefsRoundTrip(t *testing.T) {
	table := newCellarTable(func() int { return 2025 })
	table.SetRows(sampleInventory())
	require.True(t, table.JumpToColumn(4))
	require.True(t, table.HideActiveColumn())
	table.SortActiveColumn(true)

	prefs := table.Prefs()
	assert.Equal(t, []string{"region"}, prefs.HiddenColumns)

	other := newCellarTable(func() int { return 2025 })
	other.ApplyPrefs(prefs)
	other.SetRows(sampleInventory())
	assert.Equal(t, prefs, other.Prefs())
	assert.Equal(t, rowIDs(table), rowIDs(other))
}

func TestTableViewShowsEmptyState(t *testing.T) {
	table := newCellarTable(func() int { return 2025 })
	view := table.View(100, 20)
	assert.Contains(t, view, table.empty)
}

func TestTableNavigationClamps(t *testing.T) {
	table := newCellarTable(func() int { return 2025 })
	table.SetRows(sampleInventory())

	table.MoveUp()
	assert.Equal(t, 0, table.cursor)
	table.HalfPageDown(10)
	assert.Equal(t, 2, table.cursor)
	table.MoveDown()
	assert.Equal(t, 2, table.cursor)
	table.JumpToTop()
	assert.Equal(t, 0, table.cursor)
}
