package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/cellar"
	"cellar/internal/model"
)

var exportTime = time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC)

func testEngine() *cellar.Engine {
	n := 0
	return cellar.NewEngine(model.Snapshot{}, nil,
		cellar.WithClock(func() time.Time { return exportTime }),
		cellar.WithIDFunc(func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		}),
	)
}

func TestParseImportShapes(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		recs, err := ParseImport([]byte(`{"name":"Opus One","vintage":2015,"quantity":"2"}`))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Opus One", recs[0].Name)
		assert.Equal(t, "2015", recs[0].Vintage)
		assert.Equal(t, "2", recs[0].Quantity)
	})

	t.Run("array", func(t *testing.T) {
		recs, err := ParseImport([]byte(` [{"name":"a"},{"name":"b","price":19.99}] `))
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "19.99", recs[1].Price)
	})

	t.Run("empty array", func(t *testing.T) {
		recs, err := ParseImport([]byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	for name, doc := range map[string]string{
		"malformed":        `[{"name":"a"},`,
		"scalar":           `42`,
		"array of scalars": `[{"name":"a"}, 3]`,
		"empty":            `   `,
		"string":           `"wine"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseImport([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidImport)
		})
	}
}

func TestImportDefaults(t *testing.T) {
	recs, err := ParseImport([]byte(`[{"name":"No Details"},{"name":"Other","vintage":"n/a","region":"Mosel","varietal":"riesling"}]`))
	require.NoError(t, err)

	e := testEngine()
	res, err := e.ImportBatch(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, res.Imported, 2)

	first := res.Imported[0]
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, 2025, first.DrinkFrom)
	assert.Equal(t, 2035, first.DrinkTo)
	assert.Nil(t, first.Vintage)
	assert.Equal(t, model.RegionOther, first.Region)

	second := res.Imported[1]
	assert.Nil(t, second.Vintage)
	assert.Equal(t, model.RegionOther, second.Region)
	assert.Equal(t, "Riesling", second.Varietal)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := testEngine()
	for _, f := range []model.EntryFields{
		{Name: "Tignanello", Producer: "Antinori", Vintage: "2019", Varietal: "Other Red", Region: "Tuscany",
			Quantity: "3", DrinkFrom: "2024", DrinkTo: "2039", Location: "B2", Price: "129.99", Notes: "Sangiovese blend"},
		{Name: "Cloudy Bay", Varietal: "Sauvignon Blanc", Region: "Marlborough", Quantity: "1"},
		{Name: "Field Blend", Varietal: "Mencía", Quantity: "2", DrinkFrom: "2030", DrinkTo: "2026"},
	} {
		_, err := src.AddCellarEntry(ctx, f)
		require.NoError(t, err)
	}

	data, err := Export(src.Snapshot(), model.Inventory, exportTime)
	require.NoError(t, err)

	recs, err := ParseImport(data)
	require.NoError(t, err)
	dst := testEngine()
	_, err = dst.ImportBatch(ctx, recs)
	require.NoError(t, err)

	want := src.Inventory()
	got := dst.Inventory()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		w.ID, g.ID = "", ""
		assert.Equal(t, w, g)
	}
}

func TestExportShapes(t *testing.T) {
	rating := 5
	snap := model.Snapshot{
		Inventory: []model.CellarEntry{{ID: "c1", Name: "A", Quantity: 1, DrinkFrom: 2025, DrinkTo: 2030}},
		History:   []model.HistoryEntry{{ID: "h1", Name: "B", DrinkDate: "2025-01-02", Rating: &rating}},
	}

	data, err := Export(snap, model.History, exportTime)
	require.NoError(t, err)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history, 1)
	for _, key := range []string{"id", "name", "producer", "vintage", "varietal", "region", "drinkDate", "tastingNotes", "rating"} {
		assert.Contains(t, history[0], key)
	}

	data, err = Export(snap, model.Both, exportTime)
	require.NoError(t, err)
	var full map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &full))
	assert.JSONEq(t, `"2025-06-15T09:30:00.000Z"`, string(full["exportedAt"]))
	assert.Contains(t, full, "inventory")
	assert.Contains(t, full, "history")

	data, err = Export(model.Snapshot{}, model.Inventory, exportTime)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	first, err := Export(snap, model.Both, exportTime)
	require.NoError(t, err)
	second, err := Export(snap, model.Both, exportTime)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestDefaultFilename(t *testing.T) {
	assert.Equal(t, "wine-inventory-2025-06-15.json", DefaultFilename(model.Inventory, exportTime))
	assert.Equal(t, "wine-history-2025-06-15.json", DefaultFilename(model.History, exportTime))
	assert.Equal(t, "wine-cellar-full-2025-06-15.json", DefaultFilename(model.Both, exportTime))
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("all")
	require.NoError(t, err)
	assert.Equal(t, model.Both, c)

	_, err = ParseCollection("cellar-door")
	require.Error(t, err)
}
