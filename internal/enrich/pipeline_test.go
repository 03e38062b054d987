package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/model"
)

type fakeProvider struct {
	label      string
	labelErr   error
	window     string
	windowErr  error
	queries    []WindowQuery
	onReadHook func()
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ReadLabel(context.Context, []byte, string) (string, error) {
	if f.onReadHook != nil {
		f.onReadHook()
	}
	return f.label, f.labelErr
}

func (f *fakeProvider) ResearchWindow(_ context.Context, q WindowQuery) (string, error) {
	f.queries = append(f.queries, q)
	return f.window, f.windowErr
}

func TestScanAppliesWindow(t *testing.T) {
	fp := &fakeProvider{
		label:  `{"name":"Monte Bello","producer":"Ridge","vintage":2016,"varietal":"Cabernet Sauvignon","region":"Sonoma","notes":"Estate"}`,
		window: `Found it. {"drinkFrom":2024,"drinkTo":2045,"source":"CellarTracker","confidence":"medium","notes":"Long-lived"}`,
	}
	p := NewProviderPipeline(fp)

	res := p.Scan(context.Background(), []byte("img"), "image/jpeg")
	assert.False(t, res.Stale)
	assert.Empty(t, res.Warning)
	require.NotNil(t, res.Window)
	require.Len(t, fp.queries, 1)
	assert.Equal(t, "Ridge", fp.queries[0].Producer)

	f := res.Fields("2025-06-15")
	assert.Equal(t, "Monte Bello", f.Name)
	assert.Equal(t, "2016", f.Vintage)
	assert.Equal(t, "2024", f.DrinkFrom)
	assert.Equal(t, "2045", f.DrinkTo)
	assert.Equal(t, "Estate\nCellarTracker: Long-lived", f.Notes)
	assert.Equal(t, "2025-06-15", f.DrinkDate)
}

func TestScanLabelFailureGivesManualDraft(t *testing.T) {
	fp := &fakeProvider{label: "this is not json"}
	p := NewProviderPipeline(fp)

	res := p.Scan(context.Background(), []byte("img"), "image/jpeg")
	assert.Equal(t, ReadLabelWarning, res.Warning)
	assert.Equal(t, Draft{}, res.Draft)
	assert.Nil(t, res.Window)
	assert.Empty(t, fp.queries, "window lookup must not run after a failed read")

	fp = &fakeProvider{labelErr: errors.New("timeout")}
	res = NewProviderPipeline(fp).Scan(context.Background(), []byte("img"), "image/jpeg")
	assert.Equal(t, ReadLabelWarning, res.Warning)

	for _, reply := range []string{"null", "```json\nnull\n```"} {
		fp = &fakeProvider{label: reply}
		res = NewProviderPipeline(fp).Scan(context.Background(), []byte("img"), "image/jpeg")
		assert.Equal(t, ReadLabelWarning, res.Warning, reply)
		assert.Equal(t, Draft{}, res.Draft, reply)
		assert.Empty(t, fp.queries, reply)
	}
}

func TestScanSkipsLookupWithoutIdentity(t *testing.T) {
	fp := &fakeProvider{label: `{"vintage":2019,"region":"Rioja"}`}
	res := NewProviderPipeline(fp).Scan(context.Background(), []byte("img"), "image/jpeg")
	assert.Empty(t, res.Warning)
	assert.Empty(t, fp.queries)
	assert.Equal(t, "Rioja", res.Draft.Region)
}

func TestWindowFailureIsSilent(t *testing.T) {
	for name, fp := range map[string]*fakeProvider{
		"error":    {label: `{"producer":"Ridge"}`, windowErr: errors.New("boom")},
		"no json":  {label: `{"producer":"Ridge"}`, window: "no idea"},
		"nonsense": {label: `{"producer":"Ridge"}`, window: `{"drinkFrom":"soon"}`},
	} {
		t.Run(name, func(t *testing.T) {
			res := NewProviderPipeline(fp).Scan(context.Background(), []byte("img"), "image/jpeg")
			assert.Empty(t, res.Warning)
			assert.Nil(t, res.Window)
			f := res.Fields("2025-06-15")
			assert.Empty(t, f.DrinkFrom)
			assert.Empty(t, f.DrinkTo)
			assert.Equal(t, "Ridge", f.Producer)
		})
	}
}

func TestApplyWindowIsAdditive(t *testing.T) {
	f := model.EntryFields{DrinkFrom: "2025", DrinkTo: "2030", Notes: "mine"}
	ApplyWindow(&f, Window{DrinkTo: 2040})
	assert.Equal(t, "2025", f.DrinkFrom)
	assert.Equal(t, "2040", f.DrinkTo)
	assert.Equal(t, "mine", f.Notes)

	ApplyWindow(&f, Window{Source: "Vivino"})
	assert.Equal(t, "mine\nDrink window from Vivino", f.Notes)
}

func TestSupersededScanIsStale(t *testing.T) {
	ctx := context.Background()
	fp := &fakeProvider{label: `{"producer":"Old"}`}
	p := NewProviderPipeline(fp)

	first := p.Begin()
	// A newer scan starts while the first one's label read is in flight.
	var second uint64
	fp.onReadHook = func() { second = p.Begin() }
	old := p.ReadLabel(ctx, first, []byte("img"), "image/jpeg")
	assert.True(t, old.Stale)
	assert.False(t, p.IsCurrent(old.Gen))

	fp.onReadHook = nil
	fp.label = `{"producer":"New"}`
	fresh := p.ReadLabel(ctx, second, []byte("img"), "image/jpeg")
	assert.False(t, fresh.Stale)
	assert.True(t, p.IsCurrent(fresh.Gen))

	late := p.LookupWindow(ctx, first, old.Draft)
	assert.True(t, late.Stale)
}

func TestScanReportsStaleWhenSuperseded(t *testing.T) {
	fp := &fakeProvider{label: `{"producer":"Ridge"}`}
	p := NewProviderPipeline(fp)
	fp.onReadHook = func() { p.Cancel() }

	res := p.Scan(context.Background(), []byte("img"), "image/jpeg")
	assert.True(t, res.Stale)
	assert.Empty(t, fp.queries)
}

func TestDisabledPipeline(t *testing.T) {
	p := NewProviderPipeline(nil)
	assert.False(t, p.Enabled())

	res := p.Scan(context.Background(), []byte("img"), "image/jpeg")
	assert.Equal(t, ReadLabelWarning, res.Warning)
	assert.False(t, res.Stale)
}
