package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/cellar"
	"cellar/internal/enrich"
	"cellar/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
}

type stubReader struct{}

func (stubReader) ReadLabel(context.Context, []byte, string) (string, error) {
	return `{"name":"Barolo"}`, nil
}

func newTestModel(t *testing.T, snap model.Snapshot) (Model, *cellar.Engine, *enrich.Pipeline) {
	t.Helper()
	engine := cellar.NewEngine(snap, cellar.NewMemoryPersister(snap), cellar.WithClock(fixedNow))
	pipeline := enrich.NewPipeline(stubReader{}, nil)
	m := New(Options{
		Engine:   engine,
		Pipeline: pipeline,
		Logger:   zerolog.Nop(),
	})
	return m, engine, pipeline
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// startTestScan opens a scan form the way the path prompt does.
func startTestScan(t *testing.T, m Model, history bool) (Model, uint64) {
	t.Helper()
	m, cmd := update(t, m, promptSubmittedMsg{kind: promptScan, value: "label.jpg", history: history})
	require.NotNil(t, cmd)
	require.NotNil(t, m.form)
	require.True(t, m.form.scanning)
	return m, m.form.scanGen
}

func TestScanFillsFormInTwoStages(t *testing.T) {
	m, _, _ := newTestModel(t, model.Snapshot{})
	m, gen := startTestScan(t, m, false)
	assert.Equal(t, model.ScreenForm, m.screen)

	m, cmd := update(t, m, labelReadMsg{result: enrich.LabelResult{
		Gen:   gen,
		OK:    true,
		Draft: enrich.Draft{Name: "Barolo", Producer: "Vietti", Vintage: intPtr(2016)},
	}})
	require.NotNil(t, cmd, "identified label should trigger a window lookup")
	assert.Equal(t, "Barolo", m.form.Values().Name)
	assert.Equal(t, "2016", m.form.Values().Vintage)
	assert.True(t, m.form.scanning)

	m, _ = update(t, m, windowFoundMsg{result: enrich.WindowResult{
		Gen:    gen,
		OK:     true,
		Window: enrich.Window{DrinkFrom: 2026, DrinkTo: 2040, Confidence: "high"},
	}})
	values := m.form.Values()
	assert.Equal(t, "2026", values.DrinkFrom)
	assert.Equal(t, "2040", values.DrinkTo)
	assert.False(t, m.form.scanning)
	assert.Contains(t, m.form.scanNote, "high confidence")
}

func TestStaleLabelResultIsDropped(t *testing.T) {
	m, _, pipeline := newTestModel(t, model.Snapshot{})
	m, gen := startTestScan(t, m, false)

	pipeline.Begin()
	m, cmd := update(t, m, labelReadMsg{result: enrich.LabelResult{
		Gen:   gen,
		OK:    true,
		Draft: enrich.Draft{Name: "Barolo"},
	}})
	assert.Nil(t, cmd)
	assert.Empty(t, m.form.Values().Name)
	assert.True(t, m.form.scanning)
}

func TestResultFlaggedStaleIsDropped(t *testing.T) {
	m, _, _ := newTestModel(t, model.Snapshot{})
	m, gen := startTestScan(t, m, false)

	m, _ = update(t, m, labelReadMsg{result: enrich.LabelResult{
		Gen:   gen,
		Stale: true,
		Draft: enrich.Draft{Name: "Barolo"},
	}})
	assert.Empty(t, m.form.Values().Name)
}

func TestCancellingFormSupersedesScan(t *testing.T) {
	m, _, pipeline := newTestModel(t, model.Snapshot{})
	m, gen := startTestScan(t, m, false)

	m, _ = update(t, m, model.FormCancelledMsg{})
	assert.Nil(t, m.form)
	assert.Equal(t, model.ScreenCellar, m.screen)
	assert.False(t, pipeline.IsCurrent(gen))

	m, _ = update(t, m, labelReadMsg{result: enrich.LabelResult{Gen: gen, OK: true, Draft: enrich.Draft{Name: "Barolo"}}})
	assert.Nil(t, m.form)
}

func TestHistoryScanSkipsWindowLookup(t *testing.T) {
	m, _, _ := newTestModel(t, model.Snapshot{})
	m, gen := startTestScan(t, m, true)
	assert.Equal(t, formAddHistory, m.form.kind)
	assert.Equal(t, "2025-06-15", m.form.Values().DrinkDate)

	m, cmd := update(t, m, labelReadMsg{result: enrich.LabelResult{
		Gen:   gen,
		OK:    true,
		Draft: enrich.Draft{Name: "Champagne"},
	}})
	assert.Nil(t, cmd)
	assert.False(t, m.form.scanning)
	assert.Equal(t, "Champagne", m.form.Values().Name)
}

func TestLabelWarningShownOnForm(t *testing.T) {
	m, _, _ := newTestModel(t, model.Snapshot{})
	m, gen := startTestScan(t, m, false)

	m, cmd := update(t, m, labelReadMsg{result: enrich.LabelResult{Gen: gen, Warning: enrich.ReadLabelWarning}})
	assert.Nil(t, cmd)
	assert.Equal(t, enrich.ReadLabelWarning, m.form.error)
	assert.False(t, m.form.scanning)
}

func TestScanDisabledShowsNotice(t *testing.T) {
	engine := cellar.NewEngine(model.Snapshot{}, nil, cellar.WithClock(fixedNow))
	m := New(Options{Engine: engine, Pipeline: enrich.NewProviderPipeline(nil), Logger: zerolog.Nop()})

	m, _ = update(t, m, keyPress("s"))
	assert.Nil(t, m.prompt)
	assert.Contains(t, m.info, "scanning is off")
}

func TestMutationReloadsTables(t *testing.T) {
	snap := model.Snapshot{Inventory: sampleInventory()}
	m, engine, _ := newTestModel(t, snap)
	require.Equal(t, 3, m.cellarTable.Len())

	cmd := dispatchCmd(context.Background(), engine, cellar.Command{Kind: cellar.CmdConsume, ID: "c"})
	msg := cmd()
	done, ok := msg.(mutationDoneMsg)
	require.True(t, ok)

	m, _ = update(t, m, done)
	assert.Equal(t, 2, m.cellarTable.Len())
	assert.Equal(t, 1, m.historyTable.Len())
	assert.Equal(t, "Tasting logged; that was the last bottle", m.info)
}

func TestDeleteNeedsSecondPress(t *testing.T) {
	m, _, _ := newTestModel(t, model.Snapshot{Inventory: sampleInventory()})

	m, cmd := update(t, m, keyPress("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, "a", m.pendingDelete)
	assert.Contains(t, m.info, "Press x again")

	m, cmd = update(t, m, keyPress("x"))
	require.NotNil(t, cmd)
	assert.Empty(t, m.pendingDelete)

	done, ok := cmd().(mutationDoneMsg)
	require.True(t, ok)
	assert.Equal(t, cellar.CmdDeleteCellar, done.kind)
	assert.True(t, done.result.Removed)
}

func TestTabSwitchingCycles(t *testing.T) {
	m, _, _ := newTestModel(t, model.Snapshot{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.ScreenDrinkNow, m.screen)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.ScreenHistory, m.screen)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.ScreenCellar, m.screen)
}

func TestSearchPromptFiltersCellar(t *testing.T) {
	m, _, _ := newTestModel(t, model.Snapshot{Inventory: sampleInventory()})

	m, _ = update(t, m, promptSubmittedMsg{kind: promptSearch, value: "burgundy"})
	assert.Equal(t, 2, m.cellarTable.Len())
	assert.Contains(t, m.info, "2 match(es)")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 3, m.cellarTable.Len())
	assert.Equal(t, "Search cleared", m.info)
}

func TestDescribeMutation(t *testing.T) {
	tests := []struct {
		name string
		msg  mutationDoneMsg
		want string
	}{
		{"not applied", mutationDoneMsg{kind: cellar.CmdAdjustQuantity}, "Nothing changed"},
		{"add", mutationDoneMsg{kind: cellar.CmdAddCellar, result: cellar.Result{Applied: true, Cellar: &model.CellarEntry{Producer: "Ridge", Name: "Monte Bello"}}}, "Added Ridge Monte Bello"},
		{"adjust", mutationDoneMsg{kind: cellar.CmdAdjustQuantity, result: cellar.Result{Applied: true, Cellar: &model.CellarEntry{Quantity: 1}}}, "1 bottle left"},
		{"adjust to zero", mutationDoneMsg{kind: cellar.CmdAdjustQuantity, result: cellar.Result{Applied: true, Removed: true}}, "Last bottle removed"},
		{"edit to zero", mutationDoneMsg{kind: cellar.CmdEditCellar, result: cellar.Result{Applied: true, Removed: true}}, "Quantity is zero; wine removed from the cellar"},
		{"consume", mutationDoneMsg{kind: cellar.CmdConsume, result: cellar.Result{Applied: true, Cellar: &model.CellarEntry{Quantity: 4}}}, "Tasting logged; 4 bottles left"},
		{"import", mutationDoneMsg{kind: cellar.CmdImport, result: cellar.Result{Applied: true, Imported: make([]model.CellarEntry, 3)}}, "Imported 3 wines"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeMutation(tt.msg))
		})
	}
}

func TestViewRendersHeaderAndTabs(t *testing.T) {
	m, _, _ := newTestModel(t, model.Snapshot{Inventory: sampleInventory()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "Cellar")
	assert.Contains(t, view, "Drink Now")
	assert.Contains(t, view, "History")
	assert.Contains(t, view, "Barolo")
}
