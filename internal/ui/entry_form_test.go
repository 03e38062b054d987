package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/cellar"
	"cellar/internal/model"
)

func submit(t *testing.T, form *EntryFormModel) (entrySubmittedMsg, bool) {
	t.Helper()
	cmd := form.save()
	if cmd == nil {
		return entrySubmittedMsg{}, false
	}
	msg, ok := cmd().(entrySubmittedMsg)
	require.True(t, ok)
	return msg, true
}

func newFormTestEngine() *cellar.Engine {
	return cellar.NewEngine(model.Snapshot{}, cellar.NewMemoryPersister(model.Snapshot{}), cellar.WithClock(fixedNow))
}

func TestFormSubmitsWithoutName(t *testing.T) {
	form := NewEntryFormModel(formAddCellar, "", model.EntryFields{Producer: "Ridge"}, DefaultFormKeyMap())

	msg, ok := submit(t, form)
	require.True(t, ok)
	assert.Empty(t, form.error)
	assert.Empty(t, msg.fields.Name)

	res, err := newFormTestEngine().AddCellarEntry(context.Background(), msg.fields)
	require.NoError(t, err)
	require.NotNil(t, res.Cellar)
	assert.Equal(t, "Ridge", res.Cellar.Producer)
	assert.Equal(t, 1, res.Cellar.Quantity)
}

func TestFormBadPriceFallsBackToEmpty(t *testing.T) {
	form := NewEntryFormModel(formAddCellar, "", model.EntryFields{Name: "Monte Bello", Price: "-4"}, DefaultFormKeyMap())

	msg, ok := submit(t, form)
	require.True(t, ok)
	assert.Empty(t, form.error)

	res, err := newFormTestEngine().AddCellarEntry(context.Background(), msg.fields)
	require.NoError(t, err)
	require.NotNil(t, res.Cellar)
	assert.Equal(t, "Monte Bello", res.Cellar.Name)
	assert.Empty(t, res.Cellar.Price)
}

func TestHistoryFormNormalizesDate(t *testing.T) {
	form := NewEntryFormModel(formAddHistory, "", model.EntryFields{
		Name:      "Krug",
		DrinkDate: "June 20, 2025",
		Rating:    "5",
	}, DefaultFormKeyMap())

	msg, ok := submit(t, form)
	require.True(t, ok)
	assert.Equal(t, formAddHistory, msg.kind)
	assert.Equal(t, "2025-06-20", msg.fields.DrinkDate)
	assert.Equal(t, "5", msg.fields.Rating)
}

func TestHistoryFormBadInputFallsBackToDefaults(t *testing.T) {
	form := NewEntryFormModel(formAddHistory, "", model.EntryFields{Name: "Krug", DrinkDate: "someday", Rating: "9"}, DefaultFormKeyMap())

	msg, ok := submit(t, form)
	require.True(t, ok)
	assert.Empty(t, form.error)
	assert.Equal(t, "someday", msg.fields.DrinkDate)

	res, err := newFormTestEngine().AddHistoryEntry(context.Background(), msg.fields)
	require.NoError(t, err)
	require.NotNil(t, res.History)
	assert.Equal(t, "Krug", res.History.Name)
	assert.Equal(t, "2025-06-15", res.History.DrinkDate)
	assert.Nil(t, res.History.Rating)
}

func TestLogFormFocusesRating(t *testing.T) {
	form := NewEntryFormModel(formLogTasting, "c1", model.EntryFields{Name: "Barolo", DrinkDate: "2025-06-15"}, DefaultFormKeyMap())
	assert.Equal(t, "Rating (1-5)", form.fields[form.focusedField].label)

	msg, ok := submit(t, form)
	require.True(t, ok)
	assert.Equal(t, "c1", msg.id)
	assert.Equal(t, "Barolo", msg.fields.Name)
}

func TestFormTypingAndFieldNavigation(t *testing.T) {
	form := NewEntryFormModel(formAddCellar, "", model.EntryFields{}, DefaultFormKeyMap())

	next, _ := form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Tignanello")})
	form = &next
	next, _ = form.Update(tea.KeyMsg{Type: tea.KeyTab})
	form = &next
	next, _ = form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Antinori")})
	form = &next

	values := form.Values()
	assert.Equal(t, "Tignanello", values.Name)
	assert.Equal(t, "Antinori", values.Producer)

	next, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg, ok := cmd().(entrySubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, "Tignanello", msg.fields.Name)
	assert.Empty(t, next.error)
}

func TestFormCancelSendsCancelled(t *testing.T) {
	form := NewEntryFormModel(formAddCellar, "", model.EntryFields{}, DefaultFormKeyMap())

	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, model.FormCancelledMsg{}, cmd())
}
