// Package enrich turns a photographed wine label into a draft entry, and
// optionally researches the wine's drink window.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoProvider is returned when no AI provider is configured.
var ErrNoProvider = errors.New("no AI provider configured")

// ReadLabelWarning is shown when a label cannot be read.
const ReadLabelWarning = "Could not read label. Please fill in details manually."

// LabelReader sends a label image to a vision model and returns its raw text reply.
type LabelReader interface {
	ReadLabel(ctx context.Context, image []byte, mediaType string) (string, error)
}

// WindowResearcher asks a model for a wine's drink window and returns its raw
// text reply, with multiple text segments joined by newlines.
type WindowResearcher interface {
	ResearchWindow(ctx context.Context, q WindowQuery) (string, error)
}

// Provider is a model backend able to serve both stages.
type Provider interface {
	LabelReader
	WindowResearcher
	Name() string
}

// Draft is what could be read off a label.
type Draft struct {
	Name     string
	Producer string
	Vintage  *int
	Varietal string // a known varietal or ""
	Region   string // a known region or "Other"
	Notes    string
}

// Identified reports whether the label yielded enough to research a window.
func (d Draft) Identified() bool {
	return strings.TrimSpace(d.Producer) != "" || strings.TrimSpace(d.Name) != ""
}

// Query builds the drink-window lookup for this draft.
func (d Draft) Query() WindowQuery {
	return WindowQuery{
		Producer: d.Producer,
		Name:     d.Name,
		Vintage:  d.Vintage,
		Varietal: d.Varietal,
	}
}

// WindowQuery identifies a wine for drink-window research.
type WindowQuery struct {
	Producer string
	Name     string
	Vintage  *int
	Varietal string
}

// Describe renders the query as a single search phrase.
func (q WindowQuery) Describe() string {
	parts := make([]string, 0, 4)
	if q.Vintage != nil {
		parts = append(parts, fmt.Sprintf("%d", *q.Vintage))
	}
	for _, s := range []string{q.Producer, q.Name, q.Varietal} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Window is a researched drink window. Zero years mean "unknown".
type Window struct {
	DrinkFrom  int    `validate:"omitempty,gte=1900,lte=2200"`
	DrinkTo    int    `validate:"omitempty,gte=1900,lte=2200"`
	Source     string
	Confidence string `validate:"omitempty,oneof=high medium low"`
	Notes      string
}

// Usable reports whether the window carries anything worth applying.
func (w Window) Usable() bool {
	return w.DrinkFrom != 0 || w.DrinkTo != 0 || w.Source != "" || w.Notes != ""
}

// NoteSuffix is the text appended to a draft's notes for this window.
func (w Window) NoteSuffix() string {
	switch {
	case w.Notes != "" && w.Source != "":
		return "\n" + w.Source + ": " + w.Notes
	case w.Notes != "":
		return "\n" + w.Notes
	case w.Source != "":
		return "\nDrink window from " + w.Source
	default:
		return ""
	}
}
