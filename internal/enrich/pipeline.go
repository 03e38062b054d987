package enrich

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"cellar/internal/model"
)

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger for stage failures.
func WithLogger(log zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithStageTimeout bounds each external call.
func WithStageTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.stageTimeout = d
	}
}

// Pipeline runs the two enrichment stages and tags every scan attempt with a
// generation so late results from a superseded scan can be dropped.
type Pipeline struct {
	reader       LabelReader
	researcher   WindowResearcher
	log          zerolog.Logger
	stageTimeout time.Duration
	gen          atomic.Uint64
}

// NewPipeline builds a pipeline. A nil researcher skips drink-window lookups.
func NewPipeline(reader LabelReader, researcher WindowResearcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		reader:     reader,
		researcher: researcher,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewProviderPipeline builds a pipeline that uses provider for both stages.
func NewProviderPipeline(provider Provider, opts ...PipelineOption) *Pipeline {
	if provider == nil {
		return NewPipeline(nil, nil, opts...)
	}
	return NewPipeline(provider, provider, opts...)
}

// Enabled reports whether labels can be read at all.
func (p *Pipeline) Enabled() bool {
	return p != nil && p.reader != nil
}

// Begin starts a new scan attempt and returns its generation. Every earlier
// generation becomes stale.
func (p *Pipeline) Begin() uint64 {
	return p.gen.Add(1)
}

// IsCurrent reports whether gen is still the newest scan attempt.
func (p *Pipeline) IsCurrent(gen uint64) bool {
	return gen == p.gen.Load()
}

// Cancel supersedes any in-flight scan without starting a new one.
func (p *Pipeline) Cancel() {
	p.gen.Add(1)
}

// LabelResult is the outcome of stage one.
type LabelResult struct {
	Gen     uint64
	Draft   Draft
	OK      bool
	Warning string
	Stale   bool
}

// WindowResult is the outcome of stage two.
type WindowResult struct {
	Gen    uint64
	Window Window
	OK     bool
	Stale  bool
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout > 0 {
		return context.WithTimeout(ctx, p.stageTimeout)
	}
	return context.WithCancel(ctx)
}

// ReadLabel runs stage one for generation gen. Failure yields an empty draft
// and the read-label warning.
func (p *Pipeline) ReadLabel(ctx context.Context, gen uint64, image []byte, mediaType string) LabelResult {
	res := LabelResult{Gen: gen}
	if !p.Enabled() {
		p.log.Info().Err(ErrNoProvider).Uint64("gen", gen).Msg("label scan skipped")
		res.Warning = ReadLabelWarning
		res.Stale = !p.IsCurrent(gen)
		return res
	}

	sctx, cancel := p.stageContext(ctx)
	defer cancel()

	text, err := p.reader.ReadLabel(sctx, image, mediaType)
	if err == nil {
		res.Draft, err = ParseLabel(text)
	}
	if err != nil {
		p.log.Warn().Err(err).Uint64("gen", gen).Msg("label read failed")
		res.Draft = Draft{}
		res.Warning = ReadLabelWarning
	} else {
		res.OK = true
		p.log.Debug().Uint64("gen", gen).Str("producer", res.Draft.Producer).Str("name", res.Draft.Name).Msg("label read")
	}

	res.Stale = !p.IsCurrent(gen)
	return res
}

// LookupWindow runs stage two for generation gen. It never fails: anything
// unusable is reported as OK=false.
func (p *Pipeline) LookupWindow(ctx context.Context, gen uint64, draft Draft) WindowResult {
	res := WindowResult{Gen: gen}
	if p.researcher == nil || !draft.Identified() {
		res.Stale = !p.IsCurrent(gen)
		return res
	}

	sctx, cancel := p.stageContext(ctx)
	defer cancel()

	text, err := p.researcher.ResearchWindow(sctx, draft.Query())
	if err != nil {
		p.log.Debug().Err(err).Uint64("gen", gen).Msg("drink window lookup failed")
	} else if w, ok := ParseWindow(text); ok {
		res.Window = w
		res.OK = true
	} else {
		p.log.Debug().Uint64("gen", gen).Msg("drink window reply had no usable data")
	}

	res.Stale = !p.IsCurrent(gen)
	return res
}

// ScanResult is a completed two-stage scan.
type ScanResult struct {
	Gen     uint64
	Draft   Draft
	Window  *Window
	Warning string
	Stale   bool
}

// Scan begins a new generation and runs both stages in order.
func (p *Pipeline) Scan(ctx context.Context, image []byte, mediaType string) ScanResult {
	gen := p.Begin()
	label := p.ReadLabel(ctx, gen, image, mediaType)
	res := ScanResult{Gen: gen, Draft: label.Draft, Warning: label.Warning, Stale: label.Stale}
	if !label.OK || label.Stale {
		return res
	}

	window := p.LookupWindow(ctx, gen, label.Draft)
	res.Stale = window.Stale
	if window.OK {
		w := window.Window
		res.Window = &w
	}
	return res
}

// Fields renders the scan as form input dated today.
func (r ScanResult) Fields(today string) model.EntryFields {
	f := DraftFields(r.Draft, today)
	if r.Window != nil {
		ApplyWindow(&f, *r.Window)
	}
	return f
}

// DraftFields renders a draft as raw form input. The drink window is left to
// the engine's defaults.
func DraftFields(d Draft, today string) model.EntryFields {
	f := model.EntryFields{
		Name:      d.Name,
		Producer:  d.Producer,
		Varietal:  d.Varietal,
		Region:    d.Region,
		Notes:     d.Notes,
		DrinkDate: today,
	}
	if d.Vintage != nil {
		f.Vintage = strconv.Itoa(*d.Vintage)
	}
	return f
}

// ApplyWindow merges a researched window into f. Only known years overwrite
// the drink window; notes are appended.
func ApplyWindow(f *model.EntryFields, w Window) {
	if w.DrinkFrom != 0 {
		f.DrinkFrom = strconv.Itoa(w.DrinkFrom)
	}
	if w.DrinkTo != 0 {
		f.DrinkTo = strconv.Itoa(w.DrinkTo)
	}
	f.Notes += w.NoteSuffix()
}
