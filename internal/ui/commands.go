package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cellar/internal/cellar"
	"cellar/internal/enrich"
	"cellar/internal/model"
	"cellar/internal/transfer"
)

type entrySubmittedMsg struct {
	kind   formKind
	id     string
	fields model.EntryFields
}

type promptSubmittedMsg struct {
	kind    promptKind
	value   string
	history bool
}

// mutationDoneMsg reports an engine operation. warning is set when the
// change was applied in memory but could not be saved.
type mutationDoneMsg struct {
	kind    cellar.CommandKind
	result  cellar.Result
	warning string
}

type labelReadMsg struct {
	result  enrich.LabelResult
	preview string
	err     error
}

type windowFoundMsg struct {
	result enrich.WindowResult
}

type exportDoneMsg struct {
	path string
}

// dispatchCmd runs one engine command off the UI loop.
func dispatchCmd(ctx context.Context, engine *cellar.Engine, c cellar.Command) tea.Cmd {
	return func() tea.Msg {
		res, err := engine.Dispatch(ctx, c)
		if err != nil {
			if errors.Is(err, cellar.ErrPersist) {
				return mutationDoneMsg{kind: c.Kind, result: res, warning: "Saved in memory only: " + err.Error()}
			}
			return model.ErrorMsg{Err: err}
		}
		return mutationDoneMsg{kind: c.Kind, result: res}
	}
}

// readLabelCmd loads the photo and runs stage one for generation gen.
func readLabelCmd(ctx context.Context, p *enrich.Pipeline, gen uint64, path string, caps TerminalCapabilities, previewWidth, previewHeight int) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return labelReadMsg{result: enrich.LabelResult{Gen: gen}, err: fmt.Errorf("failed to read image: %w", err)}
		}
		var preview string
		if previewWidth > 0 {
			preview, _ = RenderLabelPreview(data, caps, previewWidth, previewHeight)
		}
		res := p.ReadLabel(ctx, gen, data, enrich.MediaType(path, data))
		return labelReadMsg{result: res, preview: preview}
	}
}

// lookupWindowCmd runs stage two for generation gen.
func lookupWindowCmd(ctx context.Context, p *enrich.Pipeline, gen uint64, draft enrich.Draft) tea.Cmd {
	return func() tea.Msg {
		return windowFoundMsg{result: p.LookupWindow(ctx, gen, draft)}
	}
}

func importCmd(ctx context.Context, engine *cellar.Engine, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		records, err := transfer.ParseImport(data)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return dispatchCmd(ctx, engine, cellar.Command{Kind: cellar.CmdImport, Records: records})()
	}
}

func exportCmd(engine *cellar.Engine, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := transfer.Export(engine.Snapshot(), model.Both, engine.Now())
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to write export: %w", err)}
		}
		return exportDoneMsg{path: path}
	}
}
