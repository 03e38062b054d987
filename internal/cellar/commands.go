package cellar

import (
	"context"
	"fmt"

	"cellar/internal/model"
)

// CommandKind names a lifecycle operation.
type CommandKind int

const (
	CmdAddCellar CommandKind = iota
	CmdEditCellar
	CmdDeleteCellar
	CmdAdjustQuantity
	CmdConsume
	CmdLogFromCellar
	CmdAddHistory
	CmdEditHistory
	CmdDeleteHistory
	CmdImport
)

var commandNames = map[CommandKind]string{
	CmdAddCellar:      "add-cellar",
	CmdEditCellar:     "edit-cellar",
	CmdDeleteCellar:   "delete-cellar",
	CmdAdjustQuantity: "adjust-quantity",
	CmdConsume:        "consume",
	CmdLogFromCellar:  "log-from-cellar",
	CmdAddHistory:     "add-history",
	CmdEditHistory:    "edit-history",
	CmdDeleteHistory:  "delete-history",
	CmdImport:         "import",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is a user gesture translated for the engine. Only the fields the
// kind needs are read.
type Command struct {
	Kind    CommandKind
	ID      string
	Delta   int
	Fields  model.EntryFields
	Records []model.EntryFields
}

// Dispatch runs cmd against the engine.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	switch cmd.Kind {
	case CmdAddCellar:
		return e.AddCellarEntry(ctx, cmd.Fields)
	case CmdEditCellar:
		return e.EditCellarEntry(ctx, cmd.ID, cmd.Fields)
	case CmdDeleteCellar:
		return e.DeleteCellarEntry(ctx, cmd.ID)
	case CmdAdjustQuantity:
		return e.AdjustQuantity(ctx, cmd.ID, cmd.Delta)
	case CmdConsume:
		return e.ConsumeEntry(ctx, cmd.ID)
	case CmdLogFromCellar:
		return e.LogFromCellar(ctx, cmd.ID, cmd.Fields)
	case CmdAddHistory:
		return e.AddHistoryEntry(ctx, cmd.Fields)
	case CmdEditHistory:
		return e.EditHistoryEntry(ctx, cmd.ID, cmd.Fields)
	case CmdDeleteHistory:
		return e.DeleteHistoryEntry(ctx, cmd.ID)
	case CmdImport:
		return e.ImportBatch(ctx, cmd.Records)
	default:
		return Result{}, fmt.Errorf("unknown command %s", cmd.Kind)
	}
}
