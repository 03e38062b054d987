// Package transfer converts collections to and from the JSON backup format.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cellar/internal/model"
	"cellar/internal/util"
)

// ErrInvalidImport is returned when an import document is not a record
// object or an array of record objects.
var ErrInvalidImport = errors.New("invalid import: expected a JSON object or an array of objects")

// TimestampLayout formats the exportedAt field.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type importRecord struct {
	Name      util.FlexString `json:"name"`
	Producer  util.FlexString `json:"producer"`
	Vintage   util.FlexString `json:"vintage"`
	Varietal  util.FlexString `json:"varietal"`
	Region    util.FlexString `json:"region"`
	Quantity  util.FlexString `json:"quantity"`
	Location  util.FlexString `json:"location"`
	DrinkFrom util.FlexString `json:"drinkFrom"`
	DrinkTo   util.FlexString `json:"drinkTo"`
	Notes     util.FlexString `json:"notes"`
	Price     util.FlexString `json:"price"`
}

func (r importRecord) fields() model.EntryFields {
	return model.EntryFields{
		Name:      r.Name.String(),
		Producer:  r.Producer.String(),
		Vintage:   r.Vintage.String(),
		Varietal:  r.Varietal.String(),
		Region:    r.Region.String(),
		Quantity:  r.Quantity.String(),
		Location:  r.Location.String(),
		DrinkFrom: r.DrinkFrom.String(),
		DrinkTo:   r.DrinkTo.String(),
		Notes:     r.Notes.String(),
		Price:     r.Price.String(),
	}
}

// ParseImport decodes an import document into raw records. Either the whole
// document is accepted or ErrInvalidImport is returned.
func ParseImport(data []byte) ([]model.EntryFields, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidImport)
	}

	var raws []json.RawMessage
	switch data[0] {
	case '{':
		raws = []json.RawMessage{data}
	case '[':
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
	default:
		return nil, ErrInvalidImport
	}

	records := make([]model.EntryFields, 0, len(raws))
	for i, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrInvalidImport, i)
		}
		var rec importRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidImport, i, err)
		}
		records = append(records, rec.fields())
	}
	return records, nil
}

type combinedExport struct {
	Inventory  []model.CellarEntry  `json:"inventory"`
	History    []model.HistoryEntry `json:"history"`
	ExportedAt string               `json:"exportedAt"`
}

// Export serializes the requested collections as indented JSON. A single
// collection is a bare array; both collections are wrapped with an export
// timestamp.
func Export(snap model.Snapshot, which model.Collection, now time.Time) ([]byte, error) {
	inventory := snap.Inventory
	if inventory == nil {
		inventory = []model.CellarEntry{}
	}
	history := snap.History
	if history == nil {
		history = []model.HistoryEntry{}
	}

	var v any
	switch which {
	case model.Inventory:
		v = inventory
	case model.History:
		v = history
	case model.Both:
		v = combinedExport{
			Inventory:  inventory,
			History:    history,
			ExportedAt: now.UTC().Format(TimestampLayout),
		}
	default:
		return nil, fmt.Errorf("unknown collection %d", which)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return append(data, '\n'), nil
}

// DefaultFilename is the suggested export file name for which on now's date.
func DefaultFilename(which model.Collection, now time.Time) string {
	date := util.TodayISO(now)
	switch which {
	case model.History:
		return "wine-history-" + date + ".json"
	case model.Both:
		return "wine-cellar-full-" + date + ".json"
	default:
		return "wine-inventory-" + date + ".json"
	}
}

// ParseCollection maps a user-facing name to a collection.
func ParseCollection(name string) (model.Collection, error) {
	switch name {
	case "", "inventory", "cellar":
		return model.Inventory, nil
	case "history", "tastings":
		return model.History, nil
	case "all", "both", "full":
		return model.Both, nil
	default:
		return 0, fmt.Errorf("unknown collection %q (want inventory, history or all)", name)
	}
}
