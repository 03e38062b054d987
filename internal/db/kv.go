package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cellar/internal/model"
)

// Storage keys for the two collections.
const (
	InventoryKey = "wine-cellar-inventory"
	HistoryKey   = "wine-cellar-history"
)

// Load reads both collections. A missing key is an empty collection; an
// undecodable value is logged and also treated as empty.
func (s *Store) Load(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot

	raw, err := s.get(ctx, InventoryKey)
	if err != nil {
		return model.Snapshot{}, err
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap.Inventory); err != nil {
			s.log.Warn().Err(err).Str("key", InventoryKey).Msg("discarding undecodable inventory")
			snap.Inventory = nil
		}
	}

	raw, err = s.get(ctx, HistoryKey)
	if err != nil {
		return model.Snapshot{}, err
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &snap.History); err != nil {
			s.log.Warn().Err(err).Str("key", HistoryKey).Msg("discarding undecodable history")
			snap.History = nil
		}
	}

	return snap, nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Save writes the dirty collections of snap in a single transaction.
func (s *Store) Save(ctx context.Context, snap model.Snapshot, dirty model.Collection) error {
	if dirty == 0 {
		return nil
	}

	values := make(map[string][]byte, 2)
	if dirty.Has(model.Inventory) {
		inv := snap.Inventory
		if inv == nil {
			inv = []model.CellarEntry{}
		}
		data, err := json.Marshal(inv)
		if err != nil {
			return fmt.Errorf("failed to encode inventory: %w", err)
		}
		values[InventoryKey] = data
	}
	if dirty.Has(model.History) {
		hist := snap.History
		if hist == nil {
			hist = []model.HistoryEntry{}
		}
		data, err := json.Marshal(hist)
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		values[HistoryKey] = data
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stamp := s.now().UTC().Format("2006-01-02T15:04:05.000Z")
	for _, key := range []string{InventoryKey, HistoryKey} {
		data, ok := values[key]
		if !ok {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, string(data), stamp)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdatedAt returns when key was last written, or "" if it never was.
func (s *Store) UpdatedAt(ctx context.Context, key string) (string, error) {
	var stamp string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, key).Scan(&stamp)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s timestamp: %w", key, err)
	}
	return stamp, nil
}
