package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const prefsFile = "ui_prefs.json"

// TablePrefs stores per-table UI preferences.
type TablePrefs struct {
	SortKey       string   `json:"sort_key"`
	SortDesc      bool     `json:"sort_desc"`
	HiddenColumns []string `json:"hidden_columns"`
	ActiveColumn  string   `json:"active_column"`
}

// UIPreferences stores persisted app preferences.
type UIPreferences struct {
	Cellar   TablePrefs `json:"cellar"`
	DrinkNow TablePrefs `json:"drink_now"`
	History  TablePrefs `json:"history"`
}

func prefsPath(configDir string) string {
	return filepath.Join(configDir, prefsFile)
}

// loadUIPreferences returns the saved preferences, or defaults when the
// file is missing or unreadable.
func loadUIPreferences(configDir string) UIPreferences {
	if configDir == "" {
		return UIPreferences{}
	}
	data, err := os.ReadFile(prefsPath(configDir))
	if err != nil {
		return UIPreferences{}
	}

	var prefs UIPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return UIPreferences{}
	}
	return prefs
}

func saveUIPreferences(configDir string, prefs UIPreferences) error {
	if configDir == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(prefsPath(configDir), data, 0o600); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
