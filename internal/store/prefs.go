package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ViewPrefs are the remembered table settings of one view.
type ViewPrefs struct {
	SortField     string
	SortAsc       bool
	AutoRefresh   bool
	HiddenColumns []string
	ActiveColumn  string
}

// LoadViewPrefs returns the saved prefs of view. found is false when none
// were saved yet.
func LoadViewPrefs(db *sql.DB, view string) (prefs ViewPrefs, found bool, err error) {
	query := `
		SELECT sort_field, sort_asc, auto_refresh, hidden_columns, active_column
		FROM view_prefs
		WHERE view = ?
	`

	var sortAsc, autoRefresh int
	var hidden string
	err = db.QueryRow(query, view).Scan(&prefs.SortField, &sortAsc, &autoRefresh, &hidden, &prefs.ActiveColumn)
	if errors.Is(err, sql.ErrNoRows) {
		return ViewPrefs{SortAsc: true}, false, nil
	}
	if err != nil {
		return ViewPrefs{}, false, fmt.Errorf("failed to load prefs for %s: %w", view, err)
	}

	prefs.SortAsc = sortAsc == 1
	prefs.AutoRefresh = autoRefresh == 1
	prefs.HiddenColumns = splitColumns(hidden)
	return prefs, true, nil
}

// SaveViewPrefs stores prefs for view, replacing what was there.
func SaveViewPrefs(db *sql.DB, view string, prefs ViewPrefs) error {
	query := `
		INSERT INTO view_prefs (view, sort_field, sort_asc, auto_refresh, hidden_columns, active_column, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		ON CONFLICT(view) DO UPDATE SET
			sort_field = excluded.sort_field,
			sort_asc = excluded.sort_asc,
			auto_refresh = excluded.auto_refresh,
			hidden_columns = excluded.hidden_columns,
			active_column = excluded.active_column,
			updated_at = excluded.updated_at
	`

	_, err := db.Exec(query,
		view,
		prefs.SortField,
		boolToInt(prefs.SortAsc),
		boolToInt(prefs.AutoRefresh),
		strings.Join(prefs.HiddenColumns, ","),
		prefs.ActiveColumn,
	)
	if err != nil {
		return fmt.Errorf("failed to save prefs for %s: %w", view, err)
	}
	return nil
}

// GetSetting returns the value stored under key.
func GetSetting(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key.
func SetSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
