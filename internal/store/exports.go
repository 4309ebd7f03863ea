package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ExportRecord is one written export file.
type ExportRecord struct {
	ID        int64
	View      string
	Format    string
	Path      string
	RowCount  int
	CreatedAt time.Time
}

// RecordExport appends an export to the history and returns its ID.
func RecordExport(db *sql.DB, rec ExportRecord) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO exports (view, format, path, row_count)
		VALUES (?, ?, ?, ?)
	`, rec.View, rec.Format, rec.Path, rec.RowCount)
	if err != nil {
		return 0, fmt.Errorf("failed to record export: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get export ID: %w", err)
	}
	return id, nil
}

// ListExports returns the newest exports first. limit <= 0 returns all.
func ListExports(db *sql.DB, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT id, view, format, path, row_count, created_at
		FROM exports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var results []ExportRecord
	for rows.Next() {
		var r ExportRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.View, &r.Format, &r.Path, &r.RowCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = t
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}

	return results, nil
}
