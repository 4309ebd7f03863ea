package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "hoteldesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoteldesk.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, SetSetting(db, "last_view", "access"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := GetSetting(db, "last_view")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "access", v)
}

func TestViewPrefsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	prefs, found, err := LoadViewPrefs(db, "queries")
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, prefs.SortAsc)
	assert.False(t, prefs.AutoRefresh)

	want := ViewPrefs{
		SortField:     "created_at",
		SortAsc:       false,
		AutoRefresh:   true,
		HiddenColumns: []string{"message", "replies"},
		ActiveColumn:  "status",
	}
	require.NoError(t, SaveViewPrefs(db, "queries", want))

	got, found, err := LoadViewPrefs(db, "queries")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	want.AutoRefresh = false
	want.HiddenColumns = nil
	require.NoError(t, SaveViewPrefs(db, "queries", want))
	got, _, err = LoadViewPrefs(db, "queries")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, found, err = LoadViewPrefs(db, "access")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := GetSetting(db, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetSetting(db, "last_view", "tasks"))
	require.NoError(t, SetSetting(db, "last_view", "rooms"))
	v, ok, err := GetSetting(db, "last_view")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "rooms", v)
}

func TestExportsHistory(t *testing.T) {
	db := openTestDB(t)

	first, err := RecordExport(db, ExportRecord{View: "access", Format: "csv", Path: "/tmp/a.csv", RowCount: 12})
	require.NoError(t, err)
	second, err := RecordExport(db, ExportRecord{View: "transactions", Format: "xlsx", Path: "/tmp/t.xlsx", RowCount: 40})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	all, err := ListExports(db, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "transactions", all[0].View)
	assert.Equal(t, 40, all[0].RowCount)
	assert.False(t, all[0].CreatedAt.IsZero())

	latest, err := ListExports(db, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, second, latest[0].ID)

	_, err = RecordExport(db, ExportRecord{View: "access", Format: "pdf", Path: "/tmp/a.pdf"})
	assert.Error(t, err)
}
