package tableview

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryRows() []Row {
	rows := make([]Row, 0, 15)
	for i := 1; i <= 15; i++ {
		status := "Resolved"
		if i <= 10 {
			status = "Pending"
		}
		rows = append(rows, Row{
			"query_id":  json.Number(fmt.Sprint(i)),
			"user_name": fmt.Sprintf("guest%02d", i),
			"status":    status,
		})
	}
	return rows
}

func ids(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Value("query_id"))
	}
	return out
}

func TestEmptyDataSet(t *testing.T) {
	c := New(Config{PageSize: 6})
	c.SetData(nil)

	got := c.VisibleSlice()
	assert.Empty(t, got.Rows)
	assert.Equal(t, 0, got.TotalFiltered)
	assert.Equal(t, 1, got.CurrentPage)
	assert.Equal(t, 1, got.TotalPages)
	assert.Equal(t, 0, got.RangeStart)
	assert.Equal(t, 0, got.RangeEnd)
	assert.False(t, got.HasPrev())
	assert.False(t, got.HasNext())
}

func TestStatusFilterPaginates(t *testing.T) {
	c := New(Config{PageSize: 6})
	c.SetData(queryRows())
	c.SetFieldFilter("status", "Pending")

	got := c.VisibleSlice()
	assert.Equal(t, 10, got.TotalFiltered)
	assert.Equal(t, 2, got.TotalPages)
	assert.Equal(t, 1, got.CurrentPage)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(got.Rows))
	assert.Equal(t, 1, got.RangeStart)
	assert.Equal(t, 6, got.RangeEnd)
	assert.Equal(t, "Showing 1–6 of 10", got.Summary())

	c.ChangePage(1)
	got = c.VisibleSlice()
	assert.Equal(t, []string{"7", "8", "9", "10"}, ids(got.Rows))
	assert.Equal(t, 7, got.RangeStart)
	assert.Equal(t, 10, got.RangeEnd)
}

func TestFreeTextMatchesSearchableFields(t *testing.T) {
	c := New(Config{PageSize: 10, SearchFields: []string{"username", "email"}})
	c.SetData([]Row{
		{"user_id": 1, "username": "jdoe", "email": "john@x.com"},
		{"user_id": 2, "username": "mary", "email": "m@x.com"},
	})
	c.SetFilterText("  JOHN ")

	got := c.VisibleSlice()
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "john@x.com", got.Rows[0].Value("email"))
	assert.Equal(t, "john", c.FilterText())
}

func TestFreeTextIgnoresUnlistedFields(t *testing.T) {
	c := New(Config{PageSize: 10, SearchFields: []string{"username"}})
	c.SetData([]Row{{"username": "mary", "notes": "john's friend"}})
	c.SetFilterText("john")
	assert.Empty(t, c.VisibleSlice().Rows)
}

func TestEmptySearchFieldsSearchWholeRow(t *testing.T) {
	c := New(Config{PageSize: 10})
	c.SetData([]Row{
		{"room_no": "101", "room_type": "Deluxe", "status": "occupied"},
		{"room_no": "102", "room_type": "Suite", "status": "available"},
	})
	c.SetFilterText("suite")
	got := c.VisibleSlice()
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "102", got.Rows[0].Value("room_no"))
}

func TestNullFieldsNeverMatchQuery(t *testing.T) {
	c := New(Config{PageSize: 10, SearchFields: []string{"user_name"}})
	c.SetData([]Row{{"user_name": nil}, {"user_name": "null"}})
	c.SetFilterText("null")
	assert.Len(t, c.VisibleSlice().Rows, 1)
}

func TestFiltersAreANDed(t *testing.T) {
	c := New(Config{PageSize: 10, SearchFields: []string{"guest_name"}})
	c.SetData([]Row{
		{"guest_name": "Asha", "status": "Success", "mode": "UPI"},
		{"guest_name": "Asha", "status": "Failed", "mode": "UPI"},
		{"guest_name": "Ravi", "status": "Success", "mode": "UPI"},
		{"guest_name": "Asha", "status": "Success", "mode": "Card"},
	})
	c.SetFilterText("asha")
	c.SetFieldFilter("status", "Success")
	c.SetFieldFilter("mode", "UPI")
	assert.Equal(t, 1, c.VisibleSlice().TotalFiltered)

	c.SetFieldFilter("mode", "")
	assert.Equal(t, 2, c.VisibleSlice().TotalFiltered)
	assert.Equal(t, map[string]string{"status": "Success"}, c.FieldFilters())
}

func TestFieldFilterIsExactAndCaseSensitive(t *testing.T) {
	c := New(Config{PageSize: 10})
	c.SetData([]Row{{"status": "Pending"}, {"status": "pending"}, {"status": "Pending review"}})
	c.SetFieldFilter("status", "Pending")
	assert.Equal(t, 1, c.VisibleSlice().TotalFiltered)
}

func TestFilteringIsIdempotent(t *testing.T) {
	c := New(Config{PageSize: 4, SearchFields: []string{"user_name"}})
	c.SetData(queryRows())
	c.SetFieldFilter("status", "Pending")
	c.SetFilterText("guest0")
	first := c.VisibleSlice()

	c.SetFieldFilter("status", "Pending")
	c.SetFilterText("guest0")
	second := c.VisibleSlice()

	assert.Equal(t, first, second)
}

func TestRoundTripPreservesOrder(t *testing.T) {
	rows := queryRows()
	c := New(Config{PageSize: len(rows)})
	c.SetData(rows)
	assert.Equal(t, rows, c.VisibleSlice().Rows)
}

func TestFilterKeepsInsertionOrder(t *testing.T) {
	c := New(Config{PageSize: 20})
	c.SetData([]Row{
		{"id": "c", "status": "Pending"},
		{"id": "a", "status": "Resolved"},
		{"id": "b", "status": "Pending"},
	})
	c.SetFieldFilter("status", "Pending")
	got := c.VisibleSlice().Rows
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Value("id"))
	assert.Equal(t, "b", got[1].Value("id"))
}

func TestSortToggleReversesOrder(t *testing.T) {
	c := New(Config{PageSize: 20})
	c.SetData([]Row{
		{"name": "charlie"}, {"name": "Alpha"}, {"name": "bravo"}, {"name": "delta"},
	})

	c.SetSort("name")
	asc := c.VisibleSlice().Rows
	names := func(rows []Row) []string {
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.Value("name"))
		}
		return out
	}
	assert.Equal(t, []string{"Alpha", "bravo", "charlie", "delta"}, names(asc))

	c.SetSort("name")
	desc := c.VisibleSlice().Rows
	assert.Equal(t, []string{"delta", "charlie", "bravo", "Alpha"}, names(desc))

	spec, ok := c.Sort()
	require.True(t, ok)
	assert.False(t, spec.Ascending)
}

func TestNewSortColumnStartsAscending(t *testing.T) {
	c := New(Config{})
	c.SetSort("name")
	c.SetSort("name")
	c.SetSort("status")

	spec, ok := c.Sort()
	require.True(t, ok)
	assert.Equal(t, SortSpec{Field: "status", Ascending: true}, spec)
}

func TestSortIsStable(t *testing.T) {
	c := New(Config{PageSize: 20})
	c.SetData([]Row{
		{"id": "1", "status": "Pending"},
		{"id": "2", "status": "Resolved"},
		{"id": "3", "status": "pending"},
		{"id": "4", "status": nil},
	})
	c.SetSort("status")

	got := c.VisibleSlice().Rows
	var order []string
	for _, r := range got {
		order = append(order, r.Value("id"))
	}
	assert.Equal(t, []string{"4", "1", "3", "2"}, order)
}

func TestUnknownSortFieldIsNoop(t *testing.T) {
	rows := queryRows()
	c := New(Config{PageSize: 20})
	c.SetData(rows)
	c.SetSort("does_not_exist")
	assert.Equal(t, rows, c.VisibleSlice().Rows)
}

func TestSortComparesStringForm(t *testing.T) {
	c := New(Config{PageSize: 20})
	c.SetData([]Row{{"amount": json.Number("900")}, {"amount": json.Number("1200")}})
	c.SetSort("amount")
	got := c.VisibleSlice().Rows
	assert.Equal(t, "1200", got[0].Value("amount"))
}

func TestFilterResetsPageButSortDoesNot(t *testing.T) {
	c := New(Config{PageSize: 6})
	c.SetData(queryRows())
	c.ChangePage(1)
	require.Equal(t, 2, c.CurrentPage())

	c.SetSort("user_name")
	assert.Equal(t, 2, c.CurrentPage())

	c.SetFilterText("guest")
	assert.Equal(t, 1, c.CurrentPage())

	c.ChangePage(2)
	c.SetFieldFilter("status", "Resolved")
	assert.Equal(t, 1, c.CurrentPage())
}

func TestSetDataResetsPage(t *testing.T) {
	c := New(Config{PageSize: 6})
	c.SetData(queryRows())
	c.ChangePage(2)
	require.Equal(t, 3, c.CurrentPage())

	c.SetData(queryRows())
	assert.Equal(t, 1, c.CurrentPage())
}

func TestChangePageOnLastPageIsNoop(t *testing.T) {
	c := New(Config{PageSize: 6})
	c.SetData(queryRows())
	c.ChangePage(1)
	c.ChangePage(1)
	require.Equal(t, 3, c.CurrentPage())

	c.ChangePage(1)
	assert.Equal(t, 3, c.CurrentPage())
	assert.False(t, c.VisibleSlice().HasNext())
}

func TestPageInvariantHolds(t *testing.T) {
	sizes := []int{1, 2, 6, 10, 25}
	deltas := []int{1, 5, -2, 100, -100, 0, 3, -1, 7}
	for _, size := range sizes {
		for n := 0; n <= 15; n++ {
			c := New(Config{PageSize: size})
			c.SetData(queryRows()[:n])
			want := max(1, (n+size-1)/size)
			for _, d := range deltas {
				c.ChangePage(d)
				got := c.VisibleSlice()
				assert.Equal(t, want, got.TotalPages, "size=%d n=%d", size, n)
				assert.GreaterOrEqual(t, got.CurrentPage, 1)
				assert.LessOrEqual(t, got.CurrentPage, got.TotalPages)
				assert.Equal(t, c.CurrentPage(), got.CurrentPage)
				assert.LessOrEqual(t, got.RangeEnd, got.TotalFiltered)
				assert.GreaterOrEqual(t, got.RangeStart, 0)
			}
		}
	}
}

func TestInvalidPageSizeFallsBackToDefault(t *testing.T) {
	c := New(Config{PageSize: 0})
	assert.Equal(t, DefaultPageSize, c.Config().PageSize)
	c.SetData(queryRows())
	assert.Equal(t, 2, c.VisibleSlice().TotalPages)
}

func TestOrderedCoversAllPages(t *testing.T) {
	c := New(Config{PageSize: 6})
	c.SetData(queryRows())
	c.SetFieldFilter("status", "Pending")
	c.SetSort("user_name")
	c.SetSort("user_name")

	all := c.Ordered()
	require.Len(t, all, 10)
	assert.Equal(t, "10", all[0].Value("query_id"))
	assert.Equal(t, "1", all[9].Value("query_id"))
}

func TestSetDataDoesNotAliasCallerSlice(t *testing.T) {
	rows := []Row{{"name": "b"}, {"name": "a"}}
	c := New(Config{})
	c.SetData(rows)
	c.SetSort("name")
	_ = c.VisibleSlice()
	assert.Equal(t, "b", rows[0].Value("name"))
}

func TestRestoreAndClearSort(t *testing.T) {
	c := New(Config{})
	c.RestoreSort("name", false)
	spec, ok := c.Sort()
	require.True(t, ok)
	assert.Equal(t, SortSpec{Field: "name", Ascending: false}, spec)

	c.SetSort("name")
	spec, _ = c.Sort()
	assert.True(t, spec.Ascending)

	c.ClearSort()
	_, ok = c.Sort()
	assert.False(t, ok)

	c.RestoreSort("", true)
	_, ok = c.Sort()
	assert.False(t, ok)
}

func TestMeta(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, "", c.Meta())

	c.SetSort("status")
	c.SetSort("status")
	c.SetFilterText("Asha")
	c.SetFieldFilter("mode", "UPI")
	c.SetFieldFilter("status", "Success")
	assert.Equal(t, `sort STATUS desc  ·  search "asha"  ·  MODE="UPI"  ·  STATUS="Success"`, c.Meta())

	c.ClearFilters()
	assert.Equal(t, "sort STATUS desc", c.Meta())
}

func TestDistinctIgnoresFilters(t *testing.T) {
	c := New(Config{})
	c.SetData([]Row{
		{"status": "Pending"},
		{"status": "Resolved"},
		{"status": "Pending"},
		{"status": nil},
		{"other": "x"},
	})
	c.SetFieldFilter("status", "Resolved")

	assert.Equal(t, []string{"Pending", "Resolved"}, c.Distinct("status"))
	assert.Empty(t, c.Distinct("missing"))
}
