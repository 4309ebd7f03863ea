// Package tableview computes the visible page of a client-side table:
// filter, then sort, then paginate, always from the full data set.
package tableview

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPageSize is used when a controller is built with a page size < 1.
const DefaultPageSize = 10

// Config fixes the per-view parameters of a controller.
type Config struct {
	PageSize int
	// SearchFields are matched by the free-text query. Empty means every
	// field of the row.
	SearchFields []string
}

// Slice is the result of one render pass.
type Slice struct {
	Rows          []Row
	TotalFiltered int
	CurrentPage   int
	TotalPages    int
	// RangeStart and RangeEnd are 1-based inclusive bounds within the
	// filtered set, both 0 when nothing matched.
	RangeStart int
	RangeEnd   int
}

// HasPrev reports whether a previous page exists.
func (s Slice) HasPrev() bool { return s.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (s Slice) HasNext() bool { return s.CurrentPage < s.TotalPages }

// Summary renders the "Showing A–B of N" line.
func (s Slice) Summary() string {
	return fmt.Sprintf("Showing %d–%d of %d", s.RangeStart, s.RangeEnd, s.TotalFiltered)
}

// Controller owns one view's rows, filter, sort and page. It is not safe
// for concurrent use; all calls are expected on the UI goroutine.
type Controller struct {
	cfg    Config
	rows   []Row
	filter FilterSpec
	sort   *SortSpec
	page   int
}

// New creates a controller with no data.
func New(cfg Config) *Controller {
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultPageSize
	}
	cfg.SearchFields = append([]string(nil), cfg.SearchFields...)
	return &Controller{
		cfg:    cfg,
		filter: FilterSpec{Fields: map[string]string{}},
		page:   1,
	}
}

// Config returns the controller configuration.
func (c *Controller) Config() Config { return c.cfg }

// SetData replaces the full data set and goes back to page 1.
func (c *Controller) SetData(rows []Row) {
	c.rows = append([]Row(nil), rows...)
	c.page = 1
}

// Len returns the size of the unfiltered data set.
func (c *Controller) Len() int { return len(c.rows) }

// SetFilterText sets the free-text query and goes back to page 1.
func (c *Controller) SetFilterText(text string) {
	c.filter.Query = normalizeQuery(text)
	c.page = 1
}

// FilterText returns the normalized free-text query.
func (c *Controller) FilterText() string { return c.filter.Query }

// SetFieldFilter sets an exact-match filter on field. An empty value
// removes it. Either way the controller goes back to page 1.
func (c *Controller) SetFieldFilter(field, value string) {
	if value == "" {
		delete(c.filter.Fields, field)
	} else {
		c.filter.Fields[field] = value
	}
	c.page = 1
}

// FieldFilter returns the active value for field, or "".
func (c *Controller) FieldFilter(field string) string {
	return c.filter.Fields[field]
}

// FieldFilters returns a copy of the active field filters.
func (c *Controller) FieldFilters() map[string]string {
	out := make(map[string]string, len(c.filter.Fields))
	for k, v := range c.filter.Fields {
		out[k] = v
	}
	return out
}

// ClearFilters drops the query and every field filter.
func (c *Controller) ClearFilters() {
	c.filter = FilterSpec{Fields: map[string]string{}}
	c.page = 1
}

// SetSort selects field as the sort column. A new column starts
// ascending; selecting the current column again flips direction. The page
// is kept.
func (c *Controller) SetSort(field string) {
	if c.sort != nil && c.sort.Field == field {
		c.sort.Ascending = !c.sort.Ascending
	} else {
		c.sort = &SortSpec{Field: field, Ascending: true}
	}
	c.clamp()
}

// RestoreSort sets an explicit sort, used when loading saved preferences.
func (c *Controller) RestoreSort(field string, ascending bool) {
	if field == "" {
		c.sort = nil
		return
	}
	c.sort = &SortSpec{Field: field, Ascending: ascending}
	c.clamp()
}

// ClearSort returns to the original data order.
func (c *Controller) ClearSort() { c.sort = nil }

// Sort returns the active sort, if any.
func (c *Controller) Sort() (SortSpec, bool) {
	if c.sort == nil {
		return SortSpec{}, false
	}
	return *c.sort, true
}

// ChangePage moves by delta pages. The low bound is applied first, then
// the page is clamped to the current page count, so +1 on the last page
// does nothing.
func (c *Controller) ChangePage(delta int) {
	c.page = max(1, c.page+delta)
	c.clamp()
}

// CurrentPage returns the 1-based page index.
func (c *Controller) CurrentPage() int { return c.page }

// TotalPages returns max(1, ceil(filtered / pageSize)).
func (c *Controller) TotalPages() int {
	return totalPages(len(c.filtered()), c.cfg.PageSize)
}

// Ordered returns every row passing the filter, in sort order.
func (c *Controller) Ordered() []Row {
	rows := c.filtered()
	if c.sort != nil {
		c.sort.Apply(rows)
	}
	return rows
}

// Distinct returns the sorted non-empty values of field across the whole
// data set, ignoring filters.
func (c *Controller) Distinct(field string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range c.rows {
		v := r.Value(field)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// VisibleSlice computes the rows of the current page.
func (c *Controller) VisibleSlice() Slice {
	rows := c.Ordered()
	total := len(rows)
	pages := totalPages(total, c.cfg.PageSize)
	page := min(max(c.page, 1), pages)

	start := (page - 1) * c.cfg.PageSize
	end := min(start+c.cfg.PageSize, total)
	start = min(start, total)

	out := Slice{
		Rows:          rows[start:end],
		TotalFiltered: total,
		CurrentPage:   page,
		TotalPages:    pages,
	}
	if end > start {
		out.RangeStart = start + 1
		out.RangeEnd = end
	}
	return out
}

// Meta describes the active sort and filters for a status line.
func (c *Controller) Meta() string {
	var parts []string
	if c.sort != nil {
		order := "asc"
		if !c.sort.Ascending {
			order = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(c.sort.Field), order))
	}
	if c.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("search %q", c.filter.Query))
	}
	for _, field := range c.filter.fieldNames() {
		parts = append(parts, fmt.Sprintf("%s=%q", strings.ToUpper(field), c.filter.Fields[field]))
	}
	return strings.Join(parts, "  ·  ")
}

func (c *Controller) filtered() []Row {
	if !c.filter.Active() {
		return append([]Row(nil), c.rows...)
	}
	out := make([]Row, 0, len(c.rows))
	for _, r := range c.rows {
		if c.filter.Match(r, c.cfg.SearchFields) {
			out = append(out, r)
		}
	}
	return out
}

func (c *Controller) clamp() {
	c.page = min(max(c.page, 1), c.TotalPages())
}

func totalPages(n, size int) int {
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}
