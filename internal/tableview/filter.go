package tableview

import (
	"sort"
	"strings"
)

// FilterSpec narrows the row set. A row passes when every field filter
// matches exactly and, if Query is set, at least one searchable field
// contains it case-insensitively.
type FilterSpec struct {
	// Query is already trimmed and lower-cased.
	Query  string
	Fields map[string]string
}

// Active reports whether the spec filters anything out at all.
func (f FilterSpec) Active() bool {
	return f.Query != "" || len(f.Fields) > 0
}

// Match applies the spec to one row. An empty searchFields slice searches
// every field of the row.
func (f FilterSpec) Match(row Row, searchFields []string) bool {
	for field, want := range f.Fields {
		if row.Value(field) != want {
			return false
		}
	}
	if f.Query == "" {
		return true
	}
	if len(searchFields) == 0 {
		for _, v := range row {
			if strings.Contains(strings.ToLower(Stringify(v)), f.Query) {
				return true
			}
		}
		return false
	}
	for _, field := range searchFields {
		if strings.Contains(strings.ToLower(row.Value(field)), f.Query) {
			return true
		}
	}
	return false
}

// fieldNames returns the filtered field names in a stable order.
func (f FilterSpec) fieldNames() []string {
	names := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func normalizeQuery(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
