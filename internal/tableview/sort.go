package tableview

import (
	"sort"
	"strings"
)

// SortSpec is the single active sort column.
type SortSpec struct {
	Field     string
	Ascending bool
}

// Less compares two rows by the lower-cased string form of Field.
func (s SortSpec) Less(a, b Row) bool {
	left := strings.ToLower(a.Value(s.Field))
	right := strings.ToLower(b.Value(s.Field))
	if s.Ascending {
		return left < right
	}
	return left > right
}

// Apply stable-sorts rows in place.
func (s SortSpec) Apply(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return s.Less(rows[i], rows[j])
	})
}
