package tableview

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Row is one backend record keyed by field name. Values are whatever the
// JSON decoder produced: string, json.Number, float64, bool, nil or []any.
type Row map[string]any

// Value returns the display string of a field. Missing and null fields are
// the empty string.
func (r Row) Value(field string) string {
	if r == nil {
		return ""
	}
	return Stringify(r[field])
}

// Stringify converts a decoded JSON value to the string form used for
// matching, sorting and display.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, Stringify(e))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprint(t)
	}
}
