package tableview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Pending", "Pending"},
		{"json number", json.Number("12500.50"), "12500.50"},
		{"float whole", float64(42), "42"},
		{"float fraction", 3.25, "3.25"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"list", []any{"SELECT", "UPDATE"}, "SELECT, UPDATE"},
		{"empty list", []any{}, ""},
		{"object", map[string]any{"a": 1}, "map[a:1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestRowValueMissingField(t *testing.T) {
	var r Row
	assert.Equal(t, "", r.Value("anything"))
	assert.Equal(t, "", Row{"a": "x"}.Value("b"))
}
