package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr string
	}{
		{"empty", Profile{}, ""},
		{"full", Profile{Name: "Asha", Email: "asha@hotel.test", Phone: "+91 (80) 2222-1111"}, ""},
		{"bad email", Profile{Email: "asha.hotel.test"}, "is not an address"},
		{"bad phone", Profile{Phone: "call me"}, "invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestProfileDisplayName(t *testing.T) {
	assert.Equal(t, "Staff Member", Profile{Name: "  "}.DisplayName())
	assert.Equal(t, "Asha", Profile{Name: "Asha"}.DisplayName())
}

func TestViewValid(t *testing.T) {
	for _, v := range Views {
		assert.True(t, v.Valid(), v)
	}
	assert.False(t, View("lobby").Valid())
}
