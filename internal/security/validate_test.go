package security

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"international with separators", "+57 300-123 4567", "573001234567"},
		{"plain digits", "3001234567", "3001234567"},
		{"parentheses and dashes", "(300) 123-45-67", "3001234567"},
		{"letters mixed in", "tel: 300abc123", "300123"},
		{"no digits", "---", ""},
		{"empty", "", ""},
		{"unicode digits are not ascii digits", "٣٠٠", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestSafeID(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  int64
	}{
		{"integer", 42, 42},
		{"negative", -5, -5},
		{"fractional truncates toward zero", 12.5, 12},
		{"negative fractional truncates toward zero", -12.5, -12},
		{"clamps high", 99999999999999, 2147483647},
		{"clamps low", -99999999999999, -2147483648},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeID(tt.input))
		})
	}
}

func TestCoerceTallerID(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantID int64
		wantOK bool
	}{
		{"json number", `42`, 42, true},
		{"json string number", `"42"`, 42, true},
		{"negative number", `-5`, -5, true},
		{"fractional rejected", `"12.5"`, 12, false},
		{"fractional number rejected", `12.5`, 12, false},
		{"out of range rejected", `"99999999999999"`, 2147483647, false},
		{"non-numeric coerces to zero", `"abc"`, 0, false},
		{"empty string", `""`, 0, false},
		{"null", `null`, 0, false},
		{"whitespace inside string", `" 7 "`, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := CoerceTallerID(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
