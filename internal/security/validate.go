package security

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	maxSafeID = math.MaxInt32
	minSafeID = math.MinInt32
)

// NormalizePhone reduces a phone string to its digit characters, in order.
// An empty result means the input carried no digits and must be rejected by
// the caller.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// SafeID truncates toward zero and clamps to the 32-bit signed integer range.
func SafeID(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	t := math.Trunc(f)
	if t > maxSafeID {
		return maxSafeID
	}
	if t < minSafeID {
		return minSafeID
	}
	return int64(t)
}

// CoerceTallerID interprets a raw JSON value (number or string) as a taller
// identifier. It returns the clamped id and whether the clamped value equals
// a direct numeric parse of the input. A false result means the input was
// fractional, out of range, or not numeric at all; non-numeric input coerces
// to 0.
func CoerceTallerID(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, false
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	id := SafeID(f)
	return id, float64(id) == f
}
