package asset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Float is a float64 that always serializes with a fractional part or an
// exponent ("1.0", "-0.0", "1e-05"), so consumers can tell derived
// quantities apart from integer fields.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("asset: unsupported float value %v", v)
	}
	return []byte(formatFloat(v)), nil
}

// formatFloat renders the shortest round-tripping representation, switching
// to exponent notation outside 1e-4 <= |v| < 1e16.
func formatFloat(v float64) string {
	if v == 0 {
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}
	abs := math.Abs(v)
	if abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FloatPtr converts an optional float64.
func FloatPtr(v *float64) *Float {
	if v == nil {
		return nil
	}
	f := Float(*v)
	return &f
}
