package mathutil

import "strconv"

// Precision is the number of decimal digits kept in published output.
const Precision = 5

// Round rounds v to Precision decimal digits using the exact binary value
// and round-half-even on ties, so results are reproducible across runs and
// match correctly-rounded decimal formatting.
func Round(v float64) float64 {
	return RoundTo(v, Precision)
}

// RoundTo rounds v to the given number of decimal digits.
func RoundTo(v float64, digits int) float64 {
	s := strconv.FormatFloat(v, 'f', digits, 64)
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return v
	}
	return r
}

// RoundVec rounds every component of v.
func RoundVec(v Vec3) Vec3 {
	return Vec3{Round(v[0]), Round(v[1]), Round(v[2])}
}
