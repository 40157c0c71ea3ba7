package scrape

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseLooseInt coerces loosely formatted numeric text into an integer.
// Source pages decorate numbers with thousands separators, unit labels,
// or placeholders like "N/A"; this keeps only the characters relevant to
// a decimal or scientific-notation number, parses the result as a float,
// and truncates toward zero. If that parse fails, it falls back to the
// digits of the original text alone. Unparseable input yields nil.
func ParseLooseInt(text string) *int64 {
	trimmed := strings.TrimSpace(text)

	var filtered strings.Builder
	for _, r := range trimmed {
		if (r >= '0' && r <= '9') || r == '.' || r == 'e' || r == 'E' {
			filtered.WriteRune(r)
		}
	}
	if filtered.Len() == 0 {
		return nil
	}

	if f, err := strconv.ParseFloat(filtered.String(), 64); err == nil {
		// Strict upper bound: math.MaxInt64 rounds up to 2^63 as a
		// float64, and int64(2^63) overflows.
		if f >= math.MinInt64 && f < 9223372036854775808.0 {
			n := int64(f)
			return &n
		}
	}

	return digitsOnly(text)
}

// digitsOnly extracts the decimal digits of text and parses them as one
// integer. This is the fallback for malformed exponents and the like.
func digitsOnly(text string) *int64 {
	var digits strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
