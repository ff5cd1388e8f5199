package common

import (
	"math"
	"strconv"
	"strings"
)

// currency prefixes stripped before numeric conversion, longest first so
// "Rs." wins over "Rs".
var currencyTokens = []string{"₹", "$", "£", "€", "Rs.", "Rs", "rs.", "rs", "RS.", "RS"}

// dash variants normalized to a plain minus sign
var dashReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-")

// ParseNumericText parses numeric text from an external source, tolerating
// thousands separators, surrounding whitespace, currency symbols and
// typographic dashes. Returns nil for empty, "N/A" or otherwise unparsable
// input — parse failures never surface as errors.
func ParseNumericText(value string) *float64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), "")
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = dashReplacer.Replace(s)

	num, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
		return nil
	}
	return &num
}

// Round2 rounds to two decimal places, half away from zero at the cent
// boundary. Applied once at the point of computation — results are never
// re-rounded downstream.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Round2Ptr rounds a nullable value, preserving nil.
func Round2Ptr(value *float64) *float64 {
	if value == nil {
		return nil
	}
	r := Round2(*value)
	return &r
}

// Float64Ptr returns a pointer to v. Convenience for nullable metric fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
