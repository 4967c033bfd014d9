// Package fixed normalizes numeric input to the two-decimal precision the
// backing NUMERIC(10,2) columns expect. Values are rounded once at the
// boundary; stores bind the result as-is.
package fixed

import (
	"math"
	"strconv"
	"strings"
)

// Round2 rounds half-up to two decimal places. The epsilon compensates for
// binary representation of decimal input (150.555 arrives as 150.55499...),
// which would otherwise round down.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5+1e-9) / 100
}

// ParseWeight parses a form value into a two-decimal weight. Empty input is
// zero, matching how the weighing stations submit unused sample slots.
func ParseWeight(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return Round2(v), nil
}
