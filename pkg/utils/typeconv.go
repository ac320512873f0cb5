// Package utils holds the scalar coercion helpers shared by the
// normalizer and the destination catalog writer. The legacy dump carries
// everything as text, so each consumer coerces what it needs.
package utils

import (
	"strconv"
	"strings"
)

// ParseInt64 parses a dump scalar as an integer. Floating point values
// such as "3.00" are truncated, matching how the legacy importer read
// numeric columns.
func ParseInt64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// Int64OrZero is ParseInt64 with a zero default for empty or
// unparseable values.
func Int64OrZero(s string) int64 {
	v, err := ParseInt64(s)
	if err != nil {
		return 0
	}
	return v
}

// IntOrZero is Int64OrZero narrowed to int.
func IntOrZero(s string) int {
	return int(Int64OrZero(s))
}

// Float64OrZero parses a dump scalar as a float, defaulting to zero.
func Float64OrZero(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Truthy reports whether a dump scalar represents a set flag. The legacy
// schema stores flags as 0/1 integers.
func Truthy(s string) bool {
	return Int64OrZero(s) != 0
}
