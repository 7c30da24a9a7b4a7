package jsonelem

import (
	"math"
	"strconv"
	"strings"
)

// CoerceBoolean follows HTML boolean-attribute semantics: the attribute being
// present means true, regardless of its string content.
func CoerceBoolean(raw *string) bool { return raw != nil }

// CoerceNumber parses the attribute as a numeric literal. An absent attribute
// or an unparsable value yields undefined (the strict number input surfaces
// not_a_number instead; see NumberInput).
func CoerceNumber(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceString collapses only absence and the empty string to undefined;
// falsy-looking content such as "0" or "false" passes through unchanged.
func CoerceString(raw *string) (string, bool) {
	if raw == nil || *raw == "" {
		return "", false
	}
	return *raw, true
}
