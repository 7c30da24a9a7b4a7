package jsonelem_test

import (
	"testing"

	jsonelem "github.com/reoring/jsonelem"
)

func str(s string) *string { return &s }

func TestCoerceBoolean_Presence(t *testing.T) {
	if jsonelem.CoerceBoolean(nil) {
		t.Fatalf("absent attribute must be false")
	}
	// content is irrelevant, presence decides
	for _, raw := range []string{"", "false", "0", "true", "anything"} {
		if !jsonelem.CoerceBoolean(str(raw)) {
			t.Fatalf("present attribute %q must be true", raw)
		}
	}
}

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		raw  *string
		want float64
		ok   bool
	}{
		{nil, 0, false},
		{str("10"), 10, true},
		{str("-3.5"), -3.5, true},
		{str("  42 "), 42, true},
		{str("1e3"), 1000, true},
		{str(""), 0, false},
		{str("abc"), 0, false},
		{str("NaN"), 0, false},
		{str("Inf"), 0, false},
	}
	for _, c := range cases {
		got, ok := jsonelem.CoerceNumber(c.raw)
		if ok != c.ok || (ok && got != c.want) {
			in := "<nil>"
			if c.raw != nil {
				in = *c.raw
			}
			t.Fatalf("CoerceNumber(%q) = (%v, %v), want (%v, %v)", in, got, ok, c.want, c.ok)
		}
	}
}

func TestCoerceString(t *testing.T) {
	if _, ok := jsonelem.CoerceString(nil); ok {
		t.Fatalf("absent attribute must be undefined")
	}
	if _, ok := jsonelem.CoerceString(str("")); ok {
		t.Fatalf("empty attribute must be undefined")
	}
	// falsy-looking strings pass through
	for _, raw := range []string{"0", "false", "null"} {
		got, ok := jsonelem.CoerceString(str(raw))
		if !ok || got != raw {
			t.Fatalf("CoerceString(%q) = (%q, %v), want passthrough", raw, got, ok)
		}
	}
}
