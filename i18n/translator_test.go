package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("slot_type", nil); msg == "slot_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("slot_type", nil); msg == "slotted child has the wrong element type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodePassesThrough(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code passthrough, got %q", msg)
	}
}

type upperTranslator struct{}

func (upperTranslator) Message(code string, _ map[string]string) string { return "CODE:" + code }

func TestTranslator_Custom(t *testing.T) {
	SetTranslator(upperTranslator{})
	defer SetTranslator(nil)
	if msg := T("required", nil); msg != "CODE:required" {
		t.Fatalf("custom translator not used, got %q", msg)
	}
}
