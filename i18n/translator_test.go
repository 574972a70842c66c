package i18n

import "testing"

func TestMessageLanguages(t *testing.T) {
	defer SetLanguage("en")

	if got := T("required", nil); got != "required property missing" {
		t.Fatalf("en required = %q", got)
	}
	SetLanguage("ja")
	if got := T("required", nil); got != "必須プロパティが不足しています" {
		t.Fatalf("ja required = %q", got)
	}
	SetLanguage("fr") // unsupported falls back to en
	if got := T("duplicate_key", nil); got != "duplicate key" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestUnknownCodePassesThrough(t *testing.T) {
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("got %q", got)
	}
}

type upperTranslator struct{}

func (upperTranslator) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upperTranslator{})
	defer SetTranslator(nil)
	if got := T("required", nil); got != "X:required" {
		t.Fatalf("got %q", got)
	}
	SetTranslator(nil)
	if got := T("required", nil); got != "required property missing" {
		t.Fatalf("reset failed: %q", got)
	}
}
