package i18n

import "testing"

func TestCatalogsCoverTheSameCodes(t *testing.T) {
	en := catalog["en"]
	for _, lang := range Languages() {
		if len(catalog[lang]) != len(en) {
			t.Fatalf("%s has %d messages, en has %d", lang, len(catalog[lang]), len(en))
		}
		for code := range en {
			if catalog[lang][code] == "" {
				t.Fatalf("%s lacks %s", lang, code)
			}
		}
	}
}

func TestSetLanguage(t *testing.T) {
	defer SetLanguage("en")
	if msg := T("parse_error", nil); msg != "input is not well-formed JSON" {
		t.Fatalf("default message = %q", msg)
	}
	SetLanguage("ja")
	if msg := T("union_ambiguous", nil); msg != catalog["ja"]["union_ambiguous"] {
		t.Fatalf("expected japanese message, got %q", msg)
	}
	SetLanguage("fr")
	if msg := T("required", nil); msg != catalog["en"]["required"] {
		t.Fatalf("unknown language should fall back to en, got %q", msg)
	}
}

func TestUnknownCodeAndData(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown code should echo, got %q", msg)
	}
	got := T("required", map[string]string{"field": "id", "record": "User"})
	if want := catalog["en"]["required"] + " (field=id, record=User)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if msg := T("required", nil); msg != "X:required" {
		t.Fatalf("custom translator not used, got %q", msg)
	}
}
