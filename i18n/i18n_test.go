package i18n

import (
	"strings"
	"testing"
)

func testTemplates() Templates {
	return Templates{
		"en": {
			"greet_pirate":    "Ahoy @{0}!",
			"greet_normal":    "Hello @{0}!",
			"greet":           "hi",
			"plain":           "just text",
			"onlyBase":        "base {0}",
			"settings_normal": "{gender, select, male {Sir @{0}} female {Ma'am @{0}} other {Friend @{0}}}, done.",
		},
		"es": {
			"greet_normal": "¡Hola @{0}!",
		},
	}
}

func TestLookupFallbackOrder(t *testing.T) {
	f := NewFormatter(testTemplates())
	cases := []struct {
		name  string
		lang  string
		style string
		key   string
		want  string
	}{
		{"style variant in lang", "en", "pirate", "greet", "Ahoy @{0}!"},
		{"style missing falls to normal", "es", "pirate", "greet", "¡Hola @{0}!"},
		{"normal missing falls to bare key", "en", "yoda", "plain", "just text"},
		{"lang missing falls to en", "pt", "normal", "greet", "Hello @{0}!"},
		{"bare key only", "en", "pirate", "onlyBase", "base {0}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := f.Lookup(tc.lang, tc.style, tc.key)
			if !ok || got != tc.want {
				t.Fatalf("Lookup(%q,%q,%q) = %q,%v want %q", tc.lang, tc.style, tc.key, got, ok, tc.want)
			}
		})
	}
}

func TestFormatMissingTemplate(t *testing.T) {
	f := NewFormatter(testTemplates())
	got := f.Format("en", "normal", "nonexistent", "other")
	if !strings.Contains(got, "nonexistent") {
		t.Fatalf("missing template placeholder should embed the key, got %q", got)
	}
}

func TestRenderGenderSelect(t *testing.T) {
	tpl := "{gender, select, male {He said {0}} female {She said {0}} other {They said {0}}}"
	cases := []struct {
		gender string
		want   string
	}{
		{"male", "He said hi"},
		{"female", "She said hi"},
		{"other", "They said hi"},
		// unknown gender key falls back to the other branch
		{"robot", "They said hi"},
	}
	for _, tc := range cases {
		if got := Render(tpl, tc.gender, "hi"); got != tc.want {
			t.Errorf("Render(gender=%q) = %q, want %q", tc.gender, got, tc.want)
		}
	}
}

func TestRenderMissingBranchWithoutOther(t *testing.T) {
	tpl := "x{gender, select, male {M}}y"
	if got := Render(tpl, "female"); got != "xy" {
		t.Fatalf("got %q, want %q", got, "xy")
	}
}

func TestRenderNestedBraces(t *testing.T) {
	tpl := "{gender, select, male {outer {inner} tail} other {fallback}}"
	if got := Render(tpl, "male"); got != "outer {inner} tail" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderPositionalAfterSelect(t *testing.T) {
	f := NewFormatter(testTemplates())
	got := f.Format("en", "normal", "settings", "female", "ada")
	if got != "Ma'am @ada, done." {
		t.Fatalf("got %q", got)
	}
}

func TestRenderShortArgsSkipsPositional(t *testing.T) {
	tpl := "{gender, select, other {done}}: {0} and {1}"
	// Only one argument supplied for two placeholders: the select phase
	// applies, positional substitution is skipped entirely.
	if got := Render(tpl, "other", "a"); got != "done: {0} and {1}" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderLeavesNonPositionalBraces(t *testing.T) {
	if got := Render("keep {placeholder} as is", "other"); got != "keep {placeholder} as is" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatMsgMentionIsArgZero(t *testing.T) {
	f := NewFormatter(testTemplates())
	got := f.FormatMsg("en", "pirate", "greet", "other", Args{Mention: "ada"})
	if got != "Ahoy @ada!" {
		t.Fatalf("got %q", got)
	}
}
