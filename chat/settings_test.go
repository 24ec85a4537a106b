package chat

import (
	"testing"

	"github.com/onnwee/lingua-bot/keyword"
	"github.com/onnwee/lingua-bot/testutil"
)

func TestParsePairs(t *testing.T) {
	got := parsePairs("Target:ES estilo:Pirata pronouns:she/her junk")
	want := []keyword.Pair{
		{Key: "target", Value: "es"},
		{Key: "estilo", Value: "pirata"},
		{Key: "pronouns", Value: "she/her"},
		{Key: "junk"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestResolveLangValue(t *testing.T) {
	cfg := testutil.BotConfig()
	cases := []struct {
		lang  string
		value string
		code  string
		ok    bool
	}{
		{"en", "es", "es", true},
		{"en", "Spanish", "es", true},
		{"es", "inglés", "en", true},
		// English names resolve regardless of the typed language.
		{"es", "portuguese", "pt", true},
		{"en", "klingon", "", false},
		{"en", "zz", "", false},
	}
	for _, tc := range cases {
		code, ok := resolveLangValue(cfg, tc.lang, tc.value)
		if code != tc.code || ok != tc.ok {
			t.Errorf("resolveLangValue(%q,%q) = (%q,%v), want (%q,%v)", tc.lang, tc.value, code, ok, tc.code, tc.ok)
		}
	}
}

func TestValidValue(t *testing.T) {
	cfg := testutil.BotConfig()
	cases := []struct {
		lang  string
		canon string
		value string
		want  bool
	}{
		{"en", "target", "es", true},
		{"en", "target", "zz", false},
		{"es", "style", "pirata", true},
		{"en", "style", "disco", false},
		{"en", "pronouns", "she/her", true},
		{"en", "pronouns", " ", false},
		{"en", "unknown", "x", false},
	}
	for _, tc := range cases {
		if got := validValue(cfg, tc.lang, tc.canon, tc.value); got != tc.want {
			t.Errorf("validValue(%q,%q,%q) = %v, want %v", tc.lang, tc.canon, tc.value, got, tc.want)
		}
	}
}

func TestLangName(t *testing.T) {
	cfg := testutil.BotConfig()
	if got := langName(cfg, "es", "en"); got != "inglés" {
		t.Fatalf("got %q", got)
	}
	if got := langName(cfg, "en", "xx"); got != "xx" {
		t.Fatalf("unknown code must fall back to itself, got %q", got)
	}
}
