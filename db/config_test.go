package db

import (
	"strings"
	"testing"

	"github.com/onnwee/lingua-bot/i18n"
)

func TestBlocklistTogglesAreIdempotent(t *testing.T) {
	cfg := &BotConfig{}

	if !cfg.BlockUser("1", "ada") {
		t.Fatal("first block must report a change")
	}
	if cfg.BlockUser("1", "ada") {
		t.Fatal("second block must be a no-op")
	}
	if !cfg.IsUserBlocked("1") {
		t.Fatal("user must be blocked")
	}
	if !cfg.UnblockUser("1") {
		t.Fatal("first unblock must report a change")
	}
	if cfg.UnblockUser("1") {
		t.Fatal("second unblock must be a no-op")
	}
	if cfg.IsUserBlocked("1") {
		t.Fatal("user must be unblocked")
	}

	if !cfg.BlockWord("Verboten") {
		t.Fatal("first word block must report a change")
	}
	if cfg.BlockWord("verboten") {
		t.Fatal("word block must be case-insensitive and idempotent")
	}
	if !cfg.UnblockWord("VERBOTEN") {
		t.Fatal("unblock must match case-insensitively")
	}
	if cfg.UnblockWord("verboten") {
		t.Fatal("second unblock must be a no-op")
	}
}

func TestContainsBlockedWord(t *testing.T) {
	cfg := &BotConfig{BlockedWords: []string{"tabu"}}
	cases := []struct {
		text string
		want bool
	}{
		{"this is TABU here", true},
		{"tabularasa", true}, // substring match by design
		{"harmless", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := cfg.ContainsBlockedWord(tc.text); got != tc.want {
			t.Errorf("ContainsBlockedWord(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestKnownLangs(t *testing.T) {
	cfg := &BotConfig{SupportedLangs: []string{"en", "es"}}
	m := cfg.KnownLangs()
	if !m["en"] || !m["es"] || m["de"] {
		t.Fatalf("got %v", m)
	}
}

// The seed data is the production default; these checks keep its tables
// internally consistent.
func TestDefaultBotConfigConsistency(t *testing.T) {
	cfg := DefaultBotConfig()

	known := cfg.KnownLangs()
	if !known[cfg.AutoFromLang] || !known[cfg.AutoToLang] {
		t.Fatal("auto-translate pair must use supported languages")
	}
	if !known[cfg.DefaultPersona.Lang] {
		t.Fatal("default persona language must be supported")
	}
	for _, l := range cfg.LangPriority {
		if !known[l] {
			t.Fatalf("priority language %q not in supported set", l)
		}
	}
	for _, tier := range []string{"cheap", "strong"} {
		lim, ok := cfg.Limits[tier]
		if !ok || lim.PerMinute <= 0 || lim.PerDay <= 0 {
			t.Fatalf("tier %q limits missing or non-positive: %+v", tier, lim)
		}
	}
	// Every keyword table needs an "en" level for the resolver fallback.
	for name, tbl := range map[string]map[string]map[string]string{
		"languageNames": cfg.LanguageNames,
		"settingKeys":   cfg.SettingKeys,
		"styles":        cfg.Styles,
		"modelTags":     cfg.ModelTags,
		"tones":         cfg.Tones,
		"pronouns":      cfg.Pronouns,
	} {
		if len(tbl["en"]) == 0 {
			t.Errorf("table %q has no en entries", name)
		}
	}
	if cfg.CommandAliases["en"] == "" {
		t.Fatal("en command alias missing")
	}
}

func TestDefaultTemplatesRender(t *testing.T) {
	f := i18n.NewFormatter(DefaultTemplates())

	// English must resolve every key other languages carry, as the final
	// fallback level.
	for lang, m := range DefaultTemplates() {
		if lang == "en" {
			continue
		}
		for key := range m {
			base := key
			if i := strings.LastIndexByte(base, '_'); i > 0 {
				base = base[:i]
			}
			if _, ok := f.Lookup("en", "normal", base); !ok {
				t.Errorf("key %q (%s) has no en fallback", base, lang)
			}
		}
	}

	// Gendered templates pick a branch per gender without leaking syntax.
	for _, gender := range []string{"male", "female", "other"} {
		got := f.Format("en", "normal", "helpTranslate", gender, "ada", "!translatehelp")
		if got == "" || strings.Contains(got, "select,") || strings.Contains(got, "{gender") {
			t.Fatalf("helpTranslate/%s rendered %q", gender, got)
		}
	}
}
