// Package testutil holds in-memory fakes and fixtures shared by the unit
// tests: a quota store, a scripted completion backend and a canned bot
// configuration small enough to reason about in table-driven cases.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/onnwee/lingua-bot/db"
	"github.com/onnwee/lingua-bot/i18n"
	"github.com/onnwee/lingua-bot/keyword"
	"github.com/onnwee/lingua-bot/quota"
)

// MemQuotaStore is an in-memory quota.Store with the same two-phase contract
// as the Postgres implementation.
type MemQuotaStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemQuotaStore() *MemQuotaStore {
	return &MemQuotaStore{counts: make(map[string]int)}
}

func (s *MemQuotaStore) Counts(ctx context.Context, tier, dayID, minuteID string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[tier+"|day|"+dayID], s.counts[tier+"|minute|"+minuteID], nil
}

func (s *MemQuotaStore) Reserve(ctx context.Context, tier, dayID, minuteID string, n, dayLimit, minuteLimit int, minuteExpiry time.Time) (int, int, error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.counts[tier+"|day|"+dayID] + n
	minute := s.counts[tier+"|minute|"+minuteID] + n
	if day > dayLimit {
		return day, minute, quota.ErrDailyLimit, nil
	}
	if minute > minuteLimit {
		return day, minute, quota.ErrRateLimit, nil
	}
	s.counts[tier+"|day|"+dayID] = day
	s.counts[tier+"|minute|"+minuteID] = minute
	return day, minute, nil, nil
}

// FakeCompleter replies from a script keyed by prompt substring; the fallback
// reply answers everything else. It records every prompt it sees.
type FakeCompleter struct {
	mu       sync.Mutex
	Script   map[string]string
	Fallback string
	Prompts  []string
}

func (f *FakeCompleter) Complete(ctx context.Context, model, prompt string) string {
	f.mu.Lock()
	f.Prompts = append(f.Prompts, prompt)
	f.mu.Unlock()
	for needle, reply := range f.Script {
		if needle != "" && strings.Contains(prompt, needle) {
			return reply
		}
	}
	return f.Fallback
}

// SeenPrompts returns a copy of the recorded prompts.
func (f *FakeCompleter) SeenPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Prompts...)
}

// FakeDetector returns a fixed language code.
type FakeDetector struct {
	Lang string
	Err  error
}

func (f *FakeDetector) Detect(ctx context.Context, text string) (string, error) {
	return f.Lang, f.Err
}

// BotConfig returns a small configuration fixture covering en and es.
func BotConfig() *db.BotConfig {
	return &db.BotConfig{
		DefaultPersona: db.Persona{Lang: "en", Style: "normal"},
		Limits: map[string]quota.Limits{
			"cheap":  {PerMinute: 10, PerDay: 100},
			"strong": {PerMinute: 2, PerDay: 5},
		},
		SupportedLangs: []string{"en", "es", "pt"},
		LangPriority:   []string{"en", "es", "pt"},
		AutoFromLang:   "en",
		AutoToLang:     "es",
		LowercaseNames: []string{"es", "pt"},
		LanguageNames: keyword.Table{
			"en": {"en": "English", "es": "Spanish", "pt": "Portuguese"},
			"es": {"en": "inglés", "es": "español", "pt": "portugués"},
		},
		SettingKeys: keyword.Table{
			"en": {"target": "target", "speaking": "speaking", "style": "style", "pronouns": "pronouns"},
			"es": {"destino": "target", "idioma": "speaking", "estilo": "style", "pronombres": "pronouns"},
		},
		Styles: keyword.Table{
			"en": {"normal": "normal", "pirate": "pirate", "yoda": "yoda"},
			"es": {"normal": "normal", "pirata": "pirate"},
		},
		ModelTags: keyword.Table{
			"en": {"smart": "strong", "fast": "cheap"},
		},
		Tones: keyword.Table{
			"en": {"formal": "formal", "angry": "angry", "neutral": "neutral"},
		},
		Pronouns: keyword.Table{
			"en": {"he": "male", "him": "male", "she": "female", "her": "female", "they": "other", "them": "other"},
			"es": {"él": "male", "ella": "female", "elle": "other"},
		},
		GrammarHints: map[string]map[string]string{
			"es": {"female": "Use feminine adjective agreement for the speaker."},
		},
		CommandAliases: map[string]string{"en": "!translatehelp", "es": "!ayudatraduccion"},
		HelpURL:        "https://example.test/guide",
	}
}

// Templates returns a message-table fixture: en carries every key used by the
// tests, es a partial set exercising the fallback chain.
func Templates() i18n.Templates {
	return i18n.Templates{
		"en": {
			"apiError_normal":          "Sorry, a translation error occurred.",
			"blocked_normal":           "Sorry, that message cannot be translated.",
			"alreadyTranslated_normal": "That message is already in the target language!",
			"unrecognizable_normal":    "I couldn't recognize a language in that message.",
			"dailyLimit_normal":        "Daily limit reached.",
			"rateLimit_normal":         "Rate limit reached.",
			"helpTranslate_normal":     "@{0}, you need to provide text! Try {1}",
			"helpGuide_normal":         "@{0}, full guide: {1}",
			"translationHeader_normal": "@{0} in {1}:",
			"translationHeader_pirate": "@{0} be sayin' in {1}:",
			"quoteOpen":                "„",
			"quoteClose":               "“",
			"settingsConfirm_normal":   "{gender, select, male {@{0}, done sir: {1}.} female {@{0}, done ma'am: {1}.} other {@{0}, done: {1}.}}",
			"settingsInvalid_normal":   "@{0}, I couldn't understand these settings: {1}",
			"settingsNone_normal":      "@{0}, give me settings like target:es.",
			"invalidCode_normal":       "{1} is not a valid language code.",
			"confirmPartTarget_normal": "target language to {0}",
			"confirmPartStyle_normal":  "style to {0}",
			"clearConfirm_normal":      "Preferences cleared.",
			"clearNone_normal":         "Nothing to clear.",
		},
		"es": {
			"blocked_normal":           "Lo siento, ese mensaje no se puede traducir.",
			"translationHeader_normal": "@{0} en {1}:",
		},
	}
}
