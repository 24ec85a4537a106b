// Package keyword implements lookups against the per-language keyword tables
// stored in the bot configuration: command settings, styles, model tags, tones
// and pronoun phrases. Every table is keyed first by language code, then by
// lowercase keyword, and resolution always falls back to "en".
package keyword

import (
	"strings"
	"unicode"
)

// Table is a two-level mapping: language code -> lowercase keyword -> canonical token.
type Table map[string]map[string]string

// Canonical pronoun sets used by gender-select templates and prompt building.
const (
	PronounMale    = "male"
	PronounFemale  = "female"
	PronounNeutral = "other"
)

// Resolve looks up kw in tbl for lang, falling back to the "en" table.
// A miss is not an error; callers treat ok=false as "no match".
func Resolve(tbl Table, lang, kw string) (string, bool) {
	kw = strings.ToLower(strings.TrimSpace(kw))
	if kw == "" {
		return "", false
	}
	if m, ok := tbl[lang]; ok {
		if v, ok := m[kw]; ok {
			return v, true
		}
	}
	if lang != "en" {
		if v, ok := tbl["en"][kw]; ok {
			return v, true
		}
	}
	return "", false
}

// NormalizePronoun classifies a free-text pronoun phrase ("he/him", "ela",
// "they") into one of the canonical pronoun sets. Every language's pronoun
// table is scanned, matching keywords against whole words of the phrase.
// Anything unrecognized maps to the neutral set.
func NormalizePronoun(pronouns Table, phrase string) string {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return PronounNeutral
	}
	words := splitWords(phrase)
	for _, m := range pronouns {
		for kw, canonical := range m {
			if phrase == kw {
				return canonical
			}
			for _, w := range words {
				if w == kw {
					return canonical
				}
			}
		}
	}
	return PronounNeutral
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Pair is one key:value argument from a settings command.
type Pair struct {
	Key   string
	Value string
}

// Infer resolves the language a settings command was typed in. When the
// supplied pairs do not all validate under the caller's current language,
// every other configured language is scored by how many pairs validate under
// it. A unique maximum wins; ties are broken by the configured priority list;
// otherwise the current language is kept. This prevents silently accepting a
// command typed in the wrong language.
func Infer(langs []string, current string, priority []string, pairs []Pair, valid func(lang string, p Pair) bool) string {
	if len(pairs) == 0 {
		return current
	}
	score := func(lang string) int {
		n := 0
		for _, p := range pairs {
			if valid(lang, p) {
				n++
			}
		}
		return n
	}
	if score(current) == len(pairs) {
		return current
	}

	best := -1
	var candidates []string
	for _, lang := range langs {
		if lang == current {
			continue
		}
		s := score(lang)
		if s == 0 {
			continue
		}
		switch {
		case s > best:
			best = s
			candidates = []string{lang}
		case s == best:
			candidates = append(candidates, lang)
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	if len(candidates) > 1 {
		for _, p := range priority {
			for _, c := range candidates {
				if c == p {
					return c
				}
			}
		}
	}
	return current
}
