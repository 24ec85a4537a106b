package translate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/onnwee/lingua-bot/db"
	"github.com/onnwee/lingua-bot/i18n"
	"github.com/onnwee/lingua-bot/keyword"
)

// Fallback quote pair used when a language defines no quote templates.
const (
	fallbackQuoteOpen  = "„"
	fallbackQuoteClose = "“"
)

// Assemble builds the user-visible reply: a localized header carrying the
// mention and the localized target-language display name, then the translated
// segments rejoined and wrapped in localized quotes.
func Assemble(cfg *db.BotConfig, f *i18n.Formatter, prof *db.UserProfile, target string, parts []string) string {
	gender := keyword.NormalizePronoun(cfg.Pronouns, prof.Pronouns)

	name := displayName(cfg, prof.SpeakingLang, target)
	header := f.FormatMsg(prof.SpeakingLang, prof.Style, "translationHeader", gender,
		i18n.Args{Mention: prof.Username, Extra: []string{name}})

	open, ok := f.Lookup(prof.SpeakingLang, "", "quoteOpen")
	if !ok {
		open = fallbackQuoteOpen
	}
	close, ok := f.Lookup(prof.SpeakingLang, "", "quoteClose")
	if !ok {
		close = fallbackQuoteClose
	}

	body := restoreEscapes(strings.Join(parts, " "))
	return header + " " + open + body + close
}

// displayName localizes the target language name for the viewer, lowercasing
// it in languages whose orthography writes language names lowercase.
func displayName(cfg *db.BotConfig, viewerLang, target string) string {
	name, ok := keyword.Resolve(cfg.LanguageNames, viewerLang, target)
	if !ok {
		return target
	}
	for _, l := range cfg.LowercaseNames {
		if l == viewerLang {
			return lowerFirst(name)
		}
	}
	return name
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// restoreEscapes turns backslash-escaped marker characters back into their
// literal form in the final output.
func restoreEscapes(s string) string {
	replacer := strings.NewReplacer(`\*`, "*", `\%`, "%", `\&`, "&", `\\`, `\`)
	return replacer.Replace(s)
}

// ChunkMessage splits text into chunks that fit the platform's message
// length. When splitting is needed, every chunk is prefixed with a "(i/n) "
// counter, and split points prefer the nearest whitespace boundary before the
// limit.
func ChunkMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	// The counter prefix widens with the chunk count ("(1/2) " vs
	// "(100/123) "), so re-split until the reservation covers the widest
	// prefix the resulting count needs.
	reserve := len("(1/1) ")
	var raw []string
	for {
		raw = splitChunks(runes, limit-reserve)
		need := len(fmt.Sprintf("(%d/%d) ", len(raw), len(raw)))
		if need <= reserve {
			break
		}
		reserve = need
	}

	out := make([]string, len(raw))
	for i, c := range raw {
		out[i] = fmt.Sprintf("(%d/%d) %s", i+1, len(raw), c)
	}
	return out
}

// splitChunks cuts runes into pieces of at most budget runes, preferring the
// nearest whitespace boundary before the cut.
func splitChunks(runes []rune, budget int) []string {
	if budget < 1 {
		budget = 1
	}
	var raw []string
	for len(runes) > 0 {
		if len(runes) <= budget {
			raw = append(raw, string(runes))
			break
		}
		cut := budget
		for i := budget; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		raw = append(raw, strings.TrimRight(string(runes[:cut]), " \t"))
		for cut < len(runes) && unicode.IsSpace(runes[cut]) {
			cut++
		}
		runes = runes[cut:]
	}
	return raw
}
