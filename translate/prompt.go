package translate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/onnwee/lingua-bot/db"
	"github.com/onnwee/lingua-bot/detect"
	"github.com/onnwee/lingua-bot/keyword"
	"github.com/onnwee/lingua-bot/segment"
)

// BuildPrompt constructs the backend instruction for one segment. The opening
// instruction depends on whether the input language could be determined; the
// gender clause prefers explicit placeholder pronouns over the speaker's own
// pronoun over neutral phrasing; protected terms and a non-neutral tone get
// their own clauses; the literal segment text always comes last.
func BuildPrompt(cfg *db.BotConfig, seg segment.Segment, detected, target, style string) string {
	targetName := languageNameEnglish(cfg, target)

	var b strings.Builder
	if detected == detect.Undetermined {
		fmt.Fprintf(&b, "The following text may be gibberish. If it is not written in any real language, reply with exactly UNDEF. Otherwise, translate it into %s.", targetName)
	} else {
		fmt.Fprintf(&b, "Translate the following text into %s.", targetName)
	}
	b.WriteString(" Produce a single grammatically complete rendering; reply with the translation only, no explanations.")

	if style != "" && style != "normal" {
		fmt.Fprintf(&b, " Render it in the voice of the %q speaking style.", style)
	}

	switch {
	case len(seg.Pronouns) > 0:
		b.WriteString(" The text contains pronoun placeholders that must appear verbatim and unchanged in your output:")
		for _, tok := range sortedTokens(seg.Pronouns) {
			fmt.Fprintf(&b, " %s refers to a %s subject;", tok, pronounWord(seg.Pronouns[tok]))
		}
	case seg.SpeakerPronoun != "":
		fmt.Fprintf(&b, " The speaker uses %s pronouns; gender any first-person references accordingly.", pronounWord(seg.SpeakerPronoun))
		if hint := cfg.GrammarHints[target][seg.SpeakerPronoun]; hint != "" {
			b.WriteString(" " + hint)
		}
	default:
		b.WriteString(" Use gender-neutral phrasing for any first-person references.")
	}

	if len(seg.ProperNouns) > 0 {
		fmt.Fprintf(&b, " Do not translate these terms; keep them exactly as written: %s.", strings.Join(seg.ProperNouns, ", "))
	}

	if seg.Tone != "" && seg.Tone != "neutral" {
		fmt.Fprintf(&b, " Write the translation in a %s tone.", seg.Tone)
	}

	b.WriteString("\n\nText: ")
	b.WriteString(seg.Text)
	return b.String()
}

// languageNameEnglish names a language code for the backend instruction.
func languageNameEnglish(cfg *db.BotConfig, code string) string {
	if name, ok := keyword.Resolve(cfg.LanguageNames, "en", code); ok {
		return name
	}
	return code
}

func pronounWord(canonical string) string {
	switch canonical {
	case keyword.PronounMale:
		return "male"
	case keyword.PronounFemale:
		return "female"
	default:
		return "neutral"
	}
}

func sortedTokens(m map[string]string) []string {
	toks := make([]string, 0, len(m))
	for t := range m {
		toks = append(toks, t)
	}
	sort.Strings(toks)
	return toks
}
