// Package segment parses raw command text into a language/style prefix plus a
// list of translatable segments. Each segment carries its own tone, protected
// proper nouns and pronoun placeholders.
//
// The command surface it understands:
//
//	<cmd>[!] [<lang>|<lang>-<style>] [&tag&...] [*protected*] [%pronouns%] text
//
// A leading backslash disables all prefix and tag parsing for the invocation,
// and a trailing '!' on the command token forces the strongest model tier.
package segment

import (
	"fmt"
	"strings"

	"github.com/onnwee/lingua-bot/keyword"
)

// EscapeMarker disables prefix/tag parsing when it leads the command text.
const EscapeMarker = `\`

const (
	tagDelim      = '&'
	nounDelim     = '*'
	pronounDelim  = '%'
	styleSep      = "-"
	forceSuffix   = "!"
	toneNeutral   = "neutral"
	tagModelCheap = "cheap"
	tagModelStrong = "strong"
)

// Tables holds the configuration lookup tables the segmenter needs.
type Tables struct {
	Styles    keyword.Table
	ModelTags keyword.Table
	Tones     keyword.Table
	Pronouns  keyword.Table
	// KnownLangs is the set of configured language codes.
	KnownLangs map[string]bool
}

// Segment is one independently translated unit of the command's input.
type Segment struct {
	// Text is the cleaned text to translate, with pronoun phrases replaced
	// by positional placeholder tokens.
	Text string
	// Tone is the resolved tone label for this segment.
	Tone string
	// ProperNouns lists literal substrings that must survive translation.
	ProperNouns []string
	// Pronouns maps placeholder token -> canonical pronoun set.
	Pronouns map[string]string
	// SpeakerPronoun is the caller's own canonical pronoun, "" when unset.
	SpeakerPronoun string
}

// Result is the parsed form of one command invocation.
type Result struct {
	// LangPrefix is the explicit target language code, "" when absent.
	LangPrefix string
	// StylePrefix is the resolved style, "" when absent.
	StylePrefix string
	Tone        string
	// ToneExplicit marks that the caller tagged a tone rather than
	// inheriting the neutral default.
	ToneExplicit bool
	ForceStrong  bool
	ForceCheap   bool
	// Literal is set when the escape marker disabled prefix/tag parsing.
	Literal  bool
	Segments []Segment
}

// Parse segments raw command text. command is the invocation token as typed
// (a trailing '!' forces the strongest tier). speakingLang selects the keyword
// tables used to resolve prefixes and tags, and callerPronoun (free text, may
// be empty) becomes the speaker pronoun on every segment.
func Parse(raw, command, speakingLang, callerPronoun string, t Tables) Result {
	res := Result{Tone: toneNeutral}
	if strings.HasSuffix(command, forceSuffix) {
		res.ForceStrong = true
	}
	speaker := ""
	if strings.TrimSpace(callerPronoun) != "" {
		speaker = keyword.NormalizePronoun(t.Pronouns, callerPronoun)
	}

	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, EscapeMarker) {
		res.Literal = true
		text = collapse(strings.TrimPrefix(text, EscapeMarker))
		if text != "" {
			res.Segments = append(res.Segments, Segment{
				Text:           text,
				Tone:           res.Tone,
				SpeakerPronoun: speaker,
			})
		}
		return res
	}

	text = parsePrefix(text, speakingLang, t, &res)

	pieces, tags := splitTags(text)
	for _, tag := range tags {
		if v, ok := keyword.Resolve(t.ModelTags, speakingLang, tag); ok {
			switch v {
			case tagModelStrong:
				res.ForceStrong = true
			case tagModelCheap:
				res.ForceCheap = true
			}
			continue
		}
		if v, ok := keyword.Resolve(t.Tones, speakingLang, tag); ok {
			// Last resolved tone tag wins.
			res.Tone = v
			res.ToneExplicit = true
		}
	}

	for _, piece := range pieces {
		seg, ok := buildSegment(piece, res.Tone, speaker, t)
		if ok {
			res.Segments = append(res.Segments, seg)
		}
	}
	return res
}

// parsePrefix consumes a leading language or language-style token, returning
// the remaining text.
func parsePrefix(text, speakingLang string, t Tables, res *Result) string {
	first, rest := splitToken(text)
	if first == "" {
		return text
	}
	low := strings.ToLower(first)
	if strings.Contains(low, styleSep) {
		lang, style := "", ""
		for _, sub := range strings.Split(low, styleSep) {
			if v, ok := keyword.Resolve(t.Styles, speakingLang, sub); ok {
				style = v
			} else if t.KnownLangs[sub] {
				lang = sub
			}
		}
		if lang != "" || style != "" {
			res.LangPrefix = lang
			res.StylePrefix = style
			return rest
		}
		return text
	}
	if t.KnownLangs[low] {
		res.LangPrefix = low
		return rest
	}
	return text
}

// splitTags splits text into literal pieces and &tag& names. Only a paired
// delimiter wrapping a single whitespace-free word is consumed as a tag; a
// dangling or spaced delimiter stays part of the literal text.
func splitTags(text string) (pieces, tags []string) {
	var lit strings.Builder
	flush := func() {
		if strings.TrimSpace(lit.String()) != "" {
			pieces = append(pieces, lit.String())
		}
		lit.Reset()
	}
	for len(text) > 0 {
		open := strings.IndexByte(text, tagDelim)
		if open < 0 {
			lit.WriteString(text)
			break
		}
		rest := text[open+1:]
		close := strings.IndexByte(rest, tagDelim)
		tag := ""
		if close >= 0 {
			tag = rest[:close]
		}
		if close < 0 || tag == "" || strings.ContainsAny(tag, " \t") {
			lit.WriteString(text[:open+1])
			text = rest
			continue
		}
		lit.WriteString(text[:open])
		flush()
		tags = append(tags, strings.ToLower(tag))
		text = rest[close+1:]
	}
	flush()
	return pieces, tags
}

// buildSegment extracts protected nouns and pronoun placeholders from one
// literal piece. It reports false for blank pieces.
func buildSegment(piece, tone, speaker string, t Tables) (Segment, bool) {
	seg := Segment{Tone: tone, SpeakerPronoun: speaker}

	// *noun* protected literals: stars stripped, text kept in place.
	var nouns []string
	piece = replaceDelimited(piece, nounDelim, func(inner string) string {
		inner = strings.TrimSpace(inner)
		if inner != "" {
			nouns = append(nouns, inner)
		}
		return inner
	})
	seg.ProperNouns = nouns

	// %phrase% pronoun placeholders: each occurrence becomes [P1], [P2], ...
	n := 0
	piece = replaceDelimited(piece, pronounDelim, func(inner string) string {
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return ""
		}
		n++
		token := fmt.Sprintf("[P%d]", n)
		if seg.Pronouns == nil {
			seg.Pronouns = make(map[string]string)
		}
		seg.Pronouns[token] = keyword.NormalizePronoun(t.Pronouns, inner)
		return token
	})

	seg.Text = collapse(piece)
	if seg.Text == "" {
		return Segment{}, false
	}
	return seg, true
}

// replaceDelimited rewrites every delim-wrapped run through fn, leaving an
// unpaired trailing delimiter untouched.
func replaceDelimited(s string, delim byte, fn func(inner string) string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, delim)
		if open < 0 {
			b.WriteString(s)
			return b.String()
		}
		close := strings.IndexByte(s[open+1:], delim)
		if close < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:open])
		b.WriteString(fn(s[open+1 : open+1+close]))
		s = s[open+2+close:]
	}
}

func splitToken(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
