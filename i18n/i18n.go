// Package i18n renders the localized message templates stored per language
// and message key. Templates carry style-suffixed variants (key_pirate,
// key_normal, ...), positional placeholders ({0}, {1}, ...) and at most one
// gender-select block choosing a branch by the caller's pronoun set.
package i18n

import (
	"fmt"
	"strconv"
	"strings"
)

// Templates maps language code -> message key -> template string.
type Templates map[string]map[string]string

// Formatter resolves and renders templates for a caller's language and style.
type Formatter struct {
	templates Templates
}

// NewFormatter wraps a freshly loaded template table.
func NewFormatter(t Templates) *Formatter {
	return &Formatter{templates: t}
}

// Lookup resolves a base key for (lang, style) through the fallback chain:
// key_style -> key_normal -> key, tried first in lang, then in "en".
func (f *Formatter) Lookup(lang, style, baseKey string) (string, bool) {
	if style == "" {
		style = "normal"
	}
	keys := []string{baseKey + "_" + style, baseKey + "_normal", baseKey}
	langs := []string{lang}
	if lang != "en" {
		langs = append(langs, "en")
	}
	for _, l := range langs {
		m, ok := f.templates[l]
		if !ok {
			continue
		}
		for _, k := range keys {
			if v, ok := m[k]; ok {
				return v, true
			}
		}
	}
	return "", false
}

// Args carries template arguments. The mentioned user is an explicit field
// rather than a positional convention: it always renders as argument {0},
// with Extra filling {1}, {2}, ...
type Args struct {
	Mention string
	Extra   []string
}

// FormatMsg renders baseKey with an Args structure.
func (f *Formatter) FormatMsg(lang, style, baseKey, gender string, a Args) string {
	args := append([]string{a.Mention}, a.Extra...)
	return f.Format(lang, style, baseKey, gender, args...)
}

// Format resolves baseKey and renders it with the given gender key (one of
// keyword.PronounMale/Female/Neutral) and positional arguments. A missing
// template never fails the command; it renders a visible placeholder instead.
func (f *Formatter) Format(lang, style, baseKey, gender string, args ...string) string {
	tpl, ok := f.Lookup(lang, style, baseKey)
	if !ok {
		return fmt.Sprintf("[missing template: %s]", baseKey)
	}
	return Render(tpl, gender, args...)
}

// Render substitutes the gender-select block (if any) for the branch matching
// gender, then applies positional substitution. If the positional phase is
// malformed (syntax error or too few arguments), the select-substituted text
// is returned with positional substitution skipped rather than failing.
func Render(tpl, gender string, args ...string) string {
	selected := substituteSelect(tpl, gender)
	out, ok := substitutePositional(selected, args)
	if !ok {
		return selected
	}
	return out
}

// node is one parsed piece of a template: either a literal run or a
// gender-select block.
type node struct {
	literal string
	options map[string]string // nil for literal nodes
}

// substituteSelect replaces every select block with its branch for gender,
// falling back to the "other" branch when the key's branch is absent.
func substituteSelect(tpl, gender string) string {
	nodes, err := parse(tpl)
	if err != nil {
		return tpl
	}
	var b strings.Builder
	for _, n := range nodes {
		if n.options == nil {
			b.WriteString(n.literal)
			continue
		}
		if text, ok := n.options[gender]; ok {
			b.WriteString(text)
		} else if text, ok := n.options["other"]; ok {
			b.WriteString(text)
		}
	}
	return b.String()
}

// parse scans tpl into literal runs and select blocks. Select blocks have the
// shape "{VAR, select, key1 {text1} key2 {text2} ...}". Option bodies may
// contain nested braces, so extents are found by counting brace depth rather
// than regex matching. Positional placeholders like {0} are left as literals
// for the later substitution pass.
func parse(tpl string) ([]node, error) {
	var nodes []node
	var lit strings.Builder
	i := 0
	for i < len(tpl) {
		c := tpl[i]
		if c != '{' {
			lit.WriteByte(c)
			i++
			continue
		}
		blk, end, ok := parseSelect(tpl, i)
		if !ok {
			// Not a select block (e.g. a positional {0}); keep the brace literally.
			lit.WriteByte(c)
			i++
			continue
		}
		if lit.Len() > 0 {
			nodes = append(nodes, node{literal: lit.String()})
			lit.Reset()
		}
		nodes = append(nodes, blk)
		i = end
	}
	if lit.Len() > 0 {
		nodes = append(nodes, node{literal: lit.String()})
	}
	return nodes, nil
}

// parseSelect attempts to parse a select block starting at tpl[start] == '{'.
// It returns the parsed node, the index just past the closing brace, and
// whether a well-formed block was found.
func parseSelect(tpl string, start int) (node, int, bool) {
	i := start + 1
	// variable name
	j := strings.IndexByte(tpl[i:], ',')
	if j < 0 {
		return node{}, 0, false
	}
	varName := strings.TrimSpace(tpl[i : i+j])
	if varName == "" || strings.ContainsAny(varName, "{}") {
		return node{}, 0, false
	}
	i += j + 1
	// "select" marker
	j = strings.IndexByte(tpl[i:], ',')
	if j < 0 || strings.TrimSpace(tpl[i:i+j]) != "select" {
		return node{}, 0, false
	}
	i += j + 1

	opts := make(map[string]string)
	for {
		for i < len(tpl) && isSpace(tpl[i]) {
			i++
		}
		if i >= len(tpl) {
			return node{}, 0, false
		}
		if tpl[i] == '}' {
			// end of the select block
			return node{options: opts}, i + 1, true
		}
		// option key
		k := i
		for k < len(tpl) && tpl[k] != '{' && !isSpace(tpl[k]) && tpl[k] != '}' {
			k++
		}
		key := tpl[i:k]
		if key == "" {
			return node{}, 0, false
		}
		i = k
		for i < len(tpl) && isSpace(tpl[i]) {
			i++
		}
		if i >= len(tpl) || tpl[i] != '{' {
			return node{}, 0, false
		}
		// option body: scan to the matching close brace, counting depth so
		// nested braces inside the body are handled.
		depth := 0
		bodyStart := i + 1
		for ; i < len(tpl); i++ {
			switch tpl[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth != 0 {
			return node{}, 0, false
		}
		opts[key] = tpl[bodyStart:i]
		i++
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// substitutePositional replaces {0}, {1}, ... with args. It reports false when
// the template references an argument index that was not supplied.
func substitutePositional(s string, args []string) (string, bool) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		idx, err := strconv.Atoi(s[i+1 : i+j])
		if err != nil {
			// Not a positional placeholder; keep literally.
			b.WriteByte(c)
			i++
			continue
		}
		if idx < 0 || idx >= len(args) {
			return "", false
		}
		b.WriteString(args[idx])
		i += j + 1
	}
	return b.String(), true
}
