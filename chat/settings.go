package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/onnwee/lingua-bot/db"
	"github.com/onnwee/lingua-bot/keyword"
	"github.com/onnwee/lingua-bot/telemetry"
)

// handleSettings applies `key:value ...` preference pairs. The pairs are
// first used to infer which configured language the command was typed in, so
// "idioma:es estilo:pirata" from a user whose profile still says English is
// interpreted with the Spanish keyword tables. Invalid tokens are reported
// individually and never abort the valid ones.
func (b *Bot) handleSettings(ctx context.Context, cfg *db.BotConfig, prof *db.UserProfile, say func(string, ...string) string, rest string) string {
	pairs := parsePairs(rest)
	if len(pairs) == 0 {
		return say("settingsNone")
	}

	lang := keyword.Infer(cfg.SupportedLangs, prof.SpeakingLang, cfg.LangPriority, pairs, func(l string, p keyword.Pair) bool {
		canon, ok := keyword.Resolve(cfg.SettingKeys, l, p.Key)
		if !ok {
			return false
		}
		return validValue(cfg, l, canon, p.Value)
	})

	var confirms, invalid []string
	for _, p := range pairs {
		canon, ok := keyword.Resolve(cfg.SettingKeys, lang, p.Key)
		if !ok {
			invalid = append(invalid, p.Key+":"+p.Value)
			continue
		}
		switch canon {
		case "target":
			code, ok := resolveLangValue(cfg, lang, p.Value)
			if !ok {
				invalid = append(invalid, say("invalidCode", p.Value))
				continue
			}
			prof.TargetLang = code
			confirms = append(confirms, say("confirmPartTarget", langName(cfg, prof.SpeakingLang, code)))
		case "speaking":
			code, ok := resolveLangValue(cfg, lang, p.Value)
			if !ok {
				invalid = append(invalid, say("invalidCode", p.Value))
				continue
			}
			prof.SpeakingLang = code
			confirms = append(confirms, say("confirmPartSpeaking", langName(cfg, code, code)))
		case "style":
			style, ok := keyword.Resolve(cfg.Styles, lang, p.Value)
			if !ok {
				invalid = append(invalid, p.Key+":"+p.Value)
				continue
			}
			prof.Style = style
			confirms = append(confirms, say("confirmPartStyle", style))
		case "pronouns":
			prof.Pronouns = strings.TrimSpace(p.Value)
			confirms = append(confirms, say("confirmPartPronouns", prof.Pronouns))
		default:
			invalid = append(invalid, p.Key+":"+p.Value)
		}
	}

	var out []string
	if len(confirms) > 0 {
		if err := db.UpsertProfile(ctx, b.DB, prof); err != nil {
			telemetry.LogWith(ctx).Error("chat: settings save failed", slog.Any("err", err), slog.String("user_id", prof.UserID))
			return say("apiError")
		}
		out = append(out, say("settingsConfirm", strings.Join(confirms, ", ")))
	}
	if len(invalid) > 0 {
		out = append(out, say("settingsInvalid", strings.Join(invalid, ", ")))
	}
	return strings.Join(out, " ")
}

// parsePairs splits whitespace-separated key:value tokens. Tokens without a
// colon become pairs with an empty value so they surface as invalid.
func parsePairs(rest string) []keyword.Pair {
	var pairs []keyword.Pair
	for _, tok := range strings.Fields(rest) {
		k, v, found := strings.Cut(tok, ":")
		if !found || k == "" || v == "" {
			pairs = append(pairs, keyword.Pair{Key: tok})
			continue
		}
		pairs = append(pairs, keyword.Pair{Key: strings.ToLower(k), Value: strings.ToLower(v)})
	}
	return pairs
}

// validValue reports whether value is acceptable for the canonical setting
// key under the given language's tables. Used only for language inference.
func validValue(cfg *db.BotConfig, lang, canon, value string) bool {
	switch canon {
	case "target", "speaking":
		_, ok := resolveLangValue(cfg, lang, value)
		return ok
	case "style":
		_, ok := keyword.Resolve(cfg.Styles, lang, value)
		return ok
	case "pronouns":
		return strings.TrimSpace(value) != ""
	}
	return false
}

// resolveLangValue accepts a language code or a localized language name.
func resolveLangValue(cfg *db.BotConfig, lang, value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if cfg.KnownLangs()[v] {
		return v, true
	}
	for _, l := range []string{lang, "en"} {
		for code, name := range cfg.LanguageNames[l] {
			if strings.EqualFold(name, v) {
				return code, true
			}
		}
	}
	return "", false
}

// langName renders a language code in the viewer's language, falling back to
// the code itself.
func langName(cfg *db.BotConfig, viewerLang, code string) string {
	if name, ok := keyword.Resolve(cfg.LanguageNames, viewerLang, code); ok {
		return name
	}
	return code
}
