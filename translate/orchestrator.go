// Package translate drives one translation command from raw chat text to the
// assembled reply: segmentation, language detection, model-tier selection,
// target-language resolution, quota accounting, per-segment prompt
// construction, backend calls and reassembly.
package translate

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/onnwee/lingua-bot/db"
	"github.com/onnwee/lingua-bot/detect"
	"github.com/onnwee/lingua-bot/i18n"
	"github.com/onnwee/lingua-bot/keyword"
	"github.com/onnwee/lingua-bot/quota"
	"github.com/onnwee/lingua-bot/segment"
	"github.com/onnwee/lingua-bot/telemetry"
)

// Model tiers. The cheap tier handles plain translations; anything complex
// (explicit pronouns, tones, forced styles, undetermined input) escalates.
const (
	TierCheap  = "cheap"
	TierStrong = "strong"
)

// UndefReply is the backend's sentinel for untranslatable gibberish.
const UndefReply = "UNDEF"

// Completer is the text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) string
}

// LanguageDetector resolves text to a sanitized language code or "und".
type LanguageDetector interface {
	Detect(ctx context.Context, text string) (string, error)
}

// QuotaChecker is the slice of the quota tracker the orchestrator needs.
type QuotaChecker interface {
	CheckAndReserve(ctx context.Context, tier string, n int, commit bool) (quota.Result, error)
}

// Orchestrator executes translation commands. All of its collaborators are
// injected so tests can run it against fakes.
type Orchestrator struct {
	Completer Completer
	Detector  LanguageDetector
	Quota     QuotaChecker
	// Models maps tier -> backend model name.
	Models map[string]string
}

// Request is one command invocation. The reply mention always comes from the
// profile, whose username is synced on every sighting.
type Request struct {
	UserID string
	// Command is the invocation token as typed; a trailing '!' forces the
	// strongest tier.
	Command string
	// Text is everything after the command token.
	Text string
}

var placeholderToken = regexp.MustCompile(`\[P\d+\]`)

// Translate runs the full pipeline and returns the reply text. An empty
// return means no reply should be sent (blocked user). It never returns an
// error: every failure mode maps to a localized message per the error
// taxonomy.
func (o *Orchestrator) Translate(ctx context.Context, cfg *db.BotConfig, f *i18n.Formatter, prof *db.UserProfile, req Request) string {
	if cfg.IsUserBlocked(req.UserID) {
		slog.Debug("translate: blocked user", slog.String("user_id", req.UserID))
		return ""
	}
	gender := keyword.NormalizePronoun(cfg.Pronouns, prof.Pronouns)
	say := func(key string, extra ...string) string {
		return f.FormatMsg(prof.SpeakingLang, prof.Style, key, gender, i18n.Args{Mention: prof.Username, Extra: extra})
	}

	// Cheap pre-check before any expensive work; the committing check runs
	// right before the translation calls so aborted requests cost nothing.
	pre, err := o.Quota.CheckAndReserve(ctx, TierCheap, 1, false)
	if err != nil {
		slog.Error("translate: quota pre-check failed", slog.Any("err", err))
		return say("apiError")
	}
	if !pre.Allowed {
		return o.quotaReply(say, pre)
	}

	if strings.TrimSpace(req.Text) == "" {
		alias := cfg.CommandAliases[prof.SpeakingLang]
		if alias == "" {
			alias = cfg.CommandAliases["en"]
		}
		return say("helpTranslate", alias)
	}

	if cfg.ContainsBlockedWord(req.Text) {
		return say("blocked")
	}

	parsed := segment.Parse(req.Text, req.Command, prof.SpeakingLang, prof.Pronouns, segment.Tables{
		Styles:     cfg.Styles,
		ModelTags:  cfg.ModelTags,
		Tones:      cfg.Tones,
		Pronouns:   cfg.Pronouns,
		KnownLangs: cfg.KnownLangs(),
	})
	if len(parsed.Segments) == 0 {
		// Nothing translatable: echo the input back rather than erroring.
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(req.Text), segment.EscapeMarker))
	}

	var all []string
	for _, s := range parsed.Segments {
		all = append(all, s.Text)
	}
	detected, err := o.Detector.Detect(ctx, strings.Join(all, " "))
	if err != nil {
		slog.Warn("translate: detection failed", slog.Any("err", err))
		telemetry.IncBackendError()
		return say("apiError")
	}

	tier := o.pickTier(parsed, detected)
	target := resolveTarget(cfg, prof, parsed, detected)

	if detected == target && parsed.StylePrefix == "" {
		return say("alreadyTranslated")
	}

	final, err := o.Quota.CheckAndReserve(ctx, tier, len(parsed.Segments), true)
	if err != nil {
		slog.Error("translate: quota commit failed", slog.Any("err", err))
		return say("apiError")
	}
	if !final.Allowed {
		telemetry.IncQuotaRejected()
		return o.quotaReply(say, final)
	}

	style := parsed.StylePrefix
	if style == "" {
		style = prof.Style
	}
	var parts []string
	for _, s := range parsed.Segments {
		prompt := BuildPrompt(cfg, s, detected, target, style)
		var reply string
		telemetry.TimeFunc(telemetry.BackendDuration, func() {
			reply = o.Completer.Complete(ctx, o.Models[tier], prompt)
		})
		if reply == "" {
			slog.Warn("translate: backend returned empty reply",
				slog.String("tier", tier),
				slog.String("detected", detected),
				slog.String("target", target))
			telemetry.IncBackendError()
			return say("apiError")
		}
		if strings.TrimSpace(reply) == UndefReply {
			return say("unrecognizable")
		}
		reply = placeholderToken.ReplaceAllString(reply, "")
		reply = strings.Join(strings.Fields(reply), " ")
		if reply != "" {
			parts = append(parts, reply)
		}
	}
	telemetry.IncTranslation(tier)
	return Assemble(cfg, f, prof, target, parts)
}

func (o *Orchestrator) quotaReply(say func(string, ...string) string, res quota.Result) string {
	if res.Reason == quota.ErrDailyLimit {
		return say("dailyLimit")
	}
	return say("rateLimit")
}

// pickTier decides the model tier: forced flags first, then escalation for
// undetermined or complex content, else the cheap tier.
func (o *Orchestrator) pickTier(parsed segment.Result, detected string) string {
	if parsed.ForceStrong {
		return TierStrong
	}
	if parsed.ForceCheap {
		return TierCheap
	}
	if detected == detect.Undetermined || isComplex(parsed) {
		return TierStrong
	}
	return TierCheap
}

func isComplex(parsed segment.Result) bool {
	if parsed.ToneExplicit || parsed.StylePrefix != "" {
		return true
	}
	for _, s := range parsed.Segments {
		if len(s.Pronouns) > 0 || s.SpeakerPronoun != "" {
			return true
		}
	}
	return false
}

// resolveTarget picks the target language, in order: an explicit prefix; the
// anti-ping-pong swap (input already in the profile's target goes back to the
// speaking language); the profile's configured target; the process-wide
// auto-translate pair.
func resolveTarget(cfg *db.BotConfig, prof *db.UserProfile, parsed segment.Result, detected string) string {
	if parsed.LangPrefix != "" {
		return parsed.LangPrefix
	}
	if prof.TargetLang != db.DefaultTarget {
		if detected == prof.TargetLang {
			return prof.SpeakingLang
		}
		return prof.TargetLang
	}
	if detected == cfg.AutoFromLang {
		return cfg.AutoToLang
	}
	return cfg.AutoFromLang
}
