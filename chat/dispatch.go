package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/lingua-bot/db"
	"github.com/onnwee/lingua-bot/i18n"
	"github.com/onnwee/lingua-bot/keyword"
	"github.com/onnwee/lingua-bot/telemetry"
	"github.com/onnwee/lingua-bot/translate"
)

// Command tokens. The translate command also accepts a trailing '!' which
// forces the strongest model tier.
const (
	cmdTranslate      = "!translate"
	cmdTranslateShort = "!t"
	cmdSettings       = "!translateset"
	cmdSettingsShort  = "!ts"
	cmdClear          = "!translateclear"
	cmdHelp           = "!translatehelp"
	cmdBan            = "!translateban"
	cmdUnban          = "!translateunban"
	cmdBlockWord      = "!blockword"
	cmdUnblockWord    = "!unblockword"
	cmdBlocklist      = "!blocklist"
	cmdClearBlocklist = "!clearblocklist"
)

// Dispatch routes one incoming message. Anything that is not a recognized
// command is ignored; a recognized command always ends in either a chat reply
// or a logged silent no-op, never a crash.
func (b *Bot) Dispatch(ctx context.Context, in Incoming) {
	cmd, rest := firstToken(in.Text)
	cmd = strings.ToLower(cmd)
	if !strings.HasPrefix(cmd, "!") {
		return
	}
	ctx = telemetry.WithCorrelation(ctx, uuid.NewString())
	start := time.Now()
	reply, handled := b.handle(ctx, in, cmd, rest)
	if !handled {
		return
	}
	telemetry.IncCommand()
	telemetry.ObserveCommandDuration(time.Since(start))
	if reply != "" {
		b.send(in.Channel, reply)
	}
}

// handle executes one recognized command. The deferred recover is the
// last-resort handler: a panic is logged with the full request context and
// converted to the generic backend-error reply when a formatter is available,
// or swallowed silently when the failure happened before one could be built.
func (b *Bot) handle(ctx context.Context, in Incoming, cmd, rest string) (reply string, handled bool) {
	log := telemetry.LogWith(ctx)

	var (
		f      *i18n.Formatter
		prof   *db.UserProfile
		gender = keyword.PronounNeutral
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("chat: command panic",
				slog.Any("panic", r),
				slog.String("user_id", in.UserID),
				slog.String("username", in.Username),
				slog.String("command", cmd),
				slog.String("text", in.Text))
			handled = true
			reply = ""
			if f != nil && prof != nil {
				reply = f.FormatMsg(prof.SpeakingLang, prof.Style, "apiError", gender, i18n.Args{Mention: prof.Username})
			}
		}
	}()

	cfg, err := db.LoadBotConfig(ctx, b.DB)
	if err != nil {
		log.Error("chat: bot configuration unavailable", slog.Any("err", err))
		return "", true
	}
	if !b.recognized(cfg, cmd) {
		return "", false
	}

	tpls, err := db.LoadTemplates(ctx, b.DB)
	if err != nil {
		log.Error("chat: templates unavailable", slog.Any("err", err))
		return "", true
	}
	f = i18n.NewFormatter(tpls)

	prof, err = db.GetOrCreateProfile(ctx, b.DB, in.UserID, in.Username, cfg.DefaultPersona)
	if err != nil {
		log.Error("chat: profile load failed", slog.Any("err", err), slog.String("user_id", in.UserID))
		return "", true
	}
	gender = keyword.NormalizePronoun(cfg.Pronouns, prof.Pronouns)
	say := func(key string, extra ...string) string {
		return f.FormatMsg(prof.SpeakingLang, prof.Style, key, gender, i18n.Args{Mention: prof.Username, Extra: extra})
	}

	switch strings.TrimSuffix(cmd, "!") {
	case cmdTranslate, cmdTranslateShort:
		return b.Orch.Translate(ctx, cfg, f, prof, translate.Request{
			UserID:  in.UserID,
			Command: cmd,
			Text:    rest,
		}), true
	case cmdSettings, cmdSettingsShort:
		return b.handleSettings(ctx, cfg, prof, say, rest), true
	case cmdClear:
		return b.handleClear(ctx, cfg, prof, say), true
	case cmdBan, cmdUnban, cmdBlockWord, cmdUnblockWord, cmdBlocklist, cmdClearBlocklist:
		if !in.Privileged {
			return "", true
		}
		return b.handleAdmin(ctx, cfg, say, strings.TrimSuffix(cmd, "!"), rest), true
	default:
		// Help, matched by canonical token or any localized alias.
		return say("helpGuide", cfg.HelpURL), true
	}
}

// recognized reports whether cmd is one of ours, including localized help
// aliases from the configuration.
func (b *Bot) recognized(cfg *db.BotConfig, cmd string) bool {
	switch strings.TrimSuffix(cmd, "!") {
	case cmdTranslate, cmdTranslateShort, cmdSettings, cmdSettingsShort, cmdClear, cmdHelp,
		cmdBan, cmdUnban, cmdBlockWord, cmdUnblockWord, cmdBlocklist, cmdClearBlocklist:
		return true
	}
	for _, alias := range cfg.CommandAliases {
		if strings.EqualFold(cmd, alias) {
			return true
		}
	}
	return false
}

func (b *Bot) handleClear(ctx context.Context, cfg *db.BotConfig, prof *db.UserProfile, say func(string, ...string) string) string {
	changed, err := db.ClearPreferences(ctx, b.DB, prof, cfg.DefaultPersona)
	if err != nil {
		telemetry.LogWith(ctx).Error("chat: clear preferences failed", slog.Any("err", err))
		return say("apiError")
	}
	if !changed {
		return say("clearNone")
	}
	return say("clearConfirm")
}

func firstToken(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
