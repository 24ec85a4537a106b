package chat

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/onnwee/lingua-bot/db"
	"github.com/onnwee/lingua-bot/telemetry"
)

// handleAdmin executes the moderator-only blocklist commands. Every toggle is
// idempotent: repeating a block or unblock reports the current state instead
// of erroring, and only actual changes are persisted.
func (b *Bot) handleAdmin(ctx context.Context, cfg *db.BotConfig, say func(string, ...string) string, cmd, rest string) string {
	switch cmd {
	case cmdBan:
		login := cleanLogin(rest)
		if login == "" {
			return say("adminBlockNoUser")
		}
		id, display := b.lookupUser(ctx, login)
		if id == "" {
			return say("adminBlockUnknownUser", login)
		}
		if !cfg.BlockUser(id, display) {
			return say("adminBlockAlreadyExists", display)
		}
		return b.saveConfig(ctx, cfg, say, say("adminBlockConfirm", display))

	case cmdUnban:
		login := cleanLogin(rest)
		if login == "" {
			return say("adminUnblockNoUser")
		}
		id, display := b.findBlocked(ctx, cfg, login)
		if id == "" || !cfg.UnblockUser(id) {
			return say("adminUnblockNotFound", login)
		}
		return b.saveConfig(ctx, cfg, say, say("adminUnblockConfirm", display))

	case cmdBlockWord:
		word := strings.ToLower(strings.TrimSpace(rest))
		if word == "" {
			return say("blocklistNoWord")
		}
		if !cfg.BlockWord(word) {
			return say("blocklistAlreadyExists", word)
		}
		return b.saveConfig(ctx, cfg, say, say("blocklistAddConfirm", word))

	case cmdUnblockWord:
		word := strings.ToLower(strings.TrimSpace(rest))
		if word == "" {
			return say("blocklistNoWord")
		}
		if !cfg.UnblockWord(word) {
			return say("blocklistNotFound", word)
		}
		return b.saveConfig(ctx, cfg, say, say("blocklistRemoveConfirm", word))

	case cmdBlocklist:
		if strings.EqualFold(strings.TrimSpace(rest), "users") {
			if len(cfg.BlockedUsers) == 0 {
				return say("blockListUsersEmpty")
			}
			names := make([]string, 0, len(cfg.BlockedUsers))
			for _, n := range cfg.BlockedUsers {
				names = append(names, n)
			}
			sort.Strings(names)
			return say("blockListUsers", strings.Join(names, ", "))
		}
		if len(cfg.BlockedWords) == 0 {
			return say("blockListWordsEmpty")
		}
		words := append([]string(nil), cfg.BlockedWords...)
		sort.Strings(words)
		return say("blockListWords", strings.Join(words, ", "))

	case cmdClearBlocklist:
		if len(cfg.BlockedWords) == 0 {
			return say("blockListWordsEmpty")
		}
		cfg.BlockedWords = nil
		return b.saveConfig(ctx, cfg, say, say("blocklistCleared"))
	}
	return ""
}

// lookupUser resolves a login to (id, display name): the local profile store
// first, then the platform directory.
func (b *Bot) lookupUser(ctx context.Context, login string) (string, string) {
	if p, err := db.FindProfileByUsername(ctx, b.DB, login); err == nil && p != nil {
		return p.UserID, p.Username
	}
	if b.Users == nil {
		return "", ""
	}
	u, err := b.Users.GetUser(ctx, login)
	if err != nil {
		telemetry.LogWith(ctx).Warn("chat: user lookup failed", slog.String("login", login), slog.Any("err", err))
		return "", ""
	}
	return u.ID, u.DisplayName
}

// findBlocked resolves a login against the blocklist itself (stored display
// names), then falls back to the profile store.
func (b *Bot) findBlocked(ctx context.Context, cfg *db.BotConfig, login string) (string, string) {
	for id, name := range cfg.BlockedUsers {
		if strings.EqualFold(name, login) {
			return id, name
		}
	}
	if p, err := db.FindProfileByUsername(ctx, b.DB, login); err == nil && p != nil {
		return p.UserID, p.Username
	}
	return "", ""
}

func (b *Bot) saveConfig(ctx context.Context, cfg *db.BotConfig, say func(string, ...string) string, confirm string) string {
	if err := db.SaveBotConfig(ctx, b.DB, cfg); err != nil {
		telemetry.LogWith(ctx).Error("chat: config save failed", slog.Any("err", err))
		return say("apiError")
	}
	return confirm
}

func cleanLogin(rest string) string {
	login, _ := firstToken(rest)
	return strings.TrimPrefix(strings.ToLower(login), "@")
}
