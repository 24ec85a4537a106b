package chat

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/lingua-bot/config"
	"github.com/onnwee/lingua-bot/telemetry"
	"github.com/onnwee/lingua-bot/translate"
	"github.com/onnwee/lingua-bot/twitchapi"
)

// Sender delivers one chat line to a channel. The IRC client satisfies it in
// production; tests substitute a recorder.
type Sender interface {
	Say(channel, text string)
}

// UserDirectory resolves a typed login to a platform user record. Used by the
// block command when the local profile store has never seen the user.
type UserDirectory interface {
	GetUser(ctx context.Context, login string) (*twitchapi.User, error)
}

// Bot wires the IRC connection to the command dispatcher.
type Bot struct {
	DB    *sql.DB
	Cfg   *config.Config
	Orch  *translate.Orchestrator
	Users UserDirectory

	// Out is the reply sink; Start sets it to the live IRC client when nil.
	Out Sender
}

// Incoming is one chat message as seen by the dispatcher.
type Incoming struct {
	UserID   string
	Username string
	Channel  string
	Text     string
	// Privileged is true for moderators and the broadcaster.
	Privileged bool
}

// Start connects to Twitch chat and dispatches commands until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.Cfg.ValidateChatReady(); err != nil {
		return err
	}
	client := twitch.NewClient(b.Cfg.TwitchBotUsername, b.Cfg.TwitchOAuthToken)
	if b.Out == nil {
		b.Out = client
	}

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		// Never dispatch our own messages; a reply that happens to start
		// with a command token must not re-trigger the bot.
		if strings.EqualFold(msg.User.Name, b.Cfg.TwitchBotUsername) {
			return
		}
		in := Incoming{
			UserID:     msg.User.ID,
			Username:   msg.User.DisplayName,
			Channel:    msg.Channel,
			Text:       msg.Message,
			Privileged: msg.User.Badges["moderator"] > 0 || msg.User.Badges["broadcaster"] > 0,
		}
		go b.Dispatch(ctx, in)
	})

	// Handle context cancellation by closing the client
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		client.Disconnect()
		close(done)
	}()

	client.Join(b.Cfg.TwitchChannel)
	slog.Info("chat: connecting", slog.String("channel", b.Cfg.TwitchChannel), slog.String("component", "chat"))
	if err := client.Connect(); err != nil {
		slog.Error("twitch chat connect error", slog.Any("err", err))
	}
	<-done
	return nil
}

// send splits a reply at the platform message limit and delivers the chunks
// with a short delay in between so the IRC server does not drop them.
func (b *Bot) send(channel, text string) {
	limit := b.Cfg.ChatMessageLimit
	if limit <= 0 {
		limit = 500
	}
	chunks := translate.ChunkMessage(text, limit)
	for i, c := range chunks {
		if i > 0 && b.Cfg.ChatSendDelay > 0 {
			time.Sleep(b.Cfg.ChatSendDelay)
		}
		b.Out.Say(channel, c)
	}
	telemetry.AddChunksSent(len(chunks))
}
