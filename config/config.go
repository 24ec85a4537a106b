// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required credentials (e.g., Twitch chat), use ValidateChatReady.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Twitch
	TwitchChannel      string
	TwitchBotUsername  string
	TwitchOAuthToken   string
	TwitchClientID     string
	TwitchClientSecret string

	// Translation backend (OpenAI-compatible chat completions)
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModelCheap  string
	LLMModelStrong string
	LLMTimeout     time.Duration

	// Chat output
	ChatMessageLimit int
	ChatSendDelay    time.Duration
}

// Load reads environment variables and applies defaults. It doesn't fail if Twitch creds are
// missing; use ValidateChatReady() when you require the chat surface. A missing LLM key disables
// nothing here — the backend client reports failures at call time.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.TwitchChannel = os.Getenv("TWITCH_CHANNEL")
	cfg.TwitchBotUsername = os.Getenv("TWITCH_BOT_USERNAME")
	cfg.TwitchOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")
	cfg.TwitchClientID = os.Getenv("TWITCH_CLIENT_ID")
	cfg.TwitchClientSecret = os.Getenv("TWITCH_CLIENT_SECRET")

	// Backend
	cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	cfg.LLMModelCheap = os.Getenv("LLM_MODEL_CHEAP")
	if cfg.LLMModelCheap == "" {
		cfg.LLMModelCheap = "gpt-4o-mini"
	}
	cfg.LLMModelStrong = os.Getenv("LLM_MODEL_STRONG")
	if cfg.LLMModelStrong == "" {
		cfg.LLMModelStrong = "gpt-4o"
	}
	cfg.LLMTimeout = 30 * time.Second
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_TIMEOUT (duration): %w", err)
		}
		cfg.LLMTimeout = d
	}

	// Chat output. Twitch caps IRC messages at 500 characters.
	cfg.ChatMessageLimit = 500
	if v := os.Getenv("CHAT_MESSAGE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 20 {
			return nil, fmt.Errorf("invalid CHAT_MESSAGE_LIMIT: %q", v)
		}
		cfg.ChatMessageLimit = n
	}
	cfg.ChatSendDelay = 400 * time.Millisecond
	if v := os.Getenv("CHAT_SEND_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAT_SEND_DELAY (duration): %w", err)
		}
		cfg.ChatSendDelay = d
	}

	return cfg, nil
}

// ValidateChatReady checks required fields when the chat surface is enabled.
func (c *Config) ValidateChatReady() error {
	if c.TwitchChannel == "" || c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL, TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}
