package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"LLM_MODEL_CHEAP", "LLM_MODEL_STRONG", "LLM_TIMEOUT", "CHAT_MESSAGE_LIMIT", "CHAT_SEND_DELAY"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLMModelCheap != "gpt-4o-mini" || cfg.LLMModelStrong != "gpt-4o" {
		t.Fatalf("model defaults = %q / %q", cfg.LLMModelCheap, cfg.LLMModelStrong)
	}
	if cfg.ChatMessageLimit != 500 {
		t.Fatalf("ChatMessageLimit = %d, want 500", cfg.ChatMessageLimit)
	}
	if cfg.ChatSendDelay != 400*time.Millisecond {
		t.Fatalf("ChatSendDelay = %v", cfg.ChatSendDelay)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Fatalf("LLMTimeout = %v", cfg.LLMTimeout)
	}
}

func TestLoadOverridesAndValidation(t *testing.T) {
	t.Setenv("CHAT_MESSAGE_LIMIT", "200")
	t.Setenv("CHAT_SEND_DELAY", "1s")
	t.Setenv("LLM_TIMEOUT", "5s")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ChatMessageLimit != 200 || cfg.ChatSendDelay != time.Second || cfg.LLMTimeout != 5*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	t.Setenv("CHAT_MESSAGE_LIMIT", "5") // below the sane minimum
	if _, err := Load(); err == nil {
		t.Fatal("want error for tiny CHAT_MESSAGE_LIMIT")
	}
	t.Setenv("CHAT_MESSAGE_LIMIT", "")
	t.Setenv("LLM_TIMEOUT", "bogus")
	if _, err := Load(); err == nil {
		t.Fatal("want error for malformed LLM_TIMEOUT")
	}
}

func TestValidateChatReady(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateChatReady(); err == nil {
		t.Fatal("want error when twitch env missing")
	}
	cfg = &Config{TwitchChannel: "chan", TwitchBotUsername: "bot", TwitchOAuthToken: "oauth:x"}
	if err := cfg.ValidateChatReady(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
