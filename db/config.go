package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/onnwee/lingua-bot/keyword"
	"github.com/onnwee/lingua-bot/quota"
)

// DefaultTarget is the sentinel target language meaning "no explicit target".
const DefaultTarget = "default"

// Persona is a language+style pair used to seed new user profiles.
type Persona struct {
	Lang  string `json:"lang" yaml:"lang"`
	Style string `json:"style" yaml:"style"`
}

// BotConfig is the externally persisted configuration record. It is loaded
// fresh at the start of every command invocation and only mutated via
// explicit admin toggles that persist immediately.
type BotConfig struct {
	DefaultPersona Persona                 `json:"defaultPersona" yaml:"defaultPersona"`
	Limits         map[string]quota.Limits `json:"limits" yaml:"limits"`

	BlockedWords []string          `json:"blockedWords" yaml:"blockedWords"`
	BlockedUsers map[string]string `json:"blockedUsers" yaml:"blockedUsers"`

	// SupportedLangs is the set of configured language codes, and
	// LangPriority the ordered tie-break list for language inference.
	SupportedLangs []string `json:"supportedLangs" yaml:"supportedLangs"`
	LangPriority   []string `json:"langPriority" yaml:"langPriority"`

	// Auto-translate pair: text detected as AutoFromLang is translated to
	// AutoToLang, anything else back to AutoFromLang.
	AutoFromLang string `json:"autoFromLang" yaml:"autoFromLang"`
	AutoToLang   string `json:"autoToLang" yaml:"autoToLang"`

	// LowercaseNames lists languages whose display names are written
	// lowercase inside a sentence (e.g. es, fr, pt).
	LowercaseNames []string `json:"lowercaseNames" yaml:"lowercaseNames"`

	// Two-level keyword tables: language code -> lowercase keyword ->
	// canonical token. Resolution falls back to "en".
	LanguageNames keyword.Table `json:"languageNames" yaml:"languageNames"`
	SettingKeys   keyword.Table `json:"settingKeys" yaml:"settingKeys"`
	Styles        keyword.Table `json:"styles" yaml:"styles"`
	ModelTags     keyword.Table `json:"modelTags" yaml:"modelTags"`
	Tones         keyword.Table `json:"tones" yaml:"tones"`
	Pronouns      keyword.Table `json:"pronouns" yaml:"pronouns"`

	// GrammarHints: target language -> canonical pronoun -> free-text
	// grammar instruction appended to the gender clause of prompts.
	GrammarHints map[string]map[string]string `json:"grammarHints" yaml:"grammarHints"`

	// CommandAliases: language code -> localized help command alias.
	CommandAliases map[string]string `json:"commandAliases" yaml:"commandAliases"`
	HelpURL        string            `json:"helpUrl" yaml:"helpUrl"`
}

// LoadBotConfig reads and decodes the configuration record. Absence or parse
// failure is fatal for the invocation.
func LoadBotConfig(ctx context.Context, dbx *sql.DB) (*BotConfig, error) {
	var raw []byte
	err := dbx.QueryRowContext(ctx, `SELECT data FROM bot_config WHERE id=1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bot configuration missing")
	}
	if err != nil {
		return nil, fmt.Errorf("load bot configuration: %w", err)
	}
	var cfg BotConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse bot configuration: %w", err)
	}
	return &cfg, nil
}

// SaveBotConfig persists the full configuration record.
func SaveBotConfig(ctx context.Context, dbx *sql.DB, cfg *BotConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode bot configuration: %w", err)
	}
	_, err = dbx.ExecContext(ctx,
		`INSERT INTO bot_config(id, data, updated_at) VALUES(1,$1,NOW())
		 ON CONFLICT(id) DO UPDATE SET data=EXCLUDED.data, updated_at=NOW()`, raw)
	return err
}

// KnownLangs returns the supported language codes as a set.
func (c *BotConfig) KnownLangs() map[string]bool {
	m := make(map[string]bool, len(c.SupportedLangs))
	for _, l := range c.SupportedLangs {
		m[l] = true
	}
	return m
}

// IsUserBlocked reports whether userID is on the user blocklist.
func (c *BotConfig) IsUserBlocked(userID string) bool {
	_, ok := c.BlockedUsers[userID]
	return ok
}

// ContainsBlockedWord scans text for any blocklisted word, case-insensitive
// substring match.
func (c *BotConfig) ContainsBlockedWord(text string) bool {
	low := strings.ToLower(text)
	for _, w := range c.BlockedWords {
		if w != "" && strings.Contains(low, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// BlockUser adds userID to the blocklist. It reports false when the user was
// already blocked, leaving the collection unchanged.
func (c *BotConfig) BlockUser(userID, displayName string) bool {
	if c.BlockedUsers == nil {
		c.BlockedUsers = make(map[string]string)
	}
	if _, ok := c.BlockedUsers[userID]; ok {
		return false
	}
	c.BlockedUsers[userID] = displayName
	return true
}

// UnblockUser removes userID; false when it was not blocked.
func (c *BotConfig) UnblockUser(userID string) bool {
	if _, ok := c.BlockedUsers[userID]; !ok {
		return false
	}
	delete(c.BlockedUsers, userID)
	return true
}

// BlockWord adds word to the blocklist; false when already present.
func (c *BotConfig) BlockWord(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false
	}
	for _, w := range c.BlockedWords {
		if w == word {
			return false
		}
	}
	c.BlockedWords = append(c.BlockedWords, word)
	return true
}

// UnblockWord removes word; false when it was not present.
func (c *BotConfig) UnblockWord(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	for i, w := range c.BlockedWords {
		if w == word {
			c.BlockedWords = append(c.BlockedWords[:i], c.BlockedWords[i+1:]...)
			return true
		}
	}
	return false
}
