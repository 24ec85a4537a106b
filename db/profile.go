package db

import (
	"context"
	"database/sql"
	"fmt"
)

// UserProfile holds one viewer's stored preferences, keyed by the stable
// platform user id. Username is kept in sync on every sighting and doubles as
// the only reverse index (name -> id).
type UserProfile struct {
	UserID       string
	Username     string
	TargetLang   string // DefaultTarget when unset
	SpeakingLang string
	Style        string
	Pronouns     string // free-text phrase, "" when unset
}

// GetOrCreateProfile fetches the profile for userID, creating it from the
// configured default persona on first sighting. The stored username is
// proactively updated whenever the platform-reported display name differs.
func GetOrCreateProfile(ctx context.Context, dbx *sql.DB, userID, username string, persona Persona) (*UserProfile, error) {
	p := &UserProfile{UserID: userID}
	err := dbx.QueryRowContext(ctx,
		`SELECT username, target_lang, speaking_lang, style, pronouns FROM user_profiles WHERE user_id=$1`,
		userID).Scan(&p.Username, &p.TargetLang, &p.SpeakingLang, &p.Style, &p.Pronouns)
	if err == sql.ErrNoRows {
		p = &UserProfile{
			UserID:       userID,
			Username:     username,
			TargetLang:   DefaultTarget,
			SpeakingLang: persona.Lang,
			Style:        persona.Style,
		}
		if err := UpsertProfile(ctx, dbx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	if username != "" && p.Username != username {
		p.Username = username
		if err := UpsertProfile(ctx, dbx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// UpsertProfile writes the whole profile row.
func UpsertProfile(ctx context.Context, dbx *sql.DB, p *UserProfile) error {
	_, err := dbx.ExecContext(ctx,
		`INSERT INTO user_profiles(user_id, username, target_lang, speaking_lang, style, pronouns, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,NOW())
		 ON CONFLICT(user_id) DO UPDATE SET
		   username=EXCLUDED.username,
		   target_lang=EXCLUDED.target_lang,
		   speaking_lang=EXCLUDED.speaking_lang,
		   style=EXCLUDED.style,
		   pronouns=EXCLUDED.pronouns,
		   updated_at=NOW()`,
		p.UserID, p.Username, p.TargetLang, p.SpeakingLang, p.Style, p.Pronouns)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

// FindProfileByUsername resolves a display name to a profile via the stored
// username reverse index. Returns nil without error when no row matches.
func FindProfileByUsername(ctx context.Context, dbx *sql.DB, username string) (*UserProfile, error) {
	p := &UserProfile{}
	err := dbx.QueryRowContext(ctx,
		`SELECT user_id, username, target_lang, speaking_lang, style, pronouns
		 FROM user_profiles WHERE LOWER(username)=LOWER($1)`,
		username).Scan(&p.UserID, &p.Username, &p.TargetLang, &p.SpeakingLang, &p.Style, &p.Pronouns)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by username %q: %w", username, err)
	}
	return p, nil
}

// ClearPreferences resets a profile to the default persona, reporting whether
// anything was actually cleared.
func ClearPreferences(ctx context.Context, dbx *sql.DB, p *UserProfile, persona Persona) (bool, error) {
	changed := p.TargetLang != DefaultTarget ||
		p.SpeakingLang != persona.Lang ||
		p.Style != persona.Style ||
		p.Pronouns != ""
	if !changed {
		return false, nil
	}
	p.TargetLang = DefaultTarget
	p.SpeakingLang = persona.Lang
	p.Style = persona.Style
	p.Pronouns = ""
	return true, UpsertProfile(ctx, dbx, p)
}
