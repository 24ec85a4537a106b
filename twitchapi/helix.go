// Package twitchapi contains a minimal helper to resolve typed usernames to
// stable user ids via the Twitch Helix API, using an app access token. It is
// only consulted when the local profile store has no reverse-index match.
package twitchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	helixUsersURL = "https://api.twitch.tv/helix/users"
	tokenURL      = "https://id.twitch.tv/oauth2/token" //nolint:gosec // G101: OAuth endpoint, not a credential
)

// User is the subset of a Helix user record the bot needs.
type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// HelixClient resolves logins to user records.
type HelixClient struct {
	ClientID   string
	tokens     oauth2.TokenSource
	HTTPClient *http.Client
	// BaseURL overrides the Helix endpoint in tests.
	BaseURL string
}

// NewHelixClient builds a client using the client-credentials grant for app
// access tokens; tokens are cached and refreshed by the oauth2 token source.
func NewHelixClient(ctx context.Context, clientID, clientSecret string) *HelixClient {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return &HelixClient{
		ClientID: clientID,
		tokens:   cc.TokenSource(ctx),
	}
}

func (hc *HelixClient) http() *http.Client {
	if hc.HTTPClient != nil {
		return hc.HTTPClient
	}
	return http.DefaultClient
}

// GetUser resolves a login name to its user record.
func (hc *HelixClient) GetUser(ctx context.Context, login string) (*User, error) {
	if login == "" {
		return nil, fmt.Errorf("login empty")
	}
	url := hc.BaseURL
	if url == "" {
		url = helixUsersURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("login", login)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Client-Id", hc.ClientID)
	if hc.tokens != nil {
		tok, err := hc.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("app token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	}
	resp, err := hc.http().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("helix users: status %d", resp.StatusCode)
	}
	var body struct {
		Data []User `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return &body.Data[0], nil
}
