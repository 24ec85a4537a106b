package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/onnwee/lingua-bot/db"
)

// Handlers carries the shared dependencies for all HTTP handlers.
type Handlers struct {
	db *sql.DB
}

// HandleHealthz responds to liveness probe requests by checking database connectivity.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probe requests. Ready means the database
// answers and both the configuration record and the template table exist.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"database", func() error { return h.db.PingContext(r.Context()) }},
		{"bot_config", func() error {
			_, err := db.LoadBotConfig(r.Context(), h.db)
			return err
		}},
		{"templates", func() error {
			_, err := db.LoadTemplates(r.Context(), h.db)
			return err
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// HandleStatus returns a lightweight status summary: current quota counters
// per tier and window, blocklist sizes, and known profile count.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	resp := map[string]any{}

	var profiles int
	_ = h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profiles`).Scan(&profiles)
	resp["profiles"] = profiles

	if cfg, err := db.LoadBotConfig(ctx, h.db); err == nil {
		resp["blocked_users"] = len(cfg.BlockedUsers)
		resp["blocked_words"] = len(cfg.BlockedWords)
	}

	quotas := map[string]any{}
	rows, err := h.db.QueryContext(ctx, `SELECT tier, window_kind, window_id, count FROM quota_counters ORDER BY tier, window_kind, window_id`)
	if err == nil {
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var tier, kind, id string
			var count int
			if err := rows.Scan(&tier, &kind, &id, &count); err != nil {
				break
			}
			quotas[tier+"/"+kind+"/"+id] = count
		}
		_ = rows.Err()
	}
	resp["quota"] = quotas

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleConfig handles GET and PUT requests for safe configuration keys.
// Secrets are never exposed here; overrides live in the kv table.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	safeKeys := map[string]bool{
		"LOG_LEVEL":          true,
		"LOG_FORMAT":         true,
		"CHAT_MESSAGE_LIMIT": true,
		"CHAT_SEND_DELAY":    true,
		"LLM_MODEL_CHEAP":    true,
		"LLM_MODEL_STRONG":   true,
		"LLM_TIMEOUT":        true,
		"QUOTA_TZ":           true,
	}
	switch r.Method {
	case http.MethodGet:
		out := map[string]string{}
		for k := range safeKeys {
			var v string
			_ = h.db.QueryRowContext(r.Context(), `SELECT value FROM kv WHERE key=$1`, "cfg:"+k).Scan(&v)
			if v == "" {
				v = os.Getenv(k)
			}
			if v != "" {
				out[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodPut:
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", 400)
			return
		}
		for k, v := range body {
			if !safeKeys[k] {
				continue
			}
			if _, err := h.db.ExecContext(
				r.Context(),
				`INSERT INTO kv (key,value,updated_at) VALUES ($1,$2,NOW()) ON CONFLICT(key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`,
				"cfg:"+k,
				strings.TrimSpace(v),
			); err != nil {
				slog.Error("failed to update config", slog.String("key", k), slog.Any("err", err))
				http.Error(w, "failed to update config", http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
