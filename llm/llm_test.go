package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key")
	c.BaseURL = srv.URL
	return c
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth, gotModel string
	c := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  hola amigos \n"}},
			},
		})
	})

	got := c.Complete(context.Background(), "model-x", "translate this")
	if got != "hola amigos" {
		t.Fatalf("got %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotModel != "model-x" {
		t.Fatalf("model = %q", gotModel)
	}
}

func TestCompleteFailuresReturnEmpty(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}},
		{"content filter", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{"content": "partial"}, "finish_reason": "content_filter"},
				},
			})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := completionServer(t, tc.handler)
			if got := c.Complete(context.Background(), "m", "p"); got != "" {
				t.Fatalf("want empty reply, got %q", got)
			}
		})
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	c := NewClient("k")
	c.BaseURL = "http://127.0.0.1:1/unreachable"
	if got := c.Complete(context.Background(), "m", "p"); got != "" {
		t.Fatalf("want empty reply, got %q", got)
	}
}
