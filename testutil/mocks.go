package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// MockCompletionServer mocks an OpenAI-compatible chat completions endpoint.
type MockCompletionServer struct {
	*httptest.Server
	// Reply maps the last user message to the assistant reply; when nil every
	// request gets Fallback.
	Reply    func(prompt string) string
	Fallback string
	// Status overrides the response code when non-zero.
	Status int
}

// NewMockCompletionServer creates a chat-completions test server.
func NewMockCompletionServer(t *testing.T) *MockCompletionServer {
	t.Helper()
	m := &MockCompletionServer{Fallback: "ok"}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Status != 0 {
			w.WriteHeader(m.Status)
			return
		}
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		reply := m.Fallback
		if m.Reply != nil {
			reply = m.Reply(req.Messages[len(req.Messages)-1].Content)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck // test mock response
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(m.Close)
	return m
}
