package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("undecodable request body: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func envClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", baseURL)
	t.Setenv("OPENAI_MODEL", "")
	c, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv() error: %v", err)
	}
	return c
}

func TestNewFromEnvRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewFromEnv(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewFromEnv() = %v, want ErrNotConfigured", err)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://api.openai.com/v1", "https://api.openai.com/v1"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1"},
		{"http://localhost:8080/v1/chat/completions", "http://localhost:8080/v1"},
	}
	for _, tt := range tests {
		if got := normalizeBaseURL(tt.in); got != tt.want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveModel(t *testing.T) {
	c := &Client{model: "env-model"}
	if got := c.ResolveModel("override"); got != "override" {
		t.Errorf("ResolveModel(override) = %q", got)
	}
	if got := c.ResolveModel(""); got != "env-model" {
		t.Errorf("ResolveModel() = %q, want the environment model", got)
	}
	if got := (&Client{}).ResolveModel(""); got != DefaultModel {
		t.Errorf("ResolveModel() = %q, want %q", got, DefaultModel)
	}
}

func TestChatRoundTrip(t *testing.T) {
	server := chatServer(t, http.StatusOK, `{
		"choices": [{"message": {"content": "rebase looks safe"}}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`)
	defer server.Close()

	c := envClient(t, server.URL+"/v1/")
	text, usage, err := c.Chat(context.Background(), DefaultModel, "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if text != "rebase looks safe" {
		t.Errorf("Chat() = %q", text)
	}
	if usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v", usage)
	}
}

func TestChatProviderError(t *testing.T) {
	server := chatServer(t, http.StatusTooManyRequests, `{"error": {"message": "rate limited"}}`)
	defer server.Close()

	c := envClient(t, server.URL+"/v1")
	_, _, err := c.Chat(context.Background(), DefaultModel, "s", "u")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Chat() error = %v, want the provider message", err)
	}
}

func TestChatEmptyChoices(t *testing.T) {
	server := chatServer(t, http.StatusOK, `{"choices": []}`)
	defer server.Close()

	c := envClient(t, server.URL+"/v1")
	if _, _, err := c.Chat(context.Background(), DefaultModel, "s", "u"); err == nil {
		t.Error("Chat() should fail on an empty choice list")
	}
}

func TestCompleteJSONStripsFences(t *testing.T) {
	payload := "```json\n{\"title\": \"Recovered main\", \"body\": \"rebased\"}\n```"
	encoded, _ := json.Marshal(payload)
	server := chatServer(t, http.StatusOK,
		`{"choices": [{"message": {"content": `+string(encoded)+`}}], "usage": {"total_tokens": 8}}`)
	defer server.Close()

	c := envClient(t, server.URL+"/v1")
	var draft MessageDraft
	usage, err := c.CompleteJSON(context.Background(), DefaultModel, "s", "u", &draft)
	if err != nil {
		t.Fatalf("CompleteJSON() error: %v", err)
	}
	if draft.Title != "Recovered main" || draft.Body != "rebased" {
		t.Errorf("draft = %+v", draft)
	}
	if usage.TotalTokens != 8 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestCompleteJSONRejectsProse(t *testing.T) {
	server := chatServer(t, http.StatusOK,
		`{"choices": [{"message": {"content": "Sure! Here is my advice."}}]}`)
	defer server.Close()

	c := envClient(t, server.URL+"/v1")
	var draft MessageDraft
	if _, err := c.CompleteJSON(context.Background(), DefaultModel, "s", "u", &draft); err == nil {
		t.Error("prose output must fail schema decoding")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
