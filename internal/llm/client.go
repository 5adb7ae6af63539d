// Package llm is the optional advisory subsystem: an OpenAI-compatible
// client used for conflict patch suggestions, strategy advice, bounded
// cost hints, and message drafts. Advisory output never blocks the base
// planning and execution loop; every failure degrades to the non-advised
// path.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultModel is used when neither config nor environment override it.
const DefaultModel = "gpt-4o-mini"

// ErrNotConfigured indicates missing advisory credentials.
var ErrNotConfigured = errors.New("llm advisory not configured")

// Client is an OpenAI-compatible chat-completions client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// normalizeBaseURL strips trailing slashes and a "/chat/completions"
// suffix so the path is never doubled when the client appends it.
func normalizeBaseURL(raw string) string {
	s := strings.TrimRight(raw, "/")
	return strings.TrimSuffix(s, "/chat/completions")
}

// NewFromEnv builds a client from OPENAI_API_KEY, OPENAI_BASE_URL, and
// OPENAI_MODEL. A missing key is ErrNotConfigured.
func NewFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}
	baseURL := normalizeBaseURL(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      os.Getenv("OPENAI_MODEL"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// ResolveModel picks the model: explicit override, then environment, then
// the default.
func (c *Client) ResolveModel(override string) string {
	if override != "" {
		return override
	}
	if c.model != "" {
		return c.model
	}
	return DefaultModel
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []chatMsg `json:"messages"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends a system and user prompt and returns the assistant text.
func (c *Client) Chat(ctx context.Context, model, system, user string) (string, Usage, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMsg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("advisory request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", Usage{}, fmt.Errorf("unparseable advisory response: %w", err)
	}
	if parsed.Error != nil {
		return "", parsed.Usage, fmt.Errorf("advisory error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parsed.Usage, fmt.Errorf("advisory returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", parsed.Usage, fmt.Errorf("advisory returned no choices")
	}
	return parsed.Choices[0].Message.Content, parsed.Usage, nil
}

// CompleteJSON asks for a JSON-only answer and decodes it into out,
// tolerating markdown code fences around the payload.
func (c *Client) CompleteJSON(ctx context.Context, model, system, user string, out any) (Usage, error) {
	text, usage, err := c.Chat(ctx, model, system, user)
	if err != nil {
		return usage, err
	}
	payload := stripFences(text)
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return usage, fmt.Errorf("advisory output did not match the expected schema: %w", err)
	}
	return usage, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
