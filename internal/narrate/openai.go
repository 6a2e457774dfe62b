package narrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultOpenAIBaseURL is the hosted endpoint; LM Studio and other
// OpenAI-compatible local servers substitute their own.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI implements Client against any /chat/completions compatible API.
type OpenAI struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	u := strings.TrimSuffix(baseURL, "/")
	if u == "" {
		u = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &OpenAI{
		baseURL: u,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *OpenAI) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("chat completions: status %d", resp.StatusCode)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completions: empty choices")
	}
	return StripThink(out.Choices[0].Message.Content), nil
}

var thinkRE = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThink removes reasoning-trace tags some models emit before the
// actual reply.
func StripThink(s string) string {
	return strings.TrimSpace(thinkRE.ReplaceAllString(s, ""))
}
