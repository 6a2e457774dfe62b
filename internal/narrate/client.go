// Package narrate is the LLM collaborator: it turns a point's context
// and the scene's seed prompt into narration and chat replies. It holds
// no tour state of its own.
package narrate

import "context"

// Message is one turn of a chat exchange.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Client sends a conversation to an LLM and returns the reply text.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string `yaml:"provider"` // "openai" | "ollama" | "mock"
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// New builds a client for the configured provider. An unknown or empty
// provider, or an openai provider with no key and no local base URL,
// degrades to the mock client rather than failing.
func New(cfg Config) Client {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.BaseURL, cfg.Model)
	case "openai":
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return Mock{}
		}
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return Mock{}
	}
}
