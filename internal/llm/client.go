// Package llm wraps the chat-completion providers used to generate AI insights.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderGateway   = "gateway"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var (
	// ErrNotConfigured is returned by New when no API key is set.
	ErrNotConfigured = errors.New("LLM API key is not configured")
	// ErrEmptyResponse is returned when the provider answers without text content.
	ErrEmptyResponse = errors.New("no content in response")
)

// Request is one system+user exchange.
type Request struct {
	System      string
	User        string
	Temperature float64
	// JSON asks the provider for a JSON object when it supports a response format.
	JSON bool
}

// Client completes a chat request and returns the assistant text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// New returns the client for cfg.Provider.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	switch cfg.Provider {
	case ProviderGateway, "":
		return NewGatewayClient(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// CleanJSONResponse strips markdown fences and prose around the outermost JSON object.
func CleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
