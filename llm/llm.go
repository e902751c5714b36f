// Package llm talks to hosted chat-completion models.
package llm

import (
	"context"
	"errors"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNoProvider is returned by New when no API key is configured.
var ErrNoProvider = errors.New("no llm provider configured")

// ErrEmptyResponse is returned when the model replies without any text.
var ErrEmptyResponse = errors.New("empty model response")

// Message is a chat turn in a provider-agnostic format
type Message struct {
	Role    string
	Content string
}

// Request is one completion call. System carries instructions and grounding
// documents; Messages is the conversation so far, oldest first.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Client is implemented by every model backend.
type Client interface {
	Chat(ctx context.Context, req Request) (string, error)
	Name() string
}

// Config selects and configures a backend.
type Config struct {
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	AnthropicKey     string
	AnthropicModel   string
	AnthropicBaseURL string
}

// New picks OpenAI when its key is set, then Anthropic.
func New(cfg Config) (Client, error) {
	switch {
	case cfg.OpenAIKey != "":
		return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case cfg.AnthropicKey != "":
		return NewAnthropic(cfg.AnthropicKey, cfg.AnthropicModel, cfg.AnthropicBaseURL), nil
	default:
		return nil, ErrNoProvider
	}
}
