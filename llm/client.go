// LLMClient - Simple wrapper around providers.

package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a provider answers with no content.
var ErrEmptyResponse = errors.New("empty response from provider")

// Client wraps a Provider with a simple interface.
type Client struct {
	provider Provider
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Chat sends a chat completion request and returns just the content.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// ChatWithUsage sends a chat completion request and returns content with token usage.
func (c *Client) ChatWithUsage(ctx context.Context, messages []ChatMessage) (string, *TokenUsage, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	return response.Content, response.Usage, nil
}

// Ping performs a minimal completion to confirm the credential and model
// are accepted by the provider.
func (c *Client) Ping(ctx context.Context) error {
	response, err := c.provider.Chat(ctx, []ChatMessage{UserMessage("Reply with OK.")})
	if err != nil {
		return fmt.Errorf("%s handshake failed: %w", c.provider.Name(), err)
	}
	if response.Content == "" {
		return fmt.Errorf("%s handshake failed: %w", c.provider.Name(), ErrEmptyResponse)
	}
	return nil
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}
