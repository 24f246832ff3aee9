package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"bloghub-backend/internal/config"
)

// ErrNoAPIKey signals that the OpenAI integration is not configured.
var ErrNoAPIKey = errors.New("openai api key is not configured")

// Client wraps the OpenAI chat completion API.
// Non-deterministic on purpose (temperature > 0); no caching, no retry.
type Client struct {
	cfg config.OpenAIConfig
}

func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{cfg: cfg}
}

// Complete sends a system + user prompt pair and returns the raw text response.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if len(c.cfg.APIKey) < 2 {
		return "", ErrNoAPIKey
	}

	client := openai.NewClient(c.cfg.APIKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
