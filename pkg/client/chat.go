package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ChatClient talks to an OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	*BaseClient
	apiKey       string
	baseURL      string
	model        string
	maxTokens    int
	systemPrompt string
}

type ChatOptions struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	SystemPrompt string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewChatClient(opts ChatOptions, config ClientConfig, logger *zap.Logger) *ChatClient {
	return &ChatClient{
		BaseClient:   NewBaseClient("chat", config, logger),
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		model:        opts.Model,
		maxTokens:    opts.MaxTokens,
		systemPrompt: opts.SystemPrompt,
	}
}

// Complete sends the system persona plus one user message made of the
// running history and the new prompt.
func (c *ChatClient) Complete(ctx context.Context, prompt, history string) (string, error) {
	payload := chatRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: history + "\n" + prompt},
		},
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var out chatResponse
	if err := c.PostJSON(ctx, c.baseURL+"/chat/completions", headers, payload, &out); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}
