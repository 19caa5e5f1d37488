package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicCompleter implements Completer against the Anthropic messages API.
type AnthropicCompleter struct {
	client *anthropic.Client
	config Config
}

// NewAnthropicCompleter creates an Anthropic completer. A non-empty
// Endpoint overrides the API base URL.
func NewAnthropicCompleter(cfg Config) *AnthropicCompleter {
	if cfg.Model == "" {
		cfg.Model = DefaultConfig(ProviderAnthropic, cfg.APIKey).Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}
	return &AnthropicCompleter{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		config: cfg,
	}
}

// Complete implements Completer.
func (c *AnthropicCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	temperature := float32(c.config.Temperature)
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.config.Model),
		System:      system,
		MaxTokens:   c.config.MaxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					{Type: "text", Text: &prompt},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			text.WriteString(*block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return text.String(), nil
}
