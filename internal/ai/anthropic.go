package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel   = "claude-sonnet-4-5-20250929"
	defaultTimeout = 10 * time.Second
	maxReplyTokens = 512
)

// Claude implements Adapter against the Anthropic Messages API.
type Claude struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewClaude creates an adapter. model may be empty to use the default.
func NewClaude(apiKey, model string) (*Claude, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key not set")
	}
	if model == "" {
		model = defaultModel
	}
	return &Claude{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: defaultTimeout,
	}, nil
}

// Categorize asks the model for a single lowercase category word.
func (c *Claude) Categorize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(
		"Classify this expense into one lowercase category word (food, transport, groceries, shopping, bills, health, entertainment, education, other). Reply with only the word.\n\nExpense: %s",
		text)
	reply, err := c.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(reply)), nil
}

// GenerateReply produces free-form reply text.
func (c *Claude) GenerateReply(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt)
}

func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxReplyTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return out.String(), nil
}
