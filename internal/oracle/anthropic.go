package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
)

// anthropicMaxTokens bounds the length of a Claude reply.
const anthropicMaxTokens = 4096

// jsonInstruction is appended to the system prompt of providers without a JSON response mode.
const jsonInstruction = "Respond with a single JSON object and nothing else."

type anthropicProvider struct {
	client anthropic.Client
}

func newAnthropicProvider(cfg *contract.Config) (provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key is required (--api-key)")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicProvider{client: anthropic.NewClient(opts...)}, nil
}

func (p *anthropicProvider) name() string { return string(schema.AnthropicProvider) }

func (p *anthropicProvider) complete(ctx context.Context, req schema.CompletionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(req.Prompt)},
		}},
		Temperature: anthropic.Float(req.Temperature),
	}
	if system := systemWithJSONHint(req); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, content := range message.Content {
		if content.Type == "text" {
			parts = append(parts, content.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}

func (p *anthropicProvider) retryable(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.StatusCode)
	}
	return false
}

// systemWithJSONHint returns the system prompt, extended with a JSON instruction when requested.
func systemWithJSONHint(req schema.CompletionRequest) string {
	if !req.JSON {
		return req.System
	}
	if req.System == "" {
		return jsonInstruction
	}
	return req.System + "\n" + jsonInstruction
}
