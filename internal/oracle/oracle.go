// Package oracle connects scoring and agent prompts to hosted language models.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("oracle returned an empty completion")

// provider is a single hosted model family.
type provider interface {
	name() string
	complete(ctx context.Context, req schema.CompletionRequest) (string, error)
	retryable(err error) bool
}

// Client is the Oracle used by every command. It adds the shared retry policy
// and the per-call timeout on top of a provider.
type Client struct {
	provider provider
	model    string
	retry    RetryConfig
	timeout  time.Duration
}

var _ contract.Oracle = &Client{} // Compile-time check

// New creates a Client for the provider selected in cfg.
func New(cfg *contract.Config) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("a model or deployment name is required (--model)")
	}

	var (
		p   provider
		err error
	)
	switch cfg.Provider {
	case schema.AzureProvider, "":
		p, err = newAzureProvider(cfg)
	case schema.OpenAIProvider:
		p, err = newOpenAIProvider(cfg)
	case schema.AnthropicProvider:
		p, err = newAnthropicProvider(cfg)
	case schema.GoogleProvider:
		p, err = newGoogleProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	if err := retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry settings: %w", err)
	}
	return &Client{provider: p, model: cfg.Model, retry: retry, timeout: cfg.Timeout}, nil
}

// Complete sends req to the provider and returns the text of the first completion.
// An empty request model falls back to the configured one.
func (c *Client) Complete(ctx context.Context, req schema.CompletionRequest) (string, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	isRetryable := func(err error) bool {
		if ctx.Err() != nil {
			return false
		}
		// A per-attempt timeout is worth another try while the caller still waits
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		return c.provider.retryable(err)
	}

	return RetryWithBackoff(ctx, c.retry, c.provider.name()+" completion", isRetryable, func() (string, error) {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		text, err := c.provider.complete(callCtx, req)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", ErrEmptyCompletion
		}
		return text, nil
	})
}

// isRetryableStatus reports whether an HTTP status is worth retrying.
func isRetryableStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504, 529:
		return true
	}
	return false
}
