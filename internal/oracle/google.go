package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
	"google.golang.org/genai"
)

type googleProvider struct {
	client *genai.Client
}

func newGoogleProvider(cfg *contract.Config) (provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google: api key is required (--api-key)")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, err
	}
	return &googleProvider{client: client}, nil
}

func (p *googleProvider) name() string { return string(schema.GoogleProvider) }

func (p *googleProvider) complete(ctx context.Context, req schema.CompletionRequest) (string, error) {
	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.JSON || req.Schema != nil {
		config.ResponseMIMEType = "application/json"
	}
	if req.Schema != nil {
		config.ResponseJsonSchema = req.Schema
	}

	response, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", err
	}
	if len(response.Candidates) == 0 {
		return "", errors.New("google: no content generated - no candidates")
	}
	return strings.TrimSpace(response.Text()), nil
}

// retryable matches the status codes and phrases the Gemini API uses for transient failures.
func (p *googleProvider) retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.Code)
	}
	errStr := err.Error()
	return strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "Overloaded") ||
		strings.Contains(errStr, "quota exceeded")
}
