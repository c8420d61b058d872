package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

// openAIProvider talks to the Chat Completions API of OpenAI or an Azure OpenAI deployment.
type openAIProvider struct {
	client openai.Client
	label  string
}

// newAzureProvider targets an Azure OpenAI resource. The model is the deployment name.
func newAzureProvider(cfg *contract.Config) (provider, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("azure: endpoint is required (--endpoint or AZURE_OPENAI_ENDPOINT)")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("azure: api key is required (--api-key or AZURE_OPENAI_API_KEY)")
	}
	opts := []option.RequestOption{
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	return &openAIProvider{client: openai.NewClient(opts...), label: string(schema.AzureProvider)}, nil
}

// newOpenAIProvider targets api.openai.com or a compatible base URL.
func newOpenAIProvider(cfg *contract.Config) (provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required (--api-key)")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIProvider{client: openai.NewClient(opts...), label: string(schema.OpenAIProvider)}, nil
}

func (p *openAIProvider) name() string { return p.label }

func (p *openAIProvider) complete(ctx context.Context, req schema.CompletionRequest) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	switch {
	case req.Schema != nil:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	case req.JSON:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	chat, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in completion", p.label)
	}
	return strings.TrimSpace(chat.Choices[0].Message.Content), nil
}

func (p *openAIProvider) retryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.StatusCode)
	}
	return false
}
