package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
)

// agentTemperature is the sampling temperature for free-form agent replies.
const agentTemperature = 0.7

// RunChat sends one prompt to a single agent and returns its reply.
func RunChat(ctx context.Context, o contract.Oracle, model string, agent schema.Agent, prompt string) (schema.ChatMessage, error) {
	if strings.TrimSpace(prompt) == "" {
		return schema.ChatMessage{}, errors.New("prompt cannot be empty")
	}
	text, err := o.Complete(ctx, schema.CompletionRequest{
		Model:       model,
		System:      agent.Instructions,
		Prompt:      prompt,
		Temperature: agentTemperature,
	})
	if err != nil {
		return schema.ChatMessage{}, fmt.Errorf("agent %s failed: %w", agent.Name, err)
	}
	return schema.ChatMessage{Author: agent.Name, Text: strings.TrimSpace(text)}, nil
}
