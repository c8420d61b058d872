package core

import (
	"context"
	"errors"
	"strings"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
	"golang.org/x/sync/errgroup"
)

// RunPanel broadcasts one prompt to every agent concurrently and merges the replies.
// The conversation starts with the user prompt followed by one reply per agent,
// in the order the agents were given. The run completes when no dispatched
// work is pending; the first agent failure cancels the others and is returned.
func RunPanel(ctx context.Context, o contract.Oracle, model string, agents []schema.Agent, prompt string) (schema.PanelResult, error) {
	if len(agents) == 0 {
		return schema.PanelResult{}, errors.New("panel needs at least one agent")
	}
	if strings.TrimSpace(prompt) == "" {
		return schema.PanelResult{}, errors.New("prompt cannot be empty")
	}

	replies := make([]schema.ChatMessage, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	for i, agent := range agents {
		g.Go(func() error {
			// Each goroutine writes to a unique index, which is safe.
			reply, err := RunChat(gctx, o, model, agent, prompt)
			if err != nil {
				return err
			}
			replies[i] = reply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return schema.PanelResult{}, err
	}

	messages := make([]schema.ChatMessage, 0, len(agents)+1)
	messages = append(messages, schema.ChatMessage{Text: prompt})
	messages = append(messages, replies...)

	return schema.PanelResult{Prompt: prompt, Messages: messages}, nil
}
