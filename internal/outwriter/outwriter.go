// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteEvaluation prints the folder report using the configured output format.
func (ow *OutWriter) WriteEvaluation(result schema.OverallEvaluation, cfg *contract.Config, duration time.Duration) error {
	return PrintEvaluation(result, cfg, duration)
}

// WriteChat prints a single agent reply.
func (ow *OutWriter) WriteChat(msg schema.ChatMessage, cfg *contract.Config) error {
	return PrintChat(msg, cfg)
}

// WritePanel prints a merged panel conversation.
func (ow *OutWriter) WritePanel(result schema.PanelResult, cfg *contract.Config) error {
	return PrintPanel(result, cfg)
}
