package outwriter

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
)

// userAuthor is shown for messages without an author.
const userAuthor = "user"

var authorColor = color.New(color.FgGreen, color.Bold)

// PrintChat outputs a single agent reply.
func PrintChat(msg schema.ChatMessage, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error { return writeJSON(w, msg) }, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error { return writeYAML(w, msg) }, "Wrote YAML")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writeMessage(w, msg, cfg)
			return nil
		}, "Wrote reply")
	}
}

// PrintPanel outputs a panel conversation in message order.
func PrintPanel(result schema.PanelResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error { return writeJSON(w, result) }, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error { return writeYAML(w, result) }, "Wrote YAML")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, msg := range result.Messages {
				writeMessage(w, msg, cfg)
			}
			return nil
		}, "Wrote conversation")
	}
}

func writeMessage(w io.Writer, msg schema.ChatMessage, cfg *contract.Config) {
	author := msg.Author
	if author == "" {
		author = userAuthor
	}
	if cfg.UseColors {
		author = authorColor.Sprint(author)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n\n", author, msg.Text)
}
