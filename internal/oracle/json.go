package oracle

import (
	"strings"

	"github.com/invopop/jsonschema"
)

// ExtractJSON returns the JSON payload of a model reply.
// Content inside a ```json fence wins; otherwise surrounding fences and whitespace are stripped.
func ExtractJSON(responseText string) string {
	var block []string
	inBlock, found := false, false
	for line := range strings.SplitSeq(responseText, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inBlock && trimmed == "```json" {
			inBlock, found = true, true
			continue
		}
		if inBlock && trimmed == "```" {
			break
		}
		if inBlock {
			block = append(block, line)
		}
	}
	if found {
		return strings.TrimSpace(strings.Join(block, "\n"))
	}

	text := strings.TrimSpace(responseText)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// GenerateSchema reflects a closed, inlined JSON schema for T.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
