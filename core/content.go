package core

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Content limits applied before a file is sent to the oracle.
const (
	maxContentRunes  = 8000
	truncationMarker = "\n... (truncated)"
)

// LoadContent reads a file as text, dropping invalid UTF-8 sequences.
// Content longer than maxContentRunes is cut and marked as truncated.
// It never fails: read errors are reported inside the returned text.
func LoadContent(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err)
	}

	content := string(data)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}

	if utf8.RuneCountInString(content) > maxContentRunes {
		runes := []rune(content)
		content = string(runes[:maxContentRunes]) + truncationMarker
	}
	return content
}
