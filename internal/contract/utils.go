package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/aieval/schema"
	"github.com/sirupsen/logrus"
)

// Color variables for console output.
var (
	LikelyAIColor    = color.New(color.FgRed, color.Bold) // LikelyAIColor represents a strong AI signal.
	UncertainColor   = color.New(color.FgYellow)          // UncertainColor represents standard caution, not bold.
	LikelyHumanColor = color.New(color.FgCyan)            // LikelyHumanColor represents a human-written signal.
)

// GetPlainLabel returns a plain text label for a likelihood score.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score int) string {
	return schema.GetPlainLabel(score)
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score int) string {
	text := GetPlainLabel(score)

	switch text {
	case schema.LikelyAILabel:
		return LikelyAIColor.Sprint(text)
	case schema.UncertainLabel:
		return UncertainColor.Sprint(text)
	default:
		return LikelyHumanColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// ConfigureLogging points the diagnostic logger at stderr with the given level.
func ConfigureLogging(level logrus.Level) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: level < logrus.DebugLevel,
		FullTimestamp:    true,
	})
	logrus.SetLevel(level)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for score cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".aieval_cache.db"
	}
	return filepath.Join(homeDir, ".aieval_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for scan history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".aieval_history.db"
	}
	return filepath.Join(homeDir, ".aieval_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// TruncateText shortens free text to maxWidth runes with an ellipsis suffix.
// Newlines are folded so the text fits in a single table cell.
func TruncateText(text string, maxWidth int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
