package outwriter

import (
	"os"

	"github.com/huangsam/aieval/internal/contract"
	"golang.org/x/term"
)

// Fixed space taken by the Rank, Score, Label and Type columns plus table borders.
const fixedColumnsWidth = 50

// getTerminalWidth returns the --width override, the detected terminal width, or 80.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getColumnWidths splits the space left after fixed columns between path and reason.
// The path gets at most half of it and never less than 15 characters.
func getColumnWidths(cfg *contract.Config) (pathWidth, reasonWidth int) {
	available := getTerminalWidth(cfg) - fixedColumnsWidth

	pathWidth = min(max(available/2, 15), 60)
	reasonWidth = min(max(available-pathWidth, 20), 100)
	return pathWidth, reasonWidth
}
