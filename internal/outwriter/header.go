package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/aieval/internal/contract"
)

// stderr receives headers, progress and file notices so stdout only carries reports.
var stderr io.Writer = os.Stderr

var headerColor = color.New(color.Bold)

// LogScanHeader prints the folder being scanned and any active exclusions.
func LogScanHeader(cfg *contract.Config) {
	_, _ = fmt.Fprintf(stderr, "🔎 Scanning for code files in: %s\n", headerColor.Sprint(cfg.ScanRoot))
	if len(cfg.ExcludeExtensions) > 0 {
		_, _ = fmt.Fprintf(stderr, "🚫 Excluding file types: %s\n", strings.Join(cfg.ExcludeExtensions, ", "))
	}
	if len(cfg.ExcludeFolders) > 0 {
		_, _ = fmt.Fprintf(stderr, "🚫 Excluding folders: %s\n", strings.Join(cfg.ExcludeFolders, ", "))
	}
}

// LogNoFiles reports an empty selection.
func LogNoFiles() {
	_, _ = fmt.Fprintln(stderr, "No code files found!")
}

// LogFileCount reports how many files are about to be evaluated.
func LogFileCount(n int) {
	_, _ = fmt.Fprintf(stderr, "📄 Found %d code files to evaluate (including subfolders)...\n", n)
}

// LogDownload reports where pull request files were written.
func LogDownload(dir string, files []string) {
	_, _ = fmt.Fprintf(stderr, "📥 Downloaded %d changed files to: %s\n", len(files), headerColor.Sprint(dir))
	for _, f := range files {
		_, _ = fmt.Fprintf(stderr, "  %s\n", f)
	}
}
