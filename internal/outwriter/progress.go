package outwriter

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// progressBarWidth is the number of cells in the terminal progress bar.
const progressBarWidth = 30

// Progress reports a 0..total counter on stderr.
// On a terminal it redraws a single bar line; otherwise it prints one line per update.
type Progress struct {
	mu    sync.Mutex
	total int
	done  int
	bar   bool
}

// NewProgress creates a Progress for total items and prints the initial state.
func NewProgress(total int) *Progress {
	p := &Progress{total: total, bar: isTerminal(stderr)}
	p.render()
	return p
}

// Update records that done items have completed.
func (p *Progress) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if done < p.done || done > p.total {
		return
	}
	p.done = done
	p.renderLocked()
}

// Done terminates the progress line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar {
		_, _ = fmt.Fprintln(stderr)
	}
}

func (p *Progress) render() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderLocked()
}

func (p *Progress) renderLocked() {
	if !p.bar {
		_, _ = fmt.Fprintf(stderr, "Evaluating files: %d/%d\n", p.done, p.total)
		return
	}
	filled := 0
	if p.total > 0 {
		filled = p.done * progressBarWidth / p.total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	_, _ = fmt.Fprintf(stderr, "\rEvaluating files [%s] %d/%d", bar, p.done, p.total)
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
