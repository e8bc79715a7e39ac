// Package report shows effect failures to the user.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"fxapply/internal/logging"
)

// Console implements domain.ErrorReporter on a terminal.
// This is a secondary adapter.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

// NewConsole creates a reporter writing to out. Titles are highlighted when
// out is a terminal.
func NewConsole(out io.Writer) *Console {
	colorize := false
	if f, ok := out.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Console{out: out, colorize: colorize}
}

func (c *Console) ShowError(title, message string) {
	logging.For("report").Debug("effect error shown", "title", title, "message", message)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.colorize {
		fmt.Fprintf(c.out, "\x1b[31m%s\x1b[0m: %s\n", title, message)
		return
	}
	fmt.Fprintf(c.out, "%s: %s\n", title, message)
}

// Report is one shown error.
type Report struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Recorder implements domain.ErrorReporter by keeping errors for a caller
// that shows them later, such as an HTTP response.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) ShowError(title, message string) {
	logging.For("report").Debug("effect error recorded", "title", title)
	r.mu.Lock()
	r.reports = append(r.reports, Report{Title: title, Message: message})
	r.mu.Unlock()
}

// Drain returns and clears the recorded errors.
func (r *Recorder) Drain() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.reports
	r.reports = nil
	return out
}
