package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides feedback while a model call is in flight. Model calls
// have no measurable progress, so the terminal form is a spinner.
type Reporter interface {
	Start(message string)
	Stop()
}

// NewReporter returns a TerminalReporter for interactive use, or a
// CIReporter when the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{out: os.Stderr}
	}
	return &TerminalReporter{out: os.Stderr}
}

// TerminalReporter displays an indeterminate spinner in the terminal.
// The bar library only draws on state changes, so a ticker goroutine
// advances it until Stop.
type TerminalReporter struct {
	out  io.Writer
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

func (r *TerminalReporter) Start(message string) {
	r.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionClearOnFinish(),
	)
	_ = r.bar.RenderBlank()

	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go func(bar *progressbar.ProgressBar, stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}(r.bar, r.stop, r.done)
}

func (r *TerminalReporter) Stop() {
	if r.bar == nil {
		return
	}
	close(r.stop)
	<-r.done
	_ = r.bar.Finish()
	r.bar = nil
}

// CIReporter prints line-by-line status suitable for CI logs.
type CIReporter struct {
	out io.Writer
}

func (r *CIReporter) Start(message string) {
	fmt.Fprintln(r.out, message)
}

func (r *CIReporter) Stop() {}
