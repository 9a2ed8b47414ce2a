// The cli package formats the results of critical mass searches for the
// terminal: the fixed three-line report, an optional details block, JSON
// documents and the progress spinner shown while a sweep is running.
package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
//
// Parameters:
//   - d: The duration to format.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// ProgressRefreshRate defines the refresh frequency of the spinner.
const ProgressRefreshRate = 200 * time.Millisecond

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This decouples SweepProgress from a specific spinner implementation, which
// keeps it testable.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	//
	// Parameters:
	//   - suffix: The text string to display.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner. The
// spinner redraws from its own goroutine, so the suffix is swapped under the
// spinner's lock.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// SweepProgress shows a spinner with a "done/total" counter while the
// searches of a sweep run. Its methods are safe for concurrent use.
type SweepProgress struct {
	mu      sync.Mutex
	s       Spinner
	done    int
	total   int
	stopped bool
}

// StartSweepProgress starts a spinner on out for a sweep of total searches.
func StartSweepProgress(out io.Writer, total int) *SweepProgress {
	p := &SweepProgress{
		s:     newSpinner(spinner.WithWriter(out)),
		total: total,
	}
	p.s.UpdateSuffix(p.suffix())
	p.s.Start()
	return p
}

func (p *SweepProgress) suffix() string {
	return fmt.Sprintf(" Searching critical masses: %d/%d", p.done, p.total)
}

// Advance records one finished search.
func (p *SweepProgress) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.done++
	p.s.UpdateSuffix(p.suffix())
}

// Stop halts the spinner. Calling Stop more than once is harmless.
func (p *SweepProgress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.s.Stop()
}
