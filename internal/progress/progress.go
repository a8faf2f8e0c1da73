// Package progress provides terminal feedback while a request is in flight.
package progress

import (
	"time"

	"github.com/schollz/progressbar/v3"
)

// Indicator marks the start and end of a blocking operation.
type Indicator interface {
	Start()
	Stop()
}

// Spinner shows an indeterminate terminal spinner. Suitable only for
// interactive terminals; use Noop elsewhere.
type Spinner struct {
	description string
	bar         *progressbar.ProgressBar
	done        chan struct{}
}

// NewSpinner creates a spinner with the given description.
func NewSpinner(description string) *Spinner {
	return &Spinner{description: description}
}

func (s *Spinner) Start() {
	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(s.description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s.done = make(chan struct{})
	go func(bar *progressbar.ProgressBar, done chan struct{}) {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}(s.bar, s.done)
}

func (s *Spinner) Stop() {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	if s.bar != nil {
		_ = s.bar.Finish()
		_ = s.bar.Clear()
		s.bar = nil
	}
}

// Noop is an Indicator that does nothing. Used for non-interactive output
// and in tests.
type Noop struct{}

func (Noop) Start() {}
func (Noop) Stop()  {}
