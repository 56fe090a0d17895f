// Package spinner draws a small progress animation on a terminal.
package spinner

import (
	"io"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// DefaultInterval is the delay between two frames
const DefaultInterval = 250 * time.Millisecond

var frames = []string{"-", "/", "|", `\`}

// Spinner writes an animation on a stream until stopped. It only draws when
// the stream is a terminal, unless forced. Disabled always wins over forced.
type Spinner struct {
	out      io.Writer
	disabled bool
	forced   bool
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// Option configures a Spinner
type Option func(*Spinner)

// WithDisabled turns the spinner off
func WithDisabled(disabled bool) Option {
	return func(s *Spinner) {
		s.disabled = disabled
	}
}

// WithForced draws even when the stream is not a terminal
func WithForced(forced bool) Option {
	return func(s *Spinner) {
		s.forced = forced
	}
}

// WithInterval changes the delay between frames
func WithInterval(d time.Duration) Option {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates a spinner writing on out
func New(out io.Writer, opts ...Option) *Spinner {
	s := &Spinner{
		out:      out,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether Start will draw anything
func (s *Spinner) Enabled() bool {
	if s.disabled {
		return false
	}
	return s.forced || isTerminal(s.out)
}

// Start begins drawing in the background. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	if !s.Enabled() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.spin(s.stop, s.done)
}

// Stop erases the animation and waits for the drawing goroutine to exit.
// It is safe to call several times, or without Start.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Run draws while fn executes
func (s *Spinner) Run(fn func() error) error {
	s.Start()
	defer s.Stop()
	return fn()
}

func (s *Spinner) spin(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// At least one frame is always drawn
	for i := 0; ; i++ {
		_, _ = io.WriteString(s.out, frames[i%len(frames)])

		stopped := false
		select {
		case <-stop:
			stopped = true
		case <-ticker.C:
		}

		_, _ = io.WriteString(s.out, "\b")
		if stopped {
			break
		}
	}

	_, _ = io.WriteString(s.out, " \b")
}

// isTerminal reports whether w is a file descriptor attached to a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
