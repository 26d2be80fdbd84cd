package spinner

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Spinner displays animated progress indicators.
// Update may be called from any goroutine.
type Spinner struct {
	writer  io.Writer
	enabled bool
	frames  []string

	mu      sync.Mutex
	message string
	done    chan struct{}
	stopped chan struct{}
	active  bool
}

// New creates a spinner on stderr, drawn only when stderr is a terminal
func New(message string) *Spinner {
	return NewWithWriter(os.Stderr, message, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewWithWriter creates a spinner drawing to w when enabled is true
func NewWithWriter(w io.Writer, message string, enabled bool) *Spinner {
	return &Spinner{
		writer:  w,
		enabled: enabled,
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.active {
		return
	}

	s.active = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.loop(s.done, s.stopped)
}

func (s *Spinner) loop(done, stopped chan struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.writer, "\r%s %s", s.frames[frame], s.message)
			s.mu.Unlock()
			frame = (frame + 1) % len(s.frames)
		}
	}
}

// Update changes the spinner message
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if !s.active {
		return
	}
	// Clear and redraw immediately
	fmt.Fprintf(s.writer, "\r\033[K%s %s", s.frames[0], s.message)
}

// Message returns the current message
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Stop halts the spinner and clears the line
func (s *Spinner) Stop() {
	s.StopWithMessage("")
}

// StopWithMessage stops the spinner and displays a final message
func (s *Spinner) StopWithMessage(message string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		if s.enabled && message != "" {
			fmt.Fprintln(s.writer, message)
		}
		return
	}
	s.active = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped

	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" {
		fmt.Fprint(s.writer, "\r\033[K")
		return
	}
	fmt.Fprintf(s.writer, "\r\033[K%s\n", message)
}
