package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	clearLine  = "\r\033[2K"
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
)

// SpinnerFrames are the frames of the default animation
var SpinnerFrames = []string{"|", "/", "-", "\\"}

// SpinnerConfig contains configuration for Spinner.
type SpinnerConfig struct {
	// Text is printed with the current frame in place of %s
	Text     string
	Writer   io.Writer
	Interval time.Duration
	NoColor  bool
	ForceTTY bool
}

// Spinner animates a one line progress message. It only draws on a
// terminal; everywhere else Start and Stop do nothing. Stop can be called
// any number of times.
type Spinner struct {
	text     string
	writer   io.Writer
	interval time.Duration
	isTTY    bool
	dim      *color.Color

	mu       sync.Mutex
	started  bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSpinner creates a new spinner.
func NewSpinner(config SpinnerConfig) *Spinner {
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	if config.Interval == 0 {
		config.Interval = 100 * time.Millisecond
	}
	if config.Text == "" {
		config.Text = "%s"
	}

	dim := color.New(color.Faint)
	if config.NoColor {
		dim.DisableColor()
	}

	return &Spinner{
		text:     config.Text,
		writer:   config.Writer,
		interval: config.Interval,
		isTTY:    config.ForceTTY || IsTerminal(config.Writer),
		dim:      dim,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// IsTerminal checks if the writer is a terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Start begins the animation. Only the first call has an effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	if !s.isTTY {
		close(s.done)
		return
	}

	fmt.Fprint(s.writer, hideCursor)
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		msg := fmt.Sprintf(s.text, SpinnerFrames[frame%len(SpinnerFrames)])
		fmt.Fprint(s.writer, clearLine+s.dim.Sprint(msg))

		select {
		case <-s.stop:
			fmt.Fprint(s.writer, clearLine+showCursor)
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the animation and clears its line.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()

		close(s.stop)
		if started {
			<-s.done
		}
	})
}
