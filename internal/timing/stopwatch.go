package timing

import (
	"sync"
	"time"
)

// State is the lifecycle position of a Stopwatch.
type State int

const (
	NotStarted State = iota
	Started
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Started:
		return "started"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stopwatch is the two-phase signal handed to an adapter for one measured
// operation. The adapter calls Start when the request begins and Finish when
// it completes. Illegal transitions move the stopwatch to Failed with a
// UsageError; the first failure wins.
//
// Stopwatch is safe for concurrent use, so adapters may signal from
// callbacks running on other goroutines.
type Stopwatch struct {
	mu      sync.Mutex
	now     func() time.Time
	state   State
	started time.Time
	elapsed time.Duration
	err     error
}

// NewStopwatch creates a stopwatch reading time from now (time.Now if nil).
func NewStopwatch(now func() time.Time) *Stopwatch {
	if now == nil {
		now = time.Now
	}
	return &Stopwatch{now: now}
}

// Start marks the beginning of the measured operation.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case NotStarted:
		s.state = Started
		s.started = s.now()
	case Started, Finished:
		s.fail(&UsageError{Message: "start callback was called more than once"})
	}
}

// Finish marks the end of the measured operation.
func (s *Stopwatch) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case NotStarted:
		s.fail(&UsageError{Message: "start callback was never called"})
	case Started:
		s.state = Finished
		s.elapsed = s.now().Sub(s.started)
	case Finished:
		s.fail(&UsageError{Message: "finish callback was called more than once"})
	}
}

// State returns the current state.
func (s *Stopwatch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// settle closes the stopwatch once the adapter returned. A non-nil adapter
// error rejects the measurement.
func (s *Stopwatch) settle(adapterErr error) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if adapterErr != nil {
		s.fail(adapterErr)
	}

	switch s.state {
	case NotStarted:
		s.fail(&UsageError{Message: "start callback was never called"})
	case Started:
		s.fail(&UsageError{Message: "finish callback was never called"})
	}

	if s.state == Failed {
		return 0, s.err
	}
	return s.elapsed, nil
}

// fail must be called with mu held.
func (s *Stopwatch) fail(err error) {
	if s.state == Failed {
		return
	}
	s.state = Failed
	s.err = err
}
