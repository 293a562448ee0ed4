package bench

import (
	"fmt"
)

// SubprocessError is returned when an iteration exits with a non-zero code
// or prints something that is not a timing payload.
type SubprocessError struct {
	Test     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *SubprocessError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s: exit status %d", e.Test, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Test, e.Err)
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}

// MockLoadError is returned by New when the mock file cannot be used
type MockLoadError struct {
	Path string
	Err  error
}

func (e *MockLoadError) Error() string {
	return fmt.Sprintf("failed to load mock results from %s: %v", e.Path, e.Err)
}

func (e *MockLoadError) Unwrap() error {
	return e.Err
}
