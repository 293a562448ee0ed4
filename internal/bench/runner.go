package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner runs one iteration of a test and returns what it printed on stdout
type Runner interface {
	Run(ctx context.Context, test string, argv []string) ([]byte, error)
}

// ExecRunner runs every iteration in its own process. Canceling the context
// kills the process.
type ExecRunner struct {
	// Timeout bounds a single iteration. 0 means no limit.
	Timeout time.Duration
	// Dir is the working directory of the process
	Dir string
}

// Run implements Runner
func (r ExecRunner) Run(ctx context.Context, test string, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, &SubprocessError{Test: test, ExitCode: -1, Err: fmt.Errorf("empty command")}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, &SubprocessError{
			Test:     test,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	return stdout.Bytes(), nil
}
