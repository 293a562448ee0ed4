// Package timing implements the timed test contract every benchmark probe
// runs under: adapters signal start and finish of two measured operations
// and the harness turns that into one JSON line of millisecond timings.
package timing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the payload a probe prints on success.
type Result struct {
	Test string `json:"test"`
	Raw  int64  `json:"raw"`
	JSON int64  `json:"json"`
}

// Harness times both operations of an adapter.
type Harness struct {
	adapter Adapter
	target  Target
	now     func() time.Time
}

// Option configures a Harness.
type Option func(*Harness)

// WithClock replaces time.Now as the stopwatch time source.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) {
		h.now = now
	}
}

// NewHarness creates a harness for adapter against url.
func NewHarness(adapter Adapter, url string, options ...Option) (*Harness, error) {
	if url == "" {
		return nil, &ConfigurationError{Message: "no URL was specified"}
	}

	h := &Harness{
		adapter: adapter,
		target: Target{
			URL:       url,
			UserAgent: UserAgent(adapter),
		},
		now: time.Now,
	}

	for _, option := range options {
		option(h)
	}

	return h, nil
}

// Target returns the target handed to the adapter.
func (h *Harness) Target() Target {
	return h.target
}

// Measure runs Test and TestJSON concurrently and returns their timings.
// The first failure cancels the other measurement.
func (h *Harness) Measure(ctx context.Context) (*Result, error) {
	var raw, parsed time.Duration

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		raw, err = h.measure(gctx, h.adapter.Test)
		return
	})
	g.Go(func() (err error) {
		parsed, err = h.measure(gctx, h.adapter.TestJSON)
		return
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Test: h.adapter.Name(),
		Raw:  raw.Milliseconds(),
		JSON: parsed.Milliseconds(),
	}, nil
}

func (h *Harness) measure(ctx context.Context, op func(context.Context, Target, *Stopwatch) error) (time.Duration, error) {
	sw := NewStopwatch(h.now)
	elapsed, err := sw.settle(op(ctx, h.target, sw))
	if err != nil {
		return 0, &AdapterError{Test: h.adapter.Name(), Err: err}
	}
	return elapsed, nil
}

// Run measures the adapter and reports the outcome the way the orchestrator
// expects from a probe process: one JSON line on stdout and exit code 0, or
// an error line on stderr and exit code 1.
func (h *Harness) Run(ctx context.Context, stdout, stderr io.Writer) int {
	result, err := h.Measure(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", err)
		return 1
	}

	if err := json.NewEncoder(stdout).Encode(result); err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to encode result: %s\n", err)
		return 1
	}
	return 0
}
