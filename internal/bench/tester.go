// Package bench runs the registered tests in isolated processes, collects
// their timings and renders the averages as a bar chart.
package bench

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/wesleyorama2/hsm/internal/config"
	"github.com/wesleyorama2/hsm/internal/metrics"
	"github.com/wesleyorama2/hsm/internal/output"
	"github.com/wesleyorama2/hsm/internal/pkginfo"
	"github.com/wesleyorama2/hsm/internal/registry"
)

// Indicator shows that a run is in progress
type Indicator interface {
	Start()
	Stop()
}

// IndicatorFactory creates the indicator of one run
type IndicatorFactory func() Indicator

type nopIndicator struct{}

func (nopIndicator) Start() {}
func (nopIndicator) Stop()  {}

// NoIndicator disables the progress indicator
func NoIndicator() Indicator {
	return nopIndicator{}
}

// Tester runs tests and shows their results
type Tester struct {
	config       *config.Config
	registry     *registry.Registry
	runner       Runner
	newIndicator IndicatorFactory
	source       pkginfo.Source
	recorder     *metrics.Recorder
	log          *log.Entry
	noColor      bool

	mockPath string
	mocked   bool
	runID    string
	store    Store
}

// Option configures a Tester
type Option func(*Tester)

// WithMock loads the results from a file instead of running the tests
func WithMock(path string) Option {
	return func(t *Tester) {
		t.mockPath = path
	}
}

// WithRunner sets how iterations are executed
func WithRunner(runner Runner) Option {
	return func(t *Tester) {
		t.runner = runner
	}
}

// WithIndicator sets the progress indicator of each run
func WithIndicator(factory IndicatorFactory) Option {
	return func(t *Tester) {
		t.newIndicator = factory
	}
}

// WithSource sets where package metadata comes from
func WithSource(source pkginfo.Source) Option {
	return func(t *Tester) {
		t.source = source
	}
}

// WithMetrics records runs and averages on recorder
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(t *Tester) {
		t.recorder = recorder
	}
}

// WithLogger sets the logger
func WithLogger(entry *log.Entry) Option {
	return func(t *Tester) {
		t.log = entry
	}
}

// WithNoColor disables colors in the chart and the indicator
func WithNoColor(noColor bool) Option {
	return func(t *Tester) {
		t.noColor = noColor
	}
}

// New creates a Tester for the tests in reg. A mock file is loaded right
// away and any problem with it is returned as a *MockLoadError.
func New(cfg *config.Config, reg *registry.Registry, options ...Option) (*Tester, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = registry.New()
	}

	t := &Tester{
		config:   cfg,
		registry: reg,
		runID:    uuid.NewString(),
		store:    make(Store),
	}
	for _, option := range options {
		option(t)
	}

	if t.log == nil {
		t.log = log.NewEntry(log.StandardLogger())
	}
	if t.runner == nil {
		t.runner = ExecRunner{Timeout: cfg.Timeout.GetDuration(0)}
	}
	if t.newIndicator == nil {
		noColor := t.noColor
		t.newIndicator = func() Indicator {
			return output.NewSpinner(output.SpinnerConfig{
				Text:    "Making the requests %s",
				Writer:  os.Stderr,
				NoColor: noColor,
			})
		}
	}
	if t.source == nil {
		if source, err := pkginfo.NewBuildInfoSource(); err == nil {
			t.source = source
		}
	}

	if t.mockPath != "" {
		store, err := LoadMock(t.mockPath)
		if err != nil {
			return nil, err
		}
		t.store = store
		t.mocked = true
		t.log.WithField("mock", t.mockPath).Debugf("loaded %d mocked tests", len(store))
	}

	return t, nil
}

// Config returns the configuration
func (t *Tester) Config() *config.Config {
	return t.config
}

// RunID identifies the results currently held
func (t *Tester) RunID() string {
	return t.runID
}

// Mocked reports whether the results come from a mock file
func (t *Tester) Mocked() bool {
	return t.mocked
}

// Results returns the results store. It must not be modified.
func (t *Tester) Results() Store {
	return t.store
}

// Run runs every iteration of the selected tests, each one in its own
// process, all of them concurrently. The first failure cancels the others
// and is returned; the results of a failed run are discarded. Mocked testers
// return right away.
func (t *Tester) Run(ctx context.Context, sel registry.Selector) (*Tester, error) {
	if t.mocked {
		t.log.Debug("results are mocked, nothing to run")
		return t, nil
	}

	names := t.registry.Select(sel)
	runID := uuid.NewString()
	logger := t.log.WithFields(log.Fields{
		"run_id":   runID,
		"selector": sel.String(),
	})
	if len(names) == 0 {
		logger.Warn("no tests matched the selector")
	}
	logger.Infof("running %d tests, %d iterations each", len(names), t.config.Iterations)

	indicator := t.newIndicator()
	indicator.Start()
	started := time.Now()
	store, err := t.runAll(ctx, names, logger)
	indicator.Stop()

	elapsed := time.Since(started)
	if t.recorder != nil {
		t.recorder.RecordRun(runID, elapsed, err)
	}
	if err != nil {
		logger.WithError(err).Debug("run failed")
		return nil, err
	}

	logger.Infof("run finished in %s", output.FormatDuration(elapsed))
	t.store = store
	t.runID = runID
	return t, nil
}

type outcome struct {
	test      string
	iteration Iteration
}

func (t *Tester) runAll(ctx context.Context, names []string, logger *log.Entry) (Store, error) {
	errPool := pool.NewWithResults[outcome]().
		WithErrors().
		WithFirstError()
	if t.config.Concurrency > 0 {
		errPool = errPool.WithMaxGoroutines(t.config.Concurrency)
	}
	p := errPool.WithContext(ctx).WithCancelOnError()

	for _, name := range names {
		def, ok := t.registry.Lookup(name)
		if !ok {
			continue
		}
		argv := def.Argv(t.config.URL)
		for i := 0; i < t.config.Iterations; i++ {
			name, i := name, i // per-iteration copies (go < 1.22 loop semantics)
			p.Go(func(ctx context.Context) (outcome, error) {
				return t.runIteration(ctx, name, i, argv, logger)
			})
		}
	}

	outcomes, err := p.Wait()
	if err != nil {
		return nil, err
	}

	store := make(Store, len(names))
	for _, o := range outcomes {
		store[o.test] = append(store[o.test], o.iteration)
	}
	return store, nil
}

func (t *Tester) runIteration(ctx context.Context, name string, i int, argv []string, logger *log.Entry) (outcome, error) {
	logger = logger.WithFields(log.Fields{"test": name, "iteration": i})
	logger.Debugf("spawning %v", argv)

	out, err := t.runner.Run(ctx, name, argv)
	if err != nil {
		return outcome{}, err
	}

	it, err := ParseIteration(out)
	if err != nil {
		return outcome{}, &SubprocessError{Test: name, Err: err}
	}

	logger.Debugf("timings %v", it.Timings)
	return outcome{test: name, iteration: it}, nil
}

// RecordMetrics records the averages of the current results on the metrics
// recorder, if there is one.
func (t *Tester) RecordMetrics() error {
	if t.recorder == nil {
		return nil
	}

	entries, maximum, err := t.aggregate()
	if err != nil {
		return err
	}

	t.recorder.RecordMaximum(t.runID, maximum)
	for _, entry := range entries {
		t.recorder.RecordIterations(t.runID, entry.Test, entry.Iterations)
		for _, mode := range t.config.Modes {
			if result, ok := entry.Modes[mode.Key]; ok {
				t.recorder.RecordAverage(t.runID, entry.Test, entry.Package.Name, entry.Package.Version, mode.Key, result.Average)
			}
		}
	}
	return nil
}

// Save writes the current results in the mock file format
func (t *Tester) Save(path string) error {
	if err := t.store.Save(path); err != nil {
		return fmt.Errorf("failed to save results to %s: %w", path, err)
	}
	t.log.WithField("path", path).Info("results saved")
	return nil
}
