package bench

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/hsm/internal/config"
	"github.com/wesleyorama2/hsm/internal/metrics"
	"github.com/wesleyorama2/hsm/internal/pkginfo"
	"github.com/wesleyorama2/hsm/internal/registry"
)

type fakeSource map[string]pkginfo.Info

func (s fakeSource) Lookup(name string) (pkginfo.Info, error) {
	info, ok := s[name]
	if !ok {
		return pkginfo.Info{}, &pkginfo.UnknownDependencyError{Name: name, Manifest: "package.json"}
	}
	return info, nil
}

var packages = fakeSource{
	"axios": {Name: "axios", Version: "0.21.1", Repository: "https://github.com/axios/axios"},
	"got":   {Name: "got", Version: "11.8.2", Repository: "https://github.com/sindresorhus/got"},
}

// fakeRunner answers every iteration of a test with the same output or error
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	// block makes the tests wait until the run is canceled
	block map[string]bool
	delay time.Duration

	mu       sync.Mutex
	calls    map[string]int
	argv     map[string][]string
	inFlight int32
	peak     int32
}

func (r *fakeRunner) Run(ctx context.Context, test string, argv []string) ([]byte, error) {
	r.mu.Lock()
	if r.calls == nil {
		r.calls = make(map[string]int)
		r.argv = make(map[string][]string)
	}
	r.calls[test]++
	r.argv[test] = argv
	r.mu.Unlock()

	n := atomic.AddInt32(&r.inFlight, 1)
	defer atomic.AddInt32(&r.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&r.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&r.peak, peak, n) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	if r.block[test] {
		<-ctx.Done()
		return nil, &SubprocessError{Test: test, ExitCode: -1, Err: ctx.Err()}
	}
	if err := r.errs[test]; err != nil {
		return nil, err
	}
	return []byte(r.outputs[test]), nil
}

func (r *fakeRunner) callsFor(test string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[test]
}

type countingIndicator struct {
	started int32
	stopped int32
}

func (i *countingIndicator) Start() { atomic.AddInt32(&i.started, 1) }
func (i *countingIndicator) Stop()  { atomic.AddInt32(&i.stopped, 1) }

func newRegistry(t *testing.T, names ...string) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, name := range names {
		require.NoError(t, reg.Register(registry.Definition{
			Name:    name,
			Path:    name + ".js",
			Command: []string{"node", name + ".js"},
		}))
	}
	return reg
}

func newTester(t *testing.T, cfg *config.Config, reg *registry.Registry, options ...Option) *Tester {
	t.Helper()
	options = append([]Option{
		WithSource(packages),
		WithIndicator(NoIndicator),
		WithNoColor(true),
	}, options...)
	tester, err := New(cfg, reg, options...)
	require.NoError(t, err)
	return tester
}

func defaultOutputs() map[string]string {
	return map[string]string{
		"axios": `{"test":"axios","raw":80,"json":100}`,
		"got":   `{"test":"got","raw":300,"json":400}`,
	}
}

func TestNew_Defaults(t *testing.T) {
	tester, err := New(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultURL, tester.Config().URL)
	assert.Equal(t, 1, tester.Config().Iterations)
	assert.False(t, tester.Mocked())
	assert.NotEmpty(t, tester.RunID())
	assert.Empty(t, tester.Results())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Iterations = -1

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterations")
}

func TestNew_Mock(t *testing.T) {
	runner := &fakeRunner{}
	tester := newTester(t, nil, newRegistry(t, "axios", "got"),
		WithMock(filepath.Join("testdata", "mock.json")),
		WithRunner(runner),
	)
	assert.True(t, tester.Mocked())
	assert.Equal(t, 2, tester.Results().Len("axios"))

	same, err := tester.Run(context.Background(), registry.All())
	require.NoError(t, err)
	assert.Same(t, tester, same)
	assert.Empty(t, runner.calls)
}

func TestNew_MockErrors(t *testing.T) {
	_, err := New(nil, nil, WithMock(filepath.Join(t.TempDir(), "missing.json")))
	require.Error(t, err)

	var mockErr *MockLoadError
	assert.True(t, errors.As(err, &mockErr))
}

func TestTester_Run(t *testing.T) {
	cfg := config.Defaults()
	cfg.Iterations = 3
	cfg.URL = "http://localhost:8080/repos"
	runner := &fakeRunner{outputs: defaultOutputs()}
	indicator := &countingIndicator{}

	tester := newTester(t, cfg, newRegistry(t, "axios", "got"),
		WithRunner(runner),
		WithIndicator(func() Indicator { return indicator }),
	)
	initialRunID := tester.RunID()

	result, err := tester.Run(context.Background(), registry.All())
	require.NoError(t, err)
	assert.Same(t, tester, result)

	for _, name := range []string{"axios", "got"} {
		assert.Equal(t, 3, tester.Results().Len(name), name)
		assert.Equal(t, 3, runner.callsFor(name), name)
	}
	assert.Equal(t, []string{"node", "got.js", "--url=http://localhost:8080/repos"}, runner.argv["got"])
	assert.Equal(t, map[string]float64{"raw": 300, "json": 400}, tester.Results()["got"][0].Timings)
	assert.NotEqual(t, initialRunID, tester.RunID())
	assert.EqualValues(t, 1, indicator.started)
	assert.EqualValues(t, 1, indicator.stopped)
}

func TestTester_RunSelectors(t *testing.T) {
	tests := []struct {
		name     string
		selector registry.Selector
		expected []string
	}{
		{"all", registry.All(), []string{"axios", "got", "request"}},
		{"exact", registry.Exact("got"), []string{"got"}},
		{"empty name", registry.Exact(""), []string{"axios", "got", "request"}},
		{"pattern", registry.Match(regexp.MustCompile(`^(axios|request)$`)), []string{"axios", "request"}},
		{"no match", registry.Exact("superagent"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs := defaultOutputs()
			outputs["request"] = `{"test":"request","raw":90,"json":95}`
			tester := newTester(t, nil, newRegistry(t, "axios", "got", "request"),
				WithRunner(&fakeRunner{outputs: outputs}),
			)

			_, err := tester.Run(context.Background(), tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tester.Results().Names())
		})
	}
}

func TestTester_RunFailure(t *testing.T) {
	cfg := config.Defaults()
	cfg.Iterations = 2
	runner := &fakeRunner{
		outputs: defaultOutputs(),
		errs: map[string]error{
			"got": &SubprocessError{Test: "got", ExitCode: 1, Stderr: "[HsmTest] got: ECONNREFUSED"},
		},
		block: map[string]bool{"axios": true},
	}
	indicator := &countingIndicator{}
	tester := newTester(t, cfg, newRegistry(t, "axios", "got"),
		WithRunner(runner),
		WithIndicator(func() Indicator { return indicator }),
	)
	runID := tester.RunID()

	result, err := tester.Run(context.Background(), registry.All())
	require.Error(t, err)
	assert.Nil(t, result)

	var subErr *SubprocessError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "got", subErr.Test)
	assert.Equal(t, "[HsmTest] got: ECONNREFUSED", err.Error())

	assert.Empty(t, tester.Results())
	assert.Equal(t, runID, tester.RunID())
	assert.EqualValues(t, 1, indicator.started)
	assert.EqualValues(t, 1, indicator.stopped)
}

func TestTester_RunInvalidOutput(t *testing.T) {
	outputs := defaultOutputs()
	outputs["got"] = "Error: socket hang up"
	tester := newTester(t, nil, newRegistry(t, "axios", "got"),
		WithRunner(&fakeRunner{outputs: outputs}),
	)

	_, err := tester.Run(context.Background(), registry.All())
	require.Error(t, err)

	var subErr *SubprocessError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "got", subErr.Test)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestTester_RunConcurrencyLimit(t *testing.T) {
	cfg := config.Defaults()
	cfg.Iterations = 4
	cfg.Concurrency = 2
	runner := &fakeRunner{outputs: defaultOutputs(), delay: 20 * time.Millisecond}
	tester := newTester(t, cfg, newRegistry(t, "axios", "got"), WithRunner(runner))

	_, err := tester.Run(context.Background(), registry.All())
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&runner.peak), int32(2))
	assert.Equal(t, 4, tester.Results().Len("axios"))
}

func TestTester_RunCanceled(t *testing.T) {
	runner := &fakeRunner{block: map[string]bool{"axios": true}}
	tester := newTester(t, nil, newRegistry(t, "axios"), WithRunner(runner))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := tester.Run(ctx, registry.All())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestTester_RunSubprocesses(t *testing.T) {
	t.Setenv(helperEnv, "1")

	reg := registry.New()
	require.NoError(t, reg.Register(registry.Definition{Name: "got", Command: helperArgv("ok")}))

	cfg := config.Defaults()
	cfg.Iterations = 2
	tester := newTester(t, cfg, reg)

	_, err := tester.Run(context.Background(), registry.All())
	require.NoError(t, err)
	require.Equal(t, 2, tester.Results().Len("got"))

	entries, err := tester.Aggregate()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1347), entries[0].Modes["json"].Average)
	assert.Equal(t, int64(1386), entries[0].Modes["raw"].Average)
}

func TestTester_RunSubprocessFailure(t *testing.T) {
	t.Setenv(helperEnv, "1")

	reg := registry.New()
	require.NoError(t, reg.Register(registry.Definition{Name: "got", Command: helperArgv("fail")}))
	tester := newTester(t, nil, reg)

	_, err := tester.Run(context.Background(), registry.All())
	require.Error(t, err)
	assert.Equal(t, "[HsmTest] got: connect ECONNREFUSED", err.Error())
}

func TestTester_RecordMetrics(t *testing.T) {
	recorder := metrics.NewRecorder()
	tester := newTester(t, nil, newRegistry(t, "axios", "got"),
		WithMock(filepath.Join("testdata", "mock.json")),
		WithMetrics(recorder),
	)
	require.NoError(t, tester.RecordMetrics())

	families, err := recorder.Gatherer().Gather()
	require.NoError(t, err)

	samples := make(map[string]int)
	for _, family := range families {
		samples[family.GetName()] = len(family.GetMetric())
	}
	assert.Equal(t, 4, samples["hsm_average_milliseconds"])
	assert.Equal(t, 1, samples["hsm_maximum_milliseconds"])
	assert.Equal(t, 2, samples["hsm_iterations_total"])
}

func TestTester_Save(t *testing.T) {
	tester := newTester(t, nil, newRegistry(t, "axios", "got"),
		WithRunner(&fakeRunner{outputs: defaultOutputs()}),
	)
	_, err := tester.Run(context.Background(), registry.All())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, tester.Save(path))

	mocked := newTester(t, nil, nil, WithMock(path))
	assert.Equal(t, tester.Results(), mocked.Results())

	missing := filepath.Join(t.TempDir(), "missing", "results.json")
	err = tester.Save(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("failed to save results to %s", missing))
}
