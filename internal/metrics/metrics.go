// Package metrics exports benchmark results in the Prometheus text format so
// node_exporter's textfile collector can pick them up.
package metrics

import (
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "hsm"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

// Recorder collects the metrics of one process on a private registry
type Recorder struct {
	registry *prometheus.Registry

	averages    *prometheus.GaugeVec
	maximum     *prometheus.GaugeVec
	iterations  *prometheus.CounterVec
	runDuration *prometheus.GaugeVec
	runs        *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
}

// NewRecorder creates a Recorder with every metric registered
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		averages: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "average_milliseconds",
			Help:      "Average request time of a test per mode",
		}, []string{
			"run_id",
			"test",
			"package",
			"version",
			"mode",
		}),
		maximum: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "maximum_milliseconds",
			Help:      "Slowest single iteration of the run, the 100% reference of the chart",
		}, []string{
			"run_id",
		}),
		iterations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "iterations_total",
			Help:      "Number of iterations aggregated per test",
		}, []string{
			"run_id",
			"test",
		}),
		runDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the run",
		}, []string{
			"run_id",
			"result",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "runs_total",
			Help:      "Count of runs by result",
		}, []string{
			"result",
		}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "errors_total",
			Help:      "Count of errors",
		}, []string{
			"error",
		}),
	}
}

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	for strings.Contains(errClean, "__") {
		errClean = strings.ReplaceAll(errClean, "__", "_")
	}
	return strings.Trim(errClean, "_")
}

// RecordAverage sets the average of one test mode
func (r *Recorder) RecordAverage(runID, test, pkg, version, mode string, averageMs int64) {
	r.averages.WithLabelValues(runID, test, pkg, version, mode).Set(float64(averageMs))
}

// RecordMaximum sets the chart's reference value
func (r *Recorder) RecordMaximum(runID string, maxMs float64) {
	r.maximum.WithLabelValues(runID).Set(maxMs)
}

// RecordIterations adds the number of iterations aggregated for test
func (r *Recorder) RecordIterations(runID, test string, n int) {
	r.iterations.WithLabelValues(runID, test).Add(float64(n))
}

// RecordRun records the outcome of a run
func (r *Recorder) RecordRun(runID string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
		r.errorsTotal.WithLabelValues(errToLabel(err)).Inc()
	}
	r.runs.WithLabelValues(result).Inc()
	r.runDuration.WithLabelValues(runID, result).Set(duration.Seconds())
}

// Gatherer exposes the registry
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every metric to path, atomically
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
