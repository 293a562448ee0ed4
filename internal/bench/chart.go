package bench

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wesleyorama2/hsm/internal/output"
	"github.com/wesleyorama2/hsm/internal/pkginfo"
)

const (
	tab     = "    "
	barChar = "█"
)

// ModeResult is the average of one mode of a test
type ModeResult struct {
	// Average is the floored mean, in milliseconds
	Average int64
	// Width is the bar length, relative to the slowest iteration
	Width int
	// Duration is Average for humans
	Duration string
}

// Entry holds the averages of one test
type Entry struct {
	Test       string
	Package    pkginfo.Info
	Iterations int
	Modes      map[string]ModeResult
}

// Aggregate computes the average of every mode of every test, sorted by test
// name. The store is not modified.
func (t *Tester) Aggregate() ([]Entry, error) {
	entries, _, err := t.aggregate()
	return entries, err
}

func (t *Tester) aggregate() ([]Entry, float64, error) {
	names := t.store.Names()

	// the slowest single iteration, not the slowest average, is 100%
	var maximum float64
	for _, name := range names {
		for _, it := range t.store[name] {
			for _, ms := range it.Timings {
				if ms > maximum {
					maximum = ms
				}
			}
		}
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		iterations := t.store[name]

		totals := make(map[string]float64)
		for _, it := range iterations {
			for mode, ms := range it.Timings {
				totals[mode] += ms
			}
		}

		modes := make(map[string]ModeResult, len(totals))
		for mode, total := range totals {
			average := int64(math.Floor(total / float64(len(iterations))))
			modes[mode] = ModeResult{
				Average:  average,
				Width:    barWidth(average, maximum, t.config.MaxColumns),
				Duration: output.FormatMillis(average),
			}
		}

		info, err := t.lookup(name, iterations)
		if err != nil {
			return nil, 0, err
		}

		entries = append(entries, Entry{
			Test:       name,
			Package:    info,
			Iterations: len(iterations),
			Modes:      modes,
		})
	}

	return entries, maximum, nil
}

// lookup resolves the package of a test by the name it reported for itself
func (t *Tester) lookup(name string, iterations []Iteration) (pkginfo.Info, error) {
	dependency := name
	if len(iterations) > 0 && iterations[0].Test != "" {
		dependency = iterations[0].Test
	}
	if t.source == nil {
		return pkginfo.Info{}, &pkginfo.UnknownDependencyError{Name: dependency}
	}
	return t.source.Lookup(dependency)
}

// barWidth is maxColumns scaled by the floored percentage of value over
// maximum
func barWidth(value int64, maximum float64, maxColumns int) int {
	if maximum <= 0 || value <= 0 {
		return 0
	}
	percentage := int(math.Floor(float64(value) * 100 / maximum))
	return maxColumns * percentage / 100
}

// ShowResults writes the results chart to w. Calling it again on the same
// results writes the same chart.
func (t *Tester) ShowResults(w io.Writer) error {
	entries, err := t.Aggregate()
	if err != nil {
		return err
	}

	scheme := output.Scheme(t.noColor)
	colors, err := output.NewColorCycle(t.config.Colors, t.noColor)
	if err != nil {
		return err
	}

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteString("\n")
	}

	line("")
	line(scheme.Title.Sprint("HTTP Speed Meter - Average Results"))
	line("")
	line(scheme.Muted.Sprint(tab + "Target URL: " + t.config.URL))
	line(scheme.Muted.Sprintf("%sIterations: %d", tab, t.config.Iterations))
	line("")

	labels := make([]string, len(entries))
	startBarsAt := 0
	for i, entry := range entries {
		labels[i] = tab + entry.Package.Label() + "  "
		if width := output.VisibleWidth(labels[i]); width > startBarsAt {
			startBarsAt = width
		}
	}

	for _, mode := range t.config.Modes {
		line(tab + scheme.Title.Sprint("Test: "+mode.Label))
		line("")

		for i, entry := range entries {
			_, c := colors.Next()
			row := output.PadRight(labels[i], startBarsAt)
			if result, ok := entry.Modes[mode.Key]; ok {
				row += strings.Repeat(barChar, result.Width) + " " + result.Duration
			} else {
				row += " -"
			}
			line(c.Sprint(row))
		}
		line("")
		line("")
	}

	_, err = io.WriteString(w, sb.String())
	return err
}

// Report builds the machine readable version of the chart
func (t *Tester) Report() (output.Report, error) {
	entries, err := t.Aggregate()
	if err != nil {
		return output.Report{}, err
	}

	report := output.Report{
		RunID:      t.runID,
		URL:        t.config.URL,
		Iterations: t.config.Iterations,
		Results:    make([]output.ReportEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		re := output.ReportEntry{
			Test:       entry.Test,
			Package:    entry.Package.Name,
			Version:    entry.Package.Version,
			Repository: entry.Package.Repository,
			Modes:      make(map[string]output.ReportMode),
		}
		for _, mode := range t.config.Modes {
			if result, ok := entry.Modes[mode.Key]; ok {
				re.Modes[mode.Key] = output.ReportMode{
					Label:     mode.Label,
					AverageMs: result.Average,
					Duration:  result.Duration,
				}
			}
		}
		report.Results = append(report.Results, re)
	}
	return report, nil
}

// WriteResults writes the results in format: the chart for text, a report
// otherwise
func (t *Tester) WriteResults(w io.Writer, format output.OutputFormat) error {
	if format == output.FormatText {
		return t.ShowResults(w)
	}

	report, err := t.Report()
	if err != nil {
		return err
	}
	if err := output.WriteReport(w, format, report); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// PackageRows lists the package behind each test
func (t *Tester) PackageRows() ([]output.PackageRow, error) {
	entries, err := t.Aggregate()
	if err != nil {
		return nil, err
	}

	rows := make([]output.PackageRow, len(entries))
	for i, entry := range entries {
		rows[i] = output.PackageRow{
			Test:       entry.Test,
			Name:       entry.Package.Name,
			Version:    entry.Package.Version,
			Repository: entry.Package.Repository,
		}
	}
	return rows, nil
}
