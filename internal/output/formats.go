package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the available result formats
type OutputFormat string

const (
	// FormatText is the default bar chart
	FormatText OutputFormat = "text"
	// FormatJSON outputs the averages as JSON
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs the averages as YAML
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name. An empty name is FormatText.
func ParseFormat(name string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(name)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", name)
	}
}

// Report is the machine readable version of the chart
type Report struct {
	RunID      string        `json:"runId,omitempty" yaml:"runId,omitempty"`
	URL        string        `json:"url" yaml:"url"`
	Iterations int           `json:"iterations" yaml:"iterations"`
	Results    []ReportEntry `json:"results" yaml:"results"`
}

// ReportEntry holds the averages of one test
type ReportEntry struct {
	Test       string                `json:"test" yaml:"test"`
	Package    string                `json:"package" yaml:"package"`
	Version    string                `json:"version" yaml:"version"`
	Repository string                `json:"repository,omitempty" yaml:"repository,omitempty"`
	Modes      map[string]ReportMode `json:"modes" yaml:"modes"`
}

// ReportMode is the average of one mode
type ReportMode struct {
	Label     string `json:"label" yaml:"label"`
	AverageMs int64  `json:"averageMs" yaml:"averageMs"`
	Duration  string `json:"duration" yaml:"duration"`
}

// WriteReport encodes report in format. The text format is the chart and is
// not handled here.
func WriteReport(w io.Writer, format OutputFormat, report Report) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		return nil

	case FormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = io.WriteString(w, "---\n"+string(data))
		return err

	default:
		return fmt.Errorf("format %q is not a report format", format)
	}
}
