// Package config holds the benchmark configuration and loads it from YAML,
// JSON or TOML files.
//
// Example YAML:
//
//	url: "https://api.github.com/users/homer0/repos"
//	iterations: 5
//	testsDir: ./tests
//	modes:
//	  - key: json
//	    label: JSON
//	  - key: raw
//	    label: Text
//	colors: [red, green, yellow]
//	timeout: 30s
package config

import (
	"time"
)

const (
	// DefaultURL is the target used when none is configured
	DefaultURL = "https://api.github.com/users/homer0/repos"
	// DefaultIterations is the number of runs per test
	DefaultIterations = 1
	// DefaultMaxColumns is the width of a bar at 100%
	DefaultMaxColumns = 100
)

// Metadata sources
const (
	SourceAuto = "auto"
	SourceGo   = "go"
	SourceNPM  = "npm"
)

// Config is the benchmark configuration. It is set once before a run and
// never modified afterwards.
type Config struct {
	// URL is the target every adapter requests
	URL string `json:"url" yaml:"url" toml:"url"`

	// TestsDir is scanned for script tests (optional)
	TestsDir string `json:"testsDir,omitempty" yaml:"testsDir,omitempty" toml:"testsDir"`

	// Adapters restricts the built-in adapters that are registered. Empty
	// registers all of them.
	Adapters []string `json:"adapters,omitempty" yaml:"adapters,omitempty" toml:"adapters"`

	// Iterations is the number of isolated runs per test
	Iterations int `json:"iterations" yaml:"iterations" toml:"iterations"`

	// MaxColumns is the bar width of the slowest result
	MaxColumns int `json:"maxColumns" yaml:"maxColumns" toml:"maxColumns"`

	// Modes are charted in this order; modes missing here are never shown
	Modes []Mode `json:"modes" yaml:"modes" toml:"modes"`

	// Colors is the palette result lines cycle through
	Colors []string `json:"colors" yaml:"colors" toml:"colors"`

	// Runtimes maps a script extension to the program that runs it
	Runtimes map[string]string `json:"runtimes,omitempty" yaml:"runtimes,omitempty" toml:"runtimes"`

	// Concurrency caps the subprocesses in flight. 0 means unbounded.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency"`

	// Timeout bounds a single iteration. 0 means no limit.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout"`

	// Format is the result format: text, json or yaml
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format"`

	// Metadata configures the package lookup
	Metadata Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata"`
}

// Mode is a measured operation and the title of its chart section
type Mode struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Label string `json:"label" yaml:"label" toml:"label"`
}

// Metadata configures where package names and versions come from
type Metadata struct {
	// Source is auto, go or npm
	Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source"`

	// GoMod is the go.mod to read. Empty uses the binary's build info.
	GoMod string `json:"goMod,omitempty" yaml:"goMod,omitempty" toml:"goMod"`

	// PackageJSON is the manifest declaring the script test dependencies
	PackageJSON string `json:"packageJson,omitempty" yaml:"packageJson,omitempty" toml:"packageJson"`

	// NodeModules is the directory installed dependencies live in
	NodeModules string `json:"nodeModules,omitempty" yaml:"nodeModules,omitempty" toml:"nodeModules"`
}

// DefaultModes returns the default chart sections
func DefaultModes() []Mode {
	return []Mode{
		{Key: "json", Label: "JSON"},
		{Key: "raw", Label: "Text"},
	}
}

// DefaultRuntimes returns the default script runtimes
func DefaultRuntimes() map[string]string {
	return map[string]string{
		".js":  "node",
		".mjs": "node",
		".py":  "python3",
		".sh":  "sh",
	}
}

// Duration is a time.Duration that can be unmarshaled from strings such as
// "30s" or "1m30s".
type Duration time.Duration

// GetDuration returns the duration or a default if empty.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. JSON, YAML and TOML
// strings all go through it.
func (d *Duration) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}
