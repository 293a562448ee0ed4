package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wesleyorama2/hsm/internal/output"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate validates the configuration. Defaults are expected to be applied.
//
// Returns nil if valid, or a ValidationErrors containing all validation errors.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.URL == "" {
		errs.Add("url", "url is required")
	} else if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs.Add("url", fmt.Sprintf("invalid URL %q", c.URL))
	}

	if c.Iterations < 1 {
		errs.Add("iterations", "must be at least 1")
	}
	if c.MaxColumns < 1 {
		errs.Add("maxColumns", "must be at least 1")
	}
	if c.Concurrency < 0 {
		errs.Add("concurrency", "cannot be negative")
	}
	if c.Timeout < 0 {
		errs.Add("timeout", "cannot be negative")
	}

	validateModes(c.Modes, errs)

	if len(c.Colors) == 0 {
		errs.Add("colors", "at least one color is required")
	}
	for i, name := range c.Colors {
		if !output.IsColor(name) {
			errs.Add(fmt.Sprintf("colors[%d]", i), fmt.Sprintf("unknown color %q", name))
		}
	}

	for ext := range c.Runtimes {
		if !strings.HasPrefix(ext, ".") {
			errs.Add(fmt.Sprintf("runtimes.%s", ext), "extension must start with a dot")
		}
	}

	if _, err := output.ParseFormat(c.Format); err != nil {
		errs.Add("format", err.Error())
	}

	switch c.Metadata.Source {
	case SourceAuto, SourceGo, SourceNPM:
	default:
		errs.Add("metadata.source", fmt.Sprintf("invalid source '%s', must be one of: %s, %s, %s",
			c.Metadata.Source, SourceAuto, SourceGo, SourceNPM))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateModes(modes []Mode, errs *ValidationErrors) {
	if len(modes) == 0 {
		errs.Add("modes", "at least one mode is required")
		return
	}

	seen := make(map[string]bool, len(modes))
	for i, m := range modes {
		prefix := fmt.Sprintf("modes[%d]", i)
		if m.Key == "" {
			errs.Add(prefix+".key", "key is required")
			continue
		}
		if m.Key == "test" {
			errs.Add(prefix+".key", "'test' is reserved for the test name")
		}
		if seen[m.Key] {
			errs.Add(prefix+".key", fmt.Sprintf("duplicate mode '%s'", m.Key))
		}
		seen[m.Key] = true
		if m.Label == "" {
			errs.Add(prefix+".label", "label is required")
		}
	}
}
