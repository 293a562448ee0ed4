package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty url", func(c *Config) { c.URL = "" }, "url"},
		{"relative url", func(c *Config) { c.URL = "/repos" }, "url"},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }, "iterations"},
		{"negative columns", func(c *Config) { c.MaxColumns = -1 }, "maxColumns"},
		{"negative concurrency", func(c *Config) { c.Concurrency = -2 }, "concurrency"},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, "timeout"},
		{"no modes", func(c *Config) { c.Modes = nil }, "modes"},
		{"reserved mode", func(c *Config) { c.Modes = []Mode{{Key: "test", Label: "Test"}} }, "modes[0].key"},
		{"duplicate mode", func(c *Config) { c.Modes = append(c.Modes, Mode{Key: "raw", Label: "Again"}) }, "modes[2].key"},
		{"missing label", func(c *Config) { c.Modes = []Mode{{Key: "raw"}} }, "modes[0].label"},
		{"no colors", func(c *Config) { c.Colors = nil }, "colors"},
		{"unknown color", func(c *Config) { c.Colors = []string{"red", "plaid"} }, "colors[1]"},
		{"bad runtime", func(c *Config) { c.Runtimes = map[string]string{"js": "node"} }, "runtimes.js"},
		{"bad format", func(c *Config) { c.Format = "junit" }, "format"},
		{"bad source", func(c *Config) { c.Metadata.Source = "pypi" }, "metadata.source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Defaults()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)

			var errs *ValidationErrors
			require.True(t, errors.As(err, &errs))

			var fields []string
			for _, e := range errs.Errors {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	config := Defaults()
	config.Iterations = 0
	config.MaxColumns = 0

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 validation errors:")
	assert.Contains(t, err.Error(), "iterations")
	assert.Contains(t, err.Error(), "maxColumns")
}

func TestValidationErrors(t *testing.T) {
	errs := &ValidationErrors{}
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no validation errors", errs.Error())

	errs.Add("url", "url is required")
	assert.True(t, errs.HasErrors())
	assert.Equal(t, "validation error on field 'url': url is required", errs.Error())

	assert.Equal(t, "validation error: boom", (&ValidationError{Message: "boom"}).Error())
}
