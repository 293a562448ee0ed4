package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/hsm/internal/output"
)

// LoadConfig loads a configuration file. The format follows the extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses configuration data and applies the defaults. path is
// only used for its extension: .json, .toml, or YAML for anything else.
func ParseConfig(data []byte, path string) (*Config, error) {
	var config Config

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
	}

	ApplyDefaults(&config)
	return &config, nil
}

// Defaults returns a configuration with every default applied
func Defaults() *Config {
	config := &Config{}
	ApplyDefaults(config)
	return config
}

// ApplyDefaults fills in the zero values of config
func ApplyDefaults(config *Config) {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Iterations == 0 {
		config.Iterations = DefaultIterations
	}
	if config.MaxColumns == 0 {
		config.MaxColumns = DefaultMaxColumns
	}
	if len(config.Modes) == 0 {
		config.Modes = DefaultModes()
	}
	if len(config.Colors) == 0 {
		config.Colors = append([]string(nil), output.DefaultPalette...)
	}
	if config.Runtimes == nil {
		config.Runtimes = DefaultRuntimes()
	}
	if config.Format == "" {
		config.Format = "text"
	}

	applyMetadataDefaults(&config.Metadata)
}

func applyMetadataDefaults(md *Metadata) {
	if md.Source == "" {
		md.Source = SourceAuto
	}
	if md.PackageJSON == "" {
		md.PackageJSON = "package.json"
	}
	if md.NodeModules == "" {
		md.NodeModules = filepath.Join(filepath.Dir(md.PackageJSON), "node_modules")
	}
}
