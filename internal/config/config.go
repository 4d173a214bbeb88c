// Package config loads cmd/vulpityc's YAML-configurable defaulting and
// diagnostic-verbosity options, grounded on the teacher's
// internal/eval_harness yaml.v3-based spec loader.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the conventional config file name looked up in the
// current directory when no explicit --config flag is given.
const DefaultPath = ".vulpityc.yaml"

// Config is cmd/vulpityc's on-disk configuration. Nothing here affects
// the checker's semantics (spec.md 5 purity). Of its fields only Color
// is read (through UseColor, by the check and repl commands); the
// others are loaded but no code reads them.
type Config struct {
	// Verbosity names a diagnostic detail level: "quiet", "normal", or
	// "verbose". The renderer does not read it.
	Verbosity string `yaml:"verbosity"`
	// Color enables ANSI color output; defaults to true.
	Color *bool `yaml:"color"`
	// MaxDiagnostics is a cap on rendered diagnostics per run, 0 meaning
	// unlimited. The renderer does not apply it.
	MaxDiagnostics int `yaml:"max_diagnostics"`
	// ShowWitness selects whether NonExhaustive diagnostics show the
	// witness pattern. The renderer does not read it.
	ShowWitness bool `yaml:"show_witness"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	color := true
	return &Config{Verbosity: "normal", Color: &color, ShowWitness: true}
}

// Load reads and parses a YAML config file. A missing file is not an
// error — callers get Default() instead, matching the teacher's
// optional-manifest convention.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// UseColor reports whether colorized output should be used.
func (c *Config) UseColor() bool {
	return c.Color == nil || *c.Color
}
