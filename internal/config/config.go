// Package config assembles the application configuration from
// defaults, YAML files, environment variables and command-line flags,
// in that precedence order.
package config

import (
	"fmt"
	"strings"

	"github.com/receiptworks/voucherscan/internal/batch"
	"github.com/receiptworks/voucherscan/internal/engine"
	"github.com/receiptworks/voucherscan/internal/parser"
	"github.com/receiptworks/voucherscan/internal/pipeline"
	"github.com/receiptworks/voucherscan/internal/preprocess"
	"github.com/receiptworks/voucherscan/internal/textfix"
	"github.com/receiptworks/voucherscan/internal/validate"
)

// Config is the complete configuration for the voucherscan CLI.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Per-stage pipeline settings
	Preprocess preprocess.Config      `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	Engine     engine.TesseractConfig `mapstructure:"engine" yaml:"engine" json:"engine"`
	Textfix    textfix.Config         `mapstructure:"textfix" yaml:"textfix" json:"textfix"`
	Parser     parser.Config          `mapstructure:"parser" yaml:"parser" json:"parser"`
	Validate   validate.Config        `mapstructure:"validate" yaml:"validate" json:"validate"`

	// Batch processing
	Batch batch.Config `mapstructure:"batch" yaml:"batch" json:"batch"`

	// Output rendering
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// OutputConfig controls how results are rendered on stdout.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" json:"pretty"`
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Verbose:    false,
		Preprocess: preprocess.DefaultConfig(),
		Engine:     engine.DefaultTesseractConfig(),
		Textfix:    textfix.DefaultConfig(),
		Parser:     parser.DefaultConfig(),
		Validate:   validate.DefaultConfig(),
		Batch:      batch.DefaultConfig(),
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
	}
}

// Validate checks the configuration for values that would fail only
// deep inside the pipeline.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"json", "yaml", "text"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Preprocess.Strategy != "" {
		if _, err := preprocess.ParseStrategy(string(c.Preprocess.Strategy)); err != nil {
			return err
		}
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}

	if c.Parser.FuzzyThreshold < 0 || c.Parser.FuzzyThreshold > 1 {
		return fmt.Errorf("parser fuzzy threshold must be in [0,1], got %g", c.Parser.FuzzyThreshold)
	}

	return nil
}

// ToPipelineConfig maps the per-stage sections onto a pipeline
// configuration.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Preprocess: c.Preprocess,
		Textfix:    c.Textfix,
		Parser:     c.Parser,
		Validate:   c.Validate,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
