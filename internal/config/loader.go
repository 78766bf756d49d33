package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files
	// (without extension).
	ConfigFileName = "voucherscan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "VOUCHERSCAN"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra
// flag bindings resolve through the same source chain.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load reads configuration from the search paths and the
// environment, applies defaults, and validates the result. A missing
// config file is fine; defaults and env vars carry the day.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshal()
}

// LoadWithFile loads configuration from a specific file path. Unlike
// Load, the named file must exist.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/voucherscan")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "voucherscan"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "voucherscan"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("preprocess.strategy", string(defaults.Preprocess.Strategy))
	l.v.SetDefault("preprocess.binarize.block_size", defaults.Preprocess.Binarize.BlockSize)
	l.v.SetDefault("preprocess.binarize.c", defaults.Preprocess.Binarize.C)
	l.v.SetDefault("preprocess.binarize.sauvola_window", defaults.Preprocess.Binarize.SauvolaWindow)
	l.v.SetDefault("preprocess.binarize.sauvola_k", defaults.Preprocess.Binarize.SauvolaK)
	l.v.SetDefault("preprocess.binarize.sauvola_r", defaults.Preprocess.Binarize.SauvolaR)

	l.v.SetDefault("engine.languages", defaults.Engine.Languages)
	l.v.SetDefault("engine.tessdata_prefix", defaults.Engine.TessdataPrefix)

	l.v.SetDefault("textfix.amount_keywords", defaults.Textfix.AmountKeywords)

	l.v.SetDefault("parser.fuzzy_threshold", defaults.Parser.FuzzyThreshold)

	l.v.SetDefault("validate.item_sum_tolerance", defaults.Validate.ItemSumTolerance)
	l.v.SetDefault("validate.net_tolerance", defaults.Validate.NetTolerance)

	l.v.SetDefault("batch.workers", defaults.Batch.Workers)
	l.v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.pretty", defaults.Output.Pretty)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}
