package batch

// Config holds batch processing settings.
type Config struct {
	// Workers bounds concurrent per-image pipelines so the OCR
	// engine's CPU and memory appetite stays in check.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
	// ContinueOnError keeps the batch running past per-file
	// failures. When false the first failure cancels scheduling of
	// the remaining files.
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns the production batch defaults.
func DefaultConfig() Config {
	return Config{Workers: 5, ContinueOnError: true}
}
