package config

import "errors"

// Config is the top-level configuration struct for linestat.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Scan   ScanConfig   `mapstructure:"scan"`
	Render RenderConfig `mapstructure:"render"`
}

// ScanConfig holds the knobs of the history scan.
type ScanConfig struct {
	Chunks       int    `mapstructure:"chunks"`
	MinChunkSize int    `mapstructure:"min_chunk_size"`
	Level        int    `mapstructure:"level"`
	Workers      int    `mapstructure:"workers"`
	Output       string `mapstructure:"output"`
}

// RenderConfig holds the chart rendering knobs.
type RenderConfig struct {
	Width   int      `mapstructure:"width"`
	Height  int      `mapstructure:"height"`
	Filter  []string `mapstructure:"filter"`
	Workers int      `mapstructure:"workers"`
	Output  string   `mapstructure:"output"`
}

// maxCompressionLevel is the top of the 0-9 compression scale.
const maxCompressionLevel = 9

// Sentinel errors for configuration validation.
var (
	// ErrInvalidChunks indicates the chunk target is not positive.
	ErrInvalidChunks = errors.New("scan.chunks must be positive")
	// ErrInvalidMinChunkSize indicates the minimum chunk size is not positive.
	ErrInvalidMinChunkSize = errors.New("scan.min_chunk_size must be positive")
	// ErrInvalidLevel indicates the compression level is out of range.
	ErrInvalidLevel = errors.New("scan.level must be between 0 and 9")
	// ErrInvalidWorkers indicates a workers value is negative.
	ErrInvalidWorkers = errors.New("workers must be non-negative (0 = all CPUs)")
	// ErrEmptyOutput indicates an output path is empty.
	ErrEmptyOutput = errors.New("output path must not be empty")
	// ErrInvalidDimensions indicates a chart dimension is not positive.
	ErrInvalidDimensions = errors.New("render.width and render.height must be positive")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	scanErr := c.validateScan()
	if scanErr != nil {
		return scanErr
	}

	return c.validateRender()
}

func (c *Config) validateScan() error {
	if c.Scan.Chunks < 1 {
		return ErrInvalidChunks
	}

	if c.Scan.MinChunkSize < 1 {
		return ErrInvalidMinChunkSize
	}

	if c.Scan.Level < 0 || c.Scan.Level > maxCompressionLevel {
		return ErrInvalidLevel
	}

	if c.Scan.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Scan.Output == "" {
		return ErrEmptyOutput
	}

	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Width < 1 || c.Render.Height < 1 {
		return ErrInvalidDimensions
	}

	if c.Render.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Render.Output == "" {
		return ErrEmptyOutput
	}

	return nil
}
