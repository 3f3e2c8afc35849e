package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iamNilotpal/zstream/pkg/errors"
)

// Duration is a time.Duration that yaml.v3 can decode. yaml.v3 has no
// built-in duration handling, so it accepts either a duration string
// ("250ms", "2s") or an integer nanosecond count.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return perr
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

type Config struct {
	Codec    CodecConfig    `yaml:"codec"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Verbose  bool           `yaml:"verbose"` // Enable verbose logging
}

// Holds codec-specific configuration
type CodecConfig struct {
	Level      int    `yaml:"level"`       // Compression level (-1, 0-9)
	WindowBits int    `yaml:"window_bits"` // Framing and window size selector
	MemLevel   int    `yaml:"mem_level"`   // Internal state memory (1-9)
	Strategy   string `yaml:"strategy"`    // default|filtered|huffman|rle|fixed
}

// Holds file pipeline configuration
type PipelineConfig struct {
	ChunkSize      int      `yaml:"chunk_size"`      // Read granularity in bytes
	ReportInterval Duration `yaml:"report_interval"` // Minimum gap between progress reports
	Force          bool     `yaml:"force"`           // Overwrite existing output files
}

// Returns a Config struct with reasonable default values.
func DefaultConfig() *Config {
	return &Config{
		Verbose: false,
		Codec: CodecConfig{
			Level:      -1,
			WindowBits: 15,
			MemLevel:   8,
			Strategy:   "default",
		},
		Pipeline: PipelineConfig{
			ChunkSize:      64 * 1024, // 64KB
			ReportInterval: Duration(100 * time.Millisecond),
			Force:          false,
		},
	}
}

// Loads configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Read the config file
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Start from defaults so omitted keys keep sensible values
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if err := validateCodecConfig(&config.Codec); err != nil {
		return err
	}

	if err := validatePipelineConfig(&config.Pipeline); err != nil {
		return err
	}

	return nil
}

func validateCodecConfig(config *CodecConfig) error {
	if config.Level < -1 || config.Level > 9 {
		return errors.NewValidationError("codec.level", config.Level,
			fmt.Errorf("level must be between -1 and 9"))
	}

	if !validWindowBits(config.WindowBits) {
		return errors.NewValidationError("codec.window_bits", config.WindowBits,
			fmt.Errorf("window_bits must select raw (-15..-9), zlib (9..15) or gzip (25..31) framing"))
	}

	if config.MemLevel < 1 || config.MemLevel > 9 {
		return errors.NewValidationError("codec.mem_level", config.MemLevel,
			fmt.Errorf("mem_level must be between 1 and 9"))
	}

	switch config.Strategy {
	case "default", "filtered", "huffman", "rle", "fixed":
	default:
		return errors.NewValidationError("codec.strategy", config.Strategy,
			fmt.Errorf("unknown strategy %q", config.Strategy))
	}

	return nil
}

func validatePipelineConfig(config *PipelineConfig) error {
	if config.ChunkSize <= 0 {
		return errors.NewValidationError("pipeline.chunk_size", config.ChunkSize,
			fmt.Errorf("chunk_size must be greater than 0"))
	}

	if config.ReportInterval <= 0 {
		return errors.NewValidationError("pipeline.report_interval", int64(config.ReportInterval),
			fmt.Errorf("report_interval must be greater than 0"))
	}

	return nil
}

func validWindowBits(bits int) bool {
	switch {
	case bits >= -15 && bits <= -9:
		return true
	case bits >= 9 && bits <= 15:
		return true
	case bits >= 25 && bits <= 31:
		return true
	default:
		return false
	}
}
