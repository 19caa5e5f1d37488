package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/translator"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "samarth.yaml"

// Parser modes.
const (
	ModeRule   = "rule"
	ModeRemote = "remote"
)

// Config holds all configuration for samarth.
// Configuration can come from YAML (samarth.yaml) or environment variables.
// Environment variables override YAML values. The API key is env-only.
type Config struct {
	DataDir string `yaml:"data_dir" env:"SAMARTH_DATA_DIR" env-default:"data"`

	Parser   ParserConfig   `yaml:"parser"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Log      LogConfig      `yaml:"log"`
}

// ParserConfig selects and tunes the question parser.
type ParserConfig struct {
	Mode        string        `yaml:"mode" env:"SAMARTH_PARSER_MODE" env-default:"rule"`
	Provider    string        `yaml:"provider" env:"SAMARTH_PROVIDER" env-default:"openai"`
	Endpoint    string        `yaml:"endpoint" env:"SAMARTH_ENDPOINT" env-default:""`
	Model       string        `yaml:"model" env:"SAMARTH_MODEL" env-default:""`
	Timeout     time.Duration `yaml:"timeout" env:"SAMARTH_PARSER_TIMEOUT" env-default:"5s"`
	Temperature float64       `yaml:"temperature" env:"SAMARTH_TEMPERATURE" env-default:"0.1"`
	APIKey      string        `yaml:"-" env:"SAMARTH_API_KEY,GROQ_API_KEY"` // Secret - not in YAML
}

// AnalysisConfig holds analysis thresholds.
type AnalysisConfig struct {
	LowRainfallMM   float64 `yaml:"low_rainfall_mm" env:"SAMARTH_LOW_RAINFALL_MM" env-default:"800"`
	HighRainfallMM  float64 `yaml:"high_rainfall_mm" env:"SAMARTH_HIGH_RAINFALL_MM" env-default:"1500"`
	CropSampleLimit int     `yaml:"crop_sample_limit" env:"SAMARTH_CROP_SAMPLE_LIMIT" env-default:"10"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level" env:"SAMARTH_LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"SAMARTH_LOG_DEVELOPMENT" env-default:"false"`
}

// Load reads configuration from path with environment variable overrides.
// An empty path means DefaultPath, which may be absent; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, fs.ErrNotExist) && !explicit:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("config file %s: %w", path, statErr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field values and cross-field constraints.
func (c *Config) Validate() error {
	switch c.Parser.Mode {
	case ModeRule, ModeRemote:
	default:
		return fmt.Errorf("parser.mode must be %q or %q, got %q", ModeRule, ModeRemote, c.Parser.Mode)
	}
	switch translator.Provider(c.Parser.Provider) {
	case translator.ProviderOpenAI, translator.ProviderAnthropic, translator.ProviderGemini:
	default:
		return fmt.Errorf("parser.provider %q is not supported", c.Parser.Provider)
	}
	if c.Parser.Timeout <= 0 {
		return fmt.Errorf("parser.timeout must be positive")
	}
	if c.Analysis.LowRainfallMM >= c.Analysis.HighRainfallMM {
		return fmt.Errorf("analysis.low_rainfall_mm (%g) must be below analysis.high_rainfall_mm (%g)",
			c.Analysis.LowRainfallMM, c.Analysis.HighRainfallMM)
	}
	if c.Analysis.CropSampleLimit <= 0 {
		return fmt.Errorf("analysis.crop_sample_limit must be positive")
	}
	return nil
}

// Remote reports whether the remote parser is configured and usable.
func (c *Config) Remote() bool {
	return c.Parser.Mode == ModeRemote && c.Parser.APIKey != ""
}

// TranslatorConfig returns the backend settings for the remote parser.
func (c *Config) TranslatorConfig() translator.Config {
	tc := translator.DefaultConfig(translator.Provider(c.Parser.Provider), c.Parser.APIKey)
	if c.Parser.Model != "" {
		tc.Model = c.Parser.Model
	}
	if c.Parser.Endpoint != "" {
		tc.Endpoint = c.Parser.Endpoint
	}
	tc.Temperature = c.Parser.Temperature
	return tc
}

// EngineOptions returns the analysis settings as engine options.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithRainfallThresholds(c.Analysis.LowRainfallMM, c.Analysis.HighRainfallMM),
		engine.WithCropSampleLimit(c.Analysis.CropSampleLimit),
	}
}
