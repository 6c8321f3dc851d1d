package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Feedback source names.
const (
	FeedbackBackend = "backend"
	FeedbackLLM     = "llm"
)

// Config is the application configuration. Values are layered: defaults,
// then the YAML file, then FEELIO_* environment variables. Command-line flags
// are applied on top by the caller. A zero APITimeout leaves backend calls
// bounded only by the transport.
type Config struct {
	APIBase        string        `yaml:"api_base" env:"FEELIO_API_BASE"`
	APITimeout     time.Duration `yaml:"api_timeout" env:"FEELIO_API_TIMEOUT"`
	DBPath         string        `yaml:"db_path" env:"FEELIO_DB"`
	Locale         string        `yaml:"locale" env:"FEELIO_LOCALE"`
	FeedbackSource string        `yaml:"feedback_source" env:"FEELIO_FEEDBACK_SOURCE"`

	Log       LogConfig       `yaml:"log"`
	Speech    SpeechConfig    `yaml:"speech"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type LogConfig struct {
	Mode string `yaml:"mode" env:"FEELIO_LOG_MODE"`
	File string `yaml:"file" env:"FEELIO_LOG_FILE"`
}

// SpeechConfig controls dictation. Audio is captured by an external recorder
// command that writes raw 16-bit mono PCM to stdout.
type SpeechConfig struct {
	Enabled         bool     `yaml:"enabled" env:"FEELIO_SPEECH_ENABLED"`
	Language        string   `yaml:"language" env:"FEELIO_SPEECH_LANGUAGE"`
	SampleRate      int      `yaml:"sample_rate" env:"FEELIO_SPEECH_SAMPLE_RATE"`
	RecordCommand   []string `yaml:"record_command" env:"FEELIO_SPEECH_RECORD_COMMAND" envSeparator:" "`
	CredentialsFile string   `yaml:"credentials_file" env:"FEELIO_SPEECH_CREDENTIALS_FILE"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" env:"OTEL_ENABLED"`
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLER_RATIO"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIBase:        "http://localhost:5000",
		Locale:         "id-ID",
		FeedbackSource: FeedbackBackend,
		Log: LogConfig{
			Mode: "dev",
		},
		Speech: SpeechConfig{
			Language:      "id-ID",
			SampleRate:    16000,
			RecordCommand: []string{"arecord", "-q", "-f", "S16_LE", "-c", "1", "-r", "16000", "-t", "raw"},
		},
		Telemetry: TelemetryConfig{
			SampleRatio: 1,
			ServiceName: "feelio",
		},
	}
}

// DefaultPath resolves the config file location:
// $XDG_CONFIG_HOME/feelio/config.yaml, else ~/.config/feelio/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "feelio", "config.yaml"), nil
}

// Load reads configuration from path (DefaultPath when empty). A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the fields that would otherwise fail late.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBase)
	if err != nil {
		return fmt.Errorf("api_base %q: %w", c.APIBase, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base %q must be an absolute http(s) URL", c.APIBase)
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("api_timeout must not be negative")
	}
	switch c.FeedbackSource {
	case FeedbackBackend, FeedbackLLM:
	default:
		return fmt.Errorf("feedback_source %q must be %q or %q", c.FeedbackSource, FeedbackBackend, FeedbackLLM)
	}
	if c.Speech.Enabled && len(c.Speech.RecordCommand) == 0 {
		return fmt.Errorf("speech.record_command is required when speech is enabled")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be within [0, 1]")
	}
	return nil
}
