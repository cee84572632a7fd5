// Package config handles loading and managing application configuration
// from YAML files, an optional .env file and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// QR controls how downloadable images are encoded.
type QR struct {
	Width    int    `yaml:"width"`    // target pixel width of the PNG
	Margin   int    `yaml:"margin"`   // quiet zone, in modules
	Level    string `yaml:"level"`    // low, medium, high or highest
	Filename string `yaml:"filename"` // download file name
}

// Theme holds theme-related settings.
type Theme struct {
	// OSScheme seeds the OS color-scheme signal before any browser has
	// reported one. Either "light" or "dark".
	OSScheme string `yaml:"os_scheme"`
}

// Config holds all application configuration values.
type Config struct {
	Port         int      `yaml:"port"`
	DataDir      string   `yaml:"data_dir"`
	LogLevel     string   `yaml:"log_level"`
	QR           QR       `yaml:"qr"`
	Theme        Theme    `yaml:"theme"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// Duration is a wrapper around time.Duration that supports YAML unmarshalling
// from human-readable strings like "30s", "5m", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Defaults returns a Config populated with sensible default values.
func Defaults() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return &Config{
		Port:     8556,
		DataDir:  filepath.Join(homeDir, ".qrlink"),
		LogLevel: "info",
		QR: QR{
			Width:    600,
			Margin:   3,
			Level:    "medium",
			Filename: "qrcode.png",
		},
		Theme:        Theme{OSScheme: "light"},
		ReadTimeout:  Duration{30 * time.Second},
		WriteTimeout: Duration{60 * time.Second},
		IdleTimeout:  Duration{120 * time.Second},
	}
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. A .env file in the working directory
// is loaded first so that QRLINK_* variables can live there. Environment
// variables override any file or default values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env file: %w", err)
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File does not exist, proceed with defaults.
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies QRLINK_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QRLINK_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("QRLINK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("QRLINK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QRLINK_QR_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QR.Width = n
		}
	}
	if v := os.Getenv("QRLINK_QR_MARGIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QR.Margin = n
		}
	}
	if v := os.Getenv("QRLINK_QR_LEVEL"); v != "" {
		cfg.QR.Level = strings.ToLower(v)
	}
	if v := os.Getenv("QRLINK_OS_SCHEME"); v != "" {
		cfg.Theme.OSScheme = strings.ToLower(v)
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.QR.Width <= 0 {
		return fmt.Errorf("invalid qr width %d", c.QR.Width)
	}
	if c.QR.Margin < 0 {
		return fmt.Errorf("invalid qr margin %d", c.QR.Margin)
	}
	switch c.QR.Level {
	case "low", "medium", "high", "highest":
	default:
		return fmt.Errorf("invalid qr level %q", c.QR.Level)
	}
	switch c.Theme.OSScheme {
	case "light", "dark":
	default:
		return fmt.Errorf("invalid os_scheme %q", c.Theme.OSScheme)
	}
	if c.QR.Filename == "" {
		return fmt.Errorf("qr filename must not be empty")
	}
	return nil
}

// EnsureDataDir creates the DataDir if it does not already exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir %s: %w", c.DataDir, err)
	}
	return nil
}
