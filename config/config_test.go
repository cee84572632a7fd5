package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8556, cfg.Port)
	assert.Equal(t, 600, cfg.QR.Width)
	assert.Equal(t, 3, cfg.QR.Margin)
	assert.Equal(t, "medium", cfg.QR.Level)
	assert.Equal(t, "qrcode.png", cfg.QR.Filename)
	assert.Equal(t, "light", cfg.Theme.OSScheme)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout.Duration)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
port: 9000
log_level: debug
qr:
  width: 300
  level: high
theme:
  os_scheme: dark
write_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 300, cfg.QR.Width)
	assert.Equal(t, 3, cfg.QR.Margin, "unset keys keep their default")
	assert.Equal(t, "high", cfg.QR.Level)
	assert.Equal(t, "dark", cfg.Theme.OSScheme)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout.Duration)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QRLINK_PORT", "7000")
	t.Setenv("QRLINK_QR_MARGIN", "0")
	t.Setenv("QRLINK_QR_LEVEL", "LOW")
	t.Setenv("QRLINK_OS_SCHEME", "Dark")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 0, cfg.QR.Margin)
	assert.Equal(t, "low", cfg.QR.Level)
	assert.Equal(t, "dark", cfg.Theme.OSScheme)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("read_timeout: soon\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"width", func(c *Config) { c.QR.Width = -1 }},
		{"margin", func(c *Config) { c.QR.Margin = -2 }},
		{"level", func(c *Config) { c.QR.Level = "extreme" }},
		{"os scheme", func(c *Config) { c.Theme.OSScheme = "system" }},
		{"filename", func(c *Config) { c.QR.Filename = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Defaults().Validate())
}

func TestEnsureDataDir(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, cfg.EnsureDataDir())
	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
