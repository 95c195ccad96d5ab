package docmerge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.False(t, config.EscapeOutput)
	assert.Equal(t, "info", config.LogLevel)
	assert.Empty(t, config.TempDir)
	assert.Equal(t, 96, config.ImageDPI)
	assert.True(t, config.MacroRepair)
	assert.NoError(t, config.Validate())
}

func TestConfigFromEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, config *Config)
	}{
		{
			name:    "escape output",
			envVars: map[string]string{"DOCMERGE_ESCAPE_OUTPUT": "true"},
			check: func(t *testing.T, config *Config) {
				assert.True(t, config.EscapeOutput)
			},
		},
		{
			name:    "log level is normalized",
			envVars: map[string]string{"DOCMERGE_LOG_LEVEL": " DEBUG "},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "debug", config.LogLevel)
			},
		},
		{
			name:    "image dpi",
			envVars: map[string]string{"DOCMERGE_IMAGE_DPI": "300"},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, 300, config.ImageDPI)
			},
		},
		{
			name: "multiple environment variables",
			envVars: map[string]string{
				"DOCMERGE_MACRO_REPAIR": "false",
				"DOCMERGE_LOG_LEVEL":    "error",
				"DOCMERGE_LOG_FILE":     "/var/log/docmerge.log",
			},
			check: func(t *testing.T, config *Config) {
				assert.False(t, config.MacroRepair)
				assert.Equal(t, "error", config.LogLevel)
				assert.Equal(t, "/var/log/docmerge.log", config.LogFile)
			},
		},
		{
			name:    "invalid image dpi falls back to defaults",
			envVars: map[string]string{"DOCMERGE_IMAGE_DPI": "not-a-number"},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, DefaultConfig(), config)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}
			tt.check(t, ConfigFromEnvironment())
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "docmerge.yaml")
	require.NoError(t, os.WriteFile(file, []byte("escape_output: true\nimage_dpi: 72\nlog_level: warn\n"), 0o600))

	config, err := LoadConfig(file)
	require.NoError(t, err)
	assert.True(t, config.EscapeOutput)
	assert.Equal(t, 72, config.ImageDPI)
	assert.Equal(t, "warn", config.LogLevel)
	assert.True(t, config.MacroRepair, "unset keys keep their defaults")

	t.Setenv("DOCMERGE_IMAGE_DPI", "150")
	config, err = LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 150, config.ImageDPI, "environment wins over the file")

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"every log level", func(c *Config) { c.LogLevel = "off" }, false},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"zero dpi", func(c *Config) { c.ImageDPI = 0 }, true},
		{"existing temp dir", func(c *Config) { c.TempDir = t.TempDir() }, false},
		{"missing temp dir", func(c *Config) { c.TempDir = filepath.Join(t.TempDir(), "nope") }, true},
		{"temp dir is a file", func(c *Config) { c.TempDir = file }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGlobalConfig(t *testing.T) {
	original := GetGlobalConfig()
	t.Cleanup(func() { SetGlobalConfig(original) })

	config := DefaultConfig()
	config.EscapeOutput = true
	SetGlobalConfig(config)

	got := GetGlobalConfig()
	assert.True(t, got.EscapeOutput)
	got.EscapeOutput = false
	assert.True(t, GetGlobalConfig().EscapeOutput, "GetGlobalConfig returns a copy")

	tmpl := openTemplate(t, packageFiles(para("${v}")))
	require.NoError(t, tmpl.SetValue("v", "a&b"))
	assert.Contains(t, mainPart(t, tmpl), "a&amp;b")
}
