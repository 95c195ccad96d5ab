package docmerge

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config contains all configuration options for the merge engine
type Config struct {
	// EscapeOutput XML-escapes replacement text passed to SetValue.
	// When false, replacement text is inserted verbatim.
	EscapeOutput bool `mapstructure:"escape_output"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `mapstructure:"log_level"`
	// LogFile, when set, sends logs to a rotating file instead of stderr.
	LogFile string `mapstructure:"log_file"`
	// TempDir holds session copies of opened templates. Empty means os.TempDir().
	TempDir string `mapstructure:"temp_dir"`
	// ImageDPI converts image pixel sizes to drawing extents.
	ImageDPI int `mapstructure:"image_dpi"`
	// MacroRepair strips markup fragmenting placeholders when parts are loaded.
	MacroRepair bool `mapstructure:"macro_repair"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		cfg, err := LoadConfig("")
		if err != nil {
			cfg = DefaultConfig()
		}
		globalConfig = cfg
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		EscapeOutput: false,
		LogLevel:     "info",
		TempDir:      "",
		ImageDPI:     96,
		MacroRepair:  true,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("escape_output", defaults.EscapeOutput)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("temp_dir", defaults.TempDir)
	v.SetDefault("image_dpi", defaults.ImageDPI)
	v.SetDefault("macro_repair", defaults.MacroRepair)

	// DOCMERGE_ESCAPE_OUTPUT, DOCMERGE_LOG_LEVEL, ...
	v.SetEnvPrefix("DOCMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig builds a configuration from defaults, DOCMERGE_* environment
// variables and, when file is not empty, a YAML/TOML/JSON config file.
// Environment variables take precedence over the file.
func LoadConfig(file string) (*Config, error) {
	v := newViper()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file failed: %w", err)
		}
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("decode config failed: %w", err)
	}
	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	return config, nil
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config, err := LoadConfig("")
	if err != nil {
		return DefaultConfig()
	}
	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.ImageDPI <= 0 {
		return errors.New("image DPI must be positive")
	}

	if c.TempDir != "" {
		info, err := os.Stat(c.TempDir)
		if err != nil {
			return fmt.Errorf("temp dir: %w", err)
		}
		if !info.IsDir() {
			return errors.New("temp dir is not a directory: " + c.TempDir)
		}
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	UpdateLoggerFromConfig()
}
