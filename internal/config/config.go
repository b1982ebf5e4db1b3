// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Compositor overrides IPC backend detection ("niri", "sway",
	// "hyprland"); empty means detect from the environment.
	Compositor string `mapstructure:"compositor"`

	Clipboard ClipboardConfig `mapstructure:"clipboard"`
	Capture   CaptureConfig   `mapstructure:"capture"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ClipboardConfig contains clipboard cache and persistence settings
type ClipboardConfig struct {
	HistorySize int    `mapstructure:"history_size"`
	Persist     bool   `mapstructure:"persist"`
	Path        string `mapstructure:"path"`
}

// CaptureConfig contains frame capture settings
type CaptureConfig struct {
	// DeviceNode overrides the DRM device resolved from dmabuf feedback
	DeviceNode string `mapstructure:"device_node"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Compositor: "",
		Clipboard: ClipboardConfig{
			HistorySize: 100,
			Persist:     false,
			Path:        defaultHistoryPath(),
		},
		Capture: CaptureConfig{
			DeviceNode: "",
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

func defaultHistoryPath() string {
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", "panelkit", "clipboard.db")
	}
	return "panelkit-clipboard.db"
}

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("panelkit")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "panelkit"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetDefault("compositor", DefaultConfig.Compositor)
	viper.SetDefault("clipboard.history_size", DefaultConfig.Clipboard.HistorySize)
	viper.SetDefault("clipboard.persist", DefaultConfig.Clipboard.Persist)
	viper.SetDefault("clipboard.path", DefaultConfig.Clipboard.Path)
	viper.SetDefault("capture.device_node", DefaultConfig.Capture.DeviceNode)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	viper.SetEnvPrefix("PANELKIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration, initializing with defaults if
// Init was never called.
func Get() *Config {
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}
	return cfg
}

// Save writes the active configuration to the user config directory.
func Save() error {
	path := configPathOverride
	if path == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return fmt.Errorf("cannot determine config path: HOME not set")
		}
		dir := filepath.Join(home, ".config", "panelkit")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		path = filepath.Join(dir, "panelkit.toml")
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
