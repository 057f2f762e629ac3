package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WindowConfig sizes the call window before any content asks for more room.
type WindowConfig struct {
	// MinWidth and MinHeight are the window's own minimum size.
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
	// InitialWidth and InitialHeight are used until the panel reports a
	// preferred size.
	InitialWidth  int `yaml:"initial_width"`
	InitialHeight int `yaml:"initial_height"`
	// AvoidDocks centers and clamps the window within the area docks and
	// panels leave free instead of the whole monitor.
	AvoidDocks bool `yaml:"avoid_docks"`
}

// LoggingConfig configures the optional log file.
type LoggingConfig struct {
	// File is the log file path; empty logs to stderr only
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	Display            string        `yaml:"display,omitempty"`
	XAuthority         string        `yaml:"xauthority,omitempty"`
	Window             WindowConfig  `yaml:"window"`
	CloseDelay         time.Duration `yaml:"close_delay"`
	MinimumHeightFloor int           `yaml:"minimum_height_floor"`
	ResizeThreshold    int           `yaml:"resize_threshold"`
	LogLevel           string        `yaml:"log_level"`
	Logging            LoggingConfig `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			MinWidth:      360,
			MinHeight:     300,
			InitialWidth:  640,
			InitialHeight: 480,
		},
		CloseDelay:         5 * time.Second,
		MinimumHeightFloor: 300,
		ResizeThreshold:    1,
		LogLevel:           "info",
		Logging: LoggingConfig{
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "callframe", "config.yaml"), nil
}

// GetLoggingConfig returns the logging configuration with defaults applied.
// A leading ~ in the file path is expanded.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	cfg.File = expandHome(cfg.File)
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	return cfg
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// Marshal renders the effective configuration as YAML.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Window.MinWidth < 1 {
		return &ValidationError{Path: "window.min_width", Err: fmt.Errorf("min_width must be >= 1")}
	}
	if c.Window.MinHeight < 1 {
		return &ValidationError{Path: "window.min_height", Err: fmt.Errorf("min_height must be >= 1")}
	}
	if c.Window.InitialWidth < 0 {
		return &ValidationError{Path: "window.initial_width", Err: fmt.Errorf("initial_width must be >= 0")}
	}
	if c.Window.InitialHeight < 0 {
		return &ValidationError{Path: "window.initial_height", Err: fmt.Errorf("initial_height must be >= 0")}
	}
	if c.CloseDelay <= 0 {
		return &ValidationError{Path: "close_delay", Err: fmt.Errorf("close_delay must be > 0")}
	}
	if c.MinimumHeightFloor < 1 {
		return &ValidationError{Path: "minimum_height_floor", Err: fmt.Errorf("minimum_height_floor must be >= 1")}
	}
	if c.ResizeThreshold < 1 {
		return &ValidationError{Path: "resize_threshold", Err: fmt.Errorf("resize_threshold must be >= 1")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string
	if c.Window.InitialWidth > 0 && c.Window.InitialWidth < c.Window.MinWidth {
		warnings = append(warnings, fmt.Sprintf("window.initial_width %d is below min_width %d; min_width wins", c.Window.InitialWidth, c.Window.MinWidth))
	}
	if c.Window.InitialHeight > 0 && c.Window.InitialHeight < c.Window.MinHeight {
		warnings = append(warnings, fmt.Sprintf("window.initial_height %d is below min_height %d; min_height wins", c.Window.InitialHeight, c.Window.MinHeight))
	}
	return warnings
}
