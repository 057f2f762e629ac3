package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if w := raw.Window; w != nil {
		if w.MinWidth != nil {
			cfg.Window.MinWidth = *w.MinWidth
		}
		if w.MinHeight != nil {
			cfg.Window.MinHeight = *w.MinHeight
		}
		if w.InitialWidth != nil {
			cfg.Window.InitialWidth = *w.InitialWidth
		}
		if w.InitialHeight != nil {
			cfg.Window.InitialHeight = *w.InitialHeight
		}
		if w.AvoidDocks != nil {
			cfg.Window.AvoidDocks = *w.AvoidDocks
		}
	}
	if raw.CloseDelay != nil {
		cfg.CloseDelay = *raw.CloseDelay
	}
	if raw.MinimumHeightFloor != nil {
		cfg.MinimumHeightFloor = *raw.MinimumHeightFloor
	}
	if raw.ResizeThreshold != nil {
		cfg.ResizeThreshold = *raw.ResizeThreshold
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if l := raw.Logging; l != nil {
		if l.File != nil {
			cfg.Logging.File = *l.File
		}
		if l.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *l.MaxSizeMB
		}
		if l.MaxFiles != nil {
			cfg.Logging.MaxFiles = *l.MaxFiles
		}
	}

	return cfg
}
