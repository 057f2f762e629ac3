package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawWindowConfig struct {
	MinWidth      *int  `yaml:"min_width"`
	MinHeight     *int  `yaml:"min_height"`
	InitialWidth  *int  `yaml:"initial_width"`
	InitialHeight *int  `yaml:"initial_height"`
	AvoidDocks    *bool `yaml:"avoid_docks"`
}

type RawLoggingConfig struct {
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig is one YAML file as written; nil fields were not set.
type RawConfig struct {
	Include            IncludeList       `yaml:"include"`
	Display            *string           `yaml:"display"`
	XAuthority         *string           `yaml:"xauthority"`
	Window             *RawWindowConfig  `yaml:"window"`
	CloseDelay         *time.Duration    `yaml:"close_delay"`
	MinimumHeightFloor *int              `yaml:"minimum_height_floor"`
	ResizeThreshold    *int              `yaml:"resize_threshold"`
	LogLevel           *string           `yaml:"log_level"`
	Logging            *RawLoggingConfig `yaml:"logging"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.Window != nil {
		out.Window = mergeRawWindow(out.Window, overlay.Window)
	}
	if overlay.CloseDelay != nil {
		out.CloseDelay = overlay.CloseDelay
	}
	if overlay.MinimumHeightFloor != nil {
		out.MinimumHeightFloor = overlay.MinimumHeightFloor
	}
	if overlay.ResizeThreshold != nil {
		out.ResizeThreshold = overlay.ResizeThreshold
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Logging != nil {
		out.Logging = mergeRawLogging(out.Logging, overlay.Logging)
	}

	return out
}

func mergeRawWindow(base, overlay *RawWindowConfig) *RawWindowConfig {
	out := RawWindowConfig{}
	if base != nil {
		out = *base
	}
	if overlay.MinWidth != nil {
		out.MinWidth = overlay.MinWidth
	}
	if overlay.MinHeight != nil {
		out.MinHeight = overlay.MinHeight
	}
	if overlay.InitialWidth != nil {
		out.InitialWidth = overlay.InitialWidth
	}
	if overlay.InitialHeight != nil {
		out.InitialHeight = overlay.InitialHeight
	}
	if overlay.AvoidDocks != nil {
		out.AvoidDocks = overlay.AvoidDocks
	}
	return &out
}

func mergeRawLogging(base, overlay *RawLoggingConfig) *RawLoggingConfig {
	out := RawLoggingConfig{}
	if base != nil {
		out = *base
	}
	if overlay.File != nil {
		out.File = overlay.File
	}
	if overlay.MaxSizeMB != nil {
		out.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxFiles != nil {
		out.MaxFiles = overlay.MaxFiles
	}
	return &out
}
