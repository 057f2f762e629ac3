package config

import (
	"fmt"
	"sort"
)

// Explain returns the effective value at the given YAML path and its source.
//
// Supported paths are the keys listed by ExplainPaths, e.g.
//
//	display
//	window.min_width
//	close_delay
//	logging.file
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	lookup, ok := explainers[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown path: %s", path)
	}
	value := lookup(res.Config)

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// ExplainPaths lists every path Explain accepts, sorted.
func ExplainPaths() []string {
	paths := make([]string, 0, len(explainers))
	for p := range explainers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var explainers = map[string]func(*Config) any{
	"display":               func(c *Config) any { return c.Display },
	"xauthority":            func(c *Config) any { return c.XAuthority },
	"window.min_width":      func(c *Config) any { return c.Window.MinWidth },
	"window.min_height":     func(c *Config) any { return c.Window.MinHeight },
	"window.initial_width":  func(c *Config) any { return c.Window.InitialWidth },
	"window.initial_height": func(c *Config) any { return c.Window.InitialHeight },
	"window.avoid_docks":    func(c *Config) any { return c.Window.AvoidDocks },
	"close_delay":           func(c *Config) any { return c.CloseDelay },
	"minimum_height_floor":  func(c *Config) any { return c.MinimumHeightFloor },
	"resize_threshold":      func(c *Config) any { return c.ResizeThreshold },
	"log_level":             func(c *Config) any { return c.LogLevel },
	"logging.file":          func(c *Config) any { return c.Logging.File },
	"logging.max_size_mb":   func(c *Config) any { return c.Logging.MaxSizeMB },
	"logging.max_files":     func(c *Config) any { return c.Logging.MaxFiles },
}
