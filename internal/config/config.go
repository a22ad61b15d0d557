package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds all configurable cline settings.
type Config struct {
	LintCommand     string `json:"lint_command"`     // e.g. "go vet ./..."
	DefaultFormat   string `json:"default_format"`   // "markdown" | "json"
	ScrollThreshold int    `json:"scroll_threshold"` // lines; 0 means unset
	WatchExternal   *bool  `json:"watch_external"`   // nil means unset
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	watch := true
	return Config{
		DefaultFormat:   "markdown",
		ScrollThreshold: 5,
		WatchExternal:   &watch,
	}
}

// LoadGlobal reads ~/.config/cline/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "cline", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .clineconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".clineconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	// Apply global values over defaults.
	if global != nil {
		if global.LintCommand != "" {
			result.LintCommand = global.LintCommand
		}
		if global.DefaultFormat != "" {
			result.DefaultFormat = global.DefaultFormat
		}
		if global.ScrollThreshold > 0 {
			result.ScrollThreshold = global.ScrollThreshold
		}
		if global.WatchExternal != nil {
			result.WatchExternal = global.WatchExternal
		}
	}

	// Apply project values over global.
	if project != nil {
		if project.LintCommand != "" {
			result.LintCommand = project.LintCommand
		}
		if project.DefaultFormat != "" {
			result.DefaultFormat = project.DefaultFormat
		}
		if project.ScrollThreshold > 0 {
			result.ScrollThreshold = project.ScrollThreshold
		}
		if project.WatchExternal != nil {
			result.WatchExternal = project.WatchExternal
		}
	}

	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
