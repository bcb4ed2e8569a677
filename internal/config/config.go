package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winsnap/internal/layout"
)

// Config is the effective daemon configuration.
type Config struct {
	// Keybindings maps a layout ID to an xgbutil key sequence such as
	// "Mod4-Mod1-c". An empty sequence disables the layout's hotkey.
	Keybindings map[string]string `yaml:"keybindings"`
	LogLevel    string            `yaml:"log_level"`
	LogFormat   string            `yaml:"log_format"`
	// Display overrides $DISPLAY for the daemon's X connection.
	Display string `yaml:"display,omitempty"`
}

// DefaultKeybindings returns the stock Super+Alt bindings.
func DefaultKeybindings() map[string]string {
	return map[string]string{
		string(layout.Center):        "Mod4-Mod1-c",
		string(layout.Center75):      "Mod4-Mod1-x",
		string(layout.TopLeft50):     "Mod4-Mod1-u",
		string(layout.TopRight50):    "Mod4-Mod1-i",
		string(layout.BottomLeft50):  "Mod4-Mod1-j",
		string(layout.BottomRight50): "Mod4-Mod1-k",
	}
}

func DefaultConfig() *Config {
	return &Config{
		Keybindings: DefaultKeybindings(),
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Bindings returns the enabled bindings keyed by layout ID.
func (c *Config) Bindings() map[layout.ID]string {
	out := make(map[layout.ID]string, len(c.Keybindings))
	for name, seq := range c.Keybindings {
		id, ok := layout.ParseID(name)
		if !ok || strings.TrimSpace(seq) == "" {
			continue
		}
		out[id] = seq
	}
	return out
}

// SlogLevel converts LogLevel for use with log/slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

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

func (e *ValidationError) Unwrap() error { return e.Err }

func (c *Config) Validate() error {
	if c.Keybindings == nil {
		return &ValidationError{Path: "keybindings", Err: fmt.Errorf("keybindings must not be null")}
	}

	names := make([]string, 0, len(c.Keybindings))
	for name := range c.Keybindings {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]string)
	for _, name := range names {
		path := "keybindings." + name
		id, ok := layout.ParseID(name)
		if !ok {
			return &ValidationError{Path: path, Err: fmt.Errorf("unknown layout %q (known: %s)", name, knownLayouts())}
		}
		if string(id) != name {
			return &ValidationError{Path: path, Err: fmt.Errorf("use %q instead of %q", id, name)}
		}
		seq := strings.TrimSpace(c.Keybindings[name])
		if seq == "" {
			continue
		}
		if other, dup := seen[seq]; dup {
			return &ValidationError{Path: path, Err: fmt.Errorf("key sequence %q is already bound to %s", seq, other)}
		}
		seen[seq] = name
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return &ValidationError{Path: "log_format", Err: fmt.Errorf("log_format must be one of: text, json")}
	}
	return nil
}

func knownLayouts() string {
	ids := layout.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
