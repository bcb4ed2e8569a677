package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/winsnap/internal/layout"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_ValidAndBindsEveryLayout(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	bindings := cfg.Bindings()
	for _, id := range layout.IDs() {
		if bindings[id] == "" {
			t.Fatalf("expected default binding for %q", id)
		}
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" || res.Config.LogFormat != "text" {
		t.Fatalf("expected default logging, got %q/%q", res.Config.LogLevel, res.Config.LogFormat)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := res.Config.Keybindings["center"]; got != "Mod4-Mod1-c" {
		t.Fatalf("expected default center binding, got %q", got)
	}
}

func TestLoadFromPath_OverridesPerLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"keybindings:",
		"  center: Control-Mod1-c",
		"  top-left-50: \"\"",
		"  top-right-50: ~",
		"log_level: debug",
		"log_format: json",
		"display: \":1\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Keybindings["center"] != "Control-Mod1-c" {
		t.Fatalf("expected center override, got %q", cfg.Keybindings["center"])
	}
	if cfg.Keybindings["center-75"] != "Mod4-Mod1-x" {
		t.Fatalf("expected untouched default for center-75, got %q", cfg.Keybindings["center-75"])
	}
	bindings := cfg.Bindings()
	if _, ok := bindings[layout.TopLeft50]; ok {
		t.Fatalf("expected empty sequence to disable top-left-50")
	}
	if _, ok := bindings[layout.TopRight50]; ok {
		t.Fatalf("expected null sequence to disable top-right-50")
	}
	if len(bindings) != 4 {
		t.Fatalf("expected 4 enabled bindings, got %d", len(bindings))
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("expected json format, got %q", cfg.LogFormat)
	}
	if cfg.Display != ":1" {
		t.Fatalf("expected display :1, got %q", cfg.Display)
	}

	src, ok := res.Sources["keybindings.center"]
	if !ok || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected keybindings.center sourced from line 2, got %+v (ok=%v)", src, ok)
	}
}

func TestLoadFromPath_StrictUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "gap_size: 4\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "gap_size") || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to name key and file, got %v", err)
	}
}

func TestLoadFromPath_UnknownLayoutCarriesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\nkeybindings:\n  middle: Mod4-m\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "keybindings.middle" {
		t.Fatalf("expected path keybindings.middle, got %q", verr.Path)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("expected source line 3, got %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), ":3:") || !strings.Contains(err.Error(), "known: center") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		path    string
		wantErr string
	}{
		{
			name:    "alias rejected",
			mutate:  func(c *Config) { c.Keybindings["center-window"] = "Mod4-w" },
			path:    "keybindings.center-window",
			wantErr: `use "center" instead`,
		},
		{
			name:    "duplicate sequence",
			mutate:  func(c *Config) { c.Keybindings["center-75"] = "Mod4-Mod1-c" },
			path:    "keybindings.center-75",
			wantErr: "already bound to center",
		},
		{
			name:    "bad level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			path:    "log_level",
			wantErr: "log_level must be one of",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			path:    "log_format",
			wantErr: "log_format must be one of",
		},
		{
			name:    "null keybindings",
			mutate:  func(c *Config) { c.Keybindings = nil },
			path:    "keybindings",
			wantErr: "must not be null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoadFromPath_IncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, filepath.Join(dir, "conf.d", "10-keys.yaml"), "keybindings:\n  center: Mod4-a\n  center-75: Mod4-b\n")
	writeFile(t, filepath.Join(dir, "conf.d", "20-keys.yaml"), "keybindings:\n  center-75: Mod4-c\nlog_level: warn\n")
	writeFile(t, filepath.Join(dir, "conf.d", "README.txt"), "ignored\n")
	writeFile(t, path, "include: conf.d\nlog_level: error\nkeybindings:\n  center: Mod4-z\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Keybindings["center"] != "Mod4-z" {
		t.Fatalf("expected main file to win for center, got %q", cfg.Keybindings["center"])
	}
	if cfg.Keybindings["center-75"] != "Mod4-c" {
		t.Fatalf("expected later include to win for center-75, got %q", cfg.Keybindings["center-75"])
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected main file log_level, got %q", cfg.LogLevel)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files loaded, got %v", res.Files)
	}
	if filepath.Base(res.Files[len(res.Files)-1]) != "config.yaml" {
		t.Fatalf("expected main file loaded last, got %v", res.Files)
	}
	if src := res.Sources["keybindings.center-75"]; filepath.Base(src.File) != "20-keys.yaml" {
		t.Fatalf("expected center-75 sourced from 20-keys.yaml, got %+v", src)
	}
}

func TestLoadFromPath_MissingIncludeHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected include error")
	}
	if !strings.Contains(err.Error(), `include "missing.yaml"`) || !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected include context, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_GlobInclude(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, filepath.Join(dir, "keys", "b.yaml"), "keybindings:\n  center: Mod4-b\n")
	writeFile(t, filepath.Join(dir, "keys", "a.yaml"), "keybindings:\n  center: Mod4-a\n  center-75: Mod4-q\n")
	writeFile(t, filepath.Join(dir, "keys", "c.yml"), "keybindings:\n  center: Mod4-c\n")
	writeFile(t, path, "include:\n  - keys/*.yaml\n  - none/*.yaml\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := res.Config.Keybindings["center"]; got != "Mod4-b" {
		t.Fatalf("expected last glob match to win, got %q", got)
	}
	if got := res.Config.Keybindings["center-75"]; got != "Mod4-q" {
		t.Fatalf("expected a.yaml binding, got %q", got)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected a.yaml, b.yaml and the main file, got %v", res.Files)
	}
	if src := res.Sources["keybindings.center"]; filepath.Base(src.File) != "b.yaml" || src.Line != 2 {
		t.Fatalf("expected center sourced from b.yaml:2, got %+v", src)
	}
}

func TestLoadFromPath_IncludeMustBeStrings(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "mapping", data: "include:\n  path: a.yaml\n", wantErr: ":2:3: include must be a string or list of strings"},
		{name: "number entry", data: "include:\n  - 42\n", wantErr: ":2:5: include entries must be strings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, path, tt.data)

			_, err := LoadFromPath(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFromPath_IncludedValidationErrorNamesIncludedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "extra.yaml"), "keybindings:\n  middle: Mod4-m\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: extra.yaml\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if filepath.Base(verr.Source.File) != "extra.yaml" || verr.Source.Line != 2 {
		t.Fatalf("expected source extra.yaml:2, got %+v", verr.Source)
	}
}

func TestSaveTo_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Keybindings["center"] = "Control-Mod4-space"
	cfg.LogFormat = "json"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Keybindings["center"] != "Control-Mod4-space" || res.Config.LogFormat != "json" {
		t.Fatalf("unexpected reloaded config: %+v", res.Config)
	}
}

func TestDefaultConfigPath_UsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if want := filepath.Join(home, ".config", "winsnap", "config.yaml"); path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
}
