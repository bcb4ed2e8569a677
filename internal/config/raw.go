package config

import "gopkg.in/yaml.v3"

// RawConfig is one file's view of the config. Nil fields were not set and
// leave the lower layer untouched when merged.
type RawConfig struct {
	// Include is a path, glob or directory, or a list of them. It is
	// checked by the loader so errors can carry positions.
	Include     yaml.Node          `yaml:"include"`
	Keybindings map[string]*string `yaml:"keybindings"`
	LogLevel    *string            `yaml:"log_level"`
	LogFormat   *string            `yaml:"log_format"`
	Display     *string            `yaml:"display"`
}

// merge overlays other onto r. Keybindings merge per layout.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	out.Include = yaml.Node{}
	if other.Keybindings != nil {
		merged := make(map[string]*string, len(r.Keybindings)+len(other.Keybindings))
		for k, v := range r.Keybindings {
			merged[k] = v
		}
		for k, v := range other.Keybindings {
			merged[k] = v
		}
		out.Keybindings = merged
	}
	if other.LogLevel != nil {
		out.LogLevel = other.LogLevel
	}
	if other.LogFormat != nil {
		out.LogFormat = other.LogFormat
	}
	if other.Display != nil {
		out.Display = other.Display
	}
	return out
}

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()
	for name, seq := range raw.Keybindings {
		if seq == nil {
			// "center: ~" disables the binding.
			cfg.Keybindings[name] = ""
			continue
		}
		cfg.Keybindings[name] = *seq
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.LogFormat != nil {
		cfg.LogFormat = *raw.LogFormat
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	return cfg
}
