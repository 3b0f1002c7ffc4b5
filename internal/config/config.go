package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

// Format selects the on-disk encoding of a configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks TOML for *.toml files and YAML for everything else.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Config is the top-level configuration document.
type Config struct {
	Macros []MacroConfig `yaml:"macros" toml:"macros"`
}

// MacroConfig describes one macro as written in the configuration file.
type MacroConfig struct {
	ActionType       string `yaml:"action_type,omitempty" toml:"action_type,omitempty"`
	Key              string `yaml:"key,omitempty" toml:"key,omitempty"`
	MouseButton      string `yaml:"mouse_button,omitempty" toml:"mouse_button,omitempty"`
	IntervalMs       uint64 `yaml:"interval_ms" toml:"interval_ms"`
	RandomVarianceMs uint64 `yaml:"random_variance_ms" toml:"random_variance_ms"`
	ToggleHotkey     string `yaml:"toggle_hotkey" toml:"toggle_hotkey"`
	EnabledByDefault bool   `yaml:"enabled_by_default" toml:"enabled_by_default"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		Macros: []MacroConfig{
			{ActionType: "keyboard", Key: "1", IntervalMs: 1000, RandomVarianceMs: 200, ToggleHotkey: "F9"},
			{ActionType: "keyboard", Key: "e", IntervalMs: 1500, RandomVarianceMs: 300, ToggleHotkey: "F10"},
			{ActionType: "mouse", MouseButton: "left", IntervalMs: 800, RandomVarianceMs: 150, ToggleHotkey: "F11"},
		},
	}
}

// DefaultPath returns the per-user configuration location.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(configDir, "macrobuddy", "config.yaml")
}

// Parse decodes a configuration payload. Unknown fields are rejected so a
// misspelled option does not silently fall back to its zero value.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			return nil, fmt.Errorf("decode config: unknown fields %s", strings.Join(keys, ", "))
		}
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return &cfg, nil
}

// Marshal encodes cfg in the given format.
func Marshal(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML, "":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// Load reads and decodes a configuration file. It does not validate.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithSource(path)
	return cfg, err
}

// LoadWithSource is Load that also returns the raw bytes, for diffing.
func LoadWithSource(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, nil, err
	}
	return cfg, data, nil
}

// Save writes cfg atomically through a temporary file.
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("persist config: %w", err)
	}
	return nil
}

// LoadOrDefault loads path, or writes and returns Default when it does not
// exist. created reports whether the default was written.
func LoadOrDefault(path string) (cfg *Config, created bool, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg = Default()
		if err := Save(path, cfg); err != nil {
			return nil, false, fmt.Errorf("create default config: %w", err)
		}
		return cfg, true, nil
	}
	cfg, err = Load(path)
	return cfg, false, err
}

// Definitions converts the file representation into engine definitions.
func (c *Config) Definitions() ([]macro.Definition, error) {
	defs := make([]macro.Definition, 0, len(c.Macros))
	for idx, m := range c.Macros {
		action, err := m.action()
		if err != nil {
			return nil, fmt.Errorf("macro #%d: %w", idx, err)
		}
		defs = append(defs, macro.Definition{
			Action:             action,
			IntervalBaseMs:     m.IntervalMs,
			IntervalVarianceMs: m.RandomVarianceMs,
			ToggleHotkey:       m.ToggleHotkey,
			EnabledByDefault:   m.EnabledByDefault,
		})
	}
	return defs, nil
}

func (m MacroConfig) action() (macro.Action, error) {
	switch strings.ToLower(strings.TrimSpace(m.ActionType)) {
	case "", "keyboard":
		return macro.KeyboardAction(m.Key), nil
	case "mouse":
		if strings.TrimSpace(m.MouseButton) == "" {
			return macro.MouseAction(0), nil
		}
		button, err := macro.ParseMouseButton(m.MouseButton)
		if err != nil {
			return macro.Action{}, fmt.Errorf("%w: %v", macro.ErrInvalidMacro, err)
		}
		return macro.MouseAction(button), nil
	default:
		return macro.Action{}, fmt.Errorf("%w: unknown action_type %q (expected keyboard|mouse)", macro.ErrInvalidMacro, m.ActionType)
	}
}

// Validate applies the engine's structural checks to the configuration.
func (c *Config) Validate() error {
	defs, err := c.Definitions()
	if err != nil {
		return err
	}
	return macro.Validate(defs)
}

// Lint reports key and hotkey symbols no backend can resolve and intervals
// that would fire faster than macro.MinInterval. The engine accepts both;
// unresolved symbols fault the affected macros at run time.
func (c *Config) Lint() error {
	defs, err := c.Definitions()
	if err != nil {
		return err
	}
	return errors.Join(macro.CheckSymbols(defs), macro.CheckIntervals(defs))
}
