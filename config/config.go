// Package config loads desktop settings from defaults, an optional TOML
// file and TERMDESK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/danielgatis/go-termdesk/logging"
)

// EnvPrefix prefixes every environment override, e.g. TERMDESK_WINDOW_FPS.
const EnvPrefix = "TERMDESK"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration. Environment keys are
// derived from field names under EnvPrefix, so TERMDESK_TERMINAL_TERM sets
// Terminal.Term while a bare $TERM from the host is never read.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Terminal TerminalConfig `toml:"terminal"`
	Editor   EditorConfig   `toml:"editor"`
	Keymap   KeymapConfig   `toml:"keymap"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Bell     BellConfig     `toml:"bell"`
	Log      logging.Config `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// WindowConfig sizes the drawing surface. Width and Height are pixels for
// the image backend and are ignored by the tcell backend.
type WindowConfig struct {
	Backend  string  `toml:"backend"`
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	FPS      int     `toml:"fps"`
	FontPath string  `toml:"font_path" split_words:"true"`
	FontSize float64 `toml:"font_size" split_words:"true"`
}

// TerminalConfig describes the shell layer.
type TerminalConfig struct {
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	Rows       int      `toml:"rows"`
	Cols       int      `toml:"cols"`
	Scrollback int      `toml:"scrollback"`
	Term       string   `toml:"term"`
	Locale     string   `toml:"locale"`
}

// EditorConfig describes the second terminal layer, disabled at start.
type EditorConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// KeymapConfig selects where the keymap comes from.
type KeymapConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	// Fallback uses the embedded US layout when the command fails.
	Fallback bool `toml:"fallback"`
}

// DispatchConfig configures the command queue and its websocket endpoint.
type DispatchConfig struct {
	Queue    string  `toml:"queue"`
	Capacity int     `toml:"capacity"`
	DrainMax int     `toml:"drain_max" split_words:"true"`
	Listen   string  `toml:"listen"`
	Rate     float64 `toml:"rate"`
	Burst    int     `toml:"burst"`
}

// BellConfig controls the audible bell.
type BellConfig struct {
	Audio     bool     `toml:"audio"`
	Frequency float64  `toml:"frequency"`
	Duration  Duration `toml:"duration"`
}

// Duration is a time.Duration written as "250ms" in TOML and env.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats d as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// MetricsConfig exposes Prometheus metrics when Listen is set.
type MetricsConfig struct {
	Listen string `toml:"listen"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Backend:  "tcell",
			Width:    800,
			Height:   600,
			FPS:      60,
			FontSize: 14,
		},
		Terminal: TerminalConfig{
			Rows:       25,
			Cols:       80,
			Scrollback: 1000,
			Term:       "xterm-256color",
		},
		Editor: EditorConfig{
			Command: "vi",
		},
		Keymap: KeymapConfig{
			Command: "xmodmap",
			Args:    []string{"-pk"},
		},
		Dispatch: DispatchConfig{
			Queue:    "/termdesk",
			Capacity: 100,
			DrainMax: 100,
			Listen:   "127.0.0.1:7777",
		},
		Bell: BellConfig{
			Frequency: 880,
			Duration:  Duration(120 * time.Millisecond),
		},
		Log: logging.DefaultConfig(),
	}
}

// LoadFile decodes the TOML file at path over cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Load builds the effective configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Window.Backend {
	case "tcell", "image":
	default:
		return fmt.Errorf("%w: window.backend %q, want tcell or image", ErrInvalid, c.Window.Backend)
	}
	if c.Window.FPS <= 0 {
		return fmt.Errorf("%w: window.fps must be positive", ErrInvalid)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Window.FontSize <= 0 {
		return fmt.Errorf("%w: window.font_size must be positive", ErrInvalid)
	}
	if c.Terminal.Rows <= 0 || c.Terminal.Cols <= 0 {
		return fmt.Errorf("%w: terminal size %dx%d", ErrInvalid, c.Terminal.Rows, c.Terminal.Cols)
	}
	if c.Terminal.Scrollback < 0 {
		return fmt.Errorf("%w: terminal.scrollback must not be negative", ErrInvalid)
	}
	if c.Dispatch.Queue == "" {
		return fmt.Errorf("%w: dispatch.queue is empty", ErrInvalid)
	}
	if c.Dispatch.Capacity <= 0 {
		return fmt.Errorf("%w: dispatch.capacity must be positive", ErrInvalid)
	}
	if c.Dispatch.Rate < 0 {
		return fmt.Errorf("%w: dispatch.rate must not be negative", ErrInvalid)
	}
	return nil
}

// Shell returns the terminal command, falling back to $SHELL and then
// /bin/sh.
func (c *Config) Shell() string {
	if c.Terminal.Command != "" {
		return c.Terminal.Command
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}
