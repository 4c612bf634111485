// Package config loads and validates marknav configuration from a TOML file
// with an environment variable overlay. Invalid or missing values are
// clamped or defaulted, never fatal.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Panel dimension bounds. Width is in pixels; max height is a fraction of
// the viewport height.
const (
	DefaultPanelWidth = 300
	MinPanelWidth     = 150
	MaxPanelWidth     = 600

	DefaultMaxHeightFraction = 0.8
	MinMaxHeightFraction     = 0.2
	MaxMaxHeightFraction     = 0.9
)

// Config is the root configuration.
type Config struct {
	Panel     PanelConfig     `toml:"panel"`
	Navigator NavigatorConfig `toml:"navigator"`
	Scroll    ScrollConfig    `toml:"scroll"`
	Logging   LoggingConfig   `toml:"logging"`
}

// PanelConfig holds outline panel dimensions.
type PanelConfig struct {
	// WidthPx is the panel width in pixels.
	WidthPx int `toml:"width_px"`
	// MaxHeightFraction is the panel's height ceiling as a fraction of the
	// viewport height.
	MaxHeightFraction float64 `toml:"max_height_fraction"`
}

// NavigatorConfig holds navigator debounce intervals.
type NavigatorConfig struct {
	FilterDebounceMs  int `toml:"filter_debounce_ms"`
	PreviewDebounceMs int `toml:"preview_debounce_ms"`
}

// FilterDelay returns the filter debounce as a duration.
func (n NavigatorConfig) FilterDelay() time.Duration {
	return time.Duration(n.FilterDebounceMs) * time.Millisecond
}

// PreviewDelay returns the preview debounce as a duration.
func (n NavigatorConfig) PreviewDelay() time.Duration {
	return time.Duration(n.PreviewDebounceMs) * time.Millisecond
}

// ScrollConfig holds the scroll-convergence policy.
type ScrollConfig struct {
	MaxAttempts      int     `toml:"max_attempts"`
	FirstDelayMs     int     `toml:"first_delay_ms"`
	RetryDelayMs     int     `toml:"retry_delay_ms"`
	BelowTolerancePx float64 `toml:"below_tolerance_px"`
	AboveTolerancePx float64 `toml:"above_tolerance_px"`
}

// FirstDelay returns the first-attempt delay as a duration.
func (s ScrollConfig) FirstDelay() time.Duration {
	return time.Duration(s.FirstDelayMs) * time.Millisecond
}

// RetryDelay returns the subsequent-attempt delay as a duration.
func (s ScrollConfig) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelayMs) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Panel: PanelConfig{
			WidthPx:           DefaultPanelWidth,
			MaxHeightFraction: DefaultMaxHeightFraction,
		},
		Navigator: NavigatorConfig{
			FilterDebounceMs:  150,
			PreviewDebounceMs: 30,
		},
		Scroll: ScrollConfig{
			MaxAttempts:      2,
			FirstDelayMs:     160,
			RetryDelayMs:     260,
			BelowTolerancePx: 12,
			AboveTolerancePx: 1.5,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from path, overlays MARKNAV_* environment
// variables, and normalizes the result. A missing file is not an error: the
// defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.Normalize()
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("MARKNAV_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("MARKNAV_PANEL_WIDTH"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Panel.WidthPx = n
		}
	}
	if v, ok := os.LookupEnv("MARKNAV_PANEL_MAX_HEIGHT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Panel.MaxHeightFraction = f
		}
	}
}

// Normalize clamps every field to its valid range, falling back to defaults
// for unusable values. Each dimension is clamped independently.
func (c *Config) Normalize() {
	def := Default()

	if c.Panel.WidthPx == 0 {
		c.Panel.WidthPx = def.Panel.WidthPx
	}
	c.Panel.WidthPx = clampInt(c.Panel.WidthPx, MinPanelWidth, MaxPanelWidth)

	if c.Panel.MaxHeightFraction == 0 {
		c.Panel.MaxHeightFraction = def.Panel.MaxHeightFraction
	}
	c.Panel.MaxHeightFraction = clampFloat(c.Panel.MaxHeightFraction, MinMaxHeightFraction, MaxMaxHeightFraction)

	if c.Navigator.FilterDebounceMs <= 0 {
		c.Navigator.FilterDebounceMs = def.Navigator.FilterDebounceMs
	}
	if c.Navigator.PreviewDebounceMs <= 0 {
		c.Navigator.PreviewDebounceMs = def.Navigator.PreviewDebounceMs
	}

	if c.Scroll.MaxAttempts <= 0 {
		c.Scroll.MaxAttempts = def.Scroll.MaxAttempts
	}
	if c.Scroll.FirstDelayMs <= 0 {
		c.Scroll.FirstDelayMs = def.Scroll.FirstDelayMs
	}
	if c.Scroll.RetryDelayMs <= 0 {
		c.Scroll.RetryDelayMs = def.Scroll.RetryDelayMs
	}
	if c.Scroll.BelowTolerancePx <= 0 {
		c.Scroll.BelowTolerancePx = def.Scroll.BelowTolerancePx
	}
	if c.Scroll.AboveTolerancePx <= 0 {
		c.Scroll.AboveTolerancePx = def.Scroll.AboveTolerancePx
	}

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
