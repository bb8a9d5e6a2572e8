// Package config loads and persists openboard settings.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/ysenez/openboard/pkg/canvas"
	"github.com/ysenez/openboard/pkg/errors"
)

// Config is the on-disk settings file. Every field has a working default,
// so a missing file is not an error.
type Config struct {
	// BackgroundColor is the canvas background as a #RRGGBB hex string.
	// Emptiness detection compares probed pixels against it exactly.
	BackgroundColor string `toml:"background_color"`

	// CellDetectionLevel sets how many pixels the probe detector samples
	// per cell zone, 1 through 5.
	CellDetectionLevel int `toml:"cell_detection_level"`

	// ExtensionDirection is bottom, right, or alternate.
	ExtensionDirection string `toml:"extension_direction"`

	// DropZone is the width in pixels reserved at the right canvas edge
	// that extensions must not grow into.
	DropZone float64 `toml:"drop_zone"`

	// LayoutWidth caps the total board width. Zero disables the cap.
	LayoutWidth float64 `toml:"layout_width"`

	// UseMarginInResize leaves one cell spacing of slack beyond the
	// outermost cells when the canvas grows.
	UseMarginInResize bool `toml:"use_margin_in_resize"`

	// LandscapeMode controls landscape images on spread boards: "spread"
	// places them across a full cell, "single" treats them like portrait.
	LandscapeMode string `toml:"landscape_mode"`

	// ResizeMode is fit, cover, or none.
	ResizeMode string `toml:"resize_mode"`

	// LastExtendDirection records the axis of the previous extension. It
	// is the only field the engine writes back.
	LastExtendDirection string `toml:"last_extend_direction"`

	path   string
	logger *log.Logger
}

// Default returns the built-in settings, not bound to any file.
func Default() *Config {
	return &Config{
		BackgroundColor:    "#ffffff",
		CellDetectionLevel: 3,
		ExtensionDirection: "alternate",
		DropZone:           0,
		LayoutWidth:        0,
		UseMarginInResize:  true,
		LandscapeMode:      "spread",
		ResizeMode:         "fit",
	}
}

// Load reads path on top of the defaults and applies OPENBOARD_*
// environment overrides. A missing file yields the defaults bound to path
// so later write-backs create it.
func Load(path string, logger *log.Logger) (*Config, error) {
	cfg := Default()
	cfg.path = path
	cfg.logger = logger

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "parsing config file")
		}
		logger.Debug("config file not found, using defaults", "path", path)
	}
	cfg.applyEnv()

	if _, err := canvas.ParseHex(cfg.BackgroundColor); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "invalid background_color")
	}
	if cfg.CellDetectionLevel < 1 || cfg.CellDetectionLevel > 5 {
		return nil, errors.New(errors.ErrCodeConfig, "cell_detection_level must be between 1 and 5")
	}
	return cfg, nil
}

// applyEnv overrides fields from the environment. Values that fail to
// parse are ignored with a debug line rather than failing the load.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENBOARD_BACKGROUND_COLOR"); v != "" {
		c.BackgroundColor = v
	}
	if v := os.Getenv("OPENBOARD_DETECTION_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CellDetectionLevel = n
		} else {
			c.logger.Debug("ignoring invalid OPENBOARD_DETECTION_LEVEL", "value", v)
		}
	}
	if v := os.Getenv("OPENBOARD_EXTENSION_DIRECTION"); v != "" {
		c.ExtensionDirection = v
	}
	if v := os.Getenv("OPENBOARD_RESIZE_MODE"); v != "" {
		c.ResizeMode = v
	}
}

// Background returns the parsed background color. Load validated it.
func (c *Config) Background() canvas.Color {
	col, _ := canvas.ParseHex(c.BackgroundColor)
	return col
}

// LastDirection returns the persisted previous extension axis.
func (c *Config) LastDirection() string { return c.LastExtendDirection }

// SetLastDirection records the extension axis and writes the config back
// to disk.
func (c *Config) SetLastDirection(dir string) error {
	c.LastExtendDirection = dir
	return c.save()
}

// save writes the config atomically next to its final path.
func (c *Config) save() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "creating config directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".config-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "creating temp config file")
	}
	defer os.Remove(tmp.Name())

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(c); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeConfig, err, "encoding config")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "closing temp config file")
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "replacing config file")
	}
	return nil
}

// DefaultPath returns the per-user config location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "openboard", "config.toml")
	}
	return "openboard.toml"
}
