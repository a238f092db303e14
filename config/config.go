// Package config holds the runtime configuration and its JSON loader.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/tidwall/gjson"

	"github.com/gridterm/gridterm/terminal/color"
	"github.com/gridterm/gridterm/terminal/selection"
)

const (
	DefaultScrollback       = 10_000
	MaxScrollback           = 100_000
	DefaultScrollMultiplier = 3
)

// Config is the full runtime configuration. The zero value is not
// usable; start from Default.
type Config struct {
	// Scrollback is the number of history lines kept beyond the
	// visible screen. Clamped to [0, MaxScrollback].
	Scrollback int

	// SemanticEscapeChars delimit words for semantic (double-click
	// style) selection.
	SemanticEscapeChars string

	// ScrollMultiplier is how many lines one wheel tick moves the
	// viewport.
	ScrollMultiplier int

	// Shell is the command spawned on the PTY. Empty means $SHELL.
	Shell     string
	ShellArgs []string

	// Colors customizes the palette. The zero value keeps every
	// computed default.
	Colors color.Overrides
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Scrollback:          DefaultScrollback,
		SemanticEscapeChars: selection.DefaultEscapeChars,
		ScrollMultiplier:    DefaultScrollMultiplier,
	}
}

// Normalize clamps out-of-range values in place and returns the config
// for chaining.
func (c *Config) Normalize() *Config {
	c.Scrollback = min(max(c.Scrollback, 0), MaxScrollback)
	if c.ScrollMultiplier < 1 {
		c.ScrollMultiplier = DefaultScrollMultiplier
	}
	if c.SemanticEscapeChars == "" {
		c.SemanticEscapeChars = selection.DefaultEscapeChars
	}
	return c
}

// Overrides exposes the palette customization for color.NewPalette.
func (c *Config) Overrides() *color.Overrides {
	return &c.Colors
}

// Fingerprint returns a stable hash of the configuration, so callers
// can tell whether a reload actually changed anything (and in
// particular whether the palette must be rebuilt). Named Fingerprint
// rather than Hash: hashstructure special-cases types with a
// Hash() (uint64, error) method, which would recurse.
func (c *Config) Fingerprint() (uint64, error) {
	hashed, err := hashstructure.Hash(c, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("hashing config: %w", err)
	}
	return hashed, nil
}

// Load reads and parses a JSON config file, applying defaults for
// everything the file does not mention.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Config from JSON bytes. Unknown keys are ignored,
// malformed color values are an error.
func Parse(data []byte) (Config, error) {
	if !gjson.ValidBytes(data) {
		return Config{}, fmt.Errorf("config is not valid JSON")
	}
	cfg := Default()
	root := gjson.ParseBytes(data)

	if v := root.Get("scrollback"); v.Exists() {
		cfg.Scrollback = int(v.Int())
	}
	if v := root.Get("semantic_escape_chars"); v.Exists() {
		cfg.SemanticEscapeChars = v.String()
	}
	if v := root.Get("scroll_multiplier"); v.Exists() {
		cfg.ScrollMultiplier = int(v.Int())
	}
	if v := root.Get("shell.program"); v.Exists() {
		cfg.Shell = v.String()
	}
	if v := root.Get("shell.args"); v.Exists() {
		for _, arg := range v.Array() {
			cfg.ShellArgs = append(cfg.ShellArgs, arg.String())
		}
	}

	if err := parseColors(root.Get("colors"), &cfg.Colors); err != nil {
		return Config{}, err
	}

	cfg.Normalize()
	return cfg, nil
}

// ansiNames in palette index order 0..7.
var ansiNames = [8]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
}

func parseColors(v gjson.Result, o *color.Overrides) error {
	if !v.Exists() {
		return nil
	}

	var err error
	if o.Foreground, err = hexPtr(v.Get("foreground")); err != nil {
		return err
	}
	if o.Background, err = hexPtr(v.Get("background")); err != nil {
		return err
	}
	if o.Cursor, err = hexPtr(v.Get("cursor")); err != nil {
		return err
	}

	for i, name := range ansiNames {
		if o.Normal[i], err = hexPtr(v.Get("normal." + name)); err != nil {
			return err
		}
		if o.Bright[i], err = hexPtr(v.Get("bright." + name)); err != nil {
			return err
		}
	}

	indexed := v.Get("indexed")
	if indexed.Exists() {
		o.Indexed = map[uint8]color.RGB{}
		var indexErr error
		indexed.ForEach(func(key, value gjson.Result) bool {
			idx := key.Int()
			if idx < 16 || idx > 255 {
				indexErr = fmt.Errorf("indexed color %d out of range 16-255", idx)
				return false
			}
			rgb, err := color.FromHex(value.String())
			if err != nil {
				indexErr = fmt.Errorf("indexed color %d: %w", idx, err)
				return false
			}
			o.Indexed[uint8(idx)] = rgb
			return true
		})
		if indexErr != nil {
			return indexErr
		}
	}
	return nil
}

func hexPtr(v gjson.Result) (*color.RGB, error) {
	if !v.Exists() {
		return nil, nil
	}
	rgb, err := color.FromHex(v.String())
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", v.String(), err)
	}
	return &rgb, nil
}
