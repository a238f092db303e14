package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridterm/gridterm/terminal/color"
	"github.com/gridterm/gridterm/terminal/selection"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultScrollback, cfg.Scrollback)
	assert.Equal(t, DefaultScrollMultiplier, cfg.ScrollMultiplier)
	assert.Equal(t, selection.DefaultEscapeChars, cfg.SemanticEscapeChars)
}

func TestConfig_NormalizeClamps(t *testing.T) {
	cfg := Config{Scrollback: -5, ScrollMultiplier: 0}
	cfg.Normalize()
	assert.Equal(t, 0, cfg.Scrollback)
	assert.Equal(t, DefaultScrollMultiplier, cfg.ScrollMultiplier)
	assert.Equal(t, selection.DefaultEscapeChars, cfg.SemanticEscapeChars)

	cfg = Config{Scrollback: 10 * MaxScrollback, ScrollMultiplier: 1}
	cfg.Normalize()
	assert.Equal(t, MaxScrollback, cfg.Scrollback)
	assert.Equal(t, 1, cfg.ScrollMultiplier)
}

func TestConfig_ParseOverridesAndDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"scrollback": 500,
		"shell": {"program": "/bin/zsh", "args": ["-l"]},
		"colors": {
			"foreground": "#aabbcc",
			"normal": {"red": "#ff0000"},
			"indexed": {"42": "#123456"}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Scrollback)
	assert.Equal(t, "/bin/zsh", cfg.Shell)
	assert.Equal(t, []string{"-l"}, cfg.ShellArgs)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultScrollMultiplier, cfg.ScrollMultiplier)

	require.NotNil(t, cfg.Colors.Foreground)
	assert.Equal(t, color.RGB{R: 0xaa, G: 0xbb, B: 0xcc}, *cfg.Colors.Foreground)
	require.NotNil(t, cfg.Colors.Normal[1])
	assert.Equal(t, color.RGB{R: 0xff}, *cfg.Colors.Normal[1])
	assert.Nil(t, cfg.Colors.Normal[0])
	assert.Equal(t, color.RGB{R: 0x12, G: 0x34, B: 0x56}, cfg.Colors.Indexed[42])
}

func TestConfig_ParseErrors(t *testing.T) {
	_, err := Parse([]byte("{"))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"colors": {"foreground": "notacolor"}}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"colors": {"indexed": {"3": "#ffffff"}}}`))
	assert.Error(t, err)
}

func TestConfig_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridterm.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"scrollback": 123}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.Scrollback)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestConfig_FingerprintDetectsChanges(t *testing.T) {
	a := Default()
	b := Default()

	ha, err := a.Fingerprint()
	require.NoError(t, err)
	hb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Colors.Foreground = &color.RGB{R: 1}
	hb, err = b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}
