package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_OverridesDefaults(t *testing.T) {
	p := writeFile(t, `
[window]
title = "demo"
headless = true

[engine]
tick_rate = "33ms"
workers = 2
max_frames = 10

[logging]
level = "debug"
file = ""
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.True(t, cfg.Window.Headless)
	assert.Equal(t, 1280, cfg.Window.Width, "unset keys keep their defaults")
	assert.Equal(t, 33*time.Millisecond, cfg.Engine.TickRate)
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.Equal(t, uint64(10), cfg.Engine.MaxFrames)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.Equal(t, "example", cfg.Scene.AssetSentinel)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	var le *LoadError
	require.ErrorAs(t, err, &le)

	_, err = Load(writeFile(t, "[window\nwidth = 3"))
	require.ErrorAs(t, err, &le)

	_, err = Load(writeFile(t, "[window]\nwidth = 0\n"))
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "must be positive")

	_, err = Load(writeFile(t, "[database]\nenabled = true\ndsn = \"\"\n"))
	assert.Error(t, err)
}
