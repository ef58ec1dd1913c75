package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rhelper/razerctl/internal/config"
	"github.com/rhelper/razerctl/internal/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "razerctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
interval_ms = 250
log_level = "debug"
status_messages = true
telemetry = true
database = "/path/to/events.db"

[ac_profile]
performance_mode = "Hyperboost"
logo_mode = "Static"
keyboard_brightness = 80
lights_always_on = true
battery_care = false

[battery_profile]
performance_mode = "Silent"
logo_mode = "Off"
keyboard_brightness = 20
lights_always_on = false
battery_care = true
`)
	t.Setenv(config.EnvConfig, path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.IntervalMs, "Expected IntervalMs 250")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.True(t, cfg.StatusMessages, "Expected StatusMessages true")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/events.db", cfg.Database)

	assert.Equal(t, device.PerfHyperboost, cfg.ACProfile.PerfMode())
	assert.Equal(t, device.LogoStatic, cfg.ACProfile.Logo())
	assert.Equal(t, uint8(80), cfg.ACProfile.KeyboardBrightness)
	assert.True(t, cfg.ACProfile.LightsAlwaysOn)
	assert.False(t, cfg.ACProfile.BatteryCare)

	assert.Equal(t, device.PerfSilent, cfg.BatteryProfile.PerfMode())
	assert.Equal(t, device.LogoOff, cfg.BatteryProfile.Logo())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(config.EnvConfig, "")

	// Run from an empty directory so a developer's local config file cannot
	// leak into the defaults check
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultIntervalMs, cfg.IntervalMs)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.StatusMessages)
	assert.False(t, cfg.Telemetry)

	assert.Equal(t, device.PerfPerformance, cfg.ACProfile.PerfMode())
	assert.Equal(t, device.PerfBattery, cfg.BatteryProfile.PerfMode())
	assert.Equal(t, uint8(50), cfg.ACProfile.KeyboardBrightness)
	assert.True(t, cfg.ACProfile.BatteryCare)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `log_level = "noisy"`)
	t.Setenv(config.EnvConfig, path)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoadInvalidProfileMode(t *testing.T) {
	path := writeConfig(t, `
[ac_profile]
performance_mode = "Turbo"
`)
	t.Setenv(config.EnvConfig, path)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown performance mode in ac_profile")
}

func TestLoadInvalidInterval(t *testing.T) {
	path := writeConfig(t, `interval_ms = 0`)
	t.Setenv(config.EnvConfig, path)

	_, err := config.Load()
	require.Error(t, err)
}

func TestTelemetryRequiresDatabase(t *testing.T) {
	path := writeConfig(t, `telemetry = true`)
	t.Setenv(config.EnvConfig, path)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry enabled but no database path configured")
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(config.EnvConfig, filepath.Join(t.TempDir(), "absent.toml"))

	_, err := config.Load()
	require.Error(t, err)
}
