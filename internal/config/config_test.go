package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chroma.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.JSONLogs)
	assert.True(t, cfg.Bridge.Enabled)
	assert.Equal(t, DefaultBridgeAddr, cfg.Bridge.Addr)
	assert.Equal(t, []string{DefaultOrigin}, cfg.Bridge.Origins)
	assert.Empty(t, cfg.Bridge.Token)
	assert.Equal(t, float32(DefaultWindowWidth), cfg.Window.Width)
	assert.Equal(t, float32(DefaultWindowHeight), cfg.Window.Height)
}

func TestFileOverlay(t *testing.T) {
	path := writeFile(t, `
log_level = "debug"
json_logs = true

[bridge]
addr = "127.0.0.1:9000"

[window]
width = 900

[fs]
scope = ["/srv/palettes"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.JSONLogs)
	assert.True(t, cfg.Bridge.Enabled, "untouched keys keep defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.Bridge.Addr)
	assert.Equal(t, float32(900), cfg.Window.Width)
	assert.Equal(t, float32(DefaultWindowHeight), cfg.Window.Height)
	assert.Equal(t, []string{"/srv/palettes"}, cfg.FS.Scope)
}

func TestUnknownKeysRejected(t *testing.T) {
	path := writeFile(t, "colour = \"red\"\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown keys: colour")
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(envLogLevel, "warn")
	t.Setenv(envJSONLogs, "1")
	t.Setenv(envBridgeEnabled, "false")
	t.Setenv(envBridgeAddr, "not-checked-when-disabled")
	t.Setenv(envFSScope, "/a"+string(os.PathListSeparator)+"/b")

	cfg, err := Load(writeFile(t, `log_level = "debug"`))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.JSONLogs)
	assert.False(t, cfg.Bridge.Enabled)
	assert.Equal(t, []string{"/a", "/b"}, cfg.FS.Scope)
}

func TestInvalidValues(t *testing.T) {
	t.Run("bool env", func(t *testing.T) {
		t.Setenv(envJSONLogs, "maybe")
		_, err := Load("")
		assert.ErrorContains(t, err, envJSONLogs)
	})

	t.Run("log level", func(t *testing.T) {
		t.Setenv(envLogLevel, "loud")
		_, err := Load("")
		assert.ErrorContains(t, err, "log_level")
	})

	t.Run("bridge addr", func(t *testing.T) {
		t.Setenv(envBridgeAddr, "nope")
		_, err := Load("")
		assert.ErrorContains(t, err, "bridge.addr")
	})

	t.Run("bridge origin", func(t *testing.T) {
		t.Setenv(envBridgeOrigins, "http://localhost:1420/app")
		_, err := Load("")
		assert.ErrorContains(t, err, "bridge.origins")
	})

	t.Run("window", func(t *testing.T) {
		_, err := Load(writeFile(t, "[window]\nheight = 0\n"))
		assert.ErrorContains(t, err, "window size")
	})
}

func TestBridgeEnvOverrides(t *testing.T) {
	t.Setenv(envBridgeOrigins, "http://localhost:5173, tauri://localhost")
	t.Setenv(envBridgeToken, "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:5173", "tauri://localhost"}, cfg.Bridge.Origins)
	assert.Equal(t, "s3cret", cfg.Bridge.Token)
}
