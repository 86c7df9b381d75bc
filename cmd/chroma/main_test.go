package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chroma.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\n[bridge]\naddr = \"127.0.0.1:7000\"\n"), 0o600))

	cfg, err := resolveConfig(flags{configPath: path, logLevel: "error", noBridge: true})
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:7000", cfg.Bridge.Addr)
	assert.False(t, cfg.Bridge.Enabled)
}

func TestResolveConfigValidatesFlags(t *testing.T) {
	_, err := resolveConfig(flags{bridgeAddr: "no-port"})
	assert.ErrorContains(t, err, "bridge.addr")

	_, err = resolveConfig(flags{logLevel: "chatty"})
	assert.ErrorContains(t, err, "log_level")
}

func TestRootFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "bridge-addr", "no-bridge"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
}
