package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogCheckBundled(t *testing.T) {
	out, err := runCLI(t, "catalog", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "bundled content: ok")
	assert.Contains(t, out, "fake-link")
}

func TestCatalogCheckInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("exposure:\n  - {id: a, channel: pager}\n"), 0o644))

	_, err := runCLI(t, "catalog", "check", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog invalid")
	assert.Contains(t, err.Error(), "unknown channel")
}

func TestLoadConfigFallsBackWhenMissing(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.yml")
	t.Cleanup(func() { configPath = defaultConfigPath })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8003", cfg.Server.Port)
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "config.yml")
	t.Cleanup(func() { configPath = defaultConfigPath })
	require.NoError(t, os.WriteFile(configPath, []byte("training:\n  policy: adaptive\n"), 0o644))

	_, err := loadConfig()
	assert.Error(t, err)
}
