package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Config Loading Tests
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"VAULT_ADDRESS", "VAULT_TOKEN", "WATCHTOWER_NOTIFICATION_URL"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "docker-compose.yml", cfg.Output)
	assert.True(t, cfg.Validate)
	assert.False(t, cfg.Apply)
	assert.Equal(t, []string{"nvidia-smi", "-L"}, cfg.Probe.Command)
	assert.Equal(t, time.Duration(0), cfg.Command.Timeout)
	assert.Equal(t, "docker", cfg.Runtime.Binary)
	assert.Equal(t, "containrrr/watchtower", cfg.Watcher.Image)
	assert.Empty(t, cfg.Vault.Address)
	assert.Empty(t, cfg.Vault.Token)
	assert.Empty(t, cfg.Watcher.NotificationURL)
}

func TestLoadConfig_PassThroughVariables(t *testing.T) {
	t.Setenv("VAULT_ADDRESS", "https://vault.internal:8200")
	t.Setenv("VAULT_TOKEN", "s.secret")
	t.Setenv("WATCHTOWER_NOTIFICATION_URL", "slack://token@channel")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://vault.internal:8200", cfg.Secrets().VaultAddress)
	assert.Equal(t, "s.secret", cfg.Secrets().VaultToken)
	assert.Equal(t, "slack://token@channel", cfg.WatcherSettings().NotificationURL)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)
	configContent := `
output: /tmp/gpu-compose.yml
apply: true
probe:
  command: ["rocm-smi", "--showid"]
command:
  timeout: 45s
watcher:
  image: example/watcher:2
log:
  format: json
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile, nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gpu-compose.yml", cfg.Output)
	assert.True(t, cfg.Apply)
	assert.Equal(t, []string{"rocm-smi", "--showid"}, cfg.Probe.Command)
	assert.Equal(t, 45*time.Second, cfg.Command.Timeout)
	assert.Equal(t, "example/watcher:2", cfg.Watcher.Image)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPOSE_GEN_OUTPUT", "/srv/compose.yml")
	t.Setenv("COMPOSE_GEN_PROBE_COMMAND", "nvidia-smi --list-gpus")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/compose.yml", cfg.Output)
	assert.Equal(t, []string{"nvidia-smi", "--list-gpus"}, cfg.Probe.Command)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPOSE_GEN_OUTPUT", "/from/env.yml")

	fs := newFlagSet(os.Stderr)
	require.NoError(t, fs.Parse([]string{"--output", "/from/flag.yml", "--validate=false"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)

	assert.Equal(t, "/from/flag.yml", cfg.Output)
	assert.False(t, cfg.Validate)
}

func TestLoadConfig_UnchangedFlagsKeepDefaults(t *testing.T) {
	clearEnv(t)

	fs := newFlagSet(os.Stderr)
	require.NoError(t, fs.Parse(nil))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)

	assert.Equal(t, "docker-compose.yml", cfg.Output)
	assert.True(t, cfg.Validate)
	assert.False(t, cfg.Apply)
}
