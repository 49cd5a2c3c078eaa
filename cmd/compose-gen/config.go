package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/artpar/gpudeploy/internal/config"
	"github.com/artpar/gpudeploy/internal/core/compose"
	"github.com/artpar/gpudeploy/internal/shell/descriptor"
	"github.com/artpar/gpudeploy/internal/shell/docker"
	"github.com/artpar/gpudeploy/internal/shell/gpu"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override, e.g. COMPOSE_GEN_OUTPUT.
const EnvPrefix = "COMPOSE_GEN"

// =============================================================================
// Config Types
// =============================================================================

// Config holds all generator configuration.
type Config struct {
	Output   string           `mapstructure:"output"`
	Validate bool             `mapstructure:"validate"`
	Apply    bool             `mapstructure:"apply"`
	Probe    ProbeConfig      `mapstructure:"probe"`
	Command  CommandConfig    `mapstructure:"command"`
	Runtime  RuntimeConfig    `mapstructure:"runtime"`
	Vault    VaultConfig      `mapstructure:"vault"`
	Watcher  WatcherConfig    `mapstructure:"watcher"`
	Log      config.LogConfig `mapstructure:"log"`
}

// ProbeConfig holds the accelerator probe command line.
type ProbeConfig struct {
	Command []string `mapstructure:"command"`
}

// CommandConfig bounds external command execution.
type CommandConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// RuntimeConfig holds the container runtime CLI used by --apply.
type RuntimeConfig struct {
	Binary string `mapstructure:"binary"`
}

// VaultConfig holds the secrets endpoint passed through to workers.
// Read from VAULT_ADDRESS and VAULT_TOKEN.
type VaultConfig struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

// WatcherConfig configures the image-update watcher service.
type WatcherConfig struct {
	Image string `mapstructure:"image"`
	// NotificationURL is read from WATCHTOWER_NOTIFICATION_URL.
	NotificationURL string `mapstructure:"notification_url"`
}

// Secrets returns the values threaded into the worker catalog.
func (c *Config) Secrets() compose.Secrets {
	return compose.Secrets{VaultAddress: c.Vault.Address, VaultToken: c.Vault.Token}
}

// WatcherSettings returns the watcher service settings.
func (c *Config) WatcherSettings() compose.WatcherConfig {
	return compose.WatcherConfig{Image: c.Watcher.Image, NotificationURL: c.Watcher.NotificationURL}
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file, environment and, when flags is
// non-nil, the --output, --apply and --validate flags.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v, err := config.New(EnvPrefix, configPath)
	if err != nil {
		return nil, err
	}

	v.SetDefault("output", descriptor.DefaultPath)
	v.SetDefault("validate", true)
	v.SetDefault("apply", false)
	v.SetDefault("probe.command", gpu.DefaultProbe)
	v.SetDefault("command.timeout", "0s")
	v.SetDefault("runtime.binary", docker.DefaultBinary)
	v.SetDefault("watcher.image", compose.DefaultWatcherImage)

	// Pass-through variables keep their conventional unprefixed names.
	for key, env := range map[string]string{
		"vault.address":            "VAULT_ADDRESS",
		"vault.token":              "VAULT_TOKEN",
		"watcher.notification_url": "WATCHTOWER_NOTIFICATION_URL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if flags != nil {
		for _, name := range []string{"output", "apply", "validate"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return nil, fmt.Errorf("bind --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Output == "" {
		return nil, fmt.Errorf("output path must not be empty")
	}
	if len(cfg.Probe.Command) == 1 {
		// A single string from the environment is a whole command line.
		cfg.Probe.Command = strings.Fields(cfg.Probe.Command[0])
	}
	if len(cfg.Probe.Command) == 0 {
		return nil, fmt.Errorf("probe.command must not be empty")
	}

	return &cfg, nil
}
