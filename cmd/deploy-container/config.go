package main

import (
	"fmt"
	"time"

	"github.com/artpar/gpudeploy/internal/config"
	"github.com/artpar/gpudeploy/internal/shell/docker"
)

// EnvPrefix prefixes every environment override, e.g. DEPLOY_CONTAINER_RUNTIME_MODE.
const EnvPrefix = "DEPLOY_CONTAINER"

// =============================================================================
// Config Types
// =============================================================================

// Config holds all deployer configuration.
type Config struct {
	Runtime   RuntimeConfig    `mapstructure:"runtime"`
	Container ContainerConfig  `mapstructure:"container"`
	Command   CommandConfig    `mapstructure:"command"`
	Log       config.LogConfig `mapstructure:"log"`
}

// RuntimeConfig selects how the container runtime is driven.
type RuntimeConfig struct {
	Mode   string `mapstructure:"mode"`   // "cli" or "api"
	Binary string `mapstructure:"binary"` // CLI binary for mode "cli"
	Host   string `mapstructure:"host"`   // Engine API host for mode "api"
}

// ContainerConfig holds settings applied to the started container.
type ContainerConfig struct {
	Ports []string `mapstructure:"ports"`
}

// CommandConfig bounds external command execution.
type CommandConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v, err := config.New(EnvPrefix, configPath)
	if err != nil {
		return nil, err
	}

	v.SetDefault("runtime.mode", docker.ModeCLI)
	v.SetDefault("runtime.binary", docker.DefaultBinary)
	v.SetDefault("runtime.host", "")
	v.SetDefault("container.ports", []string{"8080:80"})
	v.SetDefault("command.timeout", "0s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Runtime.Mode != docker.ModeCLI && cfg.Runtime.Mode != docker.ModeAPI {
		return nil, fmt.Errorf("runtime.mode must be %q or %q, got %q", docker.ModeCLI, docker.ModeAPI, cfg.Runtime.Mode)
	}
	if err := docker.ValidatePorts(cfg.Container.Ports); err != nil {
		return nil, err
	}

	return &cfg, nil
}
