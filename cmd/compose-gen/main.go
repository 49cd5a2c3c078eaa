// Package main provides the compose-gen binary.
//
// compose-gen detects the local GPUs and writes a compose descriptor with
// one service per worker type per GPU, plus the image-update watcher. An
// optional tier flag narrows every worker's routing keys and queues.
//
// Usage:
//
//	compose-gen [--deploy-large-job | --deploy-small-job | --deploy-critical-job]
//	    [--output docker-compose.yml] [--apply] [--config <file>]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/artpar/gpudeploy/internal/config"
	"github.com/artpar/gpudeploy/internal/core/compose"
	"github.com/artpar/gpudeploy/internal/core/tier"
	"github.com/artpar/gpudeploy/internal/shell/command"
	"github.com/artpar/gpudeploy/internal/shell/descriptor"
	"github.com/artpar/gpudeploy/internal/shell/docker"
	"github.com/artpar/gpudeploy/internal/shell/gpu"
	"github.com/spf13/pflag"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess      = 0
	ExitUsageError   = 1
	ExitConfigError  = 2
	ExitRuntimeError = 3
	ExitBuildError   = 4
	ExitIOError      = 5
)

// RunnerFactory builds the command runner used for the probe and --apply.
type RunnerFactory func(cfg *Config, logger *slog.Logger) command.Runner

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, defaultRunner))
}

func defaultRunner(cfg *Config, logger *slog.Logger) command.Runner {
	return command.NewExecRunner(logger, cfg.Command.Timeout)
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("compose-gen", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetNormalizeFunc(config.NormalizeFlagName)

	fs.Bool("deploy-large-job", false, "Keep only large routing keys and queues")
	fs.Bool("deploy-small-job", false, "Keep only small inference routing keys and queues")
	fs.Bool("deploy-critical-job", false, "Keep only critical routing keys and queues")
	fs.String("output", descriptor.DefaultPath, "Descriptor output path")
	fs.Bool("apply", false, "Run compose down and up with the written descriptor")
	fs.Bool("validate", true, "Validate the descriptor against the compose schema before writing")
	fs.String("config", "", "Path to config file")
	fs.Bool("version", false, "Print version and exit")
	return fs
}

func run(args []string, stdout, stderr io.Writer, newRunner RunnerFactory) int {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsageError
	}

	if v, _ := fs.GetBool("version"); v {
		fmt.Fprintf(stdout, "compose-gen %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	large, _ := fs.GetBool("deploy-large-job")
	small, _ := fs.GetBool("deploy-small-job")
	critical, _ := fs.GetBool("deploy-critical-job")
	deployTier, err := tier.FromFlags(large, small, critical)
	if err != nil {
		fmt.Fprintf(stderr, "usage error: %v\n", err)
		return ExitUsageError
	}

	configPath, _ := fs.GetString("config")
	cfg, err := LoadConfig(configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := config.SetupLogger(cfg.Log, stdout)
	runner := newRunner(cfg, logger)
	ctx := context.Background()

	count := gpu.NewDetector(runner, cfg.Probe.Command, logger).DetectAcceleratorCount(ctx)
	logger.Info("detected accelerators", "count", count, "tier", deployTier.String())

	d, err := compose.BuildDescriptor(compose.BuildParams{
		AcceleratorCount: count,
		Tier:             deployTier,
		Templates:        compose.Catalog(cfg.Secrets()),
		Watcher:          cfg.WatcherSettings(),
	})
	if err != nil {
		logger.Error("failed to build descriptor", "error", err)
		return ExitBuildError
	}

	if err := descriptor.WriteDescriptor(d, cfg.Output, descriptor.Options{Validate: cfg.Validate}); err != nil {
		logger.Error("failed to write descriptor", "path", cfg.Output, "error", err)
		if errors.Is(err, descriptor.ErrWriteFailed) {
			return ExitIOError
		}
		return ExitBuildError
	}
	logger.Info("descriptor written",
		"path", cfg.Output,
		"services", len(d.Services),
		"workers", d.WorkerCount(),
	)

	if !cfg.Apply {
		return ExitSuccess
	}
	return apply(ctx, docker.NewCLIClient(runner, cfg.Runtime.Binary), cfg.Output, logger)
}

// apply replaces the running project with the one in file.
func apply(ctx context.Context, cli *docker.CLIClient, file string, logger *slog.Logger) int {
	if err := cli.ComposeDown(ctx, file); err != nil {
		logger.Error("failed to stop previous project", "error", err)
		return command.ExitCode(err, ExitRuntimeError)
	}
	if err := cli.ComposeUp(ctx, file); err != nil {
		logger.Error("failed to start project", "error", err)
		return command.ExitCode(err, ExitRuntimeError)
	}
	logger.Info("descriptor applied", "path", file)
	return ExitSuccess
}
