// Package main provides the deploy-container binary.
//
// It replaces one named container with a fresh one from the given image:
// the existing container is force-removed, then a new one is started
// detached with the configured port mapping.
//
// Usage:
//
//	deploy-container (--deploy-large-job | --deploy-small-job | --deploy-critical-job) \
//	    --image <ref> --container-name <name> [--config <file>]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/artpar/gpudeploy/internal/config"
	"github.com/artpar/gpudeploy/internal/core/tier"
	"github.com/artpar/gpudeploy/internal/shell/command"
	"github.com/artpar/gpudeploy/internal/shell/docker"
	"github.com/google/uuid"
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
	ExitRuntimeError = 3 // used when a failure carries no exit status of its own
)

// RuntimeFactory builds the container runtime for a run.
type RuntimeFactory func(cfg *Config, logger *slog.Logger) (docker.Runtime, error)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, defaultRuntime))
}

func defaultRuntime(cfg *Config, logger *slog.Logger) (docker.Runtime, error) {
	runner := command.NewExecRunner(logger, cfg.Command.Timeout)
	runner.Stdout = os.Stdout
	runner.Stderr = os.Stderr
	return docker.NewRuntime(cfg.Runtime.Mode, docker.NewCLIClient(runner, cfg.Runtime.Binary), cfg.Runtime.Host)
}

// options holds parsed command line flags.
type options struct {
	large, small, critical bool
	image, containerName   string
	configPath             string
	showVersion            bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var opts options
	fs := pflag.NewFlagSet("deploy-container", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetNormalizeFunc(config.NormalizeFlagName)

	fs.BoolVar(&opts.large, "deploy-large-job", false, "Deploy with the large tier")
	fs.BoolVar(&opts.small, "deploy-small-job", false, "Deploy with the small tier")
	fs.BoolVar(&opts.critical, "deploy-critical-job", false, "Deploy with the critical tier")
	fs.StringVar(&opts.image, "image", "", "Container image reference (required)")
	fs.StringVar(&opts.containerName, "container-name", "", "Container name (required)")
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &opts, nil
}

func run(args []string, stdout, stderr io.Writer, newRuntime RuntimeFactory) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsageError
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "deploy-container %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	deployTier, err := tier.Require(opts.large, opts.small, opts.critical)
	if err != nil {
		fmt.Fprintf(stderr, "usage error: %v\n", err)
		return ExitUsageError
	}
	if opts.image == "" || opts.containerName == "" {
		fmt.Fprintln(stderr, "usage error: --image and --container-name are required")
		return ExitUsageError
	}

	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := config.SetupLogger(cfg.Log, stdout).With("run_id", uuid.NewString())
	logger.Info("deploying container",
		"tier", deployTier.String(),
		"image", opts.image,
		"container", opts.containerName,
		"runtime", cfg.Runtime.Mode,
	)

	rt, err := newRuntime(cfg, logger)
	if err != nil {
		logger.Error("failed to create runtime", "error", err)
		return ExitRuntimeError
	}
	defer rt.Close()

	return deploy(context.Background(), rt, docker.ContainerSpec{
		Name:  opts.containerName,
		Image: opts.image,
		Ports: cfg.Container.Ports,
	}, logger)
}

// deploy removes any container named like the target and starts a new one.
func deploy(ctx context.Context, rt docker.Runtime, spec docker.ContainerSpec, logger *slog.Logger) int {
	if err := rt.RemoveContainer(ctx, spec.Name); err != nil {
		if !errors.Is(err, docker.ErrContainerNotFound) {
			logger.Error("failed to remove existing container", "container", spec.Name, "error", err)
			return command.ExitCode(err, ExitRuntimeError)
		}
		logger.Info("no existing container to remove", "container", spec.Name)
	}

	id, err := rt.RunContainer(ctx, spec)
	if err != nil {
		logger.Error("failed to start container", "container", spec.Name, "error", err)
		return command.ExitCode(err, ExitRuntimeError)
	}

	logger.Info("container started", "container", spec.Name, "id", id)
	return ExitSuccess
}
