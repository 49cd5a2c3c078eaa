package docker

import (
	"context"
	"errors"
	"strings"

	"github.com/artpar/gpudeploy/internal/shell/command"
)

// DefaultBinary is the container runtime CLI.
const DefaultBinary = "docker"

// CLIClient implements Runtime by invoking the docker CLI.
type CLIClient struct {
	runner command.Runner
	binary string
}

// NewCLIClient creates a CLI-backed runtime. An empty binary uses DefaultBinary.
func NewCLIClient(runner command.Runner, binary string) *CLIClient {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLIClient{runner: runner, binary: binary}
}

// RemoveContainer runs "docker rm -f <name>".
func (c *CLIClient) RemoveContainer(ctx context.Context, name string) error {
	_, err := c.runner.Run(ctx, c.binary, "rm", "-f", name)
	if err != nil {
		if isNoSuchContainer(err) {
			return NewDockerError("RemoveContainer", "container", name, "container not found", ErrContainerNotFound)
		}
		return NewDockerError("RemoveContainer", "container", name, "remove failed", err)
	}
	return nil
}

// RunContainer runs "docker run -d --name <name> [-p <port>]... <image>".
func (c *CLIClient) RunContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	args := []string{"run", "-d", "--name", spec.Name}
	for _, p := range spec.Ports {
		args = append(args, "-p", p)
	}
	args = append(args, spec.Image)

	res, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		return "", NewDockerError("RunContainer", "container", spec.Name, "run failed", err)
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// ComposeDown runs "docker compose -f <file> down".
func (c *CLIClient) ComposeDown(ctx context.Context, file string) error {
	if _, err := c.runner.Run(ctx, c.binary, "compose", "-f", file, "down"); err != nil {
		return NewDockerError("ComposeDown", "project", file, "down failed", err)
	}
	return nil
}

// ComposeUp runs "docker compose -f <file> up -d".
func (c *CLIClient) ComposeUp(ctx context.Context, file string) error {
	if _, err := c.runner.Run(ctx, c.binary, "compose", "-f", file, "up", "-d"); err != nil {
		return NewDockerError("ComposeUp", "project", file, "up failed", err)
	}
	return nil
}

// Close is a no-op for the CLI runtime.
func (c *CLIClient) Close() error {
	return nil
}

func isNoSuchContainer(err error) bool {
	var cErr *command.Error
	if !errors.As(err, &cErr) {
		return false
	}
	return strings.Contains(strings.ToLower(cErr.Stderr), "no such container")
}
