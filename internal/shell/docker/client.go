package docker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// =============================================================================
// Docker Engine API Client
// =============================================================================

// EngineClient implements Runtime using the Docker SDK.
type EngineClient struct {
	cli *client.Client
}

// NewEngineClient creates a Docker Engine API client.
// If host is empty, it uses the default Docker host from environment.
func NewEngineClient(host string) (*EngineClient, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewDockerError("NewEngineClient", "", "", err.Error(), ErrConnectionFailed)
	}
	return &EngineClient{cli: cli}, nil
}

// Ping checks if Docker daemon is reachable.
func (d *EngineClient) Ping(ctx context.Context) error {
	if _, err := d.cli.Ping(ctx); err != nil {
		return NewDockerError("Ping", "", "", fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	return nil
}

// Close closes the Docker client connection.
func (d *EngineClient) Close() error {
	return d.cli.Close()
}

// RemoveContainer force-removes a container by name.
func (d *EngineClient) RemoveContainer(ctx context.Context, name string) error {
	err := d.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return NewDockerError("RemoveContainer", "container", name, "container not found", ErrContainerNotFound)
		}
		return NewDockerError("RemoveContainer", "container", name, err.Error(), err)
	}
	return nil
}

// RunContainer pulls the image if it is not present, then creates and
// starts the container.
func (d *EngineClient) RunContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	exposed, bindings, err := nat.ParsePortSpecs(spec.Ports)
	if err != nil {
		return "", NewDockerError("RunContainer", "container", spec.Name, err.Error(), ErrInvalidPortSpec)
	}

	if err := d.ensureImage(ctx, spec.Image); err != nil {
		return "", err
	}

	config := &container.Config{
		Image:        spec.Image,
		ExposedPorts: exposed,
	}
	hostConfig := &container.HostConfig{
		PortBindings: bindings,
	}

	resp, err := d.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	if err != nil {
		if errdefs.IsConflict(err) {
			return "", NewDockerError("RunContainer", "container", spec.Name, "container already exists", ErrContainerAlreadyExists)
		}
		return "", NewDockerError("RunContainer", "container", spec.Name, err.Error(), err)
	}

	if err := d.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		if strings.Contains(err.Error(), "port is already allocated") {
			return "", NewDockerError("RunContainer", "container", spec.Name, err.Error(), ErrPortAlreadyAllocated)
		}
		return "", NewDockerError("RunContainer", "container", spec.Name, err.Error(), err)
	}
	return resp.ID, nil
}

func (d *EngineClient) ensureImage(ctx context.Context, ref string) error {
	_, err := d.cli.ImageInspect(ctx, ref)
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return NewDockerError("ImageInspect", "image", ref, err.Error(), err)
	}

	reader, err := d.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return NewDockerError("PullImage", "image", ref, "image not found", ErrImageNotFound)
		}
		return NewDockerError("PullImage", "image", ref, err.Error(), ErrImagePullFailed)
	}
	defer reader.Close()

	// Drain the reader to complete the pull
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return NewDockerError("PullImage", "image", ref, err.Error(), ErrImagePullFailed)
	}
	return nil
}

// NewRuntime returns the runtime for mode.
func NewRuntime(mode string, cli *CLIClient, host string) (Runtime, error) {
	switch mode {
	case "", ModeCLI:
		return cli, nil
	case ModeAPI:
		engine, err := NewEngineClient(host)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
	return nil, fmt.Errorf("unknown runtime mode %q", mode)
}
