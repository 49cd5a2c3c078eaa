// Package docker drives the container runtime, either through the docker
// CLI or the Docker Engine API.
package docker

import (
	"context"
	"fmt"

	"github.com/docker/go-connections/nat"
)

// =============================================================================
// Container Types
// =============================================================================

// ContainerSpec defines a container to run detached.
type ContainerSpec struct {
	Name  string
	Image string
	// Ports are publish specs in "host:container[/proto]" form.
	Ports []string
}

// ValidatePorts checks every publish spec.
func ValidatePorts(ports []string) error {
	for _, p := range ports {
		if _, err := nat.ParsePortSpec(p); err != nil {
			return NewDockerError("ValidatePorts", "", "", fmt.Sprintf("%q: %v", p, err), ErrInvalidPortSpec)
		}
	}
	return nil
}

// =============================================================================
// Runtime Interface
// =============================================================================

// Runtime is the subset of container lifecycle the deployer needs.
type Runtime interface {
	// RemoveContainer force-removes the named container. It returns an
	// error wrapping ErrContainerNotFound when no such container exists.
	RemoveContainer(ctx context.Context, name string) error
	// RunContainer creates and starts a detached container, returning its ID.
	RunContainer(ctx context.Context, spec ContainerSpec) (string, error)
	Close() error
}

// Runtime modes.
const (
	ModeCLI = "cli"
	ModeAPI = "api"
)
