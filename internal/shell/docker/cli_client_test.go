package docker

import (
	"context"
	"testing"

	"github.com/artpar/gpudeploy/internal/shell/command"
	"github.com/artpar/gpudeploy/internal/shell/command/commandtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CLI Client Tests
// =============================================================================

func TestCLIClient_RemoveContainer(t *testing.T) {
	rec := commandtest.New(nil)
	cli := NewCLIClient(rec, "")

	require.NoError(t, cli.RemoveContainer(context.Background(), "bar"))
	assert.Equal(t, []string{"docker rm -f bar"}, rec.Lines())
}

func TestCLIClient_RemoveContainer_NotFound(t *testing.T) {
	rec := commandtest.New(map[string]commandtest.Response{
		"docker rm -f bar": {ExitCode: 1, Stderr: "Error response from daemon: No such container: bar"},
	})
	err := NewCLIClient(rec, "").RemoveContainer(context.Background(), "bar")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestCLIClient_RemoveContainer_OtherFailure(t *testing.T) {
	rec := commandtest.New(map[string]commandtest.Response{
		"docker rm -f bar": {ExitCode: 125, Stderr: "Cannot connect to the Docker daemon"},
	})
	err := NewCLIClient(rec, "").RemoveContainer(context.Background(), "bar")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrContainerNotFound)
	assert.ErrorIs(t, err, command.ErrCommandFailed)
	assert.Equal(t, 125, command.ExitCode(err, 1))
}

func TestCLIClient_RunContainer(t *testing.T) {
	rec := commandtest.New(map[string]commandtest.Response{
		"docker run -d --name bar -p 8080:80 foo:latest": {Stdout: "abc123\n"},
	})
	id, err := NewCLIClient(rec, "").RunContainer(context.Background(), ContainerSpec{
		Name:  "bar",
		Image: "foo:latest",
		Ports: []string{"8080:80"},
	})

	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, []string{"docker run -d --name bar -p 8080:80 foo:latest"}, rec.Lines())
}

func TestCLIClient_RunContainer_Failure(t *testing.T) {
	rec := commandtest.New(map[string]commandtest.Response{
		"docker run -d --name bar foo:latest": {ExitCode: 125, Stderr: "Conflict"},
	})
	_, err := NewCLIClient(rec, "").RunContainer(context.Background(), ContainerSpec{Name: "bar", Image: "foo:latest"})

	require.Error(t, err)
	var dErr *DockerError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "RunContainer", dErr.Op)
	assert.Equal(t, 125, command.ExitCode(err, 1))
}

func TestCLIClient_CustomBinary(t *testing.T) {
	rec := commandtest.New(nil)
	require.NoError(t, NewCLIClient(rec, "podman").RemoveContainer(context.Background(), "bar"))
	assert.Equal(t, []string{"podman rm -f bar"}, rec.Lines())
}

func TestCLIClient_Compose(t *testing.T) {
	rec := commandtest.New(nil)
	cli := NewCLIClient(rec, "")

	require.NoError(t, cli.ComposeDown(context.Background(), "docker-compose.yml"))
	require.NoError(t, cli.ComposeUp(context.Background(), "docker-compose.yml"))
	assert.Equal(t, []string{
		"docker compose -f docker-compose.yml down",
		"docker compose -f docker-compose.yml up -d",
	}, rec.Lines())
}

// =============================================================================
// Port Validation Tests
// =============================================================================

func TestValidatePorts(t *testing.T) {
	assert.NoError(t, ValidatePorts([]string{"8080:80", "127.0.0.1:9000:9000/udp"}))
	assert.ErrorIs(t, ValidatePorts([]string{"not-a-port"}), ErrInvalidPortSpec)
}

// =============================================================================
// Runtime Selection Tests
// =============================================================================

func TestNewRuntime_CLI(t *testing.T) {
	cli := NewCLIClient(commandtest.New(nil), "")
	rt, err := NewRuntime(ModeCLI, cli, "")
	require.NoError(t, err)
	assert.Same(t, cli, rt)
}

func TestNewRuntime_Unknown(t *testing.T) {
	_, err := NewRuntime("ssh", NewCLIClient(commandtest.New(nil), ""), "")
	assert.Error(t, err)
}
