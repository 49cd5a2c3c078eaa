package command

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Success(t *testing.T) {
	r := NewExecRunner(nil, 0)
	res, err := r.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(res.Stdout))
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := NewExecRunner(nil, 0)
	_, err := r.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)

	var cErr *Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 3, cErr.ExitCode)
	assert.Equal(t, []string{"sh", "-c", "echo boom >&2; exit 3"}, cErr.Command)
	assert.Contains(t, cErr.Error(), "exit status 3: boom")
	assert.Equal(t, 3, ExitCode(err, 99))
}

func TestExecRunner_Missing(t *testing.T) {
	r := NewExecRunner(nil, 0)
	_, err := r.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandUnavailable)
	assert.Equal(t, 99, ExitCode(err, 99))
}

func TestExecRunner_Timeout(t *testing.T) {
	r := NewExecRunner(nil, 50*time.Millisecond)
	_, err := r.Run(context.Background(), "sleep", "5")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandTimeout)
}

func TestExecRunner_TeesOutput(t *testing.T) {
	var live bytes.Buffer
	r := NewExecRunner(nil, 0)
	r.Stdout = &live

	res, err := r.Run(context.Background(), "sh", "-c", "echo streamed")
	require.NoError(t, err)
	assert.Equal(t, "streamed\n", live.String())
	assert.Equal(t, "streamed\n", string(res.Stdout))
}

func TestExitCode_NonCommandError(t *testing.T) {
	assert.Equal(t, 7, ExitCode(assert.AnError, 7))
}
