// Package command runs external processes such as the container runtime
// and the accelerator probe.
package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes an external command and waits for it to finish.
// A non-zero exit is reported as an *Error wrapping ErrCommandFailed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands on the local host.
type ExecRunner struct {
	// Timeout bounds each invocation; zero means no limit.
	Timeout time.Duration
	// Stdout and Stderr, when set, receive a live copy of the process output.
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExecRunner creates an ExecRunner that logs each command it runs.
func NewExecRunner(logger *slog.Logger, timeout time.Duration) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{Timeout: timeout, Logger: logger}
}

// Run executes name with args.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	line := append([]string{name}, args...)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	if r.Logger != nil {
		r.Logger.Info("running command", "command", strings.Join(line, " "))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = tee(&stdout, r.Stdout)
	cmd.Stderr = tee(&stderr, r.Stderr)
	if r.Timeout > 0 {
		// Children can hold the output pipes open after the kill.
		cmd.WaitDelay = time.Second
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	cErr := &Error{Command: line, ExitCode: -1, Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound):
		cErr.Err = ErrCommandUnavailable
	case ctx.Err() == context.DeadlineExceeded:
		cErr.Err = ErrCommandTimeout
	case errors.As(err, &exitErr):
		cErr.ExitCode = exitErr.ExitCode()
		cErr.Err = ErrCommandFailed
	default:
		// e.g. permission denied
		cErr.Err = ErrCommandUnavailable
	}
	return res, cErr
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
