package command

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrCommandFailed      = errors.New("external command failed")
	ErrCommandUnavailable = errors.New("external command unavailable")
	ErrCommandTimeout     = errors.New("external command timed out")
)

// Error wraps a failed invocation with the command line and exit status.
type Error struct {
	Command  []string
	ExitCode int // -1 when the process never exited normally
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	line := strings.Join(e.Command, " ")
	msg := strings.TrimSpace(e.Stderr)
	switch {
	case e.ExitCode >= 0 && msg != "":
		return fmt.Sprintf("%s: exit status %d: %s", line, e.ExitCode, msg)
	case e.ExitCode >= 0:
		return fmt.Sprintf("%s: exit status %d", line, e.ExitCode)
	default:
		return fmt.Sprintf("%s: %v", line, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status carried by err, or fallback when err
// does not describe a process that exited.
func ExitCode(err error, fallback int) int {
	var cErr *Error
	if errors.As(err, &cErr) && cErr.ExitCode > 0 {
		return cErr.ExitCode
	}
	return fallback
}
