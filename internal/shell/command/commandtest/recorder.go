// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"strings"
	"sync"

	"github.com/artpar/gpudeploy/internal/shell/command"
)

// Response is the scripted outcome of one command.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int  // non-zero fails with command.ErrCommandFailed
	Missing  bool // fails with command.ErrCommandUnavailable
}

// Recorder records every invocation and answers from Responses, keyed by
// the full command line joined with spaces. Unknown commands succeed
// with empty output.
type Recorder struct {
	mu        sync.Mutex
	Responses map[string]Response
	Calls     [][]string
}

// New creates a Recorder with the given responses.
func New(responses map[string]Response) *Recorder {
	if responses == nil {
		responses = map[string]Response{}
	}
	return &Recorder{Responses: responses}
}

// Run implements command.Runner.
func (r *Recorder) Run(_ context.Context, name string, args ...string) (command.Result, error) {
	line := append([]string{name}, args...)

	r.mu.Lock()
	r.Calls = append(r.Calls, line)
	resp := r.Responses[strings.Join(line, " ")]
	r.mu.Unlock()

	res := command.Result{Stdout: []byte(resp.Stdout), Stderr: []byte(resp.Stderr)}
	switch {
	case resp.Missing:
		return res, &command.Error{Command: line, ExitCode: -1, Err: command.ErrCommandUnavailable}
	case resp.ExitCode != 0:
		return res, &command.Error{Command: line, ExitCode: resp.ExitCode, Stderr: resp.Stderr, Err: command.ErrCommandFailed}
	}
	return res, nil
}

// Lines returns each recorded call joined with spaces.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}
