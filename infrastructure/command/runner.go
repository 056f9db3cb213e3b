package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner defines the interface for running external commands
// This allows mocking exec.Command in tests
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner is the production implementation using os/exec.
// Child stdout is never attached to ours; stderr is captured for error
// messages and optionally mirrored to Stderr.
type ExecRunner struct {
	Stderr io.Writer
}

// NewExecRunner creates a runner that mirrors child stderr to w (nil discards it)
func NewExecRunner(w io.Writer) *ExecRunner {
	return &ExecRunner{Stderr: w}
}

// Run executes a command and returns any error
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = r.stderr(&stderr)
	if err := cmd.Run(); err != nil {
		return &Error{Name: name, Err: err, Stderr: stderr.String()}
	}
	return nil
}

// Output executes a command and returns its stdout
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = r.stderr(&stderr)
	if err := cmd.Run(); err != nil {
		return nil, &Error{Name: name, Err: err, Stderr: stderr.String()}
	}
	return stdout.Bytes(), nil
}

func (r *ExecRunner) stderr(buf *bytes.Buffer) io.Writer {
	if r.Stderr == nil {
		return buf
	}
	return io.MultiWriter(buf, r.Stderr)
}

// Error is returned when an external command fails to start or exits non-zero
type Error struct {
	Name   string
	Err    error
	Stderr string
}

// Error prefers the tool's own diagnostic over the bare exit status
func (e *Error) Error() string {
	if msg := Summary(e.Stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Summary picks the most useful line from a tool's stderr: the last line
// starting with "ERROR:", otherwise the last non-empty line
func Summary(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
