// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It runs wsa in-process against an isolated workspace with a local
// upstream directory, so sync runs never touch the network.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/workspace-architect/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Stderr contains the captured standard error, including log output.
	Stderr string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness provides a test harness for running E2E CLI tests.
// It manages environment isolation, the workspace directory, and output
// capture.
type Harness struct {
	t   *testing.T
	dir string
}

// NewHarness creates a harness with an empty workspace. WSA_CONFIG points
// at the workspace config file and GITHUB_TOKEN is cleared.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	h := &Harness{t: t, dir: t.TempDir()}
	t.Setenv("WSA_CONFIG", h.ConfigPath())
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("WSA_LOG_LEVEL", "")
	t.Setenv("WSA_LOG_FORMAT", "")
	return h
}

// Dir returns the workspace root.
func (h *Harness) Dir() string {
	return h.dir
}

// ConfigPath returns the workspace config file path.
func (h *Harness) ConfigPath() string {
	return filepath.Join(h.dir, "upstream.config.yaml")
}

// Run executes a CLI command with the given arguments and captures stdout
// and stderr.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	if len(args) == 0 || args[0] != "wsa" {
		args = append([]string{"wsa"}, args...)
	}

	stdout, restoreStdout := h.capture(&os.Stdout)
	stderr, restoreStderr := h.capture(&os.Stderr)

	cmdErr := cli.Run(context.Background(), args)

	restoreStdout()
	restoreStderr()

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}

// capture redirects *f into a pipe read concurrently, so output larger than
// the pipe buffer cannot block the command. restore closes the pipe, puts
// *f back and waits for the reader.
func (h *Harness) capture(f **os.File) (*bytes.Buffer, func()) {
	h.t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create pipe: %v", err)
	}
	old := *f
	*f = w

	var buf bytes.Buffer
	var copyErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, copyErr = io.Copy(&buf, r)
	}()

	return &buf, func() {
		if err := w.Close(); err != nil {
			h.t.Fatalf("failed to close pipe writer: %v", err)
		}
		*f = old
		<-done
		if copyErr != nil {
			h.t.Fatalf("failed to read captured output: %v", copyErr)
		}
	}
}
