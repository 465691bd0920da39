// Package execx runs external programs to completion and captures their
// output. It is the only place that spawns processes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/cochaviz/reboot-to/internal/logging"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs external programs. Run blocks until the program exits and
// returns a non-nil error when it could not be started or exited non-zero.
// Probe reports whether the program can be started at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
	Probe(ctx context.Context, name string) error
}

// CommandLine joins a program and its arguments for logs and lookups.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

var _ Runner = &ExecRunner{}

// ExecRunner runs programs through os/exec.
type ExecRunner struct {
	Logger *slog.Logger
}

// NewExecRunner returns a runner logging through logger.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{Logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	logger := r.logger().With("command", CommandLine(name, args...))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode(err),
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		logger.Debug("command failed", "exit_code", result.ExitCode, "error", err)
		return result, err
	}
	logger.Debug("command finished")
	return result, nil
}

// Probe resolves name on PATH and launches it once with its output
// discarded. The exit status is ignored: only startup failures count.
func (r *ExecRunner) Probe(ctx context.Context, name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, path)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return err
	}
	_ = cmd.Wait()
	r.logger().Debug("probed command", "path", path)
	return nil
}

func (r *ExecRunner) logger() *slog.Logger {
	if r == nil {
		return slog.Default()
	}
	return logging.Ensure(r.Logger)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
