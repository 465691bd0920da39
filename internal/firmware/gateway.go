// Package firmware reads and changes the UEFI boot configuration through the
// efibootmgr utility.
//
// NVRAM is one machine-wide resource. Nothing here serializes concurrent
// invocations; two instances writing BootNext at once race.
package firmware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cochaviz/reboot-to/internal/bootconfig"
	"github.com/cochaviz/reboot-to/internal/execx"
	"github.com/cochaviz/reboot-to/internal/logging"
)

const (
	// DefaultTool is the boot manager utility on Linux.
	DefaultTool = "efibootmgr"
	// DefaultRebootCommand restarts the machine.
	DefaultRebootCommand = "reboot"
)

// IsPrivileged reports whether the process runs with an effective uid of 0.
func IsPrivileged() bool {
	return os.Geteuid() == 0
}

// Gateway applies firmware reads and writes through the boot manager
// utility. Privileged decides whether writes are allowed; it is consulted
// before any process is started.
type Gateway struct {
	Tool          string
	RebootCommand string
	Runner        execx.Runner
	Privileged    func() bool
	Logger        *slog.Logger
}

// ReadConfiguration runs the utility without arguments and parses its
// report.
func (g *Gateway) ReadConfiguration(ctx context.Context) (*bootconfig.Configuration, error) {
	const op = "read boot configuration"
	logger := g.logger().With("op", "read")

	res, err := g.Runner.Run(ctx, g.tool())
	if failed := toolFailure(op, res, err); failed != nil {
		logger.Debug("utility failed", "exit_code", res.ExitCode, "error", failed)
		return nil, failed
	}
	if !utf8.Valid(res.Stdout) {
		return nil, &AccessError{Op: op, Kind: ErrEncoding}
	}

	config, err := bootconfig.Parse(string(res.Stdout), bootconfig.WithLogger(logger))
	if err != nil {
		return nil, &AccessError{Op: op, Kind: ErrMalformed, Err: err}
	}
	logger.Debug("read boot configuration", "entries", config.Len(), "current", config.Current())
	return config, nil
}

// SetBootNext requests number as the one-time next boot target.
func (g *Gateway) SetBootNext(ctx context.Context, number uint16) error {
	return g.write(ctx, "set boot next", "--bootnext", strconv.FormatUint(uint64(number), 10))
}

// DeleteBootNext clears a pending one-time boot target.
func (g *Gateway) DeleteBootNext(ctx context.Context) error {
	return g.write(ctx, "delete boot next", "--delete-bootnext")
}

// Reboot runs the reboot program and waits for it to return.
func (g *Gateway) Reboot(ctx context.Context) error {
	command := g.RebootCommand
	if command == "" {
		command = DefaultRebootCommand
	}
	g.logger().Info("rebooting system", "command", command)
	if _, err := g.Runner.Run(ctx, command); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}

func (g *Gateway) write(ctx context.Context, op string, args ...string) error {
	if !g.privileged() {
		return &AccessError{Op: op, Kind: ErrPermissionDenied}
	}

	res, err := g.Runner.Run(ctx, g.tool(), args...)
	if failed := toolFailure(op, res, err); failed != nil {
		g.logger().Debug("utility failed", "op", op, "exit_code", res.ExitCode, "error", failed)
		return failed
	}
	g.logger().Debug("firmware updated", "op", op, "args", strings.Join(args, " "))
	return nil
}

func toolFailure(op string, res execx.Result, err error) error {
	if err == nil && res.ExitCode == 0 {
		return nil
	}
	return &AccessError{
		Op:     op,
		Kind:   ErrToolFailed,
		Stderr: strings.TrimSpace(string(res.Stderr)),
		Err:    err,
	}
}

func (g *Gateway) privileged() bool {
	if g.Privileged == nil {
		return IsPrivileged()
	}
	return g.Privileged()
}

func (g *Gateway) tool() string {
	if g.Tool == "" {
		return DefaultTool
	}
	return g.Tool
}

func (g *Gateway) logger() *slog.Logger {
	return logging.Ensure(g.Logger).With("component", "firmware")
}
