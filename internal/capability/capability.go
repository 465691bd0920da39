// Package capability decides whether this host exposes UEFI firmware and
// whether the boot manager utility can be used. Every answer is computed on
// demand; nothing is cached between calls.
package capability

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cochaviz/reboot-to/internal/execx"
	"github.com/cochaviz/reboot-to/internal/logging"
)

// DefaultFirmwareDir is the firmware pseudo-filesystem exposed by Linux on
// UEFI machines.
const DefaultFirmwareDir = "/sys/firmware/efi"

// GlobalVariableGUID is the vendor GUID of the UEFI-defined Boot#### and
// BootCurrent variables.
var GlobalVariableGUID = uuid.MustParse("8be4df61-93ca-11d2-aa0d-00e098032b8c")

// Swappable in tests.
var (
	statPath     = os.Stat
	lookPath     = exec.LookPath
	isEfivarfsFS = isEfivarfs
)

// Report is a point-in-time snapshot of the host's capabilities.
type Report struct {
	UEFI       bool   `json:"uefi"`
	EFIVars    bool   `json:"efivars"`
	Tool       string `json:"tool"`
	ToolPath   string `json:"tool_path,omitempty"`
	Accessible bool   `json:"accessible"`
}

// Checker answers capability questions for one boot manager utility.
type Checker struct {
	FirmwareDir string
	Tool        string
	Runner      execx.Runner
	Logger      *slog.Logger
}

// UEFIAvailable reports whether the firmware pseudo-filesystem exists.
func (c *Checker) UEFIAvailable() bool {
	info, err := statPath(c.firmwareDir())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger().Debug("firmware directory not readable", "path", c.firmwareDir(), "error", err)
		}
		return false
	}
	return info.IsDir()
}

// BootEntriesAccessible reports whether UEFI is available and the utility
// starts. A true answer does not guarantee a later invocation succeeds.
func (c *Checker) BootEntriesAccessible(ctx context.Context) bool {
	if !c.UEFIAvailable() {
		return false
	}
	if c.Runner == nil {
		return false
	}
	if err := c.Runner.Probe(ctx, c.Tool); err != nil {
		c.logger().Debug("boot manager utility cannot start", "tool", c.Tool, "error", err)
		return false
	}
	return true
}

// EFIVarsMounted reports whether efivarfs is mounted below the firmware
// directory and exposes the BootCurrent variable.
func (c *Checker) EFIVarsMounted() bool {
	dir := c.efivarsDir()
	if !isEfivarfsFS(dir) {
		return false
	}
	if _, err := statPath(VariablePath(dir, "BootCurrent")); err != nil {
		c.logger().Debug("BootCurrent variable missing", "dir", dir, "error", err)
		return false
	}
	return true
}

// Check gathers a full Report.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{
		UEFI: c.UEFIAvailable(),
		Tool: c.Tool,
	}
	if path, err := lookPath(c.Tool); err == nil {
		report.ToolPath = path
	}
	if report.UEFI {
		report.EFIVars = c.EFIVarsMounted()
		report.Accessible = c.BootEntriesAccessible(ctx)
	}
	c.logger().Debug("capability report",
		"uefi", report.UEFI,
		"efivars", report.EFIVars,
		"tool_path", report.ToolPath,
		"accessible", report.Accessible,
	)
	return report
}

// VariablePath returns the efivarfs file of a global UEFI variable, named
// {Name}-{VendorGUID}.
func VariablePath(efivarsDir, name string) string {
	return filepath.Join(efivarsDir, name+"-"+GlobalVariableGUID.String())
}

func (c *Checker) firmwareDir() string {
	if c.FirmwareDir == "" {
		return DefaultFirmwareDir
	}
	return c.FirmwareDir
}

func (c *Checker) efivarsDir() string {
	return filepath.Join(c.firmwareDir(), "efivars")
}

func (c *Checker) logger() *slog.Logger {
	return logging.Ensure(c.Logger).With("component", "capability")
}
