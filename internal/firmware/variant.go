package firmware

import (
	"fmt"
	"log/slog"

	"github.com/cochaviz/reboot-to/internal/capability"
	"github.com/cochaviz/reboot-to/internal/execx"
	"github.com/cochaviz/reboot-to/internal/logging"
	"github.com/cochaviz/reboot-to/platform"
)

// Options configure the variant built by ForPlatform. Empty fields take the
// platform defaults.
type Options struct {
	Tool          string
	RebootCommand string
	FirmwareDir   string
	Runner        execx.Runner
	Privileged    func() bool
	Logger        *slog.Logger
}

// Variant is the fixed set of operations available on one platform.
type Variant struct {
	Platform   platform.OperatingSystem
	Capability *capability.Checker
	Gateway    *Gateway
}

// ForPlatform selects the implementation for os. It is called once at
// startup; platforms without a maintained implementation fail with
// platform.ErrUnsupported.
func ForPlatform(os platform.OperatingSystem, opts Options) (*Variant, error) {
	switch os {
	case platform.Linux:
		return newLinux(opts), nil
	case platform.Windows:
		return nil, fmt.Errorf("%w: no boot manager support for %s yet", platform.ErrUnsupported, os)
	default:
		return nil, fmt.Errorf("%w %q", platform.ErrUnsupported, os)
	}
}

func newLinux(opts Options) *Variant {
	logger := logging.Ensure(opts.Logger)
	tool := opts.Tool
	if tool == "" {
		tool = DefaultTool
	}
	runner := opts.Runner
	if runner == nil {
		runner = execx.NewExecRunner(logger.With("component", "exec"))
	}

	return &Variant{
		Platform: platform.Linux,
		Capability: &capability.Checker{
			FirmwareDir: opts.FirmwareDir,
			Tool:        tool,
			Runner:      runner,
			Logger:      logger,
		},
		Gateway: &Gateway{
			Tool:          tool,
			RebootCommand: opts.RebootCommand,
			Runner:        runner,
			Privileged:    opts.Privileged,
			Logger:        logger,
		},
	}
}
