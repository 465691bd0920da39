package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cochaviz/reboot-to/internal/config"
	"github.com/cochaviz/reboot-to/internal/execx"
	"github.com/cochaviz/reboot-to/internal/firmware"
	"github.com/cochaviz/reboot-to/internal/logging"
	"github.com/cochaviz/reboot-to/platform"
)

const defaultLogLevel = "warning"

var (
	errUEFIUnavailable    = errors.New("UEFI firmware interface not available on this machine")
	errBootEntriesBlocked = errors.New("boot entries are not accessible; is efibootmgr installed?")
)

// app carries the state shared by all subcommands. runner, privileged and
// goos are only set by tests.
type app struct {
	logger   *slog.Logger
	levelVar *slog.LevelVar
	stderr   io.Writer

	goos       string
	runner     execx.Runner
	privileged func() bool

	variant *firmware.Variant
}

func main() {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelWarn)

	logger := logging.NewCLI(os.Stderr, &levelVar)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		logger:   logger,
		levelVar: &levelVar,
		stderr:   os.Stderr,
		goos:     runtime.GOOS,
	}
	root := newRootCommand(a)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.Warn("command interrupted", "error", err)
			os.Exit(130)
		}
		a.logger.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	var (
		logLevel   string
		logFormat  string
		configPath string
	)

	root := &cobra.Command{
		Use:           "reboot-to",
		Short:         "Inspect UEFI boot entries and choose the one to boot next",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "Set log verbosity (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "cli", "Set log format (cli, json)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file (default $"+config.EnvPath+")")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		config.SetLogger(a.logger.With("component", "config"))
		cfg, err := config.Load(config.Path(configPath))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Log.Format = logFormat
		}
		if err := a.configureLogging(cfg.Log); err != nil {
			return err
		}
		return a.selectPlatform(cfg)
	}

	root.AddCommand(
		newListCommand(a),
		newChangeCommand(a),
		newClearNextCommand(a),
		newStatusCommand(a),
	)
	return root
}

func (a *app) configureLogging(cfg config.LogConfig) error {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	mode, err := logging.ParseMode(cfg.Format)
	if err != nil {
		return err
	}
	a.levelVar.Set(level)
	if mode == logging.ModeJSON {
		a.logger = logging.New(logging.ModeJSON, a.stderr, a.levelVar)
		slog.SetDefault(a.logger)
	}
	return nil
}

// selectPlatform picks the implementation for the host once, before any
// subcommand touches the firmware.
func (a *app) selectPlatform(cfg config.Config) error {
	host, err := platform.Detect(a.goos)
	if err != nil {
		return err
	}
	variant, err := firmware.ForPlatform(host, firmware.Options{
		Tool:          cfg.Efibootmgr,
		RebootCommand: cfg.Reboot,
		FirmwareDir:   cfg.FirmwareDir,
		Runner:        a.runner,
		Privileged:    a.privileged,
		Logger:        a.logger,
	})
	if err != nil {
		return err
	}
	a.variant = variant
	a.logger.Debug("selected platform", "platform", host, "tool", cfg.Efibootmgr)
	return nil
}

func (a *app) requireUEFI() error {
	if !a.variant.Capability.UEFIAvailable() {
		return errUEFIUnavailable
	}
	return nil
}

func (a *app) requireBootEntries(ctx context.Context) error {
	if err := a.requireUEFI(); err != nil {
		return err
	}
	if !a.variant.Capability.BootEntriesAccessible(ctx) {
		return errBootEntriesBlocked
	}
	return nil
}

func newListCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "Display boot entries, the current entry and any pending boot next",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdLogger := a.logger.With("command", "list")
			ctx := cmd.Context()

			if err := a.requireBootEntries(ctx); err != nil {
				return err
			}

			bootConfig, err := a.variant.Gateway.ReadConfiguration(ctx)
			if err != nil {
				return err
			}
			cmdLogger.Info("read boot configuration", "entries", bootConfig.Len())

			if asJSON {
				return renderJSON(cmd.OutOrStdout(), newConfigurationView(bootConfig))
			}
			return renderConfiguration(cmd.OutOrStdout(), bootConfig)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the boot configuration as JSON")

	return cmd
}

func newChangeCommand(a *app) *cobra.Command {
	var reboot bool

	cmd := &cobra.Command{
		Use:   "change <number>",
		Args:  cobra.ExactArgs(1),
		Short: "Set the boot entry used on the next boot only",
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseEntryNumber(args[0])
			if err != nil {
				return err
			}

			cmdLogger := a.logger.With("command", "change", "number", number)
			ctx := cmd.Context()

			if err := a.requireUEFI(); err != nil {
				return err
			}
			if err := a.variant.Gateway.SetBootNext(ctx, number); err != nil {
				return err
			}
			cmdLogger.Info("boot next changed")
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully changed BootNext to %04d\n", number)

			if !reboot {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rebooting system")
			return a.variant.Gateway.Reboot(ctx)
		},
	}

	cmd.Flags().BoolVarP(&reboot, "reboot", "r", false, "Reboot after BootNext was changed")

	return cmd
}

func newClearNextCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-next",
		Args:  cobra.NoArgs,
		Short: "Remove a pending boot next override",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUEFI(); err != nil {
				return err
			}
			if err := a.variant.Gateway.DeleteBootNext(cmd.Context()); err != nil {
				return err
			}
			a.logger.Info("boot next cleared", "command", "clear-next")
			fmt.Fprintln(cmd.OutOrStdout(), "BootNext cleared")
			return nil
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Args:  cobra.NoArgs,
		Short: "Report whether this machine supports changing its boot entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := a.variant.Capability.Check(cmd.Context())
			if asJSON {
				return renderJSON(cmd.OutOrStdout(), report)
			}
			return renderStatus(cmd.OutOrStdout(), a.variant.Platform, report)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func parseEntryNumber(value string) (uint16, error) {
	value = strings.TrimSpace(value)
	number, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid boot entry number %q: expected 0-65535", value)
	}
	return uint16(number), nil
}
