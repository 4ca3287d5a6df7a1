package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"rptcore/common"
	"rptcore/config"
	"rptcore/export"
	"rptcore/misc"
	"rptcore/state"
)

// initializeAppContext loads configuration and sets up reporting and logging.
// It runs after command line has been parsed but before any subcommand.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// help or version only
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		storeConfiguration(env.Rpt, env.Cfg, configFile)
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()),
		zap.Int("targets", len(env.Cfg.Layout.Targets)))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

// storeConfiguration puts effective configuration into debug report, along
// with original file if one was used.
func storeConfiguration(rpt *config.Report, cfg *config.Config, configFile string) {
	if data, err := config.Dump(cfg); err == nil {
		rpt.StoreData("config/effective.yaml", data)
	}
	if len(configFile) > 0 {
		rpt.Store("config/"+filepath.Base(configFile), configFile)
	}
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// syncs log, from now on errors go directly to stderr
	env.RestoreStdLog()

	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	return multierr.Append(err, removeEmptyPanicLog(env.Cfg))
}

// removeEmptyPanicLog drops panic log created next to file log when nothing
// crashed. Must be called after report is closed.
func removeEmptyPanicLog(cfg *config.Config) error {
	if cfg == nil || len(cfg.Logging.FileLogger.Destination) == 0 {
		return nil
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	fname := filepath.Join(filepath.Dir(cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
	if fi, err := os.Stat(fname); err == nil && fi.Size() == 0 {
		if err := os.Remove(fname); err != nil {
			return fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, err)
		}
	}
	return nil
}

// Subcommands return regular errors, cli.Exit is never used. Error is logged
// once by exitErrHandler if logging is up, otherwise printed on exit.
var errWasHandled bool

// exitErrHandler runs before application context is destroyed, while log is
// still available.
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Named("cli").Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {
	// targets are processed concurrently, interrupt cancels all of them
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "pagination engine for banded reports with crosstabs",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "collect logs, configuration, source and listings into report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "paginate",
				Usage:        "Lays out report definition for configured targets and writes page listings",
				OnUsageError: usageErrorHandler,
				Action:       export.Paginate,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "target", Aliases: []string{"t"}, Usage: "process only target `NAME` (may be repeated), by default all configured targets"},
					&cli.StringFlag{Name: "detail-mode",
						Usage: "override crosstab detail `MODE` (supported modes: " + strings.Join(common.DetailModeNames(), ", ") + ")"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
				},
				ArgsUsage: "SOURCE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to report definition (XML)

DESTINATION:
    always a path, listing file names are derived from source, target and output_name_template
    if absent - current working directory
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "snap",
				Usage:        "Resolves vertical position against grid, guides and placed report elements",
				OnUsageError: usageErrorHandler,
				Action:       export.Snap,
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "position", Aliases: []string{"p"}, Required: true, Usage: "position to snap, in `POINTS`"},
					&cli.Float64Flag{Name: "grid", Usage: "override configured grid size, in `POINTS`"},
					&cli.Float64SliceFlag{Name: "guide", Usage: "add guide at `POINTS` (may be repeated)"},
					&cli.StringFlag{Name: "report", Aliases: []string{"r"}, Usage: "lay out report definition from `FILE` and snap to its elements"},
					&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "target `NAME` to lay report out for, first configured by default"},
					&cli.StringFlag{Name: "owner", Usage: "`NAME` of the box being moved, its own edges are preferred"},
				},
				CustomHelpTemplate: fmt.Sprintf(`%s

Prints snapped position in points to STDOUT. Snap sources and threshold come
from "snap" section of configuration.
`, cli.CommandHelpTemplate),
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces effective configuration: defaults with values from configuration
file applied on top. Use --default flag to see embedded defaults.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit skips deferred calls, it has to be the last thing done
	defer func() {
		stop()
		if err != nil {
			// log is either not ready yet (bad arguments) or already closed
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
