package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	"github.com/rgehrsitz/tanda/internal/calculation"
	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/rgehrsitz/tanda/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tanda",
		Short: "Tanda vehicle credit simulator",
		Long: `Simulates collective savings groups (tandas) that award financed vehicles
month by month, and evaluates relief policies for loans in distress.

Defaults for --format, --debug and the simulation horizon can be set with
TANDA_FORMAT, TANDA_DEBUG and TANDA_HORIZON_MONTHS.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSimulateCmd())
	root.AddCommand(newRestructureCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newBreakEvenCmd())
	root.AddCommand(newStressCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tanda %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid: %d products, %d groups, %d contracts\n",
				args[0], len(cfg.Products), len(cfg.Groups), len(cfg.Contracts))
			return nil
		},
	}
}

// newLogger returns a development logger in debug mode and a no-op logger otherwise
func newLogger(debugMode bool) (*zap.SugaredLogger, error) {
	if !debugMode {
		return zap.NewNop().Sugar(), nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return l.Named("engine").Sugar(), nil
}

// newEngine builds a calculation engine wired to a zap logger. The returned
// function flushes the logger.
func newEngine(debugMode bool) (*calculation.CalculationEngine, func(), error) {
	logger, err := newLogger(debugMode)
	if err != nil {
		return nil, nil, err
	}
	engine := calculation.NewCalculationEngine()
	engine.SetLogger(logger)
	engine.Debug = debugMode
	return engine, func() { _ = logger.Sync() }, nil
}

// resolveFormat applies the environment default when --format was not given
func resolveFormat(flag string, settings config.Settings) string {
	if flag != "" {
		return flag
	}
	return settings.Format
}

// render writes the report to stdout, or to a timestamped file when save is set
func render(cmd *cobra.Command, report *output.Report, format string, save bool) error {
	f := output.GetFormatterByName(strings.ToLower(format))
	if f == nil {
		return fmt.Errorf("unknown output format %q (valid: %s; aliases: %s)", format,
			strings.Join(output.AvailableFormatterNames(), ", "),
			strings.Join(output.AvailableFormatAliases(), ", "))
	}

	if save {
		name, err := output.WriteFormatted(f, report, extension(f.Name()))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", name)
		return nil
	}

	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("format %s: %w", f.Name(), err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func extension(formatter string) string {
	switch formatter {
	case "json", "csv":
		return formatter
	default:
		return "txt"
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
