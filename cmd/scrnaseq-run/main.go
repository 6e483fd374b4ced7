package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oricchiolab/scrnaseq-run/internal/config"
	"github.com/oricchiolab/scrnaseq-run/internal/launcher"
	"github.com/oricchiolab/scrnaseq-run/internal/logging"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "scrnaseq-run",
		Short: "Single cell RNA-seq pipeline launcher",
		Long: `scrnaseq-run assembles and launches the nf-core/scrnaseq workflow through nextflow.
It checks the sample sheet and output directory, resolves the genome reference,
and either prints the nextflow command (--show) or runs it.`,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newHistoryCmd(opts),
		newLogsCmd(opts),
		newCheckVersionCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

// load reads the config and builds the logger for a command invocation
func (o *globalOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadWithLocalFallback(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level, format := cfg.Log.Level, cfg.Log.Format
	if o.logLevel != "" {
		level = o.logLevel
	}
	if o.logFormat != "" {
		format = o.logFormat
	}

	return cfg, logging.New(level, format, cmd.ErrOrStderr()), nil
}

// exitCode maps a command error to the process exit status. A failed engine
// run exits with the engine's own status.
func exitCode(err error) int {
	var exitErr *launcher.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
