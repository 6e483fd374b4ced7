package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/oricchiolab/scrnaseq-run/internal/config"
	"github.com/oricchiolab/scrnaseq-run/internal/display"
	"github.com/oricchiolab/scrnaseq-run/internal/domain"
	"github.com/oricchiolab/scrnaseq-run/internal/launcher"
	"github.com/oricchiolab/scrnaseq-run/internal/manifest"
	"github.com/oricchiolab/scrnaseq-run/internal/notify"
	"github.com/oricchiolab/scrnaseq-run/internal/pipeline"
	"github.com/oricchiolab/scrnaseq-run/internal/preflight"
	"github.com/oricchiolab/scrnaseq-run/internal/runstore"
	"github.com/spf13/cobra"
)

// runOptions holds the flags of the run command
type runOptions struct {
	show          bool
	version       string
	aligner       string
	protocol      string
	genome        string
	fasta         string
	gtf           string
	saveReference bool
	workDir       string
	maxMemory     string
	maxCPUs       int
	profile       string
	resume        bool
	background    bool
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run SAMPLESHEET OUTDIR [flags] [-- NEXTFLOW_ARGS...]",
		Short: "Launch nf-core/scrnaseq for a sample sheet",
		Long: `Launch nf-core/scrnaseq for a sample sheet.

A reference is required: either --genome, or --fasta together with --gtf.
Arguments after "--" are passed to nextflow unchanged, after all generated flags.`,
		Example: `  scrnaseq-run run samplesheet.csv results -g GRCh38 --show
  scrnaseq-run run samplesheet.csv results --fasta genome.fa --gtf genes.gtf -- -with-tower`,
		Args: positionalArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, global, opts)
		},
	}

	f := runCmd.Flags()
	f.BoolVar(&opts.show, "show", false, "print the command without running it")
	f.StringVar(&opts.version, "version", "", "nf-core/scrnaseq release tag (default from config)")
	f.StringVarP(&opts.aligner, "aligner", "a", "", "aligner to use (default from config: cellranger)")
	f.StringVarP(&opts.protocol, "protocol", "p", "", "protocol used (default from config: auto)")
	f.StringVarP(&opts.genome, "genome", "g", "", "named genome reference, e.g. GRCh38")
	f.StringVar(&opts.fasta, "fasta", "", "genome fasta file, used with --gtf")
	f.StringVar(&opts.gtf, "gtf", "", "annotation GTF file, used with --fasta")
	f.BoolVar(&opts.saveReference, "save-reference", true, "keep the reference index built from --fasta/--gtf")
	f.StringVar(&opts.workDir, "work-dir", "", "nextflow work directory (default OUTDIR/work)")
	f.StringVar(&opts.maxMemory, "max-memory", "", `maximum memory, e.g. "100.GB" (default from config)`)
	f.IntVar(&opts.maxCPUs, "max-cpus", 0, "maximum CPUs (default from config)")
	f.StringVar(&opts.profile, "profile", "", "nextflow execution profile (default from config: docker)")
	f.BoolVar(&opts.resume, "resume", true, "resume from cached results")
	f.BoolVar(&opts.background, "background", true, "run nextflow in background mode (-bg)")

	return runCmd
}

// positionalArgs requires exactly n arguments before "--"
func positionalArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		got := len(args)
		if dash := cmd.ArgsLenAtDash(); dash >= 0 {
			got = dash
		}
		if got != n {
			return fmt.Errorf("requires SAMPLESHEET and OUTDIR, received %d positional argument(s)", got)
		}
		return nil
	}
}

// buildRequest merges positional arguments, flags and config defaults
func buildRequest(cmd *cobra.Command, args []string, opts *runOptions, cfg *config.Config) *domain.Request {
	req := &domain.Request{
		SampleSheet: args[0],
		Outdir:      args[1],
		WorkDir:     opts.workDir,
		Version:     cfg.Pipeline.Version,
		Aligner:     cfg.Pipeline.Aligner,
		Protocol:    cfg.Pipeline.Protocol,
		Profile:     cfg.Pipeline.Profile,
		MaxMemory:   cfg.Resources.MaxMemory,
		MaxCPUs:     cfg.Resources.MaxCPUs,
		Resume:      opts.resume,
		Background:  opts.background,
		DryRun:      opts.show,
	}

	f := cmd.Flags()
	if f.Changed("version") {
		req.Version = opts.version
	}
	if f.Changed("aligner") {
		req.Aligner = opts.aligner
	}
	if f.Changed("protocol") {
		req.Protocol = opts.protocol
	}
	if f.Changed("profile") {
		req.Profile = opts.profile
	}
	if f.Changed("max-memory") {
		req.MaxMemory = opts.maxMemory
	}
	if f.Changed("max-cpus") {
		req.MaxCPUs = opts.maxCPUs
	}

	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		req.EngineArgs = append([]string(nil), args[dash:]...)
	}

	return req
}

func runRun(cmd *cobra.Command, args []string, global *globalOptions, opts *runOptions) error {
	cmd.SilenceUsage = true

	cfg, logger, err := global.load(cmd)
	if err != nil {
		return err
	}

	req := buildRequest(cmd, args, opts, cfg)

	validator := preflight.New(logger)
	ref, refErr := validator.ResolveReference(opts.genome, opts.fasta, opts.gtf, opts.saveReference)
	req.Reference = ref

	// input paths are checked before the reference so a missing sample sheet always wins
	if err := validator.Validate(req); err != nil {
		return err
	}
	if refErr != nil {
		return refErr
	}

	engine := pipeline.Engine{Executable: cfg.Engine.Executable, Workflow: cfg.Pipeline.Workflow}
	command := pipeline.Compose(req, engine)

	errOut := cmd.ErrOrStderr()
	color := false
	if f, ok := errOut.(*os.File); ok {
		color = display.IsTerminal(f)
	}
	display.NewPrinter(errOut, color).Summary(req)

	env := launcher.JavaEnv(cfg.Engine.JavaHome, os.Getenv("PATH"))
	l := launcher.New(cmd.OutOrStdout(), errOut, logger)

	if req.DryRun {
		return l.Launch(cmd.Context(), command, launcher.Options{DryRun: true})
	}

	run := &domain.Run{
		ID:          uuid.NewString(),
		SampleSheet: req.SampleSheet,
		Outdir:      req.Outdir,
		Version:     req.Version,
		Args:        command.Argv(),
		Status:      domain.RunRunning,
		StartedAt:   time.Now(),
	}
	logger = logger.With("run_id", run.ID)

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
		if err := store.SaveRun(run); err != nil {
			logger.Warn("could not record run", "err", err)
		}
	}

	m := manifest.New(run.ID, cfg.Pipeline.Workflow, req, command, env)
	if path, err := m.Write(req.LogDir()); err != nil {
		logger.Warn("could not write run manifest", "err", err)
	} else {
		logger.Debug("wrote run manifest", "path", path)
	}

	logger.Info("running the command", "version", req.Version, "background", req.Background)
	launchErr := l.Launch(cmd.Context(), command, launcher.Options{
		Env:        env,
		ConsoleLog: filepath.Join(req.LogDir(), "console-"+run.ID+".log"),
	})

	finishRun(run, req, launchErr)
	if store != nil && run.ExitCode != nil {
		if err := store.FinishRun(run.ID, run.Status, *run.ExitCode); err != nil {
			logger.Warn("could not update run record", "err", err)
		}
	}

	notifier := notify.FromSettings(cfg.Notifications.Desktop, cfg.Notifications.SlackWebhook)
	if err := notifier.Send(notify.ForRun(run)); err != nil {
		logger.Warn("notification failed", "err", err)
	}

	if launchErr != nil {
		return launchErr
	}
	if run.Status == domain.RunLaunched {
		logger.Info("pipeline launched in the background", "log", filepath.Join(req.LogDir(), "nextflow.log"))
	} else {
		logger.Info("pipeline finished", "duration", run.Duration().Round(time.Second))
	}
	return nil
}

// finishRun records the outcome of a launch on run
func finishRun(run *domain.Run, req *domain.Request, launchErr error) {
	now := time.Now()
	run.FinishedAt = &now

	code := 0
	var exitErr *launcher.ExitError
	switch {
	case launchErr == nil && req.Background:
		run.Status = domain.RunLaunched
	case launchErr == nil:
		run.Status = domain.RunSucceeded
	case errors.As(launchErr, &exitErr):
		run.Status = domain.RunFailed
		code = exitErr.Code
	default:
		run.Status = domain.RunFailed
		code = -1
	}
	run.ExitCode = &code
}

// openStore opens the run history. History is best effort: a launch goes
// ahead without it.
func openStore(cfg *config.Config, logger *slog.Logger) *runstore.Store {
	store, err := runstore.New(cfg.General.DatabasePath)
	if err != nil {
		logger.Warn("run history unavailable", "path", cfg.General.DatabasePath, "err", err)
		return nil
	}
	return store
}
