// Package launcher runs a composed engine command, or prints it in dry-run mode.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/oricchiolab/scrnaseq-run/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

// ExitError reports that the engine ran but exited with a non-zero status
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// Options controls a single launch
type Options struct {
	DryRun bool
	// Env is applied on top of the current process environment for the child only
	Env map[string]string
	// ConsoleLog, when set, receives a copy of the child's stdout and stderr
	ConsoleLog string
}

// Launcher spawns the workflow engine
type Launcher struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// New creates a Launcher writing child output to stdout and stderr
func New(stdout, stderr io.Writer, logger *slog.Logger) *Launcher {
	return &Launcher{stdout: stdout, stderr: stderr, logger: logger}
}

// Launch prints cmd when opts.DryRun is set; otherwise it runs cmd, waits for
// it and returns *ExitError if it exits non-zero.
func (l *Launcher) Launch(ctx context.Context, cmd pipeline.Command, opts Options) error {
	if opts.DryRun {
		fmt.Fprintln(l.stdout, cmd.String())
		l.logger.Warn("only printing the command; run again without --show to execute it")
		return nil
	}

	var console io.Writer = io.Discard
	if opts.ConsoleLog != "" {
		if err := os.MkdirAll(filepath.Dir(opts.ConsoleLog), 0755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.Create(opts.ConsoleLog)
		if err != nil {
			return fmt.Errorf("creating console log: %w", err)
		}
		defer f.Close()
		console = f
	}

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Env = MergeEnv(os.Environ(), opts.Env)

	stdout, err := c.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return err
	}

	l.logger.Debug("starting engine", "argv", cmd.Argv())
	if err := c.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", cmd.Path, err)
	}
	l.logger.Info("engine started", "pid", c.Process.Pid)

	t := &tee{console: console}
	var g errgroup.Group
	g.Go(func() error { return t.drain(stdout, l.stdout) })
	g.Go(func() error { return t.drain(stderr, l.stderr) })
	streamErr := g.Wait()

	err = c.Wait()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s interrupted: %w", cmd.Path, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: cmd.Path, Code: exitErr.ExitCode()}
		}
		return err
	}
	if streamErr != nil {
		l.logger.Warn("engine output was truncated", "err", streamErr)
	}
	if werr := t.writeErr(); werr != nil {
		l.logger.Warn("engine output was not fully written", "err", werr)
	}
	return nil
}

// tee copies both child streams to their terminal writer and to a shared
// console log. Write failures are recorded, never returned to the copier, so
// the pipes are always drained until the child closes them.
type tee struct {
	mu      sync.Mutex
	console io.Writer
	err     error
}

func (t *tee) drain(r io.Reader, out io.Writer) error {
	_, err := io.Copy(teeWriter{t: t, out: out}, r)
	return err
}

func (t *tee) write(out io.Writer, p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := out.Write(p); err != nil && t.err == nil {
		t.err = fmt.Errorf("writing to terminal: %w", err)
	}
	if _, err := t.console.Write(p); err != nil && t.err == nil {
		t.err = fmt.Errorf("writing console log: %w", err)
	}
}

func (t *tee) writeErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

type teeWriter struct {
	t   *tee
	out io.Writer
}

func (w teeWriter) Write(p []byte) (int, error) {
	w.t.write(w.out, p)
	return len(p), nil
}

// JavaEnv returns the overrides that point the engine at a Java installation.
// PATH is prefixed with $JAVA_HOME/bin. An empty javaHome yields no overrides.
func JavaEnv(javaHome, currentPath string) map[string]string {
	if javaHome == "" {
		return nil
	}
	path := filepath.Join(javaHome, "bin")
	if currentPath != "" {
		path += string(os.PathListSeparator) + currentPath
	}
	return map[string]string{
		"JAVA_HOME": javaHome,
		"PATH":      path,
	}
}

// MergeEnv applies overrides to a KEY=VALUE environment list. Existing keys
// are replaced in place; new keys are appended in sorted order.
func MergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}

	env := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if v, ok := overrides[key]; ok {
			env = append(env, key+"="+v)
			seen[key] = true
			continue
		}
		env = append(env, kv)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
