// Package pipeline composes the workflow engine invocation for a launch request.
package pipeline

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oricchiolab/scrnaseq-run/internal/domain"
)

// Engine identifies the executable and workflow a command targets
type Engine struct {
	Executable string // e.g. "nextflow" or an absolute path
	Workflow   string // e.g. "nf-core/scrnaseq"
}

// Command is an engine executable plus its argument vector. It is executed
// directly, never through a shell.
type Command struct {
	Path string
	Args []string
}

// Argv returns the executable followed by its arguments
func (c Command) Argv() []string {
	return append([]string{c.Path}, c.Args...)
}

// String renders the command for display, quoting tokens a POSIX shell
// would otherwise split or expand.
func (c Command) String() string {
	argv := c.Argv()
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

// Compose builds the engine command for req. The result depends only on its
// inputs; flags are emitted in a fixed order and pass-through arguments come last.
func Compose(req *domain.Request, engine Engine) Command {
	logDir := req.LogDir()

	args := []string{
		"-log", filepath.Join(logDir, "nextflow.log"),
		"run", engine.Workflow,
		"-r", req.Version,
		"--input", req.SampleSheet,
		"--aligner", req.Aligner,
		"--outdir", req.Outdir,
		"-work-dir", req.EffectiveWorkDir(),
	}

	switch req.Reference.Kind {
	case domain.ReferenceNamedGenome:
		args = append(args, "--genome", req.Reference.Genome)
	case domain.ReferenceFastaAndAnnotation:
		args = append(args, "--fasta", req.Reference.Fasta, "--gtf", req.Reference.GTF)
		if req.Reference.SaveReference {
			args = append(args, "--save_reference")
		}
	}

	args = append(args, "--protocol", req.Protocol)

	if req.MaxMemory != "" {
		args = append(args, "--max_memory", req.MaxMemory)
	}
	if req.MaxCPUs > 0 {
		args = append(args, "--max_cpus", strconv.Itoa(req.MaxCPUs))
	}

	if req.Profile != "" {
		args = append(args, "-profile", req.Profile)
	}
	if req.Resume {
		args = append(args, "-resume")
	}
	args = append(args, "-with-report", filepath.Join(logDir, "execution_report.html"))
	if req.Background {
		args = append(args, "-bg")
	}

	args = append(args, req.EngineArgs...)

	return Command{Path: engine.Executable, Args: args}
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	switch r {
	case '-', '_', '.', '/', ':', ',', '=', '+', '@', '%':
		return false
	}
	return true
}
