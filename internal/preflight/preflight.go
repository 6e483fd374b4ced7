// Package preflight checks a launch request before any command is built.
// Every check is fail-fast: the first problem aborts the launch.
package preflight

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/oricchiolab/scrnaseq-run/internal/domain"
)

// Validator runs filesystem and parameter checks on a request
type Validator struct {
	logger *slog.Logger
}

// New creates a Validator that reports warnings to logger
func New(logger *slog.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate confirms the request's inputs exist and its limits are well formed
func (v *Validator) Validate(req *domain.Request) error {
	info, err := os.Stat(req.SampleSheet)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrSampleSheetMissing, req.SampleSheet)
	}

	info, err = os.Stat(req.Outdir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrOutdirMissing, req.Outdir)
	}

	if req.Reference.Kind == domain.ReferenceFastaAndAnnotation {
		for _, p := range []string{req.Reference.Fasta, req.Reference.GTF} {
			if isRemote(p) {
				continue
			}
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("%w: %s", domain.ErrReferenceMissing, p)
			}
		}
	}

	if req.MaxMemory != "" {
		if _, err := ParseMemory(req.MaxMemory); err != nil {
			return err
		}
	}
	if req.MaxCPUs < 0 {
		return fmt.Errorf("%w: max_cpus must not be negative, got %d", domain.ErrInvalidResources, req.MaxCPUs)
	}

	return nil
}

// ResolveReference picks the reference mode from the user's flags.
//
// When a genome and a complete fasta/GTF pair are both given, the pair wins
// and the genome is dropped. A genome with an incomplete pair uses the genome.
func (v *Validator) ResolveReference(genome, fasta, gtf string, saveReference bool) (domain.Reference, error) {
	havePair := fasta != "" && gtf != ""

	switch {
	case genome != "" && havePair:
		v.logger.Warn("genome and fasta/gtf both supplied; using fasta and gtf, genome ignored",
			"genome", genome, "fasta", fasta, "gtf", gtf)
		return domain.FastaAndAnnotation(fasta, gtf, saveReference), nil
	case genome != "":
		if fasta != "" || gtf != "" {
			v.logger.Warn("incomplete fasta/gtf pair ignored; using genome",
				"genome", genome, "fasta", fasta, "gtf", gtf)
		}
		return domain.NamedGenome(genome), nil
	case havePair:
		return domain.FastaAndAnnotation(fasta, gtf, saveReference), nil
	default:
		return domain.Reference{}, domain.ErrNoReference
	}
}

// ParseMemory parses a workflow memory limit such as "100.GB", "64 GB" or
// "512MB" into bytes.
func ParseMemory(s string) (uint64, error) {
	normalized := strings.TrimSpace(s)
	// nextflow writes the unit after a dot: 100.GB
	if i := strings.LastIndex(normalized, "."); i > 0 && isLetters(normalized[i+1:]) {
		normalized = normalized[:i] + " " + normalized[i+1:]
	}

	n, err := humanize.ParseBytes(normalized)
	if err != nil {
		return 0, fmt.Errorf("%w: max_memory %q: %v", domain.ErrInvalidResources, s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: max_memory %q is zero", domain.ErrInvalidResources, s)
	}
	return n, nil
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isRemote reports whether p is a URI the workflow engine fetches itself (s3://, https://, ...)
func isRemote(p string) bool {
	return strings.Contains(p, "://")
}
