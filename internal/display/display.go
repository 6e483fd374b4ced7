// Package display renders launch parameters and run history for the terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/oricchiolab/scrnaseq-run/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	succeededStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Printer writes human-oriented output, styled only when color is enabled
type Printer struct {
	w     io.Writer
	color bool
	now   func() time.Time
}

// NewPrinter creates a Printer writing to w
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color, now: time.Now}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Summary prints the parameters a launch will use
func (p *Printer) Summary(req *domain.Request) {
	fmt.Fprintln(p.w, p.style(titleStyle, "Running the pipeline with the following parameters:"))
	fmt.Fprintln(p.w)

	rows := [][2]string{
		{"SAMPLESHEET", req.SampleSheet},
		{"OUTDIR", req.Outdir},
		{"WORK_DIR", req.EffectiveWorkDir()},
		{"VERSION", req.Version},
		{"ALIGNER", req.Aligner},
		{"PROTOCOL", req.Protocol},
		{"REFERENCE", req.Reference.String()},
		{"LOGPATH", req.LogDir()},
	}
	if req.MaxMemory != "" {
		rows = append(rows, [2]string{"MAX_MEMORY", req.MaxMemory})
	}
	if req.MaxCPUs > 0 {
		rows = append(rows, [2]string{"MAX_CPUS", strconv.Itoa(req.MaxCPUs)})
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "\t%s\t%s\n", p.style(keyStyle, r[0]+":"), r[1])
	}
	tw.Flush()
	fmt.Fprintln(p.w)
}

// History prints runs as a table, newest first as given
func (p *Printer) History(runs []*domain.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.w, "No runs recorded")
		return
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tSTATUS\tEXIT\tVERSION\tOUTDIR")
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.Duration().Round(time.Second).String()
		}
		exit := "-"
		if r.ExitCode != nil {
			exit = strconv.Itoa(*r.ExitCode)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID),
			humanize.RelTime(r.StartedAt, p.now(), "ago", "from now"),
			duration,
			p.status(r.Status),
			exit,
			r.Version,
			r.Outdir,
		)
	}
	tw.Flush()
}

func (p *Printer) status(s domain.RunStatus) string {
	switch s {
	case domain.RunSucceeded, domain.RunLaunched:
		return p.style(succeededStyle, string(s))
	case domain.RunFailed:
		return p.style(failedStyle, string(s))
	default:
		return p.style(runningStyle, string(s))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
