package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/oricchiolab/scrnaseq-run/internal/domain"
)

func TestSummary_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Summary(&domain.Request{
		SampleSheet: "/data/samplesheet.csv",
		Outdir:      "/data/out",
		Version:     "2.7.1",
		Aligner:     "cellranger",
		Protocol:    "auto",
		Reference:   domain.NamedGenome("GRCh38"),
		MaxMemory:   "100.GB",
	})

	out := buf.String()
	for _, want := range []string{
		"Running the pipeline with the following parameters:",
		"SAMPLESHEET:", "/data/samplesheet.csv",
		"WORK_DIR:", "/data/out/work",
		"REFERENCE:", "genome GRCh38",
		"MAX_MEMORY:", "100.GB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "MAX_CPUS") {
		t.Errorf("unset MAX_CPUS should be omitted:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output should carry no escape codes: %q", out)
	}
}

func TestHistory(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(-3 * time.Hour)
	finished := started.Add(90 * time.Minute)
	code := 0

	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.now = func() time.Time { return now }

	p.History([]*domain.Run{
		{ID: "0123456789abcdef", Version: "2.7.1", Outdir: "/data/out", Status: domain.RunSucceeded, ExitCode: &code, StartedAt: started, FinishedAt: &finished},
		{ID: "short", Version: "2.5.1", Outdir: "/data/other", Status: domain.RunRunning, StartedAt: now.Add(-time.Minute)},
	})

	out := buf.String()
	for _, want := range []string{"ID", "STATUS", "01234567", "3 hours ago", "1h30m0s", "succeeded", "running", "short"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Errorf("IDs should be shortened:\n%s", out)
	}
}

func TestHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).History(nil)
	if strings.TrimSpace(buf.String()) != "No runs recorded" {
		t.Errorf("History(nil) = %q", buf.String())
	}
}
