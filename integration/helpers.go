//go:build integration

package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Project is a scratch layout with a sample sheet, an output directory and a
// stand-in nextflow executable
type Project struct {
	Dir         string
	SampleSheet string
	Outdir      string
	Engine      string
	ConfigPath  string
}

// NewProject creates a Project whose fake engine prints its arguments and exits with exitCode
func NewProject(t *testing.T, exitCode int) *Project {
	t.Helper()
	dir := t.TempDir()
	p := &Project{
		Dir:         dir,
		SampleSheet: filepath.Join(dir, "samplesheet.csv"),
		Outdir:      filepath.Join(dir, "results"),
		Engine:      filepath.Join(dir, "nextflow"),
		ConfigPath:  filepath.Join(dir, "config.toml"),
	}

	if err := os.WriteFile(p.SampleSheet, []byte("sample,fastq_1,fastq_2,expected_cells\n"), 0644); err != nil {
		t.Fatalf("Failed to write samplesheet: %v", err)
	}
	if err := os.MkdirAll(p.Outdir, 0755); err != nil {
		t.Fatalf("Failed to create outdir: %v", err)
	}

	script := fmt.Sprintf("#!/bin/sh\nfor a in \"$@\"; do echo \"$a\"; done\nexit %d\n", exitCode)
	if err := os.WriteFile(p.Engine, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write fake engine: %v", err)
	}

	config := fmt.Sprintf(`[general]
database_path = %q

[engine]
executable = %q

[notifications]
desktop = false
`, filepath.Join(dir, "runs.db"), p.Engine)
	if err := os.WriteFile(p.ConfigPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	return p
}
