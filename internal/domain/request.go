package domain

import "path/filepath"

// Request holds the resolved parameters of one pipeline launch.
// It is built once from flags and config and is not modified afterwards.
type Request struct {
	SampleSheet string
	Outdir      string
	WorkDir     string
	Version     string
	Aligner     string
	Protocol    string
	Reference   Reference
	MaxMemory   string // e.g. "100.GB"; empty omits the limit
	MaxCPUs     int    // 0 omits the limit
	Profile     string
	Resume      bool
	Background  bool
	DryRun      bool
	EngineArgs  []string // passed to the engine verbatim, after all generated flags
}

// LogDir is where the engine log, console capture and manifest are written
func (r *Request) LogDir() string {
	return filepath.Join(r.Outdir, "logs")
}

// EffectiveWorkDir returns WorkDir, defaulting to <outdir>/work
func (r *Request) EffectiveWorkDir() string {
	if r.WorkDir != "" {
		return r.WorkDir
	}
	return filepath.Join(r.Outdir, "work")
}
