// Package manifest records what was launched, next to the engine's own log.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oricchiolab/scrnaseq-run/internal/domain"
	"github.com/oricchiolab/scrnaseq-run/internal/pipeline"
	"gopkg.in/yaml.v3"
)

const SchemaV1 = "scrnaseq-run.manifest.v1"

// Manifest is the YAML document written for every launch
type Manifest struct {
	Schema     string     `yaml:"schema"`
	RunID      string     `yaml:"run_id"`
	CreatedAt  time.Time  `yaml:"created_at"`
	Workflow   string     `yaml:"workflow"`
	Version    string     `yaml:"version"`
	Params     Params     `yaml:"params"`
	Reference  Reference  `yaml:"reference"`
	Resources  *Resources `yaml:"resources,omitempty"`
	EngineArgs []string   `yaml:"engine_args,omitempty"`
	EnvKeys    []string   `yaml:"env_overrides,omitempty"`
	Argv       []string   `yaml:"argv"`
}

type Params struct {
	Input      string `yaml:"input"`
	Outdir     string `yaml:"outdir"`
	WorkDir    string `yaml:"work_dir"`
	Aligner    string `yaml:"aligner"`
	Protocol   string `yaml:"protocol"`
	Profile    string `yaml:"profile,omitempty"`
	Resume     bool   `yaml:"resume"`
	Background bool   `yaml:"background"`
}

type Reference struct {
	Kind          domain.ReferenceKind `yaml:"kind"`
	Genome        string               `yaml:"genome,omitempty"`
	Fasta         string               `yaml:"fasta,omitempty"`
	GTF           string               `yaml:"gtf,omitempty"`
	SaveReference bool                 `yaml:"save_reference,omitempty"`
}

type Resources struct {
	MaxMemory string `yaml:"max_memory,omitempty"`
	MaxCPUs   int    `yaml:"max_cpus,omitempty"`
}

// New builds the manifest for a run. Only the names of environment
// overrides are recorded, not their values.
func New(runID, workflow string, req *domain.Request, cmd pipeline.Command, env map[string]string) *Manifest {
	m := &Manifest{
		Schema:    SchemaV1,
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Workflow:  workflow,
		Version:   req.Version,
		Params: Params{
			Input:      req.SampleSheet,
			Outdir:     req.Outdir,
			WorkDir:    req.EffectiveWorkDir(),
			Aligner:    req.Aligner,
			Protocol:   req.Protocol,
			Profile:    req.Profile,
			Resume:     req.Resume,
			Background: req.Background,
		},
		Reference: Reference{
			Kind:          req.Reference.Kind,
			Genome:        req.Reference.Genome,
			Fasta:         req.Reference.Fasta,
			GTF:           req.Reference.GTF,
			SaveReference: req.Reference.SaveReference,
		},
		EngineArgs: req.EngineArgs,
		Argv:       cmd.Argv(),
	}
	if req.MaxMemory != "" || req.MaxCPUs > 0 {
		m.Resources = &Resources{MaxMemory: req.MaxMemory, MaxCPUs: req.MaxCPUs}
	}
	for k := range env {
		m.EnvKeys = append(m.EnvKeys, k)
	}
	sort.Strings(m.EnvKeys)
	return m
}

// Filename returns the manifest file name for a run ID
func Filename(runID string) string {
	return "run-" + runID + ".yaml"
}

// Write stores the manifest in dir and returns its path
func (m *Manifest) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(dir, Filename(m.RunID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Read loads a manifest from path
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Schema != SchemaV1 {
		return nil, fmt.Errorf("unsupported manifest schema %q", m.Schema)
	}
	return &m, nil
}
