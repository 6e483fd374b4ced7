package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/oricchiolab/scrnaseq-run/internal/domain"
	"github.com/oricchiolab/scrnaseq-run/internal/pipeline"
)

func testRequest() *domain.Request {
	return &domain.Request{
		SampleSheet: "/data/samplesheet.csv",
		Outdir:      "/data/out",
		Version:     "2.7.1",
		Aligner:     "star",
		Protocol:    "10XV3",
		Reference:   domain.FastaAndAnnotation("/ref/g.fa", "/ref/g.gtf", true),
		MaxMemory:   "100.GB",
		MaxCPUs:     12,
		Profile:     "docker",
		Resume:      true,
		EngineArgs:  []string{"-with-tower"},
	}
}

func TestNew_RecordsEnvKeysOnly(t *testing.T) {
	cmd := pipeline.Command{Path: "nextflow", Args: []string{"run"}}
	m := New("abc", "nf-core/scrnaseq", testRequest(), cmd, map[string]string{"PATH": "/secret/bin", "JAVA_HOME": "/opt/jdk"})

	if diff := cmp.Diff([]string{"JAVA_HOME", "PATH"}, m.EnvKeys); diff != "" {
		t.Errorf("EnvKeys mismatch (-want +got):\n%s", diff)
	}
	if m.Params.WorkDir != "/data/out/work" {
		t.Errorf("WorkDir = %q, want default /data/out/work", m.Params.WorkDir)
	}
	if m.Resources == nil || m.Resources.MaxCPUs != 12 {
		t.Errorf("Resources = %+v", m.Resources)
	}
}

func TestNew_OmitsUnsetResources(t *testing.T) {
	req := testRequest()
	req.MaxMemory, req.MaxCPUs = "", 0
	m := New("abc", "nf-core/scrnaseq", req, pipeline.Command{Path: "nextflow"}, nil)
	if m.Resources != nil {
		t.Errorf("Resources = %+v, want nil", m.Resources)
	}
}

func TestWriteAndRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	req := testRequest()
	cmd := pipeline.Compose(req, pipeline.Engine{Executable: "nextflow", Workflow: "nf-core/scrnaseq"})
	m := New("run-42", "nf-core/scrnaseq", req, cmd, nil)

	path, err := m.Write(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "run-run-42.yaml" {
		t.Errorf("path = %q", path)
	}

	data, _ := os.ReadFile(path)
	for _, want := range []string{"schema: " + SchemaV1, "kind: fasta_gtf", "save_reference: true"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("manifest missing %q:\n%s", want, data)
		}
	}

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m.Argv, got.Argv); diff != "" {
		t.Errorf("Argv mismatch (-want +got):\n%s", diff)
	}
	if got.Reference.Fasta != "/ref/g.fa" {
		t.Errorf("Reference.Fasta = %q", got.Reference.Fasta)
	}
}

func TestRead_RejectsUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	os.WriteFile(path, []byte("schema: other.v9\nrun_id: x\n"), 0644)

	if _, err := Read(path); err == nil {
		t.Error("expected error for unknown schema")
	}
}
