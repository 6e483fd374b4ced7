package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Default()

	if cfg.Engine.Executable != "nextflow" {
		t.Errorf("Engine.Executable = %q, want nextflow", cfg.Engine.Executable)
	}
	if cfg.Pipeline.Workflow != "nf-core/scrnaseq" {
		t.Errorf("Pipeline.Workflow = %q, want nf-core/scrnaseq", cfg.Pipeline.Workflow)
	}
	if cfg.Pipeline.Aligner != "cellranger" {
		t.Errorf("Pipeline.Aligner = %q, want cellranger", cfg.Pipeline.Aligner)
	}
	if cfg.Pipeline.Protocol != "auto" {
		t.Errorf("Pipeline.Protocol = %q, want auto", cfg.Pipeline.Protocol)
	}
	if cfg.Resources.MaxMemory != "100.GB" {
		t.Errorf("Resources.MaxMemory = %q, want 100.GB", cfg.Resources.MaxMemory)
	}
	if cfg.Resources.MaxCPUs != 12 {
		t.Errorf("Resources.MaxCPUs = %d, want 12", cfg.Resources.MaxCPUs)
	}
	if cfg.Engine.JavaHome != "" {
		t.Errorf("Engine.JavaHome = %q, want empty", cfg.Engine.JavaHome)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.Version != Default().Pipeline.Version {
		t.Errorf("Pipeline.Version = %q, want default", cfg.Pipeline.Version)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeTempConfig(t, `
[engine]
java_home = "/opt/java/jdk-17"

[pipeline]
version = "2.5.1"
profile = "singularity"

[resources]
max_cpus = 32
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Engine.JavaHome != "/opt/java/jdk-17" {
		t.Errorf("JavaHome = %q, want /opt/java/jdk-17", cfg.Engine.JavaHome)
	}
	if cfg.Pipeline.Version != "2.5.1" {
		t.Errorf("Version = %q, want 2.5.1", cfg.Pipeline.Version)
	}
	if cfg.Pipeline.Profile != "singularity" {
		t.Errorf("Profile = %q, want singularity", cfg.Pipeline.Profile)
	}
	if cfg.Resources.MaxCPUs != 32 {
		t.Errorf("MaxCPUs = %d, want 32", cfg.Resources.MaxCPUs)
	}
	// untouched sections keep defaults
	if cfg.Resources.MaxMemory != "100.GB" {
		t.Errorf("MaxMemory = %q, want 100.GB", cfg.Resources.MaxMemory)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeTempConfig(t, "[engine\nexecutable = ")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Pipeline.Version = "2.6.0"
	cfg.Notifications.SlackWebhook = "https://hooks.example.com/x"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pipeline.Version != "2.6.0" {
		t.Errorf("Version = %q, want 2.6.0", got.Pipeline.Version)
	}
	if got.Notifications.SlackWebhook != "https://hooks.example.com/x" {
		t.Errorf("SlackWebhook = %q", got.Notifications.SlackWebhook)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := ExpandPath(tt.input)
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindLocalConfig(t *testing.T) {
	root := t.TempDir()
	subdir := filepath.Join(root, "sub", "dir")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatal(err)
	}

	localConfig := filepath.Join(root, LocalConfigName)
	if err := os.WriteFile(localConfig, []byte("[pipeline]\nversion = \"2.4.1\""), 0644); err != nil {
		t.Fatal(err)
	}

	t.Chdir(subdir)

	// Should find config in parent
	found := FindLocalConfig()
	if found != localConfig {
		t.Errorf("FindLocalConfig() = %q, want %q", found, localConfig)
	}
}

func TestLoadWithLocalFallback_ExplicitPath(t *testing.T) {
	path := writeTempConfig(t, "[pipeline]\nversion = \"2.3.0\"\n")

	cfg, err := LoadWithLocalFallback(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.Version != "2.3.0" {
		t.Errorf("Version = %q, want 2.3.0", cfg.Pipeline.Version)
	}
}

func TestLoadWithLocalFallback_LocalConfig(t *testing.T) {
	root := t.TempDir()
	localConfig := filepath.Join(root, LocalConfigName)
	if err := os.WriteFile(localConfig, []byte("[pipeline]\naligner = \"star\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Chdir(root)

	cfg, err := LoadWithLocalFallback("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.Aligner != "star" {
		t.Errorf("Aligner = %q, want star", cfg.Pipeline.Aligner)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
