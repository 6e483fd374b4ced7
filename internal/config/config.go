package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LocalConfigName is the per-project config file searched for from the working directory upwards
const LocalConfigName = ".scrnaseq-run.toml"

// Config holds all application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Engine        EngineConfig        `toml:"engine"`
	Pipeline      PipelineConfig      `toml:"pipeline"`
	Resources     ResourcesConfig     `toml:"resources"`
	Notifications NotificationsConfig `toml:"notifications"`
	Log           LogConfig           `toml:"log"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	DatabasePath string `toml:"database_path"`
}

// EngineConfig describes the workflow engine executable and its runtime
type EngineConfig struct {
	Executable string `toml:"executable"`
	JavaHome   string `toml:"java_home"` // exported to the engine as JAVA_HOME when set
}

// PipelineConfig holds defaults for the nf-core/scrnaseq workflow
type PipelineConfig struct {
	Workflow   string `toml:"workflow"`
	Version    string `toml:"version"`
	Aligner    string `toml:"aligner"`
	Protocol   string `toml:"protocol"`
	Profile    string `toml:"profile"`
	ReleaseAPI string `toml:"release_api"`
}

// ResourcesConfig holds the default resource limits passed to the workflow
type ResourcesConfig struct {
	MaxMemory string `toml:"max_memory"`
	MaxCPUs   int    `toml:"max_cpus"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	Desktop      bool   `toml:"desktop"`
	SlackWebhook string `toml:"slack_webhook"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			DatabasePath: filepath.Join(home, ".scrnaseq-run", "runs.db"),
		},
		Engine: EngineConfig{
			Executable: "nextflow",
		},
		Pipeline: PipelineConfig{
			Workflow:   "nf-core/scrnaseq",
			Version:    "2.7.1",
			Aligner:    "cellranger",
			Protocol:   "auto",
			Profile:    "docker",
			ReleaseAPI: "https://api.github.com/repos/nf-core/scrnaseq/releases/latest",
		},
		Resources: ResourcesConfig{
			MaxMemory: "100.GB",
			MaxCPUs:   12,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Expand paths
	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)
	cfg.Engine.JavaHome = ExpandPath(cfg.Engine.JavaHome)
	cfg.Engine.Executable = ExpandPath(cfg.Engine.Executable)

	return cfg, nil
}

// LoadWithLocalFallback loads the explicit path if given, otherwise the
// nearest LocalConfigName, otherwise the user config.
func LoadWithLocalFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}
	if local := FindLocalConfig(); local != "" {
		return Load(local)
	}
	return Load(DefaultConfigPath())
}

// FindLocalConfig walks up from the working directory looking for LocalConfigName.
// Returns "" if none is found.
func FindLocalConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, LocalConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Save writes the configuration to path, creating parent directories
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "scrnaseq-run", "config.toml")
}
