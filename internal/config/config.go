package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/metascrub/metascrub/pkg/types"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Source            string               `yaml:"source" json:"source"`
	Dest              string               `yaml:"dest" json:"dest"`
	IncludeExtensions []string             `yaml:"include_extensions" json:"include_extensions"`
	Jobs              int                  `yaml:"jobs" json:"jobs"`
	ConflictPolicy    types.ConflictPolicy `yaml:"conflict_policy" json:"conflict_policy"`
	OutputSuffix      string               `yaml:"output_suffix" json:"output_suffix"`
	QuarantineDir     string               `yaml:"quarantine_dir" json:"quarantine_dir"`
	StateFile         string               `yaml:"state_file" json:"state_file"`
	LogFile           string               `yaml:"log_file" json:"log_file"`
	LogJSON           bool                 `yaml:"log_json" json:"log_json"`
	DryRun            bool                 `yaml:"dry_run" json:"dry_run"`
	Verify            bool                 `yaml:"verify" json:"verify"`
	IgnoreState       bool                 `yaml:"ignore_state" json:"ignore_state"`
}

func DefaultConfig() *Config {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 4
	}

	homeDir, _ := os.UserHomeDir()
	stateDir := filepath.Join(homeDir, ".metascrub")

	return &Config{
		IncludeExtensions: []string{
			"jpg", "jpeg", "png", "arw", "cr2", "nef", "dng", "orf", "raf", "rw2", "srw",
			"pdf", "doc", "docx", "xls", "xlsx", "odt", "ods",
			"mp3", "mp4", "mov", "avi", "mkv", "webm", "flac", "ogg", "m4a",
		},
		Jobs:           jobs,
		ConflictPolicy: types.ConflictPolicySkip,
		OutputSuffix:   "clean",
		QuarantineDir:  "quarantine",
		StateFile:      filepath.Join(stateDir, "state.json"),
		LogFile:        filepath.Join(stateDir, "metascrub.log"),
		LogJSON:        false,
		DryRun:         false,
		Verify:         false,
		IgnoreState:    false,
	}
}

func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source path is required"}
	}
	if c.Jobs < 1 {
		c.Jobs = 1
	}

	homeDir, _ := os.UserHomeDir()
	stateDir := filepath.Join(homeDir, ".metascrub")

	if c.LogFile == "" {
		c.LogFile = filepath.Join(stateDir, "metascrub.log")
	}
	if c.StateFile == "" {
		c.StateFile = filepath.Join(stateDir, "state.json")
	}
	if c.OutputSuffix == "" {
		c.OutputSuffix = "clean"
	}
	if c.QuarantineDir == "" {
		c.QuarantineDir = "quarantine"
	}

	return nil
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
