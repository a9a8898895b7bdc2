package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Repository RepositoryConfig `json:"repository" yaml:"repository"`
	Filters    FilterConfig     `json:"filters" yaml:"filters"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}

// RepositoryConfig locates the repository and the content inside it.
type RepositoryConfig struct {
	Path      string `json:"path" yaml:"path"`           // Default: "."
	Ref       string `json:"ref" yaml:"ref"`             // Default: "HEAD"
	SourceDir string `json:"sourceDir" yaml:"sourceDir"` // Default: repository root
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// HistoryConfig holds history resolution options.
type HistoryConfig struct {
	MaxDepth           int    `json:"maxDepth" yaml:"maxDepth"`                     // Default: 1000
	Concurrency        int    `json:"concurrency" yaml:"concurrency"`               // Default: 4
	BlobConcurrency    int    `json:"blobConcurrency" yaml:"blobConcurrency"`       // Default: 8
	FileTimeout        string `json:"fileTimeout" yaml:"fileTimeout"`         // e.g. "30s", "500ms". Default: "" (none)
	Layout             string `json:"layout" yaml:"layout"`
	RenameDetect       string `json:"renameDetect" yaml:"renameDetect"`       // Default: "auto"
	DefaultFileMode    string `json:"defaultFileMode" yaml:"defaultFileMode"` // Default: "0444"
}

// Timeout parses FileTimeout. An empty or non-positive duration disables
// the per-file timeout and yields zero.
func (h HistoryConfig) Timeout() (time.Duration, error) {
	if h.FileTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(h.FileTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid file timeout %q: %w", h.FileTimeout, err)
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			Path: ".",
			Ref:  "HEAD",
		},
		Filters: FilterConfig{
			Include: []string{"**/*.md"},
			Exclude: []string{},
		},
		History: HistoryConfig{
			MaxDepth:        1000,
			Concurrency:     4,
			BlobConcurrency: 8,
			RenameDetect:    "auto",
			DefaultFileMode: "0444",
		},
	}
}

// configFileNames are tried, in order, in the working and home directories.
var configFileNames = []string{".pagehistory.json", ".pagehistory.yaml", ".pagehistory.yml"}

// LoadConfig loads configuration from a file, merging with defaults.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func findConfigFile() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}

	for _, dir := range dirs {
		for _, name := range configFileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveConfig saves configuration to a file, as YAML or JSON depending on
// the file extension.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
