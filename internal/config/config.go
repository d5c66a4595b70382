package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NER backends.
const (
	BackendGazetteer = "gazetteer"
	BackendRemote    = "remote"
)

// FileConfig is the on-disk YAML configuration shape for Gdprmask.
type FileConfig struct {
	Language         *string  `yaml:"language"`
	Descriptive      *bool    `yaml:"descriptive"`
	PreserveTypes    []string `yaml:"preserve_types"`
	MaskChar         *string  `yaml:"mask_char"`
	Threads          *int     `yaml:"threads"`
	PhoneRegions     []string `yaml:"phone_regions"`
	DisableDetectors *string  `yaml:"disable_detectors"`
	LogLevel         *string  `yaml:"log_level"`
	NoColor          *bool    `yaml:"no_color"`
	Audit            *bool    `yaml:"audit"`

	// Batch defaults mirror CLI flags
	Exclude         *string `yaml:"exclude"`
	MaxBytes        *int64  `yaml:"max_bytes"`
	DefaultExcludes *bool   `yaml:"default_excludes"`

	NER *NERConfig `yaml:"ner"`
}

// NERConfig selects the named-entity model backend.
type NERConfig struct {
	// Backend is "gazetteer" (embedded lexicons, default) or "remote".
	Backend *string `yaml:"backend"`

	// Endpoint is the URL of a remote NER service.
	Endpoint *string `yaml:"endpoint"`

	// Timeout bounds each remote call, as a Go duration ("30s").
	Timeout *string `yaml:"timeout"`

	// Serialize funnels inference through one goroutine per language for
	// backends that are not safe for concurrent use.
	Serialize *bool `yaml:"serialize"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LocalNames lists the local config file names in search order.
var LocalNames = []string{".gdprmask.yml", ".gdprmask.yaml", "gdprmask.yml", "gdprmask.yaml"}

// LoadLocal searches for a local config file in dir.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "gdprmask", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// GetNERConfig returns the NER configuration with defaults applied.
func (fc FileConfig) GetNERConfig() NERConfig {
	var cfg NERConfig
	if fc.NER != nil {
		cfg = *fc.NER
	}
	if cfg.Backend == nil {
		b := BackendGazetteer
		cfg.Backend = &b
	}
	return cfg
}

// GetBackend returns the configured backend name.
func (nc NERConfig) GetBackend() string {
	if nc.Backend == nil {
		return BackendGazetteer
	}
	return *nc.Backend
}

// GetEndpoint returns the remote endpoint or empty string.
func (nc NERConfig) GetEndpoint() string {
	if nc.Endpoint == nil {
		return ""
	}
	return *nc.Endpoint
}

// GetTimeout parses the remote timeout. Zero means the client default.
func (nc NERConfig) GetTimeout() (time.Duration, error) {
	if nc.Timeout == nil || *nc.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*nc.Timeout)
	if err != nil {
		return 0, fmt.Errorf("ner.timeout: %w", err)
	}
	return d, nil
}

// IsSerialized reports whether inference must be serialized (default false).
func (nc NERConfig) IsSerialized() bool {
	return nc.Serialize != nil && *nc.Serialize
}

// Template is the starter file written by "config init".
const Template = `# gdprmask configuration
language: sl            # sl, hr, sr, bg, mk
descriptive: false      # <MASKED_TYPE> instead of asterisks
preserve_types: []      # e.g. [LOC, ORG]
mask_char: "*"
# threads: 4
# phone_regions: [AT, IT]
# disable_detectors: ner,phone_lib
log_level: warn
no_color: false
audit: true
ner:
  backend: gazetteer    # gazetteer or remote
  # endpoint: http://localhost:8080/ner
  # timeout: 30s
  serialize: false
`
