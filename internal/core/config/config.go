package config

import (
	"time"
)

const (
	PayloadFormatJSON = "json"
	PayloadFormatYAML = "yaml"
)

type Config struct {
	Version       int                 `toml:"version"`
	Source        string              `toml:"source"`
	Languages     map[string]Language `toml:"languages"`
	Output        Output              `toml:"output"`
	History       History             `toml:"history"`
	Watch         Watch               `toml:"watch"`
	Observability Observability       `toml:"observability"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Output struct {
	Dir                string `toml:"dir"`
	Payload            string `toml:"payload"`
	PayloadFormat      string `toml:"payload_format"`
	DependencyDOT      string `toml:"dependency_dot"`
	ControlFlowDOT     string `toml:"control_flow_dot"`
	Mermaid            bool   `toml:"mermaid"`
	DependencyMermaid  string `toml:"dependency_mermaid"`
	ControlFlowMermaid string `toml:"control_flow_mermaid"`
}

type History struct {
	Enabled *bool  `toml:"enabled"`
	Path    string `toml:"path"`
}

// IsEnabled defaults to true when the key is absent.
func (h History) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

type Watch struct {
	Debounce         time.Duration `toml:"debounce"`
	ExcludeDirs      []string      `toml:"exclude_dirs"`
	ExcludeFiles     []string      `toml:"exclude_files"`
	MaxRunsPerMinute int           `toml:"max_runs_per_minute"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// DefaultConfig returns a fully defaulted configuration for runs without a config file.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
