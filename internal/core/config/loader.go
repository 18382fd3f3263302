package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"funcgraph/internal/core/errors"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("decode config %s", path))
	}

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs every section check and returns the first failure.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateVersion,
		validateLanguages,
		validateOutput,
		validateHistory,
		validateWatch,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Source) == "" {
		cfg.Source = "./src/js/main.js"
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		cfg.Output.Dir = "."
	}
	if strings.TrimSpace(cfg.Output.Payload) == "" {
		cfg.Output.Payload = "payloadResult.json"
	}
	if strings.TrimSpace(cfg.Output.PayloadFormat) == "" {
		cfg.Output.PayloadFormat = PayloadFormatJSON
	}
	cfg.Output.PayloadFormat = strings.ToLower(strings.TrimSpace(cfg.Output.PayloadFormat))
	if strings.TrimSpace(cfg.Output.DependencyDOT) == "" {
		cfg.Output.DependencyDOT = "dependencyGraph.dot"
	}
	if strings.TrimSpace(cfg.Output.ControlFlowDOT) == "" {
		cfg.Output.ControlFlowDOT = "controlFlowGraph.dot"
	}
	if strings.TrimSpace(cfg.Output.DependencyMermaid) == "" {
		cfg.Output.DependencyMermaid = "dependencyGraph.mmd"
	}
	if strings.TrimSpace(cfg.Output.ControlFlowMermaid) == "" {
		cfg.Output.ControlFlowMermaid = "controlFlowGraph.mmd"
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = filepath.Join("data", "funcgraph.db")
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if len(cfg.Watch.ExcludeFiles) == 0 {
		cfg.Watch.ExcludeFiles = []string{"*.swp", "*~", ".#*"}
	}
	if len(cfg.Watch.ExcludeDirs) == 0 {
		cfg.Watch.ExcludeDirs = []string{".git", "node_modules"}
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "funcgraph"
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d", cfg.Version)
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	for language, settings := range cfg.Languages {
		if strings.TrimSpace(language) == "" {
			return fmt.Errorf("languages key must not be empty")
		}
		for _, ext := range settings.Extensions {
			if strings.TrimSpace(ext) == "" {
				return fmt.Errorf("languages.%s.extensions must not include empty values", language)
			}
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.PayloadFormat {
	case PayloadFormatJSON, PayloadFormatYAML:
	default:
		return fmt.Errorf("output.payload_format must be one of: json, yaml")
	}

	outputs := make(map[string]string)
	checkConflict := func(path, name string) error {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		path = filepath.Clean(path)
		if owner, exists := outputs[path]; exists {
			return fmt.Errorf("output conflict: %s and %s share the same path %q", owner, name, path)
		}
		outputs[path] = name
		return nil
	}

	if err := checkConflict(cfg.Output.Payload, "output.payload"); err != nil {
		return err
	}
	if err := checkConflict(cfg.Output.DependencyDOT, "output.dependency_dot"); err != nil {
		return err
	}
	if err := checkConflict(cfg.Output.ControlFlowDOT, "output.control_flow_dot"); err != nil {
		return err
	}
	if cfg.Output.Mermaid {
		if err := checkConflict(cfg.Output.DependencyMermaid, "output.dependency_mermaid"); err != nil {
			return err
		}
		if err := checkConflict(cfg.Output.ControlFlowMermaid, "output.control_flow_mermaid"); err != nil {
			return err
		}
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.IsEnabled() {
		return nil
	}
	if info, err := os.Stat(cfg.History.Path); err == nil && info.IsDir() {
		return fmt.Errorf("history.path %q is a directory, expected file", cfg.History.Path)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRunsPerMinute < 0 {
		return fmt.Errorf("watch.max_runs_per_minute must be >= 0")
	}
	for i, pattern := range append(append([]string(nil), cfg.Watch.ExcludeDirs...), cfg.Watch.ExcludeFiles...) {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("watch exclusion pattern %d must not be empty", i)
		}
	}
	return nil
}
