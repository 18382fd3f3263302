package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: FUNCGRAPH_[SECTION]_[KEY] (e.g., FUNCGRAPH_OUTPUT_DIR).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Source, "FUNCGRAPH_SOURCE")

	setEnvString(&cfg.Output.Dir, "FUNCGRAPH_OUTPUT_DIR")
	setEnvString(&cfg.Output.PayloadFormat, "FUNCGRAPH_OUTPUT_PAYLOAD_FORMAT")
	setEnvBool(&cfg.Output.Mermaid, "FUNCGRAPH_OUTPUT_MERMAID")

	if val, ok := os.LookupEnv("FUNCGRAPH_HISTORY_ENABLED"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", "FUNCGRAPH_HISTORY_ENABLED", "value", val)
			cfg.History.Enabled = &b
		}
	}
	setEnvString(&cfg.History.Path, "FUNCGRAPH_HISTORY_PATH")

	setEnvDuration(&cfg.Watch.Debounce, "FUNCGRAPH_WATCH_DEBOUNCE")
	setEnvInt(&cfg.Watch.MaxRunsPerMinute, "FUNCGRAPH_WATCH_MAX_RUNS_PER_MINUTE")

	setEnvString(&cfg.Observability.MetricsAddr, "FUNCGRAPH_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "FUNCGRAPH_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
