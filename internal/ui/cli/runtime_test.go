package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	coreapp "funcgraph/internal/core/app"
	"funcgraph/internal/core/config"
	"funcgraph/internal/shared/version"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantWatch bool
		wantUI    bool
		wantArgs  []string
	}{
		{name: "defaults", args: nil},
		{name: "watch", args: []string{"-watch", "main.js"}, wantWatch: true, wantArgs: []string{"main.js"}},
		{name: "ui implies watch", args: []string{"-ui"}, wantWatch: true, wantUI: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseOptions(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if opts.watch != tt.wantWatch || opts.ui != tt.wantUI {
				t.Fatalf("unexpected modes: watch=%v ui=%v", opts.watch, opts.ui)
			}
			if strings.Join(opts.args, " ") != strings.Join(tt.wantArgs, " ") {
				t.Fatalf("unexpected args: %v", opts.args)
			}
			if opts.configPath != defaultConfigPath || opts.historySize != 10 {
				t.Fatalf("unexpected defaults: %+v", opts)
			}
		})
	}
}

func TestParseOptions_RejectsUnknownFlag(t *testing.T) {
	if _, err := parseOptions([]string{"-nope"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestApplyOptions_OverridesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	opts := &cliOptions{args: []string{"./app.js"}, outDir: "build", metricsAddr: ":9090"}
	applyOptions(opts, cfg)

	if cfg.Source != "./app.js" || cfg.Output.Dir != "build" || cfg.Observability.MetricsAddr != ":9090" {
		t.Fatalf("unexpected config: source=%q dir=%q addr=%q", cfg.Source, cfg.Output.Dir, cfg.Observability.MetricsAddr)
	}
}

func TestLoadConfig_DefaultPathFallsBack(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, path, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("expected defaults, got %v", err)
	}
	if path != "" || cfg.Source != "./src/js/main.js" {
		t.Fatalf("unexpected fallback: path=%q source=%q", path, cfg.Source)
	}
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestRun_PrintsVersion(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"-version"}, &out); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if got := out.String(); got != "funcgraph v"+version.Version+"\n" {
		t.Fatalf("unexpected version output %q", got)
	}
}

func TestRun_SingleAnalysis(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "main.js")
	if err := os.WriteFile(source, []byte("function a() { b(); }\na();\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "funcgraph.toml")
	cfgBody := "version = 1\n[history]\nenabled = false\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	var out bytes.Buffer
	code := run([]string{"-config", cfgPath, "-out", outDir, source}, &out)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d; output:\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "functions: 1 (0 anonymous)") {
		t.Fatalf("unexpected summary:\n%s", out.String())
	}
	data, err := os.ReadFile(filepath.Join(outDir, "dependencyGraph.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\"a\" -> \"b\";") {
		t.Fatalf("unexpected dependency graph:\n%s", data)
	}
}

func TestRun_HistoryDisabled(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "funcgraph.toml")
	if err := os.WriteFile(cfgPath, []byte("version = 1\n[history]\nenabled = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := run([]string{"-config", cfgPath, "-history"}, &bytes.Buffer{}); code != 1 {
		t.Fatalf("expected exit 1 with history disabled, got %d", code)
	}
}

func TestObservabilityServer_Health(t *testing.T) {
	cfg := config.DefaultConfig()
	disabled := false
	cfg.History.Enabled = &disabled
	app, err := coreapp.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	server := NewObservabilityServer("127.0.0.1:0", coreapp.NewHealthService(app))
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var status coreapp.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Components["history"] != "disabled" || status.Components["last_run"] != "none" {
		t.Fatalf("unexpected components: %+v", status.Components)
	}

	metrics, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	metrics.Body.Close()
	if metrics.StatusCode != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", metrics.StatusCode)
	}
}

func TestObservabilityServer_StartBindsAddress(t *testing.T) {
	server := NewObservabilityServer("127.0.0.1:0", nil)
	if err := server.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer server.Stop(context.Background())
	if strings.HasSuffix(server.Addr(), ":0") {
		t.Fatalf("expected bound port, got %s", server.Addr())
	}
}

func TestEditorArgs(t *testing.T) {
	target := sourceTarget{file: "main.js", line: 12}
	if got := editorArgs("nvim", target); !reflect.DeepEqual(got, []string{"+12", "main.js"}) {
		t.Fatalf("unexpected vim args: %v", got)
	}
	if got := editorArgs("code", target); !reflect.DeepEqual(got, []string{"main.js"}) {
		t.Fatalf("unexpected default args: %v", got)
	}
}

func TestResolveLogPath_UsesXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	if got := resolveLogPath(); got != filepath.Join("/tmp/state", "funcgraph", "funcgraph.log") {
		t.Fatalf("unexpected log path %s", got)
	}
}
