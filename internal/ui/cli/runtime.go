package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "funcgraph/internal/core/app"
	"funcgraph/internal/core/config"
	"funcgraph/internal/shared/observability"
	"funcgraph/internal/shared/version"
)

// Run is the process entry point; it returns the exit code.
func Run(args []string) int {
	return run(args, os.Stdout)
}

func run(args []string, stdout io.Writer) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "funcgraph v%s\n", version.Version)
		return 0
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "path", opts.configPath, "error", err)
		return 1
	}
	applyOptions(&opts, cfg)
	slog.Debug("configuration loaded", "path", cfgPath, "source", cfg.Source, "output_dir", cfg.Output.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: version.Version,
		Endpoint:       cfg.Observability.OTLPEndpoint,
		Insecure:       true,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("flush traces", "error", err)
		}
	}()

	app, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer app.Close()

	if opts.history {
		return printHistory(ctx, stdout, app, cfg.Source, opts.historySize)
	}

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddr); addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(app))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "addr", addr, "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	if opts.ui {
		if err := runUI(ctx, app, cfg.Source); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	app.SetUpdateHandler(func(update coreapp.Update) {
		app.PrintSummary(stdout, update)
	})

	_, runErr := app.Run(ctx, cfg.Source)
	if !opts.watch {
		if runErr != nil {
			return 1
		}
		return 0
	}

	// A failed first run still enters watch mode so a fix can be picked up.
	if err := app.StartWatcher(ctx, cfg.Source); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}
	<-ctx.Done()
	slog.Info("shutting down")
	return 0
}

// loadConfig falls back to defaults only when the implicit default file is
// absent; an explicit path must exist.
func loadConfig(path string) (*config.Config, string, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, path, nil
	}
	if path != defaultConfigPath || !stderrors.Is(err, os.ErrNotExist) {
		return nil, "", err
	}

	cfg = config.DefaultConfig()
	config.ApplyEnvOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

func applyOptions(opts *cliOptions, cfg *config.Config) {
	if len(opts.args) > 0 {
		cfg.Source = opts.args[0]
	}
	if dir := strings.TrimSpace(opts.outDir); dir != "" {
		cfg.Output.Dir = dir
	}
	if addr := strings.TrimSpace(opts.metricsAddr); addr != "" {
		cfg.Observability.MetricsAddr = addr
	}
}

func printHistory(ctx context.Context, w io.Writer, app *coreapp.App, source string, limit int) int {
	store := app.History()
	if store == nil {
		fmt.Fprintln(os.Stderr, "history is disabled (history.enabled = false)")
		return 1
	}
	runs, err := store.LoadRuns(ctx, source, limit)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Fprintf(w, "no recorded runs for %s\n", source)
		return 0
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\tfunctions=%d anonymous=%d deps=%d/%d flow=%d/%d\n",
			run.Timestamp.Format(time.RFC3339),
			run.RunID,
			run.FunctionCount,
			run.AnonymousCount,
			run.DependencyNodes,
			run.DependencyEdges,
			run.ControlFlowNodes,
			run.ControlFlowEdges,
		)
	}
	return 0
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stderr
	closeFn := func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "funcgraph", "funcgraph.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "funcgraph", "funcgraph.log")
	}

	return "funcgraph.log"
}
