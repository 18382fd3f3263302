package app

import (
	"context"
	"log/slog"

	"funcgraph/internal/core/errors"
	"funcgraph/internal/core/watcher"
	"funcgraph/internal/shared/observability"
)

// StartWatcher re-runs the analysis of source whenever it changes on disk.
// The watcher stops when ctx is cancelled or Close is called.
func (a *App) StartWatcher(ctx context.Context, source string) error {
	if a.activeWatcher != nil {
		return errors.New(errors.CodeValidationError, "watcher already running")
	}
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Watch.ExcludeDirs,
		a.Config.Watch.ExcludeFiles,
		func(changed []string) { a.HandleChanges(ctx, source, changed) },
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "create watcher")
	}
	if a.parser != nil {
		w.SetExtensions(a.parser.SupportedExtensions())
	}
	if err := w.Watch([]string{source}); err != nil {
		_ = w.Close()
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "watch source"), errors.CtxPath, source)
	}
	a.activeWatcher = w

	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
	slog.Info("watching source", "path", source, "debounce", a.Config.Watch.Debounce)
	return nil
}

// HandleChanges is the debounced watcher callback. Runs beyond the configured
// per-minute budget wait for a token instead of being dropped.
func (a *App) HandleChanges(ctx context.Context, source string, changed []string) {
	if ctx.Err() != nil {
		return
	}
	if !a.limiter.Allow(1) {
		observability.WatcherThrottledTotal.Inc()
		slog.Info("re-analysis throttled", "path", source)
		if err := a.limiter.Wait(ctx, 1); err != nil {
			return
		}
	}

	slog.Info("source changed, re-analyzing", "path", source, "events", len(changed))
	// Failures are logged and reported by Run.
	_, _ = a.Run(ctx, source)
}
