package cli

import (
	"context"
	"log/slog"

	coreapp "funcgraph/internal/core/app"
	"funcgraph/internal/data/history"

	tea "github.com/charmbracelet/bubbletea"
)

const uiHistoryRuns = 10

func runUI(ctx context.Context, app *coreapp.App, source string) error {
	m := initialModel(source)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	sendUpdate := func(update coreapp.Update) {
		p.Send(updateMsg{
			result: update.Result,
			err:    update.Err,
			runs:   recentRuns(ctx, app, source),
		})
	}
	app.SetUpdateHandler(sendUpdate)

	go func() {
		_, _ = app.Run(ctx, source)
		if err := app.StartWatcher(ctx, source); err != nil {
			slog.Error("failed to start watcher", "error", err)
			p.Send(updateMsg{err: err})
		}
	}()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func recentRuns(ctx context.Context, app *coreapp.App, source string) []history.Snapshot {
	store := app.History()
	if store == nil {
		return nil
	}
	runs, err := store.LoadRuns(ctx, source, uiHistoryRuns)
	if err != nil {
		slog.Warn("failed to load recent runs", "error", err)
		return nil
	}
	return runs
}
