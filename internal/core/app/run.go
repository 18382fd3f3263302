package app

import (
	"context"
	"log/slog"
	"time"

	"funcgraph/internal/core/errors"
	"funcgraph/internal/data/history"
	"funcgraph/internal/engine/parser"
	"funcgraph/internal/shared/observability"
)

const (
	runStatusOK           = "ok"
	runStatusParseFailure = "parse_failure"
	runStatusSinkFailure  = "sink_failure"
	runStatusError        = "error"
)

// Run analyzes path, writes the artifacts and records the run in history.
// A parse failure writes nothing. History errors are logged but do not fail
// the run.
func (a *App) Run(ctx context.Context, path string) (*Result, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer span.End()

	result, err := a.Analyze(ctx, path)
	if err != nil {
		a.finishRun(nil, nil, err)
		return nil, err
	}

	artifacts, err := a.GenerateOutputs(ctx, result)
	if err != nil {
		a.finishRun(result, artifacts, err)
		return nil, err
	}

	if err := a.recordRun(ctx, result); err != nil {
		slog.Warn("failed to record run history", "path", path, "run_id", result.RunID, "error", err)
	}

	a.setLast(result)
	a.finishRun(result, artifacts, nil)
	return result, nil
}

func (a *App) finishRun(result *Result, artifacts []string, err error) {
	status := runStatusOK
	if err != nil {
		code := errors.CodeOf(err)
		switch code {
		case errors.CodeParseFailure:
			status = runStatusParseFailure
		case errors.CodeSinkFailure:
			status = runStatusSinkFailure
		default:
			status = runStatusError
		}
		slog.Error("run failed", "status", status, "code", string(code), "error", err)
	}
	observability.RunsTotal.WithLabelValues(status).Inc()

	a.emitUpdate(Update{
		Result:    result,
		Err:       err,
		Artifacts: artifacts,
		Timestamp: time.Now(),
	})
}

func (a *App) recordRun(ctx context.Context, result *Result) error {
	if a.history == nil {
		return nil
	}
	_, err := a.history.SaveRun(ctx, snapshotFromResult(result))
	return err
}

func snapshotFromResult(result *Result) history.Snapshot {
	rows := make([]history.FunctionRow, 0, len(result.Functions))
	for i, fn := range result.Functions {
		callees := []string{}
		if fn.Kind == parser.KindDeclaration && result.Dependencies.HasNode(fn.Name) {
			callees = result.Dependencies.Callees(fn.Name)
		}
		rows = append(rows, history.FunctionRow{
			Ordinal: i,
			Name:    fn.Name,
			Kind:    fn.Kind.String(),
			Line:    fn.Line,
			Column:  fn.Column,
			Params:  fn.Params,
			Callees: callees,
		})
	}

	return history.Snapshot{
		RunID:            result.RunID,
		SourcePath:       result.Path,
		Language:         result.Language,
		Timestamp:        time.Now().UTC(),
		DurationMillis:   result.Duration.Milliseconds(),
		FunctionCount:    len(result.Functions),
		AnonymousCount:   result.AnonymousCount(),
		DependencyNodes:  result.Dependencies.NodeCount(),
		DependencyEdges:  result.Dependencies.EdgeCount(),
		ControlFlowNodes: result.ControlFlow.NodeCount(),
		ControlFlowEdges: result.ControlFlow.EdgeCount(),
		Functions:        rows,
	}
}
