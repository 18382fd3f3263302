package app

import (
	"context"
	"log/slog"
	"time"

	"funcgraph/internal/core/errors"
	"funcgraph/internal/engine/graph"
	"funcgraph/internal/engine/parser"
	"funcgraph/internal/engine/payload"
	"funcgraph/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	graphDependency  = "dependency"
	graphControlFlow = "control_flow"
)

// Analyze reads and parses path, then runs the extractor and both graph
// builders over the same unit. Nothing is written.
func (a *App) Analyze(ctx context.Context, path string) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Analyze", trace.WithAttributes(attribute.String("source.path", path)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.parser == nil {
		return nil, errors.New(errors.CodeInternal, "parser is required")
	}

	started := time.Now()
	unit, err := a.parse(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, errors.AddContext(err, errors.CtxOperation, "analyze")
	}
	defer unit.Close()
	span.SetAttributes(attribute.String("source.language", unit.Language))

	var (
		functions   []payload.FunctionRecord
		deps        *graph.DependencyGraph
		controlFlow *graph.ControlFlowGraph
	)
	passes := []struct {
		task string
		run  func()
	}{
		{"extract", func() { functions = payload.Extract(unit) }},
		{"dependency_graph", func() { deps = graph.BuildDependencyGraph(unit) }},
		{"control_flow_graph", func() { controlFlow = graph.BuildControlFlowGraph(unit) }},
	}
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}
		timed(ctx, pass.task, pass.run)
	}

	result := &Result{
		RunID:        uuid.NewString(),
		Path:         path,
		Language:     unit.Language,
		Functions:    functions,
		Dependencies: deps,
		ControlFlow:  controlFlow,
		Duration:     time.Since(started),
	}

	observability.FunctionsExtracted.Set(float64(len(functions)))
	observability.GraphNodes.WithLabelValues(graphDependency).Set(float64(deps.NodeCount()))
	observability.GraphEdges.WithLabelValues(graphDependency).Set(float64(deps.EdgeCount()))
	observability.GraphNodes.WithLabelValues(graphControlFlow).Set(float64(controlFlow.NodeCount()))
	observability.GraphEdges.WithLabelValues(graphControlFlow).Set(float64(controlFlow.EdgeCount()))

	slog.Debug("analysis complete",
		"path", path,
		"language", unit.Language,
		"functions", len(functions),
		"dependency_edges", deps.EdgeCount(),
		"control_flow_edges", controlFlow.EdgeCount(),
		"duration", result.Duration,
	)
	return result, nil
}

func (a *App) parse(ctx context.Context, path string) (*parser.SourceUnit, error) {
	_, span := observability.Tracer.Start(ctx, "parser.ReadFile")
	defer span.End()

	started := time.Now()
	unit, err := a.parser.ReadFile(path)
	language := a.parser.GetLanguage(path)
	if language != "" {
		observability.ParsingDuration.WithLabelValues(language).Observe(time.Since(started).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return unit, nil
}

func timed(ctx context.Context, task string, fn func()) {
	_, span := observability.Tracer.Start(ctx, "analysis."+task)
	defer span.End()

	started := time.Now()
	fn()
	observability.AnalysisDuration.WithLabelValues(task).Observe(time.Since(started).Seconds())
}
