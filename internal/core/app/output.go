package app

import (
	"context"
	"path/filepath"

	"funcgraph/internal/core/errors"
	"funcgraph/internal/core/ports"
	"funcgraph/internal/shared/observability"
	"funcgraph/internal/shared/util"
	"funcgraph/internal/ui/report/formats"
)

const (
	ArtifactPayload            = "payload"
	ArtifactDependencyDOT      = "dependency_dot"
	ArtifactControlFlowDOT     = "control_flow_dot"
	ArtifactDependencyMermaid  = "dependency_mermaid"
	ArtifactControlFlowMermaid = "control_flow_mermaid"
)

// FileSink writes artifacts beneath a root directory, creating parents as needed.
type FileSink struct {
	root string
}

func NewFileSink(root string) *FileSink {
	return &FileSink{root: root}
}

func (s *FileSink) Resolve(path string) string {
	if filepath.IsAbs(path) || s.root == "" {
		return path
	}
	return filepath.Join(s.root, path)
}

func (s *FileSink) Write(ctx context.Context, artifact ports.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return util.WriteFileWithDirs(s.Resolve(artifact.Path), artifact.Data, 0o644)
}

// RenderArtifacts serializes every configured output of result. Rendering
// happens before any write so an encoding failure leaves the sink untouched.
func (a *App) RenderArtifacts(result *Result) ([]ports.Artifact, error) {
	if result == nil {
		return nil, errors.New(errors.CodeInternal, "result is required")
	}
	out := a.Config.Output

	payloadData, err := formats.EncodePayload(result.Functions, out.PayloadFormat)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSinkFailure, "render payload")
	}

	artifacts := []ports.Artifact{
		{Kind: ArtifactPayload, Path: out.Payload, Data: payloadData},
		{Kind: ArtifactDependencyDOT, Path: out.DependencyDOT, Data: []byte(a.dot.Dependency(result.Dependencies))},
		{Kind: ArtifactControlFlowDOT, Path: out.ControlFlowDOT, Data: []byte(a.dot.ControlFlow(result.ControlFlow))},
	}
	if out.Mermaid {
		artifacts = append(artifacts,
			ports.Artifact{Kind: ArtifactDependencyMermaid, Path: out.DependencyMermaid, Data: []byte(a.mermaid.Dependency(result.Dependencies))},
			ports.Artifact{Kind: ArtifactControlFlowMermaid, Path: out.ControlFlowMermaid, Data: []byte(a.mermaid.ControlFlow(result.ControlFlow))},
		)
	}
	return artifacts, nil
}

// GenerateOutputs renders and writes all artifacts, returning their paths. The
// first sink error aborts the remaining writes.
func (a *App) GenerateOutputs(ctx context.Context, result *Result) ([]string, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.GenerateOutputs")
	defer span.End()

	if a.sink == nil {
		return nil, errors.New(errors.CodeInternal, "artifact sink is required")
	}
	artifacts, err := a.RenderArtifacts(result)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		if err := a.sink.Write(ctx, artifact); err != nil {
			span.RecordError(err)
			wrapped := errors.Wrap(err, errors.CodeSinkFailure, "write "+artifact.Kind)
			return written, errors.AddContext(wrapped, errors.CtxPath, artifact.Path)
		}
		observability.ArtifactsWrittenTotal.WithLabelValues(artifact.Kind).Inc()
		written = append(written, artifact.Path)
	}
	return written, nil
}
