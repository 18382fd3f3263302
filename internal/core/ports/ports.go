package ports

import (
	"context"

	"funcgraph/internal/data/history"
	"funcgraph/internal/engine/parser"
)

// CodeParser abstracts source reading, parsing and language support checks.
type CodeParser interface {
	ReadFile(path string) (*parser.SourceUnit, error)
	ParseFile(path string, content []byte) (*parser.SourceUnit, error)
	GetLanguage(path string) string
	IsSupportedPath(path string) bool
	SupportedExtensions() []string
}

// ArtifactSink receives the rendered run artifacts keyed by a logical name.
type ArtifactSink interface {
	Write(ctx context.Context, artifact Artifact) error
}

// Artifact is one rendered output document.
type Artifact struct {
	Kind string
	Path string
	Data []byte
}

// HistoryStore abstracts run persistence for the history database.
type HistoryStore interface {
	SaveRun(ctx context.Context, snapshot history.Snapshot) (string, error)
	LoadRuns(ctx context.Context, sourcePath string, limit int) ([]history.Snapshot, error)
	LoadFunctions(ctx context.Context, runID string) ([]history.FunctionRow, error)
	Close() error
}
