package history

import "time"

const SchemaVersion = 1

// Snapshot summarizes one analysis run of a source file.
type Snapshot struct {
	RunID            string
	SchemaVersion    int
	SourcePath       string
	Language         string
	Timestamp        time.Time
	DurationMillis   int64
	FunctionCount    int
	AnonymousCount   int
	DependencyNodes  int
	DependencyEdges  int
	ControlFlowNodes int
	ControlFlowEdges int
	Functions        []FunctionRow
}

// FunctionRow is one extracted function as stored for a run.
type FunctionRow struct {
	Ordinal int
	Name    string
	Kind    string
	Line    int
	Column  int
	Params  []string
	Callees []string
}
