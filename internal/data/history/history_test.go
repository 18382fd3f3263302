package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "funcgraph.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndLoadRuns(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	base := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	first := Snapshot{
		SourcePath:       "src/js/main.js",
		Language:         "javascript",
		Timestamp:        base,
		FunctionCount:    3,
		AnonymousCount:   1,
		DependencyNodes:  2,
		DependencyEdges:  2,
		ControlFlowNodes: 1,
		ControlFlowEdges: 2,
		Functions: []FunctionRow{
			{Name: "main", Kind: "declaration", Line: 1, Column: 1, Params: []string{"a", "b"}, Callees: []string{"helper"}},
			{Name: "anonymous", Kind: "arrow", Line: 4, Column: 11, Params: []string{}, Callees: []string{}},
		},
	}
	second := Snapshot{
		SourcePath:    "src/js/main.js",
		Timestamp:     base.Add(time.Minute),
		FunctionCount: 4,
	}
	other := Snapshot{SourcePath: "other.js", Timestamp: base}

	firstID, err := store.SaveRun(ctx, first)
	if err != nil {
		t.Fatalf("save first run: %v", err)
	}
	if firstID == "" {
		t.Fatal("expected generated run id")
	}
	if _, err := store.SaveRun(ctx, second); err != nil {
		t.Fatalf("save second run: %v", err)
	}
	if _, err := store.SaveRun(ctx, other); err != nil {
		t.Fatalf("save other run: %v", err)
	}

	runs, err := store.LoadRuns(ctx, "src/js/main.js", 0)
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs for main.js, got %d", len(runs))
	}
	if runs[0].FunctionCount != 4 || runs[1].RunID != firstID {
		t.Fatalf("expected newest first, got %+v", runs)
	}
	if runs[1].ControlFlowEdges != 2 || runs[1].Language != "javascript" || !runs[1].Timestamp.Equal(base) {
		t.Fatalf("expected counters to roundtrip, got %+v", runs[1])
	}

	limited, err := store.LoadRuns(ctx, "src/js/main.js", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].FunctionCount != 4 {
		t.Fatalf("expected only the latest run, got %+v", limited)
	}

	functions, err := store.LoadFunctions(ctx, firstID)
	if err != nil {
		t.Fatalf("load functions: %v", err)
	}
	if len(functions) != 2 {
		t.Fatalf("expected 2 function rows, got %d", len(functions))
	}
	if !reflect.DeepEqual(functions[0].Params, []string{"a", "b"}) || !reflect.DeepEqual(functions[0].Callees, []string{"helper"}) {
		t.Fatalf("unexpected first row: %+v", functions[0])
	}
	if functions[1].Ordinal != 1 || len(functions[1].Params) != 0 || functions[1].Params == nil {
		t.Fatalf("expected empty non-nil params on second row, got %+v", functions[1])
	}
}

func TestStore_SaveRunValidation(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if _, err := store.SaveRun(ctx, Snapshot{}); err == nil {
		t.Fatal("expected error for empty source path")
	}
	if _, err := store.SaveRun(ctx, Snapshot{SourcePath: "a.js", SchemaVersion: SchemaVersion + 1}); err == nil {
		t.Fatal("expected error for unsupported schema version")
	}

	id := "fixed-id"
	if _, err := store.SaveRun(ctx, Snapshot{RunID: id, SourcePath: "a.js"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveRun(ctx, Snapshot{RunID: id, SourcePath: "a.js"}); err == nil {
		t.Fatal("expected duplicate run id to be rejected")
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Open("  "); err == nil {
		t.Fatal("expected open error for empty path")
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcgraph.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcgraph.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsCorruptError(t *testing.T) {
	if !IsCorruptError(errors.New("database disk image is malformed")) {
		t.Fatal("expected malformed sqlite message to be treated as corrupt")
	}
	if IsCorruptError(nil) {
		t.Fatal("expected nil to be healthy")
	}
}

func TestStore_SourcePathIsNormalized(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, spelled := range []string{"./src/js/main.js", "src/js/main.js", "src/js/../js/main.js"} {
		if _, err := store.SaveRun(ctx, Snapshot{SourcePath: spelled, Language: "javascript"}); err != nil {
			t.Fatalf("save %s: %v", spelled, err)
		}
	}

	abs, err := filepath.Abs("src/js/main.js")
	if err != nil {
		t.Fatal(err)
	}
	for _, query := range []string{"src/js/main.js", "./src/js/main.js", abs} {
		runs, err := store.LoadRuns(ctx, query, 0)
		if err != nil {
			t.Fatalf("load %s: %v", query, err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs for %s, got %d", query, len(runs))
		}
		if runs[0].SourcePath != abs {
			t.Fatalf("expected stored path %s, got %s", abs, runs[0].SourcePath)
		}
	}
}
