package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
	listSep     = ","

	// Fixed width so ts_utc sorts lexically in time order.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

// Store persists run snapshots in a local SQLite database.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun stores the snapshot and its function rows in one transaction and
// returns the run id, generating one when the snapshot has none.
func (s *Store) SaveRun(ctx context.Context, snapshot Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(snapshot.SourcePath) == "" {
		return "", fmt.Errorf("snapshot source path must not be empty")
	}
	snapshot.SourcePath = normalizeSourcePath(snapshot.SourcePath)
	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return "", fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	err := s.withRetry("save run", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (
  run_id, schema_version, source_path, language, ts_utc, duration_ms, function_count, anonymous_count,
  dependency_nodes, dependency_edges, control_flow_nodes, control_flow_edges
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snapshot.RunID,
			snapshot.SchemaVersion,
			snapshot.SourcePath,
			snapshot.Language,
			snapshot.Timestamp.UTC().Format(timestampLayout),
			snapshot.DurationMillis,
			snapshot.FunctionCount,
			snapshot.AnonymousCount,
			snapshot.DependencyNodes,
			snapshot.DependencyEdges,
			snapshot.ControlFlowNodes,
			snapshot.ControlFlowEdges,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
		for i, fn := range snapshot.Functions {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO functions (run_id, ordinal, name, kind, line, col, params, callees)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				snapshot.RunID,
				i,
				fn.Name,
				fn.Kind,
				fn.Line,
				fn.Column,
				strings.Join(fn.Params, listSep),
				strings.Join(fn.Callees, listSep),
			); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return snapshot.RunID, nil
}

// normalizeSourcePath keys history by absolute cleaned path, so ./a.js and
// a.js share one history.
func normalizeSourcePath(path string) string {
	path = strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// LoadRuns returns the runs recorded for sourcePath, newest first. A limit of
// zero or less returns every run. Function rows are not populated.
func (s *Store) LoadRuns(ctx context.Context, sourcePath string, limit int) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  run_id, schema_version, source_path, language, ts_utc, duration_ms, function_count, anonymous_count,
  dependency_nodes, dependency_edges, control_flow_nodes, control_flow_edges
FROM runs
WHERE source_path = ?
ORDER BY ts_utc DESC, run_id ASC`
	args := []any{normalizeSourcePath(sourcePath)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Snapshot, 0)
	for rows.Next() {
		var (
			tsRaw    string
			snapshot Snapshot
		)
		if err := rows.Scan(
			&snapshot.RunID,
			&snapshot.SchemaVersion,
			&snapshot.SourcePath,
			&snapshot.Language,
			&tsRaw,
			&snapshot.DurationMillis,
			&snapshot.FunctionCount,
			&snapshot.AnonymousCount,
			&snapshot.DependencyNodes,
			&snapshot.DependencyEdges,
			&snapshot.ControlFlowNodes,
			&snapshot.ControlFlowEdges,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		ts, err := time.Parse(timestampLayout, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts.UTC()
		runs = append(runs, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LoadFunctions returns the function rows of runID in extraction order.
func (s *Store) LoadFunctions(ctx context.Context, runID string) ([]FunctionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load functions", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT ordinal, name, kind, line, col, params, callees
FROM functions
WHERE run_id = ?
ORDER BY ordinal ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FunctionRow, 0)
	for rows.Next() {
		var (
			row        FunctionRow
			params     string
			calleesRaw string
		)
		if err := rows.Scan(&row.Ordinal, &row.Name, &row.Kind, &row.Line, &row.Column, &params, &calleesRaw); err != nil {
			return nil, fmt.Errorf("scan function row: %w", err)
		}
		row.Params = splitList(params)
		row.Callees = splitList(calleesRaw)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate function rows: %w", err)
	}
	return out, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, listSep)
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
