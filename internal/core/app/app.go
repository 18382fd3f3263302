package app

import (
	"log/slog"
	"sync"
	"time"

	"funcgraph/internal/core/config"
	"funcgraph/internal/core/errors"
	"funcgraph/internal/core/ports"
	"funcgraph/internal/core/watcher"
	"funcgraph/internal/data/history"
	"funcgraph/internal/engine/graph"
	"funcgraph/internal/engine/parser"
	"funcgraph/internal/engine/payload"
	"funcgraph/internal/shared/util"
	"funcgraph/internal/ui/report/formats"
)

// Result is the outcome of analyzing one source unit.
type Result struct {
	RunID        string
	Path         string
	Language     string
	Functions    []payload.FunctionRecord
	Dependencies *graph.DependencyGraph
	ControlFlow  *graph.ControlFlowGraph
	Duration     time.Duration
}

// AnonymousCount returns how many records carry the anonymous placeholder.
func (r *Result) AnonymousCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, fn := range r.Functions {
		if fn.Name == payload.AnonymousName {
			n++
		}
	}
	return n
}

// Update is delivered to the update handler after every run, successful or not.
type Update struct {
	Result    *Result
	Err       error
	Artifacts []string
	Timestamp time.Time
}

// Dependencies lets callers replace the parser, sink and history store.
type Dependencies struct {
	Parser  ports.CodeParser
	Sink    ports.ArtifactSink
	History ports.HistoryStore
}

type App struct {
	Config *config.Config

	parser  ports.CodeParser
	sink    ports.ArtifactSink
	history ports.HistoryStore
	dot     *formats.DOTGenerator
	mermaid *formats.MermaidGenerator
	limiter *util.Limiter

	updateMu sync.RWMutex
	onUpdate func(Update)

	lastMu sync.RWMutex
	last   *Result

	runMu         sync.Mutex
	activeWatcher *watcher.Watcher
}

// New wires the tree-sitter parser, the file sink rooted at the output
// directory and, when enabled, the SQLite history store.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	registry, err := buildParserRegistry(cfg)
	if err != nil {
		return nil, err
	}
	loader, err := parser.NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		return nil, err
	}

	deps := Dependencies{
		Parser: parser.NewParser(loader),
		Sink:   NewFileSink(cfg.Output.Dir),
	}
	if cfg.History.IsEnabled() {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeSinkFailure, "open history"), errors.CtxPath, cfg.History.Path)
		}
		deps.History = store
	}
	return NewWithDependencies(cfg, deps)
}

func NewWithDependencies(cfg *config.Config, deps Dependencies) (*App, error) {
	if deps.Parser == nil {
		return nil, errors.New(errors.CodeValidationError, "code parser dependency is required")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &App{
		Config:  cfg,
		parser:  deps.Parser,
		sink:    deps.Sink,
		history: deps.History,
		dot:     formats.NewDOTGenerator(),
		mermaid: formats.NewMermaidGenerator(),
		limiter: util.NewPerMinuteLimiter(cfg.Watch.MaxRunsPerMinute),
	}, nil
}

func buildParserRegistry(cfg *config.Config) (map[string]parser.LanguageSpec, error) {
	overrides := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for lang, languageCfg := range cfg.Languages {
		overrides[lang] = parser.LanguageOverride{
			Enabled:    languageCfg.Enabled,
			Extensions: append([]string(nil), languageCfg.Extensions...),
		}
	}
	return parser.BuildLanguageRegistry(overrides)
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(update Update) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(update)
	}
}

// LastResult returns the most recent successful analysis, or nil.
func (a *App) LastResult() *Result {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	return a.last
}

func (a *App) setLast(result *Result) {
	a.lastMu.Lock()
	a.last = result
	a.lastMu.Unlock()
}

// History exposes the configured history store, which may be nil.
func (a *App) History() ports.HistoryStore {
	return a.history
}

func (a *App) Close() error {
	var firstErr error
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			firstErr = err
		}
		a.activeWatcher = nil
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		slog.Warn("close app", "error", firstErr)
	}
	return firstErr
}
