package parser

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"funcgraph/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	if err != nil {
		t.Fatalf("grammar loader: %v", err)
	}
	return NewParser(loader)
}

func mustParse(t *testing.T, p *Parser, path, code string) *SourceUnit {
	t.Helper()
	unit, err := p.ParseFile(path, []byte(code))
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	t.Cleanup(unit.Close)
	return unit
}

func TestParseFile_Languages(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name     string
		path     string
		code     string
		language string
	}{
		{
			name:     "javascript module",
			path:     "main.js",
			code:     "import foo from 'pkg'; export async function run(a) { return await foo(a) }",
			language: LangJavaScript,
		},
		{
			name:     "jsx",
			path:     "App.jsx",
			code:     "export function App() { return <div className=\"x\">hi</div> }",
			language: LangJavaScript,
		},
		{
			name:     "esm extension",
			path:     "tool.MJS",
			code:     "const f = (x) => x * 2;",
			language: LangJavaScript,
		},
		{
			name:     "typescript",
			path:     "main.ts",
			code:     "interface Runner {}; function run(a: number): number { return a }",
			language: LangTypeScript,
		},
		{
			name:     "tsx",
			path:     "main.tsx",
			code:     "import React from 'react'; export function App(): JSX.Element { return <div/> }",
			language: LangTSX,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			unit := mustParse(t, p, tc.path, tc.code)
			if unit.Language != tc.language {
				t.Fatalf("expected language %q, got %q", tc.language, unit.Language)
			}
			if unit.Root() == nil || unit.Root().Kind() != KindProgram {
				t.Fatalf("expected program root, got %v", unit.Root())
			}
		})
	}
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	p := newTestParser(t)

	_, err := p.ParseFile("main.py", []byte("def f(): pass"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if !errors.IsCode(err, errors.CodeParseFailure) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestParseFile_SyntaxErrorIsParseFailure(t *testing.T) {
	p := newTestParser(t)

	_, err := p.ParseFile("broken.js", []byte("function ok() {}\nfunction broken( {\n"))
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !errors.IsCode(err, errors.CodeParseFailure) {
		t.Fatalf("expected parse failure, got %v", err)
	}
	var de *errors.DomainError
	if !stderrors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if de.Context[errors.CtxPath] != "broken.js" {
		t.Fatalf("expected path context, got %v", de.Context)
	}
	if line, ok := de.Context[errors.CtxLine].(int); !ok || line < 1 {
		t.Fatalf("expected a 1-based line in context, got %v", de.Context[errors.CtxLine])
	}
}

func TestReadFile(t *testing.T) {
	p := newTestParser(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "app.js")
	if err := os.WriteFile(path, []byte("function main() { start(); }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	unit, err := p.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	defer unit.Close()
	if !strings.Contains(string(unit.Source), "start()") {
		t.Fatalf("unexpected source %q", unit.Source)
	}

	_, err = p.ReadFile(filepath.Join(dir, "missing.js"))
	if !errors.IsCode(err, errors.CodeParseFailure) {
		t.Fatalf("expected parse failure for missing file, got %v", err)
	}
}

func TestLanguageRegistryOverrides(t *testing.T) {
	disabled := false
	registry, err := BuildLanguageRegistry(map[string]LanguageOverride{
		LangTypeScript: {Enabled: &disabled},
		LangJavaScript: {Extensions: []string{"js", ".es6"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	loader, err := NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(loader)

	if !p.IsSupportedPath("legacy.es6") {
		t.Fatal("expected overridden extension to be supported")
	}
	if p.IsSupportedPath("main.ts") {
		t.Fatal("expected disabled typescript to be unsupported")
	}
	if p.IsSupportedPath("main.mjs") {
		t.Fatal("expected replaced extension list to drop .mjs")
	}
	if got := p.GetLanguage("main.tsx"); got != LangTSX {
		t.Fatalf("expected tsx, got %q", got)
	}

	if _, err := BuildLanguageRegistry(map[string]LanguageOverride{"cobol": {}}); err == nil {
		t.Fatal("expected unknown language override to fail")
	}
	if _, err := BuildLanguageRegistry(map[string]LanguageOverride{
		LangTypeScript: {Extensions: []string{".js"}},
	}); err == nil {
		t.Fatal("expected duplicate extension ownership to fail")
	}
}

func TestWalker_ParentsBeforeChildren(t *testing.T) {
	p := newTestParser(t)
	unit := mustParse(t, p, "order.js", "function outer() { const inner = () => 1; }\nconst last = function () {};")

	var seen []string
	record := func(node *sitter.Node) bool {
		seen = append(seen, node.Kind())
		return false
	}
	NewWalker(nil).On(record, FunctionNodeKinds(KindDeclaration, KindArrow, KindExpression)...).Walk(unit.Root())

	want := []string{KindFunctionDeclaration, KindArrowFunction, KindFunctionExpression}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, seen)
	}
}

func TestWalker_SkipChildren(t *testing.T) {
	p := newTestParser(t)
	unit := mustParse(t, p, "skip.js", "function outer() { function inner() {} }")

	count := 0
	NewWalker(map[string]NodeHandler{
		KindFunctionDeclaration: func(node *sitter.Node) bool {
			count++
			return true
		},
	}).Walk(unit.Root())

	if count != 1 {
		t.Fatalf("expected nested declaration to be skipped, visited %d", count)
	}
}

func TestCalleeIdentifier(t *testing.T) {
	p := newTestParser(t)
	unit := mustParse(t, p, "calls.js", strings.Join([]string{
		"foo();",
		"obj.method();",
		"maybe?.();",
		"tag`x`;",
		"(wrapped)();",
		"make()();",
		"new Thing();",
		"import('./lazy.js');",
	}, "\n"))

	var names []string
	NewWalker(map[string]NodeHandler{
		KindCallExpression: func(node *sitter.Node) bool {
			if name, ok := CalleeIdentifier(unit, node); ok {
				names = append(names, name)
			}
			return false
		},
	}).Walk(unit.Root())

	want := []string{"foo", "wrapped", "make"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

func TestClassifyFunction(t *testing.T) {
	p := newTestParser(t)
	unit := mustParse(t, p, "kinds.js", "function* gen() {}\nconst a = async () => {};\nconst b = function* () {};")

	var kinds []string
	NewWalker(nil).On(func(node *sitter.Node) bool {
		kind, ok := ClassifyFunction(node)
		if !ok {
			t.Fatalf("expected %s to classify", node.Kind())
		}
		kinds = append(kinds, kind.String())
		return false
	}, FunctionNodeKinds(KindDeclaration, KindArrow, KindExpression)...).Walk(unit.Root())

	want := []string{"declaration", "arrow", "expression"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, kinds)
	}

	if _, ok := ClassifyFunction(unit.Root()); ok {
		t.Fatal("expected program node not to classify as a function")
	}

	decl := unit.Root().NamedChild(0)
	keyword := decl.Child(0)
	if keyword == nil || keyword.Kind() != "function" || keyword.IsNamed() {
		t.Fatalf("expected leading function keyword token, got %v", keyword)
	}
	if _, ok := ClassifyFunction(keyword); ok {
		t.Fatal("expected function keyword token not to classify")
	}
}

func TestSourceUnit_CloseIsIdempotent(t *testing.T) {
	p := newTestParser(t)
	unit, err := p.ParseFile("close.js", []byte("run();"))
	if err != nil {
		t.Fatal(err)
	}
	unit.Close()
	unit.Close()
	if unit.Root() != nil {
		t.Fatal("expected nil root after close")
	}
}
