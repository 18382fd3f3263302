package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"funcgraph/internal/core/errors"
	"funcgraph/internal/shared/util"
)

// Parser turns source text into SourceUnits using the loader's grammars.
type Parser struct {
	loader     *GrammarLoader
	pools      map[string]*ParserPool
	extensions map[string]string
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		pools:      make(map[string]*ParserPool),
		extensions: make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[util.NormalizeExtension(ext)] = lang
		}
		if grammar := loader.Language(lang); grammar != nil {
			p.pools[lang] = NewParserPool(grammar)
		}
	}
	return p
}

// ReadFile reads path from disk and parses it. Read failures are parse failures:
// no tree can be produced for the unit.
func (p *Parser) ReadFile(path string) (*SourceUnit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeParseFailure, "read source"),
			errors.CtxPath, path,
		)
	}
	return p.ParseFile(path, content)
}

// ParseFile parses content as the language implied by path. A tree containing
// any ERROR or MISSING node is rejected; no partial analysis is attempted.
func (p *Parser) ParseFile(path string, content []byte) (*SourceUnit, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseFailure, fmt.Sprintf("unsupported source extension %q", filepath.Ext(path))),
			errors.CtxPath, path,
		)
	}

	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang)),
			errors.CtxLanguage, lang,
		)
	}

	tree := pool.Parse(content)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeParseFailure, "parse failed"), errors.CtxPath, path)
	}

	unit := &SourceUnit{
		Path:     path,
		Language: lang,
		Source:   content,
		tree:     tree,
	}

	if bad := FirstError(unit.Root()); bad != nil {
		loc := unit.Location(bad)
		msg := "syntax error"
		if bad.IsMissing() {
			msg = fmt.Sprintf("syntax error: missing %s", bad.Kind())
		}
		unit.Close()
		err := errors.New(errors.CodeParseFailure, msg)
		err = errors.AddContext(err, errors.CtxPath, path)
		err = errors.AddContext(err, errors.CtxLine, loc.Line)
		err = errors.AddContext(err, errors.CtxColumn, loc.Column)
		return nil, err
	}

	return unit, nil
}

func (p *Parser) detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return p.extensions[ext]
}

func (p *Parser) GetLanguage(path string) string {
	return p.detectLanguage(path)
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.detectLanguage(path) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}
