package pyast

import (
	"fmt"
	"os"
	"strings"

	"github.com/tristendillon/pypack/core/models"
)

// ExtractImports parses the file at path and returns every statically
// declared import as a ModuleRef. Extraction is purely structural: the file
// is never executed, and import-like text inside strings or comments is
// ignored. A file that cannot be read or scanned yields a *ParseError.
func ExtractImports(path string) ([]models.ModuleRef, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Line: 0, Msg: err.Error()}
	}
	return ExtractImportsSource(path, src)
}

// ExtractImportsSource is ExtractImports for source already in memory.
func ExtractImportsSource(path string, src []byte) ([]models.ModuleRef, error) {
	stmts, err := scanStatements(path, src)
	if err != nil {
		return nil, err
	}

	var refs []models.ModuleRef
	for _, stmt := range stmts {
		keyword := firstWord(stmt.Text)
		if keyword != "import" && keyword != "from" {
			continue
		}

		stmtRefs, err := parseImportStatement(path, stmt)
		if err != nil {
			return nil, err
		}
		refs = append(refs, stmtRefs...)
	}

	return refs, nil
}

// parseImportStatement turns one "import ..." or "from ... import ..."
// statement into ModuleRefs. A "from M import a" statement yields both M and
// the submodule candidate M.a; the resolver discards candidates that name an
// attribute rather than a module, since only modules exist as files.
func parseImportStatement(path string, stmt statement) ([]models.ModuleRef, error) {
	p := &importParser{path: path, line: stmt.Line, toks: lexImport(stmt.Text)}

	switch {
	case p.accept("import"):
		return p.parsePlainImport()
	case p.accept("from"):
		return p.parseFromImport()
	default:
		return nil, p.errf("expected import statement")
	}
}

type token struct {
	kind byte // 'n' name, '.', ',', '(', ')', '*', '?' anything else
	text string
}

func lexImport(text string) []token {
	var toks []token
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == ' ' || c == '\t':
		case isNameByte(c, true):
			j := i
			for j < len(text) && isNameByte(text[j], false) {
				j++
			}
			toks = append(toks, token{kind: 'n', text: text[i:j]})
			i = j - 1
		case c == '.' || c == ',' || c == '(' || c == ')' || c == '*':
			toks = append(toks, token{kind: c, text: string(c)})
		default:
			toks = append(toks, token{kind: '?', text: string(c)})
		}
	}
	return toks
}

func isNameByte(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80 {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

type importParser struct {
	path string
	line int
	toks []token
	pos  int
}

func (p *importParser) errf(format string, args ...interface{}) error {
	return &ParseError{Path: p.path, Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *importParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *importParser) accept(name string) bool {
	if t, ok := p.peek(); ok && t.kind == 'n' && t.text == name {
		p.pos++
		return true
	}
	return false
}

func (p *importParser) acceptKind(kind byte) bool {
	if t, ok := p.peek(); ok && t.kind == kind {
		p.pos++
		return true
	}
	return false
}

// dottedName parses NAME ("." NAME)*.
func (p *importParser) dottedName() (string, error) {
	t, ok := p.peek()
	if !ok || t.kind != 'n' {
		return "", p.errf("expected module name")
	}
	p.pos++
	parts := []string{t.text}
	for p.acceptKind('.') {
		t, ok := p.peek()
		if !ok || t.kind != 'n' {
			return "", p.errf("expected name after '.'")
		}
		p.pos++
		parts = append(parts, t.text)
	}
	return strings.Join(parts, "."), nil
}

// parsePlainImport handles "import a.b.c as x, d". Leading dots are not
// legal here ("import .x" is a syntax error in Python too).
func (p *importParser) parsePlainImport() ([]models.ModuleRef, error) {
	var refs []models.ModuleRef
	for {
		if t, ok := p.peek(); ok && t.kind == '.' {
			return nil, p.errf("relative import requires the from form")
		}
		name, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		refs = append(refs, models.ModuleRef{Name: name})

		if p.accept("as") {
			if t, ok := p.peek(); !ok || t.kind != 'n' {
				return nil, p.errf("expected alias after 'as'")
			}
			p.pos++
		}
		if !p.acceptKind(',') {
			break
		}
	}
	if _, ok := p.peek(); ok {
		return nil, p.errf("unexpected trailing tokens in import statement")
	}
	return refs, nil
}

// parseFromImport handles "from [dots][module] import names | *".
func (p *importParser) parseFromImport() ([]models.ModuleRef, error) {
	dots := 0
	for p.acceptKind('.') {
		dots++
	}

	module := ""
	if t, ok := p.peek(); ok && t.kind == 'n' && t.text != "import" {
		name, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		module = name
	}
	if dots == 0 && module == "" {
		return nil, p.errf("expected module name after 'from'")
	}
	if !p.accept("import") {
		return nil, p.errf("expected 'import' in from statement")
	}

	refs := []models.ModuleRef{{Dots: dots, Name: module}}

	if p.acceptKind('*') {
		if _, ok := p.peek(); ok {
			return nil, p.errf("unexpected tokens after '*'")
		}
		return refs, nil
	}

	paren := p.acceptKind('(')
	for {
		t, ok := p.peek()
		if !ok || t.kind != 'n' {
			return nil, p.errf("expected imported name")
		}
		p.pos++

		// Submodule candidate: "from pkg import helper" may name the module
		// pkg/helper.py rather than an attribute of pkg.
		sub := t.text
		if module != "" {
			sub = module + "." + sub
		}
		refs = append(refs, models.ModuleRef{Dots: dots, Name: sub})

		if p.accept("as") {
			if t, ok := p.peek(); !ok || t.kind != 'n' {
				return nil, p.errf("expected alias after 'as'")
			}
			p.pos++
		}
		if !p.acceptKind(',') {
			break
		}
		if paren {
			// Trailing comma before the closing paren is legal.
			if t, ok := p.peek(); ok && t.kind == ')' {
				break
			}
		}
	}

	if paren && !p.acceptKind(')') {
		return nil, p.errf("expected ')' in import list")
	}
	if _, ok := p.peek(); ok {
		return nil, p.errf("unexpected trailing tokens in import statement")
	}
	return refs, nil
}

func firstWord(text string) string {
	end := 0
	for end < len(text) && isNameByte(text[end], end == 0) {
		end++
	}
	return text[:end]
}
