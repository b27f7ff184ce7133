package golang

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// Kind is the shape of a parsed Go text.
type Kind int

const (
	// KindFile is a complete source file.
	KindFile Kind = iota
	// KindDecls is a list of declarations without a package clause.
	KindDecls
	// KindStmts is a list of statements, which includes single expressions.
	KindStmts
)

func (k Kind) String() string {
	switch k {
	case KindDecls:
		return "declarations"
	case KindStmts:
		return "statements"
	default:
		return "file"
	}
}

const (
	declPrefix = "package p;"
	stmtPrefix = "package p; func _() { "
	stmtSuffix = "\n\n}"

	parseMode = parser.ParseComments | parser.SkipObjectResolution
)

// Fragment is a Go text parsed as a file, wrapping it first when it is only
// a list of declarations or statements.
type Fragment struct {
	Kind Kind
	Fset *token.FileSet
	File *ast.File
	// Src is the text that was actually parsed. The original text sits at
	// Src[Start:End].
	Src   string
	Start int
	End   int
}

// ParseFragment parses src as a file, a declaration list or a statement
// list, in that order.
func ParseFragment(src string) (*Fragment, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parseMode)
	if err == nil {
		return &Fragment{Kind: KindFile, Fset: fset, File: file, Src: src, Start: 0, End: len(src)}, nil
	}
	// Only fall back to fragments when the text lacks a package clause.
	if !strings.Contains(err.Error(), "expected 'package'") {
		return nil, fmt.Errorf("parse: %w", err)
	}

	wrapped := declPrefix + src
	fset = token.NewFileSet()
	file, err = parser.ParseFile(fset, "", wrapped, parseMode)
	if err == nil {
		return &Fragment{Kind: KindDecls, Fset: fset, File: file, Src: wrapped, Start: len(declPrefix), End: len(wrapped)}, nil
	}
	declErr := err

	// Function literals start like declarations, so any declaration error
	// falls through to statements.
	wrapped = stmtPrefix + src + stmtSuffix
	fset = token.NewFileSet()
	file, err = parser.ParseFile(fset, "", wrapped, parseMode)
	if err == nil {
		return &Fragment{
			Kind:  KindStmts,
			Fset:  fset,
			File:  file,
			Src:   wrapped,
			Start: len(stmtPrefix),
			End:   len(wrapped) - len(stmtSuffix),
		}, nil
	}
	if !strings.Contains(declErr.Error(), "expected declaration") {
		return nil, fmt.Errorf("parse declarations: %w", declErr)
	}
	return nil, fmt.Errorf("parse statements: %w", err)
}

// Body returns the statement list of a KindStmts fragment.
func (f *Fragment) Body() *ast.BlockStmt {
	if f.Kind != KindStmts || len(f.File.Decls) == 0 {
		return nil
	}
	fn, ok := f.File.Decls[0].(*ast.FuncDecl)
	if !ok {
		return nil
	}
	return fn.Body
}
