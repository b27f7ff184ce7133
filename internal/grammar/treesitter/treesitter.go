//go:build cgo

// Package treesitter provides reducer grammars for the languages bundled
// with go-tree-sitter.
//
// A parse copies the tree-sitter tree into nodes owned by the reducer run.
// Named children are grouped by field name; children without a field name
// form the "children" sequence. Comments are extras and are kept out of the
// fields so that only the comment simplifier touches them.
package treesitter

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/gnolang/tmin/internal/reducer"
	"github.com/gnolang/tmin/internal/source"
)

// childrenField names the sequence of named children that have no field name.
const childrenField = "children"

// Available reports whether tree-sitter grammars are compiled in.
const Available = true

// Grammar is a tree-sitter backed reducer grammar.
type Grammar struct {
	lang    Language
	ts      *sitter.Language
	profile profile
	schema  *observedSchema
}

// New returns the grammar for lang.
func New(lang Language) (*Grammar, error) {
	ts, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}
	return &Grammar{
		lang:    lang,
		ts:      ts,
		profile: profiles[lang],
		schema:  newObservedSchema(),
	}, nil
}

func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangGo:
		return golang.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

func (g *Grammar) Language() Language {
	return g.lang
}

// Schema returns the fields seen so far for each node type, in the order
// they were first seen. It grows as more text is parsed.
func (g *Grammar) Schema() reducer.Schema {
	return g.schema
}

// SyntaxError reports the first error or missing node of a parse.
type SyntaxError struct {
	Line   int
	Column int
	Node   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: syntax error at %s", e.Line, e.Column, e.Node)
}

func (g *Grammar) Parse(src string) (reducer.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.ts)

	content := []byte(src)
	parsed, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer parsed.Close()

	root := parsed.RootNode()
	if root.HasError() {
		return nil, syntaxError(root)
	}

	t := &tree{
		buf:     source.NewBuffer(src),
		profile: g.profile,
	}
	t.root = t.build(root, g.schema)
	// the root covers leading and trailing trivia too
	t.root.rng = reducer.Range{Start: 0, End: len(src)}
	return t, nil
}

func syntaxError(n *sitter.Node) error {
	if n.IsMissing() || n.Type() == "ERROR" {
		p := n.StartPoint()
		return &SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column) + 1, Node: n.Type()}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.HasError() {
			return syntaxError(child)
		}
	}
	p := n.StartPoint()
	return &SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column) + 1, Node: n.Type()}
}

// observedSchema collects field names per node type across parses.
type observedSchema struct {
	mu     sync.Mutex
	fields map[string][]string
}

func newObservedSchema() *observedSchema {
	return &observedSchema{fields: make(map[string][]string)}
}

func (s *observedSchema) Fields(nodeType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fields[nodeType]...)
}

func (s *observedSchema) observe(nodeType string, names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := s.fields[nodeType]
	for _, name := range names {
		seen := false
		for _, k := range known {
			if k == name {
				seen = true
				break
			}
		}
		if !seen {
			known = append(known, name)
		}
	}
	s.fields[nodeType] = known
}
