// Package golang is the Go grammar of the reducer, built on go/parser.
//
// Trees print by splicing: the parsed text is kept as is and every deletion
// or placeholder is an edit on top of it, so formatting outside the edited
// ranges survives unchanged.
package golang

import (
	"go/ast"
	"go/token"
	"reflect"
	"strings"

	"github.com/gnolang/tmin/internal/reducer"
	"github.com/gnolang/tmin/internal/source"
)

var (
	nodeType      = reflect.TypeOf((*ast.Node)(nil)).Elem()
	blockStmtType = reflect.TypeOf((*ast.BlockStmt)(nil))
)

// Grammar parses Go and Gno source.
type Grammar struct{}

func New() *Grammar {
	return &Grammar{}
}

func (g *Grammar) Schema() reducer.Schema {
	return schema
}

func (g *Grammar) Parse(src string) (reducer.Tree, error) {
	frag, err := ParseFragment(src)
	if err != nil {
		return nil, err
	}
	return newTree(frag), nil
}

type span struct {
	start, end int
}

type tree struct {
	frag *Fragment
	tok  *token.File
	buf  *source.Buffer
	root *node
	// spans holds the parsed range of every node. Placeholders get the
	// range of the node they replaced.
	spans map[ast.Node]span
}

func newTree(frag *Fragment) *tree {
	t := &tree{
		frag:  frag,
		tok:   frag.Fset.File(frag.File.Pos()),
		buf:   source.NewBuffer(frag.Src),
		spans: make(map[ast.Node]span),
	}
	ast.Inspect(frag.File, func(x ast.Node) bool {
		if x != nil {
			if s, ok := t.position(x); ok {
				t.spans[x] = s
			}
		}
		return true
	})
	switch frag.Kind {
	case KindDecls:
		t.root = &node{x: frag.File, typ: typeDeclList, t: t}
	case KindStmts:
		t.root = &node{x: frag.Body(), typ: typeStmtList, t: t}
	default:
		t.root = t.wrap(frag.File)
	}
	return t
}

// Fragment returns the parsed fragment the tree was built from.
func (t *tree) Fragment() *Fragment {
	return t.frag
}

func (t *tree) Root() reducer.Node {
	return t.root
}

func (t *tree) wrap(x ast.Node) *node {
	return &node{x: x, typ: reflect.TypeOf(x).Elem().Name(), t: t}
}

// span returns the offsets of x in the parsed source.
func (t *tree) span(x ast.Node) (span, bool) {
	if s, ok := t.spans[x]; ok {
		return s, true
	}
	return t.position(x)
}

func (t *tree) position(x ast.Node) (span, bool) {
	pos, end := x.Pos(), x.End()
	if !pos.IsValid() || !end.IsValid() {
		return span{}, false
	}
	return span{start: t.tok.Offset(pos), end: t.tok.Offset(end)}, true
}

func (t *tree) Print(n reducer.Node) string {
	nd, ok := n.(*node)
	if !ok {
		return ""
	}
	if nd == t.root {
		return t.buf.Render(t.frag.Start, t.frag.End)
	}
	s, ok := t.span(nd.x)
	if !ok {
		return ""
	}
	return t.buf.Render(s.start, s.end)
}

func (t *tree) Comments() []reducer.Comment {
	var comments []reducer.Comment
	for _, cg := range t.frag.File.Comments {
		for _, c := range cg.List {
			start, end := t.tok.Offset(c.Slash), t.tok.Offset(c.End())
			if start < t.frag.Start || end > t.frag.End {
				continue
			}
			cm := reducer.Comment{
				Range: reducer.Range{Start: start - t.frag.Start, End: end - t.frag.Start},
				Open:  2,
			}
			if strings.HasPrefix(c.Text, "/*") {
				cm.Close = 2
			}
			comments = append(comments, cm)
		}
	}
	return comments
}

// Field resolves name on n. A dotted name walks through intermediate
// structs, so "Params.List" reaches the fields of a function type.
func (t *tree) Field(n reducer.Node, name string) reducer.Field {
	nd, ok := n.(*node)
	if !ok || nd.x == nil {
		return nil
	}
	v := reflect.ValueOf(nd.x)
	for _, part := range strings.Split(name, ".") {
		if v.Kind() == reflect.Interface {
			v = v.Elem()
		}
		if v.Kind() != reflect.Pointer || v.IsNil() {
			return nil
		}
		v = v.Elem().FieldByName(part)
		if !v.IsValid() {
			return nil
		}
	}
	return &field{t: t, name: name, v: v}
}

type node struct {
	x   ast.Node
	typ string
	t   *tree
}

func (n *node) Type() string {
	return n.typ
}

func (n *node) Range() reducer.Range {
	if n == n.t.root {
		return reducer.Range{Start: 0, End: n.t.frag.End - n.t.frag.Start}
	}
	s, ok := n.t.span(n.x)
	if !ok {
		return reducer.Range{}
	}
	return reducer.Range{Start: s.start - n.t.frag.Start, End: s.end - n.t.frag.Start}
}

func (n *node) Category() reducer.Category {
	return classify(n.typ)
}

// field is a struct field of an ast node, reached by reflection.
type field struct {
	t    *tree
	name string
	v    reflect.Value
}

func (f *field) Name() string {
	return f.name
}

func (f *field) Kind() reducer.FieldKind {
	switch f.v.Kind() {
	case reflect.Slice:
		if f.v.Type().Elem().Implements(nodeType) {
			return reducer.FieldSequence
		}
	case reflect.Interface, reflect.Pointer:
		if f.v.Type().Implements(nodeType) {
			return reducer.FieldSingle
		}
	}
	return reducer.FieldScalar
}

func (f *field) Child() reducer.Node {
	if f.Kind() != reducer.FieldSingle {
		return nil
	}
	return f.node(f.v)
}

func (f *field) Len() int {
	if f.Kind() != reducer.FieldSequence {
		return 0
	}
	return f.v.Len()
}

func (f *field) At(i int) reducer.Node {
	return f.node(f.v.Index(i))
}

func (f *field) node(v reflect.Value) reducer.Node {
	if v.IsNil() {
		return nil
	}
	x, ok := v.Interface().(ast.Node)
	if !ok {
		return nil
	}
	return f.t.wrap(x)
}

func (f *field) astAt(i int) ast.Node {
	x, _ := f.v.Index(i).Interface().(ast.Node)
	return x
}

func (f *field) Delete(i int) func() {
	old := snapshot(f.v)
	n := f.v.Len()

	var undo func()
	if s, ok := f.t.span(f.astAt(i)); ok {
		prevEnd, nextStart := -1, -1
		if i > 0 {
			if prev, ok := f.t.span(f.astAt(i - 1)); ok {
				prevEnd = prev.end
			}
		}
		if i+1 < n {
			if next, ok := f.t.span(f.astAt(i + 1)); ok {
				nextStart = next.start
			}
		}
		start, end := f.t.buf.ElementCut(s.start, s.end, prevEnd, nextStart)
		undo = f.t.buf.Apply(source.Edit{Start: start, End: end})
	}

	rest := reflect.MakeSlice(f.v.Type(), 0, n-1)
	rest = reflect.AppendSlice(rest, f.v.Slice(0, i))
	rest = reflect.AppendSlice(rest, f.v.Slice(i+1, n))
	f.v.Set(rest)

	return func() {
		if undo != nil {
			undo()
		}
		f.v.Set(old)
	}
}

func (f *field) Substitute(p reducer.Placeholder) (func(), bool) {
	if f.Kind() != reducer.FieldSingle || f.v.IsNil() {
		return nil, false
	}
	child, ok := f.v.Interface().(ast.Node)
	if !ok {
		return nil, false
	}
	s, ok := f.t.span(child)
	if !ok {
		return nil, false
	}

	var (
		repl ast.Node
		text string
	)
	switch p.Category {
	case reducer.CategoryExpression:
		repl = &ast.Ident{NamePos: child.Pos(), Name: p.Name}
		text = p.Name
	case reducer.CategoryStatement:
		if f.v.Type() == blockStmtType || holdsBlock(child) {
			repl = &ast.BlockStmt{Lbrace: child.Pos(), Rbrace: child.Pos() + 1}
			text = "{}"
		} else {
			repl = &ast.EmptyStmt{Semicolon: child.Pos(), Implicit: true}
		}
	default:
		return nil, false
	}

	rv := reflect.ValueOf(repl)
	if !rv.Type().AssignableTo(f.v.Type()) {
		return nil, false
	}

	old := snapshot(f.v)
	f.v.Set(rv)
	f.t.spans[repl] = s
	undo := f.t.buf.Apply(source.Edit{Start: s.start, End: s.end, Text: text})

	return func() {
		undo()
		delete(f.t.spans, repl)
		f.v.Set(old)
	}, true
}

// holdsBlock reports whether a statement slot holding n needs a block to
// stay valid, as the else branch of an if does.
func holdsBlock(n ast.Node) bool {
	switch n.(type) {
	case *ast.BlockStmt, *ast.IfStmt:
		return true
	}
	return false
}

func snapshot(v reflect.Value) reflect.Value {
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}
