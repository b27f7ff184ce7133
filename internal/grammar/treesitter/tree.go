//go:build cgo

package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gnolang/tmin/internal/reducer"
	"github.com/gnolang/tmin/internal/source"
)

type tree struct {
	buf      *source.Buffer
	profile  profile
	root     *node
	comments []reducer.Comment
}

type node struct {
	typ    string
	rng    reducer.Range
	fields []*field
	// text is set on placeholders only.
	text      string
	synthetic bool
	t         *tree
}

func (n *node) Type() string {
	return n.typ
}

func (n *node) Range() reducer.Range {
	return n.rng
}

func (n *node) Category() reducer.Category {
	return n.t.profile.classify(n.typ)
}

// build copies n and its named descendants into the arena.
func (t *tree) build(n *sitter.Node, schema *observedSchema) *node {
	nd := &node{
		typ: n.Type(),
		rng: reducer.Range{Start: int(n.StartByte()), End: int(n.EndByte())},
		t:   t,
	}

	byName := make(map[string]*field)
	var names []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		if isComment(child.Type()) {
			t.addComment(child)
			continue
		}
		name := n.FieldNameForChild(i)
		if name == "" {
			name = childrenField
		}
		f, ok := byName[name]
		if !ok {
			f = &field{t: t, name: name}
			byName[name] = f
			nd.fields = append(nd.fields, f)
			names = append(names, name)
		}
		f.elems = append(f.elems, t.build(child, schema))
	}
	for i, f := range nd.fields {
		f.seq = f.name == childrenField || len(f.elems) > 1
		// a plain container such as an argument list is reduced through
		// its elements
		if !f.seq && isContainer(f.elems[0]) {
			names[i] = f.name + "." + childrenField
		}
	}
	schema.observe(nd.typ, names)
	return nd
}

func isContainer(n *node) bool {
	if n.Category() != reducer.CategoryOther {
		return false
	}
	for _, f := range n.fields {
		if f.name != childrenField {
			return false
		}
	}
	return true
}

func (t *tree) addComment(n *sitter.Node) {
	start, end := int(n.StartByte()), int(n.EndByte())
	text := t.buf.Slice(start, end)
	c := reducer.Comment{Range: reducer.Range{Start: start, End: end}}
	switch {
	case strings.HasPrefix(text, "/*"):
		c.Open, c.Close = 2, 2
	case strings.HasPrefix(text, "//"):
		c.Open = 2
	default:
		c.Open = 1
	}
	t.comments = append(t.comments, c)
}

func (t *tree) Root() reducer.Node {
	return t.root
}

// Field resolves name on n. "args.children" reaches the elements of the
// container held by the args field.
func (t *tree) Field(n reducer.Node, name string) reducer.Field {
	nd, ok := n.(*node)
	if !ok {
		return nil
	}
	if outer, inner, dotted := strings.Cut(name, "."); dotted {
		f := t.Field(nd, outer)
		if f == nil {
			return nil
		}
		child := f.Child()
		if child == nil {
			return nil
		}
		return t.Field(child, inner)
	}
	for _, f := range nd.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (t *tree) Print(n reducer.Node) string {
	nd, ok := n.(*node)
	if !ok {
		return ""
	}
	if nd.synthetic {
		return nd.text
	}
	return t.buf.Render(nd.rng.Start, nd.rng.End)
}

func (t *tree) Comments() []reducer.Comment {
	return t.comments
}

type field struct {
	t     *tree
	name  string
	seq   bool
	elems []*node
}

func (f *field) Name() string {
	return f.name
}

func (f *field) Kind() reducer.FieldKind {
	if f.seq {
		return reducer.FieldSequence
	}
	return reducer.FieldSingle
}

func (f *field) Child() reducer.Node {
	if f.seq || len(f.elems) == 0 {
		return nil
	}
	return f.elems[0]
}

func (f *field) Len() int {
	if !f.seq {
		return 0
	}
	return len(f.elems)
}

func (f *field) At(i int) reducer.Node {
	return f.elems[i]
}

func (f *field) Delete(i int) func() {
	old := f.elems
	elem := old[i]

	prevEnd, nextStart := -1, -1
	if i > 0 {
		prevEnd = old[i-1].rng.End
	}
	if i+1 < len(old) {
		nextStart = old[i+1].rng.Start
	}
	start, end := f.t.buf.ElementCut(elem.rng.Start, elem.rng.End, prevEnd, nextStart)
	undo := f.t.buf.Apply(source.Edit{Start: start, End: end})

	rest := make([]*node, 0, len(old)-1)
	rest = append(rest, old[:i]...)
	rest = append(rest, old[i+1:]...)
	f.elems = rest

	return func() {
		undo()
		f.elems = old
	}
}

func (f *field) Substitute(p reducer.Placeholder) (func(), bool) {
	if f.seq || len(f.elems) == 0 {
		return nil, false
	}
	child := f.elems[0]

	repl := &node{rng: child.rng, synthetic: true, t: f.t}
	switch p.Category {
	case reducer.CategoryExpression:
		repl.typ = "identifier"
		repl.text = p.Name
	case reducer.CategoryStatement:
		if block, ok := f.t.profile.blocks[child.typ]; ok {
			repl.typ = child.typ
			repl.text = block
		} else {
			repl.typ = "empty_statement"
			repl.text = f.t.profile.emptyStatement
		}
	default:
		return nil, false
	}

	f.elems = []*node{repl}
	undo := f.t.buf.Apply(source.Edit{Start: child.rng.Start, End: child.rng.End, Text: repl.text})
	return func() {
		undo()
		f.elems = []*node{child}
	}, true
}
