package reducer

import "strings"

// Category is the grammatical class of a node as far as reduction cares.
type Category int

const (
	// CategoryOther covers containers, patterns and everything else the
	// engines only walk through.
	CategoryOther Category = iota
	// CategoryExpression covers expressions, identifiers, meta references and literals.
	CategoryExpression
	// CategoryStatement covers statements and declarations.
	CategoryStatement
)

func (c Category) String() string {
	switch c {
	case CategoryExpression:
		return "expression"
	case CategoryStatement:
		return "statement"
	default:
		return "other"
	}
}

// Range is a half-open byte range [Start, End) of a text.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Node is a handle to a node of a Tree.
type Node interface {
	Type() string
	// Range is the range the node was printed from. Placeholders report the
	// range of the node they replaced.
	Range() Range
	Category() Category
}

// FieldKind tells what a field holds.
type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldSingle
	FieldSequence
)

// Placeholder describes a synthetic node substituted for a removed subtree.
type Placeholder struct {
	Category Category
	// Name is the identifier text of an expression placeholder.
	Name string
}

// Field is a named child slot of a node.
type Field interface {
	Name() string
	Kind() FieldKind

	// Child returns the node of a single-node field, or nil when absent.
	Child() Node

	// Len and At address the elements of a sequence field.
	Len() int
	At(i int) Node

	// Delete removes the i-th element of a sequence field. Calling restore
	// puts it back.
	Delete(i int) (restore func())

	// Substitute swaps the child of a single-node field for a placeholder
	// that keeps the child's range. ok is false when the slot cannot hold
	// such a placeholder.
	Substitute(p Placeholder) (restore func(), ok bool)
}

// Comment is a comment found in a parsed text.
type Comment struct {
	Range Range
	// Open and Close are the widths of the delimiters. Close is 0 for
	// single-line comment styles.
	Open  int
	Close int
}

// Tree is a parsed text, mutable in place by exactly one reduction run.
type Tree interface {
	Root() Node
	// Field returns the named field of n, or nil when n has none.
	Field(n Node, name string) Field
	// Print renders n with every mutation applied. Printing the root
	// yields the whole current text.
	Print(n Node) string
	// Comments lists the comments of the parsed text in document order,
	// with ranges relative to that text.
	Comments() []Comment
}

// Schema gives the ordered field names for each node type.
type Schema interface {
	Fields(nodeType string) []string
}

// SchemaMap is a static Schema.
type SchemaMap map[string][]string

func (s SchemaMap) Fields(nodeType string) []string {
	return s[nodeType]
}

// Grammar parses text in one language and knows its field schema.
type Grammar interface {
	Parse(src string) (Tree, error)
	Schema() Schema
}

// Children returns the non-nil nodes held by f in document order.
func Children(f Field) []Node {
	switch f.Kind() {
	case FieldSingle:
		if c := f.Child(); c != nil {
			return []Node{c}
		}
	case FieldSequence:
		nodes := make([]Node, 0, f.Len())
		for i := 0; i < f.Len(); i++ {
			if c := f.At(i); c != nil {
				nodes = append(nodes, c)
			}
		}
		return nodes
	}
	return nil
}

// Qualifies reports whether n is a candidate for substitution and
// standalone extraction.
func Qualifies(n Node) bool {
	c := n.Category()
	return c == CategoryExpression || c == CategoryStatement
}

// ClassifyBySuffix is a helper for grammars that name node types
// consistently: a type is an expression when it equals one of exprNames or
// ends with one of exprSuffixes, and a statement when it ends with one of
// stmtSuffixes.
func ClassifyBySuffix(typ string, exprNames, exprSuffixes, stmtSuffixes []string) Category {
	for _, name := range exprNames {
		if typ == name {
			return CategoryExpression
		}
	}
	for _, suffix := range exprSuffixes {
		if strings.HasSuffix(typ, suffix) {
			return CategoryExpression
		}
	}
	for _, suffix := range stmtSuffixes {
		if strings.HasSuffix(typ, suffix) {
			return CategoryStatement
		}
	}
	return CategoryOther
}
