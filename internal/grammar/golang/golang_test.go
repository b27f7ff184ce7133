package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tmin/internal/reducer"
)

func TestParseFragment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		kind    Kind
		wantErr bool
	}{
		{"file", "package p\n\nfunc f() {}\n", KindFile, false},
		{"declarations", "func f() {}\ntype T int", KindDecls, false},
		{"statements", "x := 1\nprintln(x)", KindStmts, false},
		{"expression", "a + b", KindStmts, false},
		{"empty", "", KindDecls, false},
		{"function literal", "func() {}", KindStmts, false},
		{"called function literal", "func(x int) int { return x }(1)", KindStmts, false},
		{"deferred closure", "defer func() { recover() }()", KindStmts, false},
		{"broken file", "package p\nfunc {", KindFile, true},
		{"broken statements", "if {", KindStmts, true},
		{"broken declaration", "func f( {", KindDecls, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frag, err := ParseFragment(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, frag.Kind)
			assert.Equal(t, tt.src, frag.Src[frag.Start:frag.End])
		})
	}
}

func parse(t *testing.T, src string) reducer.Tree {
	t.Helper()
	tree, err := New().Parse(src)
	require.NoError(t, err)
	return tree
}

func fieldOf(t *testing.T, tree reducer.Tree, n reducer.Node, name string) reducer.Field {
	t.Helper()
	f := tree.Field(n, name)
	require.NotNil(t, f, "field %s of %s", name, n.Type())
	return f
}

func TestPrintRoundTrip(t *testing.T) {
	t.Parallel()

	srcs := []string{
		"package p\n\n// doc\nfunc f(a, b int) (int, error) {\n\treturn a + b, nil\n}\n",
		"x := 1\n\n\ty  :=  2",
		"type T struct{ A, B int }",
	}
	for _, src := range srcs {
		tree := parse(t, src)
		assert.Equal(t, src, tree.Print(tree.Root()))
	}
}

func TestRootTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "File", parse(t, "package p").Root().Type())
	assert.Equal(t, typeDeclList, parse(t, "func f() {}").Root().Type())
	assert.Equal(t, typeStmtList, parse(t, "f()").Root().Type())
}

func TestDeleteSequenceElement(t *testing.T) {
	t.Parallel()

	tree := parse(t, "f(a, b, c)")
	stmt := fieldOf(t, tree, tree.Root(), "List").At(0)
	call := fieldOf(t, tree, stmt, "X").Child()
	require.Equal(t, "CallExpr", call.Type())

	args := fieldOf(t, tree, call, "Args")
	require.Equal(t, reducer.FieldSequence, args.Kind())
	require.Equal(t, 3, args.Len())

	restoreB := args.Delete(1)
	assert.Equal(t, "f(a, c)", tree.Print(tree.Root()))
	assert.Equal(t, 2, args.Len())

	restoreC := args.Delete(1)
	assert.Equal(t, "f(a)", tree.Print(tree.Root()))

	restoreC()
	restoreB()
	assert.Equal(t, "f(a, b, c)", tree.Print(tree.Root()))
	assert.Equal(t, 3, args.Len())
}

func TestSubstitute(t *testing.T) {
	t.Parallel()

	src := "package p\n\nfunc f() {\n\tif cond(1) {\n\t\tg()\n\t}\n}\n"
	tree := parse(t, src)
	decl := fieldOf(t, tree, tree.Root(), "Decls").At(0)
	body := fieldOf(t, tree, decl, "Body")
	ifStmt := fieldOf(t, tree, body.Child(), "List").At(0)
	require.Equal(t, "IfStmt", ifStmt.Type())

	cond := fieldOf(t, tree, ifStmt, "Cond")
	require.Equal(t, reducer.CategoryExpression, cond.Child().Category())
	restore, ok := cond.Substitute(reducer.Placeholder{Category: reducer.CategoryExpression, Name: "x0"})
	require.True(t, ok)
	assert.Equal(t, "if x0 {\n\t\tg()\n\t}", tree.Print(ifStmt))
	assert.Equal(t, "x0", tree.Print(cond.Child()))
	assert.Equal(t, "Ident", cond.Child().Type())

	ifBody := fieldOf(t, tree, ifStmt, "Body")
	restoreBody, ok := ifBody.Substitute(reducer.Placeholder{Category: reducer.CategoryStatement})
	require.True(t, ok)
	assert.Equal(t, "if x0 {}", tree.Print(ifStmt))

	restoreBody()
	restore()
	assert.Equal(t, src, tree.Print(tree.Root()))
}

func TestSubstituteStatementSlot(t *testing.T) {
	t.Parallel()

	tree := parse(t, "if a {\n} else if b {\n}")
	ifStmt := fieldOf(t, tree, tree.Root(), "List").At(0)

	els := fieldOf(t, tree, ifStmt, "Else")
	restore, ok := els.Substitute(reducer.Placeholder{Category: reducer.CategoryStatement})
	require.True(t, ok)
	assert.Equal(t, "if a {\n} else {}", tree.Print(tree.Root()))
	_, err := New().Parse(tree.Print(tree.Root()))
	require.NoError(t, err)
	restore()
	assert.Equal(t, "if a {\n} else if b {\n}", tree.Print(tree.Root()))
}

func TestSubstituteRejectsTypedSlots(t *testing.T) {
	t.Parallel()

	tree := parse(t, "func f() {}")
	decl := fieldOf(t, tree, tree.Root(), "Decls").At(0)

	// a *ast.FuncType slot cannot hold an identifier
	typ := fieldOf(t, tree, decl, "Type")
	require.Equal(t, reducer.CategoryExpression, typ.Child().Category())
	_, ok := typ.Substitute(reducer.Placeholder{Category: reducer.CategoryExpression, Name: "x0"})
	assert.False(t, ok)
	assert.Equal(t, "func f() {}", tree.Print(tree.Root()))
}

func TestDottedFields(t *testing.T) {
	t.Parallel()

	tree := parse(t, "func f(a int, b string) {}")
	decl := fieldOf(t, tree, tree.Root(), "Decls").At(0)
	typ := fieldOf(t, tree, decl, "Type").Child()

	params := fieldOf(t, tree, typ, "Params.List")
	require.Equal(t, 2, params.Len())
	params.Delete(0)
	assert.Equal(t, "func f(b string) {}", tree.Print(tree.Root()))

	// absent lists resolve to no field
	assert.Nil(t, tree.Field(typ, "TypeParams.List"))
	assert.Nil(t, tree.Field(decl, "Recv.List"))
}

func TestScalarField(t *testing.T) {
	t.Parallel()

	tree := parse(t, "x := 1")
	assign := fieldOf(t, tree, tree.Root(), "List").At(0)
	lhs := fieldOf(t, tree, assign, "Lhs")
	assert.Equal(t, reducer.FieldSequence, lhs.Kind())

	tok := tree.Field(assign, "Tok")
	require.NotNil(t, tok)
	assert.Equal(t, reducer.FieldScalar, tok.Kind())
	assert.Nil(t, tok.Child())
	assert.Zero(t, tok.Len())
}

func TestComments(t *testing.T) {
	t.Parallel()

	src := "// a\nx := 1 /* b */"
	tree := parse(t, src)
	comments := tree.Comments()
	require.Len(t, comments, 2)

	assert.Equal(t, "// a", src[comments[0].Range.Start:comments[0].Range.End])
	assert.Equal(t, 2, comments[0].Open)
	assert.Zero(t, comments[0].Close)

	assert.Equal(t, "/* b */", src[comments[1].Range.Start:comments[1].Range.End])
	assert.Equal(t, 2, comments[1].Close)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := map[string]reducer.Category{
		"Ident":        reducer.CategoryExpression,
		"BasicLit":     reducer.CategoryExpression,
		"CallExpr":     reducer.CategoryExpression,
		"StructType":   reducer.CategoryExpression,
		"Ellipsis":     reducer.CategoryExpression,
		"ReturnStmt":   reducer.CategoryStatement,
		"FuncDecl":     reducer.CategoryStatement,
		"Field":        reducer.CategoryOther,
		"ValueSpec":    reducer.CategoryOther,
		"File":         reducer.CategoryOther,
		typeStmtList:   reducer.CategoryOther,
	}
	for typ, want := range tests {
		assert.Equal(t, want, classify(typ), typ)
	}
}
