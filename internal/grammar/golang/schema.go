package golang

import "github.com/gnolang/tmin/internal/reducer"

// Fragment roots get their own types so the wrapper's package name and
// function are never reduced.
const (
	typeDeclList = "DeclList"
	typeStmtList = "StmtList"
)

// schema lists the child fields of each go/ast node type in the order
// ast.Walk visits them. Field lists are addressed through their List so the
// parameters, results and struct fields are reduced like any other list.
var schema = reducer.SchemaMap{
	typeDeclList: {"Decls"},
	typeStmtList: {"List"},
	"File":       {"Name", "Decls"},

	"Field":     {"Names", "Type", "Tag"},
	"FieldList": {"List"},

	"Ellipsis":       {"Elt"},
	"FuncLit":        {"Type", "Body"},
	"CompositeLit":   {"Type", "Elts"},
	"ParenExpr":      {"X"},
	"SelectorExpr":   {"X", "Sel"},
	"IndexExpr":      {"X", "Index"},
	"IndexListExpr":  {"X", "Indices"},
	"SliceExpr":      {"X", "Low", "High", "Max"},
	"TypeAssertExpr": {"X", "Type"},
	"CallExpr":       {"Fun", "Args"},
	"StarExpr":       {"X"},
	"UnaryExpr":      {"X"},
	"BinaryExpr":     {"X", "Y"},
	"KeyValueExpr":   {"Key", "Value"},

	"ArrayType":     {"Len", "Elt"},
	"StructType":    {"Fields.List"},
	"FuncType":      {"TypeParams.List", "Params.List", "Results.List"},
	"InterfaceType": {"Methods.List"},
	"MapType":       {"Key", "Value"},
	"ChanType":      {"Value"},

	"DeclStmt":       {"Decl"},
	"LabeledStmt":    {"Label", "Stmt"},
	"ExprStmt":       {"X"},
	"SendStmt":       {"Chan", "Value"},
	"IncDecStmt":     {"X"},
	"AssignStmt":     {"Lhs", "Rhs"},
	"GoStmt":         {"Call"},
	"DeferStmt":      {"Call"},
	"ReturnStmt":     {"Results"},
	"BranchStmt":     {"Label"},
	"BlockStmt":      {"List"},
	"IfStmt":         {"Init", "Cond", "Body", "Else"},
	"CaseClause":     {"List", "Body"},
	"SwitchStmt":     {"Init", "Tag", "Body"},
	"TypeSwitchStmt": {"Init", "Assign", "Body"},
	"CommClause":     {"Comm", "Body"},
	"SelectStmt":     {"Body"},
	"ForStmt":        {"Init", "Cond", "Post", "Body"},
	"RangeStmt":      {"Key", "Value", "X", "Body"},

	"ImportSpec": {"Name", "Path"},
	"ValueSpec":  {"Names", "Type", "Values"},
	"TypeSpec":   {"Name", "TypeParams.List", "Type"},
	"GenDecl":    {"Specs"},
	"FuncDecl":   {"Recv.List", "Name", "Type", "Body"},
}

var (
	exprNames    = []string{"Ident", "Ellipsis"}
	exprSuffixes = []string{"Expr", "Lit", "Type"}
	stmtSuffixes = []string{"Stmt", "Decl"}
)

func classify(typ string) reducer.Category {
	return reducer.ClassifyBySuffix(typ, exprNames, exprSuffixes, stmtSuffixes)
}
