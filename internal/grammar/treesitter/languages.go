package treesitter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnolang/tmin/internal/reducer"
)

// Language identifies a tree-sitter grammar.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangGo         Language = "go"
)

// LanguageForPath picks a language by file extension.
func LanguageForPath(path string) (Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript, nil
	case ".ts", ".mts", ".cts":
		return LangTypeScript, nil
	case ".tsx":
		return LangTSX, nil
	case ".py":
		return LangPython, nil
	case ".rs":
		return LangRust, nil
	case ".java":
		return LangJava, nil
	case ".go", ".gno":
		return LangGo, nil
	}
	return "", fmt.Errorf("no tree-sitter grammar for %q", path)
}

// profile holds what the generic engine cannot infer from node types.
type profile struct {
	// emptyStatement is the text of a no-op statement.
	emptyStatement string
	// blocks maps block-like statement types to the text of an empty one.
	blocks map[string]string
	// extraExpressions and extraStatements name types the suffix rules miss.
	extraExpressions []string
	extraStatements  []string
}

var profiles = map[Language]profile{
	LangJavaScript: {
		emptyStatement:   ";",
		blocks:           map[string]string{"statement_block": "{}", "class_body": "{}"},
		extraExpressions: []string{"this", "super", "regex", "template_string", "array", "object", "arrow_function", "function"},
		extraStatements:  []string{"statement_block"},
	},
	LangTypeScript: {
		emptyStatement:   ";",
		blocks:           map[string]string{"statement_block": "{}", "class_body": "{}"},
		extraExpressions: []string{"this", "super", "regex", "template_string", "array", "object", "arrow_function", "function"},
		extraStatements:  []string{"statement_block"},
	},
	LangTSX: {
		emptyStatement:   ";",
		blocks:           map[string]string{"statement_block": "{}", "class_body": "{}"},
		extraExpressions: []string{"this", "super", "regex", "template_string", "array", "object", "arrow_function", "function"},
		extraStatements:  []string{"statement_block"},
	},
	LangPython: {
		emptyStatement:   "pass",
		blocks:           map[string]string{"block": "pass"},
		extraExpressions: []string{"call", "attribute", "subscript", "lambda", "list", "dictionary", "tuple", "set"},
		extraStatements:  []string{"block"},
	},
	LangRust: {
		emptyStatement:   ";",
		blocks:           map[string]string{"block": "{}", "declaration_list": "{}"},
		extraExpressions: []string{"self"},
		extraStatements:  []string{"block"},
	},
	LangJava: {
		emptyStatement:   ";",
		blocks:           map[string]string{"block": "{}", "class_body": "{}"},
		extraExpressions: []string{"this", "super"},
		extraStatements:  []string{"block"},
	},
	LangGo: {
		emptyStatement:  "",
		blocks:          map[string]string{"block": "{}"},
		extraStatements: []string{"block"},
	},
}

var (
	exprNames    = []string{"identifier", "meta_property", "number", "string", "true", "false", "null", "undefined", "integer", "float", "none"}
	exprSuffixes = []string{"_expression", "_identifier", "literal"}
	stmtSuffixes = []string{"_statement", "_declaration", "_definition", "_item"}
)

func (p profile) classify(typ string) reducer.Category {
	for _, name := range p.extraExpressions {
		if typ == name {
			return reducer.CategoryExpression
		}
	}
	for _, name := range p.extraStatements {
		if typ == name {
			return reducer.CategoryStatement
		}
	}
	return reducer.ClassifyBySuffix(typ, exprNames, exprSuffixes, stmtSuffixes)
}

func isComment(typ string) bool {
	return typ == "comment" || strings.HasSuffix(typ, "_comment")
}
