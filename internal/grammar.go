package internal

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnolang/tmin/internal/grammar/golang"
	"github.com/gnolang/tmin/internal/grammar/treesitter"
	"github.com/gnolang/tmin/internal/reducer"
)

const LangGo = "go"

// GrammarFor returns the grammar for language, or the one the extension
// of filename implies when language is empty. Go and Gno use the go/parser
// grammar; "tree-sitter-go" selects the tree-sitter one instead.
func GrammarFor(filename, language string) (reducer.Grammar, string, error) {
	language = strings.ToLower(language)
	if language == "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".go", ".gno":
			return golang.New(), LangGo, nil
		}
		lang, err := treesitter.LanguageForPath(filename)
		if err != nil {
			return nil, "", err
		}
		language = string(lang)
	}

	switch language {
	case LangGo, "gno":
		return golang.New(), LangGo, nil
	case "tree-sitter-go":
		language = string(treesitter.LangGo)
	}

	g, err := treesitter.New(treesitter.Language(language))
	if err != nil {
		return nil, "", fmt.Errorf("grammar %s: %w", language, err)
	}
	return g, language, nil
}
