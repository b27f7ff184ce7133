//go:build !cgo

package treesitter

import (
	"errors"

	"github.com/gnolang/tmin/internal/reducer"
)

// Available reports whether tree-sitter grammars are compiled in.
const Available = false

// ErrUnavailable is returned by New in builds without cgo.
var ErrUnavailable = errors.New("tree-sitter grammars require cgo")

// Grammar is a placeholder for non-cgo builds.
type Grammar struct{}

func New(lang Language) (*Grammar, error) {
	return nil, ErrUnavailable
}

func (g *Grammar) Language() Language {
	return ""
}

func (g *Grammar) Schema() reducer.Schema {
	return reducer.SchemaMap{}
}

func (g *Grammar) Parse(src string) (reducer.Tree, error) {
	return nil, ErrUnavailable
}
