package internal

import (
	"github.com/fzipp/gocyclo"

	"github.com/gnolang/tmin/internal/grammar/golang"
)

// CyclomaticComplexity sums the complexity of the functions in a Go text,
// which may be a fragment. ok is false when the text does not parse.
func CyclomaticComplexity(src string) (total int, ok bool) {
	frag, err := golang.ParseFragment(src)
	if err != nil {
		return 0, false
	}
	stats := gocyclo.AnalyzeASTFile(frag.File, frag.Fset, nil)
	for _, stat := range stats {
		total += stat.Complexity
	}
	return total, true
}
