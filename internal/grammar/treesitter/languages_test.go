package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageForPath(t *testing.T) {
	t.Parallel()

	tests := map[string]Language{
		"a.js":     LangJavaScript,
		"b.mjs":    LangJavaScript,
		"c.ts":     LangTypeScript,
		"d.tsx":    LangTSX,
		"e.py":     LangPython,
		"f.rs":     LangRust,
		"G.java":   LangJava,
		"h.gno":    LangGo,
		"dir/i.JS": LangJavaScript,
	}
	for path, want := range tests {
		got, err := LanguageForPath(path)
		assert.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := LanguageForPath("notes.txt")
	assert.Error(t, err)
}
