package writer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tmin/internal/reducer"
)

func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		w        *Writer
		filename string
		expected string
	}{
		{"default suffix", New(false, false, false), "dir/a.go", "dir/a.min.go"},
		{"custom suffix", &Writer{Suffix: ".small"}, "a.js", "a.small.js"},
		{"no extension", New(false, false, false), "Makefile", "Makefile.min"},
		{"in place", New(false, true, false), "a.go", "a.go"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.w.OutputPath(tt.filename))
		})
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	t.Run("next to the input", func(t *testing.T) {
		out, err := New(false, false, false).Write(path, "FAIL")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "a.min.go"), out)

		content, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "FAIL", string(content))

		info, err := os.Stat(out)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("dry run", func(t *testing.T) {
		var buf bytes.Buffer
		w := New(true, true, false)
		w.Out = &buf
		out, err := w.Write(path, "FAIL")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Equal(t, "Would write 4 bytes to "+path+"\n", buf.String())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "original", string(content))
	})

	t.Run("in place keeps a backup", func(t *testing.T) {
		out, err := New(false, true, false).Write(path, "FAIL")
		require.NoError(t, err)
		assert.Equal(t, path, out)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "FAIL", string(content))

		backup, err := os.ReadFile(path + BackupSuffix)
		require.NoError(t, err)
		assert.Equal(t, "original", string(backup))
	})
}

func TestFinalize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	containsAssign := reducer.OracleFunc(func(_ context.Context, text string) (bool, error) {
		return strings.Contains(text, "x"), nil
	})
	exact := reducer.OracleFunc(func(_ context.Context, text string) (bool, error) {
		return text == "x  :=  1", nil
	})

	tests := []struct {
		name     string
		w        *Writer
		language string
		reduced  string
		oracle   reducer.Oracle
		expected string
	}{
		{"formatting off", New(false, false, false), "go", "x  :=  1", containsAssign, "x  :=  1"},
		{"formatted", New(false, false, true), "go", "x  :=  1", containsAssign, "x := 1"},
		{"formatting rejected by the oracle", New(false, false, true), "go", "x  :=  1", exact, "x  :=  1"},
		{"longer formatting dropped", New(false, false, true), "go", "x:=1", containsAssign, "x:=1"},
		{"other languages untouched", New(false, false, true), "javascript", "x  :=  1", containsAssign, "x  :=  1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.w.Finalize(ctx, tt.language, tt.reduced, tt.oracle)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
