// Package writer stores reduction results next to their inputs.
package writer

import (
	"context"
	"fmt"
	"go/format"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnolang/tmin/internal/reducer"
)

const (
	DefaultSuffix = ".min"
	BackupSuffix  = ".orig"
)

type Writer struct {
	DryRun  bool
	InPlace bool
	// Suffix is inserted before the extension of the output file.
	Suffix string
	// Gofmt formats Go results, keeping the formatted text only when it is
	// no longer than the result and the oracle still accepts it.
	Gofmt bool
	Out   io.Writer
}

func New(dryRun, inPlace, gofmt bool) *Writer {
	return &Writer{
		DryRun:  dryRun,
		InPlace: inPlace,
		Suffix:  DefaultSuffix,
		Gofmt:   gofmt,
		Out:     os.Stdout,
	}
}

// OutputPath returns where the result for filename goes.
func (w *Writer) OutputPath(filename string) string {
	if w.InPlace {
		return filename
	}
	suffix := w.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + suffix + ext
}

// Finalize applies the optional formatting to reduced and returns the
// text to write. o may be nil when formatting is off.
func (w *Writer) Finalize(ctx context.Context, language, reduced string, o reducer.Oracle) (string, error) {
	if !w.Gofmt || language != "go" || o == nil {
		return reduced, nil
	}
	formatted, err := format.Source([]byte(reduced))
	if err != nil || string(formatted) == reduced || len(formatted) > len(reduced) {
		return reduced, nil
	}
	ok, err := o.Reproduces(ctx, string(formatted))
	if err != nil {
		return "", fmt.Errorf("failed to check formatted result: %w", err)
	}
	if !ok {
		return reduced, nil
	}
	return string(formatted), nil
}

// Write stores text as the result for filename and returns the path it
// went to. In dry-run mode nothing is written and the path is empty.
func (w *Writer) Write(filename, text string) (string, error) {
	out := w.OutputPath(filename)
	if w.DryRun {
		if w.Out != nil {
			fmt.Fprintf(w.Out, "Would write %d bytes to %s\n", len(text), out)
		}
		return "", nil
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(filename); err == nil {
		perm = info.Mode().Perm()
	}

	if w.InPlace {
		original, err := os.ReadFile(filename)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		if err := os.WriteFile(filename+BackupSuffix, original, perm); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	if err := os.WriteFile(out, []byte(text), perm); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return out, nil
}
