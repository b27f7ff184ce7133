package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// FilePlaceholder is replaced by the candidate's file path in command
// arguments.
const FilePlaceholder = "{}"

// Command runs an external program on each candidate.
//
// The candidate is written to a temporary file whose path replaces every
// FilePlaceholder argument, or is appended when no argument holds one.
// With Stdin set the candidate is piped to the program instead.
//
// A run reproduces when its exit code equals ExitCode and its combined
// output matches Output. A nil ExitCode accepts any non-zero exit, unless
// Output is set, in which case the exit code is ignored.
type Command struct {
	Args     []string
	Stdin    bool
	ExitCode *int
	Output   *regexp.Regexp
	// Ext is the extension of the temporary file, including the dot.
	Ext string
	Dir string
}

// ParseCommand splits line on white space into program arguments.
func ParseCommand(line string) ([]string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil, errors.New("empty oracle command")
	}
	return args, nil
}

func (c *Command) Reproduces(ctx context.Context, text string) (bool, error) {
	if len(c.Args) == 0 {
		return false, errors.New("empty oracle command")
	}

	args := append([]string(nil), c.Args[1:]...)
	var stdin *strings.Reader
	if c.Stdin {
		stdin = strings.NewReader(text)
	} else {
		path, err := c.writeTemp(text)
		if err != nil {
			return false, err
		}
		defer os.Remove(path)
		args = substitute(args, path)
	}

	cmd := exec.CommandContext(ctx, c.Args[0], args...)
	cmd.Dir = c.Dir
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	code := 0
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return false, fmt.Errorf("failed to run %s: %w", c.Args[0], err)
		}
		code = exitErr.ExitCode()
	}

	return c.verdict(code, out.Bytes()), nil
}

func (c *Command) verdict(code int, output []byte) bool {
	switch {
	case c.ExitCode != nil:
		if code != *c.ExitCode {
			return false
		}
	case c.Output == nil:
		if code == 0 {
			return false
		}
	}
	if c.Output != nil && !c.Output.Match(output) {
		return false
	}
	return true
}

func (c *Command) writeTemp(text string) (string, error) {
	f, err := os.CreateTemp(c.Dir, "tmin_*"+c.Ext)
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("error writing to temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("error closing temp file: %w", err)
	}
	return f.Name(), nil
}

func substitute(args []string, path string) []string {
	replaced := false
	for i, arg := range args {
		if strings.Contains(arg, FilePlaceholder) {
			args[i] = strings.ReplaceAll(arg, FilePlaceholder, path)
			replaced = true
		}
	}
	if !replaced {
		args = append(args, path)
	}
	return args
}

func (c *Command) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "exec:%q stdin=%t ext=%s", c.Args, c.Stdin, c.Ext)
	if c.ExitCode != nil {
		fmt.Fprintf(&b, " exit=%d", *c.ExitCode)
	}
	if c.Output != nil {
		fmt.Fprintf(&b, " output=%s", c.Output)
	}
	return b.String()
}
