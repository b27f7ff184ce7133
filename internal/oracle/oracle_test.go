package oracle

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tmin/internal/reducer"
	tt "github.com/gnolang/tmin/internal/types"
)

func intPtr(i int) *int {
	return &i
}

func TestContainsAndRegexp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ok, err := Contains("FAIL").Reproduces(ctx, "x FAIL y")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Contains("FAIL").Reproduces(ctx, "x PASS y")
	require.NoError(t, err)
	assert.False(t, ok)

	re, err := NewRegexp(`panic: .*nil`)
	require.NoError(t, err)
	ok, err = re.Reproduces(ctx, "panic: invalid memory address or nil pointer")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = NewRegexp("(")
	assert.Error(t, err)
}

func TestAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	single := Contains("a")
	assert.Equal(t, reducer.Oracle(single), All(single))

	both := All(Contains("a"), Contains("b"))
	ok, err := both.Reproduces(ctx, "ab")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = both.Reproduces(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// evaluation stops at the first rejection
	called := false
	spy := reducer.OracleFunc(func(context.Context, string) (bool, error) {
		called = true
		return true, nil
	})
	ok, err = All(Contains("z"), spy).Reproduces(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `contains:"FAIL"`, Fingerprint(Contains("FAIL")))
	assert.Empty(t, Fingerprint(reducer.OracleFunc(func(context.Context, string) (bool, error) {
		return true, nil
	})))

	a := All(Contains("a"), Contains("b"))
	assert.Equal(t, `all(contains:"a",contains:"b")`, Fingerprint(a))

	// one opaque member makes the whole conjunction opaque
	opaque := All(Contains("a"), reducer.OracleFunc(func(context.Context, string) (bool, error) {
		return true, nil
	}))
	assert.Empty(t, Fingerprint(opaque))

	assert.NotEqual(t, Fingerprint(WithTimeout(a, time.Second)), Fingerprint(WithTimeout(a, time.Minute)))
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	slow := reducer.OracleFunc(func(ctx context.Context, _ string) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})

	_, wrapped := WithTimeout(slow, 0).(*timeout)
	assert.False(t, wrapped)
	assert.Equal(t, reducer.Oracle(Contains("x")), WithTimeout(Contains("x"), 0))

	ok, err := WithTimeout(slow, 10*time.Millisecond).Reproduces(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WithTimeout(slow, time.Minute).Reproduces(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	slow := reducer.OracleFunc(func(ctx context.Context, _ string) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})

	ok, timedOut, err := Evaluate(context.Background(), WithTimeout(slow, 10*time.Millisecond), "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, timedOut)

	ok, timedOut, err = Evaluate(context.Background(), WithTimeout(Contains("y"), time.Minute), "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, timedOut)

	ok, timedOut, err = Evaluate(context.Background(), Contains("x"), "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, timedOut)
}

func TestCommand(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	t.Parallel()

	tests := []struct {
		name     string
		cmd      *Command
		text     string
		expected bool
	}{
		{
			name:     "path appended",
			cmd:      &Command{Args: []string{"grep", "-q", "FAIL"}, ExitCode: intPtr(0)},
			text:     "FAIL()",
			expected: true,
		},
		{
			name:     "path substituted",
			cmd:      &Command{Args: []string{"sh", "-c", "grep -q FAIL {}"}, ExitCode: intPtr(0)},
			text:     "PASS()",
			expected: false,
		},
		{
			name:     "stdin",
			cmd:      &Command{Args: []string{"grep", "-q", "FAIL"}, Stdin: true, ExitCode: intPtr(0)},
			text:     "FAIL()",
			expected: true,
		},
		{
			name:     "non-zero exit by default",
			cmd:      &Command{Args: []string{"sh", "-c", "exit 3"}},
			expected: true,
		},
		{
			name:     "zero exit does not reproduce by default",
			cmd:      &Command{Args: []string{"sh", "-c", "exit 0"}},
			expected: false,
		},
		{
			name:     "exact exit code",
			cmd:      &Command{Args: []string{"sh", "-c", "exit 3"}, ExitCode: intPtr(2)},
			expected: false,
		},
		{
			name:     "output match ignores the exit code",
			cmd:      &Command{Args: []string{"cat"}, Output: regexp.MustCompile(`FA+IL`)},
			text:     "FAAIL",
			expected: true,
		},
		{
			name:     "extension",
			cmd:      &Command{Args: []string{"sh", "-c", "case {} in *.js) exit 1;; esac"}, Ext: ".js"},
			expected: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ok, err := tc.cmd.Reproduces(context.Background(), tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}
}

func TestCommandErrors(t *testing.T) {
	t.Parallel()

	_, err := (&Command{}).Reproduces(context.Background(), "x")
	assert.Error(t, err)

	_, err = (&Command{Args: []string{"tmin-no-such-binary"}}).Reproduces(context.Background(), "x")
	assert.Error(t, err)

	_, err = ParseCommand("  ")
	assert.Error(t, err)

	args, err := ParseCommand("go  vet {}")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "vet", "{}"}, args)
}

func TestCommandTimeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	t.Parallel()

	o := WithTimeout(&Command{Args: []string{"sleep", "5"}, Stdin: true}, 50*time.Millisecond)
	start := time.Now()
	ok, err := o.Reproduces(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second)
}

const selfAssign = `package p

func f() int {
	x := 1
	x = x
	return x
}
`

func TestAnalyzerOracle(t *testing.T) {
	t.Parallel()

	a, err := LookupAnalyzer("assign")
	require.NoError(t, err)

	ctx := context.Background()
	ok, err := NewAnalyzer(a, ModeReport, nil).Reproduces(ctx, selfAssign)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewAnalyzer(a, ModeReport, regexp.MustCompile("self-assignment")).Reproduces(ctx, "x := 1\nx = x")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewAnalyzer(a, ModeReport, regexp.MustCompile("unrelated")).Reproduces(ctx, selfAssign)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewAnalyzer(a, ModeReport, nil).Reproduces(ctx, "package p\n\nfunc f() {}\n")
	require.NoError(t, err)
	assert.False(t, ok)

	// candidates that do not parse are negative, not errors
	ok, err = NewAnalyzer(a, ModeReport, nil).Reproduces(ctx, "func {")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewAnalyzer(a, ModePanic, nil).Reproduces(ctx, selfAssign)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunAnalyzer(t *testing.T) {
	t.Parallel()

	a, err := LookupAnalyzer("assign")
	require.NoError(t, err)

	diags, err := RunAnalyzer(selfAssign, a)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "assign", diags[0].Analyzer)
	assert.Contains(t, diags[0].Message, "self-assignment of x")
	assert.Equal(t, 5, diags[0].Start.Line)
}

func TestLookupAnalyzer(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Analyzers(), "assign")
	assert.IsIncreasing(t, Analyzers())

	_, err := LookupAnalyzer("nope")
	assert.Error(t, err)

	for _, s := range []string{"", "report", "panic"} {
		_, err := ParseMode(s)
		assert.NoError(t, err, s)
	}
	_, err = ParseMode("loud")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     tt.OracleConfig
		wantErr error
		invalid bool
	}{
		{name: "contains", cfg: tt.OracleConfig{Contains: "FAIL"}},
		{name: "command and regex", cfg: tt.OracleConfig{Regex: "F.IL", Command: "false"}},
		{name: "analyzer", cfg: tt.OracleConfig{Analyzer: "assign", Mode: "panic"}},
		{name: "nothing", cfg: tt.OracleConfig{}, wantErr: ErrNoOracle},
		{name: "stdin without command", cfg: tt.OracleConfig{Contains: "x", Stdin: true}, invalid: true},
		{name: "exit code without command", cfg: tt.OracleConfig{Contains: "x", ExitCode: intPtr(1)}, invalid: true},
		{name: "bad regex", cfg: tt.OracleConfig{Regex: "("}, invalid: true},
		{name: "bad output pattern", cfg: tt.OracleConfig{Command: "false", Output: "("}, invalid: true},
		{name: "unknown analyzer", cfg: tt.OracleConfig{Analyzer: "nope"}, invalid: true},
		{name: "unknown mode", cfg: tt.OracleConfig{Analyzer: "assign", Mode: "loud"}, invalid: true},
		{name: "bad message", cfg: tt.OracleConfig{Analyzer: "assign", Message: "("}, invalid: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			o, err := FromConfig(tc.cfg, ".go")
			switch {
			case tc.wantErr != nil:
				assert.True(t, errors.Is(err, tc.wantErr))
			case tc.invalid:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.NotNil(t, o)
				assert.NotEmpty(t, Fingerprint(o))
			}
		})
	}
}
