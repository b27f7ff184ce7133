// Package oracle provides the predicates a reduction is driven by.
//
// Every adapter here satisfies reducer.Oracle. A negative verdict is not an
// error; errors are reserved for oracles that could not reach a verdict.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gnolang/tmin/internal/reducer"
)

// Fingerprinter is implemented by oracles that can describe their
// configuration. Two oracles with the same fingerprint give the same
// verdicts, which lets verdicts be cached across runs.
type Fingerprinter interface {
	Fingerprint() string
}

// Fingerprint returns o's fingerprint, or "" when o has none.
func Fingerprint(o reducer.Oracle) string {
	if f, ok := o.(Fingerprinter); ok {
		return f.Fingerprint()
	}
	return ""
}

// Contains accepts texts containing substr.
type Contains string

func (c Contains) Reproduces(_ context.Context, text string) (bool, error) {
	return strings.Contains(text, string(c)), nil
}

func (c Contains) Fingerprint() string {
	return fmt.Sprintf("contains:%q", string(c))
}

// Regexp accepts texts matching re.
type Regexp struct {
	re *regexp.Regexp
}

func NewRegexp(pattern string) (*Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle pattern: %w", err)
	}
	return &Regexp{re: re}, nil
}

func (r *Regexp) Reproduces(_ context.Context, text string) (bool, error) {
	return r.re.MatchString(text), nil
}

func (r *Regexp) Fingerprint() string {
	return "regexp:" + r.re.String()
}

type all []reducer.Oracle

// All accepts a text when every oracle does. Oracles are consulted in
// order and evaluation stops at the first rejection.
func All(oracles ...reducer.Oracle) reducer.Oracle {
	if len(oracles) == 1 {
		return oracles[0]
	}
	return all(oracles)
}

func (a all) Reproduces(ctx context.Context, text string) (bool, error) {
	for _, o := range a {
		ok, err := o.Reproduces(ctx, text)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a all) Fingerprint() string {
	parts := make([]string, len(a))
	for i, o := range a {
		fp := Fingerprint(o)
		if fp == "" {
			return ""
		}
		parts[i] = fp
	}
	return "all(" + strings.Join(parts, ",") + ")"
}

type timeout struct {
	oracle reducer.Oracle
	d      time.Duration
}

// WithTimeout bounds each evaluation of o by d. An evaluation that runs
// out of time is a negative verdict; cancellation of the parent context is
// still an error.
func WithTimeout(o reducer.Oracle, d time.Duration) reducer.Oracle {
	if d <= 0 {
		return o
	}
	return &timeout{oracle: o, d: d}
}

func (t *timeout) Reproduces(ctx context.Context, text string) (bool, error) {
	ok, _, err := t.evaluate(ctx, text)
	return ok, err
}

func (t *timeout) evaluate(ctx context.Context, text string) (ok, timedOut bool, err error) {
	tctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	ok, err = t.oracle.Reproduces(tctx, text)
	if err != nil {
		if ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return false, true, nil
		}
		return false, false, err
	}
	return ok, false, nil
}

// Evaluate asks o about text and also reports whether a negative verdict
// came from an evaluation running out of time. Such verdicts say nothing
// about text and must not be remembered.
func Evaluate(ctx context.Context, o reducer.Oracle, text string) (ok, timedOut bool, err error) {
	if t, isTimeout := o.(*timeout); isTimeout {
		return t.evaluate(ctx, text)
	}
	ok, err = o.Reproduces(ctx, text)
	return ok, false, err
}

func (t *timeout) Fingerprint() string {
	fp := Fingerprint(t.oracle)
	if fp == "" {
		return ""
	}
	return fmt.Sprintf("timeout(%s,%s)", t.d, fp)
}
