// Package reducer shrinks a source text that reproduces some defect into a
// smaller text that still reproduces it.
//
// A run has three phases. Pruning deletes and simplifies subtrees of the
// parsed text while the oracle keeps accepting the whole. Extraction looks
// for the deepest single node whose standalone print is still accepted.
// Comment simplification then deletes or empties comments. Every candidate
// is reparsed before the oracle sees it, and the text between phases is
// checked again; a failed check is an *InvariantError.
//
// Runs are strictly sequential: exactly one oracle call is in flight at any
// time and the context is consulted before each of them.
package reducer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Stats counts what happened during a run.
type Stats struct {
	OracleCalls   int `json:"oracle_calls"`
	ParseFailures int `json:"parse_failures"`
	Rejected      int `json:"rejected"`
	// Skipped counts candidates that were not shorter than the current text.
	Skipped       int `json:"skipped"`
	Deletions     int `json:"deletions"`
	Substitutions int `json:"substitutions"`
	CommentEdits  int `json:"comment_edits"`
}

// Phase records the text size after a phase.
type Phase struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Result is the outcome of a run.
type Result struct {
	Text string
	// Extracted is the type of the node whose print became the text.
	Extracted string
	Phases    []Phase
	Stats     Stats
}

// Reducer runs reductions for one grammar and oracle. It holds no per-run
// state, so one Reducer may serve several runs.
type Reducer struct {
	grammar Grammar
	schema  Schema
	oracle  Oracle
	logger  *zap.Logger
}

type Option func(*Reducer)

// WithLogger sets the logger mutations and phases are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reducer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSchema overrides the field schema of the grammar.
func WithSchema(schema Schema) Option {
	return func(r *Reducer) {
		if schema != nil {
			r.schema = schema
		}
	}
}

func New(grammar Grammar, oracle Oracle, opts ...Option) *Reducer {
	r := &Reducer{
		grammar: grammar,
		schema:  grammar.Schema(),
		oracle:  oracle,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce returns a text no larger than sourceText that parses and still
// satisfies oracle.
func Reduce(ctx context.Context, sourceText string, oracle Oracle, grammar Grammar, opts ...Option) (string, error) {
	res, err := New(grammar, oracle, opts...).Reduce(ctx, sourceText)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Reduce runs the three phases on src.
func (r *Reducer) Reduce(ctx context.Context, src string) (*Result, error) {
	rn := &run{
		grammar: r.grammar,
		schema:  r.schema,
		oracle:  r.oracle,
		logger:  r.logger,
		names:   newNameGen(src),
	}
	res := &Result{Phases: []Phase{{Name: "input", Size: len(src)}}}

	if err := rn.verify(ctx, StageInput, src); err != nil {
		return nil, err
	}
	tree, err := r.grammar.Parse(src)
	if err != nil {
		return nil, &InvariantError{Stage: StageInput, Cause: ErrParse, Text: src}
	}

	p := &pruner{run: rn, tree: tree, current: tree.Print(tree.Root())}
	if err := p.prune(ctx, tree.Root()); err != nil {
		return nil, err
	}
	pruned := tree.Print(tree.Root())
	res.Phases = append(res.Phases, Phase{Name: "prune", Size: len(pruned)})
	rn.logger.Info("pruned",
		zap.Int("size", len(pruned)),
		zap.Int("deletions", rn.stats.Deletions),
		zap.Int("substitutions", rn.stats.Substitutions))

	x := &extractor{run: rn, tree: tree}
	node, err := x.extract(ctx, tree.Root())
	if err != nil {
		return nil, err
	}
	extracted := tree.Print(node)
	res.Extracted = node.Type()
	if err := rn.verify(ctx, StageExtract, extracted); err != nil {
		return nil, err
	}
	res.Phases = append(res.Phases, Phase{Name: "extract", Size: len(extracted)})
	rn.logger.Info("extracted", zap.String("node", node.Type()), zap.Int("size", len(extracted)))

	final, err := rn.simplifyComments(ctx, extracted)
	if err != nil {
		return nil, err
	}
	if err := rn.verify(ctx, StageComments, final); err != nil {
		return nil, err
	}
	res.Phases = append(res.Phases, Phase{Name: "comments", Size: len(final)})
	rn.logger.Info("comments simplified", zap.Int("size", len(final)), zap.Int("edits", rn.stats.CommentEdits))

	res.Text = final
	res.Stats = rn.stats
	return res, nil
}

// run is the state of a single reduction.
type run struct {
	grammar Grammar
	schema  Schema
	oracle  Oracle
	logger  *zap.Logger
	names   *nameGen
	stats   Stats
}

// reproduces reparses text and asks the oracle. A parse failure is a
// negative verdict.
func (rn *run) reproduces(ctx context.Context, text string) (bool, error) {
	ok, parsed, err := rn.evaluate(ctx, text)
	if err != nil {
		return false, err
	}
	return parsed && ok, nil
}

func (rn *run) evaluate(ctx context.Context, text string) (ok, parsed bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, false, err
	}
	if _, err := rn.grammar.Parse(text); err != nil {
		rn.stats.ParseFailures++
		return false, false, nil
	}
	rn.stats.OracleCalls++
	ok, err = rn.oracle.Reproduces(ctx, text)
	if err != nil {
		return false, true, fmt.Errorf("oracle: %w", err)
	}
	if !ok {
		rn.stats.Rejected++
	}
	return ok, true, nil
}

// verify is a checkpoint assertion.
func (rn *run) verify(ctx context.Context, stage Stage, text string) error {
	ok, parsed, err := rn.evaluate(ctx, text)
	if err != nil {
		return err
	}
	switch {
	case !parsed:
		return &InvariantError{Stage: stage, Cause: ErrParse, Text: text}
	case !ok:
		return &InvariantError{Stage: stage, Cause: ErrNotReproduced, Text: text}
	}
	return nil
}
