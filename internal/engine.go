package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gnolang/tmin/internal/oracle"
	"github.com/gnolang/tmin/internal/reducer"
	tt "github.com/gnolang/tmin/internal/types"
)

// Engine reduces files against one oracle configuration.
type Engine struct {
	oracleConfig tt.OracleConfig
	language     string
	cache        *Cache
	logger       *zap.Logger
}

type EngineOption func(*Engine)

// WithLanguage forces the grammar instead of picking it by extension.
func WithLanguage(language string) EngineOption {
	return func(e *Engine) {
		e.language = language
	}
}

// WithCache makes the engine answer repeated oracle queries from cache.
func WithCache(cache *Cache) EngineOption {
	return func(e *Engine) {
		e.cache = cache
	}
}

func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new reduction engine.
func NewEngine(cfg tt.OracleConfig, opts ...EngineOption) (*Engine, error) {
	if _, err := oracle.FromConfig(cfg, ""); err != nil {
		return nil, err
	}
	engine := &Engine{
		oracleConfig: cfg,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Oracle returns the oracle used for files named like filename.
func (e *Engine) Oracle(filename string) (reducer.Oracle, error) {
	o, err := oracle.FromConfig(e.oracleConfig, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		o = e.cache.Wrap(o)
	}
	return o, nil
}

// Run reduces the given file and returns a report of the reduction.
func (e *Engine) Run(ctx context.Context, filename string) (*tt.Report, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return e.RunSource(ctx, filename, content)
}

// RunSource reduces source. filename picks the grammar and may be empty
// when the engine has a language.
func (e *Engine) RunSource(ctx context.Context, filename string, source []byte) (*tt.Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := e.logger.With(zap.String("run", runID), zap.String("file", filename))

	grammar, language, err := GrammarFor(filename, e.language)
	if err != nil {
		return nil, err
	}
	o, err := e.Oracle(filename)
	if err != nil {
		return nil, err
	}

	logger.Info("reducing", zap.String("language", language), zap.Int("size", len(source)))
	res, err := reducer.New(grammar, o, reducer.WithLogger(logger)).Reduce(ctx, string(source))
	if err != nil {
		return nil, fmt.Errorf("error reducing %s: %w", displayName(filename), err)
	}

	report := &tt.Report{
		RunID:     runID,
		Filename:  filename,
		Language:  language,
		Original:  string(source),
		Reduced:   res.Text,
		Extracted: res.Extracted,
		Phases:    res.Phases,
		Stats:     res.Stats,
		Duration:  time.Since(start),
	}
	if language == LangGo {
		before, ok1 := CyclomaticComplexity(report.Original)
		after, ok2 := CyclomaticComplexity(report.Reduced)
		if ok1 && ok2 {
			report.Complexity = &tt.Complexity{Before: before, After: after}
		}
	}

	logger.Info("reduced",
		zap.Int("size", len(res.Text)),
		zap.Int("oracle_calls", res.Stats.OracleCalls),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// Check evaluates the oracle once on the file, after making sure it
// parses.
func (e *Engine) Check(ctx context.Context, filename string) (bool, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return false, fmt.Errorf("error reading file: %w", err)
	}
	grammar, _, err := GrammarFor(filename, e.language)
	if err != nil {
		return false, err
	}
	if _, err := grammar.Parse(string(content)); err != nil {
		return false, fmt.Errorf("error parsing %s: %w", displayName(filename), err)
	}
	o, err := e.Oracle(filename)
	if err != nil {
		return false, err
	}
	return o.Reproduces(ctx, string(content))
}

func displayName(filename string) string {
	if strings.TrimSpace(filename) == "" {
		return "<source>"
	}
	return filename
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode splits text into lines.
func ReadSourceCode(text string) *SourceCode {
	return &SourceCode{Lines: strings.Split(text, "\n")}
}
