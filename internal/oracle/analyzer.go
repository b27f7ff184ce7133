package oracle

import (
	"context"
	"fmt"
	"go/ast"
	"go/importer"
	"go/token"
	"go/types"
	"regexp"
	"sort"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/defers"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"

	"github.com/gnolang/tmin/internal/grammar/golang"
)

// Mode selects what an Analyzer oracle looks for.
type Mode string

const (
	// ModeReport reproduces when the analyzer reports a diagnostic.
	ModeReport Mode = "report"
	// ModePanic reproduces when the analyzer panics.
	ModePanic Mode = "panic"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeReport:
		return ModeReport, nil
	case ModePanic:
		return ModePanic, nil
	}
	return "", fmt.Errorf("unknown analyzer mode %q", s)
}

var analyzers = map[string]*analysis.Analyzer{
	assign.Analyzer.Name:        assign.Analyzer,
	bools.Analyzer.Name:         bools.Analyzer,
	defers.Analyzer.Name:        defers.Analyzer,
	inspect.Analyzer.Name:       inspect.Analyzer,
	nilfunc.Analyzer.Name:       nilfunc.Analyzer,
	shift.Analyzer.Name:         shift.Analyzer,
	stringintconv.Analyzer.Name: stringintconv.Analyzer,
	unreachable.Analyzer.Name:   unreachable.Analyzer,
	unusedresult.Analyzer.Name:  unusedresult.Analyzer,
}

// Analyzers returns the names of the registered analyzers.
func Analyzers() []string {
	names := make([]string, 0, len(analyzers))
	for name := range analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupAnalyzer returns the registered analyzer called name.
func LookupAnalyzer(name string) (*analysis.Analyzer, error) {
	a, ok := analyzers[name]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer %q", name)
	}
	return a, nil
}

// PanicError is a panic recovered from an analyzer run.
type PanicError struct {
	Analyzer string
	Value    any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("analyzer %s panicked: %v", e.Analyzer, e.Value)
}

// Diagnostic is a finding reported by an analyzer.
type Diagnostic struct {
	Analyzer string
	Message  string
	Category string
	Start    token.Position
	End      token.Position
}

// Analyzer runs a go/analysis analyzer on each candidate, which may be a
// file or a fragment of one.
type Analyzer struct {
	analyzer *analysis.Analyzer
	mode     Mode
	// message restricts ModeReport to diagnostics whose message matches.
	message *regexp.Regexp
}

func NewAnalyzer(a *analysis.Analyzer, mode Mode, message *regexp.Regexp) *Analyzer {
	return &Analyzer{analyzer: a, mode: mode, message: message}
}

func (a *Analyzer) Reproduces(ctx context.Context, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	diags, err := RunAnalyzer(text, a.analyzer)
	if a.mode == ModePanic {
		_, panicked := err.(*PanicError)
		return panicked, nil
	}
	if err != nil {
		// a candidate the analyzer cannot run on does not reproduce
		return false, nil
	}
	for _, d := range diags {
		if a.message == nil || a.message.MatchString(d.Message) {
			return true, nil
		}
	}
	return false, nil
}

func (a *Analyzer) Fingerprint() string {
	fp := fmt.Sprintf("analyzer:%s mode=%s", a.analyzer.Name, a.mode)
	if a.message != nil {
		fp += " message=" + a.message.String()
	}
	return fp
}

// RunAnalyzer type-checks code leniently and runs analyzer together with
// the analyzers it requires. A panic in any of them is returned as a
// *PanicError.
func RunAnalyzer(code string, analyzer *analysis.Analyzer) (diags []Diagnostic, err error) {
	frag, err := golang.ParseFragment(code)
	if err != nil {
		return nil, err
	}
	fset := frag.Fset
	files := []*ast.File{frag.File}

	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Instances:  make(map[*ast.Ident]types.Instance),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Scopes:     make(map[ast.Node]*types.Scope),
	}
	var typeErrors []types.Error
	conf := types.Config{
		Importer: importer.ForCompiler(fset, "source", nil),
		Error: func(err error) {
			if te, ok := err.(types.Error); ok {
				typeErrors = append(typeErrors, te)
			}
		},
	}
	pkg, _ := conf.Check(frag.File.Name.Name, fset, files, info)

	r := &analyzerRun{
		fset:       fset,
		files:      files,
		pkg:        pkg,
		info:       info,
		typeErrors: typeErrors,
		results:    make(map[*analysis.Analyzer]any),
		offset:     frag.Start,
	}
	defer func() {
		if v := recover(); v != nil {
			diags = nil
			err = &PanicError{Analyzer: r.current, Value: v}
		}
	}()

	if _, err := r.run(analyzer, true); err != nil {
		return nil, err
	}
	return r.diags, nil
}

type analyzerRun struct {
	fset       *token.FileSet
	files      []*ast.File
	pkg        *types.Package
	info       *types.Info
	typeErrors []types.Error
	results    map[*analysis.Analyzer]any
	diags      []Diagnostic
	current    string
	offset     int
}

func (r *analyzerRun) run(a *analysis.Analyzer, report bool) (any, error) {
	if res, ok := r.results[a]; ok {
		return res, nil
	}

	resultOf := make(map[*analysis.Analyzer]any, len(a.Requires))
	for _, req := range a.Requires {
		res, err := r.run(req, false)
		if err != nil {
			return nil, err
		}
		resultOf[req] = res
	}

	pass := &analysis.Pass{
		Analyzer:          a,
		Fset:              r.fset,
		Files:             r.files,
		Pkg:               r.pkg,
		TypesInfo:         r.info,
		TypesSizes:        types.SizesFor("gc", "amd64"),
		TypeErrors:        r.typeErrors,
		ResultOf:          resultOf,
		Report:            func(analysis.Diagnostic) {},
		ImportObjectFact:  func(types.Object, analysis.Fact) bool { return false },
		ImportPackageFact: func(*types.Package, analysis.Fact) bool { return false },
		ExportObjectFact:  func(types.Object, analysis.Fact) {},
		ExportPackageFact: func(analysis.Fact) {},
		AllPackageFacts:   func() []analysis.PackageFact { return nil },
		AllObjectFacts:    func() []analysis.ObjectFact { return nil },
	}
	if report {
		pass.Report = func(d analysis.Diagnostic) {
			r.diags = append(r.diags, Diagnostic{
				Analyzer: a.Name,
				Message:  d.Message,
				Category: d.Category,
				Start:    r.position(d.Pos),
				End:      r.position(d.End),
			})
		}
	}

	r.current = a.Name
	res, err := a.Run(pass)
	if err != nil {
		return nil, fmt.Errorf("analyzer %s: %w", a.Name, err)
	}
	r.results[a] = res
	return res, nil
}

// position maps p back into the unwrapped fragment.
func (r *analyzerRun) position(p token.Pos) token.Position {
	if !p.IsValid() {
		return token.Position{}
	}
	pos := r.fset.Position(p)
	pos.Offset -= r.offset
	return pos
}
