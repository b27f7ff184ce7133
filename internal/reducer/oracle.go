package reducer

import "context"

// Oracle decides whether a candidate text still reproduces the defect.
// It must be deterministic with respect to text. A returned error aborts
// the run.
type Oracle interface {
	Reproduces(ctx context.Context, text string) (bool, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, text string) (bool, error)

func (f OracleFunc) Reproduces(ctx context.Context, text string) (bool, error) {
	return f(ctx, text)
}
