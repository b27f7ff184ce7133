package reducer

import (
	"context"

	"go.uber.org/zap"
)

// pruner deletes and simplifies descendants of a tree that is known to
// reproduce, keeping every change after which the whole still reproduces.
type pruner struct {
	*run
	tree Tree
	// current is the text of the tree as of the last committed change.
	current string
}

func (p *pruner) prune(ctx context.Context, n Node) error {
	for _, name := range p.schema.Fields(n.Type()) {
		f := p.tree.Field(n, name)
		if f == nil {
			continue
		}
		var err error
		switch f.Kind() {
		case FieldSequence:
			err = p.pruneSequence(ctx, f)
		case FieldSingle:
			err = p.pruneSingle(ctx, f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pruneSequence visits elements back to front so a deletion never shifts
// the index of an element still to be visited.
func (p *pruner) pruneSequence(ctx context.Context, f Field) error {
	for i := f.Len() - 1; i >= 0; i-- {
		child := f.At(i)
		restore := f.Delete(i)
		ok, err := p.try(ctx)
		if err != nil {
			restore()
			return err
		}
		if ok {
			p.stats.Deletions++
			continue
		}
		restore()
		if child == nil {
			continue
		}
		if err := p.prune(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

func (p *pruner) pruneSingle(ctx context.Context, f Field) error {
	child := f.Child()
	if child == nil {
		return nil
	}

	var ph Placeholder
	switch child.Category() {
	case CategoryExpression:
		ph = Placeholder{Category: CategoryExpression, Name: p.names.fresh()}
	case CategoryStatement:
		ph = Placeholder{Category: CategoryStatement}
	default:
		return nil
	}

	if restore, ok := f.Substitute(ph); ok {
		accepted, err := p.try(ctx)
		if err != nil {
			restore()
			return err
		}
		if accepted {
			p.stats.Substitutions++
			return nil
		}
		restore()
	}
	return p.prune(ctx, child)
}

// try evaluates the tree in its tentative state and records it as current
// when accepted.
func (p *pruner) try(ctx context.Context) (bool, error) {
	text := p.tree.Print(p.tree.Root())
	if len(text) >= len(p.current) {
		p.stats.Skipped++
		return false, nil
	}
	ok, err := p.reproduces(ctx, text)
	if err != nil || !ok {
		return false, err
	}
	p.logger.Debug("pruned candidate accepted", zap.Int("from", len(p.current)), zap.Int("to", len(text)))
	p.current = text
	return true, nil
}
