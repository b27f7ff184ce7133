package reducer

import (
	"context"

	"go.uber.org/zap"
)

// extractor looks for the deepest node whose standalone print still
// reproduces. The search is depth-first and takes the first match, so a
// smaller reproducer under a later sibling can be missed.
type extractor struct {
	*run
	tree Tree
}

// extract returns the deepest reproducing descendant of n, or n itself.
func (x *extractor) extract(ctx context.Context, n Node) (Node, error) {
	found, err := x.search(ctx, n)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return n, nil
	}
	return found, nil
}

// search returns nil when no descendant of n reproduces on its own.
// Children that do not qualify are walked through but never tested.
func (x *extractor) search(ctx context.Context, n Node) (Node, error) {
	for _, name := range x.schema.Fields(n.Type()) {
		f := x.tree.Field(n, name)
		if f == nil {
			continue
		}
		for _, child := range Children(f) {
			if !Qualifies(child) {
				found, err := x.search(ctx, child)
				if err != nil || found != nil {
					return found, err
				}
				continue
			}
			ok, err := x.reproduces(ctx, x.tree.Print(child))
			if err != nil {
				return nil, err
			}
			if ok {
				x.logger.Debug("extracted candidate accepted", zap.String("node", child.Type()))
				return x.extract(ctx, child)
			}
		}
	}
	return nil, nil
}
