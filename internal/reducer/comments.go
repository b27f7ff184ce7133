package reducer

import (
	"context"

	"go.uber.org/zap"
)

// simplifyComments deletes, blanks or empties comments until a full scan
// commits nothing. The scan starts over after every commit because ranges
// shift.
func (rn *run) simplifyComments(ctx context.Context, text string) (string, error) {
	for {
		next, changed, err := rn.simplifyFirstComment(ctx, text)
		if err != nil {
			return "", err
		}
		if !changed {
			return text, nil
		}
		rn.stats.CommentEdits++
		rn.logger.Debug("comment simplified", zap.Int("from", len(text)), zap.Int("to", len(next)))
		text = next
	}
}

func (rn *run) simplifyFirstComment(ctx context.Context, text string) (string, bool, error) {
	tree, err := rn.grammar.Parse(text)
	if err != nil {
		return "", false, &InvariantError{Stage: StageComments, Cause: ErrParse, Text: text}
	}
	for _, c := range tree.Comments() {
		for _, candidate := range commentVariants(text, c) {
			if len(candidate) >= len(text) {
				rn.stats.Skipped++
				continue
			}
			ok, err := rn.reproduces(ctx, candidate)
			if err != nil {
				return "", false, err
			}
			if ok {
				return candidate, true, nil
			}
		}
	}
	return text, false, nil
}

// commentVariants returns, in order of preference: text without the
// comment, text with the comment replaced by a space and, for delimited
// comments, text with only the delimiters left.
func commentVariants(text string, c Comment) []string {
	start, end := c.Range.Start, c.Range.End
	before, after := text[:start], text[end:]
	variants := []string{
		before + after,
		before + " " + after,
	}
	if c.Close > 0 && c.Range.Len() >= c.Open+c.Close {
		variants = append(variants, before+text[start:start+c.Open]+text[end-c.Close:end]+after)
	}
	return variants
}
