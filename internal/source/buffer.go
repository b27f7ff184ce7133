// Package source keeps the original text of a parsed tree together with the
// edits committed against it, so that any subtree can be printed back with
// its untouched parts byte-for-byte identical to the input.
package source

import (
	"sort"
	"strings"
)

// Edit replaces the half-open byte range [Start, End) of the original text.
// An empty Text is a deletion.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Buffer is an original text plus a stack of edits.
type Buffer struct {
	src   string
	edits []*Edit
}

func NewBuffer(src string) *Buffer {
	return &Buffer{src: src}
}

// Original returns the text the buffer was created from.
func (b *Buffer) Original() string {
	return b.src
}

// Len returns the length of the original text.
func (b *Buffer) Len() int {
	return len(b.src)
}

// Slice returns the original text in [start, end).
func (b *Buffer) Slice(start, end int) string {
	return b.src[start:end]
}

// Apply records e and returns a function that withdraws it again.
func (b *Buffer) Apply(e Edit) (undo func()) {
	edit := &e
	b.edits = append(b.edits, edit)
	return func() {
		for i := len(b.edits) - 1; i >= 0; i-- {
			if b.edits[i] == edit {
				b.edits = append(b.edits[:i], b.edits[i+1:]...)
				return
			}
		}
	}
}

// Edits returns the number of edits currently applied.
func (b *Buffer) Edits() int {
	return len(b.edits)
}

// Render returns the original text in [start, end) with every edit that lies
// completely inside that range applied. Edits nested inside a replaced range
// are dropped; overlapping deletions are merged.
func (b *Buffer) Render(start, end int) string {
	inside := make([]*Edit, 0, len(b.edits))
	for _, e := range b.edits {
		if e.Start >= start && e.End <= end {
			inside = append(inside, e)
		}
	}
	sort.SliceStable(inside, func(i, j int) bool {
		if inside[i].Start != inside[j].Start {
			return inside[i].Start < inside[j].Start
		}
		return inside[i].End > inside[j].End
	})

	var sb strings.Builder
	pos := start
	for _, e := range inside {
		if e.Start < pos {
			if e.Text == "" && e.End > pos {
				pos = e.End
			}
			continue
		}
		sb.WriteString(b.src[pos:e.Start])
		sb.WriteString(e.Text)
		pos = e.End
	}
	sb.WriteString(b.src[pos:end])
	return sb.String()
}

// IsSeparatorGap reports whether text only holds whitespace and list
// separators, so it can be dropped together with a deleted list element.
func IsSeparatorGap(text string) bool {
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', ',', ';':
		default:
			return false
		}
	}
	return true
}

// ElementCut widens the range [start, end) of a list element that is about
// to be deleted so the separator next to it goes too. nextStart is the start
// of the following surviving element and prevEnd the end of the preceding
// one; pass -1 when there is none. The following separator is preferred.
// Gaps are judged with the current edits applied, so elements deleted
// earlier do not count.
func (b *Buffer) ElementCut(start, end, prevEnd, nextStart int) (int, int) {
	if nextStart >= end && IsSeparatorGap(b.Render(end, nextStart)) {
		return start, nextStart
	}
	if prevEnd >= 0 && prevEnd <= start && IsSeparatorGap(b.Render(prevEnd, start)) {
		return prevEnd, end
	}
	return start, end
}
