package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Parallel()

	const src = "f(a, b, c)"

	tests := []struct {
		name     string
		edits    []Edit
		start    int
		end      int
		expected string
	}{
		{
			name:     "no edits",
			start:    0,
			end:      len(src),
			expected: src,
		},
		{
			name:     "deletion",
			edits:    []Edit{{Start: 2, End: 5}},
			start:    0,
			end:      len(src),
			expected: "f(b, c)",
		},
		{
			name:     "replacement",
			edits:    []Edit{{Start: 5, End: 6, Text: "x0"}},
			start:    0,
			end:      len(src),
			expected: "f(a, x0, c)",
		},
		{
			name:     "edits outside the range are ignored",
			edits:    []Edit{{Start: 0, End: 1, Text: "g"}, {Start: 8, End: 9, Text: "z"}},
			start:    2,
			end:      6,
			expected: "a, b",
		},
		{
			name:     "nested edit under a replacement is dropped",
			edits:    []Edit{{Start: 5, End: 6, Text: "q"}, {Start: 2, End: 9, Text: "x"}},
			start:    0,
			end:      len(src),
			expected: "f(x)",
		},
		{
			name:     "overlapping deletions merge",
			edits:    []Edit{{Start: 2, End: 5}, {Start: 4, End: 8}},
			start:    0,
			end:      len(src),
			expected: "f(c)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := NewBuffer(src)
			for _, e := range tt.edits {
				b.Apply(e)
			}
			assert.Equal(t, tt.expected, b.Render(tt.start, tt.end))
		})
	}
}

func TestApplyUndo(t *testing.T) {
	t.Parallel()

	b := NewBuffer("abc")
	undoFirst := b.Apply(Edit{Start: 0, End: 1})
	undoSecond := b.Apply(Edit{Start: 2, End: 3, Text: "z"})
	assert.Equal(t, "bz", b.Render(0, b.Len()))
	assert.Equal(t, 2, b.Edits())

	undoFirst()
	assert.Equal(t, "abz", b.Render(0, b.Len()))

	undoSecond()
	assert.Equal(t, "abc", b.Render(0, b.Len()))
	assert.Equal(t, 0, b.Edits())
	assert.Equal(t, "abc", b.Original())
}

func TestElementCut(t *testing.T) {
	t.Parallel()

	// f(a, b, c) with a at [2,3), b at [5,6) and c at [8,9)
	b := NewBuffer("f(a, b, c)")

	tests := []struct {
		name               string
		start, end         int
		prevEnd, nextStart int
		wantStart, wantEnd int
	}{
		{"first element takes the following separator", 2, 3, -1, 5, 2, 5},
		{"middle element takes the following separator", 5, 6, 3, 8, 5, 8},
		{"last element takes the preceding separator", 8, 9, 6, -1, 6, 9},
		{"only element", 2, 3, -1, -1, 2, 3},
	}

	for _, tt := range tests {
		start, end := b.ElementCut(tt.start, tt.end, tt.prevEnd, tt.nextStart)
		assert.Equal(t, tt.wantStart, start, tt.name)
		assert.Equal(t, tt.wantEnd, end, tt.name)
	}

	// a comment between elements is not a separator
	c := NewBuffer("a /* c */ b")
	start, end := c.ElementCut(0, 1, -1, 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, end)
}

func TestIsSeparatorGap(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSeparatorGap(""))
	assert.True(t, IsSeparatorGap(", \n\t;"))
	assert.False(t, IsSeparatorGap(" // c\n"))
	assert.False(t, IsSeparatorGap(" + "))
}
