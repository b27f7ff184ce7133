package reducer

import (
	"strconv"
	"strings"
)

const prefixLetters = "xqzjkvwy"

// nameGen hands out placeholder identifiers. The prefix never occurs in the
// original text, so no generated name can collide with anything in it.
type nameGen struct {
	prefix string
	next   int
}

func newNameGen(original string) *nameGen {
	for width := 1; ; width++ {
		for _, letter := range prefixLetters {
			prefix := strings.Repeat(string(letter), width)
			if !strings.Contains(original, prefix) {
				return &nameGen{prefix: prefix}
			}
		}
	}
}

func (g *nameGen) fresh() string {
	name := g.prefix + strconv.Itoa(g.next)
	g.next++
	return name
}
