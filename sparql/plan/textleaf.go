package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// TextLeaf is the leaf incarnation of a text-search clique (spec.md §4.3,
// §4.7): a cross product of matching contexts with up to Limit entities,
// producing (ContextVar, matching entity variables..., score).
type TextLeaf struct {
	base
	ContextVar sparql.Variable
	WordPart   string
	Limit      uint32
}

func NewTextLeaf(cvar sparql.Variable, wordPart string, limit uint32, vars map[string]int, size uint64) *TextLeaf {
	n := &TextLeaf{ContextVar: cvar, WordPart: wordPart, Limit: limit}
	n.vars = vars
	n.size = size
	n.costEst = cost.ScanLocalCost(size)
	n.kind = "TextLeaf"
	n.fields = struct {
		ContextVar string
		WordPart   string
		Limit      uint32
	}{cvar, wordPart, limit}
	return n
}

func (t *TextLeaf) Children() []Node { return nil }
func (t *TextLeaf) String() string {
	return fmt.Sprintf("TextLeaf(%s, %q, limit=%d)", t.ContextVar, t.WordPart, t.Limit)
}
