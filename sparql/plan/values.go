package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
)

// Values is a literal inline-table leaf produced by a SPARQL VALUES clause
// (spec.md §3, §6).
type Values struct {
	base
	Rows [][]sparql.Term
}

func NewValues(vars map[string]int, rows [][]sparql.Term) *Values {
	n := &Values{Rows: rows}
	n.vars = vars
	n.size = uint64(len(rows))
	if n.size == 0 {
		n.size = 1
	}
	n.costEst = n.size
	n.kind = "Values"
	n.fields = struct {
		Vars []string
		Rows [][]sparql.Term
	}{sortedVars(vars), rows}
	return n
}

func (v *Values) Children() []Node { return nil }
func (v *Values) String() string   { return fmt.Sprintf("Values(%d rows)", len(v.Rows)) }
