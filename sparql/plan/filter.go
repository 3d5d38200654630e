package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// FilterSelectivity is the default fraction of rows a Filter is assumed to
// keep when no statistics-backed estimate is available. The cost model
// from spec.md §4.5 only specifies join/sort/scan costs explicitly;
// filters are assumed cheap-and-lossy local operators, consistent with the
// teacher's default expression selectivity heuristics.
const FilterSelectivity = 0.1

// Filter wraps a child with a boolean expression, inserted at the earliest
// plan where every free variable of the expression is bound (spec.md
// §4.6).
type Filter struct {
	base
	Child Node
	Expr  sparql.Expr
}

func NewFilter(child Node, expr sparql.Expr) *Filter {
	size := uint64(float64(child.SizeEstimate())*FilterSelectivity) + 1
	n := &Filter{Child: child, Expr: expr}
	n.vars = child.VariableColumns()
	n.size = size
	n.costEst = cost.TotalCost([]uint64{child.CostEstimate()}, child.SizeEstimate())
	n.sortedOn = child.SortedOnColumns()
	n.kind = "Filter"
	n.fields = struct {
		Child string
		Expr  string
	}{child.CacheKey(), expr.String()}
	return n
}

func (f *Filter) Children() []Node { return []Node{f.Child} }
func (f *Filter) String() string   { return fmt.Sprintf("Filter(%s)", f.Expr.String()) }
