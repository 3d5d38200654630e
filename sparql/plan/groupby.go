package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// GroupBy wraps a child with the ordered group keys and aggregate
// expressions from a SPARQL GROUP BY clause (spec.md §4.6).
type GroupBy struct {
	base
	Child Node
	Keys  []sparql.Variable
	Aggs  []sparql.Aggregate
}

func NewGroupBy(child Node, keys []sparql.Variable, aggs []sparql.Aggregate, vars map[string]int) *GroupBy {
	// A GROUP BY reduces row count to at most the number of distinct key
	// tuples; absent column-level distinct-count statistics for composite
	// keys, halving the input size is the cost model's working estimate.
	size := child.SizeEstimate()/2 + 1
	n := &GroupBy{Child: child, Keys: append([]sparql.Variable{}, keys...), Aggs: append([]sparql.Aggregate{}, aggs...)}
	n.vars = vars
	n.size = size
	n.costEst = cost.TotalCost([]uint64{child.CostEstimate()}, child.SizeEstimate())
	n.kind = "GroupBy"
	n.fields = struct {
		Child string
		Keys  []sparql.Variable
		Aggs  []sparql.Aggregate
	}{child.CacheKey(), n.Keys, n.Aggs}
	return n
}

func (g *GroupBy) Children() []Node { return []Node{g.Child} }
func (g *GroupBy) String() string   { return fmt.Sprintf("GroupBy(keys=%v)", g.Keys) }
