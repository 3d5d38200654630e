package plan

import (
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// Union is a binary union of two sub-plans (spec.md §6, §4.2's Alternative
// rewrite). N-ary UNION blocks are built as a left-leaning tree of binary
// Unions (see sparql.uniteGraphPatterns).
type Union struct {
	base
	Left, Right Node
}

func NewUnion(left, right Node, vars map[string]int) *Union {
	n := &Union{Left: left, Right: right}
	n.vars = vars
	n.size = left.SizeEstimate() + right.SizeEstimate()
	n.costEst = cost.TotalCost([]uint64{left.CostEstimate(), right.CostEstimate()}, left.SizeEstimate()+right.SizeEstimate())
	n.kind = "Union"
	n.fields = struct{ Left, Right string }{left.CacheKey(), right.CacheKey()}
	return n
}

func (u *Union) Children() []Node { return []Node{u.Left, u.Right} }
func (u *Union) String() string   { return "Union" }
