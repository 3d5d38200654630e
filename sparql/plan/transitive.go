package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// TransitivePath wraps the primitive-path scan Child with hop bounds
// [MinHops, MaxHops] (MaxHops == path.Unbounded for an unbounded closure),
// implementing spec.md §4.2's TransitiveClosure rewrite and §6's
// TransitivePath(a, [n,m]) node.
type TransitivePath struct {
	base
	Child            Node
	MinHops, MaxHops int64
}

func NewTransitivePath(child Node, minHops, maxHops int64, vars map[string]int, size uint64) *TransitivePath {
	n := &TransitivePath{Child: child, MinHops: minHops, MaxHops: maxHops}
	n.vars = vars
	n.size = size
	// Transitive closure evaluation is a fixed-point computation over the
	// child relation; the per-hop cost is bounded by revisiting the child
	// at most size times in the worst (cyclic) case.
	n.costEst = cost.TotalCost([]uint64{child.CostEstimate()}, size)
	n.kind = "TransitivePath"
	n.fields = struct {
		Child   string
		MinHops int64
		MaxHops int64
	}{child.CacheKey(), minHops, maxHops}
	return n
}

func (t *TransitivePath) Children() []Node { return []Node{t.Child} }
func (t *TransitivePath) String() string {
	return fmt.Sprintf("TransitivePath([%d,%d])", t.MinHops, t.MaxHops)
}
