package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// OrderByKey is one ORDER BY key translated to a column index plus
// direction.
type OrderByKey struct {
	Column int
	Desc   bool
}

// OrderBy wraps a child, sorting by Keys. Distinct from the internal Sort
// node so the row builder can tell "a user-requested ORDER BY" apart from
// "a sort inserted to satisfy a join/distinct prerequisite" in debug
// output (spec.md §6 lists OrderBy and Sort as separate node kinds).
type OrderBy struct {
	base
	Child Node
	Keys  []OrderByKey
}

func NewOrderBy(child Node, keys []OrderByKey) *OrderBy {
	n := &OrderBy{Child: child, Keys: append([]OrderByKey{}, keys...)}
	n.vars = child.VariableColumns()
	n.size = child.SizeEstimate()
	cols := make([]int, len(keys))
	for i, k := range keys {
		cols[i] = k.Column
	}
	n.costEst = cost.TotalCost([]uint64{child.CostEstimate()}, cost.SortLocalCost(child.SizeEstimate()))
	n.sortedOn = cols
	n.kind = "OrderBy"
	n.fields = struct {
		Child string
		Keys  []OrderByKey
	}{child.CacheKey(), n.Keys}
	return n
}

func (o *OrderBy) Children() []Node { return []Node{o.Child} }
func (o *OrderBy) String() string   { return fmt.Sprintf("OrderBy(keys=%v)", o.Keys) }
