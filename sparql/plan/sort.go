package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// Sort wraps a child, guaranteeing its output is ordered on Keys (ascending
// column order). Inserted wherever a sort-merge join, DISTINCT, or ORDER BY
// needs an order the child doesn't already provide (spec.md §4.4, §4.6).
type Sort struct {
	base
	Child Node
	Keys  []int
}

func NewSort(child Node, keys []int) *Sort {
	n := &Sort{Child: child, Keys: append([]int{}, keys...)}
	n.vars = child.VariableColumns()
	n.size = child.SizeEstimate()
	n.costEst = cost.TotalCost([]uint64{child.CostEstimate()}, cost.SortLocalCost(child.SizeEstimate()))
	n.sortedOn = n.Keys
	n.kind = "Sort"
	n.fields = struct {
		Child string
		Keys  []int
	}{child.CacheKey(), n.Keys}
	return n
}

func (s *Sort) Children() []Node { return []Node{s.Child} }
func (s *Sort) String() string   { return fmt.Sprintf("Sort(keys=%v)", s.Keys) }

// IsSortedOnPrefix reports whether a node's existing sort order already
// satisfies the given key prefix, so callers can skip inserting a
// redundant Sort (spec.md §4.6's ORDER BY / GROUP BY interplay).
func IsSortedOnPrefix(n Node, keys []int) bool {
	existing := n.SortedOnColumns()
	if len(existing) < len(keys) {
		return false
	}
	for i, k := range keys {
		if existing[i] != k {
			return false
		}
	}
	return true
}
