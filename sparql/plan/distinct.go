package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// Distinct presumes sortedness on Cols and dedups adjacent rows; if the
// child isn't already sorted on (a prefix of) Cols, the row builder (spec.md
// §4.6) must insert a Sort first — Distinct itself never silently
// re-sorts.
type Distinct struct {
	base
	Child Node
	Cols  []int
}

func NewDistinct(child Node, cols []int) *Distinct {
	n := &Distinct{Child: child, Cols: append([]int{}, cols...)}
	n.vars = child.VariableColumns()
	n.size = child.SizeEstimate()
	n.costEst = cost.TotalCost([]uint64{child.CostEstimate()}, child.SizeEstimate())
	n.sortedOn = child.SortedOnColumns()
	n.kind = "Distinct"
	n.fields = struct {
		Child string
		Cols  []int
	}{child.CacheKey(), n.Cols}
	return n
}

func (d *Distinct) Children() []Node { return []Node{d.Child} }
func (d *Distinct) String() string   { return fmt.Sprintf("Distinct(cols=%v)", d.Cols) }
