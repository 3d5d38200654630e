package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// FixedPosition records a constant bound into one column of a permutation.
type FixedPosition struct {
	Column int // triple position: 0 subject, 1 predicate, 2 object
	Value  string
}

// IndexScan is a leaf scan over one permutation with zero or more
// positions fixed to a constant (spec.md §4.3, §6).
type IndexScan struct {
	base
	Permutation cost.Permutation
	Fixed       []FixedPosition
}

// NewIndexScan builds an IndexScan node. varColumns maps each free
// (variable) position, in permutation column order, to its output column
// index; sortedOn is the set of output columns the scan is naturally
// sorted on (every free column of an index scan is sorted, since indexes
// are maintained in permutation order).
func NewIndexScan(perm cost.Permutation, fixed []FixedPosition, varColumns map[sparql.Variable]int, size uint64) *IndexScan {
	sorted := make([]int, 0, len(varColumns))
	for _, col := range sortedVars(varColumns) {
		sorted = append(sorted, varColumns[col])
	}
	n := &IndexScan{
		Permutation: perm,
		Fixed:       append([]FixedPosition{}, fixed...),
	}
	n.vars = varColumns
	n.size = size
	n.costEst = cost.ScanLocalCost(size)
	n.sortedOn = sorted
	n.kind = "IndexScan"
	n.fields = struct {
		Perm  string
		Fixed []FixedPosition
		Vars  map[string]int
	}{perm.String(), n.Fixed, varColumns}
	return n
}

func (s *IndexScan) Children() []Node { return nil }

func (s *IndexScan) String() string {
	return fmt.Sprintf("IndexScan(%s, fixed=%v, vars=%s)", s.Permutation, s.Fixed, describeVars(s.vars))
}
