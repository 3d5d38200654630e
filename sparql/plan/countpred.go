package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
)

// CountAvailablePredicates is the pattern-trick rewrite's leaf (spec.md
// §4.6): it directly produces (SubjVar's predicate, count) pairs from the
// index's precomputed predicate statistics, replacing a
// `?s ql:has-predicate ?p` scan plus GROUP BY ?p / COUNT(*).
type CountAvailablePredicates struct {
	base
	SubjVar sparql.Variable
}

func NewCountAvailablePredicates(subjVar sparql.Variable, predicateVar, countVar sparql.Variable, distinctPredicates, totalRows uint64) *CountAvailablePredicates {
	n := &CountAvailablePredicates{SubjVar: subjVar}
	n.vars = map[string]int{predicateVar: 0, countVar: 1}
	n.size = distinctPredicates
	n.costEst = totalRows
	n.kind = "CountAvailablePredicates"
	n.fields = struct {
		SubjVar string
	}{subjVar}
	return n
}

func (c *CountAvailablePredicates) Children() []Node { return nil }
func (c *CountAvailablePredicates) String() string {
	return fmt.Sprintf("CountAvailablePredicates(%s)", c.SubjVar)
}
