package memo

import (
	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

// Kind distinguishes the three SubtreePlan kinds from spec.md §3. A plan of
// kind Optional or Minus is never produced as a BGP leaf (seed plans are
// always Basic).
type Kind int

const (
	Basic Kind = iota
	Optional
	Minus
)

// SubtreePlan is a candidate plan for some subset of triple-graph nodes
// (spec.md §3).
type SubtreePlan struct {
	Tree            plan.Node
	IncludedNodes   Set
	IncludedFilters Set
	Kind            Kind
	// Multiplicities caches, per output column, the average number of
	// rows per distinct value (spec.md §3's `multiplicities[col]`
	// attribute), as reported by StatisticsSource.Multiplicity when this
	// plan was seeded. A missing entry means "unknown", and callers
	// computing a join size must default it to 1.0 (spec.md §4.5).
	Multiplicities map[int]float64
}

// MultiplicityOf returns the cached multiplicity for column col, or 1.0 if
// none was recorded (spec.md §4.5's join-size formula default).
func (p SubtreePlan) MultiplicityOf(col int) float64 {
	if p.Multiplicities == nil {
		return 1.0
	}
	if m, ok := p.Multiplicities[col]; ok && m > 0 {
		return m
	}
	return 1.0
}

func (p SubtreePlan) SizeEstimate() uint64                    { return p.Tree.SizeEstimate() }
func (p SubtreePlan) CostEstimate() uint64                     { return p.Tree.CostEstimate() }
func (p SubtreePlan) SortedOnColumns() []int                   { return p.Tree.SortedOnColumns() }
func (p SubtreePlan) VariableColumns() map[sparql.Variable]int { return p.Tree.VariableColumns() }
func (p SubtreePlan) CacheKey() string                         { return p.Tree.CacheKey() }

// ColumnOf returns the output column of v in this plan, or (-1, false) if
// the plan does not bind v.
func (p SubtreePlan) ColumnOf(v sparql.Variable) (int, bool) {
	col, ok := p.VariableColumns()[v]
	if !ok {
		return -1, false
	}
	return col, true
}

// pruningKey is the identity DP uses to keep only the cheapest plan within
// one equivalence class (spec.md §4.5): (sortedOrder, includedNodes,
// includedFilters).
type pruningKey struct {
	sortedOn string
	nodes    Set
	filters  Set
}

func (p SubtreePlan) pruningKey() pruningKey {
	return pruningKey{sortedOn: sortedColsKey(p.SortedOnColumns()), nodes: p.IncludedNodes, filters: p.IncludedFilters}
}

func sortedColsKey(cols []int) string {
	b := make([]byte, 0, len(cols)*2)
	for _, c := range cols {
		b = append(b, byte(c), ',')
	}
	return string(b)
}
