package plan

import (
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
)

// JoinKind distinguishes the physically realizable join shapes spec.md
// §4.4 enumerates.
type JoinKind int

const (
	JoinHash JoinKind = iota
	JoinSortMerge
	JoinMultiColumn
)

func (k JoinKind) String() string {
	switch k {
	case JoinHash:
		return "hash"
	case JoinSortMerge:
		return "sortmerge"
	case JoinMultiColumn:
		return "multicolumn"
	default:
		return "unknown"
	}
}

// JoinColumn is one shared-variable pair, translated to column indices in
// each side's output schema (spec.md §4.4 step 2).
type JoinColumn struct {
	Left, Right int
}

// Join is an inner join of two sub-plans on one or more shared columns
// (spec.md §6).
type Join struct {
	base
	Kind        JoinKind
	Left, Right Node
	JoinCols    []JoinColumn
}

func NewJoin(kind JoinKind, left, right Node, joinCols []JoinColumn, vars map[string]int, size, localCost uint64, sortedOn []int) *Join {
	n := &Join{Kind: kind, Left: left, Right: right, JoinCols: append([]JoinColumn{}, joinCols...)}
	n.vars = vars
	n.size = size
	n.costEst = cost.TotalCost([]uint64{left.CostEstimate(), right.CostEstimate()}, localCost)
	n.sortedOn = sortedOn
	n.kind = "Join:" + kind.String()
	n.fields = struct {
		Kind     string
		Left     string
		Right    string
		JoinCols []JoinColumn
	}{kind.String(), left.CacheKey(), right.CacheKey(), n.JoinCols}
	return n
}

func (j *Join) Children() []Node { return []Node{j.Left, j.Right} }

func (j *Join) String() string {
	return fmt.Sprintf("Join(%s, cols=%v)", j.Kind, j.JoinCols)
}

// OptionalJoin preserves every row of the non-optional side, extending it
// with NULLs when no match exists on the optional side (spec.md §4.4).
type OptionalJoin struct {
	base
	Required, Optional Node
	JoinCols           []JoinColumn
}

func NewOptionalJoin(required, optional Node, joinCols []JoinColumn, vars map[string]int, size, localCost uint64, sortedOn []int) *OptionalJoin {
	n := &OptionalJoin{Required: required, Optional: optional, JoinCols: append([]JoinColumn{}, joinCols...)}
	n.vars = vars
	n.size = size
	n.costEst = cost.TotalCost([]uint64{required.CostEstimate(), optional.CostEstimate()}, localCost)
	n.sortedOn = sortedOn
	n.kind = "OptionalJoin"
	n.fields = struct {
		Required string
		Optional string
		JoinCols []JoinColumn
	}{required.CacheKey(), optional.CacheKey(), n.JoinCols}
	return n
}

func (o *OptionalJoin) Children() []Node { return []Node{o.Required, o.Optional} }
func (o *OptionalJoin) String() string   { return fmt.Sprintf("OptionalJoin(cols=%v)", o.JoinCols) }

// Minus preserves rows of Left that have no matching row on Right (spec.md
// §4.4).
type Minus struct {
	base
	Left, Right Node
	JoinCols    []JoinColumn
}

func NewMinus(left, right Node, joinCols []JoinColumn, size, localCost uint64) *Minus {
	n := &Minus{Left: left, Right: right, JoinCols: append([]JoinColumn{}, joinCols...)}
	n.vars = left.VariableColumns()
	n.size = size
	n.costEst = cost.TotalCost([]uint64{left.CostEstimate(), right.CostEstimate()}, localCost)
	n.sortedOn = left.SortedOnColumns()
	n.kind = "Minus"
	n.fields = struct {
		Left     string
		Right    string
		JoinCols []JoinColumn
	}{left.CacheKey(), right.CacheKey(), n.JoinCols}
	return n
}

func (m *Minus) Children() []Node { return []Node{m.Left, m.Right} }
func (m *Minus) String() string   { return fmt.Sprintf("Minus(cols=%v)", m.JoinCols) }
