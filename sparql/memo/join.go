package memo

import (
	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

// Connected implements spec.md §4.4 step 1: a and b are connected iff some
// node in a's IncludedNodes has a TripleGraph edge to some node in b's.
func Connected(tg *TripleGraph, a, b SubtreePlan) bool {
	for _, u := range a.IncludedNodes.Bits() {
		if !tg.Adjacent(u).Disjoint(b.IncludedNodes) {
			return true
		}
	}
	return false
}

// SharedColumns returns the set of variables shared by a and b, translated
// to (colInA, colInB) pairs (spec.md §4.4 step 2). Exported so the planner
// package can reuse it for the OPTIONAL/MINUS/UNION combinators that sit
// outside one BGP's triple-graph DP.
func SharedColumns(a, b SubtreePlan) []plan.JoinColumn {
	bVars := b.VariableColumns()
	var cols []plan.JoinColumn
	for v, colA := range a.VariableColumns() {
		if colB, ok := bVars[v]; ok {
			cols = append(cols, plan.JoinColumn{Left: colA, Right: colB})
		}
	}
	return cols
}

// MergedVarColumns computes the output schema of joining a and b on
// joinCols: every column of a, then every non-duplicate column of b not
// already covered by a join column.
func MergedVarColumns(a, b SubtreePlan, joinCols []plan.JoinColumn) map[sparql.Variable]int {
	skip := map[int]bool{}
	for _, jc := range joinCols {
		skip[jc.Right] = true
	}
	out := map[sparql.Variable]int{}
	for v, c := range a.VariableColumns() {
		out[v] = c
	}
	next := len(a.VariableColumns())
	bVars := b.VariableColumns()
	// Stable order: iterate b's columns in column-index order so the
	// resulting schema layout doesn't depend on Go map iteration order.
	byCol := make([]string, len(bVars))
	for v, c := range bVars {
		if c < len(byCol) {
			byCol[c] = v
		}
	}
	for c, v := range byCol {
		if skip[c] {
			continue
		}
		if _, dup := out[v]; dup {
			continue
		}
		out[v] = next
		next++
	}
	return out
}

// MergedMultiplicities propagates the per-column multiplicity estimates
// spec.md §3 caches on a SubtreePlan (`multiplicities[col]`) through a join
// or combinator into the schema MergedVarColumns (or an equivalent merge)
// produces, so a join's own output can be joined again with the real
// per-column multiplicity instead of falling back to spec.md §4.5's
// default of 1.0.
func MergedMultiplicities(a, b SubtreePlan, vars map[sparql.Variable]int) map[int]float64 {
	aVars := a.VariableColumns()
	bVars := b.VariableColumns()
	out := make(map[int]float64, len(vars))
	for v, col := range vars {
		if aCol, ok := aVars[v]; ok {
			out[col] = a.MultiplicityOf(aCol)
			continue
		}
		if bCol, ok := bVars[v]; ok {
			out[col] = b.MultiplicityOf(bCol)
		}
	}
	return out
}

// JoinCandidates implements spec.md §4.4: given two connected sub-plans,
// enumerate the physically realizable ways to combine them.
func JoinCandidates(tg *TripleGraph, a, b SubtreePlan) []SubtreePlan {
	if !a.IncludedNodes.Disjoint(b.IncludedNodes) {
		return nil
	}
	if !Connected(tg, a, b) {
		return nil
	}

	joinCols := SharedColumns(a, b)
	includedNodes := a.IncludedNodes.Union(b.IncludedNodes)
	includedFilters := a.IncludedFilters.Union(b.IncludedFilters)

	var out []SubtreePlan
	var vars map[sparql.Variable]int
	addPlan := func(tree plan.Node, kind Kind) {
		out = append(out, SubtreePlan{Tree: tree, IncludedNodes: includedNodes, IncludedFilters: includedFilters, Kind: kind, Multiplicities: MergedMultiplicities(a, b, vars)})
	}

	switch {
	case a.Kind == Optional && b.Kind != Optional:
		out = append(out, optionalJoinCandidate(b, a, SharedColumns(b, a), includedNodes, includedFilters))
		return out
	case b.Kind == Optional && a.Kind != Optional:
		out = append(out, optionalJoinCandidate(a, b, joinCols, includedNodes, includedFilters))
		return out
	case b.Kind == Minus:
		out = append(out, minusCandidate(a, b, joinCols, includedNodes, includedFilters))
		return out
	case a.Kind != Basic || b.Kind != Basic:
		// a MINUS can only ever appear as the right operand (spec.md
		// §4.4); any other kind combination has no realizable candidate.
		return nil
	}

	if len(joinCols) == 0 {
		return nil
	}

	vars = MergedVarColumns(a, b, joinCols)

	if len(joinCols) == 1 {
		jc := joinCols[0]
		multA, multB := a.MultiplicityOf(jc.Left), b.MultiplicityOf(jc.Right)
		hashSize := cost.JoinSizeEstimate(a.SizeEstimate(), multA, b.SizeEstimate(), multB)
		hashTree := plan.NewJoin(plan.JoinHash, a.Tree, b.Tree, joinCols, vars, hashSize,
			cost.HashJoinLocalCost(a.SizeEstimate(), b.SizeEstimate()), nil)
		addPlan(hashTree, Basic)

		leftSorted, leftCost := ensureSorted(a, []int{jc.Left})
		rightSorted, rightCost := ensureSorted(b, []int{jc.Right})
		smSize := cost.JoinSizeEstimate(leftSorted.SizeEstimate(), multA, rightSorted.SizeEstimate(), multB)
		localSM := cost.SortMergeJoinLocalCost(leftSorted.SizeEstimate(), rightSorted.SizeEstimate())
		// Sort keeps its child's columns in place, so the join columns are
		// unchanged; the output keeps a's columns, so it is sorted on a's one.
		smTree := plan.NewJoin(plan.JoinSortMerge, leftSorted, rightSorted, joinCols, vars, smSize,
			localSM, []int{jc.Left})
		_ = leftCost
		_ = rightCost
		addPlan(smTree, Basic)
	} else {
		leftKeys := make([]int, len(joinCols))
		rightKeys := make([]int, len(joinCols))
		for i, jc := range joinCols {
			leftKeys[i] = jc.Left
			rightKeys[i] = jc.Right
		}
		leftSorted, _ := ensureSorted(a, leftKeys)
		rightSorted, _ := ensureSorted(b, rightKeys)
		// spec.md §4.5's join-size formula is defined for a single shared
		// column; for a multi-column join, the leading shared column drives
		// the same formula, the representative convention the rest of this
		// function already uses for sort keys.
		primary := joinCols[0]
		mcSize := cost.JoinSizeEstimate(leftSorted.SizeEstimate(), a.MultiplicityOf(primary.Left), rightSorted.SizeEstimate(), b.MultiplicityOf(primary.Right))
		localMC := cost.SortMergeJoinLocalCost(leftSorted.SizeEstimate(), rightSorted.SizeEstimate())
		mcTree := plan.NewJoin(plan.JoinMultiColumn, leftSorted, rightSorted, joinCols, vars, mcSize, localMC, leftKeys)
		addPlan(mcTree, Basic)
	}

	return out
}

// ensureSorted wraps a SubtreePlan's tree in a Sort if it isn't already
// sorted on keys, per spec.md §4.4's sort-merge join prerequisite.
func ensureSorted(p SubtreePlan, keys []int) (plan.Node, uint64) {
	if plan.IsSortedOnPrefix(p.Tree, keys) {
		return p.Tree, 0
	}
	sorted := plan.NewSort(p.Tree, keys)
	return sorted, cost.SortLocalCost(p.Tree.SizeEstimate())
}

func optionalJoinCandidate(required, optional SubtreePlan, joinCols []plan.JoinColumn, nodes, filters Set) SubtreePlan {
	vars := MergedVarColumns(required, optional, nil) // optional side keeps all its own columns too (NULL-extended)
	size := required.SizeEstimate()
	local := cost.HashJoinLocalCost(required.SizeEstimate(), optional.SizeEstimate())
	tree := plan.NewOptionalJoin(required.Tree, optional.Tree, joinCols, vars, size, local, required.SortedOnColumns())
	return SubtreePlan{Tree: tree, IncludedNodes: nodes, IncludedFilters: filters, Kind: Basic, Multiplicities: MergedMultiplicities(required, optional, vars)}
}

func minusCandidate(left, right SubtreePlan, joinCols []plan.JoinColumn, nodes, filters Set) SubtreePlan {
	size := left.SizeEstimate()
	local := cost.HashJoinLocalCost(left.SizeEstimate(), right.SizeEstimate())
	tree := plan.NewMinus(left.Tree, right.Tree, joinCols, size, local)
	// Minus preserves left's schema exactly (plan.NewMinus sets vars from
	// left), so the cached multiplicities carry over unchanged.
	return SubtreePlan{Tree: tree, IncludedNodes: nodes, IncludedFilters: filters, Kind: Basic, Multiplicities: left.Multiplicities}
}
