package planner

import (
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
	"github.com/jeremiahpslewis/qlever-planner/sparql/memo"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

// wrapLeaf lifts a bare plan.Node produced outside one BGP's triple-graph
// DP (a combinator's sub-plan, a VALUES leaf) into a memo.SubtreePlan so it
// can be folded with memo.SharedColumns/MergedVarColumns the same way DP
// candidates are. mults carries forward the cached per-column multiplicity
// attribute (spec.md §3) computed by the caller; nil means "none known".
func wrapLeaf(n plan.Node, mults map[int]float64) memo.SubtreePlan {
	return memo.SubtreePlan{Tree: n, Kind: memo.Basic, Multiplicities: mults}
}

// combinePlans joins a and b the way the top-level orchestrator folds
// sequential GraphPattern elements that sit outside a single BGP's DP
// (UNION branches, VALUES blocks, cross-component results): a hash join on
// every shared variable, or a cross product when the two sides share none.
func combinePlans(a, b memo.SubtreePlan) memo.SubtreePlan {
	joinCols := memo.SharedColumns(a, b)
	if len(joinCols) == 0 {
		return crossProduct(a, b)
	}
	vars := memo.MergedVarColumns(a, b, joinCols)
	// spec.md §4.5's join-size formula is defined for a single shared
	// column; the leading shared column stands in as the representative,
	// the same convention memo.JoinCandidates uses for multi-column joins.
	primary := joinCols[0]
	multA, multB := a.MultiplicityOf(primary.Left), b.MultiplicityOf(primary.Right)
	size := cost.JoinSizeEstimate(a.SizeEstimate(), multA, b.SizeEstimate(), multB)
	local := cost.HashJoinLocalCost(a.SizeEstimate(), b.SizeEstimate())
	tree := plan.NewJoin(plan.JoinHash, a.Tree, b.Tree, joinCols, vars, size, local, nil)
	return wrapLeaf(tree, memo.MergedMultiplicities(a, b, vars))
}

// crossProduct builds the implicit cross product spec.md §4.1/§9 calls for
// when a BGP splits into disjoint connected components (SPEC_FULL.md
// "Supplemented features" #3): no shared columns, so output size is the
// plain product of both sides' sizes.
func crossProduct(a, b memo.SubtreePlan) memo.SubtreePlan {
	vars := memo.MergedVarColumns(a, b, nil)
	size := a.SizeEstimate() * b.SizeEstimate()
	if size == 0 {
		size = 1
	}
	local := cost.HashJoinLocalCost(a.SizeEstimate(), b.SizeEstimate())
	tree := plan.NewJoin(plan.JoinHash, a.Tree, b.Tree, nil, vars, size, local, nil)
	return wrapLeaf(tree, memo.MergedMultiplicities(a, b, vars))
}

// foldOptional builds the OPTIONAL combinator: required is the plan built
// so far, optional is the OPTIONAL block's own sub-plan. Every row of
// required survives; rows of optional extend it only where the join
// columns match (spec.md §4.4).
func foldOptional(required, optional memo.SubtreePlan) memo.SubtreePlan {
	joinCols := memo.SharedColumns(required, optional)
	vars := memo.MergedVarColumns(required, optional, nil)
	local := cost.HashJoinLocalCost(required.SizeEstimate(), optional.SizeEstimate())
	tree := plan.NewOptionalJoin(required.Tree, optional.Tree, joinCols, vars, required.SizeEstimate(), local, required.SortedOnColumns())
	return wrapLeaf(tree, memo.MergedMultiplicities(required, optional, vars))
}

// foldMinus builds the MINUS combinator: rows of left with no matching row
// on right, matched on every variable right and left share.
func foldMinus(left, right memo.SubtreePlan) memo.SubtreePlan {
	joinCols := memo.SharedColumns(left, right)
	local := cost.HashJoinLocalCost(left.SizeEstimate(), right.SizeEstimate())
	tree := plan.NewMinus(left.Tree, right.Tree, joinCols, left.SizeEstimate(), local)
	// Minus preserves left's schema exactly, so left's own multiplicities
	// carry over unchanged (the same convention memo.minusCandidate uses).
	return wrapLeaf(tree, left.Multiplicities)
}

// foldUnion builds a binary UNION of two independently planned branches
// (spec.md §6; planGraphPattern folds an N-ary UNION block into a
// left-leaning tree of these, so only the binary case is ever needed here).
func foldUnion(left, right memo.SubtreePlan) memo.SubtreePlan {
	vars := memo.MergedVarColumns(left, right, nil)
	tree := plan.NewUnion(left.Tree, right.Tree, vars)
	return wrapLeaf(tree, memo.MergedMultiplicities(left, right, vars))
}
