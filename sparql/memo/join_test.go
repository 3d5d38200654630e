package memo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
	"github.com/jeremiahpslewis/qlever-planner/sparql/path"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

func scanPlan(id int, vars map[sparql.Variable]int, size uint64) SubtreePlan {
	leaf := plan.NewIndexScan(cost.SPO, nil, vars, size)
	return SubtreePlan{Tree: leaf, IncludedNodes: NewSet(id), Kind: Basic}
}

func chainGraph(t *testing.T) *TripleGraph {
	t.Helper()
	x, y, z := sparql.NewVariable("x"), sparql.NewVariable("y"), sparql.NewVariable("z")
	tg, err := Build([]sparql.Triple{
		knows(x, y),
		knows(y, z),
	}, nil)
	require.NoError(t, err)
	return tg
}

func TestConnected(t *testing.T) {
	tg := chainGraph(t)
	a := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	b := scanPlan(1, map[sparql.Variable]int{"?y": 0, "?z": 1}, 10)
	assert.True(t, Connected(tg, a, b))

	c := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	d := scanPlan(0, map[sparql.Variable]int{"?x": 0}, 10)
	assert.False(t, Connected(tg, c, d)) // same node id, not really a connectivity test but Disjoint guards upstream
}

func TestSharedColumns(t *testing.T) {
	a := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	b := scanPlan(1, map[sparql.Variable]int{"?y": 0, "?z": 1}, 10)
	cols := SharedColumns(a, b)
	require.Len(t, cols, 1)
	assert.Equal(t, plan.JoinColumn{Left: 1, Right: 0}, cols[0])
}

func TestMergedVarColumns(t *testing.T) {
	a := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	b := scanPlan(1, map[sparql.Variable]int{"?y": 0, "?z": 1}, 10)
	cols := SharedColumns(a, b)
	merged := MergedVarColumns(a, b, cols)

	assert.Equal(t, 0, merged["?x"])
	assert.Equal(t, 1, merged["?y"])
	assert.Equal(t, 2, merged["?z"])
}

func TestJoinCandidates_SingleColumnYieldsHashAndSortMerge(t *testing.T) {
	tg := chainGraph(t)
	a := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	b := scanPlan(1, map[sparql.Variable]int{"?y": 0, "?z": 1}, 10)

	candidates := JoinCandidates(tg, a, b)
	require.Len(t, candidates, 2)

	kinds := map[plan.JoinKind]bool{}
	for _, c := range candidates {
		j, ok := c.Tree.(*plan.Join)
		require.True(t, ok)
		kinds[j.Kind] = true
		assert.Equal(t, NewSet(0, 1), c.IncludedNodes)
	}
	assert.True(t, kinds[plan.JoinHash])
	assert.True(t, kinds[plan.JoinSortMerge])
}

func TestJoinCandidates_MultiColumnYieldsOneCandidate(t *testing.T) {
	x, y := sparql.NewVariable("x"), sparql.NewVariable("y")
	tg, err := Build([]sparql.Triple{
		{Subject: x, Predicate: path.Iri("http://example/p1"), Object: y},
		{Subject: x, Predicate: path.Iri("http://example/p2"), Object: y},
	}, nil)
	require.NoError(t, err)

	a := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	b := scanPlan(1, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)

	candidates := JoinCandidates(tg, a, b)
	require.Len(t, candidates, 1)
	j, ok := candidates[0].Tree.(*plan.Join)
	require.True(t, ok)
	assert.Equal(t, plan.JoinMultiColumn, j.Kind)
}

func TestJoinCandidates_UsesRealMultiplicityNotPlaceholderOne(t *testing.T) {
	tg := chainGraph(t)
	a := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	a.Multiplicities = map[int]float64{1: 4.0}
	b := scanPlan(1, map[sparql.Variable]int{"?y": 0, "?z": 1}, 10)
	b.Multiplicities = map[int]float64{0: 2.0}

	candidates := JoinCandidates(tg, a, b)
	require.Len(t, candidates, 2)

	placeholder := cost.JoinSizeEstimate(a.SizeEstimate(), 1.0, b.SizeEstimate(), 1.0)
	real := cost.JoinSizeEstimate(a.SizeEstimate(), 4.0, b.SizeEstimate(), 2.0)
	require.NotEqual(t, placeholder, real, "test fixture must exercise a size difference")

	for _, c := range candidates {
		j, ok := c.Tree.(*plan.Join)
		require.True(t, ok)
		if j.Kind == plan.JoinHash {
			assert.Equal(t, real, j.SizeEstimate())
		}
		vars := c.VariableColumns()
		// a's own multiplicity wins for the shared join variable ?y since
		// MergedMultiplicities prefers the left side when both sides bind
		// a variable.
		assert.Equal(t, 4.0, c.MultiplicityOf(vars["?y"]))
		assert.Equal(t, 1.0, c.MultiplicityOf(vars["?x"]), "no cached multiplicity for ?x must default to 1.0")
		assert.Equal(t, 1.0, c.MultiplicityOf(vars["?z"]), "no cached multiplicity for ?z must default to 1.0")
	}
}

func TestJoinCandidates_DisjointSharingNoVariableReturnsNil(t *testing.T) {
	tg := chainGraph(t)
	a := scanPlan(0, map[sparql.Variable]int{"?x": 0}, 10)
	b := scanPlan(1, map[sparql.Variable]int{"?z": 0}, 10)
	assert.Nil(t, JoinCandidates(tg, a, b))
}

func TestJoinCandidates_NotDisjointReturnsNil(t *testing.T) {
	tg := chainGraph(t)
	a := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	assert.Nil(t, JoinCandidates(tg, a, a))
}

func TestJoinCandidates_Optional(t *testing.T) {
	tg := chainGraph(t)
	required := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	optional := scanPlan(1, map[sparql.Variable]int{"?y": 0, "?z": 1}, 10)
	optional.Kind = Optional

	candidates := JoinCandidates(tg, required, optional)
	require.Len(t, candidates, 1)
	_, ok := candidates[0].Tree.(*plan.OptionalJoin)
	assert.True(t, ok)
	assert.Equal(t, Basic, candidates[0].Kind)
}

func TestJoinCandidates_Minus(t *testing.T) {
	tg := chainGraph(t)
	left := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	right := scanPlan(1, map[sparql.Variable]int{"?y": 0, "?z": 1}, 10)
	right.Kind = Minus

	candidates := JoinCandidates(tg, left, right)
	require.Len(t, candidates, 1)
	_, ok := candidates[0].Tree.(*plan.Minus)
	assert.True(t, ok)
}

func TestEnsureSorted_AlreadySortedSkipsSort(t *testing.T) {
	p := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	tree, localCost := ensureSorted(p, p.SortedOnColumns())
	assert.Equal(t, p.Tree, tree)
	assert.Equal(t, uint64(0), localCost)
}

func TestEnsureSorted_WrapsInSort(t *testing.T) {
	p := scanPlan(0, map[sparql.Variable]int{"?x": 0, "?y": 1}, 10)
	tree, localCost := ensureSorted(p, []int{1, 0})
	_, ok := tree.(*plan.Sort)
	assert.True(t, ok)
	assert.Greater(t, localCost, uint64(0))
}
