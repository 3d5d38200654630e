package memo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/path"
)

func knows(s, o sparql.Term) sparql.Triple {
	return sparql.Triple{Subject: s, Predicate: path.Iri("http://example/knows"), Object: o}
}

func TestBuild_AdjacencyOnSharedVariable(t *testing.T) {
	x, y, z := sparql.NewVariable("x"), sparql.NewVariable("y"), sparql.NewVariable("z")
	bgp := []sparql.Triple{knows(x, y), knows(y, z)}

	tg, err := Build(bgp, nil)
	require.NoError(t, err)
	require.Len(t, tg.Nodes, 2)
	assert.True(t, tg.Adjacent(0).Contains(1))
	assert.True(t, tg.Adjacent(1).Contains(0))
}

func TestBuild_DisjointTriplesNoEdge(t *testing.T) {
	x, y, a, b := sparql.NewVariable("x"), sparql.NewVariable("y"), sparql.NewVariable("a"), sparql.NewVariable("b")
	bgp := []sparql.Triple{knows(x, y), knows(a, b)}

	tg, err := Build(bgp, nil)
	require.NoError(t, err)
	assert.True(t, tg.Adjacent(0).IsEmpty())
	assert.True(t, tg.Adjacent(1).IsEmpty())

	comps := tg.ConnectedComponents()
	assert.Len(t, comps, 2)
}

func TestBuild_TextCliqueCollapse(t *testing.T) {
	ctx, e1 := sparql.NewVariable("ctx"), sparql.NewVariable("e1")
	wordTriple := sparql.Triple{
		Subject:   ctx,
		Predicate: path.Iri(sparql.ContainsWordPredicate),
		Object:    sparql.NewLiteral("bob"),
	}
	entityTriple := sparql.Triple{
		Subject:   ctx,
		Predicate: path.Iri(sparql.ContainsEntityPredicate),
		Object:    e1,
	}
	other := knows(e1, sparql.NewVariable("z"))

	tg, err := Build([]sparql.Triple{wordTriple, entityTriple, other}, map[sparql.Variable]bool{ctx.Value: true})
	require.NoError(t, err)

	require.Len(t, tg.Nodes, 2)
	var textNode *Node
	for i := range tg.Nodes {
		if tg.Nodes[i].IsText {
			textNode = &tg.Nodes[i]
		}
	}
	require.NotNil(t, textNode)
	assert.Equal(t, ctx.Value, textNode.CVar)
	assert.Equal(t, "bob", textNode.WordPart)
	assert.False(t, tg.IsPureTextQuery())
}

func TestBFSLeaveOut(t *testing.T) {
	x, y, z := sparql.NewVariable("x"), sparql.NewVariable("y"), sparql.NewVariable("z")
	tg, err := Build([]sparql.Triple{knows(x, y), knows(y, z)}, nil)
	require.NoError(t, err)

	reachable := tg.BFSLeaveOut(0, Set(0))
	assert.Equal(t, NewSet(0, 1), reachable)

	cutOff := tg.BFSLeaveOut(0, NewSet(1))
	assert.Equal(t, NewSet(0), cutOff)
}

func TestIsSimilar(t *testing.T) {
	x, y, z := sparql.NewVariable("x"), sparql.NewVariable("y"), sparql.NewVariable("z")
	a, err := Build([]sparql.Triple{knows(x, y), knows(y, z)}, nil)
	require.NoError(t, err)
	b, err := Build([]sparql.Triple{knows(y, z), knows(x, y)}, nil)
	require.NoError(t, err)

	assert.True(t, a.IsSimilar(b))
}

func TestCheckNodeCount_ExceedsLimit(t *testing.T) {
	var bgp []sparql.Triple
	for i := 0; i < MaxNodes+1; i++ {
		bgp = append(bgp, knows(sparql.NewVariable("s"), sparql.NewVariable("o")))
	}
	_, err := Build(bgp, nil)
	require.Error(t, err)
}
