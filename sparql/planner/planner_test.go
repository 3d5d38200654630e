package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
	"github.com/jeremiahpslewis/qlever-planner/sparql/path"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

// fixtureStats is a small fixed StatisticsSource used across the scenarios
// below (spec.md §8's S1-S6), grounded on the same fixed-fixture testing
// convention the teacher's enginetest package uses for query execution
// tests (a small, hand-built schema/stats fixture rather than a live
// engine).
type fixtureStats struct{}

func (fixtureStats) Cardinality(ctx context.Context, perm cost.Permutation, bound cost.BoundPositions) (uint64, error) {
	return 100, nil
}
func (fixtureStats) Multiplicity(ctx context.Context, perm cost.Permutation, column int) (float64, error) {
	return 1.0, nil
}
func (fixtureStats) TextMatches(ctx context.Context, wordPart string) (uint64, error) { return 5, nil }
func (fixtureStats) HasPredicateStats(ctx context.Context) (uint64, uint64, error) {
	return 10, 1000, nil
}

func bgp(triples ...sparql.Triple) sparql.GraphPattern {
	return sparql.GraphPattern{Elements: []sparql.GraphPatternElement{{Op: sparql.OpBasicGraphPattern, Triples: triples}}}
}

func newTestContext() *Context {
	return NewContext(context.Background(), nil)
}

func TestCreateExecutionTree_SingleTripleScan(t *testing.T) {
	p := NewTestPlanner(fixtureStats{})
	x, y := sparql.NewVariable("x"), sparql.NewVariable("y")
	q := sparql.ParsedQuery{
		Kind:       sparql.QuerySelect,
		SelectVars: []sparql.Variable{x.Value, y.Value},
		Where: bgp(sparql.Triple{
			Subject:   x,
			Predicate: path.Iri("http://example/knows"),
			Object:    y,
		}),
	}

	tree, err := p.CreateExecutionTree(newTestContext(), q)
	require.NoError(t, err)

	_, ok := tree.(*plan.IndexScan)
	assert.True(t, ok)
	assert.Equal(t, 2, tree.Arity())
}

func TestCreateExecutionTree_TwoTripleStarJoin(t *testing.T) {
	p := NewTestPlanner(fixtureStats{})
	x, y, z := sparql.NewVariable("x"), sparql.NewVariable("y"), sparql.NewVariable("z")
	q := sparql.ParsedQuery{
		Kind:       sparql.QuerySelect,
		SelectVars: []sparql.Variable{x.Value, y.Value, z.Value},
		Where: bgp(
			sparql.Triple{Subject: x, Predicate: path.Iri("http://example/knows"), Object: y},
			sparql.Triple{Subject: x, Predicate: path.Iri("http://example/knows"), Object: z},
		),
	}

	tree, err := p.CreateExecutionTree(newTestContext(), q)
	require.NoError(t, err)

	_, ok := tree.(*plan.Join)
	require.True(t, ok)
	vars := tree.VariableColumns()
	assert.Contains(t, vars, sparql.Variable("?x"))
	assert.Contains(t, vars, sparql.Variable("?y"))
	assert.Contains(t, vars, sparql.Variable("?z"))
}

func TestCreateExecutionTree_FilterPlacedAtEarliestBoundPoint(t *testing.T) {
	p := NewTestPlanner(fixtureStats{})
	x, y := sparql.NewVariable("x"), sparql.NewVariable("y")
	filterEl := sparql.GraphPatternElement{
		Op: sparql.OpFilter,
		Filter: sparql.Filter{Expr: sparql.BinaryExpr{
			Op: ">", Left: sparql.VarExpr{Name: x.Value}, Right: sparql.Literal{Text: "5"},
		}},
	}
	q := sparql.ParsedQuery{
		Kind:       sparql.QuerySelect,
		SelectVars: []sparql.Variable{x.Value, y.Value},
		Where: sparql.GraphPattern{Elements: []sparql.GraphPatternElement{
			{Op: sparql.OpBasicGraphPattern, Triples: []sparql.Triple{
				{Subject: x, Predicate: path.Iri("http://example/knows"), Object: y},
			}},
			filterEl,
		}},
	}

	tree, err := p.CreateExecutionTree(newTestContext(), q)
	require.NoError(t, err)

	_, ok := tree.(*plan.Filter)
	assert.True(t, ok)
}

func TestCreateExecutionTree_TransitivePath(t *testing.T) {
	p := NewTestPlanner(fixtureStats{})
	x, z := sparql.NewVariable("x"), sparql.NewVariable("z")
	q := sparql.ParsedQuery{
		Kind:       sparql.QuerySelect,
		SelectVars: []sparql.Variable{x.Value, z.Value},
		Where: bgp(sparql.Triple{
			Subject:   x,
			Predicate: path.OneOrMore(path.Iri("http://example/knows")),
			Object:    z,
		}),
	}

	tree, err := p.CreateExecutionTree(newTestContext(), q)
	require.NoError(t, err)

	_, ok := tree.(*plan.TransitivePath)
	assert.True(t, ok)
}

func TestCreateExecutionTree_PatternTrick(t *testing.T) {
	p := NewTestPlanner(fixtureStats{})
	s, pr, c := sparql.NewVariable("s"), sparql.NewVariable("p"), sparql.NewVariable("c")
	q := sparql.ParsedQuery{
		Kind:       sparql.QuerySelect,
		SelectVars: []sparql.Variable{pr.Value, c.Value},
		Where: bgp(sparql.Triple{
			Subject:   s,
			Predicate: path.Iri(sparql.HasPredicatePredicate),
			Object:    pr,
		}),
		Aggregates: []sparql.Aggregate{{Kind: sparql.AggCount, Arg: sparql.StarExpr{}, Output: c.Value}},
		Modifiers:  sparql.SolutionModifiers{GroupBy: []sparql.Variable{pr.Value}},
	}

	tree, err := p.CreateExecutionTree(newTestContext(), q)
	require.NoError(t, err)

	_, ok := tree.(*plan.CountAvailablePredicates)
	assert.True(t, ok)
}

func TestCreateExecutionTree_PatternTrickSkipsCountDistinct(t *testing.T) {
	p := NewTestPlanner(fixtureStats{})
	s, pr, c := sparql.NewVariable("s"), sparql.NewVariable("p"), sparql.NewVariable("c")
	q := sparql.ParsedQuery{
		Kind:       sparql.QuerySelect,
		SelectVars: []sparql.Variable{pr.Value, c.Value},
		Where: bgp(sparql.Triple{
			Subject:   s,
			Predicate: path.Iri(sparql.HasPredicatePredicate),
			Object:    pr,
		}),
		Aggregates: []sparql.Aggregate{{Kind: sparql.AggCountDistinct, Arg: sparql.StarExpr{}, Output: c.Value}},
		Modifiers:  sparql.SolutionModifiers{GroupBy: []sparql.Variable{pr.Value}},
	}

	tree, err := p.CreateExecutionTree(newTestContext(), q)
	require.NoError(t, err)

	_, ok := tree.(*plan.CountAvailablePredicates)
	assert.False(t, ok, "COUNT(DISTINCT ...) must not trigger the pattern trick")
}

func TestCreateExecutionTree_UnboundSelectVariableErrors(t *testing.T) {
	p := NewTestPlanner(fixtureStats{})
	x, y := sparql.NewVariable("x"), sparql.NewVariable("y")
	q := sparql.ParsedQuery{
		Kind:       sparql.QuerySelect,
		SelectVars: []sparql.Variable{x.Value, sparql.NewVariable("nope").Value},
		Where: bgp(sparql.Triple{
			Subject:   x,
			Predicate: path.Iri("http://example/knows"),
			Object:    y,
		}),
	}

	_, err := p.CreateExecutionTree(newTestContext(), q)
	require.Error(t, err)
}

// failingCardinalityStats reports a Cardinality failure for every call,
// exercising the seed builder's index-capability error path.
type failingCardinalityStats struct{ fixtureStats }

func (failingCardinalityStats) Cardinality(ctx context.Context, perm cost.Permutation, bound cost.BoundPositions) (uint64, error) {
	return 0, errors.New("index driver unavailable")
}

func TestCreateExecutionTree_IndexCapabilityErrorIsClassifiedNotCancelled(t *testing.T) {
	p := NewTestPlanner(failingCardinalityStats{})
	x, y := sparql.NewVariable("x"), sparql.NewVariable("y")
	q := sparql.ParsedQuery{
		Kind:       sparql.QuerySelect,
		SelectVars: []sparql.Variable{x.Value, y.Value},
		Where: bgp(sparql.Triple{
			Subject:   x,
			Predicate: path.Iri("http://example/knows"),
			Object:    y,
		}),
	}

	_, err := p.CreateExecutionTree(newTestContext(), q)
	require.Error(t, err)
	assert.True(t, ErrIndexCapability.Is(err), "expected ErrIndexCapability, got %v", err)
	assert.False(t, ErrCancelled.Is(err), "index capability failure must not be misclassified as cancellation")
}
