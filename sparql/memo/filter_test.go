package memo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

func TestApplyFiltersIfPossible_AppliesWhenBound(t *testing.T) {
	p := scanPlan(0, map[sparql.Variable]int{"?x": 0}, 10)
	filters := []sparql.Filter{
		{Expr: sparql.BinaryExpr{Op: ">", Left: sparql.VarExpr{Name: "?x"}, Right: sparql.Literal{Text: "5"}}},
	}

	out := ApplyFiltersIfPossible(p, filters)
	_, ok := out.Tree.(*plan.Filter)
	require.True(t, ok)
	assert.True(t, out.IncludedFilters.Contains(0))
}

func TestApplyFiltersIfPossible_SkipsUnboundVariable(t *testing.T) {
	p := scanPlan(0, map[sparql.Variable]int{"?x": 0}, 10)
	filters := []sparql.Filter{
		{Expr: sparql.BinaryExpr{Op: ">", Left: sparql.VarExpr{Name: "?y"}, Right: sparql.Literal{Text: "5"}}},
	}

	out := ApplyFiltersIfPossible(p, filters)
	assert.Equal(t, p.Tree, out.Tree)
	assert.False(t, out.IncludedFilters.Contains(0))
}

func TestApplyFiltersIfPossible_NeverAppliedTwice(t *testing.T) {
	p := scanPlan(0, map[sparql.Variable]int{"?x": 0}, 10)
	filters := []sparql.Filter{
		{Expr: sparql.BinaryExpr{Op: ">", Left: sparql.VarExpr{Name: "?x"}, Right: sparql.Literal{Text: "5"}}},
	}

	once := ApplyFiltersIfPossible(p, filters)
	twice := ApplyFiltersIfPossible(once, filters)
	assert.Equal(t, once.Tree, twice.Tree)
}

func TestPickFilters(t *testing.T) {
	componentVars := map[sparql.Variable]bool{"?x": true, "?y": true}
	filters := []sparql.Filter{
		{Expr: sparql.VarExpr{Name: "?x"}},
		{Expr: sparql.VarExpr{Name: "?z"}},
		{Expr: sparql.BinaryExpr{Op: "=", Left: sparql.VarExpr{Name: "?x"}, Right: sparql.VarExpr{Name: "?y"}}},
	}

	picked := PickFilters(componentVars, filters)
	assert.Equal(t, []int{0, 2}, picked)
}
