package memo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
)

func TestMemo_Build_TwoTripleChainReachesFullGroup(t *testing.T) {
	tg := chainGraph(t)
	m := NewMemo(tg, nil, true, nil)

	require.NoError(t, m.Build(context.Background(), &fakeStats{}, 1))

	best, ok := m.BestPlan()
	require.True(t, ok)
	assert.Equal(t, NewSet(0, 1), best.IncludedNodes)

	vars := best.VariableColumns()
	assert.Contains(t, vars, sparql.Variable("?x"))
	assert.Contains(t, vars, sparql.Variable("?y"))
	assert.Contains(t, vars, sparql.Variable("?z"))
}

func TestMemo_Build_SeedRowPopulatesSingleNodeGroups(t *testing.T) {
	tg := chainGraph(t)
	m := NewMemo(tg, nil, false, nil)
	require.NoError(t, m.Build(context.Background(), &fakeStats{}, 1))

	assert.NotEmpty(t, m.Group(NewSet(0)))
	assert.NotEmpty(t, m.Group(NewSet(1)))
}

func TestMemo_Build_CancelledContext(t *testing.T) {
	tg := chainGraph(t)
	m := NewMemo(tg, nil, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Build(ctx, &fakeStats{}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestMemo_String_Format(t *testing.T) {
	tg := chainGraph(t)
	m := NewMemo(tg, nil, true, nil)
	require.NoError(t, m.Build(context.Background(), &fakeStats{}, 1))

	s := m.String()
	assert.True(t, strings.HasPrefix(s, "memo:\n"))
	assert.True(t, strings.Contains(s, "├── G1:") || strings.Contains(s, "└── G1:"))
}

func TestMemo_Prune_KeepsCheapestPerKey(t *testing.T) {
	m := NewMemo(&TripleGraph{}, nil, true, nil)
	cheap := scanPlan(0, map[sparql.Variable]int{"?x": 0}, 1)
	expensive := scanPlan(0, map[sparql.Variable]int{"?x": 0}, 1000)

	pruned := m.prune([]SubtreePlan{expensive, cheap})
	require.Len(t, pruned, 1)
	assert.Equal(t, cheap.CostEstimate(), pruned[0].CostEstimate())
}
