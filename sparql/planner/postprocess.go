package planner

import (
	"sort"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/memo"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

// postProcess applies the solution modifiers from spec.md §4.6 to the
// planned WHERE clause, in the fixed SPARQL evaluation order: the
// pattern-trick rewrite (a GROUP BY/COUNT special case), GROUP BY/HAVING,
// ORDER BY, then DISTINCT. LIMIT/OFFSET carry no corresponding node in
// spec.md §6's closed node-kind list — they are a row count that the
// executor applies, not a plan-shape decision — so they are left on
// q.Modifiers for the caller rather than materialized here.
func (p *QueryPlanner) postProcess(ctx *Context, where memo.SubtreePlan, q sparql.ParsedQuery) (plan.Node, error) {
	tree := where.Tree

	if tricked, ok := p.tryPatternTrick(ctx, tree, q); ok {
		tree = tricked
	} else if len(q.Modifiers.GroupBy) > 0 || len(q.Aggregates) > 0 {
		tree = applyGroupBy(tree, q)
	}

	for _, h := range q.Modifiers.Having {
		tree = plan.NewFilter(tree, h.Expr)
	}

	if len(q.Modifiers.OrderBy) > 0 {
		ordered, err := applyOrderBy(tree, q.Modifiers.OrderBy)
		if err != nil {
			return nil, err
		}
		tree = ordered
	}

	if q.Modifiers.Distinct {
		cols := projectionColumns(tree.VariableColumns(), q.SelectVars)
		if !plan.IsSortedOnPrefix(tree, cols) {
			tree = plan.NewSort(tree, cols)
		}
		tree = plan.NewDistinct(tree, cols)
	}

	if err := checkVariablesBound(tree, q); err != nil {
		return nil, err
	}

	return tree, nil
}

// applyGroupBy inserts a Sort on the grouping key columns (GroupBy assumes
// its input is grouped by adjacency, the same convention Distinct uses)
// followed by the GroupBy node itself.
func applyGroupBy(tree plan.Node, q sparql.ParsedQuery) plan.Node {
	vars := tree.VariableColumns()
	keyCols := make([]int, 0, len(q.Modifiers.GroupBy))
	for _, k := range q.Modifiers.GroupBy {
		if c, ok := vars[k]; ok {
			keyCols = append(keyCols, c)
		}
	}
	if !plan.IsSortedOnPrefix(tree, keyCols) {
		tree = plan.NewSort(tree, keyCols)
	}

	outVars := map[sparql.Variable]int{}
	for i, k := range q.Modifiers.GroupBy {
		outVars[k] = i
	}
	next := len(q.Modifiers.GroupBy)
	for _, a := range q.Aggregates {
		outVars[a.Output] = next
		next++
	}
	return plan.NewGroupBy(tree, q.Modifiers.GroupBy, q.Aggregates, outVars)
}

func applyOrderBy(tree plan.Node, orderBy []sparql.OrderKey) (plan.Node, error) {
	vars := tree.VariableColumns()
	keys := make([]plan.OrderByKey, 0, len(orderBy))
	for _, ok := range orderBy {
		col, present := vars[ok.Var]
		if !present {
			return nil, ErrUnboundVariable.New(ok.Var)
		}
		keys = append(keys, plan.OrderByKey{Column: col, Desc: ok.Desc})
	}
	return plan.NewOrderBy(tree, keys), nil
}

func projectionColumns(vars map[sparql.Variable]int, selectVars []sparql.Variable) []int {
	seen := map[int]bool{}
	cols := make([]int, 0, len(selectVars))
	for _, v := range selectVars {
		if c, ok := vars[v]; ok && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	sort.Ints(cols)
	return cols
}

// tryPatternTrick implements spec.md §4.6's pattern-trick rewrite: a query
// whose only remaining work is `?s ql:has-predicate ?p` grouped by ?p with
// a single COUNT aggregate is answered directly from the index's
// precomputed predicate statistics via CountAvailablePredicates, instead of
// a scan plus GROUP BY.
func (p *QueryPlanner) tryPatternTrick(ctx *Context, tree plan.Node, q sparql.ParsedQuery) (plan.Node, bool) {
	if !p.Options.EnablePatternTrick || q.Kind != sparql.QuerySelect {
		return nil, false
	}
	if len(q.Modifiers.GroupBy) != 1 || len(q.Aggregates) != 1 {
		return nil, false
	}
	agg := q.Aggregates[0]
	if agg.Kind != sparql.AggCount {
		// spec.md §4.6 requires a non-distinct COUNT; COUNT(DISTINCT ?p)
		// grouped by ?p is not the shape CountAvailablePredicates answers.
		return nil, false
	}
	groupVar := q.Modifiers.GroupBy[0]

	scan := findHasPredicateScan(tree)
	if scan == nil {
		return nil, false
	}
	vars := scan.VariableColumns()
	if _, ok := vars[groupVar]; !ok {
		return nil, false
	}
	var subjVar sparql.Variable
	found := false
	for v := range vars {
		if v != groupVar {
			subjVar = v
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	// The rewrite only answers COUNT(*) or COUNT(?s) where ?s is the
	// pattern's own subject; COUNT(?p) grouped by ?p (or any other
	// argument) counts something CountAvailablePredicates doesn't compute.
	switch arg := agg.Arg.(type) {
	case sparql.StarExpr:
	case sparql.VarExpr:
		if arg.Name != subjVar {
			return nil, false
		}
	default:
		return nil, false
	}

	distinctPredicates, totalRows, err := p.Stats.HasPredicateStats(ctx)
	if err != nil {
		ctx.Logger.WithError(err).Debug("pattern trick predicate stats lookup failed, falling back to generic plan")
		return nil, false
	}
	return plan.NewCountAvailablePredicates(subjVar, groupVar, agg.Output, distinctPredicates, totalRows), true
}

// findHasPredicateScan looks through single-child wrapper nodes (Filter,
// Sort) for a leaf IndexScan with only the predicate position fixed to
// ql:has-predicate — the shape a `?s ql:has-predicate ?p` triple always
// plans to before any rewrite is considered.
func findHasPredicateScan(n plan.Node) *plan.IndexScan {
	if scan, ok := n.(*plan.IndexScan); ok {
		if len(scan.Fixed) == 1 && scan.Fixed[0].Column == 1 && scan.Fixed[0].Value == sparql.HasPredicatePredicate {
			return scan
		}
		return nil
	}
	children := n.Children()
	if len(children) == 1 {
		return findHasPredicateScan(children[0])
	}
	return nil
}
