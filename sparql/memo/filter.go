package memo

import (
	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

// ApplyFiltersIfPossible wraps p's tree in a Filter node for every filter in
// filters whose free variables are all bound by p and which is not already
// recorded in p.IncludedFilters (spec.md §4.5/§4.6: a filter is applied at
// the earliest plan where it becomes evaluable, never postponed, never
// applied twice).
func ApplyFiltersIfPossible(p SubtreePlan, filters []sparql.Filter) SubtreePlan {
	tree := p.Tree
	included := p.IncludedFilters
	vars := tree.VariableColumns()

	for i, f := range filters {
		if included.Contains(i) {
			continue
		}
		if !allBound(f.FreeVariables(), vars) {
			continue
		}
		tree = plan.NewFilter(tree, f.Expr)
		included = included.Add(i)
	}

	// A Filter keeps its child's schema, so cached multiplicities carry over.
	return SubtreePlan{Tree: tree, IncludedNodes: p.IncludedNodes, IncludedFilters: included, Kind: p.Kind, Multiplicities: p.Multiplicities}
}

func allBound(freeVars []sparql.Variable, vars map[sparql.Variable]int) bool {
	for _, v := range freeVars {
		if _, ok := vars[v]; !ok {
			return false
		}
	}
	return true
}

// PickFilters returns the indices of filters whose free variables are all
// contained within the given triple-graph component's variable set
// (supplemented feature, SPEC_FULL.md "Supplemented features" #3: a BGP
// with several disjoint components still needs its filters partitioned
// correctly among their independent sub-plans before the implicit cross
// product is formed).
func PickFilters(componentVars map[sparql.Variable]bool, filters []sparql.Filter) []int {
	var picked []int
	for i, f := range filters {
		ok := true
		for _, v := range f.FreeVariables() {
			if !componentVars[v] {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, i)
		}
	}
	return picked
}
