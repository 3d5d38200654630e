package memo

import (
	"context"
	"fmt"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
	"github.com/jeremiahpslewis/qlever-planner/sparql/path"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

// position is one of the three triple columns, used only to decide which
// of the six permutations a given bound/free assignment maps to.
type position int

const (
	posS position = iota
	posP
	posO
)

var permOrder = map[cost.Permutation][3]position{
	cost.SPO: {posS, posP, posO},
	cost.SOP: {posS, posO, posP},
	cost.PSO: {posP, posS, posO},
	cost.POS: {posP, posO, posS},
	cost.OSP: {posO, posS, posP},
	cost.OPS: {posO, posP, posS},
}

// permutationFor finds the (or a) permutation whose ordering's suffix
// equals freeOrder, in order, with the remaining prefix positions bound.
// This collapses permutations that differ only in the (operationally
// irrelevant, since all-constant) ordering of bound positions, so that a
// single bound pair yields exactly one candidate scan rather than two
// (spec.md §4.3: "exactly one position is a variable: a single-direction
// index scan").
func permutationFor(freeOrder []position) cost.Permutation {
	for _, p := range []cost.Permutation{cost.SPO, cost.SOP, cost.PSO, cost.POS, cost.OSP, cost.OPS} {
		order := permOrder[p]
		if suffixMatches(order, freeOrder) {
			return p
		}
	}
	return cost.SPO
}

func suffixMatches(order [3]position, free []position) bool {
	if len(free) == 0 {
		return true
	}
	start := 3 - len(free)
	for i, f := range free {
		if order[start+i] != f {
			return false
		}
	}
	return true
}

func permutations(elems []position) [][]position {
	if len(elems) <= 1 {
		return [][]position{append([]position{}, elems...)}
	}
	var out [][]position
	for i := range elems {
		rest := make([]position, 0, len(elems)-1)
		rest = append(rest, elems[:i]...)
		rest = append(rest, elems[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]position{elems[i]}, p...))
		}
	}
	return out
}

// SeedsForNode enumerates candidate leaf plans for one triple-graph node
// (spec.md §4.3).
func SeedsForNode(ctx context.Context, stats cost.StatisticsSource, textLimit uint32, n Node) ([]SubtreePlan, error) {
	if n.IsText {
		p, err := seedTextLeaf(ctx, stats, textLimit, n)
		if err != nil {
			return nil, err
		}
		return []SubtreePlan{p}, nil
	}
	if n.Triple.Predicate.Op == path.OpTransitiveClosure {
		p, err := seedTransitive(ctx, stats, n)
		if err != nil {
			return nil, err
		}
		return []SubtreePlan{p}, nil
	}
	return seedTriple(ctx, stats, n)
}

// columnMultiplicities queries stats.Multiplicity for every free column of
// a scan over perm (spec.md §3's `multiplicities[col]`, §4.5's join-size
// formula), keyed by the variable bound to that column rather than by
// output column index, since callers assign output columns differently
// (seedTriple keeps freeOrder's own numbering; seedTransitive remaps
// subject/object onto its own TransitivePath output schema).
func columnMultiplicities(ctx context.Context, stats cost.StatisticsSource, perm cost.Permutation, terms [3]sparql.Term, freeOrder []position) (map[sparql.Variable]float64, error) {
	full := permOrder[perm]
	labelToIdx := map[position]int{posS: 0, posP: 1, posO: 2}
	out := make(map[sparql.Variable]float64, len(freeOrder))
	for _, lbl := range freeOrder {
		slot := -1
		for i, l := range full {
			if l == lbl {
				slot = i
				break
			}
		}
		m, err := stats.Multiplicity(ctx, perm, slot)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStatisticsCapability, err)
		}
		out[terms[labelToIdx[lbl]].Value] = m
	}
	return out, nil
}

func seedTriple(ctx context.Context, stats cost.StatisticsSource, n Node) ([]SubtreePlan, error) {
	t := n.Triple
	if t.Predicate.Op != path.OpIRI {
		return nil, fmt.Errorf("%w: seed builder requires a resolved IRI predicate, got %v", ErrStructuralShape, t.Predicate.Op)
	}

	terms := [3]sparql.Term{t.Subject, {Kind: sparql.TermIRI, Value: t.Predicate.IRI}, t.Object}
	var free []position
	for i, pos := range []position{posS, posP, posO} {
		if terms[i].IsVariable() {
			free = append(free, pos)
		}
	}

	orders := permutations(free)
	plans := make([]SubtreePlan, 0, len(orders))
	for _, order := range orders {
		perm := permutationFor(order)
		fixed, boundPos := fixedPositions(terms, order)
		vars := varColumns(terms, order)

		card, err := stats.Cardinality(ctx, perm, boundPos)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStatisticsCapability, err)
		}

		varMult, err := columnMultiplicities(ctx, stats, perm, terms, order)
		if err != nil {
			return nil, err
		}
		mult := make(map[int]float64, len(vars))
		for v, c := range vars {
			mult[c] = varMult[v]
		}

		scan := plan.NewIndexScan(perm, fixed, vars, card)
		plans = append(plans, SubtreePlan{
			Tree:           scan,
			IncludedNodes:  NewSet(n.ID),
			Kind:           Basic,
			Multiplicities: mult,
		})
	}
	return plans, nil
}

func fixedPositions(terms [3]sparql.Term, freeOrder []position) ([]plan.FixedPosition, cost.BoundPositions) {
	freeSet := map[position]bool{}
	for _, p := range freeOrder {
		freeSet[p] = true
	}
	var fixed []plan.FixedPosition
	var bound cost.BoundPositions
	labels := [3]position{posS, posP, posO}
	for i, lbl := range labels {
		if freeSet[lbl] {
			continue
		}
		fixed = append(fixed, plan.FixedPosition{Column: i, Value: terms[i].Value})
		bound.Bound[i] = true
		bound.Values[i] = terms[i].Value
	}
	return fixed, bound
}

func varColumns(terms [3]sparql.Term, freeOrder []position) map[sparql.Variable]int {
	vars := map[sparql.Variable]int{}
	labelToIdx := map[position]int{posS: 0, posP: 1, posO: 2}
	for col, lbl := range freeOrder {
		idx := labelToIdx[lbl]
		vars[terms[idx].Value] = col
	}
	return vars
}

func seedTextLeaf(ctx context.Context, stats cost.StatisticsSource, textLimit uint32, n Node) (SubtreePlan, error) {
	matches, err := stats.TextMatches(ctx, n.WordPart)
	if err != nil {
		return SubtreePlan{}, fmt.Errorf("%w: %w", ErrStatisticsCapability, err)
	}
	vars := map[sparql.Variable]int{n.CVar: 0}
	size := matches * uint64(textLimit)
	if size == 0 {
		size = 1
	}
	leaf := plan.NewTextLeaf(n.CVar, n.WordPart, textLimit, vars, size)
	return SubtreePlan{Tree: leaf, IncludedNodes: NewSet(n.ID), Kind: Basic}, nil
}

func seedTransitive(ctx context.Context, stats cost.StatisticsSource, n Node) (SubtreePlan, error) {
	tp := n.Triple.Predicate
	inner := *tp.Left
	if inner.Op != path.OpIRI {
		return SubtreePlan{}, fmt.Errorf("%w: transitive closure over a non-IRI sub-path is not supported", ErrStructuralShape)
	}

	terms := [3]sparql.Term{n.Triple.Subject, {Kind: sparql.TermIRI, Value: inner.IRI}, n.Triple.Object}
	var free []position
	for i, pos := range []position{posS, posP, posO} {
		if terms[i].IsVariable() {
			free = append(free, pos)
		}
	}
	perm := permutationFor(free)
	fixed, bound := fixedPositions(terms, free)
	vars := varColumns(terms, free)

	card, err := stats.Cardinality(ctx, perm, bound)
	if err != nil {
		return SubtreePlan{}, fmt.Errorf("%w: %w", ErrStatisticsCapability, err)
	}
	varMult, err := columnMultiplicities(ctx, stats, perm, terms, free)
	if err != nil {
		return SubtreePlan{}, err
	}
	scan := plan.NewIndexScan(perm, fixed, vars, card)

	outVars := map[sparql.Variable]int{}
	if n.Triple.Subject.IsVariable() {
		outVars[n.Triple.Subject.Value] = 0
	}
	if n.Triple.Object.IsVariable() {
		if len(outVars) == 0 {
			outVars[n.Triple.Object.Value] = 0
		} else {
			outVars[n.Triple.Object.Value] = 1
		}
	}
	if len(outVars) == 0 {
		outVars = vars
	}

	mult := make(map[int]float64, len(outVars))
	for v, c := range outVars {
		if m, ok := varMult[v]; ok {
			mult[c] = m
		}
	}

	closure := plan.NewTransitivePath(scan, tp.MinHops, tp.MaxHops, outVars, card)
	return SubtreePlan{Tree: closure, IncludedNodes: NewSet(n.ID), Kind: Basic, Multiplicities: mult}, nil
}
