package sparql

import (
	"fmt"
	"sync/atomic"

	"github.com/jeremiahpslewis/qlever-planner/sparql/path"
)

// freshVarPrefix is reserved and never produced by a conforming parser, so
// fresh variables generated here can never collide with a user variable
// (spec.md §4.2).
const freshVarPrefix = "?_qp_"

// Expander rewrites triples whose predicate is a property-path expression
// into an equivalent primitive graph pattern (spec.md §4.2). It owns a
// monotonically increasing counter for fresh variables, shared by every
// triple it expands; the planner uses one Expander per planning call —
// mirroring the original QueryPlanner's
// generateUniqueVarName/_internalVarCount.
type Expander struct {
	counter uint64
}

func NewExpander() *Expander { return &Expander{} }

func (e *Expander) fresh() Term {
	n := atomic.AddUint64(&e.counter, 1)
	return Term{Kind: TermVariable, Value: fmt.Sprintf("%s%d", freshVarPrefix, n)}
}

// ExpandTriple rewrites a single triple per the table in spec.md §4.2. The
// result is a GraphPattern equivalent to the path's declarative semantics;
// for a bare Iri predicate it is a single BasicGraphPattern with the one
// original triple, so callers can always expand-then-merge uniformly.
func (e *Expander) ExpandTriple(t Triple) (GraphPattern, error) {
	if err := t.Predicate.Validate(); err != nil {
		return GraphPattern{}, fmt.Errorf("structural error expanding %v: %w", t, err)
	}
	return e.expand(t.Subject, t.Predicate, t.Object, t.At)
}

func (e *Expander) expand(l Term, p path.Path, r Term, at Pos) (GraphPattern, error) {
	switch p.Op {
	case path.OpIRI:
		return singleTriple(l, p.IRI, r, at), nil

	case path.OpSequence:
		mid := e.fresh()
		left, err := e.expand(l, *p.Left, mid, at)
		if err != nil {
			return GraphPattern{}, err
		}
		right, err := e.expand(mid, *p.Right, r, at)
		if err != nil {
			return GraphPattern{}, err
		}
		return concat(left, right), nil

	case path.OpAlternative:
		left, err := e.expand(l, *p.Left, r, at)
		if err != nil {
			return GraphPattern{}, err
		}
		right, err := e.expand(l, *p.Right, r, at)
		if err != nil {
			return GraphPattern{}, err
		}
		return uniteGraphPatterns([]GraphPattern{left, right}), nil

	case path.OpInverse:
		return e.expand(r, *p.Left, l, at)

	case path.OpTransitiveClosure:
		return e.expandTransitive(l, p, r, at)

	default:
		return GraphPattern{}, fmt.Errorf("structural error: unknown property path operation %v", p.Op)
	}
}

// expandTransitive handles TransitiveClosure(a, minHops, maxHops). Rather
// than fully unrolling bounded repetition (which the DP enumerator would
// then have to re-discover is a chain), the rewrite keeps the transitive
// operator as a single primitive GraphPattern element wrapping the
// sub-path's expansion, deferring hop-bound enforcement to the executor's
// TransitivePath operator (spec.md §6). When minHops is 0, an explicit
// identity alternative (l = r) is unioned in, since a plain
// TransitivePath([0,...]) cannot itself express "the empty path".
func (e *Expander) expandTransitive(l Term, p path.Path, r Term, at Pos) (GraphPattern, error) {
	inner, err := e.expand(l, *p.Left, r, at)
	if err != nil {
		return GraphPattern{}, err
	}

	transitive := GraphPattern{Elements: []GraphPatternElement{{
		Op:      OpBasicGraphPattern,
		Triples: []Triple{{Subject: l, Predicate: p, Object: r, At: at}},
	}}}
	_ = inner // the primitive sub-path is encoded on the TransitivePath node itself, not unrolled here.

	if p.MinHops == 0 {
		identity := GraphPattern{Elements: []GraphPatternElement{{
			Op: OpFilter,
			Filter: Filter{Expr: BinaryExpr{Op: "=", Left: VarOrLiteral(l), Right: VarOrLiteral(r)}, At: at},
		}}}
		return uniteGraphPatterns([]GraphPattern{transitive, identity}), nil
	}
	return transitive, nil
}

// VarOrLiteral turns a Term into an Expr for use inside a synthesized
// filter (the l=r identity branch of a zero-or-more transitive path).
func VarOrLiteral(t Term) Expr {
	if t.IsVariable() {
		return VarExpr{Name: t.Value}
	}
	return Literal{Text: t.Value}
}

func singleTriple(l Term, iri string, r Term, at Pos) GraphPattern {
	return GraphPattern{Elements: []GraphPatternElement{{
		Op:      OpBasicGraphPattern,
		Triples: []Triple{{Subject: l, Predicate: path.Iri(iri), Object: r, At: at}},
	}}}
}

// concat merges two BasicGraphPattern-only patterns into one, keeping
// triples from non-BGP elements (e.g. a UNION produced by a nested
// Alternative) as separate elements in sequence.
func concat(a, b GraphPattern) GraphPattern {
	if len(a.Elements) == 1 && a.Elements[0].Op == OpBasicGraphPattern &&
		len(b.Elements) == 1 && b.Elements[0].Op == OpBasicGraphPattern {
		return GraphPattern{Elements: []GraphPatternElement{{
			Op:      OpBasicGraphPattern,
			Triples: append(append([]Triple{}, a.Elements[0].Triples...), b.Elements[0].Triples...),
		}}}
	}
	return GraphPattern{Elements: append(append([]GraphPatternElement{}, a.Elements...), b.Elements...)}
}

// uniteGraphPatterns builds a left-leaning tree of binary UNIONs out of N
// alternatives, supplementing spec.md §4.2's two-operand Alternative rule
// for N-ary SPARQL UNION blocks — grounded on the original QueryPlanner's
// uniteGraphPatterns (see SPEC_FULL.md "Supplemented features" #2).
func uniteGraphPatterns(patterns []GraphPattern) GraphPattern {
	if len(patterns) == 0 {
		return GraphPattern{}
	}
	if len(patterns) == 1 {
		return patterns[0]
	}
	acc := patterns[0]
	for _, p := range patterns[1:] {
		acc = GraphPattern{Elements: []GraphPatternElement{{
			Op:           OpUnion,
			Alternatives: []GraphPattern{acc, p},
		}}}
	}
	return acc
}

// ExpandBasicGraphPattern expands every triple in a BGP, merging the
// results into one GraphPattern. Fresh variables introduced for Sequence
// midpoints come from the Expander's shared counter, so they never repeat
// across the BGPs one Expander expands.
func (e *Expander) ExpandBasicGraphPattern(triples []Triple) (GraphPattern, error) {
	var acc GraphPattern
	first := true
	for _, t := range triples {
		expanded, err := e.ExpandTriple(t)
		if err != nil {
			return GraphPattern{}, err
		}
		if first {
			acc = expanded
			first = false
			continue
		}
		acc = concat(acc, expanded)
	}
	return acc, nil
}
