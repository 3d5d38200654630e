package sparql

import "github.com/jeremiahpslewis/qlever-planner/sparql/path"

// Triple is a single triple pattern: subject/object are Terms, predicate is
// a property path (a bare IRI is the common case, modeled as
// path.Path{Op: path.OpIRI}). See spec.md §3.
type Triple struct {
	Subject   Term
	Predicate path.Path
	Object    Term
	At        Pos
}

// Variables returns the set of distinct variables occurring in the triple,
// across subject, predicate (only meaningful when the predicate is itself a
// variable-bearing path is out of spec's scope; predicates here are always
// IRIs or path expressions over IRIs) and object.
func (t Triple) Variables() []Variable {
	var out []Variable
	seen := map[Variable]bool{}
	add := func(term Term) {
		if term.IsVariable() && !seen[term.Value] {
			seen[term.Value] = true
			out = append(out, term.Value)
		}
	}
	add(t.Subject)
	add(t.Object)
	return out
}

// IsWordTriple reports whether this triple is a ql:contains-word triple,
// used by TripleGraph's text-clique collapse (spec.md §4.1).
func (t Triple) IsWordTriple() bool {
	return t.Predicate.IsSimpleIRI() && t.Predicate.IRI == ContainsWordPredicate
}

// IsEntityTriple reports whether this triple is a ql:contains-entity
// triple.
func (t Triple) IsEntityTriple() bool {
	return t.Predicate.IsSimpleIRI() && t.Predicate.IRI == ContainsEntityPredicate
}

const (
	// ContainsWordPredicate is the ql:contains-word predicate marking the
	// subject as a text-search context variable (spec.md Glossary).
	ContainsWordPredicate = "ql:contains-word"
	// ContainsEntityPredicate is the ql:contains-entity predicate, the
	// other context-variable marker.
	ContainsEntityPredicate = "ql:contains-entity"
	// HasPredicatePredicate is the predicate the pattern trick (spec.md
	// §4.6) rewrites away.
	HasPredicatePredicate = "ql:has-predicate"
)
