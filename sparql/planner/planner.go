// Package planner wires the property-path expander, the triple-graph
// builder, the seed builder, the join candidate generator, and the DP
// enumerator (sparql/path, sparql/memo) into the single entry point a
// caller actually uses: QueryPlanner.CreateExecutionTree. It also owns the
// planner's ambient concerns — errors, logging/tracing, configuration —
// and the post-processing row builder (GROUP BY/HAVING/ORDER BY/DISTINCT,
// the pattern-trick rewrite) from spec.md §4.6.
package planner

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
	"github.com/jeremiahpslewis/qlever-planner/sparql/cost"
	"github.com/jeremiahpslewis/qlever-planner/sparql/memo"
	"github.com/jeremiahpslewis/qlever-planner/sparql/plan"
)

// QueryPlanner is the top-level planner, parameterized over a
// StatisticsSource capability and the Options controlling rewrite and
// tie-break behavior (spec.md §6).
type QueryPlanner struct {
	Stats   cost.StatisticsSource
	Options Options
}

// New builds a QueryPlanner with the given statistics source and options.
func New(stats cost.StatisticsSource, opts Options) *QueryPlanner {
	return &QueryPlanner{Stats: stats, Options: opts}
}

// NewTestPlanner forces deterministic tie-break on, matching the original
// QueryPlanner's isInTestMode() bias (SPEC_FULL.md "Supplemented features"
// #1): test fixtures need a single reproducible plan out of an otherwise
// equal-cost set.
func NewTestPlanner(stats cost.StatisticsSource) *QueryPlanner {
	opts := DefaultOptions()
	opts.DeterministicTieBreak = true
	return &QueryPlanner{Stats: stats, Options: opts}
}

// CreateExecutionTree plans q end to end: property-path expansion, bottom-up
// DP join ordering, solution-modifier post-processing, and the
// pattern-trick rewrite (spec.md §4.2-§4.6).
func (p *QueryPlanner) CreateExecutionTree(ctx *Context, q sparql.ParsedQuery) (plan.Node, error) {
	span := ctx.StartSpan("query_planner.create_execution_tree")
	defer span.Finish()

	textLimit, err := ParseTextLimit(q.TextLimit)
	if err != nil {
		return nil, err
	}

	where, err := p.planGraphPattern(ctx, sparql.NewExpander(), q.Where, textLimit)
	if err != nil {
		return nil, err
	}

	return p.postProcess(ctx, where, q)
}

// planGraphPattern plans one GraphPattern: it flattens the BGP elements
// (after property-path expansion) into a single triple list for the DP
// enumerator, collects FILTER clauses for placement during DP, and folds
// every other element (OPTIONAL, UNION, MINUS, VALUES) in as a sequential
// combinator after the BGP's own join order has been chosen — mirroring
// how the original QueryPlanner treats a GraphPattern as a BGP plus an
// ordered list of "optional" and "non-optional" children combined
// left-to-right (DESIGN.md "Open-question decisions" #3). expander is shared
// by every nested graph pattern of one query, so fresh variables never repeat.
func (p *QueryPlanner) planGraphPattern(ctx *Context, expander *sparql.Expander, gp sparql.GraphPattern, textLimit uint32) (memo.SubtreePlan, error) {
	var mainTriples []sparql.Triple
	var filters []sparql.Filter
	var combinators []sparql.GraphPatternElement

	// classify routes an already property-path-expanded element list (no
	// further expansion needed: expand() only ever emits BGP triples whose
	// predicate is a bare IRI or a transitive closure, Filter, and Union
	// elements) into the three buckets above.
	classify := func(elements []sparql.GraphPatternElement) {
		for _, el := range elements {
			switch el.Op {
			case sparql.OpBasicGraphPattern:
				mainTriples = append(mainTriples, el.Triples...)
			case sparql.OpFilter:
				filters = append(filters, el.Filter)
			default:
				combinators = append(combinators, el)
			}
		}
	}

	var flattenErr error
	for _, el := range gp.Elements {
		switch el.Op {
		case sparql.OpBasicGraphPattern:
			expanded, err := expander.ExpandBasicGraphPattern(el.Triples)
			if err != nil {
				flattenErr = err
			} else {
				classify(expanded.Elements)
			}
		case sparql.OpFilter:
			filters = append(filters, el.Filter)
		default:
			combinators = append(combinators, el)
		}
		if flattenErr != nil {
			break
		}
	}
	if flattenErr != nil {
		return memo.SubtreePlan{}, ErrStructural.New(flattenErr.Error())
	}

	base, err := p.planBasicGraphPattern(ctx, mainTriples, filters, textLimit)
	if err != nil {
		return memo.SubtreePlan{}, err
	}

	// Combinators rebuild base without its filter bookkeeping; the filters
	// already applied inside the BGP plan are restored below.
	applied := base.IncludedFilters
	for _, el := range combinators {
		switch el.Op {
		case sparql.OpOptional:
			sub, err := p.planGraphPattern(ctx, expander, *el.Child, textLimit)
			if err != nil {
				return memo.SubtreePlan{}, err
			}
			base = foldOptional(base, sub)

		case sparql.OpMinus:
			sub, err := p.planGraphPattern(ctx, expander, *el.Child, textLimit)
			if err != nil {
				return memo.SubtreePlan{}, err
			}
			base = foldMinus(base, sub)

		case sparql.OpUnion:
			if len(el.Alternatives) < 2 {
				return memo.SubtreePlan{}, ErrStructural.New("a union element must have at least two branches")
			}
			// N branches fold into a left-leaning tree of binary Unions.
			union, err := p.planGraphPattern(ctx, expander, el.Alternatives[0], textLimit)
			if err != nil {
				return memo.SubtreePlan{}, err
			}
			for _, alt := range el.Alternatives[1:] {
				right, err := p.planGraphPattern(ctx, expander, alt, textLimit)
				if err != nil {
					return memo.SubtreePlan{}, err
				}
				union = foldUnion(union, right)
			}
			base = combinePlans(base, union)

		case sparql.OpValues:
			vars := map[sparql.Variable]int{}
			for i, v := range el.ValuesVars {
				vars[v] = i
			}
			values := wrapLeaf(plan.NewValues(vars, el.ValuesRows), nil)
			base = combinePlans(base, values)

		case sparql.OpBind, sparql.OpSubquery:
			// Neither BIND nor a nested Subquery has a corresponding
			// operator in spec.md §6's closed node-kind list; planning
			// one is out of this planner's scope.
			return memo.SubtreePlan{}, ErrStructural.New(fmt.Sprintf("unsupported graph pattern element: %v", el.Op))

		default:
			return memo.SubtreePlan{}, ErrStructural.New(fmt.Sprintf("unexpected graph pattern element after flattening: %v", el.Op))
		}
	}

	// Re-run filter placement once combinators have been folded in, for a
	// filter whose free variables only become bound through an
	// OPTIONAL/UNION/VALUES combinator rather than inside the BGP itself.
	base.IncludedFilters = applied
	return memo.ApplyFiltersIfPossible(base, filters), nil
}

// planBasicGraphPattern runs the TripleGraph builder and DP enumerator over
// one flattened triple list, then stitches together any disconnected
// components with an implicit cross product/join (SPEC_FULL.md
// "Supplemented features" #3).
func (p *QueryPlanner) planBasicGraphPattern(ctx *Context, triples []sparql.Triple, filters []sparql.Filter, textLimit uint32) (memo.SubtreePlan, error) {
	if len(triples) == 0 {
		return wrapLeaf(plan.NewValues(map[sparql.Variable]int{}, [][]sparql.Term{{}}), nil), nil
	}

	contextVars := map[sparql.Variable]bool{}
	for _, t := range triples {
		if (t.IsWordTriple() || t.IsEntityTriple()) && t.Subject.IsVariable() {
			contextVars[t.Subject.Value] = true
		}
	}

	tg, err := memo.Build(triples, contextVars)
	if err != nil {
		return memo.SubtreePlan{}, ErrStructural.New(err.Error())
	}

	m := memo.NewMemo(tg, filters, p.Options.DeterministicTieBreak, ctx.Logger)
	if err := m.Build(ctx, p.Stats, textLimit); err != nil {
		return memo.SubtreePlan{}, wrapDPError(err)
	}

	components := tg.ConnectedComponents()
	if len(components) == 0 {
		return memo.SubtreePlan{}, ErrInternal.New("triple graph produced no connected components for a non-empty basic graph pattern")
	}

	var result memo.SubtreePlan
	first := true
	for _, comp := range components {
		best, ok := bestInGroup(m, comp)
		if !ok {
			return memo.SubtreePlan{}, ErrInternal.New(fmt.Sprintf("dynamic programming table has no plan for node set %s", comp))
		}
		if first {
			result = best
			first = false
			continue
		}
		applied := result.IncludedFilters.Union(best.IncludedFilters)
		result = combinePlans(result, best)
		result.IncludedFilters = applied
	}

	return memo.ApplyFiltersIfPossible(result, filters), nil
}

func bestInGroup(m *memo.Memo, nodes memo.Set) (memo.SubtreePlan, bool) {
	plans := m.Group(nodes)
	if len(plans) == 0 {
		return memo.SubtreePlan{}, false
	}
	best := plans[0]
	for _, cand := range plans[1:] {
		if cand.CostEstimate() < best.CostEstimate() {
			best = cand
		}
	}
	return best, true
}

// wrapDPError classifies an error returned by Memo.Build into one of the
// spec.md §7 error kinds. Build's own cancellation path wraps ctx.Err()
// (context.Canceled or context.DeadlineExceeded) directly, and the seed
// builder wraps its failures in memo.ErrStructuralShape or
// memo.ErrStatisticsCapability (memo cannot depend on this package's
// *errors.Kind values, since planner depends on memo), so errors.Is
// against those sentinels recovers the right kind here.
func wrapDPError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCancelled.Wrap(err, err.Error())
	case errors.Is(err, memo.ErrStructuralShape):
		return ErrStructural.Wrap(err, err.Error())
	case errors.Is(err, memo.ErrStatisticsCapability):
		return ErrIndexCapability.Wrap(err, err.Error())
	default:
		return ErrInternal.Wrap(errors.Wrap(err, "dynamic programming enumeration failed"), err.Error())
	}
}

// checkVariablesBound collects every SELECT/GROUP BY variable the final
// tree fails to bind into a single aggregate error (spec.md §7), so a
// caller sees every offending variable in one pass rather than failing on
// the first.
func checkVariablesBound(tree plan.Node, q sparql.ParsedQuery) error {
	vars := tree.VariableColumns()
	var result *multierror.Error
	check := func(v sparql.Variable) {
		if _, ok := vars[v]; !ok {
			result = multierror.Append(result, ErrUnboundVariable.New(v))
		}
	}
	for _, v := range q.SelectVars {
		check(v)
	}
	for _, v := range q.Modifiers.GroupBy {
		check(v)
	}
	return result.ErrorOrNil()
}
