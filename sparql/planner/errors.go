package planner

import errors "gopkg.in/src-d/go-errors.v1"

// The five error kinds from spec.md §7, declared once as *errors.Kind
// values the same way the teacher declares sql.ErrXxx sentinel kinds.
var (
	// ErrStructural reports a query shape the planner cannot realize: an
	// invalid property path, a BGP exceeding the node-count limit, a
	// disconnected component with no implicit-cross-product route, etc.
	ErrStructural = errors.NewKind("structural error: %s")

	// ErrUnboundVariable reports a SELECT/GROUP BY/ORDER BY variable that
	// no sub-plan ever binds.
	ErrUnboundVariable = errors.NewKind("unbound variable: %s")

	// ErrIndexCapability wraps a failure surfaced by the StatisticsSource
	// capability (cardinality, multiplicity, text, or predicate stats).
	ErrIndexCapability = errors.NewKind("index capability error: %s")

	// ErrCancelled reports that planning was aborted via context
	// cancellation between DP rows (spec.md §5).
	ErrCancelled = errors.NewKind("planning cancelled: %s")

	// ErrInternal reports a planner invariant violation that indicates a
	// bug in the planner itself, not a malformed query.
	ErrInternal = errors.NewKind("internal planner error: %s")
)
