package memo

import "errors"

// ErrStructuralShape marks an error produced by the seed builder or the
// triple-graph builder reporting a malformed query shape (spec.md §7's
// StructuralError), as distinct from one surfaced by the statistics
// capability. Callers classify an error returned from this package with
// errors.Is against this sentinel and ErrStatisticsCapability below, since
// this package has no dependency on the planner package's *errors.Kind
// values (planner depends on memo, not the reverse).
var ErrStructuralShape = errors.New("structural error")

// ErrStatisticsCapability marks an error surfaced by the StatisticsSource
// capability (cardinality, multiplicity, text, or predicate stats),
// spec.md §7's IndexCapabilityError.
var ErrStatisticsCapability = errors.New("index capability error")
