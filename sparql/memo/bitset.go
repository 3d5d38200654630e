// Package memo implements the TripleGraph builder (spec.md §4.1), the
// SubtreePlan/DP table (spec.md §3, §4.5), the seed builder (§4.3), and the
// join candidate generator (§4.4) — the core bottom-up dynamic-programming
// enumerator of the query planner. Node and filter membership is tracked
// with fixed 64-bit bitsets, grounded on the teacher's sql/memo vertexSet
// (see join_order_builder_test.go), since spec.md §7/§9 fixes the same
// 64-entry-per-BGP limit the teacher's memo package uses for join inputs.
package memo

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxNodes is the hard 64-node-per-BGP limit from spec.md §7/§9. A BGP (or
// text-clique-collapsed TripleGraph) with more nodes must be rejected with
// a StructuralError rather than silently truncated.
const MaxNodes = 64

// Set is a fixed 64-bit bitset over triple-graph node ids or filter
// indices, mirroring the teacher's vertexSet.
type Set uint64

func NewSet(ids ...int) Set {
	var s Set
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

func (s Set) Add(id int) Set         { return s | (1 << uint(id)) }
func (s Set) Contains(id int) bool   { return s&(1<<uint(id)) != 0 }
func (s Set) Union(o Set) Set        { return s | o }
func (s Set) Intersect(o Set) Set    { return s & o }
func (s Set) Minus(o Set) Set        { return s &^ o }
func (s Set) IsEmpty() bool          { return s == 0 }
func (s Set) Disjoint(o Set) bool    { return s&o == 0 }
func (s Set) Count() int             { return bits.OnesCount64(uint64(s)) }
func (s Set) IsSubsetOf(o Set) bool  { return s&o == s }

// Bits returns the set's member ids in ascending order.
func (s Set) Bits() []int {
	out := make([]int, 0, s.Count())
	for i := 0; i < MaxNodes; i++ {
		if s.Contains(i) {
			out = append(out, i)
		}
	}
	return out
}

func (s Set) String() string {
	var b strings.Builder
	for i := MaxNodes - 1; i >= 0; i-- {
		if s.Contains(i) {
			b.WriteByte('1')
		} else if i < 64 {
			b.WriteByte('0')
		}
	}
	str := b.String()
	// Trim to the highest set bit (or a single "0") for compact display,
	// matching the teacher's vertexSet.String() convention.
	trimmed := strings.TrimLeft(str, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// CheckNodeCount enforces MaxNodes, returning a structural error
// description (wrapped into ErrStructural by the planner package) when a
// BGP exceeds the bitset width.
func CheckNodeCount(n int) error {
	if n > MaxNodes {
		return fmt.Errorf("basic graph pattern has %d nodes, exceeding the %d-node planner limit", n, MaxNodes)
	}
	return nil
}
