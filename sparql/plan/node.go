// Package plan holds the operator-tree node types the planner produces as
// its final output (spec.md §6): IndexScan, Join, OptionalJoin, Minus,
// Filter, Sort, Distinct, GroupBy, OrderBy, Union, TransitivePath,
// TextLeaf, CountAvailablePredicates, Values. Each is a small, closed,
// immutable-after-construction value, matching the teacher's convention of
// modeling operator trees as structs implementing a shared interface
// rather than a deep class hierarchy.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
)

// Node is the interface every operator-tree node satisfies. Nodes are
// immutable after construction (spec.md §5): no setter ever mutates a
// published Node.
type Node interface {
	// VariableColumns maps every variable the node's output schema binds
	// to its column index; variableColumns is a bijection onto
	// [0, Arity()) (spec.md §3 invariant).
	VariableColumns() map[sparql.Variable]int
	// Arity is the number of output columns.
	Arity() int
	SizeEstimate() uint64
	CostEstimate() uint64
	// SortedOnColumns lists the column indices the output is sorted on,
	// in sort-key order. Empty means "no known sort order".
	SortedOnColumns() []int
	// CacheKey is a stable identity string for this node's semantic shape,
	// used by the DP pruning key and by deterministic tie-break (spec.md
	// §4.5, §8). It is produced by hashing semantically relevant fields,
	// not raw struct/pointer identity.
	CacheKey() string
	// Children returns the node's operator-tree children, for traversal
	// and cost aggregation.
	Children() []Node
	// String renders a short one-line description, used in debug dumps.
	String() string
}

// base implements the cached-estimate bookkeeping shared by every node
// type; concrete node types embed it and fill it in at construction time.
type base struct {
	vars     map[sparql.Variable]int
	size     uint64
	costEst  uint64
	sortedOn []int
	kind     string
	fields   any // passed to hashstructure.Hash for CacheKey
}

func (b *base) VariableColumns() map[sparql.Variable]int { return b.vars }
func (b *base) Arity() int                                { return len(b.vars) }
func (b *base) SizeEstimate() uint64                       { return b.size }
func (b *base) CostEstimate() uint64                       { return b.costEst }
func (b *base) SortedOnColumns() []int                     { return b.sortedOn }

func (b *base) CacheKey() string {
	h, err := hashstructure.Hash(struct {
		Kind   string
		Fields any
	}{b.kind, b.fields}, nil)
	if err != nil {
		// hashstructure only fails on unsupported field kinds (channels,
		// funcs); every node's fields payload is built from this package's
		// own value types, so this indicates a programming error.
		panic(fmt.Sprintf("plan: cache key hash failed for %s: %v", b.kind, err))
	}
	return fmt.Sprintf("%s#%x", b.kind, h)
}

// sortedVars renders a node's VariableColumns map in column order, a small
// helper used by every node's String() method for stable, readable dumps.
func sortedVars(vars map[sparql.Variable]int) []string {
	type pair struct {
		name string
		col  int
	}
	pairs := make([]pair, 0, len(vars))
	for k, v := range vars {
		pairs = append(pairs, pair{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].col < pairs[j].col })
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.name
	}
	return out
}

func describeVars(vars map[sparql.Variable]int) string {
	return strings.Join(sortedVars(vars), ",")
}
