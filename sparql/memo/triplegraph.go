package memo

import (
	"sort"
	"strings"

	"github.com/jeremiahpslewis/qlever-planner/sparql"
)

// Node is one TripleGraph vertex: either a single source triple, or (after
// text-clique collapse) a synthesized text node carrying the clique's
// context variable and concatenated word part (spec.md §3, §4.1).
type Node struct {
	ID        int
	Triple    sparql.Triple   // zero value for a collapsed text node
	Variables []sparql.Variable
	IsText    bool
	CVar      sparql.Variable
	WordPart  string
	// SourceTriples records every triple a text node was collapsed from,
	// so the seed builder can recover word parts for the text-leaf scan.
	SourceTriples []sparql.Triple
}

// isSimilar reports whether two nodes are equal apart from id and the
// variable-set's iteration order (spec.md §4.1 isSimilar).
func (n Node) isSimilar(o Node) bool {
	if n.IsText != o.IsText || n.CVar != o.CVar || n.WordPart != o.WordPart {
		return false
	}
	if !n.IsText && !tripleEq(n.Triple, o.Triple) {
		return false
	}
	return sameVarSet(n.Variables, o.Variables)
}

func tripleEq(a, b sparql.Triple) bool {
	return a.Subject == b.Subject && a.Object == b.Object && a.Predicate.Op == b.Predicate.Op &&
		a.Predicate.IRI == b.Predicate.IRI
}

func sameVarSet(a, b []sparql.Variable) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string{}, a...)
	bs := append([]string{}, b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// TripleGraph is the node/edge graph over a basic graph pattern, keyed on
// shared variables (spec.md §3, §4.1). Adjacency is undirected: edge(u,v)
// iff u and v share at least one variable.
type TripleGraph struct {
	Nodes []Node
	adj   []Set // adj[i] = set of node ids adjacent to node i
}

func (tg *TripleGraph) Adjacent(id int) Set { return tg.adj[id] }

// Build constructs a TripleGraph from a basic graph pattern and the set of
// context variables the parsed query marks (subjects of ql:contains-word /
// ql:contains-entity triples), per spec.md §4.1's three-step algorithm.
func Build(bgp []sparql.Triple, contextVars map[sparql.Variable]bool) (*TripleGraph, error) {
	if err := CheckNodeCount(len(bgp)); err != nil {
		return nil, err
	}

	nodes := make([]Node, len(bgp))
	for i, t := range bgp {
		nodes[i] = Node{ID: i, Triple: t, Variables: t.Variables()}
	}

	tg := &TripleGraph{Nodes: nodes}
	tg.rebuildAdjacency()
	tg.collapseTextCliques(contextVars)
	if err := CheckNodeCount(len(tg.Nodes)); err != nil {
		return nil, err
	}
	return tg, nil
}

func (tg *TripleGraph) rebuildAdjacency() {
	n := len(tg.Nodes)
	adj := make([]Set, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sharesVariable(tg.Nodes[i].Variables, tg.Nodes[j].Variables) {
				adj[i] = adj[i].Add(j)
				adj[j] = adj[j].Add(i)
			}
		}
	}
	tg.adj = adj
}

func sharesVariable(a, b []sparql.Variable) bool {
	set := make(map[sparql.Variable]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}

// collapseTextCliques merges, for each context variable, the clique of
// triples whose subject is that variable into one synthesized text node
// (spec.md §4.1 step 3). After collapse no two distinct nodes share a
// context variable (the invariant spec.md §4.1 requires).
func (tg *TripleGraph) collapseTextCliques(contextVars map[sparql.Variable]bool) {
	if len(contextVars) == 0 {
		return
	}

	cliqueOf := map[int]sparql.Variable{}
	for i, n := range tg.Nodes {
		if n.Triple.Subject.IsVariable() && contextVars[n.Triple.Subject.Value] {
			cliqueOf[i] = n.Triple.Subject.Value
		}
	}
	if len(cliqueOf) == 0 {
		return
	}

	byCVar := map[sparql.Variable][]int{}
	for id, cvar := range cliqueOf {
		byCVar[cvar] = append(byCVar[cvar], id)
	}

	removed := make(map[int]bool)
	var newNodes []Node
	keptOldToNew := map[int]int{}

	// Keep every node untouched by a clique first, preserving relative
	// order, then append one synthesized node per clique.
	for i, n := range tg.Nodes {
		if _, in := cliqueOf[i]; in {
			removed[i] = true
			continue
		}
		keptOldToNew[i] = len(newNodes)
		newNodes = append(newNodes, n)
	}

	cvars := make([]sparql.Variable, 0, len(byCVar))
	for cvar := range byCVar {
		cvars = append(cvars, cvar)
	}
	sort.Strings(cvars)

	textNodeIdx := map[sparql.Variable]int{}
	for _, cvar := range cvars {
		ids := byCVar[cvar]
		sort.Ints(ids)
		var wordParts []string
		varSet := map[sparql.Variable]bool{cvar: true}
		var sourceTriples []sparql.Triple
		for _, id := range ids {
			n := tg.Nodes[id]
			sourceTriples = append(sourceTriples, n.Triple)
			if n.Triple.IsWordTriple() && n.Triple.Object.Kind == sparql.TermLiteral {
				wordParts = append(wordParts, n.Triple.Object.Value)
			}
			for _, v := range n.Variables {
				varSet[v] = true
			}
		}
		vars := make([]sparql.Variable, 0, len(varSet))
		for v := range varSet {
			vars = append(vars, v)
		}
		sort.Strings(vars)

		textNodeIdx[cvar] = len(newNodes)
		newNodes = append(newNodes, Node{
			ID:            len(newNodes),
			IsText:        true,
			CVar:          cvar,
			WordPart:      strings.Join(wordParts, " "),
			Variables:     vars,
			SourceTriples: sourceTriples,
		})
	}

	// Reassign ids to match final slice position.
	for i := range newNodes {
		newNodes[i].ID = i
	}

	tg.Nodes = newNodes
	tg.rebuildAdjacency()
}

// BFSLeaveOut returns the set of node ids reachable from start without
// passing through any node in excluded (spec.md §4.1 bfsLeaveOut).
func (tg *TripleGraph) BFSLeaveOut(start int, excluded Set) Set {
	if excluded.Contains(start) {
		return Set(0)
	}
	visited := NewSet(start)
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range tg.adj[cur].Bits() {
			if excluded.Contains(nb) || visited.Contains(nb) {
				continue
			}
			visited = visited.Add(nb)
			queue = append(queue, nb)
		}
	}
	return visited
}

// ConnectedComponents partitions the graph's nodes into maximal connected
// subsets (supplemented feature, SPEC_FULL.md "Supplemented features" #3:
// a BGP with no shared variables at all has no defined DP behavior in
// spec.md §4.5 otherwise).
func (tg *TripleGraph) ConnectedComponents() []Set {
	seen := Set(0)
	var components []Set
	for i := range tg.Nodes {
		if seen.Contains(i) {
			continue
		}
		comp := tg.BFSLeaveOut(i, Set(0))
		seen = seen.Union(comp)
		components = append(components, comp)
	}
	return components
}

// IsPureTextQuery reports whether every node in the graph is a text-clique
// node (spec.md §4.1 isPureTextQuery).
func (tg *TripleGraph) IsPureTextQuery() bool {
	if len(tg.Nodes) == 0 {
		return false
	}
	for _, n := range tg.Nodes {
		if !n.IsText {
			return false
		}
	}
	return true
}

// IsSimilar reports graph isomorphism ignoring node ids and
// variable-within-triple order (spec.md §4.1 isSimilar), used only by
// tests. Since triple graphs arising from planning are small, this uses a
// direct permutation search rather than a general isomorphism algorithm.
func (tg *TripleGraph) IsSimilar(other *TripleGraph) bool {
	if len(tg.Nodes) != len(other.Nodes) {
		return false
	}
	n := len(tg.Nodes)
	perm := make([]int, n)
	used := make([]bool, n)
	var try func(i int) bool
	try = func(i int) bool {
		if i == n {
			return tg.adjacencyMatches(other, perm)
		}
		for j := 0; j < n; j++ {
			if used[j] || !tg.Nodes[i].isSimilar(other.Nodes[j]) {
				continue
			}
			used[j] = true
			perm[i] = j
			if try(i + 1) {
				return true
			}
			used[j] = false
		}
		return false
	}
	return try(0)
}

func (tg *TripleGraph) adjacencyMatches(other *TripleGraph, perm []int) bool {
	for i := range tg.Nodes {
		for j := range tg.Nodes {
			if i == j {
				continue
			}
			want := tg.adj[i].Contains(j)
			got := other.adj[perm[i]].Contains(perm[j])
			if want != got {
				return false
			}
		}
	}
	return true
}
