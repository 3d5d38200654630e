package sparql

// Expr is a boolean/scalar expression over variables. The planner never
// evaluates expressions; it only needs their free-variable set (to decide
// when a Filter can be placed, spec.md §4.6) and a stable textual form (for
// SELECT projections and cache keys).
type Expr interface {
	FreeVariables() []Variable
	String() string
}

// VarExpr is a bare variable reference, e.g. the ?c in COUNT(?c).
type VarExpr struct{ Name Variable }

func (v VarExpr) FreeVariables() []Variable { return []Variable{v.Name} }
func (v VarExpr) String() string            { return v.Name }

// StarExpr is the `*` in COUNT(*): it has no free variables of its own.
type StarExpr struct{}

func (StarExpr) FreeVariables() []Variable { return nil }
func (StarExpr) String() string            { return "*" }

// BinaryExpr is a generic `left op right` comparison/arithmetic expression,
// e.g. `?z > 5`.
type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

func (b BinaryExpr) FreeVariables() []Variable {
	return uniqueVars(append(b.Left.FreeVariables(), b.Right.FreeVariables()...))
}

func (b BinaryExpr) String() string {
	return b.Left.String() + " " + b.Op + " " + b.Right.String()
}

// Literal is a constant value in an expression.
type Literal struct{ Text string }

func (Literal) FreeVariables() []Variable { return nil }
func (l Literal) String() string          { return l.Text }

func uniqueVars(vs []Variable) []Variable {
	seen := map[Variable]bool{}
	var out []Variable
	for _, v := range vs {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Filter wraps a boolean Expr with the source location it was parsed from.
type Filter struct {
	Expr Expr
	At   Pos
}

// FreeVariables delegates to the wrapped expression.
func (f Filter) FreeVariables() []Variable { return f.Expr.FreeVariables() }

// AggregateKind enumerates the aggregate functions the post-processing row
// builder (spec.md §4.6) understands. Only COUNT participates in the
// pattern-trick rewrite, but the others are needed for GROUP BY in general.
type AggregateKind int

const (
	AggCount AggregateKind = iota
	AggCountDistinct
	AggSum
	AggAvg
	AggMin
	AggMax
	AggGroupConcat
)

// Aggregate is a single SELECT aggregate expression, e.g.
// `COUNT(*) AS ?c` or `COUNT(DISTINCT ?p) AS ?c`.
type Aggregate struct {
	Kind   AggregateKind
	Arg    Expr // StarExpr{} for COUNT(*)
	Output Variable
}
