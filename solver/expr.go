package solver

import (
	"strconv"
	"strings"
)

// Expr is a polynomial expression over real variables. The node set is
// closed: every constraint compiles to sums, differences and products of
// variables and constants, so both backends handle exactly these.
type Expr interface {
	eval(x []float64) float64
	// grad adds seed * dExpr/dx into g.
	grad(x []float64, seed float64, g []float64)
	degree() int
	writeSMT(sb *strings.Builder)
}

// Var is the variable with the given index in its System.
type Var int

// Const is a real constant.
type Const float64

type addExpr struct{ a, b Expr }
type subExpr struct{ a, b Expr }
type mulExpr struct{ a, b Expr }
type negExpr struct{ a Expr }

// Add returns a + b.
func Add(a, b Expr) Expr { return addExpr{a, b} }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return subExpr{a, b} }

// Mul returns a * b.
func Mul(a, b Expr) Expr { return mulExpr{a, b} }

// Neg returns -a.
func Neg(a Expr) Expr { return negExpr{a} }

// Sq returns a * a.
func Sq(a Expr) Expr { return mulExpr{a, a} }

// Sum returns the sum of terms, or zero.
func Sum(terms ...Expr) Expr {
	if len(terms) == 0 {
		return Const(0)
	}
	e := terms[0]
	for _, t := range terms[1:] {
		e = addExpr{e, t}
	}
	return e
}

func (v Var) eval(x []float64) float64               { return x[v] }
func (v Var) grad(_ []float64, seed float64, g []float64) { g[v] += seed }
func (Var) degree() int                              { return 1 }
func (v Var) writeSMT(sb *strings.Builder)           { sb.WriteString(smtVarName(int(v))) }

func (c Const) eval([]float64) float64            { return float64(c) }
func (Const) grad([]float64, float64, []float64)   {}
func (Const) degree() int                         { return 0 }
func (c Const) writeSMT(sb *strings.Builder)      { sb.WriteString(smtReal(float64(c))) }

func (e addExpr) eval(x []float64) float64 { return e.a.eval(x) + e.b.eval(x) }
func (e addExpr) grad(x []float64, seed float64, g []float64) {
	e.a.grad(x, seed, g)
	e.b.grad(x, seed, g)
}
func (e addExpr) degree() int                 { return max(e.a.degree(), e.b.degree()) }
func (e addExpr) writeSMT(sb *strings.Builder) { writeApp(sb, "+", e.a, e.b) }

func (e subExpr) eval(x []float64) float64 { return e.a.eval(x) - e.b.eval(x) }
func (e subExpr) grad(x []float64, seed float64, g []float64) {
	e.a.grad(x, seed, g)
	e.b.grad(x, -seed, g)
}
func (e subExpr) degree() int                 { return max(e.a.degree(), e.b.degree()) }
func (e subExpr) writeSMT(sb *strings.Builder) { writeApp(sb, "-", e.a, e.b) }

func (e mulExpr) eval(x []float64) float64 { return e.a.eval(x) * e.b.eval(x) }
func (e mulExpr) grad(x []float64, seed float64, g []float64) {
	e.a.grad(x, seed*e.b.eval(x), g)
	e.b.grad(x, seed*e.a.eval(x), g)
}
func (e mulExpr) degree() int                 { return e.a.degree() + e.b.degree() }
func (e mulExpr) writeSMT(sb *strings.Builder) { writeApp(sb, "*", e.a, e.b) }

func (e negExpr) eval(x []float64) float64 { return -e.a.eval(x) }
func (e negExpr) grad(x []float64, seed float64, g []float64) {
	e.a.grad(x, -seed, g)
}
func (e negExpr) degree() int                 { return e.a.degree() }
func (e negExpr) writeSMT(sb *strings.Builder) { writeApp(sb, "-", e.a) }

func writeApp(sb *strings.Builder, op string, args ...Expr) {
	sb.WriteByte('(')
	sb.WriteString(op)
	for _, a := range args {
		sb.WriteByte(' ')
		a.writeSMT(sb)
	}
	sb.WriteByte(')')
}

// smtVarName is the solver symbol of variable i.
func smtVarName(i int) string {
	return "v" + strconv.Itoa(i)
}

// smtReal writes v as an SMT-LIB decimal. Constants are rounded to 15
// fractional digits, so values such as cos²(60°) become exact rationals.
func smtReal(v float64) string {
	s := strconv.FormatFloat(abs(v), 'f', 15, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if s == "0.0" || v >= 0 {
		return s
	}
	return "(- " + s + ")"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Vec is a 2D vector of expressions.
type Vec struct{ X, Y Expr }

// Minus returns p - q.
func (p Vec) Minus(q Vec) Vec { return Vec{Sub(p.X, q.X), Sub(p.Y, q.Y)} }

// Plus returns p + q.
func (p Vec) Plus(q Vec) Vec { return Vec{Add(p.X, q.X), Add(p.Y, q.Y)} }

// Scale returns s * p.
func (p Vec) Scale(s Expr) Vec { return Vec{Mul(s, p.X), Mul(s, p.Y)} }

// Dot returns p . q.
func (p Vec) Dot(q Vec) Expr { return Add(Mul(p.X, q.X), Mul(p.Y, q.Y)) }

// Cross returns the scalar p x q.
func (p Vec) Cross(q Vec) Expr { return Sub(Mul(p.X, q.Y), Mul(p.Y, q.X)) }

// Len2 returns |p|².
func (p Vec) Len2() Expr { return p.Dot(p) }

// RelKind is the comparison of a Relation against zero.
type RelKind uint8

const (
	// RelEq requires Expr = 0.
	RelEq RelKind = iota
	// RelGt requires Expr > 0.
	RelGt
	// RelGe requires Expr >= 0.
	RelGe
)

func (k RelKind) String() string {
	switch k {
	case RelGt:
		return ">"
	case RelGe:
		return ">="
	default:
		return "="
	}
}

// Relation compares an expression against zero.
type Relation struct {
	Kind RelKind
	Expr Expr

	// Source names the constraint the relation came from.
	Source string
}

// Satisfied reports whether the relation holds at x within tol, after
// scaling the expression by scale^degree.
func (r Relation) Satisfied(x []float64, scale, tol float64) bool {
	v := r.scaled(x, scale)
	switch r.Kind {
	case RelGt, RelGe:
		return v >= -tol
	default:
		return abs(v) <= tol
	}
}

func (r Relation) scaled(x []float64, scale float64) float64 {
	d := r.Expr.degree()
	s := 1.0
	for range d {
		s *= scale
	}
	return r.Expr.eval(x) / s
}

func (r Relation) writeSMT(sb *strings.Builder) {
	sb.WriteString("(assert (")
	sb.WriteString(r.Kind.String())
	sb.WriteByte(' ')
	r.Expr.writeSMT(sb)
	sb.WriteString(" 0.0))")
}
