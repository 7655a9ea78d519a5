package solver

import (
	"fmt"
	"math"
	"strings"
)

// System is a problem compiled into real variables and polynomial
// relations, ready for a Backend.
type System struct {
	Width, Height float64

	// Vars names every variable, e.g. "vertex_A.x" or "X.t".
	Vars []string

	Relations []Relation

	// Vertices lists vertex ids in variable order; vertex i owns
	// variables 2i (x) and 2i+1 (y).
	Vertices []string

	// Declared is the number of leading Vertices that were declared
	// rather than created by constraints.
	Declared int

	// FixedX and FixedY report axes pinned by a canonical symmetry axis.
	FixedX, FixedY bool

	vertexVar map[string]int
	lines     map[string]Line
}

// Scale is the length used to normalize relations of different degree.
func (s *System) Scale() float64 {
	return math.Max(s.Width, s.Height)
}

// Point returns the coordinate expressions of vertex id.
func (s *System) Point(id string) Vec {
	i := s.vertexVar[id]
	return Vec{Var(i), Var(i + 1)}
}

func (s *System) newVar(name string) Var {
	s.Vars = append(s.Vars, name)
	return Var(len(s.Vars) - 1)
}

func (s *System) addVertex(id string) {
	s.vertexVar[id] = len(s.Vars)
	s.newVar(id + ".x")
	s.newVar(id + ".y")
	s.Vertices = append(s.Vertices, id)
}

func (s *System) rel(kind RelKind, e Expr, source string) {
	s.Relations = append(s.Relations, Relation{Kind: kind, Expr: e, Source: source})
}

func (s *System) eq(e Expr, source string) { s.rel(RelEq, e, source) }
func (s *System) gt(e Expr, source string) { s.rel(RelGt, e, source) }
func (s *System) ge(e Expr, source string) { s.rel(RelGe, e, source) }

func (s *System) endpoints(lineID string) (Vec, Vec) {
	l := s.lines[lineID]
	return s.Point(l.From), s.Point(l.To)
}

func (s *System) direction(lineID string) Vec {
	p1, p2 := s.endpoints(lineID)
	return p2.Minus(p1)
}

// ray returns the vector from vertex along line: towards the line's other
// endpoint when vertex is on it, else the line's direction.
func (s *System) ray(vertex, lineID string) Vec {
	l := s.lines[lineID]
	v := s.Point(vertex)
	switch vertex {
	case l.From:
		return s.Point(l.To).Minus(v)
	case l.To:
		return s.Point(l.From).Minus(v)
	}
	return s.direction(lineID)
}

// Script renders the system as an SMT-LIB 2 script that checks
// satisfiability and asks for every variable's value.
func (s *System) Script() string {
	var sb strings.Builder
	sb.WriteString("(set-option :produce-models true)\n")
	sb.WriteString("(set-option :pp.decimal true)\n")
	sb.WriteString("(set-option :pp.decimal_precision 20)\n")
	sb.WriteString("(set-logic QF_NRA)\n")
	for i, name := range s.Vars {
		fmt.Fprintf(&sb, "(declare-fun %s () Real) ; %s\n", smtVarName(i), name)
	}
	for _, r := range s.Relations {
		r.writeSMT(&sb)
		sb.WriteString(" ; ")
		sb.WriteString(r.Source)
		sb.WriteByte('\n')
	}
	sb.WriteString("(check-sat)\n")
	sb.WriteString("(get-value (")
	for i := range s.Vars {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(smtVarName(i))
	}
	sb.WriteString("))\n(exit)\n")
	return sb.String()
}

// BuildOptions tune compilation. The zero value adds no bounds beyond
// the constraints themselves.
type BuildOptions struct {
	// MinSegmentLength is the shortest allowed declared line. Zero only
	// requires every line to have a non-zero length.
	MinSegmentLength float64

	// CanvasBounds keeps declared vertices inside [0,Width]×[0,Height]
	// while solving.
	CanvasBounds bool
}

// Build validates p and compiles it into a System.
func Build(p *Problem, opts BuildOptions) (*System, error) {
	ix, err := buildIndex(p)
	if err != nil {
		return nil, err
	}
	constraints, err := desugar(p, ix)
	if err != nil {
		return nil, err
	}

	s := &System{
		Width:     p.Width,
		Height:    p.Height,
		Declared:  len(p.Vertices),
		vertexVar: make(map[string]int),
		lines:     ix.lines,
	}
	for _, id := range ix.vertexID {
		s.addVertex(id)
	}

	if opts.CanvasBounds {
		for i, v := range p.Vertices {
			src := fmt.Sprintf("vertices[%d] in canvas", i)
			pt := s.Point(v.ID)
			s.ge(pt.X, src)
			s.ge(Sub(Const(p.Width), pt.X), src)
			s.ge(pt.Y, src)
			s.ge(Sub(Const(p.Height), pt.Y), src)
		}
	}
	for _, id := range ix.lineID {
		l2 := s.direction(id).Len2()
		if opts.MinSegmentLength > 0 {
			s.ge(Sub(l2, Const(opts.MinSegmentLength*opts.MinSegmentLength)), fmt.Sprintf("line %s minimum length", id))
			continue
		}
		s.gt(l2, fmt.Sprintf("line %s non-zero", id))
	}

	for i, c := range constraints {
		s.compile(fmt.Sprintf("%s#%d", c.Kind(), i), c)
	}
	return s, nil
}

func (s *System) compile(src string, c Constraint) {
	switch c := c.(type) {
	case EqualLength:
		ref := s.direction(c.Lines[0]).Len2()
		for _, id := range c.Lines[1:] {
			s.eq(Sub(ref, s.direction(id).Len2()), src)
		}
		if c.Value != nil {
			s.eq(Sub(ref, Const(*c.Value**c.Value)), src)
		}

	case Perpendicular:
		s.eq(s.direction(c.Lines[0]).Dot(s.direction(c.Lines[1])), src)

	case Parallel:
		d0 := s.direction(c.Lines[0])
		for _, id := range c.Lines[1:] {
			s.eq(d0.Cross(s.direction(id)), src)
		}

	case Midpoint:
		m := s.Point(c.ID)
		p1, p2 := s.endpoints(c.Line)
		s.eq(Sub(Mul(Const(2), m.X), Add(p1.X, p2.X)), src)
		s.eq(Sub(Mul(Const(2), m.Y), Add(p1.Y, p2.Y)), src)

	case Intersect:
		x := s.Point(c.ID)
		t := s.newVar(c.ID + ".t")
		u := s.newVar(c.ID + ".u")
		p1, _ := s.endpoints(c.Line1)
		q1, _ := s.endpoints(c.Line2)
		a := x.Minus(p1.Plus(s.direction(c.Line1).Scale(t)))
		b := x.Minus(q1.Plus(s.direction(c.Line2).Scale(u)))
		s.eq(a.X, src)
		s.eq(a.Y, src)
		s.eq(b.X, src)
		s.eq(b.Y, src)

	case Angle:
		u, v := s.ray(c.Vertex, c.Line1), s.ray(c.Vertex, c.Line2)
		s.pinAngle(src, u, v, c.Measure)
		_, sin := trig(c.Measure)
		if sin != 0 {
			dir := math.Copysign(1, sin)
			if !c.Sweep {
				dir = -dir
			}
			s.gt(Mul(Const(dir), u.Cross(v)), src)
		}

	case EqualAngle:
		u0, v0 := s.ray(c.Angles[0].Vertex, c.Angles[0].Line1), s.ray(c.Angles[0].Vertex, c.Angles[0].Line2)
		dot0 := u0.Dot(v0)
		for _, a := range c.Angles[1:] {
			ui, vi := s.ray(a.Vertex, a.Line1), s.ray(a.Vertex, a.Line2)
			doti := ui.Dot(vi)
			s.eq(Sub(
				Mul(Sq(doti), Mul(u0.Len2(), v0.Len2())),
				Mul(Sq(dot0), Mul(ui.Len2(), vi.Len2())),
			), src)
			s.ge(Mul(doti, dot0), src)
		}
		if c.Value != nil {
			s.pinAngle(src, u0, v0, *c.Value)
		}

	case Symmetry:
		s.compileSymmetry(src, c)

	case regularPolygon:
		s.compileRegular(src, c.Vertices)
	}
}

// trig returns cos and sin of deg degrees with values within 1e-12 of
// zero snapped to zero, so right and straight angles stay exact.
func trig(deg float64) (cos, sin float64) {
	sin, cos = math.Sincos(deg * math.Pi / 180)
	if math.Abs(cos) < 1e-12 {
		cos = 0
	}
	if math.Abs(sin) < 1e-12 {
		sin = 0
	}
	return cos, sin
}

// pinAngle fixes the unsigned angle between u and v.
func (s *System) pinAngle(src string, u, v Vec, deg float64) {
	cos, sin := trig(deg)
	dot := u.Dot(v)
	switch {
	case sin == 0:
		s.eq(u.Cross(v), src)
		s.gt(Mul(Const(math.Copysign(1, cos)), dot), src)
	case cos == 0:
		s.eq(dot, src)
	default:
		c2 := roundConst(cos * cos)
		s.eq(Sub(Sq(dot), Mul(Const(c2), Mul(u.Len2(), v.Len2()))), src)
		s.gt(Mul(Const(math.Copysign(1, cos)), dot), src)
	}
}

// roundConst rounds to the 15 fractional digits the SMT script carries,
// so both backends solve the same system.
func roundConst(v float64) float64 {
	return math.Round(v*1e15) / 1e15
}

func (s *System) compileSymmetry(src string, c Symmetry) {
	type pair struct{ a, b string }
	var pairs []pair
	for _, p := range c.Pairs {
		if la, ok := s.lines[p.A]; ok {
			lb := s.lines[p.B]
			pairs = append(pairs, pair{la.From, lb.From}, pair{la.To, lb.To})
			continue
		}
		pairs = append(pairs, pair{p.A, p.B})
	}

	switch c.Axis.Canonical {
	case AxisHorizontal:
		s.FixedY = true
		for _, p := range pairs {
			a, b := s.Point(p.a), s.Point(p.b)
			s.eq(Sub(Add(a.Y, b.Y), Const(s.Height)), src)
			if p.a != p.b {
				s.eq(Sub(b.X, a.X), src)
			}
		}
	case AxisVertical:
		s.FixedX = true
		for _, p := range pairs {
			a, b := s.Point(p.a), s.Point(p.b)
			s.eq(Sub(Add(a.X, b.X), Const(s.Width)), src)
			if p.a != p.b {
				s.eq(Sub(b.Y, a.Y), src)
			}
		}
	default:
		origin, _ := s.endpoints(c.Axis.Line)
		d := s.direction(c.Axis.Line)
		for _, p := range pairs {
			a, b := s.Point(p.a), s.Point(p.b)
			if p.a == p.b {
				s.eq(d.Cross(a.Minus(origin)), src)
				continue
			}
			twiceMid := a.Plus(b).Minus(origin.Plus(origin))
			s.eq(d.Cross(twiceMid), src)
			s.eq(d.Dot(b.Minus(a)), src)
		}
	}
}

// compileRegular makes a polygon with equal edges regular: every
// skip-one diagonal has the same length, so all corner triangles are
// congruent, and the polygon is convex with a fixed winding.
func (s *System) compileRegular(src string, vertices []string) {
	n := len(vertices)
	pt := func(i int) Vec { return s.Point(vertices[((i%n)+n)%n]) }
	if n >= 4 {
		ref := pt(n - 1).Minus(pt(1)).Len2()
		for i := 1; i < n; i++ {
			s.eq(Sub(ref, pt(i-1).Minus(pt(i+1)).Len2()), src)
		}
	}
	for i := range n {
		edge := pt(i + 1).Minus(pt(i))
		for j := 2; j < n; j++ {
			s.gt(edge.Cross(pt(i+j).Minus(pt(i))), src)
		}
	}
}
