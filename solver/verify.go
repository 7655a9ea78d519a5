package solver

import (
	"fmt"
	"math"

	"github.com/gogpu/geodraw"
)

// ResidualError reports a constraint a solution does not satisfy.
type ResidualError struct {
	Where    string
	Residual float64
	Detail   string
}

func (e *ResidualError) Error() string {
	return fmt.Sprintf("solver: %s: %s (residual %.3g)", e.Where, e.Detail, e.Residual)
}

// Verify re-checks every constraint of p against the solved positions
// with geometric measures: relative length differences, cosines and
// sines of angles in radians, and distances relative to the canvas size.
// Each residual must stay within tol.
func (s *Solution) Verify(p *Problem, tol float64) error {
	v := verifier{sol: s, p: p, tol: tol, scale: math.Max(p.Width, p.Height)}
	for i, c := range p.Constraints {
		v.where = describe(i, c)
		v.check(c)
		if v.err != nil {
			return v.err
		}
	}
	return nil
}

type verifier struct {
	sol   *Solution
	p     *Problem
	tol   float64
	scale float64
	where string
	err   error
}

func (v *verifier) fail(residual float64, format string, args ...any) {
	if v.err == nil && !(math.Abs(residual) <= v.tol) {
		v.err = &ResidualError{Where: v.where, Residual: residual, Detail: fmt.Sprintf(format, args...)}
	}
}

func (v *verifier) pt(id string) geodraw.Point {
	return v.sol.Positions[id]
}

func (v *verifier) line(id string) (geodraw.Point, geodraw.Point) {
	l, _ := v.p.LineByID(id)
	return v.pt(l.From), v.pt(l.To)
}

func (v *verifier) dir(id string) geodraw.Point {
	a, b := v.line(id)
	return b.Sub(a)
}

func (v *verifier) ray(vertex, lineID string) geodraw.Point {
	l, _ := v.p.LineByID(lineID)
	switch vertex {
	case l.From:
		return v.pt(l.To).Sub(v.pt(vertex))
	case l.To:
		return v.pt(l.From).Sub(v.pt(vertex))
	}
	return v.dir(lineID)
}

// unsigned returns the angle between u and v in [0, π].
func unsigned(u, w geodraw.Point) float64 {
	return math.Atan2(math.Abs(u.Cross(w)), u.Dot(w))
}

func (v *verifier) angle(a AngleRef) (geodraw.Point, geodraw.Point) {
	return v.ray(a.Vertex, a.Line1), v.ray(a.Vertex, a.Line2)
}

func relDiff(a, b float64) float64 {
	m := math.Max(math.Abs(a), math.Abs(b))
	if m == 0 {
		return 0
	}
	return (a - b) / m
}

// expectedUnsigned folds a measure in [0, 360) into [0, π].
func expectedUnsigned(deg float64) float64 {
	if deg > 180 {
		deg = 360 - deg
	}
	return deg * math.Pi / 180
}

func (v *verifier) check(c Constraint) {
	switch c := c.(type) {
	case EqualLength:
		ref := v.dir(c.Lines[0]).Length()
		for _, id := range c.Lines[1:] {
			l := v.dir(id).Length()
			v.fail(relDiff(l, ref), "%s has length %g, want %g", id, l, ref)
		}
		if c.Value != nil {
			v.fail(relDiff(ref, *c.Value), "%s has length %g, want %g", c.Lines[0], ref, *c.Value)
		}

	case Perpendicular:
		d0, d1 := v.dir(c.Lines[0]).Normalize(), v.dir(c.Lines[1]).Normalize()
		v.fail(d0.Dot(d1), "lines are not perpendicular")

	case Parallel:
		d0 := v.dir(c.Lines[0]).Normalize()
		for _, id := range c.Lines[1:] {
			v.fail(d0.Cross(v.dir(id).Normalize()), "%s is not parallel to %s", id, c.Lines[0])
		}

	case Midpoint:
		a, b := v.line(c.Line)
		m := v.pt(c.ID)
		v.fail(m.Mul(2).Distance(a.Add(b))/v.scale, "%s is not the midpoint of %s", c.ID, c.Line)

	case Intersect:
		x := v.pt(c.ID)
		for _, id := range []string{c.Line1, c.Line2} {
			a, b := v.line(id)
			d := b.Sub(a).Normalize()
			v.fail(d.Cross(x.Sub(a))/v.scale, "%s is off line %s", c.ID, id)
		}

	case Angle:
		u, w := v.angle(c.Ref())
		got := unsigned(u, w)
		want := expectedUnsigned(c.Measure)
		v.fail(got-want, "angle is %.6g°, want %g°", got*180/math.Pi, c.Measure)
		_, sin := trig(c.Measure)
		if sin != 0 {
			want := math.Copysign(1, sin)
			if !c.Sweep {
				want = -want
			}
			if u.Cross(w)*want <= 0 {
				v.fail(math.Inf(1), "angle has the wrong orientation")
			}
		}

	case EqualAngle:
		u0, w0 := v.angle(c.Angles[0])
		ref := unsigned(u0, w0)
		for _, a := range c.Angles[1:] {
			u, w := v.angle(a)
			got := unsigned(u, w)
			v.fail(got-ref, "angle at %s is %.6g°, want %.6g°", a.Vertex, got*180/math.Pi, ref*180/math.Pi)
		}
		if c.Value != nil {
			v.fail(ref-expectedUnsigned(*c.Value), "angle at %s is %.6g°, want %g°", c.Angles[0].Vertex, ref*180/math.Pi, *c.Value)
		}

	case Symmetry:
		v.checkSymmetry(c)

	case PresetPolygon:
		n := len(c.Vertices)
		var ref float64
		for i := range n {
			l := v.pt(c.Vertices[i]).Distance(v.pt(c.Vertices[(i+1)%n]))
			switch {
			case c.SideLength != nil:
				v.fail(relDiff(l, *c.SideLength), "edge %d has length %g, want %g", i, l, *c.SideLength)
			case c.Regular && i == 0:
				ref = l
			case c.Regular:
				v.fail(relDiff(l, ref), "edge %d has length %g, want %g", i, l, ref)
			}
		}
		if c.Regular {
			want := math.Pi * float64(n-2) / float64(n)
			for i := range n {
				at := v.pt(c.Vertices[i])
				prev := v.pt(c.Vertices[(i+n-1)%n]).Sub(at)
				next := v.pt(c.Vertices[(i+1)%n]).Sub(at)
				got := unsigned(prev, next)
				v.fail(got-want, "interior angle at %s is %.6g°", c.Vertices[i], got*180/math.Pi)
			}
		}
	}
}

func (v *verifier) checkSymmetry(c Symmetry) {
	type pair struct{ a, b string }
	var pairs []pair
	for _, p := range c.Pairs {
		if la, ok := v.p.LineByID(p.A); ok {
			lb, _ := v.p.LineByID(p.B)
			pairs = append(pairs, pair{la.From, lb.From}, pair{la.To, lb.To})
			continue
		}
		pairs = append(pairs, pair{p.A, p.B})
	}

	var reflect func(geodraw.Point) geodraw.Point
	switch c.Axis.Canonical {
	case AxisHorizontal:
		reflect = func(q geodraw.Point) geodraw.Point { return geodraw.Pt(q.X, v.p.Height-q.Y) }
	case AxisVertical:
		reflect = func(q geodraw.Point) geodraw.Point { return geodraw.Pt(v.p.Width-q.X, q.Y) }
	default:
		a, b := v.line(c.Axis.Line)
		d := b.Sub(a).Normalize()
		reflect = func(q geodraw.Point) geodraw.Point {
			rel := q.Sub(a)
			along := d.Mul(rel.Dot(d))
			return a.Add(along.Mul(2)).Sub(rel)
		}
	}
	for _, p := range pairs {
		got := reflect(v.pt(p.a))
		v.fail(got.Distance(v.pt(p.b))/v.scale, "%s does not mirror %s", p.a, p.b)
	}
}
