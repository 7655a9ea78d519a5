package solver

import (
	"context"
	"errors"
	"math"
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/geodraw"
)

func f64(v float64) *float64 { return &v }

func triangle() *Problem {
	return &Problem{
		Width:  100,
		Height: 100,
		Vertices: []Vertex{
			{ID: "A", Label: "A"},
			{ID: "B", Label: "B"},
			{ID: "C", Label: "C"},
		},
		Lines: []Line{
			{ID: "line_AB", From: "A", To: "B"},
			{ID: "line_BC", From: "B", To: "C"},
			{ID: "line_CA", From: "C", To: "A"},
		},
	}
}

// numeric selects the in-process backend so tests run without z3.
func numeric() Option { return WithBackend(NewNumericBackend()) }

func mustSolve(t *testing.T, p *Problem) *Solution {
	t.Helper()
	sol, err := Solve(context.Background(), p, numeric())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if err := sol.Verify(p, 1e-6); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return sol
}

func dist(t *testing.T, sol *Solution, a, b string) float64 {
	t.Helper()
	pa, ok := sol.Point(a)
	if !ok {
		t.Fatalf("no position for %s", a)
	}
	pb, ok := sol.Point(b)
	if !ok {
		t.Fatalf("no position for %s", b)
	}
	return pa.Distance(pb)
}

// angleAt returns the angle at vertex v between the rays to a and b, in
// degrees.
func angleAt(sol *Solution, v, a, b string) float64 {
	o := sol.Positions[v]
	u, w := sol.Positions[a].Sub(o), sol.Positions[b].Sub(o)
	return math.Atan2(math.Abs(u.Cross(w)), u.Dot(w)) * 180 / math.Pi
}

func TestSolveRegularTriangle(t *testing.T) {
	p := triangle()
	p.Constraints = []Constraint{
		PresetPolygon{Vertices: []string{"A", "B", "C"}, Regular: true, SideLength: f64(10)},
	}
	sol := mustSolve(t, p)

	for _, e := range [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}} {
		if d := dist(t, sol, e[0], e[1]); math.Abs(d-10) > 1e-6 {
			t.Errorf("|%s%s| = %v, want 10", e[0], e[1], d)
		}
	}
	for _, c := range [][3]string{{"A", "B", "C"}, {"B", "C", "A"}, {"C", "A", "B"}} {
		if got := angleAt(sol, c[0], c[1], c[2]); math.Abs(got-60) > 1e-3 {
			t.Errorf("angle at %s = %v, want 60", c[0], got)
		}
	}
	a := sol.Positions["A"]
	if math.Abs(a.X-50) > 1e-9 || math.Abs(a.Y-50) > 1e-9 {
		t.Errorf("A = %v, want anchored at (50, 50)", a)
	}
	if sol.Backend != "numeric" {
		t.Errorf("Backend = %q, want numeric", sol.Backend)
	}
}

func TestSolveRegularTriangleAnySize(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		side          float64
	}{
		{"small side on large canvas", 600, 600, 10},
		{"tiny side on wide canvas", 400, 300, 5},
		{"side longer than canvas", 100, 100, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := triangle()
			p.Width, p.Height = tt.width, tt.height
			p.Constraints = []Constraint{
				PresetPolygon{Vertices: []string{"A", "B", "C"}, Regular: true, SideLength: f64(tt.side)},
			}
			sol := mustSolve(t, p)
			for _, e := range [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}} {
				if d := dist(t, sol, e[0], e[1]); math.Abs(d-tt.side) > 1e-6*tt.side {
					t.Errorf("|%s%s| = %v, want %v", e[0], e[1], d, tt.side)
				}
			}
			if got := angleAt(sol, "A", "B", "C"); math.Abs(got-60) > 1e-3 {
				t.Errorf("angle at A = %v, want 60", got)
			}
			a := sol.Positions["A"]
			if math.Abs(a.X-tt.width/2) > 1e-9 || math.Abs(a.Y-tt.height/2) > 1e-9 {
				t.Errorf("A = %v, want anchored at the canvas centre", a)
			}
		})
	}
}

func TestSolveCanvasBounds(t *testing.T) {
	p := triangle()
	p.Constraints = []Constraint{
		PresetPolygon{Vertices: []string{"A", "B", "C"}, Regular: true, SideLength: f64(150)},
	}
	_, err := Solve(context.Background(), p,
		WithBackend(NewNumericBackend(WithRestarts(4), WithMaxIterations(200))),
		WithCanvasBounds())
	if !errors.Is(err, ErrUnsatisfiable) {
		t.Fatalf("Solve error = %v, want ErrUnsatisfiable with the figure boxed in", err)
	}
}

func TestSolveParallel(t *testing.T) {
	p := &Problem{
		Width:    200,
		Height:   200,
		Vertices: []Vertex{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}, {ID: "E"}, {ID: "F"}},
		Lines: []Line{
			{ID: "line_AB", From: "A", To: "B"},
			{ID: "line_CD", From: "C", To: "D"},
			{ID: "line_EF", From: "E", To: "F"},
		},
		Constraints: []Constraint{
			Parallel{Lines: []string{"line_AB", "line_CD", "line_EF"}},
			EqualLength{Lines: []string{"line_AB"}, Value: f64(60)},
			EqualLength{Lines: []string{"line_CD"}, Value: f64(35)},
		},
	}
	sol := mustSolve(t, p)
	ab := sol.Positions["B"].Sub(sol.Positions["A"])
	for _, l := range [][2]string{{"C", "D"}, {"E", "F"}} {
		d := sol.Positions[l[1]].Sub(sol.Positions[l[0]])
		if sin := ab.Cross(d) / (ab.Length() * d.Length()); math.Abs(sin) > 1e-6 {
			t.Errorf("sin(AB, %s%s) = %v, want 0", l[0], l[1], sin)
		}
	}
	if d := dist(t, sol, "C", "D"); math.Abs(d-35) > 1e-6 {
		t.Errorf("|CD| = %v, want 35", d)
	}
}

func TestSolveEqualAngle(t *testing.T) {
	tests := []struct {
		name  string
		value *float64
	}{
		{"free measure", nil},
		{"pinned measure", f64(70)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := triangle()
			p.Constraints = []Constraint{
				EqualAngle{
					Angles: []AngleRef{
						{Vertex: "A", Line1: "line_AB", Line2: "line_CA"},
						{Vertex: "B", Line1: "line_AB", Line2: "line_BC"},
					},
					Value: tt.value,
				},
				EqualLength{Lines: []string{"line_AB"}, Value: f64(30)},
			}
			sol := mustSolve(t, p)
			atA, atB := angleAt(sol, "A", "B", "C"), angleAt(sol, "B", "A", "C")
			if math.Abs(atA-atB) > 1e-3 {
				t.Errorf("angles at A and B = %v, %v, want equal", atA, atB)
			}
			if tt.value != nil && math.Abs(atA-*tt.value) > 1e-3 {
				t.Errorf("angle at A = %v, want %v", atA, *tt.value)
			}
			if d := math.Abs(dist(t, sol, "C", "A") - dist(t, sol, "C", "B")); d > 1e-6 {
				t.Errorf("||CA| - |CB|| = %v, want an isosceles triangle", d)
			}
		})
	}
}

func TestSolveSymmetryAcrossLine(t *testing.T) {
	p := &Problem{
		Width:    160,
		Height:   120,
		Vertices: []Vertex{{ID: "P"}, {ID: "Q"}, {ID: "A"}, {ID: "B"}},
		Lines: []Line{
			{ID: "line_PQ", From: "P", To: "Q"},
			{ID: "line_PA", From: "P", To: "A"},
			{ID: "line_AB", From: "A", To: "B"},
		},
		Constraints: []Constraint{
			Symmetry{Axis: SymmetryAxis{Line: "line_PQ"}, Pairs: []Pair{{A: "A", B: "B"}}},
			EqualLength{Lines: []string{"line_PQ"}, Value: f64(50)},
			EqualLength{Lines: []string{"line_PA"}, Value: f64(30)},
			EqualLength{Lines: []string{"line_AB"}, Value: f64(20)},
		},
	}
	sol := mustSolve(t, p)
	pt, q := sol.Positions["P"], sol.Positions["Q"]
	a, b := sol.Positions["A"], sol.Positions["B"]
	axis := q.Sub(pt).Normalize()
	mid := geodraw.Pt((a.X+b.X)/2, (a.Y+b.Y)/2)
	if off := math.Abs(axis.Cross(mid.Sub(pt))); off > 1e-6 {
		t.Errorf("midpoint of AB is %v off the axis", off)
	}
	if along := math.Abs(axis.Dot(b.Sub(a))); along > 1e-6 {
		t.Errorf("AB has %v along the axis, want perpendicular", along)
	}
	if d := math.Abs(pt.Distance(a) - pt.Distance(b)); d > 1e-6 {
		t.Errorf("||PA| - |PB|| = %v, want mirrored distances", d)
	}
}

func TestSolveDefaultBackendIsSMT(t *testing.T) {
	p := triangle()
	p.Constraints = []Constraint{
		PresetPolygon{Vertices: []string{"A", "B", "C"}, Regular: true, SideLength: f64(10)},
	}
	sol, err := Solve(context.Background(), p)
	if _, lookErr := exec.LookPath("z3"); lookErr != nil {
		if !errors.Is(err, ErrSolverFailed) {
			t.Fatalf("Solve without z3 = %v, want ErrSolverFailed", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Backend != "smt" {
		t.Errorf("Backend = %q, want smt", sol.Backend)
	}
}

func TestSolveRegularSquare(t *testing.T) {
	p := &Problem{
		Width:    200,
		Height:   200,
		Vertices: []Vertex{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}},
		Lines: []Line{
			{ID: "line_AB", From: "A", To: "B"},
			{ID: "line_BC", From: "B", To: "C"},
			{ID: "line_CD", From: "C", To: "D"},
			{ID: "line_DA", From: "D", To: "A"},
		},
		Constraints: []Constraint{
			PresetPolygon{Vertices: []string{"A", "B", "C", "D"}, Regular: true, SideLength: f64(20)},
		},
	}
	sol := mustSolve(t, p)
	want := 20 * math.Sqrt2
	for _, d := range [][2]string{{"A", "C"}, {"B", "D"}} {
		if got := dist(t, sol, d[0], d[1]); math.Abs(got-want) > 1e-6 {
			t.Errorf("|%s%s| = %v, want %v", d[0], d[1], got, want)
		}
	}
}

func TestSolveRightTriangle(t *testing.T) {
	p := triangle()
	p.Constraints = []Constraint{
		Angle{Vertex: "B", Line1: "line_AB", Line2: "line_BC", Measure: 90, Sweep: true},
		EqualLength{Lines: []string{"line_AB"}, Value: f64(30)},
		EqualLength{Lines: []string{"line_BC"}, Value: f64(40)},
	}
	sol := mustSolve(t, p)
	if d := dist(t, sol, "C", "A"); math.Abs(d-50) > 1e-6 {
		t.Errorf("|CA| = %v, want 50", d)
	}
	ba := sol.Positions["A"].Sub(sol.Positions["B"])
	bc := sol.Positions["C"].Sub(sol.Positions["B"])
	if ba.Cross(bc) <= 0 {
		t.Errorf("cross(BA, BC) = %v, want positive for a sweep angle", ba.Cross(bc))
	}
}

func TestSolveAngleOrientation(t *testing.T) {
	for _, sweep := range []bool{true, false} {
		p := triangle()
		p.Constraints = []Constraint{
			Angle{Vertex: "A", Line1: "line_AB", Line2: "line_CA", Measure: 60, Sweep: sweep},
			EqualLength{Lines: []string{"line_AB", "line_CA"}, Value: f64(25)},
		}
		sol := mustSolve(t, p)
		ab := sol.Positions["B"].Sub(sol.Positions["A"])
		ac := sol.Positions["C"].Sub(sol.Positions["A"])
		cross := ab.Cross(ac)
		if sweep && cross <= 0 || !sweep && cross >= 0 {
			t.Errorf("sweep=%v: cross(AB, AC) = %v", sweep, cross)
		}
		if d := dist(t, sol, "B", "C"); math.Abs(d-25) > 1e-6 {
			t.Errorf("sweep=%v: |BC| = %v, want 25", sweep, d)
		}
	}
}

func TestSolveDegenerateUnsatisfiable(t *testing.T) {
	p := triangle()
	p.Constraints = []Constraint{
		EqualLength{Lines: []string{"line_AB", "line_BC", "line_CA"}},
		Angle{Vertex: "B", Line1: "line_AB", Line2: "line_BC", Measure: 180},
	}
	_, err := Solve(context.Background(), p, WithBackend(NewNumericBackend(WithRestarts(8), WithMaxIterations(200))))
	if !errors.Is(err, ErrUnsatisfiable) {
		t.Fatalf("Solve error = %v, want ErrUnsatisfiable", err)
	}
}

func TestSolveMidpointAndIntersection(t *testing.T) {
	p := &Problem{
		Width:    100,
		Height:   80,
		Vertices: []Vertex{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}},
		Lines: []Line{
			{ID: "line_AB", From: "A", To: "B"},
			{ID: "line_CD", From: "C", To: "D"},
		},
		Constraints: []Constraint{
			EqualLength{Lines: []string{"line_AB", "line_CD"}, Value: f64(40)},
			Perpendicular{Lines: [2]string{"line_AB", "line_CD"}},
			Midpoint{ID: "M", Line: "line_AB"},
			Intersect{ID: "X", Line1: "line_AB", Line2: "line_CD"},
		},
	}
	sol := mustSolve(t, p)

	wantOrder := []string{"A", "B", "C", "D", "M", "X"}
	if !reflect.DeepEqual(sol.Order, wantOrder) {
		t.Errorf("Order = %v, want %v", sol.Order, wantOrder)
	}

	a, b := sol.Positions["A"], sol.Positions["B"]
	mid := geodraw.Pt((a.X+b.X)/2, (a.Y+b.Y)/2)
	if m := sol.Positions["M"]; m.Distance(mid) > 1e-9 {
		t.Errorf("M = %v, want %v", m, mid)
	}

	x := sol.Positions["X"]
	c, d := sol.Positions["C"], sol.Positions["D"]
	for name, l := range map[string][2]geodraw.Point{"AB": {a, b}, "CD": {c, d}} {
		dir := l[1].Sub(l[0]).Normalize()
		if off := math.Abs(dir.Cross(x.Sub(l[0]))); off > 1e-6 {
			t.Errorf("X is %v off line %s", off, name)
		}
	}
}

func TestSolveCanonicalSymmetry(t *testing.T) {
	p := &Problem{
		Width:    120,
		Height:   90,
		Vertices: []Vertex{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		Lines: []Line{
			{ID: "line_AB", From: "A", To: "B"},
			{ID: "line_BC", From: "B", To: "C"},
		},
		Constraints: []Constraint{
			Symmetry{
				Axis:  SymmetryAxis{Canonical: AxisVertical},
				Pairs: []Pair{{A: "A", B: "C"}, {A: "B", B: "B"}},
			},
			EqualLength{Lines: []string{"line_AB"}, Value: f64(30)},
		},
	}
	sol := mustSolve(t, p)
	a, b, c := sol.Positions["A"], sol.Positions["B"], sol.Positions["C"]
	if math.Abs(a.X+c.X-120) > 1e-6 || math.Abs(a.Y-c.Y) > 1e-6 {
		t.Errorf("A = %v and C = %v do not mirror across x = 60", a, c)
	}
	if math.Abs(b.X-60) > 1e-6 {
		t.Errorf("B.X = %v, want 60", b.X)
	}
	if math.Abs(a.Y-45) > 1e-9 {
		t.Errorf("A.Y = %v, want anchored at 45", a.Y)
	}
}

func TestSolveDeterministic(t *testing.T) {
	p := triangle()
	p.Constraints = []Constraint{
		Angle{Vertex: "A", Line1: "line_AB", Line2: "line_CA", Measure: 45},
		EqualLength{Lines: []string{"line_AB", "line_CA"}},
	}
	first, err := Solve(context.Background(), p, numeric())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for i := range 3 {
		again, err := Solve(context.Background(), p, numeric())
		if err != nil {
			t.Fatalf("Solve #%d: %v", i, err)
		}
		if !reflect.DeepEqual(first.Positions, again.Positions) {
			t.Fatalf("Solve #%d = %v, want %v", i, again.Positions, first.Positions)
		}
	}
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, triangle(), numeric())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Solve error = %v, want context.Canceled", err)
	}
}

func TestSolveReferenceSuggestion(t *testing.T) {
	p := triangle()
	p.Constraints = []Constraint{
		Angle{Vertex: "B", Line1: "line_AC", Line2: "line_BC", Measure: 30},
	}
	_, err := Solve(context.Background(), p)
	if !errors.Is(err, ErrReference) {
		t.Fatalf("Solve error = %v, want ErrReference", err)
	}
	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("error %T is not a *ReferenceError", err)
	}
	if refErr.ID != "line_AC" || refErr.Kind != "line" {
		t.Errorf("ReferenceError = %+v", refErr)
	}
	if len(refErr.Suggestions) == 0 || refErr.Suggestions[0] != "line_AB" {
		t.Errorf("Suggestions = %v, want line_AB first", refErr.Suggestions)
	}
	if !strings.Contains(err.Error(), `did you mean "line_AB"`) {
		t.Errorf("Error() = %q, want a suggestion", err.Error())
	}
	if !strings.Contains(err.Error(), "constraints[0] (angle)") {
		t.Errorf("Error() = %q, want the constraint position", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Problem)
		want   error
	}{
		{"valid", func(*Problem) {}, nil},
		{"zero width", func(p *Problem) { p.Width = 0 }, ErrInvalidProblem},
		{"no vertices", func(p *Problem) { p.Vertices = nil; p.Lines = nil }, ErrInvalidProblem},
		{"duplicate vertex", func(p *Problem) { p.Vertices = append(p.Vertices, Vertex{ID: "A"}) }, ErrInvalidProblem},
		{"duplicate line", func(p *Problem) { p.Lines = append(p.Lines, Line{ID: "line_AB", From: "B", To: "C"}) }, ErrInvalidProblem},
		{"undeclared endpoint", func(p *Problem) { p.Lines[0].To = "Z" }, ErrReference},
		{"zero-length line", func(p *Problem) { p.Lines[0].To = "A" }, ErrReference},
		{"angle out of range", func(p *Problem) {
			p.Constraints = []Constraint{Angle{Vertex: "A", Line1: "line_AB", Line2: "line_CA", Measure: 360}}
		}, ErrInvalidProblem},
		{"angle with itself", func(p *Problem) {
			p.Constraints = []Constraint{Angle{Vertex: "A", Line1: "line_AB", Line2: "line_AB", Measure: 30}}
		}, ErrReference},
		{"equal length needs two", func(p *Problem) {
			p.Constraints = []Constraint{EqualLength{Lines: []string{"line_AB"}}}
		}, ErrInvalidProblem},
		{"parallel needs two", func(p *Problem) {
			p.Constraints = []Constraint{Parallel{Lines: []string{"line_AB"}}}
		}, ErrInvalidProblem},
		{"self perpendicular", func(p *Problem) {
			p.Constraints = []Constraint{Perpendicular{Lines: [2]string{"line_AB", "line_AB"}}}
		}, ErrReference},
		{"midpoint shadows vertex", func(p *Problem) {
			p.Constraints = []Constraint{Midpoint{ID: "A", Line: "line_BC"}}
		}, ErrInvalidProblem},
		{"symmetry mixes kinds", func(p *Problem) {
			p.Constraints = []Constraint{Symmetry{Axis: SymmetryAxis{Canonical: AxisVertical}, Pairs: []Pair{{A: "A", B: "line_BC"}}}}
		}, ErrReference},
		{"symmetry axis mirrored", func(p *Problem) {
			p.Constraints = []Constraint{Symmetry{Axis: SymmetryAxis{Line: "line_AB"}, Pairs: []Pair{{A: "line_AB", B: "line_BC"}}}}
		}, ErrReference},
		{"polygon missing edge", func(p *Problem) {
			p.Lines = p.Lines[:2]
			p.Constraints = []Constraint{PresetPolygon{Vertices: []string{"A", "B", "C"}, Regular: true}}
		}, ErrReference},
		{"polygon too small", func(p *Problem) {
			p.Constraints = []Constraint{PresetPolygon{Vertices: []string{"A", "B"}}}
		}, ErrInvalidProblem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := triangle()
			tt.mutate(p)
			err := Validate(p)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifyReportsResidual(t *testing.T) {
	p := triangle()
	p.Constraints = []Constraint{Perpendicular{Lines: [2]string{"line_AB", "line_BC"}}}
	sol := &Solution{Positions: map[string]geodraw.Point{
		"A": geodraw.Pt(0, 0),
		"B": geodraw.Pt(10, 0),
		"C": geodraw.Pt(20, 5),
	}}
	err := sol.Verify(p, 1e-6)
	var resErr *ResidualError
	if !errors.As(err, &resErr) {
		t.Fatalf("Verify() = %v, want *ResidualError", err)
	}
	if resErr.Where != "constraints[0] (perpendicular)" {
		t.Errorf("Where = %q", resErr.Where)
	}

	sol.Positions["C"] = geodraw.Pt(10, 7)
	if err := sol.Verify(p, 1e-9); err != nil {
		t.Errorf("Verify() on a right angle = %v", err)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusUnknown, "unknown"},
		{StatusSat, "sat"},
		{StatusUnsat, "unsat"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
