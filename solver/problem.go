package solver

import "fmt"

// Vertex is a point whose coordinates are unknown until solved.
type Vertex struct {
	ID    string
	Label string
}

// Line joins two vertices. A ray extends through To to the canvas
// boundary when drawn; constraints treat both kinds alike.
type Line struct {
	ID    string
	From  string
	To    string
	IsRay bool
}

// Problem is a declarative geometry description.
type Problem struct {
	Width, Height float64
	Vertices      []Vertex
	Lines         []Line
	Constraints   []Constraint
}

// Constraint is one of the geometric relations below. The set is closed;
// new kinds are added in this package only.
type Constraint interface {
	// Kind returns the constraint type name used in documents.
	Kind() string
	constraint()
}

// Angle fixes the measure at Vertex between Line1 and Line2. Sweep
// picks the orientation: with Sweep set, Line2 lies clockwise (on
// screen) from Line1 by Measure degrees.
type Angle struct {
	Vertex  string
	Line1   string
	Line2   string
	Measure float64 // degrees
	Sweep   bool

	// Marker holds drawing hints; it does not affect solving.
	Marker AngleMarker
}

// AngleMarker describes how an angle is visualized.
type AngleMarker struct {
	Radius   float64
	LargeArc bool
	Label    string
	Hidden   bool
}

// AngleRef names an angle without fixing its measure.
type AngleRef struct {
	Vertex string
	Line1  string
	Line2  string
}

// EqualLength makes every line as long as Lines[0], and Value long when
// set.
type EqualLength struct {
	Lines []string
	Value *float64
}

// EqualAngle makes every angle equal to Angles[0], and Value degrees
// when set.
type EqualAngle struct {
	Angles []AngleRef
	Value  *float64
}

// Parallel makes every line parallel to Lines[0].
type Parallel struct {
	Lines []string
}

// Perpendicular makes two lines perpendicular.
type Perpendicular struct {
	Lines [2]string
}

// Midpoint creates vertex ID at the middle of Line.
type Midpoint struct {
	ID   string
	Line string
}

// Intersect creates vertex ID where the (extended) lines meet.
type Intersect struct {
	ID    string
	Line1 string
	Line2 string
}

// CanonicalAxis is a fixed symmetry axis through the canvas centre.
type CanonicalAxis uint8

const (
	// AxisNone means the axis is given by a line.
	AxisNone CanonicalAxis = iota
	// AxisHorizontal is the line y = Height/2.
	AxisHorizontal
	// AxisVertical is the line x = Width/2.
	AxisVertical
)

func (a CanonicalAxis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return "line"
	}
}

// SymmetryAxis is either a declared line or a canonical midline.
type SymmetryAxis struct {
	Line      string
	Canonical CanonicalAxis
}

// Pair names two vertices, or two lines, that mirror each other. A
// vertex paired with itself lies on the axis.
type Pair struct {
	A, B string
}

// Symmetry mirrors each pair across Axis.
type Symmetry struct {
	Axis  SymmetryAxis
	Pairs []Pair
}

// PresetPolygon declares that Vertices, in order, bound a polygon whose
// edges are declared lines. Regular makes it equilateral, equiangular
// and convex; SideLength pins every edge.
type PresetPolygon struct {
	Vertices   []string
	Regular    bool
	SideLength *float64
}

func (Angle) Kind() string         { return "angle" }
func (EqualLength) Kind() string   { return "equalLength" }
func (EqualAngle) Kind() string    { return "equalAngle" }
func (Parallel) Kind() string      { return "parallel" }
func (Perpendicular) Kind() string { return "perpendicular" }
func (Midpoint) Kind() string      { return "midpoint" }
func (Intersect) Kind() string     { return "intersect" }
func (Symmetry) Kind() string      { return "symmetry" }
func (PresetPolygon) Kind() string { return "presetPolygon" }

func (Angle) constraint()         {}
func (EqualLength) constraint()   {}
func (EqualAngle) constraint()    {}
func (Parallel) constraint()      {}
func (Perpendicular) constraint() {}
func (Midpoint) constraint()      {}
func (Intersect) constraint()     {}
func (Symmetry) constraint()      {}
func (PresetPolygon) constraint() {}

// Ref returns the angle's vertex and lines.
func (a Angle) Ref() AngleRef {
	return AngleRef{Vertex: a.Vertex, Line1: a.Line1, Line2: a.Line2}
}

// describe names constraint i for error messages.
func describe(i int, c Constraint) string {
	return fmt.Sprintf("constraints[%d] (%s)", i, c.Kind())
}

// VirtualVertices returns the ids of vertices created by constraints, in
// declaration order.
func (p *Problem) VirtualVertices() []string {
	var ids []string
	for _, c := range p.Constraints {
		switch c := c.(type) {
		case Midpoint:
			ids = append(ids, c.ID)
		case Intersect:
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// LineByID returns the declared line with the given id.
func (p *Problem) LineByID(id string) (Line, bool) {
	for _, l := range p.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}
