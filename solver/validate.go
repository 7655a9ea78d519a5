package solver

import (
	"fmt"
	"math"
)

// index holds the ids a problem declares or creates.
type index struct {
	vertices map[string]bool
	lines    map[string]Line
	vertexID []string // declared then virtual
	lineID   []string
}

func (ix *index) vertexRef(where, id string) error {
	if ix.vertices[id] {
		return nil
	}
	return &ReferenceError{Where: where, Kind: "vertex", ID: id, Reason: "is not declared", Suggestions: Suggest(id, ix.vertexID)}
}

func (ix *index) lineRef(where, id string) error {
	if _, ok := ix.lines[id]; ok {
		return nil
	}
	return &ReferenceError{Where: where, Kind: "line", ID: id, Reason: "is not declared", Suggestions: Suggest(id, ix.lineID)}
}

func (ix *index) angleRef(where string, a AngleRef) error {
	if err := ix.vertexRef(where, a.Vertex); err != nil {
		return err
	}
	if err := ix.lineRef(where, a.Line1); err != nil {
		return err
	}
	if err := ix.lineRef(where, a.Line2); err != nil {
		return err
	}
	if a.Line1 == a.Line2 {
		return &ReferenceError{Where: where, Kind: "line", ID: a.Line1, Reason: "forms an angle with itself"}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProblem, fmt.Sprintf(format, args...))
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Validate checks that every id is unique and every reference resolves.
// It does not solve anything.
func Validate(p *Problem) error {
	_, err := buildIndex(p)
	return err
}

func buildIndex(p *Problem) (*index, error) {
	if !finitePositive(p.Width) || !finitePositive(p.Height) {
		return nil, invalid("canvas size %vx%v must be positive", p.Width, p.Height)
	}
	if len(p.Vertices) == 0 {
		return nil, invalid("no vertices declared")
	}
	ix := &index{
		vertices: make(map[string]bool),
		lines:    make(map[string]Line),
	}
	for i, v := range p.Vertices {
		if v.ID == "" {
			return nil, invalid("vertices[%d] has an empty id", i)
		}
		if ix.vertices[v.ID] {
			return nil, invalid("vertex %q declared twice", v.ID)
		}
		ix.vertices[v.ID] = true
		ix.vertexID = append(ix.vertexID, v.ID)
	}
	for i, c := range p.Constraints {
		var id string
		switch c := c.(type) {
		case Midpoint:
			id = c.ID
		case Intersect:
			id = c.ID
		default:
			continue
		}
		if id == "" {
			return nil, invalid("%s creates a vertex with an empty id", describe(i, c))
		}
		if ix.vertices[id] {
			return nil, invalid("%s creates vertex %q, which already exists", describe(i, c), id)
		}
		ix.vertices[id] = true
		ix.vertexID = append(ix.vertexID, id)
	}
	for i, l := range p.Lines {
		where := fmt.Sprintf("lines[%d]", i)
		if l.ID == "" {
			return nil, invalid("%s has an empty id", where)
		}
		if _, dup := ix.lines[l.ID]; dup {
			return nil, invalid("line %q declared twice", l.ID)
		}
		if err := ix.vertexRef(where, l.From); err != nil {
			return nil, err
		}
		if err := ix.vertexRef(where, l.To); err != nil {
			return nil, err
		}
		if l.From == l.To {
			return nil, &ReferenceError{Where: where, Kind: "line", ID: l.ID, Reason: "has identical endpoints"}
		}
		ix.lines[l.ID] = l
		ix.lineID = append(ix.lineID, l.ID)
	}
	for i, c := range p.Constraints {
		if err := ix.check(describe(i, c), c); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

func (ix *index) check(where string, c Constraint) error {
	switch c := c.(type) {
	case Angle:
		if math.IsNaN(c.Measure) || c.Measure < 0 || c.Measure >= 360 {
			return invalid("%s: measure %v must be in [0, 360)", where, c.Measure)
		}
		return ix.angleRef(where, c.Ref())

	case EqualLength:
		if len(c.Lines) < 2 && c.Value == nil {
			return invalid("%s: needs two lines or a value", where)
		}
		if len(c.Lines) == 0 {
			return invalid("%s: needs at least one line", where)
		}
		if c.Value != nil && !finitePositive(*c.Value) {
			return invalid("%s: value %v must be positive", where, *c.Value)
		}
		for _, id := range c.Lines {
			if err := ix.lineRef(where, id); err != nil {
				return err
			}
		}

	case EqualAngle:
		if len(c.Angles) < 2 && c.Value == nil {
			return invalid("%s: needs two angles or a value", where)
		}
		if len(c.Angles) == 0 {
			return invalid("%s: needs at least one angle", where)
		}
		if c.Value != nil && (math.IsNaN(*c.Value) || *c.Value < 0 || *c.Value > 180) {
			return invalid("%s: value %v must be in [0, 180]", where, *c.Value)
		}
		for _, a := range c.Angles {
			if err := ix.angleRef(where, a); err != nil {
				return err
			}
		}

	case Parallel:
		if len(c.Lines) < 2 {
			return invalid("%s: needs at least two lines", where)
		}
		for _, id := range c.Lines {
			if err := ix.lineRef(where, id); err != nil {
				return err
			}
		}

	case Perpendicular:
		for _, id := range c.Lines {
			if err := ix.lineRef(where, id); err != nil {
				return err
			}
		}
		if c.Lines[0] == c.Lines[1] {
			return &ReferenceError{Where: where, Kind: "line", ID: c.Lines[0], Reason: "cannot be perpendicular to itself"}
		}

	case Midpoint:
		return ix.lineRef(where, c.Line)

	case Intersect:
		if err := ix.lineRef(where, c.Line1); err != nil {
			return err
		}
		if err := ix.lineRef(where, c.Line2); err != nil {
			return err
		}
		if c.Line1 == c.Line2 {
			return &ReferenceError{Where: where, Kind: "line", ID: c.Line1, Reason: "cannot intersect itself"}
		}

	case Symmetry:
		return ix.checkSymmetry(where, c)

	case PresetPolygon:
		if len(c.Vertices) < 3 {
			return invalid("%s: needs at least three vertices", where)
		}
		if c.SideLength != nil && !finitePositive(*c.SideLength) {
			return invalid("%s: side length %v must be positive", where, *c.SideLength)
		}
		seen := make(map[string]bool, len(c.Vertices))
		for _, id := range c.Vertices {
			if err := ix.vertexRef(where, id); err != nil {
				return err
			}
			if seen[id] {
				return invalid("%s: vertex %q repeats", where, id)
			}
			seen[id] = true
		}
		_, err := ix.polygonEdges(where, c.Vertices)
		return err

	default:
		return invalid("%s: unsupported constraint", where)
	}
	return nil
}

func (ix *index) checkSymmetry(where string, c Symmetry) error {
	switch c.Axis.Canonical {
	case AxisNone:
		if err := ix.lineRef(where, c.Axis.Line); err != nil {
			return err
		}
	case AxisHorizontal, AxisVertical:
		if c.Axis.Line != "" {
			return invalid("%s: axis names both a line and a canonical axis", where)
		}
	default:
		return invalid("%s: unknown axis", where)
	}
	if len(c.Pairs) == 0 {
		return invalid("%s: needs at least one pair", where)
	}
	for _, p := range c.Pairs {
		_, aLine := ix.lines[p.A]
		_, bLine := ix.lines[p.B]
		switch {
		case aLine && bLine:
			if p.A == c.Axis.Line || p.B == c.Axis.Line {
				return &ReferenceError{Where: where, Kind: "line", ID: c.Axis.Line, Reason: "is both axis and mirrored element"}
			}
		case aLine || bLine:
			other := p.A
			if aLine {
				other = p.B
			}
			return &ReferenceError{Where: where, Kind: "vertex", ID: other, Reason: "is paired with a line; pairs must be two vertices or two lines"}
		default:
			if err := ix.vertexRef(where, p.A); err != nil {
				return err
			}
			if err := ix.vertexRef(where, p.B); err != nil {
				return err
			}
		}
	}
	return nil
}

// polygonEdges returns the declared line joining each consecutive pair of
// vertices, in either direction.
func (ix *index) polygonEdges(where string, vertices []string) ([]string, error) {
	edges := make([]string, len(vertices))
	for i, a := range vertices {
		b := vertices[(i+1)%len(vertices)]
		found := false
		for _, id := range ix.lineID {
			l := ix.lines[id]
			if l.From == a && l.To == b || l.From == b && l.To == a {
				edges[i] = id
				found = true
				break
			}
		}
		if !found {
			return nil, &ReferenceError{
				Where:  where,
				Kind:   "line",
				ID:     a + "-" + b,
				Reason: "is a polygon edge with no declared line",
			}
		}
	}
	return edges, nil
}

// regularPolygon adds the equations that, together with equal edges,
// make a polygon regular. It only arises from desugaring.
type regularPolygon struct {
	Vertices []string
}

func (regularPolygon) Kind() string { return "presetPolygon" }
func (regularPolygon) constraint()  {}

// desugar replaces every PresetPolygon by the constraints it stands for.
func desugar(p *Problem, ix *index) ([]Constraint, error) {
	out := make([]Constraint, 0, len(p.Constraints))
	for i, c := range p.Constraints {
		pp, ok := c.(PresetPolygon)
		if !ok {
			out = append(out, c)
			continue
		}
		edges, err := ix.polygonEdges(describe(i, c), pp.Vertices)
		if err != nil {
			return nil, err
		}
		if pp.Regular || pp.SideLength != nil {
			out = append(out, EqualLength{Lines: edges, Value: pp.SideLength})
		}
		if pp.Regular {
			out = append(out, regularPolygon{Vertices: pp.Vertices})
		}
	}
	return out, nil
}
