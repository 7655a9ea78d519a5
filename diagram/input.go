package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/geodraw/solver"
)

// Input is a diagram document.
type Input struct {
	Width         float64        `json:"width" yaml:"width"`
	Height        float64        `json:"height" yaml:"height"`
	Vertices      []Vertex       `json:"vertices" yaml:"vertices"`
	Lines         []Line         `json:"lines" yaml:"lines"`
	Constraints   []Constraint   `json:"constraints" yaml:"constraints"`
	ShadedRegions []ShadedRegion `json:"shadedRegions,omitempty" yaml:"shadedRegions,omitempty"`
	RegionLabels  []RegionLabel  `json:"regionLabels,omitempty" yaml:"regionLabels,omitempty"`
}

// Vertex declares a point. Label is drawn next to it when set.
type Vertex struct {
	ID    string  `json:"id" yaml:"id"`
	Label *string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Line styles.
const (
	StyleSolid  = "solid"
	StyleDashed = "dashed"
)

// Line declares a segment, or a ray through To when IsRay is set.
type Line struct {
	ID    string  `json:"id" yaml:"id"`
	From  string  `json:"from" yaml:"from"`
	To    string  `json:"to" yaml:"to"`
	IsRay bool    `json:"isRay,omitempty" yaml:"isRay,omitempty"`
	Style string  `json:"style,omitempty" yaml:"style,omitempty"`
	Label *string `json:"label,omitempty" yaml:"label,omitempty"`
	Arrow bool    `json:"arrow,omitempty" yaml:"arrow,omitempty"`
}

// ShadedRegion fills the polygon through Vertices.
type ShadedRegion struct {
	ID       string   `json:"id" yaml:"id"`
	Vertices []string `json:"vertices" yaml:"vertices"`
	Fill     string   `json:"fill,omitempty" yaml:"fill,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Hatch    bool     `json:"hatch,omitempty" yaml:"hatch,omitempty"`
}

// RegionLabel is text placed at the centroid of a shaded region, or at
// Offset (0 at From, 1 at To) along a line.
type RegionLabel struct {
	Text   string   `json:"text" yaml:"text"`
	Region string   `json:"region,omitempty" yaml:"region,omitempty"`
	Line   string   `json:"line,omitempty" yaml:"line,omitempty"`
	Offset *float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// Constraint wraps a solver constraint decoded from a document object
// whose "type" field selects the kind.
type Constraint struct {
	solver.Constraint
}

type typeProbe struct {
	Type string `json:"type" yaml:"type"`
}

type angleDoc struct {
	Type     string  `json:"type" yaml:"type"`
	Vertex   string  `json:"vertex" yaml:"vertex"`
	Line1    string  `json:"line1" yaml:"line1"`
	Line2    string  `json:"line2" yaml:"line2"`
	Measure  float64 `json:"measure" yaml:"measure"`
	Sweep    bool    `json:"sweep,omitempty" yaml:"sweep,omitempty"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Radius   float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	LargeArc bool    `json:"largeArc,omitempty" yaml:"largeArc,omitempty"`
	Hidden   bool    `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

func (d angleDoc) constraint() (solver.Constraint, error) {
	return solver.Angle{
		Vertex:  d.Vertex,
		Line1:   d.Line1,
		Line2:   d.Line2,
		Measure: d.Measure,
		Sweep:   d.Sweep,
		Marker: solver.AngleMarker{
			Radius:   d.Radius,
			LargeArc: d.LargeArc,
			Label:    d.Label,
			Hidden:   d.Hidden,
		},
	}, nil
}

type equalLengthDoc struct {
	Type  string   `json:"type" yaml:"type"`
	Lines []string `json:"lines" yaml:"lines"`
	Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

func (d equalLengthDoc) constraint() (solver.Constraint, error) {
	return solver.EqualLength{Lines: d.Lines, Value: d.Value}, nil
}

type angleRefDoc struct {
	Vertex string `json:"vertex" yaml:"vertex"`
	Line1  string `json:"line1" yaml:"line1"`
	Line2  string `json:"line2" yaml:"line2"`
}

type equalAngleDoc struct {
	Type   string        `json:"type" yaml:"type"`
	Angles []angleRefDoc `json:"angles" yaml:"angles"`
	Value  *float64      `json:"value,omitempty" yaml:"value,omitempty"`
}

func (d equalAngleDoc) constraint() (solver.Constraint, error) {
	refs := make([]solver.AngleRef, len(d.Angles))
	for i, a := range d.Angles {
		refs[i] = solver.AngleRef{Vertex: a.Vertex, Line1: a.Line1, Line2: a.Line2}
	}
	return solver.EqualAngle{Angles: refs, Value: d.Value}, nil
}

type parallelDoc struct {
	Type  string   `json:"type" yaml:"type"`
	Lines []string `json:"lines" yaml:"lines"`
}

func (d parallelDoc) constraint() (solver.Constraint, error) {
	return solver.Parallel{Lines: d.Lines}, nil
}

type perpendicularDoc struct {
	Type  string   `json:"type" yaml:"type"`
	Lines []string `json:"lines" yaml:"lines"`
}

func (d perpendicularDoc) constraint() (solver.Constraint, error) {
	if len(d.Lines) != 2 {
		return nil, fmt.Errorf("perpendicular needs exactly two lines, got %d", len(d.Lines))
	}
	return solver.Perpendicular{Lines: [2]string{d.Lines[0], d.Lines[1]}}, nil
}

type midpointDoc struct {
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id" yaml:"id"`
	Line string `json:"line" yaml:"line"`
}

func (d midpointDoc) constraint() (solver.Constraint, error) {
	return solver.Midpoint{ID: d.ID, Line: d.Line}, nil
}

type intersectDoc struct {
	Type  string `json:"type" yaml:"type"`
	ID    string `json:"id" yaml:"id"`
	Line1 string `json:"line1" yaml:"line1"`
	Line2 string `json:"line2" yaml:"line2"`
}

func (d intersectDoc) constraint() (solver.Constraint, error) {
	return solver.Intersect{ID: d.ID, Line1: d.Line1, Line2: d.Line2}, nil
}

type symmetryDoc struct {
	Type  string      `json:"type" yaml:"type"`
	Axis  string      `json:"axis" yaml:"axis"`
	Pairs [][2]string `json:"pairs" yaml:"pairs"`
}

func (d symmetryDoc) constraint() (solver.Constraint, error) {
	var axis solver.SymmetryAxis
	switch d.Axis {
	case "horizontal":
		axis.Canonical = solver.AxisHorizontal
	case "vertical":
		axis.Canonical = solver.AxisVertical
	default:
		axis.Line = d.Axis
	}
	pairs := make([]solver.Pair, len(d.Pairs))
	for i, p := range d.Pairs {
		pairs[i] = solver.Pair{A: p[0], B: p[1]}
	}
	return solver.Symmetry{Axis: axis, Pairs: pairs}, nil
}

type presetPolygonDoc struct {
	Type       string   `json:"type" yaml:"type"`
	Vertices   []string `json:"vertices" yaml:"vertices"`
	Regular    bool     `json:"regular,omitempty" yaml:"regular,omitempty"`
	SideLength *float64 `json:"sideLength,omitempty" yaml:"sideLength,omitempty"`
}

func (d presetPolygonDoc) constraint() (solver.Constraint, error) {
	return solver.PresetPolygon{Vertices: d.Vertices, Regular: d.Regular, SideLength: d.SideLength}, nil
}

type constraintDoc interface {
	constraint() (solver.Constraint, error)
}

// newConstraintDoc returns a pointer to the document struct for kind.
func newConstraintDoc(kind string) (constraintDoc, error) {
	switch kind {
	case "angle":
		return &angleDoc{}, nil
	case "equalLength":
		return &equalLengthDoc{}, nil
	case "equalAngle":
		return &equalAngleDoc{}, nil
	case "parallel":
		return &parallelDoc{}, nil
	case "perpendicular":
		return &perpendicularDoc{}, nil
	case "midpoint":
		return &midpointDoc{}, nil
	case "intersect":
		return &intersectDoc{}, nil
	case "symmetry":
		return &symmetryDoc{}, nil
	case "presetPolygon":
		return &presetPolygonDoc{}, nil
	case "":
		return nil, fmt.Errorf("constraint has no type")
	}
	return nil, fmt.Errorf("unknown constraint type %q", kind)
}

// UnmarshalJSON decodes a constraint object, rejecting fields its type
// does not define.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var probe typeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	doc, err := newConstraintDoc(probe.Type)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("%s constraint: %w", probe.Type, err)
	}
	c.Constraint, err = doc.constraint()
	return err
}

// UnmarshalYAML decodes a constraint mapping, rejecting fields its type
// does not define.
func (c *Constraint) UnmarshalYAML(node *yaml.Node) error {
	var probe typeProbe
	if err := node.Decode(&probe); err != nil {
		return err
	}
	doc, err := newConstraintDoc(probe.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("line %d: %s constraint: %w", node.Line, probe.Type, err)
	}
	c.Constraint, err = doc.constraint()
	return err
}
