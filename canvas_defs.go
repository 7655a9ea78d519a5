package geodraw

import (
	"github.com/aymerick/douceur/parser"
)

// AddDef registers pre-serialized definition markup under id. The markup
// is emitted verbatim inside <defs>; it is the caller's job to give its
// root element the same id.
func (cv *Canvas) AddDef(id, markup string) error {
	c := checker{op: "AddDef"}
	c.id("id", id)
	if markup == "" {
		c.fail("markup", markup, "must not be empty")
	}
	if c.err != nil {
		return c.err
	}
	return cv.pushDef(id, rawNode(markup))
}

// AddStyle adds a <style> block. The CSS is parsed first and rejected if
// malformed; the normalized stylesheet is what gets emitted.
func (cv *Canvas) AddStyle(css string) error {
	sheet, err := parser.Parse(css)
	if err != nil {
		return &ParamError{Op: "AddStyle", Param: "css", Value: len(css), Reason: "is not valid CSS: " + err.Error()}
	}
	e := newElement("style").set("type", "text/css")
	e.text = sheet.String()
	return cv.pushDef("", e)
}

// Hatch describes a line hatch pattern. Zero fields take defaults.
type Hatch struct {
	Spacing     float64 // distance between lines, default 6
	Angle       float64 // degrees; 0 gives vertical lines
	Stroke      Paint   // default black
	StrokeWidth float64 // default 1
	Background  Paint
}

// AddHatchPattern registers a hatch pattern usable as URL(id).
func (cv *Canvas) AddHatchPattern(id string, h Hatch) error {
	c := checker{op: "AddHatchPattern"}
	c.id("id", id)
	c.nonNegative("spacing", h.Spacing)
	c.finite("angle", h.Angle)
	c.nonNegative("strokeWidth", h.StrokeWidth)
	c.paint("stroke", h.Stroke)
	c.paint("background", h.Background)
	if c.err != nil {
		return c.err
	}
	if h.Spacing == 0 {
		h.Spacing = 6
	}
	if h.StrokeWidth == 0 {
		h.StrokeWidth = 1
	}
	if h.Stroke == "" {
		h.Stroke = Paint(Black.Hex())
	}

	p := newElement("pattern").
		set("id", id).
		set("patternUnits", "userSpaceOnUse").
		setNum("width", h.Spacing).
		setNum("height", h.Spacing)
	if h.Angle != 0 {
		p.set("patternTransform", "rotate("+ff(h.Angle)+")")
	}
	if h.Background.visible() {
		p.append(newElement("rect").
			setNum("width", h.Spacing).setNum("height", h.Spacing).
			set("fill", string(h.Background)))
	}
	p.append(newElement("line").
		setNum("x1", 0).setNum("y1", 0).
		setNum("x2", 0).setNum("y2", h.Spacing).
		set("stroke", string(h.Stroke)).
		setNum("stroke-width", h.StrokeWidth))
	return cv.pushDef(id, p)
}

// GradientStop is a color at an offset in [0, 1].
type GradientStop struct {
	Offset float64
	Color  RGBA
}

// LinearGradient runs from (X1, Y1) to (X2, Y2) in objectBoundingBox
// fractions.
type LinearGradient struct {
	X1, Y1, X2, Y2 float64
	Stops          []GradientStop
}

// RadialGradient is centered at (CX, CY) with radius R, optionally with a
// distinct focal point, in objectBoundingBox fractions.
type RadialGradient struct {
	CX, CY, R float64
	FX, FY    *float64
	Stops     []GradientStop
}

func checkStops(c *checker, stops []GradientStop) {
	if len(stops) == 0 {
		c.fail("stops", 0, "must not be empty")
	}
	prev := 0.0
	for _, s := range stops {
		c.unit("stop.offset", s.Offset)
		if s.Offset < prev {
			c.fail("stop.offset", s.Offset, "must be non-decreasing")
		}
		prev = s.Offset
		c.unit("stop.color.r", s.Color.R)
		c.unit("stop.color.g", s.Color.G)
		c.unit("stop.color.b", s.Color.B)
		c.unit("stop.color.a", s.Color.A)
	}
}

func stopElements(stops []GradientStop) []node {
	out := make([]node, len(stops))
	for i, s := range stops {
		e := newElement("stop").
			setNum("offset", s.Offset).
			set("stop-color", s.Color.Hex())
		if s.Color.A < 1 {
			e.setNum("stop-opacity", s.Color.A)
		}
		out[i] = e
	}
	return out
}

// AddLinearGradient registers a linear gradient usable as URL(id).
func (cv *Canvas) AddLinearGradient(id string, g LinearGradient) error {
	c := checker{op: "AddLinearGradient"}
	c.id("id", id)
	c.point("start", Pt(g.X1, g.Y1))
	c.point("end", Pt(g.X2, g.Y2))
	checkStops(&c, g.Stops)
	if c.err != nil {
		return c.err
	}
	e := newElement("linearGradient").
		set("id", id).
		setNum("x1", g.X1).setNum("y1", g.Y1).
		setNum("x2", g.X2).setNum("y2", g.Y2).
		append(stopElements(g.Stops)...)
	return cv.pushDef(id, e)
}

// AddRadialGradient registers a radial gradient usable as URL(id).
func (cv *Canvas) AddRadialGradient(id string, g RadialGradient) error {
	c := checker{op: "AddRadialGradient"}
	c.id("id", id)
	c.point("center", Pt(g.CX, g.CY))
	c.positive("r", g.R)
	if g.FX != nil {
		c.finite("fx", *g.FX)
	}
	if g.FY != nil {
		c.finite("fy", *g.FY)
	}
	checkStops(&c, g.Stops)
	if c.err != nil {
		return c.err
	}
	e := newElement("radialGradient").
		set("id", id).
		setNum("cx", g.CX).setNum("cy", g.CY).setNum("r", g.R)
	if g.FX != nil {
		e.setNum("fx", *g.FX)
	}
	if g.FY != nil {
		e.setNum("fy", *g.FY)
	}
	e.append(stopElements(g.Stops)...)
	return cv.pushDef(id, e)
}

// AddArrowMarker registers an arrowhead marker usable as Style.MarkerEnd
// (or MarkerStart; the marker reverses automatically at the start).
func (cv *Canvas) AddArrowMarker(id string, fill Paint, size float64) error {
	c := checker{op: "AddArrowMarker"}
	c.id("id", id)
	c.paint("fill", fill)
	c.positive("size", size)
	if c.err != nil {
		return c.err
	}
	if fill == "" {
		fill = Paint(Black.Hex())
	}
	head := NewPathBuilder().MoveTo(0, 0).LineTo(10, 5).LineTo(0, 10).ClosePath()
	m := newElement("marker").
		set("id", id).
		set("viewBox", "0 0 10 10").
		setNum("refX", 9).setNum("refY", 5).
		setNum("markerWidth", size).setNum("markerHeight", size).
		set("orient", "auto-start-reverse").
		append(newElement("path").set("d", head.D()).set("fill", string(fill)))
	return cv.pushDef(id, m)
}
