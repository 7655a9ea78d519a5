package geodraw

import (
	"strings"
)

// LineCap is the SVG stroke-linecap value.
type LineCap uint8

const (
	// CapButt ends strokes flush with the endpoint (SVG default).
	CapButt LineCap = iota
	// CapRound ends strokes with a half circle.
	CapRound
	// CapSquare extends strokes by half the stroke width.
	CapSquare
)

func (c LineCap) String() string {
	switch c {
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	default:
		return "butt"
	}
}

// LineJoin is the SVG stroke-linejoin value.
type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

func (j LineJoin) String() string {
	switch j {
	case JoinRound:
		return "round"
	case JoinBevel:
		return "bevel"
	default:
		return "miter"
	}
}

// Style holds presentation attributes shared by all shape primitives.
// Zero values mean "not set": no attribute is emitted and the SVG
// default applies.
type Style struct {
	Fill          Paint
	Stroke        Paint
	StrokeWidth   float64
	FillOpacity   *float64
	StrokeOpacity *float64
	Opacity       *float64
	DashArray     []float64
	LineCap       LineCap
	LineJoin      LineJoin
	MarkerStart   string // definition id
	MarkerEnd     string // definition id
	Class         string
}

// Opacity returns a pointer to v for the optional opacity fields of Style.
func Opacity(v float64) *float64 {
	return &v
}

// strokeHalf returns half the effective stroke width, or zero when the
// style has no visible stroke.
func (s Style) strokeHalf() float64 {
	if !s.Stroke.visible() {
		return 0
	}
	w := s.StrokeWidth
	if w == 0 {
		w = 1 // SVG default stroke-width
	}
	return w / 2
}

func (s Style) validate(c *checker) {
	c.paint("fill", s.Fill)
	c.paint("stroke", s.Stroke)
	c.nonNegative("strokeWidth", s.StrokeWidth)
	for _, o := range []struct {
		name string
		v    *float64
	}{{"fillOpacity", s.FillOpacity}, {"strokeOpacity", s.StrokeOpacity}, {"opacity", s.Opacity}} {
		if o.v != nil {
			c.unit(o.name, *o.v)
		}
	}
	for _, d := range s.DashArray {
		c.nonNegative("dashArray", d)
	}
	if s.MarkerStart != "" {
		c.id("markerStart", s.MarkerStart)
	}
	if s.MarkerEnd != "" {
		c.id("markerEnd", s.MarkerEnd)
	}
}

// apply writes the style as attributes in a fixed order.
func (s Style) apply(e *element) {
	if s.Fill != "" {
		e.set("fill", string(s.Fill))
	}
	if s.FillOpacity != nil {
		e.setNum("fill-opacity", *s.FillOpacity)
	}
	if s.Stroke != "" {
		e.set("stroke", string(s.Stroke))
	}
	if s.StrokeWidth != 0 {
		e.setNum("stroke-width", s.StrokeWidth)
	}
	if s.StrokeOpacity != nil {
		e.setNum("stroke-opacity", *s.StrokeOpacity)
	}
	if len(s.DashArray) > 0 {
		parts := make([]string, len(s.DashArray))
		for i, d := range s.DashArray {
			parts[i] = ff(d)
		}
		e.set("stroke-dasharray", strings.Join(parts, " "))
	}
	if s.LineCap != CapButt {
		e.set("stroke-linecap", s.LineCap.String())
	}
	if s.LineJoin != JoinMiter {
		e.set("stroke-linejoin", s.LineJoin.String())
	}
	if s.Opacity != nil {
		e.setNum("opacity", *s.Opacity)
	}
	if s.MarkerStart != "" {
		e.set("marker-start", "url(#"+s.MarkerStart+")")
	}
	if s.MarkerEnd != "" {
		e.set("marker-end", "url(#"+s.MarkerEnd+")")
	}
	if s.Class != "" {
		e.set("class", s.Class)
	}
}

// TextAnchor is the SVG text-anchor value.
type TextAnchor uint8

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

func (a TextAnchor) String() string {
	switch a {
	case AnchorMiddle:
		return "middle"
	case AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

// Baseline is the SVG dominant-baseline value.
type Baseline uint8

const (
	BaselineAlphabetic Baseline = iota
	BaselineMiddle
	BaselineHanging
)

func (b Baseline) String() string {
	switch b {
	case BaselineMiddle:
		return "middle"
	case BaselineHanging:
		return "hanging"
	default:
		return "alphabetic"
	}
}

// TextStyle controls DrawText.
type TextStyle struct {
	FontSize   float64 // DefaultFontSize when zero
	FontFamily string
	FontWeight string
	FontStyle  string
	Fill       Paint // black when empty
	Anchor     TextAnchor
	Baseline   Baseline
	Rotate     float64 // degrees, around the anchor point
	MaxWidth   float64 // wrap width; zero disables wrapping
	LineHeight float64 // multiple of FontSize; DefaultLineHeight when zero
	Halo       Paint   // outline drawn behind the glyphs
	HaloWidth  float64
	Opacity    *float64
	Class      string
}

func (s TextStyle) fontSize() float64 {
	if s.FontSize == 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

func (s TextStyle) lineHeight() float64 {
	if s.LineHeight == 0 {
		return DefaultLineHeight
	}
	return s.LineHeight
}
