package diagram

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/gogpu/geodraw"
	"github.com/gogpu/geodraw/placement"
	"github.com/gogpu/geodraw/solver"
)

// WarnLabelPlacementDegraded marks a label that could not be placed
// without overlap.
const WarnLabelPlacementDegraded = "LabelPlacementDegraded"

// Warning is a non-fatal rendering problem.
type Warning struct {
	Code    string
	Owner   string // id of the element the label belongs to
	Message string
}

// Label is a placed text label.
type Label struct {
	Text     string
	Owner    string
	Rect     geodraw.Rect
	Degraded bool
}

// Result is a rendered diagram with the data behind it.
type Result struct {
	SVG       string
	ViewBox   geodraw.Rect
	Positions map[string]geodraw.Point
	Labels    []Label
	Warnings  []Warning
}

// Generate validates, solves and renders in, returning the SVG document.
// On any error no SVG is returned.
func Generate(ctx context.Context, in *Input, opts ...Option) (string, error) {
	res, err := GenerateResult(ctx, in, opts...)
	if err != nil {
		return "", err
	}
	return res.SVG, nil
}

// GenerateResult is Generate returning the solved positions, placed
// labels and warnings along with the SVG.
func GenerateResult(ctx context.Context, in *Input, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p, err := validate(in)
	if err != nil {
		return nil, err
	}
	sol, err := solver.Solve(ctx, p, o.solverOpts...)
	if err != nil {
		return nil, err
	}
	if o.verifyTol > 0 {
		if err := sol.Verify(p, o.verifyTol); err != nil {
			return nil, err
		}
	}

	var canvasOpts []geodraw.CanvasOption
	if o.fontFamily != "" {
		canvasOpts = append(canvasOpts, geodraw.WithFontFamily(o.fontFamily))
	}
	if o.background != "" {
		canvasOpts = append(canvasOpts, geodraw.WithBackground(o.background))
	}
	cv, err := geodraw.NewCanvas(in.Width, in.Height, canvasOpts...)
	if err != nil {
		return nil, err
	}

	r := &renderer{
		in:   in,
		p:    p,
		o:    o,
		cv:   cv,
		pos:  sol.Positions,
		ends: make(map[string][2]geodraw.Point),
		res:  &Result{Positions: sol.Positions},
	}
	r.area = r.drawingArea()
	cfg := o.placement
	if cfg.Bounds == (geodraw.Rect{}) {
		cfg.Bounds = r.area.Expand(o.padding)
	}
	r.eng = placement.New(cfg)

	for _, step := range []func() error{
		r.drawRegions,
		r.drawLines,
		r.drawAngleMarkers,
		r.drawVertices,
		r.drawLineLabels,
		r.drawRegionLabels,
	} {
		if err := step(); err != nil {
			return nil, err
		}
	}

	doc, err := cv.Finalize(o.padding)
	if err != nil {
		return nil, err
	}
	r.res.SVG = doc.String()
	r.res.ViewBox = doc.ViewBox()

	geodraw.Logger().Debug("diagram: rendered",
		"backend", sol.Backend,
		"vertices", len(sol.Order),
		"labels", len(r.res.Labels),
		"warnings", len(r.res.Warnings))
	return r.res, nil
}

type renderer struct {
	in   *Input
	p    *solver.Problem
	o    options
	cv   *geodraw.Canvas
	eng  *placement.Engine
	pos  map[string]geodraw.Point
	area geodraw.Rect

	// ends holds the drawn endpoints of each line; rays end on the
	// drawing area's boundary.
	ends map[string][2]geodraw.Point

	res *Result
}

// drawingArea is the canvas rectangle grown to cover every solved
// position.
func (r *renderer) drawingArea() geodraw.Rect {
	area := geodraw.RectXYWH(0, 0, r.in.Width, r.in.Height)
	for _, id := range r.orderedVertices() {
		area = area.AddPoint(r.pos[id])
	}
	return area
}

func (r *renderer) orderedVertices() []string {
	ids := make([]string, 0, len(r.pos))
	for _, v := range r.in.Vertices {
		ids = append(ids, v.ID)
	}
	return append(ids, r.p.VirtualVertices()...)
}

// centroid is the mean of all vertex positions.
func (r *renderer) centroid() geodraw.Point {
	ids := r.orderedVertices()
	xs := make([]float64, len(ids))
	ys := make([]float64, len(ids))
	for i, id := range ids {
		xs[i], ys[i] = r.pos[id].X, r.pos[id].Y
	}
	return geodraw.Pt(stat.Mean(xs, nil), stat.Mean(ys, nil))
}

func (r *renderer) ink() geodraw.Style {
	return geodraw.Style{Stroke: r.o.ink, StrokeWidth: r.o.strokeWidth, LineCap: geodraw.CapRound}
}

func (r *renderer) textStyle() geodraw.TextStyle {
	return geodraw.TextStyle{
		FontSize:  r.o.fontSize,
		Fill:      r.o.ink,
		Anchor:    geodraw.AnchorMiddle,
		Baseline:  geodraw.BaselineMiddle,
		Halo:      geodraw.White.Paint(),
		HaloWidth: 3,
	}
}

// placeLabel finds a free spot near ideal and draws text there.
func (r *renderer) placeLabel(owner, text string, ideal geodraw.Point) error {
	style := r.textStyle()
	size := placement.Size{W: geodraw.EstimateTextWidth(text, r.o.fontSize), H: r.o.fontSize}
	placed := r.eng.Place(ideal, size)
	c := placed.Center()
	if _, err := r.cv.DrawText(c.X, c.Y, text, style); err != nil {
		return fmt.Errorf("diagram: label of %s: %w", owner, err)
	}
	r.res.Labels = append(r.res.Labels, Label{Text: text, Owner: owner, Rect: placed.Rect, Degraded: placed.Degraded})
	if placed.Degraded {
		w := Warning{
			Code:    WarnLabelPlacementDegraded,
			Owner:   owner,
			Message: fmt.Sprintf("label %q of %s overlaps other elements", text, owner),
		}
		r.res.Warnings = append(r.res.Warnings, w)
		geodraw.Logger().Warn("diagram: label placement degraded", "owner", owner, "text", text)
	}
	return nil
}

func (r *renderer) drawRegions() error {
	for i, reg := range r.in.ShadedRegions {
		pts := make([]geodraw.Point, len(reg.Vertices))
		for k, id := range reg.Vertices {
			pts[k] = r.pos[id]
		}
		fill := geodraw.Paint(reg.Fill)
		if fill == "" {
			fill = geodraw.HSL(210+47*float64(i), 0.65, 0.75).Paint()
		}
		if reg.Hatch {
			id := fmt.Sprintf("hatch%d", i)
			if err := r.cv.AddHatchPattern(id, geodraw.Hatch{Angle: 45, Stroke: fill}); err != nil {
				return err
			}
			fill = geodraw.URL(id)
		}
		opacity := 0.35
		if reg.Opacity != nil {
			opacity = *reg.Opacity
		}
		style := geodraw.Style{Fill: fill, FillOpacity: geodraw.Opacity(opacity), Stroke: geodraw.PaintNone}
		if err := r.cv.DrawPolygon(pts, style); err != nil {
			return fmt.Errorf("diagram: region %s: %w", reg.ID, err)
		}
	}
	return nil
}

// rayExit returns where the ray from a through b leaves area, or b when
// b already lies outside.
func rayExit(a, b geodraw.Point, area geodraw.Rect) geodraw.Point {
	d := b.Sub(a)
	t := math.Inf(1)
	switch {
	case d.X > 0:
		t = math.Min(t, (area.MaxX-a.X)/d.X)
	case d.X < 0:
		t = math.Min(t, (area.MinX-a.X)/d.X)
	}
	switch {
	case d.Y > 0:
		t = math.Min(t, (area.MaxY-a.Y)/d.Y)
	case d.Y < 0:
		t = math.Min(t, (area.MinY-a.Y)/d.Y)
	}
	if math.IsInf(t, 1) || t <= 1 {
		return b
	}
	return a.Add(d.Mul(t))
}

func (r *renderer) drawLines() error {
	for _, l := range r.in.Lines {
		a, b := r.pos[l.From], r.pos[l.To]
		if l.IsRay {
			b = rayExit(a, b, r.area)
		}
		style := r.ink()
		if l.Style == StyleDashed {
			style.DashArray = []float64{6, 4}
		}
		if l.Arrow {
			if !r.cv.HasDef("arrow") {
				if err := r.cv.AddArrowMarker("arrow", r.o.ink, 8); err != nil {
					return err
				}
			}
			style.MarkerEnd = "arrow"
		}
		if err := r.cv.DrawLine(a.X, a.Y, b.X, b.Y, style); err != nil {
			return fmt.Errorf("diagram: line %s: %w", l.ID, err)
		}
		r.ends[l.ID] = [2]geodraw.Point{a, b}
		r.eng.AddObstacle(placement.Segment{A: a, B: b})
	}
	return nil
}

// rayDir is the unit direction from vertex along line: towards the
// line's other endpoint, or the line's own direction when vertex is not
// an endpoint.
func (r *renderer) rayDir(vertex, lineID string) geodraw.Point {
	l, _ := r.p.LineByID(lineID)
	var d geodraw.Point
	switch vertex {
	case l.From:
		d = r.pos[l.To].Sub(r.pos[l.From])
	case l.To:
		d = r.pos[l.From].Sub(r.pos[l.To])
	default:
		d = r.pos[l.To].Sub(r.pos[l.From])
	}
	return d.Normalize()
}

func (r *renderer) drawAngleMarkers() error {
	for _, c := range r.p.Constraints {
		a, ok := c.(solver.Angle)
		if !ok || a.Marker.Hidden || a.Measure == 0 {
			continue
		}
		if err := r.drawAngleMarker(a); err != nil {
			return fmt.Errorf("diagram: angle at %s: %w", a.Vertex, err)
		}
	}
	return nil
}

func (r *renderer) drawAngleMarker(a solver.Angle) error {
	v := r.pos[a.Vertex]
	u, w := r.rayDir(a.Vertex, a.Line1), r.rayDir(a.Vertex, a.Line2)
	style := geodraw.Style{Stroke: r.o.ink, StrokeWidth: r.o.strokeWidth * 0.75, Fill: geodraw.PaintNone}

	var bisector geodraw.Point
	offset := r.o.labelOffset
	if a.Measure == 90 {
		l := r.o.markerLength
		p1 := v.Add(u.Mul(l))
		p2 := p1.Add(w.Mul(l))
		p3 := v.Add(w.Mul(l))
		path := geodraw.NewPathBuilder().Polyline(p1, p2, p3)
		if err := r.cv.DrawPath(path, style); err != nil {
			return err
		}
		r.eng.AddObstacle(placement.Segment{A: p1, B: p2})
		r.eng.AddObstacle(placement.Segment{A: p2, B: p3})
		bisector = u.Add(w).Normalize()
	} else {
		radius := a.Marker.Radius
		if radius == 0 {
			radius = r.o.markerRadius
		}
		reflex := a.Measure > 180 || a.Marker.LargeArc
		cross := u.Cross(w)
		sweep := cross > 0
		if math.Abs(cross) < 1e-9 {
			sweep = a.Sweep
		}
		if reflex {
			sweep = !sweep
		}
		start, end := v.Add(u.Mul(radius)), v.Add(w.Mul(radius))
		path := geodraw.NewPathBuilder().
			MoveTo(start.X, start.Y).
			ArcTo(radius, radius, 0, reflex, sweep, end.X, end.Y)
		if err := r.cv.DrawPath(path, style); err != nil {
			return err
		}

		a0, a1 := u.Angle(), w.Angle()
		if sweep {
			a1 = a0 + positiveAngle(a1-a0)
		} else {
			a1 = a0 - positiveAngle(a0-a1)
		}
		r.eng.AddArcObstacle(v, radius, a0, a1, 12)
		mid := (a0 + a1) / 2
		bisector = geodraw.Pt(math.Cos(mid), math.Sin(mid))
		if radius >= offset {
			offset = radius + r.o.fontSize
		}
	}

	if a.Marker.Label == "" {
		return nil
	}
	return r.placeLabel(a.Vertex, a.Marker.Label, v.Add(bisector.Mul(offset)))
}

// positiveAngle wraps t into [0, 2π).
func positiveAngle(t float64) float64 {
	t = math.Mod(t, 2*math.Pi)
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}

func (r *renderer) drawVertices() error {
	ids := r.orderedVertices()
	dot := geodraw.Style{Fill: r.o.ink}
	for _, id := range ids {
		p := r.pos[id]
		if err := r.cv.DrawCircle(p.X, p.Y, r.o.vertexRadius, dot); err != nil {
			return fmt.Errorf("diagram: vertex %s: %w", id, err)
		}
		r.eng.Reserve(geodraw.RectXYWH(p.X-r.o.vertexRadius, p.Y-r.o.vertexRadius, 2*r.o.vertexRadius, 2*r.o.vertexRadius))
	}

	center := r.centroid()
	dist := r.o.vertexRadius + r.o.fontSize
	for _, v := range r.in.Vertices {
		if v.Label == nil || *v.Label == "" {
			continue
		}
		p := r.pos[v.ID]
		out := p.Sub(center).Normalize()
		if out == (geodraw.Point{}) {
			out = geodraw.Pt(0, -1)
		}
		if err := r.placeLabel(v.ID, *v.Label, p.Add(out.Mul(dist))); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) drawLineLabels() error {
	center := r.centroid()
	for _, l := range r.in.Lines {
		if l.Label == nil || *l.Label == "" {
			continue
		}
		e := r.ends[l.ID]
		mid := e[0].Lerp(e[1], 0.5)
		n := e[1].Sub(e[0]).Perp().Normalize()
		if n.Dot(mid.Sub(center)) < 0 {
			n = n.Mul(-1)
		}
		if err := r.placeLabel(l.ID, *l.Label, mid.Add(n.Mul(r.o.fontSize*0.8))); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) drawRegionLabels() error {
	regions := make(map[string]ShadedRegion, len(r.in.ShadedRegions))
	for _, reg := range r.in.ShadedRegions {
		regions[reg.ID] = reg
	}
	for _, rl := range r.in.RegionLabels {
		var at geodraw.Point
		owner := rl.Region
		if rl.Region != "" {
			pts := make([]geodraw.Point, len(regions[rl.Region].Vertices))
			for i, id := range regions[rl.Region].Vertices {
				pts[i] = r.pos[id]
			}
			at = polygonCentroid(pts)
		} else {
			owner = rl.Line
			t := 0.5
			if rl.Offset != nil {
				t = *rl.Offset
			}
			l, _ := r.p.LineByID(rl.Line)
			at = r.pos[l.From].Lerp(r.pos[l.To], t)
		}
		if err := r.placeLabel(owner, rl.Text, at); err != nil {
			return err
		}
	}
	return nil
}

// polygonCentroid returns the area centroid of a simple polygon, or the
// mean of its vertices when the area vanishes.
func polygonCentroid(pts []geodraw.Point) geodraw.Point {
	var area, cx, cy float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		c := p.Cross(q)
		area += c
		cx += (p.X + q.X) * c
		cy += (p.Y + q.Y) * c
	}
	if math.Abs(area) > 1e-9 {
		return geodraw.Pt(cx/(3*area), cy/(3*area))
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return geodraw.Pt(stat.Mean(xs, nil), stat.Mean(ys, nil))
}
