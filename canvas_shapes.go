package geodraw

import (
	"strings"
)

// lineBounds returns the box of a stroked segment including cap geometry.
func lineBounds(p1, p2 Point, hw float64, lineCap LineCap) Rect {
	if hw == 0 {
		return BoundsOf(p1, p2)
	}
	d := p2.Sub(p1).Normalize()
	if d == (Point{}) || lineCap == CapRound {
		return BoundsOf(p1, p2).Expand(hw)
	}
	n := d.Perp().Mul(hw)
	if lineCap == CapSquare {
		e := d.Mul(hw)
		p1, p2 = p1.Sub(e), p2.Add(e)
	}
	return BoundsOf(p1.Add(n), p1.Sub(n), p2.Add(n), p2.Sub(n))
}

// DrawLine draws a straight segment.
func (cv *Canvas) DrawLine(x1, y1, x2, y2 float64, style Style) error {
	c := checker{op: "DrawLine"}
	c.point("p1", Pt(x1, y1))
	c.point("p2", Pt(x2, y2))
	style.validate(&c)
	if c.err != nil {
		return c.err
	}
	e := newElement("line").
		setNum("x1", x1).setNum("y1", y1).
		setNum("x2", x2).setNum("y2", y2)
	style.apply(e)
	cv.push(e, lineBounds(Pt(x1, y1), Pt(x2, y2), style.strokeHalf(), style.LineCap))
	return nil
}

// DrawCircle draws a circle centered at (cx, cy).
func (cv *Canvas) DrawCircle(cx, cy, r float64, style Style) error {
	c := checker{op: "DrawCircle"}
	c.point("center", Pt(cx, cy))
	c.nonNegative("r", r)
	style.validate(&c)
	if c.err != nil {
		return c.err
	}
	e := newElement("circle").setNum("cx", cx).setNum("cy", cy).setNum("r", r)
	style.apply(e)
	cv.push(e, Rect{MinX: cx - r, MinY: cy - r, MaxX: cx + r, MaxY: cy + r}.Expand(style.strokeHalf()))
	return nil
}

// DrawEllipse draws an axis-aligned ellipse centered at (cx, cy).
func (cv *Canvas) DrawEllipse(cx, cy, rx, ry float64, style Style) error {
	c := checker{op: "DrawEllipse"}
	c.point("center", Pt(cx, cy))
	c.nonNegative("rx", rx)
	c.nonNegative("ry", ry)
	style.validate(&c)
	if c.err != nil {
		return c.err
	}
	e := newElement("ellipse").
		setNum("cx", cx).setNum("cy", cy).
		setNum("rx", rx).setNum("ry", ry)
	style.apply(e)
	cv.push(e, Rect{MinX: cx - rx, MinY: cy - ry, MaxX: cx + rx, MaxY: cy + ry}.Expand(style.strokeHalf()))
	return nil
}

// DrawRect draws an axis-aligned rectangle.
func (cv *Canvas) DrawRect(x, y, w, h float64, style Style) error {
	return cv.drawRect("DrawRect", x, y, w, h, 0, style)
}

// DrawRoundedRect draws a rectangle with corner radius r.
func (cv *Canvas) DrawRoundedRect(x, y, w, h, r float64, style Style) error {
	return cv.drawRect("DrawRoundedRect", x, y, w, h, r, style)
}

func (cv *Canvas) drawRect(op string, x, y, w, h, r float64, style Style) error {
	c := checker{op: op}
	c.point("origin", Pt(x, y))
	c.nonNegative("width", w)
	c.nonNegative("height", h)
	c.nonNegative("radius", r)
	style.validate(&c)
	if c.err != nil {
		return c.err
	}
	e := newElement("rect").
		setNum("x", x).setNum("y", y).
		setNum("width", w).setNum("height", h)
	if r > 0 {
		e.setNum("rx", r)
	}
	style.apply(e)
	cv.push(e, RectXYWH(x, y, w, h).Expand(style.strokeHalf()))
	return nil
}

// DrawPath draws the path accumulated by b. The extents use the
// builder's conservative bounds grown by half the stroke width.
func (cv *Canvas) DrawPath(b *PathBuilder, style Style) error {
	c := checker{op: "DrawPath"}
	if b == nil || b.Empty() {
		return ErrEmptyPath
	}
	if err := b.Err(); err != nil {
		return err
	}
	style.validate(&c)
	if c.err != nil {
		return c.err
	}
	e := newElement("path").set("d", b.D())
	style.apply(e)
	bounds, _ := b.Bounds()
	cv.push(e, bounds.Expand(style.strokeHalf()))
	return nil
}

// DrawPolygon draws a closed polygon through pts.
func (cv *Canvas) DrawPolygon(pts []Point, style Style) error {
	return cv.drawPoly("polygon", pts, style)
}

// DrawPolyline draws an open polyline through pts.
func (cv *Canvas) DrawPolyline(pts []Point, style Style) error {
	return cv.drawPoly("polyline", pts, style)
}

func (cv *Canvas) drawPoly(name string, pts []Point, style Style) error {
	c := checker{op: "Draw" + strings.ToUpper(name[:1]) + name[1:]}
	if len(pts) < 2 {
		c.fail("points", len(pts), "needs at least 2 points")
	}
	for _, p := range pts {
		c.point("point", p)
	}
	style.validate(&c)
	if c.err != nil {
		return c.err
	}
	e := newElement(name).set("points", formatPoints(pts))
	style.apply(e)
	cv.push(e, BoundsOf(pts...).Expand(style.strokeHalf()))
	return nil
}

func formatPoints(pts []Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = ff(p.X) + "," + ff(p.Y)
	}
	return strings.Join(parts, " ")
}
