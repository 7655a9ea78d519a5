package geodraw

import (
	"strconv"
)

// ClipShape is the geometry of a clipped region.
type ClipShape interface {
	clipElement() *element
	clipBounds() Rect
	check(c *checker)
}

// ClipRect clips to an axis-aligned rectangle.
type ClipRect struct {
	X, Y, W, H float64
}

func (r ClipRect) clipElement() *element {
	return newElement("rect").
		setNum("x", r.X).setNum("y", r.Y).
		setNum("width", r.W).setNum("height", r.H)
}

func (r ClipRect) clipBounds() Rect { return RectXYWH(r.X, r.Y, r.W, r.H) }

func (r ClipRect) check(c *checker) {
	c.point("clip.origin", Pt(r.X, r.Y))
	c.nonNegative("clip.width", r.W)
	c.nonNegative("clip.height", r.H)
}

// ClipCircle clips to a circle.
type ClipCircle struct {
	CX, CY, R float64
}

func (s ClipCircle) clipElement() *element {
	return newElement("circle").setNum("cx", s.CX).setNum("cy", s.CY).setNum("r", s.R)
}

func (s ClipCircle) clipBounds() Rect {
	return Rect{MinX: s.CX - s.R, MinY: s.CY - s.R, MaxX: s.CX + s.R, MaxY: s.CY + s.R}
}

func (s ClipCircle) check(c *checker) {
	c.point("clip.center", Pt(s.CX, s.CY))
	c.nonNegative("clip.r", s.R)
}

// ClipPolygon clips to a closed polygon.
type ClipPolygon []Point

func (p ClipPolygon) clipElement() *element {
	return newElement("polygon").set("points", formatPoints(p))
}

func (p ClipPolygon) clipBounds() Rect { return BoundsOf(p...) }

func (p ClipPolygon) check(c *checker) {
	if len(p) < 3 {
		c.fail("clip.points", len(p), "needs at least 3 points")
	}
	for _, pt := range p {
		c.point("clip.point", pt)
	}
}

// ClipPath clips to the area enclosed by a path.
func ClipPath(b *PathBuilder) ClipShape {
	return clipPath{b: b}
}

type clipPath struct {
	b *PathBuilder
}

func (p clipPath) clipElement() *element {
	return newElement("path").set("d", p.b.D())
}

func (p clipPath) clipBounds() Rect {
	r, _ := p.b.Bounds()
	return r
}

func (p clipPath) check(c *checker) {
	if p.b == nil || p.b.Empty() {
		c.fail("clip.path", "", "must not be empty")
		return
	}
	if err := p.b.Err(); err != nil {
		c.fail("clip.path", err.Error(), "is invalid")
	}
}

// DrawInClippedRegion runs fn against the canvas with everything it draws
// buffered into a group clipped to shape.
//
// Draw calls inside fn validate and measure exactly as usual, but once fn
// returns the canvas extents are restored to their state before the call;
// only the part of the buffered content's box that lies inside the clip
// shape is merged back, through the wrapping group. Geometry drawn only to
// be clipped away therefore never inflates the viewBox. If fn fails, the
// buffered content is discarded.
func (cv *Canvas) DrawInClippedRegion(shape ClipShape, fn func(*Canvas) error) error {
	c := checker{op: "DrawInClippedRegion"}
	if shape == nil {
		c.fail("shape", nil, "must not be nil")
	} else {
		shape.check(&c)
	}
	if c.err != nil {
		return c.err
	}

	mark := len(cv.nodes)
	savedExt, savedHas := cv.extents, cv.hasExtents
	cv.extents, cv.hasExtents = Rect{}, false

	err := fn(cv)

	inner := append([]node(nil), cv.nodes[mark:]...)
	innerExt, innerHas := cv.extents, cv.hasExtents
	cv.nodes = cv.nodes[:mark]
	cv.extents, cv.hasExtents = savedExt, savedHas

	if err != nil || len(inner) == 0 {
		return err
	}

	id := cv.nextClipID()
	def := newElement("clipPath").set("id", id).append(shape.clipElement())
	if err := cv.pushDef(id, def); err != nil {
		return err
	}
	group := newElement("g").set("clip-path", "url(#"+id+")").append(inner...)
	cv.nodes = append(cv.nodes, group)
	if innerHas {
		if visible, ok := innerExt.Intersect(shape.clipBounds()); ok {
			cv.include(visible)
		}
	}
	return nil
}

// nextClipID returns the next unused clip id of this canvas.
func (cv *Canvas) nextClipID() string {
	for {
		cv.clipSeq++
		id := "clip" + strconv.Itoa(cv.clipSeq)
		if !cv.defIDs[id] {
			return id
		}
	}
}
