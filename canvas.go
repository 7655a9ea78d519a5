package geodraw

import (
	"fmt"
	"math"
)

// Canvas is an SVG render target. Draw calls append primitive records to
// an ordered scene and grow the canvas extents; Finalize turns both into
// an SVG document whose viewBox covers everything drawn.
//
// A Canvas is not safe for concurrent use. Each render should create its
// own.
type Canvas struct {
	width, height float64

	nodes  []node
	defs   []node
	defIDs map[string]bool

	extents    Rect
	hasExtents bool

	clipSeq int
	opts    canvasOptions
}

// CanvasOption configures a Canvas during creation.
//
// Example:
//
//	cv, err := geodraw.NewCanvas(400, 300,
//	    geodraw.WithFontFamily("Helvetica, Arial, sans-serif"),
//	    geodraw.WithBackground(geodraw.White.Paint()))
type CanvasOption func(*canvasOptions)

type canvasOptions struct {
	fontFamily string
	background Paint
}

func defaultCanvasOptions() canvasOptions {
	return canvasOptions{
		fontFamily: "sans-serif",
	}
}

// WithFontFamily sets the font-family applied to text that does not set
// its own.
func WithFontFamily(family string) CanvasOption {
	return func(o *canvasOptions) {
		o.fontFamily = family
	}
}

// WithBackground fills the final viewBox with the given paint.
func WithBackground(p Paint) CanvasOption {
	return func(o *canvasOptions) {
		o.background = p
	}
}

// NewCanvas creates a canvas with the given nominal size. The nominal
// size is only used when nothing is drawn; otherwise the document size
// follows the extents.
func NewCanvas(width, height float64, opts ...CanvasOption) (*Canvas, error) {
	c := checker{op: "NewCanvas"}
	c.positive("width", width)
	c.positive("height", height)
	o := defaultCanvasOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c.paint("background", o.background)
	if c.err != nil {
		return nil, c.err
	}
	return &Canvas{
		width:  width,
		height: height,
		defIDs: make(map[string]bool),
		opts:   o,
	}, nil
}

// Width returns the nominal canvas width.
func (cv *Canvas) Width() float64 { return cv.width }

// Height returns the nominal canvas height.
func (cv *Canvas) Height() float64 { return cv.height }

// Extents returns the bounding box of everything drawn so far. ok is false
// while the canvas is empty.
func (cv *Canvas) Extents() (r Rect, ok bool) {
	return cv.extents, cv.hasExtents
}

func (cv *Canvas) include(r Rect) {
	if !cv.hasExtents {
		cv.extents = r
		cv.hasExtents = true
		return
	}
	cv.extents = cv.extents.Union(r)
}

func (cv *Canvas) push(n node, bounds Rect) {
	cv.nodes = append(cv.nodes, n)
	cv.include(bounds)
}

func (cv *Canvas) pushDef(id string, n node) error {
	if id != "" {
		if cv.defIDs[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateDef, id)
		}
		cv.defIDs[id] = true
	}
	cv.defs = append(cv.defs, n)
	return nil
}

// HasDef reports whether a definition with the given id exists.
func (cv *Canvas) HasDef(id string) bool {
	return cv.defIDs[id]
}

// Document is a finalized canvas: an integer viewBox plus serialized defs
// and body markup in draw order.
type Document struct {
	MinX, MinY    int
	Width, Height int
	Defs          string
	Body          string
}

// Finalize computes the integer viewBox from the extents grown by padding
// on every side and assembles the defs and body markup. The canvas can
// keep being drawn on afterwards; each Finalize reflects the current
// state.
func (cv *Canvas) Finalize(padding float64) (*Document, error) {
	c := checker{op: "Finalize"}
	c.nonNegative("padding", padding)
	if c.err != nil {
		return nil, c.err
	}

	ext, ok := cv.Extents()
	if !ok {
		ext = Rect{MaxX: cv.width, MaxY: cv.height}
	}
	minX := math.Floor(ext.MinX - padding)
	minY := math.Floor(ext.MinY - padding)
	w := math.Ceil(ext.Width() + 2*padding)
	h := math.Ceil(ext.Height() + 2*padding)
	// Flooring the origin can shift the box left of a fractional extent;
	// widen so the far edge stays covered.
	w = math.Max(w, math.Ceil(ext.MaxX+padding)-minX)
	h = math.Max(h, math.Ceil(ext.MaxY+padding)-minY)

	body := cv.nodes
	if cv.opts.background.visible() {
		bg := newElement("rect").
			setNum("x", minX).setNum("y", minY).
			setNum("width", w).setNum("height", h).
			set("fill", string(cv.opts.background))
		body = append([]node{bg}, body...)
	}

	return &Document{
		MinX:   int(minX),
		MinY:   int(minY),
		Width:  int(w),
		Height: int(h),
		Defs:   serialize(cv.defs),
		Body:   serialize(body),
	}, nil
}

// ViewBox returns the document's viewBox as a Rect.
func (d *Document) ViewBox() Rect {
	return RectXYWH(float64(d.MinX), float64(d.MinY), float64(d.Width), float64(d.Height))
}
