package placement

import (
	"math"

	"github.com/gogpu/geodraw"
)

// Config tunes the ring search. Zero fields take defaults.
type Config struct {
	Step           float64 // radial step between rings, default 4
	AngularSamples int     // candidates per ring, default 16
	MaxRadius      float64 // search radius limit, default 80
	Padding        float64 // clearance around each label, default 2, negative for none

	// Bounds limits where padded labels may land. A zero Rect disables
	// the bounds check.
	Bounds geodraw.Rect
}

func (c Config) withDefaults() Config {
	if c.Step <= 0 {
		c.Step = 4
	}
	if c.AngularSamples <= 0 {
		c.AngularSamples = 16
	}
	if c.MaxRadius <= 0 {
		c.MaxRadius = 80
	}
	if c.Padding < 0 {
		c.Padding = 0
	} else if c.Padding == 0 {
		c.Padding = 2
	}
	return c
}

// Result is the outcome of one placement.
type Result struct {
	// Rect is the label box, without padding.
	Rect geodraw.Rect

	// Degraded is set when no collision-free position was found and the
	// clamped ideal position was used instead.
	Degraded bool
}

// Center returns the centre of the placed label box.
func (r Result) Center() geodraw.Point { return r.Rect.Center() }

// Engine places labels one at a time. Each accepted placement becomes an
// obstacle for later ones, so earlier labels get better positions.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	cfg       Config
	segments  []Segment
	reserved  []geodraw.Rect
	placed    []geodraw.Rect
	degraded  int
	hasBounds bool
}

// New creates an engine with cfg.
func New(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:       cfg,
		hasBounds: cfg.Bounds.Width() > 0 && cfg.Bounds.Height() > 0,
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// AddObstacle registers a segment labels must not touch.
func (e *Engine) AddObstacle(s Segment) {
	e.segments = append(e.segments, s)
}

// AddArcObstacle registers a circular arc around c, approximated by a
// polyline of n chords.
func (e *Engine) AddArcObstacle(c geodraw.Point, r, start, end float64, n int) {
	e.segments = append(e.segments, ArcSegments(c, r, start, end, n)...)
}

// Reserve registers an area labels must not overlap, such as a vertex
// dot. Reserved areas are not part of Placed.
func (e *Engine) Reserve(r geodraw.Rect) {
	e.reserved = append(e.reserved, r)
}

// Placed returns a copy of the padded boxes recorded so far, in
// placement order.
func (e *Engine) Placed() []geodraw.Rect {
	out := make([]geodraw.Rect, len(e.placed))
	copy(out, e.placed)
	return out
}

// Degraded returns the number of placements that fell back to a clamped
// position.
func (e *Engine) Degraded() int { return e.degraded }

// Place finds a position for a label of the given size centred as close
// to ideal as possible and records it.
func (e *Engine) Place(ideal geodraw.Point, size Size) Result {
	if c, ok := e.search(ideal, size); ok {
		return e.accept(c, size, false)
	}

	c := e.clamp(ideal, size)
	geodraw.Logger().Debug("placement: search exhausted, using clamped position",
		"ideal", ideal,
		"size", size,
		"radius", e.cfg.MaxRadius,
		"at", c)
	e.degraded++
	return e.accept(c, size, true)
}

func (e *Engine) search(ideal geodraw.Point, size Size) (geodraw.Point, bool) {
	if e.free(ideal, size) {
		return ideal, true
	}
	n := e.cfg.AngularSamples
	rings := int(math.Floor(e.cfg.MaxRadius/e.cfg.Step + 1e-9))
	for ring := 1; ring <= rings; ring++ {
		r := float64(ring) * e.cfg.Step
		for k := range n {
			c := geodraw.Polar(ideal, r, 2*math.Pi*float64(k)/float64(n))
			if e.free(c, size) {
				return c, true
			}
		}
	}
	return geodraw.Point{}, false
}

func (e *Engine) accept(c geodraw.Point, size Size, degraded bool) Result {
	box := boxAt(c, size)
	e.placed = append(e.placed, box.Expand(e.cfg.Padding))
	return Result{Rect: box, Degraded: degraded}
}

// free reports whether a label centred at c fits in bounds and clears
// every obstacle.
func (e *Engine) free(c geodraw.Point, size Size) bool {
	padded := boxAt(c, size).Expand(e.cfg.Padding)
	if e.hasBounds && !e.cfg.Bounds.ContainsRect(padded) {
		return false
	}
	return !e.Collides(padded)
}

// Collides reports whether r overlaps a placed label, a reserved area or
// an obstacle segment.
func (e *Engine) Collides(r geodraw.Rect) bool {
	for _, p := range e.placed {
		if r.Overlaps(p) {
			return true
		}
	}
	for _, p := range e.reserved {
		if r.Overlaps(p) {
			return true
		}
	}
	for _, s := range e.segments {
		if rectHitsSegment(r, s) {
			return true
		}
	}
	return false
}

// clamp moves the centre so the padded label lies inside the bounds, or
// against their top-left corner when it cannot fit.
func (e *Engine) clamp(c geodraw.Point, size Size) geodraw.Point {
	if !e.hasBounds {
		return c
	}
	b := e.cfg.Bounds
	hw := size.W/2 + e.cfg.Padding
	hh := size.H/2 + e.cfg.Padding
	return geodraw.Pt(
		clampAxis(c.X, b.MinX+hw, b.MaxX-hw),
		clampAxis(c.Y, b.MinY+hh, b.MaxY-hh),
	)
}

func clampAxis(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func boxAt(c geodraw.Point, size Size) geodraw.Rect {
	return geodraw.RectXYWH(c.X-size.W/2, c.Y-size.H/2, size.W, size.H)
}
