package geodraw

import (
	"fmt"
	"strings"
)

// pathCommand is one accumulated path-data command.
type pathCommand interface {
	isPathCommand()
	token() string
}

type moveTo struct{ p Point }

type lineTo struct{ p Point }

type quadTo struct{ ctrl, p Point }

type cubicTo struct{ c1, c2, p Point }

type arcTo struct {
	rx, ry, rotation float64
	largeArc, sweep  bool
	p                Point
}

type closePath struct{}

func (moveTo) isPathCommand()    {}
func (lineTo) isPathCommand()    {}
func (quadTo) isPathCommand()    {}
func (cubicTo) isPathCommand()   {}
func (arcTo) isPathCommand()     {}
func (closePath) isPathCommand() {}

func (c moveTo) token() string { return "M" + ff(c.p.X) + " " + ff(c.p.Y) }
func (c lineTo) token() string { return "L" + ff(c.p.X) + " " + ff(c.p.Y) }
func (c quadTo) token() string {
	return "Q" + ff(c.ctrl.X) + " " + ff(c.ctrl.Y) + " " + ff(c.p.X) + " " + ff(c.p.Y)
}
func (c cubicTo) token() string {
	return "C" + ff(c.c1.X) + " " + ff(c.c1.Y) + " " + ff(c.c2.X) + " " + ff(c.c2.Y) +
		" " + ff(c.p.X) + " " + ff(c.p.Y)
}
func (c arcTo) token() string {
	return fmt.Sprintf("A%s %s %s %d %d %s %s",
		ff(c.rx), ff(c.ry), ff(c.rotation), flag(c.largeArc), flag(c.sweep), ff(c.p.X), ff(c.p.Y))
}
func (closePath) token() string { return "Z" }

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PathBuilder accumulates SVG path data and a running bounding box.
// All methods return the builder for chaining; the first invalid argument
// is remembered and reported by Err (and by Canvas.DrawPath).
//
// Curve bounds are conservative: quadratic and cubic segments contribute
// their control points, not their true extrema. Arc segments contribute
// only their endpoints, which can under-estimate large sweeps.
type PathBuilder struct {
	cmds      []pathCommand
	start     Point
	current   Point
	bounds    Rect
	hasBounds bool
	err       error
}

// NewPathBuilder starts an empty path.
func NewPathBuilder() *PathBuilder {
	return &PathBuilder{cmds: make([]pathCommand, 0, 8)}
}

func (b *PathBuilder) include(pts ...Point) {
	for _, p := range pts {
		if !b.hasBounds {
			b.bounds = Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
			b.hasBounds = true
			continue
		}
		b.bounds = b.bounds.AddPoint(p)
	}
}

func (b *PathBuilder) check(op string, vals ...float64) bool {
	if b.err != nil {
		return false
	}
	for i, v := range vals {
		if !isFinite(v) {
			b.err = &ParamError{Op: "PathBuilder." + op, Param: fmt.Sprintf("arg%d", i), Value: v, Reason: "must be finite"}
			return false
		}
	}
	return true
}

// MoveTo starts a new subpath at (x, y).
func (b *PathBuilder) MoveTo(x, y float64) *PathBuilder {
	if !b.check("MoveTo", x, y) {
		return b
	}
	p := Pt(x, y)
	b.cmds = append(b.cmds, moveTo{p: p})
	b.start, b.current = p, p
	b.include(p)
	return b
}

// LineTo draws a straight segment to (x, y).
func (b *PathBuilder) LineTo(x, y float64) *PathBuilder {
	if !b.check("LineTo", x, y) {
		return b
	}
	p := Pt(x, y)
	b.cmds = append(b.cmds, lineTo{p: p})
	b.current = p
	b.include(p)
	return b
}

// QuadraticCurveTo draws a quadratic Bézier curve.
func (b *PathBuilder) QuadraticCurveTo(cx, cy, x, y float64) *PathBuilder {
	if !b.check("QuadraticCurveTo", cx, cy, x, y) {
		return b
	}
	c, p := Pt(cx, cy), Pt(x, y)
	b.cmds = append(b.cmds, quadTo{ctrl: c, p: p})
	b.current = p
	b.include(c, p)
	return b
}

// BezierCurveTo draws a cubic Bézier curve.
func (b *PathBuilder) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) *PathBuilder {
	if !b.check("BezierCurveTo", c1x, c1y, c2x, c2y, x, y) {
		return b
	}
	c1, c2, p := Pt(c1x, c1y), Pt(c2x, c2y), Pt(x, y)
	b.cmds = append(b.cmds, cubicTo{c1: c1, c2: c2, p: p})
	b.current = p
	b.include(c1, c2, p)
	return b
}

// ArcTo draws an SVG elliptical arc to (x, y). rotation is in degrees.
func (b *PathBuilder) ArcTo(rx, ry, rotation float64, largeArc, sweep bool, x, y float64) *PathBuilder {
	if !b.check("ArcTo", rx, ry, rotation, x, y) {
		return b
	}
	if rx < 0 || ry < 0 {
		b.err = &ParamError{Op: "PathBuilder.ArcTo", Param: "radius", Value: Pt(rx, ry), Reason: "must be >= 0"}
		return b
	}
	p := Pt(x, y)
	b.cmds = append(b.cmds, arcTo{rx: rx, ry: ry, rotation: rotation, largeArc: largeArc, sweep: sweep, p: p})
	b.include(b.current, p)
	b.current = p
	return b
}

// ClosePath closes the current subpath.
func (b *PathBuilder) ClosePath() *PathBuilder {
	if b.err != nil {
		return b
	}
	b.cmds = append(b.cmds, closePath{})
	b.current = b.start
	return b
}

// Polyline is shorthand for a MoveTo followed by LineTo for each point.
func (b *PathBuilder) Polyline(pts ...Point) *PathBuilder {
	for i, p := range pts {
		if i == 0 {
			b.MoveTo(p.X, p.Y)
		} else {
			b.LineTo(p.X, p.Y)
		}
	}
	return b
}

// D returns the accumulated path data.
func (b *PathBuilder) D() string {
	tokens := make([]string, len(b.cmds))
	for i, c := range b.cmds {
		tokens[i] = c.token()
	}
	return strings.Join(tokens, " ")
}

// Bounds returns the conservative bounding box of the path. ok is false
// only when no command was issued.
func (b *PathBuilder) Bounds() (r Rect, ok bool) {
	return b.bounds, b.hasBounds
}

// Empty reports whether no command has been issued.
func (b *PathBuilder) Empty() bool {
	return len(b.cmds) == 0
}

// CurrentPoint returns the pen position.
func (b *PathBuilder) CurrentPoint() Point {
	return b.current
}

// Err returns the first invalid argument passed to the builder.
func (b *PathBuilder) Err() error {
	return b.err
}
