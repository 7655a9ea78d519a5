// Package geodraw provides deterministic SVG drawing for geometry diagrams.
//
// # Overview
//
// geodraw is the rendering core of a constraint-driven diagram engine.
// It offers a retained Canvas that records SVG primitives, tracks the
// bounding box of everything drawn, and finalizes into a self-contained
// SVG document whose viewBox fits the content.
//
// The sub-packages build on it:
//   - solver: turns declarative geometry (perpendicular, equal length,
//     angle measure, symmetry, ...) into coordinates via an SMT solver
//   - placement: positions labels without overlapping drawn geometry
//   - diagram: validates a diagram document, solves it and renders it
//
// # Quick Start
//
//	cv, _ := geodraw.NewCanvas(400, 300)
//	_ = cv.DrawLine(10, 10, 200, 120, geodraw.Style{Stroke: "#000", StrokeWidth: 2})
//	_, _ = cv.DrawText(200, 130, "A", geodraw.TextStyle{FontSize: 16})
//	doc, _ := cv.Finalize(10)
//	fmt.Println(doc.String())
//
// # Determinism
//
// Output depends only on the draw calls. Coordinates are printed with at
// most three fractional digits, text is measured with a fixed
// character-class table rather than font metrics, and definition ids are
// generated from per-canvas counters.
//
// # Coordinate System
//
// SVG user space:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Positive angles turn clockwise on screen
//
// # Validation
//
// Every draw call checks its parameters (finite coordinates, non-negative
// sizes, opacities in [0, 1], well-formed paints) and returns a
// *ParamError wrapping ErrInvalidParam instead of clamping.
package geodraw
