// Package diagram turns a declarative geometry description into an SVG
// document.
//
// An [Input] names vertices, lines, constraints, shaded regions and
// region labels. [Decode] reads one from JSON or YAML and rejects unknown
// fields; [Validate] checks it without solving. [Generate] runs the whole
// pipeline:
//
//  1. validate the input and convert it to a [solver.Problem]
//  2. solve for vertex positions and re-check the residuals
//  3. draw regions, lines, angle markers and vertices onto a
//     [geodraw.Canvas]
//  4. place vertex, line and region labels with a [placement.Engine]
//  5. finalize the viewBox around everything drawn
//
// Any error aborts the pipeline and no SVG is returned. Labels that could
// not be placed without overlap are still drawn and reported as
// [Warning] values in the [Result].
//
// Example:
//
//	in, err := diagram.Decode(f, diagram.FormatYAML)
//	if err != nil {
//	    return err
//	}
//	svg, err := diagram.Generate(ctx, in)
package diagram
