package diagram

import (
	"github.com/gogpu/geodraw"
	"github.com/gogpu/geodraw/placement"
	"github.com/gogpu/geodraw/solver"
)

// Default rendering parameters.
const (
	DefaultPadding      = 20.0
	DefaultMarkerRadius = 24.0
	DefaultMarkerLength = 12.0
	DefaultLabelOffset  = 32.0
	DefaultVertexRadius = 3.0
	DefaultStrokeWidth  = 2.0
	DefaultVerifyTol    = 1e-6
)

// Option configures Generate.
type Option func(*options)

type options struct {
	solverOpts   []solver.Option
	padding      float64
	markerRadius float64
	markerLength float64
	labelOffset  float64
	vertexRadius float64
	strokeWidth  float64
	fontSize     float64
	fontFamily   string
	ink          geodraw.Paint
	background   geodraw.Paint
	verifyTol    float64
	placement    placement.Config
}

func defaultOptions() options {
	return options{
		padding:      DefaultPadding,
		markerRadius: DefaultMarkerRadius,
		markerLength: DefaultMarkerLength,
		labelOffset:  DefaultLabelOffset,
		vertexRadius: DefaultVertexRadius,
		strokeWidth:  DefaultStrokeWidth,
		fontSize:     geodraw.DefaultFontSize,
		ink:          "#1f2933",
		verifyTol:    DefaultVerifyTol,
	}
}

// WithBackend selects the solver backend.
func WithBackend(b solver.Backend) Option {
	return func(o *options) {
		o.solverOpts = append(o.solverOpts, solver.WithBackend(b))
	}
}

// WithSolverOptions passes options through to solver.Solve.
func WithSolverOptions(opts ...solver.Option) Option {
	return func(o *options) {
		o.solverOpts = append(o.solverOpts, opts...)
	}
}

// WithPadding sets the space added around the content when computing
// the viewBox.
func WithPadding(p float64) Option {
	return func(o *options) {
		o.padding = p
	}
}

// WithMarkerRadius sets the default radius of angle arcs. An angle's own
// radius takes precedence.
func WithMarkerRadius(r float64) Option {
	return func(o *options) {
		o.markerRadius = r
	}
}

// WithMarkerLength sets the leg length of right-angle square markers.
func WithMarkerLength(l float64) Option {
	return func(o *options) {
		o.markerLength = l
	}
}

// WithLabelOffset sets how far angle labels sit from their vertex along
// the bisector.
func WithLabelOffset(d float64) Option {
	return func(o *options) {
		o.labelOffset = d
	}
}

// WithFontSize sets the label font size.
func WithFontSize(fs float64) Option {
	return func(o *options) {
		o.fontSize = fs
	}
}

// WithFontFamily sets the label font family.
func WithFontFamily(family string) Option {
	return func(o *options) {
		o.fontFamily = family
	}
}

// WithStrokeWidth sets the width of drawn lines.
func WithStrokeWidth(w float64) Option {
	return func(o *options) {
		o.strokeWidth = w
	}
}

// WithInk sets the color of lines, markers, vertices and labels.
func WithInk(p geodraw.Paint) Option {
	return func(o *options) {
		o.ink = p
	}
}

// WithBackground fills the viewBox behind the diagram.
func WithBackground(p geodraw.Paint) Option {
	return func(o *options) {
		o.background = p
	}
}

// WithVerifyTolerance sets the residual tolerance used to re-check the
// solution before drawing. Zero disables the check.
func WithVerifyTolerance(tol float64) Option {
	return func(o *options) {
		o.verifyTol = tol
	}
}

// WithPlacement tunes label placement. A zero Bounds is replaced by the
// drawing area.
func WithPlacement(cfg placement.Config) Option {
	return func(o *options) {
		o.placement = cfg
	}
}
