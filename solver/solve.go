package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/geodraw"
)

// Status is a backend verdict.
type Status uint8

const (
	// StatusUnknown means the backend gave up without a verdict.
	StatusUnknown Status = iota
	// StatusSat means a model was found.
	StatusSat
	// StatusUnsat means no assignment satisfies the system. Only the SMT
	// backend proves it; NumericBackend reports it when no start
	// converges.
	StatusUnsat
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Backend decides a System. On StatusSat the returned model holds one
// value per System variable.
type Backend interface {
	Name() string
	Check(ctx context.Context, sys *System) (Status, []float64, error)
}

// Option configures Solve.
type Option func(*options)

type options struct {
	backend Backend
	build   BuildOptions
}

// WithBackend selects the backend. The default is an SMTBackend running
// DefaultSMTCommand.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithMinSegmentLength requires every declared line to be at least l
// long. Without it lines need only a non-zero length.
func WithMinSegmentLength(l float64) Option {
	return func(o *options) {
		o.build.MinSegmentLength = l
	}
}

// WithCanvasBounds keeps declared vertices inside the canvas while
// solving. Anchoring still moves the figure afterwards.
func WithCanvasBounds() Option {
	return func(o *options) {
		o.build.CanvasBounds = true
	}
}

// Solution maps every vertex, declared and virtual, to its position.
type Solution struct {
	Positions map[string]geodraw.Point

	// Order lists vertex ids: declared first, then virtual.
	Order []string

	Backend string
}

// Point returns the position of vertex id.
func (s *Solution) Point(id string) (geodraw.Point, bool) {
	p, ok := s.Positions[id]
	return p, ok
}

// Solve validates p, compiles it, asks the backend for a model and
// anchors the result so the first declared vertex sits at the canvas
// centre. Solve has no timeout of its own; ctx bounds the backend call.
//
// ErrUnsatisfiable from the default SMT backend is a proof. With a
// NumericBackend it only means no start converged.
func Solve(ctx context.Context, p *Problem, opts ...Option) (*Solution, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		b, err := NewSMTBackend()
		if err != nil {
			return nil, err
		}
		o.backend = b
	}

	sys, err := Build(p, o.build)
	if err != nil {
		return nil, err
	}

	log := geodraw.Logger().With("backend", o.backend.Name())
	log.Debug("solver: checking system",
		"vars", len(sys.Vars),
		"relations", len(sys.Relations))

	start := time.Now()
	status, model, err := o.backend.Check(ctx, sys)
	if err != nil {
		return nil, err
	}
	log.Debug("solver: check finished", "status", status, "elapsed", time.Since(start))

	switch status {
	case StatusSat:
	case StatusUnsat:
		return nil, ErrUnsatisfiable
	default:
		return nil, ErrSolverUnknown
	}
	if len(model) != len(sys.Vars) {
		return nil, &ModelError{Var: "model", Value: fmt.Sprint(len(model)), Reason: fmt.Sprintf("has wrong size, want %d", len(sys.Vars))}
	}

	sol := &Solution{
		Positions: make(map[string]geodraw.Point, len(sys.Vertices)),
		Order:     append([]string(nil), sys.Vertices...),
		Backend:   o.backend.Name(),
	}
	for _, id := range sys.Vertices {
		i := sys.vertexVar[id]
		pt := geodraw.Pt(model[i], model[i+1])
		if !pt.IsFinite() {
			return nil, &ModelError{Var: id, Value: fmt.Sprint(pt), Reason: "is not finite"}
		}
		sol.Positions[id] = pt
	}
	anchor(sol, sys)
	return sol, nil
}

// anchor translates the solution so the first declared vertex lands on
// the canvas centre. Axes pinned by a canonical symmetry keep their
// absolute position.
func anchor(sol *Solution, sys *System) {
	first := sol.Positions[sys.Vertices[0]]
	var dx, dy float64
	if !sys.FixedX {
		dx = sys.Width/2 - first.X
	}
	if !sys.FixedY {
		dy = sys.Height/2 - first.Y
	}
	for id, p := range sol.Positions {
		sol.Positions[id] = geodraw.Pt(p.X+dx, p.Y+dy)
	}
}
