package solver

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NumericBackend searches for a model with damped Gauss-Newton
// (Levenberg-Marquardt) iterations from seeded random starts. It works
// without an external solver but cannot prove unsatisfiability: it
// reports StatusUnsat when no start converges.
//
// Every relation's residual is divided by Scale()^degree so equations of
// different degree weigh alike. Inequalities contribute a hinge residual
// that is zero while they hold.
type NumericBackend struct {
	restarts int
	maxIter  int
	tol      float64
	margin   float64
	seed     uint64
}

// NumericOption configures a NumericBackend.
type NumericOption func(*NumericBackend)

// WithRestarts sets how many random starts are tried.
func WithRestarts(n int) NumericOption {
	return func(b *NumericBackend) {
		if n > 0 {
			b.restarts = n
		}
	}
}

// WithMaxIterations bounds the iterations of each start.
func WithMaxIterations(n int) NumericOption {
	return func(b *NumericBackend) {
		if n > 0 {
			b.maxIter = n
		}
	}
}

// WithTolerance sets the largest scaled residual accepted as solved.
func WithTolerance(tol float64) NumericOption {
	return func(b *NumericBackend) {
		if tol > 0 {
			b.tol = tol
		}
	}
}

// WithSeed sets the seed of the start generator.
func WithSeed(seed uint64) NumericOption {
	return func(b *NumericBackend) {
		b.seed = seed
	}
}

// NewNumericBackend creates a NumericBackend.
func NewNumericBackend(opts ...NumericOption) *NumericBackend {
	b := &NumericBackend{
		restarts: 32,
		maxIter:  500,
		tol:      1e-13,
		margin:   1e-7,
		seed:     1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "numeric".
func (b *NumericBackend) Name() string { return "numeric" }

// Check runs the restarts in order and returns the first converged model.
func (b *NumericBackend) Check(ctx context.Context, sys *System) (Status, []float64, error) {
	rng := rand.New(rand.NewPCG(b.seed, uint64(len(sys.Vars))))
	lm := newLevMar(sys, b.margin)
	for range b.restarts {
		if err := ctx.Err(); err != nil {
			return StatusUnknown, nil, err
		}
		x := b.start(sys, rng)
		if lm.minimize(ctx, x, b.maxIter, b.tol) {
			return StatusSat, x, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return StatusUnknown, nil, err
	}
	return StatusUnsat, nil, nil
}

// start draws vertices uniformly from the inner 80% of the canvas and
// line parameters from [0, 1].
func (b *NumericBackend) start(sys *System, rng *rand.Rand) []float64 {
	x := make([]float64, len(sys.Vars))
	nv := 2 * len(sys.Vertices)
	for i := 0; i < nv; i += 2 {
		x[i] = sys.Width * (0.1 + 0.8*rng.Float64())
		x[i+1] = sys.Height * (0.1 + 0.8*rng.Float64())
	}
	for i := nv; i < len(x); i++ {
		x[i] = rng.Float64()
	}
	return x
}

type levMar struct {
	sys    *System
	div    []float64 // Scale()^degree per relation
	margin float64
	n, m   int
}

func newLevMar(sys *System, margin float64) *levMar {
	lm := &levMar{
		sys:    sys,
		div:    make([]float64, len(sys.Relations)),
		margin: margin,
		n:      len(sys.Vars),
		m:      len(sys.Relations),
	}
	scale := sys.Scale()
	for i, r := range sys.Relations {
		lm.div[i] = math.Pow(scale, float64(r.Expr.degree()))
	}
	return lm
}

// residual returns the scaled residual of relation i and whether it is
// active (contributes a gradient).
func (lm *levMar) residual(i int, x []float64) (float64, bool) {
	r := lm.sys.Relations[i]
	v := r.Expr.eval(x) / lm.div[i]
	switch r.Kind {
	case RelGt:
		v -= lm.margin
		if v >= 0 {
			return 0, false
		}
	case RelGe:
		if v >= 0 {
			return 0, false
		}
	}
	return v, true
}

func (lm *levMar) residuals(x, out []float64) {
	for i := range lm.m {
		out[i], _ = lm.residual(i, x)
	}
}

func (lm *levMar) jacobian(x []float64, j *mat.Dense) {
	j.Zero()
	g := make([]float64, lm.n)
	for i := range lm.m {
		if _, active := lm.residual(i, x); !active {
			continue
		}
		clear(g)
		lm.sys.Relations[i].Expr.grad(x, 1/lm.div[i], g)
		j.SetRow(i, g)
	}
}

// minimize improves x in place and reports whether every residual fell
// within tol.
func (lm *levMar) minimize(ctx context.Context, x []float64, maxIter int, tol float64) bool {
	if lm.m == 0 {
		return true
	}
	r := make([]float64, lm.m)
	rNew := make([]float64, lm.m)
	xNew := make([]float64, lm.n)
	lm.residuals(x, r)
	cost := floats.Dot(r, r)

	j := mat.NewDense(lm.m, lm.n, nil)
	var jtj mat.Dense
	var jtr, delta mat.VecDense
	a := mat.NewDense(lm.n, lm.n, nil)
	lambda := 1e-3

	for iter := 0; iter < maxIter; iter++ {
		if floats.Norm(r, math.Inf(1)) <= tol {
			return true
		}
		if iter%32 == 0 && ctx.Err() != nil {
			return false
		}
		lm.jacobian(x, j)
		jtj.Mul(j.T(), j)
		jtr.MulVec(j.T(), mat.NewVecDense(lm.m, r))

		improved := false
		for !improved {
			a.Copy(&jtj)
			for k := range lm.n {
				d := jtj.At(k, k)
				a.Set(k, k, d+lambda*math.Max(d, 1e-9))
			}
			if err := delta.SolveVec(a, &jtr); !usableSolve(err, &delta) {
				lambda *= 10
				if lambda > 1e12 {
					return false
				}
				continue
			}
			for k := range lm.n {
				xNew[k] = x[k] - delta.AtVec(k)
			}
			lm.residuals(xNew, rNew)
			newCost := floats.Dot(rNew, rNew)
			if newCost < cost {
				copy(x, xNew)
				copy(r, rNew)
				cost = newCost
				lambda = math.Max(lambda/3, 1e-15)
				improved = true
				continue
			}
			lambda *= 4
			if lambda > 1e12 {
				return floats.Norm(r, math.Inf(1)) <= tol
			}
		}
	}
	return floats.Norm(r, math.Inf(1)) <= tol
}

// usableSolve reports whether a damped normal-equation solve produced a
// step. Ill-conditioned systems still yield a finite step, which the cost
// test then accepts or rejects.
func usableSolve(err error, delta *mat.VecDense) bool {
	if err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return false
		}
	}
	for k := range delta.Len() {
		if v := delta.AtVec(k); math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
