// Package solver turns declarative geometry into coordinates.
//
// A Problem names vertices, lines between them, and constraints such as
// Perpendicular, EqualLength, Angle or Symmetry. Build compiles it into
// a System of polynomial equations and inequalities over the vertex
// coordinates, and Solve hands the System to a Backend:
//
//   - SMTBackend writes the System as an SMT-LIB 2 script (QF_NRA) and
//     runs an external solver, z3 by default
//   - NumericBackend searches for a model with Levenberg-Marquardt
//     iterations and needs no external process
//
// Solve uses an SMTBackend unless WithBackend says otherwise. Only the
// SMT backend proves unsatisfiability.
//
// Solutions are anchored so the first declared vertex sits at the canvas
// centre. Verify re-checks a solution against the original constraints.
//
//	sol, err := solver.Solve(ctx, problem, solver.WithBackend(smt))
//	if errors.Is(err, solver.ErrUnsatisfiable) {
//		// the constraints contradict each other
//	}
package solver
