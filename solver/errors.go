package solver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Sentinel errors. Typed errors below wrap them so errors.Is works.
var (
	// ErrInvalidProblem is returned for malformed problems: non-positive
	// canvas size, duplicate ids, out-of-range measures.
	ErrInvalidProblem = errors.New("solver: invalid problem")

	// ErrReference is returned when a constraint names an undeclared
	// vertex or line, or uses degenerate geometry.
	ErrReference = errors.New("solver: invalid reference")

	// ErrUnsatisfiable is returned when no assignment satisfies every
	// constraint.
	ErrUnsatisfiable = errors.New("solver: constraints are unsatisfiable")

	// ErrSolverUnknown is returned when the backend gives up without a
	// verdict.
	ErrSolverUnknown = errors.New("solver: satisfiability unknown")

	// ErrModelExtraction is returned when a satisfying model lacks a
	// binding or holds a value that cannot be parsed.
	ErrModelExtraction = errors.New("solver: model extraction failed")

	// ErrSolverFailed is returned when the solver process cannot run or
	// reports an error.
	ErrSolverFailed = errors.New("solver: solver process failed")
)

// ReferenceError describes a dangling or degenerate reference.
type ReferenceError struct {
	Where       string // e.g. "constraints[2] (angle)"
	Kind        string // "vertex" or "line"
	ID          string
	Reason      string
	Suggestions []string
}

func (e *ReferenceError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "solver: %s: %s %q %s", e.Where, e.Kind, e.ID, e.Reason)
	if len(e.Suggestions) > 0 {
		sb.WriteString(" (did you mean ")
		for i, s := range e.Suggestions {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%q", s)
		}
		sb.WriteString("?)")
	}
	return sb.String()
}

func (e *ReferenceError) Unwrap() error { return ErrReference }

// ModelError describes a variable the model does not bind usably.
type ModelError struct {
	Var    string
	Value  string
	Reason string
}

func (e *ModelError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("solver: model: %s %s", e.Var, e.Reason)
	}
	return fmt.Sprintf("solver: model: %s = %s %s", e.Var, e.Value, e.Reason)
}

func (e *ModelError) Unwrap() error { return ErrModelExtraction }

// SolverError describes a failure of the external solver process.
type SolverError struct {
	Command string
	Output  string // stderr or the offending response
	Err     error
}

func (e *SolverError) Error() string {
	msg := "solver: " + e.Command
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *SolverError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSolverFailed}
	}
	return []error{ErrSolverFailed, e.Err}
}

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// Suggest returns up to three known ids similar to id, best first.
func Suggest(id string, known []string) []string {
	type scored struct {
		id    string
		score float64
	}
	lev := metrics.NewLevenshtein()
	var cands []scored
	for _, k := range known {
		if s := strutil.Similarity(id, k, lev); s >= 0.5 {
			cands = append(cands, scored{k, s})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	out := make([]string, 0, maxSuggestions)
	for _, c := range cands {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.id)
	}
	return out
}
