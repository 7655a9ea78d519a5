package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/mattn/go-shellwords"

	"github.com/gogpu/geodraw"
)

// DefaultSMTCommand runs z3 reading an SMT-LIB 2 script from stdin.
const DefaultSMTCommand = "z3 -in -smt2"

// SMTBackend decides a System with an external SMT-LIB 2 solver process.
// The script is written to the process's stdin and the verdict and model
// are read from its stdout.
type SMTBackend struct {
	argv       []string
	minVersion *semver.Constraints

	mu      sync.Mutex
	version *semver.Version
}

// SMTOption configures an SMTBackend.
type SMTOption func(*SMTBackend) error

// WithCommand sets the solver command line, split with shell quoting
// rules.
func WithCommand(cmd string) SMTOption {
	return func(b *SMTBackend) error {
		argv, err := shellwords.Parse(cmd)
		if err != nil {
			return fmt.Errorf("solver: parse command %q: %w", cmd, err)
		}
		if len(argv) == 0 {
			return fmt.Errorf("solver: empty solver command")
		}
		b.argv = argv
		return nil
	}
}

// WithMinVersion requires the solver's reported version to satisfy the
// semver constraint, e.g. ">= 4.8".
func WithMinVersion(constraint string) SMTOption {
	return func(b *SMTBackend) error {
		c, err := semver.NewConstraint(constraint)
		if err != nil {
			return fmt.Errorf("solver: version constraint %q: %w", constraint, err)
		}
		b.minVersion = c
		return nil
	}
}

// NewSMTBackend creates an SMTBackend running DefaultSMTCommand unless
// WithCommand says otherwise.
func NewSMTBackend(opts ...SMTOption) (*SMTBackend, error) {
	b := &SMTBackend{}
	if err := WithCommand(DefaultSMTCommand)(b); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Name returns "smt".
func (b *SMTBackend) Name() string { return "smt" }

// Command returns the solver command line.
func (b *SMTBackend) Command() []string {
	return append([]string(nil), b.argv...)
}

func (b *SMTBackend) run(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, b.argv[0], b.argv[1:]...)
	cmd.Stdin = strings.NewReader(script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	out := stdout.String()
	if err != nil {
		var exitErr *exec.ExitError
		// z3 exits non-zero when get-value follows unsat; the verdict on
		// stdout still stands.
		if errors.As(err, &exitErr) && out != "" {
			return out, nil
		}
		return "", &SolverError{Command: strings.Join(b.argv, " "), Output: stderr.String(), Err: err}
	}
	return out, nil
}

// Version asks the solver for its version. The answer is cached.
func (b *SMTBackend) Version(ctx context.Context) (*semver.Version, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.version != nil {
		return b.version, nil
	}
	out, err := b.run(ctx, "(get-info :version)\n(exit)\n")
	if err != nil {
		return nil, err
	}
	v, err := parseVersion(out)
	if err != nil {
		return nil, &SolverError{Command: strings.Join(b.argv, " "), Output: out, Err: err}
	}
	b.version = v
	return v, nil
}

// parseVersion reads a (:version "x.y.z") response.
func parseVersion(out string) (*semver.Version, error) {
	exprs, err := parseSexprs(out)
	if err != nil {
		return nil, err
	}
	for _, e := range exprs {
		if e.leaf || len(e.list) != 2 || e.list[0].atom != ":version" || !e.list[1].leaf {
			continue
		}
		return semver.NewVersion(strings.Trim(e.list[1].atom, `"`))
	}
	return nil, errors.New("no version in response")
}

// CheckVersion verifies the solver against the WithMinVersion
// constraint. It is a no-op without one.
func (b *SMTBackend) CheckVersion(ctx context.Context) error {
	if b.minVersion == nil {
		return nil
	}
	v, err := b.Version(ctx)
	if err != nil {
		return err
	}
	if !b.minVersion.Check(v) {
		return &SolverError{
			Command: strings.Join(b.argv, " "),
			Err:     fmt.Errorf("version %s does not satisfy %s", v, b.minVersion),
		}
	}
	return nil
}

// Check runs the system's script and reads the verdict and model.
func (b *SMTBackend) Check(ctx context.Context, sys *System) (Status, []float64, error) {
	if err := b.CheckVersion(ctx); err != nil {
		return StatusUnknown, nil, err
	}

	script := sys.Script()
	geodraw.Logger().Debug("solver: running smt solver",
		"command", b.argv[0],
		"script_bytes", len(script))
	out, err := b.run(ctx, script)
	if err != nil {
		return StatusUnknown, nil, err
	}
	return readResponse(sys, out, strings.Join(b.argv, " "))
}

// readResponse interprets solver output: a verdict line followed, when
// sat, by the get-value bindings.
func readResponse(sys *System, out, command string) (Status, []float64, error) {
	exprs, err := parseSexprs(out)
	if err != nil {
		return StatusUnknown, nil, &SolverError{Command: command, Output: out, Err: err}
	}
	if len(exprs) == 0 {
		return StatusUnknown, nil, &SolverError{Command: command, Output: out, Err: errors.New("empty response")}
	}
	verdict := exprs[0]
	if !verdict.leaf {
		return StatusUnknown, nil, &SolverError{Command: command, Output: out, Err: fmt.Errorf("unexpected response %s", verdict)}
	}
	switch verdict.atom {
	case "unsat":
		return StatusUnsat, nil, nil
	case "unknown":
		return StatusUnknown, nil, nil
	case "sat":
	default:
		return StatusUnknown, nil, &SolverError{Command: command, Output: out, Err: fmt.Errorf("unexpected verdict %q", verdict.atom)}
	}
	if len(exprs) < 2 {
		return StatusUnknown, nil, &ModelError{Var: "model", Reason: "is missing from the response"}
	}
	resp := exprs[1]
	if !resp.leaf && len(resp.list) > 0 && resp.list[0].leaf && resp.list[0].atom == "error" {
		return StatusUnknown, nil, &SolverError{Command: command, Output: out, Err: fmt.Errorf("solver error %s", resp)}
	}
	model, err := parseModel(sys, resp)
	if err != nil {
		return StatusUnknown, nil, err
	}
	return StatusSat, model, nil
}
