package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/geodraw"
)

const squareYAML = `
width: 200
height: 200
vertices:
  - {id: vertex_A, label: A}
  - {id: vertex_B, label: B}
  - {id: vertex_C, label: C}
  - {id: vertex_D, label: D}
lines:
  - {id: line_AB, from: vertex_A, to: vertex_B}
  - {id: line_BC, from: vertex_B, to: vertex_C}
  - {id: line_CD, from: vertex_C, to: vertex_D}
  - {id: line_DA, from: vertex_D, to: vertex_A}
constraints:
  - type: presetPolygon
    vertices: [vertex_A, vertex_B, vertex_C, vertex_D]
    regular: true
    sideLength: 60
`

const impossibleJSON = `{
	"width": 100, "height": 100,
	"vertices": [{"id": "vertex_A"}, {"id": "vertex_B"}, {"id": "vertex_C"}],
	"lines": [
		{"id": "line_AB", "from": "vertex_A", "to": "vertex_B"},
		{"id": "line_BC", "from": "vertex_B", "to": "vertex_C"},
		{"id": "line_CA", "from": "vertex_C", "to": "vertex_A"}
	],
	"constraints": [
		{"type": "equalLength", "lines": ["line_AB", "line_BC", "line_CA"]},
		{"type": "angle", "vertex": "vertex_B", "line1": "line_AB", "line2": "line_BC", "measure": 180}
	]
}`

// workspace writes a numeric-backend config and returns its directory
// and the -config flag pointing at it.
func workspace(t *testing.T) (string, []string) {
	t.Helper()
	t.Cleanup(func() { geodraw.SetLogger(nil) })
	dir := t.TempDir()
	cfg := filepath.Join(dir, "geodraw.toml")
	if err := os.WriteFile(cfg, []byte("[solver]\nbackend = \"numeric\"\nrestarts = 4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir, []string{"-config", cfg}
}

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	if code, _, stderr := runArgs(t); code != 2 || !strings.Contains(stderr, "usage:") {
		t.Errorf("run() = %d, %q", code, stderr)
	}
	if code, _, stderr := runArgs(t, "draw"); code != 2 || !strings.Contains(stderr, `unknown command "draw"`) {
		t.Errorf("run(draw) = %d, %q", code, stderr)
	}
	if code, stdout, _ := runArgs(t, "help"); code != 0 || !strings.Contains(stdout, "check-solver") {
		t.Errorf("run(help) = %d, %q", code, stdout)
	}
	if code, _, _ := runArgs(t, "render", "-h"); code != 0 {
		t.Errorf("run(render -h) = %d, want 0", code)
	}
}

func TestRenderToFile(t *testing.T) {
	dir, flags := workspace(t)
	in := filepath.Join(dir, "square.yaml")
	out := filepath.Join(dir, "square.svg")
	if err := os.WriteFile(in, []byte(squareYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	args := append([]string{"render", "-in", in, "-out", out}, flags...)
	if code, _, stderr := runArgs(t, args...); code != 0 {
		t.Fatalf("render exited %d: %s", code, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	for _, want := range []string{"<svg", "viewBox=", ">D</text>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Rendering again produces the same bytes.
	args = append([]string{"render", "-in", in}, flags...)
	code, stdout, _ := runArgs(t, args...)
	if code != 0 || stdout != svg {
		t.Errorf("render to stdout = %d, differs from file output", code)
	}
}

func TestRenderFailureWritesNothing(t *testing.T) {
	dir, flags := workspace(t)
	in := filepath.Join(dir, "bad.json")
	out := filepath.Join(dir, "bad.svg")
	if err := os.WriteFile(in, []byte(impossibleJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	args := append([]string{"render", "-in", in, "-out", out}, flags...)
	code, _, stderr := runArgs(t, args...)
	if code != 1 {
		t.Fatalf("render exited %d, want 1", code)
	}
	if !strings.Contains(stderr, "unsatisfiable") {
		t.Errorf("stderr = %q, want an unsatisfiable error", stderr)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file exists after a failed render")
	}
}

func TestRenderFlagErrors(t *testing.T) {
	_, flags := workspace(t)
	tests := [][]string{
		{"render"},
		{"render", "-in", "x.json", "-format", "xml"},
		{"render", "-in", "missing.json"},
		{"render", "-in", "x.json", "-backend", "cvc5"},
		{"watch", "-in", "x.json"},
	}
	for _, args := range tests {
		if code, _, _ := runArgs(t, append(args, flags...)...); code != 1 {
			t.Errorf("run(%v) = %d, want 1", args, code)
		}
	}
}

func TestCheckSolverNumeric(t *testing.T) {
	_, flags := workspace(t)
	code, stdout, stderr := runArgs(t, append([]string{"check-solver"}, flags...)...)
	if code != 0 {
		t.Fatalf("check-solver exited %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "backend: numeric") {
		t.Errorf("stdout = %q", stdout)
	}
}
