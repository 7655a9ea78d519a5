package diagram

import (
	"errors"
	"testing"

	"github.com/gogpu/geodraw/solver"
)

func str(s string) *string { return &s }

func num(v float64) *float64 { return &v }

func cons(c solver.Constraint) Constraint { return Constraint{Constraint: c} }

func triangleInput() *Input {
	return &Input{
		Width:  300,
		Height: 300,
		Vertices: []Vertex{
			{ID: "vertex_A", Label: str("A")},
			{ID: "vertex_B", Label: str("B")},
			{ID: "vertex_C", Label: str("C")},
		},
		Lines: []Line{
			{ID: "line_AB", From: "vertex_A", To: "vertex_B"},
			{ID: "line_BC", From: "vertex_B", To: "vertex_C"},
			{ID: "line_CA", From: "vertex_C", To: "vertex_A"},
		},
		Constraints: []Constraint{
			cons(solver.EqualLength{Lines: []string{"line_AB", "line_BC"}, Value: num(100)}),
			cons(solver.Angle{Vertex: "vertex_B", Line1: "line_AB", Line2: "line_BC", Measure: 60}),
		},
		ShadedRegions: []ShadedRegion{
			{ID: "inside", Vertices: []string{"vertex_A", "vertex_B", "vertex_C"}},
		},
		RegionLabels: []RegionLabel{
			{Text: "T", Region: "inside"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		wantRef bool
	}{
		{"zero width", func(in *Input) { in.Width = 0 }, false},
		{"negative height", func(in *Input) { in.Height = -5 }, false},
		{"no vertices", func(in *Input) { in.Vertices = nil }, false},
		{"bad vertex prefix", func(in *Input) { in.Vertices[0].ID = "A" }, false},
		{"bad line prefix", func(in *Input) { in.Lines[0].ID = "AB" }, false},
		{"duplicate vertex", func(in *Input) { in.Vertices[1].ID = "vertex_A" }, false},
		{"unknown style", func(in *Input) { in.Lines[1].Style = "dotted" }, false},
		{"opacity above one", func(in *Input) { in.ShadedRegions[0].Opacity = num(1.5) }, false},
		{"bad fill", func(in *Input) { in.ShadedRegions[0].Fill = "#12" }, false},
		{"region too small", func(in *Input) { in.ShadedRegions[0].Vertices = []string{"vertex_A", "vertex_B"} }, false},
		{"label names region and line", func(in *Input) { in.RegionLabels[0].Line = "line_AB" }, false},
		{"label names nothing", func(in *Input) { in.RegionLabels[0].Region = "" }, false},
		{"offset out of range", func(in *Input) {
			in.RegionLabels = []RegionLabel{{Text: "m", Line: "line_AB", Offset: num(2)}}
		}, false},
		{"virtual vertex prefix", func(in *Input) {
			in.Constraints = append(in.Constraints, cons(solver.Midpoint{ID: "M", Line: "line_AB"}))
		}, false},
		{"angle measure out of range", func(in *Input) {
			in.Constraints[1] = cons(solver.Angle{Vertex: "vertex_B", Line1: "line_AB", Line2: "line_BC", Measure: 400})
		}, false},
		{"dangling line", func(in *Input) { in.Lines[0].To = "vertex_Z" }, true},
		{"dangling constraint", func(in *Input) {
			in.Constraints[0] = cons(solver.EqualLength{Lines: []string{"line_AC", "line_BC"}})
		}, true},
		{"dangling region vertex", func(in *Input) { in.ShadedRegions[0].Vertices[2] = "vertex_D" }, true},
		{"dangling region label", func(in *Input) { in.RegionLabels[0].Region = "insde" }, true},
		{"dangling line label", func(in *Input) {
			in.RegionLabels = []RegionLabel{{Text: "m", Line: "line_XY"}}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := triangleInput()
			tt.mutate(in)
			err := Validate(in)
			if tt.wantRef {
				var refErr *solver.ReferenceError
				if !errors.As(err, &refErr) {
					t.Fatalf("Validate() = %v, want *solver.ReferenceError", err)
				}
				if !errors.Is(err, solver.ErrReference) {
					t.Errorf("Validate() = %v, does not wrap ErrReference", err)
				}
				return
			}
			var schema *SchemaError
			if !errors.As(err, &schema) || !errors.Is(err, ErrSchemaViolation) {
				t.Fatalf("Validate() = %v, want *SchemaError", err)
			}
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	in := triangleInput()
	in.Lines[0].Style = StyleSolid
	in.Lines[1].Style = StyleDashed
	in.RegionLabels = append(in.RegionLabels, RegionLabel{Text: "m", Line: "line_AB", Offset: num(0.25)})
	if err := Validate(in); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestValidateSuggestsRegion(t *testing.T) {
	in := triangleInput()
	in.RegionLabels[0].Region = "insde"
	var refErr *solver.ReferenceError
	if err := Validate(in); !errors.As(err, &refErr) {
		t.Fatalf("Validate() = %v", err)
	}
	if refErr.Kind != "region" || len(refErr.Suggestions) == 0 || refErr.Suggestions[0] != "inside" {
		t.Errorf("ReferenceError = %+v, want a suggestion of inside", refErr)
	}
}

func TestValidateInvalidProblemIsSchema(t *testing.T) {
	in := triangleInput()
	in.Constraints[1] = cons(solver.Angle{Vertex: "vertex_B", Line1: "line_AB", Line2: "line_BC", Measure: 400})
	err := Validate(in)
	if !errors.Is(err, ErrSchemaViolation) || !errors.Is(err, solver.ErrInvalidProblem) {
		t.Errorf("Validate() = %v, want both ErrSchemaViolation and ErrInvalidProblem", err)
	}
}
