package diagram

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/gogpu/geodraw"
	"github.com/gogpu/geodraw/solver"
)

// ErrSchemaViolation is returned for documents that break the input
// contract: bad sizes, malformed ids, unknown fields or styles.
var ErrSchemaViolation = errors.New("diagram: schema violation")

// SchemaError locates a schema violation.
type SchemaError struct {
	Field  string // e.g. "lines[2].style"
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := "diagram: " + e.Field + " " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSchemaViolation}
	}
	return []error{ErrSchemaViolation, e.Err}
}

func schemaErr(field, format string, args ...any) error {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var (
	vertexIDPattern = regexp.MustCompile(`^vertex_[A-Za-z0-9_]+$`)
	lineIDPattern   = regexp.MustCompile(`^line_[A-Za-z0-9_]+$`)
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks in against the input contract and resolves every
// reference. Contract violations are *SchemaError; dangling references
// are *solver.ReferenceError.
func Validate(in *Input) error {
	_, err := validate(in)
	return err
}

func validate(in *Input) (*solver.Problem, error) {
	if !finite(in.Width) || in.Width <= 0 {
		return nil, schemaErr("width", "must be positive, got %v", in.Width)
	}
	if !finite(in.Height) || in.Height <= 0 {
		return nil, schemaErr("height", "must be positive, got %v", in.Height)
	}
	if len(in.Vertices) == 0 {
		return nil, schemaErr("vertices", "must not be empty")
	}

	seen := make(map[string]string)
	claim := func(field, id string) error {
		if prev, dup := seen[id]; dup {
			return schemaErr(field, "reuses id %q from %s", id, prev)
		}
		seen[id] = field
		return nil
	}

	for i, v := range in.Vertices {
		field := fmt.Sprintf("vertices[%d].id", i)
		if !vertexIDPattern.MatchString(v.ID) {
			return nil, schemaErr(field, "%q does not match vertex_*", v.ID)
		}
		if err := claim(field, v.ID); err != nil {
			return nil, err
		}
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if !lineIDPattern.MatchString(l.ID) {
			return nil, schemaErr(field+".id", "%q does not match line_*", l.ID)
		}
		if err := claim(field+".id", l.ID); err != nil {
			return nil, err
		}
		switch l.Style {
		case "", StyleSolid, StyleDashed:
		default:
			return nil, schemaErr(field+".style", "%q is not solid or dashed", l.Style)
		}
	}
	for i, c := range in.Constraints {
		field := fmt.Sprintf("constraints[%d]", i)
		switch c := c.Constraint.(type) {
		case nil:
			return nil, schemaErr(field, "is empty")
		case solver.Midpoint:
			if !vertexIDPattern.MatchString(c.ID) {
				return nil, schemaErr(field+".id", "%q does not match vertex_*", c.ID)
			}
			if err := claim(field+".id", c.ID); err != nil {
				return nil, err
			}
		case solver.Intersect:
			if !vertexIDPattern.MatchString(c.ID) {
				return nil, schemaErr(field+".id", "%q does not match vertex_*", c.ID)
			}
			if err := claim(field+".id", c.ID); err != nil {
				return nil, err
			}
		case solver.Angle:
			if !finite(c.Marker.Radius) || c.Marker.Radius < 0 {
				return nil, schemaErr(field+".radius", "must be non-negative, got %v", c.Marker.Radius)
			}
		}
	}

	regions := make(map[string]bool)
	var regionIDs []string
	for i, r := range in.ShadedRegions {
		field := fmt.Sprintf("shadedRegions[%d]", i)
		if r.ID == "" {
			return nil, schemaErr(field+".id", "must not be empty")
		}
		if regions[r.ID] {
			return nil, schemaErr(field+".id", "reuses region id %q", r.ID)
		}
		regions[r.ID] = true
		regionIDs = append(regionIDs, r.ID)
		if len(r.Vertices) < 3 {
			return nil, schemaErr(field+".vertices", "needs at least three vertices, got %d", len(r.Vertices))
		}
		if err := geodraw.Paint(r.Fill).Validate(); err != nil {
			return nil, &SchemaError{Field: field + ".fill", Reason: "is not a color", Err: err}
		}
		if r.Opacity != nil && (!finite(*r.Opacity) || *r.Opacity < 0 || *r.Opacity > 1) {
			return nil, schemaErr(field+".opacity", "must be in [0, 1], got %v", *r.Opacity)
		}
	}
	for i, rl := range in.RegionLabels {
		field := fmt.Sprintf("regionLabels[%d]", i)
		if rl.Text == "" {
			return nil, schemaErr(field+".text", "must not be empty")
		}
		switch {
		case rl.Region != "" && rl.Line != "":
			return nil, schemaErr(field, "names both a region and a line")
		case rl.Region == "" && rl.Line == "":
			return nil, schemaErr(field, "names neither a region nor a line")
		case rl.Region != "" && rl.Offset != nil:
			return nil, schemaErr(field+".offset", "applies to line labels only")
		}
		if rl.Offset != nil && (!finite(*rl.Offset) || *rl.Offset < 0 || *rl.Offset > 1) {
			return nil, schemaErr(field+".offset", "must be in [0, 1], got %v", *rl.Offset)
		}
	}

	p := in.Problem()
	if err := solver.Validate(p); err != nil {
		if errors.Is(err, solver.ErrInvalidProblem) {
			return nil, &SchemaError{Field: "constraints", Reason: "are invalid", Err: err}
		}
		return nil, err
	}

	vertices := make(map[string]bool)
	var vertexIDs []string
	for _, v := range in.Vertices {
		vertices[v.ID] = true
		vertexIDs = append(vertexIDs, v.ID)
	}
	for _, id := range p.VirtualVertices() {
		vertices[id] = true
		vertexIDs = append(vertexIDs, id)
	}
	for i, r := range in.ShadedRegions {
		for _, id := range r.Vertices {
			if !vertices[id] {
				return nil, &solver.ReferenceError{
					Where:       fmt.Sprintf("shadedRegions[%d]", i),
					Kind:        "vertex",
					ID:          id,
					Reason:      "is not declared",
					Suggestions: solver.Suggest(id, vertexIDs),
				}
			}
		}
	}
	var lineIDs []string
	for _, l := range in.Lines {
		lineIDs = append(lineIDs, l.ID)
	}
	for i, rl := range in.RegionLabels {
		where := fmt.Sprintf("regionLabels[%d]", i)
		if rl.Region != "" && !regions[rl.Region] {
			return nil, &solver.ReferenceError{Where: where, Kind: "region", ID: rl.Region, Reason: "is not declared", Suggestions: solver.Suggest(rl.Region, regionIDs)}
		}
		if rl.Line != "" {
			if _, ok := p.LineByID(rl.Line); !ok {
				return nil, &solver.ReferenceError{Where: where, Kind: "line", ID: rl.Line, Reason: "is not declared", Suggestions: solver.Suggest(rl.Line, lineIDs)}
			}
		}
	}
	return p, nil
}

// Problem converts in to a solver problem without validating it.
func (in *Input) Problem() *solver.Problem {
	p := &solver.Problem{
		Width:       in.Width,
		Height:      in.Height,
		Vertices:    make([]solver.Vertex, len(in.Vertices)),
		Lines:       make([]solver.Line, len(in.Lines)),
		Constraints: make([]solver.Constraint, 0, len(in.Constraints)),
	}
	for i, v := range in.Vertices {
		p.Vertices[i] = solver.Vertex{ID: v.ID}
		if v.Label != nil {
			p.Vertices[i].Label = *v.Label
		}
	}
	for i, l := range in.Lines {
		p.Lines[i] = solver.Line{ID: l.ID, From: l.From, To: l.To, IsRay: l.IsRay}
	}
	for _, c := range in.Constraints {
		if c.Constraint != nil {
			p.Constraints = append(p.Constraints, c.Constraint)
		}
	}
	return p
}
