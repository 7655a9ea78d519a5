package geodraw

import "math"

// Matrix represents a 2D affine transformation matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{
		A: cos, B: -sin,
		D: sin, E: cos,
	}
}

// RotateAbout creates a rotation by deg degrees around (cx, cy), matching
// the SVG transform "rotate(deg cx cy)".
func RotateAbout(deg, cx, cy float64) Matrix {
	return Translate(cx, cy).
		Multiply(Rotate(deg * math.Pi / 180)).
		Multiply(Translate(-cx, -cy))
}

// Multiply multiplies two matrices (m * other).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// TransformRect maps the four corners of r and returns their bounding box.
func (m Matrix) TransformRect(r Rect) Rect {
	return BoundsOf(
		m.TransformPoint(Pt(r.MinX, r.MinY)),
		m.TransformPoint(Pt(r.MaxX, r.MinY)),
		m.TransformPoint(Pt(r.MaxX, r.MaxY)),
		m.TransformPoint(Pt(r.MinX, r.MaxY)),
	)
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
