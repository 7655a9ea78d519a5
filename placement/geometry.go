package placement

import (
	"math"

	"github.com/gogpu/geodraw"
)

// Segment is a straight line obstacle.
type Segment struct {
	A, B geodraw.Point
}

// Size is the width and height of a label box.
type Size struct {
	W, H float64
}

// orientation returns the sign of the turn a -> b -> c: 1, -1, or 0 when
// the points are collinear.
func orientation(a, b, c geodraw.Point) int {
	v := b.Sub(a).Cross(c.Sub(a))
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment reports whether c, known to be collinear with a and b, lies
// within their bounding box.
func onSegment(a, b, c geodraw.Point) bool {
	return c.X >= math.Min(a.X, b.X) && c.X <= math.Max(a.X, b.X) &&
		c.Y >= math.Min(a.Y, b.Y) && c.Y <= math.Max(a.Y, b.Y)
}

func segmentsIntersect(p1, p2, q1, q2 geodraw.Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)
	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, p2, q2):
		return true
	case o3 == 0 && onSegment(q1, q2, p1):
		return true
	case o4 == 0 && onSegment(q1, q2, p2):
		return true
	}
	return false
}

// rectHitsSegment reports whether s touches r: an endpoint inside r, or
// s crossing one of r's four edges.
func rectHitsSegment(r geodraw.Rect, s Segment) bool {
	if r.Contains(s.A) || r.Contains(s.B) {
		return true
	}
	corners := [4]geodraw.Point{
		geodraw.Pt(r.MinX, r.MinY),
		geodraw.Pt(r.MaxX, r.MinY),
		geodraw.Pt(r.MaxX, r.MaxY),
		geodraw.Pt(r.MinX, r.MaxY),
	}
	for i := range corners {
		if segmentsIntersect(corners[i], corners[(i+1)%4], s.A, s.B) {
			return true
		}
	}
	return false
}

// ArcSegments approximates the circular arc of radius r around c from
// angle start to end (radians) by n chords.
func ArcSegments(c geodraw.Point, r, start, end float64, n int) []Segment {
	if n < 1 {
		n = 1
	}
	segs := make([]Segment, 0, n)
	prev := geodraw.Polar(c, r, start)
	for i := 1; i <= n; i++ {
		next := geodraw.Polar(c, r, start+(end-start)*float64(i)/float64(n))
		segs = append(segs, Segment{A: prev, B: next})
		prev = next
	}
	return segs
}
