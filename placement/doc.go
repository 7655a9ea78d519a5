// Package placement positions text labels near an ideal anchor while
// avoiding previously placed labels and drawn segments.
//
// The search is deterministic and bounded: the ideal position is tried
// first, then concentric rings of candidates around it, and finally a
// clamped fallback that is recorded anyway and reported as degraded.
//
//	eng := placement.New(placement.Config{Bounds: geodraw.RectXYWH(0, 0, 400, 300)})
//	eng.AddObstacle(placement.Segment{A: a, B: b})
//	res := eng.Place(ideal, placement.Size{W: 20, H: 14})
package placement
