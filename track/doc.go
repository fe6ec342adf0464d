// Package track implements the mutable track graph at the heart of
// Trackforge.
//
// The track package implements:
//   - Recyclable integer handle allocation for joints and segments
//   - A graph of joints connected by directed Bezier curve segments
//   - Per-joint direction bookkeeping relative to a canonical tangent
//   - Topology mutations: create, branch, extend and split via joint insert
//   - Pointer snapping queries over joints and segments
//
// Core Types:
//
// Graph owns the joint and segment records and is the only type that
// rewires them. Joint carries a position, a canonical unit tangent fixed at
// creation, and the classification of each neighbor as Forward (reachable
// along the tangent) or Reverse (against it). Segment is a directed edge
// whose curve runs from the joint at parameter 0 to the joint at
// parameter 1.
//
// Every mutation validates all of its inputs before touching state. A
// returned error therefore guarantees the graph is unchanged. Errors are
// classified by the sentinel values ErrUnknownJoint, ErrUnknownSegment and
// ErrPrecondition. The one exception is handle allocator misuse (releasing
// a handle outside the allocator's range), which panics because it is a
// caller bug rather than a recoverable input condition.
//
// Usage:
//
//	g := track.NewGraph()
//
//	seg, err := g.CreateSegment(geom.Pt(0, 0), geom.Pt(10, 0), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	s, _ := g.Segment(seg)
//	mid, err := g.InsertJoint(s.T0, s.T1, 0.5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	hit := g.Project(geom.Pt(5, 1))
//
// Concurrency:
//
// A Graph is not safe for concurrent use. Each editing session owns one
// instance; the layers above serialize access to it.
package track
