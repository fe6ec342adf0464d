package track

import (
	"fmt"

	"github.com/railkit/trackforge/geom"
)

// IsDeadEnd reports whether the joint ends the track: exactly one
// connection and exactly one direction entry. Unknown handles report
// false.
func (g *Graph) IsDeadEnd(h JointHandle) bool {
	j, err := g.joint(h)
	if err != nil {
		return false
	}
	return isDeadEnd(j)
}

// DeadEndSegment returns the sole segment of a dead-end joint.
// Returns ErrPrecondition when the joint is not a dead end.
func (g *Graph) DeadEndSegment(h JointHandle) (SegmentHandle, error) {
	j, err := g.joint(h)
	if err != nil {
		return 0, err
	}
	if !isDeadEnd(j) {
		return 0, fmt.Errorf("%w: joint %d is not a dead end", ErrPrecondition, h)
	}
	var seg SegmentHandle
	for _, s := range j.connections {
		seg = s
	}
	return seg, nil
}

// DeadEndNeighbor returns the joint at the other end of a dead end's sole
// segment. Returns ErrPrecondition when the joint is not a dead end.
func (g *Graph) DeadEndNeighbor(h JointHandle) (JointHandle, error) {
	j, err := g.joint(h)
	if err != nil {
		return 0, err
	}
	if !isDeadEnd(j) {
		return 0, fmt.Errorf("%w: joint %d is not a dead end", ErrPrecondition, h)
	}
	var neighbor JointHandle
	for n := range j.connections {
		neighbor = n
	}
	return neighbor, nil
}

// JointAt returns the joint within SnapRadius closest to p. Joints are
// scanned in ascending handle order and a later joint replaces the current
// best only when strictly closer, so the earliest of equally distant
// joints wins.
func (g *Graph) JointAt(p geom.Point) (JointHandle, bool) {
	h, _, ok := g.nearestJoint(p)
	return h, ok
}

func (g *Graph) nearestJoint(p geom.Point) (JointHandle, float64, bool) {
	best := JointHandle(-1)
	bestDist := 0.0
	found := false
	for h, j := range g.joints {
		if j == nil {
			continue
		}
		d := j.Position.Distance(p)
		if d <= SnapRadius && (!found || d < bestDist) {
			best = JointHandle(h)
			bestDist = d
			found = true
		}
	}
	return best, bestDist, found
}

// ProjectOnSegments returns the closest curve projection to p within
// SnapRadius across all live segments, scanning in ascending handle order
// with the same strictly-closer replacement rule as JointAt.
func (g *Graph) ProjectOnSegments(p geom.Point) (TrackHit, bool) {
	var best TrackHit
	bestDist := 0.0
	found := false
	for _, h := range g.segments.Living() {
		seg, ok := g.segments.Get(h)
		if !ok {
			continue
		}
		pr := seg.Curve.Project(p)
		if pr.Distance <= SnapRadius && (!found || pr.Distance < bestDist) {
			best = TrackHit{
				Segment: h,
				T0:      seg.T0,
				T1:      seg.T1,
				T:       pr.T,
				Point:   pr.Point,
				Tangent: seg.Curve.Derivative(pr.T).Normalize(),
			}
			bestDist = pr.Distance
			found = true
		}
	}
	return best, found
}

// Project snaps a pointer position onto the graph. A joint hit within
// SnapRadius takes priority over a segment hit unless the track passes
// strictly closer to p than the joint does; ties go to the joint, so
// pointing at a joint always selects the joint rather than the curve
// running through it.
func (g *Graph) Project(p geom.Point) Hit {
	j, jointDist, jointOK := g.nearestJoint(p)
	th, trackOK := g.ProjectOnSegments(p)
	if jointOK && (!trackOK || jointDist <= p.Distance(th.Point)) {
		return Hit{Kind: HitJoint, Joint: j}
	}
	if trackOK {
		return Hit{Kind: HitTrack, Track: th}
	}
	return Hit{Kind: HitNone}
}

// Joint returns a copy of the joint record under h. Mutating the copy does
// not affect the graph.
func (g *Graph) Joint(h JointHandle) (Joint, error) {
	j, err := g.joint(h)
	if err != nil {
		return Joint{}, err
	}
	return j.clone(), nil
}

// Segment returns the segment record under h.
func (g *Graph) Segment(h SegmentHandle) (Segment, error) {
	seg, ok := g.segments.Get(h)
	if !ok {
		return Segment{}, fmt.Errorf("%w: %d", ErrUnknownSegment, h)
	}
	return seg, nil
}

// SegmentBetween returns the segment directly joining two joints.
// Returns ErrPrecondition when the joints are not direct neighbors.
func (g *Graph) SegmentBetween(a, b JointHandle) (SegmentHandle, error) {
	ja, err := g.joint(a)
	if err != nil {
		return 0, err
	}
	if _, err := g.joint(b); err != nil {
		return 0, err
	}
	seg, ok := ja.SegmentTo(b)
	if !ok {
		return 0, fmt.Errorf("%w: joints %d and %d do not share a segment", ErrPrecondition, a, b)
	}
	return seg, nil
}

// JointHandles returns all live joint handles in ascending order.
func (g *Graph) JointHandles() []JointHandle {
	out := make([]JointHandle, 0, g.jointIDs.Living())
	for h, j := range g.joints {
		if j != nil {
			out = append(out, JointHandle(h))
		}
	}
	return out
}

// SegmentHandles returns all live segment handles in ascending order.
func (g *Graph) SegmentHandles() []SegmentHandle {
	return g.segments.Living()
}

// NumJoints returns the number of live joints.
func (g *Graph) NumJoints() int {
	return g.jointIDs.Living()
}

// NumSegments returns the number of live segments.
func (g *Graph) NumSegments() int {
	return g.segments.Count()
}
