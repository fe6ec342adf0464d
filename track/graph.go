package track

import (
	"errors"
	"fmt"

	"github.com/railkit/trackforge/geom"
)

// SnapRadius is the distance within which pointer positions snap to joints
// and track segments.
const SnapRadius = 10.0

// Failure kinds for graph operations. Mutations validate every input before
// touching state, so a returned error guarantees the graph was left
// unchanged.
var (
	ErrUnknownJoint   = errors.New("unknown joint handle")
	ErrUnknownSegment = errors.New("unknown segment handle")
	ErrPrecondition   = errors.New("precondition not met")
)

// Graph is a mutable network of joints connected by directed curve
// segments. Joints and segments are addressed by recyclable integer
// handles; all rewiring happens inside Graph methods.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	jointIDs *Allocator
	joints   []*Joint // arena indexed by JointHandle
	segments *SegmentStore
}

// NewGraph returns an empty track graph.
func NewGraph() *Graph {
	return &Graph{
		jointIDs: NewAllocator(),
		segments: NewSegmentStore(),
	}
}

// orientationEps treats near-zero components as zero when classifying
// tangent orientation.
const orientationEps = 1e-9

// sameDirection reports whether two vectors share the same orientation,
// comparing the sign of each component rather than the angle between the
// vectors. Opposite vectors never match, and a vector matches a
// perpendicular one only where their zero components line up.
func sameDirection(a, b geom.Vec2) bool {
	return orientationSign(a.X) == orientationSign(b.X) &&
		orientationSign(a.Y) == orientationSign(b.Y)
}

func orientationSign(v float64) int {
	switch {
	case v > orientationEps:
		return 1
	case v < -orientationEps:
		return -1
	default:
		return 0
	}
}

func (g *Graph) joint(h JointHandle) (*Joint, error) {
	if int(h) < 0 || int(h) >= len(g.joints) || g.joints[h] == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownJoint, h)
	}
	return g.joints[h], nil
}

func (g *Graph) addJoint(pos geom.Point, tangent geom.Vec2) JointHandle {
	h := JointHandle(g.jointIDs.Acquire())
	for int(h) >= len(g.joints) {
		g.joints = append(g.joints, nil)
	}
	g.joints[h] = newJoint(pos, tangent)
	return h
}

// buildCurve assembles the control point list start, interior..., end.
func buildCurve(start, end geom.Point, interior []geom.Point) (geom.Curve, error) {
	pts := make([]geom.Point, 0, len(interior)+2)
	pts = append(pts, start)
	pts = append(pts, interior...)
	pts = append(pts, end)
	c, err := geom.NewCurve(pts...)
	if err != nil {
		return geom.Curve{}, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	return c, nil
}

func isDeadEnd(j *Joint) bool {
	return len(j.connections) == 1 && len(j.directions) == 1
}

// CreateSegment adds a free-standing piece of track: two new joints joined
// by one new segment whose curve runs from start to end through the given
// interior control points. Each joint's canonical tangent is the unit curve
// derivative at its own end, so the start joint classifies the end joint as
// Forward and the end joint classifies the start joint as Reverse.
func (g *Graph) CreateSegment(start, end geom.Point, interior []geom.Point) (SegmentHandle, error) {
	curve, err := buildCurve(start, end, interior)
	if err != nil {
		return 0, err
	}

	startJoint := g.addJoint(curve.Start(), curve.Derivative(0).Normalize())
	endJoint := g.addJoint(curve.End(), curve.Derivative(1).Normalize())
	seg := g.segments.Insert(Segment{T0: startJoint, T1: endJoint, Curve: curve})

	g.joints[startJoint].attach(endJoint, seg, Forward)
	g.joints[endJoint].attach(startJoint, seg, Reverse)
	return seg, nil
}

// Branch grows new track out of an existing joint to a brand-new end
// point. tangentAtStart is the direction the new curve leaves the joint
// with; comparing it against the joint's canonical tangent decides whether
// the new neighbor is classified Forward or Reverse. The new end joint
// records the existing joint as Reverse, matching CreateSegment's outward
// orientation.
func (g *Graph) Branch(from JointHandle, end geom.Point, interior []geom.Point, tangentAtStart geom.Vec2) (SegmentHandle, error) {
	origin, err := g.joint(from)
	if err != nil {
		return 0, err
	}
	curve, err := buildCurve(origin.Position, end, interior)
	if err != nil {
		return 0, err
	}

	dir := Reverse
	if sameDirection(origin.Tangent, tangentAtStart) {
		dir = Forward
	}

	endJoint := g.addJoint(curve.End(), curve.Derivative(1).Normalize())
	seg := g.segments.Insert(Segment{T0: from, T1: endJoint, Curve: curve})

	origin.attach(endJoint, seg, dir)
	g.joints[endJoint].attach(from, seg, Reverse)
	return seg, nil
}

// Extend continues a dead end with a new segment. The joint being extended
// must be a dead end and comingFrom must be its sole neighbor; either
// failing is an ErrPrecondition. The new neighbor is classified against the
// dead end's canonical tangent using the new curve's own start derivative.
func (g *Graph) Extend(comingFrom, from JointHandle, end geom.Point, interior []geom.Point) (SegmentHandle, error) {
	if _, err := g.joint(comingFrom); err != nil {
		return 0, err
	}
	origin, err := g.joint(from)
	if err != nil {
		return 0, err
	}
	if !isDeadEnd(origin) {
		return 0, fmt.Errorf("%w: joint %d is not a dead end", ErrPrecondition, from)
	}
	if _, ok := origin.SegmentTo(comingFrom); !ok {
		return 0, fmt.Errorf("%w: joint %d is not connected to joint %d", ErrPrecondition, from, comingFrom)
	}
	curve, err := buildCurve(origin.Position, end, interior)
	if err != nil {
		return 0, err
	}

	dir := Reverse
	if sameDirection(origin.Tangent, curve.Derivative(0)) {
		dir = Forward
	}

	endJoint := g.addJoint(curve.End(), curve.Derivative(1).Normalize())
	seg := g.segments.Insert(Segment{T0: from, T1: endJoint, Curve: curve})

	origin.attach(endJoint, seg, dir)
	g.joints[endJoint].attach(from, seg, Reverse)
	return seg, nil
}

// InsertJoint splits the segment joining a and b at parameter atT of its
// stored curve, replacing it with two segments that share one new joint at
// the split point. atT is interpreted on the stored curve regardless of the
// order a and b are given in, and must lie strictly inside (0, 1).
//
// The new joint's tangent is the unit derivative of the first half at its
// end. Each original joint drops the far joint from its connections and
// gains the new joint, classified by comparing the joint's stored tangent
// with the original curve's derivative at that joint's own end. The
// original segment is destroyed and its handle recycled.
func (g *Graph) InsertJoint(a, b JointHandle, atT float64) (JointHandle, error) {
	ja, err := g.joint(a)
	if err != nil {
		return 0, err
	}
	if _, err := g.joint(b); err != nil {
		return 0, err
	}
	segHandle, ok := ja.SegmentTo(b)
	if !ok {
		return 0, fmt.Errorf("%w: joints %d and %d do not share a segment", ErrPrecondition, a, b)
	}
	seg, ok := g.segments.Get(segHandle)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSegment, segHandle)
	}
	if atT <= 0 || atT >= 1 {
		return 0, fmt.Errorf("%w: split parameter %v outside (0, 1)", ErrPrecondition, atT)
	}

	t0, t1 := seg.T0, seg.T1
	first, second := seg.Curve.Split(atT)

	mid := g.addJoint(first.End(), first.Derivative(1).Normalize())
	firstSeg := g.segments.Insert(Segment{T0: t0, T1: mid, Curve: first})
	secondSeg := g.segments.Insert(Segment{T0: mid, T1: t1, Curve: second})

	j0 := g.joints[t0]
	j1 := g.joints[t1]

	dir0 := Reverse
	if sameDirection(j0.Tangent, seg.Curve.Derivative(0)) {
		dir0 = Forward
	}
	// at the t1 end the far joint lies against the outgoing derivative
	dir1 := Forward
	if sameDirection(j1.Tangent, seg.Curve.Derivative(1)) {
		dir1 = Reverse
	}

	j0.detach(t1)
	j0.attach(mid, firstSeg, dir0)
	j1.detach(t0)
	j1.attach(mid, secondSeg, dir1)

	g.joints[mid].attach(t0, firstSeg, Reverse)
	g.joints[mid].attach(t1, secondSeg, Forward)

	g.segments.Remove(segHandle)
	return mid, nil
}
