package track

import (
	"sort"

	"github.com/railkit/trackforge/geom"
)

// JointHandle identifies a joint in a Graph.
type JointHandle int

// SegmentHandle identifies a track segment in a Graph.
type SegmentHandle int

// Direction classifies a neighbor relative to a joint's canonical tangent.
type Direction int

const (
	// Forward marks a neighbor reached travelling along the joint's tangent.
	Forward Direction = iota
	// Reverse marks a neighbor reached travelling against the joint's tangent.
	Reverse
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Forward {
		return Reverse
	}
	return Forward
}

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "reverse"
}

// Joint is a node of the track graph. Position and Tangent are fixed at
// creation: the tangent is the unit derivative of the curve that created
// the joint, evaluated at the joint's own end, and serves as the stable
// reference for classifying neighbors into directions.
type Joint struct {
	Position geom.Point
	Tangent  geom.Vec2

	connections map[JointHandle]SegmentHandle
	directions  map[JointHandle]Direction
}

func newJoint(pos geom.Point, tangent geom.Vec2) *Joint {
	return &Joint{
		Position:    pos,
		Tangent:     tangent,
		connections: make(map[JointHandle]SegmentHandle),
		directions:  make(map[JointHandle]Direction),
	}
}

// Degree returns the number of connected neighbors.
func (j Joint) Degree() int {
	return len(j.connections)
}

// SegmentTo returns the segment joining this joint to the given neighbor.
func (j Joint) SegmentTo(neighbor JointHandle) (SegmentHandle, bool) {
	s, ok := j.connections[neighbor]
	return s, ok
}

// DirectionTo returns the direction under which the neighbor is classified.
func (j Joint) DirectionTo(neighbor JointHandle) (Direction, bool) {
	d, ok := j.directions[neighbor]
	return d, ok
}

// Connections returns a copy of the neighbor to segment mapping.
func (j Joint) Connections() map[JointHandle]SegmentHandle {
	out := make(map[JointHandle]SegmentHandle, len(j.connections))
	for k, v := range j.connections {
		out[k] = v
	}
	return out
}

// Neighbors returns the neighbors classified under d, in ascending handle
// order.
func (j Joint) Neighbors(d Direction) []JointHandle {
	var out []JointHandle
	for n, nd := range j.directions {
		if nd == d {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func (j *Joint) attach(neighbor JointHandle, seg SegmentHandle, d Direction) {
	j.connections[neighbor] = seg
	j.directions[neighbor] = d
}

func (j *Joint) detach(neighbor JointHandle) {
	delete(j.connections, neighbor)
	delete(j.directions, neighbor)
}

func (j *Joint) clone() Joint {
	c := *j
	c.connections = make(map[JointHandle]SegmentHandle, len(j.connections))
	for k, v := range j.connections {
		c.connections[k] = v
	}
	c.directions = make(map[JointHandle]Direction, len(j.directions))
	for k, v := range j.directions {
		c.directions[k] = v
	}
	return c
}

// Segment is a directed edge of the track graph. Its curve runs from the
// joint at parameter 0 (T0) to the joint at parameter 1 (T1).
type Segment struct {
	T0    JointHandle
	T1    JointHandle
	Curve geom.Curve
}

// TrackHit describes the closest point found on a live segment.
type TrackHit struct {
	Segment SegmentHandle
	T0      JointHandle
	T1      JointHandle
	T       float64    // parameter of the hit on the segment's curve
	Point   geom.Point // position at T
	Tangent geom.Vec2  // unit tangent at T
}

// HitKind discriminates Project results.
type HitKind int

const (
	HitNone HitKind = iota
	HitJoint
	HitTrack
)

func (k HitKind) String() string {
	switch k {
	case HitJoint:
		return "joint"
	case HitTrack:
		return "track"
	default:
		return "none"
	}
}

// Hit is the result of projecting a pointer position onto the graph.
// Joint is meaningful only when Kind is HitJoint, Track only when Kind is
// HitTrack.
type Hit struct {
	Kind  HitKind
	Joint JointHandle
	Track TrackHit
}
