package engine

import (
	"github.com/railkit/trackforge/geom"
	"github.com/railkit/trackforge/track"
)

// OpKind identifies a journaled editing operation
type OpKind string

const (
	OpCreateSegment OpKind = "create_segment"
	OpBranch        OpKind = "branch"
	OpExtend        OpKind = "extend"
	OpSplit         OpKind = "split"

	// Validation constants
	MinWorldSize        = 100.0
	MaxWorldSize        = 10000.0
	MinControlPoints    = 2
	MaxControlPoints    = 4
	WebSocketBufferSize = 256
)

// PointSpec is the wire form of a 2D coordinate or vector
type PointSpec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point converts the wire form to a geometry point
func (p PointSpec) Point() geom.Point {
	return geom.Pt(p.X, p.Y)
}

// Vec converts the wire form to a geometry vector
func (p PointSpec) Vec() geom.Vec2 {
	return geom.V2(p.X, p.Y)
}

// SpecOf converts a geometry point to its wire form
func SpecOf(p geom.Point) PointSpec {
	return PointSpec{X: p.X, Y: p.Y}
}

// SpecOfVec converts a geometry vector to its wire form
func SpecOfVec(v geom.Vec2) PointSpec {
	return PointSpec{X: v.X, Y: v.Y}
}

// LayoutConfig represents a track layout configuration from JSON
type LayoutConfig struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	WorldWidth  float64       `json:"world_width"`
	WorldHeight float64       `json:"world_height"`
	Tracks      [][]PointSpec `json:"tracks"`
}

// OpRecord represents a single operation in the editing journal. Points
// holds the full control point list for create_segment and the control
// points past the origin joint for branch and extend.
type OpRecord struct {
	Op            OpKind      `json:"op"`
	Points        []PointSpec `json:"points,omitempty"`
	FromJoint     int         `json:"from_joint"`
	ComingFrom    int         `json:"coming_from"`
	JointA        int         `json:"joint_a"`
	JointB        int         `json:"joint_b"`
	AtT           float64     `json:"at_t"`
	Tangent       PointSpec   `json:"tangent"`
	ResultSegment int         `json:"result_segment"`
	ResultJoint   int         `json:"result_joint"`
	Error         string      `json:"error,omitempty"`
	Timestamp     int64       `json:"timestamp"`
	Success       bool        `json:"success"`
	OpNumber      int         `json:"op_number"`
}

// JointState is the JSON-ready view of one joint
type JointState struct {
	Handle   int       `json:"handle"`
	Position PointSpec `json:"position"`
	Tangent  PointSpec `json:"tangent"`
	DeadEnd  bool      `json:"dead_end"`
	Forward  []int     `json:"forward"`
	Reverse  []int     `json:"reverse"`
}

// SegmentState is the JSON-ready view of one segment
type SegmentState struct {
	Handle int         `json:"handle"`
	T0     int         `json:"t0"`
	T1     int         `json:"t1"`
	Points []PointSpec `json:"points"`
}

// EditorState represents the complete editor state
type EditorState struct {
	Joints       []JointState   `json:"joints"`
	Segments     []SegmentState `json:"segments"`
	JointCount   int            `json:"joint_count"`
	SegmentCount int            `json:"segment_count"`
	DeadEnds     []int          `json:"dead_ends"`
	WorldWidth   float64        `json:"world_width"`
	WorldHeight  float64        `json:"world_height"`
	Message      string         `json:"message"`
	ConfigName   string         `json:"config_name"`
	OpHistory    []OpRecord     `json:"op_history"`
	TotalOps     int            `json:"total_ops"`

	// CurrentOps tracks only the operations since the last reset. It
	// mirrors OpHistory entries but gets cleared on reset while OpHistory
	// remains cumulative.
	CurrentOps      []OpRecord `json:"current_ops"`
	CurrentOpsCount int        `json:"current_ops_count"`
}

// ProjectResult is the JSON-ready outcome of projecting a pointer
// position onto the graph
type ProjectResult struct {
	Kind    string    `json:"kind"` // "joint", "track" or "none"
	Joint   int       `json:"joint,omitempty"`
	Segment int       `json:"segment,omitempty"`
	T0      int       `json:"t0,omitempty"`
	T1      int       `json:"t1,omitempty"`
	T       float64   `json:"t,omitempty"`
	Point   PointSpec `json:"point"`
	Tangent PointSpec `json:"tangent"`
	DeadEnd bool      `json:"dead_end,omitempty"`
}

func jointState(g *track.Graph, h track.JointHandle) JointState {
	j, err := g.Joint(h)
	if err != nil {
		return JointState{Handle: int(h)}
	}
	forward := make([]int, 0)
	reverse := make([]int, 0)
	for _, n := range j.Neighbors(track.Forward) {
		forward = append(forward, int(n))
	}
	for _, n := range j.Neighbors(track.Reverse) {
		reverse = append(reverse, int(n))
	}
	return JointState{
		Handle:   int(h),
		Position: SpecOf(j.Position),
		Tangent:  SpecOfVec(j.Tangent),
		DeadEnd:  g.IsDeadEnd(h),
		Forward:  forward,
		Reverse:  reverse,
	}
}

func segmentState(g *track.Graph, h track.SegmentHandle) SegmentState {
	seg, err := g.Segment(h)
	if err != nil {
		return SegmentState{Handle: int(h)}
	}
	pts := seg.Curve.ControlPoints()
	specs := make([]PointSpec, len(pts))
	for i, p := range pts {
		specs[i] = SpecOf(p)
	}
	return SegmentState{
		Handle: int(h),
		T0:     int(seg.T0),
		T1:     int(seg.T1),
		Points: specs,
	}
}
