package engine

import (
	"fmt"
	"time"

	"github.com/railkit/trackforge/geom"
	"github.com/railkit/trackforge/track"
)

// splitControlPoints separates a full control point list into the start,
// end and interior points the graph mutation signatures expect
func splitControlPoints(points []PointSpec) (start, end geom.Point, interior []geom.Point, err error) {
	if len(points) < MinControlPoints || len(points) > MaxControlPoints {
		return geom.Point{}, geom.Point{}, nil,
			fmt.Errorf("expected %d to %d control points, got %d", MinControlPoints, MaxControlPoints, len(points))
	}
	start = points[0].Point()
	end = points[len(points)-1].Point()
	for _, p := range points[1 : len(points)-1] {
		interior = append(interior, p.Point())
	}
	return start, end, interior, nil
}

// tailControlPoints separates the control points past an origin joint
// into the end point and interior points
func tailControlPoints(points []PointSpec) (end geom.Point, interior []geom.Point, err error) {
	if len(points) < 1 || len(points) > MaxControlPoints-1 {
		return geom.Point{}, nil,
			fmt.Errorf("expected 1 to %d control points past the origin, got %d", MaxControlPoints-1, len(points))
	}
	end = points[len(points)-1].Point()
	for _, p := range points[:len(points)-1] {
		interior = append(interior, p.Point())
	}
	return end, interior, nil
}

// record stamps and appends an operation to the journal
func (e *TrackEditor) record(rec OpRecord, err error) {
	rec.Timestamp = time.Now().Unix()
	rec.Success = err == nil
	if err != nil {
		rec.Error = err.Error()
	}
	rec.OpNumber = e.totalOps + 1

	// Append to cumulative history (never cleared by reset) and increment
	// total
	e.history = append(e.history, rec)
	e.totalOps++

	// Append to the current segment journal
	e.current = append(e.current, rec)
}

// CreateSegment lays a free-standing piece of track from a full control
// point list running start to end
func (e *TrackEditor) CreateSegment(points []PointSpec) (track.SegmentHandle, error) {
	rec := OpRecord{Op: OpCreateSegment, Points: points}

	start, end, interior, err := splitControlPoints(points)
	var seg track.SegmentHandle
	if err == nil {
		seg, err = e.graph.CreateSegment(start, end, interior)
	}

	rec.ResultSegment = int(seg)
	e.record(rec, err)
	if err != nil {
		e.message = fmt.Sprintf("Create rejected: %v", err)
		return 0, err
	}
	e.message = fmt.Sprintf("Created segment %d", seg)
	return seg, nil
}

// Branch grows new track out of an existing joint. points are the control
// points past the joint, ending at the new end position; tangent is the
// direction the new track leaves the joint with.
func (e *TrackEditor) Branch(from int, points []PointSpec, tangent PointSpec) (track.SegmentHandle, error) {
	rec := OpRecord{Op: OpBranch, Points: points, FromJoint: from, Tangent: tangent}

	end, interior, err := tailControlPoints(points)
	var seg track.SegmentHandle
	if err == nil {
		seg, err = e.graph.Branch(track.JointHandle(from), end, interior, tangent.Vec())
	}

	rec.ResultSegment = int(seg)
	e.record(rec, err)
	if err != nil {
		e.message = fmt.Sprintf("Branch rejected: %v", err)
		return 0, err
	}
	e.message = fmt.Sprintf("Branched segment %d from joint %d", seg, from)
	return seg, nil
}

// Extend continues a dead-end joint with new track. comingFrom names the
// dead end's sole neighbor; points are the control points past the joint.
func (e *TrackEditor) Extend(comingFrom, from int, points []PointSpec) (track.SegmentHandle, error) {
	rec := OpRecord{Op: OpExtend, Points: points, FromJoint: from, ComingFrom: comingFrom}

	end, interior, err := tailControlPoints(points)
	var seg track.SegmentHandle
	if err == nil {
		seg, err = e.graph.Extend(track.JointHandle(comingFrom), track.JointHandle(from), end, interior)
	}

	rec.ResultSegment = int(seg)
	e.record(rec, err)
	if err != nil {
		e.message = fmt.Sprintf("Extend rejected: %v", err)
		return 0, err
	}
	e.message = fmt.Sprintf("Extended joint %d with segment %d", from, seg)
	return seg, nil
}

// SplitSegment inserts a joint into the segment joining two joints at
// parameter atT of its stored curve
func (e *TrackEditor) SplitSegment(jointA, jointB int, atT float64) (track.JointHandle, error) {
	rec := OpRecord{Op: OpSplit, JointA: jointA, JointB: jointB, AtT: atT}

	mid, err := e.graph.InsertJoint(track.JointHandle(jointA), track.JointHandle(jointB), atT)

	rec.ResultJoint = int(mid)
	e.record(rec, err)
	if err != nil {
		e.message = fmt.Sprintf("Split rejected: %v", err)
		return 0, err
	}
	e.message = fmt.Sprintf("Inserted joint %d between %d and %d", mid, jointA, jointB)
	return mid, nil
}

// Project snaps a pointer position onto the graph and reports what it
// landed on
func (e *TrackEditor) Project(x, y float64) ProjectResult {
	hit := e.graph.Project(geom.Pt(x, y))
	switch hit.Kind {
	case track.HitJoint:
		j, err := e.graph.Joint(hit.Joint)
		if err != nil {
			return ProjectResult{Kind: track.HitNone.String()}
		}
		return ProjectResult{
			Kind:    hit.Kind.String(),
			Joint:   int(hit.Joint),
			Point:   SpecOf(j.Position),
			Tangent: SpecOfVec(j.Tangent),
			DeadEnd: e.graph.IsDeadEnd(hit.Joint),
		}
	case track.HitTrack:
		return ProjectResult{
			Kind:    hit.Kind.String(),
			Segment: int(hit.Track.Segment),
			T0:      int(hit.Track.T0),
			T1:      int(hit.Track.T1),
			T:       hit.Track.T,
			Point:   SpecOf(hit.Track.Point),
			Tangent: SpecOfVec(hit.Track.Tangent),
		}
	default:
		return ProjectResult{Kind: hit.Kind.String()}
	}
}
