package main

import (
	"log"
	"math"
	"math/rand"
)

const (
	EditCreate  = "create_segment"
	EditBranch  = "branch"
	EditExtend  = "extend"
	EditSplit   = "split"
	EditProject = "project"
)

// Edit is one generated operation, ready to post to the server.
type Edit struct {
	Kind       string
	Points     []PointSpec
	FromJoint  int
	ComingFrom int
	JointA     int
	JointB     int
	AtT        float64
	Tangent    PointSpec
	X, Y       float64
}

// RandomStrategy generates a seeded stream of edits against the current
// state. Most edits are well-formed; a small share is deliberately invalid
// so the server's rejection path gets exercised too.
type RandomStrategy struct {
	rng    *rand.Rand
	worldW float64
	worldH float64
}

func NewRandomStrategy(seed int64, worldW, worldH float64) *RandomStrategy {
	log.Printf("📊 Random Strategy: seed=%d, world=%gx%g", seed, worldW, worldH)
	return &RandomStrategy{
		rng:    rand.New(rand.NewSource(seed)),
		worldW: worldW,
		worldH: worldH,
	}
}

// NextEdit picks the next operation based on what the current graph offers.
// Extends need a dead end, splits need a segment; when a pick has no
// material to work with it falls through to creating fresh track.
func (s *RandomStrategy) NextEdit(state *EditorState) Edit {
	// Roughly 1 in 10 edits is deliberately malformed
	if s.rng.Intn(10) == 0 {
		return s.malformedEdit(state)
	}

	switch s.rng.Intn(10) {
	case 0, 1, 2:
		if edit, ok := s.extendEdit(state); ok {
			return edit
		}
		return s.createEdit()
	case 3, 4:
		if edit, ok := s.branchEdit(state); ok {
			return edit
		}
		return s.createEdit()
	case 5, 6:
		if edit, ok := s.splitEdit(state); ok {
			return edit
		}
		return s.createEdit()
	case 7:
		return s.projectEdit()
	default:
		return s.createEdit()
	}
}

// createEdit makes a fresh segment from 2-4 random control points.
// Endpoints may land near existing geometry and snap; that is the point.
func (s *RandomStrategy) createEdit() Edit {
	n := 2 + s.rng.Intn(3)
	points := make([]PointSpec, n)
	points[0] = s.randPoint()
	for i := 1; i < n; i++ {
		points[i] = s.randPointNear(points[i-1], s.worldW/4)
	}
	return Edit{Kind: EditCreate, Points: points}
}

// extendEdit continues a random dead end along its tangent.
func (s *RandomStrategy) extendEdit(state *EditorState) (Edit, bool) {
	if len(state.DeadEnds) == 0 {
		return Edit{}, false
	}
	h := state.DeadEnds[s.rng.Intn(len(state.DeadEnds))]
	joint, ok := findJoint(state, h)
	if !ok {
		return Edit{}, false
	}

	neighbors := append(append([]int{}, joint.Forward...), joint.Reverse...)
	if len(neighbors) == 0 {
		return Edit{}, false
	}
	comingFrom := neighbors[s.rng.Intn(len(neighbors))]

	// Walk outward along the tangent, away from the neighbor side
	dir := joint.Tangent
	if len(joint.Forward) == 0 {
		// Open side is reverse of the tangent
		dir = PointSpec{X: -dir.X, Y: -dir.Y}
	}
	mag := math.Hypot(dir.X, dir.Y)
	if mag == 0 {
		return Edit{}, false
	}
	step := 40 + s.rng.Float64()*120
	end := PointSpec{
		X: joint.Position.X + dir.X/mag*step,
		Y: joint.Position.Y + dir.Y/mag*step,
	}
	end = s.clamp(s.jitter(end, step/3))

	n := 1 + s.rng.Intn(2)
	points := make([]PointSpec, 0, n)
	if n == 2 {
		mid := PointSpec{
			X: (joint.Position.X + end.X) / 2,
			Y: (joint.Position.Y + end.Y) / 2,
		}
		points = append(points, s.clamp(s.jitter(mid, step/4)))
	}
	points = append(points, end)

	return Edit{
		Kind:       EditExtend,
		ComingFrom: comingFrom,
		FromJoint:  h,
		Points:     points,
	}, true
}

// branchEdit grows new track out of a random connected joint, leaving in a
// direction rotated off the joint's tangent.
func (s *RandomStrategy) branchEdit(state *EditorState) (Edit, bool) {
	connected := make([]JointState, 0, len(state.Joints))
	for _, j := range state.Joints {
		if len(j.Forward)+len(j.Reverse) > 0 {
			connected = append(connected, j)
		}
	}
	if len(connected) == 0 {
		return Edit{}, false
	}
	joint := connected[s.rng.Intn(len(connected))]

	mag := math.Hypot(joint.Tangent.X, joint.Tangent.Y)
	if mag == 0 {
		return Edit{}, false
	}
	angle := (s.rng.Float64() - 0.5) * math.Pi / 2
	cos, sin := math.Cos(angle), math.Sin(angle)
	dir := PointSpec{
		X: (joint.Tangent.X*cos - joint.Tangent.Y*sin) / mag,
		Y: (joint.Tangent.X*sin + joint.Tangent.Y*cos) / mag,
	}
	if s.rng.Intn(2) == 0 {
		dir = PointSpec{X: -dir.X, Y: -dir.Y}
	}

	step := 60 + s.rng.Float64()*140
	end := s.clamp(PointSpec{
		X: joint.Position.X + dir.X*step,
		Y: joint.Position.Y + dir.Y*step,
	})

	return Edit{
		Kind:      EditBranch,
		FromJoint: joint.Handle,
		Points:    []PointSpec{end},
		Tangent:   dir,
	}, true
}

// splitEdit inserts a joint into a random segment at a random parameter.
func (s *RandomStrategy) splitEdit(state *EditorState) (Edit, bool) {
	if len(state.Segments) == 0 {
		return Edit{}, false
	}
	seg := state.Segments[s.rng.Intn(len(state.Segments))]
	return Edit{
		Kind:   EditSplit,
		JointA: seg.T0,
		JointB: seg.T1,
		AtT:    0.1 + s.rng.Float64()*0.8,
	}, true
}

func (s *RandomStrategy) projectEdit() Edit {
	p := s.randPoint()
	return Edit{Kind: EditProject, X: p.X, Y: p.Y}
}

// malformedEdit produces an edit the server should reject without
// changing the graph.
func (s *RandomStrategy) malformedEdit(state *EditorState) Edit {
	switch s.rng.Intn(4) {
	case 0:
		// Single control point
		return Edit{Kind: EditCreate, Points: []PointSpec{s.randPoint()}}
	case 1:
		// Too many control points
		points := make([]PointSpec, 5)
		for i := range points {
			points[i] = s.randPoint()
		}
		return Edit{Kind: EditCreate, Points: points}
	case 2:
		// Extend from a joint handle that was never allocated
		return Edit{
			Kind:       EditExtend,
			ComingFrom: 0,
			FromJoint:  state.JointCount + 1000,
			Points:     []PointSpec{s.randPoint()},
		}
	default:
		// Split between joints with no segment, or at a degenerate t
		if len(state.Joints) >= 2 && s.rng.Intn(2) == 0 {
			a := state.Joints[s.rng.Intn(len(state.Joints))].Handle
			return Edit{Kind: EditSplit, JointA: a, JointB: a, AtT: 0.5}
		}
		if len(state.Segments) > 0 {
			seg := state.Segments[s.rng.Intn(len(state.Segments))]
			return Edit{Kind: EditSplit, JointA: seg.T0, JointB: seg.T1, AtT: 0}
		}
		return Edit{Kind: EditSplit, JointA: 9999, JointB: 9998, AtT: 0.5}
	}
}

func (s *RandomStrategy) randPoint() PointSpec {
	return PointSpec{
		X: s.rng.Float64() * s.worldW,
		Y: s.rng.Float64() * s.worldH,
	}
}

func (s *RandomStrategy) randPointNear(p PointSpec, radius float64) PointSpec {
	return s.clamp(s.jitter(p, radius))
}

func (s *RandomStrategy) jitter(p PointSpec, radius float64) PointSpec {
	return PointSpec{
		X: p.X + (s.rng.Float64()-0.5)*2*radius,
		Y: p.Y + (s.rng.Float64()-0.5)*2*radius,
	}
}

func (s *RandomStrategy) clamp(p PointSpec) PointSpec {
	return PointSpec{
		X: math.Max(0, math.Min(s.worldW, p.X)),
		Y: math.Max(0, math.Min(s.worldH, p.Y)),
	}
}

func findJoint(state *EditorState, handle int) (JointState, bool) {
	for _, j := range state.Joints {
		if j.Handle == handle {
			return j, true
		}
	}
	return JointState{}, false
}
