package engine

import (
	"fmt"

	"github.com/railkit/trackforge/track"
)

// Editor provides the main interface for editing operations
type Editor interface {
	// Editor state management
	State() *EditorState
	Reset() *EditorState
	Graph() *track.Graph

	// Mutations
	CreateSegment(points []PointSpec) (track.SegmentHandle, error)
	Branch(from int, points []PointSpec, tangent PointSpec) (track.SegmentHandle, error)
	Extend(comingFrom, from int, points []PointSpec) (track.SegmentHandle, error)
	SplitSegment(jointA, jointB int, atT float64) (track.JointHandle, error)

	// Queries
	Project(x, y float64) ProjectResult

	// Configuration
	Config() *LayoutConfig

	// History
	History() []OpRecord
	CurrentOps() []OpRecord
	LastOp() *OpRecord
	Replay(ops []OpRecord) error
}

// TrackEditor implements the Editor interface
type TrackEditor struct {
	graph  *track.Graph
	config *LayoutConfig

	history  []OpRecord // cumulative, survives resets
	totalOps int
	current  []OpRecord // since the last reset, replayable
	message  string
}

// NewEditor creates a new track editor seeded from the provided
// configuration
func NewEditor(config *LayoutConfig) (*TrackEditor, error) {
	if err := ValidateLayoutConfig(config); err != nil {
		return nil, err
	}

	graph, err := InitGraphFromConfig(config)
	if err != nil {
		return nil, err
	}

	return &TrackEditor{
		graph:   graph,
		config:  config,
		history: []OpRecord{},
		current: []OpRecord{},
		message: fmt.Sprintf("Loaded layout %q", config.Name),
	}, nil
}

// NewEditorWithDefaults creates a new track editor with the default
// configuration
func NewEditorWithDefaults() *TrackEditor {
	config := DefaultLayoutConfig()
	editor, err := NewEditor(config)
	if err != nil {
		// The built-in default always validates
		panic(fmt.Sprintf("engine: default layout rejected: %v", err))
	}
	return editor
}

// Graph returns the live track graph. Callers must go through the editor
// for mutations, or the journal stops matching the graph.
func (e *TrackEditor) Graph() *track.Graph {
	return e.graph
}

// Config returns the current layout configuration
func (e *TrackEditor) Config() *LayoutConfig {
	return e.config
}

// State returns a snapshot of the current editor state
func (e *TrackEditor) State() *EditorState {
	g := e.graph

	joints := make([]JointState, 0, g.NumJoints())
	deadEnds := make([]int, 0)
	for _, h := range g.JointHandles() {
		js := jointState(g, h)
		joints = append(joints, js)
		if js.DeadEnd {
			deadEnds = append(deadEnds, int(h))
		}
	}

	segments := make([]SegmentState, 0, g.NumSegments())
	for _, h := range g.SegmentHandles() {
		segments = append(segments, segmentState(g, h))
	}

	return &EditorState{
		Joints:          joints,
		Segments:        segments,
		JointCount:      g.NumJoints(),
		SegmentCount:    g.NumSegments(),
		DeadEnds:        deadEnds,
		WorldWidth:      e.config.WorldWidth,
		WorldHeight:     e.config.WorldHeight,
		Message:         e.message,
		ConfigName:      e.config.Name,
		OpHistory:       e.history,
		TotalOps:        e.totalOps,
		CurrentOps:      e.current,
		CurrentOpsCount: len(e.current),
	}
}

// Reset rebuilds the seeded graph from the configuration. The cumulative
// history and totals survive the reset; only the current operation
// segment is cleared.
func (e *TrackEditor) Reset() *EditorState {
	graph, err := InitGraphFromConfig(e.config)
	if err != nil {
		// The config was validated at construction time
		panic(fmt.Sprintf("engine: reseed failed for validated layout: %v", err))
	}

	e.graph = graph
	e.current = []OpRecord{}
	e.message = fmt.Sprintf("Reset to layout %q", e.config.Name)
	return e.State()
}

// History returns the cumulative operation journal
func (e *TrackEditor) History() []OpRecord {
	return e.history
}

// CurrentOps returns the operations applied since the last reset
func (e *TrackEditor) CurrentOps() []OpRecord {
	return e.current
}

// LastOp returns the last journaled operation, or nil if none
func (e *TrackEditor) LastOp() *OpRecord {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// Replay re-applies a journal on top of the freshly seeded graph and then
// restores the journal as both the current operation segment and the
// cumulative history, with the total counter rebuilt from the journaled
// op numbers. Only successful entries touch the graph; a successful entry
// that fails to re-apply means the journal does not belong to this
// configuration.
func (e *TrackEditor) Replay(ops []OpRecord) error {
	for i, op := range ops {
		if !op.Success {
			continue
		}
		if err := e.apply(op); err != nil {
			return fmt.Errorf("replay: op %d (%s) failed: %w", i, op.Op, err)
		}
	}
	e.current = append([]OpRecord{}, ops...)
	e.history = append([]OpRecord{}, ops...)
	e.totalOps = len(ops)
	for _, op := range ops {
		if op.OpNumber > e.totalOps {
			e.totalOps = op.OpNumber
		}
	}
	e.message = fmt.Sprintf("Replayed %d operations", len(ops))
	return nil
}

// apply re-executes one journaled operation without recording it
func (e *TrackEditor) apply(op OpRecord) error {
	switch op.Op {
	case OpCreateSegment:
		start, end, interior, err := splitControlPoints(op.Points)
		if err != nil {
			return err
		}
		_, err = e.graph.CreateSegment(start, end, interior)
		return err
	case OpBranch:
		end, interior, err := tailControlPoints(op.Points)
		if err != nil {
			return err
		}
		_, err = e.graph.Branch(track.JointHandle(op.FromJoint), end, interior, op.Tangent.Vec())
		return err
	case OpExtend:
		end, interior, err := tailControlPoints(op.Points)
		if err != nil {
			return err
		}
		_, err = e.graph.Extend(track.JointHandle(op.ComingFrom), track.JointHandle(op.FromJoint), end, interior)
		return err
	case OpSplit:
		_, err := e.graph.InsertJoint(track.JointHandle(op.JointA), track.JointHandle(op.JointB), op.AtT)
		return err
	default:
		return fmt.Errorf("unknown op kind %q", op.Op)
	}
}
