// Package engine provides the core editing logic for the track editor.
//
// The engine package implements the editing mechanics including:
//   - Track graph mutations (create, branch, extend, split)
//   - Pointer projection onto joints and curves
//   - Operation journaling and deterministic replay
//   - Layout configuration loading and validation
//
// Core Types:
//
// The Editor interface defines the main contract for editing operations,
// implemented by TrackEditor. EditorState is a JSON-ready snapshot of the
// track graph plus the operation journal, while LayoutConfig defines the
// seed tracks and world bounds loaded from JSON files.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("junction")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	editor, err := engine.NewEditor(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Lay a straight piece of track
//	seg, err := editor.CreateSegment([]engine.PointSpec{{X: 100, Y: 300}, {X: 700, Y: 300}})
//	state := editor.State()
//
// Editing Rules:
//
// Every mutation is journaled with its parameters and outcome, failures
// included. Rejected operations never change the graph, so replaying the
// journal's successful entries on a freshly seeded editor rebuilds the
// exact same graph with the exact same joint and segment handles.
package engine
