// Package service provides the business logic layer for the track editor.
//
// The service package implements:
//   - Multi-session editor management
//   - Layout configuration management and loading
//   - Edit processing and rejection handling
//   - Session lifecycle management
//   - Operation history tracking
//
// Core Interfaces:
//
// EditorService is the main service interface providing high-level editing
// operations. SessionManager handles session creation, retrieval, and
// lifecycle. ConfigManager manages layout configuration loading and
// validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the editing engine, providing session isolation, configuration
// management, and business logic orchestration. Each session maintains its
// own editor instance with an independent graph and journal.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	editorService := service.NewEditorService(sessionMgr, configMgr)
//
//	// Create a new session
//	sessionInfo, err := editorService.CreateSession(ctx, "junction")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Lay track
//	result, err := editorService.CreateSegment(ctx, sessionInfo.ID, points)
//
// Edit Rejections:
//
// A rejected edit is not a service error: the returned EditResult carries
// success=false and the rejection message, and the attempt stays in the
// session journal. Service errors are reserved for unknown sessions,
// unknown configurations and persistence failures.
package service
