// Package mcp provides a Model Context Protocol interface for the track editor.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for graph editing operations
//   - Session-aware command execution
//   - Thin proxying to the REST API
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - graph_state: Get the full track graph with joints and segments
//   - create_segment: Lay a free-standing piece of track
//   - branch_segment: Start new track from an existing joint
//   - extend_track: Continue track through a dead end
//   - split_segment: Insert a joint into an existing segment
//   - project_point: Snap a world coordinate onto the graph
//   - reset_session: Reset the graph to its seeded layout
//   - edit_history: Retrieve the operation journal with pagination
//   - create_session: Create new editing session with layout selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_configs: List available layout configurations
//   - editor_instructions: Comprehensive editing rules and workflow guidance
//   - describe_joint: Detailed view of one joint's position, tangent and connections
//
// Architecture:
//
// The MCP server is a thin client over the REST API: every tool call maps
// to one or two HTTP requests against the running editor server and the
// JSON responses are rendered into agent-friendly text. This keeps a
// single source of truth for editing semantics and lets the REST and MCP
// surfaces share sessions.
//
// Session Management:
//
// All editing tools require a session_id parameter. AI agents can manage
// multiple concurrent editing sessions independently; sessions survive
// server restarts through the persistence layer.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
