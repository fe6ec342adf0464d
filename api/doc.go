// Package api provides HTTP REST API handlers for the track editor.
//
// The api package implements:
//   - RESTful endpoints for graph editing operations
//   - Session management endpoints
//   - Configuration listing and creation
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session
//   - GET /api/sessions - List all sessions (supports sort/order/limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Editing Operations:
//   - GET /api/sessions/{id}/graph - Full editor state
//   - POST /api/sessions/{id}/segments - Lay a free-standing segment
//   - POST /api/sessions/{id}/branch - Branch off an existing joint
//   - POST /api/sessions/{id}/extend - Extend through a dead end
//   - POST /api/sessions/{id}/split - Insert a joint into a segment
//   - GET /api/sessions/{id}/project?x=&y= - Snap a point onto the graph
//   - POST /api/sessions/{id}/reset - Reset to the seeded layout
//   - GET /api/sessions/{id}/history - Operation journal with pagination
//
// Configuration:
//   - GET /api/configs - List available layout configurations
//   - POST /api/configs - Save a new layout configuration
//   - GET /api/configs/{name} - Get a specific configuration
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Edit operations POST a JSON body
// naming joints by their integer handles:
//
//	{
//	  "points": [{"x": 0, "y": 0}, {"x": 100, "y": 0}], // control points
//	  "from_joint": 3,                                   // branch / extend
//	  "coming_from": 0,                                  // extend only
//	  "tangent": {"x": 1, "y": 0},                       // branch only
//	  "joint_a": 0, "joint_b": 1, "at_t": 0.5            // split only
//	}
//
// Edit responses carry an EditResult: a success flag, the resulting editor
// state, the handle of any created segment or joint, and a message when the
// edit was rejected. Rejected edits return 200 with success=false; only
// transport and session errors map to 4xx/5xx status codes.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
