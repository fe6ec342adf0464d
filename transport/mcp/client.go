package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/railkit/trackforge/editor/engine"
	"github.com/railkit/trackforge/editor/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"TrackForge Editor",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`TrackForge Track Editor - MCP Interface

This is a thin client that proxies all requests to the REST API server.

EDITOR OBJECTIVE:
Build and modify a graph of railway track laid out as Bezier curves. Joints
are the graph nodes (addressed by integer handles); segments are curved
track pieces connecting them.

AVAILABLE TOOLS:
- graph_state: Get the full editor state (joints, segments, dead ends)
- create_segment: Lay a free-standing piece of track (2-4 control points)
- branch_segment: Start new track from an existing joint
- extend_track: Continue track through a dead end
- split_segment: Insert a joint into an existing segment
- project_point: Snap a world coordinate onto the nearest joint or track
- reset_session: Reset the graph to its seeded layout
- edit_history: View the operation journal
- create_session: Create a new editing session
- get_session: Get session details
- list_sessions: List all active sessions
- list_configs: List available layout configurations
- editor_instructions: Get comprehensive editing instructions and rules
- describe_joint: Get detailed info about a specific joint (position, tangent, connections)

TIP: use project_point before editing near existing track - it tells you
whether a coordinate snaps to a joint, to a point along a segment, or to
nothing.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new editing session with optional layout selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the layout config to seed from (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active editing sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Graph operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "graph_state",
		Description: "Get the current track graph state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGraphState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_segment",
		Description: "Lay a free-standing piece of track from a list of 2-4 control points. Creates two new dead-end joints at the first and last control point.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"points": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x": map[string]interface{}{"type": "number"},
							"y": map[string]interface{}{"type": "number"},
						},
					},
					"description": "Control points, 2 (line) to 4 (cubic curve), in track order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this edit (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "points"},
		},
	}, c.handleCreateSegment)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "branch_segment",
		Description: "Start a new piece of track from an existing joint. The tangent sets which side of the joint the branch leaves from; the remaining control points shape the new segment ending at a new dead-end joint.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"from_joint": map[string]interface{}{
					"type":        "integer",
					"description": "Handle of the joint to branch from",
				},
				"points": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x": map[string]interface{}{"type": "number"},
							"y": map[string]interface{}{"type": "number"},
						},
					},
					"description": "Control points past the origin joint, 1 to 3, last one is the new end",
				},
				"tangent": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"x": map[string]interface{}{"type": "number"},
						"y": map[string]interface{}{"type": "number"},
					},
					"description": "Direction of departure at the origin joint",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this edit (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "from_joint", "points", "tangent"},
		},
	}, c.handleBranchSegment)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "extend_track",
		Description: "Continue track through a dead-end joint. coming_from names the neighbor you are arriving from; the new segment leaves the dead end on the opposite side.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"coming_from": map[string]interface{}{
					"type":        "integer",
					"description": "Handle of the joint you are arriving from",
				},
				"from_joint": map[string]interface{}{
					"type":        "integer",
					"description": "Handle of the dead-end joint to extend through",
				},
				"points": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x": map[string]interface{}{"type": "number"},
							"y": map[string]interface{}{"type": "number"},
						},
					},
					"description": "Control points past the dead end, 1 to 3, last one is the new end",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this edit (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "coming_from", "from_joint", "points"},
		},
	}, c.handleExtendTrack)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "split_segment",
		Description: "Insert a joint into the segment between two connected joints at curve parameter t (0..1). The segment is replaced by two segments meeting at the new joint.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"joint_a": map[string]interface{}{
					"type":        "integer",
					"description": "Handle of one endpoint of the segment",
				},
				"joint_b": map[string]interface{}{
					"type":        "integer",
					"description": "Handle of the other endpoint",
				},
				"at_t": map[string]interface{}{
					"type":        "number",
					"description": "Curve parameter of the split, strictly between 0 and 1",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this edit (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "joint_a", "joint_b", "at_t"},
		},
	}, c.handleSplitSegment)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "project_point",
		Description: "Snap a world coordinate onto the track graph. Returns the nearest joint within snap radius, else the nearest point on a segment within snap radius, else nothing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"x": map[string]interface{}{
					"type":        "number",
					"description": "World X coordinate",
				},
				"y": map[string]interface{}{
					"type":        "number",
					"description": "World Y coordinate",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleProjectPoint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_session",
		Description: "Reset the graph to its seeded layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "edit_history",
		Description: "Get operation history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEditHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available layout configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "editor_instructions",
		Description: "Get comprehensive editor instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleEditorInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_joint",
		Description: "Get detailed information about a specific joint: position, tangent, dead-end status and the neighbor joints reachable in each travel direction. Useful before branching or extending.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"joint": map[string]interface{}{
					"type":        "integer",
					"description": "Handle of the joint to describe",
				},
			},
			Required: []string{"session_id", "joint"},
		},
	}, c.handleDescribeJoint)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// parsePoints converts a raw MCP array argument into a PointSpec list
func parsePoints(raw interface{}) []engine.PointSpec {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	points := make([]engine.PointSpec, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		x, _ := m["x"].(float64)
		y, _ := m["y"].(float64)
		points = append(points, engine.PointSpec{X: x, Y: y})
	}
	return points
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_name"] = configName
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGraphState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.EditorState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/graph", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatEditorState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCreateSegment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	points := parsePoints(args["points"])
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"points": points,
	}

	var result service.EditResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/segments", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatEditResult("Create segment", &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleBranchSegment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	fromJoint := intArg(args, "from_joint")
	points := parsePoints(args["points"])
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	tangent := engine.PointSpec{}
	if m, ok := args["tangent"].(map[string]interface{}); ok {
		tangent.X, _ = m["x"].(float64)
		tangent.Y, _ = m["y"].(float64)
	}

	body := map[string]interface{}{
		"from_joint": fromJoint,
		"points":     points,
		"tangent":    tangent,
	}

	var result service.EditResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/branch", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatEditResult("Branch", &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleExtendTrack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	comingFrom := intArg(args, "coming_from")
	fromJoint := intArg(args, "from_joint")
	points := parsePoints(args["points"])
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"coming_from": comingFrom,
		"from_joint":  fromJoint,
		"points":      points,
	}

	var result service.EditResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/extend", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatEditResult("Extend", &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleSplitSegment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	jointA := intArg(args, "joint_a")
	jointB := intArg(args, "joint_b")
	atT, _ := args["at_t"].(float64)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"joint_a": jointA,
		"joint_b": jointB,
		"at_t":    atT,
	}

	var result service.EditResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/split", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatEditResult("Split", &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleProjectPoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	x, _ := args["x"].(float64)
	y, _ := args["y"].(float64)

	var result engine.ProjectResult
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/project?x=%v&y=%v", sessionID, x, y), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatProjectResult(x, y, &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string              `json:"message"`
		State   *engine.EditorState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatEditorState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEditHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also fetch the ops since last reset from live state
	var state engine.EditorState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/graph", sessionID), nil, &state); err != nil {
		// If fetching state fails, still return the history
		result := formatHistory(&history)
		return mcp.NewToolResultText(result), nil
	}

	result := formatHistory(&history)
	result += "\n" + formatCurrentOps(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s\n  %s\n  World: %.0fx%.0f, Tracks: %d\n\n",
			config.Name, config.Description, config.WorldWidth, config.WorldHeight, config.TrackCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleEditorInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `TrackForge Track Editor - Complete Instructions

EDITOR OBJECTIVE:
Build a connected railway track graph out of Bezier curve segments. Joints
are the nodes of the graph; each joint stores a position, a tangent line,
and the sets of neighbors reachable when traveling forward or reverse along
that tangent.

CORE CONCEPTS:
• Joint - a graph node with an integer handle, position and tangent
• Segment - one Bezier curve (2-4 control points) connecting two joints
• Dead end - a joint with all of its connections on one side of its tangent
• Travel direction - trains pass straight through a joint: arriving from one
  side, they can only leave through the other side

EDITING OPERATIONS:

1. create_segment (free-standing track)
   Supply 2-4 control points. Two new joints appear at the first and last
   control point; both are dead ends. Use this to start a layout from
   nothing or to lay disconnected pieces you will split and connect later.

2. branch_segment (fork off existing track)
   Supply an existing joint handle, a departure tangent, and 1-3 further
   control points. A new segment leaves the joint in the tangent direction
   and ends at a new dead-end joint. The departure tangent must align with
   the joint's own tangent line (either direction of it).

3. extend_track (continue through a dead end)
   Supply the dead-end joint, the neighbor you are arriving from, and 1-3
   further control points. The new segment leaves the dead end on the
   opposite side, so trains can run straight through.

4. split_segment (insert a joint mid-track)
   Supply two connected joint handles and a parameter t strictly between 0
   and 1. The segment is cut into two pieces meeting at a new joint whose
   tangent follows the curve. Splitting is how you create branch points in
   the middle of existing track.

EDIT VALIDATION:
Edits are validated before anything changes. A rejected edit leaves the
graph untouched and returns success=false with a message; the rejection is
still journaled. Common rejections:
• Wrong number of control points (2-4 for create, 1-3 past origin for
  branch/extend)
• Unknown joint handles
• Branch tangent not aligned with the joint's tangent line
• Extending through a joint that is not a dead end
• Split parameter at or outside 0..1

WORKFLOW RECOMMENDATIONS:
1. Call graph_state first and keep track of joint handles - all edits
   address joints by handle
2. Use project_point before editing near existing track: it tells you
   whether a coordinate snaps to a joint (within radius 10), to a point
   along a segment, or to open space
3. Use describe_joint before branch/extend to read the joint's tangent and
   neighbor sets - branch tangents must align with the joint tangent
4. To connect into the middle of existing track, split_segment first, then
   branch from the new joint
5. Check the dead_ends list in graph_state to find joints eligible for
   extend_track

COMMON PITFALLS:
• Branching with an arbitrary tangent - the departure direction must lie
  along the joint's stored tangent line
• Extending a joint that already has connections on both sides - only dead
  ends can be extended
• Splitting at t=0 or t=1 - the parameter must be strictly interior
• Assuming handles are dense - deleted handles are recycled, so the handle
  of a new joint may reuse a number you saw released earlier

SESSION MANAGEMENT:
- Multiple editing sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions maintain independent graphs and are persisted across restarts
- reset_session returns the graph to the seeded layout while keeping the
  cumulative operation journal

LAYOUT CONFIGURATIONS:
Sessions are seeded from a layout config naming the world bounds and one or
more polyline tracks. Use list_configs to see what is available and pass
config_name to create_session.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeJoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	jointHandle := intArg(args, "joint")

	// Get the current graph state to look the joint up
	var state engine.EditorState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/graph", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var joint *engine.JointState
	for i := range state.Joints {
		if state.Joints[i].Handle == jointHandle {
			joint = &state.Joints[i]
			break
		}
	}
	if joint == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Joint %d does not exist. Live joint handles: %s",
			jointHandle, jointHandleList(&state))), nil
	}

	status := "through joint (connected on both sides)"
	hint := "Only branch_segment applies here; the departure tangent must align with the tangent above."
	if joint.DeadEnd {
		status = "DEAD END"
		hint = "This joint is eligible for extend_track. Branching is also allowed when the tangent aligns."
	}

	result := fmt.Sprintf(`Joint %d:
━━━━━━━━━━━━━━━━━━━━━━━━
Position: (%.2f, %.2f)
Tangent: (%.3f, %.3f)
Status: %s
Forward neighbors: %v
Reverse neighbors: %v

%s`,
		joint.Handle,
		joint.Position.X, joint.Position.Y,
		joint.Tangent.X, joint.Tangent.Y,
		status,
		joint.Forward,
		joint.Reverse,
		hint)

	return mcp.NewToolResultText(result), nil
}

// intArg reads an MCP numeric argument as an int
func intArg(args map[string]interface{}, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatEditorState(session.EditorState))
}

func formatEditorState(state *engine.EditorState) string {
	if state == nil {
		return "No editor state available"
	}

	var result strings.Builder

	// Header (include cumulative total ops)
	result.WriteString(fmt.Sprintf("Joints: %d | Segments: %d | Dead ends: %d | Ops: %d\n",
		state.JointCount, state.SegmentCount, len(state.DeadEnds), state.TotalOps))
	result.WriteString(fmt.Sprintf("World: %.0fx%.0f | Config: %s\n\n",
		state.WorldWidth, state.WorldHeight, state.ConfigName))

	if len(state.Joints) > 0 {
		result.WriteString("Joints:\n")
		for _, j := range state.Joints {
			marker := ""
			if j.DeadEnd {
				marker = " [dead end]"
			}
			result.WriteString(fmt.Sprintf("  %d: (%.1f, %.1f) tangent=(%.2f, %.2f) fwd=%v rev=%v%s\n",
				j.Handle, j.Position.X, j.Position.Y,
				j.Tangent.X, j.Tangent.Y,
				j.Forward, j.Reverse, marker))
		}
	}

	if len(state.Segments) > 0 {
		result.WriteString("\nSegments:\n")
		for _, s := range state.Segments {
			result.WriteString(fmt.Sprintf("  %d: joint %d → joint %d (%d control points)\n",
				s.Handle, s.T0, s.T1, len(s.Points)))
		}
	}

	if len(state.DeadEnds) > 0 {
		result.WriteString(fmt.Sprintf("\nDead ends: %v\n", state.DeadEnds))
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatEditResult(op string, result *service.EditResult) string {
	response := ""
	if result.Success {
		response = fmt.Sprintf("✓ %s successful\n", op)
	} else {
		response = fmt.Sprintf("✗ %s rejected\n", op)
	}

	if result.Message != "" {
		response += fmt.Sprintf("Message: %s\n", result.Message)
	}

	if result.Success {
		switch op {
		case "Split":
			response += fmt.Sprintf("New joint: %d\n", result.Joint)
		default:
			response += fmt.Sprintf("New segment: %d\n", result.Segment)
		}
	}

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatEditorState(result.EditorState)
	return response
}

func formatProjectResult(x, y float64, result *engine.ProjectResult) string {
	switch result.Kind {
	case "joint":
		status := ""
		if result.DeadEnd {
			status = " [dead end]"
		}
		return fmt.Sprintf("(%.1f, %.1f) snaps to joint %d%s\nPosition: (%.2f, %.2f)\nTangent: (%.3f, %.3f)",
			x, y, result.Joint, status,
			result.Point.X, result.Point.Y,
			result.Tangent.X, result.Tangent.Y)
	case "track":
		return fmt.Sprintf("(%.1f, %.1f) snaps to segment %d between joints %d and %d\nAt t=%.3f\nPoint on track: (%.2f, %.2f)\nTangent: (%.3f, %.3f)\n\nTo add a branch point here, split_segment with joint_a=%d, joint_b=%d, at_t=%.3f",
			x, y, result.Segment, result.T0, result.T1,
			result.T,
			result.Point.X, result.Point.Y,
			result.Tangent.X, result.Tangent.Y,
			result.T0, result.T1, result.T)
	default:
		return fmt.Sprintf("(%.1f, %.1f) does not snap to any track (snap radius 10)", x, y)
	}
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Operation History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalOps)

	for i, op := range history.Ops {
		num := (history.Page-1)*history.PageSize + i + 1
		result += fmt.Sprintf("%d. %s\n", num, formatOpLine(op))
	}

	return result
}

func formatCurrentOps(state *engine.EditorState) string {
	if state == nil {
		return "Current Ops: unavailable"
	}
	ops := state.CurrentOps
	total := state.CurrentOpsCount
	header := fmt.Sprintf("Ops Since Last Reset — Count: %d\n\n", total)
	if len(ops) == 0 {
		return header + "(no operations since last reset)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, op := range ops {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatOpLine(op)))
	}
	return b.String()
}

// formatOpLine renders a single compact journal line
func formatOpLine(op engine.OpRecord) string {
	status := "✓"
	if !op.Success {
		status = "✗"
	}

	var detail string
	switch op.Op {
	case engine.OpCreateSegment:
		detail = fmt.Sprintf("%d control points → segment %d", len(op.Points), op.ResultSegment)
	case engine.OpBranch:
		detail = fmt.Sprintf("from joint %d tangent=(%.2f, %.2f) → segment %d",
			op.FromJoint, op.Tangent.X, op.Tangent.Y, op.ResultSegment)
	case engine.OpExtend:
		detail = fmt.Sprintf("through joint %d (from %d) → segment %d",
			op.FromJoint, op.ComingFrom, op.ResultSegment)
	case engine.OpSplit:
		detail = fmt.Sprintf("segment %d-%d at t=%.3f → joint %d",
			op.JointA, op.JointB, op.AtT, op.ResultJoint)
	default:
		detail = string(op.Op)
	}

	line := fmt.Sprintf("%s %s %s", op.Op, detail, status)
	if op.Error != "" {
		line += fmt.Sprintf(" (%s)", op.Error)
	}
	return line
}

// jointHandleList renders the live joint handles for error messages
func jointHandleList(state *engine.EditorState) string {
	handles := make([]string, 0, len(state.Joints))
	for _, j := range state.Joints {
		handles = append(handles, fmt.Sprintf("%d", j.Handle))
	}
	if len(handles) == 0 {
		return "(none)"
	}
	return strings.Join(handles, ", ")
}
