package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type PointSpec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type JointState struct {
	Handle   int       `json:"handle"`
	Position PointSpec `json:"position"`
	Tangent  PointSpec `json:"tangent"`
	DeadEnd  bool      `json:"dead_end"`
	Forward  []int     `json:"forward"`
	Reverse  []int     `json:"reverse"`
}

type SegmentState struct {
	Handle int         `json:"handle"`
	T0     int         `json:"t0"`
	T1     int         `json:"t1"`
	Points []PointSpec `json:"points"`
}

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
	TotalOps     int            `json:"total_ops"`
}

type SessionResponse struct {
	ID          string       `json:"id"`
	ConfigName  string       `json:"config_name"`
	EditorState *EditorState `json:"editor_state"`
}

type EditResponse struct {
	Success     bool         `json:"success"`
	EditorState *EditorState `json:"editor_state"`
	Message     string       `json:"message"`
	Segment     int          `json:"segment"`
	Joint       int          `json:"joint"`
}

type ProjectResponse struct {
	Kind    string    `json:"kind"`
	Joint   int       `json:"joint"`
	Segment int       `json:"segment"`
	T       float64   `json:"t"`
	Point   PointSpec `json:"point"`
	DeadEnd bool      `json:"dead_end"`
}

type ResetResponse struct {
	Message string       `json:"message"`
	State   *EditorState `json:"state"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(configID string) (*EditorState, error) {
	var reqBody []byte
	var err error

	if configID != "" {
		reqBody, err = json.Marshal(map[string]string{"config_id": configID})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.EditorState, nil
}

func (c *Client) GetState() (*EditorState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/graph", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get state failed: %s - %s", resp.Status, string(body))
	}

	var state EditorState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

func (c *Client) Reset() (*EditorState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/reset", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	defer resp.Body.Close()

	var resetResp ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&resetResp); err != nil {
		return nil, fmt.Errorf("parse reset response: %w", err)
	}

	return resetResp.State, nil
}

func (c *Client) Project(x, y float64) (*ProjectResponse, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/project?x=%g&y=%g", c.baseURL, c.sessionID, x, y)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	defer resp.Body.Close()

	var projResp ProjectResponse
	if err := json.NewDecoder(resp.Body).Decode(&projResp); err != nil {
		return nil, fmt.Errorf("parse project response: %w", err)
	}

	return &projResp, nil
}

// ApplyEdit posts one edit to the session and decodes the result. A rejected
// edit comes back with success=false and the unchanged state, not an error.
func (c *Client) ApplyEdit(edit Edit) (*EditResponse, error) {
	var path string
	var payload interface{}

	switch edit.Kind {
	case EditCreate:
		path = "segments"
		payload = map[string]interface{}{"points": edit.Points}
	case EditBranch:
		path = "branch"
		payload = map[string]interface{}{
			"from_joint": edit.FromJoint,
			"points":     edit.Points,
			"tangent":    edit.Tangent,
		}
	case EditExtend:
		path = "extend"
		payload = map[string]interface{}{
			"coming_from": edit.ComingFrom,
			"from_joint":  edit.FromJoint,
			"points":      edit.Points,
		}
	case EditSplit:
		path = "split"
		payload = map[string]interface{}{
			"joint_a": edit.JointA,
			"joint_b": edit.JointB,
			"at_t":    edit.AtT,
		}
	default:
		return nil, fmt.Errorf("unknown edit kind: %s", edit.Kind)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal edit: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/%s", c.baseURL, c.sessionID, path)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("apply edit: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edit failed: %s - %s", resp.Status, string(respBody))
	}

	var editResp EditResponse
	if err := json.Unmarshal(respBody, &editResp); err != nil {
		return nil, fmt.Errorf("parse edit response: %w", err)
	}

	return &editResp, nil
}

// checkState verifies the structural rules every editor state must satisfy,
// regardless of which edits produced it. Returns a list of violations.
func checkState(state *EditorState) []string {
	var violations []string

	if state == nil {
		return []string{"state is nil"}
	}

	if state.JointCount != len(state.Joints) {
		violations = append(violations, fmt.Sprintf(
			"joint_count=%d but %d joints listed", state.JointCount, len(state.Joints)))
	}
	if state.SegmentCount != len(state.Segments) {
		violations = append(violations, fmt.Sprintf(
			"segment_count=%d but %d segments listed", state.SegmentCount, len(state.Segments)))
	}

	joints := make(map[int]JointState, len(state.Joints))
	for _, j := range state.Joints {
		if _, dup := joints[j.Handle]; dup {
			violations = append(violations, fmt.Sprintf("duplicate joint handle %d", j.Handle))
		}
		joints[j.Handle] = j
	}

	// Dead-end list must match the per-joint flags
	deadEnds := make(map[int]bool, len(state.DeadEnds))
	for _, h := range state.DeadEnds {
		deadEnds[h] = true
		if j, ok := joints[h]; !ok {
			violations = append(violations, fmt.Sprintf("dead end %d is not a live joint", h))
		} else if !j.DeadEnd {
			violations = append(violations, fmt.Sprintf("joint %d in dead_ends but flag is false", h))
		}
	}
	for _, j := range state.Joints {
		if j.DeadEnd && !deadEnds[j.Handle] {
			violations = append(violations, fmt.Sprintf("joint %d flagged dead end but missing from dead_ends", j.Handle))
		}
	}

	// Direction sets are disjoint and connections are mirrored
	for _, j := range state.Joints {
		seen := make(map[int]bool, len(j.Forward))
		for _, n := range j.Forward {
			seen[n] = true
		}
		for _, n := range j.Reverse {
			if seen[n] {
				violations = append(violations, fmt.Sprintf(
					"joint %d: neighbor %d in both forward and reverse", j.Handle, n))
			}
		}
		for _, n := range append(append([]int{}, j.Forward...), j.Reverse...) {
			other, ok := joints[n]
			if !ok {
				violations = append(violations, fmt.Sprintf(
					"joint %d: neighbor %d does not exist", j.Handle, n))
				continue
			}
			if !containsHandle(other.Forward, j.Handle) && !containsHandle(other.Reverse, j.Handle) {
				violations = append(violations, fmt.Sprintf(
					"joint %d: connection to %d is not mirrored", j.Handle, n))
			}
		}
	}

	// Segment endpoints must be live joints
	for _, seg := range state.Segments {
		if _, ok := joints[seg.T0]; !ok {
			violations = append(violations, fmt.Sprintf("segment %d: endpoint %d does not exist", seg.Handle, seg.T0))
		}
		if _, ok := joints[seg.T1]; !ok {
			violations = append(violations, fmt.Sprintf("segment %d: endpoint %d does not exist", seg.Handle, seg.T1))
		}
		if len(seg.Points) < 2 || len(seg.Points) > 4 {
			violations = append(violations, fmt.Sprintf(
				"segment %d: %d control points", seg.Handle, len(seg.Points)))
		}
	}

	return violations
}

func containsHandle(handles []int, h int) bool {
	for _, x := range handles {
		if x == h {
			return true
		}
	}
	return false
}

// checkTransition verifies how the state is allowed to evolve across one edit.
func checkTransition(edit Edit, before *EditorState, resp *EditResponse) []string {
	var violations []string
	after := resp.EditorState
	if after == nil {
		return []string{fmt.Sprintf("%s: no state in response", edit.Kind)}
	}

	if !resp.Success {
		// Rejected edits must leave the graph untouched
		if after.JointCount != before.JointCount || after.SegmentCount != before.SegmentCount {
			violations = append(violations, fmt.Sprintf(
				"%s rejected but counts changed: joints %d→%d, segments %d→%d",
				edit.Kind, before.JointCount, after.JointCount,
				before.SegmentCount, after.SegmentCount))
		}
		return violations
	}

	switch edit.Kind {
	case EditCreate, EditBranch, EditExtend:
		if after.SegmentCount != before.SegmentCount+1 {
			violations = append(violations, fmt.Sprintf(
				"%s accepted but segments %d→%d", edit.Kind, before.SegmentCount, after.SegmentCount))
		}
		// Endpoints may snap onto existing joints, so joints grow by 0-2
		if after.JointCount < before.JointCount || after.JointCount > before.JointCount+2 {
			violations = append(violations, fmt.Sprintf(
				"%s accepted but joints %d→%d", edit.Kind, before.JointCount, after.JointCount))
		}
	case EditSplit:
		if after.JointCount != before.JointCount+1 {
			violations = append(violations, fmt.Sprintf(
				"split accepted but joints %d→%d", before.JointCount, after.JointCount))
		}
		if after.SegmentCount != before.SegmentCount+1 {
			violations = append(violations, fmt.Sprintf(
				"split accepted but segments %d→%d", before.SegmentCount, after.SegmentCount))
		}
	}

	return violations
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Editor server URL")
	configID := flag.String("config", "", "Layout configuration (mainline, junction, switchback)")
	continueSession := flag.String("continue", "", "Fuzz an existing session by ID")
	maxOps := flag.Int("ops", 500, "Edits per run")
	runs := flag.Int("runs", 5, "Number of fuzzing runs (each starts from a reset)")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between edits in milliseconds (0 = no delay)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	log.Printf("Connecting to editor server at %s (seed %d)", *serverURL, *seed)
	client := NewClient(*serverURL)

	var state *EditorState
	var err error

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := ""

	if *continueSession != "" {
		savedSessionID = *continueSession
	} else {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		state, err = client.GetState()
		if err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			log.Printf("Creating new session...")
			savedSessionID = ""
		} else {
			log.Printf("Session resumed - World: %gx%g, Joints: %d, Segments: %d",
				state.WorldWidth, state.WorldHeight, state.JointCount, state.SegmentCount)
		}
	}

	if savedSessionID == "" {
		state, err = client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s", client.sessionID)
		log.Printf("Config: %s, World: %gx%g, Joints: %d, Segments: %d",
			state.ConfigName, state.WorldWidth, state.WorldHeight,
			state.JointCount, state.SegmentCount)

		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	strategy := NewRandomStrategy(*seed, state.WorldWidth, state.WorldHeight)
	totalViolations := 0

	for run := 1; run <= *runs; run++ {
		state, err = client.Reset()
		if err != nil {
			log.Fatalf("Failed to reset session: %v", err)
		}

		log.Printf("\n=== 🎲 Run %d/%d ===", run, *runs)

		accepted := 0
		rejected := 0
		projections := 0
		runViolations := 0

		for op := 0; op < *maxOps; op++ {
			if *verbose && op%100 == 0 {
				log.Printf("Op %d: joints=%d, segments=%d, dead ends=%d",
					op, state.JointCount, state.SegmentCount, len(state.DeadEnds))
			}

			edit := strategy.NextEdit(state)

			if edit.Kind == EditProject {
				proj, err := client.Project(edit.X, edit.Y)
				if err != nil {
					log.Printf("Project failed: %v", err)
					continue
				}
				projections++
				if proj.Kind != "joint" && proj.Kind != "track" && proj.Kind != "none" {
					log.Printf("❌ VIOLATION: project returned kind %q", proj.Kind)
					runViolations++
				}
				continue
			}

			resp, err := client.ApplyEdit(edit)
			if err != nil {
				log.Printf("Edit failed: %v", err)
				continue
			}

			if resp.Success {
				accepted++
			} else {
				rejected++
				if *verbose {
					log.Printf("Rejected %s: %s", edit.Kind, resp.Message)
				}
			}

			for _, v := range checkTransition(edit, state, resp) {
				log.Printf("❌ VIOLATION: %s", v)
				runViolations++
			}
			for _, v := range checkState(resp.EditorState) {
				log.Printf("❌ VIOLATION: %s", v)
				runViolations++
			}

			state = resp.EditorState

			if *delayMs > 0 {
				time.Sleep(time.Duration(*delayMs) * time.Millisecond)
			}
		}

		// The state the server reports fresh must agree with the one the
		// last edit returned
		fresh, err := client.GetState()
		if err != nil {
			log.Printf("Failed to re-fetch state: %v", err)
		} else if fresh.JointCount != state.JointCount || fresh.SegmentCount != state.SegmentCount {
			log.Printf("❌ VIOLATION: re-fetched state disagrees: joints %d vs %d, segments %d vs %d",
				fresh.JointCount, state.JointCount, fresh.SegmentCount, state.SegmentCount)
			runViolations++
		}

		log.Printf("Run %d: accepted=%d, rejected=%d, projections=%d, joints=%d, segments=%d",
			run, accepted, rejected, projections, state.JointCount, state.SegmentCount)
		if runViolations > 0 {
			log.Printf("❌ Run %d found %d violations", run, runViolations)
		}
		totalViolations += runViolations
	}

	log.Printf("\nSession: %s", client.sessionID)
	if totalViolations > 0 {
		log.Printf("❌ Fuzzing found %d violations", totalViolations)
		os.Exit(1)
	}
	log.Printf("🎉 All runs clean - no invariant violations")
	os.Exit(0)
}
