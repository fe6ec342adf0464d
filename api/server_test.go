package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/railkit/trackforge/editor/engine"
	"github.com/railkit/trackforge/editor/service"
	"github.com/railkit/trackforge/transport/websocket"
)

// MockEditorService implements service.EditorService for testing
type MockEditorService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Editing Operations
	CreateSegmentFunc func(ctx context.Context, sessionID string, points []engine.PointSpec) (*service.EditResult, error)
	BranchFunc        func(ctx context.Context, sessionID string, from int, points []engine.PointSpec, tangent engine.PointSpec) (*service.EditResult, error)
	ExtendFunc        func(ctx context.Context, sessionID string, comingFrom, from int, points []engine.PointSpec) (*service.EditResult, error)
	SplitSegmentFunc  func(ctx context.Context, sessionID string, jointA, jointB int, atT float64) (*service.EditResult, error)
	ResetFunc         func(ctx context.Context, sessionID string) (*engine.EditorState, error)

	// Editor State
	GetEditorStateFunc func(ctx context.Context, sessionID string) (*engine.EditorState, error)
	ProjectFunc        func(ctx context.Context, sessionID string, x, y float64) (*engine.ProjectResult, error)
	GetOpHistoryFunc   func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.LayoutConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.LayoutConfig) error
}

// Session Management
func (m *MockEditorService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: configName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockEditorService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockEditorService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockEditorService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Editing Operations
func (m *MockEditorService) CreateSegment(ctx context.Context, sessionID string, points []engine.PointSpec) (*service.EditResult, error) {
	if m.CreateSegmentFunc != nil {
		return m.CreateSegmentFunc(ctx, sessionID, points)
	}
	return &service.EditResult{
		Success:     true,
		EditorState: &engine.EditorState{},
	}, nil
}

func (m *MockEditorService) Branch(ctx context.Context, sessionID string, from int, points []engine.PointSpec, tangent engine.PointSpec) (*service.EditResult, error) {
	if m.BranchFunc != nil {
		return m.BranchFunc(ctx, sessionID, from, points, tangent)
	}
	return &service.EditResult{
		Success:     true,
		EditorState: &engine.EditorState{},
	}, nil
}

func (m *MockEditorService) Extend(ctx context.Context, sessionID string, comingFrom, from int, points []engine.PointSpec) (*service.EditResult, error) {
	if m.ExtendFunc != nil {
		return m.ExtendFunc(ctx, sessionID, comingFrom, from, points)
	}
	return &service.EditResult{
		Success:     true,
		EditorState: &engine.EditorState{},
	}, nil
}

func (m *MockEditorService) SplitSegment(ctx context.Context, sessionID string, jointA, jointB int, atT float64) (*service.EditResult, error) {
	if m.SplitSegmentFunc != nil {
		return m.SplitSegmentFunc(ctx, sessionID, jointA, jointB, atT)
	}
	return &service.EditResult{
		Success:     true,
		EditorState: &engine.EditorState{},
	}, nil
}

func (m *MockEditorService) Reset(ctx context.Context, sessionID string) (*engine.EditorState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.EditorState{}, nil
}

// Editor State
func (m *MockEditorService) GetEditorState(ctx context.Context, sessionID string) (*engine.EditorState, error) {
	if m.GetEditorStateFunc != nil {
		return m.GetEditorStateFunc(ctx, sessionID)
	}
	return &engine.EditorState{}, nil
}

func (m *MockEditorService) Project(ctx context.Context, sessionID string, x, y float64) (*engine.ProjectResult, error) {
	if m.ProjectFunc != nil {
		return m.ProjectFunc(ctx, sessionID, x, y)
	}
	return &engine.ProjectResult{Kind: "none"}, nil
}

func (m *MockEditorService) GetOpHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetOpHistoryFunc != nil {
		return m.GetOpHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Ops:        []engine.OpRecord{},
		TotalOps:   0,
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

// Configuration
func (m *MockEditorService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockEditorService) LoadConfig(ctx context.Context, configName string) (*engine.LayoutConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.LayoutConfig{
		Name:        configName,
		Description: "Test config",
	}, nil
}

func (m *MockEditorService) SaveConfig(ctx context.Context, configName string, config *engine.LayoutConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockEditorService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockEditorService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{
						ID:             "sess-123",
						ConfigName:     "default",
						CreatedAt:      time.Now(),
						LastAccessedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific config",
			requestBody: map[string]string{"config_name": "junction"},
			setupMock: func(m *MockEditorService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "junction" {
						t.Errorf("Expected config name 'junction', got %s", configName)
					}
					return &service.SessionInfo{
						ID:         "sess-456",
						ConfigName: configName,
						CreatedAt:  time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ConfigName != "junction" {
					t.Errorf("Expected config name 'junction', got %s", resp.ConfigName)
				}
			},
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockEditorService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions", tt.requestBody)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List multiple sessions",
			setupMock: func(m *MockEditorService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return []*service.SessionInfo{
						{ID: "sess-1", ConfigName: "mainline"},
						{ID: "sess-2", ConfigName: "junction"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 2 {
					t.Errorf("Expected count 2, got %v", resp["count"])
				}
				sessions := resp["sessions"].([]interface{})
				if len(sessions) != 2 {
					t.Errorf("Expected 2 sessions, got %d", len(sessions))
				}
			},
		},
		{
			name: "Handle empty session list",
			setupMock: func(m *MockEditorService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return []*service.SessionInfo{}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["count"].(float64) != 0 {
					t.Errorf("Expected count 0, got %v", resp["count"])
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockEditorService) {
				m.ListSessionsFunc = func(ctx context.Context) ([]*service.SessionInfo, error) {
					return nil, fmt.Errorf("database error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "database error" {
					t.Errorf("Expected error 'database error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions", nil)

			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Get existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockEditorService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					if sessionID != "sess-123" {
						return nil, fmt.Errorf("session not found")
					}
					return &service.SessionInfo{
						ID:         sessionID,
						ConfigName: "test-config",
						CreatedAt:  time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:      "Session not found",
			sessionID: "nonexistent",
			setupMock: func(m *MockEditorService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Delete existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockEditorService) {
				m.DeleteSessionFunc = func(ctx context.Context, sessionID string) error {
					if sessionID != "sess-123" {
						return fmt.Errorf("session not found")
					}
					return nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["message"] != "Session sess-123 deleted" {
					t.Errorf("Unexpected message: %s", resp["message"])
				}
			},
		},
		{
			name:      "Delete non-existent session",
			sessionID: "nonexistent",
			setupMock: func(m *MockEditorService) {
				m.DeleteSessionFunc = func(ctx context.Context, sessionID string) error {
					return fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("DELETE", "/api/sessions/"+tt.sessionID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleDeleteSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

// Editing Operation Tests

func TestCreateSegmentHandler(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		requestBody    map[string]interface{}
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Valid straight segment",
			sessionID: "sess-123",
			requestBody: map[string]interface{}{
				"points": []map[string]float64{{"x": 0, "y": 0}, {"x": 100, "y": 0}},
			},
			setupMock: func(m *MockEditorService) {
				m.CreateSegmentFunc = func(ctx context.Context, sessionID string, points []engine.PointSpec) (*service.EditResult, error) {
					if len(points) != 2 {
						t.Errorf("Expected 2 points, got %d", len(points))
					}
					return &service.EditResult{
						Success:     true,
						EditorState: &engine.EditorState{JointCount: 2, SegmentCount: 1},
						Segment:     0,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.EditResult
				parseResponse(t, w, &resp)
				if !resp.Success {
					t.Error("Expected success to be true")
				}
				if resp.EditorState.SegmentCount != 1 {
					t.Errorf("Expected 1 segment, got %d", resp.EditorState.SegmentCount)
				}
			},
		},
		{
			name:      "Rejected edit comes back unsuccessful",
			sessionID: "sess-123",
			requestBody: map[string]interface{}{
				"points": []map[string]float64{{"x": 0, "y": 0}},
			},
			setupMock: func(m *MockEditorService) {
				m.CreateSegmentFunc = func(ctx context.Context, sessionID string, points []engine.PointSpec) (*service.EditResult, error) {
					return &service.EditResult{
						Success:     false,
						EditorState: &engine.EditorState{},
						Message:     "Create rejected: expected 2 to 4 control points, got 1",
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.EditResult
				parseResponse(t, w, &resp)
				if resp.Success {
					t.Error("Expected success to be false for rejected edit")
				}
			},
		},
		{
			name:        "Session not found",
			sessionID:   "nonexistent",
			requestBody: map[string]interface{}{"points": []map[string]float64{{"x": 0, "y": 0}, {"x": 1, "y": 1}}},
			setupMock: func(m *MockEditorService) {
				m.CreateSegmentFunc = func(ctx context.Context, sessionID string, points []engine.PointSpec) (*service.EditResult, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/"+tt.sessionID+"/segments", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleCreateSegment(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestBranchHandler(t *testing.T) {
	mockService := &MockEditorService{}
	mockService.BranchFunc = func(ctx context.Context, sessionID string, from int, points []engine.PointSpec, tangent engine.PointSpec) (*service.EditResult, error) {
		if from != 3 {
			t.Errorf("Expected from_joint 3, got %d", from)
		}
		if tangent.X != 1 || tangent.Y != 0 {
			t.Errorf("Expected tangent (1, 0), got (%v, %v)", tangent.X, tangent.Y)
		}
		return &service.EditResult{
			Success:     true,
			EditorState: &engine.EditorState{SegmentCount: 2},
			Segment:     1,
		}, nil
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("POST", "/api/sessions/sess-1/branch", map[string]interface{}{
		"from_joint": 3,
		"points":     []map[string]float64{{"x": 200, "y": 100}},
		"tangent":    map[string]float64{"x": 1, "y": 0},
	})
	req = mux.SetURLVars(req, map[string]string{"id": "sess-1"})

	server.handleBranch(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp service.EditResult
	parseResponse(t, w, &resp)
	if !resp.Success {
		t.Error("Expected success to be true")
	}
	if resp.Segment != 1 {
		t.Errorf("Expected segment handle 1, got %d", resp.Segment)
	}
}

func TestExtendHandler(t *testing.T) {
	mockService := &MockEditorService{}
	mockService.ExtendFunc = func(ctx context.Context, sessionID string, comingFrom, from int, points []engine.PointSpec) (*service.EditResult, error) {
		if comingFrom != 0 || from != 1 {
			t.Errorf("Expected coming_from=0 from_joint=1, got %d and %d", comingFrom, from)
		}
		return &service.EditResult{
			Success:     true,
			EditorState: &engine.EditorState{SegmentCount: 2},
			Segment:     1,
		}, nil
	}

	server := setupTestServer(mockService)
	w := httptest.NewRecorder()
	req := makeRequest("POST", "/api/sessions/sess-1/extend", map[string]interface{}{
		"coming_from": 0,
		"from_joint":  1,
		"points":      []map[string]float64{{"x": 300, "y": 0}},
	})
	req = mux.SetURLVars(req, map[string]string{"id": "sess-1"})

	server.handleExtend(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp service.EditResult
	parseResponse(t, w, &resp)
	if !resp.Success {
		t.Error("Expected success to be true")
	}
}

func TestSplitHandler(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Valid split at midpoint",
			requestBody: map[string]interface{}{"joint_a": 0, "joint_b": 1, "at_t": 0.5},
			setupMock: func(m *MockEditorService) {
				m.SplitSegmentFunc = func(ctx context.Context, sessionID string, jointA, jointB int, atT float64) (*service.EditResult, error) {
					if atT != 0.5 {
						t.Errorf("Expected at_t 0.5, got %v", atT)
					}
					return &service.EditResult{
						Success:     true,
						EditorState: &engine.EditorState{JointCount: 3, SegmentCount: 2},
						Joint:       2,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.EditResult
				parseResponse(t, w, &resp)
				if resp.Joint != 2 {
					t.Errorf("Expected new joint handle 2, got %d", resp.Joint)
				}
			},
		},
		{
			name:        "Rejected split on unconnected joints",
			requestBody: map[string]interface{}{"joint_a": 0, "joint_b": 5, "at_t": 0.5},
			setupMock: func(m *MockEditorService) {
				m.SplitSegmentFunc = func(ctx context.Context, sessionID string, jointA, jointB int, atT float64) (*service.EditResult, error) {
					return &service.EditResult{
						Success:     false,
						EditorState: &engine.EditorState{},
						Message:     "Split rejected: joints 0 and 5 do not share a segment",
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.EditResult
				parseResponse(t, w, &resp)
				if resp.Success {
					t.Error("Expected success to be false for rejected split")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/sess-1/split", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": "sess-1"})

			server.handleSplit(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestProjectHandler(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Project onto track",
			queryParams: "?x=5&y=0",
			setupMock: func(m *MockEditorService) {
				m.ProjectFunc = func(ctx context.Context, sessionID string, x, y float64) (*engine.ProjectResult, error) {
					if x != 5 || y != 0 {
						t.Errorf("Expected (5, 0), got (%v, %v)", x, y)
					}
					return &engine.ProjectResult{
						Kind:  "track",
						T:     0.5,
						Point: engine.PointSpec{X: 5, Y: 0},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp engine.ProjectResult
				parseResponse(t, w, &resp)
				if resp.Kind != "track" {
					t.Errorf("Expected kind 'track', got %s", resp.Kind)
				}
			},
		},
		{
			name:           "Missing coordinates",
			queryParams:    "?x=5",
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/sessions/sess-1/project"+tt.queryParams, nil)
			req = mux.SetURLVars(req, map[string]string{"id": "sess-1"})

			server.handleProject(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestReset(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Reset existing session",
			sessionID: "sess-123",
			setupMock: func(m *MockEditorService) {
				m.ResetFunc = func(ctx context.Context, sessionID string) (*engine.EditorState, error) {
					return &engine.EditorState{
						JointCount:   2,
						SegmentCount: 1,
						TotalOps:     5,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["message"] != "Editor reset successfully" {
					t.Errorf("Expected success message, got %s", resp["message"])
				}
				state := resp["state"].(map[string]interface{})
				if state["segment_count"].(float64) != 1 {
					t.Error("Expected segment count to be reset to 1")
				}
			},
		},
		{
			name:      "Reset non-existent session",
			sessionID: "nonexistent",
			setupMock: func(m *MockEditorService) {
				m.ResetFunc = func(ctx context.Context, sessionID string) (*engine.EditorState, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/"+tt.sessionID+"/reset", nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleReset(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		queryParams    string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Default pagination",
			sessionID:   "sess-123",
			queryParams: "",
			setupMock: func(m *MockEditorService) {
				m.GetOpHistoryFunc = func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					if opts.Page != 1 || opts.Limit != 20 {
						t.Errorf("Expected default page=1, limit=20, got page=%d, limit=%d", opts.Page, opts.Limit)
					}
					return &service.HistoryResponse{
						Ops: []engine.OpRecord{
							{Op: engine.OpCreateSegment},
							{Op: engine.OpSplit},
						},
						TotalOps:   5,
						Page:       1,
						PageSize:   20,
						TotalPages: 1,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.HistoryResponse
				parseResponse(t, w, &resp)
				if resp.PageSize != 20 {
					t.Errorf("Expected page size 20, got %d", resp.PageSize)
				}
			},
		},
		{
			name:        "Custom pagination parameters",
			sessionID:   "sess-123",
			queryParams: "?page=2&limit=10&order=asc",
			setupMock: func(m *MockEditorService) {
				m.GetOpHistoryFunc = func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					if opts.Page != 2 || opts.Limit != 10 || opts.Order != "asc" {
						t.Errorf("Expected page=2, limit=10, order=asc, got page=%d, limit=%d, order=%s",
							opts.Page, opts.Limit, opts.Order)
					}
					return &service.HistoryResponse{
						Page:     2,
						PageSize: 10,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.HistoryResponse
				parseResponse(t, w, &resp)
				if resp.Page != 2 || resp.PageSize != 10 {
					t.Errorf("Expected page 2 with size 10, got page %d with size %d",
						resp.Page, resp.PageSize)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/sessions/"+tt.sessionID+"/history"+tt.queryParams, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetHistory(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetEditorState(t *testing.T) {
	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:      "Get existing editor state",
			sessionID: "sess-123",
			setupMock: func(m *MockEditorService) {
				m.GetEditorStateFunc = func(ctx context.Context, sessionID string) (*engine.EditorState, error) {
					return &engine.EditorState{
						JointCount:   4,
						SegmentCount: 3,
						DeadEnds:     []int{0, 3},
						TotalOps:     7,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp engine.EditorState
				parseResponse(t, w, &resp)
				if resp.JointCount != 4 || resp.SegmentCount != 3 {
					t.Errorf("Expected joints=4, segments=3, got joints=%d, segments=%d",
						resp.JointCount, resp.SegmentCount)
				}
			},
		},
		{
			name:      "Session not found",
			sessionID: "nonexistent",
			setupMock: func(m *MockEditorService) {
				m.GetEditorStateFunc = func(ctx context.Context, sessionID string) (*engine.EditorState, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "session not found" {
					t.Errorf("Expected error 'session not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/sessions/"+tt.sessionID+"/graph", nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.sessionID})

			server.handleGetEditorState(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListConfigs(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "List available configs",
			setupMock: func(m *MockEditorService) {
				m.ListConfigsFunc = func(ctx context.Context) ([]*service.ConfigInfo, error) {
					return []*service.ConfigInfo{
						{Name: "Mainline", Description: "Single straight line"},
						{Name: "Junction", Description: "Line with branch"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp []*service.ConfigInfo
				parseResponse(t, w, &resp)
				if len(resp) != 2 {
					t.Errorf("Expected 2 configs, got %d", len(resp))
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockEditorService) {
				m.ListConfigsFunc = func(ctx context.Context) ([]*service.ConfigInfo, error) {
					return nil, fmt.Errorf("config error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "config error" {
					t.Errorf("Expected error 'config error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/configs", nil)

			server.handleListConfigs(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name           string
		configName     string
		setupMock      func(*MockEditorService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:       "Get existing config",
			configName: "mainline",
			setupMock: func(m *MockEditorService) {
				m.LoadConfigFunc = func(ctx context.Context, configName string) (*engine.LayoutConfig, error) {
					if configName != "mainline" {
						return nil, fmt.Errorf("config not found")
					}
					return &engine.LayoutConfig{
						Name:        "Mainline",
						Description: "Single straight line",
						WorldWidth:  800,
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp engine.LayoutConfig
				parseResponse(t, w, &resp)
				if resp.Name != "Mainline" {
					t.Errorf("Expected config name 'Mainline', got %s", resp.Name)
				}
			},
		},
		{
			name:       "Strip .json extension",
			configName: "junction.json",
			setupMock: func(m *MockEditorService) {
				m.LoadConfigFunc = func(ctx context.Context, configName string) (*engine.LayoutConfig, error) {
					if configName != "junction" {
						t.Errorf("Expected config name 'junction' (without .json), got %s", configName)
					}
					return &engine.LayoutConfig{Name: "Junction"}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "Config not found",
			configName: "nonexistent",
			setupMock: func(m *MockEditorService) {
				m.LoadConfigFunc = func(ctx context.Context, configName string) (*engine.LayoutConfig, error) {
					return nil, fmt.Errorf("config not found")
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "config not found" {
					t.Errorf("Expected error 'config not found', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := makeRequest("GET", "/api/configs/"+tt.configName, nil)
			req = mux.SetURLVars(req, map[string]string{"name": tt.configName})

			server.handleGetConfig(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockEditorService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			setupMock:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockEditorService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("session not found")
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Valid session",
			queryParams: "?session=sess-123",
			setupMock: func(m *MockEditorService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{
						ID:         sessionID,
						ConfigName: "test",
					}, nil
				}
			},
			expectedStatus: http.StatusSwitchingProtocols,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockEditorService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			// For WebSocket upgrade test, we need proper headers
			if tt.expectedStatus == http.StatusSwitchingProtocols {
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
				req.Header.Set("Sec-WebSocket-Version", "13")
			}

			server.handleWebSocket(w, req)

			// WebSocket upgrade fails in unit tests due to httptest.ResponseRecorder limitations
			if tt.expectedStatus == http.StatusSwitchingProtocols {
				// Can't test actual WebSocket upgrade with httptest.ResponseRecorder
				// It doesn't implement http.Hijacker interface
				// We accept 500 error in this case as it indicates the upgrade was attempted
				if w.Code == http.StatusInternalServerError {
					return
				}
			}

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
