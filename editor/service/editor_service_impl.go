package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/railkit/trackforge/editor/engine"
)

// editorServiceImpl implements the EditorService interface
type editorServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *editorServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewEditorService creates a new editor service instance
func NewEditorService(sessions SessionManager, configs ConfigManager) EditorService {
	return &editorServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new editor session
func (s *editorServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.LayoutConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Determine the config identifier to return - prefer the input configName if provided,
	// otherwise look up the config_id by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID, // Return the config_id, not the display name
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		EditorState:    session.Editor.State(),
		LayoutConfig:   session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *editorServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name), // Return config_id consistently
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		EditorState:    session.Editor.State(),
		LayoutConfig:   session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *editorServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name), // Return config_id consistently
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			EditorState:    sess.Editor.State(),
			LayoutConfig:   sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *editorServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// CreateSegment lays a free-standing segment in a session. A rejected
// edit comes back as an unsuccessful EditResult, not an error.
func (s *editorServiceImpl) CreateSegment(ctx context.Context, sessionID string, points []engine.PointSpec) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	seg, editErr := sess.Editor.CreateSegment(points)
	result := s.buildEditResult(sess)
	if editErr == nil {
		result.Segment = int(seg)
	}

	s.autoSave(sessionID, "edit")
	return result, nil
}

// Branch grows new track out of an existing joint in a session
func (s *editorServiceImpl) Branch(ctx context.Context, sessionID string, from int, points []engine.PointSpec, tangent engine.PointSpec) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	seg, editErr := sess.Editor.Branch(from, points, tangent)
	result := s.buildEditResult(sess)
	if editErr == nil {
		result.Segment = int(seg)
	}

	s.autoSave(sessionID, "edit")
	return result, nil
}

// Extend continues a dead-end joint in a session
func (s *editorServiceImpl) Extend(ctx context.Context, sessionID string, comingFrom, from int, points []engine.PointSpec) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	seg, editErr := sess.Editor.Extend(comingFrom, from, points)
	result := s.buildEditResult(sess)
	if editErr == nil {
		result.Segment = int(seg)
	}

	s.autoSave(sessionID, "edit")
	return result, nil
}

// SplitSegment inserts a joint into a session's segment
func (s *editorServiceImpl) SplitSegment(ctx context.Context, sessionID string, jointA, jointB int, atT float64) (*EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	joint, editErr := sess.Editor.SplitSegment(jointA, jointB, atT)
	result := s.buildEditResult(sess)
	if editErr == nil {
		result.Joint = int(joint)
	}

	s.autoSave(sessionID, "edit")
	return result, nil
}

// Reset rebuilds a session's seeded graph, keeping the cumulative journal
func (s *editorServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.EditorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Editor.Reset()

	s.autoSave(sessionID, "reset")
	return state, nil
}

// GetEditorState retrieves the current editor state
func (s *editorServiceImpl) GetEditorState(ctx context.Context, sessionID string) (*engine.EditorState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Editor.State(), nil
}

// Project snaps a pointer position onto a session's graph
func (s *editorServiceImpl) Project(ctx context.Context, sessionID string, x, y float64) (*engine.ProjectResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	result := sess.Editor.Project(x, y)
	return &result, nil
}

// GetOpHistory returns paginated operation history
func (s *editorServiceImpl) GetOpHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Editor.History()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	// Get the slice of ops
	var ops []engine.OpRecord
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			ops = append(ops, history[i])
		}
	} else {
		// Normal chronological order
		if start < total {
			ops = history[start:end]
		}
	}

	// Ensure ops is not nil
	if ops == nil {
		ops = []engine.OpRecord{}
	}

	return &HistoryResponse{
		Ops:         ops,
		TotalOps:    total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available layout configurations
func (s *editorServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific layout configuration
func (s *editorServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.LayoutConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a layout configuration to disk
func (s *editorServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.LayoutConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// buildEditResult assembles an EditResult from the session's last
// journaled operation
func (s *editorServiceImpl) buildEditResult(sess *Session) *EditResult {
	state := sess.Editor.State()
	result := &EditResult{
		Success:     false,
		EditorState: state,
		Message:     state.Message,
		Events:      []EditEvent{},
	}

	op := sess.Editor.LastOp()
	if op == nil {
		return result
	}

	result.Success = op.Success
	result.Events = append(result.Events, editEventFor(op))
	return result
}

// autoSave persists the session after a mutation, logging a warning on
// failure instead of failing the edit
func (s *editorServiceImpl) autoSave(sessionID, what string) {
	if err := s.sessions.Save(sessionID); err != nil {
		fmt.Printf("Warning: Failed to persist session %s after %s: %v\n", sessionID, what, err)
	}
}

// editEventFor translates a journal entry into a transport-facing event
func editEventFor(op *engine.OpRecord) EditEvent {
	event := EditEvent{
		Timestamp: time.Now(),
	}

	if !op.Success {
		event.Type = "op_rejected"
		event.Message = fmt.Sprintf("%s rejected: %s", op.Op, op.Error)
		return event
	}

	switch op.Op {
	case engine.OpCreateSegment, engine.OpBranch, engine.OpExtend:
		event.Type = "segment_created"
		event.Message = fmt.Sprintf("Segment %d created", op.ResultSegment)
		if len(op.Points) > 0 {
			event.Position = op.Points[len(op.Points)-1]
		}
	case engine.OpSplit:
		event.Type = "joint_inserted"
		event.Message = fmt.Sprintf("Joint %d inserted at t=%v", op.ResultJoint, op.AtT)
	default:
		event.Type = "edit"
		event.Message = string(op.Op)
	}

	return event
}
