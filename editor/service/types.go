package service

import (
	"time"

	"github.com/railkit/trackforge/editor/engine"
)

// SessionInfo provides information about an editor session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	EditorState    *engine.EditorState  `json:"editor_state"`
	LayoutConfig   *engine.LayoutConfig `json:"layout_config"`
}

// EditResult contains the result of an editing operation
type EditResult struct {
	Success     bool                `json:"success"`
	EditorState *engine.EditorState `json:"editor_state"`
	Message     string              `json:"message"`
	Events      []EditEvent         `json:"events,omitempty"`

	// Handles produced by the operation, meaningful only on success.
	// Handle 0 is valid, so these are never omitted.
	Segment int `json:"segment"`
	Joint   int `json:"joint"`
}

// EditEvent represents an event that occurred during editing
type EditEvent struct {
	Type      string           `json:"type"` // "segment_created", "joint_inserted", "op_rejected", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  engine.PointSpec `json:"position,omitempty"`
}

// HistoryOptions configures operation history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated operation history
type HistoryResponse struct {
	Ops         []engine.OpRecord `json:"ops"`
	TotalOps    int               `json:"total_ops"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
}

// ConfigInfo provides information about a layout configuration
type ConfigInfo struct {
	Filename    string  `json:"filename"`
	ConfigID    string  `json:"config_id"` // The identifier to use for session creation
	Name        string  `json:"name"`      // Display name
	Description string  `json:"description"`
	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`
	TrackCount  int     `json:"track_count"`
}
