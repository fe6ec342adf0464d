package service

import (
	"context"
	"time"

	"github.com/railkit/trackforge/editor/engine"
)

// EditorService defines all editor-related operations
type EditorService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Editing Operations
	CreateSegment(ctx context.Context, sessionID string, points []engine.PointSpec) (*EditResult, error)
	Branch(ctx context.Context, sessionID string, from int, points []engine.PointSpec, tangent engine.PointSpec) (*EditResult, error)
	Extend(ctx context.Context, sessionID string, comingFrom, from int, points []engine.PointSpec) (*EditResult, error)
	SplitSegment(ctx context.Context, sessionID string, jointA, jointB int, atT float64) (*EditResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.EditorState, error)

	// Editor State
	GetEditorState(ctx context.Context, sessionID string) (*engine.EditorState, error)
	Project(ctx context.Context, sessionID string, x, y float64) (*engine.ProjectResult, error)
	GetOpHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.LayoutConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.LayoutConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.LayoutConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.LayoutConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles layout configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.LayoutConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.LayoutConfig
	SaveConfig(name string, config *engine.LayoutConfig) error
}

// Session represents an active editor session
type Session struct {
	ID             string
	Editor         *engine.TrackEditor
	Config         *engine.LayoutConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
