package session

import (
	"time"

	"github.com/railkit/trackforge/editor/engine"
	"github.com/railkit/trackforge/editor/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted
// sessions. The graph itself is not serialized; Journal holds the
// operations applied since the last reset, which Load replays on a
// freshly seeded editor to reproduce the graph.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Journal        []engine.OpRecord `json:"journal"`
}
