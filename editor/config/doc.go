// Package config provides layout configuration management for the track
// editor.
//
// The config package handles:
//   - Loading track layouts from JSON files
//   - Layout validation and verification
//   - Default layout management
//   - Layout discovery and listing
//
// Configuration Format:
//
// Layouts are stored as JSON files in the configs directory. Each layout
// defines:
//   - World dimensions in board coordinates
//   - Seed tracks as Bezier control point lists (2 to 4 points each)
//   - A display name and description
//
// Available Layouts:
//
// The package ships with several starting points:
//   - blank: An empty world for free-form editing
//   - mainline: A single straight line across the world
//   - junction: A mainline with a curved branch, for switch work
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific layout
//	layout, err := manager.LoadConfig("junction")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default layout
//	defaultLayout := manager.GetDefault()
//
//	// List available layouts
//	layouts, err := manager.ListConfigs()
//
// Validation:
//
// All layouts are validated for:
//   - World dimensions within supported bounds
//   - Track control point counts (2 to 4 per track)
//   - Control points inside the world
//   - Non-degenerate endpoint tangents
package config
