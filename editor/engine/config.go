package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/railkit/trackforge/geom"
	"github.com/railkit/trackforge/track"
)

// ValidateLayoutConfig validates a layout configuration for correctness
func ValidateLayoutConfig(config *LayoutConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate world bounds
	if config.WorldWidth < MinWorldSize || config.WorldWidth > MaxWorldSize {
		return fmt.Errorf("config validation: world_width must be between %v and %v, got %v",
			MinWorldSize, MaxWorldSize, config.WorldWidth)
	}
	if config.WorldHeight < MinWorldSize || config.WorldHeight > MaxWorldSize {
		return fmt.Errorf("config validation: world_height must be between %v and %v, got %v",
			MinWorldSize, MaxWorldSize, config.WorldHeight)
	}

	// Validate seed tracks
	for i, spec := range config.Tracks {
		if len(spec) < MinControlPoints || len(spec) > MaxControlPoints {
			return fmt.Errorf("config validation: track %d must have %d to %d control points, got %d",
				i+1, MinControlPoints, MaxControlPoints, len(spec))
		}

		for j, p := range spec {
			if p.X < 0 || p.X > config.WorldWidth || p.Y < 0 || p.Y > config.WorldHeight {
				return fmt.Errorf("config validation: track %d point %d (%v, %v) is outside the %vx%v world",
					i+1, j+1, p.X, p.Y, config.WorldWidth, config.WorldHeight)
			}
		}

		// The first and last control legs define the endpoint tangents,
		// so neither may collapse to a point
		if spec[0] == spec[1] {
			return fmt.Errorf("config validation: track %d start tangent is undefined, first two control points coincide", i+1)
		}
		last := len(spec) - 1
		if spec[last-1] == spec[last] {
			return fmt.Errorf("config validation: track %d end tangent is undefined, last two control points coincide", i+1)
		}
	}

	return nil
}

// InitGraphFromConfig builds a track graph seeded with the configured
// tracks. A track whose first control point lands on an existing joint is
// branched off that joint; otherwise it becomes a free-standing segment.
func InitGraphFromConfig(config *LayoutConfig) (*track.Graph, error) {
	g := track.NewGraph()

	for i, spec := range config.Tracks {
		first := spec[0].Point()
		interior := make([]geom.Point, 0, len(spec)-2)
		for _, p := range spec[1 : len(spec)-1] {
			interior = append(interior, p.Point())
		}
		end := spec[len(spec)-1].Point()

		hit := g.Project(first)
		if hit.Kind == track.HitJoint {
			leg := geom.Vec2(spec[1].Point().Sub(first))
			if _, err := g.Branch(hit.Joint, end, interior, leg); err != nil {
				return nil, fmt.Errorf("seed track %d: %w", i+1, err)
			}
			continue
		}

		if _, err := g.CreateSegment(first, end, interior); err != nil {
			return nil, fmt.Errorf("seed track %d: %w", i+1, err)
		}
	}

	return g, nil
}

// LoadLayoutConfig loads a layout configuration from a JSON file
func LoadLayoutConfig(filename string) (*LayoutConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config
	// directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config LayoutConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := ValidateLayoutConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a layout configuration by name from the configs
// directory
func LoadConfigByName(configName string) (*LayoutConfig, error) {
	// Add .json extension if not present
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	// Load and parse the config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %v", configName, err)
	}

	var config LayoutConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %v", configName, err)
	}

	// Validate the config
	if err := ValidateLayoutConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %v", configName, err)
	}

	return &config, nil
}

// DefaultLayoutConfig returns the built-in minimal layout
func DefaultLayoutConfig() *LayoutConfig {
	return &LayoutConfig{
		Name:        "default",
		Description: "Default minimal layout",
		WorldWidth:  800,
		WorldHeight: 600,
		Tracks: [][]PointSpec{
			{{X: 100, Y: 300}, {X: 700, Y: 300}},
		},
	}
}
