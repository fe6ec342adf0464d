// Command analyze prints quick, human-readable heuristics about layout
// configuration files in the project's configs directory. It summarizes
// world dimensions, joint/segment counts, dead ends, total arc length,
// peak curvature, and how much of the world the seeded track occupies.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/railkit/trackforge/editor/engine"
	"github.com/railkit/trackforge/geom"
)

func main() {
	configs := []string{
		"mainline.json",
		"junction.json",
		"switchback.json",
	}

	for _, configFile := range configs {
		fmt.Printf("\n=== Analyzing %s ===\n", configFile)
		analyzeConfig(filepath.Join("configs", configFile))
	}
}

func analyzeConfig(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var config engine.LayoutConfig
	if err := json.Unmarshal(data, &config); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", config.Name)
	fmt.Printf("World: %g x %g\n", config.WorldWidth, config.WorldHeight)
	fmt.Printf("Seed Tracks: %d\n", len(config.Tracks))

	if err := engine.ValidateLayoutConfig(&config); err != nil {
		fmt.Printf("⚠️  Config invalid: %v\n", err)
		return
	}

	g, err := engine.InitGraphFromConfig(&config)
	if err != nil {
		fmt.Printf("⚠️  Graph construction failed: %v\n", err)
		return
	}

	fmt.Printf("Joints: %d\n", g.NumJoints())
	fmt.Printf("Segments: %d\n", g.NumSegments())
	fmt.Printf("Dead Ends: %d\n", engine.CountDeadEnds(g))
	fmt.Printf("Total Track Length: %.1f\n", engine.TotalTrackLength(g))

	if peak, seg, ok := engine.PeakCurvature(g, 32); ok {
		if peak > 0 {
			fmt.Printf("Peak Curvature: %.5f (radius %.1f) on segment %d\n", peak, 1/peak, seg)
		} else {
			fmt.Printf("Peak Curvature: 0 (all track straight)\n")
		}
	}

	// How much of the world the track footprint occupies
	if min, max, ok := engine.TrackBounds(g); ok {
		spanX := max.X - min.X
		spanY := max.Y - min.Y
		fmt.Printf("Track Bounds: (%.1f, %.1f) to (%.1f, %.1f)\n", min.X, min.Y, max.X, max.Y)
		if config.WorldWidth > 0 && config.WorldHeight > 0 {
			usage := (spanX * spanY) / (config.WorldWidth * config.WorldHeight) * 100
			fmt.Printf("World Usage: %.1f%%\n", usage)
		}
	}

	// Distance from the world center to the nearest dead end tells how
	// central the natural extension points are
	center := geom.Pt(config.WorldWidth/2, config.WorldHeight/2)
	if h, dist, ok := engine.NearestDeadEnd(g, center); ok {
		fmt.Printf("Nearest Dead End to Center: joint %d at distance %.1f\n", h, dist)
	}

	if engine.CountDeadEnds(g) == 0 {
		fmt.Printf("⚠️  WARNING: layout has no dead ends, extend_track has nothing to work with\n")
	} else {
		fmt.Printf("✅ Layout offers %d extension points\n", engine.CountDeadEnds(g))
	}
}
