// Command validate provides a small CLI that validates layout configuration
// JSON files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - World bounds within the allowed range
//   - Track polylines with at least two control points, inside the world
//   - Graph construction: the seeded layout must build without errors
//   - Structural invariants on the built graph: connection symmetry,
//     direction-set partition at every joint, and the dead-end rule
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/railkit/trackforge/editor/engine"
	"github.com/railkit/trackforge/track"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single layout JSON file.
// It performs structural checks, builds the seeded graph, and verifies
// the graph invariants hold on the result.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.LayoutConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	// Structural validation shared with the server
	if err := engine.ValidateLayoutConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}

	// Build the seeded graph and verify invariants
	var g *track.Graph
	if result.Valid {
		g, err = engine.InitGraphFromConfig(&config)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Graph construction failed: %v", err))
		}
	}

	if result.Valid {
		invariantResult := validateGraphInvariants(g)
		if !invariantResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, invariantResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		deadEnds := 0
		for _, h := range g.JointHandles() {
			if g.IsDeadEnd(h) {
				deadEnds++
			}
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ World: %gx%g", config.WorldWidth, config.WorldHeight))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Tracks: %d", len(config.Tracks)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Joints: %d", g.NumJoints()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Segments: %d", g.NumSegments()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Dead ends: %d", deadEnds))
	}

	return result
}

// validateGraphInvariants checks the structural rules every well-formed
// track graph satisfies:
//   - symmetry: if b is a neighbor of a, then a is a neighbor of b, and
//     both sides name the same segment
//   - direction partition: every neighbor of a joint appears in exactly
//     one of its forward/reverse sets
//   - dead-end rule: a joint reports dead end exactly when one of its
//     direction sets is empty and it has at least one connection
func validateGraphInvariants(g *track.Graph) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	for _, h := range g.JointHandles() {
		j, err := g.Joint(h)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Joint %d unreadable: %v", h, err))
			continue
		}

		forward := j.Neighbors(track.Forward)
		reverse := j.Neighbors(track.Reverse)

		// Direction partition: forward and reverse sets are disjoint and
		// together cover every connection
		inForward := make(map[track.JointHandle]bool, len(forward))
		for _, n := range forward {
			inForward[n] = true
		}
		for _, n := range reverse {
			if inForward[n] {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Joint %d: neighbor %d in both direction sets", h, n))
			}
		}
		if len(forward)+len(reverse) != j.Degree() {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Joint %d: direction sets cover %d neighbors, degree is %d",
				h, len(forward)+len(reverse), j.Degree()))
		}

		// Symmetry: each connection is mirrored on the other joint and
		// names the same segment
		for neighbor, seg := range j.Connections() {
			other, err := g.Joint(neighbor)
			if err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Joint %d: neighbor %d does not exist", h, neighbor))
				continue
			}
			backSeg, ok := other.SegmentTo(h)
			if !ok {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Joint %d: connection to %d is not mirrored", h, neighbor))
			} else if backSeg != seg {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Joint %d: connection to %d names segment %d, reverse names %d",
					h, neighbor, seg, backSeg))
			}
		}

		// Dead-end rule
		expectDeadEnd := j.Degree() > 0 && (len(forward) == 0 || len(reverse) == 0)
		if g.IsDeadEnd(h) != expectDeadEnd {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Joint %d: dead-end flag %v, expected %v (forward=%d reverse=%d)",
				h, g.IsDeadEnd(h), expectDeadEnd, len(forward), len(reverse)))
		}
	}

	// Every segment's endpoints must be live joints that both reference it
	for _, sh := range g.SegmentHandles() {
		seg, err := g.Segment(sh)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Segment %d unreadable: %v", sh, err))
			continue
		}
		for _, end := range []track.JointHandle{seg.T0, seg.T1} {
			j, err := g.Joint(end)
			if err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Segment %d: endpoint joint %d does not exist", sh, end))
				continue
			}
			found := false
			for _, s := range j.Connections() {
				if s == sh {
					found = true
					break
				}
			}
			if !found {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Segment %d: endpoint joint %d does not reference it", sh, end))
			}
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, "✓ Invariants: symmetry, direction partition and dead-end rule hold")
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
