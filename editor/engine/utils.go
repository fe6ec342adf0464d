package engine

import (
	"math"

	"github.com/railkit/trackforge/geom"
	"github.com/railkit/trackforge/track"
)

// TotalTrackLength sums the arc length of every live segment
func TotalTrackLength(g *track.Graph) float64 {
	total := 0.0
	for _, h := range g.SegmentHandles() {
		seg, err := g.Segment(h)
		if err != nil {
			continue
		}
		total += seg.Curve.Length()
	}
	return total
}

// CountDeadEnds counts the joints that end the track
func CountDeadEnds(g *track.Graph) int {
	count := 0
	for _, h := range g.JointHandles() {
		if g.IsDeadEnd(h) {
			count++
		}
	}
	return count
}

// TrackBounds returns the bounding box of all joint positions and curve
// control points. ok is false for an empty graph.
func TrackBounds(g *track.Graph) (min, max geom.Point, ok bool) {
	first := true
	grow := func(p geom.Point) {
		if first {
			min, max = p, p
			first = false
			return
		}
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}

	for _, h := range g.JointHandles() {
		j, err := g.Joint(h)
		if err != nil {
			continue
		}
		grow(j.Position)
	}
	for _, h := range g.SegmentHandles() {
		seg, err := g.Segment(h)
		if err != nil {
			continue
		}
		for _, p := range seg.Curve.ControlPoints() {
			grow(p)
		}
	}

	return min, max, !first
}

// PeakCurvature samples every live segment and returns the largest
// absolute curvature found, with the segment it occurred on. ok is false
// when the graph has no segments.
func PeakCurvature(g *track.Graph, samplesPerSegment int) (float64, track.SegmentHandle, bool) {
	if samplesPerSegment < 2 {
		samplesPerSegment = 2
	}

	peak := 0.0
	var at track.SegmentHandle
	found := false

	for _, h := range g.SegmentHandles() {
		seg, err := g.Segment(h)
		if err != nil {
			continue
		}
		for i := 0; i < samplesPerSegment; i++ {
			t := float64(i) / float64(samplesPerSegment-1)
			k := math.Abs(seg.Curve.Curvature(t))
			if !found || k > peak {
				peak = k
				at = h
				found = true
			}
		}
	}

	return peak, at, found
}

// NearestDeadEnd finds the closest dead-end joint to a position and
// returns its handle and distance. ok is false when the graph has no dead
// ends.
func NearestDeadEnd(g *track.Graph, from geom.Point) (track.JointHandle, float64, bool) {
	minDistance := -1.0
	var nearest track.JointHandle
	found := false

	for _, h := range g.JointHandles() {
		if !g.IsDeadEnd(h) {
			continue
		}
		j, err := g.Joint(h)
		if err != nil {
			continue
		}
		distance := from.Distance(j.Position)
		if minDistance < 0 || distance < minDistance {
			minDistance = distance
			nearest = h
			found = true
		}
	}

	return nearest, minDistance, found
}
