// Package geom provides the 2D geometry primitives for Trackforge track
// editing.
//
// The geom package implements:
//   - Point and Vec2 types with the usual vector algebra
//   - A variable order Bezier curve (line, quadratic, cubic)
//   - Curve evaluation, derivatives, curvature and de Casteljau splitting
//   - Closest point projection used for pointer snapping
//
// Core Types:
//
// Curve is the central type. It is immutable and described entirely by its
// control points: two points form a straight line, three a quadratic arc
// and four a cubic arc. Point represents a position while Vec2 represents
// a displacement or direction.
//
// Usage:
//
//	curve, err := geom.NewCurve(geom.Pt(0, 0), geom.Pt(5, 8), geom.Pt(10, 0))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mid := curve.Eval(0.5)
//	tangent := curve.Derivative(0.5).Normalize()
//	left, right := curve.Split(0.5)
//	hit := curve.Project(geom.Pt(4, 3))
//
// Concurrency:
//
// All Curve methods are pure functions of the control points, so curves can
// be shared freely between goroutines.
package geom
