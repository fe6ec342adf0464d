package geom

import (
	"errors"
	"fmt"
	"math"
)

// Control point counts for the supported curve orders.
const (
	LineOrder  = 2
	QuadOrder  = 3
	CubicOrder = 4
)

// ErrControlPoints is returned when a curve is built from an unsupported
// number of control points.
var ErrControlPoints = errors.New("curve requires 2 to 4 control points")

// Curve is an immutable Bezier arc described by its ordered control points.
// Two control points form a straight line, three a quadratic arc and four a
// cubic arc. The parameter t runs from 0 at the first control point to 1 at
// the last.
type Curve struct {
	pts []Point
}

// NewCurve builds a curve from the given control points.
// Returns ErrControlPoints unless 2, 3 or 4 points are supplied.
func NewCurve(pts ...Point) (Curve, error) {
	if len(pts) < LineOrder || len(pts) > CubicOrder {
		return Curve{}, fmt.Errorf("%w, got %d", ErrControlPoints, len(pts))
	}
	cp := make([]Point, len(pts))
	copy(cp, pts)
	return Curve{pts: cp}, nil
}

// LineBetween builds a straight two point curve.
func LineBetween(p0, p1 Point) Curve {
	return Curve{pts: []Point{p0, p1}}
}

// Order returns the number of control points (2, 3 or 4).
func (c Curve) Order() int {
	return len(c.pts)
}

// Start returns the position at t=0.
func (c Curve) Start() Point {
	return c.pts[0]
}

// End returns the position at t=1.
func (c Curve) End() Point {
	return c.pts[len(c.pts)-1]
}

// ControlPoints returns a copy of the control point list.
func (c Curve) ControlPoints() []Point {
	cp := make([]Point, len(c.pts))
	copy(cp, c.pts)
	return cp
}

// Eval evaluates the curve position at parameter t.
func (c Curve) Eval(t float64) Point {
	mt := 1 - t
	switch len(c.pts) {
	case LineOrder:
		return c.pts[0].Lerp(c.pts[1], t)
	case QuadOrder:
		// (1-t)^2 * P0 + 2(1-t)t * P1 + t^2 * P2
		return Point{
			X: mt*mt*c.pts[0].X + 2*mt*t*c.pts[1].X + t*t*c.pts[2].X,
			Y: mt*mt*c.pts[0].Y + 2*mt*t*c.pts[1].Y + t*t*c.pts[2].Y,
		}
	default:
		// (1-t)^3 * P0 + 3(1-t)^2*t * P1 + 3(1-t)*t^2 * P2 + t^3 * P3
		mt2 := mt * mt
		t2 := t * t
		return Point{
			X: mt2*mt*c.pts[0].X + 3*mt2*t*c.pts[1].X + 3*mt*t2*c.pts[2].X + t2*t*c.pts[3].X,
			Y: mt2*mt*c.pts[0].Y + 3*mt2*t*c.pts[1].Y + 3*mt*t2*c.pts[2].Y + t2*t*c.pts[3].Y,
		}
	}
}

// Derivative evaluates the first derivative at parameter t.
// For a line the derivative is constant.
func (c Curve) Derivative(t float64) Vec2 {
	switch len(c.pts) {
	case LineOrder:
		return Vec2(c.pts[1].Sub(c.pts[0]))
	case QuadOrder:
		d0 := Vec2(c.pts[1].Sub(c.pts[0]))
		d1 := Vec2(c.pts[2].Sub(c.pts[1]))
		return d0.Lerp(d1, t).Mul(2)
	default:
		mt := 1 - t
		d0 := Vec2(c.pts[1].Sub(c.pts[0]))
		d1 := Vec2(c.pts[2].Sub(c.pts[1]))
		d2 := Vec2(c.pts[3].Sub(c.pts[2]))
		return Vec2{
			X: 3 * (d0.X*mt*mt + 2*d1.X*mt*t + d2.X*t*t),
			Y: 3 * (d0.Y*mt*mt + 2*d1.Y*mt*t + d2.Y*t*t),
		}
	}
}

// SecondDerivative evaluates the second derivative at parameter t.
// Zero for lines, constant for quadratics.
func (c Curve) SecondDerivative(t float64) Vec2 {
	switch len(c.pts) {
	case LineOrder:
		return Vec2{}
	case QuadOrder:
		d0 := Vec2(c.pts[1].Sub(c.pts[0]))
		d1 := Vec2(c.pts[2].Sub(c.pts[1]))
		return d1.Sub(d0).Mul(2)
	default:
		a := Vec2(c.pts[2].Sub(c.pts[1].Mul(2)).Add(c.pts[0]))
		b := Vec2(c.pts[3].Sub(c.pts[2].Mul(2)).Add(c.pts[1]))
		return a.Lerp(b, t).Mul(6)
	}
}

// Curvature returns the signed curvature at parameter t, positive where the
// curve bends counter-clockwise. Returns 0 where the derivative vanishes.
func (c Curve) Curvature(t float64) float64 {
	d := c.Derivative(t)
	speed := d.Length()
	if speed < 1e-12 {
		return 0
	}
	return d.Cross(c.SecondDerivative(t)) / (speed * speed * speed)
}

// Split subdivides the curve at parameter t using de Casteljau's algorithm.
// Both halves have the same order as the original and share the split point:
// left.End() == right.Start() == Eval(t).
func (c Curve) Split(t float64) (Curve, Curve) {
	n := len(c.pts)
	work := make([]Point, n)
	copy(work, c.pts)

	left := make([]Point, 0, n)
	right := make([]Point, 0, n)
	left = append(left, work[0])
	right = append(right, work[n-1])
	for level := n - 1; level > 0; level-- {
		for i := 0; i < level; i++ {
			work[i] = work[i].Lerp(work[i+1], t)
		}
		left = append(left, work[0])
		right = append(right, work[level-1])
	}
	// right was collected end first
	for i, j := 0, len(right)-1; i < j; i, j = i+1, j-1 {
		right[i], right[j] = right[j], right[i]
	}
	return Curve{pts: left}, Curve{pts: right}
}

// Projection is the closest point on a curve to some query point.
type Projection struct {
	T        float64 // curve parameter of the closest point
	Point    Point   // position at T
	Distance float64 // distance from the query point to Point
}

// projectSamples is the coarse scan resolution before Newton refinement.
const projectSamples = 32

// Project returns the closest point on the curve to p.
// A coarse parameter scan brackets the minimum, then Newton iteration on
// f(t) = (C(t)-p) . C'(t) refines it. The result parameter lies in [0, 1].
func (c Curve) Project(p Point) Projection {
	bestT := 0.0
	bestD := c.pts[0].Distance(p)
	for i := 1; i <= projectSamples; i++ {
		t := float64(i) / projectSamples
		if d := c.Eval(t).Distance(p); d < bestD {
			bestT, bestD = t, d
		}
	}

	t := bestT
	for i := 0; i < 8; i++ {
		diff := Vec2(c.Eval(t).Sub(p))
		d1 := c.Derivative(t)
		slope := d1.LengthSq() + diff.Dot(c.SecondDerivative(t))
		if math.Abs(slope) < 1e-12 {
			break
		}
		next := clamp01(t - diff.Dot(d1)/slope)
		if math.Abs(next-t) < 1e-10 {
			t = next
			break
		}
		t = next
	}
	if d := c.Eval(t).Distance(p); d < bestD {
		bestT, bestD = t, d
	}
	return Projection{T: bestT, Point: c.Eval(bestT), Distance: bestD}
}

// Length approximates the arc length by chordal sampling.
func (c Curve) Length() float64 {
	const steps = 64
	total := 0.0
	prev := c.pts[0]
	for i := 1; i <= steps; i++ {
		pt := c.Eval(float64(i) / steps)
		total += prev.Distance(pt)
		prev = pt
	}
	return total
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
