package resource

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Segment is one cubic bezier piece of a track path.
// Parameter t is wrapped into [0,1), so any real value is accepted.
type Segment struct {
	P0, P1, P2, P3 mgl32.Vec3
}

func wrapUnit(t float32) float32 {
	w := t - float32(math.Floor(float64(t)))
	if w >= 1 {
		w = 0
	}
	return w
}

func (s Segment) Position(t float32) mgl32.Vec3 {
	return mgl32.CubicBezierCurve3D(wrapUnit(t), s.P0, s.P1, s.P2, s.P3)
}

func (s Segment) Tangent(t float32) mgl32.Vec3 {
	t = wrapUnit(t)
	u := 1 - t
	d := s.P1.Sub(s.P0).Mul(3 * u * u).
		Add(s.P2.Sub(s.P1).Mul(6 * u * t)).
		Add(s.P3.Sub(s.P2).Mul(3 * t * t))
	if d.Len() < 1e-6 {
		// degenerate handles
		d = s.P3.Sub(s.P0)
	}
	return d
}

// Angle of tangent in YZ plane measured from +Y towards +Z, radians.
// Rotating by Angle-90deg around X turns local +Z along the tangent.
func (s Segment) Angle(t float32) float32 {
	d := s.Tangent(t)
	return float32(math.Atan2(float64(d.Z()), float64(d.Y())))
}

// SegmentsFromPath converts polyline into C1 continuous bezier segments
// (catmull-rom with uniform parametrization). Closed paths wrap around.
func SegmentsFromPath(points []mgl32.Vec3, closed bool) []Segment {
	n := len(points)
	if n < 2 {
		return nil
	}

	at := func(i int) mgl32.Vec3 {
		if closed {
			return points[((i%n)+n)%n]
		}
		if i < 0 {
			return points[0]
		}
		if i >= n {
			return points[n-1]
		}
		return points[i]
	}

	count := n - 1
	if closed {
		count = n
	}

	segments := make([]Segment, count)
	for i := range segments {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		segments[i] = Segment{
			P0: p1,
			P1: p1.Add(p2.Sub(p0).Mul(1.0 / 6.0)),
			P2: p2.Sub(p3.Sub(p1).Mul(1.0 / 6.0)),
			P3: p2,
		}
	}
	return segments
}
