package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type ShapeType int

const (
	ShapeBox ShapeType = iota
	ShapeSphere
	ShapeStaticPlane
)

func (t ShapeType) String() string {
	switch t {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeStaticPlane:
		return "static_plane"
	default:
		return "unknown"
	}
}

type Shape interface {
	Type() ShapeType
	// LocalInertia returns diagonal of inertia tensor in body space
	LocalInertia(mass float32) mgl32.Vec3
}

type BoxShape struct {
	HalfExtents mgl32.Vec3
}

func NewBoxShape(halfExtents mgl32.Vec3) (*BoxShape, error) {
	for i, v := range halfExtents {
		if !isPositiveFinite(v) {
			return nil, errors.Errorf("box half extent[%d] = %v is not a positive finite value", i, v)
		}
	}
	return &BoxShape{HalfExtents: halfExtents}, nil
}

func (b *BoxShape) Type() ShapeType { return ShapeBox }

func (b *BoxShape) LocalInertia(mass float32) mgl32.Vec3 {
	lx := 2 * b.HalfExtents.X()
	ly := 2 * b.HalfExtents.Y()
	lz := 2 * b.HalfExtents.Z()
	return mgl32.Vec3{
		mass / 12 * (ly*ly + lz*lz),
		mass / 12 * (lx*lx + lz*lz),
		mass / 12 * (lx*lx + ly*ly),
	}
}

func (b *BoxShape) Corners() [8]mgl32.Vec3 {
	var corners [8]mgl32.Vec3
	h := b.HalfExtents
	for i := range corners {
		c := h
		if i&1 != 0 {
			c[0] = -c[0]
		}
		if i&2 != 0 {
			c[1] = -c[1]
		}
		if i&4 != 0 {
			c[2] = -c[2]
		}
		corners[i] = c
	}
	return corners
}

type SphereShape struct {
	Radius float32
}

func NewSphereShape(radius float32) (*SphereShape, error) {
	if !isPositiveFinite(radius) {
		return nil, errors.Errorf("sphere radius %v is not a positive finite value", radius)
	}
	return &SphereShape{Radius: radius}, nil
}

func (s *SphereShape) Type() ShapeType { return ShapeSphere }

func (s *SphereShape) LocalInertia(mass float32) mgl32.Vec3 {
	i := 0.4 * mass * s.Radius * s.Radius
	return mgl32.Vec3{i, i, i}
}

// StaticPlaneShape is the half space Normal·x <= Constant, in body space.
// Only valid for bodies with zero mass.
type StaticPlaneShape struct {
	Normal   mgl32.Vec3
	Constant float32
}

func NewStaticPlaneShape(normal mgl32.Vec3, constant float32) (*StaticPlaneShape, error) {
	l := normal.Len()
	if !isPositiveFinite(l) || !isFinite(constant) {
		return nil, errors.Errorf("invalid plane normal %v constant %v", normal, constant)
	}
	return &StaticPlaneShape{Normal: normal.Mul(1 / l), Constant: constant}, nil
}

func (p *StaticPlaneShape) Type() ShapeType { return ShapeStaticPlane }

func (p *StaticPlaneShape) LocalInertia(mass float32) mgl32.Vec3 { return mgl32.Vec3{} }

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isPositiveFinite(v float32) bool {
	return isFinite(v) && v > 0
}
