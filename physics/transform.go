package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a rigid placement: rotation followed by translation.
type Transform struct {
	Origin   mgl32.Vec3
	Rotation mgl32.Quat
}

func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

func NewTransform(origin mgl32.Vec3, rotation mgl32.Quat) Transform {
	return Transform{Origin: origin, Rotation: rotation.Normalize()}
}

func TranslationTransform(origin mgl32.Vec3) Transform {
	return Transform{Origin: origin, Rotation: mgl32.QuatIdent()}
}

// Apply maps a point from local space into the space of t
func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Origin)
}

func (t Transform) ApplyRotation(v mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Rotate(v)
}

func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Origin:   t.Apply(o.Origin),
		Rotation: t.Rotation.Mul(o.Rotation).Normalize(),
	}
}

func (t Transform) Inverse() Transform {
	inv := t.Rotation.Conjugate()
	return Transform{
		Origin:   inv.Rotate(t.Origin.Mul(-1)),
		Rotation: inv,
	}
}

func (t Transform) Basis() mgl32.Mat3 {
	return t.Rotation.Mat4().Mat3()
}

// Axis returns basis column i (0 - x, 1 - y, 2 - z) in world space
func (t Transform) Axis(i int) mgl32.Vec3 {
	return t.Basis().Col(i)
}

func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Origin.X(), t.Origin.Y(), t.Origin.Z()).Mul4(t.Rotation.Mat4())
}
