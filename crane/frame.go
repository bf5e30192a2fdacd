package crane

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/crane/physics"
	"github.com/mogaika/crane/resource"
)

// BodyMatrix is translate * rotate * scale
func BodyMatrix(tr physics.Transform, scale mgl32.Vec3) mgl32.Mat4 {
	return tr.Mat4().Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// CraneMatrix places chassis space into world
func CraneMatrix(chassis physics.Transform) mgl32.Mat4 {
	return chassis.Mat4()
}

// PartMatrix places body model object. Everything is anchored at chassis
// origin, only chassis mount keeps chassis rotation, rest turns with cabin.
func PartMatrix(role PartRole, chassis, cabin physics.Transform) mgl32.Mat4 {
	rot := cabin.Rotation
	if role == RoleChassisMount {
		rot = chassis.Rotation
	}
	return mgl32.Translate3D(chassis.Origin.X(), chassis.Origin.Y(), chassis.Origin.Z()).Mul4(rot.Mat4())
}

// TrackLinkMatrix places one track link along segment, moved by wheel rotation.
// Link mesh is authored lying along Y, so it is pitched to follow tangent.
func TrackLinkMatrix(craneMatrix mgl32.Mat4, seg resource.Segment, rotation float32) mgl32.Mat4 {
	t := 1 - rotation
	p := seg.Position(t)
	m := craneMatrix.Mul4(mgl32.Translate3D(p.X(), p.Y(), p.Z()))
	return m.Mul4(mgl32.HomogRotate3DX(seg.Angle(t) - mgl32.DegToRad(90)))
}

// WheelDebugMatrix approximates tire with box squeezed along axle
func WheelDebugMatrix(tr physics.Transform, radius float32) mgl32.Mat4 {
	return BodyMatrix(tr, mgl32.Vec3{radius * 0.75, radius, radius})
}

type PartDraw struct {
	Object *resource.Object
	Role   PartRole
	Model  mgl32.Mat4
}

type TrackLinkDraw struct {
	Role    PartRole
	Segment int
	Model   mgl32.Mat4
}

// Frame holds every model matrix of one render call in draw order
type Frame struct {
	// debug pass
	Base   mgl32.Mat4
	Cabin  mgl32.Mat4
	Arm    mgl32.Mat4
	Wheels []mgl32.Mat4

	// solid pass
	Parts []PartDraw
	Ball  mgl32.Mat4
	Links []TrackLinkDraw
}

// TrackRotation returns rotation of wheel representing track side
func (c *Crane) TrackRotation(role PartRole) float32 {
	switch role {
	case RoleRightTrack:
		return c.vehicle.Wheel(RightTrackWheel).Rotation
	case RoleLeftTrack:
		return c.vehicle.Wheel(LeftTrackWheel).Rotation
	}
	return 0
}

// Derive reads physics state and computes matrices of all parts.
// Nil model gives frame without body parts and track links.
func (c *Crane) Derive(model *resource.Model) Frame {
	chassis := c.base.WorldTransform()
	cabin := c.cabin.WorldTransform()

	f := Frame{
		Base:   BodyMatrix(chassis, c.dims.BaseSize),
		Cabin:  BodyMatrix(cabin, c.dims.CabinSize),
		Arm:    BodyMatrix(c.arm.WorldTransform(), c.dims.ArmSize),
		Wheels: make([]mgl32.Mat4, c.vehicle.NumWheels()),
	}
	for i := range f.Wheels {
		f.Wheels[i] = WheelDebugMatrix(c.vehicle.WheelTransformWS(i), c.dims.WheelRadius)
	}

	ballScale := c.dims.BallRadius * 2
	f.Ball = BodyMatrix(c.ball.WorldTransform(), mgl32.Vec3{ballScale, ballScale, ballScale})

	if model == nil {
		return f
	}

	roles := c.parts.resolve(model)
	craneMatrix := CraneMatrix(chassis)

	f.Parts = make([]PartDraw, len(model.Objects))
	for i, obj := range model.Objects {
		f.Parts[i] = PartDraw{Object: obj, Role: roles[i], Model: PartMatrix(roles[i], chassis, cabin)}

		if !roles[i].IsTrack() {
			continue
		}
		rot := c.TrackRotation(roles[i])
		for si, seg := range obj.Segments {
			f.Links = append(f.Links, TrackLinkDraw{
				Role:    roles[i],
				Segment: si,
				Model:   TrackLinkMatrix(craneMatrix, seg, rot),
			})
		}
	}
	return f
}
