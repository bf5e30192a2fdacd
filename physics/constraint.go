package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ConstraintType int

const (
	ConstraintPoint2Point ConstraintType = iota
	ConstraintHinge2
	ConstraintFixed
)

func (t ConstraintType) String() string {
	switch t {
	case ConstraintPoint2Point:
		return "point2point"
	case ConstraintHinge2:
		return "hinge2"
	case ConstraintFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// corrections smaller than this do not wake sleeping bodies
const wakeCorrectionThreshold = 1e-3

type Constraint interface {
	Type() ConstraintType
	Bodies() (a, b *RigidBody)
	// solve projects both bodies back onto constraint manifold
	solve()
}

type constraintBase struct {
	a, b                     *RigidBody
	disableCollisionsBetween bool
}

func (c *constraintBase) Bodies() (a, b *RigidBody) { return c.a, c.b }

// CollisionsBetweenLinkedDisabled reports flag passed to World.AddConstraint
func (c *constraintBase) CollisionsBetweenLinkedDisabled() bool {
	return c.disableCollisionsBetween
}

func (c *constraintBase) setDisableCollisions(v bool) { c.disableCollisionsBetween = v }

// Point2PointConstraint keeps pivots of both bodies in the same world point
type Point2PointConstraint struct {
	constraintBase
	PivotInA mgl32.Vec3
	PivotInB mgl32.Vec3
}

func NewPoint2PointConstraint(a, b *RigidBody, pivotInA, pivotInB mgl32.Vec3) *Point2PointConstraint {
	return &Point2PointConstraint{
		constraintBase: constraintBase{a: a, b: b},
		PivotInA:       pivotInA,
		PivotInB:       pivotInB,
	}
}

func (c *Point2PointConstraint) Type() ConstraintType { return ConstraintPoint2Point }

func (c *Point2PointConstraint) solve() {
	pa := c.a.transform.Apply(c.PivotInA)
	pb := c.b.transform.Apply(c.PivotInB)
	solvePointPair(c.a, c.b, pa, pb)
}

// FixedConstraint locks all six relative degrees of freedom:
// A * FrameInA must stay equal to B * FrameInB
type FixedConstraint struct {
	constraintBase
	FrameInA Transform
	FrameInB Transform
}

func NewFixedConstraint(a, b *RigidBody, frameInA, frameInB Transform) *FixedConstraint {
	return &FixedConstraint{
		constraintBase: constraintBase{a: a, b: b},
		FrameInA:       frameInA,
		FrameInB:       frameInB,
	}
}

func (c *FixedConstraint) Type() ConstraintType { return ConstraintFixed }

func (c *FixedConstraint) solve() {
	fa := c.a.transform.Mul(c.FrameInA)
	fb := c.b.transform.Mul(c.FrameInB)
	solvePointPair(c.a, c.b, fa.Origin, fb.Origin)

	fa = c.a.transform.Mul(c.FrameInA)
	fb = c.b.transform.Mul(c.FrameInB)
	solveRotation(c.a, c.b, rotationError(fa.Rotation, fb.Rotation))
}

// Hinge2Constraint joins two bodies at anchor leaving rotation around
// Axis2 (fixed in B) free and rotation around Axis1 (fixed in A) limited
// to [Axis1Lower, Axis1Upper]. Linear offset of B relative to A, measured
// in A frame at the anchor, is kept inside [LinearLower, LinearUpper].
type Hinge2Constraint struct {
	constraintBase
	Axis1 mgl32.Vec3
	Axis2 mgl32.Vec3

	LinearLower mgl32.Vec3
	LinearUpper mgl32.Vec3
	Axis1Lower  float32
	Axis1Upper  float32

	pivotInA mgl32.Vec3
	pivotInB mgl32.Vec3
	axis1InA mgl32.Vec3
	axis2InB mgl32.Vec3
	restRel  mgl32.Quat
}

// NewHinge2Constraint takes anchor and both axes in world space at creation time
func NewHinge2Constraint(a, b *RigidBody, anchor, axis1, axis2 mgl32.Vec3) *Hinge2Constraint {
	ta, tb := a.transform, b.transform
	invA, invB := ta.Inverse(), tb.Inverse()
	return &Hinge2Constraint{
		constraintBase: constraintBase{a: a, b: b},
		Axis1:          axis1,
		Axis2:          axis2,
		LinearLower:    mgl32.Vec3{0, 0, -1},
		LinearUpper:    mgl32.Vec3{0, 0, 1},
		Axis1Lower:     -math.Pi / 4,
		Axis1Upper:     math.Pi / 4,
		pivotInA:       invA.Apply(anchor),
		pivotInB:       invB.Apply(anchor),
		axis1InA:       invA.ApplyRotation(axis1.Normalize()),
		axis2InB:       invB.ApplyRotation(axis2.Normalize()),
		restRel:        ta.Rotation.Conjugate().Mul(tb.Rotation),
	}
}

func (c *Hinge2Constraint) Type() ConstraintType { return ConstraintHinge2 }

func (c *Hinge2Constraint) SetLinearLowerLimit(v mgl32.Vec3) { c.LinearLower = v }
func (c *Hinge2Constraint) SetLinearUpperLimit(v mgl32.Vec3) { c.LinearUpper = v }

func (c *Hinge2Constraint) SetAxis1Limits(lower, upper float32) {
	c.Axis1Lower = lower
	c.Axis1Upper = upper
}

// LinearLocked reports whether no linear motion is allowed on any axis
func (c *Hinge2Constraint) LinearLocked() bool {
	return c.LinearLower == mgl32.Vec3{} && c.LinearUpper == mgl32.Vec3{}
}

func (c *Hinge2Constraint) solve() {
	ta := c.a.transform
	pa := ta.Apply(c.pivotInA)
	pb := c.b.transform.Apply(c.pivotInB)

	local := ta.Inverse().ApplyRotation(pb.Sub(pa))
	var clamped mgl32.Vec3
	for i := range local {
		clamped[i] = mgl32.Clamp(local[i], c.LinearLower[i], c.LinearUpper[i])
	}
	target := pa.Add(ta.ApplyRotation(clamped))
	solvePointPair(c.a, c.b, target, pb)

	axis1 := c.a.transform.ApplyRotation(c.axis1InA)
	axis2 := c.b.transform.ApplyRotation(c.axis2InB)
	locked := axis1.Cross(axis2)
	if locked.Len() < 1e-6 {
		return
	}
	locked = locked.Normalize()

	want := c.a.transform.Rotation.Mul(c.restRel)
	err := rotationError(want, c.b.transform.Rotation)
	solveRotation(c.a, c.b, locked.Mul(err.Dot(locked)))

	// twist around axis1 away from rest pose
	err = rotationError(c.a.transform.Rotation.Mul(c.restRel), c.b.transform.Rotation)
	twist := -err.Dot(axis1)
	if twist > c.Axis1Upper {
		solveRotation(c.a, c.b, axis1.Mul(c.Axis1Upper-twist))
	} else if twist < c.Axis1Lower {
		solveRotation(c.a, c.b, axis1.Mul(c.Axis1Lower-twist))
	}
}

// rotationError returns rotation vector turning qb into qa
func rotationError(qa, qb mgl32.Quat) mgl32.Vec3 {
	dq := qa.Mul(qb.Conjugate())
	if dq.W < 0 {
		dq = dq.Scale(-1)
	}
	return dq.V.Mul(2)
}

func solvePointPair(a, b *RigidBody, pa, pb mgl32.Vec3) {
	d := pa.Sub(pb)
	dist := d.Len()
	if dist < 1e-7 {
		return
	}
	n := d.Mul(1 / dist)
	ra := pa.Sub(a.transform.Origin)
	rb := pb.Sub(b.transform.Origin)
	w := a.generalizedInverseMass(ra, n) + b.generalizedInverseMass(rb, n)
	if w == 0 {
		return
	}
	p := n.Mul(dist / w)
	a.applyPositionCorrection(p.Mul(-1), ra)
	b.applyPositionCorrection(p, rb)

	if dist > wakeCorrectionThreshold {
		a.Activate()
		b.Activate()
	}
}

func solveRotation(a, b *RigidBody, err mgl32.Vec3) {
	angle := err.Len()
	if angle < 1e-7 {
		return
	}
	n := err.Mul(1 / angle)
	w := a.angularInverseMass(n) + b.angularInverseMass(n)
	if w == 0 {
		return
	}
	p := n.Mul(angle / w)
	a.applyRotationCorrection(p.Mul(-1))
	b.applyRotationCorrection(p)

	if angle > wakeCorrectionThreshold {
		a.Activate()
		b.Activate()
	}
}
