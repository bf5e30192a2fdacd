package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type ActivationState int

const (
	ActiveTag ActivationState = iota + 1
	IslandSleeping
	WantsDeactivation
	DisableDeactivation
	DisableSimulation
)

const (
	linearSleepingThreshold  = 0.8
	angularSleepingThreshold = 1.0
	timeToSleep              = 2.0
)

var ErrNilShape = errors.New("rigid body requires collision shape")

type RigidBody struct {
	mass            float32
	invMass         float32
	localInertia    mgl32.Vec3
	invInertiaLocal mgl32.Vec3

	transform     Transform
	prevTransform Transform

	linearVelocity  mgl32.Vec3
	angularVelocity mgl32.Vec3
	linearDamping   float32
	angularDamping  float32
	friction        float32

	activation       ActivationState
	deactivationTime float32

	shape Shape

	world *World
	index int
}

// NewRigidBody creates body that is not yet part of any world.
// Zero mass produces static body with infinite inertia.
func NewRigidBody(mass float32, tr Transform, shape Shape) (*RigidBody, error) {
	if shape == nil {
		return nil, ErrNilShape
	}
	if !isFinite(mass) || mass < 0 {
		return nil, errors.Errorf("invalid body mass %v", mass)
	}
	if tr.Rotation.Len() == 0 {
		tr.Rotation = mgl32.QuatIdent()
	}

	b := &RigidBody{
		mass:          mass,
		transform:     tr,
		prevTransform: tr,
		friction:      0.5,
		activation:    ActiveTag,
		shape:         shape,
		index:         -1,
	}
	if mass != 0 {
		b.invMass = 1 / mass
		b.localInertia = shape.LocalInertia(mass)
		for i, v := range b.localInertia {
			if v != 0 {
				b.invInertiaLocal[i] = 1 / v
			}
		}
	}
	return b, nil
}

func (b *RigidBody) Mass() float32              { return b.mass }
func (b *RigidBody) InvMass() float32           { return b.invMass }
func (b *RigidBody) IsStatic() bool             { return b.invMass == 0 }
func (b *RigidBody) LocalInertia() mgl32.Vec3   { return b.localInertia }
func (b *RigidBody) Shape() Shape               { return b.shape }
func (b *RigidBody) WorldTransform() Transform  { return b.transform }
func (b *RigidBody) LinearVelocity() mgl32.Vec3 { return b.linearVelocity }
func (b *RigidBody) AngularVelocity() mgl32.Vec3 {
	return b.angularVelocity
}
func (b *RigidBody) LinearDamping() float32  { return b.linearDamping }
func (b *RigidBody) AngularDamping() float32 { return b.angularDamping }
func (b *RigidBody) Friction() float32       { return b.friction }
func (b *RigidBody) InWorld() bool           { return b.world != nil }

// SetWorldTransform teleports body, velocities are kept
func (b *RigidBody) SetWorldTransform(tr Transform) {
	tr.Rotation = tr.Rotation.Normalize()
	b.transform = tr
	b.prevTransform = tr
}

func (b *RigidBody) SetLinearVelocity(v mgl32.Vec3) {
	if b.IsStatic() {
		return
	}
	b.linearVelocity = v
}

func (b *RigidBody) SetAngularVelocity(v mgl32.Vec3) {
	if b.IsStatic() {
		return
	}
	b.angularVelocity = v
}

// SetDamping clamps both factors into [0,1]
func (b *RigidBody) SetDamping(linear, angular float32) {
	b.linearDamping = mgl32.Clamp(linear, 0, 1)
	b.angularDamping = mgl32.Clamp(angular, 0, 1)
}

func (b *RigidBody) SetFriction(friction float32) { b.friction = friction }

func (b *RigidBody) ActivationState() ActivationState { return b.activation }

func (b *RigidBody) SetActivationState(state ActivationState) {
	if b.activation == DisableDeactivation || b.activation == DisableSimulation {
		// only ForceActivationState may leave these states
		return
	}
	b.activation = state
}

func (b *RigidBody) ForceActivationState(state ActivationState) {
	b.activation = state
}

func (b *RigidBody) IsActive() bool {
	return b.activation != IslandSleeping && b.activation != DisableSimulation
}

func (b *RigidBody) Activate() {
	if b.activation == IslandSleeping || b.activation == WantsDeactivation {
		b.activation = ActiveTag
	}
	b.deactivationTime = 0
}

func (b *RigidBody) InvInertiaTensorWorld() mgl32.Mat3 {
	if b.IsStatic() {
		return mgl32.Mat3{}
	}
	basis := b.transform.Basis()
	return basis.Mul3(mgl32.Diag3(b.invInertiaLocal)).Mul3(basis.Transpose())
}

// VelocityInLocalPoint returns velocity of point at relPos from center of mass
func (b *RigidBody) VelocityInLocalPoint(relPos mgl32.Vec3) mgl32.Vec3 {
	return b.linearVelocity.Add(b.angularVelocity.Cross(relPos))
}

func (b *RigidBody) ApplyCentralImpulse(impulse mgl32.Vec3) {
	if b.IsStatic() {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
}

func (b *RigidBody) ApplyImpulse(impulse, relPos mgl32.Vec3) {
	if b.IsStatic() {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
	b.angularVelocity = b.angularVelocity.Add(b.InvInertiaTensorWorld().Mul3x1(relPos.Cross(impulse)))
}

// ComputeImpulseDenominator is effective inverse mass at world point along normal
func (b *RigidBody) ComputeImpulseDenominator(pos, normal mgl32.Vec3) float32 {
	return b.generalizedInverseMass(pos.Sub(b.transform.Origin), normal)
}

func (b *RigidBody) generalizedInverseMass(r, n mgl32.Vec3) float32 {
	if b.IsStatic() {
		return 0
	}
	rn := r.Cross(n)
	return b.invMass + rn.Dot(b.InvInertiaTensorWorld().Mul3x1(rn))
}

func (b *RigidBody) angularInverseMass(n mgl32.Vec3) float32 {
	if b.IsStatic() {
		return 0
	}
	return n.Dot(b.InvInertiaTensorWorld().Mul3x1(n))
}

// applyPositionCorrection moves body by positional impulse p applied at r
func (b *RigidBody) applyPositionCorrection(p, r mgl32.Vec3) {
	if b.IsStatic() {
		return
	}
	b.transform.Origin = b.transform.Origin.Add(p.Mul(b.invMass))
	b.rotateBy(b.InvInertiaTensorWorld().Mul3x1(r.Cross(p)))
}

func (b *RigidBody) applyRotationCorrection(p mgl32.Vec3) {
	if b.IsStatic() {
		return
	}
	b.rotateBy(b.InvInertiaTensorWorld().Mul3x1(p))
}

func (b *RigidBody) rotateBy(dw mgl32.Vec3) {
	q := b.transform.Rotation
	dq := mgl32.Quat{W: 0, V: dw}.Mul(q).Scale(0.5)
	b.transform.Rotation = q.Add(dq).Normalize()
}

func (b *RigidBody) integrateVelocities(gravity mgl32.Vec3, dt float32) {
	b.linearVelocity = b.linearVelocity.Add(gravity.Mul(dt))
	b.linearVelocity = b.linearVelocity.Mul(float32(math.Pow(float64(1-b.linearDamping), float64(dt))))
	b.angularVelocity = b.angularVelocity.Mul(float32(math.Pow(float64(1-b.angularDamping), float64(dt))))
}

func (b *RigidBody) predictTransform(dt float32) {
	b.prevTransform = b.transform
	b.transform.Origin = b.transform.Origin.Add(b.linearVelocity.Mul(dt))
	b.rotateBy(b.angularVelocity.Mul(dt))
}

func (b *RigidBody) deriveVelocities(dt float32) {
	b.linearVelocity = b.transform.Origin.Sub(b.prevTransform.Origin).Mul(1 / dt)
	dq := b.transform.Rotation.Mul(b.prevTransform.Rotation.Conjugate())
	w := dq.V.Mul(2 / dt)
	if dq.W < 0 {
		w = w.Mul(-1)
	}
	b.angularVelocity = w
}

func (b *RigidBody) updateDeactivation(dt float32) {
	if b.activation == DisableDeactivation || b.activation == IslandSleeping || b.activation == DisableSimulation {
		return
	}
	if b.linearVelocity.Len() < linearSleepingThreshold && b.angularVelocity.Len() < angularSleepingThreshold {
		b.deactivationTime += dt
	} else {
		b.deactivationTime = 0
	}
	if b.deactivationTime > timeToSleep {
		b.activation = IslandSleeping
		b.linearVelocity = mgl32.Vec3{}
		b.angularVelocity = mgl32.Vec3{}
	}
}
