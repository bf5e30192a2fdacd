package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VehicleTuning holds defaults copied into every wheel on AddWheel
type VehicleTuning struct {
	SuspensionStiffness   float32
	SuspensionCompression float32
	SuspensionDamping     float32
	MaxSuspensionTravelCm float32
	FrictionSlip          float32
	MaxSuspensionForce    float32
}

func DefaultVehicleTuning() VehicleTuning {
	return VehicleTuning{
		SuspensionStiffness:   5.88,
		SuspensionCompression: 0.83,
		SuspensionDamping:     0.88,
		MaxSuspensionTravelCm: 500,
		FrictionSlip:          10.5,
		MaxSuspensionForce:    6000,
	}
}

type WheelRaycastInfo struct {
	ContactNormalWS  mgl32.Vec3
	ContactPointWS   mgl32.Vec3
	SuspensionLength float32
	HardPointWS      mgl32.Vec3
	WheelDirectionWS mgl32.Vec3
	WheelAxleWS      mgl32.Vec3
	IsInContact      bool
	GroundObject     *RigidBody
}

type WheelInfo struct {
	RaycastInfo WheelRaycastInfo

	WorldTransform Transform

	ChassisConnectionPointCS mgl32.Vec3
	WheelDirectionCS         mgl32.Vec3
	WheelAxleCS              mgl32.Vec3
	SuspensionRestLength     float32
	MaxSuspensionTravelCm    float32
	WheelsRadius             float32
	SuspensionStiffness      float32
	WheelsDampingCompression float32
	WheelsDampingRelaxation  float32
	FrictionSlip             float32
	MaxSuspensionForce       float32
	RollInfluence            float32
	IsFrontWheel             bool

	Steering      float32
	Rotation      float32
	DeltaRotation float32
	EngineForce   float32
	Brake         float32

	WheelsSuspensionForce          float32
	SkidInfo                       float32
	suspensionRelativeVelocity     float32
	clippedInvContactDotSuspension float32
}

type VehicleRaycasterResult struct {
	HitPointWS       mgl32.Vec3
	HitNormalWS      mgl32.Vec3
	DistanceFraction float32
	Body             *RigidBody
}

type VehicleRaycaster interface {
	CastRay(from, to mgl32.Vec3) (VehicleRaycasterResult, bool)
}

// DefaultVehicleRaycaster casts against whole world skipping the chassis
type DefaultVehicleRaycaster struct {
	world   *World
	chassis *RigidBody
}

func NewDefaultVehicleRaycaster(world *World) *DefaultVehicleRaycaster {
	return &DefaultVehicleRaycaster{world: world}
}

func (r *DefaultVehicleRaycaster) CastRay(from, to mgl32.Vec3) (VehicleRaycasterResult, bool) {
	res, ok := r.world.RayTest(from, to, r.chassis)
	if !ok {
		return VehicleRaycasterResult{}, false
	}
	return VehicleRaycasterResult{
		HitPointWS:       res.Point,
		HitNormalWS:      res.Normal.Normalize(),
		DistanceFraction: res.Fraction,
		Body:             res.Body,
	}, true
}

// RaycastVehicle simulates wheels as suspension rays attached to chassis
type RaycastVehicle struct {
	tuning    VehicleTuning
	chassis   BodyHandle
	raycaster VehicleRaycaster
	wheels    []WheelInfo

	rightAxis   int
	upAxis      int
	forwardAxis int

	currentSpeedKmHour float32
}

func NewRaycastVehicle(tuning VehicleTuning, chassis BodyHandle, raycaster VehicleRaycaster) *RaycastVehicle {
	if dr, ok := raycaster.(*DefaultVehicleRaycaster); ok && dr.chassis == nil {
		dr.chassis = chassis.Get()
	}
	return &RaycastVehicle{
		tuning:      tuning,
		chassis:     chassis,
		raycaster:   raycaster,
		rightAxis:   0,
		upAxis:      2,
		forwardAxis: 1,
	}
}

func (v *RaycastVehicle) Chassis() BodyHandle { return v.chassis }

func (v *RaycastVehicle) SetCoordinateSystem(rightIndex, upIndex, forwardIndex int) {
	v.rightAxis = rightIndex
	v.upAxis = upIndex
	v.forwardAxis = forwardIndex
}

func (v *RaycastVehicle) CoordinateSystem() (right, up, forward int) {
	return v.rightAxis, v.upAxis, v.forwardAxis
}

func (v *RaycastVehicle) AddWheel(connectionPointCS, wheelDirectionCS, wheelAxleCS mgl32.Vec3,
	suspensionRestLength, wheelRadius float32, tuning VehicleTuning, isFrontWheel bool) *WheelInfo {

	v.wheels = append(v.wheels, WheelInfo{
		ChassisConnectionPointCS: connectionPointCS,
		WheelDirectionCS:         wheelDirectionCS,
		WheelAxleCS:              wheelAxleCS,
		SuspensionRestLength:     suspensionRestLength,
		MaxSuspensionTravelCm:    tuning.MaxSuspensionTravelCm,
		WheelsRadius:             wheelRadius,
		SuspensionStiffness:      tuning.SuspensionStiffness,
		WheelsDampingCompression: tuning.SuspensionCompression,
		WheelsDampingRelaxation:  tuning.SuspensionDamping,
		FrictionSlip:             tuning.FrictionSlip,
		MaxSuspensionForce:       tuning.MaxSuspensionForce,
		RollInfluence:            0.1,
		IsFrontWheel:             isFrontWheel,
	})

	i := len(v.wheels) - 1
	v.updateWheelTransformsWS(&v.wheels[i])
	v.UpdateWheelTransform(i)
	return &v.wheels[i]
}

func (v *RaycastVehicle) NumWheels() int { return len(v.wheels) }

// Wheel returns pointer to wheel record, valid until next AddWheel
func (v *RaycastVehicle) Wheel(i int) *WheelInfo {
	if i < 0 || i >= len(v.wheels) {
		panic(fmt.Sprintf("physics: wheel index %d out of range [0,%d)", i, len(v.wheels)))
	}
	return &v.wheels[i]
}

func (v *RaycastVehicle) WheelTransformWS(i int) Transform {
	return v.Wheel(i).WorldTransform
}

func (v *RaycastVehicle) ApplyEngineForce(force float32, wheel int) {
	v.Wheel(wheel).EngineForce = force
}

func (v *RaycastVehicle) SetBrake(brake float32, wheel int) {
	v.Wheel(wheel).Brake = brake
}

func (v *RaycastVehicle) SetSteeringValue(steering float32, wheel int) {
	v.Wheel(wheel).Steering = steering
}

func (v *RaycastVehicle) CurrentSpeedKmHour() float32 { return v.currentSpeedKmHour }

func (v *RaycastVehicle) ForwardVector() mgl32.Vec3 {
	return v.chassis.Get().transform.Axis(v.forwardAxis)
}

func (v *RaycastVehicle) updateWheelTransformsWS(wheel *WheelInfo) {
	wheel.RaycastInfo.IsInContact = false
	tr := v.chassis.Get().transform
	wheel.RaycastInfo.HardPointWS = tr.Apply(wheel.ChassisConnectionPointCS)
	wheel.RaycastInfo.WheelDirectionWS = tr.ApplyRotation(wheel.WheelDirectionCS)
	wheel.RaycastInfo.WheelAxleWS = tr.ApplyRotation(wheel.WheelAxleCS)
}

// UpdateWheelTransform recomputes world transform of wheel from the last
// raycast result, chassis placement, steering and accumulated rotation.
func (v *RaycastVehicle) UpdateWheelTransform(i int) {
	wheel := v.Wheel(i)
	inContact := wheel.RaycastInfo.IsInContact
	v.updateWheelTransformsWS(wheel)
	wheel.RaycastInfo.IsInContact = inContact

	up := wheel.RaycastInfo.WheelDirectionWS.Mul(-1)
	right := wheel.RaycastInfo.WheelAxleWS
	fwd := up.Cross(right).Normalize()

	steeringOrn := mgl32.QuatRotate(wheel.Steering, up)
	rotatingOrn := mgl32.QuatRotate(-wheel.Rotation, right)
	basis := mgl32.Mat4ToQuat(mgl32.Mat3FromCols(right, fwd, up).Mat4())

	wheel.WorldTransform = Transform{
		Origin:   wheel.RaycastInfo.HardPointWS.Add(wheel.RaycastInfo.WheelDirectionWS.Mul(wheel.RaycastInfo.SuspensionLength)),
		Rotation: steeringOrn.Mul(rotatingOrn).Mul(basis).Normalize(),
	}
}

func (v *RaycastVehicle) updateWheelTransforms() {
	for i := range v.wheels {
		v.UpdateWheelTransform(i)
	}
}

func (v *RaycastVehicle) rayCast(wheel *WheelInfo) float32 {
	v.updateWheelTransformsWS(wheel)
	chassis := v.chassis.Get()

	depth := float32(-1)
	rayLen := wheel.SuspensionRestLength + wheel.WheelsRadius
	rayVector := wheel.RaycastInfo.WheelDirectionWS.Mul(rayLen)
	source := wheel.RaycastInfo.HardPointWS
	target := source.Add(rayVector)
	wheel.RaycastInfo.ContactPointWS = target

	hit, ok := v.raycaster.CastRay(source, target)
	wheel.RaycastInfo.GroundObject = nil

	if ok {
		depth = rayLen * hit.DistanceFraction
		wheel.RaycastInfo.ContactNormalWS = hit.HitNormalWS
		wheel.RaycastInfo.IsInContact = true
		wheel.RaycastInfo.GroundObject = hit.Body

		hitDistance := hit.DistanceFraction * rayLen
		wheel.RaycastInfo.SuspensionLength = hitDistance - wheel.WheelsRadius

		minSuspensionLength := wheel.SuspensionRestLength - wheel.MaxSuspensionTravelCm*0.01
		maxSuspensionLength := wheel.SuspensionRestLength + wheel.MaxSuspensionTravelCm*0.01
		wheel.RaycastInfo.SuspensionLength = mgl32.Clamp(wheel.RaycastInfo.SuspensionLength,
			minSuspensionLength, maxSuspensionLength)
		wheel.RaycastInfo.ContactPointWS = hit.HitPointWS

		denominator := wheel.RaycastInfo.ContactNormalWS.Dot(wheel.RaycastInfo.WheelDirectionWS)
		relPos := hit.HitPointWS.Sub(chassis.transform.Origin)
		projVel := wheel.RaycastInfo.ContactNormalWS.Dot(chassis.VelocityInLocalPoint(relPos))

		if denominator >= -0.1 {
			wheel.suspensionRelativeVelocity = 0
			wheel.clippedInvContactDotSuspension = 1 / 0.1
		} else {
			inv := -1 / denominator
			wheel.suspensionRelativeVelocity = projVel * inv
			wheel.clippedInvContactDotSuspension = inv
		}
	} else {
		wheel.RaycastInfo.SuspensionLength = wheel.SuspensionRestLength
		wheel.suspensionRelativeVelocity = 0
		wheel.RaycastInfo.ContactNormalWS = wheel.RaycastInfo.WheelDirectionWS.Mul(-1)
		wheel.clippedInvContactDotSuspension = 1
	}
	return depth
}

func (v *RaycastVehicle) updateSuspension() {
	chassisMass := v.chassis.Get().mass
	for i := range v.wheels {
		wheel := &v.wheels[i]
		if !wheel.RaycastInfo.IsInContact {
			wheel.WheelsSuspensionForce = 0
			continue
		}

		lengthDiff := wheel.SuspensionRestLength - wheel.RaycastInfo.SuspensionLength
		force := wheel.SuspensionStiffness * lengthDiff * wheel.clippedInvContactDotSuspension

		projectedRelVel := wheel.suspensionRelativeVelocity
		damping := wheel.WheelsDampingRelaxation
		if projectedRelVel < 0 {
			damping = wheel.WheelsDampingCompression
		}
		force -= damping * projectedRelVel

		wheel.WheelsSuspensionForce = force * chassisMass
		if wheel.WheelsSuspensionForce < 0 {
			wheel.WheelsSuspensionForce = 0
		}
	}
}

// UpdateVehicle is called by World once per fixed step
func (v *RaycastVehicle) UpdateVehicle(dt float32) {
	chassis := v.chassis.Get()
	for i := range v.wheels {
		v.UpdateWheelTransform(i)
	}

	v.currentSpeedKmHour = 3.6 * chassis.linearVelocity.Len()
	if v.ForwardVector().Dot(chassis.linearVelocity) < 0 {
		v.currentSpeedKmHour *= -1
	}

	for i := range v.wheels {
		v.rayCast(&v.wheels[i])
	}

	v.updateSuspension()

	for i := range v.wheels {
		wheel := &v.wheels[i]
		force := wheel.WheelsSuspensionForce
		if force > wheel.MaxSuspensionForce*chassis.mass {
			force = wheel.MaxSuspensionForce * chassis.mass
		}
		impulse := wheel.RaycastInfo.ContactNormalWS.Mul(force * dt)
		chassis.ApplyImpulse(impulse, wheel.RaycastInfo.ContactPointWS.Sub(chassis.transform.Origin))
	}

	v.updateFriction(dt)

	for i := range v.wheels {
		wheel := &v.wheels[i]
		relPos := wheel.RaycastInfo.HardPointWS.Sub(chassis.transform.Origin)
		vel := chassis.VelocityInLocalPoint(relPos)

		if wheel.RaycastInfo.IsInContact {
			fwd := v.ForwardVector()
			proj := fwd.Dot(wheel.RaycastInfo.ContactNormalWS)
			fwd = fwd.Sub(wheel.RaycastInfo.ContactNormalWS.Mul(proj))
			proj2 := fwd.Dot(vel)
			wheel.DeltaRotation = proj2 * dt / wheel.WheelsRadius
			wheel.Rotation += wheel.DeltaRotation
		} else {
			wheel.Rotation += wheel.DeltaRotation
		}
		// damping of rotation when not in contact
		wheel.DeltaRotation *= 0.99
	}
}

const sideFrictionStiffness = 1.0

func (v *RaycastVehicle) updateFriction(dt float32) {
	chassis := v.chassis.Get()
	up := chassis.transform.Axis(v.upAxis)

	for i := range v.wheels {
		wheel := &v.wheels[i]
		wheel.SkidInfo = 1
		if !wheel.RaycastInfo.IsInContact {
			continue
		}

		n := wheel.RaycastInfo.ContactNormalWS
		axle := chassis.transform.ApplyRotation(wheel.WheelAxleCS)
		if wheel.Steering != 0 {
			axle = mgl32.QuatRotate(wheel.Steering, up).Rotate(axle)
		}
		axle = axle.Sub(n.Mul(axle.Dot(n)))
		if axle.Len() < 1e-6 {
			continue
		}
		axle = axle.Normalize()
		forward := n.Cross(axle).Normalize()

		contact := wheel.RaycastInfo.ContactPointWS
		relPos := contact.Sub(chassis.transform.Origin)
		vel := chassis.VelocityInLocalPoint(relPos)

		var sideImpulse float32
		if denom := chassis.ComputeImpulseDenominator(contact, axle); denom > 0 {
			sideImpulse = -sideFrictionStiffness * vel.Dot(axle) / denom
		}

		var forwardImpulse float32
		if wheel.EngineForce != 0 {
			forwardImpulse = wheel.EngineForce * dt
		} else if wheel.Brake != 0 {
			if denom := chassis.ComputeImpulseDenominator(contact, forward); denom > 0 {
				maxImpulse := wheel.Brake * dt
				forwardImpulse = mgl32.Clamp(-vel.Dot(forward)/denom, -maxImpulse, maxImpulse)
			}
		}

		maxImpulse := wheel.WheelsSuspensionForce * dt * wheel.FrictionSlip
		total := forward.Mul(forwardImpulse).Add(axle.Mul(sideImpulse))
		if l := total.Len(); l > maxImpulse && l > 0 {
			wheel.SkidInfo = maxImpulse / l
			forwardImpulse *= wheel.SkidInfo
			sideImpulse *= wheel.SkidInfo
		}

		chassis.ApplyImpulse(forward.Mul(forwardImpulse), relPos)

		// roll influence moves side impulse application point towards center of mass height
		sideRelPos := relPos.Sub(up.Mul(relPos.Dot(up) * (1 - wheel.RollInfluence)))
		chassis.ApplyImpulse(axle.Mul(sideImpulse), sideRelPos)
	}
}
