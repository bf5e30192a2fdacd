// Package crane builds the tracked crane out of physics bodies and derives
// render transforms of its parts from physics state.
package crane

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/crane/config"
	"github.com/mogaika/crane/physics"
)

const (
	baseMass  = 1000
	cabinMass = 100
	armMass   = 10
	ballMass  = 10

	cabinLinearDamping  = 0.8
	cabinAngularDamping = 0
	cabinFriction       = 50

	armTiltDeg = -32
)

const (
	DefaultBodyModel    = "dzwig"
	DefaultTrackTexture = "gasienica"
)

var DefaultStartPosition = mgl32.Vec3{0, 1, 0}

type Crane struct {
	dims   config.Dimensions
	tuning config.WheelTuning
	start  mgl32.Vec3

	base  physics.BodyHandle
	cabin physics.BodyHandle
	arm   physics.BodyHandle
	ball  physics.BodyHandle

	cabinHinge *physics.Hinge2Constraint
	armJoint   *physics.FixedConstraint
	ballJoint  *physics.Point2PointConstraint
	vehicle    *physics.RaycastVehicle

	bodyModel    string
	trackTexture string
	parts        partTable

	drive DriveForces
}

type Option func(c *Crane)

func WithStartPosition(p mgl32.Vec3) Option {
	return func(c *Crane) { c.start = p }
}

// WithModel sets names of body model and texture of track links
func WithModel(bodyModel, trackTexture string) Option {
	return func(c *Crane) {
		c.bodyModel = bodyModel
		c.trackTexture = trackTexture
	}
}

func WithDriveForces(f DriveForces) Option {
	return func(c *Crane) { c.drive = f }
}

// New builds crane bodies, joints and vehicle inside world.
// On error nothing built so far is left in the world.
func New(world *physics.World, dims config.Dimensions, opts ...Option) (*Crane, error) {
	c := &Crane{
		dims:   dims,
		tuning: config.CraneWheelTuning(),
		start:  DefaultStartPosition,
		drive:  DefaultDriveForces(),

		bodyModel:    DefaultBodyModel,
		trackTexture: DefaultTrackTexture,
	}
	for _, opt := range opts {
		opt(c)
	}

	b := builder{world: world}
	if err := b.build(c); err != nil {
		b.rollback()
		return nil, err
	}
	return c, nil
}

type builder struct {
	world       *physics.World
	bodies      []physics.BodyHandle
	constraints []physics.Constraint
	vehicle     *physics.RaycastVehicle
}

func (b *builder) addBody(name string, mass float32, tr physics.Transform, shape physics.Shape, shapeErr error) (physics.BodyHandle, error) {
	if shapeErr != nil {
		return physics.BodyHandle{}, errors.Wrapf(shapeErr, "%s shape", name)
	}
	body, err := physics.NewRigidBody(mass, tr, shape)
	if err != nil {
		return physics.BodyHandle{}, errors.Wrapf(err, "%s body", name)
	}
	h := b.world.AddRigidBody(body)
	b.bodies = append(b.bodies, h)
	return h, nil
}

func (b *builder) addConstraint(name string, c physics.Constraint, disableCollisions bool) error {
	if err := b.world.AddConstraint(c, disableCollisions); err != nil {
		return errors.Wrapf(err, "%s joint", name)
	}
	b.constraints = append(b.constraints, c)
	return nil
}

func (b *builder) rollback() {
	if b.world.Destroyed() {
		return
	}
	if b.vehicle != nil {
		b.world.RemoveVehicle(b.vehicle)
	}
	for _, c := range b.constraints {
		b.world.RemoveConstraint(c)
	}
	for i := len(b.bodies) - 1; i >= 0; i-- {
		if b.bodies[i].Valid() {
			b.world.RemoveRigidBody(b.bodies[i])
		}
	}
}

func boxShape(size mgl32.Vec3) (physics.Shape, error) {
	s, err := physics.NewBoxShape(size.Mul(0.5))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *builder) build(c *Crane) error {
	var err error
	dims := c.dims
	start := c.start
	stackHeight := dims.CabinSize.Y()*0.5 + dims.BaseSize.Y()*0.5

	// chassis
	shape, shapeErr := boxShape(dims.BaseSize)
	c.base, err = b.addBody("base", baseMass, physics.TranslationTransform(start), shape, shapeErr)
	if err != nil {
		return err
	}
	c.base.Get().ForceActivationState(physics.DisableDeactivation)

	// cabin, turns on top of chassis
	cabinTr := physics.TranslationTransform(start.Add(mgl32.Vec3{0, stackHeight, 0}))
	shape, shapeErr = boxShape(dims.CabinSize)
	c.cabin, err = b.addBody("cabin", cabinMass, cabinTr, shape, shapeErr)
	if err != nil {
		return err
	}
	cabin := c.cabin.Get()
	cabin.SetDamping(cabinLinearDamping, cabinAngularDamping)
	cabin.SetFriction(cabinFriction)

	c.cabinHinge = physics.NewHinge2Constraint(c.base.Get(), cabin, cabinTr.Origin,
		mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0})
	c.cabinHinge.SetLinearLowerLimit(mgl32.Vec3{0, 0, 0})
	c.cabinHinge.SetLinearUpperLimit(mgl32.Vec3{0, 0, 0})
	if err := b.addConstraint("cabin", c.cabinHinge, false); err != nil {
		return err
	}

	// arm, rigidly attached to cabin at fixed tilt
	armTr := physics.NewTransform(
		start.Add(mgl32.Vec3{0, stackHeight + dims.ArmSize.Z()*0.35, dims.ArmSize.Z() - 1.0}),
		mgl32.QuatRotate(mgl32.DegToRad(armTiltDeg), mgl32.Vec3{1, 0, 0}))
	shape, shapeErr = boxShape(dims.ArmSize)
	c.arm, err = b.addBody("arm", armMass, armTr, shape, shapeErr)
	if err != nil {
		return err
	}

	frameInCabin := armTr
	frameInCabin.Origin = armTr.Origin.Sub(start.Mul(2))
	c.armJoint = physics.NewFixedConstraint(cabin, c.arm.Get(), frameInCabin, physics.IdentityTransform())
	if err := b.addConstraint("arm", c.armJoint, true); err != nil {
		return err
	}

	// hook ball swinging under arm tip
	ballShape, ballErr := physics.NewSphereShape(dims.BallRadius)
	var ballShapeI physics.Shape
	if ballErr == nil {
		ballShapeI = ballShape
	}
	ballTr := physics.TranslationTransform(start.Add(mgl32.Vec3{0, stackHeight, dims.ArmSize.Z() * 1.1}))
	c.ball, err = b.addBody("ball", ballMass, ballTr, ballShapeI, ballErr)
	if err != nil {
		return err
	}

	c.ballJoint = physics.NewPoint2PointConstraint(c.arm.Get(), c.ball.Get(),
		mgl32.Vec3{0, 0, dims.ArmSize.Z() * 0.5}, mgl32.Vec3{0, 3.0, 0})
	if err := b.addConstraint("ball", c.ballJoint, false); err != nil {
		return err
	}
	c.ball.Get().SetWorldTransform(physics.TranslationTransform(BallStartOffset(dims).Add(start)))

	return b.buildVehicle(c)
}

// BallStartOffset is where the ball is placed, relative to start position,
// right after it was attached to the arm
func BallStartOffset(dims config.Dimensions) mgl32.Vec3 {
	return mgl32.Vec3{3, dims.CabinSize.Y()*0.5 + dims.BaseSize.Y()*0.5 + 2, dims.ArmSize.Z() * 1.1}
}

func (c *Crane) Dimensions() config.Dimensions { return c.dims }
func (c *Crane) StartPosition() mgl32.Vec3     { return c.start }
func (c *Crane) BodyModel() string             { return c.bodyModel }
func (c *Crane) TrackTexture() string          { return c.trackTexture }

func (c *Crane) Base() physics.BodyHandle  { return c.base }
func (c *Crane) Cabin() physics.BodyHandle { return c.cabin }
func (c *Crane) Arm() physics.BodyHandle   { return c.arm }
func (c *Crane) Ball() physics.BodyHandle  { return c.ball }

func (c *Crane) Vehicle() *physics.RaycastVehicle { return c.vehicle }

func (c *Crane) CabinHinge() *physics.Hinge2Constraint     { return c.cabinHinge }
func (c *Crane) ArmJoint() *physics.FixedConstraint        { return c.armJoint }
func (c *Crane) BallJoint() *physics.Point2PointConstraint { return c.ballJoint }

type JointKind int

const (
	JointHinge2 JointKind = iota
	JointFixed
	JointPoint2Point
	JointRaycastWheels
)

func (k JointKind) String() string {
	switch k {
	case JointHinge2:
		return "hinge2"
	case JointFixed:
		return "fixed"
	case JointPoint2Point:
		return "point2point"
	case JointRaycastWheels:
		return "raycast_wheels"
	default:
		return "unknown"
	}
}

type Joint struct {
	Name string
	Kind JointKind
	A, B physics.BodyHandle
}

// Joints lists every relation holding the crane together. The vehicle
// counts as one joint binding chassis to the ground, it has no body B.
func (c *Crane) Joints() []Joint {
	return []Joint{
		{Name: "cabin", Kind: JointHinge2, A: c.base, B: c.cabin},
		{Name: "arm", Kind: JointFixed, A: c.cabin, B: c.arm},
		{Name: "ball", Kind: JointPoint2Point, A: c.arm, B: c.ball},
		{Name: "tracks", Kind: JointRaycastWheels, A: c.base},
	}
}
