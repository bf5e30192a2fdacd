package crane

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/crane/config"
	"github.com/mogaika/crane/physics"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}

func assertMatNear(t *testing.T, want, got mgl32.Mat4, delta float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}

func newWorld() *physics.World {
	return physics.NewWorld(mgl32.Vec3{0, -9.81, 0})
}

func newTestCrane(t *testing.T, opts ...Option) (*Crane, *physics.World) {
	t.Helper()
	w := newWorld()
	c, err := New(w, config.DefaultDimensions(), opts...)
	require.NoError(t, err)
	return c, w
}

var dimensionSets = map[string]config.Dimensions{
	"default": config.DefaultDimensions(),
	"tiny": {
		BaseSize: mgl32.Vec3{0.1, 0.05, 0.2}, CabinSize: mgl32.Vec3{0.1, 0.1, 0.1},
		ArmSize: mgl32.Vec3{0.02, 0.02, 0.3}, WheelRadius: 0.01, BallRadius: 0.01,
	},
	"huge": {
		BaseSize: mgl32.Vec3{22, 8, 40}, CabinSize: mgl32.Vec3{20, 12, 20},
		ArmSize: mgl32.Vec3{4, 4, 60}, WheelRadius: 5, BallRadius: 4,
	},
}

func TestNewTopology(t *testing.T) {
	for name, dims := range dimensionSets {
		t.Run(name, func(t *testing.T) {
			w := newWorld()
			c, err := New(w, dims)
			require.NoError(t, err)

			assert.Equal(t, 4, w.NumBodies())
			assert.Equal(t, 3, w.NumConstraints())
			require.Len(t, w.Vehicles(), 1)
			assert.Same(t, c.Vehicle(), w.Vehicles()[0])

			joints := c.Joints()
			require.Len(t, joints, 4)
			assert.Equal(t, []JointKind{JointHinge2, JointFixed, JointPoint2Point, JointRaycastWheels},
				[]JointKind{joints[0].Kind, joints[1].Kind, joints[2].Kind, joints[3].Kind})

			for _, h := range []physics.BodyHandle{c.Base(), c.Cabin(), c.Arm(), c.Ball()} {
				assert.True(t, h.Valid())
			}
			assert.Equal(t, NumWheels, c.Vehicle().NumWheels())
			assert.Equal(t, dims, c.Dimensions())
		})
	}
}

func TestChassisNeverDeactivates(t *testing.T) {
	c, w := newTestCrane(t)
	assert.Equal(t, physics.DisableDeactivation, c.Base().Get().ActivationState())

	for i := 0; i < 240; i++ {
		w.StepSimulation(1.0/60, 1, 1.0/60)
	}
	assert.Equal(t, physics.DisableDeactivation, c.Base().Get().ActivationState())
	assert.True(t, c.Base().Get().IsActive())
}

func TestCabinHingeLocksLinearAxes(t *testing.T) {
	for name, dims := range dimensionSets {
		t.Run(name, func(t *testing.T) {
			c, err := New(newWorld(), dims)
			require.NoError(t, err)

			h := c.CabinHinge()
			assert.True(t, h.LinearLocked())
			assert.Equal(t, mgl32.Vec3{}, h.LinearLower)
			assert.Equal(t, mgl32.Vec3{}, h.LinearUpper)
			assert.Equal(t, mgl32.Vec3{0, 0, 1}, h.Axis1)
			assert.Equal(t, mgl32.Vec3{0, 1, 0}, h.Axis2)
		})
	}
}

func TestCabinBody(t *testing.T) {
	c, _ := newTestCrane(t)
	cabin := c.Cabin().Get()
	assert.Equal(t, float32(100), cabin.Mass())
	assert.Equal(t, float32(0.8), cabin.LinearDamping())
	assert.Equal(t, float32(0), cabin.AngularDamping())
	assert.Equal(t, float32(50), cabin.Friction())

	dims := c.Dimensions()
	want := DefaultStartPosition.Add(mgl32.Vec3{0, dims.CabinSize.Y()*0.5 + dims.BaseSize.Y()*0.5, 0})
	assert.Equal(t, want, cabin.WorldTransform().Origin)
}

func TestArmIsTiltedAndFixed(t *testing.T) {
	c, _ := newTestCrane(t)
	assert.Equal(t, physics.ConstraintFixed, c.ArmJoint().Type())
	assert.True(t, c.ArmJoint().CollisionsBetweenLinkedDisabled())
	assert.False(t, c.BallJoint().CollisionsBetweenLinkedDisabled())

	rot := c.Arm().WorldTransform().Rotation
	want := mgl32.QuatRotate(mgl32.DegToRad(-32), mgl32.Vec3{1, 0, 0})
	assert.InDelta(t, 1, mgl32.Abs(rot.Dot(want)), 1e-5)
}

func TestWheelLayout(t *testing.T) {
	for name, dims := range dimensionSets {
		t.Run(name, func(t *testing.T) {
			c, err := New(newWorld(), dims)
			require.NoError(t, err)
			v := c.Vehicle()

			right, up, forward := v.CoordinateSystem()
			assert.Equal(t, [3]int{0, 1, 2}, [3]int{right, up, forward})

			for i := 0; i < v.NumWheels(); i++ {
				w := v.Wheel(i)
				if i < WheelsPerSide {
					assert.Negative(t, w.ChassisConnectionPointCS.X(), "wheel %d is on the right", i)
				} else {
					assert.Positive(t, w.ChassisConnectionPointCS.X(), "wheel %d is on the left", i)
				}
				assert.Equal(t, WheelConnectionPoint(i, dims.WheelRadius), w.ChassisConnectionPointCS)
				assert.Equal(t, WheelDirection, w.WheelDirectionCS)
				assert.Equal(t, WheelAxle, w.WheelAxleCS)
				assert.Equal(t, dims.WheelRadius, w.WheelsRadius)
				assert.Equal(t, float32(0.6), w.SuspensionRestLength)

				assert.Equal(t, float32(10), w.FrictionSlip)
				assert.Equal(t, float32(25), w.SuspensionStiffness)
				assert.Equal(t, float32(1.5), w.WheelsDampingCompression)
				assert.Equal(t, float32(1.5), w.WheelsDampingRelaxation)
				assert.Equal(t, float32(10), w.MaxSuspensionTravelCm)
				assert.Equal(t, float32(0), w.RollInfluence)
			}

			assert.Less(t, v.Wheel(RightTrackWheel).ChassisConnectionPointCS.X(), float32(0))
			assert.Greater(t, v.Wheel(LeftTrackWheel).ChassisConnectionPointCS.X(), float32(0))
		})
	}
}

func TestWheelConnectionPoint(t *testing.T) {
	for _, test := range []struct {
		i    int
		want mgl32.Vec3
	}{
		{0, mgl32.Vec3{-1, 0.5, -1.2}},
		{1, mgl32.Vec3{-1, 0.5, -0.4}},
		{3, mgl32.Vec3{-1, 0.5, 1.2}},
		{4, mgl32.Vec3{1, 0.5, -1.2}},
		{7, mgl32.Vec3{1, 0.5, 1.2}},
	} {
		got := WheelConnectionPoint(test.i, 0.5)
		assertVecNear(t, test.want, got, 1e-5, "wheel %d: %v != %v", test.i, got, test.want)
	}
}

func TestBallStartsSwungOut(t *testing.T) {
	for _, start := range []mgl32.Vec3{DefaultStartPosition, {10, 2, -5}} {
		c, _ := newTestCrane(t, WithStartPosition(start))
		dims := c.Dimensions()

		want := start.Add(mgl32.Vec3{3, dims.CabinSize.Y()*0.5 + dims.BaseSize.Y()*0.5 + 2, dims.ArmSize.Z() * 1.1})
		got := c.Ball().WorldTransform().Origin
		assertVecNear(t, want, got, 1e-5, "ball at %v, want %v", got, want)
		assert.Equal(t, start, c.Base().WorldTransform().Origin)

		joint := c.BallJoint()
		assert.Equal(t, mgl32.Vec3{0, 0, dims.ArmSize.Z() * 0.5}, joint.PivotInA)
		assert.Equal(t, mgl32.Vec3{0, 3, 0}, joint.PivotInB)
	}
}

func TestNewFailureLeavesWorldClean(t *testing.T) {
	good := config.DefaultDimensions()

	badArm := good
	badArm.ArmSize = mgl32.Vec3{0.4, 0, 6}
	badBall := good
	badBall.BallRadius = -1
	badWheel := good
	badWheel.WheelRadius = 0
	badBase := good
	badBase.BaseSize = mgl32.Vec3{}

	for name, dims := range map[string]config.Dimensions{
		"arm": badArm, "ball": badBall, "wheel": badWheel, "base": badBase,
	} {
		t.Run(name, func(t *testing.T) {
			w := newWorld()
			c, err := New(w, dims)
			assert.Error(t, err)
			assert.Nil(t, c)
			assert.Zero(t, w.NumBodies())
			assert.Zero(t, w.NumConstraints())
			assert.Empty(t, w.Vehicles())
		})
	}
}

func TestHandlesDieWithWorld(t *testing.T) {
	c, w := newTestCrane(t)
	w.Destroy()

	assert.False(t, c.Base().Valid())
	assert.PanicsWithValue(t, physics.ErrWorldDestroyed, func() { c.Cabin().Get() })
	assert.Panics(t, func() { c.Derive(nil) })
}

func TestCraneStaysTogether(t *testing.T) {
	cfg := config.Default()
	s, err := NewScene(cfg)
	require.NoError(t, err)
	defer s.Destroy()

	for i := 0; i < 180; i++ {
		s.Step(1.0 / 60)
	}

	c := s.Crane
	base := c.Base().WorldTransform()
	cabin := c.Cabin().WorldTransform()
	assert.Greater(t, base.Origin.Y(), float32(0), "chassis stays above ground")

	// cabin stays at the hinge anchor
	anchor := base.Apply(mgl32.Vec3{0, cfg.Dimensions.CabinSize.Y()*0.5 + cfg.Dimensions.BaseSize.Y()*0.5, 0})
	assert.Less(t, cabin.Origin.Sub(anchor).Len(), float32(0.1))

	// ball hangs on its rope
	pa := c.Arm().WorldTransform().Apply(c.BallJoint().PivotInA)
	pb := c.Ball().WorldTransform().Apply(c.BallJoint().PivotInB)
	assert.Less(t, pa.Sub(pb).Len(), float32(0.1))

	for i := 0; i < c.Vehicle().NumWheels(); i++ {
		assert.True(t, c.Vehicle().Wheel(i).RaycastInfo.IsInContact, "wheel %d", i)
	}
}

func TestCabinRestsLevelOnChassis(t *testing.T) {
	s, err := NewScene(config.Default())
	require.NoError(t, err)
	defer s.Destroy()

	c := s.Crane
	maxTilt := math.Cos(float64(mgl32.DegToRad(5)))
	for i := 0; i < 240; i++ {
		s.Step(1.0 / 60)

		baseUp := c.Base().WorldTransform().ApplyRotation(mgl32.Vec3{0, 1, 0})
		cabinUp := c.Cabin().WorldTransform().ApplyRotation(mgl32.Vec3{0, 1, 0})
		require.Greater(t, float64(baseUp.Dot(cabinUp)), maxTilt, "step %d: cabin up %v, chassis up %v", i, cabinUp, baseUp)
	}

	// arm is held up by the cabin, not lying on the ground
	arm := c.Arm().WorldTransform()
	assert.Greater(t, arm.Origin.Y(), float32(3), "arm at %v", arm.Origin)
}

func TestPausedSceneDoesNotMove(t *testing.T) {
	s, err := NewScene(config.Default())
	require.NoError(t, err)
	defer s.Destroy()

	assert.False(t, s.Paused())
	s.SetPaused(true)
	ball := s.Crane.Ball().WorldTransform()
	for i := 0; i < 30; i++ {
		assert.Zero(t, s.Step(1.0/60))
	}
	assert.Equal(t, ball, s.Crane.Ball().WorldTransform())

	s.SetPaused(false)
	assert.Positive(t, s.Step(1.0/30))
	assert.NotEqual(t, ball.Origin, s.Crane.Ball().WorldTransform().Origin, "ball falls once resumed")
}
