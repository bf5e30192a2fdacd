package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinedFriction(t *testing.T) {
	a := &RigidBody{friction: 50}
	b := &RigidBody{friction: 0.5}
	c := &RigidBody{friction: 1}
	assert.Equal(t, float32(10), combinedFriction(a, b), "clamped")
	assert.Equal(t, float32(0.5), combinedFriction(b, c))
}

func TestPointInBox(t *testing.T) {
	box := mustBox(t, mgl32.Vec3{1, 0.5, 2})
	tr := NewTransform(mgl32.Vec3{0, 1, 0}, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))

	depth, n, ok := pointInBox(tr, box, mgl32.Vec3{0.5, 1.4, 0})
	require.True(t, ok)
	assert.InDelta(t, 0.1, depth, 1e-5)
	assertVecNear(t, mgl32.Vec3{0, 1, 0}, n, 1e-5)

	// local x of rotated box points along world -z
	depth, n, ok = pointInBox(tr, box, mgl32.Vec3{0, 1, -0.95})
	require.True(t, ok)
	assert.InDelta(t, 0.05, depth, 1e-5)
	assertVecNear(t, mgl32.Vec3{0, 0, -1}, n, 1e-5)

	_, _, ok = pointInBox(tr, box, mgl32.Vec3{0, 1, -1.5})
	assert.False(t, ok)
}

func TestBoxRestsOnBox(t *testing.T) {
	w := NewWorld(gravity)
	addGround(t, w)
	bottom := addBody(t, w, 10, mgl32.Vec3{0, 0.5, 0}, mustBox(t, mgl32.Vec3{1, 0.5, 1}))
	top := addBody(t, w, 1, mgl32.Vec3{0, 1.6, 0}, mustBox(t, mgl32.Vec3{0.5, 0.5, 0.5}))

	step(w, 2)
	assert.InDelta(t, 0.5, bottom.WorldTransform().Origin.Y(), 0.05)
	assert.InDelta(t, 1.5, top.WorldTransform().Origin.Y(), 0.05)
	up := top.WorldTransform().ApplyRotation(mgl32.Vec3{0, 1, 0})
	assert.Greater(t, up.Y(), float32(0.99), "top box stays level")
}

func TestSphereRestsOnStaticBox(t *testing.T) {
	w := NewWorld(gravity)
	table := addBody(t, w, 0, mgl32.Vec3{0, 0.5, 0}, mustBox(t, mgl32.Vec3{2, 0.5, 2}))
	ball := addBody(t, w, 1, mgl32.Vec3{0.3, 2, 0}, mustSphere(t, 0.5))

	step(w, 2)
	assert.InDelta(t, 1.5, ball.WorldTransform().Origin.Y(), 0.05)
	assert.Equal(t, mgl32.Vec3{0, 0.5, 0}, table.WorldTransform().Origin)
	assert.Contains(t, w.Contacts(ball.Get()), table.Get())
}

func TestOverlappingBoxesArePushedApart(t *testing.T) {
	w := NewWorld(mgl32.Vec3{})
	a := addBody(t, w, 1, mgl32.Vec3{}, mustBox(t, mgl32.Vec3{0.5, 0.5, 0.5}))
	b := addBody(t, w, 1, mgl32.Vec3{0.95, 0, 0}, mustBox(t, mgl32.Vec3{0.5, 0.4, 0.4}))

	step(w, 1.0/60)
	gap := b.WorldTransform().Origin.X() - a.WorldTransform().Origin.X()
	assert.GreaterOrEqual(t, gap, float32(0.99))
	assert.InDelta(t, 0, a.WorldTransform().Origin.Y(), 1e-4)
	assert.Contains(t, w.Contacts(a.Get()), b.Get())
	assert.Contains(t, w.Contacts(b.Get()), a.Get())
}

func TestLinkedBodiesCollisionFilter(t *testing.T) {
	for _, disable := range []bool{true, false} {
		w := NewWorld(mgl32.Vec3{})
		a := addBody(t, w, 1, mgl32.Vec3{}, mustBox(t, mgl32.Vec3{0.5, 0.5, 0.5}))
		b := addBody(t, w, 1, mgl32.Vec3{0.95, 0, 0}, mustBox(t, mgl32.Vec3{0.5, 0.4, 0.4}))
		c := NewPoint2PointConstraint(a.Get(), b.Get(), mgl32.Vec3{0.45, 0, 0}, mgl32.Vec3{-0.5, 0, 0})
		require.NoError(t, w.AddConstraint(c, disable))
		assert.Equal(t, disable, c.CollisionsBetweenLinkedDisabled())
		assert.Equal(t, disable, w.collisionsDisabled(a.Get(), b.Get()))
		assert.Equal(t, disable, w.collisionsDisabled(b.Get(), a.Get()))

		step(w, 1.0/60)
		if disable {
			assert.Empty(t, w.Contacts(a.Get()))
			assert.InDelta(t, 0.95, b.WorldTransform().Origin.X(), 1e-4, "joint already satisfied")
		} else {
			assert.Contains(t, w.Contacts(a.Get()), b.Get())
		}
	}
}

func TestContactFrictionStopsSliding(t *testing.T) {
	for _, test := range []struct {
		friction float32
		stops    bool
	}{
		{friction: 1, stops: true},
		{friction: 0, stops: false},
	} {
		w := NewWorld(gravity)
		table := addBody(t, w, 0, mgl32.Vec3{0, 0.5, 0}, mustBox(t, mgl32.Vec3{10, 0.5, 10}))
		table.Get().SetFriction(1)
		block := addBody(t, w, 1, mgl32.Vec3{0, 1.5, 0}, mustBox(t, mgl32.Vec3{0.5, 0.5, 0.5}))
		block.Get().SetFriction(test.friction)
		block.Get().ForceActivationState(DisableDeactivation)
		block.Get().SetLinearVelocity(mgl32.Vec3{2, 0, 0})

		step(w, 1.5)
		speed := block.Get().LinearVelocity().X()
		if test.stops {
			assert.InDelta(t, 0, speed, 0.1, "friction %v", test.friction)
		} else {
			assert.Greater(t, speed, float32(1.5), "friction %v", test.friction)
		}
	}
}
