package crane

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/crane/config"
)

func TestDriveWritesEveryWheel(t *testing.T) {
	c, _ := newTestCrane(t)
	c.Drive(500, 20, 0.1)

	for i := 0; i < NumWheels; i++ {
		w := c.Vehicle().Wheel(i)
		assert.Equal(t, float32(500), w.EngineForce, "wheel %d", i)
		assert.Equal(t, float32(20), w.Brake, "wheel %d", i)
		assert.Equal(t, float32(0.1), w.Steering, "wheel %d", i)
	}
}

func TestTurnSplitsTracks(t *testing.T) {
	c, _ := newTestCrane(t)
	c.Turn(300, -100)

	for i := 0; i < WheelsPerSide; i++ {
		assert.Equal(t, float32(-100), c.Vehicle().Wheel(RightTrackWheel+i).EngineForce)
		assert.Equal(t, float32(300), c.Vehicle().Wheel(LeftTrackWheel+i).EngineForce)
	}
}

func TestControl(t *testing.T) {
	forces := DriveForces{Engine: 1000, Brake: 50, TurnDiff: 200}
	c, _ := newTestCrane(t, WithDriveForces(forces))
	assert.Equal(t, forces, c.DriveForces())

	c.Control(5, 0.5, true)
	right, left := c.Vehicle().Wheel(RightTrackWheel), c.Vehicle().Wheel(LeftTrackWheel)
	assert.Equal(t, float32(900), right.EngineForce, "throttle is clamped to 1")
	assert.Equal(t, float32(1100), left.EngineForce)
	assert.Equal(t, float32(50), right.Brake)
	assert.Zero(t, right.Steering)

	c.Control(0, 0, false)
	for i := 0; i < NumWheels; i++ {
		assert.Zero(t, c.Vehicle().Wheel(i).EngineForce)
		assert.Zero(t, c.Vehicle().Wheel(i).Brake)
	}
}

func TestDriveDoesNotStepPhysics(t *testing.T) {
	c, _ := newTestCrane(t)
	before := c.Base().Get().WorldTransform()
	c.Control(1, 1, false)
	assert.Equal(t, before, c.Base().Get().WorldTransform())
}

func TestSceneDrivesForward(t *testing.T) {
	s, err := NewScene(config.Default())
	require.NoError(t, err)
	defer s.Destroy()

	for i := 0; i < 60; i++ {
		s.Step(1.0 / 60)
	}
	startZ := s.Crane.Base().Get().WorldTransform().Origin.Z()

	for i := 0; i < 180; i++ {
		s.Crane.Control(1, 0, false)
		s.Step(1.0 / 60)
	}
	assert.Greater(t, s.Crane.Base().Get().WorldTransform().Origin.Z()-startZ, float32(0.1))
	assert.Greater(t, s.Crane.Snapshot().SpeedKmH, float32(0))
}

func TestSnapshot(t *testing.T) {
	c, _ := newTestCrane(t)
	snap := c.Snapshot()

	assert.Equal(t, c.StartPosition(), snap.Base.Origin)
	assert.True(t, snap.Base.Active)
	require.Len(t, snap.Wheels, NumWheels)
	assert.Equal(t, c.Ball().Get().WorldTransform().Origin, snap.Ball.Origin)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"speed_kmh"`)
	assert.Contains(t, string(data), `"in_contact"`)

	dump := c.Dump()
	assert.Contains(t, dump, "Wheels")
	assert.Contains(t, dump, "SpeedKmH")
}
