package crane

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DriveForces scale normalized driver input into wheel forces
type DriveForces struct {
	Engine   float32
	Brake    float32
	TurnDiff float32
}

func DefaultDriveForces() DriveForces {
	return DriveForces{Engine: 3000, Brake: 100, TurnDiff: 2000}
}

func (c *Crane) DriveForces() DriveForces { return c.drive }

func (c *Crane) setSide(first int, engineForce float32) {
	for i := first; i < first+WheelsPerSide; i++ {
		c.vehicle.ApplyEngineForce(engineForce, i)
	}
}

// Drive writes engine force, brake and steering into every wheel.
// Positive force moves crane forward. Physics is not stepped.
func (c *Crane) Drive(engineForce, brake, steering float32) {
	for i := 0; i < c.vehicle.NumWheels(); i++ {
		c.vehicle.ApplyEngineForce(engineForce, i)
		c.vehicle.SetBrake(brake, i)
		c.vehicle.SetSteeringValue(steering, i)
	}
}

// Turn sets independent track forces, skid steering the crane
func (c *Crane) Turn(left, right float32) {
	c.setSide(RightTrackWheel, right)
	c.setSide(LeftTrackWheel, left)
}

// Control maps normalized input in [-1,1] to track forces.
// Positive turn steers right by pushing left track harder.
func (c *Crane) Control(throttle, turn float32, braking bool) {
	throttle = mgl32.Clamp(throttle, -1, 1)
	turn = mgl32.Clamp(turn, -1, 1)

	var brake float32
	if braking {
		brake = c.drive.Brake
	}
	engine := throttle * c.drive.Engine
	c.Drive(engine, brake, 0)

	diff := turn * c.drive.TurnDiff
	c.Turn(engine+diff, engine-diff)
}
