package crane

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/crane/physics"
)

const (
	NumWheels       = 8
	WheelsPerSide   = NumWheels / 2
	RightTrackWheel = 0
	LeftTrackWheel  = WheelsPerSide
)

var (
	WheelDirection = mgl32.Vec3{0, -1, 0}
	WheelAxle      = mgl32.Vec3{-1, 0, 0}
)

// WheelConnectionPoint returns chassis space hard point of wheel i.
// Wheels 0..3 are on the right side (negative x), 4..7 on the left.
func WheelConnectionPoint(i int, radius float32) mgl32.Vec3 {
	side := float32(1)
	if i < WheelsPerSide {
		side = -1
	}
	return mgl32.Vec3{
		side,
		0.5,
		-2.4*radius + float32(i%WheelsPerSide)*radius*1.6,
	}
}

func (b *builder) buildVehicle(c *Crane) error {
	radius := c.dims.WheelRadius
	if !(radius > 0) {
		return errors.Errorf("wheel radius must be positive, got %v", radius)
	}

	tuning := physics.DefaultVehicleTuning()
	v := physics.NewRaycastVehicle(tuning, c.base, physics.NewDefaultVehicleRaycaster(b.world))
	if err := b.world.AddVehicle(v); err != nil {
		return errors.Wrap(err, "vehicle")
	}
	b.vehicle = v

	v.SetCoordinateSystem(0, 1, 2)

	for i := 0; i < NumWheels; i++ {
		w := v.AddWheel(WheelConnectionPoint(i, radius), WheelDirection, WheelAxle,
			c.tuning.SuspensionRestLength, radius, tuning, false)

		w.SuspensionStiffness = c.tuning.SuspensionStiffness
		w.WheelsDampingRelaxation = c.tuning.DampingRelaxation
		w.WheelsDampingCompression = c.tuning.DampingCompression
		w.MaxSuspensionTravelCm = c.tuning.MaxSuspensionTravelCm
		w.FrictionSlip = c.tuning.FrictionSlip
		w.RollInfluence = c.tuning.RollInfluence
	}

	c.vehicle = v
	return nil
}
