package crane

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/crane/physics"
	"github.com/mogaika/crane/utils"
)

type BodyState struct {
	Origin mgl32.Vec3 `json:"origin"`
	// euler angles in radians
	Rotation mgl32.Vec3 `json:"rotation"`
	Active   bool       `json:"active"`
}

type WheelState struct {
	Rotation         float32    `json:"rotation"`
	Origin           mgl32.Vec3 `json:"origin"`
	InContact        bool       `json:"in_contact"`
	SuspensionLength float32    `json:"suspension_length"`
	EngineForce      float32    `json:"engine_force"`
}

// Snapshot is copy of crane state, safe to pass to other goroutines
type Snapshot struct {
	Base     BodyState    `json:"base"`
	Cabin    BodyState    `json:"cabin"`
	Arm      BodyState    `json:"arm"`
	Ball     BodyState    `json:"ball"`
	Wheels   []WheelState `json:"wheels"`
	SpeedKmH float32      `json:"speed_kmh"`
}

func bodyState(h physics.BodyHandle) BodyState {
	b := h.Get()
	tr := b.WorldTransform()
	return BodyState{
		Origin:   tr.Origin,
		Rotation: utils.QuatToEuler(tr.Rotation),
		Active:   b.IsActive(),
	}
}

func (c *Crane) Snapshot() Snapshot {
	s := Snapshot{
		Base:     bodyState(c.base),
		Cabin:    bodyState(c.cabin),
		Arm:      bodyState(c.arm),
		Ball:     bodyState(c.ball),
		Wheels:   make([]WheelState, c.vehicle.NumWheels()),
		SpeedKmH: c.vehicle.CurrentSpeedKmHour(),
	}
	for i := range s.Wheels {
		w := c.vehicle.Wheel(i)
		s.Wheels[i] = WheelState{
			Rotation:         w.Rotation,
			Origin:           w.WorldTransform.Origin,
			InContact:        w.RaycastInfo.IsInContact,
			SuspensionLength: w.RaycastInfo.SuspensionLength,
			EngineForce:      w.EngineForce,
		}
	}
	return s
}

// Dump returns human readable dump of crane state
func (c *Crane) Dump() string {
	return utils.SDump(c.Snapshot())
}
