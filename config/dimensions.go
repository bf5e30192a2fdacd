package config

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Dimensions are physical proportions of the crane.
// Set once before the mechanism is built.
type Dimensions struct {
	BaseSize    mgl32.Vec3 `yaml:"base_size"`
	CabinSize   mgl32.Vec3 `yaml:"cabin_size"`
	ArmSize     mgl32.Vec3 `yaml:"arm_size"`
	WheelRadius float32    `yaml:"wheel_radius"`
	BallRadius  float32    `yaml:"ball_radius"`
}

func DefaultDimensions() Dimensions {
	return Dimensions{
		BaseSize:    mgl32.Vec3{2.2, 0.8, 4.0},
		CabinSize:   mgl32.Vec3{2.0, 1.2, 2.0},
		ArmSize:     mgl32.Vec3{0.4, 0.4, 6.0},
		WheelRadius: 0.5,
		BallRadius:  0.4,
	}
}

// WheelTuning is applied to every wheel of the crane
type WheelTuning struct {
	SuspensionStiffness   float32
	DampingCompression    float32
	DampingRelaxation     float32
	MaxSuspensionTravelCm float32
	FrictionSlip          float32
	RollInfluence         float32
	SuspensionRestLength  float32
}

// CraneWheelTuning is fixed, it does not depend on dimensions
func CraneWheelTuning() WheelTuning {
	return WheelTuning{
		SuspensionStiffness:   25,
		DampingCompression:    1.5,
		DampingRelaxation:     1.5,
		MaxSuspensionTravelCm: 10,
		FrictionSlip:          10,
		RollInfluence:         0,
		SuspensionRestLength:  0.6,
	}
}
