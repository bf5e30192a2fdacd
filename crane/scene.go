package crane

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/crane/config"
	"github.com/mogaika/crane/physics"
)

// Scene is physics world with ground plane and one crane on it
type Scene struct {
	World  *physics.World
	Ground physics.BodyHandle
	Crane  *Crane

	fixedStep   float32
	maxSubSteps int
	paused      bool
}

func NewScene(cfg config.Config, opts ...Option) (*Scene, error) {
	world := physics.NewWorld(cfg.Physics.Gravity)
	if cfg.Physics.SolverIters > 0 {
		world.SolverIterations = cfg.Physics.SolverIters
	}

	plane, err := physics.NewStaticPlaneShape(mgl32.Vec3{0, 1, 0}, 0)
	if err != nil {
		return nil, errors.Wrap(err, "ground shape")
	}
	ground, err := physics.NewRigidBody(0, physics.IdentityTransform(), plane)
	if err != nil {
		return nil, errors.Wrap(err, "ground body")
	}
	ground.SetFriction(1)

	s := &Scene{
		World:       world,
		Ground:      world.AddRigidBody(ground),
		fixedStep:   cfg.FixedTimeStep(),
		maxSubSteps: cfg.Physics.MaxSubSteps,
	}

	opts = append([]Option{
		WithModel(cfg.Assets.BodyModel, cfg.Assets.TrackTexture),
		WithDriveForces(DriveForces{
			Engine:   cfg.Physics.EngineForce,
			Brake:    cfg.Physics.BrakeForce,
			TurnDiff: cfg.Physics.TurnForceDiff,
		}),
	}, opts...)

	s.Crane, err = New(world, cfg.Dimensions, opts...)
	if err != nil {
		world.Destroy()
		return nil, err
	}
	return s, nil
}

// Step advances simulation by real elapsed time dt, returns number of fixed steps done.
// Paused scene does not move.
func (s *Scene) Step(dt float32) int {
	if s.paused {
		return 0
	}
	return s.World.StepSimulation(dt, s.maxSubSteps, s.fixedStep)
}

func (s *Scene) SetPaused(paused bool) { s.paused = paused }
func (s *Scene) Paused() bool          { return s.paused }

// Destroy tears world down, every handle of crane becomes invalid
func (s *Scene) Destroy() {
	s.World.Destroy()
}
