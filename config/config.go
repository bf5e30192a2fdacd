package config

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Assets struct {
	Dir          string `yaml:"dir"`
	BodyModel    string `yaml:"body_model"`
	TrackTexture string `yaml:"track_texture"`
	Shader       string `yaml:"shader"`
}

type Physics struct {
	Gravity       mgl32.Vec3 `yaml:"gravity"`
	StepRate      float32    `yaml:"step_rate"` // Hz
	MaxSubSteps   int        `yaml:"max_sub_steps"`
	SolverIters   int        `yaml:"solver_iterations"`
	EngineForce   float32    `yaml:"engine_force"`
	BrakeForce    float32    `yaml:"brake_force"`
	TurnForceDiff float32    `yaml:"turn_force_diff"`
}

type Config struct {
	Window     Window     `yaml:"window"`
	Assets     Assets     `yaml:"assets"`
	Physics    Physics    `yaml:"physics"`
	Dimensions Dimensions `yaml:"dimensions"`
	Telemetry  string     `yaml:"telemetry"` // listen address, empty disables
	Debug      bool       `yaml:"debug"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:  800,
			Height: 600,
			Title:  "crane",
		},
		Assets: Assets{
			Dir:          "data",
			BodyModel:    "dzwig",
			TrackTexture: "gasienica",
			Shader:       "shaders/main",
		},
		Physics: Physics{
			Gravity:       mgl32.Vec3{0, -9.81, 0},
			StepRate:      60,
			MaxSubSteps:   10,
			SolverIters:   10,
			EngineForce:   3000,
			BrakeForce:    100,
			TurnForceDiff: 2000,
		},
		Dimensions: DefaultDimensions(),
	}
}

// Load returns defaults overlaid by yaml file at path.
// Empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "Failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "Invalid config %q", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Physics.StepRate <= 0 {
		return errors.Errorf("physics.step_rate must be positive, got %v", c.Physics.StepRate)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d is invalid", c.Window.Width, c.Window.Height)
	}
	if c.Assets.BodyModel == "" {
		return errors.New("assets.body_model is empty")
	}
	return nil
}

func (c *Config) FixedTimeStep() float32 {
	return 1 / c.Physics.StepRate
}
