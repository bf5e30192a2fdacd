// Package resource describes what render code may ask of the asset side:
// shader programs, models and textures looked up by name.
package resource

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Program interface {
	Use()
	// Uniform returns location of uniform or -1 if program has no such uniform
	Uniform(name string) int32
}

type Texture interface {
	Use()
}

type Mesh interface {
	Render()
}

// Provider resolves resources by name. Missing resources are returned as nil.
// Returned values are owned by provider and must not be modified.
type Provider interface {
	Program(name string) Program
	Model(name string) *Model
	Texture(name string) Texture
}

type Material struct {
	Diffuse  mgl32.Vec3
	Ambient  mgl32.Vec3
	Specular mgl32.Vec3
	Texture  string
}

func DefaultMaterial() Material {
	return Material{
		Diffuse:  mgl32.Vec3{0.8, 0.8, 0.8},
		Ambient:  mgl32.Vec3{0.2, 0.2, 0.2},
		Specular: mgl32.Vec3{0.1, 0.1, 0.1},
	}
}

type Object struct {
	Name     string
	Material Material

	// cpu side data, uploaded by provider into Mesh
	Geometry *Geometry
	Mesh     Mesh

	// non empty for path objects (track chains)
	Segments []Segment
}

func (o *Object) Render() {
	if o.Mesh != nil {
		o.Mesh.Render()
	}
}

func (o *Object) IsPath() bool { return len(o.Segments) != 0 }

type Model struct {
	Name    string
	Objects []*Object
}

func (m *Model) Object(name string) *Object {
	for _, o := range m.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// Render draws all drawable objects with whatever state is currently bound
func (m *Model) Render() {
	for _, o := range m.Objects {
		o.Render()
	}
}

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}
