package crane

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/crane/r3d"
	"github.com/mogaika/crane/resource"
)

const (
	BallModel      = "ball"
	BallTexture    = "ball"
	DebugModel     = "cube"
	DebugTexture   = "oslona"
	TrackLinkModel = "gasieniacapart"
)

var ErrResourceMissing = errors.New("resource missing")

type uniforms struct {
	model    int32
	diffuse  int32
	ambient  int32
	specular int32
}

func lookupUniforms(p resource.Program) uniforms {
	return uniforms{
		model:    p.Uniform("model"),
		diffuse:  p.Uniform("diffuse"),
		ambient:  p.Uniform("ambient"),
		specular: p.Uniform("specular"),
	}
}

type renderPass struct {
	res     resource.Provider
	backend r3d.Backend
	u       uniforms
}

func (p *renderPass) model(name string) (*resource.Model, error) {
	m := p.res.Model(name)
	if m == nil {
		return nil, errors.Wrapf(ErrResourceMissing, "model %q", name)
	}
	return m, nil
}

func (p *renderPass) useTexture(name string) {
	if name == "" {
		return
	}
	if t := p.res.Texture(name); t != nil {
		t.Use()
	}
}

func (p *renderPass) draw(m *resource.Model, model mgl32.Mat4) {
	p.backend.UniformMatrix4(p.u.model, model)
	m.Render()
}

// Render draws crane using program named shader. World must be stepped
// before and must not be stepped during call. Physics state is only read.
func (c *Crane) Render(res resource.Provider, backend r3d.Backend, shader string, debug bool) error {
	program := res.Program(shader)
	if program == nil {
		return errors.Wrapf(ErrResourceMissing, "program %q", shader)
	}
	body := res.Model(c.bodyModel)
	if body == nil {
		return errors.Wrapf(ErrResourceMissing, "model %q", c.bodyModel)
	}

	frame := c.Derive(body)

	backend.UseProgram(program)
	pass := &renderPass{res: res, backend: backend, u: lookupUniforms(program)}

	if debug {
		err := r3d.WithPolygonMode(backend, r3d.PolygonLine, func() error {
			return c.renderPhysics(pass, &frame)
		})
		if err != nil {
			return err
		}
	}
	if err := c.renderBody(pass, &frame); err != nil {
		return err
	}
	return c.renderTracks(pass, &frame)
}

func (c *Crane) renderPhysics(p *renderPass, f *Frame) error {
	cube, err := p.model(DebugModel)
	if err != nil {
		return err
	}

	for _, m := range []mgl32.Mat4{f.Base, f.Cabin, f.Arm} {
		p.useTexture(DebugTexture)
		p.draw(cube, m)
	}
	for _, m := range f.Wheels {
		p.draw(cube, m)
	}
	return nil
}

func (c *Crane) renderBody(p *renderPass, f *Frame) error {
	for _, part := range f.Parts {
		p.backend.UniformMatrix4(p.u.model, part.Model)
		mat := part.Object.Material
		p.useTexture(mat.Texture)
		p.backend.Uniform3(p.u.diffuse, mat.Diffuse)
		p.backend.Uniform3(p.u.ambient, mat.Ambient)
		p.backend.Uniform3(p.u.specular, mat.Specular)
		part.Object.Render()
	}

	ball, err := p.model(BallModel)
	if err != nil {
		return err
	}
	p.backend.UniformMatrix4(p.u.model, f.Ball)
	p.useTexture(BallTexture)
	ball.Render()
	return nil
}

func (c *Crane) renderTracks(p *renderPass, f *Frame) error {
	if len(f.Links) == 0 {
		return nil
	}
	link, err := p.model(TrackLinkModel)
	if err != nil {
		return err
	}

	p.useTexture(c.trackTexture)
	for _, l := range f.Links {
		p.draw(link, l.Model)
	}
	return nil
}
