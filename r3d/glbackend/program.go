package glbackend

import (
	_ "embed"
	"log"
	"os"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/pkg/errors"
)

//go:embed shaders/main.vert
var defaultVertexShader string

//go:embed shaders/main.frag
var defaultFragmentShader string

// attribute locations shared by every program and mesh
const (
	attribPosition = 0
	attribNormal   = 1
	attribTexcoord = 2
)

type Program struct {
	Id                           uint32
	VertexShader, FragmentShader uint32

	uniforms map[string]int32
}

func (p *Program) Use() {
	gl.UseProgram(p.Id)
}

func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.Id, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

func (p *Program) Delete() {
	gl.DetachShader(p.Id, p.VertexShader)
	gl.DetachShader(p.Id, p.FragmentShader)
	gl.DeleteProgram(p.Id)
	gl.DeleteShader(p.VertexShader)
	gl.DeleteShader(p.FragmentShader)
}

// LoadProgramFiles compiles base+".vert" and base+".frag"
func LoadProgramFiles(base string) (*Program, error) {
	vs, err := os.ReadFile(base + ".vert")
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	fs, err := os.ReadFile(base + ".frag")
	if err != nil {
		return nil, errors.Wrap(err, "fragment shader")
	}
	return LoadProgram(string(vs), string(fs))
}

func LoadDefaultProgram() (*Program, error) {
	return LoadProgram(defaultVertexShader, defaultFragmentShader)
}

func LoadProgram(vertexShaderText, fragmentShaderText string) (*Program, error) {
	p := &Program{uniforms: make(map[string]int32)}

	p.Id = gl.CreateProgram()

	if vs, err := LoadShader(gl.VERTEX_SHADER, vertexShaderText); err != nil {
		gl.DeleteProgram(p.Id)
		return nil, errors.Wrap(err, "vertex shader")
	} else {
		p.VertexShader = vs
	}

	if fs, err := LoadShader(gl.FRAGMENT_SHADER, fragmentShaderText); err != nil {
		gl.DeleteShader(p.VertexShader)
		gl.DeleteProgram(p.Id)
		return nil, errors.Wrap(err, "fragment shader")
	} else {
		p.FragmentShader = fs
	}

	gl.AttachShader(p.Id, p.VertexShader)
	gl.AttachShader(p.Id, p.FragmentShader)

	gl.BindAttribLocation(p.Id, attribPosition, gl.Str("position\x00"))
	gl.BindAttribLocation(p.Id, attribNormal, gl.Str("normal\x00"))
	gl.BindAttribLocation(p.Id, attribTexcoord, gl.Str("texcoord\x00"))

	gl.LinkProgram(p.Id)

	var isLinked int32
	gl.GetProgramiv(p.Id, gl.LINK_STATUS, &isLinked)
	if isLinked == gl.FALSE {
		var logSize int32
		gl.GetProgramiv(p.Id, gl.INFO_LOG_LENGTH, &logSize)
		buf := make([]uint8, logSize+1)
		gl.GetProgramInfoLog(p.Id, int32(len(buf)), &logSize, &buf[0])
		errString := string(buf[:logSize])
		log.Printf("[r3d] Failed to link program:\n%s", errString)

		p.Delete()
		return nil, errors.Errorf("failed to link program: %q", errString)
	}
	return p, nil
}

func MustLoadProgram(vertexShaderText, fragmentShaderText string) *Program {
	program, err := LoadProgram(vertexShaderText, fragmentShaderText)
	if err != nil {
		panic(err)
	}
	return program
}

func LoadShader(xtype uint32, text string) (shader uint32, err error) {
	glShaderSource := func(handle uint32, source string) {
		csource, free := gl.Strs(source + "\x00")
		defer free()

		gl.ShaderSource(handle, 1, csource, nil)
	}

	shader = gl.CreateShader(xtype)
	glShaderSource(shader, text)
	gl.CompileShader(shader)

	var success int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &success)
	if success == gl.FALSE {
		var logSize int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logSize)
		buf := make([]uint8, logSize+1)
		gl.GetShaderInfoLog(shader, int32(len(buf)), &logSize, &buf[0])
		errString := string(buf[:logSize])
		log.Printf("[r3d] Failed to compile shader:\n%s", errString)

		gl.DeleteShader(shader)
		return gl.INVALID_INDEX, errors.Errorf("failed to compile shader: %q", errString)
	}
	return shader, nil
}
