package glbackend

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/crane/r3d"
	"github.com/mogaika/crane/resource"
)

// Backend issues r3d.Backend calls to current OpenGL context
type Backend struct{}

func (Backend) UseProgram(p resource.Program) {
	p.Use()
}

func (Backend) UniformMatrix4(location int32, m mgl32.Mat4) {
	if location < 0 {
		return
	}
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (Backend) Uniform3(location int32, v mgl32.Vec3) {
	if location < 0 {
		return
	}
	gl.Uniform3fv(location, 1, &v[0])
}

func (Backend) PolygonMode() r3d.PolygonMode {
	var mode [2]int32
	gl.GetIntegerv(gl.POLYGON_MODE, &mode[0])
	switch uint32(mode[0]) {
	case gl.LINE:
		return r3d.PolygonLine
	case gl.POINT:
		return r3d.PolygonPoint
	default:
		return r3d.PolygonFill
	}
}

func (Backend) SetPolygonMode(mode r3d.PolygonMode) {
	glMode := uint32(gl.FILL)
	switch mode {
	case r3d.PolygonLine:
		glMode = gl.LINE
	case r3d.PolygonPoint:
		glMode = gl.POINT
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, glMode)
}

// BeginFrame sets state expected by object renderers and clears framebuffer
func (Backend) BeginFrame(width, height int32, clearColor [3]float32) {
	gl.Viewport(0, 0, width, height)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)

	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], 1.0)
	gl.ClearDepth(1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
