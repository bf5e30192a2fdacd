package glbackend

import (
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/mogaika/crane/rendercontext"
	"github.com/mogaika/crane/resource"
)

type glMeshVertex struct {
	pos    [3]float32
	normal [3]float32
	uv     [2]float32
}

// Mesh uploads geometry on first render and keeps it while it is drawn
type Mesh struct {
	geometry *resource.Geometry

	glInited     bool
	glVAO        uint32
	glVBO        uint32
	glEBO        uint32
	indexesCount int32
}

func NewMesh(geometry *resource.Geometry) *Mesh {
	return &Mesh{geometry: geometry}
}

func (m *Mesh) useGL() {
	rendercontext.Use(m)
	if m.glInited {
		return
	}
	m.glInited = true

	vertices := make([]glMeshVertex, len(m.geometry.Vertices))
	for i, v := range m.geometry.Vertices {
		vertices[i] = glMeshVertex{pos: v.Position, normal: v.Normal, uv: v.UV}
	}
	indexes := m.geometry.Indices
	m.indexesCount = int32(len(indexes))
	if len(vertices) == 0 || len(indexes) == 0 {
		return
	}

	var vertex glMeshVertex
	stride := int(unsafe.Sizeof(vertex))

	gl.GenVertexArrays(1, &m.glVAO)
	gl.BindVertexArray(m.glVAO)

	gl.GenBuffers(1, &m.glVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.glVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*stride, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, int32(stride), unsafe.Offsetof(vertex.pos))
	gl.EnableVertexAttribArray(attribPosition)

	gl.VertexAttribPointerWithOffset(attribNormal, 3, gl.FLOAT, false, int32(stride), unsafe.Offsetof(vertex.normal))
	gl.EnableVertexAttribArray(attribNormal)

	gl.VertexAttribPointerWithOffset(attribTexcoord, 2, gl.FLOAT, false, int32(stride), unsafe.Offsetof(vertex.uv))
	gl.EnableVertexAttribArray(attribTexcoord)

	gl.GenBuffers(1, &m.glEBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.glEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 4*len(indexes), gl.Ptr(indexes), gl.STATIC_DRAW)

	runtime.KeepAlive(vertices)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
}

func (m *Mesh) ClearTempRenderData() {
	if !m.glInited {
		return
	}
	m.glInited = false

	if m.glVAO != 0 {
		gl.DeleteVertexArrays(1, &m.glVAO)
		gl.DeleteBuffers(1, &m.glVBO)
		gl.DeleteBuffers(1, &m.glEBO)
		m.glVAO, m.glVBO, m.glEBO = 0, 0, 0
	}
}

func (m *Mesh) Render() {
	m.useGL()
	if m.glVAO == 0 {
		return
	}
	gl.BindVertexArray(m.glVAO)
	gl.DrawElements(gl.TRIANGLES, m.indexesCount, gl.UNSIGNED_INT, unsafe.Pointer(nil))
	gl.BindVertexArray(0)
}
