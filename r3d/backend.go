package r3d

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/crane/resource"
)

type PolygonMode uint32

const (
	PolygonFill PolygonMode = iota
	PolygonLine
	PolygonPoint
)

func (m PolygonMode) String() string {
	switch m {
	case PolygonFill:
		return "fill"
	case PolygonLine:
		return "line"
	case PolygonPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Backend is the part of graphics api used by object renderers
type Backend interface {
	UseProgram(p resource.Program)
	UniformMatrix4(location int32, m mgl32.Mat4)
	Uniform3(location int32, v mgl32.Vec3)
	PolygonMode() PolygonMode
	SetPolygonMode(mode PolygonMode)
}

// WithPolygonMode runs fn with polygon mode switched and restores
// previous mode on every return path, panics included.
func WithPolygonMode(b Backend, mode PolygonMode, fn func() error) error {
	prev := b.PolygonMode()
	b.SetPolygonMode(mode)
	defer b.SetPolygonMode(prev)
	return fn()
}
