package r3d

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/mogaika/crane/resource"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}

type modeBackend struct {
	mode    PolygonMode
	history []PolygonMode
}

func (b *modeBackend) UseProgram(resource.Program)      {}
func (b *modeBackend) UniformMatrix4(int32, mgl32.Mat4) {}
func (b *modeBackend) Uniform3(int32, mgl32.Vec3)       {}
func (b *modeBackend) PolygonMode() PolygonMode         { return b.mode }
func (b *modeBackend) SetPolygonMode(mode PolygonMode) {
	b.mode = mode
	b.history = append(b.history, mode)
}

func TestWithPolygonMode(t *testing.T) {
	b := &modeBackend{mode: PolygonFill}

	var inside PolygonMode
	assert.NoError(t, WithPolygonMode(b, PolygonLine, func() error {
		inside = b.mode
		return nil
	}))
	assert.Equal(t, PolygonLine, inside)
	assert.Equal(t, PolygonFill, b.mode)

	failure := errors.New("draw failed")
	assert.Equal(t, failure, WithPolygonMode(b, PolygonPoint, func() error { return failure }))
	assert.Equal(t, PolygonFill, b.mode)

	assert.Panics(t, func() {
		_ = WithPolygonMode(b, PolygonLine, func() error { panic("boom") })
	})
	assert.Equal(t, PolygonFill, b.mode)
	assert.Equal(t, []PolygonMode{
		PolygonLine, PolygonFill,
		PolygonPoint, PolygonFill,
		PolygonLine, PolygonFill,
	}, b.history)
}

func TestPolygonModeString(t *testing.T) {
	assert.Equal(t, "fill", PolygonFill.String())
	assert.Equal(t, "line", PolygonLine.String())
	assert.Equal(t, "point", PolygonPoint.String())
	assert.Equal(t, "unknown", PolygonMode(42).String())
}

func TestOrbitController(t *testing.T) {
	c := NewOrbitController(mgl32.Vec3{1, 0, 0}, 10, 0, 0)
	assertVecNear(t, mgl32.Vec3{1, 0, 10}, c.Position(), 1e-5)

	c.Rotate(90, 0)
	assertVecNear(t, mgl32.Vec3{11, 0, 0}, c.Position(), 1e-4)

	c.Rotate(300, 500)
	assert.InDelta(t, 30, c.Yaw, 1e-4)
	assert.Equal(t, float32(89), c.Pitch)
	c.Rotate(0, -1000)
	assert.Equal(t, float32(-89), c.Pitch)

	c.Zoom(0.1, 2, 50)
	assert.Equal(t, float32(2), c.Distance)
	c.Zoom(100, 2, 50)
	assert.Equal(t, float32(50), c.Distance)

	// view matrix maps target in front of the camera
	c = NewOrbitController(mgl32.Vec3{}, 5, 20, 45)
	p := c.GetViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, p.Z(), 1e-4)
}
