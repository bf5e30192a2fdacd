package main

import (
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/crane/config"
	"github.com/mogaika/crane/crane"
	"github.com/mogaika/crane/r3d"
	"github.com/mogaika/crane/r3d/glbackend"
	"github.com/mogaika/crane/rendercontext"
	"github.com/mogaika/crane/telemetry"
	"github.com/mogaika/crane/utils"
)

const telemetryPeriod = 0.1 // seconds

var clearColor = [3]float32{0.15, 0.15, 0.15}

type app struct {
	cfg       config.Config
	scene     *crane.Scene
	resources *glbackend.Manager
	backend   glbackend.Backend
	window    *glfw.Window
	server    *telemetry.Server

	camera *r3d.OrbitController
	shader string
	debug  bool

	dragging       bool
	lastX, lastY   float64
	lightAngle     float32
	sincePublished float64
	lastError      string
}

func newApp(cfg config.Config, scene *crane.Scene, resources *glbackend.Manager,
	window *glfw.Window, server *telemetry.Server) *app {
	a := &app{
		cfg:       cfg,
		scene:     scene,
		resources: resources,
		window:    window,
		server:    server,
		camera:    r3d.NewOrbitController(scene.Crane.StartPosition(), 15, 25, 135),
		shader:    cfg.Assets.Shader,
		debug:     cfg.Debug,
	}
	if resources.Program(a.shader) == nil {
		log.Printf("[crane] Using embedded shader instead of %q", a.shader)
		a.shader = glbackend.DefaultProgramName
	}

	window.SetKeyCallback(a.onKey)
	window.SetMouseButtonCallback(a.onMouseButton)
	window.SetCursorPosCallback(a.onCursor)
	window.SetScrollCallback(a.onScroll)
	window.SetFocusCallback(a.onFocus)
	return a
}

func (a *app) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyF1:
		a.debug = !a.debug
		log.Printf("[crane] Physics debug: %v", a.debug)
	case glfw.KeyF2:
		utils.LogDump(a.scene.Crane.Snapshot())
	case glfw.KeyP:
		a.setPaused(!a.scene.Paused())
	}
}

func (a *app) onFocus(w *glfw.Window, focused bool) {
	if !focused && !a.scene.Paused() {
		a.setPaused(true)
	}
}

func (a *app) setPaused(paused bool) {
	a.scene.SetPaused(paused)
	log.Printf("[crane] Paused: %v", paused)
}

func (a *app) onMouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button == glfw.MouseButtonRight {
		a.dragging = action == glfw.Press
		a.lastX, a.lastY = w.GetCursorPos()
	}
}

func (a *app) onCursor(w *glfw.Window, x, y float64) {
	if a.dragging {
		a.camera.Rotate(float32(a.lastX-x)*0.3, float32(y-a.lastY)*0.3)
	}
	a.lastX, a.lastY = x, y
}

func (a *app) onScroll(w *glfw.Window, xoff, yoff float64) {
	a.camera.Zoom(1-float32(yoff)*0.1, 3, 100)
}

func (a *app) axis(positive, negative glfw.Key, alt ...glfw.Key) float32 {
	var v float32
	if a.window.GetKey(positive) == glfw.Press {
		v++
	}
	if a.window.GetKey(negative) == glfw.Press {
		v--
	}
	if len(alt) == 2 {
		if a.window.GetKey(alt[0]) == glfw.Press {
			v++
		}
		if a.window.GetKey(alt[1]) == glfw.Press {
			v--
		}
	}
	return mgl32.Clamp(v, -1, 1)
}

func (a *app) input() {
	throttle := a.axis(glfw.KeyUp, glfw.KeyDown, glfw.KeyW, glfw.KeyS)
	turn := a.axis(glfw.KeyRight, glfw.KeyLeft, glfw.KeyD, glfw.KeyA)
	a.scene.Crane.Control(throttle, turn, a.window.GetKey(glfw.KeySpace) == glfw.Press)
}

func (a *app) render() {
	width, height := a.window.GetFramebufferSize()
	if width == 0 || height == 0 {
		return
	}
	a.backend.BeginFrame(int32(width), int32(height), clearColor)

	program := a.resources.Program(a.shader)
	if program == nil {
		return
	}

	a.camera.Target = a.scene.Crane.Base().WorldTransform().Origin
	projection := mgl32.Perspective(mgl32.DegToRad(60), float32(width)/float32(height), 0.1, 500)
	light := mgl32.Rotate3DY(a.lightAngle).Mul3x1(mgl32.Vec3{20, 30, 0})

	a.backend.UseProgram(program)
	a.backend.UniformMatrix4(program.Uniform("projectView"), projection.Mul4(a.camera.GetViewMatrix()))
	a.backend.Uniform3(program.Uniform("lightPosition"), light)
	a.backend.Uniform3(program.Uniform("cameraPosition"), a.camera.Position())

	if err := a.scene.Crane.Render(a.resources, a.backend, a.shader, a.debug); err != nil {
		if err.Error() != a.lastError {
			log.Printf("[crane] Render failed: %v", err)
			a.lastError = err.Error()
		}
	} else {
		a.lastError = ""
	}
	rendercontext.Swap()
}

func (a *app) publish(dt float64) {
	if a.server == nil {
		return
	}
	a.sincePublished += dt
	if a.sincePublished < telemetryPeriod {
		return
	}
	a.sincePublished = 0
	if err := a.server.Publish(a.scene.Crane.Snapshot()); err != nil {
		log.Printf("[telemetry] %v", err)
	}
}

func (a *app) run() {
	last := glfw.GetTime()
	for !a.window.ShouldClose() {
		glfw.PollEvents()

		now := glfw.GetTime()
		dt := now - last
		last = now

		a.input()
		a.scene.Step(float32(dt))
		a.lightAngle += float32(dt) * 0.2

		a.render()
		a.publish(dt)

		a.window.SwapBuffers()
	}
}
