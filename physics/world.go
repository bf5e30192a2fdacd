package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var (
	ErrWorldDestroyed = errors.New("physics world destroyed")
	ErrBodyNotInWorld = errors.New("constraint body is not part of the world")
)

const defaultSolverIterations = 10

// World owns bodies, constraints and vehicles.
// It is not safe for concurrent use: step and read on the same goroutine.
type World struct {
	Gravity          mgl32.Vec3
	SolverIterations int

	bodies      []*RigidBody
	constraints []Constraint
	vehicles    []*RaycastVehicle
	contacts    []contact
	features    []pairFeature

	localTime float32
	destroyed bool
}

type contact struct {
	body     *RigidBody
	other    *RigidBody
	point    mgl32.Vec3
	normal   mgl32.Vec3
	friction float32
}

func NewWorld(gravity mgl32.Vec3) *World {
	return &World{
		Gravity:          gravity,
		SolverIterations: defaultSolverIterations,
	}
}

// BodyHandle is non owning reference to body living in world.
// It cannot be dereferenced after world was destroyed or body was removed.
type BodyHandle struct {
	world *World
	index int
	body  *RigidBody
}

func (h BodyHandle) Valid() bool {
	return h.world != nil && !h.world.destroyed &&
		h.index < len(h.world.bodies) && h.world.bodies[h.index] == h.body && h.body != nil
}

func (h BodyHandle) Get() *RigidBody {
	if h.world == nil {
		panic("physics: nil body handle")
	}
	if h.world.destroyed {
		panic(ErrWorldDestroyed)
	}
	if !h.Valid() {
		panic("physics: body was removed from world")
	}
	return h.body
}

func (h BodyHandle) WorldTransform() Transform {
	return h.Get().WorldTransform()
}

func (w *World) checkAlive() {
	if w.destroyed {
		panic(ErrWorldDestroyed)
	}
}

func (w *World) AddRigidBody(b *RigidBody) BodyHandle {
	w.checkAlive()
	if b.world != nil {
		panic("physics: body already added to world")
	}
	b.world = w
	b.index = len(w.bodies)
	w.bodies = append(w.bodies, b)
	return BodyHandle{world: w, index: b.index, body: b}
}

// RemoveRigidBody drops body together with constraints referencing it
func (w *World) RemoveRigidBody(h BodyHandle) {
	w.checkAlive()
	b := h.Get()

	constraints := w.constraints[:0]
	for _, c := range w.constraints {
		ca, cb := c.Bodies()
		if ca != b && cb != b {
			constraints = append(constraints, c)
		}
	}
	w.constraints = constraints

	w.features = w.features[:0]
	w.bodies[b.index] = nil
	b.world = nil
	b.index = -1
}

func (w *World) NumBodies() int {
	n := 0
	for _, b := range w.bodies {
		if b != nil {
			n++
		}
	}
	return n
}

func (w *World) Bodies() []BodyHandle {
	handles := make([]BodyHandle, 0, len(w.bodies))
	for i, b := range w.bodies {
		if b != nil {
			handles = append(handles, BodyHandle{world: w, index: i, body: b})
		}
	}
	return handles
}

func (w *World) AddConstraint(c Constraint, disableCollisionsBetweenLinkedBodies bool) error {
	w.checkAlive()
	a, b := c.Bodies()
	if a == nil || b == nil {
		return errors.Wrapf(ErrBodyNotInWorld, "%v constraint has nil body", c.Type())
	}
	if a.world != w || b.world != w {
		return errors.Wrapf(ErrBodyNotInWorld, "%v constraint", c.Type())
	}
	if dc, ok := c.(interface{ setDisableCollisions(bool) }); ok {
		dc.setDisableCollisions(disableCollisionsBetweenLinkedBodies)
	}
	w.constraints = append(w.constraints, c)
	return nil
}

func (w *World) RemoveConstraint(c Constraint) {
	for i, wc := range w.constraints {
		if wc == c {
			w.constraints = append(w.constraints[:i], w.constraints[i+1:]...)
			return
		}
	}
}

func (w *World) Constraints() []Constraint { return w.constraints }
func (w *World) NumConstraints() int       { return len(w.constraints) }

func (w *World) AddVehicle(v *RaycastVehicle) error {
	w.checkAlive()
	if !v.chassis.Valid() || v.chassis.world != w {
		return errors.Wrap(ErrBodyNotInWorld, "vehicle chassis")
	}
	w.vehicles = append(w.vehicles, v)
	return nil
}

func (w *World) RemoveVehicle(v *RaycastVehicle) {
	for i, wv := range w.vehicles {
		if wv == v {
			w.vehicles = append(w.vehicles[:i], w.vehicles[i+1:]...)
			return
		}
	}
}

func (w *World) Vehicles() []*RaycastVehicle { return w.vehicles }

// Destroy invalidates every handle issued by this world
func (w *World) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	for _, b := range w.bodies {
		if b != nil {
			b.world = nil
			b.index = -1
		}
	}
	w.bodies = nil
	w.constraints = nil
	w.vehicles = nil
	w.contacts = nil
	w.features = nil
}

func (w *World) Destroyed() bool { return w.destroyed }

// StepSimulation advances world by timeStep using fixed sub steps.
// Leftover time is accumulated for the next call. Returns sub steps performed.
func (w *World) StepSimulation(timeStep float32, maxSubSteps int, fixedTimeStep float32) int {
	w.checkAlive()
	if fixedTimeStep <= 0 {
		fixedTimeStep = 1.0 / 60.0
	}
	if maxSubSteps <= 0 {
		// variable step
		if timeStep <= 0 {
			return 0
		}
		w.internalSingleStep(timeStep)
		return 1
	}

	w.localTime += timeStep
	steps := int(w.localTime / fixedTimeStep)
	w.localTime -= float32(steps) * fixedTimeStep
	if steps > maxSubSteps {
		steps = maxSubSteps
	}
	for i := 0; i < steps; i++ {
		w.internalSingleStep(fixedTimeStep)
	}
	return steps
}

func (w *World) simulated(b *RigidBody) bool {
	return b != nil && !b.IsStatic() && b.IsActive()
}

func (w *World) internalSingleStep(dt float32) {
	for _, v := range w.vehicles {
		v.UpdateVehicle(dt)
	}

	for _, b := range w.bodies {
		if w.simulated(b) {
			b.integrateVelocities(w.Gravity, dt)
			b.predictTransform(dt)
		} else if b != nil {
			b.prevTransform = b.transform
		}
	}

	w.collectPairFeatures()
	for it := 0; it < w.SolverIterations; it++ {
		for _, c := range w.constraints {
			c.solve()
		}
		w.contacts = w.contacts[:0]
		w.solvePlaneContacts()
		w.solvePairContacts()
	}

	for _, b := range w.bodies {
		if w.simulated(b) {
			b.deriveVelocities(dt)
		}
	}
	w.applyContactFriction(dt)
	w.applyPairFriction(dt)

	for _, b := range w.bodies {
		if w.simulated(b) {
			b.updateDeactivation(dt)
		}
	}

	for _, v := range w.vehicles {
		v.updateWheelTransforms()
	}
}

func (w *World) staticPlanes(yield func(body *RigidBody, normal mgl32.Vec3, constant float32)) {
	for _, b := range w.bodies {
		if b == nil || !b.IsStatic() {
			continue
		}
		if plane, ok := b.shape.(*StaticPlaneShape); ok {
			n := b.transform.ApplyRotation(plane.Normal)
			yield(b, n, plane.Constant+n.Dot(b.transform.Origin))
		}
	}
}

func (w *World) solvePlaneContacts() {
	w.staticPlanes(func(plane *RigidBody, n mgl32.Vec3, c float32) {
		for _, b := range w.bodies {
			if !w.simulated(b) {
				continue
			}
			switch shape := b.shape.(type) {
			case *SphereShape:
				p := b.transform.Origin.Sub(n.Mul(shape.Radius))
				w.resolvePlanePoint(b, plane, p, n, c)
			case *BoxShape:
				for _, corner := range shape.Corners() {
					w.resolvePlanePoint(b, plane, b.transform.Apply(corner), n, c)
				}
			}
		}
	})
}

func (w *World) resolvePlanePoint(b, plane *RigidBody, p, n mgl32.Vec3, c float32) {
	depth := c - n.Dot(p)
	if depth <= 0 {
		return
	}
	r := p.Sub(b.transform.Origin)
	wb := b.generalizedInverseMass(r, n)
	if wb == 0 {
		return
	}
	b.applyPositionCorrection(n.Mul(depth/wb), r)
	w.contacts = append(w.contacts, contact{
		body:     b,
		other:    plane,
		point:    p,
		normal:   n,
		friction: combinedFriction(b, plane),
	})
}

// applyContactFriction removes tangential velocity of touching points
// proportionally to combined friction, without reversing direction.
func (w *World) applyContactFriction(dt float32) {
	for _, ct := range w.contacts {
		b := ct.body
		r := ct.point.Sub(b.transform.Origin)
		v := b.VelocityInLocalPoint(r)
		vn := ct.normal.Dot(v)
		vt := v.Sub(ct.normal.Mul(vn))
		speed := vt.Len()
		if speed < 1e-6 {
			continue
		}
		t := vt.Mul(1 / speed)
		denom := b.generalizedInverseMass(r, t)
		if denom == 0 {
			continue
		}
		// normal impulse is approximated by weight share pushed into plane this step
		maxImpulse := ct.friction * float32(math.Abs(float64(w.Gravity.Dot(ct.normal)))) * dt / b.invMass
		impulse := speed / denom
		if impulse > maxImpulse {
			impulse = maxImpulse
		}
		b.ApplyImpulse(t.Mul(-impulse), r)
	}
}

type RayResult struct {
	Body     *RigidBody
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Fraction float32
}

// RayTest returns closest hit of segment from->to. Bodies that contain
// the ray origin and bodies listed in ignore are skipped.
func (w *World) RayTest(from, to mgl32.Vec3, ignore ...*RigidBody) (RayResult, bool) {
	w.checkAlive()
	dir := to.Sub(from)
	best := RayResult{Fraction: 1}
	found := false

next:
	for _, b := range w.bodies {
		if b == nil {
			continue
		}
		for _, ib := range ignore {
			if ib == b {
				continue next
			}
		}
		t, n, ok := rayShape(b, from, dir)
		if !ok || t < 0 || t > best.Fraction {
			continue
		}
		best = RayResult{
			Body:     b,
			Point:    from.Add(dir.Mul(t)),
			Normal:   n,
			Fraction: t,
		}
		found = true
	}
	return best, found
}

func rayShape(b *RigidBody, from, dir mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	tr := b.transform
	switch shape := b.shape.(type) {
	case *StaticPlaneShape:
		n := tr.ApplyRotation(shape.Normal)
		c := shape.Constant + n.Dot(tr.Origin)
		start := n.Dot(from) - c
		denom := n.Dot(dir)
		if start < 0 || denom >= 0 {
			return 0, n, false
		}
		return -start / denom, n, true
	case *SphereShape:
		oc := from.Sub(tr.Origin)
		a := dir.Dot(dir)
		half := oc.Dot(dir)
		cc := oc.Dot(oc) - shape.Radius*shape.Radius
		if cc < 0 || a == 0 {
			return 0, mgl32.Vec3{}, false
		}
		disc := half*half - a*cc
		if disc < 0 {
			return 0, mgl32.Vec3{}, false
		}
		t := (-half - float32(math.Sqrt(float64(disc)))) / a
		return t, from.Add(dir.Mul(t)).Sub(tr.Origin).Normalize(), true
	case *BoxShape:
		inv := tr.Inverse()
		lf := inv.Apply(from)
		ld := inv.ApplyRotation(dir)
		tNear, tFar := float32(math.Inf(-1)), float32(math.Inf(1))
		var axis int
		var sign float32
		for i := 0; i < 3; i++ {
			h := shape.HalfExtents[i]
			if ld[i] == 0 {
				if lf[i] < -h || lf[i] > h {
					return 0, mgl32.Vec3{}, false
				}
				continue
			}
			t1 := (-h - lf[i]) / ld[i]
			t2 := (h - lf[i]) / ld[i]
			s := float32(-1)
			if t1 > t2 {
				t1, t2 = t2, t1
				s = 1
			}
			if t1 > tNear {
				tNear, axis, sign = t1, i, s
			}
			if t2 < tFar {
				tFar = t2
			}
		}
		if tNear > tFar || tNear < 0 {
			return 0, mgl32.Vec3{}, false
		}
		var n mgl32.Vec3
		n[axis] = sign
		return tNear, tr.ApplyRotation(n), true
	}
	return 0, mgl32.Vec3{}, false
}
