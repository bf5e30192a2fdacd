package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// same clamp bullet applies to combined friction of two touching bodies
const maxCombinedFriction = 10

func combinedFriction(a, b *RigidBody) float32 {
	return mgl32.Clamp(a.friction*b.friction, -maxCombinedFriction, maxCombinedFriction)
}

// pairFeature is a point of body a tested against volume of body b.
// Features are collected once per sub step and re-evaluated on every
// solver iteration, lambda sums positional impulse along normal.
type pairFeature struct {
	a, b   *RigidBody
	local  mgl32.Vec3 // corner of box a, or zero for sphere a
	sphere float32    // radius when a is sphere

	point    mgl32.Vec3 // world contact point on a
	normal   mgl32.Vec3 // pushes a out of b
	lambda   float32
	friction float32
}

func boundingRadius(s Shape) (float32, bool) {
	switch shape := s.(type) {
	case *BoxShape:
		return shape.HalfExtents.Len(), true
	case *SphereShape:
		return shape.Radius, true
	}
	return 0, false
}

// collisionsDisabled is true when some constraint links a and b with
// collisions between linked bodies turned off
func (w *World) collisionsDisabled(a, b *RigidBody) bool {
	for _, c := range w.constraints {
		ca, cb := c.Bodies()
		if (ca != a || cb != b) && (ca != b || cb != a) {
			continue
		}
		if dc, ok := c.(interface{ CollisionsBetweenLinkedDisabled() bool }); ok && dc.CollisionsBetweenLinkedDisabled() {
			return true
		}
	}
	return false
}

func (w *World) collectPairFeatures() {
	w.features = w.features[:0]
	for i, a := range w.bodies {
		if a == nil {
			continue
		}
		ra, ok := boundingRadius(a.shape)
		if !ok {
			continue
		}
		for _, b := range w.bodies[i+1:] {
			if b == nil || (!w.simulated(a) && !w.simulated(b)) {
				continue
			}
			rb, ok := boundingRadius(b.shape)
			if !ok {
				continue
			}
			// bodies may move inside sub step, keep some margin
			margin := a.linearVelocity.Sub(b.linearVelocity).Len()*0.1 + 0.1
			if a.transform.Origin.Sub(b.transform.Origin).Len() > ra+rb+margin {
				continue
			}
			if w.collisionsDisabled(a, b) {
				continue
			}
			w.addFeatures(a, b)
			w.addFeatures(b, a)
		}
	}
}

func (w *World) addFeatures(a, b *RigidBody) {
	friction := combinedFriction(a, b)
	switch shape := a.shape.(type) {
	case *BoxShape:
		for _, corner := range shape.Corners() {
			w.features = append(w.features, pairFeature{a: a, b: b, local: corner, friction: friction})
		}
	case *SphereShape:
		if _, ok := b.shape.(*SphereShape); ok && a.index > b.index {
			// sphere pair needs only one feature
			return
		}
		w.features = append(w.features, pairFeature{a: a, b: b, sphere: shape.Radius, friction: friction})
	}
}

// evaluate fills contact point and normal, returns penetration depth.
// Point and normal of the last penetration are kept once separated.
func (f *pairFeature) evaluate() float32 {
	ta, tb := f.a.transform, f.b.transform

	if f.sphere == 0 {
		// box corner of a inside b
		p := ta.Apply(f.local)
		var depth float32
		var n mgl32.Vec3
		switch shape := f.b.shape.(type) {
		case *BoxShape:
			var ok bool
			if depth, n, ok = pointInBox(tb, shape, p); !ok {
				return 0
			}
		case *SphereShape:
			d := p.Sub(tb.Origin)
			dist := d.Len()
			if dist >= shape.Radius || dist < 1e-7 {
				return 0
			}
			depth, n = shape.Radius-dist, d.Mul(1/dist)
		default:
			return 0
		}
		f.point, f.normal = p, n
		return depth
	}

	c := ta.Origin
	switch shape := f.b.shape.(type) {
	case *SphereShape:
		d := c.Sub(tb.Origin)
		dist := d.Len()
		if dist >= f.sphere+shape.Radius || dist < 1e-7 {
			return 0
		}
		n := d.Mul(1 / dist)
		f.point, f.normal = c.Sub(n.Mul(f.sphere)), n
		return f.sphere + shape.Radius - dist
	case *BoxShape:
		inv := tb.Inverse()
		lc := inv.Apply(c)
		h := shape.HalfExtents
		var closest mgl32.Vec3
		inside := true
		for i := range closest {
			closest[i] = mgl32.Clamp(lc[i], -h[i], h[i])
			if closest[i] != lc[i] {
				inside = false
			}
		}
		if inside {
			depth, n, ok := pointInBox(tb, shape, c)
			if !ok {
				// center right on the surface
				return 0
			}
			f.point, f.normal = c.Sub(n.Mul(f.sphere)), n
			return depth + f.sphere
		}
		d := lc.Sub(closest)
		dist := d.Len()
		if dist >= f.sphere {
			return 0
		}
		n := tb.ApplyRotation(d.Mul(1 / dist))
		f.point, f.normal = c.Sub(n.Mul(f.sphere)), n
		return f.sphere - dist
	}
	return 0
}

// pointInBox returns depth of world point p inside box and outward normal
// of the nearest face
func pointInBox(tr Transform, box *BoxShape, p mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	lp := tr.Inverse().Apply(p)
	h := box.HalfExtents
	best := float32(math.Inf(1))
	var axis int
	for i := 0; i < 3; i++ {
		d := h[i] - float32(math.Abs(float64(lp[i])))
		if d <= 0 {
			return 0, mgl32.Vec3{}, false
		}
		if d < best {
			best, axis = d, i
		}
	}
	var n mgl32.Vec3
	n[axis] = 1
	if lp[axis] < 0 {
		n[axis] = -1
	}
	return best, tr.ApplyRotation(n), true
}

func (w *World) pairInverseMass(b *RigidBody, r, n mgl32.Vec3) float32 {
	if !w.simulated(b) {
		return 0
	}
	return b.generalizedInverseMass(r, n)
}

func (w *World) solvePairContacts() {
	for i := range w.features {
		f := &w.features[i]
		depth := f.evaluate()
		if depth <= 0 {
			continue
		}
		ra := f.point.Sub(f.a.transform.Origin)
		rb := f.point.Sub(f.b.transform.Origin)
		wsum := w.pairInverseMass(f.a, ra, f.normal) + w.pairInverseMass(f.b, rb, f.normal)
		if wsum == 0 {
			continue
		}
		p := f.normal.Mul(depth / wsum)
		if w.simulated(f.a) {
			f.a.applyPositionCorrection(p, ra)
		}
		if w.simulated(f.b) {
			f.b.applyPositionCorrection(p.Mul(-1), rb)
		}
		f.lambda += depth / wsum

		if depth > wakeCorrectionThreshold {
			f.a.Activate()
			f.b.Activate()
		}
	}
}

// applyPairFriction limits tangential impulse by friction times normal
// impulse gathered while solving positions
func (w *World) applyPairFriction(dt float32) {
	for i := range w.features {
		f := &w.features[i]
		if f.lambda == 0 {
			continue
		}
		ra := f.point.Sub(f.a.transform.Origin)
		rb := f.point.Sub(f.b.transform.Origin)
		var va, vb mgl32.Vec3
		if w.simulated(f.a) {
			va = f.a.VelocityInLocalPoint(ra)
		}
		if w.simulated(f.b) {
			vb = f.b.VelocityInLocalPoint(rb)
		}
		v := va.Sub(vb)
		vt := v.Sub(f.normal.Mul(f.normal.Dot(v)))
		speed := vt.Len()
		if speed < 1e-6 {
			continue
		}
		t := vt.Mul(1 / speed)
		denom := w.pairInverseMass(f.a, ra, t) + w.pairInverseMass(f.b, rb, t)
		if denom == 0 {
			continue
		}
		impulse := speed / denom
		if limit := f.friction * f.lambda / dt; impulse > limit {
			impulse = limit
		}
		if w.simulated(f.a) {
			f.a.ApplyImpulse(t.Mul(-impulse), ra)
		}
		if w.simulated(f.b) {
			f.b.ApplyImpulse(t.Mul(impulse), rb)
		}
	}
}

// Contacts returns bodies that pushed against a during the last step
func (w *World) Contacts(a *RigidBody) []*RigidBody {
	var out []*RigidBody
	seen := map[*RigidBody]bool{}
	add := func(b *RigidBody) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	for _, f := range w.features {
		if f.lambda == 0 {
			continue
		}
		if f.a == a {
			add(f.b)
		} else if f.b == a {
			add(f.a)
		}
	}
	for _, ct := range w.contacts {
		if ct.body == a {
			add(ct.other)
		}
	}
	return out
}
