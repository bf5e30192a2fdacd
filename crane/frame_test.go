package crane

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/crane/config"
	"github.com/mogaika/crane/physics"
	"github.com/mogaika/crane/resource"
)

var testSegment = resource.Segment{
	P0: mgl32.Vec3{0, 0, 0},
	P1: mgl32.Vec3{0, 1, 1},
	P2: mgl32.Vec3{0, 2, 1},
	P3: mgl32.Vec3{0, 3, 0},
}

func TestBaseDebugMatrixScenario(t *testing.T) {
	dims := config.DefaultDimensions()
	dims.BaseSize = mgl32.Vec3{2, 1, 3}

	c, err := New(newWorld(), dims, WithStartPosition(mgl32.Vec3{}))
	require.NoError(t, err)

	f := c.Derive(nil)
	want := mgl32.Diag4(mgl32.Vec4{2, 1, 3, 1})
	assertMatNear(t, want, f.Base, 1e-5, "%v", f.Base)
	assert.Equal(t, BodyMatrix(physics.IdentityTransform(), mgl32.Vec3{2, 1, 3}), f.Base)
}

func TestBodyMatrix(t *testing.T) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	tr := physics.NewTransform(mgl32.Vec3{1, 2, 3}, rot)

	m := BodyMatrix(tr, mgl32.Vec3{2, 1, 1})
	// local +x scaled by 2 and turned to -z, then moved
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assertVecNear(t, mgl32.Vec3{1, 2, 1}, p, 1e-5, "%v", p)
}

func TestPartMatrix(t *testing.T) {
	chassis := physics.NewTransform(mgl32.Vec3{1, 0, 0}, mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0}))
	cabin := physics.NewTransform(mgl32.Vec3{5, 5, 5}, mgl32.QuatRotate(1.2, mgl32.Vec3{0, 1, 0}))

	mount := PartMatrix(RoleChassisMount, chassis, cabin)
	assert.Equal(t, chassis.Mat4(), mount)

	for _, role := range []PartRole{RoleCabinFollower, RoleRightTrack, RoleLeftTrack, RoleOther} {
		m := PartMatrix(role, chassis, cabin)
		assert.Equal(t, physics.NewTransform(chassis.Origin, cabin.Rotation).Mat4(), m, "%v", role)
	}
}

func TestTrackLinkMatrixIsPure(t *testing.T) {
	crane := physics.NewTransform(mgl32.Vec3{3, 1, -2}, mgl32.QuatRotate(0.4, mgl32.Vec3{0, 1, 0})).Mat4()

	for _, rot := range []float32{0, 0.25, 0.9, 1.5, -3.2, 17} {
		a := TrackLinkMatrix(crane, testSegment, rot)
		b := TrackLinkMatrix(crane, testSegment, rot)
		assert.Equal(t, a, b, "rotation %v", rot)

		p := testSegment.Position(1 - rot)
		want := crane.Mul4(mgl32.Translate3D(p.X(), p.Y(), p.Z())).
			Mul4(mgl32.HomogRotate3DX(testSegment.Angle(1-rot) - mgl32.DegToRad(90)))
		assert.Equal(t, want, a)
	}

	// whole turns of the wheel put links back into the same place
	a := TrackLinkMatrix(crane, testSegment, 0.25)
	b := TrackLinkMatrix(crane, testSegment, 2.25)
	assertMatNear(t, b, a, 1e-4)
}

func TestWheelDebugMatrix(t *testing.T) {
	m := WheelDebugMatrix(physics.TranslationTransform(mgl32.Vec3{1, 2, 3}), 0.4)
	want := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(0.3, 0.4, 0.4))
	assertMatNear(t, want, m, 1e-5, "%v", m)
}

func TestRoleOf(t *testing.T) {
	for name, want := range map[string]PartRole{
		"Naped_Cylinder":                       RoleChassisMount,
		"GosienicePraweSzlak_BezierCircle.001": RoleRightTrack,
		"GasieniceLeweSzlak_BezierCircle":      RoleLeftTrack,
		"Kabina":                               RoleCabinFollower,
		"":                                     RoleCabinFollower,
	} {
		assert.Equal(t, want, RoleOf(name), name)
	}
	assert.True(t, RoleLeftTrack.IsTrack())
	assert.False(t, RoleChassisMount.IsTrack())
	assert.Equal(t, "right_track", RoleRightTrack.String())
}

func TestPartTableResolvesOnce(t *testing.T) {
	model := &resource.Model{Objects: []*resource.Object{{Name: "Naped_Cylinder"}, {Name: "Kabina"}}}

	var table partTable
	first := table.resolve(model)
	require.Equal(t, []PartRole{RoleChassisMount, RoleCabinFollower}, first)

	// renaming after resolve does not change roles of the same model
	model.Objects[1].Name = "GasieniceLeweSzlak_BezierCircle"
	second := table.resolve(model)
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, RoleCabinFollower, second[1])

	other := &resource.Model{Objects: []*resource.Object{{Name: "GasieniceLeweSzlak_BezierCircle"}}}
	assert.Equal(t, []PartRole{RoleLeftTrack}, table.resolve(other))
}

func testBodyModel() *resource.Model {
	return &resource.Model{
		Name: DefaultBodyModel,
		Objects: []*resource.Object{
			{Name: "Naped_Cylinder", Material: resource.DefaultMaterial()},
			{Name: "Kabina", Material: resource.Material{Diffuse: mgl32.Vec3{1, 0, 0}, Texture: "kabina"}},
			{Name: "GosienicePraweSzlak_BezierCircle.001", Segments: []resource.Segment{testSegment, testSegment}},
			{Name: "GasieniceLeweSzlak_BezierCircle", Segments: []resource.Segment{testSegment}},
		},
	}
}

func TestDerive(t *testing.T) {
	c, _ := newTestCrane(t)
	c.Vehicle().Wheel(RightTrackWheel).Rotation = 0.3
	c.Vehicle().Wheel(LeftTrackWheel).Rotation = -0.7

	model := testBodyModel()
	f := c.Derive(model)

	require.Len(t, f.Parts, 4)
	assert.Equal(t, RoleChassisMount, f.Parts[0].Role)
	assert.Equal(t, RoleCabinFollower, f.Parts[1].Role)
	assert.Len(t, f.Wheels, NumWheels)

	craneMatrix := CraneMatrix(c.Base().WorldTransform())
	require.Len(t, f.Links, 3)
	assert.Equal(t, RoleRightTrack, f.Links[0].Role)
	assert.Equal(t, 1, f.Links[1].Segment)
	assert.Equal(t, TrackLinkMatrix(craneMatrix, testSegment, 0.3), f.Links[0].Model)
	assert.Equal(t, RoleLeftTrack, f.Links[2].Role)
	assert.Equal(t, TrackLinkMatrix(craneMatrix, testSegment, -0.7), f.Links[2].Model)

	r := c.Dimensions().BallRadius * 2
	assert.Equal(t, BodyMatrix(c.Ball().WorldTransform(), mgl32.Vec3{r, r, r}), f.Ball)

	assert.Equal(t, f, c.Derive(model), "derive is repeatable")
}
