package crane

import (
	"github.com/mogaika/crane/resource"
)

// PartRole tells what drives transform of body model sub-object
type PartRole int

const (
	RoleOther PartRole = iota
	RoleCabinFollower
	RoleChassisMount
	RoleRightTrack
	RoleLeftTrack
)

func (r PartRole) String() string {
	switch r {
	case RoleCabinFollower:
		return "cabin_follower"
	case RoleChassisMount:
		return "chassis_mount"
	case RoleRightTrack:
		return "right_track"
	case RoleLeftTrack:
		return "left_track"
	default:
		return "other"
	}
}

func (r PartRole) IsTrack() bool { return r == RoleRightTrack || r == RoleLeftTrack }

var objectRoles = map[string]PartRole{
	"Naped_Cylinder":                       RoleChassisMount,
	"GosienicePraweSzlak_BezierCircle.001": RoleRightTrack,
	"GasieniceLeweSzlak_BezierCircle":      RoleLeftTrack,
}

// RoleOf resolves role of body model object by its name.
// Unknown names turn with the cabin.
func RoleOf(objectName string) PartRole {
	if r, ok := objectRoles[objectName]; ok {
		return r
	}
	return RoleCabinFollower
}

// partTable caches roles of objects of the last seen body model
type partTable struct {
	model *resource.Model
	roles []PartRole
}

func (t *partTable) resolve(model *resource.Model) []PartRole {
	if t.model == model && len(t.roles) == len(model.Objects) {
		return t.roles
	}
	roles := make([]PartRole, len(model.Objects))
	for i, o := range model.Objects {
		roles[i] = RoleOf(o.Name)
	}
	t.model = model
	t.roles = roles
	return roles
}
