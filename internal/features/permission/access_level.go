package permission

// AccessLevel is the entity-scoped authorization outcome, distinct from
// module-level capabilities.
type AccessLevel int

const (
	LevelNone AccessLevel = iota
	LevelOwn
	LevelTeam
	LevelFull
)

func (l AccessLevel) String() string {
	switch l {
	case LevelFull:
		return "full"
	case LevelTeam:
		return "team"
	case LevelOwn:
		return "own"
	default:
		return "none"
	}
}

// Subject is the acting user as seen by authorization checks.
type Subject struct {
	EmployeeID string
	Role       string
	TeamID     string
}

// Entity is any record carrying team/ownership fields.
type Entity interface {
	EntityTeamID() string
	EntityOwnerID() string
	EntityCreatorID() string
	EntityAssigneeID() string
}

// LevelFor resolves the subject's access level on an entity. This is
// the single implementation used by both the row-render path (which
// buttons to show) and the action-handler path (whether to execute);
// the two must never diverge.
func LevelFor(sub Subject, e Entity) AccessLevel {
	if IsAdmin(sub.Role) {
		return LevelFull
	}

	owns := sub.EmployeeID != "" &&
		(e.EntityOwnerID() == sub.EmployeeID || e.EntityCreatorID() == sub.EmployeeID)

	if IsTeamLeader(sub.Role) {
		if sub.TeamID != "" && e.EntityTeamID() == sub.TeamID {
			return LevelTeam
		}
		if owns {
			return LevelOwn
		}
		return LevelNone
	}

	if owns || (sub.EmployeeID != "" && e.EntityAssigneeID() == sub.EmployeeID) {
		return LevelOwn
	}
	return LevelNone
}

// CanEdit reports whether the subject may modify the entity at all.
func CanEdit(sub Subject, e Entity) bool {
	return LevelFor(sub, e) != LevelNone
}

// CanReassign reports whether the subject may move the entity to a user
// on targetTeamID. Full access always may; team access only within the
// subject's own team.
func CanReassign(sub Subject, e Entity, targetTeamID string) bool {
	switch LevelFor(sub, e) {
	case LevelFull:
		return true
	case LevelTeam:
		return targetTeamID == sub.TeamID
	default:
		return false
	}
}
