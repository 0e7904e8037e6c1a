package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeEntity struct {
	teamID   string
	ownerID  string
	creator  string
	assignee string
}

func (e fakeEntity) EntityTeamID() string     { return e.teamID }
func (e fakeEntity) EntityOwnerID() string    { return e.ownerID }
func (e fakeEntity) EntityCreatorID() string  { return e.creator }
func (e fakeEntity) EntityAssigneeID() string { return e.assignee }

func TestLevelFor(t *testing.T) {
	admin := Subject{EmployeeID: "a1", Role: RoleAdmin}
	leader := Subject{EmployeeID: "l1", Role: RoleTeamLeader, TeamID: "T1"}
	member := Subject{EmployeeID: "m1", Role: "Sales Rep"}

	tests := []struct {
		name   string
		sub    Subject
		entity fakeEntity
		want   AccessLevel
	}{
		{"admin gets full on anything", admin, fakeEntity{teamID: "T9", ownerID: "x"}, LevelFull},
		{"leader on own team record", leader, fakeEntity{teamID: "T1", ownerID: "x"}, LevelTeam},
		{"leader on other team record", leader, fakeEntity{teamID: "T2", ownerID: "x"}, LevelNone},
		{"leader owns record outside team", leader, fakeEntity{teamID: "T2", ownerID: "l1"}, LevelOwn},
		{"leader created record outside team", leader, fakeEntity{teamID: "", creator: "l1"}, LevelOwn},
		{"member owns record", member, fakeEntity{ownerID: "m1"}, LevelOwn},
		{"member created record", member, fakeEntity{creator: "m1"}, LevelOwn},
		{"member assigned record", member, fakeEntity{assignee: "m1"}, LevelOwn},
		{"member unrelated record", member, fakeEntity{teamID: "T1", ownerID: "x", assignee: "y"}, LevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFor(tt.sub, tt.entity))
		})
	}
}

func TestCanEdit(t *testing.T) {
	member := Subject{EmployeeID: "m1", Role: "Sales Rep"}

	assert.True(t, CanEdit(member, fakeEntity{assignee: "m1"}))
	assert.False(t, CanEdit(member, fakeEntity{ownerID: "someone-else"}))
}

func TestCanReassign(t *testing.T) {
	admin := Subject{EmployeeID: "a1", Role: RoleAdmin}
	leader := Subject{EmployeeID: "l1", Role: RoleTeamLeader, TeamID: "T1"}
	member := Subject{EmployeeID: "m1", Role: "Sales Rep"}

	teamRecord := fakeEntity{teamID: "T1"}

	// Admins may move anything anywhere.
	assert.True(t, CanReassign(admin, fakeEntity{teamID: "T2"}, "T5"))

	// Leaders may move their team's records only within the team.
	assert.True(t, CanReassign(leader, teamRecord, "T1"))
	assert.False(t, CanReassign(leader, teamRecord, "T2"))
	assert.False(t, CanReassign(leader, fakeEntity{teamID: "T2"}, "T1"))

	// Own-level access never reassigns.
	assert.False(t, CanReassign(member, fakeEntity{assignee: "m1"}, "T1"))
}

func TestSetForIsDenyByDefault(t *testing.T) {
	var nilSet Set
	assert.Equal(t, Capabilities{}, nilSet.For(ModuleProspects))

	s := Set{ModuleProspects: {View: true, Edit: true}}
	assert.Equal(t, Capabilities{View: true, Edit: true}, s.For(ModuleProspects))
	assert.Equal(t, Capabilities{}, s.For(ModuleTeams))
}

func TestCapabilitiesVisible(t *testing.T) {
	assert.False(t, Capabilities{}.Visible())
	assert.True(t, Capabilities{Delete: true}.Visible())
	assert.True(t, Capabilities{View: true}.Visible())
}
