package prospect

import (
	"context"
	"testing"
	"time"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/activity"
	"nextgen-crm/internal/features/permission"
	"nextgen-crm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProspectService(t *testing.T) (ProspectService, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	activitySvc := activity.NewActivityService(s, zap.NewNop())
	return NewProspectService(NewProspectRepository(s), access.NewAccessRepository(s), activitySvc, zap.NewNop()), s
}

func fullCaps() permission.Set {
	return permission.Set{
		permission.ModuleProspects: {View: true, Add: true, Edit: true, Delete: true},
	}
}

func identity(employeeID, role, teamID string) *access.Identity {
	return &access.Identity{
		EmployeeID:  employeeID,
		Role:        role,
		TeamID:      teamID,
		Permissions: fullCaps(),
	}
}

func seed(t *testing.T, s store.Store, id string, p *Prospect) {
	t.Helper()
	data, err := store.Encode(p)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), Collection, id, data))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("fills defaults and ownership", func(t *testing.T) {
		svc, _ := newTestProspectService(t)
		actor := identity("e1", "Sales Rep", "T1")

		p, err := svc.Create(ctx, actor, &Prospect{Name: "Jane", Phone: "555"})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, StatusNew, p.Status)
		assert.Equal(t, "medium", p.InterestLevel)
		assert.Equal(t, "e1", p.OwnerID)
		assert.Equal(t, "e1", p.CreatedBy)
		assert.Equal(t, "e1", p.AssignedTo)
		assert.Equal(t, "T1", p.TeamID)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("validates required fields", func(t *testing.T) {
		svc, _ := newTestProspectService(t)
		actor := identity("e1", "Sales Rep", "")

		var vErr *errs.ValidationError
		_, err := svc.Create(ctx, actor, &Prospect{Phone: "555"})
		assert.ErrorAs(t, err, &vErr)

		_, err = svc.Create(ctx, actor, &Prospect{Name: "Jane"})
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("requires the add capability", func(t *testing.T) {
		svc, _ := newTestProspectService(t)
		actor := identity("e1", "Sales Rep", "")
		actor.Permissions = permission.Set{permission.ModuleProspects: {View: true}}

		var pErr *errs.PermissionError
		_, err := svc.Create(ctx, actor, &Prospect{Name: "Jane", Phone: "555"})
		assert.ErrorAs(t, err, &pErr)
	})
}

func TestUpdateGating(t *testing.T) {
	ctx := context.Background()

	record := &Prospect{
		Name: "Jane", Phone: "555",
		TeamID: "T1", OwnerID: "owner", CreatedBy: "owner", AssignedTo: "rep",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("assignee may edit their own record", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)

		err := svc.Update(ctx, identity("rep", "Sales Rep", ""), "p1", &Prospect{Name: "Jane 2", Phone: "555"})
		require.NoError(t, err)
	})

	t.Run("unrelated member is rejected despite edit capability", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)

		var pErr *errs.PermissionError
		err := svc.Update(ctx, identity("stranger", "Sales Rep", ""), "p1", &Prospect{Name: "X", Phone: "555"})
		assert.ErrorAs(t, err, &pErr)
	})

	t.Run("team leader edits records on their team only", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)

		require.NoError(t, svc.Update(ctx, identity("lead1", permission.RoleTeamLeader, "T1"), "p1", &Prospect{Name: "Jane 2", Phone: "555"}))

		var pErr *errs.PermissionError
		err := svc.Update(ctx, identity("lead2", permission.RoleTeamLeader, "T2"), "p1", &Prospect{Name: "X", Phone: "555"})
		assert.ErrorAs(t, err, &pErr)
	})

	t.Run("ownership fields survive an edit", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)

		require.NoError(t, svc.Update(ctx, identity("owner", "Sales Rep", ""), "p1", &Prospect{
			Name: "Jane 2", Phone: "555",
			OwnerID: "hijacker", CreatedBy: "hijacker",
		}))

		updated, err := svc.Find(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "owner", updated.OwnerID)
		assert.Equal(t, "owner", updated.CreatedBy)
		assert.Equal(t, record.CreatedAt, updated.CreatedAt.UTC())
	})
}

func TestReassign(t *testing.T) {
	ctx := context.Background()

	seedGrant := func(t *testing.T, s store.Store, id, employeeID, teamID string) {
		t.Helper()
		enabled := true
		data, err := store.Encode(&access.AccessGrant{
			EmployeeID: employeeID, HasCRMAccess: &enabled, Role: "Sales Rep", TeamID: teamID,
		})
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, access.CollectionGrants, id, data))
	}

	record := &Prospect{Name: "Jane", Phone: "555", TeamID: "T1", OwnerID: "owner", CreatedBy: "owner", AssignedTo: "rep"}

	t.Run("leader reassigns within their team", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)
		seedGrant(t, s, "g1", "rep2", "T1")

		require.NoError(t, svc.Reassign(ctx, identity("lead1", permission.RoleTeamLeader, "T1"), "p1", "rep2"))

		updated, err := svc.Find(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "rep2", updated.AssignedTo)
		assert.Equal(t, "T1", updated.TeamID)
	})

	t.Run("leader cannot reassign across teams", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)
		seedGrant(t, s, "g1", "outsider", "T2")

		var pErr *errs.PermissionError
		err := svc.Reassign(ctx, identity("lead1", permission.RoleTeamLeader, "T1"), "p1", "outsider")
		assert.ErrorAs(t, err, &pErr)
	})

	t.Run("admin reassigns anywhere and moves the team", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)
		seedGrant(t, s, "g1", "outsider", "T2")

		require.NoError(t, svc.Reassign(ctx, identity("admin", permission.RoleAdmin, ""), "p1", "outsider"))

		updated, err := svc.Find(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "outsider", updated.AssignedTo)
		assert.Equal(t, "T2", updated.TeamID)
	})

	t.Run("own-level access cannot reassign", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)
		seedGrant(t, s, "g1", "rep2", "T1")

		var pErr *errs.PermissionError
		err := svc.Reassign(ctx, identity("rep", "Sales Rep", ""), "p1", "rep2")
		assert.ErrorAs(t, err, &pErr)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	record := &Prospect{Name: "Jane", Phone: "555", TeamID: "T1", OwnerID: "owner", CreatedBy: "owner", AssignedTo: "rep"}

	t.Run("requires delete capability and entity access", func(t *testing.T) {
		svc, s := newTestProspectService(t)
		seed(t, s, "p1", record)

		var pErr *errs.PermissionError
		err := svc.Delete(ctx, identity("stranger", "Sales Rep", ""), "p1")
		assert.ErrorAs(t, err, &pErr)

		require.NoError(t, svc.Delete(ctx, identity("owner", "Sales Rep", ""), "p1"))
		gone, err := svc.Find(ctx, "p1")
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}
