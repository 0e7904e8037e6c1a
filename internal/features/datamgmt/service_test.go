package datamgmt

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/config"
	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/activity"
	"nextgen-crm/internal/features/lead"
	"nextgen-crm/internal/features/permission"
	"nextgen-crm/internal/features/prospect"
	"nextgen-crm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (DataService, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	cfg := &config.Config{BatchLimit: 400}
	return NewDataService(s, activity.NewActivityService(s, zap.NewNop()), cfg, zap.NewNop()), s
}

func dataAdmin() *access.Identity {
	return &access.Identity{
		EmployeeID: "e1",
		Role:       permission.RoleAdmin,
		TeamID:     "T1",
		Permissions: permission.Set{
			permission.ModuleData: {View: true, Add: true, Edit: true, Delete: true},
		},
	}
}

func seedProspect(t *testing.T, s store.Store, id string, p *prospect.Prospect) {
	t.Helper()
	data, err := store.Encode(p)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), prospect.Collection, id, data))
}

func TestImportProspectsCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults and writes rows", func(t *testing.T) {
		svc, s := newTestService(t)

		imported, err := svc.ImportProspectsCSV(ctx, dataAdmin(), strings.NewReader(
			"Name,Phone,Email,Interest,Location\nJane,555-1234,,high,Austin\nBob,555-9999,,,\n"))
		require.NoError(t, err)
		assert.Equal(t, 2, imported)

		docs, err := s.Get(ctx, store.Query{Collection: prospect.Collection})
		require.NoError(t, err)
		prospects := prospect.DecodeAll(docs)
		require.Len(t, prospects, 2)

		byName := map[string]prospect.Prospect{}
		for _, p := range prospects {
			byName[p.Name] = p
		}
		jane := byName["Jane"]
		assert.Equal(t, prospect.StatusNew, jane.Status)
		assert.Equal(t, "high", jane.InterestLevel)
		assert.Equal(t, "Austin", jane.Location)
		assert.Equal(t, "", jane.Email)
		assert.Equal(t, "e1", jane.AssignedTo)

		bob := byName["Bob"]
		assert.Equal(t, "medium", bob.InterestLevel)
		assert.Equal(t, "Unknown", bob.Location)
	})

	t.Run("format error writes nothing", func(t *testing.T) {
		svc, s := newTestService(t)

		_, err := svc.ImportProspectsCSV(ctx, dataAdmin(), strings.NewReader("Phone\n555\n"))
		var fErr *errs.ImportFormatError
		require.ErrorAs(t, err, &fErr)

		docs, err := s.Get(ctx, store.Query{Collection: prospect.Collection})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("requires the add capability", func(t *testing.T) {
		svc, _ := newTestService(t)
		viewer := dataAdmin()
		viewer.Permissions = permission.Set{permission.ModuleData: {View: true}}

		_, err := svc.ImportProspectsCSV(ctx, viewer, strings.NewReader("Name,Phone\nJane,1\n"))
		var pErr *errs.PermissionError
		assert.ErrorAs(t, err, &pErr)
	})
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t)
	actor := dataAdmin()

	seedProspect(t, s, "p1", &prospect.Prospect{Name: "Jane", Phone: "1"})
	leadData, err := store.Encode(&lead.Lead{Name: "Lead One", Phone: "2"})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, lead.Collection, "l1", leadData))

	backup, err := svc.CreateBackup(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "1.0", backup.Version)
	assert.False(t, backup.Timestamp.IsZero())
	require.Len(t, backup.Data.Prospects, 1)
	require.Len(t, backup.Data.Leads, 1)

	raw, err := json.Marshal(backup)
	require.NoError(t, err)

	// Dirty the store, then restore: the backup fully replaces it.
	seedProspect(t, s, "p2", &prospect.Prospect{Name: "Interloper", Phone: "3"})

	require.NoError(t, svc.RestoreBackup(ctx, actor, raw))

	docs, err := s.Get(ctx, store.Query{Collection: prospect.Collection})
	require.NoError(t, err)
	prospects := prospect.DecodeAll(docs)
	require.Len(t, prospects, 1)
	assert.Equal(t, "Jane", prospects[0].Name)
	assert.Equal(t, "p1", prospects[0].ID) // id preserved

	leadDocs, err := s.Get(ctx, store.Query{Collection: lead.Collection})
	require.NoError(t, err)
	assert.Len(t, leadDocs, 1)
}

func TestRestoreBackupValidation(t *testing.T) {
	ctx := context.Background()
	actor := dataAdmin()

	t.Run("rejects payload without data key", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.RestoreBackup(ctx, actor, []byte(`{"version":"1.0"}`))
		var fErr *errs.ImportFormatError
		require.ErrorAs(t, err, &fErr)
	})

	t.Run("rejects non-JSON payload", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.RestoreBackup(ctx, actor, []byte("not json"))
		var fErr *errs.ImportFormatError
		require.ErrorAs(t, err, &fErr)
	})

	t.Run("accepts legacy joinRequests key", func(t *testing.T) {
		svc, s := newTestService(t)
		err := svc.RestoreBackup(ctx, actor, []byte(
			`{"version":"1.0","data":{"prospects":[],"joinRequests":[{"name":"Legacy","phone":"5"}]}}`))
		require.NoError(t, err)

		docs, err := s.Get(ctx, store.Query{Collection: lead.Collection})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Legacy", docs[0].Data["name"])
	})
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	svc, s := newTestService(t)
	actor := dataAdmin()

	seedProspect(t, s, "p1", &prospect.Prospect{Name: "Jane", Phone: "1"})

	t.Run("wrong phrase clears nothing", func(t *testing.T) {
		err := svc.ClearAll(ctx, actor, "delete everything")
		var vErr *errs.ValidationError
		require.ErrorAs(t, err, &vErr)

		docs, getErr := s.Get(ctx, store.Query{Collection: prospect.Collection})
		require.NoError(t, getErr)
		assert.Len(t, docs, 1)
	})

	t.Run("exact phrase clears prospects, leads and activities", func(t *testing.T) {
		require.NoError(t, svc.ClearAll(ctx, actor, ConfirmClearPhrase))

		for _, collection := range []string{prospect.Collection, lead.Collection, activity.Collection} {
			docs, err := s.Get(ctx, store.Query{Collection: collection})
			require.NoError(t, err)
			assert.Empty(t, docs, collection)
		}
	})
}
