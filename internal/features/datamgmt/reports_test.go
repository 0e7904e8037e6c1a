package datamgmt

import (
	"context"
	"testing"
	"time"

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

func reportActor() *access.Identity {
	return &access.Identity{
		EmployeeID: "e1",
		Role:       "Sales Rep",
		Permissions: permission.Set{
			permission.ModuleLeads:     {View: true},
			permission.ModuleAnalytics: {View: true},
		},
	}
}

func TestExportLeadsCSV(t *testing.T) {
	leads := []lead.Lead{
		{Name: "Ana", Phone: "777", Email: "ana@example.com", Location: "Lima",
			Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{Name: `Bo "Big" Co`, Phone: "888"},
	}

	got := ExportLeadsCSV(leads)
	want := `"Name","Phone","Email","Location","Date"` + "\n" +
		`"Ana","777","ana@example.com","Lima","2026-03-01T10:00:00Z"` + "\n" +
		`"Bo ""Big"" Co","888","","",""` + "\n"
	assert.Equal(t, want, got)
}

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()

	newSvc := func() DataService {
		s := store.NewMemoryStore()
		return NewDataService(s, activity.NewActivityService(s, zap.NewNop()), &config.Config{BatchLimit: 400}, zap.NewNop())
	}

	input := ReportInput{
		Prospects: []prospect.Prospect{
			{Name: "Jane", Phone: "1", Status: prospect.StatusJoined, LeadSource: "instagram", AssignedTo: "e1",
				CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
			{Name: "Joe", Phone: "2", Status: prospect.StatusNew, LeadSource: "referral", AssignedTo: "e1"},
			{Name: "Jim", Phone: "3", Status: prospect.StatusNew, LeadSource: "referral", AssignedTo: "e2"},
		},
		Leads:     []lead.Lead{{Name: "Ana", Phone: "777"}},
		Employees: []access.Employee{{ID: "e1", Name: "Pat"}, {ID: "e2", Name: "Sam"}},
	}

	t.Run("prospects report resolves assignee names", func(t *testing.T) {
		report, err := newSvc().GenerateReport(ctx, reportActor(), ReportProspects, input)
		require.NoError(t, err)
		assert.Contains(t, report.Name, "all_prospects_report_")
		assert.Contains(t, report.Content, `"Jane","1","","joined","instagram","Pat","2026-02-01T00:00:00Z"`)
		assert.Contains(t, report.Content, `"Jim","3","","new","referral","Sam",""`)
	})

	t.Run("status counts sorted by label", func(t *testing.T) {
		report, err := newSvc().GenerateReport(ctx, reportActor(), ReportStatuses, input)
		require.NoError(t, err)
		want := `"Status","Count"` + "\n" + `"joined","1"` + "\n" + `"new","2"` + "\n"
		assert.Equal(t, want, report.Content)
	})

	t.Run("source counts sorted by label", func(t *testing.T) {
		report, err := newSvc().GenerateReport(ctx, reportActor(), ReportSources, input)
		require.NoError(t, err)
		want := `"Lead Source","Count"` + "\n" + `"instagram","1"` + "\n" + `"referral","2"` + "\n"
		assert.Equal(t, want, report.Content)
	})

	t.Run("raw leads report", func(t *testing.T) {
		report, err := newSvc().GenerateReport(ctx, reportActor(), ReportLeads, input)
		require.NoError(t, err)
		assert.Contains(t, report.Name, "raw_leads_report_")
		assert.Contains(t, report.Content, `"Ana","777"`)
	})

	t.Run("employee performance rates", func(t *testing.T) {
		report, err := newSvc().GenerateReport(ctx, reportActor(), ReportPerformance, input)
		require.NoError(t, err)
		assert.Contains(t, report.Content, `"Pat","2","1","50.0%"`)
		assert.Contains(t, report.Content, `"Sam","1","0","0.0%"`)
	})

	t.Run("activities report reads the full log", func(t *testing.T) {
		s := store.NewMemoryStore()
		activitySvc := activity.NewActivityService(s, zap.NewNop())
		svc := NewDataService(s, activitySvc, &config.Config{BatchLimit: 400}, zap.NewNop())
		require.NoError(t, activitySvc.Log(ctx, "e1", "Prospect Added", "Jane joined the pipeline."))

		report, err := svc.GenerateReport(ctx, reportActor(), ReportActivities, input)
		require.NoError(t, err)
		assert.Contains(t, report.Name, "activity_log_report_")
		assert.Contains(t, report.Content, `"Pat","Jane joined the pipeline."`)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		var vErr *errs.ValidationError
		_, err := newSvc().GenerateReport(ctx, reportActor(), "nonsense", input)
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("requires analytics view capability", func(t *testing.T) {
		actor := reportActor()
		actor.Permissions = permission.Set{}

		var pErr *errs.PermissionError
		_, err := newSvc().GenerateReport(ctx, actor, ReportProspects, input)
		assert.ErrorAs(t, err, &pErr)
	})
}

func TestExportLeadsRequiresLeadView(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewDataService(s, activity.NewActivityService(s, zap.NewNop()), &config.Config{BatchLimit: 400}, zap.NewNop())

	actor := reportActor()
	actor.Permissions = permission.Set{}

	var pErr *errs.PermissionError
	_, err := svc.ExportLeadsCSV(context.Background(), actor, nil)
	assert.ErrorAs(t, err, &pErr)
}
