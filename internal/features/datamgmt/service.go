package datamgmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/config"
	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/activity"
	"nextgen-crm/internal/features/lead"
	"nextgen-crm/internal/features/permission"
	"nextgen-crm/internal/features/prospect"
	"nextgen-crm/internal/store"

	"go.uber.org/zap"
)

// ConfirmClearPhrase must be typed exactly before clear-all runs.
const ConfirmClearPhrase = "DELETE EVERYTHING"

// Backup is the exact interchange shape produced by CreateBackup and
// consumed by RestoreBackup.
type Backup struct {
	Version   string     `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
	Data      BackupData `json:"data"`
}

type BackupData struct {
	Prospects []prospect.Prospect `json:"prospects"`
	Leads     []lead.Lead         `json:"leads,omitempty"`
	// Older backups stored leads under the raw collection name.
	JoinRequests []lead.Lead `json:"joinRequests,omitempty"`
}

type DataService interface {
	ExportProspectsCSV(ctx context.Context, actor *access.Identity, prospects []prospect.Prospect) (string, error)
	ExportLeadsCSV(ctx context.Context, actor *access.Identity, leads []lead.Lead) (string, error)
	GenerateReport(ctx context.Context, actor *access.Identity, reportType string, in ReportInput) (*ReportFile, error)
	ImportProspectsCSV(ctx context.Context, actor *access.Identity, r io.Reader) (int, error)
	CreateBackup(ctx context.Context, actor *access.Identity) (*Backup, error)
	RestoreBackup(ctx context.Context, actor *access.Identity, raw []byte) error
	ClearAll(ctx context.Context, actor *access.Identity, confirmation string) error
}

type DataServiceImpl struct {
	Store    store.Store
	Activity activity.ActivityService
	Config   *config.Config
	Log      *zap.Logger
}

func NewDataService(s store.Store, activitySvc activity.ActivityService, cfg *config.Config, log *zap.Logger) DataService {
	return &DataServiceImpl{
		Store:    s,
		Activity: activitySvc,
		Config:   cfg,
		Log:      log,
	}
}

func (s *DataServiceImpl) ExportProspectsCSV(ctx context.Context, actor *access.Identity, prospects []prospect.Prospect) (string, error) {
	if !actor.Permissions.For(permission.ModuleData).View {
		return "", errs.Permission("export data")
	}
	return ExportCSV(prospects), nil
}

func (s *DataServiceImpl) ExportLeadsCSV(ctx context.Context, actor *access.Identity, leads []lead.Lead) (string, error) {
	if !actor.Permissions.For(permission.ModuleLeads).View {
		return "", errs.Permission("export leads")
	}
	return ExportLeadsCSV(leads), nil
}

// GenerateReport builds one of the canned CSV reports over the
// caller's visible data. The activity report reads the full log from
// the store; everything else works from the snapshots passed in.
func (s *DataServiceImpl) GenerateReport(ctx context.Context, actor *access.Identity, reportType string, in ReportInput) (*ReportFile, error) {
	if !actor.Permissions.For(permission.ModuleAnalytics).View {
		return nil, errs.Permission("generate reports")
	}

	switch reportType {
	case ReportProspects:
		return prospectsReport(in), nil
	case ReportStatuses:
		return statusReport(in), nil
	case ReportSources:
		return sourceReport(in), nil
	case ReportLeads:
		return leadsReport(in), nil
	case ReportPerformance:
		return performanceReport(in), nil
	case ReportActivities:
		return s.activitiesReport(ctx, in)
	default:
		return nil, errs.Validation("type", "Unknown report type: "+reportType)
	}
}

func (s *DataServiceImpl) activitiesReport(ctx context.Context, in ReportInput) (*ReportFile, error) {
	entries, err := s.Activity.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	writeRow(&b, []string{"User", "Details", "Timestamp"})
	for _, a := range entries {
		ts := ""
		if !a.Timestamp.IsZero() {
			ts = a.Timestamp.Format(time.RFC3339)
		}
		writeRow(&b, []string{in.nameOf(a.UserID), a.Details, ts})
	}
	return reportFile("activity_log_report", b.String()), nil
}

// ImportProspectsCSV parses the whole file before the first write: a
// malformed file aborts with nothing persisted. Writes are chunked to
// the configured batch limit.
func (s *DataServiceImpl) ImportProspectsCSV(ctx context.Context, actor *access.Identity, r io.Reader) (int, error) {
	if !actor.Permissions.For(permission.ModuleData).Add {
		return 0, errs.Permission("import data")
	}

	rows, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	ops := make([]store.Op, 0, len(rows))
	for _, row := range rows {
		p := prospect.Prospect{
			Name:          row.Name,
			Phone:         row.Phone,
			Email:         row.Email,
			Status:        prospect.StatusNew,
			InterestLevel: orDefault(row.Interest, "medium"),
			Location:      orDefault(row.Location, "Unknown"),
			AssignedTo:    actor.EmployeeID,
			OwnerID:       actor.EmployeeID,
			CreatedBy:     actor.EmployeeID,
			TeamID:        actor.TeamID,
			CreatedAt:     now,
			UpdatedAt:     now,
			Notes:         "Imported via CSV",
		}
		data, err := store.Encode(&p)
		if err != nil {
			return 0, err
		}
		ops = append(ops, store.SetOp(prospect.Collection, newID(), data))
	}

	imported, err := store.CommitChunked(ctx, s.Store, ops, s.Config.BatchLimit)
	if err != nil {
		return imported, errs.Write("import prospects", err)
	}

	_ = s.Activity.Log(ctx, actor.EmployeeID, "Data Imported",
		fmt.Sprintf("%d prospects imported via CSV.", imported))
	return imported, nil
}

func (s *DataServiceImpl) CreateBackup(ctx context.Context, actor *access.Identity) (*Backup, error) {
	if !actor.Permissions.For(permission.ModuleData).View {
		return nil, errs.Permission("create backup")
	}

	prospectDocs, err := s.Store.Get(ctx, store.Query{Collection: prospect.Collection})
	if err != nil {
		return nil, err
	}
	leadDocs, err := s.Store.Get(ctx, store.Query{Collection: lead.Collection})
	if err != nil {
		return nil, err
	}

	return &Backup{
		Version:   "1.0",
		Timestamp: time.Now(),
		Data: BackupData{
			Prospects: prospect.DecodeAll(prospectDocs),
			Leads:     lead.DecodeAll(leadDocs),
		},
	}, nil
}

// RestoreBackup completely overwrites prospects and leads: existing
// records are cleared first, then the backup's records are written
// back, preserving ids where present and minting new ones otherwise.
// All bulk phases are chunked; committed chunks stay committed if a
// later chunk fails.
func (s *DataServiceImpl) RestoreBackup(ctx context.Context, actor *access.Identity, raw []byte) error {
	if !actor.Permissions.For(permission.ModuleData).Edit {
		return errs.Permission("restore backup")
	}

	var envelope struct {
		Version   string          `json:"version"`
		Timestamp time.Time       `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errs.ImportFormat("backup is not valid JSON")
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return errs.ImportFormat(`backup is missing the "data" key`)
	}
	var data BackupData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return errs.ImportFormat("backup data has unexpected shape")
	}

	leads := data.Leads
	if len(leads) == 0 {
		leads = data.JoinRequests
	}

	if err := s.clearCollections(ctx, prospect.Collection, lead.Collection); err != nil {
		return err
	}

	var ops []store.Op
	for i := range data.Prospects {
		p := data.Prospects[i]
		id := p.ID
		if id == "" {
			id = newID()
		}
		doc, err := store.Encode(&p)
		if err != nil {
			return err
		}
		ops = append(ops, store.SetOp(prospect.Collection, id, doc))
	}
	for i := range leads {
		l := leads[i]
		id := l.ID
		if id == "" {
			id = newID()
		}
		doc, err := store.Encode(&l)
		if err != nil {
			return err
		}
		ops = append(ops, store.SetOp(lead.Collection, id, doc))
	}

	if _, err := store.CommitChunked(ctx, s.Store, ops, s.Config.BatchLimit); err != nil {
		return errs.Write("restore backup", err)
	}

	_ = s.Activity.Log(ctx, actor.EmployeeID, "System Restored",
		fmt.Sprintf("Restored %d prospects and %d leads from backup.", len(data.Prospects), len(leads)))
	return nil
}

func (s *DataServiceImpl) ClearAll(ctx context.Context, actor *access.Identity, confirmation string) error {
	if !actor.Permissions.For(permission.ModuleData).Delete {
		return errs.Permission("clear all data")
	}
	if confirmation != ConfirmClearPhrase {
		return errs.Validation("confirmation", "Confirmation failed. Data was not cleared.")
	}

	if err := s.clearCollections(ctx, prospect.Collection, lead.Collection, activity.Collection); err != nil {
		return err
	}

	s.Log.Info("all system data cleared", zap.String("actor", actor.EmployeeID))
	return nil
}

func (s *DataServiceImpl) clearCollections(ctx context.Context, collections ...string) error {
	for _, collection := range collections {
		docs, err := s.Store.Get(ctx, store.Query{Collection: collection})
		if err != nil {
			return err
		}
		ops := make([]store.Op, 0, len(docs))
		for _, doc := range docs {
			ops = append(ops, store.DeleteOp(collection, doc.ID))
		}
		if _, err := store.CommitChunked(ctx, s.Store, ops, s.Config.BatchLimit); err != nil {
			return errs.Write("clear "+collection, err)
		}
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
