package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/features/datamgmt"
	"nextgen-crm/internal/features/prospect"
	"nextgen-crm/internal/features/team"
	"nextgen-crm/internal/features/template"

	"go.uber.org/zap"
)

// Action names accepted over the wire.
const (
	ActionNavigate        = "navigate"
	ActionAddProspect     = "add_prospect"
	ActionEditProspect    = "edit_prospect"
	ActionDeleteProspect  = "delete_prospect"
	ActionChangeStatus    = "change_status"
	ActionFilterProspects = "filter_prospects"
	ActionReassign        = "reassign"
	ActionTransferLead    = "transfer_lead"
	ActionDeleteLead      = "delete_lead"
	ActionDeleteLeads     = "delete_leads"
	ActionAddTemplate     = "add_template"
	ActionEditTemplate    = "edit_template"
	ActionDeleteTemplate  = "delete_template"
	ActionRenderTemplate  = "render_template"
	ActionAddTeam         = "add_team"
	ActionEditTeam        = "edit_team"
	ActionDeleteTeam      = "delete_team"
	ActionExportCSV       = "export_csv"
	ActionExportLeads     = "export_leads"
	ActionGenerateReport  = "generate_report"
	ActionImportCSV       = "import_csv"
	ActionCreateBackup    = "create_backup"
	ActionRestoreBackup   = "restore_backup"
	ActionClearAll        = "clear_all"
)

// Request is one inbound client message.
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch executes one user action on the session loop. A failing
// handler never takes the session down: panics are trapped and surfaced
// like any other error, and the loading state is always cleared.
func (s *Session) Dispatch(req Request) {
	s.post(func() {
		if s.closed {
			return
		}

		defer func() {
			if r := recover(); r != nil {
				s.log.Error("action handler panicked",
					zap.String("action", req.Action), zap.Any("panic", r))
				s.pushErr(fmt.Errorf("something went wrong"))
				s.out.Push(Event{Type: EventLoading, Data: false})
			}
		}()

		s.out.Push(Event{Type: EventLoading, Data: true})
		err := s.handle(req)
		s.out.Push(Event{Type: EventLoading, Data: false})
		if err != nil {
			s.pushErr(err)
		}
	})
}

func (s *Session) handle(req Request) error {
	ctx := context.Background()

	switch req.Action {
	case ActionNavigate:
		var p struct {
			Page string `json:"page"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		s.NavigateTo(p.Page)
		return nil

	case ActionAddProspect:
		var p prospect.Prospect
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		created, err := s.m.Prospects.Create(ctx, s.user, &p)
		if err != nil {
			return err
		}
		s.notice(fmt.Sprintf("%s added to pipeline.", created.Name))
		return nil

	case ActionEditProspect:
		var p struct {
			ID string `json:"id"`
			prospect.Prospect
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		if err := s.m.Prospects.Update(ctx, s.user, p.ID, &p.Prospect); err != nil {
			return err
		}
		s.notice("Prospect updated.")
		return nil

	case ActionDeleteProspect:
		id, err := payloadID(req.Payload)
		if err != nil {
			return err
		}
		if err := s.m.Prospects.Delete(ctx, s.user, id); err != nil {
			return err
		}
		s.notice("Prospect deleted.")
		return nil

	case ActionChangeStatus:
		var p struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		return s.m.Prospects.ChangeStatus(ctx, s.user, p.ID, p.Status)

	case ActionFilterProspects:
		var p struct {
			Search string `json:"search"`
			Status string `json:"status"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		s.search = p.Search
		s.statusFilter = p.Status
		s.render()
		return nil

	case ActionReassign:
		var p struct {
			ID         string `json:"id"`
			EmployeeID string `json:"employeeId"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		if err := s.m.Prospects.Reassign(ctx, s.user, p.ID, p.EmployeeID); err != nil {
			return err
		}
		s.notice("Prospect reassigned.")
		return nil

	case ActionTransferLead:
		id, err := payloadID(req.Payload)
		if err != nil {
			return err
		}
		created, err := s.m.Leads.Transfer(ctx, s.user, id)
		if err != nil {
			return err
		}
		s.notice(fmt.Sprintf("%s promoted to Prospect.", created.Name))
		return nil

	case ActionDeleteLead:
		id, err := payloadID(req.Payload)
		if err != nil {
			return err
		}
		return s.m.Leads.Delete(ctx, s.user, id)

	case ActionDeleteLeads:
		var p struct {
			IDs []string `json:"ids"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		deleted, err := s.m.Leads.DeleteSelected(ctx, s.user, p.IDs)
		if err != nil {
			// Partial progress is still reported before the error.
			if deleted > 0 {
				s.notice(fmt.Sprintf("%d leads deleted before the failure.", deleted))
			}
			return err
		}
		s.notice(fmt.Sprintf("%d leads deleted.", deleted))
		return nil

	case ActionAddTemplate:
		var t template.Template
		if err := decode(req.Payload, &t); err != nil {
			return err
		}
		if _, err := s.m.Templates.Create(ctx, s.user, &t); err != nil {
			return err
		}
		s.notice("Template saved.")
		return nil

	case ActionEditTemplate:
		var p struct {
			ID string `json:"id"`
			template.Template
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		if err := s.m.Templates.Update(ctx, s.user, p.ID, &p.Template); err != nil {
			return err
		}
		s.notice("Template updated.")
		return nil

	case ActionDeleteTemplate:
		id, err := payloadID(req.Payload)
		if err != nil {
			return err
		}
		return s.m.Templates.Delete(ctx, s.user, id)

	case ActionRenderTemplate:
		var p struct {
			TemplateID string `json:"templateId"`
			ProspectID string `json:"prospectId"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		target, err := s.m.Prospects.Find(ctx, p.ProspectID)
		if err != nil {
			return err
		}
		if target == nil {
			return fmt.Errorf("prospect not found")
		}
		message, err := s.m.Templates.RenderFor(ctx, p.TemplateID, target, s.assignedName(target.AssignedTo))
		if err != nil {
			return err
		}
		s.out.Push(Event{Type: EventFile, Data: map[string]string{
			"kind":    "message",
			"phone":   target.Phone,
			"content": message,
		}})
		return nil

	case ActionAddTeam:
		var t team.Team
		if err := decode(req.Payload, &t); err != nil {
			return err
		}
		if _, err := s.m.Teams.Create(ctx, s.user, &t); err != nil {
			return err
		}
		s.notice("Team created.")
		return nil

	case ActionEditTeam:
		var p struct {
			ID string `json:"id"`
			team.Team
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		if err := s.m.Teams.Update(ctx, s.user, p.ID, &p.Team); err != nil {
			return err
		}
		s.notice("Team updated.")
		return nil

	case ActionDeleteTeam:
		id, err := payloadID(req.Payload)
		if err != nil {
			return err
		}
		return s.m.Teams.Delete(ctx, s.user, id)

	case ActionExportCSV:
		csv, err := s.m.Data.ExportProspectsCSV(ctx, s.user, s.canonical)
		if err != nil {
			return err
		}
		s.out.Push(Event{Type: EventFile, Data: map[string]string{
			"kind":    "csv",
			"name":    "prospects.csv",
			"content": csv,
		}})
		return nil

	case ActionExportLeads:
		csv, err := s.m.Data.ExportLeadsCSV(ctx, s.user, s.leads)
		if err != nil {
			return err
		}
		s.out.Push(Event{Type: EventFile, Data: map[string]string{
			"kind":    "csv",
			"name":    "leads_export_" + time.Now().Format("2006-01-02") + ".csv",
			"content": csv,
		}})
		return nil

	case ActionGenerateReport:
		var p struct {
			Type string `json:"type"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		report, err := s.m.Data.GenerateReport(ctx, s.user, p.Type, datamgmt.ReportInput{
			Prospects: s.canonical,
			Leads:     s.leads,
			Employees: s.employees,
		})
		if err != nil {
			return err
		}
		s.out.Push(Event{Type: EventFile, Data: map[string]string{
			"kind":    "csv",
			"name":    report.Name,
			"content": report.Content,
		}})
		return nil

	case ActionImportCSV:
		var p struct {
			Content string `json:"content"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		imported, err := s.m.Data.ImportProspectsCSV(ctx, s.user, strings.NewReader(p.Content))
		if err != nil {
			if imported > 0 {
				s.notice(fmt.Sprintf("%d prospects imported before the failure.", imported))
			}
			return err
		}
		s.notice(fmt.Sprintf("%d prospects imported.", imported))
		return nil

	case ActionCreateBackup:
		backup, err := s.m.Data.CreateBackup(ctx, s.user)
		if err != nil {
			return err
		}
		s.out.Push(Event{Type: EventFile, Data: map[string]interface{}{
			"kind":    "backup",
			"name":    "crm-backup.json",
			"content": backup,
		}})
		return nil

	case ActionRestoreBackup:
		var p struct {
			Content json.RawMessage `json:"content"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		if err := s.m.Data.RestoreBackup(ctx, s.user, p.Content); err != nil {
			return err
		}
		s.notice("Backup restored.")
		return nil

	case ActionClearAll:
		var p struct {
			Confirmation string `json:"confirmation"`
		}
		if err := decode(req.Payload, &p); err != nil {
			return err
		}
		if err := s.m.Data.ClearAll(ctx, s.user, p.Confirmation); err != nil {
			return err
		}
		s.notice("All data cleared.")
		return nil

	default:
		return fmt.Errorf("unknown action: %s", req.Action)
	}
}

// pushErr translates the error taxonomy into what the client shows.
func (s *Session) pushErr(err error) {
	var vErr *errs.ValidationError
	var pErr *errs.PermissionError
	var fErr *errs.ImportFormatError
	var wErr *errs.WriteError

	switch {
	case errors.As(err, &vErr):
		s.out.Push(Event{Type: EventError, Reason: vErr.Message, Data: vErr.Field})
	case errors.As(err, &pErr):
		s.out.Push(Event{Type: EventError, Reason: "You don't have permission to " + pErr.Action + "."})
	case errors.As(err, &fErr):
		s.out.Push(Event{Type: EventError, Reason: fErr.Requirement})
	case errors.As(err, &wErr):
		s.out.Push(Event{Type: EventError, Reason: "The change could not be saved. Please try again."})
		s.log.Error("write failed", zap.Error(err))
	default:
		s.out.Push(Event{Type: EventError, Reason: err.Error()})
	}
}

func (s *Session) notice(message string) {
	s.out.Push(Event{Type: EventNotice, Reason: message})
}

func (s *Session) assignedName(employeeID string) string {
	for _, e := range s.employees {
		if e.ID == employeeID {
			return e.Name
		}
	}
	return ""
}

func decode(raw json.RawMessage, into interface{}) error {
	if len(raw) == 0 {
		return errs.Validation("payload", "Missing action payload")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return errs.Validation("payload", "Malformed action payload")
	}
	return nil
}

func payloadID(raw json.RawMessage) (string, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := decode(raw, &p); err != nil {
		return "", err
	}
	if p.ID == "" {
		return "", errs.Validation("id", "Missing record id")
	}
	return p.ID, nil
}
