package prospect

import (
	"context"
	"fmt"
	"time"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/activity"
	"nextgen-crm/internal/features/permission"

	"go.uber.org/zap"
)

// ProspectService guards every mutation with both checks the system
// requires: the module-level capability and the entity-level access
// level. Hiding a button is never enough; handlers re-check here.
type ProspectService interface {
	Find(ctx context.Context, id string) (*Prospect, error)
	Create(ctx context.Context, actor *access.Identity, p *Prospect) (*Prospect, error)
	Update(ctx context.Context, actor *access.Identity, id string, updated *Prospect) error
	Delete(ctx context.Context, actor *access.Identity, id string) error
	ChangeStatus(ctx context.Context, actor *access.Identity, id, status string) error
	Reassign(ctx context.Context, actor *access.Identity, id, targetEmployeeID string) error
}

type ProspectServiceImpl struct {
	Repo       ProspectRepository
	AccessRepo access.AccessRepository
	Activity   activity.ActivityService
	Log        *zap.Logger
}

func NewProspectService(repo ProspectRepository, accessRepo access.AccessRepository, activitySvc activity.ActivityService, log *zap.Logger) ProspectService {
	return &ProspectServiceImpl{
		Repo:       repo,
		AccessRepo: accessRepo,
		Activity:   activitySvc,
		Log:        log,
	}
}

func (s *ProspectServiceImpl) Find(ctx context.Context, id string) (*Prospect, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *ProspectServiceImpl) Create(ctx context.Context, actor *access.Identity, p *Prospect) (*Prospect, error) {
	if !actor.Permissions.For(permission.ModuleProspects).Add {
		return nil, errs.Permission("add prospect")
	}
	if p.Name == "" {
		return nil, errs.Validation("name", "Name is required")
	}
	if p.Phone == "" {
		return nil, errs.Validation("phone", "Phone is required")
	}

	now := time.Now()
	if p.Status == "" {
		p.Status = StatusNew
	}
	if p.InterestLevel == "" {
		p.InterestLevel = "medium"
	}
	p.OwnerID = actor.EmployeeID
	p.CreatedBy = actor.EmployeeID
	if p.AssignedTo == "" {
		p.AssignedTo = actor.EmployeeID
	}
	if p.TeamID == "" {
		p.TeamID = actor.TeamID
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	id, err := s.Repo.Create(ctx, p)
	if err != nil {
		return nil, errs.Write("create prospect", err)
	}
	p.ID = id

	_ = s.Activity.Log(ctx, actor.EmployeeID, "Prospect Added", fmt.Sprintf("%s added to pipeline.", p.Name))
	return p, nil
}

func (s *ProspectServiceImpl) Update(ctx context.Context, actor *access.Identity, id string, updated *Prospect) error {
	existing, err := s.requireEditable(ctx, actor, id)
	if err != nil {
		return err
	}
	if updated.Name == "" {
		return errs.Validation("name", "Name is required")
	}
	if updated.Phone == "" {
		return errs.Validation("phone", "Phone is required")
	}

	// Ownership fields never move on edit.
	updated.OwnerID = existing.OwnerID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	if updated.AssignedTo == "" {
		updated.AssignedTo = existing.AssignedTo
	}

	if err := s.Repo.Update(ctx, id, updated); err != nil {
		return errs.Write("update prospect", err)
	}
	return nil
}

func (s *ProspectServiceImpl) Delete(ctx context.Context, actor *access.Identity, id string) error {
	if !actor.Permissions.For(permission.ModuleProspects).Delete {
		return errs.Permission("delete prospect")
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("prospect not found")
	}
	if !permission.CanEdit(actor.Subject(), existing) {
		return errs.Permission("delete prospect")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return errs.Write("delete prospect", err)
	}

	_ = s.Activity.Log(ctx, actor.EmployeeID, "Prospect Deleted", fmt.Sprintf("%s removed from pipeline.", existing.Name))
	return nil
}

func (s *ProspectServiceImpl) ChangeStatus(ctx context.Context, actor *access.Identity, id, status string) error {
	if _, err := s.requireEditable(ctx, actor, id); err != nil {
		return err
	}

	// Any label-to-label transition is allowed.
	if err := s.Repo.UpdateFields(ctx, id, map[string]interface{}{
		"status":    status,
		"updatedAt": time.Now(),
	}); err != nil {
		return errs.Write("change status", err)
	}
	return nil
}

func (s *ProspectServiceImpl) Reassign(ctx context.Context, actor *access.Identity, id, targetEmployeeID string) error {
	if !actor.Permissions.For(permission.ModuleProspects).Edit {
		return errs.Permission("reassign prospect")
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("prospect not found")
	}

	targetTeam, err := s.teamOf(ctx, targetEmployeeID)
	if err != nil {
		return err
	}
	if !permission.CanReassign(actor.Subject(), existing, targetTeam) {
		return errs.Permission("reassign prospect")
	}

	if err := s.Repo.UpdateFields(ctx, id, map[string]interface{}{
		"assignedTo": targetEmployeeID,
		"teamId":     targetTeam,
		"updatedAt":  time.Now(),
	}); err != nil {
		return errs.Write("reassign prospect", err)
	}

	_ = s.Activity.Log(ctx, actor.EmployeeID, "Prospect Reassigned",
		fmt.Sprintf("%s assigned to %s.", existing.Name, targetEmployeeID))
	return nil
}

func (s *ProspectServiceImpl) requireEditable(ctx context.Context, actor *access.Identity, id string) (*Prospect, error) {
	if !actor.Permissions.For(permission.ModuleProspects).Edit {
		return nil, errs.Permission("edit prospect")
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("prospect not found")
	}
	if !permission.CanEdit(actor.Subject(), existing) {
		return nil, errs.Permission("edit prospect")
	}
	return existing, nil
}

// teamOf resolves the target user's team from their effective grant.
func (s *ProspectServiceImpl) teamOf(ctx context.Context, employeeID string) (string, error) {
	grants, err := s.AccessRepo.FindGrantsByEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	if len(grants) == 0 {
		return "", nil
	}
	grant, err := access.EffectiveGrant(grants)
	if err != nil {
		return "", nil
	}
	return grant.TeamID, nil
}
