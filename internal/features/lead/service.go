package lead

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nextgen-crm/internal/common/errs"
	"nextgen-crm/internal/config"
	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/activity"
	"nextgen-crm/internal/features/permission"
	"nextgen-crm/internal/features/prospect"
	"nextgen-crm/internal/store"

	"go.uber.org/zap"
)

type LeadService interface {
	// Transfer promotes a lead into a prospect. One-way and
	// non-reversible: the lead record is deleted after the copy.
	Transfer(ctx context.Context, actor *access.Identity, leadID string) (*prospect.Prospect, error)

	Delete(ctx context.Context, actor *access.Identity, leadID string) error

	// DeleteSelected removes leads in chunked batches; committed
	// chunks stay committed even if a later chunk fails.
	DeleteSelected(ctx context.Context, actor *access.Identity, ids []string) (int, error)
}

type LeadServiceImpl struct {
	Repo     LeadRepository
	Store    store.Store
	Activity activity.ActivityService
	Config   *config.Config
	Log      *zap.Logger
}

func NewLeadService(repo LeadRepository, s store.Store, activitySvc activity.ActivityService, cfg *config.Config, log *zap.Logger) LeadService {
	return &LeadServiceImpl{
		Repo:     repo,
		Store:    s,
		Activity: activitySvc,
		Config:   cfg,
		Log:      log,
	}
}

func (s *LeadServiceImpl) Transfer(ctx context.Context, actor *access.Identity, leadID string) (*prospect.Prospect, error) {
	caps := actor.Permissions.For(permission.ModuleLeads)
	if !caps.Edit && !caps.Delete {
		return nil, errs.Permission("transfer lead")
	}

	l, err := s.Repo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("lead not found")
	}

	now := time.Now()
	p := &prospect.Prospect{
		Name:          l.Name,
		Phone:         l.Phone,
		Email:         l.Email,
		Age:           l.Age,
		Location:      orDefault(l.Location, "Unknown"),
		Occupation:    l.WhatTheyDo,
		Instagram:     l.InstagramID,
		InterestLevel: orDefault(l.InterestLevel, "medium"),
		Status:        prospect.StatusNew,
		LeadSource:    NormalizeSource(l.LeadSource),
		FollowUpDate:  l.FollowUpDate,
		TeamID:        actor.TeamID,
		AssignedTo:    actor.EmployeeID,
		OwnerID:       actor.EmployeeID,
		CreatedBy:     actor.EmployeeID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Notes:         transferNotes(l, now),
	}

	data, err := store.Encode(p)
	if err != nil {
		return nil, err
	}
	id, err := s.Store.Add(ctx, prospect.Collection, data)
	if err != nil {
		return nil, errs.Write("transfer lead", err)
	}
	p.ID = id

	if err := s.Repo.Delete(ctx, leadID); err != nil {
		// The prospect exists but the lead survived; report it, the
		// transfer is not rolled back.
		s.Log.Error("lead delete after transfer failed",
			zap.String("lead_id", leadID), zap.Error(err))
		return p, errs.Write("delete transferred lead", err)
	}

	_ = s.Activity.Log(ctx, actor.EmployeeID, "Lead Transferred",
		fmt.Sprintf("%s promoted to Prospect.", l.Name))
	return p, nil
}

func (s *LeadServiceImpl) Delete(ctx context.Context, actor *access.Identity, leadID string) error {
	if !actor.Permissions.For(permission.ModuleLeads).Delete {
		return errs.Permission("delete lead")
	}
	if err := s.Repo.Delete(ctx, leadID); err != nil {
		return errs.Write("delete lead", err)
	}
	return nil
}

func (s *LeadServiceImpl) DeleteSelected(ctx context.Context, actor *access.Identity, ids []string) (int, error) {
	if !actor.Permissions.For(permission.ModuleLeads).Delete {
		return 0, errs.Permission("delete leads")
	}
	if len(ids) == 0 {
		return 0, errs.Validation("leads", "Please select leads to delete")
	}

	ops := make([]store.Op, 0, len(ids))
	for _, id := range ids {
		ops = append(ops, store.DeleteOp(Collection, id))
	}
	deleted, err := store.CommitChunked(ctx, s.Store, ops, s.Config.BatchLimit)
	if err != nil {
		return deleted, errs.Write("delete leads", err)
	}

	_ = s.Activity.Log(ctx, actor.EmployeeID, "Leads Deleted",
		fmt.Sprintf("%d leads removed.", deleted))
	return deleted, nil
}

// NormalizeSource folds free-form lead source labels into the known
// set used by analytics.
func NormalizeSource(source string) string {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "instagram", "insta", "ig":
		return "instagram"
	case "whatsapp", "wa":
		return "whatsapp"
	case "referral", "reference":
		return "referral"
	case "website", "web":
		return "website"
	case "":
		return "other"
	default:
		return strings.ToLower(strings.TrimSpace(source))
	}
}

func transferNotes(l *Lead, now time.Time) string {
	notes := fmt.Sprintf("Transferred from Leads on %s.", now.Format("02/01/2006"))
	if l.WhyWantToJoin != "" {
		notes += "\nWhy Join: " + l.WhyWantToJoin
	}
	if l.Notes != "" {
		notes += "\nOriginal notes: " + l.Notes
	}
	return notes
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
