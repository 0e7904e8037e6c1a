package reminder

import (
	"context"
	"fmt"
	"time"

	"nextgen-crm/internal/config"
	"nextgen-crm/internal/features/activity"
	"nextgen-crm/internal/features/prospect"
	"nextgen-crm/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderService scans the pipeline on a schedule and writes a
// reminder activity for every prospect whose follow-up date has
// arrived.
type ReminderService interface {
	Start(ctx context.Context) error
	Stop() error
	ScanFollowUps(ctx context.Context) (int, error)
}

type ReminderServiceImpl struct {
	Store    store.Store
	Activity activity.ActivityService
	Config   *config.Config
	Log      *zap.Logger

	cron *cron.Cron
}

func NewReminderService(s store.Store, activitySvc activity.ActivityService, cfg *config.Config, log *zap.Logger) ReminderService {
	return &ReminderServiceImpl{
		Store:    s,
		Activity: activitySvc,
		Config:   cfg,
		Log:      log,
	}
}

func (s *ReminderServiceImpl) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.Config.FollowUpCron, func() {
		scanCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		count, err := s.ScanFollowUps(scanCtx)
		if err != nil {
			s.Log.Error("follow-up scan failed", zap.Error(err))
			return
		}
		if count > 0 {
			s.Log.Info("follow-up reminders written", zap.Int("count", count))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid follow-up schedule %q: %w", s.Config.FollowUpCron, err)
	}
	s.cron.Start()
	return nil
}

func (s *ReminderServiceImpl) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return nil
}

// ScanFollowUps writes one reminder per prospect whose follow-up date
// falls on or before today and who is still in an open status.
func (s *ReminderServiceImpl) ScanFollowUps(ctx context.Context) (int, error) {
	docs, err := s.Store.Get(ctx, store.Query{Collection: prospect.Collection})
	if err != nil {
		return 0, err
	}

	cutoff := endOfDay(time.Now())
	count := 0
	for _, p := range prospect.DecodeAll(docs) {
		if p.FollowUpDate == nil || p.FollowUpDate.After(cutoff) {
			continue
		}
		if p.Status == prospect.StatusJoined || p.Status == prospect.StatusLost {
			continue
		}
		_ = s.Activity.Log(ctx, p.AssignedTo, "Follow-up Due",
			fmt.Sprintf("%s is due for follow-up.", p.Name))
		count++
	}
	return count, nil
}

// endOfDay returns midnight following now, in now's own location.
// Truncating in UTC would shift the boundary by the zone offset.
func endOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
