// Package scheduler runs periodic housekeeping on a cron spec. It purges
// expired password reset codes, old read notifications and aged security
// events.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"go-trades-backend/pkg/logger"
)

// ReadNotificationRetention is how long read notifications are kept.
const ReadNotificationRetention = 90 * 24 * time.Hour

const SecurityEventRetention = 180 * 24 * time.Hour

type ResetPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type NotificationPurger interface {
	PurgeRead(ctx context.Context, before time.Time) (int64, error)
}

type EventPurger interface {
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler wraps robfig/cron and owns the housekeeping jobs.
type Scheduler struct {
	cron          *cron.Cron
	spec          string
	resets        ResetPurger
	notifications NotificationPurger
	events        EventPurger
	now           func() time.Time
}

func New(spec string, resets ResetPurger, notifications NotificationPurger, events EventPurger) *Scheduler {
	return &Scheduler{
		// Overlapping runs are skipped rather than queued
		cron:          cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:          spec,
		resets:        resets,
		notifications: notifications,
		events:        events,
		now:           time.Now,
	}
}

// Start registers the housekeeping job and starts the cron loop. Jobs run
// with ctx, so cancelling it aborts in-flight queries.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduler: invalid spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	logger.Log.Info("Housekeeping scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Log.Info("Housekeeping scheduler stopped")
}

// RunOnce performs one housekeeping pass. Each step logs its own failure
// and does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.now()

	if s.resets != nil {
		n, err := s.resets.PurgeExpired(ctx, now)
		if err != nil {
			logger.Log.Error("purge expired password resets failed", "error", err)
		} else if n > 0 {
			logger.Log.Info("purged expired password resets", "count", n)
		}
	}

	if s.notifications != nil {
		n, err := s.notifications.PurgeRead(ctx, now.Add(-ReadNotificationRetention))
		if err != nil {
			logger.Log.Error("purge read notifications failed", "error", err)
		} else if n > 0 {
			logger.Log.Info("purged read notifications", "count", n)
		}
	}

	if s.events != nil {
		n, err := s.events.PurgeBefore(ctx, now.Add(-SecurityEventRetention))
		if err != nil {
			logger.Log.Error("purge security events failed", "error", err)
		} else if n > 0 {
			logger.Log.Info("purged security events", "count", n)
		}
	}
}
