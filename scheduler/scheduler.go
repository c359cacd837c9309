package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"

	"tipster/service"
)

// Scheduler runs the periodic background jobs, currently just the
// kickoff reminder sweep.
type Scheduler struct {
	sched         gocron.Scheduler
	notifications service.NotificationService
}

func New(notifications service.NotificationService) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		sched:         sched,
		notifications: notifications,
	}, nil
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			sent, err := s.notifications.SendKickoffReminders(ctx)
			if err != nil {
				log.WithError(err).Error("Kickoff reminder sweep failed")
				return
			}
			if sent > 0 {
				log.WithField("reminders", sent).Info("Sent kickoff reminders")
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	s.sched.Start()
	log.Info("Scheduler started")
	return nil
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
