package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type notificationService struct {
	uowFactory UnitOfWorkFactory
	notifier   ReminderNotifier

	// Reminder window relative to now: matches kicking off inside
	// [now+minLead, now+maxLead) get one reminder.
	minLead time.Duration
	maxLead time.Duration
}

// NewNotificationService creates a new notification service
func NewNotificationService(uowFactory UnitOfWorkFactory, notifier ReminderNotifier, minLead, maxLead time.Duration) NotificationService {
	return &notificationService{
		uowFactory: uowFactory,
		notifier:   notifier,
		minLead:    minLead,
		maxLead:    maxLead,
	}
}

// SendKickoffReminders finds matches kicking off soon, reminds every user
// still missing a prediction and marks the match notified. A match is
// marked even when zero users needed a reminder, so it is never scanned
// twice.
func (s *notificationService) SendKickoffReminders(ctx context.Context) (int, error) {
	now := time.Now()
	from := now.Add(s.minLead)
	until := now.Add(s.maxLead)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	matches, err := uow.MatchRepository().GetDueForReminder(ctx, from, until)
	if err != nil {
		return 0, fmt.Errorf("failed to get matches due for reminder: %w", err)
	}
	if err := uow.Rollback(); err != nil {
		return 0, fmt.Errorf("failed to release transaction: %w", err)
	}

	totalNotified := 0
	for _, match := range matches {
		notified, err := s.remindMatch(ctx, match.ID)
		if err != nil {
			log.WithFields(log.Fields{
				"matchID": match.ID,
				"error":   err,
			}).Error("Failed to send reminders for match")
			continue
		}
		totalNotified += notified
	}

	return totalNotified, nil
}

func (s *notificationService) remindMatch(ctx context.Context, matchID int64) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	match, err := uow.MatchRepository().GetByID(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil || match.IsFinished {
		return 0, nil
	}

	users, err := uow.PredictionRepository().GetUsersWithoutPrediction(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to get users without prediction: %w", err)
	}

	notified := 0
	for _, user := range users {
		// Delivery failures are logged per user; one blocked chat must not
		// stop the rest of the reminders.
		if err := s.notifier.NotifyUpcomingMatch(ctx, user, match); err != nil {
			log.WithFields(log.Fields{
				"matchID":    matchID,
				"telegramID": user.TelegramID,
				"error":      err,
			}).Warn("Failed to deliver kickoff reminder")
			continue
		}
		notified++
	}

	if err := uow.MatchNotificationRepository().MarkSent(ctx, matchID, notified); err != nil {
		return 0, fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID":  matchID,
		"notified": notified,
		"missing":  len(users),
	}).Info("Sent kickoff reminders")

	return notified, nil
}
