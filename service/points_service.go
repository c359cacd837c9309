package service

import (
	"context"
	"fmt"

	"tipster/events"
	"tipster/models"

	log "github.com/sirupsen/logrus"
)

type pointsService struct {
	uowFactory UnitOfWorkFactory
}

// NewPointsService creates a new points service
func NewPointsService(uowFactory UnitOfWorkFactory) PointsService {
	return &pointsService{
		uowFactory: uowFactory,
	}
}

// AdjustPoints adds a signed delta to a user's total and appends a ledger
// entry of kind "add".
func (s *pointsService) AdjustPoints(ctx context.Context, userID, delta, adminID int64, reason string) (*models.AdjustmentResult, error) {
	return s.apply(ctx, userID, adminID, reason, models.PointsActionAdd, func(oldTotal int64) int64 {
		return oldTotal + delta
	})
}

// SetPoints overwrites a user's total and appends a ledger entry of kind
// "set". Negative totals are rejected before any write.
func (s *pointsService) SetPoints(ctx context.Context, userID, newTotal, adminID int64, reason string) (*models.AdjustmentResult, error) {
	if newTotal < 0 {
		return nil, ErrNegativeTotal
	}
	return s.apply(ctx, userID, adminID, reason, models.PointsActionSet, func(oldTotal int64) int64 {
		return newTotal
	})
}

// apply performs one adjustment. The user row is locked for the duration
// of the transaction, so old_total and new_total come from the same read
// and two racing adjustments chain instead of losing an update. The
// season number is resolved from the active season at call time, under a
// shared lock so an in-flight season closure excludes the adjustment.
func (s *pointsService) apply(ctx context.Context, userID, adminID int64, reason string, action models.PointsAction, compute func(oldTotal int64) int64) (*models.AdjustmentResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	season, err := uow.SeasonRepository().LockActive(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to lock active season: %w", err)
	}
	if season == nil {
		return nil, ErrNoActiveSeason
	}

	user, err := uow.UserRepository().GetByTelegramIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	oldTotal := user.TotalPoints
	newTotal := compute(oldTotal)

	if err := uow.UserRepository().UpdateTotalPoints(ctx, userID, newTotal); err != nil {
		return nil, fmt.Errorf("failed to update total: %w", err)
	}

	entry := &models.PointsHistory{
		UserID:       userID,
		AdminID:      adminID,
		PointsChange: newTotal - oldTotal,
		ActionType:   action,
		OldTotal:     oldTotal,
		NewTotal:     newTotal,
		Season:       season.SeasonNumber,
	}
	if reason != "" {
		entry.Reason = &reason
	}

	if err := uow.PointsHistoryRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.PointsAdjustedEvent{
		UserID:   userID,
		AdminID:  adminID,
		Action:   action,
		OldTotal: oldTotal,
		NewTotal: newTotal,
		Reason:   reason,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":   userID,
		"adminID":  adminID,
		"action":   action,
		"oldTotal": oldTotal,
		"newTotal": newTotal,
	}).Info("Points adjusted")

	return &models.AdjustmentResult{
		OldTotal: oldTotal,
		NewTotal: newTotal,
		Change:   newTotal - oldTotal,
	}, nil
}

// GetHistory returns ledger entries, for one user when userID is non-zero
// or across all users otherwise.
func (s *pointsService) GetHistory(ctx context.Context, userID int64, limit int) ([]*models.PointsHistory, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if userID != 0 {
		entries, err := uow.PointsHistoryRepository().GetByUser(ctx, userID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to get points history: %w", err)
		}
		return entries, nil
	}

	entries, err := uow.PointsHistoryRepository().GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get points history: %w", err)
	}
	return entries, nil
}
