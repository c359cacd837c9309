package service

import (
	"context"
	"fmt"
	"time"

	"tipster/events"
	"tipster/models"

	log "github.com/sirupsen/logrus"
)

type seasonService struct {
	uowFactory UnitOfWorkFactory
}

// NewSeasonService creates a new season service
func NewSeasonService(uowFactory UnitOfWorkFactory) SeasonService {
	return &seasonService{
		uowFactory: uowFactory,
	}
}

// CloseSeason archives the active season's standings, resets every user
// and opens the next season. The whole rollover is one transaction: if any
// step fails the prior season stays active and untouched. The exclusive
// lock on the active season row keeps settlement and points adjustments
// out for the duration, so no points land in the wrong season.
func (s *seasonService) CloseSeason(ctx context.Context, newName string) (*models.SeasonRollover, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	current, err := uow.SeasonRepository().LockActive(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to lock active season: %w", err)
	}
	if current == nil {
		return nil, ErrNoActiveSeason
	}

	newNumber := current.SeasonNumber + 1
	if newName == "" {
		newName = fmt.Sprintf("Season %d", newNumber)
	}

	// Snapshot standings before anything is reset.
	standings, err := uow.UserRepository().GetSeasonStandings(ctx, current.SeasonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to compute standings: %w", err)
	}

	if len(standings) > 0 {
		if err := uow.SeasonResultRepository().CreateBatch(ctx, standings); err != nil {
			return nil, fmt.Errorf("failed to archive standings: %w", err)
		}
	}

	if err := uow.SeasonRepository().Close(ctx, current.SeasonNumber, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to close season %d: %w", current.SeasonNumber, err)
	}

	if _, err := uow.SeasonRepository().Create(ctx, newNumber, newName); err != nil {
		return nil, fmt.Errorf("failed to open season %d: %w", newNumber, err)
	}

	usersReset, err := uow.UserRepository().ResetAllForSeason(ctx, newNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to reset users: %w", err)
	}

	rollover := &models.SeasonRollover{
		ClosedSeasonNumber: current.SeasonNumber,
		NewSeasonNumber:    newNumber,
		NewSeasonName:      newName,
		UsersReset:         usersReset,
	}

	uow.EventBus().Publish(events.SeasonClosedEvent{Rollover: rollover})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"closedSeason": rollover.ClosedSeasonNumber,
		"newSeason":    rollover.NewSeasonNumber,
		"usersReset":   rollover.UsersReset,
	}).Info("Season rolled over")

	return rollover, nil
}

// GetActiveSeason returns the active season
func (s *seasonService) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	season, err := uow.SeasonRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}
	if season == nil {
		return nil, ErrNoActiveSeason
	}

	return season, nil
}

// GetSeasonHistory returns past and present seasons, newest first
func (s *seasonService) GetSeasonHistory(ctx context.Context, limit int) ([]*models.Season, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	seasons, err := uow.SeasonRepository().GetHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get season history: %w", err)
	}

	return seasons, nil
}
