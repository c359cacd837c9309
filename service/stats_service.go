package service

import (
	"context"
	"fmt"

	"tipster/models"
)

type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

// GetLeaderboard returns the live standings
func (s *statsService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.UserRepository().GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return entries, nil
}

// GetUserStats aggregates a user's record for the active season
func (s *statsService) GetUserStats(ctx context.Context, userID int64) (*models.PredictionStats, error) {
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

	stats, err := uow.PredictionRepository().GetUserStats(ctx, userID, &season.SeasonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return stats, nil
}

// GetUserSeasonStats resolves a user's standing for a season: live data for
// the active season, the archive for closed ones.
func (s *statsService) GetUserSeasonStats(ctx context.Context, userID int64, seasonNumber int) (*models.UserSeasonStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	active, err := uow.SeasonRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}

	if active != nil && active.SeasonNumber == seasonNumber {
		return s.liveSeasonStats(ctx, uow, userID, seasonNumber)
	}

	result, err := uow.SeasonResultRepository().GetByUserAndSeason(ctx, userID, seasonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get season result: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	return &models.UserSeasonStats{
		SeasonNumber:       seasonNumber,
		FinalPoints:        result.FinalPoints,
		Position:           result.Position,
		TotalPredictions:   result.TotalPredictions,
		ExactPredictions:   result.ExactPredictions,
		ClosePredictions:   result.ClosePredictions,
		OutcomePredictions: result.OutcomePredictions,
		IsCurrent:          false,
	}, nil
}

func (s *statsService) liveSeasonStats(ctx context.Context, uow UnitOfWork, userID int64, seasonNumber int) (*models.UserSeasonStats, error) {
	user, err := uow.UserRepository().GetByTelegramID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	stats, err := uow.PredictionRepository().GetUserStats(ctx, userID, &seasonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	// Position is derived from the full standings; cheap at chat-bot scale.
	standings, err := uow.UserRepository().GetSeasonStandings(ctx, seasonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}
	position := 0
	for _, row := range standings {
		if row.UserID == userID {
			position = row.Position
			break
		}
	}

	return &models.UserSeasonStats{
		SeasonNumber:       seasonNumber,
		FinalPoints:        user.TotalPoints,
		Position:           position,
		TotalPredictions:   stats.TotalPredictions,
		ExactPredictions:   stats.ExactPredictions,
		ClosePredictions:   stats.ClosePredictions,
		OutcomePredictions: stats.OutcomePredictions,
		IsCurrent:          true,
	}, nil
}

// GetSeasonResults returns a closed season's archived standings
func (s *statsService) GetSeasonResults(ctx context.Context, seasonNumber, limit int) ([]*models.SeasonResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	results, err := uow.SeasonResultRepository().GetBySeason(ctx, seasonNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get season results: %w", err)
	}

	return results, nil
}
