package service

import (
	"context"
	"testing"

	"tipster/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStatsService_GetUserSeasonStats_ActiveSeasonIsLive(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPredictionRepo := new(MockPredictionRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockResultRepo := new(MockSeasonResultRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, mockPredictionRepo, mockSeasonRepo, mockResultRepo, nil, nil, nil)

	service := NewStatsService(mockFactory)

	season := 3
	user := &models.User{TelegramID: 100, TotalPoints: 17, CurrentSeason: season}
	stats := &models.PredictionStats{TotalPredictions: 8, ExactPredictions: 2, ClosePredictions: 3, OutcomePredictions: 1}
	standings := []*models.SeasonResult{
		{UserID: 200, Position: 1},
		{UserID: 100, Position: 2},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("GetActive", ctx).Return(&models.Season{SeasonNumber: season, IsActive: true}, nil)
	mockUserRepo.On("GetByTelegramID", ctx, int64(100)).Return(user, nil)
	mockPredictionRepo.On("GetUserStats", ctx, int64(100), &season).Return(stats, nil)
	mockUserRepo.On("GetSeasonStandings", ctx, season).Return(standings, nil)

	result, err := service.GetUserSeasonStats(ctx, 100, season)

	assert.NoError(t, err)
	assert.True(t, result.IsCurrent)
	assert.Equal(t, int64(17), result.FinalPoints)
	assert.Equal(t, 2, result.Position)
	assert.Equal(t, 8, result.TotalPredictions)
	mockResultRepo.AssertNotCalled(t, "GetByUserAndSeason", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatsService_GetUserSeasonStats_ClosedSeasonFromArchive(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockResultRepo := new(MockSeasonResultRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockSeasonRepo, mockResultRepo, nil, nil, nil)

	service := NewStatsService(mockFactory)

	archived := &models.SeasonResult{
		SeasonNumber:     1,
		UserID:           100,
		FinalPoints:      44,
		Position:         1,
		TotalPredictions: 20,
		ExactPredictions: 6,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("GetActive", ctx).Return(&models.Season{SeasonNumber: 3, IsActive: true}, nil)
	mockResultRepo.On("GetByUserAndSeason", ctx, int64(100), 1).Return(archived, nil)

	result, err := service.GetUserSeasonStats(ctx, 100, 1)

	assert.NoError(t, err)
	assert.False(t, result.IsCurrent)
	assert.Equal(t, int64(44), result.FinalPoints)
	assert.Equal(t, 1, result.Position)
	assert.Equal(t, 6, result.ExactPredictions)
	mockUserRepo.AssertNotCalled(t, "GetSeasonStandings", mock.Anything, mock.Anything)
}

func TestStatsService_GetUserSeasonStats_NoArchiveRow(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSeasonRepo := new(MockSeasonRepository)
	mockResultRepo := new(MockSeasonResultRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockSeasonRepo, mockResultRepo, nil, nil, nil)

	service := NewStatsService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("GetActive", ctx).Return(&models.Season{SeasonNumber: 2}, nil)
	mockResultRepo.On("GetByUserAndSeason", ctx, int64(100), 1).Return(nil, nil)

	result, err := service.GetUserSeasonStats(ctx, 100, 1)

	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestStatsService_GetLeaderboard(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil)

	service := NewStatsService(mockFactory)

	entries := []*models.LeaderboardEntry{
		{TelegramID: 100, TotalPoints: 30, Position: 1},
		{TelegramID: 200, TotalPoints: 12, Position: 2},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetLeaderboard", ctx, 10).Return(entries, nil)

	result, err := service.GetLeaderboard(ctx, 10)

	assert.NoError(t, err)
	assert.Equal(t, entries, result)
}
