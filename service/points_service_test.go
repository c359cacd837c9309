package service

import (
	"context"
	"testing"

	"tipster/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPointsService_AdjustPoints_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockHistoryRepo := new(MockPointsHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockSeasonRepo, nil, mockHistoryRepo, nil, nil)

	service := NewPointsService(mockFactory)

	user := &models.User{TelegramID: 100, TotalPoints: 10}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 2}, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(100)).Return(user, nil)
	mockUserRepo.On("UpdateTotalPoints", ctx, int64(100), int64(15)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(entry *models.PointsHistory) bool {
		return entry.UserID == 100 &&
			entry.AdminID == 999 &&
			entry.PointsChange == 5 &&
			entry.ActionType == models.PointsActionAdd &&
			entry.OldTotal == 10 &&
			entry.NewTotal == 15 &&
			entry.Season == 2 &&
			entry.Reason != nil && *entry.Reason == "bonus round"
	})).Return(nil)

	result, err := service.AdjustPoints(ctx, 100, 5, 999, "bonus round")

	assert.NoError(t, err)
	assert.Equal(t, int64(10), result.OldTotal)
	assert.Equal(t, int64(15), result.NewTotal)
	assert.Equal(t, int64(5), result.Change)

	mockUserRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestPointsService_AdjustPoints_NegativeDeltaChains(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockHistoryRepo := new(MockPointsHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockSeasonRepo, nil, mockHistoryRepo, nil, nil)

	service := NewPointsService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 1}, nil)

	// Two adjustments in sequence: +5 onto 10, then -3 onto the result.
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(100)).
		Return(&models.User{TelegramID: 100, TotalPoints: 10}, nil).Once()
	mockUserRepo.On("UpdateTotalPoints", ctx, int64(100), int64(15)).Return(nil).Once()
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(100)).
		Return(&models.User{TelegramID: 100, TotalPoints: 15}, nil).Once()
	mockUserRepo.On("UpdateTotalPoints", ctx, int64(100), int64(12)).Return(nil).Once()
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	first, err := service.AdjustPoints(ctx, 100, 5, 999, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(15), first.NewTotal)

	second, err := service.AdjustPoints(ctx, 100, -3, 999, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(15), second.OldTotal)
	assert.Equal(t, int64(12), second.NewTotal)
	assert.Equal(t, int64(-3), second.Change)

	mockUserRepo.AssertExpectations(t)
}

func TestPointsService_AdjustPoints_UserNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockSeasonRepo := new(MockSeasonRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockSeasonRepo, nil, nil, nil, nil)

	service := NewPointsService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 1}, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(404)).Return(nil, nil)

	result, err := service.AdjustPoints(ctx, 404, 5, 999, "")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestPointsService_SetPoints_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockHistoryRepo := new(MockPointsHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockSeasonRepo, nil, mockHistoryRepo, nil, nil)

	service := NewPointsService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 1}, nil)
	mockUserRepo.On("GetByTelegramIDForUpdate", ctx, int64(100)).
		Return(&models.User{TelegramID: 100, TotalPoints: 42}, nil)
	mockUserRepo.On("UpdateTotalPoints", ctx, int64(100), int64(0)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(entry *models.PointsHistory) bool {
		return entry.ActionType == models.PointsActionSet &&
			entry.OldTotal == 42 &&
			entry.NewTotal == 0 &&
			entry.PointsChange == -42 &&
			entry.Reason == nil
	})).Return(nil)

	result, err := service.SetPoints(ctx, 100, 0, 999, "")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), result.OldTotal)
	assert.Equal(t, int64(0), result.NewTotal)
	assert.Equal(t, int64(-42), result.Change)

	mockHistoryRepo.AssertExpectations(t)
}

func TestPointsService_SetPoints_NegativeRejected(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewPointsService(mockFactory)

	result, err := service.SetPoints(ctx, 100, -1, 999, "typo")

	assert.ErrorIs(t, err, ErrNegativeTotal)
	assert.Nil(t, result)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestPointsService_GetHistory_SingleUser(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockHistoryRepo := new(MockPointsHistoryRepository)

	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockHistoryRepo, nil, nil)

	service := NewPointsService(mockFactory)

	entries := []*models.PointsHistory{{ID: 1, UserID: 100}}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockHistoryRepo.On("GetByUser", ctx, int64(100), 10).Return(entries, nil)

	result, err := service.GetHistory(ctx, 100, 10)

	assert.NoError(t, err)
	assert.Equal(t, entries, result)
	mockHistoryRepo.AssertNotCalled(t, "GetRecent", mock.Anything, mock.Anything)
}
