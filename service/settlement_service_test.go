package service

import (
	"context"
	"errors"
	"testing"

	"tipster/events"
	"tipster/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func intPtr(v int) *int { return &v }

func finishedMatch(id int64, resultA, resultB int) *models.Match {
	return &models.Match{
		ID:         id,
		TeamA:      "Arsenal",
		TeamB:      "Chelsea",
		ResultA:    intPtr(resultA),
		ResultB:    intPtr(resultB),
		IsFinished: true,
	}
}

func pendingPrediction(id, userID int64, predA, predB int) *models.PredictionWithUser {
	return &models.PredictionWithUser{
		Prediction: models.Prediction{
			ID:          id,
			UserID:      userID,
			MatchID:     10,
			PredictionA: predA,
			PredictionB: predB,
		},
		Username: "user",
	}
}

func TestSettlementService_SettleMatch_AwardsAllBranches(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMatchRepo := new(MockMatchRepository)
	mockPredictionRepo := new(MockPredictionRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, mockMatchRepo, mockPredictionRepo, mockSeasonRepo, nil, nil, nil, nil)

	service := NewSettlementService(mockFactory, events.NewBus())

	season := &models.Season{SeasonNumber: 2, IsActive: true}
	pending := []*models.PredictionWithUser{
		pendingPrediction(1, 100, 2, 1), // exact
		pendingPrediction(2, 200, 3, 2), // goal difference
		pendingPrediction(3, 300, 2, 0), // outcome only
		pendingPrediction(4, 400, 1, 1), // miss
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(season, nil)
	mockMatchRepo.On("MarkFinished", ctx, int64(10), 2, 1).Return(true, nil)
	mockMatchRepo.On("GetByID", ctx, int64(10)).Return(finishedMatch(10, 2, 1), nil)
	mockPredictionRepo.On("GetUnsettledByMatch", ctx, int64(10)).Return(pending, nil)

	mockPredictionRepo.On("Settle", ctx, int64(1), PointsExact, 2).Return(true, nil)
	mockPredictionRepo.On("Settle", ctx, int64(2), PointsClose, 2).Return(true, nil)
	mockPredictionRepo.On("Settle", ctx, int64(3), PointsOutcome, 2).Return(true, nil)
	mockPredictionRepo.On("Settle", ctx, int64(4), PointsMiss, 2).Return(true, nil)

	// Zero-point awards must not touch running totals.
	mockUserRepo.On("AddPoints", ctx, int64(100), int64(PointsExact)).Return(nil)
	mockUserRepo.On("AddPoints", ctx, int64(200), int64(PointsClose)).Return(nil)
	mockUserRepo.On("AddPoints", ctx, int64(300), int64(PointsOutcome)).Return(nil)

	report, err := service.SettleMatch(ctx, 10, 2, 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), report.MatchID)
	assert.Equal(t, 2, report.ResultA)
	assert.Equal(t, 1, report.ResultB)
	assert.Len(t, report.Awards, 4)
	assert.Equal(t, PointsExact, report.Awards[0].Points)
	assert.Equal(t, PointsClose, report.Awards[1].Points)
	assert.Equal(t, PointsOutcome, report.Awards[2].Points)
	assert.Equal(t, PointsMiss, report.Awards[3].Points)

	mockMatchRepo.AssertExpectations(t)
	mockPredictionRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockUserRepo.AssertNotCalled(t, "AddPoints", ctx, int64(400), mock.Anything)
}

func TestSettlementService_SettleMatch_InvalidResult(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewSettlementService(mockFactory, events.NewBus())

	report, err := service.SettleMatch(ctx, 10, -1, 2)

	assert.ErrorIs(t, err, ErrInvalidResult)
	assert.Nil(t, report)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestSettlementService_SettleMatch_AlreadySettled(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMatchRepo := new(MockMatchRepository)
	mockPredictionRepo := new(MockPredictionRepository)
	mockSeasonRepo := new(MockSeasonRepository)

	mockUoW.SetRepositories(nil, mockMatchRepo, mockPredictionRepo, mockSeasonRepo, nil, nil, nil, nil)

	service := NewSettlementService(mockFactory, events.NewBus())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 2}, nil)
	mockMatchRepo.On("MarkFinished", ctx, int64(10), 2, 1).Return(false, nil)
	mockMatchRepo.On("GetByID", ctx, int64(10)).Return(finishedMatch(10, 2, 1), nil)
	mockPredictionRepo.On("GetUnsettledByMatch", ctx, int64(10)).Return([]*models.PredictionWithUser{}, nil)

	report, err := service.SettleMatch(ctx, 10, 2, 1)

	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.Nil(t, report)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestSettlementService_SettleMatch_MatchNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMatchRepo := new(MockMatchRepository)
	mockSeasonRepo := new(MockSeasonRepository)

	mockUoW.SetRepositories(nil, mockMatchRepo, nil, mockSeasonRepo, nil, nil, nil, nil)

	service := NewSettlementService(mockFactory, events.NewBus())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 1}, nil)
	mockMatchRepo.On("MarkFinished", ctx, int64(99), 1, 0).Return(false, nil)
	mockMatchRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	report, err := service.SettleMatch(ctx, 99, 1, 0)

	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.Nil(t, report)
}

func TestSettlementService_SettleMatch_ResumeUsesStoredResult(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMatchRepo := new(MockMatchRepository)
	mockPredictionRepo := new(MockPredictionRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, mockMatchRepo, mockPredictionRepo, mockSeasonRepo, nil, nil, nil, nil)

	service := NewSettlementService(mockFactory, events.NewBus())

	// Match was finished 2:1 by an interrupted run; the retry passes a
	// different score, which must be ignored in favor of the stored one.
	pending := []*models.PredictionWithUser{pendingPrediction(7, 500, 2, 1)}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 3}, nil)
	mockMatchRepo.On("MarkFinished", ctx, int64(10), 5, 5).Return(false, nil)
	mockMatchRepo.On("GetByID", ctx, int64(10)).Return(finishedMatch(10, 2, 1), nil)
	mockPredictionRepo.On("GetUnsettledByMatch", ctx, int64(10)).Return(pending, nil)

	mockPredictionRepo.On("Settle", ctx, int64(7), PointsExact, 3).Return(true, nil)
	mockUserRepo.On("AddPoints", ctx, int64(500), int64(PointsExact)).Return(nil)

	report, err := service.SettleMatch(ctx, 10, 5, 5)

	assert.NoError(t, err)
	assert.Equal(t, 2, report.ResultA)
	assert.Equal(t, 1, report.ResultB)
	assert.Len(t, report.Awards, 1)
	assert.Equal(t, PointsExact, report.Awards[0].Points)

	mockPredictionRepo.AssertExpectations(t)
}

func TestSettlementService_SettleMatch_PartialFailure(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMatchRepo := new(MockMatchRepository)
	mockPredictionRepo := new(MockPredictionRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, mockMatchRepo, mockPredictionRepo, mockSeasonRepo, nil, nil, nil, nil)

	service := NewSettlementService(mockFactory, events.NewBus())

	dbErr := errors.New("connection reset")
	pending := []*models.PredictionWithUser{
		pendingPrediction(1, 100, 2, 1),
		pendingPrediction(2, 200, 1, 1),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 1}, nil)
	mockMatchRepo.On("MarkFinished", ctx, int64(10), 2, 1).Return(true, nil)
	mockMatchRepo.On("GetByID", ctx, int64(10)).Return(finishedMatch(10, 2, 1), nil)
	mockPredictionRepo.On("GetUnsettledByMatch", ctx, int64(10)).Return(pending, nil)

	mockPredictionRepo.On("Settle", ctx, int64(1), PointsExact, 1).Return(true, nil)
	mockUserRepo.On("AddPoints", ctx, int64(100), int64(PointsExact)).Return(nil)
	mockPredictionRepo.On("Settle", ctx, int64(2), PointsMiss, 1).Return(false, dbErr)

	report, err := service.SettleMatch(ctx, 10, 2, 1)

	var partial *PartialSettlementError
	assert.ErrorAs(t, err, &partial)
	assert.Equal(t, []int64{1}, partial.SettledIDs)
	assert.Equal(t, []int64{2}, partial.FailedIDs)
	assert.ErrorIs(t, err, dbErr)

	// The successful award is still in the report.
	assert.Len(t, report.Awards, 1)
	assert.Equal(t, int64(100), report.Awards[0].UserID)
}

func TestSettlementService_SettleMatch_LostRaceSkipsQuietly(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMatchRepo := new(MockMatchRepository)
	mockPredictionRepo := new(MockPredictionRepository)
	mockSeasonRepo := new(MockSeasonRepository)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, mockMatchRepo, mockPredictionRepo, mockSeasonRepo, nil, nil, nil, nil)

	service := NewSettlementService(mockFactory, events.NewBus())

	pending := []*models.PredictionWithUser{pendingPrediction(1, 100, 2, 1)}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSeasonRepo.On("LockActive", ctx, false).Return(&models.Season{SeasonNumber: 1}, nil)
	mockMatchRepo.On("MarkFinished", ctx, int64(10), 2, 1).Return(true, nil)
	mockMatchRepo.On("GetByID", ctx, int64(10)).Return(finishedMatch(10, 2, 1), nil)
	mockPredictionRepo.On("GetUnsettledByMatch", ctx, int64(10)).Return(pending, nil)

	// Another run settled the prediction between load and award.
	mockPredictionRepo.On("Settle", ctx, int64(1), PointsExact, 1).Return(false, nil)

	report, err := service.SettleMatch(ctx, 10, 2, 1)

	assert.NoError(t, err)
	assert.Empty(t, report.Awards)
	mockUserRepo.AssertNotCalled(t, "AddPoints", mock.Anything, mock.Anything, mock.Anything)
}
