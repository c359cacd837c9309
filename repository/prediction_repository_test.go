package repository

import (
	"context"
	"testing"
	"time"

	"tipster/models"
	"tipster/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPredictionFixtures(t *testing.T, testDB *testutil.TestDatabase) (*UserRepository, *MatchRepository, *PredictionRepository, *models.Match) {
	t.Helper()

	ctx := context.Background()
	userRepo := NewUserRepository(testDB.DB)
	matchRepo := NewMatchRepository(testDB.DB)
	predictionRepo := NewPredictionRepository(testDB.DB)

	_, err := userRepo.Create(ctx, 100, "alice", "Alice", "", 1)
	require.NoError(t, err)
	_, err = userRepo.Create(ctx, 200, "bob", "Bob", "", 1)
	require.NoError(t, err)

	match := testutil.CreateTestMatch("Arsenal", "Chelsea", time.Hour)
	require.NoError(t, matchRepo.Create(ctx, match))
	require.NotZero(t, match.ID)

	return userRepo, matchRepo, predictionRepo, match
}

func TestPredictionRepository_Upsert(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	_, _, repo, match := setupPredictionFixtures(t, testDB)
	ctx := context.Background()

	t.Run("insert", func(t *testing.T) {
		p := testutil.CreateTestPrediction(100, match.ID, 2, 1)
		require.NoError(t, repo.Upsert(ctx, p))
		assert.NotZero(t, p.ID)
	})

	t.Run("overwrite keeps one row per user and match", func(t *testing.T) {
		p := testutil.CreateTestPrediction(100, match.ID, 0, 0)
		require.NoError(t, repo.Upsert(ctx, p))

		stored, err := repo.GetByUserAndMatch(ctx, 100, match.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 0, stored.PredictionA)
		assert.Equal(t, 0, stored.PredictionB)
		assert.False(t, stored.IsSettled())

		all, err := repo.GetByMatch(ctx, match.ID)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("settled prediction is immutable", func(t *testing.T) {
		stored, err := repo.GetByUserAndMatch(ctx, 100, match.ID)
		require.NoError(t, err)

		settled, err := repo.Settle(ctx, stored.ID, 3, 1)
		require.NoError(t, err)
		require.True(t, settled)

		err = repo.Upsert(ctx, testutil.CreateTestPrediction(100, match.ID, 5, 5))
		assert.Error(t, err)

		unchanged, err := repo.GetByUserAndMatch(ctx, 100, match.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, unchanged.PredictionA)
	})
}

func TestPredictionRepository_Settle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	_, _, repo, match := setupPredictionFixtures(t, testDB)
	ctx := context.Background()

	p := testutil.CreateTestPrediction(100, match.ID, 2, 1)
	require.NoError(t, repo.Upsert(ctx, p))

	t.Run("first settle wins", func(t *testing.T) {
		settled, err := repo.Settle(ctx, p.ID, 3, 1)
		require.NoError(t, err)
		assert.True(t, settled)

		stored, err := repo.GetByUserAndMatch(ctx, 100, match.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.PointsEarned)
		assert.Equal(t, 3, *stored.PointsEarned)
		require.NotNil(t, stored.Season)
		assert.Equal(t, 1, *stored.Season)
		assert.True(t, stored.IsSettled())
	})

	t.Run("second settle is a no-op", func(t *testing.T) {
		settled, err := repo.Settle(ctx, p.ID, 1, 1)
		require.NoError(t, err)
		assert.False(t, settled)

		stored, err := repo.GetByUserAndMatch(ctx, 100, match.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, *stored.PointsEarned)
	})
}

func TestPredictionRepository_GetUnsettledByMatch(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	_, _, repo, match := setupPredictionFixtures(t, testDB)
	ctx := context.Background()

	first := testutil.CreateTestPrediction(100, match.ID, 2, 1)
	require.NoError(t, repo.Upsert(ctx, first))
	second := testutil.CreateTestPrediction(200, match.ID, 1, 1)
	require.NoError(t, repo.Upsert(ctx, second))

	settled, err := repo.Settle(ctx, first.ID, 3, 1)
	require.NoError(t, err)
	require.True(t, settled)

	pending, err := repo.GetUnsettledByMatch(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(200), pending[0].UserID)
	assert.Equal(t, "bob", pending[0].Username)
}

func TestPredictionRepository_GetUserStats(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	_, matchRepo, repo, match := setupPredictionFixtures(t, testDB)
	ctx := context.Background()

	second := testutil.CreateTestMatch("Liverpool", "Everton", 2*time.Hour)
	require.NoError(t, matchRepo.Create(ctx, second))
	third := testutil.CreateTestMatch("Spurs", "West Ham", 3*time.Hour)
	require.NoError(t, matchRepo.Create(ctx, third))

	// Two settled predictions in season 1, one in season 2, one pending.
	p1 := testutil.CreateTestPrediction(100, match.ID, 2, 1)
	require.NoError(t, repo.Upsert(ctx, p1))
	p2 := testutil.CreateTestPrediction(100, second.ID, 1, 1)
	require.NoError(t, repo.Upsert(ctx, p2))
	p3 := testutil.CreateTestPrediction(100, third.ID, 0, 1)
	require.NoError(t, repo.Upsert(ctx, p3))
	pending := testutil.CreateTestPrediction(200, match.ID, 0, 0)
	require.NoError(t, repo.Upsert(ctx, pending))

	for _, s := range []struct {
		id     int64
		points int
		season int
	}{
		{p1.ID, 3, 1},
		{p2.ID, 0, 1},
		{p3.ID, 2, 2},
	} {
		ok, err := repo.Settle(ctx, s.id, s.points, s.season)
		require.NoError(t, err)
		require.True(t, ok)
	}

	t.Run("single season", func(t *testing.T) {
		season := 1
		stats, err := repo.GetUserStats(ctx, 100, &season)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalPredictions)
		assert.Equal(t, 1, stats.ExactPredictions)
		assert.Equal(t, 1, stats.MissedPredictions)
		assert.Equal(t, int64(3), stats.PointsEarned)
	})

	t.Run("all time", func(t *testing.T) {
		stats, err := repo.GetUserStats(ctx, 100, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalPredictions)
		assert.Equal(t, 1, stats.ClosePredictions)
		assert.Equal(t, int64(5), stats.PointsEarned)
	})

	t.Run("pending predictions are excluded", func(t *testing.T) {
		stats, err := repo.GetUserStats(ctx, 200, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalPredictions)
		assert.Equal(t, int64(0), stats.PointsEarned)
	})
}

func TestPredictionRepository_GetUsersWithoutPrediction(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	_, _, repo, match := setupPredictionFixtures(t, testDB)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testutil.CreateTestPrediction(100, match.ID, 2, 1)))

	missing, err := repo.GetUsersWithoutPrediction(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, int64(200), missing[0].TelegramID)
}
