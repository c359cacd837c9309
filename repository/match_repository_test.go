package repository

import (
	"context"
	"testing"
	"time"

	"tipster/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRepository_MarkFinished(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMatchRepository(testDB.DB)
	ctx := context.Background()

	match := testutil.CreateTestMatch("Arsenal", "Chelsea", time.Hour)
	require.NoError(t, repo.Create(ctx, match))

	t.Run("first finish claims the match", func(t *testing.T) {
		claimed, err := repo.MarkFinished(ctx, match.ID, 2, 1)
		require.NoError(t, err)
		assert.True(t, claimed)

		stored, err := repo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsFinished)
		a, b := stored.FinalScore()
		assert.Equal(t, 2, a)
		assert.Equal(t, 1, b)
	})

	t.Run("second finish is rejected and keeps the original score", func(t *testing.T) {
		claimed, err := repo.MarkFinished(ctx, match.ID, 5, 0)
		require.NoError(t, err)
		assert.False(t, claimed)

		stored, err := repo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		a, b := stored.FinalScore()
		assert.Equal(t, 2, a)
		assert.Equal(t, 1, b)
	})

	t.Run("unknown match reports false", func(t *testing.T) {
		claimed, err := repo.MarkFinished(ctx, 9999, 1, 0)
		require.NoError(t, err)
		assert.False(t, claimed)
	})
}

func TestMatchRepository_GetUpcoming(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMatchRepository(testDB.DB)
	ctx := context.Background()

	later := testutil.CreateTestMatch("Spurs", "West Ham", 3*time.Hour)
	require.NoError(t, repo.Create(ctx, later))
	sooner := testutil.CreateTestMatch("Arsenal", "Chelsea", time.Hour)
	require.NoError(t, repo.Create(ctx, sooner))
	finished := testutil.CreateTestMatch("Liverpool", "Everton", 2*time.Hour)
	require.NoError(t, repo.Create(ctx, finished))
	_, err := repo.MarkFinished(ctx, finished.ID, 1, 1)
	require.NoError(t, err)

	matches, err := repo.GetUpcoming(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, sooner.ID, matches[0].ID)
	assert.Equal(t, later.ID, matches[1].ID)
}

func TestMatchRepository_GetDueForReminder(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMatchRepository(testDB.DB)
	notificationRepo := NewMatchNotificationRepository(testDB.DB)
	ctx := context.Background()

	now := time.Now()
	inWindow := testutil.CreateTestMatch("Arsenal", "Chelsea", 30*time.Minute)
	require.NoError(t, repo.Create(ctx, inWindow))
	tooFar := testutil.CreateTestMatch("Spurs", "West Ham", 3*time.Hour)
	require.NoError(t, repo.Create(ctx, tooFar))
	notified := testutil.CreateTestMatch("Liverpool", "Everton", 45*time.Minute)
	require.NoError(t, repo.Create(ctx, notified))
	require.NoError(t, notificationRepo.MarkSent(ctx, notified.ID, 2))

	due, err := repo.GetDueForReminder(ctx, now.Add(5*time.Minute), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, inWindow.ID, due[0].ID)

	t.Run("marking is idempotent", func(t *testing.T) {
		require.NoError(t, notificationRepo.MarkSent(ctx, inWindow.ID, 0))
		require.NoError(t, notificationRepo.MarkSent(ctx, inWindow.ID, 3))

		due, err := repo.GetDueForReminder(ctx, now.Add(5*time.Minute), now.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, due)
	})
}
