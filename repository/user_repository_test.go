package repository

import (
	"context"
	"testing"

	"tipster/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		user, err := repo.GetByTelegramID(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		created, err := repo.Create(ctx, 100, "tipper", "Tip", "Per", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(100), created.TelegramID)
		assert.Equal(t, int64(0), created.TotalPoints)
		assert.Equal(t, 1, created.CurrentSeason)
		assert.False(t, created.CreatedAt.IsZero())

		user, err := repo.GetByTelegramID(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "tipper", user.Username)
	})

	t.Run("duplicate telegram id rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, 100, "again", "", "", 1)
		assert.Error(t, err)
	})
}

func TestUserRepository_Points(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, "tipper", "", "", 1)
	require.NoError(t, err)

	t.Run("add points accumulates", func(t *testing.T) {
		require.NoError(t, repo.AddPoints(ctx, 100, 3))
		require.NoError(t, repo.AddPoints(ctx, 100, 2))

		user, err := repo.GetByTelegramID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(5), user.TotalPoints)
	})

	t.Run("update total overwrites", func(t *testing.T) {
		require.NoError(t, repo.UpdateTotalPoints(ctx, 100, 42))

		user, err := repo.GetByTelegramID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.TotalPoints)
	})

	t.Run("unknown user errors", func(t *testing.T) {
		assert.Error(t, repo.AddPoints(ctx, 404, 1))
		assert.Error(t, repo.UpdateTotalPoints(ctx, 404, 1))
	})
}

func TestUserRepository_GetLeaderboard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	for _, u := range []struct {
		id     int64
		name   string
		points int64
	}{
		{300, "third", 5},
		{100, "tied-low-id", 10},
		{200, "tied-high-id", 10},
	} {
		_, err := repo.Create(ctx, u.id, u.name, "", "", 1)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateTotalPoints(ctx, u.id, u.points))
	}

	t.Run("ordered with deterministic tie break", func(t *testing.T) {
		entries, err := repo.GetLeaderboard(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		// Equal points rank by telegram id ascending.
		assert.Equal(t, int64(100), entries[0].TelegramID)
		assert.Equal(t, 1, entries[0].Position)
		assert.Equal(t, int64(200), entries[1].TelegramID)
		assert.Equal(t, 2, entries[1].Position)
		assert.Equal(t, int64(300), entries[2].TelegramID)
		assert.Equal(t, 3, entries[2].Position)
	})

	t.Run("limit caps rows", func(t *testing.T) {
		entries, err := repo.GetLeaderboard(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestUserRepository_ResetAllForSeason(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		_, err := repo.Create(ctx, id, "user", "", "", 1)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateTotalPoints(ctx, id, id*10))
	}

	reset, err := repo.ResetAllForSeason(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, reset)

	for id := int64(1); id <= 3; id++ {
		user, err := repo.GetByTelegramID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(0), user.TotalPoints)
		assert.Equal(t, 2, user.CurrentSeason)
	}
}

func TestUserRepository_Search(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, "alice_tips", "Alice", "Smith", 1)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 200, "bob", "Robert", "Jones", 1)
	require.NoError(t, err)

	t.Run("matches username fragment case-insensitively", func(t *testing.T) {
		users, err := repo.Search(ctx, "ALICE")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, int64(100), users[0].TelegramID)
	})

	t.Run("matches first name", func(t *testing.T) {
		users, err := repo.Search(ctx, "robert")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, int64(200), users[0].TelegramID)
	})

	t.Run("no match", func(t *testing.T) {
		users, err := repo.Search(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}
