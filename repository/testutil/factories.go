package testutil

import (
	"time"

	"tipster/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(telegramID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		TelegramID:    telegramID,
		Username:      username,
		FirstName:     "Test",
		LastName:      "User",
		CurrentSeason: 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CreateTestUserWithPoints creates a test user with a specific running total
func CreateTestUserWithPoints(telegramID int64, username string, points int64) *models.User {
	user := CreateTestUser(telegramID, username)
	user.TotalPoints = points
	return user
}

// CreateTestMatch creates an unfinished test match kicking off in the future
func CreateTestMatch(teamA, teamB string, kickoffIn time.Duration) *models.Match {
	return &models.Match{
		TeamA:       teamA,
		TeamB:       teamB,
		KickoffTime: time.Now().Add(kickoffIn).Truncate(time.Second),
	}
}

// CreateTestPrediction creates an unsettled prediction
func CreateTestPrediction(userID, matchID int64, predA, predB int) *models.Prediction {
	return &models.Prediction{
		UserID:      userID,
		MatchID:     matchID,
		PredictionA: predA,
		PredictionB: predB,
	}
}

// CreateTestPointsHistory creates a ledger entry with default values
func CreateTestPointsHistory(userID, adminID int64, action models.PointsAction) *models.PointsHistory {
	return &models.PointsHistory{
		UserID:       userID,
		AdminID:      adminID,
		PointsChange: 5,
		ActionType:   action,
		OldTotal:     0,
		NewTotal:     5,
		Season:       1,
	}
}

// CreateTestAdmin creates an active admin
func CreateTestAdmin(userID int64, username string, super bool) *models.Admin {
	return &models.Admin{
		UserID:       userID,
		Username:     username,
		IsSuperAdmin: super,
		IsActive:     true,
	}
}
