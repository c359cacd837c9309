package models

// PredictionStats aggregates a user's prediction record per category.
type PredictionStats struct {
	TotalPredictions   int   `db:"total_predictions"`
	ExactPredictions   int   `db:"exact_predictions"`
	ClosePredictions   int   `db:"close_predictions"`
	OutcomePredictions int   `db:"outcome_predictions"`
	MissedPredictions  int   `db:"missed_predictions"`
	PointsEarned       int64 `db:"points_earned"`
}

// LeaderboardEntry is one row of the live standings.
type LeaderboardEntry struct {
	TelegramID  int64  `db:"telegram_id"`
	Username    string `db:"username"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	TotalPoints int64  `db:"total_points"`
	Position    int    `db:"position"`
}

// UserSeasonStats is a user's standing for one season, served from the
// live tables while the season is running and from the archive afterwards.
type UserSeasonStats struct {
	SeasonNumber       int
	FinalPoints        int64
	Position           int
	TotalPredictions   int
	ExactPredictions   int
	ClosePredictions   int
	OutcomePredictions int
	IsCurrent          bool
}
