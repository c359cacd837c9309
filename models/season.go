package models

import (
	"time"
)

// Season is a bounded scoring period. Exactly one season is active at any
// time; season numbers are sequential starting at 1.
type Season struct {
	ID           int64      `db:"id"`
	SeasonNumber int        `db:"season_number"`
	Name         string     `db:"name"`
	StartDate    time.Time  `db:"start_date"`
	EndDate      *time.Time `db:"end_date"`
	IsActive     bool       `db:"is_active"`
	CreatedAt    time.Time  `db:"created_at"`
}

// SeasonResult is one archived standings row, written once per
// (season, user) when the season is closed and never mutated afterwards.
type SeasonResult struct {
	ID                 int64     `db:"id"`
	SeasonNumber       int       `db:"season_number"`
	UserID             int64     `db:"user_id"`
	FinalPoints        int64     `db:"final_points"`
	Position           int       `db:"position"`
	TotalPredictions   int       `db:"total_predictions"`
	ExactPredictions   int       `db:"exact_predictions"`
	ClosePredictions   int       `db:"close_predictions"`
	OutcomePredictions int       `db:"outcome_predictions"`
	CreatedAt          time.Time `db:"created_at"`
}

// SeasonRollover is the outcome of closing a season, consumed by the
// notification layer to announce the new season.
type SeasonRollover struct {
	ClosedSeasonNumber int
	NewSeasonNumber    int
	NewSeasonName      string
	UsersReset         int
}
