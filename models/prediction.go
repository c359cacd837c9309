package models

import (
	"fmt"
	"time"
)

// Prediction is a user's predicted score for one match. There is at most
// one prediction per (user, match) pair; the user may overwrite it freely
// until kickoff.
//
// PointsEarned and Season are nil until settlement. SettledAt is the
// settlement marker: once set, the award is final and a retried settlement
// run skips this row.
type Prediction struct {
	ID           int64      `db:"id"`
	UserID       int64      `db:"user_id"`
	MatchID      int64      `db:"match_id"`
	PredictionA  int        `db:"prediction_a"`
	PredictionB  int        `db:"prediction_b"`
	PointsEarned *int       `db:"points_earned"`
	Season       *int       `db:"season"`
	SettledAt    *time.Time `db:"settled_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// IsSettled reports whether this prediction has already been awarded points.
func (p *Prediction) IsSettled() bool {
	return p.SettledAt != nil
}

// Score returns the predicted scoreline in "a:b" form.
func (p *Prediction) Score() string {
	return fmt.Sprintf("%d:%d", p.PredictionA, p.PredictionB)
}

// PredictionWithUser is a prediction joined with the predicting user's
// name fields, as loaded for settlement reports and match overviews.
type PredictionWithUser struct {
	Prediction
	Username  string `db:"username"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}
