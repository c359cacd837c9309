package models

import (
	"fmt"
	"time"
)

// Match represents a scheduled football match between two teams.
// ResultA/ResultB are nil until the match is settled; IsFinished is
// monotonic and flips to true exactly once at settlement.
type Match struct {
	ID          int64     `db:"id"`
	TeamA       string    `db:"team_a"`
	TeamB       string    `db:"team_b"`
	KickoffTime time.Time `db:"kickoff_time"`
	ResultA     *int      `db:"result_a"`
	ResultB     *int      `db:"result_b"`
	IsFinished  bool      `db:"is_finished"`
	CreatedAt   time.Time `db:"created_at"`
}

// Title returns the match in "TeamA - TeamB" form.
func (m *Match) Title() string {
	return fmt.Sprintf("%s - %s", m.TeamA, m.TeamB)
}

// AcceptsPredictions reports whether predictions can still be created or
// changed for this match.
func (m *Match) AcceptsPredictions(now time.Time) bool {
	return !m.IsFinished && now.Before(m.KickoffTime)
}

// FinalScore returns the stored result. Valid only when IsFinished is true.
func (m *Match) FinalScore() (int, int) {
	if m.ResultA == nil || m.ResultB == nil {
		return 0, 0
	}
	return *m.ResultA, *m.ResultB
}
