package repository

import (
	"context"
	"fmt"
	"time"

	"tipster/database"
	"tipster/models"

	"github.com/jackc/pgx/v5"
)

const matchColumns = `id, team_a, team_b, kickoff_time, result_a, result_b, is_finished, created_at`

// MatchRepository implements the service.MatchRepository interface
type MatchRepository struct {
	q queryable
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{q: db.Pool}
}

// newMatchRepositoryWithTx creates a new match repository with a transaction
func newMatchRepositoryWithTx(tx queryable) *MatchRepository {
	return &MatchRepository{q: tx}
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	var match models.Match
	err := row.Scan(
		&match.ID,
		&match.TeamA,
		&match.TeamB,
		&match.KickoffTime,
		&match.ResultA,
		&match.ResultB,
		&match.IsFinished,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// Create creates a new match
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (team_a, team_b, kickoff_time)
		VALUES ($1, $2, $3)
		RETURNING id, is_finished, created_at
	`

	err := r.q.QueryRow(ctx, query, match.TeamA, match.TeamB, match.KickoffTime).Scan(
		&match.ID,
		&match.IsFinished,
		&match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match %s - %s: %w", match.TeamA, match.TeamB, err)
	}

	return nil
}

// GetByID retrieves a match by its ID
func (r *MatchRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}

	return match, nil
}

// GetUpcoming returns unfinished matches ordered by kickoff
func (r *MatchRepository) GetUpcoming(ctx context.Context) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE NOT is_finished
		ORDER BY kickoff_time ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return matches, nil
}

// MarkFinished records the final score and flips is_finished. The guard on
// is_finished makes concurrent settlement attempts resolve to exactly one
// winner; everyone else sees zero rows affected.
func (r *MatchRepository) MarkFinished(ctx context.Context, id int64, resultA, resultB int) (bool, error) {
	query := `
		UPDATE matches
		SET result_a = $1, result_b = $2, is_finished = TRUE
		WHERE id = $3 AND NOT is_finished
	`

	result, err := r.q.Exec(ctx, query, resultA, resultB, id)
	if err != nil {
		return false, fmt.Errorf("failed to finish match %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetDueForReminder returns unfinished matches kicking off inside the
// window that have no reminder row yet
func (r *MatchRepository) GetDueForReminder(ctx context.Context, from, until time.Time) ([]*models.Match, error) {
	query := `
		SELECT m.id, m.team_a, m.team_b, m.kickoff_time, m.result_a, m.result_b, m.is_finished, m.created_at
		FROM matches m
		LEFT JOIN match_notifications mn ON mn.match_id = m.id
		WHERE NOT m.is_finished
		  AND m.kickoff_time > $1
		  AND m.kickoff_time <= $2
		  AND mn.match_id IS NULL
		ORDER BY m.kickoff_time ASC
	`

	rows, err := r.q.Query(ctx, query, from, until)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches due for reminder: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return matches, nil
}
