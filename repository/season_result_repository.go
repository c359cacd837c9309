package repository

import (
	"context"
	"fmt"

	"tipster/database"
	"tipster/models"

	"github.com/jackc/pgx/v5"
)

// SeasonResultRepository implements the service.SeasonResultRepository interface
type SeasonResultRepository struct {
	q queryable
}

// NewSeasonResultRepository creates a new season result repository
func NewSeasonResultRepository(db *database.DB) *SeasonResultRepository {
	return &SeasonResultRepository{q: db.Pool}
}

// newSeasonResultRepositoryWithTx creates a new season result repository with a transaction
func newSeasonResultRepositoryWithTx(tx queryable) *SeasonResultRepository {
	return &SeasonResultRepository{q: tx}
}

// CreateBatch writes the archive rows for a closed season. The unique
// (season_number, user_id) constraint enforces write-once; a duplicate is
// surfaced, not ignored.
func (r *SeasonResultRepository) CreateBatch(ctx context.Context, results []*models.SeasonResult) error {
	query := `
		INSERT INTO season_results
		(season_number, user_id, final_points, position, total_predictions,
		 exact_predictions, close_predictions, outcome_predictions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	for _, result := range results {
		err := r.q.QueryRow(ctx, query,
			result.SeasonNumber,
			result.UserID,
			result.FinalPoints,
			result.Position,
			result.TotalPredictions,
			result.ExactPredictions,
			result.ClosePredictions,
			result.OutcomePredictions,
		).Scan(&result.ID, &result.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to archive season %d result for user %d: %w",
				result.SeasonNumber, result.UserID, err)
		}
	}

	return nil
}

func (r *SeasonResultRepository) scanResults(rows pgx.Rows) ([]*models.SeasonResult, error) {
	defer rows.Close()

	var results []*models.SeasonResult
	for rows.Next() {
		var result models.SeasonResult
		err := rows.Scan(
			&result.ID,
			&result.SeasonNumber,
			&result.UserID,
			&result.FinalPoints,
			&result.Position,
			&result.TotalPredictions,
			&result.ExactPredictions,
			&result.ClosePredictions,
			&result.OutcomePredictions,
			&result.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season result: %w", err)
		}
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate season results: %w", err)
	}

	return results, nil
}

// GetBySeason returns archived standings ordered by position
func (r *SeasonResultRepository) GetBySeason(ctx context.Context, seasonNumber, limit int) ([]*models.SeasonResult, error) {
	query := `
		SELECT id, season_number, user_id, final_points, position,
		       total_predictions, exact_predictions, close_predictions, outcome_predictions, created_at
		FROM season_results
		WHERE season_number = $1
		ORDER BY position ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, seasonNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for season %d: %w", seasonNumber, err)
	}

	return r.scanResults(rows)
}

// GetByUserAndSeason returns one user's archived row
func (r *SeasonResultRepository) GetByUserAndSeason(ctx context.Context, userID int64, seasonNumber int) (*models.SeasonResult, error) {
	query := `
		SELECT id, season_number, user_id, final_points, position,
		       total_predictions, exact_predictions, close_predictions, outcome_predictions, created_at
		FROM season_results
		WHERE user_id = $1 AND season_number = $2
	`

	var result models.SeasonResult
	err := r.q.QueryRow(ctx, query, userID, seasonNumber).Scan(
		&result.ID,
		&result.SeasonNumber,
		&result.UserID,
		&result.FinalPoints,
		&result.Position,
		&result.TotalPredictions,
		&result.ExactPredictions,
		&result.ClosePredictions,
		&result.OutcomePredictions,
		&result.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season %d result for user %d: %w", seasonNumber, userID, err)
	}

	return &result, nil
}
