package repository

import (
	"context"
	"fmt"

	"tipster/database"
	"tipster/models"

	"github.com/jackc/pgx/v5"
)

// PredictionRepository implements the service.PredictionRepository interface
type PredictionRepository struct {
	q queryable
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *database.DB) *PredictionRepository {
	return &PredictionRepository{q: db.Pool}
}

// newPredictionRepositoryWithTx creates a new prediction repository with a transaction
func newPredictionRepositoryWithTx(tx queryable) *PredictionRepository {
	return &PredictionRepository{q: tx}
}

// Upsert inserts or overwrites the (user, match) prediction. The conflict
// update is guarded on settled_at so a settled prediction is never
// overwritten.
func (r *PredictionRepository) Upsert(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (user_id, match_id, prediction_a, prediction_b)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, match_id) DO UPDATE
		SET prediction_a = EXCLUDED.prediction_a,
		    prediction_b = EXCLUDED.prediction_b,
		    updated_at = NOW()
		WHERE predictions.settled_at IS NULL
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		prediction.UserID,
		prediction.MatchID,
		prediction.PredictionA,
		prediction.PredictionB,
	).Scan(&prediction.ID, &prediction.CreatedAt, &prediction.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("prediction for user %d on match %d is already settled", prediction.UserID, prediction.MatchID)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert prediction for user %d on match %d: %w", prediction.UserID, prediction.MatchID, err)
	}

	return nil
}

// GetByUserAndMatch retrieves one prediction
func (r *PredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int64) (*models.Prediction, error) {
	query := `
		SELECT id, user_id, match_id, prediction_a, prediction_b, points_earned, season, settled_at, created_at, updated_at
		FROM predictions
		WHERE user_id = $1 AND match_id = $2
	`

	var p models.Prediction
	err := r.q.QueryRow(ctx, query, userID, matchID).Scan(
		&p.ID,
		&p.UserID,
		&p.MatchID,
		&p.PredictionA,
		&p.PredictionB,
		&p.PointsEarned,
		&p.Season,
		&p.SettledAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction for user %d on match %d: %w", userID, matchID, err)
	}

	return &p, nil
}

func (r *PredictionRepository) queryWithUsers(ctx context.Context, query string, args ...any) ([]*models.PredictionWithUser, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.PredictionWithUser
	for rows.Next() {
		var p models.PredictionWithUser
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.MatchID,
			&p.PredictionA,
			&p.PredictionB,
			&p.PointsEarned,
			&p.Season,
			&p.SettledAt,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.Username,
			&p.FirstName,
			&p.LastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return predictions, nil
}

const predictionWithUserSelect = `
	SELECT p.id, p.user_id, p.match_id, p.prediction_a, p.prediction_b,
	       p.points_earned, p.season, p.settled_at, p.created_at, p.updated_at,
	       u.username, u.first_name, u.last_name
	FROM predictions p
	JOIN users u ON u.telegram_id = p.user_id
`

// GetByMatch returns every prediction on a match with user names
func (r *PredictionRepository) GetByMatch(ctx context.Context, matchID int64) ([]*models.PredictionWithUser, error) {
	query := predictionWithUserSelect + `
		WHERE p.match_id = $1
		ORDER BY p.user_id ASC
	`
	return r.queryWithUsers(ctx, query, matchID)
}

// GetUnsettledByMatch returns the predictions on a match that have no
// settlement marker yet
func (r *PredictionRepository) GetUnsettledByMatch(ctx context.Context, matchID int64) ([]*models.PredictionWithUser, error) {
	query := predictionWithUserSelect + `
		WHERE p.match_id = $1 AND p.settled_at IS NULL
		ORDER BY p.user_id ASC
	`
	return r.queryWithUsers(ctx, query, matchID)
}

// Settle stamps points, season and the settlement marker onto a
// prediction. The settled_at guard makes the award at-most-once: a
// prediction that was already settled reports false instead of being
// awarded again.
func (r *PredictionRepository) Settle(ctx context.Context, predictionID int64, points, season int) (bool, error) {
	query := `
		UPDATE predictions
		SET points_earned = $1, season = $2, settled_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND settled_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, points, season, predictionID)
	if err != nil {
		return false, fmt.Errorf("failed to settle prediction %d: %w", predictionID, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetUserStats aggregates a user's per-category record
func (r *PredictionRepository) GetUserStats(ctx context.Context, userID int64, season *int) (*models.PredictionStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_predictions,
			COUNT(*) FILTER (WHERE points_earned = 3) AS exact_predictions,
			COUNT(*) FILTER (WHERE points_earned = 2) AS close_predictions,
			COUNT(*) FILTER (WHERE points_earned = 1) AS outcome_predictions,
			COUNT(*) FILTER (WHERE points_earned = 0) AS missed_predictions,
			COALESCE(SUM(points_earned), 0) AS points_earned
		FROM predictions
		WHERE user_id = $1
		  AND settled_at IS NOT NULL
		  AND ($2::int IS NULL OR season = $2)
	`

	var stats models.PredictionStats
	err := r.q.QueryRow(ctx, query, userID, season).Scan(
		&stats.TotalPredictions,
		&stats.ExactPredictions,
		&stats.ClosePredictions,
		&stats.OutcomePredictions,
		&stats.MissedPredictions,
		&stats.PointsEarned,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for user %d: %w", userID, err)
	}

	return &stats, nil
}

// GetUsersWithoutPrediction returns users who have not predicted a match
func (r *PredictionRepository) GetUsersWithoutPrediction(ctx context.Context, matchID int64) ([]*models.User, error) {
	query := `
		SELECT u.telegram_id, u.username, u.first_name, u.last_name,
		       u.total_points, u.current_season, u.created_at, u.updated_at
		FROM users u
		LEFT JOIN predictions p ON p.user_id = u.telegram_id AND p.match_id = $1
		WHERE p.id IS NULL
		ORDER BY u.telegram_id ASC
	`

	rows, err := r.q.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get users without prediction for match %d: %w", matchID, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
