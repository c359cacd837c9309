package repository

import (
	"context"
	"fmt"

	"tipster/database"
	"tipster/models"

	"github.com/jackc/pgx/v5"
)

// PointsHistoryRepository implements the service.PointsHistoryRepository interface
type PointsHistoryRepository struct {
	q queryable
}

// NewPointsHistoryRepository creates a new points history repository
func NewPointsHistoryRepository(db *database.DB) *PointsHistoryRepository {
	return &PointsHistoryRepository{q: db.Pool}
}

// newPointsHistoryRepositoryWithTx creates a new points history repository with a transaction
func newPointsHistoryRepositoryWithTx(tx queryable) *PointsHistoryRepository {
	return &PointsHistoryRepository{q: tx}
}

// Record appends a ledger entry
func (r *PointsHistoryRepository) Record(ctx context.Context, entry *models.PointsHistory) error {
	query := `
		INSERT INTO points_history
		(user_id, admin_id, points_change, reason, action_type, old_total, new_total, season)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.AdminID,
		entry.PointsChange,
		entry.Reason,
		entry.ActionType,
		entry.OldTotal,
		entry.NewTotal,
		entry.Season,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record points history for user %d: %w", entry.UserID, err)
	}

	return nil
}

func (r *PointsHistoryRepository) query(ctx context.Context, query string, args ...any) ([]*models.PointsHistory, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points history: %w", err)
	}
	defer rows.Close()

	var entries []*models.PointsHistory
	for rows.Next() {
		entry, err := scanPointsHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan points history: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate points history: %w", err)
	}

	return entries, nil
}

func scanPointsHistory(row pgx.Row) (*models.PointsHistory, error) {
	var entry models.PointsHistory
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.AdminID,
		&entry.PointsChange,
		&entry.Reason,
		&entry.ActionType,
		&entry.OldTotal,
		&entry.NewTotal,
		&entry.Season,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

const pointsHistoryColumns = `id, user_id, admin_id, points_change, reason, action_type, old_total, new_total, season, created_at`

// GetByUser returns a user's ledger entries, newest first
func (r *PointsHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointsHistory, error) {
	query := `
		SELECT ` + pointsHistoryColumns + `
		FROM points_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	return r.query(ctx, query, userID, limit)
}

// GetRecent returns the newest ledger entries across all users
func (r *PointsHistoryRepository) GetRecent(ctx context.Context, limit int) ([]*models.PointsHistory, error) {
	query := `
		SELECT ` + pointsHistoryColumns + `
		FROM points_history
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	return r.query(ctx, query, limit)
}
