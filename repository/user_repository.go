package repository

import (
	"context"
	"fmt"

	"tipster/database"
	"tipster/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `telegram_id, username, first_name, last_name, total_points, current_season, created_at, updated_at`

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.TotalPoints,
		&user.CurrentSeason,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByTelegramID retrieves a user by their Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by telegram ID %d: %w", telegramID, err)
	}

	return user, nil
}

// GetByTelegramIDForUpdate retrieves a user holding a row lock for the
// duration of the surrounding transaction.
func (r *UserRepository) GetByTelegramIDForUpdate(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1 FOR UPDATE`

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", telegramID, err)
	}

	return user, nil
}

// Create creates a new user joined to the given season
func (r *UserRepository) Create(ctx context.Context, telegramID int64, username, firstName, lastName string, season int) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, current_season)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, telegramID, username, firstName, lastName, season))
	if err != nil {
		return nil, fmt.Errorf("failed to create user with telegram ID %d: %w", telegramID, err)
	}

	return user, nil
}

// UpdateTotalPoints sets a user's running total
func (r *UserRepository) UpdateTotalPoints(ctx context.Context, telegramID int64, newTotal int64) error {
	query := `
		UPDATE users
		SET total_points = $1, updated_at = NOW()
		WHERE telegram_id = $2
	`

	result, err := r.q.Exec(ctx, query, newTotal, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update total points for user %d: %w", telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with telegram ID %d not found", telegramID)
	}

	return nil
}

// AddPoints adds to a user's running total atomically
func (r *UserRepository) AddPoints(ctx context.Context, telegramID int64, points int64) error {
	query := `
		UPDATE users
		SET total_points = total_points + $1, updated_at = NOW()
		WHERE telegram_id = $2
	`

	result, err := r.q.Exec(ctx, query, points, telegramID)
	if err != nil {
		return fmt.Errorf("failed to add points for user %d: %w", telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with telegram ID %d not found", telegramID)
	}

	return nil
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY telegram_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
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

// Search finds users whose username or name contains the term
func (r *UserRepository) Search(ctx context.Context, term string) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY total_points DESC
	`

	rows, err := r.q.Query(ctx, query, "%"+term+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
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

// GetLeaderboard returns the live standings, top points first. Ties are
// broken by telegram id ascending so the ordering is deterministic.
func (r *UserRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT telegram_id, username, first_name, last_name, total_points,
		       ROW_NUMBER() OVER (ORDER BY total_points DESC, telegram_id ASC) AS position
		FROM users
		ORDER BY total_points DESC, telegram_id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		err := rows.Scan(
			&entry.TelegramID,
			&entry.Username,
			&entry.FirstName,
			&entry.LastName,
			&entry.TotalPoints,
			&entry.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}

// GetSeasonStandings computes the final standings for a season. Rank is
// total points descending with telegram id ascending as the tie break;
// category counts come from predictions stamped with this season at
// settlement.
func (r *UserRepository) GetSeasonStandings(ctx context.Context, seasonNumber int) ([]*models.SeasonResult, error) {
	query := `
		SELECT
			u.telegram_id,
			u.total_points,
			COUNT(p.id) AS total_predictions,
			COUNT(p.id) FILTER (WHERE p.points_earned = 3) AS exact_predictions,
			COUNT(p.id) FILTER (WHERE p.points_earned = 2) AS close_predictions,
			COUNT(p.id) FILTER (WHERE p.points_earned = 1) AS outcome_predictions,
			ROW_NUMBER() OVER (ORDER BY u.total_points DESC, u.telegram_id ASC) AS position
		FROM users u
		LEFT JOIN predictions p ON p.user_id = u.telegram_id AND p.season = $1
		WHERE u.current_season = $1
		GROUP BY u.telegram_id, u.total_points
		ORDER BY u.total_points DESC, u.telegram_id ASC
	`

	rows, err := r.q.Query(ctx, query, seasonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to compute standings for season %d: %w", seasonNumber, err)
	}
	defer rows.Close()

	var results []*models.SeasonResult
	for rows.Next() {
		result := models.SeasonResult{SeasonNumber: seasonNumber}
		err := rows.Scan(
			&result.UserID,
			&result.FinalPoints,
			&result.TotalPredictions,
			&result.ExactPredictions,
			&result.ClosePredictions,
			&result.OutcomePredictions,
			&result.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standings row: %w", err)
		}
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate standings: %w", err)
	}

	return results, nil
}

// ResetAllForSeason zeroes every total and moves users to the new season
func (r *UserRepository) ResetAllForSeason(ctx context.Context, newSeason int) (int, error) {
	query := `
		UPDATE users
		SET total_points = 0, current_season = $1, updated_at = NOW()
	`

	result, err := r.q.Exec(ctx, query, newSeason)
	if err != nil {
		return 0, fmt.Errorf("failed to reset users for season %d: %w", newSeason, err)
	}

	return int(result.RowsAffected()), nil
}
