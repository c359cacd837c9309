package repository

import (
	"context"
	"fmt"
	"time"

	"tipster/database"
	"tipster/models"

	"github.com/jackc/pgx/v5"
)

const seasonColumns = `id, season_number, name, start_date, end_date, is_active, created_at`

// SeasonRepository implements the service.SeasonRepository interface
type SeasonRepository struct {
	q queryable
}

// NewSeasonRepository creates a new season repository
func NewSeasonRepository(db *database.DB) *SeasonRepository {
	return &SeasonRepository{q: db.Pool}
}

// newSeasonRepositoryWithTx creates a new season repository with a transaction
func newSeasonRepositoryWithTx(tx queryable) *SeasonRepository {
	return &SeasonRepository{q: tx}
}

func scanSeason(row pgx.Row) (*models.Season, error) {
	var season models.Season
	err := row.Scan(
		&season.ID,
		&season.SeasonNumber,
		&season.Name,
		&season.StartDate,
		&season.EndDate,
		&season.IsActive,
		&season.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &season, nil
}

// GetActive returns the active season
func (r *SeasonRepository) GetActive(ctx context.Context) (*models.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE is_active ORDER BY season_number DESC LIMIT 1`

	season, err := scanSeason(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}

	return season, nil
}

// LockActive returns the active season holding a row lock. Settlement and
// points adjustments take the shared lock; season closure takes the
// exclusive one, which blocks until in-flight shared holders commit and
// keeps new ones out until the closure finishes.
func (r *SeasonRepository) LockActive(ctx context.Context, exclusive bool) (*models.Season, error) {
	lock := "FOR SHARE"
	if exclusive {
		lock = "FOR UPDATE"
	}
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE is_active ORDER BY season_number DESC LIMIT 1 ` + lock

	season, err := scanSeason(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock active season: %w", err)
	}

	return season, nil
}

// Close sets the end date and clears the active flag
func (r *SeasonRepository) Close(ctx context.Context, seasonNumber int, endDate time.Time) error {
	query := `
		UPDATE seasons
		SET is_active = FALSE, end_date = $1
		WHERE season_number = $2 AND is_active
	`

	result, err := r.q.Exec(ctx, query, endDate, seasonNumber)
	if err != nil {
		return fmt.Errorf("failed to close season %d: %w", seasonNumber, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("season %d is not active", seasonNumber)
	}

	return nil
}

// Create inserts a new active season
func (r *SeasonRepository) Create(ctx context.Context, seasonNumber int, name string) (*models.Season, error) {
	query := `
		INSERT INTO seasons (season_number, name, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING ` + seasonColumns

	season, err := scanSeason(r.q.QueryRow(ctx, query, seasonNumber, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create season %d: %w", seasonNumber, err)
	}

	return season, nil
}

// GetByNumber retrieves a season by its number
func (r *SeasonRepository) GetByNumber(ctx context.Context, seasonNumber int) (*models.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE season_number = $1`

	season, err := scanSeason(r.q.QueryRow(ctx, query, seasonNumber))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season %d: %w", seasonNumber, err)
	}

	return season, nil
}

// GetHistory returns seasons, newest first
func (r *SeasonRepository) GetHistory(ctx context.Context, limit int) ([]*models.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons ORDER BY season_number DESC LIMIT $1`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get season history: %w", err)
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seasons: %w", err)
	}

	return seasons, nil
}
