package repository

import (
	"context"
	"fmt"

	"tipster/database"
	"tipster/models"

	"github.com/jackc/pgx/v5"
)

// AdminRepository implements the service.AdminRepository interface
type AdminRepository struct {
	q queryable
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{q: db.Pool}
}

// newAdminRepositoryWithTx creates a new admin repository with a transaction
func newAdminRepositoryWithTx(tx queryable) *AdminRepository {
	return &AdminRepository{q: tx}
}

// Upsert adds an admin or reactivates a previously removed one
func (r *AdminRepository) Upsert(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (user_id, username, first_name, last_name, is_super_admin, added_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    is_super_admin = EXCLUDED.is_super_admin,
		    is_active = TRUE
		RETURNING added_at, is_active
	`

	err := r.q.QueryRow(ctx, query,
		admin.UserID,
		admin.Username,
		admin.FirstName,
		admin.LastName,
		admin.IsSuperAdmin,
		admin.AddedBy,
	).Scan(&admin.AddedAt, &admin.IsActive)

	if err != nil {
		return fmt.Errorf("failed to upsert admin %d: %w", admin.UserID, err)
	}

	return nil
}

// Deactivate soft-deletes an admin
func (r *AdminRepository) Deactivate(ctx context.Context, userID int64) (bool, error) {
	query := `UPDATE admins SET is_active = FALSE WHERE user_id = $1 AND is_active`

	result, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate admin %d: %w", userID, err)
	}

	return result.RowsAffected() > 0, nil
}

func scanAdmin(row pgx.Row) (*models.Admin, error) {
	var admin models.Admin
	err := row.Scan(
		&admin.UserID,
		&admin.Username,
		&admin.FirstName,
		&admin.LastName,
		&admin.IsSuperAdmin,
		&admin.AddedBy,
		&admin.AddedAt,
		&admin.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

const adminColumns = `user_id, username, first_name, last_name, is_super_admin, added_by, added_at, is_active`

// GetByUserID returns an active admin
func (r *AdminRepository) GetByUserID(ctx context.Context, userID int64) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE user_id = $1 AND is_active`

	admin, err := scanAdmin(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin %d: %w", userID, err)
	}

	return admin, nil
}

// GetAll returns active admins, super admins first
func (r *AdminRepository) GetAll(ctx context.Context) ([]*models.Admin, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM admins
		WHERE is_active
		ORDER BY is_super_admin DESC, added_at ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get admins: %w", err)
	}
	defer rows.Close()

	var admins []*models.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admins: %w", err)
	}

	return admins, nil
}
