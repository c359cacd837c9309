package models

import (
	"time"
)

// Admin is a user allowed to run administrative commands. Removal is a
// soft delete via IsActive so the audit trail keeps resolving names.
type Admin struct {
	UserID       int64     `db:"user_id"`
	Username     string    `db:"username"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	IsSuperAdmin bool      `db:"is_super_admin"`
	AddedBy      *int64    `db:"added_by"`
	AddedAt      time.Time `db:"added_at"`
	IsActive     bool      `db:"is_active"`
}
