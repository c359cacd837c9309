package repository

import (
	"context"
	"fmt"

	"tipster/database"
)

// MatchNotificationRepository implements the service.MatchNotificationRepository interface
type MatchNotificationRepository struct {
	q queryable
}

// NewMatchNotificationRepository creates a new match notification repository
func NewMatchNotificationRepository(db *database.DB) *MatchNotificationRepository {
	return &MatchNotificationRepository{q: db.Pool}
}

// newMatchNotificationRepositoryWithTx creates a new match notification repository with a transaction
func newMatchNotificationRepositoryWithTx(tx queryable) *MatchNotificationRepository {
	return &MatchNotificationRepository{q: tx}
}

// MarkSent records that a reminder went out for a match. Upsert, so a
// scheduler retry never fails on the primary key.
func (r *MatchNotificationRepository) MarkSent(ctx context.Context, matchID int64, usersNotified int) error {
	query := `
		INSERT INTO match_notifications (match_id, users_notified)
		VALUES ($1, $2)
		ON CONFLICT (match_id) DO UPDATE
		SET users_notified = EXCLUDED.users_notified, notification_sent = NOW()
	`

	if _, err := r.q.Exec(ctx, query, matchID, usersNotified); err != nil {
		return fmt.Errorf("failed to mark reminder sent for match %d: %w", matchID, err)
	}

	return nil
}
