package models

import (
	"time"
)

// MatchNotification marks that a kickoff reminder was sent for a match,
// so the scheduler never reminds twice.
type MatchNotification struct {
	MatchID          int64     `db:"match_id"`
	NotificationSent time.Time `db:"notification_sent"`
	UsersNotified    int       `db:"users_notified"`
}
